// domains.go — сервис разрешённых email-доменов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/domain/rbac"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// DomainService — бизнес-логика управления разрешёнными доменами.
type DomainService struct {
	repo   repository.AllowedDomainRepository
	logger *slog.Logger
}

// NewDomainService создаёт сервис разрешённых доменов.
func NewDomainService(repo repository.AllowedDomainRepository, logger *slog.Logger) *DomainService {
	return &DomainService{
		repo:   repo,
		logger: logger.With(slog.String("service", "domains")),
	}
}

// List возвращает все разрешённые домены.
func (s *DomainService) List(ctx context.Context) ([]model.AllowedDomain, error) {
	domains, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка доменов: %w", err)
	}
	return domains, nil
}

// Create добавляет разрешённый домен. Домен нормализуется к нижнему
// регистру; уровень доступа — USER или ADMIN.
func (s *DomainService) Create(ctx context.Context, domain, accessLevel string) (*model.AllowedDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || strings.ContainsAny(domain, "@ ") {
		return nil, fmt.Errorf("%w: некорректный домен %q", ErrValidation, domain)
	}
	if !rbac.IsValidRole(accessLevel) {
		return nil, fmt.Errorf("%w: некорректный уровень доступа %q, допустимые: USER, ADMIN", ErrValidation, accessLevel)
	}

	d, err := s.repo.Create(ctx, domain, accessLevel)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: домен %q уже добавлен", ErrConflict, domain)
		}
		return nil, fmt.Errorf("ошибка создания домена %q: %w", domain, err)
	}

	s.logger.Info("Домен добавлен",
		slog.String("domain", d.Domain),
		slog.String("access_level", d.AccessLevel),
	)
	return d, nil
}

// Delete удаляет разрешённый домен по id.
func (s *DomainService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: не указан id домена", ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления домена %s: %w", id, err)
	}

	s.logger.Info("Домен удалён", slog.String("id", id))
	return nil
}
