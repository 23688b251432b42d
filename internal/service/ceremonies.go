// ceremonies.go — сервис церемоний жизненного цикла.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// CeremonyService — бизнес-логика работы с церемониями.
type CeremonyService struct {
	repo   repository.CeremonyRepository
	logger *slog.Logger
}

// NewCeremonyService создаёт сервис церемоний.
func NewCeremonyService(repo repository.CeremonyRepository, logger *slog.Logger) *CeremonyService {
	return &CeremonyService{
		repo:   repo,
		logger: logger.With(slog.String("service", "ceremonies")),
	}
}

// List возвращает все церемонии, отсортированные по имени.
func (s *CeremonyService) List(ctx context.Context) ([]model.Ceremony, error) {
	ceremonies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка церемоний: %w", err)
	}
	return ceremonies, nil
}

// Get возвращает церемонию по id.
func (s *CeremonyService) Get(ctx context.Context, id string) (*model.Ceremony, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения церемонии %s: %w", id, err)
	}
	return c, nil
}

// Update обновляет церемонию. id и name обязательны.
func (s *CeremonyService) Update(ctx context.Context, c *model.Ceremony) (*model.Ceremony, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("%w: не указан id церемонии", ErrValidation)
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: не указано имя церемонии", ErrValidation)
	}

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления церемонии %s: %w", c.ID, err)
	}

	s.logger.Info("Церемония обновлена", slog.String("id", updated.ID))
	return updated, nil
}
