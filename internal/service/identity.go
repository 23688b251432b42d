// identity.go — адаптер внешней идентичности: превращает проверенный
// email из Google OIDC в локального пользователя с ролью.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/domain/rbac"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// IdentityService — вход пользователей и вычисление роли.
// Роль определяется один раз при входе и замораживается в сессии;
// изменение allow-list'ов действует со следующего входа.
type IdentityService struct {
	users        repository.UserRepository
	domains      repository.AllowedDomainRepository
	adminEmails  []string
	adminDomains []string
	logger       *slog.Logger
}

// NewIdentityService создаёт сервис идентичности.
// adminEmails и adminDomains — статические allow-list'ы из конфигурации.
func NewIdentityService(
	users repository.UserRepository,
	domains repository.AllowedDomainRepository,
	adminEmails, adminDomains []string,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		users:        users,
		domains:      domains,
		adminEmails:  adminEmails,
		adminDomains: adminDomains,
		logger:       logger.With(slog.String("service", "identity")),
	}
}

// SignIn обрабатывает вход с проверенным email.
// Вычисляет роль по allow-list'ам и таблице разрешённых доменов;
// если ни одно правило не совпало — ErrAccessDenied. При успехе
// создаёт или обновляет пользователя (upsert по email).
func (s *IdentityService) SignIn(ctx context.Context, email, name string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: пустой email", ErrValidation)
	}

	access, err := s.domains.AccessMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения разрешённых доменов: %w", err)
	}

	role, ok := rbac.RoleForEmail(email, s.adminEmails, s.adminDomains, access)
	if !ok {
		s.logger.Warn("Вход отклонён: email не входит в allow-list",
			slog.String("email", email),
		)
		return nil, ErrAccessDenied
	}

	user, err := s.users.Upsert(ctx, email, name, role)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения пользователя %q: %w", email, err)
	}

	s.logger.Info("Пользователь вошёл",
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)
	return user, nil
}
