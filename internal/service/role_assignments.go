// role_assignments.go — сервис назначений на организационные роли.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/domain/roles"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// RoleAssignmentService — бизнес-логика назначений ролей.
// Каталог ролей определён в коде (пакет roles), в БД хранятся только
// назначения; соединение — по производному roleKey.
type RoleAssignmentService struct {
	repo   repository.RoleAssignmentRepository
	logger *slog.Logger
}

// NewRoleAssignmentService создаёт сервис назначений ролей.
func NewRoleAssignmentService(repo repository.RoleAssignmentRepository, logger *slog.Logger) *RoleAssignmentService {
	return &RoleAssignmentService{
		repo:   repo,
		logger: logger.With(slog.String("service", "role_assignments")),
	}
}

// List возвращает все назначения, отсортированные по имени роли.
func (s *RoleAssignmentService) List(ctx context.Context) ([]model.RoleAssignment, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка назначений: %w", err)
	}
	return assignments, nil
}

// Upsert создаёт или заменяет назначение по roleKey.
// roleKey и roleName обязательны; roleKey должен соответствовать
// производному ключу от roleName (защита от рассинхронизации с каталогом).
func (s *RoleAssignmentService) Upsert(ctx context.Context, a *model.RoleAssignment) (*model.RoleAssignment, error) {
	if a.RoleKey == "" {
		return nil, fmt.Errorf("%w: не указан roleKey", ErrValidation)
	}
	if a.RoleName == "" {
		return nil, fmt.Errorf("%w: не указано roleName", ErrValidation)
	}
	if derived := roles.RoleNameToKey(a.RoleName); derived != a.RoleKey {
		return nil, fmt.Errorf("%w: roleKey %q не соответствует имени роли (ожидается %q)", ErrValidation, a.RoleKey, derived)
	}

	saved, err := s.repo.Upsert(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения назначения %q: %w", a.RoleKey, err)
	}

	s.logger.Info("Назначение роли сохранено",
		slog.String("role_key", saved.RoleKey),
	)
	return saved, nil
}

// Delete удаляет назначение по roleKey.
func (s *RoleAssignmentService) Delete(ctx context.Context, roleKey string) error {
	if roleKey == "" {
		return fmt.Errorf("%w: не указан roleKey", ErrValidation)
	}

	if err := s.repo.DeleteByRoleKey(ctx, roleKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления назначения %q: %w", roleKey, err)
	}

	s.logger.Info("Назначение роли удалено", slog.String("role_key", roleKey))
	return nil
}
