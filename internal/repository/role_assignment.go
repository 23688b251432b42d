package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// RoleAssignmentRepository — интерфейс для таблицы role_assignments.
// Ключ соединения с кодовым каталогом ролей — role_key (уникальный).
type RoleAssignmentRepository interface {
	// List возвращает все назначения, отсортированные по имени роли.
	List(ctx context.Context) ([]model.RoleAssignment, error)
	// GetByRoleKey возвращает назначение по ключу роли. Если нет — ErrNotFound.
	GetByRoleKey(ctx context.Context, roleKey string) (*model.RoleAssignment, error)
	// Upsert создаёт или заменяет назначение по role_key атомарно
	// (ON CONFLICT DO UPDATE) — два администратора, редактирующих одну
	// роль, не создадут дубликат.
	Upsert(ctx context.Context, a *model.RoleAssignment) (*model.RoleAssignment, error)
	// DeleteByRoleKey удаляет назначение по ключу роли. Если нет — ErrNotFound.
	DeleteByRoleKey(ctx context.Context, roleKey string) error
}

type roleAssignmentRepo struct {
	db DBTX
}

// NewRoleAssignmentRepository создаёт репозиторий назначений ролей.
func NewRoleAssignmentRepository(db DBTX) RoleAssignmentRepository {
	return &roleAssignmentRepo{db: db}
}

const roleAssignmentColumns = `id, role_key, role_name, assignee_name, assignee_email, assignee_phone, notes, created_at, updated_at`

func scanRoleAssignment(row pgx.Row) (*model.RoleAssignment, error) {
	a := &model.RoleAssignment{}
	err := row.Scan(
		&a.ID, &a.RoleKey, &a.RoleName, &a.AssigneeName, &a.AssigneeEmail,
		&a.AssigneePhone, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List возвращает все назначения, отсортированные по имени роли.
func (r *roleAssignmentRepo) List(ctx context.Context) ([]model.RoleAssignment, error) {
	query := `SELECT ` + roleAssignmentColumns + ` FROM role_assignments ORDER BY role_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка назначений: %w", err)
	}
	defer rows.Close()

	var assignments []model.RoleAssignment
	for rows.Next() {
		a, err := scanRoleAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования назначения: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// GetByRoleKey возвращает назначение по ключу роли.
func (r *roleAssignmentRepo) GetByRoleKey(ctx context.Context, roleKey string) (*model.RoleAssignment, error) {
	query := `SELECT ` + roleAssignmentColumns + ` FROM role_assignments WHERE role_key = $1`

	a, err := scanRoleAssignment(r.db.QueryRow(ctx, query, roleKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения назначения %q: %w", roleKey, err)
	}
	return a, nil
}

// Upsert создаёт или заменяет назначение по role_key.
func (r *roleAssignmentRepo) Upsert(ctx context.Context, a *model.RoleAssignment) (*model.RoleAssignment, error) {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO role_assignments (id, role_key, role_name, assignee_name, assignee_email, assignee_phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (role_key) DO UPDATE
		SET role_name = EXCLUDED.role_name,
			assignee_name = EXCLUDED.assignee_name,
			assignee_email = EXCLUDED.assignee_email,
			assignee_phone = EXCLUDED.assignee_phone,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING ` + roleAssignmentColumns

	saved, err := scanRoleAssignment(r.db.QueryRow(ctx, query,
		id, a.RoleKey, a.RoleName, a.AssigneeName, a.AssigneeEmail, a.AssigneePhone, a.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения назначения %q: %w", a.RoleKey, err)
	}
	return saved, nil
}

// DeleteByRoleKey удаляет назначение по ключу роли.
func (r *roleAssignmentRepo) DeleteByRoleKey(ctx context.Context, roleKey string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM role_assignments WHERE role_key = $1`, roleKey)
	if err != nil {
		return fmt.Errorf("ошибка удаления назначения %q: %w", roleKey, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
