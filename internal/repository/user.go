package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// UserRepository — интерфейс для таблицы users.
type UserRepository interface {
	// GetByEmail возвращает пользователя по email. Если нет — ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Get возвращает пользователя по id. Если нет — ErrNotFound.
	Get(ctx context.Context, id string) (*model.User, error)
	// Upsert создаёт пользователя при первом входе или обновляет
	// имя и роль при повторном (upsert по email).
	Upsert(ctx context.Context, email, name, role string) (*model.User, error)
}

type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail возвращает пользователя по email.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя %q: %w", email, err)
	}
	return u, nil
}

// Get возвращает пользователя по id.
func (r *userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя %s: %w", id, err)
	}
	return u, nil
}

// Upsert создаёт или обновляет пользователя по email.
func (r *userRepo) Upsert(ctx context.Context, email, name, role string) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			role = EXCLUDED.role,
			updated_at = NOW()
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, uuid.NewString(), email, name, role))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения пользователя %q: %w", email, err)
	}
	return u, nil
}
