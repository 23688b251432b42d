package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// AllowedDomainRepository — интерфейс для таблицы allowed_domains.
type AllowedDomainRepository interface {
	// List возвращает все разрешённые домены, отсортированные по домену.
	List(ctx context.Context) ([]model.AllowedDomain, error)
	// AccessMap возвращает отображение домен → уровень доступа
	// (используется при вычислении роли на входе).
	AccessMap(ctx context.Context) (map[string]string, error)
	// Create добавляет домен. Дубликат — ErrConflict.
	Create(ctx context.Context, domain, accessLevel string) (*model.AllowedDomain, error)
	// Delete удаляет домен по id. Если нет — ErrNotFound.
	Delete(ctx context.Context, id string) error
}

type allowedDomainRepo struct {
	db DBTX
}

// NewAllowedDomainRepository создаёт репозиторий разрешённых доменов.
func NewAllowedDomainRepository(db DBTX) AllowedDomainRepository {
	return &allowedDomainRepo{db: db}
}

// List возвращает все разрешённые домены.
func (r *allowedDomainRepo) List(ctx context.Context) ([]model.AllowedDomain, error) {
	query := `SELECT id, domain, access_level, created_at FROM allowed_domains ORDER BY domain`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка доменов: %w", err)
	}
	defer rows.Close()

	var domains []model.AllowedDomain
	for rows.Next() {
		var d model.AllowedDomain
		if err := rows.Scan(&d.ID, &d.Domain, &d.AccessLevel, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования домена: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// AccessMap возвращает отображение домен → уровень доступа.
func (r *allowedDomainRepo) AccessMap(ctx context.Context) (map[string]string, error) {
	domains, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	access := make(map[string]string, len(domains))
	for _, d := range domains {
		access[strings.ToLower(d.Domain)] = d.AccessLevel
	}
	return access, nil
}

// Create добавляет разрешённый домен.
func (r *allowedDomainRepo) Create(ctx context.Context, domain, accessLevel string) (*model.AllowedDomain, error) {
	query := `
		INSERT INTO allowed_domains (id, domain, access_level)
		VALUES ($1, $2, $3)
		RETURNING id, domain, access_level, created_at`

	d := &model.AllowedDomain{}
	err := r.db.QueryRow(ctx, query, uuid.NewString(), domain, accessLevel).Scan(
		&d.ID, &d.Domain, &d.AccessLevel, &d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка создания домена %q: %w", domain, err)
	}
	return d, nil
}

// Delete удаляет разрешённый домен по id.
func (r *allowedDomainRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM allowed_domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления домена %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
