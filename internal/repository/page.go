package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// PageRepository — интерфейс для таблицы pages.
type PageRepository interface {
	// List возвращает все страницы по возрастанию order.
	List(ctx context.Context) ([]model.Page, error)
	// Get возвращает страницу по id. Если не найдена — ErrNotFound.
	Get(ctx context.Context, id string) (*model.Page, error)
	// GetBySlug возвращает страницу по slug. Если не найдена — ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*model.Page, error)
	// Update обновляет существующую страницу. Если нет — ErrNotFound,
	// при дублировании slug — ErrConflict.
	Update(ctx context.Context, p *model.Page) (*model.Page, error)
}

type pageRepo struct {
	db DBTX
}

// NewPageRepository создаёт репозиторий страниц.
func NewPageRepository(db DBTX) PageRepository {
	return &pageRepo{db: db}
}

const pageColumns = `id, slug, title, description, content, published, "order", created_at, updated_at`

func scanPage(row pgx.Row) (*model.Page, error) {
	p := &model.Page{}
	var content []byte
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &content,
		&p.Published, &p.Order, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Content = content
	return p, nil
}

// List возвращает все страницы по возрастанию order.
func (r *pageRepo) List(ctx context.Context) ([]model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages ORDER BY "order"`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка страниц: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования страницы: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// Get возвращает страницу по id.
func (r *pageRepo) Get(ctx context.Context, id string) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	p, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения страницы %s: %w", id, err)
	}
	return p, nil
}

// GetBySlug возвращает страницу по slug.
func (r *pageRepo) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = $1`

	p, err := scanPage(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения страницы %q: %w", slug, err)
	}
	return p, nil
}

// Update обновляет существующую страницу и возвращает сохранённую строку.
func (r *pageRepo) Update(ctx context.Context, p *model.Page) (*model.Page, error) {
	content := p.Content
	if len(content) == 0 {
		content = []byte(`{}`)
	}

	query := `
		UPDATE pages
		SET slug = $2,
			title = $3,
			description = $4,
			content = $5,
			published = $6,
			"order" = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + pageColumns

	updated, err := scanPage(r.db.QueryRow(ctx, query,
		p.ID, p.Slug, p.Title, p.Description, []byte(content), p.Published, p.Order,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка обновления страницы %s: %w", p.ID, err)
	}
	return updated, nil
}
