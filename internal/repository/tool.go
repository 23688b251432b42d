package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// ToolRepository — интерфейс для таблицы tools.
type ToolRepository interface {
	// List возвращает все инструменты: по домену, внутри домена по order.
	List(ctx context.Context) ([]model.Tool, error)
	// Get возвращает инструмент по id. Если не найден — ErrNotFound.
	Get(ctx context.Context, id string) (*model.Tool, error)
	// Upsert создаёт инструмент (id генерируется, если пустой) или
	// обновляет существующий атомарно (ON CONFLICT DO UPDATE).
	Upsert(ctx context.Context, t *model.Tool) (*model.Tool, error)
	// Delete удаляет инструмент по id. Если нет — ErrNotFound.
	Delete(ctx context.Context, id string) error
}

type toolRepo struct {
	db DBTX
}

// NewToolRepository создаёт репозиторий инструментов.
func NewToolRepository(db DBTX) ToolRepository {
	return &toolRepo{db: db}
}

const toolColumns = `id, domain, name, description, when_to_use, external_url, docuware_ref, icon, "order", created_at, updated_at`

func scanTool(row pgx.Row) (*model.Tool, error) {
	t := &model.Tool{}
	err := row.Scan(
		&t.ID, &t.Domain, &t.Name, &t.Description, &t.WhenToUse,
		&t.ExternalURL, &t.DocuwareRef, &t.Icon, &t.Order,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List возвращает инструменты, сгруппированные по домену.
func (r *toolRepo) List(ctx context.Context) ([]model.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools ORDER BY domain, "order", name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка инструментов: %w", err)
	}
	defer rows.Close()

	var tools []model.Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования инструмента: %w", err)
		}
		tools = append(tools, *t)
	}
	return tools, rows.Err()
}

// Get возвращает инструмент по id.
func (r *toolRepo) Get(ctx context.Context, id string) (*model.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`

	t, err := scanTool(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения инструмента %s: %w", id, err)
	}
	return t, nil
}

// Upsert создаёт или обновляет инструмент атомарно.
func (r *toolRepo) Upsert(ctx context.Context, t *model.Tool) (*model.Tool, error) {
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO tools (id, domain, name, description, when_to_use, external_url, docuware_ref, icon, "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET domain = EXCLUDED.domain,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			when_to_use = EXCLUDED.when_to_use,
			external_url = EXCLUDED.external_url,
			docuware_ref = EXCLUDED.docuware_ref,
			icon = EXCLUDED.icon,
			"order" = EXCLUDED."order",
			updated_at = NOW()
		RETURNING ` + toolColumns

	saved, err := scanTool(r.db.QueryRow(ctx, query,
		id, t.Domain, t.Name, t.Description, t.WhenToUse,
		t.ExternalURL, t.DocuwareRef, t.Icon, t.Order,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения инструмента %s: %w", id, err)
	}
	return saved, nil
}

// Delete удаляет инструмент по id.
func (r *toolRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления инструмента %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
