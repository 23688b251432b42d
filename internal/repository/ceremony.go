package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// CeremonyRepository — интерфейс для таблицы ceremonies.
type CeremonyRepository interface {
	// List возвращает все церемонии, отсортированные по имени.
	List(ctx context.Context) ([]model.Ceremony, error)
	// Get возвращает церемонию по id. Если не найдена — ErrNotFound.
	Get(ctx context.Context, id string) (*model.Ceremony, error)
	// Update обновляет существующую церемонию. Если нет — ErrNotFound.
	Update(ctx context.Context, c *model.Ceremony) (*model.Ceremony, error)
}

type ceremonyRepo struct {
	db DBTX
}

// NewCeremonyRepository создаёт репозиторий церемоний.
func NewCeremonyRepository(db DBTX) CeremonyRepository {
	return &ceremonyRepo{db: db}
}

const ceremonyColumns = `id, name, purpose, participants, inputs, outputs, template_link, created_at, updated_at`

func scanCeremony(row pgx.Row) (*model.Ceremony, error) {
	c := &model.Ceremony{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Purpose, &c.Participants, &c.Inputs, &c.Outputs,
		&c.TemplateLink, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List возвращает все церемонии, отсортированные по имени.
func (r *ceremonyRepo) List(ctx context.Context) ([]model.Ceremony, error) {
	query := `SELECT ` + ceremonyColumns + ` FROM ceremonies ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка церемоний: %w", err)
	}
	defer rows.Close()

	var ceremonies []model.Ceremony
	for rows.Next() {
		c, err := scanCeremony(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования церемонии: %w", err)
		}
		ceremonies = append(ceremonies, *c)
	}
	return ceremonies, rows.Err()
}

// Get возвращает церемонию по id.
func (r *ceremonyRepo) Get(ctx context.Context, id string) (*model.Ceremony, error) {
	query := `SELECT ` + ceremonyColumns + ` FROM ceremonies WHERE id = $1`

	c, err := scanCeremony(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения церемонии %s: %w", id, err)
	}
	return c, nil
}

// Update обновляет существующую церемонию и возвращает сохранённую строку.
func (r *ceremonyRepo) Update(ctx context.Context, c *model.Ceremony) (*model.Ceremony, error) {
	query := `
		UPDATE ceremonies
		SET name = $2,
			purpose = $3,
			participants = $4,
			inputs = $5,
			outputs = $6,
			template_link = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + ceremonyColumns

	updated, err := scanCeremony(r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.Purpose, c.Participants, c.Inputs, c.Outputs, c.TemplateLink,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления церемонии %s: %w", c.ID, err)
	}
	return updated, nil
}
