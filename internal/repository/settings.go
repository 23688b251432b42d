package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// SettingsRepository — интерфейс для singleton-таблицы project_settings.
type SettingsRepository interface {
	// Get возвращает единственную строку настроек. Если её нет — ErrNotFound
	// (отсутствие строки — валидное состояние, обрабатывается сервисом).
	Get(ctx context.Context) (*model.ProjectSettings, error)
	// Set создаёт или обновляет singleton-строку атомарно
	// (upsert по фиксированному ключу, без проверки существования).
	Set(ctx context.Context, currentPhaseID, updatedByID *string) (*model.ProjectSettings, error)
}

type settingsRepo struct {
	db DBTX
}

// NewSettingsRepository создаёт репозиторий настроек проекта.
func NewSettingsRepository(db DBTX) SettingsRepository {
	return &settingsRepo{db: db}
}

// Get возвращает singleton-строку настроек.
func (r *settingsRepo) Get(ctx context.Context) (*model.ProjectSettings, error) {
	query := `
		SELECT id, current_phase_id, updated_by_id, updated_at
		FROM project_settings
		WHERE id = $1`

	s := &model.ProjectSettings{}
	err := r.db.QueryRow(ctx, query, model.SettingsID).Scan(
		&s.ID, &s.CurrentPhaseID, &s.UpdatedByID, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения настроек проекта: %w", err)
	}
	return s, nil
}

// Set выполняет upsert singleton-строки по фиксированному ключу.
func (r *settingsRepo) Set(ctx context.Context, currentPhaseID, updatedByID *string) (*model.ProjectSettings, error) {
	query := `
		INSERT INTO project_settings (id, current_phase_id, updated_by_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET current_phase_id = EXCLUDED.current_phase_id,
			updated_by_id = EXCLUDED.updated_by_id,
			updated_at = NOW()
		RETURNING id, current_phase_id, updated_by_id, updated_at`

	s := &model.ProjectSettings{}
	err := r.db.QueryRow(ctx, query, model.SettingsID, currentPhaseID, updatedByID).Scan(
		&s.ID, &s.CurrentPhaseID, &s.UpdatedByID, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения настроек проекта: %w", err)
	}
	return s, nil
}
