// settings.go — трекер текущей фазы проекта (singleton-настройки).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// SettingsService — бизнес-логика текущей фазы проекта.
// Состояние — Unset или Set(phaseID); переходы только через SetCurrent,
// автоматического продвижения по фазам нет.
type SettingsService struct {
	settings repository.SettingsRepository
	phases   repository.PhaseRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewSettingsService создаёт сервис настроек проекта.
func NewSettingsService(
	settings repository.SettingsRepository,
	phases repository.PhaseRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *SettingsService {
	return &SettingsService{
		settings: settings,
		phases:   phases,
		users:    users,
		logger:   logger.With(slog.String("service", "settings")),
	}
}

// GetCurrent возвращает текущую фазу проекта.
// Отсутствие строки настроек — валидное состояние: возвращаются
// все-null поля, а не ошибка.
func (s *SettingsService) GetCurrent(ctx context.Context) (*model.CurrentPhaseView, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.CurrentPhaseView{}, nil
		}
		return nil, fmt.Errorf("ошибка получения настроек проекта: %w", err)
	}

	view := &model.CurrentPhaseView{
		CurrentPhaseID: settings.CurrentPhaseID,
		UpdatedAt:      &settings.UpdatedAt,
	}

	if settings.CurrentPhaseID != nil {
		phase, err := s.phases.Get(ctx, *settings.CurrentPhaseID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("ошибка получения текущей фазы: %w", err)
		}
		view.CurrentPhase = phase
	}

	if settings.UpdatedByID != nil {
		// Имя редактора — best effort: удалённый пользователь не ломает ответ
		if user, err := s.users.Get(ctx, *settings.UpdatedByID); err == nil {
			view.UpdatedBy = &user.Name
		}
	}

	return view, nil
}

// SetCurrent устанавливает текущую фазу (или сбрасывает при nil).
// Несуществующая фаза — ErrNotFound, прежнее состояние не меняется.
// updatedById заполняется только если пользователь из сессии существует
// в таблице users; его отсутствие не является ошибкой.
func (s *SettingsService) SetCurrent(ctx context.Context, phaseID *string, actorEmail string) (*model.CurrentPhaseView, error) {
	if phaseID != nil {
		if _, err := s.phases.Get(ctx, *phaseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: фаза %s не существует", ErrNotFound, *phaseID)
			}
			return nil, fmt.Errorf("ошибка проверки фазы %s: %w", *phaseID, err)
		}
	}

	var updatedByID *string
	if actorEmail != "" {
		if user, err := s.users.GetByEmail(ctx, actorEmail); err == nil {
			updatedByID = &user.ID
		}
	}

	if _, err := s.settings.Set(ctx, phaseID, updatedByID); err != nil {
		return nil, fmt.Errorf("ошибка сохранения текущей фазы: %w", err)
	}

	if phaseID != nil {
		s.logger.Info("Текущая фаза установлена",
			slog.String("phase_id", *phaseID),
			slog.String("actor", actorEmail),
		)
	} else {
		s.logger.Info("Текущая фаза сброшена", slog.String("actor", actorEmail))
	}

	return s.GetCurrent(ctx)
}
