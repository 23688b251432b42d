// phases.go — сервис фаз жизненного цикла проекта.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// PhaseService — бизнес-логика работы с фазами.
type PhaseService struct {
	repo   repository.PhaseRepository
	logger *slog.Logger
}

// NewPhaseService создаёт сервис фаз.
func NewPhaseService(repo repository.PhaseRepository, logger *slog.Logger) *PhaseService {
	return &PhaseService{
		repo:   repo,
		logger: logger.With(slog.String("service", "phases")),
	}
}

// List возвращает фазы по возрастанию order с joined-церемониями.
func (s *PhaseService) List(ctx context.Context) ([]model.Phase, error) {
	phases, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка фаз: %w", err)
	}
	return phases, nil
}

// Get возвращает фазу по id.
func (s *PhaseService) Get(ctx context.Context, id string) (*model.Phase, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения фазы %s: %w", id, err)
	}
	return p, nil
}

// Update обновляет фазу. id и name обязательны.
// Значение order должно оставаться уникальным: попытка занять чужой
// порядковый номер отклоняется с ErrConflict.
func (s *PhaseService) Update(ctx context.Context, p *model.Phase) (*model.Phase, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: не указан id фазы", ErrValidation)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: не указано имя фазы", ErrValidation)
	}
	if p.Order < 0 {
		return nil, fmt.Errorf("%w: order не может быть отрицательным", ErrValidation)
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: порядковый номер %d уже занят другой фазой", ErrConflict, p.Order)
		}
		return nil, fmt.Errorf("ошибка обновления фазы %s: %w", p.ID, err)
	}

	s.logger.Info("Фаза обновлена",
		slog.String("id", updated.ID),
		slog.Int("order", updated.Order),
	)
	return updated, nil
}
