// tools.go — сервис инструментов проектной работы.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// ToolService — бизнес-логика работы с инструментами.
type ToolService struct {
	repo   repository.ToolRepository
	logger *slog.Logger
}

// NewToolService создаёт сервис инструментов.
func NewToolService(repo repository.ToolRepository, logger *slog.Logger) *ToolService {
	return &ToolService{
		repo:   repo,
		logger: logger.With(slog.String("service", "tools")),
	}
}

// List возвращает инструменты, сгруппированные по домену.
func (s *ToolService) List(ctx context.Context) ([]model.Tool, error) {
	tools, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка инструментов: %w", err)
	}
	return tools, nil
}

// Upsert создаёт инструмент (если id пустой) или обновляет существующий.
// domain и name обязательны.
func (s *ToolService) Upsert(ctx context.Context, t *model.Tool) (*model.Tool, error) {
	if t.Domain == "" {
		return nil, fmt.Errorf("%w: не указан домен инструмента", ErrValidation)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("%w: не указано имя инструмента", ErrValidation)
	}

	saved, err := s.repo.Upsert(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения инструмента: %w", err)
	}

	s.logger.Info("Инструмент сохранён",
		slog.String("id", saved.ID),
		slog.String("name", saved.Name),
	)
	return saved, nil
}

// Delete удаляет инструмент по id.
func (s *ToolService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: не указан id инструмента", ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка удаления инструмента %s: %w", id, err)
	}

	s.logger.Info("Инструмент удалён", slog.String("id", id))
	return nil
}
