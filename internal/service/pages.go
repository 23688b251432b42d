// pages.go — сервис страниц портала.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

// PageService — бизнес-логика работы со страницами.
type PageService struct {
	repo   repository.PageRepository
	logger *slog.Logger
}

// NewPageService создаёт сервис страниц.
func NewPageService(repo repository.PageRepository, logger *slog.Logger) *PageService {
	return &PageService{
		repo:   repo,
		logger: logger.With(slog.String("service", "pages")),
	}
}

// List возвращает все страницы по возрастанию order.
func (s *PageService) List(ctx context.Context) ([]model.Page, error) {
	pages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка страниц: %w", err)
	}
	return pages, nil
}

// GetBySlug возвращает страницу по slug.
func (s *PageService) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения страницы %q: %w", slug, err)
	}
	return p, nil
}

// Update обновляет страницу. id, slug и title обязательны.
func (s *PageService) Update(ctx context.Context, p *model.Page) (*model.Page, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: не указан id страницы", ErrValidation)
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("%w: не указан slug страницы", ErrValidation)
	}
	if p.Title == "" {
		return nil, fmt.Errorf("%w: не указан заголовок страницы", ErrValidation)
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: slug %q уже занят", ErrConflict, p.Slug)
		}
		return nil, fmt.Errorf("ошибка обновления страницы %s: %w", p.ID, err)
	}

	s.logger.Info("Страница обновлена",
		slog.String("id", updated.ID),
		slog.String("slug", updated.Slug),
	)
	return updated, nil
}
