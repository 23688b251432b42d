// content.go — обработчики /api/content.
// Страницы портала с JSON-содержимым, редактируемым администратором.
package handlers

import (
	"net/http"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// GetContent — GET /api/content.
// Возвращает все страницы портала по порядку навигации.
// Доступ: любая сессия.
func (h *APIHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	pages, err := h.pages.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// UpdateContent — POST /api/content.
// Обновляет страницу: заголовок, slug, содержимое, видимость.
// Доступ: ADMIN.
func (h *APIHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var page model.Page
	if !decodeJSON(w, r, &page) {
		return
	}

	updated, err := h.pages.Update(r.Context(), &page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
