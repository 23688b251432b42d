// tools.go — обработчики /api/tools.
// Каталог инструментов проектного офиса: ClickUp, Xero, DocuWare и т.п.
package handlers

import (
	"net/http"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// GetTools — GET /api/tools.
// Возвращает все инструменты, сгруппированные сортировкой по домену.
// Доступ: любая сессия.
func (h *APIHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tools)
}

// UpsertTool — POST /api/tools.
// Создаёт инструмент (пустой id) или обновляет существующий.
// Доступ: ADMIN.
func (h *APIHandler) UpsertTool(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var tool model.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}

	saved, err := h.tools.Upsert(r.Context(), &tool)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteTool — DELETE /api/tools?id=<id>.
// Доступ: ADMIN.
func (h *APIHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		apierrors.ValidationError(w, "Параметр id обязателен")
		return
	}

	if err := h.tools.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
