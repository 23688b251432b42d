// ceremonies.go — обработчики /api/ceremonies.
package handlers

import (
	"net/http"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// GetCeremonies — GET /api/ceremonies.
// Возвращает все церемонии управления проектом.
// Доступ: любая сессия.
func (h *APIHandler) GetCeremonies(w http.ResponseWriter, r *http.Request) {
	ceremonies, err := h.ceremonies.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ceremonies)
}

// UpdateCeremony — POST /api/ceremonies.
// Обновляет существующую церемонию.
// Доступ: ADMIN.
func (h *APIHandler) UpdateCeremony(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var ceremony model.Ceremony
	if !decodeJSON(w, r, &ceremony) {
		return
	}

	updated, err := h.ceremonies.Update(r.Context(), &ceremony)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
