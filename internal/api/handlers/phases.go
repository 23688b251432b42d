// phases.go — обработчики /api/phases.
// Чтение фаз жизненного цикла (с привязанными церемониями) и их
// редактирование администратором.
package handlers

import (
	"net/http"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// GetPhases — GET /api/phases.
// Возвращает все фазы по возрастанию порядкового номера,
// с привязанной церемонией (если есть).
// Доступ: любая сессия.
func (h *APIHandler) GetPhases(w http.ResponseWriter, r *http.Request) {
	phases, err := h.phases.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phases)
}

// UpdatePhase — POST /api/phases.
// Обновляет фазу целиком; порядковый номер проверяется на конфликт
// с другими фазами.
// Доступ: ADMIN.
func (h *APIHandler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var phase model.Phase
	if !decodeJSON(w, r, &phase) {
		return
	}

	updated, err := h.phases.Update(r.Context(), &phase)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
