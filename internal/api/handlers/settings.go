// settings.go — обработчики /api/settings/current-phase.
// Единственная запись project_settings хранит указатель на текущую
// фазу проекта; null означает «фаза не выбрана».
package handlers

import (
	"net/http"
)

// currentPhaseRequest — тело POST /api/settings/current-phase.
// PhaseId == null сбрасывает текущую фазу.
type currentPhaseRequest struct {
	PhaseID *string `json:"phaseId"`
}

// GetCurrentPhase — GET /api/settings/current-phase.
// Возвращает текущую фазу с данными о последнем изменении.
// Доступ: любая сессия.
func (h *APIHandler) GetCurrentPhase(w http.ResponseWriter, r *http.Request) {
	view, err := h.settings.GetCurrent(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetCurrentPhase — POST /api/settings/current-phase.
// Устанавливает или сбрасывает текущую фазу. Несуществующая фаза —
// 404, состояние не меняется.
// Доступ: ADMIN.
func (h *APIHandler) SetCurrentPhase(w http.ResponseWriter, r *http.Request) {
	session := h.requireAdmin(w, r)
	if session == nil {
		return
	}

	var req currentPhaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.settings.SetCurrent(r.Context(), req.PhaseID, session.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
