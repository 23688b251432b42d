// role_assignments.go — обработчики /api/role-assignments.
// Назначения людей на роли фреймворка. Чтение публично (контактный
// справочник), мутации — только ADMIN.
package handlers

import (
	"net/http"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// GetRoleAssignments — GET /api/role-assignments.
// Возвращает все назначения по алфавиту имени роли.
// Доступ: публичный (без сессии).
func (h *APIHandler) GetRoleAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// UpsertRoleAssignment — POST /api/role-assignments.
// Создаёт или перезаписывает назначение по roleKey.
// Доступ: ADMIN.
func (h *APIHandler) UpsertRoleAssignment(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var assignment model.RoleAssignment
	if !decodeJSON(w, r, &assignment) {
		return
	}

	saved, err := h.assignments.Upsert(r.Context(), &assignment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteRoleAssignment — DELETE /api/role-assignments?roleKey=<key>.
// Доступ: ADMIN.
func (h *APIHandler) DeleteRoleAssignment(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	roleKey := r.URL.Query().Get("roleKey")
	if roleKey == "" {
		apierrors.ValidationError(w, "Параметр roleKey обязателен")
		return
	}

	if err := h.assignments.Delete(r.Context(), roleKey); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
