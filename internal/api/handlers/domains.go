// domains.go — обработчики /api/admin/domains.
// Управление allow-list почтовых доменов, определяющих доступ и роль
// при входе через Google.
package handlers

import (
	"net/http"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
)

// createDomainRequest — тело POST /api/admin/domains.
type createDomainRequest struct {
	Domain      string `json:"domain"`
	AccessLevel string `json:"accessLevel"`
}

// GetDomains — GET /api/admin/domains.
// Доступ: ADMIN (обеспечивается шлюзом по префиксу /api/admin/).
func (h *APIHandler) GetDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domains.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

// CreateDomain — POST /api/admin/domains.
// Домен нормализуется к нижнему регистру; дубликат — 409.
// Доступ: ADMIN.
func (h *APIHandler) CreateDomain(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var req createDomainRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.domains.Create(r.Context(), req.Domain, req.AccessLevel)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// DeleteDomain — DELETE /api/admin/domains?id=<id>.
// Доступ: ADMIN.
func (h *APIHandler) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		apierrors.ValidationError(w, "Параметр id обязателен")
		return
	}

	if err := h.domains.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}
