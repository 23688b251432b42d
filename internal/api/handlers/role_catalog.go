// role_catalog.go — обработчик /api/role-catalog.
package handlers

import (
	"net/http"

	"github.com/pmoffice/framework-portal/internal/domain/roles"
)

// GetRoleCatalog — GET /api/role-catalog.
// Возвращает фиксированный каталог ролей фреймворка (ключ, название,
// категория, иконка) для форм назначения.
// Доступ: любая сессия.
func (h *APIHandler) GetRoleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, roles.Catalog())
}
