// session.go — обработчик /api/session.
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
	"github.com/pmoffice/framework-portal/internal/api/middleware"
)

// sessionUser — данные пользователя в ответе /api/session.
type sessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// sessionResponse — ответ GET /api/session.
type sessionResponse struct {
	User    sessionUser `json:"user"`
	Expires string      `json:"expires"`
}

// GetSession — GET /api/session.
// Возвращает данные текущей сессии для гидратации фронтенда.
// Доступ: любая сессия.
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User: sessionUser{
			ID:    session.UserID,
			Email: session.Email,
			Name:  session.Name,
			Role:  session.Role,
		},
		Expires: time.Unix(session.ExpiresAt, 0).UTC().Format(time.RFC3339),
	})
}
