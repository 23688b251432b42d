// handler.go — основной обработчик API портала.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
	"github.com/pmoffice/framework-portal/internal/api/middleware"
	"github.com/pmoffice/framework-portal/internal/domain/rbac"
	"github.com/pmoffice/framework-portal/internal/service"
	"github.com/pmoffice/framework-portal/internal/ui/auth"
)

// APIHandler — основной обработчик API портала.
type APIHandler struct {
	phases      *service.PhaseService
	ceremonies  *service.CeremonyService
	tools       *service.ToolService
	pages       *service.PageService
	assignments *service.RoleAssignmentService
	settings    *service.SettingsService
	domains     *service.DomainService
	logger      *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	phases *service.PhaseService,
	ceremonies *service.CeremonyService,
	tools *service.ToolService,
	pages *service.PageService,
	assignments *service.RoleAssignmentService,
	settings *service.SettingsService,
	domains *service.DomainService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		phases:      phases,
		ceremonies:  ceremonies,
		tools:       tools,
		pages:       pages,
		assignments: assignments,
		settings:    settings,
		domains:     domains,
		logger:      logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// successBody — тело ответа для операций удаления.
type successBody struct {
	Success bool `json:"success"`
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON разбирает JSON-тело запроса в dst.
// При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// requireAdmin проверяет роль ADMIN в сессии из контекста.
// Шлюз уже отфильтровал анонимные запросы, но мутации дополнительно
// перепроверяют роль сами: правило шлюза для не-admin путей
// пропускает любую сессию.
func (h *APIHandler) requireAdmin(w http.ResponseWriter, r *http.Request) *auth.SessionData {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || !rbac.IsAdmin(session.Role) {
		apierrors.Unauthorized(w)
		return nil
	}
	return session
}

// writeServiceError маппит ошибки сервисного слоя на HTTP-статусы.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrAccessDenied):
		apierrors.Unauthorized(w)
	default:
		h.logger.Error("Внутренняя ошибка обработки запроса", "error", err)
		apierrors.InternalError(w)
	}
}
