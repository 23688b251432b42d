// auth.go — авторизационный шлюз портала.
// Классифицирует каждый запрос: публичные маршруты пропускаются,
// admin-маршруты требуют роль ADMIN, остальные — валидную сессию.
// API-маршруты получают 401 JSON, браузерные — redirect на /auth/signin.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pmoffice/framework-portal/internal/api/errors"
	"github.com/pmoffice/framework-portal/internal/domain/rbac"
	"github.com/pmoffice/framework-portal/internal/ui/auth"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeySession — сессия пользователя в контексте запроса.
const ContextKeySession contextKey = "session"

// SessionAuth — middleware авторизации на основе шифрованной cookie-сессии.
type SessionAuth struct {
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewSessionAuth создаёт авторизационный шлюз.
func NewSessionAuth(sessions *auth.SessionManager, logger *slog.Logger) *SessionAuth {
	return &SessionAuth{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_auth")),
	}
}

// Middleware возвращает HTTP middleware, применяющий правила доступа.
// Порядок проверки правил фиксирован:
//  1. /auth/* — всегда доступны (иначе вход недостижим);
//  2. служебные маршруты (health, metrics, статика) — доступны;
//  3. GET /api/role-assignments — публичное чтение;
//  4. /admin/* и /api/admin/* — только роль ADMIN;
//  5. всё остальное — любая валидная сессия.
func (a *SessionAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if isPublicPath(r.Method, path) {
				next.ServeHTTP(w, r)
				return
			}

			session := a.sessionFromRequest(r)

			if isAdminPath(path) {
				if session == nil {
					a.reject(w, r)
					return
				}
				if !rbac.IsAdmin(session.Role) {
					a.logger.Warn("Доступ к admin-маршруту без роли ADMIN",
						slog.String("email", session.Email),
						slog.String("path", path),
					)
					a.reject(w, r)
					return
				}
			} else if session == nil {
				a.reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromRequest извлекает сессию из cookie.
// Невалидная или истёкшая сессия приравнивается к её отсутствию.
func (a *SessionAuth) sessionFromRequest(r *http.Request) *auth.SessionData {
	session, err := a.sessions.GetSessionFromRequest(r)
	if err != nil {
		a.logger.Debug("Невалидная session cookie",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr),
		)
		return nil
	}
	if session == nil || session.IsExpired() {
		return nil
	}
	return session
}

// reject отклоняет запрос: API-клиентам — 401 JSON,
// браузерной навигации — redirect на страницу входа.
func (a *SessionAuth) reject(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		apierrors.Unauthorized(w)
		return
	}
	http.Redirect(w, r, "/auth/signin", http.StatusFound)
}

// isPublicPath определяет маршруты, доступные без сессии.
func isPublicPath(method, path string) bool {
	if strings.HasPrefix(path, "/auth/") {
		return true
	}
	if strings.HasPrefix(path, "/health/") || path == "/metrics" {
		return true
	}
	if path == "/favicon.ico" || strings.HasPrefix(path, "/static/") {
		return true
	}
	// Список назначений ролей публичен только на чтение
	if method == http.MethodGet && path == "/api/role-assignments" {
		return true
	}
	return false
}

// isAdminPath определяет маршруты, требующие роль ADMIN.
func isAdminPath(path string) bool {
	return path == "/admin" || strings.HasPrefix(path, "/admin/") ||
		strings.HasPrefix(path, "/api/admin/")
}

// isAPIPath определяет API-маршруты (ответ об ошибке — JSON, не redirect).
func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// --- Context helpers ---

// SessionFromContext извлекает сессию из контекста запроса.
// Возвращает nil, если сессия не найдена (анонимный публичный запрос).
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, _ := ctx.Value(ContextKeySession).(*auth.SessionData)
	return session
}
