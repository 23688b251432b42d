// Пакет handlers — браузерные обработчики аутентификации портала.
// auth.go — вход через Google OIDC (Authorization Code + PKCE),
// выход и страница отказа в доступе.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/pmoffice/framework-portal/internal/service"
	"github.com/pmoffice/framework-portal/internal/ui/auth"
)

// Имя cookie для хранения PKCE state (code_verifier + state).
const stateCookieName = "fp_auth_state"

// stateCookieMaxAge — максимальный возраст state cookie (5 минут).
const stateCookieMaxAge = 5 * 60

// AuthHandler — обработчики аутентификации портала.
type AuthHandler struct {
	oidcClient     *auth.OIDCClient
	verifier       *auth.IDTokenVerifier
	sessionManager *auth.SessionManager
	identity       *service.IdentityService
	// redirectURL — callback URI, зарегистрированный в Google Console.
	redirectURL string
	// secureCookie — использовать Secure flag для state cookie.
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler создаёт новый AuthHandler.
func NewAuthHandler(
	oidcClient *auth.OIDCClient,
	verifier *auth.IDTokenVerifier,
	sessionManager *auth.SessionManager,
	identity *service.IdentityService,
	redirectURL string,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		oidcClient:     oidcClient,
		verifier:       verifier,
		sessionManager: sessionManager,
		identity:       identity,
		redirectURL:    redirectURL,
		secureCookie:   secureCookie,
		logger:         logger.With(slog.String("component", "ui_auth")),
	}
}

// stateData — данные, сохраняемые в state cookie на время auth flow.
type stateData struct {
	// State — CSRF state parameter.
	State string `json:"state"`
	// CodeVerifier — PKCE code_verifier для обмена code → tokens.
	CodeVerifier string `json:"code_verifier"`
}

// HandleSignIn — GET /auth/signin
// Генерирует PKCE и state, сохраняет в short-lived cookie,
// redirect на Google authorize endpoint.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	// Генерируем PKCE
	pkce, err := auth.GeneratePKCE()
	if err != nil {
		h.logger.Error("Ошибка генерации PKCE", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Генерируем state (CSRF-защита)
	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("Ошибка генерации state", slog.String("error", err.Error()))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Сохраняем state + code_verifier в short-lived cookie
	sd := &stateData{
		State:        state,
		CodeVerifier: pkce.CodeVerifier,
	}
	sdJSON, _ := json.Marshal(sd)
	sdEncoded := base64.URLEncoding.EncodeToString(sdJSON)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    sdEncoded,
		Path:     "/auth",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	// Redirect на Google authorize endpoint
	authorizeURL := h.oidcClient.AuthorizeURL(h.redirectURL, state, pkce.CodeChallenge)

	h.logger.Debug("Redirect на Google login",
		slog.String("authorize_url", authorizeURL),
	)

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback — GET /auth/callback
// Обменивает authorization code на tokens, проверяет ID-токен,
// регистрирует вход и создаёт session cookie.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	// 1. Проверяем ошибку от Google (например, отказ пользователя)
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.logger.Warn("Провайдер вернул ошибку авторизации",
			slog.String("error", errCode),
		)
		http.Redirect(w, r, "/auth/error?error=OAuthCallback", http.StatusFound)
		return
	}

	// 2. Извлекаем authorization code и state
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Отсутствует code или state", http.StatusBadRequest)
		return
	}

	// 3. Извлекаем и валидируем state cookie
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.logger.Warn("State cookie отсутствует", slog.String("error", err.Error()))
		http.Error(w, "Сессия авторизации истекла, попробуйте ещё раз", http.StatusBadRequest)
		return
	}

	sdJSON, err := base64.URLEncoding.DecodeString(stateCookie.Value)
	if err != nil {
		h.logger.Warn("Ошибка декодирования state cookie", slog.String("error", err.Error()))
		http.Error(w, "Некорректный state cookie", http.StatusBadRequest)
		return
	}

	var sd stateData
	if err := json.Unmarshal(sdJSON, &sd); err != nil {
		h.logger.Warn("Ошибка парсинга state cookie", slog.String("error", err.Error()))
		http.Error(w, "Некорректный state cookie", http.StatusBadRequest)
		return
	}

	// 4. Валидируем state (CSRF-защита)
	if sd.State != state {
		h.logger.Warn("State mismatch (возможная CSRF атака)",
			slog.String("expected", sd.State),
			slog.String("received", state),
		)
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	// 5. Удаляем state cookie (одноразовый)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	// 6. Обмениваем code на tokens
	tokenResp, err := h.oidcClient.ExchangeCode(r.Context(), code, h.redirectURL, sd.CodeVerifier)
	if err != nil {
		h.logger.Error("Ошибка обмена code на tokens",
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, "/auth/error?error=OAuthCallback", http.StatusFound)
		return
	}

	// 7. Проверяем подпись и claims ID-токена
	claims, err := h.verifier.Verify(r.Context(), tokenResp.IDToken)
	if err != nil {
		h.logger.Error("Ошибка проверки ID-токена",
			slog.String("error", err.Error()),
		)
		http.Redirect(w, r, "/auth/error?error=OAuthCallback", http.StatusFound)
		return
	}

	// 8. Проверяем право на вход и создаём/обновляем пользователя.
	// Email вне allow-list'ов — отказ без создания записи.
	user, err := h.identity.SignIn(r.Context(), claims.Email, claims.Name)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			http.Redirect(w, r, "/auth/error?error=AccessDenied", http.StatusFound)
			return
		}
		h.logger.Error("Ошибка регистрации входа",
			slog.String("email", claims.Email),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка аутентификации", http.StatusInternalServerError)
		return
	}

	// 9. Устанавливаем session cookie с ролью, зафиксированной на момент входа
	sessionData := &auth.SessionData{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(auth.SessionCookieMaxAge * time.Second).Unix(),
	}
	if err := h.sessionManager.SetSessionCookie(w, sessionData); err != nil {
		h.logger.Error("Ошибка установки session cookie",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Ошибка создания сессии", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Пользователь аутентифицирован",
		slog.String("email", user.Email),
		slog.String("role", user.Role),
	)

	// 10. Redirect на главную страницу портала
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleSignOut — POST /auth/signout
// Очищает session cookie и возвращает на страницу входа.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.sessionManager.ClearSessionCookie(w)

	h.logger.Info("Пользователь выполняет выход")

	http.Redirect(w, r, "/auth/signin", http.StatusFound)
}

// errorPageTemplate — минимальная страница отказа в доступе.
var errorPageTemplate = template.Must(template.New("auth_error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign-in error</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p><a href="/auth/signin">Try again</a></p>
</body>
</html>
`))

// HandleError — GET /auth/error?error=<code>
// Страница ошибки входа: AccessDenied для email вне allow-list'ов,
// OAuthCallback для сбоев обмена с провайдером.
func (h *AuthHandler) HandleError(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")

	title := "Sign-in error"
	message := "Something went wrong during sign-in. Please try again."
	if code == "AccessDenied" {
		title = "Access denied"
		message = "Your account is not allowed to access this portal. Contact the project office to request access."
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := errorPageTemplate.Execute(w, struct {
		Title   string
		Message string
	}{title, message}); err != nil {
		h.logger.Error("Ошибка рендеринга страницы", slog.String("error", err.Error()))
	}
}
