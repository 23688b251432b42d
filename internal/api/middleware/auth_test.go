package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pmoffice/framework-portal/internal/ui/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newGate возвращает шлюз и менеджер сессий для подписи тестовых cookie.
func newGate(t *testing.T) (*SessionAuth, *auth.SessionManager) {
	t.Helper()
	sm, err := auth.NewSessionManager("middleware-test-key", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}
	return NewSessionAuth(sm, testLogger()), sm
}

// okHandler отвечает 200 и отдаёт роль из контекста (если сессия есть).
func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := ""
		if s := SessionFromContext(r.Context()); s != nil {
			role = s.Role
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(role))
	})
}

// request выполняет запрос через шлюз, опционально с session cookie.
func request(t *testing.T, gate *SessionAuth, sm *auth.SessionManager, method, path string, session *auth.SessionData) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if session != nil {
		encrypted, err := sm.Encrypt(session)
		if err != nil {
			t.Fatalf("Ошибка шифрования сессии: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: encrypted})
	}

	w := httptest.NewRecorder()
	gate.Middleware()(okHandler()).ServeHTTP(w, req)
	return w
}

func userSession() *auth.SessionData {
	return &auth.SessionData{
		UserID:    "user-1",
		Email:     "user@company.com",
		Role:      "USER",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func adminSession() *auth.SessionData {
	return &auth.SessionData{
		UserID:    "user-2",
		Email:     "admin@company.com",
		Role:      "ADMIN",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
}

func TestSessionAuth_PublicPaths(t *testing.T) {
	gate, sm := newGate(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth/signin"},
		{http.MethodPost, "/auth/signout"},
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/metrics"},
		{http.MethodGet, "/favicon.ico"},
		{http.MethodGet, "/static/app.css"},
		{http.MethodGet, "/api/role-assignments"},
	}

	for _, tt := range tests {
		w := request(t, gate, sm, tt.method, tt.path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s %s без сессии: статус %d, ожидается 200", tt.method, tt.path, w.Code)
		}
	}
}

// Публичен только GET: мутации списка назначений требуют сессию.
func TestSessionAuth_RoleAssignmentsMutationRequiresSession(t *testing.T) {
	gate, sm := newGate(t)

	w := request(t, gate, sm, http.MethodPost, "/api/role-assignments", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/role-assignments без сессии: статус %d, ожидается 401", w.Code)
	}
}

func TestSessionAuth_APIWithoutSession(t *testing.T) {
	gate, sm := newGate(t)

	w := request(t, gate, sm, http.MethodGet, "/api/phases", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/phases без сессии: статус %d, ожидается 401", w.Code)
	}

	// Тело ответа — {"error": "Unauthorized"}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Ошибка парсинга тела ответа: %v", err)
	}
	if body.Error != "Unauthorized" {
		t.Errorf("error = %q, ожидается Unauthorized", body.Error)
	}
}

// Браузерная навигация без сессии — redirect на страницу входа.
func TestSessionAuth_UIRedirect(t *testing.T) {
	gate, sm := newGate(t)

	w := request(t, gate, sm, http.MethodGet, "/", nil)
	if w.Code != http.StatusFound {
		t.Fatalf("GET / без сессии: статус %d, ожидается 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/auth/signin" {
		t.Errorf("Location = %q, ожидается /auth/signin", loc)
	}
}

func TestSessionAuth_AdminPaths(t *testing.T) {
	gate, sm := newGate(t)

	// USER на admin API — 401
	w := request(t, gate, sm, http.MethodGet, "/api/admin/domains", userSession())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("USER на /api/admin/domains: статус %d, ожидается 401", w.Code)
	}

	// USER на admin UI — redirect
	w = request(t, gate, sm, http.MethodGet, "/admin/phases", userSession())
	if w.Code != http.StatusFound {
		t.Errorf("USER на /admin/phases: статус %d, ожидается 302", w.Code)
	}

	// ADMIN проходит
	w = request(t, gate, sm, http.MethodGet, "/api/admin/domains", adminSession())
	if w.Code != http.StatusOK {
		t.Errorf("ADMIN на /api/admin/domains: статус %d, ожидается 200", w.Code)
	}
	if w.Body.String() != "ADMIN" {
		t.Errorf("роль в контексте = %q, ожидается ADMIN", w.Body.String())
	}
}

func TestSessionAuth_SessionInContext(t *testing.T) {
	gate, sm := newGate(t)

	w := request(t, gate, sm, http.MethodGet, "/api/phases", userSession())
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/phases с сессией: статус %d, ожидается 200", w.Code)
	}
	if w.Body.String() != "USER" {
		t.Errorf("роль в контексте = %q, ожидается USER", w.Body.String())
	}
}

// Истёкшая или повреждённая сессия приравнивается к отсутствующей.
func TestSessionAuth_ExpiredAndInvalidSessions(t *testing.T) {
	gate, sm := newGate(t)

	expired := userSession()
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	w := request(t, gate, sm, http.MethodGet, "/api/phases", expired)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("истёкшая сессия: статус %d, ожидается 401", w.Code)
	}

	// Cookie, зашифрованный чужим ключом
	otherSM, err := auth.NewSessionManager("another-key", false)
	if err != nil {
		t.Fatalf("Ошибка создания SessionManager: %v", err)
	}
	w = request(t, gate, otherSM, http.MethodGet, "/api/phases", userSession())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("сессия с чужим ключом: статус %d, ожидается 401", w.Code)
	}
}
