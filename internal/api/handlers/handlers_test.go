package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pmoffice/framework-portal/internal/api/middleware"
	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
	"github.com/pmoffice/framework-portal/internal/service"
	"github.com/pmoffice/framework-portal/internal/ui/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- In-memory репозитории для тестов обработчиков ---

type fakeToolRepo struct {
	tools map[string]model.Tool
	next  int
}

func newFakeToolRepo() *fakeToolRepo {
	return &fakeToolRepo{tools: map[string]model.Tool{}}
}

func (r *fakeToolRepo) List(_ context.Context) ([]model.Tool, error) {
	out := make([]model.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeToolRepo) Get(_ context.Context, id string) (*model.Tool, error) {
	t, ok := r.tools[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *fakeToolRepo) Upsert(_ context.Context, t *model.Tool) (*model.Tool, error) {
	if t.ID == "" {
		r.next++
		t.ID = fmt.Sprintf("tool-%d", r.next)
	}
	r.tools[t.ID] = *t
	return t, nil
}

func (r *fakeToolRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tools[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tools, id)
	return nil
}

type fakeAssignmentRepo struct {
	byKey map[string]model.RoleAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byKey: map[string]model.RoleAssignment{}}
}

func (r *fakeAssignmentRepo) List(_ context.Context) ([]model.RoleAssignment, error) {
	out := make([]model.RoleAssignment, 0, len(r.byKey))
	for _, a := range r.byKey {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) GetByRoleKey(_ context.Context, roleKey string) (*model.RoleAssignment, error) {
	a, ok := r.byKey[roleKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAssignmentRepo) Upsert(_ context.Context, a *model.RoleAssignment) (*model.RoleAssignment, error) {
	if existing, ok := r.byKey[a.RoleKey]; ok {
		a.ID = existing.ID
	} else if a.ID == "" {
		a.ID = "ra-" + a.RoleKey
	}
	r.byKey[a.RoleKey] = *a
	return a, nil
}

func (r *fakeAssignmentRepo) DeleteByRoleKey(_ context.Context, roleKey string) error {
	if _, ok := r.byKey[roleKey]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byKey, roleKey)
	return nil
}

// newTestHandler собирает APIHandler с in-memory хранилищами.
func newTestHandler() *APIHandler {
	logger := testLogger()
	return NewAPIHandler(
		nil,
		nil,
		service.NewToolService(newFakeToolRepo(), logger),
		nil,
		service.NewRoleAssignmentService(newFakeAssignmentRepo(), logger),
		nil,
		nil,
		logger,
	)
}

// withSession кладёт сессию с указанной ролью в контекст запроса.
func withSession(r *http.Request, role string) *http.Request {
	session := &auth.SessionData{
		UserID:    "user-1",
		Email:     "user@company.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}
	ctx := context.WithValue(r.Context(), middleware.ContextKeySession, session)
	return r.WithContext(ctx)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Ошибка парсинга тела ответа: %v", err)
	}
	return body.Error
}

// Мутация от USER — 401 независимо от шлюза.
func TestUpsertTool_RequiresAdmin(t *testing.T) {
	h := newTestHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/tools",
		strings.NewReader(`{"domain":"finance","name":"Xero","externalUrl":"https://xero.com"}`)), "USER")
	w := httptest.NewRecorder()
	h.UpsertTool(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("статус %d, ожидается 401", w.Code)
	}
	if msg := decodeError(t, w); msg != "Unauthorized" {
		t.Errorf("error = %q, ожидается Unauthorized", msg)
	}

	// Инструмент не создан
	listReq := withSession(httptest.NewRequest(http.MethodGet, "/api/tools", nil), "USER")
	listW := httptest.NewRecorder()
	h.GetTools(listW, listReq)
	var tools []model.Tool
	if err := json.Unmarshal(listW.Body.Bytes(), &tools); err != nil {
		t.Fatalf("Ошибка парсинга списка: %v", err)
	}
	if len(tools) != 0 {
		t.Errorf("отклонённая мутация создала инструмент: %d", len(tools))
	}
}

func TestUpsertTool_AdminFlow(t *testing.T) {
	h := newTestHandler()

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/tools",
		strings.NewReader(`{"domain":"finance","name":"Xero","externalUrl":"https://xero.com"}`)), "ADMIN")
	w := httptest.NewRecorder()
	h.UpsertTool(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, ожидается 200: %s", w.Code, w.Body.String())
	}

	var tool model.Tool
	if err := json.Unmarshal(w.Body.Bytes(), &tool); err != nil {
		t.Fatalf("Ошибка парсинга ответа: %v", err)
	}
	if tool.ID == "" {
		t.Error("созданный инструмент должен получить id")
	}

	// Удаление
	delReq := withSession(httptest.NewRequest(http.MethodDelete, "/api/tools?id="+tool.ID, nil), "ADMIN")
	delW := httptest.NewRecorder()
	h.DeleteTool(delW, delReq)
	if delW.Code != http.StatusOK {
		t.Fatalf("DELETE статус %d, ожидается 200", delW.Code)
	}
	var res successBody
	if err := json.Unmarshal(delW.Body.Bytes(), &res); err != nil || !res.Success {
		t.Errorf("ожидается {\"success\":true}, получено %s", delW.Body.String())
	}
}

func TestDeleteTool_Validation(t *testing.T) {
	h := newTestHandler()

	// Без id — 400
	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/tools", nil), "ADMIN")
	w := httptest.NewRecorder()
	h.DeleteTool(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("DELETE без id: статус %d, ожидается 400", w.Code)
	}

	// Несуществующий id — 404
	req = withSession(httptest.NewRequest(http.MethodDelete, "/api/tools?id=ghost", nil), "ADMIN")
	w = httptest.NewRecorder()
	h.DeleteTool(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("DELETE несуществующего: статус %d, ожидается 404", w.Code)
	}
}

func TestUpsertRoleAssignment_Validation(t *testing.T) {
	h := newTestHandler()

	// roleKey не совпадает с производным от roleName — 400
	req := withSession(httptest.NewRequest(http.MethodPost, "/api/role-assignments",
		strings.NewReader(`{"roleKey":"finance-lead","roleName":"Project Director"}`)), "ADMIN")
	w := httptest.NewRecorder()
	h.UpsertRoleAssignment(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("несогласованный roleKey: статус %d, ожидается 400", w.Code)
	}

	// Некорректный JSON — 400
	req = withSession(httptest.NewRequest(http.MethodPost, "/api/role-assignments",
		strings.NewReader(`{not json`)), "ADMIN")
	w = httptest.NewRecorder()
	h.UpsertRoleAssignment(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("битый JSON: статус %d, ожидается 400", w.Code)
	}
}

func TestGetRoleAssignments_Public(t *testing.T) {
	h := newTestHandler()

	// Без сессии в контексте — чтение работает
	req := httptest.NewRequest(http.MethodGet, "/api/role-assignments", nil)
	w := httptest.NewRecorder()
	h.GetRoleAssignments(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("публичное чтение: статус %d, ожидается 200", w.Code)
	}
}

func TestGetRoleCatalog(t *testing.T) {
	h := newTestHandler()

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/role-catalog", nil), "USER")
	w := httptest.NewRecorder()
	h.GetRoleCatalog(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, ожидается 200", w.Code)
	}

	var catalog []struct {
		Key      string `json:"key"`
		Category string `json:"category"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("Ошибка парсинга каталога: %v", err)
	}
	if len(catalog) != 13 {
		t.Errorf("ролей в каталоге: %d, ожидается 13", len(catalog))
	}
	for _, role := range catalog {
		if role.Key == "" {
			t.Errorf("роль %q без ключа", role.Name)
		}
	}
}

func TestGetSession(t *testing.T) {
	h := newTestHandler()

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/session", nil), "ADMIN")
	w := httptest.NewRecorder()
	h.GetSession(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, ожидается 200", w.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Ошибка парсинга ответа: %v", err)
	}
	if resp.User.Email != "user@company.com" {
		t.Errorf("email = %q, ожидается user@company.com", resp.User.Email)
	}
	if resp.User.Role != "ADMIN" {
		t.Errorf("role = %q, ожидается ADMIN", resp.User.Role)
	}

	// Без сессии — 401
	w = httptest.NewRecorder()
	h.GetSession(w, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("без сессии: статус %d, ожидается 401", w.Code)
	}
}

// --- Health ---

type fakeChecker struct {
	status  string
	message string
}

func (c fakeChecker) CheckReady() (string, string) { return c.status, c.message }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		pg, idp    string
		wantStatus string
		wantCode   int
	}{
		{"все зависимости ok", "ok", "ok", "ok", http.StatusOK},
		{"JWKS degraded", "ok", "degraded", "degraded", http.StatusOK},
		{"база недоступна", "fail", "ok", "fail", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakeChecker{status: tt.pg}, fakeChecker{status: tt.idp})

			w := httptest.NewRecorder()
			h.HealthReady(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if w.Code != tt.wantCode {
				t.Errorf("статус %d, ожидается %d", w.Code, tt.wantCode)
			}
			var resp struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Ошибка парсинга ответа: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидается %q", resp.Status, tt.wantStatus)
			}
		})
	}
}

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	w := httptest.NewRecorder()
	h.HealthLive(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("статус %d, ожидается 200", w.Code)
	}

	var resp struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Ошибка парсинга ответа: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "framework-portal" {
		t.Errorf("неожиданный ответ: %s", w.Body.String())
	}
}
