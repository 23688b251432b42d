package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pmoffice/framework-portal/internal/config"
	"github.com/pmoffice/framework-portal/internal/database"
	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// setupPool поднимает PostgreSQL в контейнере, применяет миграции
// (вместе с базовым наполнением) и возвращает пул подключений.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("portal_test"),
		postgres.WithUsername("portal"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("FP_DB_HOST", host)
	t.Setenv("FP_DB_PORT", port.Port())
	t.Setenv("FP_DB_NAME", "portal_test")
	t.Setenv("FP_DB_USER", "portal")
	t.Setenv("FP_DB_PASSWORD", "test-password")
	t.Setenv("FP_DB_SSL_MODE", "disable")
	t.Setenv("FP_GOOGLE_CLIENT_ID", "test")
	t.Setenv("FP_GOOGLE_CLIENT_SECRET", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

func strPtr(s string) *string { return &s }

// TestPhaseRepository проверяет чтение фаз с joined-церемониями
// и уникальность поля order.
func TestPhaseRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewPhaseRepository(pool)

	phases, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(phases) != 6 {
		t.Fatalf("List() вернул %d фаз, ожидается 6", len(phases))
	}

	// Порядок по возрастанию order: 0..5
	for i, p := range phases {
		if p.Order != i {
			t.Errorf("phases[%d].Order = %d, ожидается %d", i, p.Order, i)
		}
	}

	// Joined-церемония первой фазы
	if phases[0].Ceremony == nil {
		t.Fatal("phases[0].Ceremony = nil, ожидается ceremony-1")
	}
	if phases[0].Ceremony.Name != "Pre-Design Gate" {
		t.Errorf("Ceremony.Name = %q, ожидается Pre-Design Gate", phases[0].Ceremony.Name)
	}

	// Get существующей фазы
	p, err := repo.Get(ctx, "phase-2")
	if err != nil {
		t.Fatalf("Get(phase-2) вернул ошибку: %v", err)
	}
	if p.Order != 2 {
		t.Errorf("phase-2.Order = %d, ожидается 2", p.Order)
	}

	// Get несуществующей фазы
	if _, err := repo.Get(ctx, "phase-99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(phase-99) err = %v, ожидается ErrNotFound", err)
	}

	// Update с дублирующимся order — ErrConflict от UNIQUE-ограничения
	p.Order = 3
	if _, err := repo.Update(ctx, p); !errors.Is(err, ErrConflict) {
		t.Errorf("Update с занятым order err = %v, ожидается ErrConflict", err)
	}

	// Обычное обновление
	p.Order = 2
	p.Narrative = "обновлённое описание"
	updated, err := repo.Update(ctx, p)
	if err != nil {
		t.Fatalf("Update() вернул ошибку: %v", err)
	}
	if updated.Narrative != "обновлённое описание" {
		t.Errorf("Narrative = %q, обновление не применилось", updated.Narrative)
	}
}

// TestRoleAssignmentRepository проверяет upsert по role_key:
// повторный upsert перезаписывает поля и не создаёт дубликата.
func TestRoleAssignmentRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewRoleAssignmentRepository(pool)

	first, err := repo.Upsert(ctx, &model.RoleAssignment{
		RoleKey:      "project-director",
		RoleName:     "Project Director",
		AssigneeName: strPtr("Иванов И.И."),
	})
	if err != nil {
		t.Fatalf("Upsert() вернул ошибку: %v", err)
	}

	second, err := repo.Upsert(ctx, &model.RoleAssignment{
		RoleKey:       "project-director",
		RoleName:      "Project Director",
		AssigneeName:  strPtr("Петров П.П."),
		AssigneeEmail: strPtr("petrov@company.com"),
	})
	if err != nil {
		t.Fatalf("Повторный Upsert() вернул ошибку: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("повторный upsert создал новую строку: id %q != %q", second.ID, first.ID)
	}
	if second.AssigneeName == nil || *second.AssigneeName != "Петров П.П." {
		t.Errorf("AssigneeName не перезаписан: %v", second.AssigneeName)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	count := 0
	for _, a := range list {
		if a.RoleKey == "project-director" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("строк с role_key=project-director: %d, ожидается ровно 1", count)
	}

	// Удаление
	if err := repo.DeleteByRoleKey(ctx, "project-director"); err != nil {
		t.Fatalf("DeleteByRoleKey() вернул ошибку: %v", err)
	}
	if err := repo.DeleteByRoleKey(ctx, "project-director"); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный DeleteByRoleKey err = %v, ожидается ErrNotFound", err)
	}
}

// TestSettingsRepository проверяет singleton-семантику project_settings.
func TestSettingsRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewSettingsRepository(pool)

	// До первой записи строки нет
	if _, err := repo.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() до записи err = %v, ожидается ErrNotFound", err)
	}

	// Первый Set создаёт строку
	s, err := repo.Set(ctx, strPtr("phase-2"), nil)
	if err != nil {
		t.Fatalf("Set() вернул ошибку: %v", err)
	}
	if s.ID != model.SettingsID {
		t.Errorf("id = %q, ожидается %q", s.ID, model.SettingsID)
	}
	if s.CurrentPhaseID == nil || *s.CurrentPhaseID != "phase-2" {
		t.Errorf("CurrentPhaseID = %v, ожидается phase-2", s.CurrentPhaseID)
	}

	// Повторный Set обновляет ту же строку (не создаёт вторую)
	s, err = repo.Set(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Повторный Set() вернул ошибку: %v", err)
	}
	if s.CurrentPhaseID != nil {
		t.Errorf("CurrentPhaseID = %v, ожидается nil после сброса", s.CurrentPhaseID)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM project_settings`).Scan(&count); err != nil {
		t.Fatalf("Ошибка подсчёта строк настроек: %v", err)
	}
	if count != 1 {
		t.Errorf("строк в project_settings: %d, ожидается ровно 1", count)
	}
}

// TestToolRepository проверяет create/update/delete инструментов.
func TestToolRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewToolRepository(pool)

	// Создание без id — id генерируется
	created, err := repo.Upsert(ctx, &model.Tool{
		Domain: "Testing",
		Name:   "New Tool",
		Order:  1,
	})
	if err != nil {
		t.Fatalf("Upsert() вернул ошибку: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Upsert() без id должен сгенерировать идентификатор")
	}

	// Обновление по id
	created.Description = "обновлено"
	updated, err := repo.Upsert(ctx, created)
	if err != nil {
		t.Fatalf("Повторный Upsert() вернул ошибку: %v", err)
	}
	if updated.ID != created.ID || updated.Description != "обновлено" {
		t.Errorf("обновление не применилось: %+v", updated)
	}

	// Сортировка: domain, затем order
	tools, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	for i := 1; i < len(tools); i++ {
		prev, cur := tools[i-1], tools[i]
		if prev.Domain > cur.Domain {
			t.Errorf("нарушен порядок доменов: %q после %q", cur.Domain, prev.Domain)
		}
		if prev.Domain == cur.Domain && prev.Order > cur.Order {
			t.Errorf("нарушен порядок внутри домена %q", cur.Domain)
		}
	}

	// Удаление
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete err = %v, ожидается ErrNotFound", err)
	}
}

// TestPageRepository проверяет чтение и обновление страниц.
func TestPageRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewPageRepository(pool)

	pages, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(pages) != 7 {
		t.Fatalf("List() вернул %d страниц, ожидается 7", len(pages))
	}

	home, err := repo.GetBySlug(ctx, "/")
	if err != nil {
		t.Fatalf("GetBySlug(/) вернул ошибку: %v", err)
	}
	if home.Title != "Home" {
		t.Errorf("Title = %q, ожидается Home", home.Title)
	}

	// Обновление контента сохраняется
	home.Content = json.RawMessage(`{"hero": "updated"}`)
	home.Description = "новое описание"
	updated, err := repo.Update(ctx, home)
	if err != nil {
		t.Fatalf("Update() вернул ошибку: %v", err)
	}
	if updated.Description != "новое описание" {
		t.Errorf("Description = %q, обновление не применилось", updated.Description)
	}

	reread, err := repo.Get(ctx, home.ID)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	var content map[string]string
	if err := json.Unmarshal(reread.Content, &content); err != nil {
		t.Fatalf("Ошибка разбора content: %v", err)
	}
	if content["hero"] != "updated" {
		t.Errorf("content = %v, jsonb не сохранился", content)
	}
}

// TestUserRepository проверяет upsert пользователя по email.
func TestUserRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	u1, err := repo.Upsert(ctx, "user@partner.com", "User One", "USER")
	if err != nil {
		t.Fatalf("Upsert() вернул ошибку: %v", err)
	}

	// Повторный вход — та же строка, роль обновлена
	u2, err := repo.Upsert(ctx, "user@partner.com", "User One", "ADMIN")
	if err != nil {
		t.Fatalf("Повторный Upsert() вернул ошибку: %v", err)
	}
	if u2.ID != u1.ID {
		t.Errorf("повторный вход создал нового пользователя: %q != %q", u2.ID, u1.ID)
	}
	if u2.Role != "ADMIN" {
		t.Errorf("Role = %q, ожидается ADMIN", u2.Role)
	}

	if _, err := repo.GetByEmail(ctx, "missing@partner.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByEmail(missing) err = %v, ожидается ErrNotFound", err)
	}
}

// TestAllowedDomainRepository проверяет уникальность домена и AccessMap.
func TestAllowedDomainRepository(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewAllowedDomainRepository(pool)

	d, err := repo.Create(ctx, "partner.com", "USER")
	if err != nil {
		t.Fatalf("Create() вернул ошибку: %v", err)
	}

	// Дубликат домена — ErrConflict
	if _, err := repo.Create(ctx, "partner.com", "ADMIN"); !errors.Is(err, ErrConflict) {
		t.Errorf("Create дубликата err = %v, ожидается ErrConflict", err)
	}

	access, err := repo.AccessMap(ctx)
	if err != nil {
		t.Fatalf("AccessMap() вернул ошибку: %v", err)
	}
	if access["partner.com"] != "USER" {
		t.Errorf("AccessMap[partner.com] = %q, ожидается USER", access["partner.com"])
	}

	if err := repo.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() вернул ошибку: %v", err)
	}
	if err := repo.Delete(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete err = %v, ожидается ErrNotFound", err)
	}
}
