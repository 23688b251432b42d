package service

// Фейковые репозитории для unit-тестов сервисного слоя.
// Хранят состояние в памяти и воспроизводят контракты настоящих
// pgx-репозиториев (ErrNotFound, ErrConflict, upsert-семантика).

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pmoffice/framework-portal/internal/domain/model"
	"github.com/pmoffice/framework-portal/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- фазы ---

type fakePhaseRepo struct {
	phases map[string]model.Phase
}

func newFakePhaseRepo(phases ...model.Phase) *fakePhaseRepo {
	r := &fakePhaseRepo{phases: make(map[string]model.Phase)}
	for _, p := range phases {
		r.phases[p.ID] = p
	}
	return r
}

func (r *fakePhaseRepo) List(_ context.Context) ([]model.Phase, error) {
	out := make([]model.Phase, 0, len(r.phases))
	for _, p := range r.phases {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePhaseRepo) Get(_ context.Context, id string) (*model.Phase, error) {
	p, ok := r.phases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakePhaseRepo) Update(_ context.Context, p *model.Phase) (*model.Phase, error) {
	if _, ok := r.phases[p.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for id, existing := range r.phases {
		if id != p.ID && existing.Order == p.Order {
			return nil, repository.ErrConflict
		}
	}
	r.phases[p.ID] = *p
	return p, nil
}

// --- настройки проекта ---

type fakeSettingsRepo struct {
	row *model.ProjectSettings
}

func (r *fakeSettingsRepo) Get(_ context.Context) (*model.ProjectSettings, error) {
	if r.row == nil {
		return nil, repository.ErrNotFound
	}
	cp := *r.row
	return &cp, nil
}

func (r *fakeSettingsRepo) Set(_ context.Context, currentPhaseID, updatedByID *string) (*model.ProjectSettings, error) {
	r.row = &model.ProjectSettings{
		ID:             model.SettingsID,
		CurrentPhaseID: currentPhaseID,
		UpdatedByID:    updatedByID,
		UpdatedAt:      time.Now(),
	}
	cp := *r.row
	return &cp, nil
}

// --- пользователи ---

type fakeUserRepo struct {
	byEmail map[string]model.User
}

func newFakeUserRepo(users ...model.User) *fakeUserRepo {
	r := &fakeUserRepo{byEmail: make(map[string]model.User)}
	for _, u := range users {
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Get(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Upsert(_ context.Context, email, name, role string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		u = model.User{ID: "user-" + email, Email: email, CreatedAt: time.Now()}
	}
	u.Name = name
	u.Role = role
	u.UpdatedAt = time.Now()
	r.byEmail[email] = u
	return &u, nil
}

// --- назначения ролей ---

type fakeRoleAssignmentRepo struct {
	byKey map[string]model.RoleAssignment
}

func newFakeRoleAssignmentRepo() *fakeRoleAssignmentRepo {
	return &fakeRoleAssignmentRepo{byKey: make(map[string]model.RoleAssignment)}
}

func (r *fakeRoleAssignmentRepo) List(_ context.Context) ([]model.RoleAssignment, error) {
	out := make([]model.RoleAssignment, 0, len(r.byKey))
	for _, a := range r.byKey {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeRoleAssignmentRepo) GetByRoleKey(_ context.Context, roleKey string) (*model.RoleAssignment, error) {
	a, ok := r.byKey[roleKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeRoleAssignmentRepo) Upsert(_ context.Context, a *model.RoleAssignment) (*model.RoleAssignment, error) {
	existing, ok := r.byKey[a.RoleKey]
	saved := *a
	if ok {
		saved.ID = existing.ID
	} else if saved.ID == "" {
		saved.ID = "ra-" + a.RoleKey
	}
	r.byKey[a.RoleKey] = saved
	return &saved, nil
}

func (r *fakeRoleAssignmentRepo) DeleteByRoleKey(_ context.Context, roleKey string) error {
	if _, ok := r.byKey[roleKey]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byKey, roleKey)
	return nil
}

// --- разрешённые домены ---

type fakeAllowedDomainRepo struct {
	domains map[string]model.AllowedDomain // по domain
}

func newFakeAllowedDomainRepo(domains ...model.AllowedDomain) *fakeAllowedDomainRepo {
	r := &fakeAllowedDomainRepo{domains: make(map[string]model.AllowedDomain)}
	for _, d := range domains {
		r.domains[d.Domain] = d
	}
	return r
}

func (r *fakeAllowedDomainRepo) List(_ context.Context) ([]model.AllowedDomain, error) {
	out := make([]model.AllowedDomain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeAllowedDomainRepo) AccessMap(_ context.Context) (map[string]string, error) {
	access := make(map[string]string, len(r.domains))
	for domain, d := range r.domains {
		access[domain] = d.AccessLevel
	}
	return access, nil
}

func (r *fakeAllowedDomainRepo) Create(_ context.Context, domain, accessLevel string) (*model.AllowedDomain, error) {
	if _, ok := r.domains[domain]; ok {
		return nil, repository.ErrConflict
	}
	d := model.AllowedDomain{ID: "dom-" + domain, Domain: domain, AccessLevel: accessLevel, CreatedAt: time.Now()}
	r.domains[domain] = d
	return &d, nil
}

func (r *fakeAllowedDomainRepo) Delete(_ context.Context, id string) error {
	for domain, d := range r.domains {
		if d.ID == id {
			delete(r.domains, domain)
			return nil
		}
	}
	return repository.ErrNotFound
}
