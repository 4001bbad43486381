package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. Misses surface as
// gorm.ErrRecordNotFound so the services' taxonomy mapping behaves exactly
// as against Postgres.

// fakeTx runs the function inline. When failWith is set, it runs the
// function first and then reports the failure, mimicking a commit error.
type fakeTx struct {
	calls    int
	failWith error
	skipFn   bool // when failing, do not run the function at all
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	f.calls++
	if f.failWith != nil && f.skipFn {
		return f.failWith
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return f.failWith
}

// containsFold reports whether any field contains term, case-insensitively,
// mirroring the repositories' ILIKE clauses.
func containsFold(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// --- pipelines ---

type fakePipelineRepo struct {
	mu        sync.Mutex
	pipelines map[uuid.UUID]*model.Pipeline
	stages    map[uuid.UUID]*model.Stage
	seq       int // creation order stand-in for created_at
	order     map[uuid.UUID]int
}

func newFakePipelineRepo() *fakePipelineRepo {
	return &fakePipelineRepo{
		pipelines: make(map[uuid.UUID]*model.Pipeline),
		stages:    make(map[uuid.UUID]*model.Stage),
		order:     make(map[uuid.UUID]int),
	}
}

func (f *fakePipelineRepo) Create(_ context.Context, p *model.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.seq++
	f.order[p.ID] = f.seq
	cp := *p
	f.pipelines[p.ID] = &cp
	return nil
}

func (f *fakePipelineRepo) Update(_ context.Context, p *model.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pipelines[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	f.pipelines[p.ID] = &cp
	return nil
}

func (f *fakePipelineRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pipelines, id)
	for sid, s := range f.stages {
		if s.PipelineID == id {
			delete(f.stages, sid)
		}
	}
	return nil
}

func (f *fakePipelineRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pipelines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePipelineRepo) FindByName(_ context.Context, name string) (*model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pipelines {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePipelineRepo) ListAll(_ context.Context) ([]model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Pipeline, 0, len(f.pipelines))
	for _, p := range f.pipelines {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return f.order[out[i].ID] < f.order[out[j].ID] })
	return out, nil
}

func (f *fakePipelineRepo) ClearDefault(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pipelines {
		p.IsDefault = false
	}
	return nil
}

func (f *fakePipelineRepo) FindDefault(_ context.Context) (*model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pipelines {
		if p.IsDefault {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePipelineRepo) FindOldest(_ context.Context) (*model.Pipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *model.Pipeline
	for _, p := range f.pipelines {
		if oldest == nil || f.order[p.ID] < f.order[oldest.ID] {
			oldest = p
		}
	}
	if oldest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (f *fakePipelineRepo) CreateStage(_ context.Context, s *model.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.stages[s.ID] = &cp
	return nil
}

func (f *fakePipelineRepo) UpdateStage(_ context.Context, s *model.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stages[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	f.stages[s.ID] = &cp
	return nil
}

func (f *fakePipelineRepo) DeleteStage(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stages, id)
	return nil
}

func (f *fakePipelineRepo) FindStage(_ context.Context, id uuid.UUID) (*model.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakePipelineRepo) FindStageInPipeline(_ context.Context, pipelineID, stageID uuid.UUID) (*model.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stages[stageID]
	if !ok || s.PipelineID != pipelineID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakePipelineRepo) ListStages(_ context.Context, pipelineID uuid.UUID) ([]model.Stage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Stage
	for _, s := range f.stages {
		if s.PipelineID == pipelineID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakePipelineRepo) FirstStageByOrder(_ context.Context, pipelineID uuid.UUID) (*model.Stage, error) {
	stages, _ := f.ListStages(context.Background(), pipelineID)
	if len(stages) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &stages[0], nil
}

func (f *fakePipelineRepo) SetStageOrder(_ context.Context, pipelineID, stageID uuid.UUID, order int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stages[stageID]
	if !ok || s.PipelineID != pipelineID {
		return nil // zero rows matched; not an error
	}
	s.Order = order
	return nil
}

// --- deals ---

type fakeDealRepo struct {
	mu           sync.Mutex
	deals        map[uuid.UUID]*model.Deal
	stageChanges []model.StageChange
	createErr    error
}

func newFakeDealRepo() *fakeDealRepo {
	return &fakeDealRepo{deals: make(map[uuid.UUID]*model.Deal)}
}

func (f *fakeDealRepo) Create(_ context.Context, d *model.Deal) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	f.deals[d.ID] = &cp
	return nil
}

func (f *fakeDealRepo) Update(_ context.Context, d *model.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deals[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	f.deals[d.ID] = &cp
	return nil
}

func (f *fakeDealRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.deals, id)
	return nil
}

func (f *fakeDealRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDealRepo) List(_ context.Context, filter repository.DealFilter) ([]model.Deal, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Deal, 0, len(f.deals))
	for _, d := range f.deals {
		if filter.Search != "" && !containsFold(filter.Search, d.Title) {
			continue
		}
		out = append(out, *d)
	}
	total := int64(len(out))
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeDealRepo) CreateStageChange(_ context.Context, sc *model.StageChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	f.stageChanges = append(f.stageChanges, *sc)
	return nil
}

func (f *fakeDealRepo) ListStageChanges(_ context.Context, dealID uuid.UUID) ([]model.StageChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StageChange
	for i := len(f.stageChanges) - 1; i >= 0; i-- {
		if f.stageChanges[i].DealID == dealID {
			out = append(out, f.stageChanges[i])
		}
	}
	return out, nil
}

// --- leads ---

type fakeLeadRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*model.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*model.Lead)}
}

func (f *fakeLeadRepo) Create(_ context.Context, l *model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadRepo) Update(_ context.Context, l *model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[l.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *l
	f.leads[l.ID] = &cp
	return nil
}

func (f *fakeLeadRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLeadRepo) List(_ context.Context, filter repository.LeadFilter) ([]model.Lead, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, l.FirstName, l.LastName, l.Email, l.Company) {
			continue
		}
		out = append(out, *l)
	}
	total := int64(len(out))
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeLeadRepo) FindDuplicate(_ context.Context, email, phone string, exclude *uuid.UUID) (*model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if exclude != nil && l.ID == *exclude {
			continue
		}
		if l.Email == email || (phone != "" && l.Phone == phone) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- accounts ---

type fakeAccountRepo struct {
	mu        sync.Mutex
	accounts  map[uuid.UUID]*model.Account
	createErr error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*model.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, a *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) List(_ context.Context, search string, _, limit int) ([]model.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		if search != "" && !containsFold(search, a.Name, a.Industry) {
			continue
		}
		out = append(out, *a)
	}
	total := int64(len(out))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

// --- contacts ---

type fakeContactRepo struct {
	mu        sync.Mutex
	contacts  map[uuid.UUID]*model.Contact
	createErr error
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[uuid.UUID]*model.Contact)}
}

func (f *fakeContactRepo) Create(_ context.Context, c *model.Contact) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeContactRepo) Update(_ context.Context, c *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.contacts, id)
	return nil
}

func (f *fakeContactRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContactRepo) FindByEmail(_ context.Context, email string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContactRepo) List(_ context.Context, search string, _, limit int) ([]model.Contact, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Contact, 0, len(f.contacts))
	for _, c := range f.contacts {
		if search != "" && !containsFold(search, c.Name, c.Email, c.Company) {
			continue
		}
		out = append(out, *c)
	}
	total := int64(len(out))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

// --- notes ---

type fakeNoteRepo struct {
	mu        sync.Mutex
	notes     map[uuid.UUID]*model.Note
	createErr error
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*model.Note)}
}

func (f *fakeNoteRepo) Create(_ context.Context, n *model.Note) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteRepo) Update(_ context.Context, n *model.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.notes[n.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

func (f *fakeNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNoteRepo) List(_ context.Context, relatedToType string, relatedToID *uuid.UUID, _, _ int) ([]model.Note, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Note
	for _, n := range f.notes {
		if relatedToType != "" && n.RelatedToType != relatedToType {
			continue
		}
		if relatedToID != nil && n.RelatedToID != *relatedToID {
			continue
		}
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

// --- users/roles ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, roleID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[uuid.UUID]*model.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[uuid.UUID]*model.Role)}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	cp := *role
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[role.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *role
	f.roles[role.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.roles, id)
	return nil
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) ListAll(_ context.Context) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, nil
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// --- shared actors ---

func adminActor() *model.User {
	return &model.User{
		ID:       uuid.New(),
		Email:    "admin@example.com",
		IsActive: true,
		Role:     &model.Role{Name: "Admin", Permissions: []string{model.PermissionWildcard}},
	}
}

func viewerActor() *model.User {
	return &model.User{
		ID:       uuid.New(),
		Email:    "viewer@example.com",
		IsActive: true,
		Role:     &model.Role{Name: "Viewer", Permissions: []string{"contacts.read", "deals.read", "leads.read"}},
	}
}
