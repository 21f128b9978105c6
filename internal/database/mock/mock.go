// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/maperezv/staff-attendance/internal/attendance"
	"github.com/maperezv/staff-attendance/internal/database"
)

// MockRoleStore is a mock implementation of database.RoleStore
type MockRoleStore struct {
	mu     sync.RWMutex
	nextID int64
	roles  map[int64]*database.Role

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	DeleteError error
}

// NewMockRoleStore creates a new mock role store
func NewMockRoleStore() *MockRoleStore {
	return &MockRoleStore{roles: make(map[int64]*database.Role)}
}

func (m *MockRoleStore) Create(ctx context.Context, role *database.Role) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == role.Name {
			return database.ErrConflict
		}
	}
	m.nextID++
	role.ID = m.nextID
	cp := *role
	m.roles[role.ID] = &cp
	return nil
}

func (m *MockRoleStore) Get(ctx context.Context, id int64) (*database.Role, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (m *MockRoleStore) List(ctx context.Context) ([]database.Role, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockRoleStore) Update(ctx context.Context, role *database.Role) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[role.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *role
	m.roles[role.ID] = &cp
	return nil
}

func (m *MockRoleStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

// MockUserStore is a mock implementation of database.UserStore
type MockUserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*database.AppUser

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	DeleteError error
}

// NewMockUserStore creates a new mock user store
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]*database.AppUser)}
}

func (m *MockUserStore) Create(ctx context.Context, user *database.AppUser) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id int64) (*database.AppUser, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*database.AppUser, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockUserStore) List(ctx context.Context) ([]database.AppUser, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.AppUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserStore) Update(ctx context.Context, user *database.AppUser) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// MockProfessorStore is a mock implementation of database.ProfessorStore
type MockProfessorStore struct {
	mu         sync.RWMutex
	nextID     int64
	professors map[int64]*database.Professor

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	PatchError  error
	DeleteError error
}

// NewMockProfessorStore creates a new mock professor store
func NewMockProfessorStore() *MockProfessorStore {
	return &MockProfessorStore{professors: make(map[int64]*database.Professor)}
}

func (m *MockProfessorStore) Create(ctx context.Context, p *database.Professor) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.professors {
		if existing.IDCard == p.IDCard || existing.Code == p.Code {
			return database.ErrConflict
		}
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.professors[p.ID] = &cp
	return nil
}

func (m *MockProfessorStore) Get(ctx context.Context, id int64) (*database.Professor, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.professors[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProfessorStore) GetByIDCard(ctx context.Context, idCard string) (*database.Professor, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.professors {
		if p.IDCard == idCard {
			cp := *p
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *MockProfessorStore) List(ctx context.Context) ([]database.Professor, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Professor, 0, len(m.professors))
	for _, p := range m.professors {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockProfessorStore) Update(ctx context.Context, p *database.Professor) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.professors[p.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *p
	m.professors[p.ID] = &cp
	return nil
}

func (m *MockProfessorStore) Patch(ctx context.Context, id int64, fields map[string]any) error {
	if m.PatchError != nil {
		return m.PatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.professors[id]
	if !ok {
		return database.ErrNotFound
	}
	for col, val := range fields {
		if col == "university_id" {
			switch v := val.(type) {
			case float64:
				id := int64(v)
				p.UniversityID = &id
			case int64:
				id := v
				p.UniversityID = &id
			case nil:
				p.UniversityID = nil
			}
			continue
		}
		s, _ := val.(string)
		switch col {
		case "professor_code":
			p.Code = s
		case "first_name":
			p.FirstName = s
		case "last_name":
			p.LastName = s
		case "email":
			p.Email = s
		case "photo":
			p.Photo = s
		case "id_card":
			p.IDCard = s
		}
	}
	return nil
}

func (m *MockProfessorStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.professors[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.professors, id)
	return nil
}

// MockFaceStore is a mock implementation of database.FaceStore. FindNearest
// runs a brute-force cosine scan over the stored embeddings.
type MockFaceStore struct {
	mu     sync.RWMutex
	nextID int64
	faces  map[int64]*database.GalleryFace

	// Error injection
	CreateError      error
	GetError         error
	ListError        error
	DeleteError      error
	FindNearestError error
}

// NewMockFaceStore creates a new mock face store
func NewMockFaceStore() *MockFaceStore {
	return &MockFaceStore{faces: make(map[int64]*database.GalleryFace)}
}

func (m *MockFaceStore) Create(ctx context.Context, face *database.GalleryFace) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.faces {
		if f.ImagePath == face.ImagePath {
			return database.ErrConflict
		}
	}
	m.nextID++
	face.ID = m.nextID
	cp := *face
	m.faces[face.ID] = &cp
	return nil
}

func (m *MockFaceStore) Get(ctx context.Context, id int64) (*database.GalleryFace, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.faces[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockFaceStore) ListByProfessor(ctx context.Context, professorID int64) ([]database.GalleryFace, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.GalleryFace
	for _, f := range m.faces {
		if f.ProfessorID == professorID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockFaceStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.faces[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.faces, id)
	return nil
}

func (m *MockFaceStore) FindNearest(ctx context.Context, embedding []float32, limit int) ([]string, []float64, error) {
	if m.FindNearestError != nil {
		return nil, nil, m.FindNearestError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		path string
		dist float64
	}
	var hits []hit
	for _, f := range m.faces {
		if len(f.Embedding) == 0 {
			continue
		}
		hits = append(hits, hit{
			path: f.ImagePath,
			dist: float64(database.CosineDistance(embedding, f.Embedding)),
		})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	paths := make([]string, len(hits))
	distances := make([]float64, len(hits))
	for i, h := range hits {
		paths[i] = h.path
		distances[i] = h.dist
	}
	return paths, distances, nil
}

// MockClassScheduleStore is a mock implementation of database.ClassScheduleStore
type MockClassScheduleStore struct {
	mu        sync.RWMutex
	nextID    int64
	schedules map[int64]*database.ClassSchedule

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	DeleteError error
}

// NewMockClassScheduleStore creates a new mock class schedule store
func NewMockClassScheduleStore() *MockClassScheduleStore {
	return &MockClassScheduleStore{schedules: make(map[int64]*database.ClassSchedule)}
}

func (m *MockClassScheduleStore) Create(ctx context.Context, s *database.ClassSchedule) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *MockClassScheduleStore) Get(ctx context.Context, id int64) (*database.ClassSchedule, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockClassScheduleStore) ListByProfessor(ctx context.Context, professorID int64) ([]database.ClassSchedule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.ClassSchedule
	for _, s := range m.schedules {
		if s.ProfessorID == professorID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockClassScheduleStore) Update(ctx context.Context, s *database.ClassSchedule) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[s.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *MockClassScheduleStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

// MockWorkScheduleStore is a mock implementation of database.WorkScheduleStore
type MockWorkScheduleStore struct {
	mu        sync.RWMutex
	nextID    int64
	schedules map[int64]*database.WorkSchedule

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	UpdateError error
	DeleteError error
}

// NewMockWorkScheduleStore creates a new mock work schedule store
func NewMockWorkScheduleStore() *MockWorkScheduleStore {
	return &MockWorkScheduleStore{schedules: make(map[int64]*database.WorkSchedule)}
}

func (m *MockWorkScheduleStore) Create(ctx context.Context, s *database.WorkSchedule) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *MockWorkScheduleStore) Get(ctx context.Context, id int64) (*database.WorkSchedule, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockWorkScheduleStore) ListByProfessor(ctx context.Context, professorID int64) ([]database.WorkSchedule, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.WorkSchedule
	for _, s := range m.schedules {
		if s.ProfessorID == professorID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockWorkScheduleStore) Update(ctx context.Context, s *database.WorkSchedule) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[s.ID]; !ok {
		return database.ErrNotFound
	}
	cp := *s
	m.schedules[s.ID] = &cp
	return nil
}

func (m *MockWorkScheduleStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

// MockAttendanceStore is an in-memory implementation of attendance.Store and
// database.AttendanceReader. Transact stages writes and discards them when
// the callback fails.
type MockAttendanceStore struct {
	mu      sync.Mutex
	nextID  int64
	windows map[windowKey]attendance.ScheduleWindow
	records map[attendance.Key]*attendance.Record

	// Error injection
	GetWindowError error
	TransactError  error
}

type windowKey struct {
	typ attendance.ScheduleType
	id  int64
}

// NewMockAttendanceStore creates a new mock attendance store
func NewMockAttendanceStore() *MockAttendanceStore {
	return &MockAttendanceStore{
		windows: make(map[windowKey]attendance.ScheduleWindow),
		records: make(map[attendance.Key]*attendance.Record),
	}
}

// AddWindow registers a schedule window for lookup.
func (m *MockAttendanceStore) AddWindow(w attendance.ScheduleWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[windowKey{typ: w.Type, id: w.ID}] = w
}

func (m *MockAttendanceStore) GetWindow(ctx context.Context, typ attendance.ScheduleType, scheduleID int64) (attendance.ScheduleWindow, error) {
	if m.GetWindowError != nil {
		return attendance.ScheduleWindow{}, m.GetWindowError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[windowKey{typ: typ, id: scheduleID}]
	if !ok {
		return attendance.ScheduleWindow{}, attendance.ErrScheduleNotFound
	}
	return w, nil
}

func (m *MockAttendanceStore) Transact(ctx context.Context, fn func(tx attendance.RecordStore) error) error {
	if m.TransactError != nil {
		return m.TransactError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := make(map[attendance.Key]*attendance.Record, len(m.records))
	for k, v := range m.records {
		cp := *v
		staged[k] = &cp
	}

	tx := &mockTx{store: m, staged: staged}
	if err := fn(tx); err != nil {
		return err
	}
	m.records = staged
	return nil
}

type mockTx struct {
	store  *MockAttendanceStore
	staged map[attendance.Key]*attendance.Record
}

func (t *mockTx) GetForUpdate(ctx context.Context, key attendance.Key) (*attendance.Record, error) {
	rec, ok := t.staged[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (t *mockTx) Create(ctx context.Context, rec attendance.Record) error {
	key := attendance.Key{
		ScheduleType: rec.ScheduleType,
		ScheduleID:   rec.ScheduleID,
		ProfessorID:  rec.ProfessorID,
		RegisterDate: rec.RegisterDate,
	}
	if _, ok := t.staged[key]; ok {
		return attendance.ErrIntegrityConflict
	}
	t.store.nextID++
	rec.ID = t.store.nextID
	t.staged[key] = &rec
	return nil
}

func (t *mockTx) Complete(ctx context.Context, rec attendance.Record) error {
	for key, existing := range t.staged {
		if existing.ID == rec.ID {
			if existing.ExitTime != nil {
				return attendance.ErrIntegrityConflict
			}
			cp := rec
			t.staged[key] = &cp
			return nil
		}
	}
	return attendance.ErrIntegrityConflict
}

// Records returns a snapshot of all stored records sorted by id.
func (m *MockAttendanceStore) Records() []attendance.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attendance.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBySchedule returns records for one schedule, newest first.
func (m *MockAttendanceStore) ListBySchedule(ctx context.Context, typ attendance.ScheduleType, scheduleID int64) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.ScheduleType == typ && r.ScheduleID == scheduleID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ListByProfessor returns records for one professor, newest first.
func (m *MockAttendanceStore) ListByProfessor(ctx context.Context, professorID int64) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
	for _, r := range m.records {
		if r.ProfessorID == professorID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
