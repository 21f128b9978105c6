package attendance

import (
	"context"
	"testing"
	"time"
)

// memStore is an in-memory Store whose Transact discards writes when the
// callback errors, mimicking a rollback.
type memStore struct {
	windows map[int64]ScheduleWindow
	records map[Key]*Record
	txErr   error // injected error returned by Create/Complete
}

func newMemStore(windows ...ScheduleWindow) *memStore {
	s := &memStore{
		windows: make(map[int64]ScheduleWindow),
		records: make(map[Key]*Record),
	}
	for _, w := range windows {
		s.windows[w.ID] = w
	}
	return s
}

func (s *memStore) GetWindow(ctx context.Context, typ ScheduleType, id int64) (ScheduleWindow, error) {
	w, ok := s.windows[id]
	if !ok || w.Type != typ {
		return ScheduleWindow{}, ErrScheduleNotFound
	}
	return w, nil
}

func (s *memStore) Transact(ctx context.Context, fn func(tx RecordStore) error) error {
	staged := make(map[Key]*Record, len(s.records))
	for k, v := range s.records {
		copied := *v
		staged[k] = &copied
	}
	if err := fn(&memTx{records: staged, err: s.txErr}); err != nil {
		return err
	}
	s.records = staged
	return nil
}

type memTx struct {
	records map[Key]*Record
	err     error
}

func (t *memTx) GetForUpdate(ctx context.Context, key Key) (*Record, error) {
	return t.records[key], nil
}

func (t *memTx) Create(ctx context.Context, rec Record) error {
	if t.err != nil {
		return t.err
	}
	key := Key{ScheduleType: rec.ScheduleType, ScheduleID: rec.ScheduleID, ProfessorID: rec.ProfessorID, RegisterDate: rec.RegisterDate}
	t.records[key] = &rec
	return nil
}

func (t *memTx) Complete(ctx context.Context, rec Record) error {
	if t.err != nil {
		return t.err
	}
	key := Key{ScheduleType: rec.ScheduleType, ScheduleID: rec.ScheduleID, ProfessorID: rec.ProfessorID, RegisterDate: rec.RegisterDate}
	t.records[key] = &rec
	return nil
}

func eventRequest(ts string) EventRequest {
	return EventRequest{
		ProfessorID:  12,
		ScheduleID:   5,
		ScheduleType: "class",
		RegisterDate: "2024-08-17",
		Time:         ts,
	}
}

func TestRegisterEventLifecycle(t *testing.T) {
	store := newMemStore(testWindow())
	svc := NewService(store, DefaultTolerance)
	ctx := context.Background()

	// Entry.
	res, err := svc.RegisterEvent(ctx, eventRequest("2024-08-17T08:02:00.000Z"))
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if res.Status != StatusCreated {
		t.Fatalf("status = %q (%s), want created", res.Status, res.Reason)
	}
	if res.Code != "5-12-20240817" {
		t.Errorf("code = %q", res.Code)
	}

	// Exit.
	res, err = svc.RegisterEvent(ctx, eventRequest("2024-08-17T09:32:00.000Z"))
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if res.Status != StatusCompleted {
		t.Fatalf("status = %q (%s), want completed", res.Status, res.Reason)
	}
	if res.TotalHours == nil || *res.TotalHours != 1.5 {
		t.Errorf("total hours = %v, want 1.5", res.TotalHours)
	}

	// Third event conflicts.
	res, err = svc.RegisterEvent(ctx, eventRequest("2024-08-17T09:40:00.000Z"))
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if res.Status != StatusRejected || res.Kind != RejectClosed {
		t.Errorf("status = %q kind = %q, want rejected/already_complete", res.Status, res.Kind)
	}
}

func TestRegisterEventValidation(t *testing.T) {
	svc := NewService(newMemStore(testWindow()), DefaultTolerance)
	ctx := context.Background()

	tests := []struct {
		name string
		req  EventRequest
		kind RejectKind
	}{
		{"bad schedule type", EventRequest{ProfessorID: 12, ScheduleID: 5, ScheduleType: "night", RegisterDate: "2024-08-17", Time: "2024-08-17T08:00:00.000Z"}, RejectInput},
		{"bad date", eventRequestWith("17/08/2024", "2024-08-17T08:00:00.000Z"), RejectInput},
		{"bad timestamp", eventRequestWith("2024-08-17", "eight o'clock"), RejectInput},
		{"unknown schedule", EventRequest{ProfessorID: 12, ScheduleID: 99, ScheduleType: "class", RegisterDate: "2024-08-17", Time: "2024-08-17T08:00:00.000Z"}, RejectNotFound},
		{"professor mismatch", EventRequest{ProfessorID: 77, ScheduleID: 5, ScheduleType: "class", RegisterDate: "2024-08-17", Time: "2024-08-17T08:00:00.000Z"}, RejectInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.RegisterEvent(ctx, tt.req)
			if err != nil {
				t.Fatalf("RegisterEvent: %v", err)
			}
			if res.Status != StatusRejected || res.Kind != tt.kind {
				t.Errorf("status = %q kind = %q, want rejected/%s", res.Status, res.Kind, tt.kind)
			}
		})
	}
}

func eventRequestWith(date, ts string) EventRequest {
	req := eventRequest(ts)
	req.RegisterDate = date
	return req
}

func TestRegisterEventRejectionDoesNotPersist(t *testing.T) {
	store := newMemStore(testWindow())
	svc := NewService(store, DefaultTolerance)

	res, err := svc.RegisterEvent(context.Background(), eventRequest("2024-08-17T07:30:00.000Z"))
	if err != nil {
		t.Fatalf("RegisterEvent: %v", err)
	}
	if res.Status != StatusRejected || res.Kind != RejectWindow {
		t.Fatalf("status = %q kind = %q", res.Status, res.Kind)
	}
	if len(store.records) != 0 {
		t.Error("rejected event must not persist a record")
	}
}

func TestRegisterEventIntegrityConflict(t *testing.T) {
	store := newMemStore(testWindow())
	store.txErr = ErrIntegrityConflict
	svc := NewService(store, DefaultTolerance)

	res, err := svc.RegisterEvent(context.Background(), eventRequest("2024-08-17T08:00:00.000Z"))
	if err != nil {
		t.Fatalf("RegisterEvent: %v", err)
	}
	if res.Status != StatusRejected || res.Kind != RejectIntegrity {
		t.Errorf("status = %q kind = %q, want rejected/integrity_conflict", res.Status, res.Kind)
	}
	if len(store.records) != 0 {
		t.Error("conflicting write must roll back")
	}
}

func TestCustomTolerance(t *testing.T) {
	svc := NewService(newMemStore(testWindow()), 5*time.Minute)

	// Nine minutes early is outside a five-minute tolerance.
	res, err := svc.RegisterEvent(context.Background(), eventRequest("2024-08-17T07:51:00.000Z"))
	if err != nil {
		t.Fatalf("RegisterEvent: %v", err)
	}
	if res.Status != StatusRejected || res.Kind != RejectWindow {
		t.Errorf("status = %q kind = %q, want rejected/outside_window", res.Status, res.Kind)
	}
}
