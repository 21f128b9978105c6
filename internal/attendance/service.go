package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Storage-boundary sentinels the Store implementation maps its driver errors
// onto.
var (
	// ErrScheduleNotFound: no schedule exists for the requested type and id.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrIntegrityConflict: a concurrent conflicting write hit the unique
	// key; the transaction was rolled back.
	ErrIntegrityConflict = errors.New("attendance integrity conflict")
)

// Store is the persistence surface the scheduler needs. Transact must run
// the callback inside one transaction and roll back fully when it returns an
// error.
type Store interface {
	GetWindow(ctx context.Context, typ ScheduleType, scheduleID int64) (ScheduleWindow, error)
	Transact(ctx context.Context, fn func(tx RecordStore) error) error
}

// RecordStore is the per-transaction record access. GetForUpdate must take a
// row lock on the key so concurrent exits for the same key serialize.
type RecordStore interface {
	GetForUpdate(ctx context.Context, key Key) (*Record, error)
	Create(ctx context.Context, rec Record) error
	Complete(ctx context.Context, rec Record) error
}

// EventRequest is an identified attendance event as received from the API.
type EventRequest struct {
	ProfessorID  int64  `json:"professor_id"`
	ScheduleID   int64  `json:"schedule_id"`
	ScheduleType string `json:"schedule_type"`
	RegisterDate string `json:"register_date"` // YYYY-MM-DD
	Time         string `json:"time"`          // RFC 3339 timestamp
}

// Service validates events against schedule windows and applies the
// entry/exit state machine inside a storage transaction.
type Service struct {
	store     Store
	tolerance time.Duration
}

func NewService(store Store, tolerance time.Duration) *Service {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Service{store: store, tolerance: tolerance}
}

// timeLayouts accepted for the event timestamp.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseEventTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// RegisterEvent decides whether the event is a valid entry or exit and
// persists the transition. Validation and business-rule refusals come back
// as a rejected Result; the error return is reserved for storage faults.
func (s *Service) RegisterEvent(ctx context.Context, req EventRequest) (Result, error) {
	typ, err := ParseScheduleType(req.ScheduleType)
	if err != nil {
		return rejected(RejectInput, err.Error()), nil
	}
	date, err := time.Parse("2006-01-02", req.RegisterDate)
	if err != nil {
		return rejected(RejectInput, fmt.Sprintf("invalid register date %q, expected YYYY-MM-DD", req.RegisterDate)), nil
	}
	event, err := parseEventTime(req.Time)
	if err != nil {
		return rejected(RejectInput, err.Error()), nil
	}
	if req.ProfessorID <= 0 || req.ScheduleID <= 0 {
		return rejected(RejectInput, "professor_id and schedule_id are required"), nil
	}

	window, err := s.store.GetWindow(ctx, typ, req.ScheduleID)
	if err != nil {
		if errors.Is(err, ErrScheduleNotFound) {
			return rejected(RejectNotFound, fmt.Sprintf("no %s schedule with id %d", typ, req.ScheduleID)), nil
		}
		return Result{}, fmt.Errorf("loading schedule: %w", err)
	}
	if window.ProfessorID != req.ProfessorID {
		return rejected(RejectInput, "schedule does not belong to the given professor"), nil
	}

	key := Key{ScheduleType: typ, ScheduleID: window.ID, ProfessorID: window.ProfessorID, RegisterDate: truncateToDate(date)}

	var transition Transition
	err = s.store.Transact(ctx, func(tx RecordStore) error {
		existing, err := tx.GetForUpdate(ctx, key)
		if err != nil {
			return fmt.Errorf("loading attendance record: %w", err)
		}

		transition, err = Decide(window, existing, date, event, s.tolerance)
		if err != nil {
			return err
		}

		switch transition.Action {
		case ActionCreate:
			return tx.Create(ctx, transition.Record)
		case ActionComplete:
			return tx.Complete(ctx, transition.Record)
		}
		return fmt.Errorf("unexpected transition action %q", transition.Action)
	})

	if err != nil {
		if rej, ok := AsRejection(err); ok {
			return rejected(rej.Kind, rej.Reason), nil
		}
		if errors.Is(err, ErrIntegrityConflict) {
			return rejected(RejectIntegrity, "a conflicting attendance write was detected, please retry"), nil
		}
		return Result{}, err
	}

	return successResult(window, transition), nil
}

func successResult(window ScheduleWindow, transition Transition) Result {
	rec := transition.Record
	switch transition.Action {
	case ActionComplete:
		hours := rec.TotalHours
		return Result{
			Status:     StatusCompleted,
			Message:    fmt.Sprintf("exit recorded for %s schedule %q", window.Type, window.Subject),
			Code:       rec.Code,
			TotalHours: &hours,
		}
	default:
		return Result{
			Status:  StatusCreated,
			Message: fmt.Sprintf("entry recorded for %s schedule %q", window.Type, window.Subject),
			Code:    rec.Code,
		}
	}
}

func rejected(kind RejectKind, reason string) Result {
	return Result{Status: StatusRejected, Kind: kind, Reason: reason}
}
