package attendance

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTolerance is the canonical margin around a schedule window within
// which entry and exit events are accepted.
const DefaultTolerance = 10 * time.Minute

// RejectKind classifies why an event was refused.
type RejectKind string

const (
	// RejectDay: the register date's weekday is not in the schedule's set.
	RejectDay RejectKind = "day_mismatch"
	// RejectWindow: the event falls outside the permissive window.
	RejectWindow RejectKind = "outside_window"
	// RejectClosed: the record already has both entry and exit.
	RejectClosed RejectKind = "already_complete"
	// RejectInput: malformed or missing request fields.
	RejectInput RejectKind = "bad_request"
	// RejectNotFound: the referenced schedule does not exist.
	RejectNotFound RejectKind = "schedule_not_found"
	// RejectIntegrity: a concurrent duplicate write lost the race.
	RejectIntegrity RejectKind = "integrity_conflict"
)

// RejectionError is a business-rule refusal, not a server fault. Conflict
// rejections (RejectClosed) map to 409 at the HTTP boundary, the rest to 400.
type RejectionError struct {
	Kind   RejectKind
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }

// Conflict reports whether the rejection is a conflict rather than a
// validation failure.
func (e *RejectionError) Conflict() bool {
	return e.Kind == RejectClosed || e.Kind == RejectIntegrity
}

// AsRejection unwraps a RejectionError if err carries one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Action is the state transition an accepted event produces.
type Action string

const (
	// ActionCreate opens a new record with the entry time stamped.
	ActionCreate Action = "create"
	// ActionComplete closes the open record with the exit time stamped.
	ActionComplete Action = "complete"
)

// Transition is the persistence work an accepted event requires.
type Transition struct {
	Action Action
	Record Record
}

// Decide runs the per-key state machine: NoRecord -> Open -> Closed.
// existing is the current record for the key (nil for NoRecord). date is the
// register date the window is anchored on. The event timestamp must fall
// within [window start - tolerance, window end + tolerance] on an allowed
// weekday. A second event on an Open record is the exit, not an error; any
// event on a Closed record is a conflict.
func Decide(window ScheduleWindow, existing *Record, date, event time.Time, tolerance time.Duration) (Transition, error) {
	if existing.Closed() {
		return Transition{}, &RejectionError{
			Kind:   RejectClosed,
			Reason: "attendance already complete for this schedule and day",
		}
	}

	if !window.Days[date.Weekday()] {
		return Transition{}, &RejectionError{
			Kind:   RejectDay,
			Reason: fmt.Sprintf("%s is not an allowed day for this schedule", date.Weekday()),
		}
	}

	start := window.StartAt(date)
	end := window.EndAt(date)
	if event.Before(start.Add(-tolerance)) || event.After(end.Add(tolerance)) {
		return Transition{}, &RejectionError{
			Kind:   RejectWindow,
			Reason: "event time is outside the allowed window for this schedule",
		}
	}

	if existing == nil {
		return Transition{
			Action: ActionCreate,
			Record: Record{
				ScheduleType: window.Type,
				ScheduleID:   window.ID,
				ProfessorID:  window.ProfessorID,
				Code:         Code(window.ID, window.ProfessorID, date),
				RegisterDate: truncateToDate(date),
				EntryTime:    event,
				LateEntry:    event.After(start),
			},
		}, nil
	}

	exit := event
	completed := *existing
	completed.ExitTime = &exit
	completed.TotalHours = exit.Sub(existing.EntryTime).Seconds() / 3600
	completed.LateExit = exit.After(end)
	return Transition{Action: ActionComplete, Record: completed}, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
