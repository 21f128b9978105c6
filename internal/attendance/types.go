// Package attendance turns identified, timestamped events into entry/exit
// attendance records constrained by class and work schedule windows.
package attendance

import (
	"fmt"
	"strings"
	"time"
)

// ScheduleType distinguishes class schedules from work schedules.
type ScheduleType string

const (
	ScheduleClass ScheduleType = "class"
	ScheduleWork  ScheduleType = "work"
)

// ParseScheduleType validates a schedule type coming from the API.
func ParseScheduleType(s string) (ScheduleType, error) {
	switch ScheduleType(strings.ToLower(s)) {
	case ScheduleClass:
		return ScheduleClass, nil
	case ScheduleWork:
		return ScheduleWork, nil
	}
	return "", fmt.Errorf("unknown schedule type %q", s)
}

// ScheduleWindow is the read-only slice of a schedule the state machine
// needs: when the professor is expected, and on which days.
type ScheduleWindow struct {
	ID            int64
	ProfessorID   int64
	Type          ScheduleType
	Subject       string
	Days          map[time.Weekday]bool
	StartTime     time.Time // only the clock part is meaningful
	EndTime       time.Time // only the clock part is meaningful
	ExpectedHours float64
}

// StartAt anchors the window start clock on the given date.
func (w ScheduleWindow) StartAt(date time.Time) time.Time {
	return atClock(date, w.StartTime)
}

// EndAt anchors the window end clock on the given date.
func (w ScheduleWindow) EndAt(date time.Time) time.Time {
	return atClock(date, w.EndTime)
}

func atClock(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}

// ParseDays parses the stored comma-separated weekday list
// (e.g. "Monday, Wednesday") into a membership set. Unknown names are
// ignored.
func ParseDays(s string) map[time.Weekday]bool {
	names := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		if day, ok := names[strings.ToLower(strings.TrimSpace(part))]; ok {
			days[day] = true
		}
	}
	return days
}

// FormatDays renders a weekday set back into the stored representation.
func FormatDays(days map[time.Weekday]bool) string {
	var parts []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if days[d] {
			parts = append(parts, d.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Record is one attendance row. Created on the first valid entry event for a
// (schedule, professor, date) key, mutated once when the exit is observed,
// immutable afterward.
type Record struct {
	ID           int64
	ScheduleType ScheduleType
	ScheduleID   int64
	ProfessorID  int64
	Code         string
	RegisterDate time.Time
	EntryTime    time.Time
	ExitTime     *time.Time
	TotalHours   float64
	LateEntry    bool
	LateExit     bool
}

// Closed reports whether both entry and exit have been recorded.
func (r *Record) Closed() bool {
	return r != nil && r.ExitTime != nil
}

// Key identifies the at-most-one open record per schedule, professor and day.
type Key struct {
	ScheduleType ScheduleType
	ScheduleID   int64
	ProfessorID  int64
	RegisterDate time.Time
}

// Code derives the deterministic attendance code for a key. Repeated
// registration attempts on the same key always generate the same code.
func Code(scheduleID, professorID int64, date time.Time) string {
	return fmt.Sprintf("%d-%d-%s", scheduleID, professorID, date.Format("20060102"))
}

// Status of a registration outcome.
type Status string

const (
	StatusCreated   Status = "created"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Result is the registration outcome surfaced to the caller. TotalHours is
// set only on completion. Kind classifies rejections for the HTTP layer and
// is not part of the payload.
type Result struct {
	Status     Status     `json:"status"`
	Message    string     `json:"message,omitempty"`
	Code       string     `json:"attendance_code,omitempty"`
	TotalHours *float64   `json:"total_hours,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Kind       RejectKind `json:"-"`
}

// LegacyFlag maps a late flag to the two-value enumeration the storage
// schema inherited.
func LegacyFlag(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}

// ParseLegacyFlag is the inverse of LegacyFlag.
func ParseLegacyFlag(s string) bool {
	return strings.EqualFold(s, "SI")
}
