package attendance

import (
	"math"
	"testing"
	"time"
)

// testWindow covers Saturdays 08:00-10:00; 2024-08-17 is a Saturday.
func testWindow() ScheduleWindow {
	return ScheduleWindow{
		ID:          5,
		ProfessorID: 12,
		Type:        ScheduleClass,
		Subject:     "Databases II",
		Days:        ParseDays("Saturday"),
		StartTime:   time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC),
		EndTime:     time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func saturday(hour, minute int) time.Time {
	return time.Date(2024, 8, 17, hour, minute, 0, 0, time.UTC)
}

var testDate = time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC)

func TestDecideEntry(t *testing.T) {
	tests := []struct {
		name     string
		event    time.Time
		wantLate bool
		wantKind RejectKind // empty means accepted
	}{
		{"nine minutes early", saturday(7, 51), false, ""},
		{"exactly on time", saturday(8, 0), false, ""},
		{"one minute late", saturday(8, 1), true, ""},
		{"ten minutes early boundary", saturday(7, 50), false, ""},
		{"eleven minutes early", saturday(7, 49), false, RejectWindow},
		{"after window plus tolerance", saturday(10, 11), false, RejectWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Decide(testWindow(), nil, testDate, tt.event, DefaultTolerance)
			if tt.wantKind != "" {
				rej, ok := AsRejection(err)
				if !ok {
					t.Fatalf("expected rejection, got err=%v", err)
				}
				if rej.Kind != tt.wantKind {
					t.Errorf("kind = %q, want %q", rej.Kind, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if tr.Action != ActionCreate {
				t.Fatalf("action = %q, want create", tr.Action)
			}
			if tr.Record.LateEntry != tt.wantLate {
				t.Errorf("late entry = %v, want %v", tr.Record.LateEntry, tt.wantLate)
			}
			if !tr.Record.EntryTime.Equal(tt.event) {
				t.Errorf("entry time = %v, want %v", tr.Record.EntryTime, tt.event)
			}
		})
	}
}

func TestDecideDayMismatch(t *testing.T) {
	friday := time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC)
	event := time.Date(2024, 8, 16, 8, 30, 0, 0, time.UTC)

	_, err := Decide(testWindow(), nil, friday, event, DefaultTolerance)
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != RejectDay {
		t.Fatalf("expected day rejection, got %v", err)
	}
	if rej.Conflict() {
		t.Error("day mismatch must not be a conflict")
	}
}

func TestDecideSecondEventIsExit(t *testing.T) {
	entry, err := Decide(testWindow(), nil, testDate, saturday(8, 0), DefaultTolerance)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}

	open := entry.Record
	tr, err := Decide(testWindow(), &open, testDate, saturday(9, 30), DefaultTolerance)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if tr.Action != ActionComplete {
		t.Fatalf("action = %q, want complete", tr.Action)
	}
	if tr.Record.ExitTime == nil || !tr.Record.ExitTime.Equal(saturday(9, 30)) {
		t.Errorf("exit time = %v", tr.Record.ExitTime)
	}
	if want := 1.5; math.Abs(tr.Record.TotalHours-want) > 1e-9 {
		t.Errorf("total hours = %v, want %v", tr.Record.TotalHours, want)
	}
	if tr.Record.LateExit {
		t.Error("exit before window end must not be late")
	}
}

func TestDecideLateExit(t *testing.T) {
	entry, _ := Decide(testWindow(), nil, testDate, saturday(8, 0), DefaultTolerance)
	open := entry.Record

	tr, err := Decide(testWindow(), &open, testDate, saturday(10, 5), DefaultTolerance)
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if !tr.Record.LateExit {
		t.Error("exit after window end must be late")
	}
}

func TestDecideExitOutsideWindowRejected(t *testing.T) {
	entry, _ := Decide(testWindow(), nil, testDate, saturday(8, 0), DefaultTolerance)
	open := entry.Record

	_, err := Decide(testWindow(), &open, testDate, saturday(10, 30), DefaultTolerance)
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != RejectWindow {
		t.Fatalf("expected window rejection, got %v", err)
	}
}

func TestDecideClosedRecordConflicts(t *testing.T) {
	exit := saturday(9, 45)
	closed := Record{
		ScheduleID:   5,
		ProfessorID:  12,
		RegisterDate: testDate,
		EntryTime:    saturday(8, 0),
		ExitTime:     &exit,
	}

	_, err := Decide(testWindow(), &closed, testDate, saturday(9, 50), DefaultTolerance)
	rej, ok := AsRejection(err)
	if !ok || rej.Kind != RejectClosed {
		t.Fatalf("expected closed-record conflict, got %v", err)
	}
	if !rej.Conflict() {
		t.Error("closed-record rejection must be a conflict")
	}
	// The record itself is untouched.
	if closed.TotalHours != 0 || !closed.ExitTime.Equal(exit) {
		t.Error("record was mutated by a rejected event")
	}
}

func TestCodeDeterministic(t *testing.T) {
	date := time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC)
	first := Code(5, 12, date)
	if first != "5-12-20240817" {
		t.Errorf("code = %q, want 5-12-20240817", first)
	}
	for i := 0; i < 10; i++ {
		if Code(5, 12, date) != first {
			t.Fatal("code generation must be deterministic")
		}
	}
}

func TestParseAndFormatDays(t *testing.T) {
	days := ParseDays("Monday, wednesday, FRIDAY, notaday")
	for _, want := range []time.Weekday{time.Monday, time.Wednesday, time.Friday} {
		if !days[want] {
			t.Errorf("missing %s", want)
		}
	}
	if len(days) != 3 {
		t.Errorf("got %d days, want 3", len(days))
	}
	if got := FormatDays(days); got != "Monday, Wednesday, Friday" {
		t.Errorf("FormatDays = %q", got)
	}
}
