// Package schedule imports class schedules from the faculty planning
// workbook. The workbook has a preamble above the real header row, day
// columns marked with single letters and clock times stored as bare
// integers (730 means 07:30).
package schedule

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/maperezv/staff-attendance/internal/database"
)

// requiredColumns are the header names the workbook must carry.
var requiredColumns = []string{
	"ID DOCENTE", "ÁREA DE CONOCIMIENTO", "NIVEL FORMACION",
	"CODIGO", "ASIGNATURA", "NRC", "STATUS",
	"SECCION", "# CRED", "TIPO", "EDIFICIO",
	"AULA", "CAPACIDAD", "HI", "HF",
	"L", "M", "I", "J", "V", "S", "D",
}

// dayColumns maps the single-letter day columns to weekday names.
// Column order matters: the stored list follows Monday through Sunday.
var dayColumns = []struct {
	column string
	name   string
}{
	{"L", "Monday"},
	{"M", "Tuesday"},
	{"I", "Wednesday"},
	{"J", "Thursday"},
	{"V", "Friday"},
	{"S", "Saturday"},
	{"D", "Sunday"},
}

// dayMarks are the cell values that count as "scheduled on this day".
var dayMarks = map[string]bool{
	"M": true, "T": true, "W": true, "R": true, "F": true, "S": true, "U": true,
}

// Row is one parsed workbook row: the schedule plus the university id used
// to resolve the professor.
type Row struct {
	UniversityID int64
	Schedule     database.ClassSchedule
}

// Result summarizes an import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ParseWorkbook reads the first sheet and returns the parsed rows. Rows with
// malformed numbers or times are skipped and reported in the second return.
func ParseWorkbook(r io.Reader) ([]Row, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	headerIdx, columns, err := findHeader(rows)
	if err != nil {
		return nil, nil, err
	}

	var parsed []Row
	var problems []string
	for i := headerIdx + 1; i < len(rows); i++ {
		row, err := parseRow(rows[i], columns)
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		parsed = append(parsed, row)
	}
	return parsed, problems, nil
}

// findHeader locates the header row by the ID DOCENTE marker and maps every
// required column name to its index.
func findHeader(rows [][]string) (int, map[string]int, error) {
	for i, row := range rows {
		columns := make(map[string]int)
		for j, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				if _, seen := columns[name]; !seen {
					columns[name] = j
				}
			}
		}
		if _, ok := columns["ID DOCENTE"]; !ok {
			continue
		}
		for _, required := range requiredColumns {
			if _, ok := columns[required]; !ok {
				return 0, nil, fmt.Errorf("column %q is missing in the workbook", required)
			}
		}
		return i, columns, nil
	}
	return 0, nil, fmt.Errorf("could not find the header row in the workbook")
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRow(row []string, columns map[string]int) (Row, error) {
	universityRaw := cellAt(row, columns["ID DOCENTE"])
	if universityRaw == "" {
		return Row{}, fmt.Errorf("empty ID DOCENTE")
	}
	universityID, err := strconv.ParseInt(universityRaw, 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid ID DOCENTE %q", universityRaw)
	}

	start, err := parseWorkbookTime(cellAt(row, columns["HI"]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid HI: %v", err)
	}
	end, err := parseWorkbookTime(cellAt(row, columns["HF"]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid HF: %v", err)
	}

	credits := 0.0
	if raw := cellAt(row, columns["# CRED"]); raw != "" {
		if credits, err = strconv.ParseFloat(raw, 64); err != nil {
			return Row{}, fmt.Errorf("invalid # CRED %q", raw)
		}
	}
	capacity := 0
	if raw := cellAt(row, columns["CAPACIDAD"]); raw != "" {
		if capacity, err = strconv.Atoi(raw); err != nil {
			return Row{}, fmt.Errorf("invalid CAPACIDAD %q", raw)
		}
	}

	knowledgeArea := cellAt(row, columns["ÁREA DE CONOCIMIENTO"])
	if knowledgeArea == "" {
		knowledgeArea = "UNKNOWN"
	}
	educationLevel := cellAt(row, columns["NIVEL FORMACION"])
	if educationLevel == "" {
		educationLevel = "UNKNOWN"
	}

	var days []string
	for _, day := range dayColumns {
		mark := strings.ToUpper(cellAt(row, columns[day.column]))
		if dayMarks[mark] {
			days = append(days, day.name)
		}
	}

	return Row{
		UniversityID: universityID,
		Schedule: database.ClassSchedule{
			KnowledgeArea:  knowledgeArea,
			EducationLevel: educationLevel,
			Code:           cellAt(row, columns["CODIGO"]),
			Subject:        cellAt(row, columns["ASIGNATURA"]),
			NRC:            cellAt(row, columns["NRC"]),
			Status:         cellAt(row, columns["STATUS"]),
			Section:        cellAt(row, columns["SECCION"]),
			Credits:        credits,
			Type:           cellAt(row, columns["TIPO"]),
			Building:       cellAt(row, columns["EDIFICIO"]),
			Classroom:      cellAt(row, columns["AULA"]),
			Capacity:       capacity,
			StartTime:      start,
			EndTime:        end,
			DaysOfWeek:     strings.Join(days, ", "),
		},
	}, nil
}

// parseWorkbookTime converts a bare clock integer (730, 1430) to a
// clock-only time. "07:30" style values are accepted too.
func parseWorkbookTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if strings.Contains(raw, ":") {
		for _, layout := range []string{"15:04:05", "15:04"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable time %q", raw)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable time %q", raw)
	}
	hour, minute := n/100, n%100
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("time %q out of range", raw)
	}
	return time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC), nil
}

// Importer persists parsed rows, resolving professors by university id.
type Importer struct {
	professors database.ProfessorStore
	schedules  database.ClassScheduleStore
}

// NewImporter creates an importer over the given stores.
func NewImporter(professors database.ProfessorStore, schedules database.ClassScheduleStore) *Importer {
	return &Importer{professors: professors, schedules: schedules}
}

// Import stores every row whose professor can be resolved. Rows without a
// matching professor are counted as skipped, not failed. progress, when not
// nil, is called once per processed row.
func (imp *Importer) Import(ctx context.Context, rows []Row, progress func()) (Result, error) {
	professors, err := imp.professors.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing professors: %w", err)
	}
	byUniversityID := make(map[int64]int64, len(professors))
	for _, p := range professors {
		if p.UniversityID != nil {
			byUniversityID[*p.UniversityID] = p.ID
		}
	}

	var result Result
	for _, row := range rows {
		if progress != nil {
			progress()
		}

		professorID, ok := byUniversityID[row.UniversityID]
		if !ok {
			result.Skipped++
			continue
		}

		s := row.Schedule
		s.ProfessorID = professorID
		if err := imp.schedules.Create(ctx, &s); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("schedule %s/%s: %v", s.Code, s.Section, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}
