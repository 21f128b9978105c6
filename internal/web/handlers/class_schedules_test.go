package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/database/mock"
	"github.com/maperezv/staff-attendance/internal/schedule"
)

func newClassScheduleRequest() classScheduleRequest {
	return classScheduleRequest{
		ProfessorID:    1,
		KnowledgeArea:  "COMPUTACION",
		EducationLevel: "GRADO",
		Code:           "CS101",
		Subject:        "Distributed Systems",
		NRC:            "1234",
		Status:         "A",
		Section:        "1",
		Credits:        4,
		Type:           "TEORIA",
		Building:       "B2",
		Classroom:      "204",
		Capacity:       40,
		StartTime:      "07:30",
		EndTime:        "09:30",
		DaysOfWeek:     "Monday, Wednesday",
	}
}

func TestClassSchedulesHandler_CreateAndGet(t *testing.T) {
	store := mock.NewMockClassScheduleStore()
	handler := NewClassSchedulesHandler(store, mock.NewMockProfessorStore())

	req := jsonRequest(t, "POST", "/api/v1/class-schedules", newClassScheduleRequest())
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)
	var created classScheduleResponse
	parseJSONResponse(t, recorder, &created)
	if created.ID == 0 || created.Subject != "Distributed Systems" {
		t.Fatalf("unexpected schedule %+v", created)
	}
	if created.StartTime != "07:30" || created.EndTime != "09:30" {
		t.Errorf("clock fields = %q/%q", created.StartTime, created.EndTime)
	}

	getReq := requestWithChiParams(
		httptest.NewRequest("GET", "/api/v1/class-schedules/1", nil),
		map[string]string{"id": "1"},
	)
	recorder = httptest.NewRecorder()
	handler.Get(recorder, getReq)
	assertStatusCode(t, recorder, http.StatusOK)
}

func TestClassSchedulesHandler_CreateValidation(t *testing.T) {
	handler := NewClassSchedulesHandler(mock.NewMockClassScheduleStore(), mock.NewMockProfessorStore())

	tests := []struct {
		name   string
		mutate func(*classScheduleRequest)
	}{
		{"missing professor", func(r *classScheduleRequest) { r.ProfessorID = 0 }},
		{"missing subject", func(r *classScheduleRequest) { r.Subject = " " }},
		{"missing days", func(r *classScheduleRequest) { r.DaysOfWeek = "" }},
		{"bad start time", func(r *classScheduleRequest) { r.StartTime = "25:00" }},
		{"bad end time", func(r *classScheduleRequest) { r.EndTime = "half past nine" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newClassScheduleRequest()
			tt.mutate(&body)
			recorder := httptest.NewRecorder()
			handler.Create(recorder, jsonRequest(t, "POST", "/api/v1/class-schedules", body))
			assertStatusCode(t, recorder, http.StatusBadRequest)
		})
	}
}

func TestClassSchedulesHandler_ListByProfessor(t *testing.T) {
	store := mock.NewMockClassScheduleStore()
	handler := NewClassSchedulesHandler(store, mock.NewMockProfessorStore())

	body := newClassScheduleRequest()
	handler.Create(httptest.NewRecorder(), jsonRequest(t, "POST", "/api/v1/class-schedules", body))

	req := requestWithChiParams(
		httptest.NewRequest("GET", "/api/v1/class-schedules/professor/1", nil),
		map[string]string{"professorID": "1"},
	)
	recorder := httptest.NewRecorder()
	handler.ListByProfessor(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var list []classScheduleResponse
	parseJSONResponse(t, recorder, &list)
	if len(list) != 1 {
		t.Fatalf("got %d schedules", len(list))
	}
}

func TestClassSchedulesHandler_UpdateNotFound(t *testing.T) {
	handler := NewClassSchedulesHandler(mock.NewMockClassScheduleStore(), mock.NewMockProfessorStore())

	req := requestWithChiParams(
		jsonRequest(t, "PUT", "/api/v1/class-schedules/9", newClassScheduleRequest()),
		map[string]string{"id": "9"},
	)
	recorder := httptest.NewRecorder()
	handler.Update(recorder, req)

	assertStatusCode(t, recorder, http.StatusNotFound)
}

// importWorkbook builds a minimal planning workbook with one row for the
// given university id.
func importWorkbook(t *testing.T, universityID string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{
		"ID DOCENTE", "ÁREA DE CONOCIMIENTO", "NIVEL FORMACION",
		"CODIGO", "ASIGNATURA", "NRC", "STATUS",
		"SECCION", "# CRED", "TIPO", "EDIFICIO",
		"AULA", "CAPACIDAD", "HI", "HF",
		"L", "M", "I", "J", "V", "S", "D",
	}
	row := []any{
		universityID, "COMPUTACION", "GRADO",
		"CS101", "Distributed Systems", "1234", "A",
		"1", "4", "TEORIA", "B2",
		"204", "40", "730", "930",
		"M", "", "", "", "", "", "",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &row); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestClassSchedulesHandler_Import(t *testing.T) {
	store := mock.NewMockClassScheduleStore()
	professors := mock.NewMockProfessorStore()
	handler := NewClassSchedulesHandler(store, professors)

	universityID := int64(4521)
	professor := &database.Professor{
		Code: "DOC-001", FirstName: "Maria", LastName: "Gomez",
		IDCard: "0912345678", UniversityID: &universityID,
	}
	if err := professors.Create(context.Background(), professor); err != nil {
		t.Fatal(err)
	}

	req := multipartRequest(t, "/api/v1/class-schedules/import", "file", "plan.xlsx",
		importWorkbook(t, "4521"), nil)
	recorder := httptest.NewRecorder()
	handler.Import(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var result schedule.Result
	parseJSONResponse(t, recorder, &result)
	if result.Imported != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v", result)
	}

	stored, err := store.ListByProfessor(context.Background(), professor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Subject != "Distributed Systems" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestClassSchedulesHandler_ImportUnmatchedProfessor(t *testing.T) {
	handler := NewClassSchedulesHandler(mock.NewMockClassScheduleStore(), mock.NewMockProfessorStore())

	req := multipartRequest(t, "/api/v1/class-schedules/import", "file", "plan.xlsx",
		importWorkbook(t, "4521"), nil)
	recorder := httptest.NewRecorder()
	handler.Import(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var result schedule.Result
	parseJSONResponse(t, recorder, &result)
	if result.Imported != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestClassSchedulesHandler_ImportRejectsNonWorkbook(t *testing.T) {
	handler := NewClassSchedulesHandler(mock.NewMockClassScheduleStore(), mock.NewMockProfessorStore())

	req := multipartRequest(t, "/api/v1/class-schedules/import", "file", "plan.csv",
		[]byte("a,b,c"), nil)
	recorder := httptest.NewRecorder()
	handler.Import(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
}
