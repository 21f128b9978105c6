package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/schedule"
)

// parseClockField parses an "HH:MM" or "HH:MM:SS" JSON field.
func parseClockField(raw, field string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be HH:MM", field)
}

// classScheduleResponse renders the clock-only columns as HH:MM strings.
type classScheduleResponse struct {
	database.ClassSchedule
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toClassScheduleResponse(s database.ClassSchedule) classScheduleResponse {
	return classScheduleResponse{
		ClassSchedule: s,
		StartTime:     s.StartTime.Format("15:04"),
		EndTime:       s.EndTime.Format("15:04"),
	}
}

func toClassScheduleResponses(schedules []database.ClassSchedule) []classScheduleResponse {
	out := make([]classScheduleResponse, len(schedules))
	for i, s := range schedules {
		out[i] = toClassScheduleResponse(s)
	}
	return out
}

// ClassSchedulesHandler handles class schedule CRUD and workbook import
type ClassSchedulesHandler struct {
	store      database.ClassScheduleStore
	professors database.ProfessorStore
}

// NewClassSchedulesHandler creates a new class schedules handler
func NewClassSchedulesHandler(store database.ClassScheduleStore, professors database.ProfessorStore) *ClassSchedulesHandler {
	return &ClassSchedulesHandler{store: store, professors: professors}
}

type classScheduleRequest struct {
	ProfessorID    int64   `json:"professor_id"`
	KnowledgeArea  string  `json:"knowledge_area"`
	EducationLevel string  `json:"education_level"`
	Code           string  `json:"code"`
	Subject        string  `json:"subject"`
	NRC            string  `json:"nrc"`
	Status         string  `json:"status"`
	Section        string  `json:"section"`
	Credits        float64 `json:"credits"`
	Type           string  `json:"type"`
	Building       string  `json:"building"`
	Classroom      string  `json:"classroom"`
	Capacity       int     `json:"capacity"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	DaysOfWeek     string  `json:"days_of_week"`
}

func (req *classScheduleRequest) toSchedule() (database.ClassSchedule, string) {
	if req.ProfessorID <= 0 {
		return database.ClassSchedule{}, "professor_id is required"
	}
	if strings.TrimSpace(req.Subject) == "" {
		return database.ClassSchedule{}, "subject is required"
	}
	if strings.TrimSpace(req.DaysOfWeek) == "" {
		return database.ClassSchedule{}, "days_of_week is required"
	}
	start, err := parseClockField(req.StartTime, "start_time")
	if err != nil {
		return database.ClassSchedule{}, err.Error()
	}
	end, err := parseClockField(req.EndTime, "end_time")
	if err != nil {
		return database.ClassSchedule{}, err.Error()
	}

	return database.ClassSchedule{
		ProfessorID:    req.ProfessorID,
		KnowledgeArea:  req.KnowledgeArea,
		EducationLevel: req.EducationLevel,
		Code:           req.Code,
		Subject:        req.Subject,
		NRC:            req.NRC,
		Status:         req.Status,
		Section:        req.Section,
		Credits:        req.Credits,
		Type:           req.Type,
		Building:       req.Building,
		Classroom:      req.Classroom,
		Capacity:       req.Capacity,
		StartTime:      start,
		EndTime:        end,
		DaysOfWeek:     req.DaysOfWeek,
	}, ""
}

func (h *ClassSchedulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req classScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	s, msg := req.toSchedule()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Create(r.Context(), &s); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toClassScheduleResponse(s))
}

func (h *ClassSchedulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	s, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toClassScheduleResponse(*s))
}

func (h *ClassSchedulesHandler) ListByProfessor(w http.ResponseWriter, r *http.Request) {
	professorID, err := pathID(r, "professorID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	schedules, err := h.store.ListByProfessor(r.Context(), professorID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toClassScheduleResponses(schedules))
}

func (h *ClassSchedulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	var req classScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	s, msg := req.toSchedule()
	if msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	s.ID = id

	if err := h.store.Update(r.Context(), &s); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toClassScheduleResponse(s))
}

func (h *ClassSchedulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Import ingests the faculty planning workbook. Rows whose professor cannot
// be resolved are skipped; parsing problems come back in the response.
func (h *ClassSchedulesHandler) Import(w http.ResponseWriter, r *http.Request) {
	fileData, header, err := readMultipartImage(r, "file")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		respondError(w, http.StatusBadRequest, "only .xlsx workbooks are accepted")
		return
	}

	rows, problems, err := schedule.ParseWorkbook(bytes.NewReader(fileData))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	importer := schedule.NewImporter(h.professors, h.store)
	result, err := importer.Import(r.Context(), rows, nil)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	result.Errors = append(problems, result.Errors...)

	respondJSON(w, http.StatusOK, result)
}
