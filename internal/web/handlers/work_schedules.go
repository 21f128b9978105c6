package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maperezv/staff-attendance/internal/database"
)

// WorkSchedulesHandler handles work schedule CRUD endpoints
type WorkSchedulesHandler struct {
	store database.WorkScheduleStore
}

// NewWorkSchedulesHandler creates a new work schedules handler
func NewWorkSchedulesHandler(store database.WorkScheduleStore) *WorkSchedulesHandler {
	return &WorkSchedulesHandler{store: store}
}

// workScheduleResponse renders the clock-only columns as HH:MM strings.
type workScheduleResponse struct {
	database.WorkSchedule
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toWorkScheduleResponse(s database.WorkSchedule) workScheduleResponse {
	return workScheduleResponse{
		WorkSchedule: s,
		StartTime:    s.StartTime.Format("15:04"),
		EndTime:      s.EndTime.Format("15:04"),
	}
}

func toWorkScheduleResponses(schedules []database.WorkSchedule) []workScheduleResponse {
	out := make([]workScheduleResponse, len(schedules))
	for i, s := range schedules {
		out[i] = toWorkScheduleResponse(s)
	}
	return out
}

type workScheduleRequest struct {
	ProfessorID   int64   `json:"professor_id"`
	Description   string  `json:"description"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DaysOfWeek    string  `json:"days_of_week"`
	ExpectedHours float64 `json:"expected_hours"`
}

func (req *workScheduleRequest) toSchedule() (database.WorkSchedule, string) {
	if req.ProfessorID <= 0 {
		return database.WorkSchedule{}, "professor_id is required"
	}
	if strings.TrimSpace(req.DaysOfWeek) == "" {
		return database.WorkSchedule{}, "days_of_week is required"
	}
	start, err := parseClockField(req.StartTime, "start_time")
	if err != nil {
		return database.WorkSchedule{}, err.Error()
	}
	end, err := parseClockField(req.EndTime, "end_time")
	if err != nil {
		return database.WorkSchedule{}, err.Error()
	}

	return database.WorkSchedule{
		ProfessorID:   req.ProfessorID,
		Description:   req.Description,
		StartTime:     start,
		EndTime:       end,
		DaysOfWeek:    req.DaysOfWeek,
		ExpectedHours: req.ExpectedHours,
	}, ""
}

func (h *WorkSchedulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workScheduleRequest
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
	respondJSON(w, http.StatusCreated, toWorkScheduleResponse(s))
}

func (h *WorkSchedulesHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, toWorkScheduleResponse(*s))
}

func (h *WorkSchedulesHandler) ListByProfessor(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, toWorkScheduleResponses(schedules))
}

func (h *WorkSchedulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	var req workScheduleRequest
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
	respondJSON(w, http.StatusOK, toWorkScheduleResponse(s))
}

func (h *WorkSchedulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
