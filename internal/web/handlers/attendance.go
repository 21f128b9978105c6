package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maperezv/staff-attendance/internal/attendance"
	"github.com/maperezv/staff-attendance/internal/database"
)

// AttendanceHandler registers attendance events and serves the recorded log.
type AttendanceHandler struct {
	service *attendance.Service
	reader  database.AttendanceReader
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(service *attendance.Service, reader database.AttendanceReader) *AttendanceHandler {
	return &AttendanceHandler{service: service, reader: reader}
}

// Register handles an identified attendance event. Entry and exit share the
// endpoint; the state machine decides which one this is.
func (h *AttendanceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req attendance.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result, err := h.service.RegisterEvent(r.Context(), req)
	if err != nil {
		log.Printf("attendance: register event failed: %v", err)
		respondError(w, http.StatusInternalServerError, "attendance storage error")
		return
	}

	respondJSON(w, statusForResult(result), result)
}

// statusForResult maps a registration outcome to an HTTP status.
func statusForResult(result attendance.Result) int {
	switch result.Status {
	case attendance.StatusCreated:
		return http.StatusCreated
	case attendance.StatusCompleted:
		return http.StatusOK
	}

	switch result.Kind {
	case attendance.RejectInput:
		return http.StatusBadRequest
	case attendance.RejectNotFound:
		return http.StatusNotFound
	case attendance.RejectClosed, attendance.RejectIntegrity:
		return http.StatusConflict
	default:
		// Day or window mismatch: well-formed request, refused by rule.
		return http.StatusUnprocessableEntity
	}
}

type recordResponse struct {
	ID           int64   `json:"id"`
	ScheduleType string  `json:"schedule_type"`
	ScheduleID   int64   `json:"schedule_id"`
	ProfessorID  int64   `json:"professor_id"`
	Code         string  `json:"attendance_code"`
	RegisterDate string  `json:"register_date"`
	EntryTime    string  `json:"entry_time"`
	ExitTime     *string `json:"exit_time"`
	TotalHours   float64 `json:"total_hours"`
	LateEntry    bool    `json:"late_entry"`
	LateExit     bool    `json:"late_exit"`
}

func toRecordResponse(rec attendance.Record) recordResponse {
	resp := recordResponse{
		ID:           rec.ID,
		ScheduleType: string(rec.ScheduleType),
		ScheduleID:   rec.ScheduleID,
		ProfessorID:  rec.ProfessorID,
		Code:         rec.Code,
		RegisterDate: rec.RegisterDate.Format("2006-01-02"),
		EntryTime:    rec.EntryTime.Format("2006-01-02T15:04:05Z07:00"),
		TotalHours:   rec.TotalHours,
		LateEntry:    rec.LateEntry,
		LateExit:     rec.LateExit,
	}
	if rec.ExitTime != nil {
		exit := rec.ExitTime.Format("2006-01-02T15:04:05Z07:00")
		resp.ExitTime = &exit
	}
	return resp
}

// ListBySchedule returns recorded attendance for one schedule.
func (h *AttendanceHandler) ListBySchedule(w http.ResponseWriter, r *http.Request) {
	typ, err := attendance.ParseScheduleType(chi.URLParam(r, "scheduleType"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	scheduleID, err := pathID(r, "scheduleID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid schedule id")
		return
	}

	records, err := h.reader.ListBySchedule(r.Context(), typ, scheduleID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordsResponse(records))
}

// ListByProfessor returns recorded attendance for one professor.
func (h *AttendanceHandler) ListByProfessor(w http.ResponseWriter, r *http.Request) {
	professorID, err := pathID(r, "professorID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	records, err := h.reader.ListByProfessor(r.Context(), professorID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recordsResponse(records))
}

func recordsResponse(records []attendance.Record) []recordResponse {
	out := make([]recordResponse, len(records))
	for i, rec := range records {
		out[i] = toRecordResponse(rec)
	}
	return out
}
