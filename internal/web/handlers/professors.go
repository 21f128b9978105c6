package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maperezv/staff-attendance/internal/database"
)

// ProfessorsHandler handles professor CRUD endpoints
type ProfessorsHandler struct {
	store database.ProfessorStore
}

// NewProfessorsHandler creates a new professors handler
func NewProfessorsHandler(store database.ProfessorStore) *ProfessorsHandler {
	return &ProfessorsHandler{store: store}
}

type professorRequest struct {
	UserID       *int64 `json:"user_id"`
	Code         string `json:"professor_code"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Photo        string `json:"photo"`
	UniversityID *int64 `json:"university_id"`
	IDCard       string `json:"id_card"`
}

func (req *professorRequest) validate() string {
	if strings.TrimSpace(req.Code) == "" {
		return "professor_code is required"
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return "first_name and last_name are required"
	}
	if strings.TrimSpace(req.IDCard) == "" {
		return "id_card is required"
	}
	return ""
}

func (h *ProfessorsHandler) List(w http.ResponseWriter, r *http.Request) {
	professors, err := h.store.List(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if professors == nil {
		professors = []database.Professor{}
	}
	respondJSON(w, http.StatusOK, professors)
}

func (h *ProfessorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req professorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	professor := database.Professor{
		UserID:       req.UserID,
		Code:         req.Code,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Photo:        req.Photo,
		UniversityID: req.UniversityID,
		IDCard:       req.IDCard,
	}
	if err := h.store.Create(r.Context(), &professor); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, professor)
}

func (h *ProfessorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	professor, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, professor)
}

func (h *ProfessorsHandler) GetByIDCard(w http.ResponseWriter, r *http.Request) {
	idCard := chi.URLParam(r, "idCard")
	if strings.TrimSpace(idCard) == "" {
		respondError(w, http.StatusBadRequest, "invalid id card")
		return
	}

	professor, err := h.store.GetByIDCard(r.Context(), idCard)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, professor)
}

func (h *ProfessorsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	var req professorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	professor := database.Professor{
		ID:           id,
		UserID:       req.UserID,
		Code:         req.Code,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Photo:        req.Photo,
		UniversityID: req.UniversityID,
		IDCard:       req.IDCard,
	}
	if err := h.store.Update(r.Context(), &professor); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, professor)
}

// patchableFields maps request keys onto storage columns for PATCH.
var patchableFields = map[string]string{
	"professor_code": "professor_code",
	"first_name":     "first_name",
	"last_name":      "last_name",
	"email":          "email",
	"photo":          "photo",
	"university_id":  "university_id",
	"id_card":        "id_card",
}

func (h *ProfessorsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	fields := make(map[string]any)
	for key, value := range body {
		column, ok := patchableFields[key]
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown field "+sanitizeForLog(key))
			return
		}
		fields[column] = value
	}
	if len(fields) == 0 {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.store.Patch(r.Context(), id, fields); err != nil {
		respondStorageError(w, err)
		return
	}

	professor, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, professor)
}

func (h *ProfessorsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
