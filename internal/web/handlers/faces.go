package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/maperezv/staff-attendance/internal/config"
	"github.com/maperezv/staff-attendance/internal/database"
	"github.com/maperezv/staff-attendance/internal/gallery"
	"github.com/maperezv/staff-attendance/internal/vision"
)

// FacesHandler manages the reference image gallery. Uploads land in one
// folder per identity; the folder name is what the recognizer reports.
type FacesHandler struct {
	config     *config.Config
	faces      database.FaceStore
	professors database.ProfessorStore
	embedder   vision.Embedder
}

// NewFacesHandler creates a new faces handler
func NewFacesHandler(cfg *config.Config, faces database.FaceStore, professors database.ProfessorStore, embedder vision.Embedder) *FacesHandler {
	return &FacesHandler{config: cfg, faces: faces, professors: professors, embedder: embedder}
}

// Upload stores a reference image for a professor. The image is written
// under the professor's gallery folder with a random name, its embedding is
// computed and persisted alongside.
func (h *FacesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	imageData, header, err := readMultipartImage(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	professorID, err := strconv.ParseInt(r.FormValue("professor_id"), 10, 64)
	if err != nil || professorID <= 0 {
		respondError(w, http.StatusBadRequest, "professor_id is required")
		return
	}

	professor, err := h.professors.Get(r.Context(), professorID)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	label := r.FormValue("label")
	if label == "" {
		label = professor.FirstName + "_" + professor.LastName
	}
	label = gallery.CleanFilename(label)
	if label == "" {
		respondError(w, http.StatusBadRequest, "label resolves to an empty folder name")
		return
	}

	if _, err := vision.DecodeImage(imageData); err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	embedding, err := h.embedder.Embed(r.Context(), imageData)
	if err != nil {
		log.Printf("faces: embedding failed: %v", err)
		respondError(w, http.StatusBadGateway, "embedding service unavailable")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}

	dir := filepath.Join(h.config.Gallery.Path, label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		respondError(w, http.StatusInternalServerError, "creating gallery folder")
		return
	}
	imagePath := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(imagePath, imageData, 0o644); err != nil {
		respondError(w, http.StatusInternalServerError, "writing gallery image")
		return
	}

	face := database.GalleryFace{
		ProfessorID: professorID,
		Label:       label,
		ImagePath:   imagePath,
		Embedding:   embedding,
		Model:       r.FormValue("model"),
	}
	if err := h.faces.Create(r.Context(), &face); err != nil {
		// Keep the gallery consistent with the store.
		os.Remove(imagePath)
		respondStorageError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, face)
}

func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid face id")
		return
	}

	face, err := h.faces.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, face)
}

func (h *FacesHandler) ListByProfessor(w http.ResponseWriter, r *http.Request) {
	professorID, err := pathID(r, "professorID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid professor id")
		return
	}

	faces, err := h.faces.ListByProfessor(r.Context(), professorID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if faces == nil {
		faces = []database.GalleryFace{}
	}
	respondJSON(w, http.StatusOK, faces)
}

// Delete removes the stored face row and its gallery image.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid face id")
		return
	}

	face, err := h.faces.Get(r.Context(), id)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	if err := h.faces.Delete(r.Context(), id); err != nil {
		respondStorageError(w, err)
		return
	}
	if err := os.Remove(face.ImagePath); err != nil && !os.IsNotExist(err) {
		log.Printf("faces: removing %s: %v", sanitizeForLog(face.ImagePath), err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
