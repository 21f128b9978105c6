package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/maperezv/staff-attendance/internal/config"
	"github.com/maperezv/staff-attendance/internal/vision"
)

// DetectHandler exposes face detection over the uploaded image.
type DetectHandler struct {
	config   *config.Config
	detector vision.Detector
}

// NewDetectHandler creates a new detect handler
func NewDetectHandler(cfg *config.Config, detector vision.Detector) *DetectHandler {
	return &DetectHandler{config: cfg, detector: detector}
}

type detectResponse struct {
	Faces     []vision.FaceRegion `json:"faces"`
	Count     int                 `json:"count"`
	SavedPath string              `json:"saved_path,omitempty"`
}

// Detect runs the face detector over the uploaded image. Accepts optional
// form fields min_confidence (overrides the configured floor) and
// save_image (keeps a copy of the upload for inspection).
func (h *DetectHandler) Detect(w http.ResponseWriter, r *http.Request) {
	imageData, _, err := readMultipartImage(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	minConfidence := h.config.Detection.MinConfidence
	if raw := r.FormValue("min_confidence"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			respondError(w, http.StatusBadRequest, "min_confidence must be a number between 0 and 1")
			return
		}
		minConfidence = v
	}

	faces, err := h.detector.Detect(r.Context(), imageData, minConfidence)
	if err != nil {
		log.Printf("detect: detector failed: %v", err)
		respondError(w, http.StatusBadGateway, "face detection service unavailable")
		return
	}

	resp := detectResponse{Faces: faces, Count: len(faces)}
	if faces == nil {
		resp.Faces = []vision.FaceRegion{}
	}

	if r.FormValue("save_image") == "true" {
		path, err := h.saveUpload(imageData)
		if err != nil {
			log.Printf("detect: saving upload failed: %v", err)
		} else {
			resp.SavedPath = path
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// saveUpload stores a copy of the uploaded image under the gallery's
// detections folder.
func (h *DetectHandler) saveUpload(imageData []byte) (string, error) {
	dir := filepath.Join(h.config.Gallery.Path, "detections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, imageData, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
