package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/maperezv/staff-attendance/internal/recognizer"
	"github.com/maperezv/staff-attendance/internal/vision"
)

// RecognizeHandler decides the identity shown in an uploaded frame.
type RecognizeHandler struct {
	voter *recognizer.Voter
}

// NewRecognizeHandler creates a new recognize handler
func NewRecognizeHandler(voter *recognizer.Voter) *RecognizeHandler {
	return &RecognizeHandler{voter: voter}
}

type recognizeResponse struct {
	Identities []string `json:"identities"`
}

// Recognize crops the submitted face regions out of the uploaded image and
// returns the voted identity. Liveness failures come back as the
// spoof_detected sentinel, an empty tally as unknown.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	imageData, _, err := readMultipartImage(r, "image")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	facesJSON := r.FormValue("faces")
	if facesJSON == "" {
		respondError(w, http.StatusBadRequest, "missing faces field")
		return
	}

	var regions []vision.FaceRegion
	if err := json.Unmarshal([]byte(facesJSON), &regions); err != nil {
		respondError(w, http.StatusBadRequest, "invalid faces JSON")
		return
	}
	if len(regions) == 0 {
		respondJSON(w, http.StatusOK, recognizeResponse{Identities: []string{recognizer.UnknownIdentity}})
		return
	}

	img, err := vision.DecodeImage(imageData)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	identity, err := h.voter.Decide(r.Context(), img, regions)
	if err != nil {
		log.Printf("recognize: %v", err)
		respondError(w, http.StatusBadGateway, "recognition service unavailable")
		return
	}

	respondJSON(w, http.StatusOK, recognizeResponse{Identities: []string{identity}})
}
