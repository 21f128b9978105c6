// Package liveness decides whether a detected face region shows a live
// subject. Two heuristic signals are combined: a blink check over eye
// landmarks (eye-aspect-ratio below threshold means closed lids in this
// frame) and a specular-highlight check over the eye sub-images. Either
// signal firing classifies the face as live.
package liveness

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log"

	"github.com/maperezv/staff-attendance/internal/vision"
)

// Analyzer gates face crops on liveness. It is constructed once at startup
// and shared read-only across requests.
type Analyzer struct {
	eyes             vision.EyeDetector
	blinkThreshold   float64
	reflectionCutoff uint8
}

// New creates an analyzer. blinkThreshold is the average-EAR cutoff below
// which the eyes count as closed; reflectionCutoff is the binarization
// intensity for the highlight check.
func New(eyes vision.EyeDetector, blinkThreshold float64, reflectionCutoff int) *Analyzer {
	if reflectionCutoff < 0 {
		reflectionCutoff = 0
	}
	if reflectionCutoff > 255 {
		reflectionCutoff = 255
	}
	return &Analyzer{
		eyes:             eyes,
		blinkThreshold:   blinkThreshold,
		reflectionCutoff: uint8(reflectionCutoff),
	}
}

// IsLive reports whether the face region shows a live subject. The only
// error path is the eye-detector capability failing; every well-formed input
// yields a boolean. Zero detected eyes always classifies as not live, a
// known false negative for side-profile faces.
func (a *Analyzer) IsLive(ctx context.Context, face image.Image) (bool, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, face, &jpeg.Options{Quality: 90}); err != nil {
		return false, fmt.Errorf("encoding face region: %w", err)
	}

	eyes, err := a.eyes.DetectEyes(ctx, buf.Bytes())
	if err != nil {
		return false, fmt.Errorf("detecting eyes: %w", err)
	}

	if a.blinkDetected(eyes) {
		return true, nil
	}
	if a.reflectionDetected(face, eyes) {
		return true, nil
	}
	return false, nil
}

// blinkDetected evaluates the EAR blink signal. Only a two-eye detection is
// conclusive; an indeterminate ratio for either eye short-circuits to false
// rather than failing.
func (a *Analyzer) blinkDetected(eyes []vision.Eye) bool {
	if len(eyes) != 2 {
		return false
	}

	left, leftOK := EyeAspectRatio(eyes[0].Landmarks)
	right, rightOK := EyeAspectRatio(eyes[1].Landmarks)
	if !leftOK || !rightOK {
		log.Printf("liveness: EAR indeterminate for at least one eye")
		return false
	}

	avg := (left + right) / 2.0
	return avg < a.blinkThreshold
}

// reflectionDetected looks for a specular highlight in any detected eye
// sub-region. Operates over whatever eyes were found, including one.
func (a *Analyzer) reflectionDetected(face image.Image, eyes []vision.Eye) bool {
	if len(eyes) == 0 {
		return false
	}

	gray := grayscale(face)
	for _, eye := range eyes {
		if countExternalContours(gray, eye.Rect, a.reflectionCutoff) > 0 {
			return true
		}
	}
	return false
}
