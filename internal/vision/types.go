// Package vision wraps the external computer-vision capabilities the service
// consumes: the face detector sidecar, the identity matcher, the embedding
// service and the eye sub-detector used by the liveness analyzer.
package vision

import (
	"image"
	"math"
	"path/filepath"
)

// FaceRegion is a detected face bounding box in pixel coordinates.
type FaceRegion struct {
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Confidence float64 `json:"confidence"`
	Class      int     `json:"class"`
}

// Rect returns the region as an image.Rectangle.
func (f FaceRegion) Rect() image.Rectangle {
	return image.Rect(f.X1, f.Y1, f.X2, f.Y2)
}

// Clip clamps the region to the image bounds. The result may be degenerate;
// callers must check Valid afterwards.
func (f FaceRegion) Clip(bounds image.Rectangle) FaceRegion {
	f.X1 = max(f.X1, bounds.Min.X)
	f.Y1 = max(f.Y1, bounds.Min.Y)
	f.X2 = min(f.X2, bounds.Max.X-1)
	f.Y2 = min(f.Y2, bounds.Max.Y-1)
	return f
}

// Valid reports whether the region encloses at least one pixel.
func (f FaceRegion) Valid() bool {
	return f.X1 < f.X2 && f.Y1 < f.Y2
}

// Match is a single nearest-neighbor row returned by the identity matcher.
// IdentityPath is the matched gallery image path; Distance is the embedding
// distance (lower is closer).
type Match struct {
	IdentityPath string  `json:"identity"`
	Distance     float64 `json:"distance"`
}

// Label derives the identity label from the immediate parent folder of the
// matched gallery image path. The gallery is organized one subfolder per
// identity.
func (m Match) Label() string {
	return filepath.Base(filepath.Dir(m.IdentityPath))
}

// validMatch rejects loosely-shaped matcher rows at the boundary: empty
// identity paths and non-finite distances are dropped instead of propagating.
func validMatch(m Match) bool {
	if m.IdentityPath == "" {
		return false
	}
	if math.IsNaN(m.Distance) || math.IsInf(m.Distance, 0) {
		return false
	}
	return m.Label() != "." && m.Label() != string(filepath.Separator)
}

// Eye is an eye sub-region found inside a face region. Landmarks holds up to
// six contour points (p0..p5) when the detector provides them; fewer points
// mean the eye-aspect-ratio cannot be computed for this eye.
type Eye struct {
	Rect      image.Rectangle
	Landmarks []image.Point
}
