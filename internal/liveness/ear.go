package liveness

import (
	"image"
	"math"
)

// earPointCount is the number of contour landmarks required around an eye
// (p0..p5) to compute the aspect ratio.
const earPointCount = 6

// EyeAspectRatio computes the eye-aspect-ratio from six landmark points
// ordered p0..p5 around the eye contour:
//
//	EAR = (|p1-p5| + |p2-p4|) / (2 * |p0-p3|)
//
// The second return value is false when the ratio is indeterminate: fewer
// than six points, or a degenerate horizontal axis. It never panics.
func EyeAspectRatio(points []image.Point) (float64, bool) {
	if len(points) < earPointCount {
		return 0, false
	}

	a := pointDistance(points[1], points[5])
	b := pointDistance(points[2], points[4])
	c := pointDistance(points[0], points[3])
	if c == 0 {
		return 0, false
	}

	return (a + b) / (2.0 * c), true
}

func pointDistance(p, q image.Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Hypot(dx, dy)
}
