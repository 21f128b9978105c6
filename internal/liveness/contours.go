package liveness

import (
	"image"
	"image/color"
)

// grayscale converts an image to 8-bit grayscale.
func grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// countExternalContours binarizes the sub-region of gray at the given
// intensity cutoff (pixels strictly above cutoff are foreground) and counts
// the connected foreground components. 8-connectivity, matching the external
// contour retrieval the original pipeline used.
func countExternalContours(gray *image.Gray, region image.Rectangle, cutoff uint8) int {
	region = region.Intersect(gray.Bounds())
	if region.Empty() {
		return 0
	}

	w := region.Dx()
	h := region.Dy()
	visited := make([]bool, w*h)

	foreground := func(x, y int) bool {
		return gray.GrayAt(region.Min.X+x, region.Min.Y+y).Y > cutoff
	}

	var neighbors = [8][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}

	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !foreground(x, y) {
				continue
			}
			count++

			// Flood-fill the component.
			stack := [][2]int{{x, y}}
			visited[idx] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, n := range neighbors {
					nx, ny := p[0]+n[0], p[1]+n[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if visited[nidx] || !foreground(nx, ny) {
						continue
					}
					visited[nidx] = true
					stack = append(stack, [2]int{nx, ny})
				}
			}
		}
	}
	return count
}
