package geometry

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"

	"mangapages/pkg/models"
)

// Rect is a box in image pixels.
type Rect struct {
	X, Y, W, H float64
}

func ToPixels(b models.BBox, imgW, imgH int) Rect {
	w, h := float64(imgW), float64(imgH)
	return Rect{X: b.X * w, Y: b.Y * h, W: b.W * w, H: b.H * h}
}

func FromPixels(r Rect, imgW, imgH int) models.BBox {
	if imgW <= 0 || imgH <= 0 {
		return models.BBox{}
	}
	w, h := float64(imgW), float64(imgH)
	return models.BBox{X: r.X / w, Y: r.Y / h, W: r.W / w, H: r.H / h}
}

// ContainerTransform maps image-pixel coordinates authored against recorded
// onto the same relative position inside current. Scale is independent per
// axis; there is no rotation or shear.
func ContainerTransform(recorded, current models.BBox, imgW, imgH int) matrix.Matrix {
	w, h := float64(imgW), float64(imgH)

	sx, sy := 1.0, 1.0
	if recorded.W > 0 {
		sx = current.W / recorded.W
	}
	if recorded.H > 0 {
		sy = current.H / recorded.H
	}
	tx := current.X*w - recorded.X*w*sx
	ty := current.Y*h - recorded.Y*h*sy

	return matrix.Matrix{sx, 0, 0, sy, tx, ty}
}

// Apply maps the point (x, y) through m.
func Apply(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// SVGTransform renders m as an SVG transform attribute value.
func SVGTransform(m matrix.Matrix) string {
	return fmt.Sprintf("matrix(%g %g %g %g %g %g)", m[0], m[1], m[2], m[3], m[4], m[5])
}
