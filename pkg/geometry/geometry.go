// Package geometry holds the pure bounding-box math of the page editor.
//
// All boxes are models.BBox values in normalized page space: fractions of the
// image width and height, independent of zoom or display size.
package geometry

import (
	"fmt"
	"math"

	"mangapages/pkg/models"
)

// MinSize is the smallest width or height a box may have (1% of the image).
const MinSize = 0.01

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize forces b inside the unit square with at least MinSize extent.
// Size is clamped before position so the final box is always fully contained.
func Normalize(b models.BBox) models.BBox {
	w := Clamp(finite(b.W), MinSize, 1)
	h := Clamp(finite(b.H), MinSize, 1)
	return models.BBox{
		X: Clamp(finite(b.X), 0, 1-w),
		Y: Clamp(finite(b.Y), 0, 1-h),
		W: w,
		H: h,
	}
}

// Move translates start by (dx, dy) and clamps the position only; width and
// height are returned untouched.
func Move(start models.BBox, dx, dy float64) models.BBox {
	return models.BBox{
		X: Clamp(start.X+dx, 0, math.Max(0, 1-start.W)),
		Y: Clamp(start.Y+dy, 0, math.Max(0, 1-start.H)),
		W: start.W,
		H: start.H,
	}
}

// Corner names a resize handle.
type Corner string

const (
	NW Corner = "nw"
	NE Corner = "ne"
	SW Corner = "sw"
	SE Corner = "se"
)

func ParseCorner(s string) (Corner, error) {
	switch c := Corner(s); c {
	case NW, NE, SW, SE:
		return c, nil
	}
	return "", fmt.Errorf("unknown corner %q", s)
}

// Edges is a box described by its four sides.
type Edges struct {
	Left, Right, Top, Bottom float64
}

func EdgesOf(b models.BBox) Edges {
	return Edges{Left: b.X, Right: b.X + b.W, Top: b.Y, Bottom: b.Y + b.H}
}

func (e Edges) BBox() models.BBox {
	return models.BBox{X: e.Left, Y: e.Top, W: e.Right - e.Left, H: e.Bottom - e.Top}
}

// Resize drags the given corner of start by (dx, dy). Only the two edges
// owned by the corner move. When the box would collapse below MinSize the
// moving edge is pulled back toward its fixed opposite, never the reverse,
// so the opposite corner stays put.
func Resize(start models.BBox, corner Corner, dx, dy float64) models.BBox {
	e := EdgesOf(start)

	switch corner {
	case NW, SW:
		e.Left += dx
		if e.Right-e.Left < MinSize {
			e.Left = e.Right - MinSize
		}
		e.Left = Clamp(e.Left, 0, 1)
	case NE, SE:
		e.Right += dx
		if e.Right-e.Left < MinSize {
			e.Right = e.Left + MinSize
		}
		e.Right = Clamp(e.Right, 0, 1)
	}

	switch corner {
	case NW, NE:
		e.Top += dy
		if e.Bottom-e.Top < MinSize {
			e.Top = e.Bottom - MinSize
		}
		e.Top = Clamp(e.Top, 0, 1)
	case SW, SE:
		e.Bottom += dy
		if e.Bottom-e.Top < MinSize {
			e.Bottom = e.Top + MinSize
		}
		e.Bottom = Clamp(e.Bottom, 0, 1)
	}

	return e.BBox()
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
