package models

import (
	"fmt"
	"strings"
)

type ElementType string

const (
	ElementDialogue  ElementType = "dialogue"
	ElementNarration ElementType = "narration"
	ElementFreeText  ElementType = "free_text"
	ElementSFX       ElementType = "sfx"
)

// ElementTypes lists the closed set in display order.
var ElementTypes = []ElementType{ElementDialogue, ElementNarration, ElementFreeText, ElementSFX}

func ParseElementType(s string) (ElementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dialogue":
		return ElementDialogue, nil
	case "narration":
		return ElementNarration, nil
	case "free_text", "free-text", "freetext":
		return ElementFreeText, nil
	case "sfx":
		return ElementSFX, nil
	default:
		return "", fmt.Errorf("unknown element type %q", s)
	}
}

// Element is one annotated region of the page.
type Element struct {
	ID           string      `json:"id"`
	Type         ElementType `json:"type"`
	ReadingOrder *int        `json:"readingOrder,omitempty"`
	Text         Text        `json:"text"`
	Geometry     Geometry    `json:"geometry"`
	Container    *Container  `json:"container,omitempty"`
	StyleHints   *StyleHints `json:"styleHints,omitempty"`
	Confidence   *float64    `json:"confidence,omitempty"`
	Flags        Flags       `json:"flags"`
}

type Text struct {
	Raw string `json:"raw"`
}

type Geometry struct {
	BBoxPct    BBox    `json:"bboxPct"`
	PolygonPct []Point `json:"polygonPct,omitempty"`
}

// BBox is a bounding box in fractions of the image width and height.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether b satisfies the containment invariant. The small
// tolerance absorbs float rounding in x+w.
func (b BBox) Valid() bool {
	const eps = 1e-9
	return b.W >= 0.01-eps && b.H >= 0.01-eps &&
		b.X >= 0 && b.Y >= 0 &&
		b.X+b.W <= 1+eps && b.Y+b.H <= 1+eps
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Container is a decorative outline (speech bubble, caption box) drawn with an
// element. Path is SVG path data in image pixels, authored against BBoxPct; it
// is never rewritten when the element moves.
type Container struct {
	Kind    string `json:"kind,omitempty"`
	Path    string `json:"path"`
	BBoxPct BBox   `json:"bboxPct"`
}

type StyleHints struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	TextColor   string  `json:"textColor,omitempty"`
}

type Flags struct {
	NeedsReview *bool `json:"needsReview,omitempty"`
}

// NeedsReview treats an unset flag as false.
func (e *Element) NeedsReview() bool {
	return e.Flags.NeedsReview != nil && *e.Flags.NeedsReview
}

func (e Element) Clone() Element {
	out := e
	if e.ReadingOrder != nil {
		v := *e.ReadingOrder
		out.ReadingOrder = &v
	}
	if e.Geometry.PolygonPct != nil {
		out.Geometry.PolygonPct = append([]Point(nil), e.Geometry.PolygonPct...)
	}
	if e.Container != nil {
		c := *e.Container
		out.Container = &c
	}
	if e.StyleHints != nil {
		s := *e.StyleHints
		out.StyleHints = &s
	}
	if e.Confidence != nil {
		v := *e.Confidence
		out.Confidence = &v
	}
	if e.Flags.NeedsReview != nil {
		v := *e.Flags.NeedsReview
		out.Flags.NeedsReview = &v
	}
	return out
}

func BoolPtr(b bool) *bool { return &b }

func IntPtr(n int) *int { return &n }
