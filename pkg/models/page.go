package models

import (
	"errors"
	"fmt"
)

// Document is one annotated comic page: the unit of persistence and sync.
//
// Field names on the wire are camelCase; the same shape is used by the page
// service, the local draft store and the export file.
type Document struct {
	ID          string    `json:"id"`
	PageNumber  int       `json:"pageNumber"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Keywords    []string  `json:"keywords"`
	Image       Image     `json:"image"`
	Elements    []Element `json:"elements"`
	Meta        Meta      `json:"meta"`
}

// Image points at the scanned page raster. Src may be a signed URL that
// expires, which is why it is refreshed from the server independently of the
// annotation.
type Image struct {
	Src           string `json:"src"`
	NaturalWidth  int    `json:"naturalWidth"`
	NaturalHeight int    `json:"naturalHeight"`
}

// Meta is provenance only; the editor never changes it.
type Meta struct {
	Version   string `json:"version"`
	Engine    string `json:"engine"`
	CreatedAt string `json:"createdAt"`
}

var (
	ErrMissingID    = errors.New("document id required")
	ErrInvalidImage = errors.New("image dimensions must be positive")
)

// Validate checks the parts of a document the editor relies on: positive
// image dimensions, known element types, unique element ids and bboxes that
// satisfy the containment invariant.
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrMissingID
	}
	if d.Image.NaturalWidth <= 0 || d.Image.NaturalHeight <= 0 {
		return ErrInvalidImage
	}
	seen := make(map[string]struct{}, len(d.Elements))
	for i := range d.Elements {
		el := &d.Elements[i]
		if el.ID == "" {
			return fmt.Errorf("element %d: id required", i)
		}
		if _, dup := seen[el.ID]; dup {
			return fmt.Errorf("element %s: duplicate id", el.ID)
		}
		seen[el.ID] = struct{}{}
		if _, err := ParseElementType(string(el.Type)); err != nil {
			return fmt.Errorf("element %s: %w", el.ID, err)
		}
		if !el.Geometry.BBoxPct.Valid() {
			return fmt.Errorf("element %s: bbox out of range", el.ID)
		}
	}
	return nil
}

// ElementIndex returns the position of the element with the given id, or -1.
func (d *Document) ElementIndex(id string) int {
	for i := range d.Elements {
		if d.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Title = cloneString(d.Title)
	out.Description = cloneString(d.Description)
	if d.Keywords != nil {
		out.Keywords = append([]string(nil), d.Keywords...)
	}
	if d.Elements != nil {
		out.Elements = make([]Element, len(d.Elements))
		for i := range d.Elements {
			out.Elements[i] = d.Elements[i].Clone()
		}
	}
	return &out
}

// StringPtr is a small helper for the optional string fields.
func StringPtr(s string) *string { return &s }

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
