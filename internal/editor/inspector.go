package editor

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

// Inspector is the form-style editing surface. It writes through the same
// controller primitives as the overlay.
type Inspector struct {
	c *Controller
}

func NewInspector(c *Controller) *Inspector {
	return &Inspector{c: c}
}

func (in *Inspector) SetType(id, value string) error {
	t, err := models.ParseElementType(value)
	if err != nil {
		return err
	}
	return in.c.PatchElement(id, func(e *models.Element) { e.Type = t })
}

// SetReadingOrder takes the raw field text; an empty string clears the value.
func (in *Inspector) SetReadingOrder(id, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return in.c.PatchElement(id, func(e *models.Element) { e.ReadingOrder = nil })
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("reading order %q is not an integer", value)
	}
	return in.c.PatchElement(id, func(e *models.Element) { e.ReadingOrder = models.IntPtr(n) })
}

func (in *Inspector) SetText(id, raw string) error {
	return in.c.PatchElement(id, func(e *models.Element) { e.Text.Raw = raw })
}

func (in *Inspector) SetNeedsReview(id string, v bool) error {
	return in.c.PatchElement(id, func(e *models.Element) { e.Flags.NeedsReview = models.BoolPtr(v) })
}

// SetBBoxField sets one of x, y, w, h. Out-of-range input is clamped to [0,1]
// and the box is normalized, never rejected.
func (in *Inspector) SetBBoxField(id, field string, value float64) error {
	field = strings.ToLower(field)
	switch field {
	case "x", "y", "w", "h":
	default:
		return fmt.Errorf("unknown bbox field %q", field)
	}
	v := geometry.Clamp(value, 0, 1)
	return in.c.PatchElement(id, func(e *models.Element) {
		b := e.Geometry.BBoxPct
		switch field {
		case "x":
			b.X = v
		case "y":
			b.Y = v
		case "w":
			b.W = v
		case "h":
			b.H = v
		}
		e.Geometry.BBoxPct = geometry.Normalize(b)
	})
}

// SetBBoxFieldText parses the field text first; non-numbers are an error.
func (in *Inspector) SetBBoxFieldText(id, field, value string) error {
	switch strings.ToLower(field) {
	case "x", "y", "w", "h":
	default:
		return fmt.Errorf("unknown bbox field %q", field)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%s must be a number", field)
	}
	return in.SetBBoxField(id, field, v)
}

func (in *Inspector) SetTitle(title string) error {
	return in.c.PatchDocument(func(d *models.Document) error {
		d.Title = optional(title)
		return nil
	})
}

func (in *Inspector) SetDescription(desc string) error {
	return in.c.PatchDocument(func(d *models.Document) error {
		d.Description = optional(desc)
		return nil
	})
}

// SetKeywords takes the comma-delimited field text.
func (in *Inspector) SetKeywords(text string) error {
	kws := ParseKeywords(text)
	return in.c.PatchDocument(func(d *models.Document) error {
		d.Keywords = kws
		return nil
	})
}

// KeywordsText renders keywords back into the editable field form.
func KeywordsText(kws []string) string {
	return strings.Join(kws, ", ")
}

// ParseKeywords splits on commas, trims, NFC-normalizes and drops empties.
func ParseKeywords(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(norm.NFC.String(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (in *Inspector) Add(t models.ElementType) (string, error) {
	return in.c.AddElement(t)
}

func (in *Inspector) Delete(id string) error {
	return in.c.DeleteElement(id)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return models.StringPtr(s)
}
