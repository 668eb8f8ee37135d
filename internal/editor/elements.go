package editor

import (
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

// DefaultBBox is where a new element of type t is placed.
func DefaultBBox(t models.ElementType) models.BBox {
	switch t {
	case models.ElementDialogue:
		return models.BBox{X: 0.1, Y: 0.1, W: 0.25, H: 0.12}
	case models.ElementNarration:
		return models.BBox{X: 0.05, Y: 0.05, W: 0.4, H: 0.08}
	case models.ElementSFX:
		return models.BBox{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}
	default:
		return models.BBox{X: 0.3, Y: 0.3, W: 0.2, H: 0.08}
	}
}

// AddElement appends a new element of type t flagged for review and selects it.
func (c *Controller) AddElement(t models.ElementType) (string, error) {
	if _, err := models.ParseElementType(string(t)); err != nil {
		return "", err
	}
	id := c.newID()
	err := c.PatchDocument(func(d *models.Document) error {
		order := 1
		for i := range d.Elements {
			if ro := d.Elements[i].ReadingOrder; ro != nil && *ro >= order {
				order = *ro + 1
			}
		}
		d.Elements = append(d.Elements, models.Element{
			ID:           id,
			Type:         t,
			ReadingOrder: models.IntPtr(order),
			Geometry:     models.Geometry{BBoxPct: geometry.Normalize(DefaultBBox(t))},
			Flags:        models.Flags{NeedsReview: models.BoolPtr(true)},
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, c.Select(id)
}

// DeleteElement removes an element. If it was selected, the selection moves
// to the element that followed it, else the one before it, else nothing.
func (c *Controller) DeleteElement(id string) error {
	var wasSelected bool
	var neighbor string

	c.mu.Lock()
	wasSelected = c.selected == id
	c.mu.Unlock()

	err := c.PatchDocument(func(d *models.Document) error {
		i := d.ElementIndex(id)
		if i < 0 {
			return ErrUnknownElement
		}
		switch {
		case i+1 < len(d.Elements):
			neighbor = d.Elements[i+1].ID
		case i > 0:
			neighbor = d.Elements[i-1].ID
		}
		d.Elements = append(d.Elements[:i:i], d.Elements[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	if wasSelected {
		return c.Select(neighbor)
	}
	return nil
}
