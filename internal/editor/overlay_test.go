package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"mangapages/internal/draft"
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// overlayFixture mounts a two-element page displayed at half size.
func overlayFixture(t *testing.T) (*Controller, *Overlay, *EventBus) {
	t.Helper()
	rc := newFakeRemote()
	rc.doc = pageDoc("p1", "img.png",
		element("a", models.ElementDialogue, models.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.1}),
		element("b", models.ElementSFX, models.BBox{X: 0.6, Y: 0.6, W: 0.2, H: 0.2}),
	)
	c := newController(t, draft.NewMemoryStore("test"), rc, time.Hour)
	c.Mount(context.Background())

	bus := NewEventBus()
	o := NewOverlay(c, bus, Surface{ImageWidth: 1000, ImageHeight: 1500, ViewWidth: 500, ViewHeight: 750})
	o.SetDocument(c.Document(), c.Selected())
	t.Cleanup(o.Close)
	return c, o, bus
}

func bboxOf(t *testing.T, c *Controller, id string) models.BBox {
	t.Helper()
	doc := c.Document()
	i := doc.ElementIndex(id)
	if i < 0 {
		t.Fatalf("element %q missing", id)
	}
	return doc.Elements[i].Geometry.BBoxPct
}

func TestOverlayMovePreservesSize(t *testing.T) {
	c, o, bus := overlayFixture(t)

	s, err := o.PointerDown(Target{ElementID: "b", Handle: HandleMove}, 350, 525)
	if err != nil {
		t.Fatal(err)
	}
	if c.Selected() != "b" {
		t.Errorf("pointer down did not select: %q", c.Selected())
	}
	if bus.Len() != 1 {
		t.Fatalf("subscribers during drag = %d", bus.Len())
	}

	o.PointerMove(400, 600)
	want := models.BBox{X: 0.7, Y: 0.7, W: 0.2, H: 0.2}
	if d := cmp.Diff(want, bboxOf(t, c, "b"), approx); d != "" {
		t.Errorf("after move (-want +got):\n%s", d)
	}

	// far past the right and bottom edges
	o.PointerUp(2000, 2000)
	want = models.BBox{X: 0.8, Y: 0.8, W: 0.2, H: 0.2}
	if d := cmp.Diff(want, bboxOf(t, c, "b"), approx); d != "" {
		t.Errorf("after clamped move (-want +got):\n%s", d)
	}

	if !s.Released() || bus.Len() != 0 || o.Active() != nil {
		t.Errorf("session not torn down: released=%v subs=%d active=%v", s.Released(), bus.Len(), o.Active())
	}

	o.PointerMove(0, 0)
	if d := cmp.Diff(want, bboxOf(t, c, "b"), approx); d != "" {
		t.Errorf("move after release changed the box:\n%s", d)
	}
}

func TestOverlayResizeKeepsOppositeCorner(t *testing.T) {
	c, o, bus := overlayFixture(t)
	_ = c.Select("a")
	o.SetDocument(c.Document(), c.Selected())

	tests := []struct {
		handle Handle
		x, y   float64 // pointer down, view pixels
		dx, dy float64 // drag, view pixels
		want   models.BBox
	}{
		{HandleSE, 150, 150, 50, 75, models.BBox{X: 0.1, Y: 0.1, W: 0.3, H: 0.2}},
		{HandleNW, 50, 75, 25, 0, models.BBox{X: 0.15, Y: 0.1, W: 0.15, H: 0.1}},
		{HandleNE, 150, 75, 0, 500, models.BBox{X: 0.1, Y: 0.19, W: 0.2, H: 0.01}},
		{HandleSW, 50, 150, -500, 0, models.BBox{X: 0, Y: 0.1, W: 0.3, H: 0.1}},
	}
	start := bboxOf(t, c, "a")
	for _, tc := range tests {
		t.Run(string(tc.handle), func(t *testing.T) {
			if err := c.UpdateBBox("a", start); err != nil {
				t.Fatal(err)
			}
			o.SetDocument(c.Document(), "a")

			s, err := o.PointerDown(Target{ElementID: "a", Handle: tc.handle}, tc.x, tc.y)
			if err != nil {
				t.Fatal(err)
			}
			if !s.Resizing() {
				t.Fatal("corner drag is not a resize")
			}
			o.PointerUp(tc.x+tc.dx, tc.y+tc.dy)
			if d := cmp.Diff(tc.want, bboxOf(t, c, "a"), approx); d != "" {
				t.Errorf("(-want +got):\n%s", d)
			}
			if bus.Len() != 0 {
				t.Errorf("subscribers after release = %d", bus.Len())
			}
		})
	}
}

func TestOverlayCancelAndClose(t *testing.T) {
	c, o, bus := overlayFixture(t)
	before := bboxOf(t, c, "a")

	s, err := o.PointerDown(Target{ElementID: "a", Handle: HandleMove}, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	o.Cancel()
	if !s.Released() || bus.Len() != 0 {
		t.Fatalf("cancel left released=%v subs=%d", s.Released(), bus.Len())
	}
	if d := cmp.Diff(before, bboxOf(t, c, "a")); d != "" {
		t.Errorf("cancel moved the box:\n%s", d)
	}

	first, _ := o.PointerDown(Target{ElementID: "a", Handle: HandleMove}, 100, 100)
	second, _ := o.PointerDown(Target{ElementID: "b", Handle: HandleMove}, 350, 525)
	if !first.Released() || bus.Len() != 1 || o.Active() != second {
		t.Errorf("new gesture did not replace the old one: subs=%d", bus.Len())
	}

	o.Close()
	if !second.Released() || bus.Len() != 0 {
		t.Errorf("Close left subs=%d", bus.Len())
	}
	second.Release()
	if bus.Len() != 0 {
		t.Errorf("double release changed subscriptions")
	}
}

func TestOverlayElementDeletedMidDrag(t *testing.T) {
	c, o, bus := overlayFixture(t)
	s, err := o.PointerDown(Target{ElementID: "a", Handle: HandleMove}, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteElement("a"); err != nil {
		t.Fatal(err)
	}
	o.PointerMove(120, 120)
	if !errors.Is(s.Err(), ErrUnknownElement) {
		t.Errorf("session err = %v", s.Err())
	}
	o.PointerUp(120, 120)
	if bus.Len() != 0 {
		t.Errorf("subs = %d", bus.Len())
	}
}

func TestOverlayPointerDownErrors(t *testing.T) {
	_, o, bus := overlayFixture(t)
	if _, err := o.PointerDown(Target{ElementID: "nope", Handle: HandleMove}, 0, 0); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("unknown element: %v", err)
	}
	if _, err := o.PointerDown(Target{ElementID: "a", Handle: "middle"}, 0, 0); err == nil {
		t.Error("bad handle accepted")
	}
	if bus.Len() != 0 {
		t.Errorf("failed pointer down subscribed: %d", bus.Len())
	}

	empty := NewOverlay(nil, nil, Surface{})
	if _, err := empty.PointerDown(Target{ElementID: "a"}, 0, 0); !errors.Is(err, ErrNoDocument) {
		t.Errorf("no document: %v", err)
	}
}

func TestOverlayHitTest(t *testing.T) {
	c, o, _ := overlayFixture(t)
	_ = c.Select("a")
	o.SetDocument(c.Document(), "a")

	tests := []struct {
		name string
		x, y float64
		want Target
		err  error
	}{
		{"se handle", 152, 148, Target{ElementID: "a", Handle: HandleSE}, nil},
		{"nw handle", 50, 75, Target{ElementID: "a", Handle: HandleNW}, nil},
		{"body", 100, 110, Target{ElementID: "a", Handle: HandleMove}, nil},
		{"other body", 375, 525, Target{ElementID: "b", Handle: HandleMove}, nil},
		{"nothing", 490, 20, Target{}, ErrNoTarget},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := o.HitTest(tc.x, tc.y)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOverlayHitTestTopmostWins(t *testing.T) {
	c, o, _ := overlayFixture(t)
	_ = c.UpdateBBox("b", models.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.1})
	o.SetDocument(c.Document(), "")
	got, err := o.HitTest(100, 110)
	if err != nil || got.ElementID != "b" {
		t.Errorf("got %+v, %v; want later element b", got, err)
	}
}

func TestOverlayLayout(t *testing.T) {
	c, o, _ := overlayFixture(t)
	err := c.PatchElement("a", func(e *models.Element) {
		e.Geometry.BBoxPct = models.BBox{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}
		e.Container = &models.Container{
			Kind:    "balloon",
			Path:    "M100 150 L300 150 L300 300 Z",
			BBoxPct: models.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.1},
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	o.SetDocument(c.Document(), "a")
	o.Hover("b")

	regions := o.Layout()
	if len(regions) != 2 {
		t.Fatalf("got %d regions", len(regions))
	}
	a, b := regions[0], regions[1]
	if d := cmp.Diff(geometry.Rect{X: 100, Y: 150, W: 100, H: 150}, a.Rect, approx); d != "" {
		t.Errorf("pixel rect (-want +got):\n%s", d)
	}
	if !a.Selected || len(a.Handles) != 4 || a.Hovered {
		t.Errorf("selected region = %+v", a)
	}
	if b.Selected || !b.Hovered || b.Handles != nil {
		t.Errorf("other region = %+v", b)
	}
	if a.Container == nil {
		t.Fatal("container not rendered")
	}
	if a.Container.Path != "M100 150 L300 150 L300 300 Z" {
		t.Errorf("container path rewritten: %q", a.Container.Path)
	}
	if got, want := a.Container.Transform, "matrix(0.5 0 0 1 50 0)"; got != want {
		t.Errorf("transform = %q, want %q", got, want)
	}
}
