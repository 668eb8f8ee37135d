package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mangapages/internal/draft"
	"mangapages/pkg/models"
)

func inspectorFixture(t *testing.T) (*Controller, *Inspector) {
	t.Helper()
	rc := newFakeRemote()
	a := element("a", models.ElementDialogue, models.BBox{X: 0.1, Y: 0.1, W: 0.2, H: 0.1})
	a.ReadingOrder = models.IntPtr(1)
	b := element("b", models.ElementNarration, models.BBox{X: 0.4, Y: 0.1, W: 0.2, H: 0.1})
	b.ReadingOrder = models.IntPtr(3)
	c := element("c", models.ElementSFX, models.BBox{X: 0.7, Y: 0.1, W: 0.2, H: 0.1})
	rc.doc = pageDoc("p1", "img.png", a, b, c)

	ctrl := newController(t, draft.NewMemoryStore("test"), rc, time.Hour)
	ctrl.Mount(context.Background())
	return ctrl, NewInspector(ctrl)
}

func TestInspectorSetBBoxFieldClamps(t *testing.T) {
	c, in := inspectorFixture(t)

	tests := []struct {
		field string
		value string
		want  models.BBox
	}{
		{"x", "2", models.BBox{X: 0.8, Y: 0.1, W: 0.2, H: 0.1}},
		{"y", "-3", models.BBox{X: 0.1, Y: 0, W: 0.2, H: 0.1}},
		{"w", "0", models.BBox{X: 0.1, Y: 0.1, W: 0.01, H: 0.1}},
		{"H", "1.5", models.BBox{X: 0.1, Y: 0, W: 0.2, H: 1}},
	}
	start := bboxOf(t, c, "a")
	for _, tc := range tests {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			_ = c.UpdateBBox("a", start)
			if err := in.SetBBoxFieldText("a", tc.field, tc.value); err != nil {
				t.Fatal(err)
			}
			got := bboxOf(t, c, "a")
			if d := cmp.Diff(tc.want, got, approx); d != "" {
				t.Errorf("(-want +got):\n%s", d)
			}
			if !got.Valid() {
				t.Errorf("stored box %+v is not valid", got)
			}
		})
	}

	if err := in.SetBBoxFieldText("a", "x", "abc"); err == nil {
		t.Error("non-number accepted")
	}
	if err := in.SetBBoxFieldText("a", "z", "0.5"); err == nil {
		t.Error("unknown field accepted")
	}
}

func TestInspectorSetBBoxFieldUnknownField(t *testing.T) {
	c, in := inspectorFixture(t)
	c.FlushDraft()
	writes := c.DraftWrites()
	before := bboxOf(t, c, "a")

	if err := in.SetBBoxField("a", "depth", 0.5); err == nil {
		t.Fatal("unknown field accepted")
	}
	c.FlushDraft()
	if got := c.DraftWrites(); got != writes {
		t.Errorf("draft writes %d, want %d", got, writes)
	}
	if d := cmp.Diff(before, bboxOf(t, c, "a")); d != "" {
		t.Errorf("box changed (-before +after):\n%s", d)
	}
}

func TestInspectorReadingOrder(t *testing.T) {
	c, in := inspectorFixture(t)

	if err := in.SetReadingOrder("a", " 7 "); err != nil {
		t.Fatal(err)
	}
	if ro := c.Document().Elements[0].ReadingOrder; ro == nil || *ro != 7 {
		t.Errorf("reading order = %v", ro)
	}
	if err := in.SetReadingOrder("a", ""); err != nil {
		t.Fatal(err)
	}
	if ro := c.Document().Elements[0].ReadingOrder; ro != nil {
		t.Errorf("empty input kept %d", *ro)
	}
	if err := in.SetReadingOrder("a", "first"); err == nil {
		t.Error("non-integer accepted")
	}
}

func TestInspectorFields(t *testing.T) {
	c, in := inspectorFixture(t)

	if err := in.SetType("a", "sfx"); err != nil {
		t.Fatal(err)
	}
	if err := in.SetType("a", "caption"); err == nil {
		t.Error("unknown type accepted")
	}
	_ = in.SetText("a", "WHAM")
	_ = in.SetNeedsReview("a", true)
	_ = in.SetTitle("Chapter 1")
	_ = in.SetDescription("")
	_ = in.SetKeywords(" action, , fight ,café ")

	doc := c.Document()
	el := doc.Elements[0]
	if el.Type != models.ElementSFX || el.Text.Raw != "WHAM" || !el.NeedsReview() {
		t.Errorf("element = %+v", el)
	}
	if doc.Title == nil || *doc.Title != "Chapter 1" || doc.Description != nil {
		t.Errorf("title %v description %v", doc.Title, doc.Description)
	}
	if d := cmp.Diff([]string{"action", "fight", "café"}, doc.Keywords); d != "" {
		t.Errorf("keywords (-want +got):\n%s", d)
	}
	if got := KeywordsText(doc.Keywords); got != "action, fight, café" {
		t.Errorf("KeywordsText = %q", got)
	}

	if err := in.SetText("zzz", "x"); !errors.Is(err, ErrUnknownElement) {
		t.Errorf("unknown element: %v", err)
	}
}

func TestAddElement(t *testing.T) {
	c, in := inspectorFixture(t)

	id, err := in.Add(models.ElementDialogue)
	if err != nil {
		t.Fatal(err)
	}
	if id != "new-1" || c.Selected() != id {
		t.Fatalf("id %q selected %q", id, c.Selected())
	}
	doc := c.Document()
	el := doc.Elements[len(doc.Elements)-1]
	if el.ID != id || !el.NeedsReview() {
		t.Errorf("new element = %+v", el)
	}
	if el.ReadingOrder == nil || *el.ReadingOrder != 4 {
		t.Errorf("reading order = %v, want 4", el.ReadingOrder)
	}
	if d := cmp.Diff(DefaultBBox(models.ElementDialogue), el.Geometry.BBoxPct); d != "" {
		t.Errorf("bbox (-want +got):\n%s", d)
	}
	if _, err := in.Add("caption"); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestAddElementWithoutDocument(t *testing.T) {
	c := newController(t, draft.NewMemoryStore("test"), newFakeRemote(), time.Hour)
	if _, err := c.AddElement(models.ElementSFX); !errors.Is(err, ErrNoDocument) {
		t.Errorf("AddElement = %v", err)
	}
}

func TestDeleteElementMovesSelection(t *testing.T) {
	c, in := inspectorFixture(t)

	steps := []struct {
		selectID string
		deleteID string
		want     string
	}{
		{"b", "b", "c"},   // next element
		{"c", "c", "a"},   // last one: previous element
		{"a", "zzz", "a"}, // unknown id: nothing changes
		{"", "a", ""},     // not selected: selection untouched
	}
	for _, s := range steps {
		if s.selectID != "" {
			if err := c.Select(s.selectID); err != nil {
				t.Fatal(err)
			}
		} else {
			_ = c.Select("")
		}
		_ = in.Delete(s.deleteID)
		if got := c.Selected(); got != s.want {
			t.Errorf("after deleting %q: selected %q, want %q", s.deleteID, got, s.want)
		}
	}
	if n := len(c.Document().Elements); n != 0 {
		t.Errorf("%d elements left", n)
	}
}

func TestDeleteOnlyElementClearsSelection(t *testing.T) {
	rc := newFakeRemote()
	rc.doc = pageDoc("p1", "img.png", element("a", models.ElementDialogue, models.BBox{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}))
	c := newController(t, draft.NewMemoryStore("test"), rc, time.Hour)
	c.Mount(context.Background())

	if err := c.DeleteElement("a"); err != nil {
		t.Fatal(err)
	}
	if c.Selected() != "" {
		t.Errorf("selected = %q", c.Selected())
	}
}
