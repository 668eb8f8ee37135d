package editor

import (
	"errors"
	"math"
	"sync"

	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

// BBoxEditor is what the overlay reports to. *Controller implements it.
type BBoxEditor interface {
	UpdateBBox(id string, b models.BBox) error
	Select(id string) error
}

// Surface relates the image to the area it is displayed in.
type Surface struct {
	ImageWidth, ImageHeight int     // natural image size in pixels
	ViewWidth, ViewHeight   float64 // displayed size in view pixels
}

// toPct converts a view-pixel position to normalized page space.
func (s Surface) toPct(x, y float64) (float64, float64) {
	if s.ViewWidth <= 0 || s.ViewHeight <= 0 {
		return 0, 0
	}
	return x / s.ViewWidth, y / s.ViewHeight
}

// Handle identifies what a pointer went down on.
type Handle string

const (
	HandleMove Handle = "move"
	HandleNW   Handle = Handle(geometry.NW)
	HandleNE   Handle = Handle(geometry.NE)
	HandleSW   Handle = Handle(geometry.SW)
	HandleSE   Handle = Handle(geometry.SE)
)

type Target struct {
	ElementID string
	Handle    Handle
}

// HandlePoint is a resize handle position in image pixels.
type HandlePoint struct {
	Corner geometry.Corner
	X, Y   float64
}

// ContainerRender is how a container shape is drawn: the untouched path plus
// the transform that fits it to the element's current box.
type ContainerRender struct {
	Kind      string
	Path      string
	Transform string
}

// Region is one element as the overlay draws it, in image pixels.
type Region struct {
	ID        string
	Type      models.ElementType
	Rect      geometry.Rect
	Selected  bool
	Hovered   bool
	Move      HandlePoint
	Handles   []HandlePoint
	Container *ContainerRender
}

var ErrNoTarget = errors.New("no element at pointer")

// HandleRadius is the hit radius of handles, in view pixels.
const HandleRadius = 8.0

// Overlay is the geometry editor. Hover is local; bbox and selection changes
// are reported to the editor.
type Overlay struct {
	editor BBoxEditor
	bus    *EventBus

	mu       sync.Mutex
	surface  Surface
	doc      *models.Document
	selected string
	hovered  string
	session  *DragSession
}

func NewOverlay(editor BBoxEditor, bus *EventBus, surface Surface) *Overlay {
	if bus == nil {
		bus = NewEventBus()
	}
	return &Overlay{editor: editor, bus: bus, surface: surface}
}

// SetDocument hands the overlay the document and selection to draw.
func (o *Overlay) SetDocument(doc *models.Document, selected string) {
	o.mu.Lock()
	o.doc = doc
	o.selected = selected
	if doc != nil && o.surface.ImageWidth == 0 {
		o.surface.ImageWidth = doc.Image.NaturalWidth
		o.surface.ImageHeight = doc.Image.NaturalHeight
	}
	o.mu.Unlock()
}

func (o *Overlay) SetSurface(s Surface) {
	o.mu.Lock()
	o.surface = s
	o.mu.Unlock()
}

func (o *Overlay) Hover(id string) {
	o.mu.Lock()
	o.hovered = id
	o.mu.Unlock()
}

// Layout returns the regions to draw, in document order.
func (o *Overlay) Layout() []Region {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.doc == nil {
		return nil
	}
	w, h := o.doc.Image.NaturalWidth, o.doc.Image.NaturalHeight

	out := make([]Region, 0, len(o.doc.Elements))
	for i := range o.doc.Elements {
		el := &o.doc.Elements[i]
		b := el.Geometry.BBoxPct
		r := geometry.ToPixels(b, w, h)
		reg := Region{
			ID:       el.ID,
			Type:     el.Type,
			Rect:     r,
			Selected: el.ID == o.selected,
			Hovered:  el.ID == o.hovered,
			Move:     HandlePoint{X: r.X, Y: r.Y},
		}
		if reg.Selected {
			reg.Handles = cornerHandles(r)
		}
		if el.Container != nil {
			m := geometry.ContainerTransform(el.Container.BBoxPct, b, w, h)
			reg.Container = &ContainerRender{
				Kind:      el.Container.Kind,
				Path:      el.Container.Path,
				Transform: geometry.SVGTransform(m),
			}
		}
		out = append(out, reg)
	}
	return out
}

func cornerHandles(r geometry.Rect) []HandlePoint {
	return []HandlePoint{
		{Corner: geometry.NW, X: r.X, Y: r.Y},
		{Corner: geometry.NE, X: r.X + r.W, Y: r.Y},
		{Corner: geometry.SW, X: r.X, Y: r.Y + r.H},
		{Corner: geometry.SE, X: r.X + r.W, Y: r.Y + r.H},
	}
}

// HitTest finds what lies under a view-pixel position: corner handles of the
// selected element first, then element bodies from topmost (last) down.
func (o *Overlay) HitTest(x, y float64) (Target, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.doc == nil || o.surface.ViewWidth <= 0 || o.surface.ViewHeight <= 0 {
		return Target{}, ErrNoTarget
	}
	sx := o.surface.ViewWidth
	sy := o.surface.ViewHeight

	if i := o.doc.ElementIndex(o.selected); i >= 0 {
		b := o.doc.Elements[i].Geometry.BBoxPct
		e := geometry.EdgesOf(b)
		corners := []struct {
			h    Handle
			x, y float64
		}{
			{HandleNW, e.Left, e.Top},
			{HandleNE, e.Right, e.Top},
			{HandleSW, e.Left, e.Bottom},
			{HandleSE, e.Right, e.Bottom},
		}
		for _, c := range corners {
			if math.Hypot(c.x*sx-x, c.y*sy-y) <= HandleRadius {
				return Target{ElementID: o.selected, Handle: c.h}, nil
			}
		}
	}

	px, py := o.surface.toPct(x, y)
	for i := len(o.doc.Elements) - 1; i >= 0; i-- {
		e := geometry.EdgesOf(o.doc.Elements[i].Geometry.BBoxPct)
		if px >= e.Left && px <= e.Right && py >= e.Top && py <= e.Bottom {
			return Target{ElementID: o.doc.Elements[i].ID, Handle: HandleMove}, nil
		}
	}
	return Target{}, ErrNoTarget
}

// PointerDown starts a drag on target at view position (x, y). The element
// becomes selected and a session subscribes to global move/up events until
// the gesture ends.
func (o *Overlay) PointerDown(target Target, x, y float64) (*DragSession, error) {
	o.mu.Lock()
	if o.doc == nil {
		o.mu.Unlock()
		return nil, ErrNoDocument
	}
	i := o.doc.ElementIndex(target.ElementID)
	if i < 0 {
		o.mu.Unlock()
		return nil, ErrUnknownElement
	}
	var corner geometry.Corner
	if target.Handle != HandleMove {
		c, err := geometry.ParseCorner(string(target.Handle))
		if err != nil {
			o.mu.Unlock()
			return nil, err
		}
		corner = c
	}
	prev := o.session
	o.session = nil
	start := o.doc.Elements[i].Geometry.BBoxPct
	px, py := o.surface.toPct(x, y)
	o.selected = target.ElementID
	surface := o.surface
	o.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
	if err := o.editor.Select(target.ElementID); err != nil {
		return nil, err
	}

	s := &DragSession{
		overlay: o,
		id:      target.ElementID,
		corner:  corner,
		start:   start,
		startX:  px,
		startY:  py,
		surface: surface,
		current: start,
	}
	s.unsubscribe = o.bus.Subscribe(s.handle)

	o.mu.Lock()
	o.session = s
	o.mu.Unlock()
	return s, nil
}

// PointerMove and PointerUp feed the global event stream; a host with real
// window events would call EventBus.Dispatch directly.
func (o *Overlay) PointerMove(x, y float64) { o.bus.Dispatch(PointerEvent{Kind: PointerMove, X: x, Y: y}) }
func (o *Overlay) PointerUp(x, y float64)   { o.bus.Dispatch(PointerEvent{Kind: PointerUp, X: x, Y: y}) }

// Cancel aborts the active gesture, if any.
func (o *Overlay) Cancel() { o.bus.Dispatch(PointerEvent{Kind: PointerCancel}) }

// Active returns the gesture in progress, or nil.
func (o *Overlay) Active() *DragSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Close tears the overlay down, releasing any gesture in progress.
func (o *Overlay) Close() {
	o.mu.Lock()
	s := o.session
	o.session = nil
	o.mu.Unlock()
	if s != nil {
		s.Release()
	}
}

func (o *Overlay) sessionEnded(s *DragSession) {
	o.mu.Lock()
	if o.session == s {
		o.session = nil
	}
	o.mu.Unlock()
}

// DragSession is one move or resize gesture. It owns its event subscription
// and gives it back exactly once, whichever way the gesture ends.
type DragSession struct {
	overlay *Overlay
	id      string
	corner  geometry.Corner // empty for a move
	start   models.BBox
	startX  float64
	startY  float64
	surface Surface

	mu          sync.Mutex
	current     models.BBox
	err         error
	unsubscribe func()
	released    bool
}

func (s *DragSession) ElementID() string { return s.id }

// Resizing reports whether this is a resize rather than a move.
func (s *DragSession) Resizing() bool { return s.corner != "" }

// Current is the last box reported to the editor.
func (s *DragSession) Current() models.BBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Err is the last error returned by the editor, e.g. when the element was
// deleted mid-drag.
func (s *DragSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *DragSession) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *DragSession) handle(ev PointerEvent) {
	switch ev.Kind {
	case PointerMove:
		s.move(ev.X, ev.Y)
	case PointerUp:
		s.move(ev.X, ev.Y)
		s.Release()
	case PointerCancel:
		s.Release()
	}
}

func (s *DragSession) move(x, y float64) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	px, py := s.surface.toPct(x, y)
	dx, dy := px-s.startX, py-s.startY

	var next models.BBox
	if s.corner == "" {
		next = geometry.Move(s.start, dx, dy)
	} else {
		next = geometry.Resize(s.start, s.corner, dx, dy)
	}
	s.current = next
	s.mu.Unlock()

	err := s.overlay.editor.UpdateBBox(s.id, next)
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Release ends the gesture and drops the event subscription. Safe to call
// more than once.
func (s *DragSession) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	unsub := s.unsubscribe
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.overlay.sessionEnded(s)
}
