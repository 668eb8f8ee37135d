package editor

import "sync"

type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerUp
	PointerCancel
)

// PointerEvent is a window-level pointer event in view pixels.
type PointerEvent struct {
	Kind PointerKind
	X, Y float64
}

// EventBus fans global pointer events out to subscribers. Only an active drag
// session subscribes, so Len is 0 whenever no gesture is in progress.
type EventBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(PointerEvent)
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]func(PointerEvent))}
}

// Subscribe registers fn and returns its unsubscribe function. Calling the
// returned function more than once is harmless.
func (b *EventBus) Subscribe(fn func(PointerEvent)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Dispatch delivers ev to every subscriber registered at the time of the call.
func (b *EventBus) Dispatch(ev PointerEvent) {
	b.mu.Lock()
	fns := make([]func(PointerEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *EventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
