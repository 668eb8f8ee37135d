// Package editor is the headless page-annotation editor: the hydration/sync
// controller that owns the document, the geometry overlay and the inspector
// that report edits back to it.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mangapages/internal/draft"
	"mangapages/internal/logging"
	"mangapages/internal/remote"
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

var (
	ErrBusy           = errors.New("operation already in progress")
	ErrNoDocument     = errors.New("no document loaded")
	ErrUnknownElement = errors.New("unknown element")
)

type State int

const (
	Unloaded State = iota
	LocalLoading
	LocalHydrated
	RemoteHydrated
	Empty
	Cleared
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case LocalLoading:
		return "local-loading"
	case LocalHydrated:
		return "local-hydrated"
	case RemoteHydrated:
		return "remote-hydrated"
	case Empty:
		return "empty"
	case Cleared:
		return "cleared"
	}
	return "unknown"
}

// Busy holds the per-operation loading flags. A set flag disables that
// operation; other operations stay available.
type Busy struct {
	Fetching  bool
	Analyzing bool
	Pulling   bool
	Saving    bool
}

func (b Busy) Any() bool { return b.Fetching || b.Analyzing || b.Pulling || b.Saving }

type Options struct {
	PageID    string
	Drafts    draft.Store
	Remote    remote.Client
	Debounce  time.Duration
	NoticeTTL time.Duration
	Logger    logrus.FieldLogger

	// BackgroundRefresh runs the image refresh after a local-draft mount on
	// its own goroutine instead of inside Mount.
	BackgroundRefresh bool

	Now   func() time.Time
	NewID func() string
}

// Controller is the single writer of the in-memory document. Every change
// goes through PatchDocument so the draft scheduler sees all of them.
type Controller struct {
	pageID     string
	drafts     draft.Store
	remote     remote.Client
	sched      *draft.Scheduler
	log        *logrus.Entry
	noticeTTL  time.Duration
	background bool
	now        func() time.Time
	newID      func() string

	mu          sync.Mutex
	state       State
	doc         *models.Document
	selected    string
	notice      Notice
	busy        Busy
	remoteTried bool
	listeners   []func()

	refreshWG sync.WaitGroup
}

func NewController(opts Options) *Controller {
	c := &Controller{
		pageID:     opts.PageID,
		drafts:     opts.Drafts,
		remote:     opts.Remote,
		log:        logging.Component(opts.Logger, "editor").WithField("page", opts.PageID),
		noticeTTL:  opts.NoticeTTL,
		background: opts.BackgroundRefresh,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if c.drafts == nil {
		c.drafts = draft.NewMemoryStore(draft.DefaultNamespace)
	}
	if c.noticeTTL == 0 {
		c.noticeTTL = 4 * time.Second
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	c.sched = draft.NewScheduler(c.drafts, opts.Debounce, opts.Logger)
	return c
}

func (c *Controller) PageID() string { return c.pageID }

// OnChange registers fn to run after every committed change of document,
// selection, state, busy flags or notice. fn runs without the lock held.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) emit() {
	c.mu.Lock()
	ls := append([]func(){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// Mount hydrates the editor: the local draft wins if there is one (followed
// by an image refresh from the server); otherwise the server is asked once.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.state != Unloaded && c.state != Cleared {
		c.mu.Unlock()
		return
	}
	c.state = LocalLoading
	c.mu.Unlock()
	c.emit()

	if doc, ok := c.drafts.Load(ctx, c.pageID); ok {
		c.mu.Lock()
		c.doc = doc
		c.selected = firstElementID(doc)
		c.state = LocalHydrated
		c.remoteTried = true
		c.setNoticeLocked(NoticeInfo, "loaded local draft")
		c.mu.Unlock()
		c.emit()

		c.refreshWG.Add(1)
		if c.background {
			go func() {
				defer c.refreshWG.Done()
				c.refreshImage(context.WithoutCancel(ctx))
			}()
		} else {
			defer c.refreshWG.Done()
			c.refreshImage(ctx)
		}
		return
	}

	c.fetchOnce(ctx)
}

// refreshImage pulls the server copy and takes only its image (and title or
// description where ours are unset). Elements and edited metadata are kept.
func (c *Controller) refreshImage(ctx context.Context) {
	fresh, err := c.remote.Fetch(ctx, c.pageID)
	if err != nil {
		c.log.WithError(err).Debug("image refresh skipped")
		return
	}
	err = c.PatchDocument(func(d *models.Document) error {
		d.Image = fresh.Image
		if isUnset(d.Title) && fresh.Title != nil {
			d.Title = models.StringPtr(*fresh.Title)
		}
		if isUnset(d.Description) && fresh.Description != nil {
			d.Description = models.StringPtr(*fresh.Description)
		}
		return nil
	})
	if err != nil {
		c.log.WithError(err).Debug("image refresh dropped")
	}
}

// fetchOnce is the guarded mount-time fetch. The guard is re-armed only by Clear.
func (c *Controller) fetchOnce(ctx context.Context) {
	c.mu.Lock()
	if c.remoteTried {
		if c.doc == nil {
			c.state = Empty
		}
		c.mu.Unlock()
		c.emit()
		return
	}
	c.remoteTried = true
	c.busy.Fetching = true
	c.mu.Unlock()
	c.emit()

	doc, err := c.remote.Fetch(ctx, c.pageID)

	c.mu.Lock()
	c.busy.Fetching = false
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			c.log.WithError(err).Warn("initial fetch failed")
		}
		if c.doc == nil {
			c.state = Empty
		}
		c.setNoticeLocked(NoticeNeutral, "no server page yet")
		c.mu.Unlock()
		c.emit()
		return
	}
	c.replaceLocked(doc)
	c.state = RemoteHydrated
	c.setNoticeLocked(NoticeInfo, "loaded from server")
	c.mu.Unlock()
	c.emit()
}

// WaitRefresh blocks until a background image refresh has finished.
func (c *Controller) WaitRefresh() { c.refreshWG.Wait() }

// Analyze asks the server to regenerate the page. On success the document and
// draft are replaced wholesale; on failure the current document is untouched.
func (c *Controller) Analyze(ctx context.Context) error {
	if !c.begin(func(b *Busy) *bool { return &b.Analyzing }) {
		return ErrBusy
	}
	doc, err := c.remote.Analyze(ctx, c.pageID)

	c.mu.Lock()
	c.busy.Analyzing = false
	if err != nil {
		// the error notice replaces whatever notice was showing
		c.setNoticeLocked(NoticeError, "analyze failed: "+remote.Summary(err))
		c.mu.Unlock()
		c.emit()
		c.log.WithError(err).Warn("analyze failed")
		return err
	}
	c.replaceLocked(doc)
	c.state = RemoteHydrated
	c.setNoticeLocked(NoticeInfo, "analyzed via backend")
	c.mu.Unlock()

	c.sched.Flush()
	c.emit()
	return nil
}

// Pull replaces the document with the server copy, discarding local edits.
func (c *Controller) Pull(ctx context.Context) error {
	if !c.begin(func(b *Busy) *bool { return &b.Pulling }) {
		return ErrBusy
	}
	doc, err := c.remote.Fetch(ctx, c.pageID)

	c.mu.Lock()
	c.busy.Pulling = false
	if err != nil {
		c.setNoticeLocked(NoticeError, "pull failed: "+remote.Summary(err))
		c.mu.Unlock()
		c.emit()
		return err
	}
	c.replaceLocked(doc)
	c.state = RemoteHydrated
	c.setNoticeLocked(NoticeInfo, "pulled latest")
	c.mu.Unlock()
	c.emit()
	return nil
}

// Save sends the current document to the server. A failed save leaves the
// local draft as the copy of record.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return ErrNoDocument
	}
	if c.busy.Saving {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy.Saving = true
	doc := c.doc.Clone()
	c.mu.Unlock()
	c.emit()

	_, err := c.remote.Save(ctx, c.pageID, doc)

	c.mu.Lock()
	c.busy.Saving = false
	if err != nil {
		c.setNoticeLocked(NoticeError, "save failed, kept local: "+remote.Summary(err))
	} else {
		c.setNoticeLocked(NoticeInfo, "saved to server")
	}
	c.mu.Unlock()

	if err != nil {
		c.sched.Flush()
		c.log.WithError(err).Warn("save failed")
	}
	c.emit()
	return err
}

// Clear drops the local draft and the in-memory document and re-arms the
// mount-time fetch.
func (c *Controller) Clear(ctx context.Context) {
	if err := c.sched.Clear(ctx, c.pageID); err != nil {
		c.log.WithError(err).Debug("draft clear failed")
	}

	c.mu.Lock()
	c.doc = nil
	c.selected = ""
	c.remoteTried = false
	c.state = Cleared
	c.setNoticeLocked(NoticeNeutral, "local draft cleared")
	c.mu.Unlock()
	c.emit()
}

// Close writes any pending draft and stops the scheduler.
func (c *Controller) Close() {
	c.refreshWG.Wait()
	c.sched.Stop()
}

// PatchDocument applies fn to a copy of the document and commits the copy.
// If fn returns an error nothing is committed.
func (c *Controller) PatchDocument(fn func(d *models.Document) error) error {
	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return ErrNoDocument
	}
	next := c.doc.Clone()
	if err := fn(next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.doc = next
	if c.selected != "" && next.ElementIndex(c.selected) < 0 {
		c.selected = ""
	}
	snapshot := next.Clone()
	c.mu.Unlock()

	c.sched.Schedule(c.pageID, snapshot)
	c.emit()
	return nil
}

// PatchElement applies fn to one element through PatchDocument.
func (c *Controller) PatchElement(id string, fn func(e *models.Element)) error {
	return c.PatchDocument(func(d *models.Document) error {
		i := d.ElementIndex(id)
		if i < 0 {
			return ErrUnknownElement
		}
		fn(&d.Elements[i])
		return nil
	})
}

// UpdateBBox stores a new box for an element, always normalized.
func (c *Controller) UpdateBBox(id string, b models.BBox) error {
	return c.PatchElement(id, func(e *models.Element) {
		e.Geometry.BBoxPct = geometry.Normalize(b)
	})
}

// Select changes the selected element; "" clears the selection.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	if id != "" && (c.doc == nil || c.doc.ElementIndex(id) < 0) {
		c.mu.Unlock()
		return ErrUnknownElement
	}
	changed := c.selected != id
	c.selected = id
	c.mu.Unlock()
	if changed {
		c.emit()
	}
	return nil
}

// Document returns a copy of the current document, or nil.
func (c *Controller) Document() *models.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() Busy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Notice returns the current notice unless it has expired.
func (c *Controller) Notice() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice.IsZero() || c.notice.expired(c.now(), c.noticeTTL) {
		return Notice{}, false
	}
	return c.notice, true
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	c.notice = Notice{}
	c.mu.Unlock()
	c.emit()
}

// DraftWrites reports how many local draft writes the scheduler has made.
func (c *Controller) DraftWrites() int { return c.sched.Writes() }

// FlushDraft writes any pending draft now.
func (c *Controller) FlushDraft() { c.sched.Flush() }

func (c *Controller) begin(flag func(*Busy) *bool) bool {
	c.mu.Lock()
	f := flag(&c.busy)
	if *f {
		c.mu.Unlock()
		return false
	}
	*f = true
	c.mu.Unlock()
	c.emit()
	return true
}

// replaceLocked installs a server document wholesale and schedules its draft.
func (c *Controller) replaceLocked(doc *models.Document) {
	c.doc = doc
	c.selected = firstElementID(doc)
	c.sched.Schedule(c.pageID, doc.Clone())
}

func (c *Controller) setNoticeLocked(kind NoticeKind, text string) {
	c.notice = Notice{Kind: kind, Text: text, At: c.now()}
}

func firstElementID(doc *models.Document) string {
	if doc == nil || len(doc.Elements) == 0 {
		return ""
	}
	return doc.Elements[0].ID
}

func isUnset(s *string) bool {
	return s == nil || *s == ""
}
