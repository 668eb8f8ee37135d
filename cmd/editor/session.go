package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"mangapages/internal/editor"
	"mangapages/pkg/geometry"
	"mangapages/pkg/models"
)

// session maps prompt lines onto the controller, overlay and inspector.
type session struct {
	ctrl      *editor.Controller
	insp      *editor.Inspector
	overlay   *editor.Overlay
	out       io.Writer
	exportDir string
	zoom      float64
}

func newSession(ctrl *editor.Controller, out io.Writer, exportDir string, zoom float64) *session {
	if zoom <= 0 {
		zoom = 1
	}
	return &session{
		ctrl:      ctrl,
		insp:      editor.NewInspector(ctrl),
		overlay:   editor.NewOverlay(ctrl, editor.NewEventBus(), editor.Surface{}),
		out:       out,
		exportDir: exportDir,
		zoom:      zoom,
	}
}

var errUsage = errors.New("usage")

// Exec runs one command line. quit is true for quit/exit.
func (s *session) Exec(ctx context.Context, line string) (quit bool, err error) {
	cmd, rest := cut(strings.TrimSpace(line))
	switch cmd {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
	case "show":
		s.show()
	case "layout":
		return false, s.layout()
	case "mount":
		s.ctrl.Mount(ctx)
		s.ctrl.WaitRefresh()
		s.notice()
	case "analyze":
		err = s.ctrl.Analyze(ctx)
		s.notice()
	case "pull":
		err = s.ctrl.Pull(ctx)
		s.notice()
	case "save":
		err = s.ctrl.Save(ctx)
		s.notice()
	case "clear":
		s.ctrl.Clear(ctx)
		s.notice()
	case "add":
		t, perr := models.ParseElementType(rest)
		if perr != nil {
			return false, perr
		}
		id, aerr := s.insp.Add(t)
		if aerr != nil {
			return false, aerr
		}
		fmt.Fprintln(s.out, "added", id)
	case "delete", "rm":
		return false, s.insp.Delete(s.resolve(rest))
	case "select":
		return false, s.ctrl.Select(s.resolve(rest))
	case "set":
		return false, s.set(rest)
	case "title":
		return false, s.insp.SetTitle(rest)
	case "desc":
		return false, s.insp.SetDescription(rest)
	case "keywords":
		return false, s.insp.SetKeywords(rest)
	case "move":
		return false, s.drag(rest, editor.HandleMove)
	case "resize":
		c, r := cut(rest)
		// corner comes before the id: resize se <id> dx dy
		corner, cerr := geometry.ParseCorner(c)
		if cerr != nil {
			return false, cerr
		}
		return false, s.drag(r, editor.Handle(corner))
	case "export":
		dir := s.exportDir
		if rest != "" {
			dir = rest
		}
		path, xerr := editor.WriteExport(dir, s.ctrl.Document())
		if xerr != nil {
			return false, xerr
		}
		fmt.Fprintln(s.out, "wrote", path)
	case "copy":
		if err := editor.CopyToClipboard(s.ctrl.Document()); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, "copied export JSON to clipboard")
	case "json":
		b, jerr := editor.Export(s.ctrl.Document())
		if jerr != nil {
			return false, jerr
		}
		_, _ = s.out.Write(b)
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, err
}

// resolve turns "" into the current selection.
func (s *session) resolve(id string) string {
	if id == "" {
		return s.ctrl.Selected()
	}
	return id
}

// set <id> <field> <value...>
func (s *session) set(args string) error {
	id, r := cut(args)
	field, value := cut(r)
	if id == "" || field == "" {
		return fmt.Errorf("%w: set <id> <type|order|text|review|x|y|w|h> <value>", errUsage)
	}
	id = s.resolve(strings.TrimPrefix(id, "."))
	switch field {
	case "type":
		return s.insp.SetType(id, value)
	case "order":
		return s.insp.SetReadingOrder(id, value)
	case "text":
		return s.insp.SetText(id, strings.ReplaceAll(value, `\n`, "\n"))
	case "review":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("review must be true or false")
		}
		return s.insp.SetNeedsReview(id, v)
	case "x", "y", "w", "h":
		return s.insp.SetBBoxFieldText(id, field, value)
	}
	return fmt.Errorf("unknown field %q", field)
}

// drag simulates a pointer gesture: down on the handle, one move by
// (dx, dy) view pixels, then up.
func (s *session) drag(args string, handle editor.Handle) error {
	f := strings.Fields(args)
	if len(f) != 3 {
		return fmt.Errorf("%w: move <id> <dx> <dy> | resize <nw|ne|sw|se> <id> <dx> <dy>", errUsage)
	}
	dx, err1 := strconv.ParseFloat(f[1], 64)
	dy, err2 := strconv.ParseFloat(f[2], 64)
	if err1 != nil || err2 != nil {
		return fmt.Errorf("dx and dy must be numbers")
	}
	id := s.resolve(strings.TrimPrefix(f[0], "."))

	doc := s.ctrl.Document()
	if doc == nil {
		return editor.ErrNoDocument
	}
	i := doc.ElementIndex(id)
	if i < 0 {
		return editor.ErrUnknownElement
	}
	s.syncOverlay(doc)

	e := geometry.EdgesOf(doc.Elements[i].Geometry.BBoxPct)
	px, py := (e.Left+e.Right)/2, (e.Top+e.Bottom)/2
	switch handle {
	case editor.HandleNW:
		px, py = e.Left, e.Top
	case editor.HandleNE:
		px, py = e.Right, e.Top
	case editor.HandleSW:
		px, py = e.Left, e.Bottom
	case editor.HandleSE:
		px, py = e.Right, e.Bottom
	}
	sf := s.surface(doc)
	x, y := px*sf.ViewWidth, py*sf.ViewHeight

	sess, err := s.overlay.PointerDown(editor.Target{ElementID: id, Handle: handle}, x, y)
	if err != nil {
		return err
	}
	s.overlay.PointerMove(x+dx, y+dy)
	s.overlay.PointerUp(x+dx, y+dy)
	if err := sess.Err(); err != nil {
		return err
	}
	b := sess.Current()
	fmt.Fprintf(s.out, "%s -> x=%.4f y=%.4f w=%.4f h=%.4f\n", id, b.X, b.Y, b.W, b.H)
	return nil
}

func (s *session) surface(doc *models.Document) editor.Surface {
	return editor.Surface{
		ImageWidth:  doc.Image.NaturalWidth,
		ImageHeight: doc.Image.NaturalHeight,
		ViewWidth:   float64(doc.Image.NaturalWidth) * s.zoom,
		ViewHeight:  float64(doc.Image.NaturalHeight) * s.zoom,
	}
}

func (s *session) syncOverlay(doc *models.Document) {
	s.overlay.SetSurface(s.surface(doc))
	s.overlay.SetDocument(doc, s.ctrl.Selected())
}

func (s *session) notice() {
	if n, ok := s.ctrl.Notice(); ok {
		fmt.Fprintf(s.out, "[%s] %s\n", n.Kind, n.Text)
	}
}

func (s *session) show() {
	fmt.Fprintf(s.out, "state: %s\n", s.ctrl.State())
	if b := s.ctrl.Busy(); b.Any() {
		fmt.Fprintf(s.out, "busy: %+v\n", b)
	}
	s.notice()

	doc := s.ctrl.Document()
	if doc == nil {
		fmt.Fprintln(s.out, "no document (analyze or pull to start)")
		return
	}
	title := ""
	if doc.Title != nil {
		title = *doc.Title
	}
	fmt.Fprintf(s.out, "page %s #%d %q  image %s (%dx%d)\n", doc.ID, doc.PageNumber, title,
		doc.Image.Src, doc.Image.NaturalWidth, doc.Image.NaturalHeight)
	if len(doc.Keywords) > 0 {
		fmt.Fprintf(s.out, "keywords: %s\n", editor.KeywordsText(doc.Keywords))
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTYPE\tORDER\tBBOX\tREVIEW\tTEXT")
	sel := s.ctrl.Selected()
	for _, el := range doc.Elements {
		mark := ""
		if el.ID == sel {
			mark = "*"
		}
		order := "-"
		if el.ReadingOrder != nil {
			order = strconv.Itoa(*el.ReadingOrder)
		}
		b := el.Geometry.BBoxPct
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f,%.3f %.3fx%.3f\t%v\t%s\n",
			mark, el.ID, el.Type, order, b.X, b.Y, b.W, b.H, el.NeedsReview(), oneLine(el.Text.Raw, 40))
	}
	_ = tw.Flush()
}

func (s *session) layout() error {
	doc := s.ctrl.Document()
	if doc == nil {
		return editor.ErrNoDocument
	}
	s.syncOverlay(doc)
	for _, r := range s.overlay.Layout() {
		mark := " "
		if r.Selected {
			mark = "*"
		}
		fmt.Fprintf(s.out, "%s %s %s px(%.0f,%.0f %.0fx%.0f)", mark, r.ID, r.Type, r.Rect.X, r.Rect.Y, r.Rect.W, r.Rect.H)
		if r.Container != nil {
			fmt.Fprintf(s.out, " container=%s transform=%s", r.Container.Kind, r.Container.Transform)
		}
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *session) help() {
	fmt.Fprint(s.out, `commands:
  show | layout | json              inspect the page
  analyze | pull | save | clear | mount
  add <dialogue|narration|free_text|sfx>
  select <id> | delete [id]
  set <id|.> <type|order|text|review|x|y|w|h> <value>
  title <text> | desc <text> | keywords <a, b, c>
  move <id|.> <dx> <dy>              drag in view pixels
  resize <nw|ne|sw|se> <id|.> <dx> <dy>
  export [dir] | copy
  quit
`)
}

// cut splits off the first word.
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	head, tail, _ := strings.Cut(s, " ")
	return head, strings.TrimSpace(tail)
}

func oneLine(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " / ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
