package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/syncx"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/export"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
	"github.com/san-kum/mandelscope/internal/view"
)

// Rows reserved below the image for the status panel.
const statusRows = 2

type Options struct {
	Backend compute.Backend
	// Initial is the starting view. Its size is used for snapshots; the
	// on-screen size follows the terminal.
	Initial     fractal.RenderParameters
	Settings    view.Settings
	Theme       string
	SnapshotDir string
}

type frameMsg struct{ frame *render.Frame }

type errMsg struct {
	seq uint64
	err error
}

type snapshotMsg struct {
	path string
	err  error
}

// Explorer is a bubbletea model that drives a Scheduler from the keyboard
// and draws the latest frame with half-block characters.
type Explorer struct {
	vp       *view.Viewport
	sched    *render.Scheduler
	backend  compute.Backend
	events   chan tea.Msg
	done     chan struct{}
	snapshot fractal.RenderParameters
	snapDir  string
	flight   syncx.SingleFlight
	styles   styles

	frame   *render.Frame
	err     error
	status  string
	pending uint64
	cols    int
	rows    int
}

func NewExplorer(opts Options) Explorer {
	backend := opts.Backend
	if backend == nil {
		backend = compute.GetBackend()
	}

	e := Explorer{
		vp:       view.New(opts.Initial, opts.Settings),
		sched:    render.NewScheduler(backend),
		backend:  backend,
		events:   make(chan tea.Msg, 4),
		done:     make(chan struct{}),
		snapshot: opts.Initial,
		snapDir:  opts.SnapshotDir,
		flight:   syncx.NewSingleFlight(),
		styles:   newStyles(GetTheme(opts.Theme)),
	}

	e.sched.OnFrame = func(f *render.Frame) { e.post(frameMsg{frame: f}) }
	e.sched.OnError = func(seq uint64, err error) { e.post(errMsg{seq: seq, err: err}) }
	return e
}

// post hands a scheduler event to the UI loop, giving up once the explorer
// has shut down.
func (e Explorer) post(msg tea.Msg) {
	select {
	case e.events <- msg:
	case <-e.done:
	}
}

func (e Explorer) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-e.events:
			return msg
		case <-e.done:
			return nil
		}
	}
}

func (e Explorer) Init() tea.Cmd {
	return e.waitForEvent()
}

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.cols, e.rows = msg.Width, msg.Height
		w, h := surfaceSize(msg.Width, msg.Height)
		e.submit(e.vp.Resize(w, h))
		return e, nil

	case frameMsg:
		e.frame = msg.frame
		e.err = nil
		return e, e.waitForEvent()

	case errMsg:
		e.err = msg.err
		return e, e.waitForEvent()

	case snapshotMsg:
		if msg.err != nil {
			e.err = msg.err
		} else {
			e.status = "saved " + msg.path
		}
		return e, nil

	case tea.KeyMsg:
		return e.handleKey(msg)
	}
	return e, nil
}

// keymap binds terminal keys to viewport actions.
var keymap = map[string]view.Action{
	"+":     view.ActionZoomIn,
	"=":     view.ActionZoomIn,
	"-":     view.ActionZoomOut,
	"_":     view.ActionZoomOut,
	"left":  view.ActionPanLeft,
	"h":     view.ActionPanLeft,
	"right": view.ActionPanRight,
	"l":     view.ActionPanRight,
	"up":    view.ActionPanUp,
	"k":     view.ActionPanUp,
	"down":  view.ActionPanDown,
	"j":     view.ActionPanDown,
	"]":     view.ActionMoreIterations,
	"[":     view.ActionFewerIterations,
	"c":     view.ActionCycleScheme,
	"r":     view.ActionReset,
}

func (e Explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := msg.String(); k {
	case "q", "ctrl+c", "esc":
		e.Shutdown()
		return e, tea.Quit
	case "s":
		e.status = "saving snapshot..."
		return e, e.saveSnapshot()
	default:
		if p, ok := e.vp.Apply(keymap[k]); ok {
			e.submit(p)
		}
	}
	return e, nil
}

func (e *Explorer) submit(p fractal.RenderParameters) {
	e.status = ""
	if seq := e.sched.Submit(p); seq != 0 {
		e.pending = seq
	}
}

// saveSnapshot renders the current view at the snapshot resolution and
// writes it with its metadata sidecar.
func (e Explorer) saveSnapshot() tea.Cmd {
	p := e.vp.Params()
	p.Width, p.Height = e.snapshot.Width, e.snapshot.Height
	backend := e.backend
	dir := e.snapDir

	return func() tea.Msg {
		// Repeated presses for the same view share one render.
		v, err := e.flight.Do(p.String(), func() (any, error) {
			return writeSnapshot(backend, p, dir)
		})
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{path: v.(string)}
	}
}

func writeSnapshot(backend compute.Backend, p fractal.RenderParameters, dir string) (string, error) {
	frame, err := render.Render(context.Background(), backend, p)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("mandelbrot-%s.png", time.Now().Format("20060102-150405.000"))
	imgPath, _, err := export.SavePNG(filepath.Join(dir, name), frame.Pixels, export.Metadata{
		Params:    p,
		Bounds:    fractal.Bounds(p),
		Backend:   backend.Name(),
		ElapsedMs: frame.Elapsed.Milliseconds(),
	})
	if err != nil {
		return "", err
	}
	logx.Infow("snapshot written",
		logx.Field("path", imgPath),
		logx.Field("params", p.String()),
		logx.Field("elapsed_ms", frame.Elapsed.Milliseconds()))
	return imgPath, nil
}

// Shutdown stops background rendering. It is safe to call more than once.
func (e Explorer) Shutdown() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
	e.sched.Close()
}

func (e Explorer) View() string {
	var b strings.Builder
	if e.frame != nil {
		b.WriteString(Cells(e.frame.Pixels))
		b.WriteByte('\n')
	} else {
		b.WriteString(e.styles.busy.Render("rendering..."))
		b.WriteByte('\n')
	}
	b.WriteString(e.statusLine())
	b.WriteByte('\n')
	b.WriteString(e.styles.keys(
		"+/-", "zoom", "arrows", "pan", "[/]", "iterations",
		"c", "scheme", "r", "reset", "s", "snapshot", "q", "quit",
	))
	return b.String()
}

func (e Explorer) statusLine() string {
	p := e.vp.Params()
	c := e.vp.Center()

	parts := []string{
		e.styles.title.Render("mandelscope"),
		e.styles.metric("center", fmt.Sprintf("%.6g%+.6gi", c.Re, c.Im)),
		e.styles.metric("zoom", fmt.Sprintf("%.4g", p.Zoom)),
		e.styles.metric("iter", fmt.Sprintf("%d", p.MaxIterations)),
		e.styles.metric("scheme", p.ColorScheme.String()),
	}
	if e.frame != nil {
		parts = append(parts, e.styles.metric("time", e.frame.Elapsed.Round(time.Millisecond).String()))
		if e.frame.Seq != e.pending {
			parts = append(parts, e.styles.busy.Render("rendering"))
		}
	}
	switch {
	case e.err != nil:
		parts = append(parts, e.styles.errText.Render(e.err.Error()))
	case e.status != "":
		parts = append(parts, e.styles.hint.Render(e.status))
	}
	return strings.Join(parts, "  ")
}

// Params returns the view the explorer is currently showing or rendering.
func (e Explorer) Params() fractal.RenderParameters { return e.vp.Params() }

// Frame returns the frame on screen, or nil before the first one arrives.
func (e Explorer) Frame() *render.Frame { return e.frame }

// surfaceSize converts a terminal size to pixels: one column per pixel and
// two pixel rows per text row.
func surfaceSize(cols, rows int) (int, int) {
	w := cols
	h := (rows - statusRows) * 2
	if w < 1 {
		w = 1
	}
	if h < 2 {
		h = 2
	}
	return w, h
}

// Run starts the explorer full screen and blocks until the user quits.
func Run(opts Options) error {
	e := NewExplorer(opts)
	defer e.Shutdown()

	p := tea.NewProgram(e, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
