//go:build cgo && !headless

package gui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/render"
	"github.com/san-kum/mandelscope/internal/view"
)

const windowTitle = "mandelscope"

// bindings maps keys to viewport actions. Every key fires once per press.
var bindings = map[ebiten.Key]view.Action{
	ebiten.KeyEqual:          view.ActionZoomIn,
	ebiten.KeyNumpadAdd:      view.ActionZoomIn,
	ebiten.KeyMinus:          view.ActionZoomOut,
	ebiten.KeyNumpadSubtract: view.ActionZoomOut,
	ebiten.KeyArrowLeft:      view.ActionPanLeft,
	ebiten.KeyArrowRight:     view.ActionPanRight,
	ebiten.KeyArrowUp:        view.ActionPanUp,
	ebiten.KeyArrowDown:      view.ActionPanDown,
	ebiten.KeyBracketRight:   view.ActionMoreIterations,
	ebiten.KeyBracketLeft:    view.ActionFewerIterations,
	ebiten.KeyC:              view.ActionCycleScheme,
	ebiten.KeyR:              view.ActionReset,
}

// App is an ebiten.Game that shows the scheduler's latest frame and feeds
// key presses back to it.
type App struct {
	vp    *view.Viewport
	sched *render.Scheduler

	resizable bool
	canvas    *ebiten.Image
	shownSeq  uint64
	showHUD   bool
	quit      bool

	mu      sync.Mutex
	lastErr error
}

func NewApp(opts Options) *App {
	backend := opts.Backend
	if backend == nil {
		backend = compute.GetBackend()
	}
	a := &App{
		vp:        view.New(opts.Initial, opts.Settings),
		sched:     render.NewScheduler(backend),
		resizable: opts.Resizable,
		showHUD:   true,
	}
	a.sched.OnError = func(_ uint64, err error) { a.setErr(err) }
	return a
}

func (a *App) setErr(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

func (a *App) err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		a.quit = true
	}
	if a.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.showHUD = !a.showHUD
	}

	for key, action := range bindings {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if p, ok := a.vp.Apply(action); ok {
			a.setErr(nil)
			a.sched.Submit(p)
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	frame := a.sched.Latest()
	if frame != nil && frame.Seq != a.shownSeq {
		a.upload(frame)
	}
	if a.canvas != nil {
		screen.DrawImage(a.canvas, nil)
	}
	if a.showHUD {
		ebitenutil.DebugPrint(screen, a.hud(frame))
	}
}

// upload copies a frame into the canvas, reallocating it when the surface
// size changed.
func (a *App) upload(f *render.Frame) {
	w, h := f.Pixels.Width, f.Pixels.Height
	if a.canvas == nil || a.canvas.Bounds().Dx() != w || a.canvas.Bounds().Dy() != h {
		if a.canvas != nil {
			a.canvas.Deallocate()
		}
		a.canvas = ebiten.NewImage(w, h)
	}
	a.canvas.WritePixels(f.Pixels.Pix)
	a.shownSeq = f.Seq
}

func (a *App) hud(f *render.Frame) string {
	p := a.vp.Params()
	c := a.vp.Center()

	var b strings.Builder
	fmt.Fprintf(&b, "center %.6g%+.6gi  zoom %.4g  iter %d  %s\n", c.Re, c.Im, p.Zoom, p.MaxIterations, p.ColorScheme)
	if f != nil {
		fmt.Fprintf(&b, "frame %d in %v", f.Seq, f.Elapsed)
		if f.Seq != a.sched.Seq() {
			b.WriteString("  [rendering]")
		}
		b.WriteByte('\n')
	}
	if err := a.err(); err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
	}
	b.WriteString("+/- zoom  arrows pan  [/] iterations  C scheme  R reset  TAB hud  ESC quit")
	return b.String()
}

// Layout follows the window when the surface is resizable and otherwise
// keeps the configured size, letting ebiten scale it.
func (a *App) Layout(outsideW, outsideH int) (int, int) {
	p := a.vp.Params()
	if !a.resizable || outsideW <= 0 || outsideH <= 0 {
		return p.Width, p.Height
	}
	if outsideW != p.Width || outsideH != p.Height {
		a.sched.Submit(a.vp.Resize(outsideW, outsideH))
	}
	return outsideW, outsideH
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	a := NewApp(opts)
	defer a.sched.Close()

	p := a.vp.Params()
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(p.Width, p.Height)
	if opts.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	logx.Infof("opening %dx%d window, keys: %s", p.Width, p.Height, describeBindings())
	a.sched.Submit(p)

	if err := ebiten.RunGame(a); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func describeBindings() string {
	parts := make([]string, 0, len(bindings))
	for key, action := range bindings {
		parts = append(parts, key.String()+"="+action.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
