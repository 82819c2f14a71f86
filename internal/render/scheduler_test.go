package render_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
)

// gatedBackend holds each evaluation until its gate, keyed by MaxIterations,
// is released. It ignores cancellation to model a backend that cannot stop
// mid-frame, which is the worst case for stale results.
type gatedBackend struct {
	mu      sync.Mutex
	gates   map[int]chan struct{}
	started chan int
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{gates: make(map[int]chan struct{}), started: make(chan int, 16)}
}

func (g *gatedBackend) gate(key int) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[key]
	if !ok {
		ch = make(chan struct{})
		g.gates[key] = ch
	}
	return ch
}

func (g *gatedBackend) release(key int) { close(g.gate(key)) }

func (g *gatedBackend) Name() string    { return "gated" }
func (g *gatedBackend) Available() bool { return true }
func (g *gatedBackend) Cleanup()        {}

func (g *gatedBackend) Evaluate(_ context.Context, p fractal.RenderParameters) (fractal.IterationBuffer, error) {
	g.started <- p.MaxIterations
	<-g.gate(p.MaxIterations)
	return fractal.Evaluate(p)
}

type recorder struct {
	mu     sync.Mutex
	frames []*render.Frame
	errs   []error
}

func (r *recorder) onFrame(f *render.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recorder) onError(_ uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) seqs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Seq
	}
	return out
}

func (r *recorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func params(iter int) fractal.RenderParameters {
	return fractal.RenderParameters{Width: 8, Height: 6, Zoom: 1, MaxIterations: iter}
}

var _ = Describe("Scheduler", func() {
	var (
		backend *gatedBackend
		sched   *render.Scheduler
		rec     *recorder
	)

	BeforeEach(func() {
		backend = newGatedBackend()
		rec = &recorder{}
		sched = render.NewScheduler(backend)
		sched.OnFrame = rec.onFrame
		sched.OnError = rec.onError
	})

	AfterEach(func() {
		sched.Close()
	})

	It("assigns increasing sequence numbers", func() {
		first := sched.Submit(params(10))
		second := sched.Submit(params(20))
		Expect(second).To(BeNumerically(">", first))
		Expect(sched.Seq()).To(Equal(second))

		backend.release(10)
		backend.release(20)
		sched.Wait()
	})

	It("drops an older render that finishes after a newer one", func() {
		sched.Submit(params(10))
		Eventually(backend.started).Should(Receive(Equal(10)))
		newest := sched.Submit(params(20))
		Eventually(backend.started).Should(Receive(Equal(20)))

		backend.release(20)
		Eventually(rec.seqs).Should(Equal([]uint64{newest}))

		backend.release(10)
		sched.Wait()
		Consistently(rec.seqs, 50*time.Millisecond).Should(Equal([]uint64{newest}))
		Expect(sched.Latest().Seq).To(Equal(newest))
		Expect(sched.Latest().Params.MaxIterations).To(Equal(20))
	})

	It("drops an older render that finishes before the newer one", func() {
		sched.Submit(params(10))
		Eventually(backend.started).Should(Receive(Equal(10)))
		newest := sched.Submit(params(20))

		backend.release(10)
		Consistently(rec.seqs, 50*time.Millisecond).Should(BeEmpty())
		Expect(sched.Latest()).To(BeNil())

		backend.release(20)
		Eventually(rec.seqs).Should(Equal([]uint64{newest}))
	})

	It("keeps the last frame when a request is rejected", func() {
		seq := sched.Submit(params(10))
		backend.release(10)
		Eventually(rec.seqs).Should(Equal([]uint64{seq}))

		bad := params(10)
		bad.Zoom = 0
		Expect(sched.Submit(bad)).To(BeZero())

		Expect(rec.errors()).To(HaveLen(1))
		Expect(rec.errors()[0]).To(MatchError(fractal.ErrInvalidZoom))
		Expect(sched.Latest().Seq).To(Equal(seq))
		Expect(sched.Seq()).To(Equal(seq))
	})

	It("rejects an unknown scheme without cancelling the current render", func() {
		seq := sched.Submit(params(10))
		Eventually(backend.started).Should(Receive(Equal(10)))

		bad := params(30)
		bad.ColorScheme = 99
		Expect(sched.Submit(bad)).To(BeZero())
		Expect(rec.errors()[0]).To(MatchError(fractal.ErrUnknownColorScheme))

		backend.release(10)
		Eventually(rec.seqs).Should(Equal([]uint64{seq}))
	})

	It("refuses work after Close", func() {
		sched.Close()
		Expect(sched.Submit(params(10))).To(BeZero())
		Expect(rec.errors()).To(ContainElement(MatchError(render.ErrClosed)))
	})
})

var _ = Describe("Scheduler with a real backend", func() {
	It("presents only the last of a burst of requests", func() {
		rec := &recorder{}
		sched := render.NewScheduler(compute.NewCPUBackend(2))
		sched.OnFrame = rec.onFrame
		defer sched.Close()

		p := fractal.RenderParameters{Width: 120, Height: 90, Zoom: 1, MaxIterations: 50}
		var last uint64
		for i := 0; i < 10; i++ {
			p.PanX = float64(i) * 0.01
			last = sched.Submit(p)
		}
		sched.Wait()

		Expect(sched.Latest()).NotTo(BeNil())
		Expect(sched.Latest().Seq).To(Equal(last))
		Expect(sched.Latest().Params.PanX).To(BeNumerically("~", 0.09, 1e-12))

		seqs := rec.seqs()
		Expect(seqs).NotTo(BeEmpty())
		for i := 1; i < len(seqs); i++ {
			Expect(seqs[i]).To(BeNumerically(">", seqs[i-1]))
		}
		Expect(seqs[len(seqs)-1]).To(Equal(last))
	})
})
