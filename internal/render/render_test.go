package render_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
)

var _ = Describe("Render", func() {
	var p fractal.RenderParameters

	BeforeEach(func() {
		p = fractal.RenderParameters{Width: 32, Height: 24, Zoom: 0.5, PanX: 0.5, MaxIterations: 60, ColorScheme: fractal.Rainbow}
	})

	It("produces a pixel buffer of width*height*4 bytes", func() {
		frame, err := render.Render(context.Background(), compute.NewCPUBackend(3), p)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Pixels.Pix).To(HaveLen(p.Width * p.Height * 4))
		Expect(frame.Iterations.Counts).To(HaveLen(p.Width * p.Height))
		Expect(frame.Params).To(Equal(p))
	})

	It("matches evaluate followed by colorize", func() {
		frame, err := render.Render(context.Background(), compute.NewSerialBackend(), p)
		Expect(err).NotTo(HaveOccurred())

		iters, err := fractal.Evaluate(p)
		Expect(err).NotTo(HaveOccurred())
		pix, err := fractal.Colorize(iters, p.MaxIterations, p.ColorScheme)
		Expect(err).NotTo(HaveOccurred())

		Expect(frame.Pixels.Pix).To(Equal(pix.Pix))
	})

	DescribeTable("rejects invalid parameters before evaluating",
		func(mutate func(*fractal.RenderParameters), want error) {
			mutate(&p)
			backend := &countingBackend{}
			frame, err := render.Render(context.Background(), backend, p)
			Expect(err).To(MatchError(want))
			Expect(frame).To(BeNil())
			Expect(backend.calls).To(BeZero())
		},
		Entry("zero width", func(p *fractal.RenderParameters) { p.Width = 0 }, fractal.ErrInvalidDimension),
		Entry("negative zoom", func(p *fractal.RenderParameters) { p.Zoom = -2 }, fractal.ErrInvalidZoom),
		Entry("zero iterations", func(p *fractal.RenderParameters) { p.MaxIterations = 0 }, fractal.ErrInvalidIterationBound),
		Entry("unknown scheme", func(p *fractal.RenderParameters) { p.ColorScheme = 17 }, fractal.ErrUnknownColorScheme),
	)

	It("returns no frame when canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		frame, err := render.Render(ctx, compute.NewSerialBackend(), p)
		Expect(err).To(MatchError(fractal.ErrCanceled))
		Expect(frame).To(BeNil())
	})
})

type countingBackend struct {
	calls int
}

func (c *countingBackend) Name() string    { return "counting" }
func (c *countingBackend) Available() bool { return true }
func (c *countingBackend) Cleanup()        {}

func (c *countingBackend) Evaluate(ctx context.Context, p fractal.RenderParameters) (fractal.IterationBuffer, error) {
	c.calls++
	return fractal.EvaluateContext(ctx, p)
}
