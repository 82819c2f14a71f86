package render

import (
	"context"
	"errors"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
)

// Scheduler runs renders in the background and presents only the newest
// one. Every Submit gets a larger sequence number and cancels whatever is in
// flight; a frame is published only if no newer request exists and nothing
// newer has been presented already.
type Scheduler struct {
	backend compute.Backend

	// OnFrame is called with each presented frame. OnError is called when a
	// current request fails; stale and canceled requests are dropped silently.
	OnFrame func(*Frame)
	OnError func(seq uint64, err error)

	mu        sync.Mutex
	seq       uint64
	presented uint64
	latest    *Frame
	cancel    context.CancelFunc
	closed    bool
	wg        sync.WaitGroup
}

func NewScheduler(backend compute.Backend) *Scheduler {
	return &Scheduler{backend: backend}
}

var ErrClosed = errors.New("render: scheduler closed")

// Submit queues a render of p and returns its sequence number. Rejected
// requests return 0 and are reported through OnError without disturbing the
// frame on screen or the render already in flight.
func (s *Scheduler) Submit(p fractal.RenderParameters) uint64 {
	if err := Validate(p); err != nil {
		s.fail(0, err)
		return 0
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.fail(0, ErrClosed)
		return 0
	}
	s.seq++
	seq := s.seq

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx, seq, p)
	return seq
}

func (s *Scheduler) run(ctx context.Context, seq uint64, p fractal.RenderParameters) {
	defer s.wg.Done()

	frame, err := Render(ctx, s.backend, p)
	if err != nil {
		if errors.Is(err, fractal.ErrCanceled) || !s.isCurrent(seq) {
			logx.Debugf("render %d abandoned: %v", seq, err)
			return
		}
		s.fail(seq, err)
		return
	}
	frame.Seq = seq

	s.mu.Lock()
	if seq != s.seq || seq <= s.presented {
		s.mu.Unlock()
		logx.Debugf("render %d superseded, dropping", seq)
		return
	}
	s.presented = seq
	s.latest = frame
	onFrame := s.OnFrame
	s.mu.Unlock()

	logx.Debugf("render %d presented in %v (%s)", seq, frame.Elapsed, p)
	if onFrame != nil {
		onFrame(frame)
	}
}

func (s *Scheduler) isCurrent(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

func (s *Scheduler) fail(seq uint64, err error) {
	logx.Errorf("render %d failed: %v", seq, err)
	s.mu.Lock()
	onError := s.OnError
	s.mu.Unlock()
	if onError != nil {
		onError(seq, err)
	}
}

// Latest returns the most recently presented frame, or nil.
func (s *Scheduler) Latest() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Seq returns the sequence number of the newest request.
func (s *Scheduler) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Wait blocks until every render started so far has finished or been dropped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close cancels the in-flight render and waits for it to unwind.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
