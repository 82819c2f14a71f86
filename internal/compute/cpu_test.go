package compute

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/mandelscope/internal/fractal"
)

func TestCPUBackend_MatchesSerial(t *testing.T) {
	tests := []struct {
		name string
		p    fractal.RenderParameters
	}{
		{"tiny serial path", fractal.RenderParameters{Width: 5, Height: 3, Zoom: 1, MaxIterations: 30}},
		{"uneven bands", fractal.RenderParameters{Width: 97, Height: 61, Zoom: 0.35, PanX: 0.6, MaxIterations: 80}},
		{"seahorse", fractal.RenderParameters{Width: 64, Height: 48, Zoom: 10, PanX: 0.75, PanY: -0.1, MaxIterations: 200}},
	}

	serial := NewSerialBackend()
	for _, workers := range []int{1, 2, 7} {
		cpu := NewCPUBackend(workers)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				want, err := serial.Evaluate(context.Background(), tt.p)
				if err != nil {
					t.Fatalf("serial failed: %v", err)
				}
				got, err := cpu.Evaluate(context.Background(), tt.p)
				if err != nil {
					t.Fatalf("cpu failed: %v", err)
				}
				if len(got.Counts) != len(want.Counts) {
					t.Fatalf("length %d, want %d", len(got.Counts), len(want.Counts))
				}
				for i := range want.Counts {
					if got.Counts[i] != want.Counts[i] {
						t.Fatalf("workers=%d pixel %d: %d, want %d", workers, i, got.Counts[i], want.Counts[i])
					}
				}
			})
		}
	}
}

func TestCPUBackend_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fractal.RenderParameters{Width: 200, Height: 200, Zoom: 1, MaxIterations: 100}
	buf, err := NewCPUBackend(4).Evaluate(ctx, p)
	if !errors.Is(err, fractal.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if buf.Counts != nil {
		t.Error("canceled render returned a buffer")
	}
}

func TestCPUBackend_InvalidParameters(t *testing.T) {
	_, err := NewCPUBackend(2).Evaluate(context.Background(), fractal.RenderParameters{Width: 10, Height: 0, Zoom: 1, MaxIterations: 5})
	if !errors.Is(err, fractal.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestCPUBackend_DefaultWorkers(t *testing.T) {
	cpu := NewCPUBackend(0)
	if cpu.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", cpu.Workers())
	}
	if !strings.HasPrefix(cpu.Name(), "cpu") {
		t.Errorf("unexpected name %q", cpu.Name())
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"cpu", "serial", "auto", ""} {
		b, err := Lookup(name, 2)
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
			continue
		}
		if !b.Available() {
			t.Errorf("Lookup(%q) returned unavailable backend", name)
		}
	}

	if _, err := Lookup("quantum", 0); err == nil {
		t.Error("expected error for unknown backend")
	}

	names := Names()
	if len(names) != 2 || names[0] != "cpu" || names[1] != "serial" {
		t.Errorf("Names() = %v", names)
	}
}

func TestSetBackend(t *testing.T) {
	prev := GetBackend()
	defer SetBackend(prev)

	serial := NewSerialBackend()
	SetBackend(serial)
	if GetBackend() != Backend(serial) {
		t.Error("SetBackend did not take effect")
	}
}

func BenchmarkBackends(b *testing.B) {
	p := fractal.RenderParameters{Width: 320, Height: 240, Zoom: 0.4, PanX: 0.5, MaxIterations: 200}
	for _, backend := range []Backend{NewSerialBackend(), NewCPUBackend(0)} {
		b.Run(backend.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				backend.Evaluate(context.Background(), p)
			}
		})
	}
}
