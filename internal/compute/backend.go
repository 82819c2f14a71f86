package compute

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/mandelscope/internal/fractal"
)

type Backend interface {
	Name() string
	Available() bool
	Evaluate(ctx context.Context, p fractal.RenderParameters) (fractal.IterationBuffer, error)
	Cleanup()
}

var (
	mu            sync.RWMutex
	activeBackend Backend
)

var constructors = map[string]func(workers int) Backend{
	"cpu":    func(workers int) Backend { return NewCPUBackend(workers) },
	"serial": func(int) Backend { return NewSerialBackend() },
}

func init() {
	// Auto-select best available backend
	activeBackend = AutoSelectBackend()
}

func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if activeBackend != nil && activeBackend != b {
		activeBackend.Cleanup()
	}
	activeBackend = b
}

func GetBackend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return activeBackend
}

func AutoSelectBackend() Backend {
	cpu := NewCPUBackend(0)
	if cpu.Available() {
		return cpu
	}
	return NewSerialBackend()
}

// Lookup builds a backend by name. workers <= 0 means one per CPU.
func Lookup(name string, workers int) (Backend, error) {
	if name == "" || name == "auto" {
		return AutoSelectBackend(), nil
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s (available: %v)", name, Names())
	}
	b := fn(workers)
	if !b.Available() {
		return nil, fmt.Errorf("backend %s not available", name)
	}
	return b, nil
}

// Names lists the registered backends.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
