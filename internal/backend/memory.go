package backend

import (
	"sync"

	"github.com/latticewm/lattice/internal/geometry"
)

// Memory is an in-process backend: one fixed output, window state held in
// maps. It backs headless runs and the engine's tests.
type Memory struct {
	mu      sync.Mutex
	outputs []Output
	bounds  map[Handle]geometry.Rect
	visible map[Handle]bool
	raises  map[Handle]int
}

func NewMemory(outputs ...Output) *Memory {
	if len(outputs) == 0 {
		outputs = []Output{{ID: 0, Name: "virtual-0", Bounds: geometry.NewRect(0, 0, 1920, 1080)}}
	}
	return &Memory{
		outputs: outputs,
		bounds:  make(map[Handle]geometry.Rect),
		visible: make(map[Handle]bool),
		raises:  make(map[Handle]int),
	}
}

func (m *Memory) Outputs() ([]Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Output, len(m.outputs))
	copy(out, m.outputs)
	return out, nil
}

// Resize replaces the first output's bounds, simulating a monitor change.
func (m *Memory) Resize(bounds geometry.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.outputs) > 0 {
		m.outputs[0].Bounds = bounds
	}
}

func (m *Memory) SetWindowBounds(h Handle, r geometry.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds[h] = r
	return nil
}

func (m *Memory) ShowWindow(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[h] = true
	return nil
}

func (m *Memory) HideWindow(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[h] = false
	return nil
}

func (m *Memory) RaiseWindow(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raises[h]++
	return nil
}

func (m *Memory) Close() error { return nil }

// WindowBounds reports the last rectangle pushed for h.
func (m *Memory) WindowBounds(h Handle) (geometry.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bounds[h]
	return r, ok
}

// Visible reports the last visibility pushed for h.
func (m *Memory) Visible(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible[h]
}
