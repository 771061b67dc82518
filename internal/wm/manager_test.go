package wm

import (
	"context"
	"sync"
	"testing"

	"github.com/latticewm/lattice/internal/backend"
	"github.com/latticewm/lattice/internal/bus"
	"github.com/latticewm/lattice/internal/geometry"
	"github.com/latticewm/lattice/internal/layout"
)

func newTestManager(settings Settings) (*Manager, *backend.Memory) {
	b := backend.NewMemory()
	return NewManager(b, settings), b
}

func createWindows(m *Manager, n int) []WindowID {
	out := make([]WindowID, n)
	for i := range out {
		out[i] = m.CreateWindow(WindowInfo{Handle: backend.Handle(i + 1)})
	}
	return out
}

func windowBounds(t *testing.T, m *Manager, id WindowID) geometry.Rect {
	t.Helper()
	snap, ok := m.Window(id)
	if !ok {
		t.Fatalf("window %d not found", id)
	}
	return snap.Bounds
}

func TestCreateWindowsTileAroundFirstFocused(t *testing.T) {
	m, _ := newTestManager(Settings{})
	ids := createWindows(m, 4)

	// Only the first window grabs focus, so every insertion splits its
	// leaf: alternating axes carve the first window down to a quadrant.
	if got := m.Focused(); got != ids[0] {
		t.Fatalf("focused %d, want %d", got, ids[0])
	}

	want := map[WindowID]geometry.Rect{
		ids[0]: geometry.NewRect(0, 0, 480, 540),
		ids[1]: geometry.NewRect(960, 0, 960, 1080),
		ids[2]: geometry.NewRect(0, 540, 960, 540),
		ids[3]: geometry.NewRect(480, 0, 480, 540),
	}
	for id, r := range want {
		if got := windowBounds(t, m, id); got != r {
			t.Errorf("window %d at %+v, want %+v", id, got, r)
		}
	}
}

func TestFocusCyclingFollowsWindowOrder(t *testing.T) {
	m, _ := newTestManager(Settings{})

	// Focus each window as it appears so the tree grows as a chain and the
	// enumeration order is creation order.
	var ids []WindowID
	for i := 0; i < 3; i++ {
		id := m.CreateWindow(WindowInfo{Handle: backend.Handle(i + 1)})
		m.FocusWindow(id)
		ids = append(ids, id)
	}

	m.FocusWindow(ids[0])
	for _, want := range []WindowID{ids[1], ids[2], ids[0]} {
		if !m.FocusNext() {
			t.Fatal("FocusNext failed")
		}
		if got := m.Focused(); got != want {
			t.Fatalf("focused %d, want %d", got, want)
		}
	}
	if !m.FocusPrevious() {
		t.Fatal("FocusPrevious failed")
	}
	if got := m.Focused(); got != ids[2] {
		t.Fatalf("focused %d after wrap-around, want %d", got, ids[2])
	}
}

func TestMoveRequiresFloating(t *testing.T) {
	m, _ := newTestManager(Settings{})
	id := createWindows(m, 1)[0]

	if m.MoveWindow(id, 50, 60) {
		t.Fatal("moving a tiled window must be rejected")
	}
	if m.ResizeWindow(id, 400, 300) {
		t.Fatal("resizing a tiled window must be rejected")
	}

	if !m.SetFloating(id, true) {
		t.Fatal("SetFloating failed")
	}
	if !m.MoveWindow(id, 50, 60) {
		t.Fatal("moving a floating window must succeed")
	}
	if !m.ResizeWindow(id, 400, 300) {
		t.Fatal("resizing a floating window must succeed")
	}
	want := geometry.NewRect(50, 60, 400, 300)
	if got := windowBounds(t, m, id); got != want {
		t.Fatalf("window at %+v, want %+v", got, want)
	}

	// Re-tiling snaps it back under policy control.
	if !m.SetFloating(id, false) {
		t.Fatal("re-tiling failed")
	}
	if got := windowBounds(t, m, id); got != geometry.NewRect(0, 0, 1920, 1080) {
		t.Fatalf("re-tiled window at %+v, want full output", got)
	}
}

func TestFullscreenCoversOutput(t *testing.T) {
	m, _ := newTestManager(Settings{Gap: 10})
	ids := createWindows(m, 2)

	if !m.SetFullscreen(ids[1], true) {
		t.Fatal("SetFullscreen failed")
	}
	if got := windowBounds(t, m, ids[1]); got != geometry.NewRect(0, 0, 1920, 1080) {
		t.Fatalf("fullscreen window at %+v, want full output", got)
	}

	snap, _ := m.Window(ids[1])
	if !snap.Fullscreen {
		t.Fatal("fullscreen flag not set")
	}
}

func TestSetPolicyStackingCascades(t *testing.T) {
	m, _ := newTestManager(Settings{})
	ids := createWindows(m, 3)

	if m.SetPolicy("quantum") {
		t.Fatal("unknown policy must be rejected")
	}
	if !m.SetPolicy(layout.PolicyStacking) {
		t.Fatal("SetPolicy failed")
	}

	// The rebuild walks the membership order, so offsets follow creation
	// order regardless of how the tree looked before the switch.
	for i, id := range ids {
		got := windowBounds(t, m, id)
		want := geometry.NewRect(20*i, 20*i, 1920, 1080)
		if got != want {
			t.Fatalf("window %d at %+v, want %+v", id, got, want)
		}
	}

	ws, _ := m.Workspace(m.ActiveWorkspace())
	if ws.Policy != string(layout.PolicyStacking) {
		t.Fatalf("workspace policy %s, want stacking", ws.Policy)
	}
}

func TestDestroyWindowFocusFallsBack(t *testing.T) {
	m, _ := newTestManager(Settings{})
	ids := createWindows(m, 3)
	m.FocusWindow(ids[2])

	if !m.DestroyWindow(ids[2]) {
		t.Fatal("DestroyWindow failed")
	}
	if m.DestroyWindow(ids[2]) {
		t.Fatal("double destroy must report false")
	}
	if got := m.Focused(); got != ids[1] {
		t.Fatalf("focused %d after destroy, want %d", got, ids[1])
	}
	if _, ok := m.Window(ids[2]); ok {
		t.Fatal("destroyed window still visible in snapshots")
	}
}

func TestSwitchWorkspaceTogglesVisibility(t *testing.T) {
	m, b := newTestManager(Settings{})
	createWindows(m, 1)

	ws2 := m.CreateWorkspace("two", "")
	if !m.SwitchToWorkspace(ws2) {
		t.Fatal("SwitchToWorkspace failed")
	}
	if b.Visible(1) {
		t.Fatal("window of the deactivated workspace still visible")
	}
	if got := m.Focused(); got != layout.None {
		t.Fatalf("focused %d on empty workspace, want none", got)
	}

	second := m.CreateWindow(WindowInfo{Handle: 2})
	if got := m.Focused(); got != second {
		t.Fatalf("focused %d, want %d", got, second)
	}

	if !m.SwitchToWorkspace(1) {
		t.Fatal("switch back failed")
	}
	if !b.Visible(1) || b.Visible(2) {
		t.Fatal("visibility did not follow the active workspace")
	}
}

func TestSwitchToActiveWorkspaceIsNoop(t *testing.T) {
	m, _ := newTestManager(Settings{})
	if !m.SwitchToWorkspace(m.ActiveWorkspace()) {
		t.Fatal("switching to the active workspace must report true")
	}
	if m.SwitchToWorkspace(99) {
		t.Fatal("unknown workspace must report false")
	}
}

func TestDestroyWorkspaceReassignsWindows(t *testing.T) {
	m, _ := newTestManager(Settings{})
	home := m.ActiveWorkspace()
	ws2 := m.CreateWorkspace("two", "")
	m.SwitchToWorkspace(ws2)
	ids := createWindows(m, 2)
	m.SetFloating(ids[1], true)

	if !m.DestroyWorkspace(ws2) {
		t.Fatal("DestroyWorkspace failed")
	}
	if got := m.ActiveWorkspace(); got != home {
		t.Fatalf("active workspace %d, want %d", got, home)
	}

	ws, _ := m.Workspace(home)
	if len(ws.Windows) != 2 {
		t.Fatalf("reassigned %d windows, want 2", len(ws.Windows))
	}
	snap, _ := m.Window(ids[1])
	if !snap.Floating {
		t.Fatal("floating flag lost across reassignment")
	}
}

func TestDestroyLastWorkspaceSpawnsDefault(t *testing.T) {
	m, _ := newTestManager(Settings{})
	id := createWindows(m, 1)[0]

	if !m.DestroyWorkspace(m.ActiveWorkspace()) {
		t.Fatal("DestroyWorkspace failed")
	}

	workspaces := m.Workspaces()
	if len(workspaces) != 1 {
		t.Fatalf("%d workspaces, want 1", len(workspaces))
	}
	if workspaces[0].Name != "main" {
		t.Fatalf("fresh workspace named %q, want main", workspaces[0].Name)
	}
	if got := m.ActiveWorkspace(); got != workspaces[0].ID {
		t.Fatalf("active workspace %d, want %d", got, workspaces[0].ID)
	}
	if len(workspaces[0].Windows) != 1 || workspaces[0].Windows[0] != id {
		t.Fatalf("window not reassigned: %v", workspaces[0].Windows)
	}
}

func TestMinimizeRestore(t *testing.T) {
	m, b := newTestManager(Settings{})
	id := createWindows(m, 1)[0]

	if !m.Minimize(id) {
		t.Fatal("Minimize failed")
	}
	if m.Minimize(id) {
		t.Fatal("double minimize must report false")
	}
	if b.Visible(1) {
		t.Fatal("minimized window still visible")
	}

	if !m.Restore(id) {
		t.Fatal("Restore failed")
	}
	if !b.Visible(1) {
		t.Fatal("restored window not visible")
	}
}

func TestArrangeAbsorbsOutputResize(t *testing.T) {
	m, b := newTestManager(Settings{})
	id := createWindows(m, 1)[0]

	b.Resize(geometry.NewRect(0, 0, 1280, 720))
	m.ArrangeWindows()

	if got := windowBounds(t, m, id); got != geometry.NewRect(0, 0, 1280, 720) {
		t.Fatalf("window at %+v after resize, want new output bounds", got)
	}

	// Re-running against unchanged outputs must not move anything.
	m.ArrangeWindows()
	if got := windowBounds(t, m, id); got != geometry.NewRect(0, 0, 1280, 720) {
		t.Fatalf("window at %+v after redundant arrange", got)
	}
}

func TestConfiguredWorkspaces(t *testing.T) {
	m, _ := newTestManager(Settings{Workspaces: []WorkspaceSpec{
		{Name: "code", Policy: layout.PolicyTiled},
		{Name: "chat", Policy: layout.PolicyGrid},
	}})

	workspaces := m.Workspaces()
	if len(workspaces) != 2 {
		t.Fatalf("%d workspaces, want 2", len(workspaces))
	}
	if workspaces[1].Policy != string(layout.PolicyGrid) {
		t.Fatalf("second workspace policy %s, want grid", workspaces[1].Policy)
	}
	if !workspaces[0].Active {
		t.Fatal("first configured workspace must start active")
	}
}

type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, ev.Type)
	return nil
}

func (r *eventRecorder) seen(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.types {
		if t == typ {
			return true
		}
	}
	return false
}

func TestMutationsPublishEvents(t *testing.T) {
	rec := &eventRecorder{}
	bus.Subscribe("test.recorder", rec.record)

	m, _ := newTestManager(Settings{})
	id := createWindows(m, 1)[0]
	m.SetFloating(id, true)
	m.MoveWindow(id, 10, 10)
	m.ResizeWindow(id, 300, 200)
	m.SetPolicy(layout.PolicyGrid)
	ws2 := m.CreateWorkspace("two", "")
	m.SwitchToWorkspace(ws2)
	m.DestroyWindow(id)

	for _, typ := range []string{
		"window_created",
		"window_focused",
		"window_moved",
		"window_resized",
		"layout_changed",
		"workspace_switched",
		"window_destroyed",
	} {
		if !rec.seen(typ) {
			t.Errorf("no %s event published", typ)
		}
	}
}
