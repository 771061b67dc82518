// Package control exposes the window manager over a small HTTP API:
// inspection of windows and workspaces, the mutations a desktop tool
// needs, and a live event feed. The engine itself has no dependency on
// this surface.
package control

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/latticewm/lattice/internal/build"
	"github.com/latticewm/lattice/internal/bus"
	"github.com/latticewm/lattice/internal/geometry"
	"github.com/latticewm/lattice/internal/layout"
	"github.com/latticewm/lattice/internal/wm"
	"github.com/latticewm/lattice/pkg/chiext"
)

type Server struct {
	manager *wm.Manager
	hub     *bus.Hub[wm.Event]
	addr    string
}

func NewServer(manager *wm.Manager, addr string) *Server {
	return &Server{
		manager: manager,
		hub:     bus.NewHub[wm.Event]().Register(),
		addr:    addr,
	}
}

func (s *Server) String() string { return "control.Server" }

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chiext.Logger())

	s.register(humachi.New(router, huma.DefaultConfig("Lattice Control API", build.Current.Version)))

	server := &http.Server{Addr: s.addr, Handler: router}
	errC := make(chan error, 1)
	go func() { errC <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		<-errC
		return ctx.Err()
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type windowIDInput struct {
	ID uint64 `path:"id" doc:"window id"`
}

type workspaceIDInput struct {
	ID uint64 `path:"id" doc:"workspace id"`
}

func (s *Server) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-windows",
		Method:      http.MethodGet,
		Path:        "/api/windows",
		Summary:     "List all managed windows",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []wm.WindowSnapshot
	}, error) {
		return &struct{ Body []wm.WindowSnapshot }{Body: s.manager.Windows()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-window",
		Method:      http.MethodGet,
		Path:        "/api/windows/{id}",
		Summary:     "Get one window",
	}, func(ctx context.Context, input *windowIDInput) (*struct {
		Body wm.WindowSnapshot
	}, error) {
		win, ok := s.manager.Window(wm.WindowID(input.ID))
		if !ok {
			return nil, huma.Error404NotFound("window not found")
		}
		return &struct{ Body wm.WindowSnapshot }{Body: win}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "destroy-window",
		Method:        http.MethodDelete,
		Path:          "/api/windows/{id}",
		Summary:       "Destroy a window",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *windowIDInput) (*struct{}, error) {
		if !s.manager.DestroyWindow(wm.WindowID(input.ID)) {
			return nil, huma.Error404NotFound("window not found")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "focus-window",
		Method:        http.MethodPost,
		Path:          "/api/windows/{id}/focus",
		Summary:       "Focus a window of the active workspace",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *windowIDInput) (*struct{}, error) {
		if !s.manager.FocusWindow(wm.WindowID(input.ID)) {
			return nil, huma.Error404NotFound("window not found on the active workspace")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "set-window-bounds",
		Method:        http.MethodPost,
		Path:          "/api/windows/{id}/bounds",
		Summary:       "Set a floating window's bounds",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		windowIDInput
		Body struct {
			X      int `json:"x"`
			Y      int `json:"y"`
			Width  int `json:"width" minimum:"0"`
			Height int `json:"height" minimum:"0"`
		}
	}) (*struct{}, error) {
		id := wm.WindowID(input.ID)
		if _, ok := s.manager.Window(id); !ok {
			return nil, huma.Error404NotFound("window not found")
		}
		r := geometry.NewRect(input.Body.X, input.Body.Y, input.Body.Width, input.Body.Height)
		if !s.manager.SetWindowBounds(id, r) {
			return nil, huma.Error409Conflict("window is tiled; detach to floating first")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "float-window",
		Method:        http.MethodPost,
		Path:          "/api/windows/{id}/floating",
		Summary:       "Move a window between tiling and floating",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		windowIDInput
		Body struct {
			Floating bool `json:"floating"`
		}
	}) (*struct{}, error) {
		if !s.manager.SetFloating(wm.WindowID(input.ID), input.Body.Floating) {
			return nil, huma.Error404NotFound("window not found or already in that mode")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-workspaces",
		Method:      http.MethodGet,
		Path:        "/api/workspaces",
		Summary:     "List workspaces",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []wm.WorkspaceSnapshot
	}, error) {
		return &struct{ Body []wm.WorkspaceSnapshot }{Body: s.manager.Workspaces()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-workspace",
		Method:      http.MethodPost,
		Path:        "/api/workspaces",
		Summary:     "Create a workspace",
	}, func(ctx context.Context, input *struct {
		Body struct {
			Name   string `json:"name" minLength:"1"`
			Policy string `json:"policy,omitempty"`
		}
	}) (*struct {
		Body wm.WorkspaceSnapshot
	}, error) {
		policy := layout.Policy("")
		if input.Body.Policy != "" {
			p, err := layout.ParsePolicy(input.Body.Policy)
			if err != nil {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			policy = p
		}
		id := s.manager.CreateWorkspace(input.Body.Name, policy)
		ws, _ := s.manager.Workspace(id)
		return &struct{ Body wm.WorkspaceSnapshot }{Body: ws}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "destroy-workspace",
		Method:        http.MethodDelete,
		Path:          "/api/workspaces/{id}",
		Summary:       "Destroy a workspace, reassigning its windows",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *workspaceIDInput) (*struct{}, error) {
		if !s.manager.DestroyWorkspace(wm.WorkspaceID(input.ID)) {
			return nil, huma.Error404NotFound("workspace not found")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "activate-workspace",
		Method:        http.MethodPost,
		Path:          "/api/workspaces/{id}/activate",
		Summary:       "Switch to a workspace",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *workspaceIDInput) (*struct{}, error) {
		if !s.manager.SwitchToWorkspace(wm.WorkspaceID(input.ID)) {
			return nil, huma.Error404NotFound("workspace not found")
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "set-layout",
		Method:        http.MethodPut,
		Path:          "/api/layout",
		Summary:       "Switch the active workspace's arrangement policy",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		Body struct {
			Policy string `json:"policy" minLength:"1"`
		}
	}) (*struct{}, error) {
		policy, err := layout.ParsePolicy(input.Body.Policy)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		s.manager.SetPolicy(policy)
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-build",
		Method:      http.MethodGet,
		Path:        "/api/build",
		Summary:     "Build metadata",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body build.Build
	}, error) {
		return &struct{ Body build.Build }{Body: build.Current}, nil
	})

	sse.Register(api, huma.Operation{
		OperationID: "events",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Stream window manager events",
	}, map[string]any{
		"event": wm.Event{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		events, done := s.hub.Subscribe(ctx)
		defer done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
