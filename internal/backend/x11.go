package backend

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/latticewm/lattice/internal/geometry"
)

// X11 drives real X windows over an xgb connection. Handles are xproto
// window ids belonging to clients; this backend only configures them.
type X11 struct {
	conn *xgb.Conn
}

func NewX11() (*X11, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	return &X11{conn: conn}, nil
}

func (x *X11) Outputs() ([]Output, error) {
	screen := xproto.Setup(x.conn).DefaultScreen(x.conn)
	return []Output{{
		ID:     0,
		Name:   "x11-0",
		Bounds: geometry.NewRect(0, 0, int(screen.WidthInPixels), int(screen.HeightInPixels)),
	}}, nil
}

func (x *X11) SetWindowBounds(h Handle, r geometry.Rect) error {
	if r.Width < 1 || r.Height < 1 {
		// X rejects zero extents; zero-area arrangements are hidden instead.
		return x.HideWindow(h)
	}
	return xproto.ConfigureWindowChecked(x.conn, xproto.Window(h),
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(r.X), uint32(r.Y), uint32(r.Width), uint32(r.Height)}).
		Check()
}

func (x *X11) ShowWindow(h Handle) error {
	return xproto.MapWindowChecked(x.conn, xproto.Window(h)).Check()
}

func (x *X11) HideWindow(h Handle) error {
	return xproto.UnmapWindowChecked(x.conn, xproto.Window(h)).Check()
}

func (x *X11) RaiseWindow(h Handle) error {
	return xproto.ConfigureWindowChecked(x.conn, xproto.Window(h),
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).
		Check()
}

func (x *X11) Close() error {
	x.conn.Close()
	return nil
}
