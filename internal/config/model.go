package config

import "github.com/latticewm/lattice/internal/layout"

var defaultConfig = Config{
	GapSize:           8,
	BorderSize:        2,
	SnapThreshold:     10,
	AutoBalance:       true,
	SmartGaps:         false,
	FocusFollowsMouse: false,
	ClickToFocus:      true,
	AutoRaise:         false,
	AnimationMs:       150,
	RelayoutMs:        16,
	DefaultPolicy:     string(layout.PolicyTiled),
	Workspaces:        []Workspace{},
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	cfg := defaultConfig
	cfg.Workspaces = append([]Workspace(nil), defaultConfig.Workspaces...)
	return cfg
}

// Config is the on-disk model. Pixel knobs are clamped non-negative and
// unknown policy names replaced by the default during normalization.
type Config struct {
	GapSize           int    `json:"gap_size" yaml:"gap_size"`
	BorderSize        int    `json:"border_size" yaml:"border_size"`
	SnapThreshold     int    `json:"snap_threshold" yaml:"snap_threshold"`
	AutoBalance       bool   `json:"auto_balance" yaml:"auto_balance"`
	SmartGaps         bool   `json:"smart_gaps" yaml:"smart_gaps"`
	FocusFollowsMouse bool   `json:"focus_follows_mouse" yaml:"focus_follows_mouse"`
	ClickToFocus      bool   `json:"click_to_focus" yaml:"click_to_focus"`
	AutoRaise         bool   `json:"auto_raise" yaml:"auto_raise"`
	AnimationMs       int    `json:"animation_ms" yaml:"animation_ms"`
	RelayoutMs        int    `json:"relayout_ms" yaml:"relayout_ms"`
	DefaultPolicy     string `json:"default_policy" yaml:"default_policy"`

	Workspaces []Workspace `json:"workspaces" yaml:"workspaces"`
}

// Workspace predeclares a named workspace. The UUID gives it a stable
// identity across config reloads; normalization stamps missing ones.
type Workspace struct {
	UUID   string `json:"uuid" yaml:"uuid"`
	Name   string `json:"name" yaml:"name"`
	Policy string `json:"policy" yaml:"policy"`
}
