package config

import (
	"time"

	"github.com/google/uuid"

	"github.com/latticewm/lattice/internal/layout"
	"github.com/latticewm/lattice/internal/wm"
)

// Normalize repairs a config in place through the store: negative pixel
// knobs are clamped to zero, unknown policy names fall back to the
// default, and every declared workspace gets a UUID so it keeps its
// identity across reloads.
func Normalize(store *Store) error {
	return store.UpdateConfig(func(cfg Config) (Config, error) {
		cfg.GapSize = max(cfg.GapSize, 0)
		cfg.BorderSize = max(cfg.BorderSize, 0)
		cfg.SnapThreshold = max(cfg.SnapThreshold, 0)
		cfg.AnimationMs = max(cfg.AnimationMs, 0)
		cfg.RelayoutMs = max(cfg.RelayoutMs, 0)

		if _, err := layout.ParsePolicy(cfg.DefaultPolicy); err != nil {
			cfg.DefaultPolicy = string(layout.PolicyTiled)
		}

		for i := range cfg.Workspaces {
			if cfg.Workspaces[i].UUID == "" {
				cfg.Workspaces[i].UUID = uuid.NewString()
			}
			if cfg.Workspaces[i].Policy != "" {
				if _, err := layout.ParsePolicy(cfg.Workspaces[i].Policy); err != nil {
					cfg.Workspaces[i].Policy = cfg.DefaultPolicy
				}
			}
		}

		return cfg, nil
	})
}

// ManagerSettings maps the on-disk model onto the manager's settings.
func ManagerSettings(cfg Config) wm.Settings {
	specs := make([]wm.WorkspaceSpec, 0, len(cfg.Workspaces))
	for _, ws := range cfg.Workspaces {
		specs = append(specs, wm.WorkspaceSpec{
			UUID:   ws.UUID,
			Name:   ws.Name,
			Policy: layout.Policy(ws.Policy),
		})
	}
	return wm.Settings{
		Gap:               cfg.GapSize,
		Border:            cfg.BorderSize,
		SnapThreshold:     cfg.SnapThreshold,
		AutoBalance:       cfg.AutoBalance,
		SmartGaps:         cfg.SmartGaps,
		FocusFollowsMouse: cfg.FocusFollowsMouse,
		ClickToFocus:      cfg.ClickToFocus,
		AutoRaise:         cfg.AutoRaise,
		AnimationDuration: time.Duration(cfg.AnimationMs) * time.Millisecond,
		RelayoutInterval:  time.Duration(cfg.RelayoutMs) * time.Millisecond,
		DefaultPolicy:     layout.Policy(cfg.DefaultPolicy),
		Workspaces:        specs,
	}
}
