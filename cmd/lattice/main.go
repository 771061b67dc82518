package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"

	"github.com/latticewm/lattice/internal/backend"
	"github.com/latticewm/lattice/internal/build"
	"github.com/latticewm/lattice/internal/bus"
	"github.com/latticewm/lattice/internal/config"
	"github.com/latticewm/lattice/internal/control"
	"github.com/latticewm/lattice/internal/core"
	"github.com/latticewm/lattice/internal/wm"
	"github.com/latticewm/lattice/pkg/sutureext"
)

type Options struct {
	Debug    bool   `doc:"enable debug logging"`
	Headless bool   `doc:"use the in-memory backend instead of X11"`
	Dump     bool   `doc:"print the normalized config and exit"`
	Host     string `doc:"host to listen on"`
	Port     int    `doc:"port to listen on" default:"8080"`
	Config   string `doc:"config file" default:".lattice.yaml"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)

			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			store, err := config.NewStore(config.NewYAML(configFilePath))
			if err != nil {
				return err
			}
			if err := config.Normalize(&store); err != nil {
				return err
			}
			cfg, err := store.GetConfig()
			if err != nil {
				return err
			}

			if options.Dump {
				pp.Println(cfg)
				return nil
			}

			var b backend.Backend
			if options.Headless || os.Getenv("DISPLAY") == "" {
				b = backend.NewMemory()
			} else {
				b, err = backend.NewX11()
				if err != nil {
					return err
				}
			}
			defer b.Close()

			manager := wm.NewManager(b, config.ManagerSettings(cfg))

			super := sutureext.NewSimple("lattice")
			sutureext.Add(super, manager)
			sutureext.Add(super, control.NewServer(manager, core.Address(options.Host, options.Port)))

			return super.Serve(ctx)
		})
	})

	cli.Root().Version = build.Current.Version

	cli.Run()
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
