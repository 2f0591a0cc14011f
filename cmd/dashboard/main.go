// cmd/dashboard/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/vision-dashboard/internal/config"
	"github.com/tamzrod/vision-dashboard/internal/dashboard"
	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/poller"
	"github.com/tamzrod/vision-dashboard/internal/render"
	rmodbus "github.com/tamzrod/vision-dashboard/internal/render/modbus"
	"github.com/tamzrod/vision-dashboard/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: dashboard <config.yaml>")
	}

	os.Exit(run(os.Args[1]))
}

// run owns every resource it opens and returns the process exit code,
// so deferred closes always happen.
func run(cfgPath string) int {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 1
	}

	if err := config.Validate(cfg); err != nil {
		log.Printf("config validation failed: %v", err)
		return 1
	}
	config.Normalize(cfg)

	lg, err := logger.New(logger.Config{
		Dir:        cfg.Log.Dir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Stdout:     cfg.Log.Stdout,
	})
	if err != nil {
		log.Printf("logger init failed: %v", err)
		return 1
	}
	defer lg.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Visual surfaces
	// --------------------

	surface := render.NewSurface()
	hub := dashboard.NewHub(surface, lg)
	renderers := render.Multi{surface, hub}

	var mirror *rmodbus.Mirror
	if cfg.HMI.Enabled {
		cli, err := rmodbus.NewEndpointClient(rmodbus.Config{
			Endpoint: cfg.HMI.Endpoint,
			Timeout:  time.Duration(cfg.HMI.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			lg.Error("hmi client failed: %v", err)
			return 1
		}
		defer cli.Close()

		mirror = rmodbus.NewMirror(
			rmodbus.Plan{UnitID: cfg.HMI.UnitID, BaseAddr: cfg.HMI.Address},
			cli,
			lg,
		)
		renderers = append(renderers, mirror)
		lg.Info("hmi mirror enabled (endpoint=%s unit=%d addr=%d)", cfg.HMI.Endpoint, cfg.HMI.UnitID, cfg.HMI.Address)
	}

	// --------------------
	// Status feed -> decide -> render
	// --------------------

	p, closePoller, err := poller.Build(cfg.Source, cfg.Poll)
	if err != nil {
		lg.Error("poller build failed: %v", err)
		return 1
	}
	defer closePoller()

	loop, err := telemetry.New(p, renderers, lg)
	if err != nil {
		lg.Error("telemetry loop failed: %v", err)
		return 1
	}

	// --------------------
	// HTTP
	// --------------------

	server := &http.Server{
		Addr: cfg.Dashboard.Listen,
		Handler: dashboard.SetupRoutes(
			dashboard.Options{
				Title:     cfg.Dashboard.Title,
				StreamURL: cfg.Dashboard.StreamURL,
				LogDir:    lg.Dir(),
			},
			surface,
			hub,
			p.Stats,
			lg,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if mirror != nil {
		g.Go(func() error {
			mirror.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		if err := loop.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		loop.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("dashboard listening on %s (source=%s %s)", cfg.Dashboard.Listen, cfg.Source.Type, cfg.Source.Endpoint)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("dashboard stopped: %v", err)
		return 1
	}
	return 0
}
