package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/kinetix/internal/core/observability/log"
	"github.com/zeusync/kinetix/internal/display"
	"github.com/zeusync/kinetix/internal/gameplay/telekinesis"
	"github.com/zeusync/kinetix/internal/injector"
	"github.com/zeusync/kinetix/internal/inspector"
	"github.com/zeusync/kinetix/internal/scene"
)

func main() {
	scenePath := flag.String("scene", "scenes/playground.yaml", "scene file")
	headless := flag.Bool("headless", false, "run without the terminal view, as fast as possible")
	inspect := flag.String("inspect", "", "serve the inspector on this address (overrides the scene)")
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := run(*scenePath, *headless, *inspect, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "sandbox:", err)
		os.Exit(1)
	}
}

func run(scenePath string, headless bool, inspectAddr, envFile string) error {
	if err := scene.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := scene.LoadFile(scenePath)
	if err != nil {
		return err
	}
	if err := scene.ApplyEnv(&cfg, nil); err != nil {
		return err
	}
	if inspectAddr != "" {
		cfg.Inspector.Addr = inspectAddr
	}

	var (
		screen      *display.Screen
		input       telekinesis.Input
		closeScreen = func() {}
	)
	if !headless {
		// keep log lines off the terminal view
		if len(cfg.Log.Outputs) == 0 {
			cfg.Log.Outputs = []string{"kinetix.log"}
		}
		screen, err = display.Open()
		if err != nil {
			return err
		}
		closeScreen = sync.OnceFunc(screen.Close)
		defer closeScreen()
		input = screen
	}

	rt, cleanup, err := injector.InitializeRuntime(cfg, input)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var hub *inspector.Hub
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Inspector.Addr != "" {
		hub = inspector.NewHub(64, rt.Logger.Named("inspector"))
		if _, err := hub.Forward(rt.Events); err != nil {
			return err
		}
		srv := inspector.NewServer(hub, rt.Logger.Named("inspector"))
		g.Go(func() error { return srv.Run(ctx, cfg.Inspector.Addr) })
	}
	if screen != nil {
		g.Go(func() error { return screen.Run(ctx) })
	}

	var final inspector.Snapshot
	g.Go(func() error {
		defer cancel()
		snap, err := simulate(ctx, rt, screen, hub)
		final = snap
		return err
	})

	err = g.Wait()
	closeScreen()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Printf("scene=%s steps=%d sim_time=%.2fs digest=%s\n", final.Scene, final.Step, final.SimTime, final.Digest)
	return nil
}

// simulate runs the frame loop until the scene duration is reached, the
// user quits or ctx is done, and returns the last snapshot.
func simulate(ctx context.Context, rt *scene.Runtime, screen *display.Screen, hub *inspector.Hub) (inspector.Snapshot, error) {
	if err := rt.Start(ctx); err != nil {
		return inspector.Snapshot{}, err
	}
	rt.Logger.Info("simulation started",
		log.String("scene", rt.Config.Name),
		log.Float64("fixed_step", rt.Config.Time.FixedStep),
		log.Float64("frame_rate", rt.Config.Time.FrameRate),
		log.Duration("duration", rt.Config.Time.Duration))

	every := uint64(rt.Config.Inspector.Every)
	var lastPublished uint64
	publish := func() {
		if hub == nil || every == 0 {
			return
		}
		if step := rt.Manager.StepCount(); step-lastPublished >= every {
			lastPublished = step
			hub.Publish(inspector.Capture(rt))
		}
	}

	var tick <-chan time.Time
	if screen != nil {
		ticker := time.NewTicker(time.Duration(rt.Config.Time.FrameDelta() * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}
	var quit <-chan struct{}
	if screen != nil {
		quit = screen.Done()
	}

	for !rt.Done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return inspector.Capture(rt), nil
			case <-quit:
				return inspector.Capture(rt), nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return inspector.Capture(rt), nil
		}

		if err := rt.Frame(); err != nil {
			rt.Logger.Warn("frame failed", log.Error(err))
		}
		publish()
		if screen != nil {
			screen.Render(rt)
		}
	}

	snap := inspector.Capture(rt)
	if hub != nil {
		hub.Publish(snap)
	}
	rt.Logger.Info("simulation finished",
		log.Uint64("steps", snap.Step),
		log.String("digest", snap.Digest))
	return snap, nil
}
