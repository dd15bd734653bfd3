package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/galaxyfield/aimcore/logging"
	"github.com/galaxyfield/aimcore/scene"
)

// LiveAction plays the camera path against the wall clock at a fixed frame rate. The scene file
// is watched and re-registered on change, and metrics are served when an address is given.
func LiveAction(c *cli.Context) error {
	fps := c.Int(flagFPS)
	if fps <= 0 {
		return errors.Errorf("--%s must be positive: got %d", flagFPS, fps)
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	s, err := newProbeSession(c, clk)
	if err != nil {
		return err
	}
	asJSON := c.Bool(flagJSON)
	s.engine.AddObserver(printer(c.App.Writer, clk.Now(), asJSON, s.logger))

	watcher, err := scene.NewWatcher(c.String(flagScene), s.logger.Sublogger("watcher"))
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			s.logger.Warnw("cannot close watcher", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := watcher.Run(ctx, s.reload)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if addr := c.String(flagMetricsAddr); addr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, addr, s.logger)
		})
	}
	g.Go(func() error {
		defer cancel()
		return s.play(ctx, clk, time.Second/time.Duration(fps), c.Bool(flagLoop))
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return printState(c.App.Writer, s.engine.State(), asJSON)
}

// play feeds the frames due at each tick to the engine until the path ends, or forever when
// repeat is set, resetting the engine every time the path restarts.
func (s *probeSession) play(ctx context.Context, clk clock.Clock, period time.Duration, repeat bool) error {
	ticker := clk.Ticker(period)
	defer ticker.Stop()

	start := clk.Now()
	next := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			due := next
			for due < len(s.frames) && s.frames[due].Offset() <= elapsed {
				due++
			}
			s.step(s.frames[next:due]...)
			next = due
			if next < len(s.frames) {
				continue
			}
			if !repeat {
				return nil
			}
			s.logger.Debug("restarting camera path")
			s.engine.Reset()
			start, next = now, 0
		}
	}
}

func serveMetrics(ctx context.Context, addr string, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("cannot shut down metrics server", "error", err)
		}
	}()

	logger.Infow("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}
