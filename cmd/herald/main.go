package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pix-xip/go-command"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/zoobzio/herald"
	"github.com/zoobzio/herald/internal/config"
	"github.com/zoobzio/herald/metrics"
)

var (
	// Version is set by build flags
	Version = "dev"
)

// tick is the payload each producer emits.
type tick struct {
	Producer int
	Seq      int
}

func main() {
	r := command.Root().Help("herald drives an event dispatcher with concurrent producers").
		Flags(func(f *flag.FlagSet) {
			f.Int("producers", 4, "number of concurrent producers")
			f.Int("events", 1000, "events emitted per producer")
			f.Int("work-us", 0, "microseconds each handler invocation sleeps")
			f.Bool("debug", false, "enable debug logging")
		})

	r.Action(Start)

	r.SubCommand("version").Help("Prints the version").
		Action(func(ctx context.Context, fs *flag.FlagSet, args []string) error {
			fmt.Println("herald version", Version)
			return nil
		})

	if err := r.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Start runs the load generator: producers emit ticks, the dispatcher's
// worker checks per-producer ordering, and the run ends with a shutdown.
func Start(ctx context.Context, fs *flag.FlagSet, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if command.Lookup[bool](fs, "debug") {
		level = "debug"
	}
	logger := initLogger(level)
	defer logger.Sync() //nolint:errcheck

	producers := command.Lookup[int](fs, "producers")
	events := command.Lookup[int](fs, "events")
	work := time.Duration(command.Lookup[int](fs, "work-us")) * time.Microsecond
	if producers < 1 || events < 0 {
		return errors.New("producers must be at least 1 and events non-negative")
	}

	reg := prometheus.NewRegistry()
	d := herald.New(
		herald.WithLogger(logger),
		herald.WithPolicy(cfg.Policy()),
		herald.WithFailureHandler(func(err *herald.HandlerError) {
			logger.Error("dispatcher failed", zap.Error(err))
		}),
	)
	collector := metrics.Instrument(d, reg)
	defer collector.Close()

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	// Only the worker touches these until Shutdown returns.
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	outOfOrder := 0

	ticks := herald.NewEvent[tick]("tick")
	ticks.Hook(d, func(t tick) {
		if t.Seq != last[t.Producer]+1 {
			outOfOrder++
		}
		last[t.Producer] = t.Seq
		if work > 0 {
			time.Sleep(work)
		}
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for seq := 0; seq < events; seq++ {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				if err := ticks.Emit(d, tick{Producer: p, Seq: seq}); err != nil {
					return fmt.Errorf("producer %d: %w", p, err)
				}
			}
			return nil
		})
	}
	emitErr := g.Wait()
	if emitErr != nil {
		logger.Warn("producers stopped early", zap.Error(emitErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := d.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dispatcher shutdown: %w", err)
	}

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	stats := d.Stats()
	logger.Info("run complete",
		zap.Int("producers", producers),
		zap.Uint64("emitted", stats.Emitted),
		zap.Uint64("executed", stats.Executed),
		zap.Uint64("abandoned", stats.Abandoned),
		zap.Int("out_of_order", outOfOrder),
		zap.Duration("elapsed", time.Since(start)))

	if outOfOrder > 0 {
		return fmt.Errorf("%d invocations ran out of producer order", outOfOrder)
	}

	return emitErr
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
