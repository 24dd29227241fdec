package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/scenepool/internal/simulation"
	"github.com/ajitpratap0/scenepool/pkg/catalog"
	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/logger"
	"github.com/ajitpratap0/scenepool/pkg/metrics"
	"github.com/ajitpratap0/scenepool/pkg/observability"
	"github.com/ajitpratap0/scenepool/pkg/pool"
	"github.com/ajitpratap0/scenepool/pkg/scene"
)

const metricsShutdownTimeout = 5 * time.Second

type simulateFlags struct {
	ticks        int
	seed         int64
	spawn        int
	releaseRate  float64
	destroyRate  float64
	sessionTicks int
	templates    []string
	warmup       []string
	report       string
	linger       time.Duration
}

func newSimulateCommand(v *viper.Viper) *cobra.Command {
	defaults := simulation.DefaultConfig()
	f := simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a seeded workload against a pool",
		Long: `Run a deterministic spawn/release/destroy workload against a pool backed by
the configured catalog, verifying the pool's indexes after every tick.

Example:
  scenepool simulate --catalog catalog.yaml.zst --ticks 500 --seed 7 --warmup fx/spark=20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runSimulation(ctx, cfg, f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&f.ticks, "ticks", defaults.Ticks, "Number of ticks to simulate")
	flags.Int64Var(&f.seed, "seed", defaults.Seed, "Seed for the workload")
	flags.IntVar(&f.spawn, "spawn", defaults.SpawnPerTick, "Maximum acquisitions per tick")
	flags.Float64Var(&f.releaseRate, "release-rate", defaults.ReleaseRate, "Chance a live instance is released on a tick")
	flags.Float64Var(&f.destroyRate, "destroy-rate", defaults.DestroyRate, "Chance of one external destroy per tick")
	flags.IntVar(&f.sessionTicks, "session-ticks", 0, "Ticks per session, 0 for a single session")
	flags.StringSliceVar(&f.templates, "templates", nil, "Templates to spawn (default: every catalog template)")
	flags.StringSliceVar(&f.warmup, "warmup", nil, "Warm-up requests as template=count (overrides pool.warmup)")
	flags.StringVar(&f.report, "report", "", "Write the JSON report to this file instead of stdout")
	flags.DurationVar(&f.linger, "linger", 0, "Keep the metrics endpoint up this long after the run")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.Bool("trace", false, "Export load spans to stdout")
	flags.Int("max-preload", 0, "Per-call preload limit")
	bindFlag(v, "metrics.address", flags.Lookup("metrics-addr"))
	bindFlag(v, "tracing.enabled", flags.Lookup("trace"))
	bindFlag(v, "pool.max_preload_count", flags.Lookup("max-preload"))

	return cmd
}

func runSimulation(ctx context.Context, cfg *config.Config, f simulateFlags, stdout io.Writer) error {
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx = logger.NewContext(ctx, logger.RunIDKey, uuid.NewString())
	ctx = logger.NewContext(ctx, logger.CommandKey, "simulate")
	log := logger.WithContext(ctx).With(zap.String("component", "scenepool-cli"))

	cat, err := openCatalog(cfg.Catalog.Path, log)
	if err != nil {
		return err
	}

	s := scene.New()
	var loader pool.Loader = catalog.NewLoader(cat, s)

	tracer, shutdownTracing, err := observability.InitTracing(cfg.Tracing,
		observability.WithServiceVersion(version),
		observability.WithWriter(os.Stderr))
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("failed to shutdown tracing", zap.Error(err))
		}
	}()
	if cfg.Tracing.Enabled {
		loader = observability.TracedLoader(ctx, loader, tracer)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg, cfg.Metrics.Namespace)

	p, err := pool.New(loader,
		pool.WithMaxPreloadCount(cfg.Pool.MaxPreloadCount),
		pool.WithLogger(log.Named("pool")),
		pool.WithObserver(collector),
		pool.WithParenter(s.Attach),
		pool.WithHider(scene.HideUntagged))
	if err != nil {
		return err
	}
	defer p.Reset()

	var lifecycle conc.WaitGroup
	var server *http.Server
	if cfg.Metrics.Enabled {
		server = startMetricsServer(&lifecycle, log, cfg.Metrics.Address, collector)
	}

	simCfg, err := simulationConfig(cfg, cat, f)
	if err != nil {
		return err
	}
	runner, err := simulation.New(p, simCfg,
		simulation.WithLogger(log.Named("simulation")),
		simulation.WithTickObserver(collector),
		simulation.WithResourceMonitor(simulation.NewResourceMonitor()))
	if err != nil {
		return err
	}

	warmup := config.PoolConfig{MaxPreloadCount: p.MaxPreloadCount(), Warmup: simCfg.Warmup}
	log.Info("starting simulation",
		zap.Int("ticks", simCfg.Ticks),
		zap.Int("warmup_instances", warmup.WarmupTotal()),
		zap.Int64("seed", simCfg.Seed),
		zap.Strings("templates", simCfg.Templates),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))

	report, runErr := runner.Run(ctx)
	if report != nil {
		if err := writeReport(report, f.report, stdout); err != nil {
			return err
		}
	}

	if server != nil {
		if f.linger > 0 && runErr == nil {
			log.Info("keeping metrics endpoint up", zap.Duration("linger", f.linger))
			select {
			case <-ctx.Done():
			case <-time.After(f.linger):
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to stop metrics server", zap.Error(err))
		}
		lifecycle.Wait()
	}
	return runErr
}

// openCatalog opens path, falling back to the built-in sample catalog when
// the default path does not exist.
func openCatalog(path string, log *zap.Logger) (*catalog.Catalog, error) {
	c, err := catalog.Open(path)
	if err == nil {
		return c, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) && path == config.Default().Catalog.Path {
		log.Warn("catalog not found, using the built-in sample", zap.String("path", path))
		return catalog.Sample(), nil
	}
	return nil, err
}

func startMetricsServer(lifecycle *conc.WaitGroup, log *zap.Logger, addr string, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	lifecycle.Go(func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	})
	log.Info("serving metrics", zap.String("address", addr))
	return server
}

// simulationConfig merges config, catalog hints and flags. Flags win over
// pool.warmup, which wins over the catalog's preload hints.
func simulationConfig(cfg *config.Config, cat *catalog.Catalog, f simulateFlags) (simulation.Config, error) {
	templates := f.templates
	if len(templates) == 0 {
		templates = cat.Names()
	}
	sim := simulation.Config{
		Ticks:        f.ticks,
		Seed:         f.seed,
		SpawnPerTick: f.spawn,
		ReleaseRate:  f.releaseRate,
		DestroyRate:  f.destroyRate,
		SessionTicks: f.sessionTicks,
		Templates:    templates,
		Warmup:       cfg.Pool.Warmup,
	}

	if len(f.warmup) > 0 {
		warmup, err := parseWarmup(f.warmup)
		if err != nil {
			return sim, err
		}
		sim.Warmup = warmup
	} else if len(sim.Warmup) == 0 {
		for _, name := range cat.Names() {
			if t, _ := cat.Lookup(name); t.Preload > 0 {
				sim.Warmup = append(sim.Warmup, config.WarmupEntry{Template: name, Count: t.Preload})
			}
		}
	}
	return sim, sim.Validate()
}

func parseWarmup(specs []string) ([]config.WarmupEntry, error) {
	out := make([]config.WarmupEntry, 0, len(specs))
	for _, entry := range specs {
		template, count, ok := strings.Cut(entry, "=")
		n, err := strconv.Atoi(count)
		if !ok || strings.TrimSpace(template) == "" || err != nil || n < 0 {
			return nil, errors.New(errors.ErrorTypeValidation, "warm-up must be template=count").
				WithDetail("value", entry)
		}
		out = append(out, config.WarmupEntry{Template: template, Count: n})
	}
	return out, nil
}

func writeReport(report *simulation.Report, path string, stdout io.Writer) error {
	if path == "" {
		return report.WriteJSON(stdout)
	}
	file, err := os.Create(path) //nolint:gosec // G304: report path is operator-supplied
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create report").WithDetail("path", path)
	}
	if err := report.WriteJSON(file); err != nil {
		_ = file.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write report").WithDetail("path", path)
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close report").WithDetail("path", path)
	}
	return nil
}
