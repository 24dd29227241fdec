// Package simulation drives a pool with a seeded, repeatable workload: each
// tick spawns instances, releases some of the live ones and occasionally
// destroys one behind the pool's back, the way gameplay code does. The pool's
// index invariants are verified after every tick.
package simulation

import (
	"context"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/json"
	"github.com/ajitpratap0/scenepool/pkg/metrics"
	"github.com/ajitpratap0/scenepool/pkg/pool"
)

// Config controls the workload.
type Config struct {
	Ticks        int                  // Number of ticks to run
	Seed         int64                // Seed for the workload's random source
	SpawnPerTick int                  // Upper bound on acquisitions per tick
	ReleaseRate  float64              // Chance a live instance is released on a tick
	DestroyRate  float64              // Chance of one external destroy per tick
	SessionTicks int                  // Ticks per session, 0 for a single session
	Templates    []string             // Templates to spawn from
	Warmup       []config.WarmupEntry // Prepared at the start of each session
}

// DefaultConfig returns a small workload over templates.
func DefaultConfig(templates ...string) Config {
	return Config{
		Ticks:        100,
		Seed:         1,
		SpawnPerTick: 8,
		ReleaseRate:  0.3,
		DestroyRate:  0.05,
		Templates:    templates,
	}
}

// Validate checks the workload parameters.
func (c Config) Validate() error {
	switch {
	case c.Ticks <= 0:
		return errors.New(errors.ErrorTypeValidation, "ticks must be positive")
	case c.SpawnPerTick < 0:
		return errors.New(errors.ErrorTypeValidation, "spawn per tick cannot be negative")
	case c.ReleaseRate < 0 || c.ReleaseRate > 1:
		return errors.New(errors.ErrorTypeValidation, "release rate must be between 0 and 1")
	case c.DestroyRate < 0 || c.DestroyRate > 1:
		return errors.New(errors.ErrorTypeValidation, "destroy rate must be between 0 and 1")
	case c.SessionTicks < 0:
		return errors.New(errors.ErrorTypeValidation, "session ticks cannot be negative")
	case len(c.Templates) == 0:
		return errors.New(errors.ErrorTypeValidation, "at least one template is required")
	}
	return nil
}

// TickObserver receives the duration of each tick.
type TickObserver interface {
	ObserveTick(d time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTickObserver reports tick durations to o.
func WithTickObserver(o TickObserver) Option {
	return func(r *Runner) { r.ticks = o }
}

// WithResourceMonitor samples process resources into the report.
func WithResourceMonitor(m *ResourceMonitor) Option {
	return func(r *Runner) { r.monitor = m }
}

// Runner executes a workload against a pool. Like the pool it drives, it
// is not safe for concurrent use.
type Runner struct {
	pool    *pool.Pool
	cfg     Config
	rng     *rand.Rand
	logger  *zap.Logger
	ticks   TickObserver
	monitor *ResourceMonitor

	live   []pool.InstanceID
	report Report
}

// Report summarizes a run.
type Report struct {
	Seed             int64          `json:"seed"`
	Ticks            int            `json:"ticks"`
	Sessions         int            `json:"sessions"`
	Acquired         int            `json:"acquired"`
	Released         int            `json:"released"`
	ExternalDestroys int            `json:"external_destroys"`
	LoadFailures     int            `json:"load_failures"`
	PeakLive         int            `json:"peak_live"`
	Live             int            `json:"live"`
	Idle             int            `json:"idle"`
	Registered       int            `json:"registered"`
	IdleByTemplate   map[string]int `json:"idle_by_template"`
	Stats            pool.Stats     `json:"stats"`
	HitRate          float64        `json:"hit_rate"`
	Duration         time.Duration  `json:"duration_ns"`
	SlowestTick      time.Duration  `json:"slowest_tick_ns"`
	Resources        *ResourceUsage `json:"resources,omitempty"`
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	return json.Write(w, r)
}

// New creates a Runner for p.
func New(p *pool.Pool, cfg Config, opts ...Option) (*Runner, error) {
	if p == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "pool is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		pool:   p,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // deterministic workload, not security sensitive
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes the configured ticks. It stops early when ctx is done or when
// the pool fails verification, returning the report accumulated so far along
// with the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	r.report = Report{Seed: r.cfg.Seed}

	r.beginSession()
	var runErr error
	for tick := 0; tick < r.cfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if r.cfg.SessionTicks > 0 && tick > 0 && tick%r.cfg.SessionTicks == 0 {
			r.endSession()
			r.beginSession()
		}

		timer := metrics.NewTimer()
		r.step()
		elapsed := timer.Stop()
		if r.ticks != nil {
			r.ticks.ObserveTick(elapsed)
		}
		if elapsed > r.report.SlowestTick {
			r.report.SlowestTick = elapsed
		}
		r.report.Ticks++

		if err := r.pool.Verify(); err != nil {
			runErr = errors.Wrap(err, errors.ErrorTypeInvariant, "pool verification failed").
				WithDetail("tick", tick)
			r.logger.Error("pool verification failed", zap.Int("tick", tick), zap.Error(err))
			break
		}
	}
	r.pool.EndSession()

	r.finish(time.Since(start))
	r.logger.Info("simulation finished",
		zap.Int("ticks", r.report.Ticks),
		zap.Int("acquired", r.report.Acquired),
		zap.Float64("hit_rate", r.report.HitRate),
		zap.Int("peak_live", r.report.PeakLive))
	report := r.report
	return &report, runErr
}

func (r *Runner) beginSession() {
	r.pool.BeginSession()
	r.report.Sessions++
	for _, w := range r.cfg.Warmup {
		if err := r.pool.Prepare(w.Template, w.Count); err != nil {
			r.report.LoadFailures++
			r.logger.Warn("warm-up failed", zap.String("template", w.Template), zap.Error(err))
		}
	}
}

// endSession tears down every instance. Template keys whose idle stacks empty
// in the process are dropped; the next beginSession warms them up again.
func (r *Runner) endSession() {
	r.pool.EndSession()
	r.pool.ClearAll(false)
	r.live = r.live[:0]
	r.logger.Debug("session ended", zap.Int("session", r.report.Sessions))
}

func (r *Runner) step() {
	spawns := 0
	if r.cfg.SpawnPerTick > 0 {
		spawns = r.rng.Intn(r.cfg.SpawnPerTick + 1)
	}
	for i := 0; i < spawns; i++ {
		template := r.cfg.Templates[r.rng.Intn(len(r.cfg.Templates))]
		position := pool.Vector3{
			X: r.rng.Float64()*200 - 100,
			Y: 0,
			Z: r.rng.Float64()*200 - 100,
		}
		in, err := r.pool.Acquire(template, position, pool.Identity())
		if err != nil {
			r.report.LoadFailures++
			continue
		}
		r.report.Acquired++
		r.live = append(r.live, in.ID())
	}
	if len(r.live) > r.report.PeakLive {
		r.report.PeakLive = len(r.live)
	}

	kept := r.live[:0]
	for _, id := range r.live {
		if r.rng.Float64() < r.cfg.ReleaseRate {
			r.pool.Release(id)
			r.report.Released++
			continue
		}
		kept = append(kept, id)
	}
	r.live = kept

	if len(r.live) > 0 && r.rng.Float64() < r.cfg.DestroyRate {
		i := r.rng.Intn(len(r.live))
		r.pool.DestroyByID(r.live[i])
		r.live = append(r.live[:i], r.live[i+1:]...)
		r.report.ExternalDestroys++
	}
}

func (r *Runner) finish(elapsed time.Duration) {
	r.report.Live = len(r.live)
	r.report.Idle = r.pool.IdleLen()
	r.report.Registered = r.pool.Len()
	r.report.IdleByTemplate = make(map[string]int)
	for _, t := range r.pool.Templates() {
		r.report.IdleByTemplate[t] = r.pool.IdleCount(t)
	}
	r.report.Stats = r.pool.Stats()
	r.report.HitRate = r.report.Stats.HitRate()
	r.report.Duration = elapsed
	if r.monitor != nil {
		usage := r.monitor.Sample()
		r.report.Resources = &usage
	}
}
