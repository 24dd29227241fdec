package simulation

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/scenepool/pkg/catalog"
	"github.com/ajitpratap0/scenepool/pkg/config"
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/json"
	"github.com/ajitpratap0/scenepool/pkg/pool"
	"github.com/ajitpratap0/scenepool/pkg/scene"
	"github.com/ajitpratap0/scenepool/pkg/testutil"
)

func newScenePool(t *testing.T) (*pool.Pool, *scene.Scene) {
	t.Helper()
	s := scene.New()
	p, err := pool.New(catalog.NewLoader(catalog.Sample(), s),
		pool.WithLogger(testutil.TestLogger(t)),
		pool.WithParenter(s.Attach),
		pool.WithHider(scene.HideUntagged))
	require.NoError(t, err)
	return p, s
}

type tickCounter struct{ n int }

func (c *tickCounter) ObserveTick(time.Duration) { c.n++ }

func TestRunKeepsIndexesConsistent(t *testing.T) {
	p, s := newScenePool(t)
	cfg := DefaultConfig("fx/spark", "enemy/grunt", "enemy/boss")
	cfg.Ticks = 200
	cfg.Warmup = []config.WarmupEntry{{Template: "fx/spark", Count: 10}}
	ticks := &tickCounter{}

	r, err := New(p, cfg, WithLogger(testutil.TestLogger(t)), WithTickObserver(ticks))
	require.NoError(t, err)

	report, err := r.Run(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, 200, report.Ticks)
	assert.Equal(t, 200, ticks.n)
	assert.LessOrEqual(t, report.SlowestTick, report.Duration)
	assert.Equal(t, 1, report.Sessions)
	assert.Positive(t, report.Acquired)
	assert.Equal(t, report.Live+report.Idle, report.Registered)
	assert.Equal(t, int64(report.Acquired), report.Stats.Hits+report.Stats.Misses)
	assert.Equal(t, int64(report.ExternalDestroys), report.Stats.Destroyed)
	assert.Positive(t, report.Stats.Hits)
	assert.False(t, p.InSession())
	assert.NoError(t, p.Verify())

	total := 0
	for _, n := range report.IdleByTemplate {
		total += n
	}
	assert.Equal(t, report.Idle, total)

	// the scene holds root, group nodes and every registered tree
	assert.Greater(t, s.Len(), report.Registered)
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() *Report {
		p, _ := newScenePool(t)
		cfg := DefaultConfig("fx/spark", "fx/explosion", "enemy/grunt")
		cfg.Seed = 42
		r, err := New(p, cfg)
		require.NoError(t, err)
		report, err := r.Run(testutil.TestContext(t))
		require.NoError(t, err)
		report.Duration = 0
		report.SlowestTick = 0
		return report
	}

	assert.Equal(t, run(), run())
}

func TestRunSessionsClearInstances(t *testing.T) {
	p, _ := newScenePool(t)
	cfg := DefaultConfig("enemy/grunt")
	cfg.Ticks = 30
	cfg.SessionTicks = 10
	cfg.ReleaseRate = 0
	cfg.DestroyRate = 0
	cfg.Warmup = []config.WarmupEntry{{Template: "enemy/grunt", Count: 5}}

	r, err := New(p, cfg)
	require.NoError(t, err)
	report, err := r.Run(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sessions)
	assert.Equal(t, int64(15), report.Stats.Prepared)
	assert.LessOrEqual(t, report.Live, 10*cfg.SpawnPerTick)
	assert.True(t, p.HasTemplate("enemy/grunt"))
}

func TestRunCountsLoadFailures(t *testing.T) {
	p, _ := newScenePool(t)
	cfg := DefaultConfig("enemy/dragon")
	cfg.Ticks = 5
	cfg.Warmup = []config.WarmupEntry{{Template: "enemy/dragon", Count: 1}}

	r, err := New(p, cfg)
	require.NoError(t, err)
	report, err := r.Run(testutil.TestContext(t))
	require.NoError(t, err)

	assert.Zero(t, report.Acquired)
	assert.Equal(t, report.Stats.LoadErrors, int64(report.LoadFailures))
	assert.Positive(t, report.LoadFailures)
	assert.Zero(t, p.Len())
}

func TestRunStopsOnCancel(t *testing.T) {
	p, _ := newScenePool(t)
	r, err := New(p, DefaultConfig("fx/spark"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(testutil.TestContext(t))
	cancel()

	report, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Ticks)
}

func TestNewValidates(t *testing.T) {
	p, _ := newScenePool(t)

	_, err := New(nil, DefaultConfig("a"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	bad := []func(*Config){
		func(c *Config) { c.Ticks = 0 },
		func(c *Config) { c.SpawnPerTick = -1 },
		func(c *Config) { c.ReleaseRate = 1.5 },
		func(c *Config) { c.DestroyRate = -0.1 },
		func(c *Config) { c.SessionTicks = -1 },
		func(c *Config) { c.Templates = nil },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig("a")
		mutate(&cfg)
		_, err := New(p, cfg)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "case %d", i)
	}
}

func TestReportJSON(t *testing.T) {
	p, _ := newScenePool(t)
	cfg := DefaultConfig("fx/spark")
	cfg.Ticks = 3
	r, err := New(p, cfg, WithResourceMonitor(NewResourceMonitor()))
	require.NoError(t, err)
	report, err := r.Run(testutil.TestContext(t))
	require.NoError(t, err)
	require.NotNil(t, report.Resources)
	assert.Positive(t, report.Resources.HeapAlloc)

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(3), decoded["ticks"])
	assert.Contains(t, decoded, "stats")
	assert.Contains(t, decoded, "resources")
}
