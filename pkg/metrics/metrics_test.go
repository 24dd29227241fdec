package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/scenepool/pkg/pool"
)

type stubRaw struct {
	id     pool.InstanceID
	active bool
}

func (s *stubRaw) ID() pool.InstanceID                             { return s.id }
func (s *stubRaw) LocalTransform() pool.Transform                  { return pool.Transform{} }
func (s *stubRaw) SetLocalPlacement(pool.Vector3, pool.Quaternion) {}
func (s *stubRaw) Active() bool                                    { return s.active }
func (s *stubRaw) Activate()                                       { s.active = true }
func (s *stubRaw) Deactivate()                                     { s.active = false }
func (s *stubRaw) Teardown()                                       {}

func newPool(t *testing.T, c *Collector) *pool.Pool {
	t.Helper()
	var next pool.InstanceID
	loader := pool.LoaderFunc(func(template string) (pool.RawInstance, error) {
		if template == "broken" {
			return nil, assert.AnError
		}
		next++
		return &stubRaw{id: next, active: true}, nil
	})
	p, err := pool.New(loader, pool.WithObserver(c))
	require.NoError(t, err)
	return p
}

func TestCollectorTracksPoolLifecycle(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), "test")
	p := newPool(t, c)

	require.NoError(t, p.Prepare("enemy", 3))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.idle.WithLabelValues("enemy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.active.WithLabelValues("enemy")))

	a, err := p.Get("enemy")
	require.NoError(t, err)
	_, err = p.Get("enemy")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.idle.WithLabelValues("enemy")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.active.WithLabelValues("enemy")))

	p.Release(a.ID())
	assert.Equal(t, 2.0, testutil.ToFloat64(c.idle.WithLabelValues("enemy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.active.WithLabelValues("enemy")))

	// one miss on top of the three warmed instances
	for i := 0; i < 3; i++ {
		_, err = p.Get("enemy")
		require.NoError(t, err)
	}
	assert.Equal(t, 4.0, testutil.ToFloat64(c.acquisitions.WithLabelValues("enemy", ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.acquisitions.WithLabelValues("enemy", ResultMiss)))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.creations.WithLabelValues("enemy")))

	p.ClearAll(true)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.idle.WithLabelValues("enemy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.active.WithLabelValues("enemy")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.destructions.WithLabelValues("enemy")))
}

func TestCollectorCountsAdoptionAndFailures(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), "test")
	p := newPool(t, c)

	in, err := p.Adopt("prop", &stubRaw{id: 500})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.active.WithLabelValues("prop")))

	p.ReleasePrepared(in.ID())
	assert.Equal(t, 0.0, testutil.ToFloat64(c.active.WithLabelValues("prop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.idle.WithLabelValues("prop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.adoptions.WithLabelValues("prop")))

	_, err = p.Get("broken")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.loadFailures.WithLabelValues("broken")))
}

func TestHandlerServesRegisteredFamilies(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry(), "scenepool")
	c.Acquired("fx", false)
	c.ObserveTick(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `scenepool_acquisitions_total{result="miss",template="fx"} 1`)
	assert.Contains(t, string(body), "scenepool_tick_duration_seconds_count 1")
}

func TestCollectorsUseSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry(), "scenepool")
		NewCollector(prometheus.NewRegistry(), "scenepool")
	})
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	first := timer.Stop()
	assert.GreaterOrEqual(t, first, time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), first)
}
