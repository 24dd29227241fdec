package scene

import "github.com/ajitpratap0/scenepool/pkg/pool"

// Trail is a motion trail: a buffer of points left behind by a moving
// entity. A recycled entity must not drag its previous life's trail into its
// new position, so the pool clears trails on release.
type Trail struct {
	name   string
	points []pool.Vector3
}

var _ pool.TransientEffect = (*Trail)(nil)

// Name returns the trail's name.
func (t *Trail) Name() string { return t.name }

// AddPoint appends a sample to the trail.
func (t *Trail) AddPoint(p pool.Vector3) {
	t.points = append(t.points, p)
}

// Points returns a copy of the buffered samples, oldest first.
func (t *Trail) Points() []pool.Vector3 {
	out := make([]pool.Vector3, len(t.points))
	copy(out, t.points)
	return out
}

// Len returns the number of buffered samples.
func (t *Trail) Len() int { return len(t.points) }

// ClearTransientEffects drops every buffered sample, keeping capacity.
func (t *Trail) ClearTransientEffects() {
	t.points = t.points[:0]
}
