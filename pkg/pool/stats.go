package pool

import (
	"sync/atomic"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

// Stats is a point-in-time view of a pool's lifetime counters.
type Stats struct {
	// Created counts instances materialized by the loader.
	Created int64 `json:"created"`
	// Hits counts acquisitions served from an idle stack.
	Hits int64 `json:"hits"`
	// Misses counts acquisitions that had to load a fresh instance.
	Misses int64 `json:"misses"`
	// Releases counts instances parked after use or adoption.
	Releases int64 `json:"releases"`
	// Prepared counts instances created by warm-up.
	Prepared int64 `json:"prepared"`
	// Destroyed counts torn-down instances.
	Destroyed int64 `json:"destroyed"`
	// LoadErrors counts loader failures.
	LoadErrors int64 `json:"load_errors"`
}

// HitRate returns the fraction of acquisitions served from an idle stack.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns the pool's counters. It is safe to call from any goroutine.
func (p *Pool) Stats() Stats {
	return Stats{
		Created:    atomic.LoadInt64(&p.stats.created),
		Hits:       atomic.LoadInt64(&p.stats.hits),
		Misses:     atomic.LoadInt64(&p.stats.misses),
		Releases:   atomic.LoadInt64(&p.stats.releases),
		Prepared:   atomic.LoadInt64(&p.stats.prepared),
		Destroyed:  atomic.LoadInt64(&p.stats.destroyed),
		LoadErrors: atomic.LoadInt64(&p.stats.loadErrors),
	}
}

// Verify checks that the two indexes agree: every idle entry is registered,
// not in use and filed under its own template, appears only once, and every
// in-use instance is absent from all idle stacks.
func (p *Pool) Verify() error {
	seen := make(map[InstanceID]struct{}, p.available.len())
	total := 0
	for template, stack := range p.available.stacks {
		for _, in := range stack {
			total++
			if in.template != template {
				return invariantError("idle instance filed under the wrong template", in).
					WithDetail("stack", template)
			}
			if in.inUse {
				return invariantError("idle stack holds an in-use instance", in)
			}
			if in.state != StateIdle {
				return invariantError("idle stack holds an instance that is not idle", in).
					WithDetail("state", in.state.String())
			}
			if reg, ok := p.registry.get(in.id); !ok || reg != in {
				return invariantError("idle instance is not registered", in)
			}
			if _, dup := seen[in.id]; dup {
				return invariantError("instance parked twice", in)
			}
			seen[in.id] = struct{}{}
		}
	}
	if total != p.available.len() {
		return errors.Newf(errors.ErrorTypeInvariant, "idle count %d does not match tracked total %d", total, p.available.len())
	}
	for id, in := range p.registry.byID {
		_, idle := seen[id]
		if in.inUse && idle {
			return invariantError("in-use instance is parked", in)
		}
		if in.state == StateIdle && !idle {
			return invariantError("idle instance missing from its stack", in)
		}
	}
	return nil
}

func invariantError(msg string, in *Instance) *errors.Error {
	return errors.New(errors.ErrorTypeInvariant, msg).
		WithDetail("instance_id", uint64(in.id)).
		WithDetail("template", in.template)
}
