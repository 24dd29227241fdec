// Package pool recycles expensive scene instances instead of recreating them.
//
// A Pool hands out instances of a template (a logical blueprint such as a
// content path) and takes them back when the caller is done. Released
// instances are deactivated, stripped of transient per-use state and parked
// on a per-template stack; the next acquisition of that template reuses the
// most recently parked one. Only when a template's stack is empty does the
// pool ask its Loader for a fresh instance.
//
// # Indexes
//
// Every instance is tracked twice:
//   - by InstanceID, in a registry holding everything the pool has produced
//     whether in use or idle, and
//   - by template key, in a LIFO stack holding only idle instances.
//
// Each operation updates both indexes before returning. Verify checks that
// they agree.
//
// # Lifecycle
//
//	Created -> Idle <-> Active -> Destroyed
//
// Prepare warms a template by creating idle instances ahead of demand.
// Release, ReleasePrepared and DestroyByID tolerate unknown ids and repeated
// calls, since the scene may destroy instances outside the pool's control.
//
// # Example
//
//	p, err := pool.New(loader, pool.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := p.Prepare("fx/explosion", 10); err != nil {
//	    return err
//	}
//	fx, err := p.Acquire("fx/explosion", pool.Vector3{X: 4}, pool.Identity())
//	if err != nil {
//	    return err
//	}
//	defer p.Release(fx.ID())
//
// # Thread Safety
//
// A Pool has a single owner and performs no locking. Call it from one
// goroutine, typically the update loop, or serialize access externally.
// Stats is the only method safe for concurrent use.
package pool
