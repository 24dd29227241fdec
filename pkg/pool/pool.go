package pool

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/scenepool/pkg/errors"
)

// DefaultMaxPreloadCount bounds how many instances a single Prepare call may
// create. Templates that need more are expected to grow on demand.
const DefaultMaxPreloadCount = 50

// Pool recycles scene instances instead of recreating them. It tracks every
// instance twice: by instance id in a registry of everything it has produced,
// and by template key in a LIFO stack of idle instances ready for reuse.
//
// A Pool is owned by a single logical thread (typically the simulation or
// update loop). None of its operations block, and none are safe for
// concurrent use without external serialization. Only Stats may be read from
// other goroutines.
type Pool struct {
	loader     Loader
	registry   *registry
	available  *availability
	maxPreload int
	inSession  bool

	observer Observer
	logger   *zap.Logger
	parenter func(*Instance)
	hider    HideFunc

	stats struct {
		created    int64
		hits       int64
		misses     int64
		releases   int64
		prepared   int64
		destroyed  int64
		loadErrors int64
	}
}

// Option configures a Pool.
type Option func(*Pool)

// WithMaxPreloadCount overrides DefaultMaxPreloadCount. Non-positive values are ignored.
func WithMaxPreloadCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxPreload = n
		}
	}
}

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver sets the Observer notified of lifecycle events.
func WithObserver(o Observer) Option {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithParenter sets a hook run after an instance is created and after it is
// recycled, letting the scene layer reattach it under the right parent.
func WithParenter(fn func(*Instance)) Option {
	return func(p *Pool) {
		p.parenter = fn
	}
}

// WithHider sets the hook used by HideUntagged.
func WithHider(fn HideFunc) Option {
	return func(p *Pool) {
		p.hider = fn
	}
}

// New creates a Pool that materializes instances through loader.
func New(loader Loader, opts ...Option) (*Pool, error) {
	if loader == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool: loader is required")
	}
	p := &Pool{
		loader:     loader,
		registry:   newRegistry(),
		available:  newAvailability(),
		maxPreload: DefaultMaxPreloadCount,
		observer:   NopObserver(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Get hands out an instance of template at the origin with no rotation.
func (p *Pool) Get(template string) (*Instance, error) {
	return p.Acquire(template, Vector3{}, Identity())
}

// Acquire hands out an instance of template placed at position and rotation.
// The most recently released idle instance is reused when there is one;
// otherwise the loader creates a fresh instance. Acquire never enforces a cap.
func (p *Pool) Acquire(template string, position Vector3, rotation Quaternion) (*Instance, error) {
	if err := validTemplate(template, "acquire"); err != nil {
		return nil, err
	}
	p.available.ensure(template)

	in, hit := p.popLive(template)
	if hit {
		in.place(position, rotation)
		atomic.AddInt64(&p.stats.hits, 1)
		p.logger.Debug("reusing idle instance",
			zap.String("template", template),
			zap.Uint64("instance_id", uint64(in.id)))
	} else {
		created, err := p.create(template)
		if err != nil {
			return nil, err
		}
		in = created
		in.place(position, rotation)
		atomic.AddInt64(&p.stats.misses, 1)
	}

	in.onGet()
	p.observer.Acquired(template, hit)
	return in, nil
}

// Prepare warms template up so that at least count instances sit idle. count
// is clamped to the pool's preload limit. If the loader fails partway, the
// instances created so far stay parked and the error is returned.
func (p *Pool) Prepare(template string, count int) error {
	if count > p.maxPreload {
		p.logger.Debug("clamping preload request",
			zap.String("template", template),
			zap.Int("requested", count),
			zap.Int("max", p.maxPreload))
		count = p.maxPreload
	}
	if err := validTemplate(template, "prepare"); err != nil {
		return err
	}
	p.available.ensure(template)

	idle := p.available.count(template)
	if idle >= count {
		return nil
	}

	missing := count - idle
	for i := 0; i < missing; i++ {
		in, err := p.create(template)
		if err != nil {
			return errors.Wrap(err, errors.TypeOf(err), "prepare aborted").
				WithDetail("template", template).
				WithDetail("created", i).
				WithDetail("requested", missing)
		}
		in.onPrepare()
		p.available.push(in)
		atomic.AddInt64(&p.stats.prepared, 1)
		p.observer.Prepared(template)
	}

	p.logger.Debug("prepared instances",
		zap.String("template", template),
		zap.Int("created", missing),
		zap.Int("idle", p.available.count(template)))
	return nil
}

// Release parks an in-use instance on its template's idle stack. Unknown ids
// and instances that are not in use are ignored, so releasing twice is safe.
// An instance whose resource was destroyed outside the pool is unregistered
// instead of parked.
func (p *Pool) Release(id InstanceID) {
	in, ok := p.registry.get(id)
	if !ok {
		p.logger.Debug("ignored release", zap.Error(unknownInstance(id, "release")))
		return
	}
	if !in.inUse {
		return
	}
	if !alive(in.raw) {
		p.discard(in, false)
		return
	}
	p.recycle(in)
}

// ReleaseInstance is Release by handle. A nil instance is ignored.
func (p *Pool) ReleaseInstance(in *Instance) {
	if in == nil {
		return
	}
	p.Release(in.id)
}

// ReleasePrepared parks an instance that may never have been handed out, such
// as one wrapped by Adopt. Instances that are already idle, destroyed or
// unknown are ignored.
func (p *Pool) ReleasePrepared(id InstanceID) {
	in, ok := p.registry.get(id)
	if !ok {
		p.logger.Debug("ignored release", zap.Error(unknownInstance(id, "release_prepared")))
		return
	}
	switch in.state {
	case StateCreated, StateActive:
		if !alive(in.raw) {
			p.discard(in, false)
			return
		}
		p.recycle(in)
	}
}

// Adopt wraps a resource materialized outside the pool so it can be recycled
// and destroyed like any other. The instance starts in StateCreated, neither
// in use nor idle; park it with ReleasePrepared or hand it out by releasing
// it first.
func (p *Pool) Adopt(template string, raw RawInstance) (*Instance, error) {
	if err := validTemplate(template, "adopt"); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "adopt: raw instance is nil").
			WithDetail("template", template)
	}
	in, err := p.wrap(template, raw)
	if err != nil {
		return nil, err
	}
	p.observer.Adopted(template)
	return in, nil
}

// DestroyByID removes an instance from both indexes and tears down its
// resource. Unknown ids are ignored, which makes the call idempotent.
func (p *Pool) DestroyByID(id InstanceID) {
	in, ok := p.registry.remove(id)
	if !ok {
		p.logger.Debug("ignored destroy", zap.Error(unknownInstance(id, "destroy")))
		return
	}
	wasIdle := p.available.remove(in.template, id)
	in.inUse = false
	in.state = StateDestroyed
	if in.raw != nil {
		in.raw.Teardown()
	}
	atomic.AddInt64(&p.stats.destroyed, 1)
	p.observer.Destroyed(in.template, wasIdle)
	p.logger.Debug("destroyed instance",
		zap.String("template", in.template),
		zap.Uint64("instance_id", uint64(id)),
		zap.Bool("was_idle", wasIdle))
}

// DestroyTemplate destroys every idle instance of template. Instances of the
// template that are currently in use are left alone.
func (p *Pool) DestroyTemplate(template string) {
	if !p.available.has(template) {
		return
	}
	stack := p.available.snapshot(template)
	for i := len(stack) - 1; i >= 0; i-- {
		p.DestroyByID(stack[i].id)
	}
}

// ClearAll destroys every instance the pool has produced, in use or idle.
// With dropAll the index structures are also reset, discarding warmed
// template keys that no longer hold any instance.
func (p *Pool) ClearAll(dropAll bool) {
	ids := p.registry.ids()
	for _, id := range ids {
		p.DestroyByID(id)
	}
	if dropAll {
		p.available.reset()
		p.registry.reset()
	}
	p.logger.Debug("cleared pool",
		zap.Int("destroyed", len(ids)),
		zap.Bool("drop_all", dropAll))
}

// Reset ends the current session and clears the pool completely.
func (p *Pool) Reset() {
	p.inSession = false
	p.ClearAll(true)
}

// BeginSession marks the start of a play session whose instances are
// expected to be cleared together with Reset.
func (p *Pool) BeginSession() { p.inSession = true }

// EndSession clears the session mark without touching any instance.
func (p *Pool) EndSession() { p.inSession = false }

// InSession reports whether a session is marked.
func (p *Pool) InSession() bool { return p.inSession }

// HideUntagged asks the configured HideFunc to hide every node of the
// instance's subtree that does not carry tag.
func (p *Pool) HideUntagged(id InstanceID, tag string) {
	if p.hider == nil {
		return
	}
	in, ok := p.registry.get(id)
	if !ok || in.raw == nil {
		return
	}
	p.hider(in.raw, tag)
}

// Lookup returns the instance registered under id.
func (p *Pool) Lookup(id InstanceID) (*Instance, bool) {
	return p.registry.get(id)
}

// HasTemplate reports whether template has an idle stack, even an empty one.
func (p *Pool) HasTemplate(template string) bool {
	return p.available.has(template)
}

// IdleCount returns the number of idle instances of template.
func (p *Pool) IdleCount(template string) int {
	return p.available.count(template)
}

// Templates returns the keys that currently have an idle stack, sorted.
func (p *Pool) Templates() []string {
	return p.available.keys()
}

// Len returns the number of registered instances.
func (p *Pool) Len() int {
	return p.registry.len()
}

// IdleLen returns the number of idle instances across all templates.
func (p *Pool) IdleLen() int {
	return p.available.len()
}

// MaxPreloadCount returns the per-call preload limit.
func (p *Pool) MaxPreloadCount() int {
	return p.maxPreload
}

func (p *Pool) create(template string) (*Instance, error) {
	raw, err := p.loader.Load(template)
	if err == nil && raw == nil {
		err = errors.New(errors.ErrorTypeLoad, "loader returned no instance")
	}
	if err != nil {
		atomic.AddInt64(&p.stats.loadErrors, 1)
		p.observer.LoadFailed(template, err)
		p.logger.Warn("failed to load template",
			zap.String("template", template),
			zap.Error(err))
		if errors.IsType(err, errors.ErrorTypeLoad) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrorTypeLoad, "failed to load template").
			WithDetail("template", template)
	}

	in, err := p.wrap(template, raw)
	if err != nil {
		p.logger.Error("loader reused a registered instance id",
			zap.String("template", template),
			zap.Uint64("instance_id", uint64(raw.ID())))
		return nil, err
	}
	atomic.AddInt64(&p.stats.created, 1)
	p.observer.Created(template)
	return in, nil
}

func (p *Pool) wrap(template string, raw RawInstance) (*Instance, error) {
	in := &Instance{}
	in.initialize(template, raw)
	if !p.registry.add(in) {
		return nil, errors.New(errors.ErrorTypeDuplicateInstance, "instance id already registered").
			WithDetail("template", template).
			WithDetail("instance_id", uint64(in.id))
	}
	in.onCreate()
	if p.parenter != nil {
		p.parenter(in)
	}
	return in, nil
}

// popLive pops the template's most recently parked instance that is still
// alive, dropping dead entries on the way.
func (p *Pool) popLive(template string) (*Instance, bool) {
	for {
		in, ok := p.available.pop(template)
		if !ok {
			return nil, false
		}
		if alive(in.raw) {
			return in, true
		}
		p.discard(in, true)
	}
}

// discard unregisters an instance whose resource is already gone. It must no
// longer be on an idle stack. Teardown is not called again.
func (p *Pool) discard(in *Instance, wasIdle bool) {
	p.registry.remove(in.id)
	in.inUse = false
	in.state = StateDestroyed
	atomic.AddInt64(&p.stats.destroyed, 1)
	p.observer.Destroyed(in.template, wasIdle)
	p.logger.Debug("dropped instance destroyed outside the pool",
		zap.String("template", in.template),
		zap.Uint64("instance_id", uint64(in.id)),
		zap.Bool("was_idle", wasIdle))
}

func (p *Pool) recycle(in *Instance) {
	in.onRecycle()
	if p.parenter != nil {
		p.parenter(in)
	}
	p.available.push(in)
	atomic.AddInt64(&p.stats.releases, 1)
	p.observer.Released(in.template)
}

func unknownInstance(id InstanceID, op string) error {
	return errors.New(errors.ErrorTypeUnknownInstance, "instance is not registered").
		WithDetail("instance_id", uint64(id)).
		WithDetail("operation", op)
}

func validTemplate(template, op string) error {
	if strings.TrimSpace(template) == "" {
		return errors.New(errors.ErrorTypeInvalidKey, "template key is empty").
			WithDetail("operation", op)
	}
	return nil
}
