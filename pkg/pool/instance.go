package pool

// Instance is the pool's record for one materialized resource. It caches the
// handles the pool needs on every recycle so they are looked up only once.
//
// Instances are owned by the Pool that produced them. Callers may read them
// but change their state only through Pool operations.
type Instance struct {
	id          InstanceID
	template    string
	inUse       bool
	initialized bool
	state       State
	defaults    Transform
	effects     []TransientEffect
	raw         RawInstance
}

// initialize binds the record to a freshly materialized resource and captures
// its baseline transform and transient effects.
func (in *Instance) initialize(template string, raw RawInstance) {
	in.id = raw.ID()
	in.template = template
	in.raw = raw
	in.defaults = raw.LocalTransform()
	in.inUse = false
	in.state = StateCreated

	if src, ok := raw.(EffectSource); ok {
		in.effects = src.TransientEffects()
	}
	in.initialized = true
}

// onCreate runs once, right after initialize.
func (in *Instance) onCreate() {}

// onGet runs every time the instance is handed out.
func (in *Instance) onGet() {
	if in.raw != nil && !in.raw.Active() {
		in.raw.Activate()
	}
	in.inUse = true
	in.state = StateActive
}

// onRecycle runs every time the instance goes back to the idle stack.
func (in *Instance) onRecycle() {
	if in.raw != nil && in.raw.Active() {
		in.raw.Deactivate()
	}
	for _, fx := range in.effects {
		fx.ClearTransientEffects()
	}
	in.inUse = false
	in.state = StateIdle
}

// onPrepare parks a warm-up instance. Unlike onRecycle it does not assume the
// instance was ever handed out.
func (in *Instance) onPrepare() {
	if in.raw != nil {
		in.raw.Deactivate()
	}
	in.inUse = false
	in.state = StateIdle
}

func (in *Instance) place(position Vector3, rotation Quaternion) {
	if in.raw != nil {
		in.raw.SetLocalPlacement(position, rotation)
	}
}

// ID returns the backend-assigned identity.
func (in *Instance) ID() InstanceID { return in.id }

// Template returns the template key the instance was created from.
func (in *Instance) Template() string { return in.template }

// InUse reports whether the instance is currently handed out.
func (in *Instance) InUse() bool { return in.inUse }

// Initialized reports whether the instance has been bound to a resource.
func (in *Instance) Initialized() bool { return in.initialized }

// State returns the lifecycle state.
func (in *Instance) State() State { return in.state }

// Defaults returns the transform captured when the instance was created.
func (in *Instance) Defaults() Transform { return in.defaults }

// Raw returns the underlying resource.
func (in *Instance) Raw() RawInstance { return in.raw }

// Effects returns a copy of the cached transient effects.
func (in *Instance) Effects() []TransientEffect {
	if len(in.effects) == 0 {
		return nil
	}
	out := make([]TransientEffect, len(in.effects))
	copy(out, in.effects)
	return out
}
