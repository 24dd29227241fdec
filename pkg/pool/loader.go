package pool

// InstanceID uniquely identifies one materialized instance. It is assigned by
// the backend when the instance is created and never changes.
type InstanceID uint64

// Vector3 is a position or scale in local space.
type Vector3 struct {
	X, Y, Z float64
}

// Quaternion is a local orientation.
type Quaternion struct {
	X, Y, Z, W float64
}

// Identity returns the identity rotation.
func Identity() Quaternion {
	return Quaternion{W: 1}
}

// Transform is the local spatial state of an instance.
type Transform struct {
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
}

// RawInstance is a resource materialized by a Loader. All methods are
// synchronous side effects the pool assumes always succeed.
type RawInstance interface {
	// ID returns the backend-assigned identity of the instance.
	ID() InstanceID
	// LocalTransform returns the current local transform.
	LocalTransform() Transform
	// SetLocalPlacement moves the instance to the given local position and orientation.
	SetLocalPlacement(position Vector3, rotation Quaternion)
	// Active reports whether the instance is currently enabled in the scene.
	Active() bool
	// Activate enables the instance.
	Activate()
	// Deactivate disables the instance without releasing it.
	Deactivate()
	// Teardown irreversibly releases the underlying resource.
	Teardown()
}

// TransientEffect is a dependent sub-resource carrying per-use state, such as
// a trail buffer, that must not leak into the next acquisition.
type TransientEffect interface {
	ClearTransientEffects()
}

// EffectSource is implemented by raw instances that own transient effects.
// The effects are cached once when the instance is wrapped.
type EffectSource interface {
	TransientEffects() []TransientEffect
}

// Liveness is implemented by raw instances that the scene can destroy behind
// the pool's back. A destroyed instance is dropped instead of being parked
// or handed out again.
type Liveness interface {
	Destroyed() bool
}

// alive reports whether raw is still usable. Instances without Liveness are
// assumed alive.
func alive(raw RawInstance) bool {
	l, ok := raw.(Liveness)
	return !ok || !l.Destroyed()
}

// Loader materializes a fresh instance of a template. The pool never retries
// a failed load.
type Loader interface {
	Load(template string) (RawInstance, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(template string) (RawInstance, error)

// Load calls f(template).
func (f LoaderFunc) Load(template string) (RawInstance, error) {
	return f(template)
}

// HideFunc moves every node of a raw instance's subtree that does not carry
// tag onto a hidden layer. The scene package supplies the tree walk.
type HideFunc func(raw RawInstance, tag string)
