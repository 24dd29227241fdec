package scene

import "github.com/ajitpratap0/scenepool/pkg/pool"

// Layers used by the renderer. Entities on HiddenLayer are not drawn.
const (
	DefaultLayer = 0
	HiddenLayer  = 31
)

// Entity is a node of the scene tree. It is the resource behind a pooled
// instance: the pool activates, places and tears it down through the
// pool.RawInstance methods.
type Entity struct {
	scene     *Scene
	id        pool.InstanceID
	name      string
	tag       string
	layer     int
	active    bool
	destroyed bool
	local     pool.Transform
	parent    *Entity
	children  []*Entity
	trails    []*Trail
}

var (
	_ pool.RawInstance  = (*Entity)(nil)
	_ pool.EffectSource = (*Entity)(nil)
	_ pool.Liveness     = (*Entity)(nil)
)

func (e *Entity) ID() pool.InstanceID { return e.id }

// Name returns the entity's display name.
func (e *Entity) Name() string { return e.name }

// Tag returns the entity's tag, empty when untagged.
func (e *Entity) Tag() string { return e.tag }

// SetTag changes the entity's tag.
func (e *Entity) SetTag(tag string) { e.tag = tag }

// Layer returns the render layer.
func (e *Entity) Layer() int { return e.layer }

// SetLayer changes the render layer of this entity only.
func (e *Entity) SetLayer(layer int) { e.layer = layer }

// Parent returns the entity's parent, nil for roots and detached entities.
func (e *Entity) Parent() *Entity { return e.parent }

// Children returns a copy of the direct children.
func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

// Trails returns the trail effects attached directly to this entity.
func (e *Entity) Trails() []*Trail {
	out := make([]*Trail, len(e.trails))
	copy(out, e.trails)
	return out
}

func (e *Entity) LocalTransform() pool.Transform { return e.local }

// SetLocalTransform replaces the whole local transform, scale included.
func (e *Entity) SetLocalTransform(t pool.Transform) { e.local = t }

func (e *Entity) SetLocalPlacement(position pool.Vector3, rotation pool.Quaternion) {
	e.local.Position = position
	e.local.Rotation = rotation
}

// Active reports the entity's own active flag, regardless of its ancestors.
func (e *Entity) Active() bool { return e.active }

// ActiveInHierarchy reports whether the entity and all its ancestors are active.
func (e *Entity) ActiveInHierarchy() bool {
	for n := e; n != nil; n = n.parent {
		if !n.active {
			return false
		}
	}
	return true
}

func (e *Entity) Activate()   { e.active = true }
func (e *Entity) Deactivate() { e.active = false }

// Destroyed reports whether Teardown has run.
func (e *Entity) Destroyed() bool { return e.destroyed }

// AddChild reparents child under e.
func (e *Entity) AddChild(child *Entity) {
	if child == nil || child == e {
		return
	}
	child.detach()
	child.parent = e
	e.children = append(e.children, child)
}

// AddTrail attaches a new trail effect to e and returns it.
func (e *Entity) AddTrail(name string) *Trail {
	t := &Trail{name: name}
	e.trails = append(e.trails, t)
	return t
}

// TransientEffects returns every trail in the entity's subtree, depth first.
func (e *Entity) TransientEffects() []pool.TransientEffect {
	var out []pool.TransientEffect
	e.walk(func(n *Entity) {
		for _, t := range n.trails {
			out = append(out, t)
		}
	})
	return out
}

// Teardown detaches the entity and destroys its whole subtree. Calling it
// again is a no-op.
func (e *Entity) Teardown() {
	if e.destroyed {
		return
	}
	e.detach()
	e.walk(func(n *Entity) {
		n.destroyed = true
		n.active = false
		if n.scene != nil {
			n.scene.forget(n.id)
		}
	})
}

// Find returns the first entity in the subtree, e included, whose name matches.
func (e *Entity) Find(name string) (*Entity, bool) {
	var found *Entity
	e.walk(func(n *Entity) {
		if found == nil && n.name == name {
			found = n
		}
	})
	return found, found != nil
}

func (e *Entity) detach() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

func (e *Entity) walk(fn func(*Entity)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

// SetLayerRecursively moves every node of e's subtree whose tag differs from
// keepTag onto layer. Tagged nodes keep their layer but their children are
// still visited.
func SetLayerRecursively(e *Entity, layer int, keepTag string) {
	if e == nil {
		return
	}
	e.walk(func(n *Entity) {
		if n.tag != keepTag {
			n.layer = layer
		}
	})
}

// HideUntagged moves everything under raw that does not carry tag onto
// HiddenLayer. It matches pool.HideFunc and ignores resources that are not
// entities.
func HideUntagged(raw pool.RawInstance, tag string) {
	e, ok := raw.(*Entity)
	if !ok {
		return
	}
	SetLayerRecursively(e, HiddenLayer, tag)
}

var _ pool.HideFunc = HideUntagged
