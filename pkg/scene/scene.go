// Package scene is a minimal scene graph that backs the pool with real
// resources: entities with transforms, active flags, tags, layers and trail
// effects. It stands in for an engine's object tree.
package scene

import "github.com/ajitpratap0/scenepool/pkg/pool"

// Scene owns entity identity and the top-level grouping of pooled entities.
// Pooled entities are parented under one group per tag so that recycled
// instances land back in a predictable place in the tree.
type Scene struct {
	nextID pool.InstanceID
	root   *Entity
	groups map[string]*Entity
	live   map[pool.InstanceID]*Entity
}

// New creates an empty scene with an active root.
func New() *Scene {
	s := &Scene{
		groups: make(map[string]*Entity),
		live:   make(map[pool.InstanceID]*Entity),
	}
	s.root = s.NewEntity("root")
	s.root.Activate()
	return s
}

// NewEntity creates a detached, inactive entity with a fresh id.
func (s *Scene) NewEntity(name string) *Entity {
	s.nextID++
	e := &Entity{
		scene: s,
		id:    s.nextID,
		name:  name,
		layer: DefaultLayer,
		local: pool.Transform{Rotation: pool.Identity(), Scale: pool.Vector3{X: 1, Y: 1, Z: 1}},
	}
	s.live[e.id] = e
	return e
}

// Root returns the scene root.
func (s *Scene) Root() *Entity { return s.root }

// Lookup returns a live entity by id.
func (s *Scene) Lookup(id pool.InstanceID) (*Entity, bool) {
	e, ok := s.live[id]
	return e, ok
}

// Len returns the number of live entities, root and groups included.
func (s *Scene) Len() int { return len(s.live) }

// Group returns the container for entities tagged tag, creating it under the
// root on first use or after it was torn down. Untagged entities go directly
// under the root.
func (s *Scene) Group(tag string) *Entity {
	if tag == "" {
		return s.root
	}
	g, ok := s.groups[tag]
	if !ok || g.destroyed {
		g = s.NewEntity("group:" + tag)
		g.Activate()
		s.root.AddChild(g)
		s.groups[tag] = g
	}
	return g
}

// Attach parents a pooled instance's entity under the group for its tag. It
// matches the hook taken by pool.WithParenter.
func (s *Scene) Attach(in *pool.Instance) {
	if in == nil {
		return
	}
	e, ok := in.Raw().(*Entity)
	if !ok || e.destroyed {
		return
	}
	g := s.Group(e.tag)
	if e.parent == g {
		return
	}
	g.AddChild(e)
}

func (s *Scene) forget(id pool.InstanceID) {
	delete(s.live, id)
}
