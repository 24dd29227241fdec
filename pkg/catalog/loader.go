package catalog

import (
	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/pool"
	"github.com/ajitpratap0/scenepool/pkg/scene"
)

// Loader materializes catalog templates as scene entity trees.
type Loader struct {
	catalog   *Catalog
	scene     *scene.Scene
	templates map[string]*Template
}

var _ pool.Loader = (*Loader)(nil)

// NewLoader indexes c and creates entities in s.
func NewLoader(c *Catalog, s *scene.Scene) *Loader {
	l := &Loader{
		catalog:   c,
		scene:     s,
		templates: make(map[string]*Template, len(c.Templates)),
	}
	for i := range c.Templates {
		l.templates[c.Templates[i].Name] = &c.Templates[i]
	}
	return l
}

// Catalog returns the catalog the loader serves.
func (l *Loader) Catalog() *Catalog { return l.catalog }

// Load builds a fresh entity tree for template. The root is returned active,
// the way an engine instantiates a prefab. Unknown templates fail with a
// load error.
func (l *Loader) Load(template string) (pool.RawInstance, error) {
	t, ok := l.templates[template]
	if !ok {
		return nil, errors.New(errors.ErrorTypeLoad, "unknown template").
			WithDetail("template", template)
	}
	return l.build(t.Root()), nil
}

func (l *Loader) build(n *Node) *scene.Entity {
	e := l.scene.NewEntity(n.Name)
	e.SetTag(n.Tag)
	e.SetLayer(n.Layer)
	e.SetLocalTransform(n.Transform.Resolve())
	if !n.Inactive {
		e.Activate()
	}
	for _, name := range n.Trails {
		e.AddTrail(name)
	}
	for _, child := range n.Children {
		if child != nil {
			e.AddChild(l.build(child))
		}
	}
	return e
}
