// Package catalog defines the templates a pool can materialize. A catalog is
// a YAML or JSON document, optionally compressed, listing named entity trees:
//
//	version: 1
//	templates:
//	  - name: enemy/grunt
//	    tag: enemy
//	    preload: 10
//	    trails: [dust]
//	    children:
//	      - name: weapon
//	        trails: [muzzle]
//
// A Loader turns catalog templates into scene entities for the pool.
package catalog

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/scenepool/pkg/errors"
	"github.com/ajitpratap0/scenepool/pkg/pool"
)

// CurrentVersion is the catalog schema version written by Encode.
const CurrentVersion = 1

// Catalog is a set of named templates.
type Catalog struct {
	Version   int        `yaml:"version" json:"version"`
	Templates []Template `yaml:"templates" json:"templates"`
}

// Template is a top-level entity tree addressable by its Name. It carries
// the root node's fields inline; Root returns them as a Node.
type Template struct {
	Name      string         `yaml:"name" json:"name"`
	Tag       string         `yaml:"tag,omitempty" json:"tag,omitempty"`
	Layer     int            `yaml:"layer,omitempty" json:"layer,omitempty"`
	Inactive  bool           `yaml:"inactive,omitempty" json:"inactive,omitempty"`
	Transform *TransformSpec `yaml:"transform,omitempty" json:"transform,omitempty"`
	Trails    []string       `yaml:"trails,omitempty" json:"trails,omitempty"`
	Children  []*Node        `yaml:"children,omitempty" json:"children,omitempty"`
	// Preload is the warm-up count the CLI uses when the config has none.
	Preload int `yaml:"preload,omitempty" json:"preload,omitempty"`
}

// Node describes one entity of a template tree.
type Node struct {
	Name      string         `yaml:"name" json:"name"`
	Tag       string         `yaml:"tag,omitempty" json:"tag,omitempty"`
	Layer     int            `yaml:"layer,omitempty" json:"layer,omitempty"`
	Inactive  bool           `yaml:"inactive,omitempty" json:"inactive,omitempty"`
	Transform *TransformSpec `yaml:"transform,omitempty" json:"transform,omitempty"`
	Trails    []string       `yaml:"trails,omitempty" json:"trails,omitempty"`
	Children  []*Node        `yaml:"children,omitempty" json:"children,omitempty"`
}

// Root returns the template's root node. The children are shared, not copied.
func (t *Template) Root() *Node {
	return &Node{
		Name:      t.Name,
		Tag:       t.Tag,
		Layer:     t.Layer,
		Inactive:  t.Inactive,
		Transform: t.Transform,
		Trails:    t.Trails,
		Children:  t.Children,
	}
}

// Size returns the number of entities in the template's tree.
func (t *Template) Size() int {
	return t.Root().Size()
}

// Vec3 is a serialized vector.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Quat is a serialized rotation.
type Quat struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
	W float64 `yaml:"w" json:"w"`
}

// TransformSpec is a serialized local transform. Omitted parts default to
// the origin, the identity rotation and unit scale.
type TransformSpec struct {
	Position *Vec3 `yaml:"position,omitempty" json:"position,omitempty"`
	Rotation *Quat `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Scale    *Vec3 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// Resolve returns the pool transform described by t.
func (t *TransformSpec) Resolve() pool.Transform {
	out := pool.Transform{Rotation: pool.Identity(), Scale: pool.Vector3{X: 1, Y: 1, Z: 1}}
	if t == nil {
		return out
	}
	if t.Position != nil {
		out.Position = pool.Vector3{X: t.Position.X, Y: t.Position.Y, Z: t.Position.Z}
	}
	if t.Rotation != nil {
		out.Rotation = pool.Quaternion{X: t.Rotation.X, Y: t.Rotation.Y, Z: t.Rotation.Z, W: t.Rotation.W}
	}
	if t.Scale != nil {
		out.Scale = pool.Vector3{X: t.Scale.X, Y: t.Scale.Y, Z: t.Scale.Z}
	}
	return out
}

// Validate checks the schema version and that template names are present
// and unique.
func (c *Catalog) Validate() error {
	if c.Version > CurrentVersion {
		return errors.New(errors.ErrorTypeConfig, "unsupported catalog version").
			WithDetail("version", c.Version)
	}
	seen := make(map[string]struct{}, len(c.Templates))
	for i, t := range c.Templates {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return errors.New(errors.ErrorTypeConfig, "template name is required").
				WithDetail("index", i)
		}
		if _, dup := seen[name]; dup {
			return errors.New(errors.ErrorTypeConfig, "duplicate template name").
				WithDetail("template", name)
		}
		if t.Preload < 0 {
			return errors.New(errors.ErrorTypeConfig, "template preload cannot be negative").
				WithDetail("template", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Lookup returns the template called name.
func (c *Catalog) Lookup(name string) (*Template, bool) {
	for i := range c.Templates {
		if c.Templates[i].Name == name {
			return &c.Templates[i], true
		}
	}
	return nil, false
}

// Names returns the template names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Templates))
	for _, t := range c.Templates {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of entities in the template's tree.
func (n *Node) Size() int {
	size := 1
	for _, child := range n.Children {
		if child != nil {
			size += child.Size()
		}
	}
	return size
}

// Sample returns the catalog written by "scenepool catalog init": a handful
// of effects and enemies exercising children, tags and trails.
func Sample() *Catalog {
	return &Catalog{
		Version: CurrentVersion,
		Templates: []Template{
			{
				Name:    "fx/spark",
				Tag:     "fx",
				Trails:  []string{"sparkle"},
				Preload: 20,
			},
			{
				Name:   "fx/explosion",
				Tag:    "fx",
				Trails: []string{"smoke"},
				Children: []*Node{
					{Name: "debris", Trails: []string{"ember"}},
					{Name: "flash"},
				},
				Preload: 5,
			},
			{
				Name: "enemy/grunt",
				Tag:  "enemy",
				Transform: &TransformSpec{
					Scale: &Vec3{X: 1, Y: 1.5, Z: 1},
				},
				Children: []*Node{
					{Name: "body", Tag: "enemy"},
					{Name: "weapon", Trails: []string{"muzzle"}},
					{Name: "shadow"},
				},
				Preload: 10,
			},
			{
				Name: "enemy/boss",
				Tag:  "enemy",
				Children: []*Node{
					{Name: "body", Tag: "enemy", Children: []*Node{
						{Name: "armor", Tag: "enemy"},
					}},
					{Name: "aura", Trails: []string{"glow"}},
				},
			},
		},
	}
}
