package models

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// Geometry
// ============================================================

type GeomType string

const (
	GeomSphere   GeomType = "sphere"
	GeomBox      GeomType = "box"
	GeomCapsule  GeomType = "capsule"
	GeomCylinder GeomType = "cylinder"
)

// GeomTypes lists the supported primitive kinds in palette order.
var GeomTypes = []GeomType{GeomSphere, GeomBox, GeomCapsule, GeomCylinder}

// ParseGeomType reports whether s names a supported primitive.
func ParseGeomType(s string) (GeomType, bool) {
	switch t := GeomType(s); t {
	case GeomSphere, GeomBox, GeomCapsule, GeomCylinder:
		return t, true
	}
	return "", false
}

// Arity is the length of the flat size list for the type.
func (t GeomType) Arity() int {
	switch t {
	case GeomSphere:
		return 1
	case GeomBox:
		return 3
	case GeomCapsule, GeomCylinder:
		return 2
	}
	return 0
}

// Shape is the per-type dimension set of a geom. The flat size list only
// exists at the XML/JSON boundary.
type Shape interface {
	Kind() GeomType
	Size() []float64
	isShape()
}

type Sphere struct {
	Radius float64
}

type Box struct {
	HalfX float64
	HalfY float64
	HalfZ float64
}

type Capsule struct {
	Radius     float64
	HalfHeight float64
}

type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func (Sphere) Kind() GeomType   { return GeomSphere }
func (Box) Kind() GeomType      { return GeomBox }
func (Capsule) Kind() GeomType  { return GeomCapsule }
func (Cylinder) Kind() GeomType { return GeomCylinder }

func (s Sphere) Size() []float64   { return []float64{s.Radius} }
func (b Box) Size() []float64      { return []float64{b.HalfX, b.HalfY, b.HalfZ} }
func (c Capsule) Size() []float64  { return []float64{c.Radius, c.HalfHeight} }
func (c Cylinder) Size() []float64 { return []float64{c.Radius, c.HalfHeight} }

func (Sphere) isShape()   {}
func (Box) isShape()      {}
func (Capsule) isShape()  {}
func (Cylinder) isShape() {}

// ShapeFromSize builds the shape for t from a flat size list. Missing
// components are taken from fill; extra components are ignored.
func ShapeFromSize(t GeomType, size []float64, fill float64) (Shape, error) {
	at := func(i int) float64 {
		if i < len(size) {
			return size[i]
		}
		return fill
	}
	switch t {
	case GeomSphere:
		return Sphere{Radius: at(0)}, nil
	case GeomBox:
		return Box{HalfX: at(0), HalfY: at(1), HalfZ: at(2)}, nil
	case GeomCapsule:
		return Capsule{Radius: at(0), HalfHeight: at(1)}, nil
	case GeomCylinder:
		return Cylinder{Radius: at(0), HalfHeight: at(1)}, nil
	}
	return nil, fmt.Errorf("unknown geom type %q", t)
}

// DefaultShape is the creation size of a freshly placed primitive.
func DefaultShape(t GeomType) Shape {
	switch t {
	case GeomSphere:
		return Sphere{Radius: 0.1}
	case GeomCapsule:
		return Capsule{Radius: 0.05, HalfHeight: 0.2}
	case GeomCylinder:
		return Cylinder{Radius: 0.05, HalfHeight: 0.2}
	default:
		return Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.1}
	}
}

type Geom struct {
	Shape       Shape
	RGBA        *[4]float64
	Group       *int
	Contype     *int
	Conaffinity *int
	Friction    *[3]float64
}

func (g Geom) Type() GeomType {
	if g.Shape == nil {
		return GeomBox
	}
	return g.Shape.Kind()
}

// Clone copies the optional attributes so the result shares no memory with g.
func (g Geom) Clone() Geom {
	out := Geom{Shape: g.Shape}
	if g.RGBA != nil {
		v := *g.RGBA
		out.RGBA = &v
	}
	if g.Friction != nil {
		v := *g.Friction
		out.Friction = &v
	}
	out.Group = cloneInt(g.Group)
	out.Contype = cloneInt(g.Contype)
	out.Conaffinity = cloneInt(g.Conaffinity)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type geomJSON struct {
	Type        GeomType    `json:"type"`
	Size        []float64   `json:"size"`
	RGBA        *[4]float64 `json:"rgba,omitempty"`
	Group       *int        `json:"group,omitempty"`
	Contype     *int        `json:"contype,omitempty"`
	Conaffinity *int        `json:"conaffinity,omitempty"`
	Friction    *[3]float64 `json:"friction,omitempty"`
}

func (g Geom) MarshalJSON() ([]byte, error) {
	var size []float64
	if g.Shape != nil {
		size = g.Shape.Size()
	}
	return json.Marshal(geomJSON{
		Type:        g.Type(),
		Size:        size,
		RGBA:        g.RGBA,
		Group:       g.Group,
		Contype:     g.Contype,
		Conaffinity: g.Conaffinity,
		Friction:    g.Friction,
	})
}

func (g *Geom) UnmarshalJSON(data []byte) error {
	var raw geomJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, ok := ParseGeomType(string(raw.Type))
	if !ok {
		return fmt.Errorf("unknown geom type %q", raw.Type)
	}
	def := DefaultShape(t).Size()
	size := make([]float64, t.Arity())
	for i := range size {
		size[i] = def[i]
		if i < len(raw.Size) {
			size[i] = raw.Size[i]
		}
	}
	shape, err := ShapeFromSize(t, size, 0)
	if err != nil {
		return err
	}
	*g = Geom{
		Shape:       shape,
		RGBA:        raw.RGBA,
		Group:       raw.Group,
		Contype:     raw.Contype,
		Conaffinity: raw.Conaffinity,
		Friction:    raw.Friction,
	}
	return nil
}

// ============================================================
// Scene
// ============================================================

type BodyNode struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Pos  [3]float64 `json:"pos"`
	Quat [4]float64 `json:"quat"` // w x y z
	Geom Geom       `json:"geom"`
}

func (n BodyNode) Clone() BodyNode {
	n.Geom = n.Geom.Clone()
	return n
}

// CloneNodes deep-copies a node list. A nil input yields an empty list.
func CloneNodes(nodes []BodyNode) []BodyNode {
	out := make([]BodyNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// IndexOf returns the position of id in nodes or -1.
func IndexOf(nodes []BodyNode, id string) int {
	for i := range nodes {
		if nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// ============================================================
// Selection
// ============================================================

type Selection struct {
	Primary string   `json:"primary"`
	Set     []string `json:"ids"`
	Anchor  string   `json:"anchor"`
}

func (s Selection) Empty() bool {
	return s.Primary == "" && len(s.Set) == 0 && s.Anchor == ""
}

func (s Selection) Contains(id string) bool {
	for _, v := range s.Set {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) Clone() Selection {
	out := s
	out.Set = append([]string{}, s.Set...)
	return out
}

// ============================================================
// Published state
// ============================================================

// State is a read-only snapshot of a store.
type State struct {
	Version   uint64     `json:"version"`
	Nodes     []BodyNode `json:"nodes"`
	Selection Selection  `json:"selection"`
	XML       string     `json:"xml"`
}
