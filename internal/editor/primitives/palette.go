package primitives

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"mjcf-editor/internal/editor/models"
)

// ============================================================
// Palette
// ============================================================

// Def is one YAML palette entry, e.g.
//
//	primitives:
//	  - type: capsule
//	    size: [0.05, 0.2]
type Def struct {
	Type string    `yaml:"type"`
	Size []float64 `yaml:"size"`
}

type file struct {
	Primitives []Def `yaml:"primitives"`
}

// Palette maps each primitive type to its creation size.
type Palette struct {
	shapes map[models.GeomType]models.Shape
}

// Default returns the built-in palette.
func Default() *Palette {
	p := &Palette{shapes: make(map[models.GeomType]models.Shape, len(models.GeomTypes))}
	for _, t := range models.GeomTypes {
		p.shapes[t] = models.DefaultShape(t)
	}
	return p
}

// Load reads overrides from a YAML file on top of the built-in palette.
// An empty path returns Default().
func Load(path string) (*Palette, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette: %w", err)
	}
	if err := p.apply(data); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// Parse reads overrides from YAML data.
func Parse(data []byte) (*Palette, error) {
	p := Default()
	if err := p.apply(data); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Palette) apply(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	for _, def := range f.Primitives {
		t, ok := models.ParseGeomType(def.Type)
		if !ok {
			return fmt.Errorf("unknown primitive type %q", def.Type)
		}
		if len(def.Size) != t.Arity() {
			return fmt.Errorf("%s: size needs %d values, got %d", t, t.Arity(), len(def.Size))
		}
		for _, v := range def.Size {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("%s: size values must be positive", t)
			}
		}
		shape, err := models.ShapeFromSize(t, def.Size, 0)
		if err != nil {
			return err
		}
		p.shapes[t] = shape
	}
	return nil
}

// Shape returns the creation size for t; unknown types get the box default.
func (p *Palette) Shape(t models.GeomType) models.Shape {
	if s, ok := p.shapes[t]; ok {
		return s
	}
	return models.DefaultShape(models.GeomBox)
}
