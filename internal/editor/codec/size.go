package codec

import (
	"math"

	"mjcf-editor/internal/editor/models"
)

// ============================================================
// Dimensions
// ============================================================

// MinSize is the smallest size component a geom may carry.
const MinSize = 0.001

const (
	dragSensitivity = 0.1
	dragMinFactor   = 0.1
	dragMaxFactor   = 3.0
)

// SanitizeSize clamps a size component to MinSize; non-finite input becomes MinSize.
func SanitizeSize(v float64) float64 {
	if !finite(v) || v < MinSize {
		return MinSize
	}
	return v
}

// SanitizeShape applies SanitizeSize to every component of s.
func SanitizeShape(s models.Shape) models.Shape {
	switch v := s.(type) {
	case models.Sphere:
		return models.Sphere{Radius: SanitizeSize(v.Radius)}
	case models.Box:
		return models.Box{HalfX: SanitizeSize(v.HalfX), HalfY: SanitizeSize(v.HalfY), HalfZ: SanitizeSize(v.HalfZ)}
	case models.Capsule:
		return models.Capsule{Radius: SanitizeSize(v.Radius), HalfHeight: SanitizeSize(v.HalfHeight)}
	case models.Cylinder:
		return models.Cylinder{Radius: SanitizeSize(v.Radius), HalfHeight: SanitizeSize(v.HalfHeight)}
	}
	return SanitizeShape(models.DefaultShape(models.GeomBox))
}

// SanitizeFactor replaces non-finite scale factors with 1.
func SanitizeFactor(f [3]float64) [3]float64 {
	for i, v := range f {
		if !finite(v) {
			f[i] = 1
		}
	}
	return f
}

// ScaleShape multiplies s by a per-axis factor. Spheres take the largest
// factor, boxes scale per axis, capsules and cylinders scale the radius by
// the larger radial (x, y) factor and the half-height by z.
func ScaleShape(s models.Shape, factor [3]float64) models.Shape {
	f := SanitizeFactor(factor)
	switch v := s.(type) {
	case models.Sphere:
		m := math.Max(f[0], math.Max(f[1], f[2]))
		return SanitizeShape(models.Sphere{Radius: v.Radius * m})
	case models.Box:
		return SanitizeShape(models.Box{HalfX: v.HalfX * f[0], HalfY: v.HalfY * f[1], HalfZ: v.HalfZ * f[2]})
	case models.Capsule:
		return SanitizeShape(models.Capsule{Radius: v.Radius * math.Max(f[0], f[1]), HalfHeight: v.HalfHeight * f[2]})
	case models.Cylinder:
		return SanitizeShape(models.Cylinder{Radius: v.Radius * math.Max(f[0], f[1]), HalfHeight: v.HalfHeight * f[2]})
	}
	return SanitizeShape(s)
}

// SetSizeComponent replaces component index of s. Out-of-range indexes
// leave s unchanged and report false.
func SetSizeComponent(s models.Shape, index int, value float64) (models.Shape, bool) {
	size := s.Size()
	if index < 0 || index >= len(size) {
		return s, false
	}
	size[index] = SanitizeSize(value)
	out, err := models.ShapeFromSize(s.Kind(), size, MinSize)
	if err != nil {
		return s, false
	}
	return out, true
}

// DragFactor converts a gizmo scale drag (mesh scale at drag start and now)
// into a damped multiplicative factor per axis.
func DragFactor(initial, current [3]float64) [3]float64 {
	var out [3]float64
	for i := range out {
		d := 1 + (current[i]-initial[i])*dragSensitivity
		if !finite(d) {
			d = 1
		}
		out[i] = math.Max(dragMinFactor, math.Min(dragMaxFactor, d))
	}
	return out
}
