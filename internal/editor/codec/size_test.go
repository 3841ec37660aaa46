package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/editor/models"
)

func TestSanitizeSize(t *testing.T) {
	assert.Equal(t, MinSize, SanitizeSize(0))
	assert.Equal(t, MinSize, SanitizeSize(-4))
	assert.Equal(t, MinSize, SanitizeSize(math.NaN()))
	assert.Equal(t, MinSize, SanitizeSize(math.Inf(1)))
	assert.Equal(t, 0.5, SanitizeSize(0.5))
}

func TestScaleShape(t *testing.T) {
	tests := []struct {
		name   string
		shape  models.Shape
		factor [3]float64
		want   []float64
	}{
		{"box per axis", models.Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.1}, [3]float64{2, 1, 1}, []float64{0.2, 0.1, 0.1}},
		{"sphere takes max", models.Sphere{Radius: 0.1}, [3]float64{1, 3, 2}, []float64{0.3}},
		{"capsule radial and axial", models.Capsule{Radius: 0.05, HalfHeight: 0.2}, [3]float64{2, 1, 0.5}, []float64{0.1, 0.1}},
		{"cylinder", models.Cylinder{Radius: 0.05, HalfHeight: 0.2}, [3]float64{1, 2, 2}, []float64{0.1, 0.4}},
		{"clamped", models.Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.1}, [3]float64{0, -1, 1}, []float64{MinSize, MinSize, 0.1}},
		{"non-finite factor is 1", models.Sphere{Radius: 0.2}, [3]float64{math.NaN(), math.NaN(), math.NaN()}, []float64{0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleShape(tt.shape, tt.factor)
			assert.Equal(t, tt.shape.Kind(), got.Kind())
			require.Len(t, got.Size(), len(tt.want))
			for i, v := range tt.want {
				assert.InDelta(t, v, got.Size()[i], 1e-12)
			}
		})
	}
}

func TestSetSizeComponent(t *testing.T) {
	s, ok := SetSizeComponent(models.Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.1}, 2, 0.4)
	require.True(t, ok)
	assert.Equal(t, models.Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.4}, s)

	s, ok = SetSizeComponent(models.Sphere{Radius: 0.1}, 0, -1)
	require.True(t, ok)
	assert.Equal(t, models.Sphere{Radius: MinSize}, s)

	orig := models.Capsule{Radius: 0.05, HalfHeight: 0.2}
	s, ok = SetSizeComponent(orig, 2, 1)
	assert.False(t, ok)
	assert.Equal(t, orig, s)
}

func TestSanitizeShapeNil(t *testing.T) {
	assert.Equal(t, models.Box{HalfX: 0.1, HalfY: 0.1, HalfZ: 0.1}, SanitizeShape(nil))
}

func TestDragFactor(t *testing.T) {
	f := DragFactor([3]float64{1, 1, 1}, [3]float64{2, 1, 0})
	assert.InDelta(t, 1.1, f[0], 1e-12)
	assert.InDelta(t, 1.0, f[1], 1e-12)
	assert.InDelta(t, 0.9, f[2], 1e-12)

	f = DragFactor([3]float64{0, 0, 0}, [3]float64{100, -100, math.NaN()})
	assert.Equal(t, [3]float64{3, 0.1, 1}, f)
}
