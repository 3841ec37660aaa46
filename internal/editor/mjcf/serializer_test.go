package mjcf

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjcf-editor/internal/editor/models"
)

func TestBuildEmpty(t *testing.T) {
	xml := Build(nil)
	assert.True(t, strings.HasPrefix(xml, "<?xml version=\"1.0\"?>\n<mujoco model=\"scene\">"))
	assert.Contains(t, xml, `<material name="groundplane"`)
	assert.Contains(t, xml, `<geom name="ground" type="plane"`)
	assert.NotContains(t, xml, "<body")
	assert.Equal(t, xml, Build([]models.BodyNode{}))
}

func TestBuildBody(t *testing.T) {
	rgba := [4]float64{1, 0, 0, 1}
	group := 1
	nodes := []models.BodyNode{{
		ID:   "body_1",
		Name: "link",
		Pos:  [3]float64{1, -2, 0.5},
		Quat: [4]float64{1, 0, 0, 0},
		Geom: models.Geom{Shape: models.Box{HalfX: 0.1, HalfY: 0.2, HalfZ: 0.3}, RGBA: &rgba, Group: &group},
	}}

	xml := Build(nodes)
	assert.Contains(t, xml, `<body name="link" pos="1.000000 -2.000000 0.500000" quat="1.000000 0.000000 0.000000 0.000000">`)
	assert.Contains(t, xml, `<geom type="box" size="0.100000 0.200000 0.300000" rgba="1.000000 0.000000 0.000000 1.000000" group="1"/>`)
	assert.NotContains(t, xml, "friction")
	assert.NotContains(t, xml, "contype")
}

func TestBuildDeterministic(t *testing.T) {
	nodes := []models.BodyNode{
		{ID: "a", Name: "a", Quat: [4]float64{1, 0, 0, 0}, Geom: models.Geom{Shape: models.Sphere{Radius: 0.1}}},
		{ID: "b", Name: "b", Quat: [4]float64{1, 0, 0, 0}, Geom: models.Geom{Shape: models.Cylinder{Radius: 0.05, HalfHeight: 0.2}}},
	}
	assert.Equal(t, Build(nodes), Build(models.CloneNodes(nodes)))
	assert.Less(t, strings.Index(Build(nodes), `name="a"`), strings.Index(Build(nodes), `name="b"`))
}

func TestBuildEscapesNames(t *testing.T) {
	nodes := []models.BodyNode{{ID: "x", Name: `a<b & "c"`, Quat: [4]float64{1, 0, 0, 0}, Geom: models.Geom{Shape: models.Sphere{Radius: 0.1}}}}
	xml := Build(nodes)
	assert.Contains(t, xml, `name="a&lt;b &amp; &#34;c&#34;"`)

	parsed, err := Parse(xml)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, `a<b & "c"`, parsed[0].Name)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.000000", formatFloat(math.Copysign(0, -1)))
	assert.Equal(t, "0.000000", formatFloat(-0.0000001))
	assert.Equal(t, "0.000000", formatFloat(math.NaN()))
	assert.Equal(t, "0.000000", formatFloat(math.Inf(-1)))
	assert.Equal(t, "0.123457", formatFloat(0.1234567))
	assert.Equal(t, "-3.500000", formatFloat(-3.5))
}

func TestBuildModelName(t *testing.T) {
	assert.Contains(t, BuildModel(nil, "robot"), `<mujoco model="robot">`)
}
