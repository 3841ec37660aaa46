package mjcf

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"mjcf-editor/internal/editor/models"
)

// ============================================================
// Serializer
// ============================================================

// DefaultModelName is the model attribute of exported scenes.
const DefaultModelName = "scene"

const assetsBlock = `  <asset>
    <texture type="2d" name="groundplane" builtin="checker" mark="edge" rgb1="0.2 0.3 0.4" rgb2="0.1 0.2 0.3" markrgb="0.8 0.8 0.8" width="300" height="300"/>
    <material name="groundplane" texture="groundplane" texuniform="true" texrepeat="5 5"/>
  </asset>
`

const groundPlane = `    <geom name="ground" type="plane" size="10 10 0.1" pos="0 0 0" material="groundplane"/>
`

// Build renders nodes as canonical MJCF text. The output depends only on
// nodes, so equal scenes always produce identical strings.
func Build(nodes []models.BodyNode) string {
	return BuildModel(nodes, DefaultModelName)
}

// BuildModel is Build with an explicit model name.
func BuildModel(nodes []models.BodyNode, model string) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n")
	b.WriteString(`<mujoco model="` + escapeAttr(model) + "\">\n")
	b.WriteString("  <compiler angle=\"degree\" coordinate=\"local\"/>\n")
	b.WriteString(assetsBlock)
	b.WriteString("  <worldbody>\n")
	b.WriteString(groundPlane)
	for _, n := range nodes {
		writeBody(&b, n)
	}
	b.WriteString("  </worldbody>\n")
	b.WriteString("</mujoco>\n")
	return b.String()
}

func writeBody(b *strings.Builder, n models.BodyNode) {
	b.WriteString(`    <body name="` + escapeAttr(n.Name) + `"`)
	b.WriteString(` pos="` + formatNumbers(n.Pos[:]) + `"`)
	b.WriteString(` quat="` + formatNumbers(n.Quat[:]) + "\">\n")

	g := n.Geom
	var size []float64
	if g.Shape != nil {
		size = g.Shape.Size()
	}
	b.WriteString(`      <geom type="` + string(g.Type()) + `" size="` + formatNumbers(size) + `"`)
	if g.RGBA != nil {
		b.WriteString(` rgba="` + formatNumbers(g.RGBA[:]) + `"`)
	}
	if g.Group != nil {
		b.WriteString(` group="` + strconv.Itoa(*g.Group) + `"`)
	}
	if g.Contype != nil {
		b.WriteString(` contype="` + strconv.Itoa(*g.Contype) + `"`)
	}
	if g.Conaffinity != nil {
		b.WriteString(` conaffinity="` + strconv.Itoa(*g.Conaffinity) + `"`)
	}
	if g.Friction != nil {
		b.WriteString(` friction="` + formatNumbers(g.Friction[:]) + `"`)
	}
	b.WriteString("/>\n")
	b.WriteString("    </body>\n")
}

func formatNumbers(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

// formatFloat prints v with six decimals. Non-finite values print as 0 and
// negative zero is normalized.
func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	if s == "-0.000000" {
		return "0.000000"
	}
	return s
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
