package mjcf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"mjcf-editor/internal/editor/codec"
	"mjcf-editor/internal/editor/models"
)

// ============================================================
// XML Structures
// ============================================================

type document struct {
	XMLName xml.Name
	Bodies  []bodyElement `xml:"worldbody>body"`
}

type bodyElement struct {
	Name  *string       `xml:"name,attr"`
	Pos   string        `xml:"pos,attr"`
	Quat  string        `xml:"quat,attr"`
	Geoms []geomElement `xml:"geom"`
}

type geomElement struct {
	Type        string  `xml:"type,attr"`
	Size        string  `xml:"size,attr"`
	RGBA        string  `xml:"rgba,attr"`
	Group       *string `xml:"group,attr"`
	Contype     *string `xml:"contype,attr"`
	Conaffinity *string `xml:"conaffinity,attr"`
	Friction    string  `xml:"friction,attr"`
}

// fallbackSize is used when a geom carries no size attribute. It is
// box-shaped for every type and is cut down to the type's arity.
var fallbackSize = []float64{0.1, 0.1, 0.1}

const defaultBodyName = "body"

// ParseError reports text that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xml parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ============================================================
// Parser
// ============================================================

// Parse reads every mujoco>worldbody>body element of text into body nodes.
// Only malformed XML is an error; missing or bad attributes fall back to
// defaults. Names are made unique in document order and used as ids.
func Parse(text string) ([]models.BodyNode, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	decoder.CharsetReader = charset.NewReaderLabel

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := drainTrailing(decoder); err != nil {
		return nil, &ParseError{Err: err}
	}

	if doc.XMLName.Local != "mujoco" {
		return []models.BodyNode{}, nil
	}

	names := make([]string, len(doc.Bodies))
	for i, b := range doc.Bodies {
		name := defaultBodyName
		if b.Name != nil {
			name = *b.Name
		}
		names[i] = strings.TrimSpace(name)
	}
	names = UniqueNames(names)

	nodes := make([]models.BodyNode, 0, len(doc.Bodies))
	for i, b := range doc.Bodies {
		nodes = append(nodes, buildNode(names[i], b))
	}
	return nodes, nil
}

// Validate reports whether text would be accepted by Parse.
func Validate(text string) error {
	_, err := Parse(text)
	return err
}

// drainTrailing rejects anything but whitespace, comments and processing
// instructions after the root element.
func drainTrailing(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return fmt.Errorf("unexpected text after root element")
			}
		}
	}
}

func buildNode(name string, b bodyElement) models.BodyNode {
	pos := parseNumbers(b.Pos)
	quat := parseNumbers(b.Quat)

	var g geomElement
	if len(b.Geoms) > 0 {
		g = b.Geoms[0]
	}

	geomType, ok := models.ParseGeomType(strings.TrimSpace(g.Type))
	if !ok {
		geomType = models.GeomBox
	}
	size := parseNumbers(g.Size)
	if len(size) == 0 {
		size = fallbackSize
	}
	shape, err := models.ShapeFromSize(geomType, size, fallbackSize[0])
	if err != nil {
		shape = models.DefaultShape(models.GeomBox)
	}

	geom := models.Geom{
		Shape:       codec.SanitizeShape(shape),
		Group:       parseInt(g.Group),
		Contype:     parseInt(g.Contype),
		Conaffinity: parseInt(g.Conaffinity),
	}
	if rgba := parseNumbers(g.RGBA); len(rgba) == 4 {
		v := [4]float64{}
		for i := range v {
			v[i] = clamp(rgba[i], 0, 1)
		}
		geom.RGBA = &v
	}
	if friction := parseNumbers(g.Friction); len(friction) == 3 {
		v := [3]float64{}
		for i := range v {
			v[i] = math.Max(0, friction[i])
		}
		geom.Friction = &v
	}

	return models.BodyNode{
		ID:   name,
		Name: name,
		Pos:  [3]float64{at(pos, 0, 0), at(pos, 1, 0), at(pos, 2, 0)},
		Quat: codec.SanitizeQuat([4]float64{at(quat, 0, 1), at(quat, 1, 0), at(quat, 2, 0), at(quat, 3, 0)}),
		Geom: geom,
	}
}

// UniqueNames resolves repeated names by suffixing _2, _3, ... in order.
// Empty names become "body". A generated suffix never collides with a name
// already taken earlier in the list.
func UniqueNames(names []string) []string {
	taken := make(map[string]bool, len(names))
	counts := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		base := name
		if base == "" {
			base = defaultBodyName
		}
		counts[base]++
		resolved := base
		if taken[resolved] {
			n := counts[base]
			if n < 2 {
				n = 2
			}
			for ; ; n++ {
				resolved = base + "_" + strconv.Itoa(n)
				if !taken[resolved] {
					break
				}
			}
			counts[base] = n
		}
		taken[resolved] = true
		out[i] = resolved
	}
	return out
}

// ============================================================
// Attribute helpers
// ============================================================

// parseNumbers splits on whitespace; tokens that are not finite numbers become 0.
func parseNumbers(s string) []float64 {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		out[i] = v
	}
	return out
}

// parseInt reads the leading integer of s, ignoring trailing junk.
// Unreadable and negative values become 0.
func parseInt(s *string) *int {
	if s == nil {
		return nil
	}
	text := strings.TrimSpace(*s)
	end := 0
	if end < len(text) && (text[end] == '-' || text[end] == '+') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	v := 0
	if end > digits {
		if n, err := strconv.Atoi(text[:end]); err == nil && n > 0 {
			v = n
		}
	}
	return &v
}

func at(vals []float64, i int, def float64) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
