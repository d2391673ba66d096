// Package topo decodes TopoJSON topologies into go-geom geometries and
// turns them into SVG path data.
//
// Only the parts of the format the map needs are supported: quantized or
// unquantized arcs, and Polygon / MultiPolygon geometries inside a
// GeometryCollection object. Other geometry types decode to an empty
// MultiPolygon so the feature still exists (and renders as nothing).
package topo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string             `json:"type"`
	BBox      []float64          `json:"bbox,omitempty"`
	Transform *Transform         `json:"transform,omitempty"`
	Objects   map[string]*Object `json:"objects"`
	Arcs      [][][]float64      `json:"arcs"`

	decoded [][]geom.Coord
}

// Transform is the quantization transform of a topology.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Object is a TopoJSON geometry object. Arcs holds the raw arc index
// structure, whose nesting depends on Type.
type Object struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []*Object       `json:"geometries,omitempty"`
}

// Feature is one decoded geometry with its identifier.
type Feature struct {
	ID       string
	Name     string
	Geometry *geom.MultiPolygon
}

// Decode reads a topology from r and resolves its arcs.
func Decode(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	if t.Type != "Topology" {
		return nil, fmt.Errorf("decode topology: type %q, want Topology", t.Type)
	}
	t.decodeArcs()
	return &t, nil
}

// decodeArcs converts every arc to absolute coordinates. Quantized arcs are
// delta-encoded and mapped through the transform.
func (t *Topology) decodeArcs() {
	t.decoded = make([][]geom.Coord, len(t.Arcs))
	for i, arc := range t.Arcs {
		coords := make([]geom.Coord, 0, len(arc))
		var x, y float64
		for _, pos := range arc {
			if len(pos) < 2 {
				continue
			}
			if t.Transform == nil {
				coords = append(coords, geom.Coord{pos[0], pos[1]})
				continue
			}
			x += pos[0]
			y += pos[1]
			coords = append(coords, geom.Coord{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			})
		}
		t.decoded[i] = coords
	}
}

// Features returns one feature per geometry of the named object.
func (t *Topology) Features(object string) ([]Feature, error) {
	obj, ok := t.Objects[object]
	if !ok || obj == nil {
		return nil, fmt.Errorf("topology has no object %q", object)
	}

	geoms := obj.Geometries
	if obj.Type != "GeometryCollection" {
		geoms = []*Object{obj}
	}

	features := make([]Feature, 0, len(geoms))
	for i, g := range geoms {
		mp, err := t.multiPolygon(g)
		if err != nil {
			return nil, fmt.Errorf("%s geometry %d: %w", object, i, err)
		}
		f := Feature{ID: featureID(g.ID), Geometry: mp}
		if name, ok := g.Properties["name"].(string); ok {
			f.Name = name
		}
		features = append(features, f)
	}
	return features, nil
}

func (t *Topology) multiPolygon(o *Object) (*geom.MultiPolygon, error) {
	var polys [][][]int
	switch o.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(o.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		polys = [][][]int{rings}
	case "MultiPolygon":
		if err := json.Unmarshal(o.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
	default:
		return geom.NewMultiPolygon(geom.XY), nil
	}

	coords := make([][][]geom.Coord, 0, len(polys))
	for _, rings := range polys {
		poly := make([][]geom.Coord, 0, len(rings))
		for _, ring := range rings {
			c, err := t.ring(ring)
			if err != nil {
				return nil, err
			}
			poly = append(poly, c)
		}
		coords = append(coords, poly)
	}
	return geom.NewMultiPolygon(geom.XY).SetCoords(coords)
}

// ring stitches arcs into one closed ring. A negative index ~i refers to
// arc i reversed; each arc after the first drops its first point, which
// duplicates the previous arc's last point.
func (t *Topology) ring(indices []int) ([]geom.Coord, error) {
	var out []geom.Coord
	for k, idx := range indices {
		reversed := idx < 0
		if reversed {
			idx = ^idx
		}
		if idx >= len(t.decoded) {
			return nil, fmt.Errorf("arc index %d out of range (%d arcs)", idx, len(t.decoded))
		}
		arc := t.decoded[idx]
		pts := make([]geom.Coord, len(arc))
		copy(pts, arc)
		if reversed {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		if k > 0 && len(pts) > 0 {
			pts = pts[1:]
		}
		out = append(out, pts...)
	}
	return out, nil
}

// featureID normalizes an id that may be a JSON string or number. Numeric
// ids are zero-padded to two digits ("1" -> "01").
func featureID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n == math.Trunc(n) {
		id := strconv.FormatInt(int64(n), 10)
		if len(id) < 2 {
			id = "0" + id
		}
		return id
	}
	return string(raw)
}
