package topo

import (
	"os"
	"strings"
	"testing"

	"github.com/twpayne/go-geom"
)

func loadMini(t *testing.T) *Topology {
	t.Helper()
	f, err := os.Open("testdata/mini.json")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	topo, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return topo
}

func TestDecodeRejectsNonTopology(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"feature collection", `{"type":"FeatureCollection","features":[]}`},
		{"not json", `<svg/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input)); err == nil {
				t.Error("Decode() should fail")
			}
		})
	}
}

func TestFeaturesIDsAndNames(t *testing.T) {
	features, err := loadMini(t).Features("states")
	if err != nil {
		t.Fatalf("Features() error: %v", err)
	}

	want := []struct{ id, name string }{
		{"50", "Vermont"}, {"48", "Texas"}, {"39", "Ohio"}, {"72", "Puerto Rico"}, {"02", "Alaska"},
	}
	if len(features) != len(want) {
		t.Fatalf("got %d features, want %d", len(features), len(want))
	}
	for i, w := range want {
		if features[i].ID != w.id || features[i].Name != w.name {
			t.Errorf("feature %d = %s/%s, want %s/%s", i, features[i].ID, features[i].Name, w.id, w.name)
		}
	}
}

func TestFeaturesMissingObject(t *testing.T) {
	if _, err := loadMini(t).Features("counties"); err == nil {
		t.Error("Features(counties) should fail")
	}
}

func TestQuantizedArcDecoding(t *testing.T) {
	features, _ := loadMini(t).Features("states")

	got := features[0].Geometry.Coords()
	want := [][][]geom.Coord{{{{10, 20}, {12, 20}, {12, 22}, {10, 22}, {10, 20}}}}
	assertCoords(t, got, want)
}

func TestRingStitching(t *testing.T) {
	features, _ := loadMini(t).Features("states")

	texas := features[1].Geometry.Coords()
	assertCoords(t, texas, [][][]geom.Coord{{{{14, 20}, {16, 20}, {16, 22}, {14, 22}, {14, 20}}}})

	ohio := features[2].Geometry.Coords()
	assertCoords(t, ohio, [][][]geom.Coord{
		{{{14, 20}, {14, 22}, {16, 22}, {16, 20}, {14, 20}}},
		{{{10, 20}, {12, 20}, {12, 22}, {10, 22}, {10, 20}}},
	})
}

func TestNullGeometryIsEmpty(t *testing.T) {
	features, _ := loadMini(t).Features("states")
	if n := features[4].Geometry.NumPolygons(); n != 0 {
		t.Errorf("NumPolygons() = %d, want 0", n)
	}
	if d := PathData(features[4].Geometry, nil); d != "" {
		t.Errorf("PathData() = %q, want empty", d)
	}
}

func TestUnquantizedArcs(t *testing.T) {
	doc := `{"type":"Topology","objects":{"states":{"type":"GeometryCollection","geometries":[
		{"type":"Polygon","id":"01","arcs":[[0]]}]}},
		"arcs":[[[0,0],[5,0],[5,5],[0,0]]]}`
	topo, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	features, err := topo.Features("states")
	if err != nil {
		t.Fatalf("Features() error: %v", err)
	}
	assertCoords(t, features[0].Geometry.Coords(), [][][]geom.Coord{{{{0, 0}, {5, 0}, {5, 5}, {0, 0}}}})
}

func TestArcIndexOutOfRange(t *testing.T) {
	doc := `{"type":"Topology","objects":{"states":{"type":"GeometryCollection","geometries":[
		{"type":"Polygon","id":"01","arcs":[[3]]}]}},"arcs":[]}`
	topo, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if _, err := topo.Features("states"); err == nil {
		t.Error("Features() should fail on a bad arc index")
	}
}

func TestFeatureID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"50"`, "50"},
		{`6`, "06"},
		{`48`, "48"},
		{``, ""},
	}
	for _, tt := range tests {
		if got := featureID([]byte(tt.raw)); got != tt.want {
			t.Errorf("featureID(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func assertCoords(t *testing.T, got, want [][][]geom.Coord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d polygons, want %d", len(got), len(want))
	}
	for p := range want {
		if len(got[p]) != len(want[p]) {
			t.Fatalf("polygon %d: got %d rings, want %d", p, len(got[p]), len(want[p]))
		}
		for r := range want[p] {
			if len(got[p][r]) != len(want[p][r]) {
				t.Fatalf("polygon %d ring %d: got %v, want %v", p, r, got[p][r], want[p][r])
			}
			for i := range want[p][r] {
				if !got[p][r][i].Equal(geom.XY, want[p][r][i]) {
					t.Errorf("polygon %d ring %d point %d = %v, want %v", p, r, i, got[p][r][i], want[p][r][i])
				}
			}
		}
	}
}
