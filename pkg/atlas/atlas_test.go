package atlas

import (
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/stats"
	"github.com/matzehuels/accessmap/pkg/topo"
)

func loadTopology(t *testing.T) *topo.Topology {
	t.Helper()
	f, err := os.Open("../topo/testdata/mini.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tp, err := topo.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	return tp
}

var testRecords = []stats.Record{
	{State: "Vermont", Travel: "23.4", ClinicMissing: "40", ProviderMissing: "30"},
	{State: "Texas", Travel: "6.5", ClinicMissing: "", ProviderMissing: "80"},
	{State: "Puerto Rico", Travel: "5", ClinicMissing: "5", ProviderMissing: "5"},
}

func newTestAtlas(t *testing.T) *Atlas {
	t.Helper()
	a, err := New(loadTopology(t), testRecords, "abc")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return a
}

func TestNew(t *testing.T) {
	a := newTestAtlas(t)

	if len(a.Features) != 5 {
		t.Errorf("Features = %d, want 5", len(a.Features))
	}
	if a.Report.Joined != 2 || len(a.Report.Dropped) != 1 {
		t.Errorf("Report = %+v", a.Report)
	}
	if lo, hi := a.Scale.Domain(); lo != 6.5 || hi != 23.4 {
		t.Errorf("Scale domain = [%v, %v], want [6.5, 23.4]", lo, hi)
	}
	if a.Hash != "abc" {
		t.Errorf("Hash = %q", a.Hash)
	}
}

func TestNewNonFiniteCells(t *testing.T) {
	a, err := New(loadTopology(t), []stats.Record{
		{State: "Vermont", Travel: "23.4", ClinicMissing: "40", ProviderMissing: "30"},
		{State: "Texas", Travel: "6.5", ClinicMissing: "10", ProviderMissing: "80"},
		{State: "Ohio", Travel: "inf", ClinicMissing: "0x1p4", ProviderMissing: "Infinity"},
	}, "abc")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if lo, hi := a.Scale.Domain(); lo != 6.5 || hi != 23.4 {
		t.Errorf("Scale domain = [%v, %v], want [6.5, 23.4]", lo, hi)
	}
	oh := a.Region("39")
	if oh.Travel.Valid() || oh.ClinicAccess.Valid() || oh.ProviderAccess.Valid() {
		t.Errorf("Ohio values should be invalid: %+v", oh)
	}
	if _, err := json.Marshal(a.Regions()); err != nil {
		t.Errorf("Marshal(Regions()) error: %v", err)
	}
}

func TestValueValid(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Value{V: 5, OK: true}, true},
		{Value{V: 5, OK: false}, false},
		{Value{V: math.NaN(), OK: true}, false},
		{Value{V: math.Inf(1), OK: true}, false},
		{Value{V: math.Inf(-1), OK: true}, false},
	}
	for _, tt := range tests {
		if got := tt.v.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNewMissingStatesObject(t *testing.T) {
	tp := loadTopology(t)
	delete(tp.Objects, StatesObject)
	if _, err := New(tp, testRecords, ""); err == nil {
		t.Error("New() without a states object should fail")
	}
}

func TestRegion(t *testing.T) {
	a := newTestAtlas(t)

	vt := a.Region("50")
	if vt.Name != "Vermont" {
		t.Errorf("Name = %q", vt.Name)
	}
	want := []string{
		"Out-of-state travel: 23.4%",
		"Clinic access: 60.0%",
		"Provider access: 70.0%",
	}
	for i, line := range vt.Lines() {
		if line != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, line, want[i])
		}
	}

	tx := a.Region("48")
	if tx.ClinicAccess.Valid() || !tx.ClinicAccess.OK {
		t.Errorf("Texas clinic access should be present but NaN: %+v", tx.ClinicAccess)
	}
	if got := tx.Lines()[1]; got != "Clinic access: N/A%" {
		t.Errorf("Texas clinic line = %q", got)
	}
}

func TestRegionNameFallback(t *testing.T) {
	a := newTestAtlas(t)

	tests := []struct {
		code region.Code
		want string
	}{
		{"50", "Vermont"},     // resolver
		{"72", "Puerto Rico"}, // topology properties
		{"99", "99"},          // code
	}
	for _, tt := range tests {
		if got := a.Region(tt.code).Name; got != tt.want {
			t.Errorf("Region(%s).Name = %q, want %q", tt.code, got, tt.want)
		}
	}

	pr := a.Region("72")
	if pr.Travel.OK || pr.Travel.String() != "N/A" {
		t.Errorf("unjoined region should have no travel: %+v", pr.Travel)
	}
	if !math.IsNaN(pr.Metrics().Travel) {
		t.Error("Metrics() of unjoined region should be NaN")
	}
}

func TestKnown(t *testing.T) {
	a := newTestAtlas(t)
	for code, want := range map[region.Code]bool{"50": true, "72": true, "06": true, "99": false} {
		if got := a.Known(code); got != want {
			t.Errorf("Known(%s) = %v, want %v", code, got, want)
		}
	}
}

func TestRegionsOrder(t *testing.T) {
	a := newTestAtlas(t)
	regions := a.Regions()
	want := []region.Code{"50", "48", "39", "72", "02"}
	if len(regions) != len(want) {
		t.Fatalf("Regions() = %d, want %d", len(regions), len(want))
	}
	for i, r := range regions {
		if r.Code != want[i] {
			t.Errorf("Regions()[%d] = %s, want %s", i, r.Code, want[i])
		}
	}
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal(RegionInfo{
		Code:         "48",
		Name:         "Texas",
		Travel:       Value{V: 6.5, OK: true},
		ClinicAccess: Value{V: math.NaN(), OK: true},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"code":"48","name":"Texas","travel":6.5,"clinic_access":null,"provider_access":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant %s", data, want)
	}
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		v    float64
		ok   bool
		want string
	}{
		{23.4, true, "23.4"},
		{60, true, "60.0"},
		{76.65, true, "76.7"},
		{math.NaN(), true, "N/A"},
		{math.Inf(1), true, "N/A"},
		{5, false, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatMetric(tt.v, tt.ok); got != tt.want {
			t.Errorf("FormatMetric(%v, %v) = %q, want %q", tt.v, tt.ok, got, tt.want)
		}
	}
}
