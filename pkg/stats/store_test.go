package stats

import (
	"bytes"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/pkg/region"
)

func vermont() Record {
	return Record{State: "Vermont", Travel: "5.0", ClinicMissing: "40.0", ProviderMissing: "30.0"}
}

func TestBuildVermont(t *testing.T) {
	s, rep := Build([]Record{vermont()}, nil)

	if rep.Rows != 1 || rep.Joined != 1 || len(rep.Dropped) != 0 {
		t.Fatalf("report = %+v, want 1 row joined", rep)
	}

	tests := []struct {
		name   string
		lookup func(region.Code) (float64, bool)
		want   float64
	}{
		{"travel", s.Travel, 5.0},
		{"clinic access", s.ClinicAccess, 60.0},
		{"provider access", s.ProviderAccess, 70.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.lookup("50")
			if !ok {
				t.Fatal("missing entry for code 50")
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildInvertsMissingPercentages(t *testing.T) {
	s, _ := Build([]Record{{State: "Texas", Travel: "1", ClinicMissing: "23.4", ProviderMissing: "12.5"}}, nil)

	m, ok := s.Lookup("48")
	if !ok {
		t.Fatal("Lookup(48) not found")
	}
	if m.ClinicAccess != 76.6 {
		t.Errorf("ClinicAccess = %v, want 76.6", m.ClinicAccess)
	}
	if m.ProviderAccess != 87.5 {
		t.Errorf("ProviderAccess = %v, want 87.5", m.ProviderAccess)
	}
}

func TestBuildDropsUnknownStates(t *testing.T) {
	records := []Record{
		{State: "Puerto Rico", Travel: "10", ClinicMissing: "10", ProviderMissing: "10"},
		vermont(),
		{State: "Guam", Travel: "1", ClinicMissing: "1", ProviderMissing: "1"},
	}

	s, rep := Build(records, nil)

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if rep.Joined != 1 {
		t.Errorf("Joined = %d, want 1", rep.Joined)
	}
	if got := strings.Join(rep.Dropped, ","); got != "Puerto Rico,Guam" {
		t.Errorf("Dropped = %q, want Puerto Rico,Guam", got)
	}
	for _, c := range s.Codes() {
		if c != "50" {
			t.Errorf("unexpected code %q in store", c)
		}
	}
}

func TestBuildNonNumericIsNaN(t *testing.T) {
	records := []Record{
		{State: "Ohio", Travel: "n/a", ClinicMissing: "", ProviderMissing: "12"},
	}

	s, rep := Build(records, nil)

	m, ok := s.Lookup("39")
	if !ok {
		t.Fatal("non-numeric row should still be joined")
	}
	if !math.IsNaN(m.Travel) {
		t.Errorf("Travel = %v, want NaN", m.Travel)
	}
	if !math.IsNaN(m.ClinicAccess) {
		t.Errorf("ClinicAccess = %v, want NaN", m.ClinicAccess)
	}
	if m.ProviderAccess != 88 {
		t.Errorf("ProviderAccess = %v, want 88", m.ProviderAccess)
	}
	if m.Complete() {
		t.Error("Complete() = true, want false")
	}
	if rep.NonNumeric != 2 {
		t.Errorf("NonNumeric = %d, want 2", rep.NonNumeric)
	}
}

func TestBuildLaterRowWins(t *testing.T) {
	records := []Record{
		{State: "Utah", Travel: "1", ClinicMissing: "1", ProviderMissing: "1"},
		{State: "Utah", Travel: "2", ClinicMissing: "2", ProviderMissing: "2"},
	}
	s, _ := Build(records, nil)
	if v, _ := s.Travel("49"); v != 2 {
		t.Errorf("Travel = %v, want 2", v)
	}
}

func TestBuildIsSilentByDefault(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Build([]Record{{State: "Atlantis", Travel: "x"}}, nil)

	if buf.Len() != 0 {
		t.Errorf("Build without WithLogger wrote %q", buf.String())
	}
}

func TestBuildWithLoggerWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	Build([]Record{
		{State: "Atlantis", Travel: "1", ClinicMissing: "1", ProviderMissing: "1"},
		{State: "Iowa", Travel: "?", ClinicMissing: "1", ProviderMissing: "1"},
	}, nil, WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "Atlantis") {
		t.Errorf("expected dropped-row warning, got %q", out)
	}
	if !strings.Contains(out, "non-numeric") {
		t.Errorf("expected non-numeric warning, got %q", out)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		nan  bool
	}{
		{"5.0", 5, false},
		{" 12.25 ", 12.25, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12%", 0, true},
		{"1e2", 100, false},
		{".5", 0.5, false},
		{"+7.", 7, false},
		{"inf", 0, true},
		{"-Infinity", 0, true},
		{"NaN", 0, true},
		{"0x1p4", 0, true},
		{"1_000", 0, true},
		{"1e999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if tt.nan {
				if !math.IsNaN(got) {
					t.Errorf("ParseNumber(%q) = %v, want NaN", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordFromMap(t *testing.T) {
	rec := RecordFromMap(map[string]string{
		ColumnState:           "Vermont",
		ColumnTravel:          "5.0",
		ColumnClinicMissing:   "40.0",
		ColumnProviderMissing: "30.0",
		"Unrelated":           "x",
	})
	if rec != vermont() {
		t.Errorf("RecordFromMap() = %+v, want %+v", rec, vermont())
	}
}

func TestTravelValuesOrderedByCode(t *testing.T) {
	s, _ := Build([]Record{
		{State: "Wyoming", Travel: "9", ClinicMissing: "0", ProviderMissing: "0"},
		{State: "Alabama", Travel: "1", ClinicMissing: "0", ProviderMissing: "0"},
	}, nil)

	got := s.TravelValues()
	if len(got) != 2 || got[0] != 1 || got[1] != 9 {
		t.Errorf("TravelValues() = %v, want [1 9]", got)
	}
}

func TestLookupMissing(t *testing.T) {
	s, _ := Build(nil, nil)
	if _, ok := s.Lookup("50"); ok {
		t.Error("Lookup on empty store should fail")
	}
	if _, ok := s.Travel("50"); ok {
		t.Error("Travel on empty store should fail")
	}
}
