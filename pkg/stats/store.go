// Package stats builds the per-region metric store from statistics rows.
//
// Each row names a state and carries three percentages. Build joins rows to
// region codes and records:
//
//   - travel: share of residents obtaining abortions who traveled out of state
//   - clinic access: 100 minus the share of counties without a known clinic
//   - provider access: 100 minus the share of counties without a known provider
//
// Rows whose state name does not resolve are dropped without error. Cells
// that do not parse as numbers are stored as NaN; NaN is kept (not dropped)
// so that a region with a malformed cell still counts as joined but fails
// every threshold test downstream.
package stats

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/pkg/region"
)

// Column headers, matched by exact string.
const (
	ColumnState           = "U.S. State"
	ColumnTravel          = "% of residents obtaining abortions who traveled out of state for care, 2020"
	ColumnClinicMissing   = "% of counties without a known clinic, 2020"
	ColumnProviderMissing = "% of counties without a known abortion provider, 2014"
)

// Record is one statistics row. Columns other than these four are ignored.
//
// The csv tags are short aliases; the real headers contain commas, so
// readers map them through [HeaderAliases] before decoding.
type Record struct {
	State           string `csv:"state"`
	Travel          string `csv:"travel"`
	ClinicMissing   string `csv:"clinic_missing"`
	ProviderMissing string `csv:"provider_missing"`
}

// HeaderAliases maps each recognized column header to its Record tag.
var HeaderAliases = map[string]string{
	ColumnState:           "state",
	ColumnTravel:          "travel",
	ColumnClinicMissing:   "clinic_missing",
	ColumnProviderMissing: "provider_missing",
}

// RecordFromMap builds a Record from a column-name to cell mapping.
// Missing columns become empty cells, which parse as NaN.
func RecordFromMap(row map[string]string) Record {
	return Record{
		State:           row[ColumnState],
		Travel:          row[ColumnTravel],
		ClinicMissing:   row[ColumnClinicMissing],
		ProviderMissing: row[ColumnProviderMissing],
	}
}

// Metrics holds the three values of one region. Any of them may be NaN.
type Metrics struct {
	Travel         float64 `json:"travel"`
	ClinicAccess   float64 `json:"clinic_access"`
	ProviderAccess float64 `json:"provider_access"`
}

// Complete reports whether all three values are numbers.
func (m Metrics) Complete() bool {
	return !math.IsNaN(m.Travel) && !math.IsNaN(m.ClinicAccess) && !math.IsNaN(m.ProviderAccess)
}

// Store maps region codes to metric values, one map per metric. It is
// populated once by [Build] and never mutated afterwards.
type Store struct {
	travel   map[region.Code]float64
	clinic   map[region.Code]float64
	provider map[region.Code]float64
}

// Report summarizes a Build.
type Report struct {
	Rows       int      // rows seen
	Joined     int      // rows whose state resolved
	Dropped    []string // state names that did not resolve, in row order
	NonNumeric int      // cells that parsed as NaN among joined rows
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	logger *log.Logger
}

// WithLogger makes Build emit a warning for every dropped row and every
// non-numeric cell. Without it Build is silent.
func WithLogger(l *log.Logger) Option {
	return func(c *buildConfig) { c.logger = l }
}

// Build joins records against res and returns the populated store.
// A later row for the same region overwrites an earlier one.
func Build(records []Record, res *region.Resolver, opts ...Option) (*Store, Report) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if res == nil {
		res = region.Default()
	}

	s := &Store{
		travel:   make(map[region.Code]float64, len(records)),
		clinic:   make(map[region.Code]float64, len(records)),
		provider: make(map[region.Code]float64, len(records)),
	}
	rep := Report{Rows: len(records)}

	for i, rec := range records {
		code, ok := res.Code(rec.State)
		if !ok {
			rep.Dropped = append(rep.Dropped, rec.State)
			if cfg.logger != nil {
				cfg.logger.Warn("dropping row with unknown state", "row", i+1, "state", rec.State)
			}
			continue
		}
		rep.Joined++

		travel := cfg.parse(i, rec.State, ColumnTravel, rec.Travel, &rep)
		clinicMissing := cfg.parse(i, rec.State, ColumnClinicMissing, rec.ClinicMissing, &rep)
		providerMissing := cfg.parse(i, rec.State, ColumnProviderMissing, rec.ProviderMissing, &rep)

		s.travel[code] = travel
		s.clinic[code] = 100 - clinicMissing
		s.provider[code] = 100 - providerMissing
	}
	return s, rep
}

func (c buildConfig) parse(row int, state, column, cell string, rep *Report) float64 {
	v := ParseNumber(cell)
	if math.IsNaN(v) {
		rep.NonNumeric++
		if c.logger != nil {
			c.logger.Warn("non-numeric cell", "row", row+1, "state", state, "column", column, "value", cell)
		}
	}
	return v
}

// decimalPattern accepts plain decimal notation with an optional exponent.
// Spellings strconv also takes, such as "inf", "NaN" or hex floats, are not
// numbers in a statistics sheet.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses a decimal cell. Surrounding whitespace is ignored;
// anything that is not a finite decimal number, including an empty cell,
// yields NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Travel returns the out-of-state travel rate for code.
func (s *Store) Travel(code region.Code) (float64, bool) {
	v, ok := s.travel[code]
	return v, ok
}

// ClinicAccess returns the clinic access percentage for code.
func (s *Store) ClinicAccess(code region.Code) (float64, bool) {
	v, ok := s.clinic[code]
	return v, ok
}

// ProviderAccess returns the provider access percentage for code.
func (s *Store) ProviderAccess(code region.Code) (float64, bool) {
	v, ok := s.provider[code]
	return v, ok
}

// Lookup returns all three metrics for code. ok is false unless every
// metric has an entry; values may still be NaN.
func (s *Store) Lookup(code region.Code) (Metrics, bool) {
	t, ok1 := s.travel[code]
	c, ok2 := s.clinic[code]
	p, ok3 := s.provider[code]
	if !ok1 || !ok2 || !ok3 {
		return Metrics{math.NaN(), math.NaN(), math.NaN()}, false
	}
	return Metrics{Travel: t, ClinicAccess: c, ProviderAccess: p}, true
}

// TravelValues returns every stored travel rate, ordered by region code.
func (s *Store) TravelValues() []float64 {
	codes := s.Codes()
	vals := make([]float64, 0, len(codes))
	for _, c := range codes {
		vals = append(vals, s.travel[c])
	}
	return vals
}

// Codes returns the codes present in the store, sorted.
func (s *Store) Codes() []region.Code {
	codes := make([]region.Code, 0, len(s.travel))
	for c := range s.travel {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// Len returns the number of joined regions.
func (s *Store) Len() int { return len(s.travel) }
