// Package atlas holds the immutable, fully-joined map context.
//
// An [Atlas] is built once after both resources have loaded: the region
// resolver, the metric store, the color scale fitted to the travel rates,
// and the state features. The renderer, the filter controller, the HTTP
// server and the terminal filter all read from the same *Atlas; nothing
// writes to it after [New] returns.
package atlas

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/pkg/colorscale"
	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/stats"
	"github.com/matzehuels/accessmap/pkg/topo"
)

// StatesObject is the topology object holding one geometry per state.
const StatesObject = "states"

// Atlas is the joined, read-only map context.
type Atlas struct {
	Resolver *region.Resolver
	Store    *stats.Store
	Scale    *colorscale.Sequential
	Features []topo.Feature
	Report   stats.Report
	Hash     string

	names map[region.Code]string // topology names, fallback for unknown codes
}

// Option configures New.
type Option func(*config)

type config struct {
	resolver *region.Resolver
	interp   colorscale.Interpolator
	logger   *log.Logger
}

// WithResolver replaces the default 51-entry resolver.
func WithResolver(r *region.Resolver) Option {
	return func(c *config) { c.resolver = r }
}

// WithInterpolator replaces the sequential red scheme.
func WithInterpolator(i colorscale.Interpolator) Option {
	return func(c *config) { c.interp = i }
}

// WithLogger enables join diagnostics; see [stats.WithLogger].
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New joins records against the states of t. hash identifies the
// underlying dataset and is carried through for cache keys.
func New(t *topo.Topology, records []stats.Record, hash string, opts ...Option) (*Atlas, error) {
	cfg := config{resolver: region.Default(), interp: colorscale.Reds()}
	for _, opt := range opts {
		opt(&cfg)
	}

	features, err := t.Features(StatesObject)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}

	var buildOpts []stats.Option
	if cfg.logger != nil {
		buildOpts = append(buildOpts, stats.WithLogger(cfg.logger))
	}
	store, report := stats.Build(records, cfg.resolver, buildOpts...)

	names := make(map[region.Code]string, len(features))
	for _, f := range features {
		if f.Name != "" {
			names[region.Code(f.ID)] = f.Name
		}
	}

	return &Atlas{
		Resolver: cfg.resolver,
		Store:    store,
		Scale:    colorscale.NewSequential(store.TravelValues(), cfg.interp),
		Features: features,
		Report:   report,
		Hash:     hash,
		names:    names,
	}, nil
}

// Value is one metric reading. OK is false when the region has no row.
type Value struct {
	V  float64
	OK bool
}

// Valid reports whether the value is present and finite.
func (v Value) Valid() bool { return v.OK && !math.IsNaN(v.V) && !math.IsInf(v.V, 0) }

// String formats the value with one decimal, or "N/A".
func (v Value) String() string { return FormatMetric(v.V, v.OK) }

// MarshalJSON encodes a valid value as a number and anything else as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// FormatMetric formats v with one decimal, or returns "N/A" when the value
// is absent or not finite.
func FormatMetric(v float64, ok bool) string {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// RegionInfo is everything the tooltip and the region API show.
type RegionInfo struct {
	Code           region.Code `json:"code"`
	Name           string      `json:"name"`
	Travel         Value       `json:"travel"`
	ClinicAccess   Value       `json:"clinic_access"`
	ProviderAccess Value       `json:"provider_access"`
}

// Lines returns the three tooltip lines.
func (r RegionInfo) Lines() []string {
	return []string{
		"Out-of-state travel: " + r.Travel.String() + "%",
		"Clinic access: " + r.ClinicAccess.String() + "%",
		"Provider access: " + r.ProviderAccess.String() + "%",
	}
}

// Metrics returns the raw values, NaN where absent.
func (r RegionInfo) Metrics() stats.Metrics {
	m := stats.Metrics{Travel: math.NaN(), ClinicAccess: math.NaN(), ProviderAccess: math.NaN()}
	if r.Travel.OK {
		m.Travel = r.Travel.V
	}
	if r.ClinicAccess.OK {
		m.ClinicAccess = r.ClinicAccess.V
	}
	if r.ProviderAccess.OK {
		m.ProviderAccess = r.ProviderAccess.V
	}
	return m
}

// Region returns the display data for code. The name comes from the
// resolver, then the topology, then the code itself.
func (a *Atlas) Region(code region.Code) RegionInfo {
	info := RegionInfo{Code: code, Name: a.Name(code)}
	info.Travel.V, info.Travel.OK = a.Store.Travel(code)
	info.ClinicAccess.V, info.ClinicAccess.OK = a.Store.ClinicAccess(code)
	info.ProviderAccess.V, info.ProviderAccess.OK = a.Store.ProviderAccess(code)
	return info
}

// Name returns the display name for code.
func (a *Atlas) Name(code region.Code) string {
	if n, ok := a.Resolver.Name(code); ok {
		return n
	}
	if n, ok := a.names[code]; ok {
		return n
	}
	return string(code)
}

// Known reports whether code is a feature of the map or a resolver entry.
func (a *Atlas) Known(code region.Code) bool {
	if _, ok := a.Resolver.Name(code); ok {
		return true
	}
	for _, f := range a.Features {
		if region.Code(f.ID) == code {
			return true
		}
	}
	return false
}

// Regions returns RegionInfo for every feature, in topology order.
func (a *Atlas) Regions() []RegionInfo {
	out := make([]RegionInfo, 0, len(a.Features))
	for _, f := range a.Features {
		out = append(out, a.Region(region.Code(f.ID)))
	}
	return out
}
