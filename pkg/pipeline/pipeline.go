// Package pipeline runs the load → join → render flow shared by the CLI
// commands and the HTTP server.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Load: fetch the topology and the statistics concurrently, then join
//     them into an immutable [atlas.Atlas]
//  2. Render: build a scene, apply the filter thresholds if any, and
//     produce artifacts in the requested formats
//
// Rendered artifacts are cached by dataset hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Formats:     []string{"svg", "legend"},
//	    Filtered:    true,
//	    ClinicMax:   60,
//	    ProviderMax: 70,
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/cache"
	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/loader"
	"github.com/matzehuels/accessmap/pkg/scene"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"
	FormatHTML    = "html"
	FormatLegend  = "legend"
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatPNG     = "png"
	FormatPDF     = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatHTML:    true,
	FormatLegend:  true,
	FormatJSON:    true,
	FormatGeoJSON: true,
	FormatPNG:     true,
	FormatPDF:     true,
}

// FormatNames lists the formats in display order.
var FormatNames = []string{FormatSVG, FormatHTML, FormatLegend, FormatJSON, FormatGeoJSON, FormatPNG, FormatPDF}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch format {
	case FormatLegend:
		return ".legend.svg"
	case FormatGeoJSON:
		return ".geojson"
	default:
		return "." + format
	}
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Topology string `json:"topology,omitempty"`
	Data     string `json:"data,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
	Warn     bool   `json:"warn,omitempty"` // log dropped rows and non-numeric cells

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Filtered    bool     `json:"filtered,omitempty"` // apply thresholds; otherwise the map stays gray
	ClinicMax   float64  `json:"clinic_max,omitempty"`
	ProviderMax float64  `json:"provider_max,omitempty"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Tooltips    bool     `json:"tooltips,omitempty"`
	PNGScale    float64  `json:"png_scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Atlas     *atlas.Atlas
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Regions    int
	Joined     int
	Dropped    int
	LoadTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Topology == "" {
		o.Topology = loader.DefaultTopology
	}
	if o.Data == "" {
		o.Data = loader.DefaultData
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width and height must not be negative")
	}
	if o.Width == 0 {
		o.Width = scene.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = scene.DefaultHeight
	}
	if o.PNGScale <= 0 {
		o.PNGScale = 2
	}
	if o.Filtered {
		for name, v := range map[string]float64{"clinicMax": o.ClinicMax, "providerMax": o.ProviderMax} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidThreshold, "%s must be finite", name)
			}
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Source returns the loader source for these options.
func (o *Options) Source() loader.Source {
	return loader.Source{Topology: o.Topology, Data: o.Data, Refresh: o.Refresh}
}

// Thresholds returns the filter values.
func (o *Options) Thresholds() scene.Thresholds {
	return scene.Thresholds{ClinicMax: o.ClinicMax, ProviderMax: o.ProviderMax}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:   format,
		Filtered: o.Filtered,
		Width:    o.Width,
		Height:   o.Height,
		Tooltips: o.Tooltips,
	}
	if o.Filtered {
		k.ClinicMax = o.ClinicMax
		k.ProviderMax = o.ProviderMax
	}
	if format == FormatPNG {
		k.Width *= o.PNGScale
		k.Height *= o.PNGScale
	}
	return k
}

// String describes the filter for log output.
func (o *Options) String() string {
	if !o.Filtered {
		return "unfiltered"
	}
	return fmt.Sprintf("clinic<=%s provider<=%s", scene.Label(o.ClinicMax), scene.Label(o.ProviderMax))
}
