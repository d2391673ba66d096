package render

import (
	"encoding/json"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/scene"
	"github.com/matzehuels/accessmap/pkg/topo"
)

type jsonOutput struct {
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Domain     [2]float64        `json:"domain"`
	Thresholds *scene.Thresholds `json:"thresholds,omitempty"`
	Regions    []jsonRegion      `json:"regions"`
	Report     jsonReport        `json:"report"`
}

type jsonRegion struct {
	atlas.RegionInfo
	Fill string `json:"fill"`
}

type jsonReport struct {
	Rows       int      `json:"rows"`
	Joined     int      `json:"joined"`
	Dropped    []string `json:"dropped,omitempty"`
	NonNumeric int      `json:"non_numeric"`
}

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	th *scene.Thresholds
}

// WithJSONThresholds records the thresholds the fills were computed with.
func WithJSONThresholds(th scene.Thresholds) JSONOption {
	return func(r *jsonRenderer) { r.th = &th }
}

// RenderJSON renders every region with its metrics and current fill, in
// draw order.
func RenderJSON(s *scene.Scene, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	a := s.Atlas()
	lo, hi := a.Scale.Domain()

	out := jsonOutput{
		Width:      s.Width,
		Height:     s.Height,
		Domain:     [2]float64{lo, hi},
		Thresholds: r.th,
		Regions:    make([]jsonRegion, 0, s.Len()),
		Report: jsonReport{
			Rows:       a.Report.Rows,
			Joined:     a.Report.Joined,
			Dropped:    a.Report.Dropped,
			NonNumeric: a.Report.NonNumeric,
		},
	}
	for _, sh := range s.Shapes() {
		out.Regions = append(out.Regions, jsonRegion{RegionInfo: sh.Info, Fill: sh.Fill})
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderGeoJSON renders the features as a GeoJSON FeatureCollection whose
// properties carry the same fields as RenderJSON.
func RenderGeoJSON(s *scene.Scene) ([]byte, error) {
	a := s.Atlas()
	fills := s.Fills()
	return topo.EncodeFeatureCollection(a.Features, func(f topo.Feature) map[string]any {
		info := a.Region(region.Code(f.ID))
		return map[string]any{
			"code":            info.Code,
			"name":            info.Name,
			"travel":          info.Travel,
			"clinic_access":   info.ClinicAccess,
			"provider_access": info.ProviderAccess,
			"fill":            fills[info.Code],
		}
	})
}
