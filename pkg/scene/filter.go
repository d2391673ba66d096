package scene

import (
	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/region"
	"github.com/matzehuels/accessmap/pkg/stats"
)

// Thresholds are the two slider maxima, in percent.
type Thresholds struct {
	ClinicMax   float64 `json:"clinic_max"`
	ProviderMax float64 `json:"provider_max"`
}

// DefaultThresholds are the slider starting positions.
var DefaultThresholds = Thresholds{ClinicMax: 100, ProviderMax: 100}

// Passes reports whether m is within both maxima. Boundaries are
// inclusive; NaN never passes.
func Passes(m stats.Metrics, th Thresholds) bool {
	return m.ClinicAccess <= th.ClinicMax && m.ProviderAccess <= th.ProviderMax
}

// Fill returns the fill for one region under th: the scale color of its
// travel rate if all three metrics are numbers and it passes, gray
// otherwise.
func Fill(a *atlas.Atlas, code region.Code, th Thresholds) string {
	m, ok := a.Store.Lookup(code)
	return fill(a, m, ok, th)
}

func fill(a *atlas.Atlas, m stats.Metrics, ok bool, th Thresholds) string {
	if !ok || !m.Complete() || !Passes(m, th) {
		return NeutralFill
	}
	return a.Scale.Hex(m.Travel)
}

// Recolor recomputes every fill from scratch. Calling it twice with the
// same thresholds leaves the scene unchanged.
func (s *Scene) Recolor(th Thresholds) {
	for i := range s.shapes {
		m, ok := s.atlas.Store.Lookup(s.shapes[i].Code)
		s.shapes[i].Fill = fill(s.atlas, m, ok, th)
	}
}

// Fills returns the fill of every feature under th without building a scene.
func Fills(a *atlas.Atlas, th Thresholds) map[region.Code]string {
	out := make(map[region.Code]string, len(a.Features))
	for _, f := range a.Features {
		code := region.Code(f.ID)
		out[code] = Fill(a, code, th)
	}
	return out
}
