package topo

import (
	"github.com/twpayne/go-geom/encoding/geojson"
)

// EncodeFeatureCollection encodes features as a GeoJSON FeatureCollection.
// props, if non-nil, supplies the properties of each feature.
func EncodeFeatureCollection(features []Feature, props func(Feature) map[string]any) ([]byte, error) {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(features)),
	}
	for _, f := range features {
		gf := &geojson.Feature{
			ID:       f.ID,
			Geometry: f.Geometry,
		}
		if props != nil {
			gf.Properties = props(f)
		} else if f.Name != "" {
			gf.Properties = map[string]any{"name": f.Name}
		}
		fc.Features = append(fc.Features, gf)
	}
	return fc.MarshalJSON()
}
