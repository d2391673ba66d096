// Package pkg holds the accessmap libraries.
//
// # Overview
//
// accessmap joins a U.S. states topology with a per-state table of abortion
// access metrics and draws a choropleth of out-of-state travel. Two sliders
// gray out states whose share of counties with a known clinic or
// provider exceeds a maximum.
//
// # Architecture
//
//	topology (TopoJSON)      state table (CSV)
//	         ↓                      ↓
//	    [topo]              [stats] + [region]
//	         ↘                    ↙
//	           [loader] → [atlas] (+ [colorscale])
//	                        ↓
//	                     [scene] (shapes, fills, hover, filter controller)
//	                        ↓
//	                     [render] (svg, legend, html page, json, geojson, png, pdf)
//
// [pipeline] runs load → render with [cache] in front of both stages; the
// CLI and the HTTP server share it. [httputil] fetches remote resources
// with retry, [observability] exposes pipeline, cache and fetch hooks, and
// [errors] carries machine-readable codes through every layer.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Formats:     []string{pipeline.FormatSVG, pipeline.FormatLegend},
//	    Filtered:    true,
//	    ClinicMax:   60,
//	    ProviderMax: 70,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("map.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
package pkg
