package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/render"
	"github.com/matzehuels/accessmap/pkg/scene"
)

// NewScene builds the scene and controller described by opts. Unless
// opts.Filtered is set, the scene stays gray.
func NewScene(a *atlas.Atlas, opts Options) (*scene.Scene, *scene.Controller) {
	s := scene.New(a, scene.WithSize(opts.Width, opts.Height))
	c := scene.NewController(s)
	if opts.Filtered {
		c.Set(opts.Thresholds())
	}
	return s, c
}

// Render generates artifacts in the requested formats.
func Render(ctx context.Context, a *atlas.Atlas, opts Options) (map[string][]byte, error) {
	s, c := NewScene(a, opts)

	var svgOpts []render.SVGOption
	if opts.Tooltips {
		svgOpts = append(svgOpts, render.WithTooltips())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(s, svgOpts...)
		case FormatHTML:
			data = render.RenderPage(c)
		case FormatLegend:
			data = render.RenderLegend(a.Scale)
		case FormatJSON:
			var jsonOpts []render.JSONOption
			if opts.Filtered {
				jsonOpts = append(jsonOpts, render.WithJSONThresholds(opts.Thresholds()))
			}
			data, err = render.RenderJSON(s, jsonOpts...)
		case FormatGeoJSON:
			data, err = render.RenderGeoJSON(s)
		case FormatPNG:
			data, err = render.ToPNG(ctx, render.RenderSVG(s), opts.PNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, render.RenderSVG(s))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
