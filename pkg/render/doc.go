// Package render turns a map scene into output documents.
//
// # Formats
//
//   - [RenderSVG]: the choropleth as a standalone SVG, optionally with an
//     embedded hover tooltip script
//   - [RenderLegend]: the color ramp with a five-tick axis and caption
//   - [RenderPage]: a complete HTML page with map, legend and the two
//     threshold sliders
//   - [RenderJSON] and [RenderGeoJSON]: per-region data for other tools
//   - [ToPNG] and [ToPDF]: raster/print conversion of any SVG via
//     rsvg-convert
//
// # Interactivity
//
// The scene model in package scene decides fills; the SVG and HTML outputs
// carry each region's raw access values and scale color as data
// attributes, so the embedded script can recolor on slider input with the
// same inclusive, NaN-rejecting predicate without a server round trip.
//
//	s := scene.New(atlas)
//	c := scene.NewController(s)
//	page := render.RenderPage(c)
package render
