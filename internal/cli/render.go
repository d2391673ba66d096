package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/accessmap/pkg/errors"
	"github.com/matzehuels/accessmap/pkg/pipeline"
	"github.com/matzehuels/accessmap/pkg/render"
)

const defaultOutput = appName // default base path for rendered files

// thresholdFlags are the two slider maxima as typed on the command line.
// Leaving both unset keeps the map gray.
type thresholdFlags struct {
	clinicMax   string
	providerMax string
}

func (f *thresholdFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.clinicMax, "clinic-max", "", "max % of counties with a known clinic (enables coloring)")
	cmd.Flags().StringVar(&f.providerMax, "provider-max", "", "max % of counties with a known provider (enables coloring)")
}

// apply parses the thresholds into opts. A missing maximum keeps its
// slider default of 100.
func (f *thresholdFlags) apply(opts *pipeline.Options) error {
	if f.clinicMax == "" && f.providerMax == "" {
		return nil
	}
	opts.Filtered = true
	opts.ClinicMax, opts.ProviderMax = 100, 100
	var err error
	if f.clinicMax != "" {
		if opts.ClinicMax, err = errors.ParseThreshold("--clinic-max", f.clinicMax); err != nil {
			return err
		}
	}
	if f.providerMax != "" {
		if opts.ProviderMax, err = errors.ParseThreshold("--provider-max", f.providerMax); err != nil {
			return err
		}
	}
	return nil
}

// renderOpts holds the flags of the render command.
type renderOpts struct {
	src      sourceFlags
	th       thresholdFlags
	output   string  // output file (single format) or base path
	formats  string  // comma-separated formats
	width    float64 // output width in pixels
	height   float64 // output height in pixels
	tooltips bool    // embed the hover tooltip script in the svg
	pngScale float64 // rasterization scale for png
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the choropleth to files",
		Long: `Render the choropleth and its companions to files.

Formats: ` + strings.Join(pipeline.FormatNames, ", ") + `. PNG and PDF need rsvg-convert.
Without --clinic-max or --provider-max the map is drawn gray, as on first page load.`,
		Example: `  accessmap render
  accessmap render -f svg,legend,html --clinic-max 60 --provider-max 70
  accessmap render --data states.csv -f json -o out/states.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(&ro.src)
			opts.Formats = parseFormats(ro.formats)
			if err := ro.th.apply(&opts); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("width") {
				opts.Width = ro.width
			}
			if flags.Changed("height") {
				opts.Height = ro.height
			}
			if flags.Changed("tooltips") {
				opts.Tooltips = ro.tooltips
			}
			opts.PNGScale = ro.pngScale
			return c.runRender(cmd.Context(), opts, ro.output, ro.src.noCache)
		},
	}

	ro.src.register(cmd)
	ro.th.register(cmd)
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (default \""+defaultOutput+"\")")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s), comma-separated (default svg)")
	cmd.Flags().Float64Var(&ro.width, "width", 0, "output width (default from config)")
	cmd.Flags().Float64Var(&ro.height, "height", 0, "output height (default from config)")
	cmd.Flags().BoolVar(&ro.tooltips, "tooltips", true, "embed hover tooltips in the svg")
	cmd.Flags().Float64Var(&ro.pngScale, "png-scale", 2, "png rasterization scale")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	for _, f := range opts.Formats {
		if (f == pipeline.FormatPNG || f == pipeline.FormatPDF) && !render.ConverterAvailable() {
			return errors.New(errors.ErrCodeUnsupported, "%s output needs rsvg-convert on PATH", f)
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	logger.Debug("rendering", "topology", opts.Topology, "data", opts.Data, "filter", opts.String())

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	printStats(result.Stats.Regions, result.Stats.Joined, result.Stats.Dropped, result.CacheInfo.RenderHit)

	paths := outputPaths(output, opts.Formats)
	for _, f := range opts.Formats {
		path := paths[f]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, result.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printSuccess("Rendered %d file(s) (%s)", len(opts.Formats), opts.String())
	return nil
}

// outputPaths maps each format to its output file. A single format with an
// explicit output is written there verbatim; otherwise output is a base
// path and each format appends its extension.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

// basePath strips a known format extension from output, defaulting to
// "accessmap".
func basePath(output string) string {
	if output == "" {
		return defaultOutput
	}
	if ext := pipeline.Extension(pipeline.FormatLegend); strings.HasSuffix(output, ext) {
		return strings.TrimSuffix(output, ext)
	}
	for _, f := range pipeline.FormatNames {
		if ext := pipeline.Extension(f); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
