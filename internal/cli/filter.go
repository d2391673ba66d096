package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/accessmap/pkg/pipeline"
	"github.com/matzehuels/accessmap/pkg/render"
)

// filterCommand creates the interactive filter command.
func (c *CLI) filterCommand() *cobra.Command {
	var (
		src    sourceFlags
		th     thresholdFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Move the clinic and provider sliders interactively",
		Long: `Open an interactive view of both sliders and the state table.

Arrow keys move the sliders in 5-point steps, shift moves them by 1. On
enter the final thresholds are printed, and written as an svg when
--output is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(&src)
			if err := th.apply(&opts); err != nil {
				return err
			}
			return c.runFilter(cmd.Context(), opts, output, src.noCache)
		},
	}

	src.register(cmd)
	th.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the accepted map as svg")
	return cmd
}

func (c *CLI) runFilter(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinner(ctx, os.Stderr, "Loading map data")
	spin.Start()
	a, err := runner.Load(ctx, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	s, ctrl := pipeline.NewScene(a, opts)
	final, err := tea.NewProgram(NewFilterModel(ctrl), tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if m, ok := final.(FilterModel); !ok || !m.Accepted {
		printInfo("Cancelled")
		return nil
	}

	clinic, provider := ctrl.Labels()
	printKeyValue("clinicMax", clinic)
	printKeyValue("providerMax", provider)

	if output == "" {
		printDetail("accessmap render --clinic-max %s --provider-max %s", clinic, provider)
		return nil
	}
	var svgOpts []render.SVGOption
	if opts.Tooltips {
		svgOpts = append(svgOpts, render.WithTooltips())
	}
	if err := os.WriteFile(output, render.RenderSVG(s, svgOpts...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}
