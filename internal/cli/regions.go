package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/pipeline"
	"github.com/matzehuels/accessmap/pkg/scene"
)

// regionsCommand creates the regions command.
func (c *CLI) regionsCommand() *cobra.Command {
	var (
		src sourceFlags
		th  thresholdFlags
	)

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List every region with its metrics and fill",
		Long: `List every region of the map with its three metrics and the fill it would
get under the given thresholds, followed by the join report: rows read,
rows joined, rows dropped for unknown names, and non-numeric cells.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(&src)
			if err := th.apply(&opts); err != nil {
				return err
			}
			return c.runRegions(cmd.Context(), opts, src.noCache)
		},
	}

	src.register(cmd)
	th.register(cmd)
	return cmd
}

func (c *CLI) runRegions(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	a, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d regions", len(a.Features)))

	s, _ := pipeline.NewScene(a, opts)
	fmt.Println(regionTable(s))
	fmt.Println()
	printReport(a)
	return nil
}

// regionTable renders the scene's regions in draw order.
func regionTable(s *scene.Scene) string {
	shapes := s.Shapes()
	rows := make([][]string, 0, len(shapes))
	for _, sh := range shapes {
		rows = append(rows, []string{
			swatch(sh.Fill),
			string(sh.Code),
			sh.Name,
			sh.Info.Travel.String(),
			sh.Info.ClinicAccess.String(),
			sh.Info.ProviderAccess.String(),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "Code", "Region", "Travel %", "Clinic access %", "Provider access %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col >= 3 {
				base = base.Align(lipgloss.Right)
				if row < len(shapes) && rows[row][col] == "N/A" {
					return base.Foreground(colorDim)
				}
			}
			return base
		}).
		Render()
}

// printReport prints the join report of an atlas.
func printReport(a *atlas.Atlas) {
	r := a.Report
	printKeyValue("Rows", fmt.Sprint(r.Rows))
	printKeyValue("Joined", fmt.Sprint(r.Joined))
	printKeyValue("Non-numeric", fmt.Sprint(r.NonNumeric))
	lo, hi := a.Scale.Domain()
	printKeyValue("Travel domain", fmt.Sprintf("%.1f%% to %.1f%%", lo, hi))
	if len(r.Dropped) > 0 {
		printWarning("Dropped %d row(s) with unknown names: %s", len(r.Dropped), strings.Join(r.Dropped, ", "))
	}
}
