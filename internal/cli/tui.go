package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/accessmap/pkg/scene"
)

// Slider steps and bounds, matching the page's range inputs.
const (
	sliderMin   = 0
	sliderMax   = 100
	stepCoarse  = 5
	stepFine    = 1
	sliderWidth = 40
)

var (
	sliderFillStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	sliderTrackStyle = lipgloss.NewStyle().Foreground(colorDim)
	sliderLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// =============================================================================
// FilterModel - Interactive threshold filter
// =============================================================================

// FilterModel is the bubbletea model for moving the two sliders and
// watching the state fills change.
type FilterModel struct {
	Controller *scene.Controller
	Accepted   bool
	Height     int
	Offset     int
}

// NewFilterModel creates a filter model around c.
func NewFilterModel(c *scene.Controller) FilterModel {
	return FilterModel{Controller: c, Height: 15}
}

func (m FilterModel) Init() tea.Cmd {
	return nil
}

func (m FilterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		th := m.Controller.Thresholds()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.Accepted = true
			return m, tea.Quit
		case "left", "h":
			m.Controller.SetClinicMax(clampSlider(th.ClinicMax - stepCoarse))
		case "right", "l":
			m.Controller.SetClinicMax(clampSlider(th.ClinicMax + stepCoarse))
		case "shift+left", "H":
			m.Controller.SetClinicMax(clampSlider(th.ClinicMax - stepFine))
		case "shift+right", "L":
			m.Controller.SetClinicMax(clampSlider(th.ClinicMax + stepFine))
		case "down":
			m.Controller.SetProviderMax(clampSlider(th.ProviderMax - stepCoarse))
		case "up":
			m.Controller.SetProviderMax(clampSlider(th.ProviderMax + stepCoarse))
		case "shift+down":
			m.Controller.SetProviderMax(clampSlider(th.ProviderMax - stepFine))
		case "shift+up":
			m.Controller.SetProviderMax(clampSlider(th.ProviderMax + stepFine))
		case "r":
			m.Controller.Set(scene.DefaultThresholds)
		case "j", "pgdown":
			if m.Offset+m.Height < m.Controller.Scene().Len() {
				m.Offset++
			}
		case "k", "pgup":
			if m.Offset > 0 {
				m.Offset--
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		if m.Offset+m.Height > m.Controller.Scene().Len() {
			m.Offset = max(m.Controller.Scene().Len()-m.Height, 0)
		}
	}
	return m, nil
}

func (m FilterModel) View() string {
	var b strings.Builder
	th := m.Controller.Thresholds()
	clinic, provider := m.Controller.Labels()

	b.WriteString(StyleTitle.Render("Filter States"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ clinic  ↑/↓ provider  shift fine step  j/k scroll  r reset  ⏎ accept  q quit"))
	b.WriteString("\n\n")
	b.WriteString(sliderLine("Clinic access ≤", th.ClinicMax, clinic))
	b.WriteString("\n")
	b.WriteString(sliderLine("Provider access ≤", th.ProviderMax, provider))
	b.WriteString("\n\n")

	shapes := m.Controller.Scene().Shapes()
	end := min(m.Offset+m.Height, len(shapes))
	rows := make([][]string, 0, end-m.Offset)
	for _, sh := range shapes[m.Offset:end] {
		rows = append(rows, []string{
			swatch(sh.Fill),
			sh.Name,
			sh.Info.Travel.String(),
			sh.Info.ClinicAccess.String(),
			sh.Info.ProviderAccess.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("", "State", "Travel %", "Clinic access %", "Provider access %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col >= 2 {
				base = base.Align(lipgloss.Right)
			}
			if idx := m.Offset + row; idx < len(shapes) && shapes[idx].Fill == scene.NeutralFill {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d of %d states colored  [%d-%d/%d]",
		coloredCount(shapes), len(shapes), m.Offset+1, end, len(shapes))))
	return b.String()
}

// sliderLine draws a labeled horizontal bar for a 0-100 value.
func sliderLine(label string, v float64, text string) string {
	filled := int(clampSlider(v) / sliderMax * sliderWidth)
	bar := sliderFillStyle.Render(strings.Repeat("━", filled)) +
		sliderTrackStyle.Render(strings.Repeat("─", sliderWidth-filled))
	return sliderLabelStyle.Render(label) + " " + bar + " " + StyleNumber.Render(text)
}

func clampSlider(v float64) float64 {
	return min(max(v, sliderMin), sliderMax)
}

func coloredCount(shapes []scene.Shape) int {
	n := 0
	for _, sh := range shapes {
		if sh.Fill != scene.NeutralFill {
			n++
		}
	}
	return n
}
