package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

var (
	// Adaptive colors for dark/light terminals
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorSecondary = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorText      = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E6E6E6"}
	colorDim       = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent    = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder    = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorActiveBdr = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorTabActive = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorTabBg     = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#2A2A3E"}
	colorSurface   = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1E1E2E"}
	colorStatusBg  = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#16213E"}
	colorStatusFg  = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#ABABAB"}
	colorGreen     = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}
	colorRed       = lipgloss.AdaptiveColor{Light: "#D62F2F", Dark: "#FF5F5F"}
	colorGray      = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#8A8A8A"}
	colorWarn      = lipgloss.AdaptiveColor{Light: "#C77C02", Dark: "#FFB86C"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	headerCountStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Bold(true)

	headerDateStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Align(lipgloss.Right)

	listPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	listPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	previewPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	previewPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorActiveBdr)

	itemTitleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	itemCategoryStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	itemTimeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	urgentStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Bold(true)

	previewTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				MarginBottom(1)

	previewSourceStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	previewBodyStyle = lipgloss.NewStyle().
				Foreground(colorSecondary)

	previewLinkStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true).
				MarginTop(1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorTabActive).
			Padding(0, 1).
			Bold(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Background(colorTabBg).
				Padding(0, 1)

	tabUrgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(colorWarn).
			Padding(0, 1).
			Bold(true)

	tabSeparatorStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Background(colorSurface)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorStatusFg).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorActiveBdr).
			Padding(1, 3)

	digestTitleStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	digestMetaStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	digestBodyStyle = lipgloss.NewStyle().
			Foreground(colorText)
)

// sentimentStyle colours a label the way the dashboard always has:
// green for Bullish, red for Bearish, gray otherwise.
func sentimentStyle(l sentiment.Label) lipgloss.Style {
	switch l.Color() {
	case "green":
		return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	case "red":
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}

func sentimentBadge(r sentiment.Result) string {
	return sentimentStyle(r.Label).Render(r.Label.Symbol() + " " + string(r.Label))
}
