package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/tradewire/internal/pipeline"
)

func renderPreview(h *pipeline.ClassifiedHeadline, width, height, scroll int) string {
	if h == nil {
		return lipglossCenter("Select a headline", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(h.Title)

	var origin []string
	if h.Source != "" {
		origin = append(origin, h.Source)
	}
	if !h.Published.IsZero() {
		origin = append(origin, h.Published.Local().Format("Jan 2, 15:04"))
	}
	source := previewSourceStyle.Render(strings.Join(origin, " · "))

	rows := []string{
		fmt.Sprintf("Category   %s", itemCategoryStyle.Render(h.Category)),
		fmt.Sprintf("Sentiment  %s %s", sentimentBadge(h.Sentiment), itemTimeStyle.Render(fmt.Sprintf("(%+.2f)", h.Sentiment.Polarity))),
	}
	if h.Urgent {
		rows = append(rows, "Urgency    "+urgentStyle.Render("⚠️ Urgent"))
	}
	body := previewBodyStyle.Width(contentWidth).Render(strings.Join(rows, "\n"))

	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + h.URL)

	content := lipgloss.JoinVertical(lipgloss.Left, title, source, "", body, "", link)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}
