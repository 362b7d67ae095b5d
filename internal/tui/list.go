package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/tradewire/internal/pipeline"
)

const emptyFilterText = "No news matched your filters."

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(h pipeline.ClassifiedHeadline, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	prefix := "  "
	if selected {
		prefix = "> "
	}
	titleWidth := width - 4
	if h.Urgent {
		titleWidth -= 3
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render(prefix + truncateStr(h.Title, titleWidth))
	} else {
		title = itemTitleStyle.Render(prefix + truncateStr(h.Title, titleWidth))
	}
	if h.Urgent {
		title = urgentStyle.Render("⚠️ ") + title
	}

	meta := "  " + sentimentBadge(h.Sentiment) + " " + itemCategoryStyle.Render(h.Category)
	if ago := relativeTime(h.Published); ago != "" {
		meta += " " + itemTimeStyle.Render("· "+ago)
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(items []pipeline.ClassifiedHeadline, cursor int, height int, width int) string {
	if len(items) == 0 {
		return lipglossCenter(emptyFilterText, width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(items) {
		end = len(items)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(items[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
