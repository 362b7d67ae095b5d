package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/sentiment"
)

const digestMaxUrgent = 5

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// renderDigest shows the current window broken down by category and
// sentiment, followed by the most recent urgent headlines.
func renderDigest(items []pipeline.ClassifiedHeadline, categories []string, width, height int) string {
	s := pipeline.Summarize(items)

	var lines []string
	lines = append(lines, "", "  "+digestTitleStyle.Render("Market Digest"), "")
	lines = append(lines, "  "+digestMetaStyle.Render(s.String()))
	lines = append(lines, "")

	nameWidth := 0
	for _, c := range categories {
		if w := lipgloss.Width(c); w > nameWidth {
			nameWidth = w
		}
	}

	for _, c := range categories {
		n := s.ByCategory[c]
		if n == 0 {
			continue
		}
		var bull, bear, neutral int
		for _, it := range items {
			if it.Category != c {
				continue
			}
			switch it.Sentiment.Label {
			case sentiment.Bullish:
				bull++
			case sentiment.Bearish:
				bear++
			default:
				neutral++
			}
		}
		row := fmt.Sprintf("  %-*s %3d   ", nameWidth, c, n) +
			sentimentStyle(sentiment.Bullish).Render(fmt.Sprintf("%s%d", sentiment.Bullish.Symbol(), bull)) + "  " +
			sentimentStyle(sentiment.Bearish).Render(fmt.Sprintf("%s%d", sentiment.Bearish.Symbol(), bear)) + "  " +
			sentimentStyle(sentiment.Neutral).Render(fmt.Sprintf("%s%d", sentiment.Neutral.Symbol(), neutral))
		lines = append(lines, digestBodyStyle.Render(row))
	}

	if s.Total == 0 {
		lines = append(lines, "  "+digestMetaStyle.Render(emptyFilterText))
	}

	if s.Urgent > 0 {
		lines = append(lines, "", "  "+urgentStyle.Render("⚠️ Urgent"))
		shown := 0
		for _, it := range items {
			if !it.Urgent {
				continue
			}
			title := truncateStr(it.Title, width-10)
			lines = append(lines, "    "+sentimentStyle(it.Sentiment.Label).Render(it.Sentiment.Label.Symbol())+" "+digestBodyStyle.Render(title))
			shown++
			if shown == digestMaxUrgent {
				break
			}
		}
		if s.Urgent > shown {
			lines = append(lines, "    "+digestMetaStyle.Render(fmt.Sprintf("and %d more", s.Urgent-shown)))
		}
	}

	content := strings.Join(lines, "\n")
	contentLines := strings.Count(content, "\n") + 1
	topPad := (height - contentLines) / 3
	if topPad < 0 {
		topPad = 0
	}

	return strings.Repeat("\n", topPad) + content
}
