package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type statusInfo struct {
	filterLabel string
	onlyUrgent  bool
	fetchedAt   time.Time
	interval    time.Duration
	refreshing  bool
	filtering   bool
}

func refreshNotice(interval time.Duration) string {
	return fmt.Sprintf("Auto-refreshes every %d seconds.", int(interval.Round(time.Second).Seconds()))
}

func renderStatusBar(s statusInfo, width int) string {
	left := refreshNotice(s.interval)
	if !s.fetchedAt.IsZero() {
		left += " Updated " + humanize.Time(s.fetchedAt) + "."
	}
	if s.filterLabel != "All" {
		left += " · " + s.filterLabel
	}
	if s.onlyUrgent {
		left += " · urgent only"
	}
	if s.refreshing {
		left += " (refreshing...)"
	}

	right := " f filter  u urgent  r refresh  ? help  q quit "
	if s.filtering {
		right = " ←/→ move  space toggle  a all  esc done "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
