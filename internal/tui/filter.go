package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// filterBar is the category multiselect. Only the defaults start selected;
// the rest (Other) are opt-in.
type filterBar struct {
	categories   []string
	defaults     map[string]bool
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar(categories, defaults []string) filterBar {
	f := filterBar{
		categories: categories,
		defaults:   make(map[string]bool, len(defaults)),
		active:     make(map[string]bool, len(categories)),
	}
	for _, c := range defaults {
		f.defaults[c] = true
		f.active[c] = true
	}
	return f
}

// selectOnly replaces the selection with cats.
func (f *filterBar) selectOnly(cats []string) {
	for _, c := range f.categories {
		f.active[c] = false
	}
	for _, c := range cats {
		f.active[c] = true
	}
}

func (f *filterBar) toggle(category string) {
	f.active[category] = !f.active[category]
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.categories) {
		f.toggle(f.categories[f.filterCursor])
	}
}

// toggleAll clears the selection, or selects everything when nothing is
// selected.
func (f *filterBar) toggleAll() {
	none := len(f.activeCategories()) == 0
	for _, c := range f.categories {
		f.active[c] = none
	}
}

// activeCategories returns the selected categories in display order. An
// empty result means nothing is selected.
func (f *filterBar) activeCategories() []string {
	out := make([]string, 0, len(f.categories))
	for _, c := range f.categories {
		if f.active[c] {
			out = append(out, c)
		}
	}
	return out
}

// activeLabel is "All" when every default category is selected, followed
// by any opt-in categories that are also on.
func (f *filterBar) activeLabel() string {
	active := f.activeCategories()
	if len(active) == 0 {
		return "None"
	}
	var extra []string
	defaults := 0
	for _, c := range active {
		if f.defaults[c] {
			defaults++
		} else {
			extra = append(extra, c)
		}
	}
	if defaults < len(f.defaults) {
		return strings.Join(active, ", ")
	}
	if len(extra) == 0 {
		return "All"
	}
	return "All + " + strings.Join(extra, ", ")
}

func (f *filterBar) render(width int, onlyUrgent bool) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	for i, c := range f.categories {
		style := tabInactiveStyle
		if f.active[c] {
			style = tabActiveStyle
		}
		label := c
		if f.filterMode && i == f.filterCursor {
			label = "[" + c + "]"
		}
		parts = append(parts, style.Render(label))
	}

	if onlyUrgent {
		parts = append(parts, tabUrgentStyle.Render("⚠️ Urgent only"))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
