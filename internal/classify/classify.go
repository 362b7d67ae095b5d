package classify

import (
	"fmt"
	"strings"
)

// Other is assigned when no category keyword matches.
const Other = "Other"

// Category is a named set of lexical keywords.
type Category struct {
	Name     string
	Keywords []string
}

// Table is an ordered, read-only list of categories. Order decides ties:
// the first category with a matching keyword wins.
type Table struct {
	categories []Category
}

// NewTable copies cats into a Table, lower-casing keywords and dropping
// blanks. The caller's slices are not retained.
func NewTable(cats []Category) Table {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, Category{
			Name:     strings.TrimSpace(c.Name),
			Keywords: normalizeKeywords(c.Keywords),
		})
	}
	return Table{categories: out}
}

// Names returns the category names in table order, without Other.
func (t Table) Names() []string {
	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of categories.
func (t Table) Len() int {
	return len(t.categories)
}

// Classify returns the first category in table order that has a keyword
// contained in the lower-cased title, or Other.
func Classify(title string, table Table) string {
	lower := strings.ToLower(title)
	for _, c := range table.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, kw) {
				return c.Name
			}
		}
	}
	return Other
}

// aliases maps short CLI flags to names in the default table.
var aliases = map[string]string{
	"macro":     "Macro/Political",
	"political": "Macro/Political",
	"crypto":    "Crypto Regulation",
	"tech":      "Tech",
	"movers":    "Market Movers",
	"market":    "Market Movers",
	"other":     Other,
}

// ResolveCategory maps a CLI value to a category name in table. It accepts
// full names (case-insensitive), Other and the short aliases.
func ResolveCategory(value string, table Table) (string, error) {
	value = strings.TrimSpace(value)
	for _, name := range append(table.Names(), Other) {
		if strings.EqualFold(name, value) {
			return name, nil
		}
	}
	if name, ok := aliases[strings.ToLower(value)]; ok {
		for _, n := range append(table.Names(), Other) {
			if n == name {
				return n, nil
			}
		}
	}
	return "", fmt.Errorf("unknown category %q (valid: %s)", value, strings.Join(append(table.Names(), Other), ", "))
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(kw)
		if strings.TrimSpace(kw) == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
