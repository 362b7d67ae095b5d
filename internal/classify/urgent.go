package classify

import "strings"

// UrgentKeywords is a read-only set of substrings that mark a headline as
// high priority regardless of its category.
type UrgentKeywords struct {
	keywords []string
}

func NewUrgentKeywords(keywords ...string) UrgentKeywords {
	return UrgentKeywords{keywords: normalizeKeywords(keywords)}
}

// List returns a copy of the keywords in configured order.
func (u UrgentKeywords) List() []string {
	return append([]string(nil), u.keywords...)
}

// IsUrgent reports whether any urgent keyword is a substring of the
// lower-cased title.
func IsUrgent(title string, keywords UrgentKeywords) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
