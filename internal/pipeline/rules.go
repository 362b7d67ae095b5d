package pipeline

import "github.com/matheuskafuri/tradewire/internal/classify"

// Rules is the keyword configuration shared read-only by every pass.
type Rules struct {
	Table  classify.Table
	Urgent classify.UrgentKeywords
}

func NewRules(table classify.Table, urgent classify.UrgentKeywords) Rules {
	return Rules{Table: table, Urgent: urgent}
}

// DefaultCategories is the selection used when the user picks none: every
// table category. Other has to be asked for.
func (r Rules) DefaultCategories() []string {
	return r.Table.Names()
}

// Categories returns every category a headline can be assigned, in table
// order, ending with Other.
func (r Rules) Categories() []string {
	return append(r.Table.Names(), classify.Other)
}
