package domain

import "github.com/samber/lo"

// BlankSentinel is the dropdown value meaning "no constraint".
const BlankSentinel = " "

// Filter is the query the dashboard sends. Zero values and the blank sentinel
// leave a dimension unconstrained.
type Filter struct {
	Settlement     string
	Community      string
	Types          []string
	MaxCapacity    *float64
	AccessibleOnly bool
}

func isBlank(v string) bool {
	return v == "" || v == BlankSentinel
}

// predicates returns only the active constraints.
func (f Filter) predicates() []func(DisplayShelter) bool {
	var preds []func(DisplayShelter) bool
	if !isBlank(f.Settlement) {
		preds = append(preds, func(d DisplayShelter) bool { return d.Settlement == f.Settlement })
	}
	if !isBlank(f.Community) {
		preds = append(preds, func(d DisplayShelter) bool { return d.Community == f.Community })
	}
	if len(f.Types) > 0 {
		types := lo.Associate(f.Types, func(t string) (string, struct{}) { return t, struct{}{} })
		preds = append(preds, func(d DisplayShelter) bool {
			_, ok := types[d.ShelterType]
			return ok
		})
	}
	if f.AccessibleOnly {
		preds = append(preds, func(d DisplayShelter) bool { return d.Accessibility == LabelYes })
	}
	if f.MaxCapacity != nil {
		limit := *f.MaxCapacity
		// Unknown capacity cannot exceed the bound.
		preds = append(preds, func(d DisplayShelter) bool { return d.Capacity == nil || *d.Capacity <= limit })
	}
	return preds
}

// Matches reports whether a row satisfies every active constraint.
func (f Filter) Matches(d DisplayShelter) bool {
	for _, p := range f.predicates() {
		if !p(d) {
			return false
		}
	}
	return true
}

// Search returns the rows matching all active constraints, in table order.
// The input slice is not modified.
func Search(rows []DisplayShelter, f Filter) []DisplayShelter {
	preds := f.predicates()
	return lo.Filter(rows, func(d DisplayShelter, _ int) bool {
		for _, p := range preds {
			if !p(d) {
				return false
			}
		}
		return true
	})
}

// WithLocation keeps the rows that can be placed on a map.
func WithLocation(rows []DisplayShelter) []DisplayShelter {
	return lo.Filter(rows, func(d DisplayShelter, _ int) bool {
		return d.HasLocation()
	})
}
