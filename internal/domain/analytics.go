package domain

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// Chart sizes used by the dashboard.
const (
	TopSettlementsAll    = 10
	TopSettlementsScoped = 5
)

// Summary is the KPI card: how many shelters, how many people fit, and what
// share is marked accessible.
type Summary struct {
	Count         int     `json:"count"`
	TotalCapacity float64 `json:"total_capacity"`
	AccessiblePct float64 `json:"accessible_pct"`
}

// Bucket is one bar of a capacity chart.
type Bucket struct {
	Label    string  `json:"label"`
	Capacity float64 `json:"capacity"`
}

// Summarize computes the KPI card. Unknown capacity adds nothing to the
// total, and only rows labelled LabelYes count as accessible.
func Summarize(rows []DisplayShelter) Summary {
	s := Summary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}
	s.TotalCapacity = lo.SumBy(rows, DisplayShelter.CapacityOrZero)
	accessible := lo.CountBy(rows, func(d DisplayShelter) bool {
		return d.Accessibility == LabelYes
	})
	s.AccessiblePct = float64(accessible) / float64(len(rows)) * 100
	return s
}

// capacityBy sums capacity per non-empty label.
func capacityBy(rows []DisplayShelter, label func(DisplayShelter) string) []Bucket {
	groups := lo.GroupBy(lo.Filter(rows, func(d DisplayShelter, _ int) bool {
		return label(d) != ""
	}), label)
	return lo.MapToSlice(groups, func(k string, members []DisplayShelter) Bucket {
		return Bucket{Label: k, Capacity: lo.SumBy(members, DisplayShelter.CapacityOrZero)}
	})
}

// compareLabels falls back to code points where the collation keys tie, so
// bucket order never depends on map iteration.
func compareLabels(a, b Bucket) int {
	if c := CompareUkrainian(a.Label, b.Label); c != 0 {
		return c
	}
	return cmp.Compare(a.Label, b.Label)
}

// CapacityByType sums capacity per shelter type, ordered by type name.
func CapacityByType(rows []DisplayShelter) []Bucket {
	buckets := capacityBy(rows, func(d DisplayShelter) string { return d.ShelterType })
	slices.SortFunc(buckets, compareLabels)
	return buckets
}

// TopSettlements returns the n settlements with the largest total capacity.
// Equal totals are ordered by name.
func TopSettlements(rows []DisplayShelter, n int) []Bucket {
	buckets := capacityBy(rows, func(d DisplayShelter) string { return d.Settlement })
	slices.SortFunc(buckets, func(a, b Bucket) int {
		if c := cmp.Compare(b.Capacity, a.Capacity); c != 0 {
			return c
		}
		return compareLabels(a, b)
	})
	if n >= 0 && len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

// ChartScope picks the rows and bar count for the top-settlements chart. A
// selected community narrows the chart to it; a settlement selected alone
// narrows it to that settlement's community.
func ChartScope(all []DisplayShelter, community, settlement string) ([]DisplayShelter, int) {
	if isBlank(community) && !isBlank(settlement) {
		if row, ok := lo.Find(all, func(d DisplayShelter) bool { return d.Settlement == settlement }); ok {
			community = row.Community
		}
	}
	if isBlank(community) {
		return all, TopSettlementsAll
	}
	return Search(all, Filter{Community: community}), TopSettlementsScoped
}

// CommunityOptions is the community dropdown: the blank sentinel followed by
// every community in Ukrainian order.
func CommunityOptions(rows []DisplayShelter) []string {
	values := lo.Map(rows, func(d DisplayShelter, _ int) string { return d.Community })
	return append([]string{BlankSentinel}, UniqueSorted(values)...)
}

// SettlementOptions is the settlement dropdown, restricted to the selected
// community when there is one.
func SettlementOptions(rows []DisplayShelter, community string) []string {
	if !isBlank(community) {
		rows = Search(rows, Filter{Community: community})
	}
	values := lo.Map(rows, func(d DisplayShelter, _ int) string { return d.Settlement })
	return append([]string{BlankSentinel}, UniqueSorted(values)...)
}

// TypeOptions lists every shelter type in Ukrainian order.
func TypeOptions(rows []DisplayShelter) []string {
	return UniqueSorted(lo.Map(rows, func(d DisplayShelter, _ int) string { return d.ShelterType }))
}
