package domain

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// UkrainianAlphabet is the collation order used for every sorted list.
const UkrainianAlphabet = "АБВГҐДЕЄЖЗИІЇЙКЛМНОПРСТУФХЦЧШЩЬЮЯ"

// unmappedRank places anything outside the alphabet after every letter.
const unmappedRank = 999

var alphabetRank = func() map[rune]int {
	ranks := make(map[rune]int)
	for i, r := range []rune(UkrainianAlphabet) {
		ranks[r] = i
	}
	return ranks
}()

// SortKey maps each upper-cased character to its alphabet position.
func SortKey(s string) []int {
	upper := []rune(strings.ToUpper(s))
	key := make([]int, len(upper))
	for i, r := range upper {
		rank, ok := alphabetRank[r]
		if !ok {
			rank = unmappedRank
		}
		key[i] = rank
	}
	return key
}

// CompareUkrainian orders two strings by SortKey. A shorter key that is a
// prefix of the other sorts first.
func CompareUkrainian(a, b string) int {
	return slices.Compare(SortKey(a), SortKey(b))
}

// SortUkrainian sorts in place. Equal keys keep their relative order.
func SortUkrainian(values []string) {
	slices.SortStableFunc(values, CompareUkrainian)
}

// UniqueSorted drops empty values, deduplicates and sorts in Ukrainian order.
func UniqueSorted(values []string) []string {
	out := lo.Uniq(lo.Compact(values))
	SortUkrainian(out)
	return out
}
