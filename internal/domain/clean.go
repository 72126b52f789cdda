package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Column applies a per-value cleaner to a whole column.
func Column[T any](values []string, clean func(string) T) []T {
	return lo.Map(values, func(v string, _ int) T {
		return clean(v)
	})
}

// CleanCommunity canonicalizes an amalgamated community (OTG) name.
func CleanCommunity(s string) string {
	s = StrictClean(s)
	s = communitySuffixRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if fixed, ok := communityFixes[s]; ok {
		s = fixed
	}
	return strings.TrimSpace(s)
}

// CleanSettlement canonicalizes a settlement name: street references and
// settlement-type prefixes are dropped, abbreviations expanded and known
// misspellings corrected.
func CleanSettlement(s string) string {
	s = StrictClean(s)
	s = settlementStreetRe.ReplaceAllString(s, "")
	s = settlementPrefixRe.ReplaceAllString(s, "")
	s = leadingDotSpaceRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if full, ok := settlementAbbreviations[s]; ok {
		s = full
	}
	for _, fix := range settlementTypos {
		s = fix.pattern.ReplaceAllString(s, fix.replacement)
	}
	return strings.TrimSpace(s)
}

// CleanShelterName tidies a free-text shelter name. Only the first letter is
// upper-cased; the rest keeps its source capitalization.
func CleanShelterName(s string) string {
	s = BaseClean(s)
	s = collapseSpaces(s)
	s = nameEdgeRe.ReplaceAllString(s, "")
	s = nameQuotesRe.ReplaceAllString(s, `"`)
	s = upperFirst(s)
	return strings.TrimSpace(s)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// CleanCategory is used for shelter type, building kind and district.
func CleanCategory(s string) string {
	return StrictClean(s)
}

// CleanAddress restructures a free-form address into "вул. Назва, N" shape
// where the source allows it. Bare numbers carry no street and become
// AddressAbsent.
func CleanAddress(s string) string {
	s = controlRe.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	s = edgeDotRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = nameQuotesRe.ReplaceAllString(s, `"`)

	if addrNumberOnlyRe.MatchString(s) {
		return AddressAbsent
	}

	// Drop a city or district that leaked in front of the street.
	s = addrCityPrefixRe.ReplaceAllString(s, "${1}")

	s = addrLetterDigitRe.ReplaceAllString(s, "${1}, ${2}")
	s = addrDigitLetterRe.ReplaceAllString(s, "${1} ${2}")

	if fixed, ok := addressFixes[s]; ok {
		s = fixed
	}

	s = addrStreetRe.ReplaceAllString(s, "${1}вул. ")
	s = addrSquareRe.ReplaceAllString(s, "${1}пл. ")
	s = addrAvenueRe.ReplaceAllString(s, "${1}пр. ")

	s = addrBuildingWord.ReplaceAllString(s, "${1}буд.${2}")
	s = addrBuildingRe.ReplaceAllString(s, "${1}буд. ${2}")

	s = addrDupStreetRe.ReplaceAllString(s, "вул. ")
	return collapseSpaces(s)
}

// CleanAccessibility reads the accessibility flag. known is false when the
// source carried no value at all; the flag itself then reads false.
func CleanAccessibility(v RawValue) (accessible, known bool) {
	if v.IsNull() {
		return false, false
	}
	return CoerceBoolean(StrictClean(v.Text())), true
}
