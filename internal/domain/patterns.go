package domain

import "regexp"

// Go's \b only understands ASCII word characters, so every boundary next to a
// Cyrillic token is spelled out as (^|[^\p{L}]) and the preceding character is
// put back by the replacement.
var (
	whitespaceRe     = regexp.MustCompile(`[\s\p{Zs}]+`)
	trailingLetterRe = regexp.MustCompile(`[\s\p{Zs}]+\p{L}$`)
	digitsQuotesRe   = regexp.MustCompile(`[0-9",]`)
	edgeDotRe        = regexp.MustCompile(`^\.|\.$`)
	controlRe        = regexp.MustCompile(`[\n\r\t]`)
	dashSpacesRe     = regexp.MustCompile(`[\s\p{Zs}]*-[\s\p{Zs}]*`)

	// numeric coercion
	letterRe      = regexp.MustCompile(`\p{L}`)
	extraQuotesRe = regexp.MustCompile(`["“”„«»?²³]`)

	// community
	communitySuffixRe = regexp.MustCompile(`(?i)\s+(?:ОТГ|СТГ|ТГ)(?:[^\p{L}].*)?$`)

	// settlement
	settlementStreetRe = regexp.MustCompile(`(?i)(?:\s+(?:вул\.|ул\.|пл\.|кв\.).*|вул)\s*$`)
	settlementPrefixRe = regexp.MustCompile(`(?i)^\s*(?:м\.|с\.|смт\.?|пос\.|місто|селище|село)\s*`)
	leadingDotSpaceRe  = regexp.MustCompile(`^[.\s]+`)

	// shelter name
	nameEdgeRe   = regexp.MustCompile(`^[.,\s]+|[.,\s]+$`)
	nameQuotesRe = regexp.MustCompile(`[“”„«»]`)

	// address
	addrNumberOnlyRe  = regexp.MustCompile(`^(?:№\s?)?\d+(?:[.\-]?\d+|[\s-]?\p{L})?$`)
	addrCityPrefixRe  = regexp.MustCompile(`(?i)^.*?[^\p{L}](вул(?:иця)?(?:[^\p{L}].*)?)$`)
	addrLetterDigitRe = regexp.MustCompile(`(\p{L})(\d)`)
	addrDigitLetterRe = regexp.MustCompile(`(\d)(\p{L})`)
	addrStreetRe      = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:вулиця|вул|ул)(?:[.,]\s*|\s+|$)`)
	addrSquareRe      = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:площа|пл\.)\s*`)
	addrAvenueRe      = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:проспект|просп\.|пр\.)\s*`)
	addrBuildingRe    = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:буд|ьуд)[\s.,]*([^\p{L}]|$)`)
	addrBuildingWord  = regexp.MustCompile(`(?i)(^|[^\p{L}])(?:будинок|будівля)([^\p{L}]|$)`)
	addrDupStreetRe   = regexp.MustCompile(`(?:вул\.\s*)+`)
)
