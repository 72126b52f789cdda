package domain

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// homoglyphs maps Latin letters to the Cyrillic letters they are mistaken for.
var homoglyphs = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н', 'I': 'І',
	'K': 'К', 'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т', 'X': 'Х',
	'a': 'а', 'b': 'в', 'c': 'с', 'e': 'е', 'h': 'н', 'i': 'і',
	'k': 'к', 'm': 'м', 'o': 'о', 'p': 'р', 't': 'т', 'x': 'х',
}

// Both transformers are stateless and safe to share between goroutines.
var (
	homoglyphMapper = runes.Map(func(r rune) rune {
		if c, ok := homoglyphs[r]; ok {
			return c
		}
		return r
	})

	apostropheMapper = runes.Map(func(r rune) rune {
		switch r {
		case '’', 'ʼ':
			return '\''
		}
		return r
	})
)

// TranslateHomoglyphs replaces Latin look-alikes with their Cyrillic
// counterparts. It is total and idempotent.
func TranslateHomoglyphs(s string) string {
	out, _, err := transform.String(homoglyphMapper, s)
	if err != nil {
		return s
	}
	return out
}

// BaseClean composes decomposed letters (Й, Ї), translates homoglyphs, unifies
// apostrophes, tightens dash spacing and trims.
func BaseClean(s string) string {
	s = norm.NFC.String(s)
	s = TranslateHomoglyphs(s)
	if out, _, err := transform.String(apostropheMapper, s); err == nil {
		s = out
	}
	s = dashSpacesRe.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// StrictClean is BaseClean plus removal of control characters, a truncated
// trailing letter, digits, ASCII quotes and commas, and a single edge dot.
// It is used for every categorical text field.
func StrictClean(s string) string {
	s = BaseClean(s)
	s = controlRe.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	s = trailingLetterRe.ReplaceAllString(s, "")
	s = digitsQuotesRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = edgeDotRe.ReplaceAllString(s, "")
	return collapseSpaces(s)
}

// collapseSpaces turns every whitespace run into a single space and trims.
func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
