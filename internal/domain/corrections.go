package domain

import "regexp"

// Correction tables for values the generic rules cannot repair. They are
// process-wide constants: built once at package init and never mutated.

// communityFixes maps cleaned community names to their registered spelling.
var communityFixes = map[string]string{
	"Велико-Березнянська": "Великоберезнянська",
	"Батьовська":          "Батівська",
}

// settlementAbbreviations expands abbreviated settlement names (exact match,
// applied after prefixes and stray dots are gone).
var settlementAbbreviations = map[string]string{
	"В.Бичків":     "Великий Бичків",
	"В. Бичків":    "Великий Бичків",
	"Вел.Бичків":   "Великий Бичків",
	"В.Березний":   "Великий Березний",
	"В. Березний":  "Великий Березний",
	"Вел.Березний": "Великий Березний",
	"В.Лучки":      "Великі Лучки",
	"В.Ком'яти":    "Великі Ком'яти",
	"В.Водяне":     "Верхнє Водяне",
	"В.Ворота":     "Верхні Ворота",
	"Н.Ворота":     "Нижні Ворота",
	"Н.Селище":     "Нижнє Селище",
	"Н.Апша":       "Нижня Апша",
	"Н.Солотвино":  "Нижнє Солотвино",
	"Н.Давидково":  "Нове Давидково",
}

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

// settlementTypos are substring fixes for misspelled or Russified names,
// applied in order.
var settlementTypos = []substitution{
	{regexp.MustCompile(`Ужгрод`), "Ужгород"},
	{regexp.MustCompile(`Мукачеве`), "Мукачево"},
	{regexp.MustCompile(`Берегово`), "Берегове"},
	{regexp.MustCompile(`Виноградово`), "Виноградів"},
	{regexp.MustCompile(`Рахово`), "Рахів"},
	{regexp.MustCompile(`Тячево`), "Тячів"},
	{regexp.MustCompile(`Иршава`), "Іршава"},
	{regexp.MustCompile(`^Сваляви$`), "Свалява"},
	{regexp.MustCompile(`^Перечина$`), "Перечин"},
	{regexp.MustCompile(`Міжгіря`), "Міжгір'я"},
	{regexp.MustCompile(`Солотвина`), "Солотвино"},
	{regexp.MustCompile(`Кольчіно`), "Кольчино"},
	{regexp.MustCompile(`Буштина`), "Буштино"},
	{regexp.MustCompile(`Воловэць`), "Воловець"},
}

// addressFixes replaces known-bad address strings wholesale. Keys are in the
// intermediate form the address cleaner has produced at that stage.
var addressFixes = map[string]string{
	"-":               AddressAbsent,
	"відсутня":        AddressAbsent,
	"немає":           AddressAbsent,
	"без адреси":      AddressAbsent,
	"центр села":      AddressAbsent,
	"Ужгород":         AddressAbsent,
	"Мукачево":        AddressAbsent,
	"Миру, 1 Миру, 1": "вул Миру, 1",
	"площа Народна, 4 пл Народна":    "площа Народна, 4",
	"вул Духновича, 2 буд, 2 поверх": "вул Духновича, 2",
}

// AddressAbsent replaces addresses that carry no street information.
const AddressAbsent = "Відсутня"
