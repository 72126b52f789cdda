// Package domain models the Transcarpathian civil-defence shelter dataset and
// the rules that turn its raw export into a clean, query-ready table.
//
// # Data Source
//
// The regional open-data portal (a CKAN catalog) publishes the shelter
// register as a package with several distributable resources. The service
// picks the resource whose format is "geojson" and downloads a
// FeatureCollection. Each feature carries a property bag and a Point geometry:
//
//	{"type":"Feature",
//	 "properties":{"Name":"...","OTG":"...","City":"...","Rajon":"...",
//	               "Area":"120,5","Adress":"...","Type":"...","TypeZs":"...",
//	               "People":"150","Bezbar":"true","Number":"17"},
//	 "geometry":{"type":"Point","coordinates":[22.29, 48.62]}}
//
// # Source Data Conventions
//
// The register is typed in by hand across dozens of communities, so most text
// fields are noisy:
//
//	Homoglyphs:   Latin A, B, C, E, H, I, K, M, O, P, T, X typed in place of
//	              the Cyrillic letters they look like ("Ужгоpод" with Latin p).
//	Suffixes:     community names end in "ТГ", "ОТГ" or "СТГ";
//	              settlement names carry "м.", "с.", "смт" prefixes or leak a
//	              street ("Чоп вул. Миру").
//	Truncation:   a trailing single-letter token ("Назва Б").
//	Numerics:     "1 234", "12,5", "150 осіб", "“200”".
//	Booleans:     "true"/"false" strings, JSON booleans, or nothing at all.
//	Coordinates:  [lon, lat]; occasionally strings, occasionally missing.
//
// # Pipeline
//
// Normalization is a fixed sequence of pure, per-field transforms
// ([StrictClean], [CleanCommunity], [CleanSettlement], [CleanShelterName],
// [CleanAddress], [CoerceNumeric], [CoerceBoolean], [ExtractCoordinates])
// orchestrated by [NormalizeShelters]. A value that cannot be coerced becomes
// nil (numerics) or false (booleans); the batch never fails because of one row.
//
// [BuildDisplay] adds presentation fields (map link, Ukrainian labels) on top
// of the canonical table, and [Search], [UniqueSorted] and the analytics
// helpers serve the dashboard filters using Ukrainian alphabet collation
// ([CompareUkrainian]).
//
// # Accessibility
//
// The canonical "accessible" flag is a strict boolean. A missing or
// unparseable flag reads false, which biases inclusiveness percentages
// downward. [Shelter.AccessibleKnown] records whether the source carried a
// value at all so the display layer can say "Невідомо" instead of "Ні".
package domain
