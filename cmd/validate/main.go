// Command validate runs the normalizer over a GeoJSON payload and checks the
// guarantees the service relies on: one record per feature, clean categorical
// text, consistent coordinates and display rows, deterministic output, and
// idempotent homoglyph translation.
//
// Usage:
//
//	go run ./cmd/validate -in data/shelters.geojson
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	in := flag.String("in", "", "path to a GeoJSON payload")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	payload, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read payload: %v\n", err)
		os.Exit(1)
	}
	if code := run(payload); code != 0 {
		os.Exit(code)
	}
}

func run(payload []byte) int {
	fmt.Println("=== Shelter Normalization Validation ===")

	fc, err := domain.ParseFeatureCollection(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse payload: %v\n", err)
		return 1
	}
	shelters, stats := domain.NormalizeShelters(fc.Features)
	display := domain.BuildDisplay(shelters)

	phases := runPhases(fc, shelters, display)

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d, shelters: %d, substitutions: area=%d capacity=%d accessibility=%d geometry=%d\n",
		len(fc.Features), len(shelters), stats.AreaInvalid, stats.CapacityInvalid,
		stats.AccessibilityInvalid, stats.MalformedGeometry)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func runPhases(fc domain.FeatureCollection, shelters []domain.Shelter, display []domain.DisplayShelter) []*phase {
	return []*phase{
		validateCardinality(fc, shelters, display),
		validateText(shelters),
		validateCoordinates(shelters, display),
		validateDeterminism(fc, shelters),
		validateHomoglyphs(fc),
		validateOptions(display),
	}
}

// ── Phase 1: Cardinality ──

func validateCardinality(fc domain.FeatureCollection, shelters []domain.Shelter, display []domain.DisplayShelter) *phase {
	p := &phase{name: "Phase 1: Cardinality"}
	if len(shelters) != len(fc.Features) {
		p.errorf("features=%d, shelters=%d", len(fc.Features), len(shelters))
	}
	if len(display) != len(shelters) {
		p.errorf("shelters=%d, display rows=%d", len(shelters), len(display))
	}
	return p
}

// ── Phase 2: Text hygiene ──

func validateText(shelters []domain.Shelter) *phase {
	p := &phase{name: "Phase 2: Text hygiene"}
	for i, s := range shelters {
		fields := map[string]string{
			"name": s.Name, "address": s.Address, "community": s.Community,
			"settlement": s.Settlement, "district": s.District,
			"shelter_type": s.ShelterType, "building_kind": s.BuildingKind,
		}
		for field, v := range fields {
			if strings.ContainsAny(v, "\n\r\t") {
				p.errorf("row %d: %s %q contains control characters", i, field, v)
			}
			if v != strings.TrimSpace(v) {
				p.errorf("row %d: %s %q has surrounding whitespace", i, field, v)
			}
		}
		for field, v := range map[string]string{
			"community": s.Community, "settlement": s.Settlement, "district": s.District,
			"shelter_type": s.ShelterType, "building_kind": s.BuildingKind,
		} {
			if strings.ContainsAny(v, `0123456789",`) {
				p.errorf("row %d: %s %q still holds digits, quotes or commas", i, field, v)
			}
		}
	}
	return p
}

// ── Phase 3: Coordinates and display ──

func validateCoordinates(shelters []domain.Shelter, display []domain.DisplayShelter) *phase {
	p := &phase{name: "Phase 3: Coordinates and display"}
	labels := map[string]bool{domain.LabelYes: true, domain.LabelNo: true, domain.LabelUnknown: true}
	for i, s := range shelters {
		if (s.Longitude == nil) != (s.Latitude == nil) {
			p.errorf("row %d: only one coordinate is set", i)
		}
		if i >= len(display) {
			continue
		}
		d := display[i]
		if s.HasLocation() == (d.MapLink == "") {
			p.errorf("row %d: map link %q disagrees with coordinates", i, d.MapLink)
		}
		if !labels[d.Accessibility] {
			p.errorf("row %d: unexpected accessibility label %q", i, d.Accessibility)
		}
	}
	return p
}

// ── Phase 4: Determinism ──

func validateDeterminism(fc domain.FeatureCollection, first []domain.Shelter) *phase {
	p := &phase{name: "Phase 4: Determinism"}
	second, _ := domain.NormalizeShelters(fc.Features)
	if diff := cmp.Diff(first, second); diff != "" {
		p.errorf("two runs differ (-first +second):\n%s", diff)
	}
	return p
}

// ── Phase 5: Homoglyph idempotence ──

func validateHomoglyphs(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 5: Homoglyph idempotence"}
	for i, f := range fc.Features {
		for _, v := range []domain.RawValue{
			f.Properties.Name, f.Properties.OTG, f.Properties.City, f.Properties.Adress, f.Properties.Type,
		} {
			once := domain.TranslateHomoglyphs(v.Text())
			if twice := domain.TranslateHomoglyphs(once); twice != once {
				p.errorf("feature %d: %q is not stable under translation", i, v.Text())
			}
		}
	}
	return p
}

// ── Phase 6: Dropdown options ──

func validateOptions(display []domain.DisplayShelter) *phase {
	p := &phase{name: "Phase 6: Dropdown options"}
	for name, opts := range map[string][]string{
		"communities": domain.CommunityOptions(display),
		"settlements": domain.SettlementOptions(display, ""),
	} {
		if len(opts) == 0 || opts[0] != domain.BlankSentinel {
			p.errorf("%s: blank sentinel is not first", name)
			continue
		}
		rest := opts[1:]
		if len(lo.Uniq(rest)) != len(rest) {
			p.errorf("%s: duplicate options", name)
		}
		for i := 1; i < len(rest); i++ {
			if domain.CompareUkrainian(rest[i-1], rest[i]) > 0 {
				p.errorf("%s: %q sorts after %q", name, rest[i-1], rest[i])
			}
		}
	}
	return p
}
