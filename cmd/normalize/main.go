// Command normalize runs the shelter normalizer offline. It reads a GeoJSON
// payload from a file or straight from the catalog, writes the canonical
// records as JSON and optionally the display table as a spreadsheet.
//
// Usage:
//
//	go run ./cmd/normalize -in data/shelters.geojson -out out/canonical.json -xlsx out/shelters.xlsx
//	go run ./cmd/normalize -dataset ukryttia -out out/canonical.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/adapter/ckan"
	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/couchcryptid/shelter-data-etl-service/internal/export"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "path to a GeoJSON payload")
	catalog := flag.String("catalog", "https://data.carpathia.gov.ua", "catalog base URL, used with -dataset")
	dataset := flag.String("dataset", "", "catalog dataset ID to fetch instead of -in")
	out := flag.String("out", "", "output path for canonical JSON")
	displayOut := flag.String("display-out", "", "optional output path for the labelled display JSON")
	xlsxOut := flag.String("xlsx", "", "optional output path for the display spreadsheet")
	flag.Parse()

	if (*in == "") == (*dataset == "") || *out == "" {
		flag.Usage()
		return errors.New("need -out and exactly one of -in or -dataset")
	}

	payload, err := readPayload(*in, *catalog, *dataset)
	if err != nil {
		return err
	}

	shelters, stats, err := domain.Normalize(payload)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	display := domain.BuildDisplay(shelters)
	log.Printf("normalized %d shelters", len(shelters))

	if err := writeJSON(*out, shelters); err != nil {
		return fmt.Errorf("writing canonical JSON: %w", err)
	}
	log.Printf("wrote canonical records: %s", *out)

	if *displayOut != "" {
		if err := writeJSON(*displayOut, display); err != nil {
			return fmt.Errorf("writing display JSON: %w", err)
		}
		log.Printf("wrote display rows: %s", *displayOut)
	}

	if *xlsxOut != "" {
		if err := export.SaveXLSX(*xlsxOut, display); err != nil {
			return fmt.Errorf("writing spreadsheet: %w", err)
		}
		log.Printf("wrote spreadsheet: %s", *xlsxOut)
	}

	printStats(stats, display)
	return nil
}

func readPayload(path, catalogURL, datasetID string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger := sharedobs.NewLogger("info", "text")
	client := ckan.NewClient(catalogURL, 30*time.Second, 2, observability.NewUnregisteredMetrics(), logger)
	pkg, err := client.PackageShow(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	resourceURL, err := ckan.ResolveGeoJSONURL(pkg)
	if err != nil {
		return nil, err
	}
	log.Printf("fetching %s", resourceURL)
	return client.Fetch(ctx, resourceURL)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(stats domain.NormalizeStats, display []domain.DisplayShelter) {
	summary := domain.Summarize(display)

	fmt.Println("\n=== Normalization report ===")
	fmt.Printf("Rows: %d\n", stats.Rows)
	fmt.Printf("Total capacity: %g\n", summary.TotalCapacity)
	fmt.Printf("Accessible: %.1f%%\n", summary.AccessiblePct)
	fmt.Printf("Replaced by defaults: area=%d, capacity=%d, accessibility=%d (unknown=%d), geometry=%d\n",
		stats.AreaInvalid, stats.CapacityInvalid, stats.AccessibilityInvalid,
		stats.AccessibilityUnknown, stats.MalformedGeometry)
	fmt.Printf("Mappable: %d\n", len(domain.WithLocation(display)))

	fmt.Println("\nCapacity by type:")
	for _, b := range domain.CapacityByType(display) {
		fmt.Printf("  %-30s %g\n", b.Label, b.Capacity)
	}

	fmt.Printf("\nTop %d settlements:\n", domain.TopSettlementsAll)
	for _, b := range domain.TopSettlements(display, domain.TopSettlementsAll) {
		fmt.Printf("  %-30s %g\n", b.Label, b.Capacity)
	}

	fmt.Printf("\nCommunities: %d\n", len(domain.CommunityOptions(display))-1)
}
