// Command hazardcheck performs integrity checks on a hazard GeoJSON dataset
// before it is published for the trip planner: feature parsing, ring
// geometry, severity coverage, and exclusion-polygon readiness.
//
// Usage:
//
//	go run ./cmd/hazardcheck -dataset data/hazards.geojson
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/couchcryptid/trip-safety-service/internal/adapter/hazards"
	"github.com/couchcryptid/trip-safety-service/internal/domain"
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
	dataset := flag.String("dataset", "", "path to the hazard GeoJSON dataset")
	flag.Parse()

	if *dataset == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataset); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Hazard Dataset Integrity Check ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read dataset: %v\n", err)
		return 1
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := hazards.Parse(data, quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse dataset: %v\n", err)
		return 1
	}

	rawCount, rawErr := countRawFeatures(data)

	phases := []*phase{
		validateParsing(rawCount, rawErr, catalog),
		validateGeometry(catalog),
		validateSeverityCoverage(catalog),
		validateExclusionReadiness(catalog),
	}

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
	fmt.Printf("Features: %d in file, %d parsed\n", rawCount, len(catalog.Features))

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
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}

// countRawFeatures counts features in the file without the lenient parsing
// the service applies, so silently dropped features become visible.
func countRawFeatures(data []byte) (int, error) {
	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return 0, err
	}
	return len(fc.Features), nil
}

// ── Phase 1: Parsing ──
// Every feature in the file should survive the service's parser.

func validateParsing(rawCount int, rawErr error, catalog domain.HazardCatalog) *phase {
	p := &phase{name: "Phase 1: Feature Parsing"}

	if rawErr != nil {
		p.errorf("count raw features: %v", rawErr)
		return p
	}
	if len(catalog.Features) == 0 {
		p.errorf("no features parsed")
	}
	if dropped := rawCount - len(catalog.Features); dropped > 0 {
		p.errorf("%d feature(s) silently dropped by the parser (bad geometry or missing name_id)", dropped)
	}
	return p
}

// ── Phase 2: Geometry ──
// Rings need at least 3 vertices with finite, in-range coordinates.

func validateGeometry(catalog domain.HazardCatalog) *phase {
	p := &phase{name: "Phase 2: Ring Geometry"}

	for i, f := range catalog.Features {
		if len(f.Polygon) < 3 {
			p.errorf("feature %d (name_id %d): only %d vertices", i, f.NameID, len(f.Polygon))
			continue
		}
		for j, c := range f.Polygon {
			if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
				p.errorf("feature %d (name_id %d): vertex %d is not finite", i, f.NameID, j)
			}
			if c.Lat < -90 || c.Lat > 90 {
				p.errorf("feature %d (name_id %d): vertex %d latitude %g out of range", i, f.NameID, j, c.Lat)
			}
			if c.Lon < -180 || c.Lon > 180 {
				p.errorf("feature %d (name_id %d): vertex %d longitude %g out of range", i, f.NameID, j, c.Lon)
			}
		}
	}
	return p
}

// ── Phase 3: Severity Coverage ──
// Every name_id must map to a severity, or the feature never matters.

func validateSeverityCoverage(catalog domain.HazardCatalog) *phase {
	p := &phase{name: "Phase 3: Severity Coverage"}

	for i, f := range catalog.Features {
		if domain.Severity(f.NameID) == 0 {
			p.errorf("feature %d: unknown name_id %d (severity 0, never filtered in)", i, f.NameID)
		}
	}
	return p
}

// ── Phase 4: Exclusion Readiness ──
// Every surviving feature must produce a closed, sanitized exclusion ring.

func validateExclusionReadiness(catalog domain.HazardCatalog) *phase {
	p := &phase{name: "Phase 4: Exclusion Readiness"}

	exclusions := domain.BuildExclusions(catalog.Features)
	if len(exclusions) != len(catalog.Features) {
		p.errorf("%d feature(s) rejected by the exclusion sanitizer", len(catalog.Features)-len(exclusions))
	}

	for i, ring := range exclusions {
		if len(ring) < 4 {
			p.errorf("exclusion %d: closed ring has only %d vertices", i, len(ring))
			continue
		}
		first, last := ring[0], ring[len(ring)-1]
		if first[0] != last[0] || first[1] != last[1] {
			p.errorf("exclusion %d: ring not closed", i)
		}
	}
	return p
}
