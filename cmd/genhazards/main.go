// Command genhazards generates a mock hazard GeoJSON dataset for development
// and test fixtures. It scatters polygonal hazard zones around a city center,
// merges zones of the same category that fall too close together, and writes
// a FeatureCollection the service can load directly.
//
// Usage:
//
//	go run ./cmd/genhazards -out data/hazards.geojson -count 40 -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/trip-safety-service/internal/domain"
)

// Kraków main square, the demo map's default viewport.
const (
	centerLat = 50.054
	centerLon = 19.9445
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the GeoJSON dataset")
	count := flag.Int("count", 40, "number of hazard zones to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	spreadKm := flag.Float64("spread-km", 8, "radius around the city center to scatter zones in")
	mergeKm := flag.Float64("merge-km", 0.5, "zones of the same category closer than this are merged")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))
	ids := domain.KnownNameIDs()

	zones := make([]zone, 0, *count)
	for i := 0; i < *count; i++ {
		zones = append(zones, randomZone(rng, ids, *spreadKm))
	}

	merged := mergeNearby(zones, *mergeKm*1000)
	log.Printf("generated %d zones, %d after merging", len(zones), len(merged))

	data, err := encodeDataset(merged)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	log.Printf("wrote %s", *out)
	return nil
}

type zone struct {
	nameID int
	center domain.Coordinate
	radius float64 // meters
}

// randomZone places a hazard of a random known category near the center.
func randomZone(rng *rand.Rand, ids []int, spreadKm float64) zone {
	bearing := rng.Float64() * 2 * math.Pi
	distance := rng.Float64() * spreadKm * 1000

	return zone{
		nameID: ids[rng.Intn(len(ids))],
		center: offset(domain.Coordinate{Lat: centerLat, Lon: centerLon}, bearing, distance),
		radius: 100 + rng.Float64()*400,
	}
}

// mergeNearby collapses same-category zones whose centers are closer than
// minDistance, keeping the earlier zone grown to cover both.
func mergeNearby(zones []zone, minDistance float64) []zone {
	var merged []zone
	for _, z := range zones {
		absorbed := false
		for i := range merged {
			if merged[i].nameID != z.nameID {
				continue
			}
			d := domain.Haversine(merged[i].center, z.center)
			if d < minDistance {
				if grown := d + z.radius; grown > merged[i].radius {
					merged[i].radius = grown
				}
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, z)
		}
	}
	return merged
}

// offset moves a coordinate by distance meters along the bearing. Good
// enough at city scale; not a geodesic.
func offset(c domain.Coordinate, bearing, distance float64) domain.Coordinate {
	const metersPerDegreeLat = 111320
	dLat := distance * math.Cos(bearing) / metersPerDegreeLat
	dLon := distance * math.Sin(bearing) / (metersPerDegreeLat * math.Cos(c.Lat*math.Pi/180))
	return domain.Coordinate{Lat: c.Lat + dLat, Lon: c.Lon + dLon}
}

// encodeDataset writes the zones as a GeoJSON FeatureCollection with
// dodecagon rings in [lon, lat] order.
func encodeDataset(zones []zone) ([]byte, error) {
	const vertices = 12

	fc := geojson.FeatureCollection{}
	for _, z := range zones {
		coords := make([]geom.Coord, 0, vertices+1)
		for i := 0; i < vertices; i++ {
			bearing := 2 * math.Pi * float64(i) / vertices
			v := offset(z.center, bearing, z.radius)
			coords = append(coords, geom.Coord{v.Lon, v.Lat})
		}
		coords = append(coords, coords[0])

		polygon, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{coords})
		if err != nil {
			return nil, fmt.Errorf("zone name_id %d: %w", z.nameID, err)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   polygon,
			Properties: map[string]any{"name_id": z.nameID},
		})
	}

	return json.MarshalIndent(&fc, "", "  ")
}
