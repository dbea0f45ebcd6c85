package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleAt(lat, lon float64) []Coordinate {
	return []Coordinate{
		{Lat: lat, Lon: lon},
		{Lat: lat + 0.01, Lon: lon},
		{Lat: lat, Lon: lon + 0.01},
	}
}

func TestFilterHazards(t *testing.T) {
	region := BoundingRegion{MinLat: 50, MaxLat: 51, MinLon: 19, MaxLon: 21}

	catalog := HazardCatalog{Features: []HazardFeature{
		{NameID: 10, Polygon: triangleAt(50.5, 20)},   // severity 10, inside
		{NameID: 8, Polygon: triangleAt(55, 20)},      // severity 8, outside
		{NameID: 3, Polygon: triangleAt(50.2, 19.5)},  // severity 3, inside
		{NameID: 999, Polygon: triangleAt(50.5, 20)},  // unknown id, inside
	}}

	t.Run("severity and region both required", func(t *testing.T) {
		got := FilterHazards(catalog, region, 5)
		require.Len(t, got, 1)
		assert.Equal(t, 10, got[0].NameID)
	})

	t.Run("outside region excluded despite severity", func(t *testing.T) {
		got := FilterHazards(catalog, region, 1)
		require.Len(t, got, 2)
		assert.Equal(t, 10, got[0].NameID)
		assert.Equal(t, 3, got[1].NameID)
	})

	t.Run("below threshold excluded despite location", func(t *testing.T) {
		got := FilterHazards(catalog, region, 4)
		require.Len(t, got, 1)
		assert.Equal(t, 10, got[0].NameID)
	})

	t.Run("unknown name_id never survives", func(t *testing.T) {
		for threshold := 1; threshold <= 10; threshold++ {
			for _, h := range FilterHazards(catalog, region, threshold) {
				assert.NotEqual(t, 999, h.NameID)
			}
		}
	})

	t.Run("empty catalog yields nothing", func(t *testing.T) {
		assert.Empty(t, FilterHazards(HazardCatalog{}, region, 1))
	})

	t.Run("single vertex inside is enough", func(t *testing.T) {
		// Two vertices far outside, one inside the region.
		h := HazardFeature{NameID: 9, Polygon: []Coordinate{
			{Lat: 60, Lon: 30},
			{Lat: 50.5, Lon: 20},
			{Lat: 60, Lon: 31},
		}}
		got := FilterHazards(HazardCatalog{Features: []HazardFeature{h}}, region, 1)
		assert.Len(t, got, 1)
	})

	t.Run("known false negative: hazard surrounding the region", func(t *testing.T) {
		// A huge ring around the region with no vertex inside it. The
		// any-vertex heuristic misses it; this pins the documented trade-off.
		surrounding := HazardFeature{NameID: 10, Polygon: []Coordinate{
			{Lat: 40, Lon: 10},
			{Lat: 40, Lon: 30},
			{Lat: 60, Lon: 30},
			{Lat: 60, Lon: 10},
		}}
		got := FilterHazards(HazardCatalog{Features: []HazardFeature{surrounding}}, region, 1)
		assert.Empty(t, got)
	})
}
