package domain

// severityTable maps dataset name_id values to a 1–10 severity rating.
//
// The ids are an external contract with the hazard dataset build
// (see cmd/genhazards); they must not be renumbered independently of it.
// Keep this table versioned with the dataset snapshot it annotates.
var severityTable = map[int]int{
	1:  1,  // graffiti
	2:  2,  // vandalism
	3:  3,  // noise complaint
	4:  4,  // reckless driving
	5:  5,  // theft
	6:  6,  // burglary
	7:  7,  // protest
	8:  8,  // major disruption
	9:  9,  // riot
	10: 10, // violent crime
}

// Severity returns the severity rating for a dataset name_id, or 0 when the
// id is unknown. Unknown ids never survive filtering since the minimum
// threshold is 1.
func Severity(nameID int) int {
	return severityTable[nameID]
}

// KnownNameIDs returns the name_id keys of the severity table in no
// particular order. Used by dataset tooling to cross-check coverage.
func KnownNameIDs() []int {
	ids := make([]int, 0, len(severityTable))
	for id := range severityTable {
		ids = append(ids, id)
	}
	return ids
}

// ComputeThreshold maps the 0–100 risk dial to a severity cutoff in [1, 10].
//
//	dial=0   → 10 (most cautious: only the most severe hazards pass)
//	dial=100 → 1  (least cautious: all hazards pass)
//
// The integer arithmetic yields 11 at dial=0, hence the clamp. The inversion
// and the /10+1 offset are load-bearing: the sidebar copy and band boundaries
// are derived from the same numbers.
func ComputeThreshold(dial int) int {
	t := (100-dial)/10 + 1
	if t > 10 {
		return 10
	}
	if t < 1 {
		return 1
	}
	return t
}

// DangerBand is the user-facing classification of a dial position, shown in
// the sidebar next to the slider.
type DangerBand struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var dangerBands = []struct {
	max  int // inclusive upper bound on the inverted dial value
	band DangerBand
}{
	{25, DangerBand{
		Label:       "minor",
		Description: "You will be notified of minor disturbances or higher (vandalism, graffiti).",
	}},
	{50, DangerBand{
		Label:       "moderate",
		Description: "You will be notified of moderate disturbances or higher (reckless driving, noise).",
	}},
	{75, DangerBand{
		Label:       "significant",
		Description: "You will be notified of significant disturbances or higher (protests, major disruptions).",
	}},
	{100, DangerBand{
		Label:       "critical",
		Description: "You will be notified of critical disturbances (life-threatening risks, riots, violent crime).",
	}},
}

// BandForDial returns the danger band for a 0–100 dial value. The dial is
// inverted first so that the left end of the slider (0) lands in the most
// severe band.
func BandForDial(dial int) DangerBand {
	inverted := 100 - dial
	for _, b := range dangerBands {
		if inverted <= b.max {
			return b.band
		}
	}
	return dangerBands[len(dangerBands)-1].band
}
