package hazard

import (
	"fleetedge/fleet"
	"fleetedge/grid"
)

// Reading is one raw environmental sample from the zone sensor feed.
type Reading struct {
	ZoneID      string  `json:"zone_id"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
}

// ZonePositions is the fixed table of sensor zones on the warehouse floor.
// Readings for zone ids outside this table are dropped.
var ZonePositions = map[string]grid.Position{
	"A": {X: -24, Z: -24},
	"B": {X: 0, Z: 0},
	"C": {X: 24, Z: 24},
}

// Classify maps raw readings to a hazard level. Thresholds match the
// warehouse safety dashboard: danger above 28°C or 1.5g vibration,
// caution above 24°C or 1.0g.
func Classify(temperature, vibration float64) fleet.HazardLevel {
	switch {
	case temperature > 28 || vibration > 1.5:
		return fleet.LevelDanger
	case temperature > 24 || vibration > 1.0:
		return fleet.LevelCaution
	default:
		return fleet.LevelNominal
	}
}

// Zones builds hazard zone records from raw readings, classifying each and
// resolving its floor position. Unknown zone ids are dropped; the second
// return value counts them.
func Zones(readings []Reading) ([]fleet.HazardZone, int) {
	zones := make([]fleet.HazardZone, 0, len(readings))
	dropped := 0
	for _, rd := range readings {
		pos, ok := ZonePositions[rd.ZoneID]
		if !ok {
			dropped++
			continue
		}
		zones = append(zones, fleet.HazardZone{
			ID:          rd.ZoneID,
			Position:    pos,
			Temperature: rd.Temperature,
			Vibration:   rd.Vibration,
			Level:       Classify(rd.Temperature, rd.Vibration),
		})
	}
	return zones, dropped
}
