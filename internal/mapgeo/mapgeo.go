// Package mapgeo classifies world coordinates into named regions, lanes and
// landmarks of the Dota 2 map.
package mapgeo

import (
	"fmt"
	"math"
	"strings"

	"github.com/mfriera/go-dota-fights/internal/model"
)

// nearTowerDistance is the radius within which a position is described as
// near a tower.
const nearTowerDistance = 1200

type point struct {
	x, y float64
}

// Tower positions in world units, measured from replay data.
var towerPositions = map[string]point{
	"radiant_t1_top": {-6336, 1856},
	"radiant_t1_mid": {-360, -6256},
	"radiant_t1_bot": {4904, -6198},
	"radiant_t2_top": {-6464, -872},
	"radiant_t2_mid": {-4640, -4144},
	"radiant_t2_bot": {-3190, -2926},
	"radiant_t3_top": {-6592, -3408},
	"radiant_t3_mid": {-4096, -448},
	"radiant_t3_bot": {-3952, -6112},

	"dire_t1_top": {-5275, 5928},
	"dire_t1_mid": {524, 652},
	"dire_t1_bot": {6269, -2240},
	"dire_t2_top": {-128, 6016},
	"dire_t2_mid": {2496, 2112},
	"dire_t2_bot": {6400, 384},
	"dire_t3_top": {3552, 5776},
	"dire_t3_mid": {3392, -448},
	"dire_t3_bot": {6336, 3032},
}

func distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// Classify maps a world coordinate to a region, lane and human-readable
// location description. The river roughly follows y = 0.8x - 500; positions
// above that line sit on the Dire side.
func Classify(x, y float64) model.MapLocation {
	closestTower := ""
	towerDist := math.Inf(1)
	for name, p := range towerPositions {
		if d := distance(x, y, p.x, p.y); d < towerDist {
			towerDist = d
			closestTower = name
		}
	}

	onDireSide := y > x*0.8-500

	lane := ""
	switch {
	case y > 3500 || (x < -3500 && y > 1500):
		lane = "top"
	case y < -3500 || (x > 3500 && y < -1500):
		lane = "bot"
	case -2500 < x && x < 2500 && -2500 < y && y < 2500:
		lane = "mid"
	}

	var region string
	switch {
	case x < -5000 && y < -4500:
		region = "radiant_base"
	case x > 5000 && y > 4000:
		region = "dire_base"
	case lane == "mid" || (-2000 < x && x < 2000 && -2000 < y && y < 2000):
		if river := y - x*0.8; -1500 < river && river < 1500 {
			region = "river"
		} else {
			region = "mid_lane"
		}
	case lane == "top":
		if onDireSide {
			region = "dire_safelane"
		} else {
			region = "radiant_offlane"
		}
	case lane == "bot":
		if onDireSide {
			region = "dire_offlane"
		} else {
			region = "radiant_safelane"
		}
	case onDireSide:
		region = "dire_jungle"
	default:
		region = "radiant_jungle"
	}

	location := strings.ReplaceAll(region, "_", " ")
	if towerDist < nearTowerDistance {
		parts := strings.Split(closestTower, "_")
		team := strings.ToUpper(parts[0][:1]) + parts[0][1:]
		location = fmt.Sprintf("%s, near %s %s %s",
			strings.ReplaceAll(region, "_", " "),
			team, strings.ToUpper(parts[1]), parts[2])
	}

	return model.MapLocation{
		X:        x,
		Y:        y,
		Region:   region,
		Lane:     lane,
		Location: location,
	}
}

// TowerPosition returns the world position of a named tower.
func TowerPosition(name string) (float64, float64, bool) {
	p, ok := towerPositions[name]
	return p.x, p.y, ok
}
