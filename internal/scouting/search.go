package scouting

import (
	"strings"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

// positionWords maps the Japanese position names scouts search with
var positionWords = map[string]models.Position{
	"投手":  models.PositionPitcher,
	"捕手":  models.PositionCatcher,
	"内野手": models.PositionInfield,
	"外野手": models.PositionOutfield,
}

// Filter keeps players whose name or amateur team contains q. A position word
// matches its code exactly; any other query also matches position codes by substring.
func Filter(players []models.Player, q string) []models.Player {
	q = strings.TrimSpace(q)
	if q == "" {
		return players
	}
	needle := strings.ToLower(q)
	code, isWord := positionWords[q]

	var out []models.Player
	for _, p := range players {
		match := strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Team), needle)
		if !match {
			if isWord {
				match = strings.EqualFold(string(p.Position), string(code))
			} else {
				match = strings.Contains(strings.ToLower(string(p.Position)), needle)
			}
		}
		if match {
			out = append(out, p)
		}
	}
	return out
}

// PositionGroup is one position column inside a category
type PositionGroup struct {
	Position models.Position `json:"id"`
	Players  []models.Player `json:"players"`
}

// CategoryGroup is a category section of the player index
type CategoryGroup struct {
	Category  models.Category `json:"id"`
	Positions []PositionGroup `json:"positions"`
}

// Group arranges players by category then position in display order,
// dropping empty sections.
func Group(players []models.Player) []CategoryGroup {
	buckets := make(map[models.Category]map[models.Position][]models.Player)
	for _, p := range players {
		if buckets[p.Category] == nil {
			buckets[p.Category] = make(map[models.Position][]models.Player)
		}
		buckets[p.Category][p.Position] = append(buckets[p.Category][p.Position], p)
	}

	var out []CategoryGroup
	for _, cat := range models.Categories {
		byPos, ok := buckets[cat]
		if !ok {
			continue
		}
		group := CategoryGroup{Category: cat}
		for _, pos := range models.Positions {
			if ps, ok := byPos[pos]; ok {
				group.Positions = append(group.Positions, PositionGroup{Position: pos, Players: ps})
			}
		}
		out = append(out, group)
	}
	return out
}
