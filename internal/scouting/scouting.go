// Package scouting aggregates scout comments and organizes the player board.
package scouting

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

var (
	ErrInvalidRank   = errors.New("rank must be one of S, A, B, C, D")
	ErrRatingRange   = errors.New("rating out of range")
	ErrRatingField   = errors.New("rating does not apply to this position")
	ErrEmptyComment  = errors.New("comment text is required")
	ErrUnknownPlayer = errors.New("comment has no player")
)

const (
	MinRating = 1.0
	MaxRating = 5.0
)

var rankValue = map[models.Rank]int{
	models.RankS: 5,
	models.RankA: 4,
	models.RankB: 3,
	models.RankC: 2,
	models.RankD: 1,
}

var valueRank = map[int]models.Rank{
	5: models.RankS,
	4: models.RankA,
	3: models.RankB,
	2: models.RankC,
	1: models.RankD,
}

// NoRank is shown when a player has no graded comments
const NoRank = "-"

type ratingField struct {
	name    string
	get     func(*models.Ratings) *float64
	pitcher bool
	fielder bool
}

var ratingFields = []ratingField{
	{"velocity", func(r *models.Ratings) *float64 { return r.Velocity }, true, false},
	{"command", func(r *models.Ratings) *float64 { return r.Command }, true, false},
	{"breakingBall", func(r *models.Ratings) *float64 { return r.BreakingBall }, true, false},
	{"mechanics", func(r *models.Ratings) *float64 { return r.Mechanics }, true, false},
	{"batControl", func(r *models.Ratings) *float64 { return r.BatControl }, false, true},
	{"power", func(r *models.Ratings) *float64 { return r.Power }, false, true},
	{"speed", func(r *models.Ratings) *float64 { return r.Speed }, false, true},
	{"defense", func(r *models.Ratings) *float64 { return r.Defense }, false, true},
	{"potential", func(r *models.Ratings) *float64 { return r.Potential }, true, true},
}

// ValidateComment checks a comment against the player it is written for.
func ValidateComment(c *models.Comment, player *models.Player) error {
	if player == nil {
		return ErrUnknownPlayer
	}
	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyComment
	}
	if _, ok := rankValue[c.Rank]; !ok {
		return ErrInvalidRank
	}

	pitcher := player.Position == models.PositionPitcher
	for _, f := range ratingFields {
		v := f.get(&c.Ratings)
		if v == nil {
			continue
		}
		if (pitcher && !f.pitcher) || (!pitcher && !f.fielder) {
			return fmt.Errorf("%s for %s: %w", f.name, player.Position, ErrRatingField)
		}
		if *v < MinRating || *v > MaxRating {
			return fmt.Errorf("%s=%.1f: %w", f.name, *v, ErrRatingRange)
		}
	}
	return nil
}

// Averages returns the mean of each rating that at least one comment filled in.
func Averages(comments []models.Comment) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range ratingFields {
		var sum float64
		var n int
		for i := range comments {
			if v := f.get(&comments[i].Ratings); v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			out[f.name] = sum / float64(n)
		}
	}
	return out
}

// RankScore is the mean rank value (S=5 .. D=1); ok is false with no graded comments.
func RankScore(comments []models.Comment) (float64, bool) {
	var sum, n int
	for _, c := range comments {
		if v, ok := rankValue[c.Rank]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// AverageRank maps the mean rank back to the nearest letter, ties to even.
func AverageRank(comments []models.Comment) string {
	score, ok := RankScore(comments)
	if !ok {
		return NoRank
	}
	r, ok := valueRank[int(math.RoundToEven(score))]
	if !ok {
		return NoRank
	}
	return string(r)
}

// DisplayRank buckets a mean rank score for the pick board.
func DisplayRank(score float64) string {
	switch {
	case score >= 4.5:
		return string(models.RankS)
	case score >= 3.5:
		return string(models.RankA)
	case score >= 2.5:
		return string(models.RankB)
	case score >= 1.5:
		return string(models.RankC)
	case score > 0:
		return string(models.RankD)
	default:
		return NoRank
	}
}

// BoardEntry is an available player as shown on the simulation pick board
type BoardEntry struct {
	Player      models.Player `json:"player"`
	RankScore   float64       `json:"rankScore"`
	DisplayRank string        `json:"displayRank"`
}

// Board ranks players by mean scout grade, best first, then by name.
// Ungraded players sort last.
func Board(players []models.Player, comments map[string][]models.Comment) []BoardEntry {
	entries := make([]BoardEntry, 0, len(players))
	for _, p := range players {
		score, _ := RankScore(comments[p.ID])
		entries = append(entries, BoardEntry{
			Player:      p,
			RankScore:   score,
			DisplayRank: DisplayRank(score),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RankScore != entries[j].RankScore {
			return entries[i].RankScore > entries[j].RankScore
		}
		return entries[i].Player.Name < entries[j].Player.Name
	})
	return entries
}
