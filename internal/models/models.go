package models

import "time"

// Category is the amateur level a player is drafted from
type Category string

const (
	CategoryHighSchool  Category = "HS"
	CategoryUniversity  Category = "UNIV"
	CategoryIndependent Category = "IND"
)

// Categories lists categories in board display order
var Categories = []Category{CategoryHighSchool, CategoryUniversity, CategoryIndependent}

// Position is a fielding position group
type Position string

const (
	PositionPitcher  Position = "P"
	PositionCatcher  Position = "C"
	PositionInfield  Position = "IF"
	PositionOutfield Position = "OF"
)

// Positions lists positions in board display order
var Positions = []Position{PositionPitcher, PositionCatcher, PositionInfield, PositionOutfield}

// Rank is a scout's draft grade
type Rank string

const (
	RankS Rank = "S" // first-round candidate
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D" // development squad
)

// Team represents a club taking part in the draft.
// Order is last season's standing; the highest Order picks first.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Order       int    `json:"order"`
	FirstColor  string `json:"firstColor"`
	SecondColor string `json:"secondColor"`
}

// Player represents a draft-eligible amateur
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Position     Position `json:"position"`
	Team         string   `json:"team"`
	BatsThrows   string   `json:"batsThrows"`
	Height       int      `json:"height"`
	Weight       int      `json:"weight"`
	Introduction string   `json:"introduction"`
	ScoutComment string   `json:"scoutComment"`
}

// Ratings holds the optional 1.0-5.0 scouting grades. Pitchers use the first
// four, fielders the next four; potential applies to everyone.
type Ratings struct {
	Velocity     *float64 `json:"velocity,omitempty"`
	Command      *float64 `json:"command,omitempty"`
	BreakingBall *float64 `json:"breakingBall,omitempty"`
	Mechanics    *float64 `json:"mechanics,omitempty"`
	BatControl   *float64 `json:"batControl,omitempty"`
	Power        *float64 `json:"power,omitempty"`
	Speed        *float64 `json:"speed,omitempty"`
	Defense      *float64 `json:"defense,omitempty"`
	Potential    *float64 `json:"potential,omitempty"`
}

// Comment is a scouting report left on a player
type Comment struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	Text      string    `json:"text"`
	Rank      Rank      `json:"rank"`
	Ratings   Ratings   `json:"ratings"`
	CreatedAt time.Time `json:"createdAt"`
}

// PlayerDetail bundles a player with scouting aggregates
type PlayerDetail struct {
	Player   Player             `json:"player"`
	Comments []Comment          `json:"comments"`
	Averages map[string]float64 `json:"averages"`
	AvgRank  string             `json:"avgRank"`
}
