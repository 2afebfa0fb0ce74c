package draft

import "slices"

// TeamID identifies a team in the roster order
type TeamID string

// PlayerID identifies a draftable player
type PlayerID string

// Phase is the stage a draft run is in
type Phase string

const (
	PhaseFirstRound Phase = "first_round"
	PhaseWaiver     Phase = "waiver"
	PhaseComplete   Phase = "complete"
)

// DefaultMaxRounds is the last round a snake turn may be handed out in
const DefaultMaxRounds = 12

// Turn addresses the team that acts next.
// Index points into PendingTeams during the first round and into Teams afterwards.
type Turn struct {
	Index     int `json:"current_team_index"`
	Direction int `json:"direction"`
	Round     int `json:"current_round"`
}

// State is the durable snapshot of one draft run.
// Absent collections are treated as empty everywhere in this package.
type State struct {
	Teams           []TeamID              `json:"teams"`
	DraftPicks      map[TeamID][]PlayerID `json:"draft_picks"`
	PendingTeams    []TeamID              `json:"pending_teams"`
	CurrentBids     map[TeamID]PlayerID   `json:"current_bids"`
	FinishedTeams   []TeamID              `json:"finished_teams"`
	Phase           Phase                 `json:"draft_phase"`
	Index           int                   `json:"current_team_index"`
	Direction       int                   `json:"direction"`
	Round           int                   `json:"current_round"`
	LotteryMessages []string              `json:"lottery_messages"`
}

// NewState initializes a run for teams listed worst record first.
func NewState(teams []TeamID) *State {
	s := &State{
		Teams:           slices.Clone(teams),
		DraftPicks:      make(map[TeamID][]PlayerID, len(teams)),
		PendingTeams:    slices.Clone(teams),
		CurrentBids:     map[TeamID]PlayerID{},
		FinishedTeams:   []TeamID{},
		Phase:           PhaseFirstRound,
		Index:           0,
		Direction:       1,
		Round:           1,
		LotteryMessages: []string{},
	}
	for _, t := range teams {
		s.DraftPicks[t] = []PlayerID{}
	}
	return s
}

// Turn returns the cursor as a Turn value
func (s *State) Turn() Turn {
	dir := s.Direction
	if dir == 0 {
		dir = 1
	}
	return Turn{Index: s.Index, Direction: dir, Round: s.Round}
}

// CurrentTeam returns the team whose action is expected.
// ok is false when the cursor does not address a team.
func (s *State) CurrentTeam() (TeamID, bool) {
	var order []TeamID
	switch s.Phase {
	case PhaseFirstRound:
		order = s.PendingTeams
	case PhaseWaiver:
		order = s.Teams
	default:
		return "", false
	}
	if s.Index < 0 || s.Index >= len(order) {
		return "", false
	}
	return order[s.Index], true
}

// IsPicked reports whether a player already belongs to some team.
func (s *State) IsPicked(id PlayerID) bool {
	for _, picks := range s.DraftPicks {
		if slices.Contains(picks, id) {
			return true
		}
	}
	return false
}

// PickedPlayers returns every assigned player id
func (s *State) PickedPlayers() map[PlayerID]TeamID {
	out := make(map[PlayerID]TeamID)
	for team, picks := range s.DraftPicks {
		for _, p := range picks {
			out[p] = team
		}
	}
	return out
}

// IsFinished reports whether a team has ended its participation.
func (s *State) IsFinished(team TeamID) bool {
	return slices.Contains(s.FinishedTeams, team)
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (s *State) Clone() *State {
	c := *s
	c.Teams = slices.Clone(s.Teams)
	c.PendingTeams = slices.Clone(s.PendingTeams)
	c.FinishedTeams = slices.Clone(s.FinishedTeams)
	c.LotteryMessages = slices.Clone(s.LotteryMessages)
	c.DraftPicks = clonePicks(s.DraftPicks)
	c.CurrentBids = make(map[TeamID]PlayerID, len(s.CurrentBids))
	for k, v := range s.CurrentBids {
		c.CurrentBids[k] = v
	}
	return &c
}

// Normalize replaces nil collections with empty ones after decoding.
func (s *State) Normalize() {
	if s.DraftPicks == nil {
		s.DraftPicks = map[TeamID][]PlayerID{}
	}
	if s.CurrentBids == nil {
		s.CurrentBids = map[TeamID]PlayerID{}
	}
	if s.PendingTeams == nil {
		s.PendingTeams = []TeamID{}
	}
	if s.FinishedTeams == nil {
		s.FinishedTeams = []TeamID{}
	}
	if s.LotteryMessages == nil {
		s.LotteryMessages = []string{}
	}
	if s.Direction == 0 {
		s.Direction = 1
	}
	if s.Phase == "" {
		s.Phase = PhaseFirstRound
	}
}

// SetTurn moves the cursor.
func (s *State) SetTurn(t Turn) {
	s.Index = t.Index
	s.Direction = t.Direction
	s.Round = t.Round
}

// Apply merges a delta returned by the engine.
func (s *State) Apply(d Delta) {
	if d.DraftPicks != nil {
		s.DraftPicks = d.DraftPicks
	}
	if d.PendingTeams != nil {
		s.PendingTeams = d.PendingTeams
	}
	if d.CurrentBids != nil {
		s.CurrentBids = d.CurrentBids
	}
	if d.LotteryMessages != nil {
		s.LotteryMessages = d.LotteryMessages
	}
	if d.Phase != nil {
		s.Phase = *d.Phase
	}
	if d.Turn != nil {
		s.SetTurn(*d.Turn)
	}
}

func clonePicks(in map[TeamID][]PlayerID) map[TeamID][]PlayerID {
	out := make(map[TeamID][]PlayerID, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
