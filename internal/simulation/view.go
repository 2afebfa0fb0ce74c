package simulation

import (
	"fmt"
	"time"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/scouting"
)

var timeNow = time.Now

// TeamBoard is one team's column on the simulation screen
type TeamBoard struct {
	Team     models.Team     `json:"team"`
	Picks    []models.Player `json:"picks"`
	Pending  bool            `json:"pending"`
	HasBid   bool            `json:"hasBid"`
	Finished bool            `json:"finished"`
}

// View is everything needed to render the current turn of a run
type View struct {
	RunID           string                `json:"runId"`
	Phase           draft.Phase           `json:"phase"`
	Round           int                   `json:"round"`
	CurrentTeam     *models.Team          `json:"currentTeam,omitempty"`
	Available       []scouting.BoardEntry `json:"available"`
	Teams           []TeamBoard           `json:"teams"`
	LotteryMessages []string              `json:"lotteryMessages"`
}

// TeamResult lists a team's picks in draft order
type TeamResult struct {
	Team    models.Team     `json:"team"`
	Players []models.Player `json:"players"`
}

// Result is the final board of a run
type Result struct {
	RunID    string       `json:"runId"`
	Complete bool         `json:"complete"`
	Teams    []TeamResult `json:"teams"`
	MaxPicks int          `json:"maxPicks"`
}

type catalog struct {
	teams   map[string]models.Team
	ordered []models.Team
	players map[string]models.Player
	list    []models.Player
}

func (s *Service) catalog() (*catalog, error) {
	teams, err := s.store.ListTeams()
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	players, err := s.store.ListPlayers()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	c := &catalog{
		teams:   make(map[string]models.Team, len(teams)),
		ordered: teams,
		players: make(map[string]models.Player, len(players)),
		list:    players,
	}
	for _, t := range teams {
		c.teams[t.ID] = t
	}
	for _, p := range players {
		c.players[p.ID] = p
	}
	return c, nil
}

func (c *catalog) team(id draft.TeamID) models.Team {
	if t, ok := c.teams[string(id)]; ok {
		return t
	}
	return models.Team{ID: string(id), Name: string(id)}
}

func (c *catalog) picks(ids []draft.PlayerID) []models.Player {
	out := make([]models.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.players[string(id)]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, models.Player{ID: string(id), Name: string(id)})
	}
	return out
}

// View describes the acting team, the pick board and every team's picks.
// Players bid on during an unresolved lottery remain available.
func (s *Service) View(runID string) (*View, error) {
	st, err := s.load(runID)
	if err != nil {
		return nil, err
	}
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}
	comments, err := s.store.AllComments()
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	v := &View{
		RunID:           runID,
		Phase:           st.Phase,
		Round:           st.Round,
		LotteryMessages: st.LotteryMessages,
	}
	if acting, ok := st.CurrentTeam(); ok {
		t := c.team(acting)
		v.CurrentTeam = &t
	}

	var available []models.Player
	for _, p := range c.list {
		if !st.IsPicked(draft.PlayerID(p.ID)) {
			available = append(available, p)
		}
	}
	v.Available = scouting.Board(available, comments)

	pending := make(map[draft.TeamID]bool, len(st.PendingTeams))
	if st.Phase == draft.PhaseFirstRound {
		for _, t := range st.PendingTeams {
			pending[t] = true
		}
	}
	for _, id := range st.Teams {
		_, bid := st.CurrentBids[id]
		v.Teams = append(v.Teams, TeamBoard{
			Team:     c.team(id),
			Picks:    c.picks(st.DraftPicks[id]),
			Pending:  pending[id],
			HasBid:   bid,
			Finished: st.IsFinished(id),
		})
	}
	return v, nil
}

// Result lists teams in standings order with their picks
func (s *Service) Result(runID string) (*Result, error) {
	st, err := s.load(runID)
	if err != nil {
		return nil, err
	}
	c, err := s.catalog()
	if err != nil {
		return nil, err
	}

	inRun := make(map[string]bool, len(st.Teams))
	for _, id := range st.Teams {
		inRun[string(id)] = true
	}

	r := &Result{RunID: runID, Complete: st.Phase == draft.PhaseComplete}
	add := func(t models.Team) {
		players := c.picks(st.DraftPicks[draft.TeamID(t.ID)])
		r.Teams = append(r.Teams, TeamResult{Team: t, Players: players})
		r.MaxPicks = max(r.MaxPicks, len(players))
		delete(inRun, t.ID)
	}
	for _, t := range c.ordered {
		if inRun[t.ID] {
			add(t)
		}
	}
	// teams removed from the roster since the run started
	for _, id := range st.Teams {
		if inRun[string(id)] {
			add(c.team(id))
		}
	}
	return r, nil
}
