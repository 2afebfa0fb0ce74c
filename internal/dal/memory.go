package dal

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

// MemoryDAL implements DraftDAL using in-memory storage
type MemoryDAL struct {
	mu       sync.RWMutex
	players  []models.Player
	teams    []models.Team
	comments map[string][]models.Comment // playerID -> comments
	runs     map[string][]byte           // runID -> encoded state
}

// NewMemoryDAL creates a new in-memory data access layer
func NewMemoryDAL() *MemoryDAL {
	return &MemoryDAL{
		players:  getDefaultPlayers(),
		teams:    getDefaultTeams(),
		comments: make(map[string][]models.Comment),
		runs:     make(map[string][]byte),
	}
}

func (m *MemoryDAL) Ping() error { return nil }

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.players = getDefaultPlayers()
	m.teams = getDefaultTeams()
	m.comments = make(map[string][]models.Comment)
	m.runs = make(map[string][]byte)

	return nil
}

func (m *MemoryDAL) ListTeams() ([]models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	teams := make([]models.Team, len(m.teams))
	copy(teams, m.teams)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Order < teams[j].Order })
	return teams, nil
}

func (m *MemoryDAL) AddTeam(team *models.Team) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if team.ID == "" {
		team.ID = newID()
	}
	for _, t := range m.teams {
		if t.ID == team.ID {
			return nil, fmt.Errorf("team %s: %w", team.ID, ErrConflict)
		}
	}
	if team.Order == 0 {
		team.Order = len(m.teams) + 1
	}

	m.teams = append(m.teams, *team)
	return team, nil
}

func (m *MemoryDAL) ListPlayers() ([]models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	players := make([]models.Player, len(m.players))
	copy(players, m.players)
	return players, nil
}

func (m *MemoryDAL) GetPlayer(id string) (*models.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.players {
		if m.players[i].ID == id {
			p := m.players[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
}

func (m *MemoryDAL) AddPlayer(player *models.Player) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if player.ID == "" {
		player.ID = newID()
	}
	for _, p := range m.players {
		if p.ID == player.ID {
			return nil, fmt.Errorf("player %s: %w", player.ID, ErrConflict)
		}
	}

	m.players = append(m.players, *player)
	return player, nil
}

func (m *MemoryDAL) ListComments(playerID string) ([]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Comment, len(m.comments[playerID]))
	copy(out, m.comments[playerID])
	return out, nil
}

func (m *MemoryDAL) AllComments() (map[string][]models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]models.Comment, len(m.comments))
	for id, cs := range m.comments {
		out[id] = append([]models.Comment(nil), cs...)
	}
	return out, nil
}

func (m *MemoryDAL) AddComment(comment *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, p := range m.players {
		if p.ID == comment.PlayerID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("player %s: %w", comment.PlayerID, ErrNotFound)
	}

	if comment.ID == "" {
		comment.ID = newID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	m.comments[comment.PlayerID] = append(m.comments[comment.PlayerID], *comment)
	return comment, nil
}

// Runs are kept encoded so callers never share maps or slices with the store.

func (m *MemoryDAL) CreateRun(id string, state *draft.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; ok {
		return fmt.Errorf("run %s: %w", id, ErrConflict)
	}
	m.runs[id] = data
	return nil
}

func (m *MemoryDAL) GetRun(id string) (*draft.State, error) {
	m.mu.RLock()
	data, ok := m.runs[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return decodeState(id, data)
}

func (m *MemoryDAL) SaveRun(id string, state *draft.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	m.runs[id] = data
	return nil
}

func (m *MemoryDAL) DeleteRun(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	delete(m.runs, id)
	return nil
}

func decodeState(id string, data []byte) (*draft.State, error) {
	var s draft.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	s.Normalize()
	return &s, nil
}

func encodeState(id string, state *draft.State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode run %s: %w", id, err)
	}
	return string(data), nil
}
