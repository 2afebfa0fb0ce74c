package dal

import (
	"errors"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// RunStore persists draft run snapshots keyed by run id
type RunStore interface {
	CreateRun(id string, state *draft.State) error
	GetRun(id string) (*draft.State, error)
	SaveRun(id string, state *draft.State) error
	DeleteRun(id string) error
}

// DraftDAL defines the interface for data access layer
type DraftDAL interface {
	RunStore

	// ListTeams returns teams ordered by standings, best record first.
	ListTeams() ([]models.Team, error)
	AddTeam(team *models.Team) (*models.Team, error)

	ListPlayers() ([]models.Player, error)
	GetPlayer(id string) (*models.Player, error)
	AddPlayer(player *models.Player) (*models.Player, error)

	// ListComments returns a player's comments, oldest first.
	ListComments(playerID string) ([]models.Comment, error)
	// AllComments groups every comment by player id.
	AllComments() (map[string][]models.Comment, error)
	AddComment(comment *models.Comment) (*models.Comment, error)

	// Reset wipes runs and comments and restores the seed roster.
	Reset() error
	Ping() error
}

var (
	_ DraftDAL = (*MemoryDAL)(nil)
	_ DraftDAL = (*SQLiteDAL)(nil)
	_ DraftDAL = (*PostgresDAL)(nil)
)
