// Package simulation runs draft simulations on top of the draft engine:
// it loads a run, checks the request against the acting team, applies the
// engine's decision, persists the run and announces what happened.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/announce"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/clickhouse"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/dal"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
)

var (
	ErrRunNotFound       = errors.New("simulation not found")
	ErrDraftComplete     = errors.New("draft is complete")
	ErrWrongTurn         = errors.New("not this team's turn")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerUnavailable = errors.New("player already picked")
	ErrSkipFirstRound    = errors.New("teams cannot finish during the first round")
	ErrNoTeams           = errors.New("no teams to draft with")
)

// Store is the persistence the service needs
type Store interface {
	dal.RunStore
	ListTeams() ([]models.Team, error)
	ListPlayers() ([]models.Player, error)
	GetPlayer(id string) (*models.Player, error)
	AllComments() (map[string][]models.Comment, error)
}

// Service orchestrates draft runs. Requests on one run are serialised; separate runs proceed in parallel.
type Service struct {
	store    Store
	engine   *draft.Engine
	pub      pubsub.Publisher
	recorder clickhouse.Recorder
	lang     string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sends run events to p
func WithPublisher(p pubsub.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithRecorder records every assigned pick for analytics
func WithRecorder(r clickhouse.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLanguage picks the lottery message language ("en" or "ja")
func WithLanguage(lang string) Option {
	return func(s *Service) { s.lang = lang }
}

// WithEngine replaces the default twelve-round engine
func WithEngine(e *draft.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// NewService creates a new simulation service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		lang:  "ja",
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = draft.NewEngine()
	}
	return s
}

func (s *Service) lock(runID string) func() {
	s.mu.Lock()
	l, ok := s.locks[runID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[runID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) load(runID string) (*draft.State, error) {
	st, err := s.store.GetRun(runID)
	if errors.Is(err, dal.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return st, nil
}

func (s *Service) publish(typ, runID string, payload map[string]any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(pubsub.NewEvent(typ, runID, payload))
}

func (s *Service) record(ctx context.Context, pick clickhouse.Pick) {
	if s.recorder == nil {
		return
	}
	pick.At = timeNow().UTC()
	if err := s.recorder.RecordPick(ctx, pick); err != nil {
		logger.Warn("Failed to record pick", "error", err, "run_id", pick.RunID, "player_id", pick.PlayerID)
	}
}

// Start opens a new run with every team bidding in the first round.
// Teams act worst record first.
func (s *Service) Start(ctx context.Context) (string, *draft.State, error) {
	teams, err := s.store.ListTeams()
	if err != nil {
		return "", nil, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return "", nil, ErrNoTeams
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Order > teams[j].Order })

	ids := make([]draft.TeamID, len(teams))
	for i, t := range teams {
		ids[i] = draft.TeamID(t.ID)
	}

	runID := uuid.NewString()
	st := draft.NewState(ids)
	if err := s.store.CreateRun(runID, st); err != nil {
		return "", nil, fmt.Errorf("create run: %w", err)
	}

	logger.Info("Simulation started", "run_id", runID, "teams", len(ids))
	s.publish(pubsub.EventStart, runID, map[string]any{"teams": len(ids)})
	return runID, st, nil
}

// State returns the raw persisted snapshot of a run
func (s *Service) State(runID string) (*draft.State, error) {
	return s.load(runID)
}

// Select places the acting team's bid (first round) or pick (later rounds).
// An empty teamID means "whoever is acting".
func (s *Service) Select(ctx context.Context, runID, teamID, playerID string) (*draft.State, error) {
	unlock := s.lock(runID)
	defer unlock()

	st, err := s.load(runID)
	if err != nil {
		return nil, err
	}
	acting, err := actingTeam(st, teamID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetPlayer(playerID); err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
		}
		return nil, err
	}
	pid := draft.PlayerID(playerID)
	if st.IsPicked(pid) {
		return nil, fmt.Errorf("%s: %w", playerID, ErrPlayerUnavailable)
	}

	switch st.Phase {
	case draft.PhaseFirstRound:
		if err := s.bid(ctx, runID, st, acting, pid); err != nil {
			return nil, err
		}
	default:
		st.DraftPicks[acting] = append(st.DraftPicks[acting], pid)
		logger.Info("Player picked", "run_id", runID, "team_id", acting, "player_id", pid, "round", st.Round)
		s.record(ctx, clickhouse.Pick{
			RunID:    runID,
			TeamID:   string(acting),
			PlayerID: playerID,
			Round:    st.Round,
			Overall:  totalPicks(st),
		})
		s.publish(pubsub.EventPick, runID, map[string]any{
			"teamId":   string(acting),
			"playerId": playerID,
			"round":    st.Round,
		})
		s.advance(runID, st)
	}

	if err := s.store.SaveRun(runID, st); err != nil {
		return nil, fmt.Errorf("save run %s: %w", runID, err)
	}
	return st, nil
}

func (s *Service) bid(ctx context.Context, runID string, st *draft.State, team draft.TeamID, player draft.PlayerID) error {
	st.CurrentBids[team] = player
	st.LotteryMessages = []string{}
	s.publish(pubsub.EventBid, runID, map[string]any{"teamId": string(team)})

	if !allBid(st) {
		st.Index += st.Direction
		return nil
	}

	eng, err := s.engineFor()
	if err != nil {
		return err
	}
	overall := totalPicks(st)
	d := eng.ResolveLottery(st)
	st.Apply(d)

	outcomes := make([]map[string]any, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		if o.Kind == draft.OutcomeWon || o.Kind == draft.OutcomeConfirmed {
			overall++
			s.record(ctx, clickhouse.Pick{
				RunID:    runID,
				TeamID:   string(o.Team),
				PlayerID: string(o.Player),
				Round:    1,
				Overall:  overall,
				Lottery:  true,
			})
		}
		outcomes = append(outcomes, map[string]any{
			"kind":     string(o.Kind),
			"teamId":   string(o.Team),
			"playerId": string(o.Player),
		})
	}
	logger.Info("Lottery resolved", "run_id", runID, "still_pending", len(st.PendingTeams), "phase", st.Phase)
	s.publish(pubsub.EventLottery, runID, map[string]any{
		"messages": st.LotteryMessages,
		"outcomes": outcomes,
		"pending":  len(st.PendingTeams),
		"phase":    string(st.Phase),
	})
	return nil
}

// Skip marks the acting team as finished and moves on. Not allowed in the first round.
func (s *Service) Skip(ctx context.Context, runID, teamID string) (*draft.State, error) {
	unlock := s.lock(runID)
	defer unlock()

	st, err := s.load(runID)
	if err != nil {
		return nil, err
	}
	if st.Phase == draft.PhaseFirstRound {
		return nil, ErrSkipFirstRound
	}
	acting, err := actingTeam(st, teamID)
	if err != nil {
		return nil, err
	}

	if !st.IsFinished(acting) {
		st.FinishedTeams = append(st.FinishedTeams, acting)
	}
	logger.Info("Team finished drafting", "run_id", runID, "team_id", acting, "round", st.Round)
	s.publish(pubsub.EventSkip, runID, map[string]any{"teamId": string(acting), "round": st.Round})
	s.advance(runID, st)

	if err := s.store.SaveRun(runID, st); err != nil {
		return nil, fmt.Errorf("save run %s: %w", runID, err)
	}
	return st, nil
}

// Delete drops a run
func (s *Service) Delete(runID string) error {
	unlock := s.lock(runID)
	err := s.store.DeleteRun(runID)
	unlock()

	s.mu.Lock()
	delete(s.locks, runID)
	s.mu.Unlock()

	if errors.Is(err, dal.ErrNotFound) {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return err
}

func (s *Service) advance(runID string, st *draft.State) {
	next, ok := s.engine.AdvanceSnake(st, st.Turn())
	if ok {
		st.SetTurn(next)
		return
	}
	st.Phase = draft.PhaseComplete
	logger.Info("Simulation complete", "run_id", runID, "rounds", st.Round)
	s.publish(pubsub.EventComplete, runID, nil)
}

// engineFor returns a copy of the engine whose announcer knows display names
func (s *Service) engineFor() (*draft.Engine, error) {
	names, err := s.names()
	if err != nil {
		return nil, err
	}
	eng := *s.engine
	eng.Announcer = announce.New(s.lang, names)
	return &eng, nil
}

func (s *Service) names() (announce.MapNames, error) {
	teams, err := s.store.ListTeams()
	if err != nil {
		return announce.MapNames{}, fmt.Errorf("list teams: %w", err)
	}
	players, err := s.store.ListPlayers()
	if err != nil {
		return announce.MapNames{}, fmt.Errorf("list players: %w", err)
	}
	n := announce.MapNames{
		Teams:   make(map[draft.TeamID]string, len(teams)),
		Players: make(map[draft.PlayerID]string, len(players)),
	}
	for _, t := range teams {
		n.Teams[draft.TeamID(t.ID)] = t.Name
	}
	for _, p := range players {
		n.Players[draft.PlayerID(p.ID)] = p.Name
	}
	return n, nil
}

func actingTeam(st *draft.State, teamID string) (draft.TeamID, error) {
	if st.Phase == draft.PhaseComplete {
		return "", ErrDraftComplete
	}
	acting, ok := st.CurrentTeam()
	if !ok {
		return "", fmt.Errorf("turn cursor %d out of range: %w", st.Index, ErrWrongTurn)
	}
	if teamID != "" && draft.TeamID(teamID) != acting {
		return "", fmt.Errorf("%s acts now, not %s: %w", acting, teamID, ErrWrongTurn)
	}
	return acting, nil
}

func totalPicks(st *draft.State) int {
	n := 0
	for _, picks := range st.DraftPicks {
		n += len(picks)
	}
	return n
}

// allBid reports whether every pending team has a bid recorded
func allBid(st *draft.State) bool {
	for _, t := range st.PendingTeams {
		if _, ok := st.CurrentBids[t]; !ok {
			return false
		}
	}
	return true
}
