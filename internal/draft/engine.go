package draft

import (
	"fmt"
	"slices"
)

// Chooser picks a uniform index in [0, n). *math/rand/v2.Rand satisfies it.
type Chooser interface {
	IntN(n int) int
}

// OutcomeKind classifies a single lottery result line
type OutcomeKind string

const (
	OutcomeWon         OutcomeKind = "won"
	OutcomeLost        OutcomeKind = "lost"
	OutcomeConfirmed   OutcomeKind = "confirmed"
	OutcomeUnavailable OutcomeKind = "unavailable"
)

// Outcome is what happened to one team's bid during a lottery
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Team   TeamID      `json:"team"`
	Player PlayerID    `json:"player"`
}

// Announcer renders an outcome as a human readable line.
type Announcer interface {
	Announce(Outcome) string
}

// AnnouncerFunc adapts a function to Announcer
type AnnouncerFunc func(Outcome) string

func (f AnnouncerFunc) Announce(o Outcome) string { return f(o) }

// PlainAnnouncer renders outcomes in English using raw ids.
var PlainAnnouncer = AnnouncerFunc(func(o Outcome) string {
	switch o.Kind {
	case OutcomeWon:
		return fmt.Sprintf("%s wins the rights to %s", o.Team, o.Player)
	case OutcomeLost:
		return fmt.Sprintf("%s was outbid for %s", o.Team, o.Player)
	case OutcomeConfirmed:
		return fmt.Sprintf("%s confirmed %s", o.Team, o.Player)
	default:
		return fmt.Sprintf("%s bid on %s, who is no longer available", o.Team, o.Player)
	}
})

// Delta is the set of State fields changed by an engine call.
// Nil fields are left untouched by State.Apply.
type Delta struct {
	DraftPicks      map[TeamID][]PlayerID
	PendingTeams    []TeamID
	CurrentBids     map[TeamID]PlayerID
	LotteryMessages []string
	Outcomes        []Outcome
	Phase           *Phase
	Turn            *Turn
}

// Engine holds the draft rules. It never stores run state; every call works
// on the snapshot it is handed.
type Engine struct {
	MaxRounds int
	Chooser   Chooser
	Announcer Announcer
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxRounds overrides DefaultMaxRounds
func WithMaxRounds(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.MaxRounds = n
		}
	}
}

// WithChooser injects the lottery random source
func WithChooser(c Chooser) Option {
	return func(e *Engine) { e.Chooser = c }
}

// WithAnnouncer sets how lottery outcomes are worded
func WithAnnouncer(a Announcer) Option {
	return func(e *Engine) { e.Announcer = a }
}

// NewEngine returns an engine with twelve rounds and a crypto-seeded chooser.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		MaxRounds: DefaultMaxRounds,
		Announcer: PlainAnnouncer,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Chooser == nil {
		e.Chooser = NewLockedChooser(NewSeed())
	}
	return e
}

// ResolveLottery settles every outstanding first-round bid at once.
// Call it only when each pending team has an entry in CurrentBids.
func (e *Engine) ResolveLottery(s *State) Delta {
	picks := clonePicks(s.DraftPicks)
	taken := make(map[PlayerID]bool)
	for _, ps := range picks {
		for _, p := range ps {
			taken[p] = true
		}
	}

	// bidders per player, both in pending order
	var players []PlayerID
	bidders := make(map[PlayerID][]TeamID)
	var stillPending []TeamID
	for _, team := range s.PendingTeams {
		p, ok := s.CurrentBids[team]
		if !ok {
			stillPending = append(stillPending, team)
			continue
		}
		if _, seen := bidders[p]; !seen {
			players = append(players, p)
		}
		bidders[p] = append(bidders[p], team)
	}

	var outcomes []Outcome
	for _, p := range players {
		teams := bidders[p]
		switch {
		case taken[p]:
			for _, t := range teams {
				stillPending = append(stillPending, t)
				outcomes = append(outcomes, Outcome{Kind: OutcomeUnavailable, Team: t, Player: p})
			}
		case len(teams) > 1:
			winner := teams[e.choose(len(teams))]
			for _, t := range teams {
				if t == winner {
					picks[t] = append(picks[t], p)
					outcomes = append(outcomes, Outcome{Kind: OutcomeWon, Team: t, Player: p})
					continue
				}
				stillPending = append(stillPending, t)
				outcomes = append(outcomes, Outcome{Kind: OutcomeLost, Team: t, Player: p})
			}
			taken[p] = true
		default:
			t := teams[0]
			picks[t] = append(picks[t], p)
			taken[p] = true
			outcomes = append(outcomes, Outcome{Kind: OutcomeConfirmed, Team: t, Player: p})
		}
	}

	// keep the roster order among teams that must bid again
	stillPending = orderedLike(s.PendingTeams, stillPending)

	messages := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		messages = append(messages, e.announcer().Announce(o))
	}

	d := Delta{
		DraftPicks:      picks,
		PendingTeams:    stillPending,
		CurrentBids:     map[TeamID]PlayerID{},
		LotteryMessages: messages,
		Outcomes:        outcomes,
	}
	if len(stillPending) == 0 {
		phase := PhaseWaiver
		d.Phase = &phase
		d.PendingTeams = []TeamID{}
		d.Turn = &Turn{Index: 0, Direction: 1, Round: 2}
	} else {
		round := s.Round
		if round == 0 {
			round = 1
		}
		d.Turn = &Turn{Index: 0, Direction: 1, Round: round}
	}
	return d
}

func (e *Engine) choose(n int) int {
	if n <= 1 {
		return 0
	}
	i := e.Chooser.IntN(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func (e *Engine) announcer() Announcer {
	if e.Announcer == nil {
		return PlainAnnouncer
	}
	return e.Announcer
}

func orderedLike(order, subset []TeamID) []TeamID {
	out := make([]TeamID, 0, len(subset))
	for _, t := range order {
		if slices.Contains(subset, t) {
			out = append(out, t)
		}
	}
	return out
}
