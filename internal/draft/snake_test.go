package draft

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waiverState(teams ...string) *State {
	s := NewState(teamIDs(teams...))
	s.Phase = PhaseWaiver
	s.PendingTeams = []TeamID{}
	s.SetTurn(Turn{Index: 0, Direction: 1, Round: 2})
	return s
}

func TestAdvanceSnake_Sequence(t *testing.T) {
	cases := []struct {
		name     string
		teams    []string
		finished []string
		from     Turn
		want     Turn
	}{
		{
			name:  "moves forward inside a round",
			teams: []string{"A", "B", "C"},
			from:  Turn{Index: 0, Direction: 1, Round: 1},
			want:  Turn{Index: 1, Direction: 1, Round: 1},
		},
		{
			name:  "high end flips and repeats the last team",
			teams: []string{"A", "B", "C"},
			from:  Turn{Index: 2, Direction: 1, Round: 1},
			want:  Turn{Index: 2, Direction: -1, Round: 2},
		},
		{
			name:  "four teams boundary reversal after first round",
			teams: []string{"A", "B", "C", "D"},
			from:  Turn{Index: 3, Direction: 1, Round: 2},
			want:  Turn{Index: 3, Direction: -1, Round: 3},
		},
		{
			name:  "low end flips and repeats the first team",
			teams: []string{"A", "B", "C", "D"},
			from:  Turn{Index: 0, Direction: -1, Round: 3},
			want:  Turn{Index: 0, Direction: 1, Round: 4},
		},
		{
			name:     "skips finished teams",
			teams:    []string{"A", "B", "C", "D"},
			finished: []string{"B", "C"},
			from:     Turn{Index: 0, Direction: 1, Round: 2},
			want:     Turn{Index: 3, Direction: 1, Round: 2},
		},
		{
			name:     "finished boundary team is skipped across the flip",
			teams:    []string{"A", "B", "C", "D"},
			finished: []string{"D"},
			from:     Turn{Index: 2, Direction: 1, Round: 2},
			want:     Turn{Index: 2, Direction: -1, Round: 3},
		},
		{
			name:     "walks the whole roster back to the only unfinished team",
			teams:    []string{"A", "B", "C"},
			finished: []string{"B", "C"},
			from:     Turn{Index: 0, Direction: 1, Round: 4},
			want:     Turn{Index: 0, Direction: -1, Round: 5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(WithChooser(fixedChooser(0)))
			s := waiverState(tc.teams...)
			s.FinishedTeams = teamIDs(tc.finished...)

			got, ok := e.AdvanceSnake(s, tc.from)

			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAdvanceSnake_Terminal(t *testing.T) {
	cases := []struct {
		name     string
		finished []string
		from     Turn
	}{
		{name: "all teams finished", finished: []string{"A", "B", "C"}, from: Turn{Index: 1, Direction: 1, Round: 3}},
		{name: "round already past the limit", from: Turn{Index: 0, Direction: 1, Round: 13}},
		{name: "flip pushes past the limit", from: Turn{Index: 2, Direction: 1, Round: 12}},
		{name: "backward flip pushes past the limit", from: Turn{Index: 0, Direction: -1, Round: 12}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(WithChooser(fixedChooser(0)))
			s := waiverState("A", "B", "C")
			s.FinishedTeams = teamIDs(tc.finished...)

			_, ok := e.AdvanceSnake(s, tc.from)

			assert.False(t, ok)
		})
	}
}

func TestAdvanceSnake_TerminalRegardlessOfCursor(t *testing.T) {
	e := NewEngine(WithChooser(fixedChooser(0)))
	s := waiverState("A", "B", "C", "D")
	s.FinishedTeams = teamIDs("A", "B", "C", "D")

	for idx := -1; idx <= 4; idx++ {
		for _, dir := range []int{-1, 1} {
			_, ok := e.AdvanceSnake(s, Turn{Index: idx, Direction: dir, Round: 2})
			assert.False(t, ok, "idx=%d dir=%d", idx, dir)
		}
	}
}

func TestAdvanceSnake_CustomMaxRounds(t *testing.T) {
	e := NewEngine(WithChooser(fixedChooser(0)), WithMaxRounds(3))
	s := waiverState("A", "B")

	next, ok := e.AdvanceSnake(s, Turn{Index: 1, Direction: 1, Round: 2})
	require.True(t, ok)
	assert.Equal(t, Turn{Index: 1, Direction: -1, Round: 3}, next)

	next, ok = e.AdvanceSnake(s, next)
	require.True(t, ok)
	assert.Equal(t, Turn{Index: 0, Direction: -1, Round: 3}, next)

	_, ok = e.AdvanceSnake(s, next)
	assert.False(t, ok)
}

func TestAdvanceSnake_FullSnakeOrder(t *testing.T) {
	e := NewEngine(WithChooser(fixedChooser(0)), WithMaxRounds(4))
	s := waiverState("A", "B", "C")

	var order []TeamID
	turn := s.Turn()
	order = append(order, s.Teams[turn.Index])
	for {
		next, ok := e.AdvanceSnake(s, turn)
		if !ok {
			break
		}
		order = append(order, s.Teams[next.Index])
		turn = next
	}

	// rounds 2..4: forward, backward, forward
	assert.Equal(t, teamIDs("A", "B", "C", "C", "B", "A", "A", "B", "C"), order)
}

func TestAdvanceSnake_DoesNotMutateState(t *testing.T) {
	e := NewEngine(WithChooser(fixedChooser(0)))
	s := waiverState("A", "B")
	s.FinishedTeams = teamIDs("B")
	before := s.Clone()

	_, _ = e.AdvanceSnake(s, s.Turn())

	assert.Equal(t, before, s)
}

// Plays whole drafts with random bids, picks and skips and checks that no
// player is ever assigned twice.
func TestSimulatedDrafts_NoDuplicateAssignments(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed+7))
			e := NewEngine(WithChooser(rng))
			s := NewState(teamIDs("A", "B", "C", "D", "E", "F"))

			pool := make([]PlayerID, 80)
			for i := range pool {
				pool[i] = PlayerID(fmt.Sprintf("p%02d", i))
			}
			available := func() []PlayerID {
				var out []PlayerID
				for _, p := range pool {
					if !s.IsPicked(p) {
						out = append(out, p)
					}
				}
				return out
			}

			for cycle := 0; s.Phase == PhaseFirstRound; cycle++ {
				require.Less(t, cycle, 50, "lottery never settled")
				avail := available()
				for _, team := range s.PendingTeams {
					// few choices to force contests
					s.CurrentBids[team] = avail[rng.IntN(min(3, len(avail)))]
				}
				s.Apply(e.ResolveLottery(s))
			}

			for steps := 0; ; steps++ {
				require.Less(t, steps, 500)
				team, ok := s.CurrentTeam()
				require.True(t, ok)
				if rng.IntN(10) == 0 {
					s.FinishedTeams = append(s.FinishedTeams, team)
				} else {
					avail := available()
					if len(avail) == 0 {
						break
					}
					s.DraftPicks[team] = append(s.DraftPicks[team], avail[rng.IntN(len(avail))])
				}
				next, ok := e.AdvanceSnake(s, s.Turn())
				if !ok {
					break
				}
				s.SetTurn(next)
			}

			seen := map[PlayerID]TeamID{}
			for team, picks := range s.DraftPicks {
				require.NotEmpty(t, picks, "team %s has no first-round pick", team)
				for _, p := range picks {
					prev, dup := seen[p]
					require.False(t, dup, "player %s assigned to %s and %s", p, prev, team)
					seen[p] = team
				}
			}
		})
	}
}
