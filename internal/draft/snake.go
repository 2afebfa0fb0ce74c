package draft

// AdvanceSnake computes the next waiver turn after the team at from.Index acted.
// ok is false when the draft is over: every team finished, the round limit
// passed, or no unfinished team was found.
//
// At either end of the roster the direction flips and the boundary team acts
// again in the new round. Any starting slot reaches every other slot within
// 2n-1 steps, so the 2n bound never cuts a valid search short.
func (e *Engine) AdvanceSnake(s *State, from Turn) (Turn, bool) {
	n := len(s.Teams)
	maxRounds := e.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	if n == 0 || len(s.FinishedTeams) >= n || from.Round > maxRounds {
		return Turn{}, false
	}

	idx, dir, round := from.Index, from.Direction, from.Round
	if dir != 1 && dir != -1 {
		dir = 1
	}

	for attempt := 0; attempt < 2*n; attempt++ {
		idx += dir

		switch {
		case idx >= n:
			round++
			dir = -1
			idx = n - 1
		case idx < 0:
			round++
			dir = 1
			idx = 0
		}

		if round > maxRounds {
			return Turn{}, false
		}

		if !s.IsFinished(s.Teams[idx]) {
			return Turn{Index: idx, Direction: dir, Round: round}, true
		}
	}
	return Turn{}, false
}
