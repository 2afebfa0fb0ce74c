package clickhouse

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Pick is one player assignment as recorded for analytics
type Pick struct {
	RunID    string    `json:"runId"`
	TeamID   string    `json:"teamId"`
	PlayerID string    `json:"playerId"`
	Round    int       `json:"round"`
	Overall  int       `json:"overall"`
	Lottery  bool      `json:"lottery"`
	At       time.Time `json:"at"`
}

// PlayerADP is a player's average draft position across recorded runs
type PlayerADP struct {
	PlayerID    string  `json:"playerId"`
	ADP         float64 `json:"adp"`
	TimesPicked int     `json:"timesPicked"`
}

// Recorder is the analytics sink the simulation writes picks to
type Recorder interface {
	RecordPick(ctx context.Context, p Pick) error
	AverageDraftPositions(ctx context.Context) ([]PlayerADP, error)
	Ping(ctx context.Context) error
	Close() error
}

// MemoryRecorder keeps picks in process for local development without a ClickHouse server
type MemoryRecorder struct {
	mu    sync.Mutex
	picks []Pick
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) RecordPick(_ context.Context, p Pick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.picks = append(m.picks, p)
	return nil
}

func (m *MemoryRecorder) AverageDraftPositions(_ context.Context) ([]PlayerADP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sums := map[string]int{}
	counts := map[string]int{}
	for _, p := range m.picks {
		sums[p.PlayerID] += p.Overall
		counts[p.PlayerID]++
	}

	out := make([]PlayerADP, 0, len(counts))
	for id, n := range counts {
		out = append(out, PlayerADP{PlayerID: id, ADP: float64(sums[id]) / float64(n), TimesPicked: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ADP != out[j].ADP {
			return out[i].ADP < out[j].ADP
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// Picks returns a copy of everything recorded
func (m *MemoryRecorder) Picks() []Pick {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Pick(nil), m.picks...)
}

func (m *MemoryRecorder) Ping(context.Context) error { return nil }
func (m *MemoryRecorder) Close() error               { return nil }

var (
	_ Recorder = (*Client)(nil)
	_ Recorder = (*MemoryRecorder)(nil)
)
