package pubsub

import (
	"sync"
	"time"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
)

// Simulation event types
const (
	EventStart    = "simulation:start"
	EventBid      = "simulation:bid"
	EventLottery  = "simulation:lottery"
	EventPick     = "simulation:pick"
	EventSkip     = "simulation:skip"
	EventComplete = "simulation:complete"
	EventComment  = "scouting:comment"
)

// Event represents a pubsub event
type Event struct {
	Type    string         `json:"type"`
	RunID   string         `json:"runId,omitempty"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(typ, runID string, payload map[string]any) Event {
	return Event{Type: typ, RunID: runID, At: time.Now().UTC(), Payload: payload}
}

// Publisher is what the simulation service needs to announce changes
type Publisher interface {
	Publish(Event)
}

// Upstream is an interface for upstream publishers (e.g., NATS)
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Unsubscribe(chan Event)
}

const (
	localBuffer    = 16
	defaultHistory = 256
)

// broadcaster fans events out to buffered channels, dropping for slow readers
type broadcaster struct {
	mu          sync.RWMutex
	subscribers []chan Event
	buffer      int
}

func (b *broadcaster) Subscribe() chan Event {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	n := len(b.subscribers)
	b.mu.Unlock()

	logger.Debug("PubSub: New subscriber added", "totalSubscribers", n)
	return ch
}

func (b *broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(ch)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

// broadcast holds the read lock while sending so Unsubscribe cannot close a
// channel mid-send. Sends never block.
func (b *broadcaster) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("PubSub: Skipping slow subscriber", "type", event.Type, "runId", event.RunID)
		}
	}
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

// SubscriberCount returns the number of active local subscribers
func (b *broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// PubSub is the in-process hub handed to transports. It keeps a short history
// so late subscribers can catch up on a run.
type PubSub struct {
	broadcaster
	upstream Upstream // Optional upstream publisher (e.g., NATS)

	histMu  sync.Mutex
	history []Event
	maxHist int
}

// New creates a new PubSub instance
func New() *PubSub {
	return &PubSub{
		broadcaster: broadcaster{subscribers: []chan Event{}, buffer: localBuffer},
		maxHist:     defaultHistory,
	}
}

// NewWithUpstream creates a PubSub that bridges to an upstream publisher (e.g., NATS)
// Publish goes to the upstream, which broadcasts to all instances; upstream
// events are forwarded to local subscribers.
func NewWithUpstream(upstream Upstream) *PubSub {
	ps := New()
	ps.upstream = upstream

	ch := upstream.Subscribe()
	go func() {
		logger.Debug("PubSub: Subscribed to upstream, waiting for events")
		for event := range ch {
			ps.publishLocal(event)
		}
		logger.Debug("PubSub: Upstream channel closed")
	}()

	return ps
}

// Publish sends an event to all subscribers, through the upstream when configured
func (ps *PubSub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if ps.upstream != nil {
		logger.Debug("PubSub: Forwarding to upstream", "type", event.Type)
		ps.upstream.Publish(event)
		return
	}
	ps.publishLocal(event)
}

// publishLocal sends an event to local subscribers only
func (ps *PubSub) publishLocal(event Event) {
	ps.histMu.Lock()
	ps.history = append(ps.history, event)
	if len(ps.history) > ps.maxHist {
		ps.history = ps.history[len(ps.history)-ps.maxHist:]
	}
	ps.histMu.Unlock()

	ps.broadcast(event)
}

// Recent returns up to limit of the latest events, oldest first.
// A non-empty runID keeps only that run's events.
func (ps *PubSub) Recent(runID string, limit int) []Event {
	ps.histMu.Lock()
	defer ps.histMu.Unlock()

	var out []Event
	for i := len(ps.history) - 1; i >= 0 && len(out) < limit; i-- {
		e := ps.history[i]
		if runID != "" && e.RunID != runID {
			continue
		}
		out = append(out, e)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
