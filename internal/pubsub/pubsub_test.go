package pubsub

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	ch3 := ps.Subscribe()
	assert.Equal(t, 3, ps.SubscriberCount())

	ps.Unsubscribe(ch2)
	assert.Equal(t, 2, ps.SubscriberCount())

	_, ok := <-ch2
	assert.False(t, ok, "channel should be closed after unsubscribe")

	ps.Publish(NewEvent(EventPick, "run-1", nil))
	assert.Equal(t, EventPick, receive(t, ch1).Type)
	assert.Equal(t, EventPick, receive(t, ch3).Type)
}

func TestUnsubscribeNonexistent(t *testing.T) {
	ps := New()
	ps.Subscribe()

	assert.NotPanics(t, func() { ps.Unsubscribe(make(chan Event)) })
	assert.Equal(t, 1, ps.SubscriberCount())
}

func TestPublishNoSubscribers(t *testing.T) {
	ps := New()
	assert.NotPanics(t, func() { ps.Publish(Event{Type: EventStart}) })
}

func TestPublishStampsTime(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	ps.Publish(Event{Type: EventSkip})

	assert.False(t, receive(t, ch).At.IsZero())
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	for i := 0; i < localBuffer+5; i++ {
		ps.Publish(Event{Type: EventBid, Payload: map[string]any{"seq": i}})
	}

	assert.Len(t, ch, localBuffer)
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				ps.Publish(NewEvent(EventPick, fmt.Sprintf("run-%d", id), nil))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, ps.SubscriberCount())
}

// upstreamStub loops published events straight back like a broker would.
type upstreamStub struct {
	broadcaster
	mu        sync.Mutex
	published []Event
}

func (u *upstreamStub) Publish(e Event) {
	u.mu.Lock()
	u.published = append(u.published, e)
	u.mu.Unlock()
	u.broadcast(e)
}

func TestPublishWithUpstream(t *testing.T) {
	up := &upstreamStub{broadcaster: broadcaster{buffer: 10}}
	ps := NewWithUpstream(up)
	ch := ps.Subscribe()

	ps.Publish(NewEvent(EventLottery, "run-1", map[string]any{"pending": 2}))

	got := receive(t, ch)
	assert.Equal(t, EventLottery, got.Type)
	assert.Equal(t, "run-1", got.RunID)

	up.mu.Lock()
	defer up.mu.Unlock()
	assert.Len(t, up.published, 1)
}

func TestRecent_FiltersByRunAndKeepsOrder(t *testing.T) {
	ps := New()
	ps.Publish(NewEvent(EventStart, "a", nil))
	ps.Publish(NewEvent(EventStart, "b", nil))
	ps.Publish(NewEvent(EventBid, "a", nil))
	ps.Publish(NewEvent(EventPick, "a", nil))

	recent := ps.Recent("a", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, EventBid, recent[0].Type)
	assert.Equal(t, EventPick, recent[1].Type)

	assert.Len(t, ps.Recent("", 10), 4)
	assert.Empty(t, ps.Recent("zzz", 10))
}

func TestRecent_HistoryIsBounded(t *testing.T) {
	ps := New()
	for i := 0; i < defaultHistory+10; i++ {
		ps.Publish(NewEvent(EventPick, "a", map[string]any{"seq": i}))
	}

	recent := ps.Recent("a", defaultHistory*2)
	require.Len(t, recent, defaultHistory)
	assert.Equal(t, 10, recent[0].Payload["seq"])
}
