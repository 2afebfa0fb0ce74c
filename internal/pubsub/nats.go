package pubsub

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
)

// DefaultStreamName is the JetStream stream that stores simulation events
const DefaultStreamName = "DRAFT_EVENTS"

// jetStream publishes events under <subject>.<runId> and feeds every message
// seen on the stream back to local subscribers.
type jetStream struct {
	broadcaster
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	sub     *nats.Subscription
}

func newJetStream(nc *nats.Conn, subject string, cfg *nats.StreamConfig) (*jetStream, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	cfg.Subjects = []string{subject + ".>"}
	if _, err := js.StreamInfo(cfg.Name); err != nil {
		if _, err := js.AddStream(cfg); err != nil {
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		logger.Info("JetStream stream created", "stream", cfg.Name, "subject", subject)
	}

	j := &jetStream{
		broadcaster: broadcaster{subscribers: []chan Event{}, buffer: 100},
		nc:          nc,
		js:          js,
		subject:     subject,
	}

	j.sub, err = js.Subscribe(subject+".>", j.handle, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return j, nil
}

func (j *jetStream) handle(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err, "subject", msg.Subject)
		msg.Term()
		return
	}
	j.broadcast(event)
	msg.Ack()
}

// subjectFor routes an event to its run's subject token
func (j *jetStream) subjectFor(event Event) string {
	token := "global"
	if event.RunID != "" {
		token = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(event.RunID)
	}
	return j.subject + "." + token
}

// Publish publishes an event to JetStream
func (j *jetStream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	subject := j.subjectFor(event)
	if _, err := j.js.Publish(subject, data); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", subject, "event_type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "event_type", event.Type, "subject", subject)
}

func (j *jetStream) close() {
	if j.sub != nil {
		_ = j.sub.Unsubscribe()
	}
	j.closeAll()
	if j.nc != nil {
		j.nc.Close()
	}
}

// NATSPubSub implements pub/sub using an external NATS JetStream cluster
type NATSPubSub struct {
	*jetStream
}

// NewNATSPubSub connects to NATS and makes sure the event stream exists
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("baseball-draft-sim"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := newJetStream(nc, subject, &nats.StreamConfig{
		Name:    DefaultStreamName,
		Storage: nats.FileStorage,
		MaxAge:  7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &NATSPubSub{jetStream: js}, nil
}

// Connected reports whether the client currently holds a server connection
func (j *jetStream) Connected() bool {
	return j.nc != nil && j.nc.IsConnected()
}

// Close closes the NATS connection
func (p *NATSPubSub) Close() {
	p.close()
}
