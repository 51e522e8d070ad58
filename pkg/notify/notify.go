// Package notify publishes materialization pass outcomes on a nanomsg PUB socket.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/owlgraph/pkg/logging"
	"github.com/dd0wney/owlgraph/pkg/materialize"
)

// Topic prefixes every published message.
var Topic = []byte("PASS:")

// ErrTimeout is returned by Receive when no event arrives before the deadline.
var ErrTimeout = errors.New("no event received")

// Event describes one finished pass.
type Event struct {
	PassID       string         `json:"passId"`
	Source       string         `json:"source"`
	Category     string         `json:"category"`
	Status       string         `json:"status"`
	Step         string         `json:"step,omitempty"`
	Error        string         `json:"error,omitempty"`
	Classes      int            `json:"classes"`
	NodesCreated int            `json:"nodesCreated"`
	Edges        map[string]int `json:"edges,omitempty"`
	Individuals  int            `json:"individuals"`
	DurationMS   int64          `json:"durationMs"`
	FinishedAt   time.Time      `json:"finishedAt"`
}

// EventFromResult builds the event for a pass that returned res and err.
func EventFromResult(res materialize.Result, err error) Event {
	ev := Event{
		PassID:       res.PassID,
		Source:       res.Source,
		Category:     string(res.Category),
		Status:       materialize.PassStatus(err),
		Classes:      res.Classes,
		NodesCreated: res.NodesCreated,
		Individuals:  res.Individuals,
		DurationMS:   res.Duration.Milliseconds(),
		FinishedAt:   time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
		ev.Step = string(materialize.FailedStep(err))
	}
	if len(res.Edges) > 0 {
		ev.Edges = make(map[string]int, len(res.Edges))
		for t, n := range res.Edges {
			ev.Edges[string(t)] = n
		}
	}
	return ev
}

// Publisher listens on a URL and broadcasts events to every connected subscriber.
// Events published while nobody is subscribed are dropped.
type Publisher struct {
	sock   mangos.Socket
	url    string
	logger logging.Logger
}

// NewPublisher opens a PUB socket listening on url, e.g. tcp://127.0.0.1:7450.
func NewPublisher(url string, logger logging.Logger) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create pub socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, time.Second); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to set send deadline: %w", err)
	}
	if err := sock.Listen(url); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", url, err)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Publisher{sock: sock, url: url, logger: logger.With(logging.Component("notify"))}, nil
}

// Publish sends ev under Topic.
func (p *Publisher) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := append(append([]byte{}, Topic...), payload...)
	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.logger.Debug("pass event published",
		logging.PassID(ev.PassID),
		logging.String("status", ev.Status),
		logging.String("url", p.url))
	return nil
}

// Close closes the socket
func (p *Publisher) Close() error {
	return p.sock.Close()
}

// Subscriber receives events from a Publisher.
type Subscriber struct {
	sock mangos.Socket
}

// NewSubscriber dials url and subscribes to pass events.
func NewSubscriber(url string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create sub socket: %w", err)
	}
	if err := sock.Dial(url); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, Topic); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return &Subscriber{sock: sock}, nil
}

// Receive waits up to timeout for the next event. A timeout <= 0 waits forever.
func (s *Subscriber) Receive(timeout time.Duration) (Event, error) {
	if timeout > 0 {
		if err := s.sock.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
			return Event{}, fmt.Errorf("failed to set receive deadline: %w", err)
		}
	}
	msg, err := s.sock.Recv()
	if errors.Is(err, mangos.ErrRecvTimeout) {
		return Event{}, ErrTimeout
	}
	if err != nil {
		return Event{}, fmt.Errorf("failed to receive event: %w", err)
	}

	var ev Event
	if err := json.Unmarshal(bytes.TrimPrefix(msg, Topic), &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return ev, nil
}

// Close closes the socket
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
