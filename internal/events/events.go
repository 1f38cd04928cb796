// Package events announces completed hot swaps.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const defaultSubjectPrefix = "swapdex"

// SwapEvent describes a finished alias cut-over.
type SwapEvent struct {
	Alias    string    `json:"alias"`
	NewIndex string    `json:"new_index"`
	Retired  []string  `json:"retired"`
	Indexed  uint64    `json:"indexed"`
	Failed   uint64    `json:"failed"`
	At       time.Time `json:"at"`
}

// Notifier publishes swap events.
type Notifier interface {
	Publish(ctx context.Context, ev SwapEvent) error
}

// Nop discards events.
type Nop struct{}

// Publish implements Notifier.
func (Nop) Publish(context.Context, SwapEvent) error { return nil }

// natsConnectFunc allows test injection.
var natsConnectFunc = nats.Connect

// publisher is the subset of *nats.Conn the notifier uses.
type publisher interface {
	Publish(subj string, data []byte) error
}

// NATS publishes events on "<prefix>.<alias>.swapped".
type NATS struct {
	conn   publisher
	close  func()
	prefix string
	logger *zap.Logger
}

// Connect dials a NATS server.
func Connect(url, prefix string, logger *zap.Logger) (*NATS, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := natsConnectFunc(url, nats.Name("swapdex"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	n := newNATS(nc, prefix, logger)
	n.close = nc.Close
	return n, nil
}

func newNATS(p publisher, prefix string, logger *zap.Logger) *NATS {
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATS{conn: p, prefix: prefix, logger: logger}
}

// Subject returns the subject events for alias are published on.
func (n *NATS) Subject(alias string) string {
	return n.prefix + "." + alias + ".swapped"
}

// Publish implements Notifier. Core NATS publish is fire-and-forget.
func (n *NATS) Publish(_ context.Context, ev SwapEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode swap event: %w", err)
	}
	if err := n.conn.Publish(n.Subject(ev.Alias), data); err != nil {
		return fmt.Errorf("publish swap event: %w", err)
	}
	n.logger.Debug("Published swap event", zap.String("alias", ev.Alias), zap.String("index", ev.NewIndex))
	return nil
}

// Close closes the connection.
func (n *NATS) Close() {
	if n.close != nil {
		n.close()
	}
}
