package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/reportbot/internal/config"
	"git.home.luguber.info/inful/reportbot/internal/errors"
)

// NATSNotifier publishes messages to a NATS subject, for deployments
// where a chat bridge or downstream consumer handles delivery.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// natsPayload is the wire format published to the subject.
type natsPayload struct {
	Kind Kind      `json:"kind"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// NewNATSNotifier connects to the configured NATS server.
func NewNATSNotifier(cfg config.NATSConfig) (*NATSNotifier, error) {
	if cfg.URL == "" {
		return nil, errors.ConfigRequired("notify.nats.url")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name("reportbot-notifier"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.NotificationFailed("nats", err)
	}
	return &NATSNotifier{conn: conn, subject: cfg.Subject}, nil
}

// Name identifies the transport in logs and status output.
func (n *NATSNotifier) Name() string { return "nats" }

// Send publishes the message and flushes so delivery failures surface
// to the caller instead of sitting in the client buffer.
func (n *NATSNotifier) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(natsPayload{Kind: msg.Kind, Text: msg.Text, At: time.Now()})
	if err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.NotificationFailed(n.Name(), err)
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
