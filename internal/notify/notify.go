// Package notify delivers reminder, success, and error messages to an
// external channel. The transport is opaque to the engine.
package notify

import "context"

// Kind classifies outgoing messages for logging and metrics.
type Kind string

const (
	KindReminder Kind = "reminder"
	KindSuccess  Kind = "success"
	KindError    Kind = "error"
)

// Message is a templated notification ready for delivery.
type Message struct {
	Kind Kind
	Text string
}

// Notifier posts a message to a channel. Implementations must be safe
// for use from the single engine goroutine plus manual triggers.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}
