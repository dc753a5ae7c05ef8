// Package notify fans ledger events out to delivery channels. Dispatch
// is fire-and-forget: a channel failure is logged and never reported
// back to the ledger, which has already committed its state change.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Channel delivers one event to one medium (SMS, email, push).
type Channel interface {
	Name() string
	Send(ctx context.Context, event any) error
}

// Dispatcher implements ledger.Notifier over a set of channels.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher builds a dispatcher; with no channels it is a no-op.
func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// Notify sends the event to every channel, logging failures.
func (d *Dispatcher) Notify(ctx context.Context, event any) {
	for _, ch := range d.channels {
		if err := ch.Send(ctx, event); err != nil {
			slog.Warn("notification delivery failed",
				"channel", ch.Name(), "event", fmt.Sprintf("%T", event), "error", err)
			continue
		}
		slog.Debug("notification dispatched",
			"channel", ch.Name(), "event", fmt.Sprintf("%T", event))
	}
}

// LogChannel is a stand-in provider that writes events to the log.
// Real SMS/email/push providers plug in behind the same interface.
type LogChannel struct {
	ChannelName string
}

func (c LogChannel) Name() string { return c.ChannelName }

func (c LogChannel) Send(_ context.Context, event any) error {
	slog.Info("notification", "channel", c.ChannelName, "event", fmt.Sprintf("%+v", event))
	return nil
}
