package adminlog

import (
	"context"
	"log/slog"
	"sort"
)

// Kind classifies an administrative notification.
type Kind string

const (
	KindPayment     Kind = "payment_recorded"
	KindDeploy      Kind = "deploy_completed"
	KindError       Kind = "error_occurred"
	KindAdminAction Kind = "admin_action"
)

// Event is a flat key/value record describing something administrators
// care about. Delivery and formatting belong to the Notifier.
type Event struct {
	Kind   Kind
	Fields map[string]string
}

// Notifier delivers administrative events. Implementations must treat
// delivery as best-effort and never fail the originating flow.
type Notifier interface {
	Emit(ctx context.Context, event Event)
}

// LogNotifier writes events to the structured log. It is the default
// observer and the fallback when no channels are configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a slog-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Emit logs the event with its fields in stable order.
func (n *LogNotifier) Emit(_ context.Context, event Event) {
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, 2*len(keys)+2)
	args = append(args, "kind", string(event.Kind))
	for _, k := range keys {
		args = append(args, k, event.Fields[k])
	}
	n.logger.Info("admin notification", args...)
}

// Multi fans an event out to several notifiers.
type Multi []Notifier

// Emit delivers the event to every notifier in order.
func (m Multi) Emit(ctx context.Context, event Event) {
	for _, n := range m {
		n.Emit(ctx, event)
	}
}
