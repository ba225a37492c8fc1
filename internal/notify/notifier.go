// Package notify delivers session notices: to the log, to per-session
// inboxes drained by API clients, and to an operator webhook.
package notify

import (
	"context"

	"github.com/donaldgifford/product-search/internal/session"
)

// Multi fans a notice out to every wrapped notifier in order.
type Multi []session.Notifier

// Notify implements session.Notifier.
func (m Multi) Notify(ctx context.Context, n session.Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Func adapts a plain function to session.Notifier.
type Func func(ctx context.Context, n session.Notice)

// Notify implements session.Notifier.
func (f Func) Notify(ctx context.Context, n session.Notice) {
	f(ctx, n)
}

var (
	_ session.Notifier = Multi(nil)
	_ session.Notifier = Func(nil)
	_ session.Notifier = (*LogNotifier)(nil)
	_ session.Notifier = (*Inbox)(nil)
	_ session.Notifier = (*WebhookNotifier)(nil)
)
