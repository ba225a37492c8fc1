package notify

import (
	"context"
	"log/slog"

	"github.com/donaldgifford/product-search/internal/session"
)

// LogNotifier writes notices to a logger. It is used where nobody is
// watching the session interactively.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that logs each notice.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements session.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, notice session.Notice) {
	attrs := []any{
		"kind", notice.Kind,
		"query", notice.Query,
		"page", notice.Page,
	}
	if notice.Err != nil {
		attrs = append(attrs, "err", notice.Err)
	}
	n.log.InfoContext(ctx, notice.Message, attrs...)
}
