package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/donaldgifford/product-search/internal/session"
)

const (
	colorRed    = 0xE74C3C // fetch failed
	colorOrange = 0xE67E22 // other notices

	webhookTimeout = 10 * time.Second
	maxErrorBody   = 1 << 10
)

// WebhookNotifier posts notices to a Discord-compatible webhook so operators
// see catalog failures. By default only notices that carry a fetch error
// are sent. Posts happen in the background so the session is never blocked.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	log        *slog.Logger
	all        bool

	wg sync.WaitGroup
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithWebhookLogger sets the logger used for delivery failures.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(w *WebhookNotifier) {
		w.log = l
	}
}

// WithAllNotices also posts notices that carry no error.
func WithAllNotices() WebhookOption {
	return func(w *WebhookNotifier) {
		w.all = true
	}
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(webhookURL string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type webhookPayload struct {
	Embeds []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []webhookEmbedField `json:"fields,omitempty"`
}

type webhookEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Notify implements session.Notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, n session.Notice) {
	if n.Err == nil && !w.all {
		return
	}

	payload := webhookPayload{Embeds: []webhookEmbed{buildEmbed(&n)}}
	ctx = context.WithoutCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
		defer cancel()
		if err := w.post(ctx, payload); err != nil {
			w.log.Warn("posting notice webhook", "kind", n.Kind, "query", n.Query, "err", err)
		}
	}()
}

// Wait blocks until background posts have finished.
func (w *WebhookNotifier) Wait() {
	w.wg.Wait()
}

func buildEmbed(n *session.Notice) webhookEmbed {
	embed := webhookEmbed{
		Title: n.Message,
		Color: colorOrange,
		Fields: []webhookEmbedField{
			{Name: "Query", Value: n.Query, Inline: true},
			{Name: "Page", Value: string(n.Page), Inline: true},
			{Name: "Kind", Value: string(n.Kind), Inline: true},
		},
	}
	if n.Err != nil {
		embed.Color = colorRed
		embed.Description = n.Err.Error()
	}
	return embed
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("webhook rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
