package session

const (
	defaultLookAhead = 5
	defaultMinBatch  = 20
)

// Trigger decides when scrolling has come close enough to the end of the
// rendered list to request the next page. It emits at most once per
// distinct total item count: scrolling around an unchanged list never
// re-requests, and a new emission needs the list to grow or be reset.
//
// Trigger knows nothing about the Cursor. The Session only consults it when
// no load is pending.
type Trigger struct {
	lookAhead int
	minBatch  int

	page      PageToken
	requested int // total item count of the last emission, -1 if none
}

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithLookAhead sets how many unrendered items may remain below the
// viewport before loading starts.
func WithLookAhead(n int) TriggerOption {
	return func(t *Trigger) {
		if n >= 0 {
			t.lookAhead = n
		}
	}
}

// WithMinBatch sets the item count below which the trigger never fires,
// normally one page.
func WithMinBatch(n int) TriggerOption {
	return func(t *Trigger) {
		if n >= 0 {
			t.minBatch = n
		}
	}
}

// NewTrigger creates a Trigger positioned after the first page.
func NewTrigger(opts ...TriggerOption) *Trigger {
	t := &Trigger{
		lookAhead: defaultLookAhead,
		minBatch:  defaultMinBatch,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset(FirstPage)
	return t
}

// Reset forgets previous emissions. The next emitted page is page.Next().
func (t *Trigger) Reset(page PageToken) {
	t.page = page
	t.requested = -1
}

// OnScrolled reports whether the next page should be loaded given the
// current scroll position, and if so which one.
func (t *Trigger) OnScrolled(firstVisible, visibleCount, totalItems int) (PageToken, bool) {
	if totalItems < t.requested {
		// The list shrank underneath us: treat it as a reset.
		t.requested = -1
	}
	if totalItems <= t.requested {
		return "", false
	}
	if totalItems == 0 || totalItems < t.minBatch {
		return "", false
	}

	remaining := totalItems - (max(firstVisible, 0) + max(visibleCount, 0))
	if remaining > t.lookAhead {
		return "", false
	}

	t.requested = totalItems
	t.page = t.page.Next()
	return t.page, true
}

// LookAhead returns the configured threshold.
func (t *Trigger) LookAhead() int {
	return t.lookAhead
}

// MinBatch returns the configured minimum batch size.
func (t *Trigger) MinBatch() int {
	return t.minBatch
}
