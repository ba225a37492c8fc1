package notify

import (
	"context"
	"sync"

	"github.com/donaldgifford/product-search/internal/session"
)

const defaultInboxSize = 32

// Inbox holds undelivered notices for one session until a client drains
// them. When full, the oldest notice is dropped.
type Inbox struct {
	mu      sync.Mutex
	notices []session.Notice
	size    int
	dropped int
}

// NewInbox creates an inbox holding at most size notices.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &Inbox{size: size}
}

// Notify implements session.Notifier.
func (i *Inbox) Notify(_ context.Context, n session.Notice) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.notices) == i.size {
		i.notices = i.notices[1:]
		i.dropped++
	}
	i.notices = append(i.notices, n)
}

// Drain returns pending notices oldest first and empties the inbox.
func (i *Inbox) Drain() []session.Notice {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.notices
	i.notices = nil
	if out == nil {
		return []session.Notice{}
	}
	return out
}

// Len returns the number of pending notices.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.notices)
}

// Dropped returns how many notices were discarded because the inbox was
// full.
func (i *Inbox) Dropped() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.dropped
}
