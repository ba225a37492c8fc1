package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/product-search/internal/session"
)

func TestTrigger_OnScrolled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		first, visible, tot int
		wantFire            bool
	}{
		{name: "far from the end", first: 0, visible: 5, tot: 20, wantFire: false},
		{name: "just outside threshold", first: 9, visible: 5, tot: 20, wantFire: false},
		{name: "at threshold", first: 10, visible: 5, tot: 20, wantFire: true},
		{name: "last item visible", first: 15, visible: 5, tot: 20, wantFire: true},
		{name: "below minimum batch", first: 5, visible: 5, tot: 10, wantFire: false},
		{name: "empty list", first: 0, visible: 0, tot: 0, wantFire: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := session.NewTrigger(session.WithLookAhead(5), session.WithMinBatch(20))
			page, ok := tr.OnScrolled(tt.first, tt.visible, tt.tot)
			assert.Equal(t, tt.wantFire, ok)
			if tt.wantFire {
				assert.Equal(t, session.PageToken("2"), page)
			}
		})
	}
}

func TestTrigger_FiresOncePerTotal(t *testing.T) {
	t.Parallel()

	tr := session.NewTrigger(session.WithLookAhead(5), session.WithMinBatch(20))

	page, ok := tr.OnScrolled(14, 5, 20)
	assert.True(t, ok)
	assert.Equal(t, session.PageToken("2"), page)

	// Scrolling around the same list never fires again.
	for first := 10; first <= 15; first++ {
		_, ok = tr.OnScrolled(first, 5, 20)
		assert.False(t, ok, "refired at first=%d", first)
	}

	// The list grows: firing resumes once the end is near again.
	_, ok = tr.OnScrolled(20, 5, 40)
	assert.False(t, ok)
	page, ok = tr.OnScrolled(34, 5, 40)
	assert.True(t, ok)
	assert.Equal(t, session.PageToken("3"), page)

	_, ok = tr.OnScrolled(35, 5, 40)
	assert.False(t, ok)
}

func TestTrigger_ResetAllowsRefire(t *testing.T) {
	t.Parallel()

	tr := session.NewTrigger(session.WithLookAhead(5), session.WithMinBatch(20))
	_, ok := tr.OnScrolled(15, 5, 20)
	assert.True(t, ok)

	tr.Reset(session.FirstPage)
	page, ok := tr.OnScrolled(15, 5, 20)
	assert.True(t, ok)
	assert.Equal(t, session.PageToken("2"), page)

	tr.Reset("4")
	page, ok = tr.OnScrolled(15, 5, 20)
	assert.True(t, ok)
	assert.Equal(t, session.PageToken("5"), page)
}

func TestTrigger_ShrinkingListCountsAsReset(t *testing.T) {
	t.Parallel()

	tr := session.NewTrigger(session.WithLookAhead(5), session.WithMinBatch(20))
	_, ok := tr.OnScrolled(35, 5, 40)
	assert.True(t, ok)

	_, ok = tr.OnScrolled(15, 5, 20)
	assert.True(t, ok)
}

func TestTrigger_Defaults(t *testing.T) {
	t.Parallel()

	tr := session.NewTrigger()
	assert.Equal(t, 5, tr.LookAhead())
	assert.Equal(t, 20, tr.MinBatch())
}
