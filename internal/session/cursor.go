package session

// Cursor tracks the page being loaded and enforces a single request in
// flight.
type Cursor struct {
	current PageToken
	loading bool
}

// NewCursor returns a cursor positioned at the first page.
func NewCursor() *Cursor {
	c := &Cursor{}
	c.Reset()
	return c
}

// Reset moves the cursor back to the first page and clears the loading flag.
func (c *Cursor) Reset() {
	c.current = FirstPage
	c.loading = false
}

// BeginLoad marks token as in flight. It fails with ErrAlreadyLoading while
// another load is pending.
func (c *Cursor) BeginLoad(token PageToken) error {
	if c.loading {
		return ErrAlreadyLoading
	}
	c.current = token
	c.loading = true
	return nil
}

// CompleteLoad clears the loading flag. It must be called once per
// BeginLoad on both the success and failure paths; there are no retries.
func (c *Cursor) CompleteLoad(_ bool) {
	c.loading = false
}

// Current returns the most recently requested page.
func (c *Cursor) Current() PageToken {
	return c.current
}

// Loading reports whether a request is in flight.
func (c *Cursor) Loading() bool {
	return c.loading
}

// restore places the cursor at token with nothing in flight.
func (c *Cursor) restore(token PageToken) {
	c.current = token
	c.loading = false
}
