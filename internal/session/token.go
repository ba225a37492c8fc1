package session

import (
	"fmt"
	"strconv"
)

// PageToken identifies a page of results. Tokens are string-encoded
// positive integers so they persist verbatim.
type PageToken string

// FirstPage is the token every fresh search starts from.
const FirstPage PageToken = "1"

// PageFromInt returns the token for page n.
func PageFromInt(n int) PageToken {
	return PageToken(strconv.Itoa(n))
}

// ParsePageToken validates s and returns it as a PageToken.
func ParsePageToken(s string) (PageToken, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPageToken, s)
	}
	return PageFromInt(n), nil
}

// Int returns the page number. Invalid tokens report 0.
func (t PageToken) Int() int {
	n, err := strconv.Atoi(string(t))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Next returns the token of the following page.
func (t PageToken) Next() PageToken {
	return PageFromInt(t.Int() + 1)
}

// Prev returns the token of the preceding page, never below FirstPage.
func (t PageToken) Prev() PageToken {
	n := t.Int() - 1
	if n < 1 {
		return FirstPage
	}
	return PageFromInt(n)
}

// IsFirst reports whether t addresses the first page.
func (t PageToken) IsFirst() bool {
	return t.Int() <= 1
}
