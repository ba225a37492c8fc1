package launch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/product-search/internal/launch"
	"github.com/donaldgifford/product-search/internal/session"
)

func TestQueryFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   launch.Intent
		want string
	}{
		{
			name: "system search query",
			in:   launch.Intent{Action: launch.ActionSearch, SearchQuery: "red shoes"},
			want: "red shoes",
		},
		{
			name: "system search wins over parameter",
			in:   launch.Intent{Action: launch.ActionSearch, SearchQuery: "boots", Query: "sandals"},
			want: "boots",
		},
		{
			name: "blank system search falls back to parameter",
			in:   launch.Intent{Action: launch.ActionSearch, SearchQuery: "  ", Query: "sandals"},
			want: "sandals",
		},
		{
			name: "navigation parameter",
			in:   launch.Intent{Action: launch.ActionView, Query: " sandals "},
			want: "sandals",
		},
		{
			name: "search query ignored for navigation",
			in:   launch.Intent{Action: launch.ActionView, SearchQuery: "boots"},
			want: "",
		},
		{
			name: "nothing",
			in:   launch.Intent{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, launch.QueryFrom(tt.in))
		})
	}
}

func TestEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   launch.Intent
		want session.Event
	}{
		{
			name: "fresh launch starts a search",
			in:   launch.Intent{Action: launch.ActionSearch, SearchQuery: "red shoes"},
			want: session.NewQuery{Query: "red shoes"},
		},
		{
			name: "back navigation resumes",
			in:   launch.Intent{Action: launch.ActionView, Query: "red shoes", BackNav: true},
			want: session.Resume{Query: "red shoes"},
		},
		{
			name: "back navigation without query resumes current",
			in:   launch.Intent{BackNav: true},
			want: session.Resume{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, launch.Event(tt.in))
		})
	}
}
