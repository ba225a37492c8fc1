package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
	domain "github.com/donaldgifford/product-search/pkg/types"
)

// pageFetcher serves n products per page up to last, then an empty page.
// Queries named "none" have no results at all.
type pageFetcher struct {
	n    int
	last int
}

func (f *pageFetcher) Fetch(_ context.Context, query string, page session.PageToken) (session.Page, error) {
	p := page.Int()
	if query == "none" || p > f.last {
		return session.Page{}, nil
	}
	records := make([]domain.Product, f.n)
	for i := range records {
		records[i] = domain.Product{
			ID:    fmt.Sprintf("%s-%d-%d", query, p, i),
			Brand: "Acme",
			Name:  fmt.Sprintf("Shoe %d", i),
			Price: "$10.00",
		}
	}
	return session.Page{Records: records}, nil
}

func newTestModel(t *testing.T, opts ...Option) *Model {
	t.Helper()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunnerOptions(session.WithTrigger(session.WithLookAhead(5), session.WithMinBatch(20))),
	}, opts...)
	m := New(context.Background(), &pageFetcher{n: 25, last: 3}, opts...)
	t.Cleanup(m.runner.Close)
	return m
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	return s
}

// settle feeds runner updates into the model until done reports true.
func settle(t *testing.T, m *Model, done func(v session.View) bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-m.runner.Updates():
			require.True(t, ok, "runner stopped")
			m.Update(updateMsg(u))
			if done(m.view) {
				return
			}
		case <-timeout:
			t.Fatalf("view did not settle, last state %s with %d results", m.view.State, m.view.Total)
		}
	}
}

func hasResults(state session.State, total int) func(session.View) bool {
	return func(v session.View) bool {
		return v.State == state && v.Total == total
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestModel_InitFocusesInputWithoutQuery(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	require.NotNil(t, m.Init())
	assert.True(t, m.input.Focused())
	assert.Contains(t, m.View(), "Type a query and press enter")
}

func TestModel_InitialQuery(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, WithQuery("  boots "))
	assert.Equal(t, "boots", m.input.Value())

	m.Init()
	assert.False(t, m.input.Focused())

	assert.Nil(t, run(m.send(session.NewQuery{Query: m.query})))
	settle(t, m, hasResults(session.StateReady, 25))

	out := m.View()
	assert.Contains(t, out, `"boots": 25 results, page 1`)
	assert.Contains(t, out, "Shoe 0")
}

func TestModel_SearchFromInput(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.Init()

	for _, r := range "red" {
		m.Update(key(string(r)))
	}
	assert.Equal(t, "red", m.input.Value())

	_, cmd := m.Update(key("enter"))
	assert.False(t, m.input.Focused())
	assert.Nil(t, run(cmd))
	settle(t, m, hasResults(session.StateReady, 25))
	assert.Equal(t, "red", m.view.Query)
}

func TestModel_BlankInputDoesNothing(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.Init()
	m.Update(key(" "))

	_, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.True(t, m.input.Focused())

	m.Update(key("esc"))
	assert.False(t, m.input.Focused())
}

func TestModel_ScrollingToEndLoadsNextPage(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 18})
	require.Equal(t, 10, m.listHeight())

	require.Nil(t, run(m.send(session.NewQuery{Query: "boots"})))
	settle(t, m, hasResults(session.StateReady, 25))

	_, cmd := m.Update(key("end"))
	assert.Equal(t, 24, m.selected)
	assert.Equal(t, 15, m.top)

	assert.Nil(t, run(cmd))
	settle(t, m, hasResults(session.StateReady, 50))
	assert.Equal(t, session.PageToken("2"), m.view.Page)
	assert.Equal(t, 24, m.selected, "appending keeps the selection")
}

func TestModel_SelectionStaysInBounds(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 11})
	m.Update(updateMsg(session.Update{
		View: session.View{
			Query:   "boots",
			State:   session.StateReady,
			Total:   5,
			Results: make([]domain.Product, 5),
		},
		Change: session.ChangeReplaced,
	}))

	tests := []struct {
		key          string
		wantSelected int
		wantTop      int
	}{
		{key: "up", wantSelected: 0, wantTop: 0},
		{key: "down", wantSelected: 1, wantTop: 0},
		{key: "down", wantSelected: 2, wantTop: 0},
		{key: "down", wantSelected: 3, wantTop: 1},
		{key: "G", wantSelected: 4, wantTop: 2},
		{key: "j", wantSelected: 4, wantTop: 2},
		{key: "g", wantSelected: 0, wantTop: 0},
	}

	for _, tt := range tests {
		m.Update(key(tt.key))
		assert.Equal(t, tt.wantSelected, m.selected, "after %s", tt.key)
		assert.Equal(t, tt.wantTop, m.top, "after %s", tt.key)
	}
}

func TestModel_NoResultsNotice(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	require.Nil(t, run(m.send(session.NewQuery{Query: "none"})))
	settle(t, m, hasResults(session.StateEmpty, 0))

	msg := m.waitForNotice()
	m.Update(msg)

	out := m.View()
	assert.Contains(t, out, "No search results found")
	assert.Contains(t, out, "No results")
}

func TestModel_ErrorShown(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m.Update(errMsg{session.ErrEmptyQuery})
	assert.Contains(t, m.View(), "Error: ")
}

func TestModel_QuitKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{name: "q", msg: key("q")},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestModel(t)
			_, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestModel_SaveWithoutStore(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	_, cmd := m.Update(key("s"))
	msg := run(cmd)
	require.IsType(t, errMsg{}, msg)
	assert.ErrorIs(t, msg.(errMsg).err, ErrNoStore)
	assert.NoError(t, m.Close(context.Background()))
}

func TestModel_SaveAndRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	snap, err := LoadSnapshot(ctx, st, DefaultSnapshotID)
	require.NoError(t, err)
	assert.Nil(t, snap, "nothing saved yet")

	first := newTestModel(t, WithStore(st, ""))
	require.Nil(t, run(first.send(session.NewQuery{Query: "boots"})))
	settle(t, first, hasResults(session.StateReady, 25))

	msg := first.saveCmd()
	require.IsType(t, savedMsg{}, msg)
	first.Update(msg)
	assert.Contains(t, first.View(), `Saved 25 results for "boots"`)
	require.NoError(t, first.Close(ctx))

	snap, err = LoadSnapshot(ctx, st, DefaultSnapshotID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "boots", snap.Query)
	assert.Len(t, snap.Results, 25)

	second := newTestModel(t, WithStore(st, ""), WithSnapshot(snap))
	require.Nil(t, run(second.send(session.Restore{Snapshot: *snap})))
	settle(t, second, func(v session.View) bool { return v.Restored && v.Total == 25 })
	assert.Contains(t, second.View(), "(restored)")
}

func TestModel_CloseSkipsEmptySession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)

	m := newTestModel(t, WithStore(st, "idle"))
	require.NoError(t, m.Close(ctx))

	_, err := st.GetSnapshot(ctx, "idle")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
