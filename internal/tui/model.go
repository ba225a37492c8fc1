// Package tui is the terminal results screen: a search box above an
// infinitely scrolling product list, driven by a session.Runner.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/donaldgifford/product-search/internal/notify"
	"github.com/donaldgifford/product-search/internal/session"
	"github.com/donaldgifford/product-search/internal/store"
	"github.com/donaldgifford/product-search/pkg/logger"
)

const (
	// DefaultSnapshotID is the snapshot the screen saves to and restores from.
	DefaultSnapshotID = "terminal"

	noticeBuffer  = 16
	chromeLines   = 8
	defaultHeight = 20
)

// ErrNoStore is reported when saving without a snapshot store.
var ErrNoStore = errors.New("no snapshot store configured")

type (
	updateMsg session.Update
	noticeMsg session.Notice
	errMsg    struct{ err error }
	savedMsg  struct{ rec *store.SnapshotRecord }
	closedMsg struct{}
)

// Model is the bubbletea model of the results screen.
type Model struct {
	ctx        context.Context
	runner     *session.Runner
	store      store.SnapshotStore
	snapshotID string
	log        *slog.Logger
	runnerOpts []session.RunnerOption

	query   string
	restore *session.Snapshot

	notices chan session.Notice
	input   textinput.Model
	spinner spinner.Model
	styles  *Styles

	view     session.View
	notice   string
	err      error
	selected int
	top      int
	width    int
	height   int
}

// Option configures a Model.
type Option func(*Model)

// WithQuery sets the query searched for when the screen opens.
func WithQuery(q string) Option {
	return func(m *Model) {
		m.query = strings.TrimSpace(q)
	}
}

// WithSnapshot restores snap when the screen opens instead of searching.
func WithSnapshot(snap *session.Snapshot) Option {
	return func(m *Model) {
		m.restore = snap
	}
}

// WithStore enables saving the session under id.
func WithStore(s store.SnapshotStore, id string) Option {
	return func(m *Model) {
		m.store = s
		if id != "" {
			m.snapshotID = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// WithRunnerOptions passes options through to the session runner.
func WithRunnerOptions(opts ...session.RunnerOption) Option {
	return func(m *Model) {
		m.runnerOpts = append(m.runnerOpts, opts...)
	}
}

// New creates the screen and starts its session runner. Call Close when
// the program exits.
func New(ctx context.Context, f session.Fetcher, opts ...Option) *Model {
	m := &Model{
		ctx:        ctx,
		snapshotID: DefaultSnapshotID,
		log:        logger.Discard(),
		notices:    make(chan session.Notice, noticeBuffer),
		styles:     NewStyles(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.input = textinput.New()
	m.input.Placeholder = "Search products"
	m.input.Prompt = "/ "
	m.input.CharLimit = 200
	m.input.SetValue(m.query)

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))

	runOpts := append([]session.RunnerOption{session.WithLogger(m.log)}, m.runnerOpts...)
	runOpts = append(runOpts, session.WithNotifier(notify.Func(m.pushNotice)))
	m.runner = session.NewRunner(f, runOpts...)
	m.runner.Start(ctx)

	return m
}

// LoadSnapshot reads snapshot id from s. A missing snapshot is not an
// error and returns nil.
func LoadSnapshot(ctx context.Context, s store.SnapshotStore, id string) (*session.Snapshot, error) {
	rec, err := s.GetSnapshot(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", id, err)
	}
	snap := rec.Snapshot()
	return &snap, nil
}

// Close saves the session when a store is configured and stops the runner.
func (m *Model) Close(ctx context.Context) error {
	defer m.runner.Close()
	if m.store == nil {
		return nil
	}
	_, err := m.save(ctx)
	if errors.Is(err, errNothingToSave) {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.waitForUpdate, m.waitForNotice}
	switch {
	case m.restore != nil:
		cmds = append(cmds, m.send(session.Restore{Snapshot: *m.restore}))
	case m.query != "":
		cmds = append(cmds, m.send(session.NewQuery{Query: m.query}))
	default:
		cmds = append(cmds, m.input.Focus())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateList(msg)

	case updateMsg:
		m.view = msg.View
		if msg.Change == session.ChangeReplaced {
			m.selected = 0
			m.top = 0
		}
		m.clamp()
		return m, m.waitForUpdate

	case noticeMsg:
		m.notice = msg.Message
		return m, m.waitForNotice

	case savedMsg:
		m.notice = fmt.Sprintf("Saved %d results for %q", msg.rec.ResultCount, msg.rec.Query)
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case closedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		q := strings.TrimSpace(m.input.Value())
		if q == "" {
			return m, nil
		}
		m.input.Blur()
		m.notice = ""
		m.err = nil
		return m, m.send(session.NewQuery{Query: q})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.listHeight()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		return m, m.input.Focus()
	case "up", "k":
		return m, m.moveTo(m.selected - 1)
	case "down", "j":
		return m, m.moveTo(m.selected + 1)
	case "pgup":
		return m, m.moveTo(m.selected - page)
	case "pgdown", " ":
		return m, m.moveTo(m.selected + page)
	case "home", "g":
		return m, m.moveTo(0)
	case "end", "G":
		return m, m.moveTo(len(m.view.Results) - 1)
	case "s":
		return m, m.saveCmd
	}
	return m, nil
}

// moveTo selects row i, scrolls it into view and reports the new list
// position to the session.
func (m *Model) moveTo(i int) tea.Cmd {
	m.selected = i
	m.clamp()
	return m.send(session.Scrolled{
		FirstVisible: m.top,
		VisibleCount: m.listHeight(),
		TotalItems:   len(m.view.Results),
	})
}

func (m *Model) clamp() {
	n := len(m.view.Results)
	h := m.listHeight()
	m.selected = min(max(m.selected, 0), max(n-1, 0))
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+h {
		m.top = m.selected - h + 1
	}
	m.top = min(max(m.top, 0), max(n-h, 0))
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return defaultHeight
	}
	return max(m.height-chromeLines, 1)
}

func (m *Model) send(ev session.Event) tea.Cmd {
	return func() tea.Msg {
		if err := m.runner.Send(m.ctx, ev); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *Model) waitForUpdate() tea.Msg {
	u, ok := <-m.runner.Updates()
	if !ok {
		return closedMsg{}
	}
	return updateMsg(u)
}

func (m *Model) waitForNotice() tea.Msg {
	select {
	case n := <-m.notices:
		return noticeMsg(n)
	case <-m.runner.Done():
		return closedMsg{}
	}
}

// pushNotice runs on the runner goroutine and must not block it.
func (m *Model) pushNotice(_ context.Context, n session.Notice) {
	select {
	case m.notices <- n:
	default:
		m.log.Debug("dropped notice", "kind", n.Kind)
	}
}

var errNothingToSave = errors.New("nothing to save")

func (m *Model) saveCmd() tea.Msg {
	rec, err := m.save(m.ctx)
	if err != nil {
		return errMsg{err}
	}
	return savedMsg{rec}
}

func (m *Model) save(ctx context.Context) (*store.SnapshotRecord, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}
	snap, err := m.runner.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("capturing snapshot: %w", err)
	}
	if snap.Query == "" {
		return nil, errNothingToSave
	}
	rec := store.NewSnapshotRecord(m.snapshotID, snap)
	if err := m.store.SaveSnapshot(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	m.log.Debug("saved snapshot", "id", rec.ID, "query", rec.Query, "results", rec.ResultCount)
	return rec, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Product search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	results := m.view.Results
	end := min(m.top+m.listHeight(), len(results))
	for i := m.top; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	if m.view.State == session.StateEmpty {
		b.WriteString(m.styles.Dim.Render("  No results"))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("/ search • ↑/↓ scroll • s save • q quit"))
	return b.String()
}

func (m *Model) statusLine() string {
	v := m.view
	if v.Query == "" {
		return m.styles.Status.Render("Type a query and press enter")
	}

	status := fmt.Sprintf("%q: %d results, page %s", v.Query, v.Total, v.Page)
	if v.Restored {
		status += " (restored)"
	}
	if v.State == session.StateExhausted {
		status += ", end of results"
	}
	if v.Loading {
		return m.spinner.View() + " " + m.styles.Status.Render(status+", loading")
	}
	return m.styles.Status.Render(status)
}

func (m *Model) renderRow(i int) string {
	p := m.view.Results[i]
	price := m.styles.Price.Render(p.Price)
	if p.OnSale() {
		price += " " + m.styles.Sale.Render(p.PercentOff+" off")
	}
	line := fmt.Sprintf("%s %s  %s", m.styles.Brand.Render(p.Brand), p.Name, price)
	if i == m.selected {
		return m.styles.Selected.Render("›" + line)
	}
	return m.styles.Row.Render(line)
}
