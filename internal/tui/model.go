// Catalog - Item Catalog Browser
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/catalog

// Package tui is the Bubble Tea terminal browser for the catalog.
//
// The list view pages through items (search, pagination, selection); the
// detail view shows one item. State changes from the data controller reach
// the model through a StateFeed.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomtom215/catalog/internal/controller"
	"github.com/tomtom215/catalog/internal/logging"
	"github.com/tomtom215/catalog/internal/models"
	"github.com/tomtom215/catalog/internal/query"
	"github.com/tomtom215/catalog/internal/theme"
)

// DefaultPageSize is the number of items per page.
const DefaultPageSize = 20

// ItemsController is the part of controller.Controller the UI drives.
type ItemsController interface {
	FetchItems(q query.Query)
	SearchDebounced(q query.Query)
	AddSelected(item models.Item)
	RemoveSelected(id int)
	ClearSelected()
	Snapshot() controller.State
	FetchItem(ctx context.Context, id int) (models.Item, error)
}

// ThemeController is the part of theme.Controller the UI drives.
type ThemeController interface {
	Theme() theme.Theme
	Toggle() error
}

type view int

const (
	viewList view = iota
	viewDetail
)

// StateFeed carries controller states into the Bubble Tea loop. Only the
// newest undelivered state is kept.
type StateFeed struct {
	ch chan controller.State
}

// NewStateFeed returns an empty feed.
func NewStateFeed() *StateFeed {
	return &StateFeed{ch: make(chan controller.State, 1)}
}

// Push replaces any undelivered state with s. Use it as the controller's
// OnChange hook; it never blocks.
func (f *StateFeed) Push(s controller.State) {
	for {
		select {
		case f.ch <- s:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// next waits for the following state.
func (f *StateFeed) next() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-f.ch)
	}
}

type stateMsg controller.State

type detailMsg struct {
	seq  int
	item models.Item
	err  error
}

type themeErrMsg struct{ err error }

type detailState struct {
	seq     int
	id      int
	loading bool
	item    models.Item
	err     error
	cancel  context.CancelFunc
}

// Options configures the model.
type Options struct {
	Context  context.Context
	Items    ItemsController
	Theme    ThemeController
	Feed     *StateFeed
	PageSize int
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	items    ItemsController
	theme    ThemeController
	feed     *StateFeed
	pageSize int
	keys     keyMap

	state   controller.State
	page    int
	cursor  int
	view    view
	search  textinput.Model
	spinner spinner.Model
	detail  detailState
	status  string
	width   int
}

// New builds the model. The first page is requested by Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	search := textinput.New()
	search.Placeholder = "Search items..."
	search.Prompt = "/ "
	search.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		items:    opts.Items,
		theme:    opts.Theme,
		feed:     opts.Feed,
		pageSize: pageSize,
		keys:     defaultKeyMap(),
		state:    opts.Items.Snapshot(),
		search:   search,
		spinner:  sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.items.FetchItems(m.currentQuery())
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.feed != nil {
		cmds = append(cmds, m.feed.next())
	}
	return tea.Batch(cmds...)
}

func (m Model) currentQuery() query.Query {
	return query.Query{
		Q:      m.search.Value(),
		Limit:  query.Int(m.pageSize),
		Offset: query.Int(m.page * m.pageSize),
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case stateMsg:
		m.state = controller.State(msg)
		m.clampCursor()
		if m.feed != nil {
			return m, m.feed.next()
		}
		return m, nil

	case detailMsg:
		if msg.seq != m.detail.seq {
			return m, nil
		}
		m.detail.loading = false
		m.detail.item = msg.item
		m.detail.err = msg.err
		return m, nil

	case themeErrMsg:
		m.status = "Theme not saved: " + msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.handleDetailKey(msg)
		}
		if m.search.Focused() {
			return m.handleSearchKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if key.Matches(msg, m.keys.Blur) {
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.page = 0
		m.cursor = 0
		m.items.SearchDebounced(m.currentQuery())
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.canNext() {
			m.page++
			m.cursor = 0
			m.items.FetchItems(m.currentQuery())
			m.state.Loading = true
		}

	case key.Matches(msg, m.keys.PrevPage):
		if m.canPrev() {
			m.page--
			m.cursor = 0
			m.items.FetchItems(m.currentQuery())
			m.state.Loading = true
		}

	case key.Matches(msg, m.keys.Refresh):
		m.items.FetchItems(m.currentQuery())
		m.state.Loading = true

	case key.Matches(msg, m.keys.Select):
		if it, ok := m.cursorItem(); ok {
			m.items.AddSelected(it)
		}

	case key.Matches(msg, m.keys.Remove):
		if it, ok := m.cursorItem(); ok {
			m.items.RemoveSelected(it.ID)
		}

	case key.Matches(msg, m.keys.Clear):
		m.items.ClearSelected()

	case key.Matches(msg, m.keys.Open):
		if it, ok := m.cursorItem(); ok {
			return m.openDetail(it.ID)
		}

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, m.toggleTheme()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		if m.detail.cancel != nil {
			m.detail.cancel()
		}
		m.view = viewList
		m.detail = detailState{seq: m.detail.seq}
	case key.Matches(msg, m.keys.ToggleTheme):
		return m, m.toggleTheme()
	}
	return m, nil
}

func (m Model) openDetail(id int) (tea.Model, tea.Cmd) {
	if m.detail.cancel != nil {
		m.detail.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	seq := m.detail.seq + 1
	m.view = viewDetail
	m.detail = detailState{seq: seq, id: id, loading: true, cancel: cancel}

	items := m.items
	return m, func() tea.Msg {
		defer cancel()
		item, err := items.FetchItem(ctx, id)
		return detailMsg{seq: seq, item: item, err: err}
	}
}

func (m Model) toggleTheme() tea.Cmd {
	if m.theme == nil {
		return nil
	}
	if err := m.theme.Toggle(); err != nil {
		logging.Warn().Err(err).Msg("Theme toggle not persisted")
		return func() tea.Msg { return themeErrMsg{err: err} }
	}
	return nil
}

func (m Model) cursorItem() (models.Item, bool) {
	if m.state.Loading || m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return models.Item{}, false
	}
	return m.state.Items[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.state.Items) {
		m.cursor = len(m.state.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// canNext is false while loading or when the page came back short.
func (m Model) canNext() bool {
	return !m.state.Loading && len(m.state.Items) >= m.pageSize
}

func (m Model) canPrev() bool {
	return !m.state.Loading && m.page > 0
}
