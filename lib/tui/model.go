// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/roster"
	"github.com/bureau-foundation/outpass/lib/shell"
	"github.com/bureau-foundation/outpass/lib/workspace"
	"github.com/bureau-foundation/outpass/portal"
)

// FocusRegion identifies which part of the viewer receives keys.
type FocusRegion int

const (
	// FocusNavigation is the screen list on the left.
	FocusNavigation FocusRegion = iota

	// FocusContent is the rows of the current screen.
	FocusContent

	// FocusSearch routes typing into the row search.
	FocusSearch

	// FocusConfirm routes keys to the open confirmation modal.
	FocusConfirm
)

// navigationWidth is the column count of the navigation pane, divider
// included.
const navigationWidth = 26

// screenBuffer bounds the router events waiting for the update loop.
const screenBuffer = 16

// Config configures a Model.
type Config struct {
	// Shell is the running client. Required.
	Shell *shell.Shell

	// Context bounds every fetch the viewer starts. Defaults to
	// context.Background.
	Context context.Context

	// Notifications feeds the status line, normally a notify.Channel
	// installed as the shell's sink. Nil disables the status line.
	Notifications <-chan notify.Notification

	// Theme overrides DefaultTheme.
	Theme *Theme
}

// Model is the bubbletea model of the workspace viewer: a navigation
// pane listing the screens of the mounted workspace, a content pane
// showing the current screen, and a status line with the latest
// notification.
//
// The router is the source of truth for the current screen. Every
// navigation, including the reset to the logged-out workspace after a
// session is invalidated, arrives as a router event and reloads the
// content pane.
type Model struct {
	ctx   context.Context
	shell *shell.Shell
	theme Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	focus       FocusRegion
	priorFocus  FocusRegion
	screen      workspace.Screen
	navCursor   int
	navViewport Viewport

	// content is the loaded screen; rows is content.Rows narrowed by
	// the search query.
	content     content
	loading     bool
	loadErr     error
	rows        []row
	rowCursor   int
	rowViewport Viewport
	bodyOffset  int
	query       string
	matcher     *roster.Matcher

	// detailKey is the row key a detail screen was opened from.
	detailKey string

	confirm *ConfirmModal
	pending pendingAction

	status    notify.Notification
	hasStatus bool

	screens       chan workspace.Screen
	notifications <-chan notify.Notification
}

// pendingAction is the outpass action waiting on the confirmation
// modal.
type pendingAction struct {
	id     string
	action outpass.Action
	queue  *outpass.Queue
}

type screenMsg struct {
	screen workspace.Screen
}

type contentMsg struct {
	content content
	err     error
}

type notificationMsg struct {
	notification notify.Notification
}

type actedMsg struct {
	screen workspace.Screen
	queue  *outpass.Queue
	err    error
}

// NewModel returns a viewer showing the router's current screen. It
// subscribes to the router for the life of the shell.
func NewModel(config Config) Model {
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	theme := DefaultTheme
	if config.Theme != nil {
		theme = *config.Theme
	}

	model := Model{
		ctx:           ctx,
		shell:         config.Shell,
		theme:         theme,
		keys:          DefaultKeyMap,
		screen:        config.Shell.Router.Current(),
		loading:       true,
		matcher:       roster.NewMatcher(),
		screens:       make(chan workspace.Screen, screenBuffer),
		notifications: config.Notifications,
	}
	screens := model.screens
	config.Shell.Router.OnNavigate(func(screen workspace.Screen) {
		select {
		case screens <- screen:
		default:
		}
	})
	model.syncNavigationCursor()
	return model
}

// Init implements tea.Model. Loads the current screen and starts
// listening for router events and notifications.
func (model Model) Init() tea.Cmd {
	commands := []tea.Cmd{
		listenForScreen(model.screens),
		model.load(model.screen),
	}
	if model.notifications != nil {
		commands = append(commands, listenForNotification(model.notifications))
	}
	return tea.Batch(commands...)
}

func listenForScreen(channel <-chan workspace.Screen) tea.Cmd {
	return func() tea.Msg {
		screen, ok := <-channel
		if !ok {
			return nil
		}
		return screenMsg{screen: screen}
	}
}

func listenForNotification(channel <-chan notify.Notification) tea.Cmd {
	return func() tea.Msg {
		notification, ok := <-channel
		if !ok {
			return nil
		}
		return notificationMsg{notification: notification}
	}
}

// load returns a command fetching the content of screen.
func (model Model) load(screen workspace.Screen) tea.Cmd {
	ctx := model.ctx
	running := model.shell
	detailKey := model.detailKey
	width := max(model.width-navigationWidth-2, 20)
	return func() tea.Msg {
		loaded, err := loadContent(ctx, running, screen, detailKey, width)
		return contentMsg{content: loaded, err: err}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch model.focus {
		case FocusConfirm:
			return model.handleConfirmKeys(message)
		case FocusSearch:
			return model.handleSearchKeys(message)
		}
		return model.handleKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updateViewports()

	case screenMsg:
		return model.enterScreen(message.screen)

	case contentMsg:
		if message.content.Screen != model.screen {
			if message.content.Queue != nil {
				message.content.Queue.Detach()
			}
			return model, nil
		}
		model.loading = false
		model.loadErr = message.err
		model.content = message.content
		model.applySearch()
		if message.err != nil && !portal.IsInvalidated(message.err) {
			model.setStatus(notify.Error, "Failed to load "+screenTitle(model.screen), portal.MessageOf(message.err))
		}

	case notificationMsg:
		model.status = message.notification
		model.hasStatus = true
		return model, listenForNotification(model.notifications)

	case actedMsg:
		if message.screen == model.screen && message.queue == model.content.Queue {
			model.content.Rows = outpassRows(message.queue.Items())
			model.applySearch()
		}
	}
	return model, nil
}

// enterScreen switches the content pane to screen and starts its load.
func (model Model) enterScreen(screen workspace.Screen) (tea.Model, tea.Cmd) {
	if model.content.Queue != nil {
		model.content.Queue.Detach()
	}
	if model.confirm != nil {
		model.closeConfirm()
	}
	model.screen = screen
	model.content = content{Screen: screen, Title: screenTitle(screen)}
	model.loading = true
	model.loadErr = nil
	model.query = ""
	if model.focus == FocusSearch {
		model.focus = model.priorFocus
	}
	model.rows = nil
	model.rowCursor = 0
	model.bodyOffset = 0
	model.syncNavigationCursor()
	model.updateViewports()
	return model, tea.Batch(listenForScreen(model.screens), model.load(screen))
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	router := model.shell.Router
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusNavigation {
			model.focus = FocusContent
		} else {
			model.focus = FocusNavigation
		}

	case key.Matches(message, model.keys.Tab1):
		model.switchTab(workspace.TabHome)
	case key.Matches(message, model.keys.Tab2):
		model.switchTab(workspace.TabSubjects)
	case key.Matches(message, model.keys.Tab3):
		model.switchTab(workspace.TabOutpass)
	case key.Matches(message, model.keys.Tab4):
		model.switchTab(workspace.TabProfile)

	case key.Matches(message, model.keys.Back):
		if !router.Back() {
			model.setStatus(notify.Info, "Nothing to go back to", "")
		}

	case key.Matches(message, model.keys.Refresh):
		model.loading = true
		return model, model.load(model.screen)

	case key.Matches(message, model.keys.Search):
		model.priorFocus = model.focus
		model.focus = FocusSearch
		model.rowCursor = 0

	case key.Matches(message, model.keys.SearchClear):
		if model.query != "" {
			model.query = ""
			model.applySearch()
		}

	case key.Matches(message, model.keys.Approve):
		model.openConfirm(outpass.Approve)
	case key.Matches(message, model.keys.Reject):
		model.openConfirm(outpass.Reject)

	case key.Matches(message, model.keys.Open):
		if model.focus == FocusNavigation {
			screens := model.navigationScreens()
			if model.navCursor < len(screens) {
				model.navigate(screens[model.navCursor])
			}
		} else if selected, ok := model.selectedRow(); ok && model.content.Detail != "" {
			model.detailKey = selected.Key
			model.navigate(model.content.Detail)
		}

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-max(model.rowViewport.Height, 1))
	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(max(model.rowViewport.Height, 1))
	}
	return model, nil
}

// navigate asks the router for screen. The content switches when the
// router reports the navigation; a refusal is shown in the status line.
func (model *Model) navigate(screen workspace.Screen) {
	if err := model.shell.Router.Navigate(screen); err != nil {
		model.showNavigationError(err)
	}
}

func (model *Model) switchTab(name workspace.TabName) {
	if !model.shell.Router.Graph().Tabbed() {
		return
	}
	if err := model.shell.Router.SwitchTab(name); err != nil {
		model.showNavigationError(err)
	}
}

func (model *Model) showNavigationError(err error) {
	var incomplete *profile.IncompleteError
	if errors.As(err, &incomplete) {
		model.setStatus(notify.Error, incomplete.Error(), incomplete.Hint())
		return
	}
	model.setStatus(notify.Error, "Cannot open screen", err.Error())
}

func (model *Model) setStatus(level notify.Level, title, message string) {
	model.status = notify.Notification{Level: level, Title: title, Message: message}
	model.hasStatus = true
}

func (model *Model) moveCursor(delta int) {
	if model.focus == FocusNavigation {
		count := len(model.navigationScreens())
		if count == 0 {
			return
		}
		model.navCursor = min(max(model.navCursor+delta, 0), count-1)
		model.navViewport = model.navViewport.Follow(model.navCursor)
		return
	}
	if len(model.content.Rows) == 0 {
		lines := len(splitLines(model.content.Body))
		model.bodyOffset = min(max(model.bodyOffset+delta, 0), max(lines-model.bodyHeight()+1, 0))
		return
	}
	if len(model.rows) == 0 {
		return
	}
	model.rowCursor = min(max(model.rowCursor+delta, 0), len(model.rows)-1)
	model.rowViewport = model.rowViewport.Follow(model.rowCursor)
}

func (model Model) selectedRow() (row, bool) {
	if model.rowCursor < 0 || model.rowCursor >= len(model.rows) {
		return row{}, false
	}
	return model.rows[model.rowCursor], true
}

// navigationScreens lists the screens of the navigation pane: the
// active tab's screens in a tabbed workspace, every screen otherwise.
func (model Model) navigationScreens() []workspace.Screen {
	graph := model.shell.Router.Graph()
	if graph.Tabbed() {
		if tab, ok := graph.Tab(model.shell.Router.ActiveTab()); ok {
			return tab.Screens
		}
	}
	return graph.Screens()
}

func (model *Model) syncNavigationCursor() {
	screens := model.navigationScreens()
	if index := slices.Index(screens, model.screen); index >= 0 {
		model.navCursor = index
	} else {
		model.navCursor = 0
	}
	model.navViewport.Total = len(screens)
	model.navViewport = model.navViewport.Follow(model.navCursor)
}

// openConfirm asks before acting on the selected outpass. Rows the role
// cannot act on get an explanation instead of a modal.
func (model *Model) openConfirm(action outpass.Action) {
	queue := model.content.Queue
	selected, ok := model.selectedRow()
	if queue == nil || !ok || selected.Record == nil {
		return
	}
	record := *selected.Record
	if !slices.Contains(queue.Affordances(record), action) {
		model.setStatus(notify.Info, "No action available",
			"This outpass is "+record.Status.Label()+".")
		return
	}

	title := "Approve Outpass"
	label := "Approve"
	if action == outpass.Reject {
		title = "Reject Outpass"
		label = "Reject"
	}
	message := "Are you sure?\n\n" + roster.Join(record.Student.Name, record.Student.RegisterNumber) +
		"\n" + record.Window() + "\n" + Truncate(record.Reason, 48)
	modal := NewConfirmModal(title, message, label, action == outpass.Reject, model.theme)
	model.confirm = &modal
	model.pending = pendingAction{id: record.ID, action: action, queue: queue}
	model.priorFocus = model.focus
	model.focus = FocusConfirm
}

func (model *Model) closeConfirm() {
	model.confirm = nil
	model.pending = pendingAction{}
	model.focus = model.priorFocus
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	switch model.confirm.Update(message) {
	case ConfirmAccepted:
		pending := model.pending
		model.closeConfirm()
		return model, model.act(pending)
	case ConfirmDeclined:
		model.closeConfirm()
	}
	return model, nil
}

// act submits a confirmed action. The queue notifies the outcome and
// re-fetches on success.
func (model Model) act(pending pendingAction) tea.Cmd {
	ctx := model.ctx
	screen := model.screen
	return func() tea.Msg {
		err := pending.queue.Act(ctx, pending.id, pending.action)
		return actedMsg{screen: screen, queue: pending.queue, err: err}
	}
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.query = ""
		model.focus = model.priorFocus
		model.applySearch()
	case tea.KeyEnter:
		model.focus = FocusContent
	case tea.KeyBackspace:
		if runes := []rune(model.query); len(runes) > 0 {
			model.query = string(runes[:len(runes)-1])
			model.applySearch()
		}
	case tea.KeySpace:
		model.query += " "
		model.applySearch()
	case tea.KeyRunes:
		model.query += string(message.Runes)
		model.applySearch()
	}
	return model, nil
}

// applySearch narrows the content rows to those matching the query,
// best match first.
func (model *Model) applySearch() {
	if model.query == "" {
		model.rows = model.content.Rows
	} else {
		entries := make([]roster.Entry, len(model.content.Rows))
		for index, candidate := range model.content.Rows {
			entries[index] = roster.Entry{Key: strconv.Itoa(index), Text: candidate.Text}
		}
		matches := model.matcher.Search(model.query, entries)
		model.rows = make([]row, 0, len(matches))
		for _, match := range matches {
			if index := rowIndex(match.Entry.Key); index >= 0 {
				model.rows = append(model.rows, model.content.Rows[index])
			}
		}
	}
	model.rowCursor = min(model.rowCursor, max(len(model.rows)-1, 0))
	model.updateViewports()
}

// updateViewports recomputes both panes' viewports after a resize or a
// change of row count.
func (model *Model) updateViewports() {
	bodyHeight := model.bodyHeight()
	model.navViewport.Height = bodyHeight
	model.navViewport.Total = len(model.navigationScreens())
	model.navViewport = model.navViewport.Follow(model.navCursor)

	model.rowViewport.Height = max(bodyHeight-model.contentHeaderHeight(), 0)
	model.rowViewport.Total = len(model.rows)
	model.rowViewport = model.rowViewport.Follow(model.rowCursor)
}

// Screen returns the screen the viewer shows.
func (model Model) Screen() workspace.Screen {
	return model.screen
}

// Focus returns the region receiving keys.
func (model Model) Focus() FocusRegion {
	return model.focus
}
