// Package boardtui is the interactive terminal board: mouse drags go
// through the drag-drop controller and keys drive the store directly.
package boardtui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/dragdrop"
	"github.com/amonks/kanban/internal/ui"
	"github.com/amonks/kanban/participation"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// The title bar and help line sit above the board.
const headerHeight = 2

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

type model struct {
	store       *board.Store
	requests    *participation.Manager
	projector   *board.Projector
	save        func() error
	now         func() time.Time
	width       int
	height      int
	viewport    viewport.Model
	view        ui.BoardView
	drag        *dragdrop.Controller
	selected    string
	status      string
	statusLevel statusLevel
	showHelp    bool
}

// Run shows the board until the user quits. save is called after every
// change that reaches the store.
func Run(ctx context.Context, store *board.Store, requests *participation.Manager, save func() error) error {
	if store == nil {
		return fmt.Errorf("board store is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	program := tea.NewProgram(newModel(store, requests, save),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newModel(store *board.Store, requests *participation.Manager, save func() error) model {
	if save == nil {
		save = func() error { return nil }
	}
	m := model{
		store:     store,
		requests:  requests,
		projector: board.NewProjector(store),
		save:      save,
		now:       time.Now,
		viewport:  viewport.New(0, 0),
	}
	m.drag = dragdrop.New(store, dragdrop.StaticLayout{})
	m.render()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading board..."
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modalStyle.Render(helpContent()))
	}
	return strings.Join([]string{m.renderTitleBar(), m.renderHelpLine(), m.viewport.View(), m.renderStatusLine()}, "\n")
}

func (m *model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-1, 1)
	m.render()
}

func (m model) columnWidth() int {
	if m.width == 0 {
		return ui.DefaultColumnWidth
	}
	return max(min(m.width/len(board.StatusOrder())-2, ui.DefaultColumnWidth), 12)
}

// render redraws the board and hands the new geometry to the drag controller.
func (m *model) render() {
	prefixLengths := m.prefixLengths()
	m.view = ui.RenderBoard(m.projector.Current(), ui.BoardOptions{
		Statuses:      m.store.Statuses(),
		ColumnWidth:   m.columnWidth(),
		PrefixLengths: prefixLengths,
		Now:           m.now(),
		Selected:      m.selected,
	})
	m.viewport.SetContent(m.view.Text)
	m.drag.SetLayout(m.view.Layout)
}

func (m model) prefixLengths() map[string]int {
	state := m.store.State()
	all := make([]string, 0, len(state.Tasks)+len(state.Categories))
	for id := range state.Tasks {
		all = append(all, id)
	}
	for id := range state.Categories {
		all = append(all, id)
	}
	return ui.UniqueIDPrefixLengths(all)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.showHelp {
		if key == "?" || key == "esc" || key == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "esc":
		if _, ok := m.drag.Active(); ok {
			m.drag.Cancel()
			m.setStatus("Drag cancelled", statusInfo)
		}
	case "down", "j":
		m.moveSelection(1)
	case "up", "k":
		m.moveSelection(-1)
	case "u":
		m.apply("Undone", m.store.Undo())
	case "r":
		m.apply("Redone", m.store.Redo())
	case "f":
		filter := nextFilter(m.store.State().CurrentFilter)
		m.apply("Filter: "+string(filter), m.store.SetFilter(filter))
	case "]", "l":
		m.withSelected(func(id string) { m.apply("Advanced "+id, m.store.AdvanceTask(id)) })
	case "[", "h":
		m.withSelected(func(id string) { m.apply("Moved back "+id, m.store.RetreatTask(id)) })
	case "t":
		m.withSelected(func(id string) {
			task, err := m.store.Task(id)
			if err != nil {
				m.apply("", err)
				return
			}
			m.apply("Toggled "+task.Category, m.store.ToggleCategory(task.Category))
		})
	case "x":
		m.withSelected(func(id string) {
			m.selected = ""
			m.apply("Deleted "+id, m.store.DeleteTask(id))
		})
	case "a":
		m.answerActive("Accepted", (*participation.Manager).Accept)
	case "n":
		m.answerActive("Rejected", (*participation.Manager).Reject)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft && msg.Button != tea.MouseButtonNone {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	p := dragdrop.Point{X: msg.X, Y: msg.Y - headerHeight + m.viewport.YOffset}
	switch msg.Action {
	case tea.MouseActionPress:
		m.grab(p)
	case tea.MouseActionMotion:
		m.hover(p)
	case tea.MouseActionRelease:
		m.drop(p)
	}
	return m, nil
}

func (m *model) grab(p dragdrop.Point) {
	kind, id, ok := hitTest(m.view.Layout, p)
	if !ok {
		return
	}
	if err := m.drag.Grab(kind, id); err != nil {
		m.setStatus(err.Error(), statusError)
		return
	}
	if kind == dragdrop.KindTask {
		m.selected = id
		m.render()
	}
	m.setStatus(fmt.Sprintf("Dragging %s %s", kind, id), statusInfo)
}

func (m *model) hover(p dragdrop.Point) {
	gesture, ok := m.drag.Active()
	if !ok {
		return
	}
	candidate, ok := m.drag.Hover(p)
	if !ok {
		m.setStatus(fmt.Sprintf("Dragging %s %s: release here to cancel", gesture.Kind, gesture.ID), statusInfo)
		return
	}
	m.setStatus(fmt.Sprintf("Dragging %s %s to %s", gesture.Kind, gesture.ID, m.describe(candidate)), statusInfo)
}

func (m *model) drop(p dragdrop.Point) {
	if _, ok := m.drag.Active(); !ok {
		return
	}
	result, err := m.drag.Drop(p)
	if err != nil {
		m.apply("", err)
		return
	}
	if result.Cancelled {
		m.setStatus("Drag cancelled", statusInfo)
		return
	}
	m.apply(fmt.Sprintf("Moved %s %s to %s", result.Candidate.Kind, result.Candidate.ID, m.describe(result.Candidate)), nil)
}

func (m model) describe(c dragdrop.Candidate) string {
	if c.Kind == dragdrop.KindCategory {
		return fmt.Sprintf("#%d", c.Target.Position)
	}
	name := c.Target.CategoryID
	if category, err := m.store.Category(c.Target.CategoryID); err == nil {
		name = category.Name
	}
	return fmt.Sprintf("%s / %s #%d", name, m.store.Statuses().Label(c.Target.Status), c.Target.Position)
}

// apply reports the outcome of a store operation, saving and redrawing on success.
func (m *model) apply(label string, err error) {
	defer m.render()
	if errors.Is(err, board.ErrNoOp) {
		m.setStatus(err.Error(), statusInfo)
		return
	}
	if err != nil {
		m.setStatus(err.Error(), statusError)
		return
	}
	if err := m.save(); err != nil {
		m.setStatus(fmt.Sprintf("save failed: %v", err), statusError)
		return
	}
	m.setStatus(label, statusInfo)
}

func (m *model) answerActive(verb string, answer func(*participation.Manager, string, string) (participation.Request, bool, error)) {
	if m.requests == nil {
		return
	}
	active, ok := m.requests.PeekActive()
	if !ok {
		m.setStatus("No pending requests", statusInfo)
		return
	}
	_, _, err := answer(m.requests, active.TaskID, active.Requester.ID)
	m.apply(fmt.Sprintf("%s %s for %s", verb, active.Requester.Name, active.TaskID), err)
}

func (m *model) withSelected(fn func(id string)) {
	if m.selected == "" {
		m.setStatus("Select a task with j/k first", statusError)
		return
	}
	fn(m.selected)
}

// moveSelection steps through the visible cards in board order.
func (m *model) moveSelection(delta int) {
	visible := visibleTaskIDs(m.view.Layout)
	if len(visible) == 0 {
		m.selected = ""
		return
	}
	current := -1
	for i, id := range visible {
		if id == m.selected {
			current = i
			break
		}
	}
	next := current + delta
	if current < 0 {
		next = 0
	}
	next = max(0, min(next, len(visible)-1))
	m.selected = visible[next]
	m.render()
}

func visibleTaskIDs(layout dragdrop.StaticLayout) []string {
	var ids []string
	for _, target := range layout.Targets {
		for _, card := range target.Cards {
			ids = append(ids, card.TaskID)
		}
	}
	return ids
}

// hitTest finds the card or category header under p.
func hitTest(layout dragdrop.StaticLayout, p dragdrop.Point) (dragdrop.Kind, string, bool) {
	for _, target := range layout.Targets {
		for _, card := range target.Cards {
			if card.Rect.Contains(p) {
				return dragdrop.KindTask, card.TaskID, true
			}
		}
	}
	for _, slot := range layout.Slots {
		header := dragdrop.Rect{X: slot.Rect.X, Y: slot.Rect.Y, Width: slot.Rect.Width, Height: 1}
		if header.Contains(p) {
			return dragdrop.KindCategory, slot.CategoryID, true
		}
	}
	return "", "", false
}

func nextFilter(current board.Filter) board.Filter {
	filters := board.ValidFilters()
	for i, filter := range filters {
		if filter == current {
			return filters[(i+1)%len(filters)]
		}
	}
	return board.FilterAll
}

func (m *model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

func (m model) renderTitleBar() string {
	state := m.store.State()
	parts := []string{
		titleStyle.Render("Kanban"),
		fmt.Sprintf(" filter: %s", state.CurrentFilter),
		fmt.Sprintf("  history: %d/%d", m.store.HistoryIndex()+1, len(m.store.History())),
	}
	if m.requests != nil {
		parts = append(parts, fmt.Sprintf("  requests: %d", m.requests.Len()))
	}
	content := strings.Join(parts, "")
	hint := valueMuted.Render("Press ? for help")
	spacer := strings.Repeat(" ", max(m.width-lipgloss.Width(content)-lipgloss.Width(hint), 1))
	return titleBarStyle.Width(m.width).Render(content + spacer + hint)
}

func (m model) renderHelpLine() string {
	text := "Keys: drag with mouse | j/k select | [/] move | u undo | r redo | f filter | q quit"
	if len(text) > m.width {
		text = text[:m.width]
	}
	return helpBarStyle.Render(text)
}

func (m model) renderStatusLine() string {
	if strings.TrimSpace(m.status) == "" {
		return ""
	}
	style := valueMuted
	switch m.statusLevel {
	case statusError:
		style = statusErrorStyle
	case statusInfo:
		style = statusSuccessStyle
	}
	return style.Render(m.status)
}

func helpContent() string {
	sections := []string{
		labelStyle.Render("Mouse"),
		"drag a card: move the task",
		"drag a category header: reorder categories",
		"release outside the board: cancel",
		"",
		labelStyle.Render("Tasks"),
		"up/down or j/k: select",
		"] or l: advance to the next column",
		"[ or h: move back a column",
		"t: expand or collapse the task's category",
		"x: delete",
		"",
		labelStyle.Render("Board"),
		"u: undo",
		"r: redo",
		"f: next filter",
		"a / n: accept or reject the oldest request",
		"pgup/pgdown: scroll",
		"",
		labelStyle.Render("Help"),
		"press ? or esc to close",
	}
	return strings.Join(sections, "\n")
}
