package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/dragdrop"
	"github.com/charmbracelet/lipgloss"
)

// DefaultColumnWidth is the inner width of a status column.
const DefaultColumnWidth = 28

// Every card is two lines: the title line and the meta line.
const cardHeight = 2

var (
	borderASCII = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	columnStyle = lipgloss.NewStyle().Border(borderASCII).BorderForeground(lipgloss.Color("238"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// BoardOptions controls RenderBoard.
type BoardOptions struct {
	Statuses      board.StatusTable
	ColumnWidth   int
	PrefixLengths map[string]int
	Now           time.Time

	// Selected marks one task's card.
	Selected string
}

// BoardView is a rendered board together with the screen geometry of its
// columns, cards and category sections.
type BoardView struct {
	Text   string
	Layout dragdrop.StaticLayout
}

// RenderBoard draws a projection as category sections of side-by-side
// status columns. Closed categories show only their header.
func RenderBoard(p *board.Projection, opts BoardOptions) BoardView {
	if opts.Statuses == nil {
		opts.Statuses = board.DefaultStatusTable()
	}
	if opts.ColumnWidth < 8 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	var view BoardView
	var sections []string
	y := 0
	for i, category := range p.Categories {
		if i > 0 {
			sections = append(sections, "")
			y++
		}
		section, targets, height := renderCategory(category, opts, y)
		sections = append(sections, section)
		view.Layout.Targets = append(view.Layout.Targets, targets...)
		view.Layout.Slots = append(view.Layout.Slots, dragdrop.CategorySlot{
			CategoryID: category.Category.ID,
			Rect:       dragdrop.Rect{X: 0, Y: y, Width: len(category.Columns) * (opts.ColumnWidth + 2), Height: height},
		})
		y += height
	}
	if len(sections) == 0 {
		view.Text = mutedStyle.Render("No categories. Add one with 'kanban category add NAME'.") + "\n"
		return view
	}
	view.Text = strings.Join(sections, "\n") + "\n"
	return view
}

func renderCategory(view board.CategoryView, opts BoardOptions, top int) (string, []dragdrop.TaskTarget, int) {
	category := view.Category
	marker := "[-]"
	if !category.IsOpen {
		marker = "[+]"
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(category.Color))
	header := fmt.Sprintf("%s %s %s (%d)", marker, HighlightID(category.ID, PrefixLength(opts.PrefixLengths, category.ID)), headerStyle.Render(category.Name), view.Count)
	if !category.IsOpen {
		return header, nil, 1
	}

	tallest := 0
	for _, column := range view.Columns {
		tallest = max(tallest, len(column.Tasks))
	}
	// label line plus cards, inside the border
	inner := 1 + tallest*cardHeight

	var rendered []string
	var targets []dragdrop.TaskTarget
	for i, column := range view.Columns {
		x := i * (opts.ColumnWidth + 2)
		target := dragdrop.TaskTarget{
			CategoryID: category.ID,
			Status:     column.Status,
			Rect:       dragdrop.Rect{X: x, Y: top + 1, Width: opts.ColumnWidth + 2, Height: inner + 2},
		}

		lines := []string{labelStyle.Render(fitLine(fmt.Sprintf("%s (%d)", opts.Statuses.Label(column.Status), len(column.Tasks)), opts.ColumnWidth))}
		for j, task := range column.Tasks {
			lines = append(lines, cardLines(task, opts)...)
			target.Cards = append(target.Cards, dragdrop.Card{
				TaskID: task.ID,
				Rect:   dragdrop.Rect{X: x + 1, Y: top + 3 + j*cardHeight, Width: opts.ColumnWidth, Height: cardHeight},
			})
		}
		for len(lines) < inner {
			lines = append(lines, "")
		}
		rendered = append(rendered, columnStyle.Width(opts.ColumnWidth).Render(strings.Join(lines, "\n")))
		targets = append(targets, target)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return header + "\n" + body, targets, 1 + inner + 2
}

func cardLines(task board.Task, opts BoardOptions) []string {
	id := task.ID
	marker := ""
	if id == opts.Selected {
		marker = "> "
	}
	title := fitLine(marker+id+" "+task.Title, opts.ColumnWidth)
	if prefix := PrefixLength(opts.PrefixLengths, id); prefix > 0 && strings.HasPrefix(title, marker+id) {
		title = marker + HighlightID(id, prefix) + strings.TrimPrefix(title, marker+id)
	}

	meta := []string{strings.ToLower(board.PriorityLabel(task.Priority))}
	if task.Progress > 0 {
		meta = append(meta, fmt.Sprintf("%d%%", task.Progress))
	}
	if task.DueDate != nil {
		meta = append(meta, FormatDue(task.DueDate, opts.Now))
	}
	if task.AssignedTo != nil {
		meta = append(meta, "@"+task.AssignedTo.Name)
	}
	style := mutedStyle
	if task.Priority == board.PriorityHigh {
		style = highStyle
	}
	return []string{title, style.Render(fitLine("  "+strings.Join(meta, " "), opts.ColumnWidth))}
}

// fitLine truncates value to width visible runes.
func fitLine(value string, width int) string {
	value = normalizeTableCell(value)
	if displayWidth(value) <= width {
		return value
	}
	if width <= len(tableCellEllipsis) {
		return truncateVisible(value, width)
	}
	return truncateVisible(value, width-len(tableCellEllipsis)) + tableCellEllipsis
}
