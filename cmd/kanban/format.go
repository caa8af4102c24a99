package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/markdown"
	"github.com/amonks/kanban/internal/ui"
	"github.com/amonks/kanban/participation"
)

const detailWidth = 80

func formatTaskTable(s *boardSession, tasks []board.Task) string {
	_, highlight := s.highlighter()
	state := s.store.State()
	statuses := s.store.Statuses()
	now := time.Now()

	builder := ui.NewTableBuilder([]string{"ID", "CATEGORY", "STATUS", "PRIORITY", "PROGRESS", "DUE", "ASSIGNEE", "TITLE"}, len(tasks))
	for _, task := range tasks {
		builder.AddRow(
			highlight(task.ID),
			state.Categories[task.Category].Name,
			statuses.Label(task.Status),
			board.PriorityLabel(task.Priority),
			strconv.Itoa(task.Progress)+"%",
			ui.FormatDue(task.DueDate, now),
			formatUser(task.AssignedTo),
			task.Title,
		)
	}
	return builder.String()
}

func taskEmptyListMessage(total int, filter board.Filter) string {
	if total == 0 {
		return "No tasks found."
	}
	return fmt.Sprintf("No tasks match filter %s. Use --filter all to list every task.", filter)
}

func formatTaskDetail(s *boardSession, task board.Task) string {
	_, highlight := s.highlighter()
	category, _ := s.store.Category(task.Category)

	var b strings.Builder
	fmt.Fprintf(&b, "ID:       %s\n", highlight(task.ID))
	fmt.Fprintf(&b, "Title:    %s\n", task.Title)
	fmt.Fprintf(&b, "Category: %s\n", category.Name)
	fmt.Fprintf(&b, "Status:   %s #%d\n", s.store.Statuses().Label(task.Status), task.Position)
	fmt.Fprintf(&b, "Priority: %s\n", board.PriorityLabel(task.Priority))
	fmt.Fprintf(&b, "Progress: %d%%\n", task.Progress)
	fmt.Fprintf(&b, "Due:      %s\n", ui.FormatDate(task.DueDate))
	fmt.Fprintf(&b, "Assignee: %s\n", formatUser(task.AssignedTo))
	fmt.Fprintf(&b, "Created:  %s\n", task.CreatedAt.Format(time.RFC3339))

	if description := markdown.SafeRender(detailWidth, 2, []byte(task.Description)); len(description) > 0 {
		b.WriteString("\nDescription:\n")
		b.Write(description)
		b.WriteString("\n")
	}

	pending := s.requests.Pending()
	var requests []participation.Request
	for _, request := range pending {
		if request.TaskID == task.ID {
			requests = append(requests, request)
		}
	}
	if len(requests) > 0 {
		b.WriteString("\nRequests:\n")
		for _, request := range requests {
			fmt.Fprintf(&b, "  %s\n", formatUser(&request.Requester))
		}
	}

	if len(task.Comments) > 0 {
		b.WriteString("\nComments:\n")
		for _, comment := range task.Comments {
			fmt.Fprintf(&b, "  %s, %s\n", comment.Author.Name, comment.CreatedAt.Format(time.RFC3339))
			b.WriteString(markdown.IndentBlock(markdown.ReflowParagraphs(comment.Text, detailWidth-4), 4))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatCategoryTable(s *boardSession) string {
	_, highlight := s.highlighter()
	state := s.store.State()
	categories := state.OrderedCategories()

	counts := map[string]int{}
	for _, task := range state.Tasks {
		counts[task.Category]++
	}

	builder := ui.NewTableBuilder([]string{"#", "ID", "COLOR", "OPEN", "TASKS", "NAME"}, len(categories))
	for i, category := range categories {
		open := "no"
		if category.IsOpen {
			open = "yes"
		}
		builder.AddRow(strconv.Itoa(i), highlight(category.ID), category.Color, open, strconv.Itoa(counts[category.ID]), category.Name)
	}
	return builder.String()
}

func formatHistoryTable(entries []board.Entry, index int) string {
	builder := ui.NewTableBuilder([]string{"", "#", "ACTION", "SUBJECT", "AT"}, len(entries))
	for i, entry := range entries {
		marker := ""
		if i == index {
			marker = "*"
		}
		builder.AddRow(marker, strconv.Itoa(i), string(entry.Action), entry.Subject, entry.At.Format(time.RFC3339))
	}
	return builder.String()
}

func formatRequestTable(s *boardSession, requests []participation.Request) string {
	_, highlight := s.highlighter()
	state := s.store.State()

	builder := ui.NewTableBuilder([]string{"#", "TASK", "REQUESTER", "REQUESTED", "TITLE"}, len(requests))
	for i, request := range requests {
		builder.AddRow(
			strconv.Itoa(i),
			highlight(request.TaskID),
			formatUser(&request.Requester),
			request.RequestedAt.Format(time.RFC3339),
			state.Tasks[request.TaskID].Title,
		)
	}
	return builder.String()
}
