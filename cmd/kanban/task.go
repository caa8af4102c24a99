package main

import (
	"fmt"
	"os"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/editor"
	"github.com/amonks/kanban/internal/listflags"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

// task add
var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the To Do column of a category",
	Long: `Add a task to the To Do column of a category.

Use --edit to write the task in $EDITOR as TOML front matter followed by
a markdown description.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaskAdd,
}

var (
	taskAddCategory    string
	taskAddDescription string
	taskAddPriority    string
	taskAddProgress    int
	taskAddDue         string
	taskAddAssign      string
	taskAddEdit        bool
)

// task update
var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task's fields",
	Long: `Update a task's fields.

Category, status and position cannot be changed here; use 'kanban task move'.
Use --edit to change every field at once in $EDITOR.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskUpdate,
}

var (
	taskUpdateTitle       string
	taskUpdateDescription string
	taskUpdatePriority    string
	taskUpdateProgress    int
	taskUpdateDue         string
	taskUpdateNoDue       bool
	taskUpdateAssign      string
	taskUpdateUnassign    bool
	taskUpdateEdit        bool
)

// task delete
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskDelete,
}

// task move
var taskMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move a task to another column, category or position",
	Long: `Move a task to another column, category or position.

Omitted flags keep the task's current category and status. Without
--position the task goes to the end of the target column.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskMove,
}

var (
	taskMoveCategory string
	taskMoveStatus   string
	taskMovePosition int
)

// task advance
var taskAdvanceCmd = &cobra.Command{
	Use:   "advance <id>...",
	Short: "Move tasks to the next column",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdvance,
}

// task retreat
var taskRetreatCmd = &cobra.Command{
	Use:   "retreat <id>...",
	Short: "Move tasks to the previous column",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskRetreat,
}

// task comment
var taskCommentCmd = &cobra.Command{
	Use:   "comment <id> <text>",
	Short: "Comment on a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskComment,
}

var taskCommentAuthor string

// task show
var taskShowCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

// task list
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in board order",
	RunE:  runTaskList,
}

var (
	taskListFilter   string
	taskListCategory string
	taskListJSON     bool
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskUpdateCmd, taskDeleteCmd, taskMoveCmd, taskAdvanceCmd,
		taskRetreatCmd, taskCommentCmd, taskShowCmd, taskListCmd)

	addTaskFlagAliases(taskAddCmd, taskUpdateCmd, taskMoveCmd, taskListCmd)

	// task add flags
	taskAddCmd.Flags().StringVarP(&taskAddCategory, "category", "c", "", "Category ID or name (required)")
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", string(board.PriorityMedium), "Priority (low, medium, high)")
	taskAddCmd.Flags().IntVar(&taskAddProgress, "progress", 0, "Progress percentage (0-100)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskAddAssign, "assign", "", "Assignee as ID or ID:Name")
	taskAddCmd.Flags().BoolVarP(&taskAddEdit, "edit", "e", false, "Open $EDITOR")

	// task update flags
	taskUpdateCmd.Flags().StringVar(&taskUpdateTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	taskUpdateCmd.Flags().StringVarP(&taskUpdatePriority, "priority", "p", "", "New priority (low, medium, high)")
	taskUpdateCmd.Flags().IntVar(&taskUpdateProgress, "progress", 0, "New progress percentage (0-100)")
	taskUpdateCmd.Flags().StringVar(&taskUpdateDue, "due", "", "New due date (YYYY-MM-DD)")
	taskUpdateCmd.Flags().BoolVar(&taskUpdateNoDue, "no-due", false, "Remove the due date")
	taskUpdateCmd.Flags().StringVar(&taskUpdateAssign, "assign", "", "Assignee as ID or ID:Name")
	taskUpdateCmd.Flags().BoolVar(&taskUpdateUnassign, "unassign", false, "Remove the assignee")
	taskUpdateCmd.Flags().BoolVarP(&taskUpdateEdit, "edit", "e", false, "Open $EDITOR")

	// task move flags
	taskMoveCmd.Flags().StringVarP(&taskMoveCategory, "category", "c", "", "Target category ID or name")
	taskMoveCmd.Flags().StringVarP(&taskMoveStatus, "status", "s", "", "Target status (todo, doing, done)")
	taskMoveCmd.Flags().IntVar(&taskMovePosition, "position", -1, "Target position in the column (default end)")

	// task comment flags
	taskCommentCmd.Flags().StringVar(&taskCommentAuthor, "author", "", "Author as ID or ID:Name (required)")
	_ = taskCommentCmd.MarkFlagRequired("author")

	// task show flags
	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "Output as JSON")

	// task list flags
	listflags.AddFilterFlag(taskListCmd, &taskListFilter)
	taskListCmd.Flags().StringVarP(&taskListCategory, "category", "c", "", "Only list tasks in this category")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output as JSON")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	description, err := resolveDescriptionFromStdin(taskAddDescription, os.Stdin)
	if err != nil {
		return err
	}
	priority, err := parsePriority(taskAddPriority)
	if err != nil {
		return err
	}
	due, err := parseDue(taskAddDue)
	if err != nil {
		return err
	}
	fields := board.TaskFields{
		Description: description,
		Priority:    priority,
		Progress:    taskAddProgress,
		DueDate:     due,
	}
	if len(args) > 0 {
		fields.Title = args[0]
	}
	if taskAddAssign != "" {
		user, err := parseUser(taskAddAssign)
		if err != nil {
			return err
		}
		fields.AssignedTo = &user
	}

	if taskAddEdit {
		data := editor.DefaultCreateData()
		data.Title = fields.Title
		data.Description = fields.Description
		data.Priority = string(fields.Priority)
		data.Progress = fields.Progress
		data.Due = taskAddDue
		parsed, err := editor.EditTaskWithData(data)
		if err != nil {
			return err
		}
		edited := parsed.ToFields()
		edited.AssignedTo = fields.AssignedTo
		fields = edited
	} else if len(args) == 0 {
		return fmt.Errorf("title is required (use --edit to open editor)")
	}

	if taskAddCategory == "" {
		return fmt.Errorf("--category is required")
	}

	return updateBoard(func(s *boardSession) error {
		category, err := s.resolveCategory(taskAddCategory)
		if err != nil {
			return err
		}
		created, err := s.store.AddTask(category.ID, fields)
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("Created task %s: %s\n", highlight(created.ID), created.Title)
		return nil
	})
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	hasFlags := hasChangedFlags(cmd, "title", "description", "priority", "progress", "due", "no-due", "assign", "unassign")
	if !hasFlags && !taskUpdateEdit {
		return fmt.Errorf("at least one update flag is required (use --edit to open editor)")
	}

	patch := board.TaskPatch{}
	if flags.Changed("title") {
		patch.Title = &taskUpdateTitle
	}
	if flags.Changed("description") {
		description, err := resolveDescriptionFromStdin(taskUpdateDescription, os.Stdin)
		if err != nil {
			return err
		}
		patch.Description = &description
	}
	if flags.Changed("priority") {
		priority, err := parsePriority(taskUpdatePriority)
		if err != nil {
			return err
		}
		patch.Priority = &priority
	}
	if flags.Changed("progress") {
		patch.Progress = &taskUpdateProgress
	}
	if flags.Changed("due") {
		due, err := parseDue(taskUpdateDue)
		if err != nil {
			return err
		}
		patch.DueDate = due
		patch.ClearDueDate = due == nil
	}
	patch.ClearDueDate = patch.ClearDueDate || taskUpdateNoDue
	if flags.Changed("assign") {
		user, err := parseUser(taskUpdateAssign)
		if err != nil {
			return err
		}
		patch.AssignedTo = &user
	}
	patch.ClearAssignee = taskUpdateUnassign

	return updateBoard(func(s *boardSession) error {
		task, err := s.resolveTask(args[0])
		if err != nil {
			return err
		}

		if taskUpdateEdit {
			parsed, err := editor.EditTask(&task)
			if err != nil {
				return err
			}
			edited := parsed.ToPatch()
			edited.AssignedTo = patch.AssignedTo
			edited.ClearAssignee = patch.ClearAssignee
			patch = edited
		}

		if err := s.store.UpdateTask(task.ID, patch); err != nil {
			return err
		}
		updated, err := s.store.Task(task.ID)
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("Updated task %s: %s\n", highlight(updated.ID), updated.Title)
		return nil
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	return updateBoard(func(s *boardSession) error {
		_, highlight := s.highlighter()
		for _, ref := range args {
			task, err := s.resolveTask(ref)
			if err != nil {
				return err
			}
			if err := s.store.DeleteTask(task.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted task %s: %s\n", highlight(task.ID), task.Title)
		}
		return nil
	})
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	if !hasChangedFlags(cmd, "category", "status", "position") {
		return fmt.Errorf("at least one of --category, --status or --position is required")
	}

	return updateBoard(func(s *boardSession) error {
		task, err := s.resolveTask(args[0])
		if err != nil {
			return err
		}

		categoryID := task.Category
		if taskMoveCategory != "" {
			category, err := s.resolveCategory(taskMoveCategory)
			if err != nil {
				return err
			}
			categoryID = category.ID
		}
		status := task.Status
		if taskMoveStatus != "" {
			status, err = parseStatus(taskMoveStatus)
			if err != nil {
				return err
			}
		}
		position := taskMovePosition
		if !cmd.Flags().Changed("position") {
			position = len(s.store.State().Bucket(categoryID, status))
		}

		if err := s.store.MoveTask(task.ID, categoryID, status, position); err != nil {
			return err
		}
		moved, err := s.store.Task(task.ID)
		if err != nil {
			return err
		}
		return printPlacement(s, "Moved", moved)
	})
}

func runTaskAdvance(cmd *cobra.Command, args []string) error {
	return stepTasks(args, "Advanced", (*board.Store).AdvanceTask)
}

func runTaskRetreat(cmd *cobra.Command, args []string) error {
	return stepTasks(args, "Moved back", (*board.Store).RetreatTask)
}

func stepTasks(refs []string, verb string, step func(*board.Store, string) error) error {
	return updateBoard(func(s *boardSession) error {
		for _, ref := range refs {
			task, err := s.resolveTask(ref)
			if err != nil {
				return err
			}
			if err := step(s.store, task.ID); err != nil {
				return err
			}
			moved, err := s.store.Task(task.ID)
			if err != nil {
				return err
			}
			if err := printPlacement(s, verb, moved); err != nil {
				return err
			}
		}
		return nil
	})
}

func printPlacement(s *boardSession, verb string, task board.Task) error {
	category, err := s.store.Category(task.Category)
	if err != nil {
		return err
	}
	_, highlight := s.highlighter()
	fmt.Printf("%s task %s to %s / %s #%d\n", verb, highlight(task.ID), category.Name,
		s.store.Statuses().Label(task.Status), task.Position)
	return nil
}

func runTaskComment(cmd *cobra.Command, args []string) error {
	author, err := parseUser(taskCommentAuthor)
	if err != nil {
		return err
	}

	return updateBoard(func(s *boardSession) error {
		task, err := s.resolveTask(args[0])
		if err != nil {
			return err
		}
		comment, err := s.store.AddComment(task.ID, author, args[1])
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("Commented on %s as %s (%s)\n", highlight(task.ID), comment.Author.Name, comment.ID)
		return nil
	})
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	tasks := make([]board.Task, 0, len(args))
	for _, ref := range args {
		task, err := s.resolveTask(ref)
		if err != nil {
			return err
		}
		tasks = append(tasks, task)
	}

	if taskShowJSON {
		return encodeJSONToStdout(tasks)
	}

	for i, task := range tasks {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(formatTaskDetail(s, task))
	}
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	filter, err := listflags.ResolveFilter(taskListFilter, s.store.State().CurrentFilter)
	if err != nil {
		return err
	}
	categoryID := ""
	if taskListCategory != "" {
		category, err := s.resolveCategory(taskListCategory)
		if err != nil {
			return err
		}
		categoryID = category.ID
	}

	projection := board.NewProjector(s.store).Project(filter)
	var tasks []board.Task
	for _, view := range projection.Categories {
		if categoryID != "" && view.Category.ID != categoryID {
			continue
		}
		for _, column := range view.Columns {
			tasks = append(tasks, column.Tasks...)
		}
	}

	if taskListJSON {
		if tasks == nil {
			tasks = []board.Task{}
		}
		return encodeJSONToStdout(tasks)
	}

	if len(tasks) == 0 {
		fmt.Println(taskEmptyListMessage(len(s.store.State().Tasks), filter))
		return nil
	}
	fmt.Print(formatTaskTable(s, tasks))
	return nil
}
