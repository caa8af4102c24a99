package board

import "time"

// MaxTitleLength is the maximum length of a task title in bytes.
const MaxTitleLength = 500

// User identifies a person. The board treats it as opaque.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is a note attached to a task.
type Comment struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a single card on the board.
type Task struct {
	// ID is a unique identifier, immutable once created.
	ID string `json:"id"`

	// Title is the short summary of the task.
	Title string `json:"title"`

	// Description provides additional context (markdown).
	Description string `json:"description"`

	// Status is the column the task is in.
	Status Status `json:"status"`

	// Priority is the importance of the task.
	Priority Priority `json:"priority"`

	// Progress is the completion percentage, 0-100.
	Progress int `json:"progress"`

	// DueDate is when the task is due (nil if unscheduled).
	DueDate *time.Time `json:"dueDate,omitempty"`

	// AssignedTo is the user working on the task (nil if unassigned).
	AssignedTo *User `json:"assignedTo,omitempty"`

	// Comments are kept in the order they were added.
	Comments []Comment `json:"comments,omitempty"`

	// Category is the ID of the category that owns the task.
	Category string `json:"category"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"createdAt"`

	// Position is the rank of the task within its (category, status) bucket.
	Position int `json:"position"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.AssignedTo != nil {
		user := *t.AssignedTo
		out.AssignedTo = &user
	}
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		copy(out.Comments, t.Comments)
	}
	return out
}

// Category groups tasks. Categories are displayed in the board's category order.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`

	// IsOpen is whether the category is expanded in the UI.
	IsOpen bool `json:"isOpen"`
}

// TaskFields are the caller-provided fields of a new task.
type TaskFields struct {
	Title       string
	Description string

	// Priority defaults to PriorityMedium when empty.
	Priority Priority

	Progress   int
	DueDate    *time.Time
	AssignedTo *User
}

// TaskPatch lists the fields an update changes. Nil fields are left alone.
//
// ID, CreatedAt, Category, Status and Position exist only so that attempts
// to change them can be rejected; setting any of them fails with
// ErrImmutableField. Use MoveTask to change category, status or position.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Progress    *int
	DueDate     *time.Time
	AssignedTo  *User
	Comments    *[]Comment

	// ClearDueDate removes the due date. It wins over DueDate.
	ClearDueDate bool

	// ClearAssignee unassigns the task. It wins over AssignedTo.
	ClearAssignee bool

	ID        *string
	CreatedAt *time.Time
	Category  *string
	Status    *Status
	Position  *int
}

// CategoryFields are the caller-provided fields of a new category.
type CategoryFields struct {
	Name string

	// Color is generated from the palette when empty.
	Color string
}

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int.
func IntPtr(i int) *int {
	return &i
}

// PriorityPtr returns a pointer to the given priority.
func PriorityPtr(p Priority) *Priority {
	return &p
}
