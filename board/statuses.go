package board

// StatusInfo describes how a status is displayed and which statuses the
// advance/retreat shortcuts lead to. An empty Next or Prev means the
// shortcut is unavailable.
type StatusInfo struct {
	Label string
	Next  Status
	Prev  Status
}

// StatusTable maps each status to its display label and convenience
// transitions. It never restricts MoveTask: any status can be reached from
// any other by a direct move.
type StatusTable map[Status]StatusInfo

// DefaultStatusTable returns the todo -> doing -> done chain.
func DefaultStatusTable() StatusTable {
	return StatusTable{
		StatusTodo:  {Label: "To Do", Next: StatusDoing},
		StatusDoing: {Label: "In Progress", Next: StatusDone, Prev: StatusTodo},
		StatusDone:  {Label: "Done", Prev: StatusDoing},
	}
}

// WithLabels returns a copy of the table with the given labels replaced.
// Blank labels are ignored.
func (t StatusTable) WithLabels(labels map[Status]string) StatusTable {
	out := make(StatusTable, len(t))
	for status, info := range t {
		out[status] = info
	}
	for status, label := range labels {
		info, ok := out[status]
		if !ok || label == "" {
			continue
		}
		info.Label = label
		out[status] = info
	}
	return out
}

// Label returns the display label for a status, falling back to the raw value.
func (t StatusTable) Label(s Status) string {
	if info, ok := t[s]; ok && info.Label != "" {
		return info.Label
	}
	return string(s)
}

// NextStatus returns the status the advance shortcut moves to.
func (t StatusTable) NextStatus(s Status) (Status, bool) {
	info, ok := t[s]
	if !ok || !info.Next.IsValid() {
		return "", false
	}
	return info.Next, true
}

// PrevStatus returns the status the retreat shortcut moves to.
func (t StatusTable) PrevStatus(s Status) (Status, bool) {
	info, ok := t[s]
	if !ok || !info.Prev.IsValid() {
		return "", false
	}
	return info.Prev, true
}

// PriorityLabel returns a human-readable name for the priority.
func PriorityLabel(p Priority) string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}
