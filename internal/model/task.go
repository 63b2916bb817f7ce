package model

const (
	PriorityNormal = "Normal"
	PriorityHigh   = "High"

	// PriorityAll disables the priority filter on list requests.
	PriorityAll = "All"
)

type Task struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type TaskFilter struct {
	Search   string
	Priority string
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Text     *string `json:"text,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Text == nil && p.Priority == nil
}
