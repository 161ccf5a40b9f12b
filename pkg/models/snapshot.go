package models

// Snapshot is the derived state published after every change. It is a copy:
// holding on to one never observes later mutations.
type Snapshot struct {
	// Version increases by one for every published change.
	Version uint64

	Filter         Filter
	Filtered       []Task
	ActiveCount    int
	CompletedCount int
	TotalCount     int
}

// FooterVisible reports whether the item-count footer should be shown.
func (s Snapshot) FooterVisible() bool {
	return s.TotalCount > 0
}

// FilterMenuVisible reports whether the filter selector should be shown.
func (s Snapshot) FilterMenuVisible() bool {
	return s.TotalCount > 0
}

// ClearCompletedVisible reports whether clearing completed tasks would do anything.
func (s Snapshot) ClearCompletedVisible() bool {
	return s.CompletedCount > 0
}

// ChangeOp names the operation that produced a Change.
type ChangeOp string

const (
	OpAdd            ChangeOp = "added"
	OpToggle         ChangeOp = "toggled"
	OpRename         ChangeOp = "renamed"
	OpDelete         ChangeOp = "deleted"
	OpClearCompleted ChangeOp = "cleared"
	OpFilter         ChangeOp = "filter_changed"
)

// Change is delivered to store listeners after a mutation completes.
type Change struct {
	Op ChangeOp
	// TaskID is empty for operations that are not about a single task.
	TaskID   string
	Snapshot Snapshot
}
