package state

import "github.com/daydemir/mle/internal/types"

// TaskState is the position of a task relative to the plan cursor
type TaskState string

const (
	TaskDone    TaskState = "done"
	TaskCurrent TaskState = "current"
	TaskPending TaskState = "pending"
)

// TaskProgress pairs a task with its state
type TaskProgress struct {
	Index int
	Task  types.Task
	State TaskState
}

// Progress lists every task of the plan with its state
func Progress(plan *types.Plan) []TaskProgress {
	out := make([]TaskProgress, len(plan.Tasks))
	for i, task := range plan.Tasks {
		st := TaskPending
		switch {
		case i < plan.CurrentTask:
			st = TaskDone
		case i == plan.CurrentTask:
			st = TaskCurrent
		}
		out[i] = TaskProgress{Index: i, Task: task, State: st}
	}
	return out
}

// Counts returns completed and total task counts
func Counts(plan *types.Plan) (completed, total int) {
	return plan.CurrentTask, len(plan.Tasks)
}
