package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adamwoolhether/adminapi/client"
)

// DefaultPollInterval spaces task polls when the caller gives none.
const DefaultPollInterval = 2 * time.Second

// ErrAnalysisFailed is returned by [Requirements.WaitAnalysis] when the
// backend marks the task failed.
var ErrAnalysisFailed = errors.New("analysis task failed")

// TaskStatus is the lifecycle state of an analysis task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskSucceeded TaskStatus = "SUCCEEDED"
	TaskFailed    TaskStatus = "FAILED"
)

// Done reports whether s is terminal.
func (s TaskStatus) Done() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// AnalysisRequest submits functional processes for sub-process analysis.
type AnalysisRequest struct {
	FunctionalProcesses []FunctionalProcess `json:"functionalProcesses" validate:"required,min=1,dive"`
}

// AnalysisTask is the backend's view of a submitted analysis. Processes
// is filled once the task succeeds; ErrorMessage once it fails.
type AnalysisTask struct {
	TaskID              int64               `json:"taskId"`
	Status              TaskStatus          `json:"status"`
	StatusLabel         string              `json:"statusLabel"`
	ErrorMessage        string              `json:"errorMessage"`
	ProcessCount        int                 `json:"processCount"`
	FunctionalProcesses []FunctionalProcess `json:"functionalProcesses"`
	Processes           []Process           `json:"processes"`
	CreatedTime         string              `json:"createdTime"`
	StartedTime         string              `json:"startedTime"`
	FinishedTime        string              `json:"finishedTime"`
}

// SubmitAnalysis queues req and returns the pending task.
func (r *Requirements) SubmitAnalysis(ctx context.Context, req AnalysisRequest) (AnalysisTask, error) {
	var task AnalysisTask
	if err := r.c.Post(ctx, PathAnalysisTask, req, client.WithDestination(&task)); err != nil {
		return AnalysisTask{}, err
	}

	return task, nil
}

// AnalysisTasks lists the current user's analysis tasks.
func (r *Requirements) AnalysisTasks(ctx context.Context) ([]AnalysisTask, error) {
	var tasks []AnalysisTask
	if err := r.c.Get(ctx, PathAnalysisTasks, client.WithDestination(&tasks)); err != nil {
		return nil, err
	}

	return tasks, nil
}

// AnalysisTask fetches a single task.
func (r *Requirements) AnalysisTask(ctx context.Context, id int64) (AnalysisTask, error) {
	var task AnalysisTask
	if err := r.c.Get(ctx, AnalysisTaskPath(id), client.WithDestination(&task)); err != nil {
		return AnalysisTask{}, err
	}

	return task, nil
}

// WaitAnalysis polls task id every interval until it is done. A failed
// task is returned together with an error wrapping [ErrAnalysisFailed].
// Ending ctx stops the wait with the client's normalized cancellation or
// timeout error. The last task seen is returned on any error.
func (r *Requirements) WaitAnalysis(ctx context.Context, id int64, interval time.Duration) (AnalysisTask, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last AnalysisTask
	for {
		task, err := r.AnalysisTask(ctx, id)
		if err != nil {
			return last, err
		}
		last = task

		if task.Status.Done() {
			if task.Status == TaskFailed {
				return task, fmt.Errorf("task %d: %w: %s", id, ErrAnalysisFailed, task.ErrorMessage)
			}
			return task, nil
		}

		// The next poll surfaces the normalized error once ctx ends.
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}
