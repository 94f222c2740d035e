package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/zedx-auto/garagepos/internal/pos"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReceiptDispatch renders a receipt and stores the WhatsApp handoff.
	TaskReceiptDispatch = "receipt:dispatch"
	// TaskDashboardWarmup rebuilds the cached dashboard snapshot.
	TaskDashboardWarmup = "dashboard:warmup"
)

// NewReceiptDispatchTask constructs an Asynq task from a receipt job.
func NewReceiptDispatchTask(job pos.ReceiptJob) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptDispatch, data), nil
}

// NewDashboardWarmupTask constructs the scheduled snapshot refresh task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}
