package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// QueueDefault is the single processing queue.
const QueueDefault = "default"

// TaskDashboardWarmup precomputes the dashboard reports into the cache.
const TaskDashboardWarmup = "dashboard:warmup"

// DashboardWarmupPayload selects which reports to warm. Empty means all.
type DashboardWarmupPayload struct {
	Reports []string `json:"reports"`
}

// NewDashboardWarmupTask builds the warmup task.
func NewDashboardWarmupTask(reports ...string) (*asynq.Task, error) {
	payload, err := json.Marshal(DashboardWarmupPayload{Reports: reports})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, payload), nil
}
