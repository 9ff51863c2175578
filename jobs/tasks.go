package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLawsSummaryWarmup pre-computes the law summaries of the current
	// Lunar Hijri year.
	TaskLawsSummaryWarmup = "laws:summary_warmup"
)

// SummaryWarmupPayload optionally pins the Gregorian day whose Lunar Hijri
// year is warmed. An empty At means today.
type SummaryWarmupPayload struct {
	At string `json:"at,omitempty"`
}

func (p SummaryWarmupPayload) day(now time.Time) (time.Time, error) {
	if p.At == "" {
		return now, nil
	}
	return time.Parse(time.DateOnly, p.At)
}

// NewSummaryWarmupTask constructs the warmup task.
func NewSummaryWarmupTask(payload SummaryWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLawsSummaryWarmup, data, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute)), nil
}
