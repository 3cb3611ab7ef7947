package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadRescore recomputes one lead's qualification score.
const TaskLeadRescore = "leads:rescore"

// TaskLeadRescoreStale sweeps leads whose scores have gone stale. Enqueued
// nightly by the periodic scheduler.
const TaskLeadRescoreStale = "leads:rescore_stale"

type LeadRescorePayload struct {
	LeadID string `json:"leadId"`
}

func NewLeadRescoreTask(payload LeadRescorePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadRescore, data), nil
}

func ParseLeadRescorePayload(task *asynq.Task) (LeadRescorePayload, error) {
	var payload LeadRescorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadRescorePayload{}, err
	}
	return payload, nil
}

func NewLeadRescoreStaleTask() *asynq.Task {
	return asynq.NewTask(TaskLeadRescoreStale, nil)
}
