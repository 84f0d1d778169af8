package tasks

import (
	"fmt"
	"time"

	"dokta/models"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds an appointment reminder task delivered at fireAt.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	payload.FireAt = fireAt.UTC().Format(time.RFC3339)
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
		// One reminder per appointment even if confirm is replayed.
		asynq.TaskID("reminder:" + payload.AppointmentID),
	}
	return task, opts, nil
}

// ParseReminderTask decodes the payload of a reminder task.
func ParseReminderTask(t *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	if p.AppointmentID == "" || p.UserID == "" {
		return p, fmt.Errorf("reminder payload missing appointment or user id")
	}
	return p, nil
}
