package tasks

import (
	"testing"
	"time"

	"dokta/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderTaskPayload(t *testing.T) {
	at := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	task, opts, err := NewReminderTask(models.ReminderPayload{
		AppointmentID: "appt-1",
		UserID:        "pat-1",
		Title:         "Rappel",
		Body:          "Rendez-vous à 09:30",
	}, at)
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, task.Type())
	assert.Len(t, opts, 3)

	p, err := ParseReminderTask(task)
	require.NoError(t, err)
	assert.Equal(t, "appt-1", p.AppointmentID)
	assert.Equal(t, "2025-03-10T07:30:00Z", p.FireAt)
}

func TestParseReminderTaskRejectsIncomplete(t *testing.T) {
	_, err := ParseReminderTask(asynq.NewTask(TypeSendReminder, []byte(`{"title":"x"}`)))
	assert.Error(t, err)

	_, err = ParseReminderTask(asynq.NewTask(TypeSendReminder, []byte(`not json`)))
	assert.Error(t, err)
}
