package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"dokta/models"
	"dokta/services/notification"
	"dokta/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSender struct {
	got []models.ReminderPayload
	err error
}

func (s *stubSender) SendReminder(_ context.Context, p models.ReminderPayload) error {
	s.got = append(s.got, p)
	return s.err
}

func TestHandleReminderTaskDelivers(t *testing.T) {
	sender := &stubSender{}
	task, _, err := tasks.NewReminderTask(models.ReminderPayload{
		AppointmentID: "appt-1",
		UserID:        "user-1",
		Title:         "Rappel",
	}, time.Now().Add(time.Hour))
	require.NoError(t, err)

	err = HandleReminderTask(sender, zap.NewNop())(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, sender.got, 1)
	assert.Equal(t, "appt-1", sender.got[0].AppointmentID)
}

func TestHandleReminderTaskNoToken(t *testing.T) {
	sender := &stubSender{err: notification.ErrNoPushTarget}
	task, _, err := tasks.NewReminderTask(models.ReminderPayload{AppointmentID: "a", UserID: "u"}, time.Now())
	require.NoError(t, err)

	assert.NoError(t, HandleReminderTask(sender, zap.NewNop())(context.Background(), task))
}

func TestHandleReminderTaskBadPayload(t *testing.T) {
	sender := &stubSender{}
	err := HandleReminderTask(sender, zap.NewNop())(context.Background(), asynq.NewTask(tasks.TypeSendReminder, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	assert.Empty(t, sender.got)
}

func TestHandleReminderTaskSendFailure(t *testing.T) {
	boom := errors.New("fcm down")
	sender := &stubSender{err: boom}
	task, _, err := tasks.NewReminderTask(models.ReminderPayload{AppointmentID: "a", UserID: "u"}, time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, HandleReminderTask(sender, zap.NewNop())(context.Background(), task), boom)
}
