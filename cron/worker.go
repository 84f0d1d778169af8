package cron

import (
	"context"
	"errors"
	"time"

	"dokta/config"
	"dokta/models"
	"dokta/services/notification"
	"dokta/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderSender delivers a decoded reminder.
type ReminderSender interface {
	SendReminder(ctx context.Context, p models.ReminderPayload) error
}

// QueueRedisOpt is the asynq connection shared by the client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ReminderWorker runs the asynq server that delivers appointment reminders.
type ReminderWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewReminderWorker(sender ReminderSender, logger *zap.Logger) *ReminderWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(sender, logger))
	return &ReminderWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background with retries on startup failure.
func (w *ReminderWorker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go monitorRedisConnection(ctx, w.logger)

	go func() {
		w.logger.Info("starting reminder worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("reminder worker gave up; reminders will not be delivered")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
}

// Shutdown stops the worker and waits for in-flight tasks.
func (w *ReminderWorker) Shutdown() {
	if w.cancel != nil {
		w.cancel()
	}
	w.srv.Shutdown()
	w.logger.Info("reminder worker stopped")
}

// HandleReminderTask decodes the task and hands it to the sender.
// A user without a push token is not retried.
func HandleReminderTask(sender ReminderSender, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderTask(task)
		if err != nil {
			logger.Error("dropping reminder task", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}

		logger.Info("delivering reminder",
			zap.String("appointment_id", p.AppointmentID),
			zap.String("user_id", p.UserID))

		err = sender.SendReminder(ctx, p)
		if errors.Is(err, notification.ErrNoPushTarget) {
			logger.Warn("reminder skipped, no push token", zap.String("user_id", p.UserID))
			return nil
		}
		if err != nil {
			logger.Error("failed to send reminder", zap.String("appointment_id", p.AppointmentID), zap.Error(err))
		}
		return err
	}
}

// monitorRedisConnection pings the queue database until ctx is cancelled.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				logger.Warn("queue redis connection lost", zap.Error(err))
			}
		}
	}
}
