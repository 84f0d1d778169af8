package notification

import (
	"context"
	"errors"
	"time"

	appointmentRepo "dokta/database/repository/appointment"
	doctorRepo "dokta/database/repository/doctor"
	userRepo "dokta/database/repository/user"
	"dokta/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ErrNoPushTarget is returned when the user never registered a device token.
var ErrNoPushTarget = errors.New("user has no registered push token")

// NotificationService registers device tokens and sends FCM pushes.
type NotificationService interface {
	RegisterToken(ctx context.Context, req models.RegisterTokenRequest) error
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
	// AppointmentConfirmed pushes a confirmation and schedules the reminder.
	AppointmentConfirmed(ctx context.Context, appt *models.Appointment) error
	// SendReminder delivers a queued reminder unless the appointment is no
	// longer confirmed.
	SendReminder(ctx context.Context, p models.ReminderPayload) error
}

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users        userRepo.UserRepository
	Doctors      doctorRepo.DoctorRepository
	Appointments appointmentRepo.AppointmentRepository
	// FCM and Queue are optional; without them pushes or reminders are skipped.
	FCM          Sender
	Queue        Enqueuer
	ReminderLead time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDefaultNotificationService(
	users userRepo.UserRepository,
	doctors doctorRepo.DoctorRepository,
	appts appointmentRepo.AppointmentRepository,
	fcm Sender,
	queue Enqueuer,
	lead time.Duration,
	logger *zap.Logger,
) *DefaultNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		Users:        users,
		Doctors:      doctors,
		Appointments: appts,
		FCM:          fcm,
		Queue:        queue,
		ReminderLead: lead,
		Logger:       logger,
		Now:          time.Now,
	}
}
