// Package notify registers the device for push notifications and keeps
// local appointment reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dokta/client"
	"dokta/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnsupportedDevice is returned by a PermissionRequester on devices that cannot receive pushes.
var ErrUnsupportedDevice = errors.New("notify: push notifications need a physical device")

// PermissionRequester asks the user for notification permission.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (granted bool, err error)
}

// TokenProvider issues the device push token.
type TokenProvider interface {
	PushToken(ctx context.Context) (string, error)
	DeviceInfo() models.DeviceInfo
}

// Reminder is a pending local notification.
type Reminder struct {
	ID      string
	FireAt  time.Time
	Payload models.ReminderPayload
}

// Registrar owns push registration and local reminders.
type Registrar struct {
	api         *client.Client
	permissions PermissionRequester
	tokens      TokenProvider
	deliver     func(models.ReminderPayload)
	logger      *zap.Logger

	mu      sync.Mutex
	token   string
	pending map[string]*pendingReminder
}

type pendingReminder struct {
	Reminder
	timer *time.Timer
}

// Option configures a Registrar.
type Option func(*Registrar)

func WithLogger(l *zap.Logger) Option { return func(r *Registrar) { r.logger = l } }

// WithDeliver sets what happens when a local reminder fires.
func WithDeliver(f func(models.ReminderPayload)) Option {
	return func(r *Registrar) { r.deliver = f }
}

func New(api *client.Client, permissions PermissionRequester, tokens TokenProvider, opts ...Option) *Registrar {
	r := &Registrar{
		api:         api,
		permissions: permissions,
		tokens:      tokens,
		logger:      zap.NewNop(),
		pending:     map[string]*pendingReminder{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.deliver == nil {
		r.deliver = func(p models.ReminderPayload) {
			r.logger.Info("notify: reminder", zap.String("appointmentID", p.AppointmentID), zap.String("title", p.Title))
		}
	}
	return r
}

// Register obtains a push token and records it for userID. A denied
// permission or an unsupported device yields (nil, nil).
func (r *Registrar) Register(ctx context.Context, userID string) (*string, error) {
	if userID == "" {
		return nil, &client.ValidationError{Field: "user_id", Message: "Utilisateur inconnu"}
	}
	granted, err := r.permissions.RequestPermission(ctx)
	if errors.Is(err, ErrUnsupportedDevice) {
		r.logger.Info("notify: device cannot receive pushes")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !granted {
		r.logger.Info("notify: permission denied")
		return nil, nil
	}

	token, err := r.tokens.PushToken(ctx)
	if err != nil {
		return nil, err
	}
	req := models.RegisterTokenRequest{UserID: userID, ExpoToken: token, DeviceInfo: r.tokens.DeviceInfo()}
	if err := r.api.Post(ctx, "/api/notifications/register-token", req, nil); err != nil {
		return nil, client.Classify(err, "user", userID)
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
	r.logger.Info("notify: push token registered", zap.String("userID", userID))
	return &token, nil
}

// Token returns the last registered push token.
func (r *Registrar) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// ScheduleLocalReminder delivers payload after delay. It returns the reminder id.
func (r *Registrar) ScheduleLocalReminder(delay time.Duration, payload models.ReminderPayload) string {
	id := uuid.New().String()
	p := &pendingReminder{Reminder: Reminder{ID: id, FireAt: time.Now().Add(delay), Payload: payload}}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		_, live := r.pending[id]
		delete(r.pending, id)
		r.mu.Unlock()
		if live {
			r.deliver(payload)
		}
	})
	r.pending[id] = p
	return id
}

// Cancel drops one pending reminder.
func (r *Registrar) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(r.pending, id)
	return true
}

// CancelAll drops every pending reminder.
func (r *Registrar) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.pending {
		p.timer.Stop()
		delete(r.pending, id)
	}
	r.logger.Debug("notify: all reminders cancelled")
}

// Pending lists the reminders that have not fired yet.
func (r *Registrar) Pending() []Reminder {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reminder, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.Reminder)
	}
	return out
}

// AppointmentReminder builds the payload shown before a confirmed appointment.
func AppointmentReminder(appt models.Appointment, doctor models.Doctor) models.ReminderPayload {
	p := models.ReminderPayload{
		AppointmentID:    appt.ID,
		UserID:           appt.PatientID,
		Title:            "Rappel de rendez-vous",
		Body:             fmt.Sprintf("Votre consultation avec %s est prévue le %s à %s.", doctor.Nom, appt.Date, appt.Heure),
		DoctorName:       doctor.Nom,
		ConsultationType: appt.ConsultationType,
	}
	if appt.ConsultationType == models.ConsultationCabinet {
		p.MapsURL = doctor.MapsURL()
	}
	return p
}
