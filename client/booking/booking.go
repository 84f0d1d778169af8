// Package booking drives a patient through choosing a consultation, a slot and
// a mobile-money payment, ending with a confirmed appointment.
package booking

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"dokta/client"
	"dokta/client/slots"
	"dokta/models"
	"dokta/phone"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a step of the booking flow.
type State string

const (
	StateDoctorProfile          State = "doctor_profile"
	StatePatientSelection       State = "patient_selection"
	StateDateTimeSelection      State = "date_time_selection"
	StatePatientDetailForm      State = "patient_detail_form"
	StatePaymentMethodSelection State = "payment_method_selection"
	StatePaymentPhoneEntry      State = "payment_phone_entry"
	StatePaymentConfirmation    State = "payment_confirmation"
	StatePaymentProcessing      State = "payment_processing"
	StateBookingConfirmed       State = "booking_confirmed"
)

var order = []State{
	StateDoctorProfile,
	StatePatientSelection,
	StateDateTimeSelection,
	StatePatientDetailForm,
	StatePaymentMethodSelection,
	StatePaymentPhoneEntry,
	StatePaymentConfirmation,
	StatePaymentProcessing,
	StateBookingConfirmed,
}

func (s State) index() int {
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}

// IdempotencyHeader carries the key that makes appointment creation replayable.
const IdempotencyHeader = "Idempotency-Key"

var (
	ErrBusy         = errors.New("booking: payment already in progress")
	ErrCompleted    = errors.New("booking: already confirmed")
	ErrLocked       = errors.New("booking: draft is locked by a reservation or a settled payment")
	ErrWrongState   = errors.New("booking: action not available at this step")
	ErrStale        = errors.New("booking: result superseded by a newer request")
	ErrNotConfirmed = errors.New("booking: no confirmed appointment yet")
	ErrSlotTaken    = errors.New("booking: slot not available")
)

// Snapshot is a consistent view of the flow.
type Snapshot struct {
	State   State
	Draft   Draft
	Day     *slots.Day
	LastErr error
}

// Controller holds one booking in progress. It is safe for concurrent use;
// no lock is held across network calls.
type Controller struct {
	api      *client.Client
	slots    *slots.Manager
	payments PaymentProcessor
	logger   *zap.Logger
	newKey   func() string

	mu      sync.Mutex
	state   State
	draft   Draft
	day     *slots.Day
	dayGen  uint64
	lastErr error
	appt    *models.Appointment
	paying  atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithKeyFunc overrides idempotency key generation.
func WithKeyFunc(f func() string) Option { return func(c *Controller) { c.newKey = f } }

// New starts a booking on doctor's profile.
func New(api *client.Client, sm *slots.Manager, payments PaymentProcessor, doctor models.Doctor, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		slots:    sm,
		payments: payments,
		logger:   zap.NewNop(),
		newKey:   func() string { return uuid.New().String() },
		state:    StateDoctorProfile,
	}
	d := doctor
	c.draft.Doctor = &d
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot copies the current state, draft and loaded day.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{State: c.state, Draft: c.draft, LastErr: c.lastErr}
	if c.draft.Patient != nil {
		p := *c.draft.Patient
		s.Draft.Patient = &p
	}
	if c.day != nil {
		s.Day = c.day.Clone()
	}
	return s
}

// editable guards draft edits. Caller holds c.mu.
func (c *Controller) editable(lockAfterReserve bool) error {
	switch {
	case c.state == StateBookingConfirmed:
		return ErrCompleted
	case c.state == StatePaymentProcessing:
		return ErrBusy
	case lockAfterReserve && c.draft.AppointmentID != "":
		return ErrLocked
	}
	return nil
}

// paymentLocked rejects a payment field change once the charge went
// through. Re-submitting the settled value is allowed. Caller holds c.mu.
func (c *Controller) paymentLocked(changed bool) error {
	if c.draft.PaymentReference != "" && changed {
		return ErrLocked
	}
	return nil
}

// advance moves to target after checking the draft. Caller holds c.mu.
func (c *Controller) advance(target State) error {
	if err := c.draft.check(target); err != nil {
		return err
	}
	c.state = target
	c.lastErr = nil
	return nil
}

// ChooseConsultation fixes the consultation type and freezes the price.
func (c *Controller) ChooseConsultation(t models.ConsultationType) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(true); err != nil {
		return 0, err
	}
	price, err := models.PriceFor(c.draft.Doctor.Tarif, t)
	if err != nil {
		return 0, &client.ValidationError{Field: "consultation_type", Message: "Type de consultation inconnu"}
	}
	c.draft.ConsultationType = t
	c.draft.Price = price
	if err := c.advance(StatePatientSelection); err != nil {
		return 0, err
	}
	return price, nil
}

// SelectPatient records who the consultation is for.
func (c *Controller) SelectPatient(p Patient) error {
	if strings.TrimSpace(p.Nom) == "" {
		return &client.ValidationError{Field: "patient", Message: "Le nom du patient est requis"}
	}
	if p.Age != 0 {
		if err := models.ValidateAge(p.Age); err != nil {
			return &client.ValidationError{Field: "age", Message: "L'âge doit être compris entre 1 et 120"}
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(true); err != nil {
		return err
	}
	c.draft.Patient = &p
	if c.state.index() < StatePatientSelection.index() {
		c.state = StatePatientSelection
	}
	return nil
}

// AddDependent creates a dependent on holder's account and selects it.
func (c *Controller) AddDependent(ctx context.Context, holder *models.User, req models.DependentCreate) (*models.Dependent, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	if req.Nom == "" {
		return nil, &client.ValidationError{Field: "nom", Message: "Le nom est requis"}
	}
	if err := models.ValidateAge(req.Age); err != nil {
		return nil, &client.ValidationError{Field: "age", Message: "L'âge doit être compris entre 1 et 120"}
	}
	if strings.TrimSpace(req.Lien) == "" {
		return nil, &client.ValidationError{Field: "lien", Message: "Le lien de parenté est requis"}
	}
	if req.Telephone != "" {
		tel, err := phone.Parse(req.Telephone)
		if err != nil {
			return nil, &client.ValidationError{Field: "telephone", Message: "Numéro de téléphone camerounais invalide (+237XXXXXXXXX)"}
		}
		req.Telephone = tel
	}

	var dep models.Dependent
	if err := c.api.Post(ctx, "/api/auth/dependents", req, &dep); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return nil, &client.AuthError{Message: "Vous devez être connecté pour ajouter un proche", Err: err}
		}
		return nil, err
	}
	if err := c.SelectPatient(DependentPatient(holder, dep)); err != nil {
		return &dep, err
	}
	return &dep, nil
}

// ContinueToSchedule enters date and time selection.
func (c *Controller) ContinueToSchedule() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(false); err != nil {
		return err
	}
	return c.advance(StateDateTimeSelection)
}

// LoadSlots fetches the doctor's day. A fallback day is kept and returned
// together with the fetch error so the caller can flag it.
func (c *Controller) LoadSlots(ctx context.Context, date string) (*slots.Day, error) {
	c.mu.Lock()
	if c.state.index() < StateDateTimeSelection.index() {
		c.mu.Unlock()
		return nil, ErrWrongState
	}
	if err := c.editable(true); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.dayGen++
	gen := c.dayGen
	doctorID := c.draft.Doctor.ID
	c.mu.Unlock()

	day, err := c.slots.Fetch(ctx, doctorID, date)
	if day == nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.dayGen {
		return nil, ErrStale
	}
	c.day = day
	if c.draft.Date != date {
		c.draft.Date, c.draft.Heure = "", ""
	}
	return day.Clone(), err
}

// PickSlot selects an available time of the loaded day.
func (c *Controller) PickSlot(date, heure string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(true); err != nil {
		return err
	}
	if c.day == nil || c.day.Date != date {
		return &client.ValidationError{Field: "date", Message: "Veuillez d'abord charger les créneaux de cette date"}
	}
	if !models.InCatalog(heure) {
		return &client.ValidationError{Field: "heure", Message: "Créneau horaire inconnu"}
	}
	if !c.day.IsAvailable(heure) {
		return ErrSlotTaken
	}
	c.draft.Date, c.draft.Heure = date, heure
	return nil
}

// ConfirmSchedule enters the patient detail form, prefilled from the patient.
func (c *Controller) ConfirmSchedule() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(false); err != nil {
		return err
	}
	if err := c.advance(StatePatientDetailForm); err != nil {
		return err
	}
	if c.draft.PatientName == "" {
		c.draft.PatientName = c.draft.Patient.Nom
	}
	if c.draft.PatientPhone == "" {
		c.draft.PatientPhone = phone.Normalize(c.draft.Patient.Telephone)
	}
	return nil
}

// SubmitPatientDetails records the contact details sent with the appointment.
func (c *Controller) SubmitPatientDetails(name, tel, motif string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(true); err != nil {
		return err
	}
	if c.state.index() < StatePatientDetailForm.index() {
		return ErrWrongState
	}
	c.draft.PatientName = strings.TrimSpace(name)
	c.draft.PatientPhone = phone.Normalize(tel)
	c.draft.Motif = strings.TrimSpace(motif)
	return c.advance(StatePaymentMethodSelection)
}

// SelectPaymentMethod picks the mobile-money operator.
func (c *Controller) SelectPaymentMethod(m models.PaymentMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(false); err != nil {
		return err
	}
	if c.state.index() < StatePaymentMethodSelection.index() {
		return ErrWrongState
	}
	if err := c.paymentLocked(m != c.draft.PaymentMethod); err != nil {
		return err
	}
	c.draft.PaymentMethod = m
	return c.advance(StatePaymentPhoneEntry)
}

// SubmitPaymentPhone records the number to charge. It defaults to the patient's number.
func (c *Controller) SubmitPaymentPhone(tel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(false); err != nil {
		return err
	}
	if c.state.index() < StatePaymentPhoneEntry.index() {
		return ErrWrongState
	}
	if strings.TrimSpace(tel) == "" {
		tel = c.draft.PatientPhone
	}
	tel = phone.Normalize(tel)
	if err := c.paymentLocked(tel != c.draft.PaymentPhone); err != nil {
		return err
	}
	c.draft.PaymentPhone = tel
	return c.advance(StatePaymentConfirmation)
}

// Back returns to the previous step. The draft is kept.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editable(false); err != nil {
		return err
	}
	if i := c.state.index(); i > 0 {
		c.state = order[i-1]
	}
	return nil
}

// Pay reserves the appointment, settles the payment and confirms the
// appointment. On failure the flow returns to payment confirmation with the
// draft intact; a retry reuses the idempotency key, the reserved appointment
// and, once settled, the payment reference.
func (c *Controller) Pay(ctx context.Context) (*Receipt, error) {
	if !c.paying.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.paying.Store(false)

	c.mu.Lock()
	if c.state == StateBookingConfirmed {
		c.mu.Unlock()
		return nil, ErrCompleted
	}
	if c.state != StatePaymentConfirmation {
		c.mu.Unlock()
		return nil, ErrWrongState
	}
	if err := c.draft.check(StatePaymentProcessing); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.draft.IdempotencyKey == "" {
		c.draft.IdempotencyKey = c.newKey()
	}
	c.state = StatePaymentProcessing
	c.lastErr = nil
	draft := c.draft
	patient := *c.draft.Patient
	c.mu.Unlock()

	appt, err := c.settle(ctx, draft, patient)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StatePaymentConfirmation
		c.lastErr = err
		c.logger.Warn("booking: payment failed",
			zap.String("doctorID", draft.Doctor.ID),
			zap.String("appointmentID", c.draft.AppointmentID),
			zap.Error(err))
		return nil, err
	}
	c.appt = appt
	c.state = StateBookingConfirmed
	return c.receipt(), nil
}

// settle runs the network side of Pay. Progress is written back to the draft
// as soon as each step succeeds so retries can resume.
func (c *Controller) settle(ctx context.Context, d Draft, p Patient) (*models.Appointment, error) {
	if p.ID == "" {
		var u models.User
		err := c.api.Do(ctx, client.Request{
			Method:  http.MethodPost,
			Path:    "/api/users",
			Body:    models.UserCreate{Nom: d.PatientName, Telephone: d.PatientPhone, Type: models.UserTypePatient},
			Headers: map[string]string{IdempotencyHeader: d.IdempotencyKey},
		}, &u)
		if err != nil {
			return nil, err
		}
		p.ID = u.ID
		c.mu.Lock()
		c.draft.Patient.ID = u.ID
		c.mu.Unlock()
	}

	if d.AppointmentID == "" {
		appt, err := c.reserve(ctx, d, p)
		if err != nil {
			return nil, err
		}
		if appt.Tarif != d.Price {
			c.logger.Warn("booking: server price differs from quoted price",
				zap.Int("quoted", d.Price), zap.Int("server", appt.Tarif))
		}
		d.AppointmentID = appt.ID
		c.mu.Lock()
		c.draft.AppointmentID = appt.ID
		c.mu.Unlock()
	}

	if d.PaymentReference == "" {
		res, err := c.payments.Process(ctx, PaymentRequest{
			AppointmentID:  d.AppointmentID,
			Amount:         d.Price,
			Method:         d.PaymentMethod,
			Phone:          d.PaymentPhone,
			IdempotencyKey: d.IdempotencyKey,
		})
		if err != nil {
			return nil, err
		}
		d.PaymentReference = res.Reference
		c.mu.Lock()
		c.draft.PaymentReference = res.Reference
		c.mu.Unlock()
	}

	var confirmed models.AppointmentEnvelope
	err := c.api.Put(ctx, "/api/appointments/"+client.PathEscape(d.AppointmentID)+"/confirm", models.ConfirmRequest{
		PaymentMethod:    d.PaymentMethod,
		PaymentReference: d.PaymentReference,
	}, &confirmed)
	if err != nil {
		return nil, client.Classify(err, "appointment", d.AppointmentID)
	}
	return &confirmed.Appointment, nil
}

func (c *Controller) reserve(ctx context.Context, d Draft, p Patient) (*models.Appointment, error) {
	req := models.AppointmentCreate{
		PatientID:        p.ID,
		DoctorID:         d.Doctor.ID,
		Date:             d.Date,
		Heure:            d.Heure,
		ConsultationType: d.ConsultationType,
		PatientName:      d.PatientName,
		PatientAge:       p.Age,
		PatientPhone:     d.PatientPhone,
		Motif:            d.Motif,
	}
	var appt models.Appointment
	err := c.api.Do(ctx, client.Request{
		Method:  http.MethodPost,
		Path:    "/api/appointments",
		Body:    req,
		Headers: map[string]string{IdempotencyHeader: d.IdempotencyKey},
	}, &appt)
	if err != nil {
		if client.IsStatus(err, http.StatusConflict) {
			return nil, errors.Join(ErrSlotTaken, err)
		}
		return nil, client.Classify(err, "doctor", d.Doctor.ID)
	}
	return &appt, nil
}
