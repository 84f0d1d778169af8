package booking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dokta/client"
	"dokta/client/slots"
	"dokta/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookingDate = "2030-05-06"

type fakeBackend struct {
	mu          sync.Mutex
	creates     int
	keys        []string
	byKey       map[string]models.Appointment
	confirmFail int
	confirms    []models.ConfirmRequest
	createCode  int
	users       int
	userKeys    []string
	userFail    int
	cancels     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{byKey: map[string]models.Appointment{}}
}

type backendStats struct {
	creates  int
	users    int
	keys     []string
	userKeys []string
	confirms []models.ConfirmRequest
}

func (b *fakeBackend) stats() backendStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backendStats{
		creates:  b.creates,
		users:    b.users,
		keys:     append([]string(nil), b.keys...),
		userKeys: append([]string(nil), b.userKeys...),
		confirms: append([]models.ConfirmRequest(nil), b.confirms...),
	}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/available-slots"):
		_ = json.NewEncoder(w).Encode([]models.TimeSlot{
			{Heure: "09:00", Disponible: false},
			{Heure: "10:00", Disponible: true},
		})

	case r.Method == http.MethodPost && r.URL.Path == "/api/users":
		key := r.Header.Get(IdempotencyHeader)
		seen := false
		for _, k := range b.userKeys {
			seen = seen || (k != "" && k == key)
		}
		b.userKeys = append(b.userKeys, key)
		if !seen {
			b.users++
		}
		if b.userFail > 0 {
			// Record created, response lost.
			b.userFail--
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(models.User{ID: "guest-1", Type: models.UserTypePatient})

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/dependents":
		var req models.DependentCreate
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Dependent{ID: "dep-1", Nom: req.Nom, Age: req.Age, Lien: req.Lien})

	case r.Method == http.MethodPost && r.URL.Path == "/api/appointments":
		if b.createCode != 0 {
			w.WriteHeader(b.createCode)
			_, _ = w.Write([]byte(`{"detail":"Ce créneau n'est plus disponible"}`))
			return
		}
		key := r.Header.Get(IdempotencyHeader)
		b.keys = append(b.keys, key)
		if appt, ok := b.byKey[key]; ok {
			_ = json.NewEncoder(w).Encode(appt)
			return
		}
		var req models.AppointmentCreate
		_ = json.NewDecoder(r.Body).Decode(&req)
		price, _ := models.PriceFor(15000, req.ConsultationType)
		b.creates++
		appt := models.Appointment{
			ID:               "appt-1",
			PatientID:        req.PatientID,
			DoctorID:         req.DoctorID,
			PatientName:      req.PatientName,
			PatientPhone:     req.PatientPhone,
			Date:             req.Date,
			Heure:            req.Heure,
			Status:           models.StatusPending,
			ConsultationType: req.ConsultationType,
			Tarif:            price,
		}
		b.byKey[key] = appt
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(appt)

	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/confirm"):
		if b.confirmFail > 0 {
			b.confirmFail--
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req models.ConfirmRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.confirms = append(b.confirms, req)
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/appointments/"), "/confirm")
		for _, appt := range b.byKey {
			if appt.ID == id {
				appt.Status = models.StatusConfirmed
				appt.PaymentMethod = req.PaymentMethod
				appt.PaymentReference = req.PaymentReference
				_ = json.NewEncoder(w).Encode(models.AppointmentEnvelope{Message: "Rendez-vous confirmé avec succès", Appointment: appt})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Rendez-vous non trouvé"}`))

	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/cancel"):
		if r.Header.Get("Authorization") != "Bearer patient-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Token invalide ou expiré"}`))
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/appointments/"), "/cancel")
		b.cancels = append(b.cancels, id)
		switch id {
		case "appt-1":
			_ = json.NewEncoder(w).Encode(models.AppointmentEnvelope{
				Message:     "Rendez-vous annulé",
				Appointment: models.Appointment{ID: id, Status: models.StatusCancelled},
			})
		case "appt-done":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"cannot move from termine to annule"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Rendez-vous non trouvé"}`))
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type fakeProcessor struct {
	mu    sync.Mutex
	fail  int
	calls []PaymentRequest
	block chan struct{}
}

func (p *fakeProcessor) Process(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.fail > 0 {
		p.fail--
		return nil, errors.New("operator timeout")
	}
	return &PaymentResult{Reference: "MOMO-TEST", Method: req.Method, Amount: req.Amount, ProcessedAt: time.Now()}, nil
}

var testDoctor = models.Doctor{ID: "doc-1", Nom: "Dr. Ngono", Specialite: "Cardiologie", Tarif: 15000}

var holder = &models.User{ID: "user-1", Nom: "Marie Atangana", Telephone: "+237677000111", Age: 34, Type: models.UserTypePatient}

func newController(t *testing.T, b *fakeBackend, p PaymentProcessor) *Controller {
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	api := client.New(srv.URL)
	keys := 0
	return New(api, slots.New(api), p, testDoctor, WithKeyFunc(func() string {
		keys++
		return "key-" + string(rune('0'+keys))
	}))
}

// walk drives the flow up to payment confirmation.
func walk(t *testing.T, c *Controller, ct models.ConsultationType, patientPhone string) {
	t.Helper()
	_, err := c.ChooseConsultation(ct)
	require.NoError(t, err)
	require.NoError(t, c.SelectPatient(SelfPatient(holder)))
	require.NoError(t, c.ContinueToSchedule())
	_, err = c.LoadSlots(context.Background(), bookingDate)
	require.NoError(t, err)
	require.NoError(t, c.PickSlot(bookingDate, "10:00"))
	require.NoError(t, c.ConfirmSchedule())
	require.NoError(t, c.SubmitPatientDetails("Marie Atangana", patientPhone, "Douleurs thoraciques"))
	require.NoError(t, c.SelectPaymentMethod(models.PaymentMTN))
	require.NoError(t, c.SubmitPaymentPhone(""))
	require.Equal(t, StatePaymentConfirmation, c.State())
}

func TestEndToEndHomeVisit(t *testing.T) {
	b := newFakeBackend()
	p := &fakeProcessor{}
	c := newController(t, b, p)

	walk(t, c, models.ConsultationDomicile, "690123456")

	snap := c.Snapshot()
	assert.Equal(t, 20000, snap.Draft.Price)
	assert.Equal(t, "+237690123456", snap.Draft.PatientPhone)
	assert.Equal(t, "+237690123456", snap.Draft.PaymentPhone)

	rec, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateBookingConfirmed, c.State())
	assert.Equal(t, "appt-1", rec.AppointmentID)
	assert.Equal(t, models.StatusConfirmed, rec.Status)
	assert.Equal(t, 20000, rec.Price)
	assert.Equal(t, "MTN Mobile Money", rec.Operator)
	assert.Equal(t, "MOMO-TEST", rec.PaymentReference)
	assert.Equal(t, "+237690123456", rec.PatientPhone)
	assert.Len(t, rec.Instructions, 3)

	require.Len(t, p.calls, 1)
	assert.Equal(t, 20000, p.calls[0].Amount)
	assert.Equal(t, "appt-1", p.calls[0].AppointmentID)
	st := b.stats()
	require.Len(t, st.confirms, 1)
	assert.Equal(t, "MOMO-TEST", st.confirms[0].PaymentReference)
	assert.Equal(t, 1, st.creates)

	again, err := c.Receipt()
	require.NoError(t, err)
	assert.Equal(t, rec, again)

	_, err = c.Pay(context.Background())
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestPriceFrozenOnChoice(t *testing.T) {
	c := newController(t, newFakeBackend(), &fakeProcessor{})

	price, err := c.ChooseConsultation(models.ConsultationTele)
	require.NoError(t, err)
	assert.Equal(t, 13000, price)

	price, err = c.ChooseConsultation(models.ConsultationCabinet)
	require.NoError(t, err)
	assert.Equal(t, 15000, price)

	_, err = c.ChooseConsultation("video")
	var ve *client.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, 15000, c.Snapshot().Draft.Price)
}

func TestGating(t *testing.T) {
	c := newController(t, newFakeBackend(), &fakeProcessor{})
	var ve *client.ValidationError

	err := c.ContinueToSchedule()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "consultation_type", ve.Field)
	assert.Equal(t, StateDoctorProfile, c.State())

	_, err = c.ChooseConsultation(models.ConsultationCabinet)
	require.NoError(t, err)
	err = c.ContinueToSchedule()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "patient", ve.Field)
	assert.Equal(t, StatePatientSelection, c.State())

	require.NoError(t, c.SelectPatient(SelfPatient(holder)))
	require.NoError(t, c.ContinueToSchedule())

	err = c.ConfirmSchedule()
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	_, err = c.LoadSlots(context.Background(), bookingDate)
	require.NoError(t, err)
	assert.ErrorIs(t, c.PickSlot(bookingDate, "09:00"), ErrSlotTaken)
	assert.ErrorAs(t, c.PickSlot(bookingDate, "13:00"), &ve)
	assert.ErrorAs(t, c.PickSlot("2030-05-07", "10:00"), &ve)
	require.NoError(t, c.PickSlot(bookingDate, "10:00"))
	require.NoError(t, c.ConfirmSchedule())

	assert.Equal(t, "Marie Atangana", c.Snapshot().Draft.PatientName)

	err = c.SubmitPatientDetails("Marie", "12345", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "patient_phone", ve.Field)
	assert.Equal(t, StatePatientDetailForm, c.State())

	err = c.SubmitPatientDetails("  ", "690123456", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "patient_name", ve.Field)

	require.NoError(t, c.SubmitPatientDetails("Marie", "690123456", ""))
	err = c.SelectPaymentMethod("paypal")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "payment_method", ve.Field)

	_, err = c.Pay(context.Background())
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestPayFailureKeepsDraftAndRetryReusesKey(t *testing.T) {
	b := newFakeBackend()
	p := &fakeProcessor{fail: 1}
	c := newController(t, b, p)
	walk(t, c, models.ConsultationDomicile, "690123456")
	before := c.Snapshot().Draft

	_, err := c.Pay(context.Background())
	require.Error(t, err)
	snap := c.Snapshot()
	assert.Equal(t, StatePaymentConfirmation, snap.State)
	assert.Equal(t, err, snap.LastErr)
	assert.Equal(t, "appt-1", snap.Draft.AppointmentID)
	assert.Equal(t, "key-1", snap.Draft.IdempotencyKey)
	assert.Equal(t, before.Price, snap.Draft.Price)
	assert.Equal(t, before.Heure, snap.Draft.Heure)
	assert.Equal(t, before.PaymentPhone, snap.Draft.PaymentPhone)

	// The reserved appointment pins the slot.
	assert.ErrorIs(t, c.PickSlot(bookingDate, "10:00"), ErrLocked)

	rec, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "appt-1", rec.AppointmentID)
	assert.Equal(t, 1, b.stats().creates)
	assert.Equal(t, []string{"key-1"}, b.stats().keys)
	assert.Len(t, p.calls, 2)
	assert.Equal(t, p.calls[0].IdempotencyKey, p.calls[1].IdempotencyKey)
}

func TestConfirmFailureDoesNotChargeTwice(t *testing.T) {
	b := newFakeBackend()
	b.confirmFail = 1
	p := &fakeProcessor{}
	c := newController(t, b, p)
	walk(t, c, models.ConsultationCabinet, "677000111")

	_, err := c.Pay(context.Background())
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "MOMO-TEST", c.Snapshot().Draft.PaymentReference)

	rec, err := c.Pay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15000, rec.Price)
	assert.Len(t, p.calls, 1)
	assert.Equal(t, 1, b.stats().creates)
}

func TestSlotTakenOnCreate(t *testing.T) {
	b := newFakeBackend()
	b.createCode = http.StatusConflict
	c := newController(t, b, &fakeProcessor{})
	walk(t, c, models.ConsultationCabinet, "690123456")

	_, err := c.Pay(context.Background())
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, "Ce créneau n'est plus disponible", client.UserMessage(err))
	assert.Equal(t, StatePaymentConfirmation, c.State())
	assert.Empty(t, c.Snapshot().Draft.AppointmentID)

	// Nothing was reserved, so the schedule can still be changed.
	require.NoError(t, c.PickSlot(bookingDate, "10:00"))
}

func TestPayIsNotReentrant(t *testing.T) {
	b := newFakeBackend()
	p := &fakeProcessor{block: make(chan struct{})}
	c := newController(t, b, p)
	walk(t, c, models.ConsultationCabinet, "690123456")

	done := make(chan error, 1)
	go func() {
		_, err := c.Pay(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return c.State() == StatePaymentProcessing }, 2*time.Second, 5*time.Millisecond)

	_, err := c.Pay(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Back(), ErrBusy)
	assert.ErrorIs(t, c.SelectPaymentMethod(models.PaymentOrange), ErrBusy)

	close(p.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.stats().creates)
}

func TestWalkInPatientRecordIsCreatedOnce(t *testing.T) {
	b := newFakeBackend()
	p := &fakeProcessor{fail: 1}
	c := newController(t, b, p)

	_, err := c.ChooseConsultation(models.ConsultationCabinet)
	require.NoError(t, err)
	require.NoError(t, c.SelectPatient(Patient{Nom: "Paul Biya", Telephone: "699000000"}))
	require.NoError(t, c.ContinueToSchedule())
	_, err = c.LoadSlots(context.Background(), bookingDate)
	require.NoError(t, err)
	require.NoError(t, c.PickSlot(bookingDate, "10:00"))
	require.NoError(t, c.ConfirmSchedule())
	assert.Equal(t, "+237699000000", c.Snapshot().Draft.PatientPhone)
	require.NoError(t, c.SubmitPatientDetails("Paul Biya", "699000000", ""))
	require.NoError(t, c.SelectPaymentMethod(models.PaymentOrange))
	require.NoError(t, c.SubmitPaymentPhone("655 11 22 33"))

	_, err = c.Pay(context.Background())
	require.Error(t, err)
	rec, err := c.Pay(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, b.stats().users)
	assert.Equal(t, "guest-1", c.Snapshot().Draft.Patient.ID)
	assert.Equal(t, "Orange Money", rec.Operator)
	assert.Equal(t, "+237655112233", p.calls[1].Phone)
}

func TestAddDependent(t *testing.T) {
	c := newController(t, newFakeBackend(), &fakeProcessor{})
	_, err := c.ChooseConsultation(models.ConsultationCabinet)
	require.NoError(t, err)

	_, err = c.AddDependent(context.Background(), holder, models.DependentCreate{Nom: "Junior", Age: 0, Lien: "enfant"})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "age", ve.Field)

	dep, err := c.AddDependent(context.Background(), holder, models.DependentCreate{Nom: "Junior", Age: 7, Lien: "enfant"})
	require.NoError(t, err)
	assert.Equal(t, "dep-1", dep.ID)

	pat := c.Snapshot().Draft.Patient
	require.NotNil(t, pat)
	assert.Equal(t, "user-1", pat.ID)
	assert.Equal(t, "dep-1", pat.DependentID)
	assert.Equal(t, holder.Telephone, pat.Telephone)
	require.NoError(t, c.ContinueToSchedule())
}

func TestBackKeepsDraft(t *testing.T) {
	c := newController(t, newFakeBackend(), &fakeProcessor{})
	walk(t, c, models.ConsultationCabinet, "690123456")

	require.NoError(t, c.Back())
	assert.Equal(t, StatePaymentPhoneEntry, c.State())
	assert.Equal(t, "+237690123456", c.Snapshot().Draft.PaymentPhone)

	_, err := c.Receipt()
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestSimulatedProcessor(t *testing.T) {
	p := NewSimulatedProcessor(time.Millisecond, nil)
	req := PaymentRequest{AppointmentID: "a1", Amount: 15000, Method: models.PaymentOrange, Phone: "+237655112233"}

	res, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reference, "OM-"))
	assert.Equal(t, 15000, res.Amount)

	req.Phone = "0655"
	_, err = p.Process(context.Background(), req)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewSimulatedProcessor(time.Hour, nil)
	req.Phone = "+237655112233"
	_, err = slow.Process(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSettledPaymentLocksOperatorAndPhone(t *testing.T) {
	b := newFakeBackend()
	b.confirmFail = 1
	p := &fakeProcessor{}
	c := newController(t, b, p)
	walk(t, c, models.ConsultationCabinet, "690123456")

	_, err := c.Pay(context.Background())
	require.Error(t, err)
	require.Equal(t, "MOMO-TEST", c.Snapshot().Draft.PaymentReference)

	require.NoError(t, c.Back())
	require.NoError(t, c.Back())
	require.Equal(t, StatePaymentMethodSelection, c.State())

	assert.ErrorIs(t, c.SelectPaymentMethod(models.PaymentOrange), ErrLocked)
	require.NoError(t, c.SelectPaymentMethod(models.PaymentMTN))
	assert.ErrorIs(t, c.SubmitPaymentPhone("677 00 01 11"), ErrLocked)
	require.NoError(t, c.SubmitPaymentPhone(""))

	rec, err := c.Pay(context.Background())
	require.NoError(t, err)
	require.Len(t, p.calls, 1)
	assert.Equal(t, models.PaymentMTN, p.calls[0].Method)
	st := b.stats()
	require.Len(t, st.confirms, 1)
	assert.Equal(t, models.PaymentMTN, st.confirms[0].PaymentMethod)
	assert.Equal(t, "MTN Mobile Money", rec.Operator)
	assert.Equal(t, "+237690123456", rec.PatientPhone)
}

func TestWalkInRetryReusesKeyForPatientRecord(t *testing.T) {
	b := newFakeBackend()
	b.userFail = 1
	c := newController(t, b, &fakeProcessor{})

	_, err := c.ChooseConsultation(models.ConsultationCabinet)
	require.NoError(t, err)
	require.NoError(t, c.SelectPatient(Patient{Nom: "Paul Biya", Telephone: "699000000"}))
	require.NoError(t, c.ContinueToSchedule())
	_, err = c.LoadSlots(context.Background(), bookingDate)
	require.NoError(t, err)
	require.NoError(t, c.PickSlot(bookingDate, "10:00"))
	require.NoError(t, c.ConfirmSchedule())
	require.NoError(t, c.SubmitPatientDetails("Paul Biya", "699000000", ""))
	require.NoError(t, c.SelectPaymentMethod(models.PaymentMTN))
	require.NoError(t, c.SubmitPaymentPhone(""))

	_, err = c.Pay(context.Background())
	require.Error(t, err)
	_, err = c.Pay(context.Background())
	require.NoError(t, err)

	st := b.stats()
	assert.Equal(t, []string{"key-1", "key-1"}, st.userKeys)
	assert.Equal(t, 1, st.users)
}

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func TestCancel(t *testing.T) {
	b := newFakeBackend()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	_, err := Cancel(ctx, client.New(srv.URL), "appt-1")
	var ae *client.AuthError
	assert.ErrorAs(t, err, &ae)

	api := client.New(srv.URL, client.WithTokens(staticTokens("patient-token")))
	_, err = Cancel(ctx, api, " ")
	var ve *client.ValidationError
	assert.ErrorAs(t, err, &ve)

	appt, err := Cancel(ctx, api, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, appt.Status)

	_, err = Cancel(ctx, api, "missing")
	var nf *client.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = Cancel(ctx, api, "appt-done")
	assert.True(t, client.IsStatus(err, http.StatusConflict))

	api = client.New(srv.URL, client.WithTokens(staticTokens("expired")))
	_, err = Cancel(ctx, api, "appt-1")
	assert.ErrorAs(t, err, &ae)
}
