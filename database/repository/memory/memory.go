// Package memoryRepo holds in-process implementations of the repositories.
// They back the service and handler tests and mirror the Mongo semantics
// that callers rely on: not-found, duplicate phone and active-slot conflicts.
package memoryRepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dokta/database"
	appointmentRepo "dokta/database/repository/appointment"
	userRepo "dokta/database/repository/user"
	"dokta/models"

	"github.com/google/uuid"
)

// Doctors is an in-memory DoctorRepository.
type Doctors struct {
	mu   sync.RWMutex
	byID map[string]models.Doctor
}

func NewDoctors(seed ...models.Doctor) *Doctors {
	d := &Doctors{byID: map[string]models.Doctor{}}
	for _, doc := range seed {
		d.byID[doc.ID] = doc
	}
	return d
}

func (d *Doctors) Create(_ context.Context, doc *models.Doctor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	d.byID[doc.ID] = *doc
	return nil
}

func (d *Doctors) CreateMany(ctx context.Context, docs []models.Doctor) error {
	for i := range docs {
		if err := d.Create(ctx, &docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Doctors) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &doc, nil
}

func (d *Doctors) sorted(match func(models.Doctor) bool) []models.Doctor {
	out := []models.Doctor{}
	for _, doc := range d.byID {
		if match(doc) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nom < out[j].Nom })
	return out
}

func (d *Doctors) List(_ context.Context, specialite string) ([]models.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sorted(func(doc models.Doctor) bool {
		return doc.Disponible && (specialite == "" || doc.Specialite == specialite)
	}), nil
}

func (d *Doctors) Search(_ context.Context, query string, limit int64) ([]models.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	q := strings.ToLower(query)
	out := d.sorted(func(doc models.Doctor) bool {
		return doc.Disponible &&
			(strings.Contains(strings.ToLower(doc.Nom), q) || strings.Contains(strings.ToLower(doc.Specialite), q))
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Doctors) Update(_ context.Context, id string, upd models.DoctorProfileUpdate) (*models.Doctor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if upd.Nom != nil {
		doc.Nom = *upd.Nom
	}
	if upd.Telephone != nil {
		doc.Telephone = *upd.Telephone
	}
	if upd.Specialite != nil {
		doc.Specialite = *upd.Specialite
	}
	if upd.Experience != nil {
		doc.Experience = *upd.Experience
	}
	if upd.Tarif != nil {
		doc.Tarif = *upd.Tarif
	}
	if upd.Diplomes != nil {
		doc.Diplomes = *upd.Diplomes
	}
	if upd.Disponible != nil {
		doc.Disponible = *upd.Disponible
	}
	if upd.Adresse != nil {
		doc.Adresse = *upd.Adresse
	}
	d.byID[id] = doc
	return &doc, nil
}

func (d *Doctors) Count(_ context.Context) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.byID)), nil
}

// Users is an in-memory UserRepository.
type Users struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}}
}

func (u *Users) Create(_ context.Context, user *models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.byID {
		if existing.Telephone == user.Telephone {
			return userRepo.ErrDuplicatePhone
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	u.byID[user.ID] = *user
	return nil
}

func (u *Users) find(match func(models.User) bool) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, user := range u.byID {
		if match(user) {
			cp := user
			cp.Dependents = append([]models.Dependent(nil), user.Dependents...)
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (u *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.ID == id })
}

func (u *Users) GetByPhone(_ context.Context, telephone string) (*models.User, error) {
	return u.find(func(user models.User) bool { return user.Telephone == telephone })
}

func (u *Users) GetByTokenHash(_ context.Context, hash string) (*models.User, error) {
	return u.find(func(user models.User) bool { return hash != "" && user.TokenHash == hash })
}

func (u *Users) mutate(id string, fn func(*models.User)) (*models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	u.byID[id] = user
	return &user, nil
}

func (u *Users) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	return u.mutate(id, func(user *models.User) {
		if upd.Nom != nil {
			user.Nom = *upd.Nom
		}
		if upd.Age != nil {
			user.Age = *upd.Age
		}
		if upd.Ville != nil {
			user.Ville = *upd.Ville
		}
		if upd.Specialite != nil {
			user.Specialite = *upd.Specialite
		}
		if upd.Experience != nil {
			user.Experience = *upd.Experience
		}
		if upd.Tarif != nil {
			user.Tarif = *upd.Tarif
		}
		if upd.Diplomes != nil {
			user.Diplomes = *upd.Diplomes
		}
	})
}

func (u *Users) RecordLogin(_ context.Context, id, tokenHash string) error {
	now := time.Now().UTC()
	_, err := u.mutate(id, func(user *models.User) {
		user.TokenHash = tokenHash
		user.LastLogin = &now
	})
	return err
}

func (u *Users) ClearTokenHash(_ context.Context, id string) error {
	_, err := u.mutate(id, func(user *models.User) { user.TokenHash = "" })
	return err
}

func (u *Users) SetFCMToken(_ context.Context, id, token, platform string) error {
	_, err := u.mutate(id, func(user *models.User) {
		user.FCMToken = token
		user.Platform = platform
	})
	return err
}

func (u *Users) AddDependent(_ context.Context, id string, dep models.Dependent) error {
	_, err := u.mutate(id, func(user *models.User) {
		user.Dependents = append(user.Dependents, dep)
	})
	return err
}

func (u *Users) Count(_ context.Context) (int64, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return int64(len(u.byID)), nil
}

// Availability is an in-memory AvailabilityRepository.
type Availability struct {
	mu   sync.RWMutex
	rows map[string]models.AvailabilityEntry
}

func NewAvailability() *Availability {
	return &Availability{rows: map[string]models.AvailabilityEntry{}}
}

func (a *Availability) GetByDoctorAndDate(_ context.Context, doctorID, date string) ([]models.AvailabilityEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []models.AvailabilityEntry
	for _, e := range a.rows {
		if e.DoctorID == doctorID && e.Date == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Heure < out[j].Heure })
	return out, nil
}

func (a *Availability) Upsert(_ context.Context, doctorID string, entries []models.AvailabilityEntry) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range entries {
		e.DoctorID = doctorID
		a.rows[doctorID+"|"+e.Date+"|"+e.Heure] = e
	}
	return int64(len(entries)), nil
}

// Appointments is an in-memory AppointmentRepository.
type Appointments struct {
	mu    sync.RWMutex
	byID  map[string]models.Appointment
	order []string
}

func NewAppointments() *Appointments {
	return &Appointments{byID: map[string]models.Appointment{}}
}

func (a *Appointments) Create(_ context.Context, appt *models.Appointment) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, existing := range a.byID {
		if appt.IdempotencyKey != "" && existing.IdempotencyKey == appt.IdempotencyKey {
			return appointmentRepo.ErrDuplicateKey
		}
		if existing.DoctorID == appt.DoctorID && existing.Date == appt.Date &&
			existing.Heure == appt.Heure && existing.Status != models.StatusCancelled {
			return appointmentRepo.ErrSlotTaken
		}
	}
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	a.byID[appt.ID] = *appt
	a.order = append(a.order, appt.ID)
	return nil
}

func (a *Appointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	appt, ok := a.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &appt, nil
}

func (a *Appointments) GetByIdempotencyKey(_ context.Context, key string) (*models.Appointment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, appt := range a.byID {
		if key != "" && appt.IdempotencyKey == key {
			cp := appt
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (a *Appointments) List(_ context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := []models.Appointment{}
	for _, id := range a.order {
		appt := a.byID[id]
		if f.DoctorID != "" && appt.DoctorID != f.DoctorID {
			continue
		}
		if f.PatientID != "" && appt.PatientID != f.PatientID {
			continue
		}
		if f.Date != "" && appt.Date != f.Date {
			continue
		}
		if f.Status != "" && appt.Status != f.Status {
			continue
		}
		out = append(out, appt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Heure < out[j].Heure
	})
	return out, nil
}

func (a *Appointments) TakenTimes(_ context.Context, doctorID, date string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var times []string
	for _, appt := range a.byID {
		if appt.DoctorID == doctorID && appt.Date == date && appt.Status != models.StatusCancelled {
			times = append(times, appt.Heure)
		}
	}
	return times, nil
}

func (a *Appointments) TransitionStatus(
	_ context.Context,
	id string,
	from []models.AppointmentStatus,
	next models.AppointmentStatus,
	extra map[string]interface{},
) (*models.Appointment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	appt, ok := a.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	allowed := false
	for _, s := range from {
		if appt.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, database.ErrNotFound
	}
	appt.Status = next
	appt.UpdatedAt = time.Now().UTC()
	if v, ok := extra["payment_method"].(models.PaymentMethod); ok {
		appt.PaymentMethod = v
	}
	if v, ok := extra["payment_reference"].(string); ok {
		appt.PaymentReference = v
	}
	a.byID[id] = appt
	return &appt, nil
}

func (a *Appointments) DashboardStats(_ context.Context, doctorID, today, month string) (*models.DashboardStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	stats := &models.DashboardStats{}
	for _, appt := range a.byID {
		if appt.DoctorID != doctorID {
			continue
		}
		stats.TotalAppointments++
		if appt.Date == today {
			stats.TodayAppointments++
		}
		switch appt.Status {
		case models.StatusConfirmed:
			stats.ConfirmedAppointments++
		case models.StatusPending:
			stats.PendingAppointments++
		}
		if strings.HasPrefix(appt.Date, month) {
			stats.MonthlyAppointments++
			if appt.Status == models.StatusConfirmed || appt.Status == models.StatusCompleted {
				stats.MonthlyRevenue += appt.Tarif
			}
		}
	}
	return stats, nil
}

func (a *Appointments) PatientRoster(_ context.Context, doctorID string) ([]models.PatientSummary, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	byPatient := map[string]*models.PatientSummary{}
	for _, id := range a.order {
		appt := a.byID[id]
		if appt.DoctorID != doctorID {
			continue
		}
		row, ok := byPatient[appt.PatientID]
		if !ok {
			row = &models.PatientSummary{ID: appt.PatientID}
			byPatient[appt.PatientID] = row
		}
		row.AppointmentCount++
		if row.LastAppointment == nil || appt.Date >= *row.LastAppointment {
			d := appt.Date
			row.LastAppointment = &d
			row.Nom = appt.PatientName
			row.Telephone = appt.PatientPhone
		}
	}
	out := make([]models.PatientSummary, 0, len(byPatient))
	for _, row := range byPatient {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].LastAppointment > *out[j].LastAppointment })
	return out, nil
}

func (a *Appointments) Count(_ context.Context, date string) (int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if date == "" {
		return int64(len(a.byID)), nil
	}
	var n int64
	for _, appt := range a.byID {
		if appt.Date == date {
			n++
		}
	}
	return n, nil
}
