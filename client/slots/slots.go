// Package slots fetches and edits a doctor's per-day availability grid.
package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"time"

	"dokta/client"
	"dokta/models"

	"go.uber.org/zap"
)

// Source tells where a Day's availability came from.
type Source string

const (
	SourceBackend  Source = "backend"
	SourceFallback Source = "fallback"
)

// Preset is a named whole-day availability pattern.
type Preset string

const (
	PresetFullDay       Preset = "full-day"
	PresetMorningOnly   Preset = "morning-only"
	PresetAfternoonOnly Preset = "afternoon-only"
)

// Day is one doctor's slot list for one date.
type Day struct {
	DoctorID string
	Date     string
	Slots    []models.TimeSlot
	Source   Source
}

// Fallback reports whether the slots were generated locally and must be shown as defaults.
func (d *Day) Fallback() bool { return d.Source == SourceFallback }

// Clone returns a deep copy.
func (d *Day) Clone() *Day {
	c := *d
	c.Slots = append([]models.TimeSlot(nil), d.Slots...)
	return &c
}

// Toggle flips one time. Unknown times are rejected.
func (d *Day) Toggle(heure string) error {
	for i := range d.Slots {
		if d.Slots[i].Heure == heure {
			d.Slots[i].Disponible = !d.Slots[i].Disponible
			return nil
		}
	}
	return &client.ValidationError{Field: "heure", Message: fmt.Sprintf("créneau %s inconnu", heure)}
}

// SelectAll sets every slot to available.
func (d *Day) SelectAll(available bool) {
	for i := range d.Slots {
		d.Slots[i].Disponible = available
	}
}

// ApplyPreset sets availability from the time of day. Applying it twice is a no-op.
func (d *Day) ApplyPreset(p Preset) error {
	for i := range d.Slots {
		morning := models.IsMorning(d.Slots[i].Heure)
		switch p {
		case PresetFullDay:
			d.Slots[i].Disponible = true
		case PresetMorningOnly:
			d.Slots[i].Disponible = morning
		case PresetAfternoonOnly:
			d.Slots[i].Disponible = !morning
		default:
			return &client.ValidationError{Field: "preset", Message: fmt.Sprintf("préréglage %q inconnu", p)}
		}
	}
	return nil
}

// Available returns the times marked available, in catalog order.
func (d *Day) Available() []string {
	var out []string
	for _, s := range d.Slots {
		if s.Disponible {
			out = append(out, s.Heure)
		}
	}
	return out
}

// IsAvailable reports whether heure is in the list and available.
func (d *Day) IsAvailable(heure string) bool {
	for _, s := range d.Slots {
		if s.Heure == heure {
			return s.Disponible
		}
	}
	return false
}

// Manager talks to the availability endpoints.
type Manager struct {
	api    *client.Client
	rand   func() float64
	logger *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRand replaces the random source used for fallback days.
func WithRand(f func() float64) Option { return func(m *Manager) { m.rand = f } }

func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.logger = l } }

func New(api *client.Client, opts ...Option) *Manager {
	m := &Manager{api: api, rand: rand.Float64, logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ValidateDate checks the YYYY-MM-DD layout.
func ValidateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return &client.ValidationError{Field: "date", Message: "date invalide, format attendu AAAA-MM-JJ"}
	}
	return nil
}

// FallbackDay covers the whole catalog with random availability.
func FallbackDay(doctorID, date string, rnd func() float64) *Day {
	slots := make([]models.TimeSlot, len(models.SlotCatalog))
	for i, h := range models.SlotCatalog {
		slots[i] = models.TimeSlot{Heure: h, Disponible: rnd() > 0.3}
	}
	return &Day{DoctorID: doctorID, Date: date, Slots: slots, Source: SourceFallback}
}

// Fetch loads a day from the backend. When the backend cannot answer it returns
// a fallback day together with the error that caused it; callers must surface
// Day.Fallback to the user.
func (m *Manager) Fetch(ctx context.Context, doctorID, date string) (*Day, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	var slots []models.TimeSlot
	err := m.api.Get(ctx, "/api/doctors/"+client.PathEscape(doctorID)+"/available-slots", url.Values{"date": {date}}, &slots)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		m.logger.Warn("slots: using fallback slots", zap.String("doctorID", doctorID), zap.String("date", date), zap.Error(err))
		return FallbackDay(doctorID, date, m.rand), err
	}
	return &Day{DoctorID: doctorID, Date: date, Slots: slots, Source: SourceBackend}, nil
}

// Entries expands one day's slots into wire tuples.
func Entries(date string, slots []models.TimeSlot) []models.AvailabilityEntry {
	out := make([]models.AvailabilityEntry, len(slots))
	for i, s := range slots {
		out[i] = models.AvailabilityEntry{Date: date, Heure: s.Heure, Disponible: s.Disponible}
	}
	return out
}

// WeekTuples replicates slots over the Monday-start week containing anchor:
// exactly 7 × len(slots) tuples, the same pattern each day.
func WeekTuples(anchor string, slots []models.TimeSlot) ([]models.AvailabilityEntry, error) {
	day, err := time.Parse(models.DateLayout, anchor)
	if err != nil {
		return nil, &client.ValidationError{Field: "date", Message: "date invalide, format attendu AAAA-MM-JJ"}
	}
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)

	out := make([]models.AvailabilityEntry, 0, 7*len(slots))
	for i := 0; i < 7; i++ {
		out = append(out, Entries(monday.AddDate(0, 0, i).Format(models.DateLayout), slots)...)
	}
	return out, nil
}

func (m *Manager) put(ctx context.Context, op, doctorID string, entries []models.AvailabilityEntry) error {
	err := m.api.Put(ctx, "/api/doctors/"+client.PathEscape(doctorID)+"/availability", entries, nil)
	if err == nil {
		return nil
	}
	var ne *client.NetworkError
	if errors.As(err, &ne) || errors.Is(err, context.Canceled) {
		return err
	}
	return &client.SaveError{Op: op, Err: err}
}

// Save stores one day. The caller's slots are not modified on failure.
func (m *Manager) Save(ctx context.Context, doctorID, date string, slots []models.TimeSlot) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	return m.put(ctx, "save availability", doctorID, Entries(date, slots))
}

// ApplyToWeek stores the same pattern for every day of anchor's week in one request.
// Appointments already booked in that week are not checked.
func (m *Manager) ApplyToWeek(ctx context.Context, doctorID, anchor string, slots []models.TimeSlot) error {
	entries, err := WeekTuples(anchor, slots)
	if err != nil {
		return err
	}
	return m.put(ctx, "apply to week", doctorID, entries)
}
