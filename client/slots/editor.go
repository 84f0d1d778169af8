package slots

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrBusy is returned when a save is already in flight.
	ErrBusy = errors.New("slots: a save is already in progress")
	// ErrStale is returned when a newer Load superseded this one.
	ErrStale = errors.New("slots: result superseded by a newer request")
	// ErrNoDay is returned by edits before anything was loaded.
	ErrNoDay = errors.New("slots: no day loaded")
)

// Editor holds the day being edited for one doctor. Saves are not re-entrant
// and results of superseded loads are dropped.
type Editor struct {
	m        *Manager
	doctorID string

	mu         sync.Mutex
	day        *Day
	generation uint64
	saving     atomic.Bool
}

func NewEditor(m *Manager, doctorID string) *Editor {
	return &Editor{m: m, doctorID: doctorID}
}

// Day returns a copy of the current day, or nil.
func (e *Editor) Day() *Day {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.day == nil {
		return nil
	}
	return e.day.Clone()
}

// Load fetches date and makes it current unless another Load started meanwhile.
// A fallback day is installed and returned along with the fetch error.
func (e *Editor) Load(ctx context.Context, date string) (*Day, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	day, err := e.m.Fetch(ctx, e.doctorID, date)
	if day == nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return nil, ErrStale
	}
	e.day = day
	return day.Clone(), err
}

func (e *Editor) edit(fn func(*Day) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.day == nil {
		return ErrNoDay
	}
	return fn(e.day)
}

func (e *Editor) Toggle(heure string) error {
	return e.edit(func(d *Day) error { return d.Toggle(heure) })
}

func (e *Editor) SelectAll(available bool) error {
	return e.edit(func(d *Day) error { d.SelectAll(available); return nil })
}

func (e *Editor) ApplyPreset(p Preset) error {
	return e.edit(func(d *Day) error { return d.ApplyPreset(p) })
}

func (e *Editor) guard(fn func(*Day) error) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.saving.Store(false)

	day := e.Day()
	if day == nil {
		return ErrNoDay
	}
	return fn(day)
}

// Save stores the current day.
func (e *Editor) Save(ctx context.Context) error {
	return e.guard(func(d *Day) error {
		return e.m.Save(ctx, e.doctorID, d.Date, d.Slots)
	})
}

// ApplyToWeek stores the current day's pattern for its whole week.
func (e *Editor) ApplyToWeek(ctx context.Context) error {
	return e.guard(func(d *Day) error {
		return e.m.ApplyToWeek(ctx, e.doctorID, d.Date, d.Slots)
	})
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool { return e.saving.Load() }
