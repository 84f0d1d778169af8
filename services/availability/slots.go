package availability

import (
	"context"
	"fmt"
	"time"

	"dokta/models"
	"dokta/services"

	"go.uber.org/zap"
)

// ValidateDate checks the "YYYY-MM-DD" wire layout.
func ValidateDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return services.NewValidationError("date", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	return nil
}

func (s *DefaultAvailabilityService) DaySlots(ctx context.Context, doctorID, date string) ([]models.TimeSlot, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	if _, err := s.Doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	overrides, err := s.Availability.GetByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	taken, err := s.Appointments.TakenTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	return MergeDay(overrides, taken), nil
}

// MergeDay flags each catalog time: closed by an override or held by an
// active appointment means unavailable, anything else is open.
func MergeDay(overrides []models.AvailabilityEntry, taken []string) []models.TimeSlot {
	closed := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		if !o.Disponible {
			closed[o.Heure] = true
		}
	}
	busy := make(map[string]bool, len(taken))
	for _, t := range taken {
		busy[t] = true
	}

	slots := make([]models.TimeSlot, 0, len(models.SlotCatalog))
	for _, h := range models.SlotCatalog {
		slots = append(slots, models.TimeSlot{
			Heure:      h,
			Disponible: !closed[h] && !busy[h],
		})
	}
	return slots
}

func (s *DefaultAvailabilityService) IsBookable(ctx context.Context, doctorID, date, heure string) (bool, error) {
	if !models.InCatalog(heure) {
		return false, services.NewValidationError("heure", fmt.Sprintf("%q is not a bookable time", heure))
	}
	slots, err := s.DaySlots(ctx, doctorID, date)
	if err != nil {
		return false, err
	}
	for _, sl := range slots {
		if sl.Heure == heure {
			return sl.Disponible, nil
		}
	}
	return false, nil
}

func (s *DefaultAvailabilityService) SetAvailability(ctx context.Context, doctorID string, entries []models.AvailabilityEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, services.NewValidationError("slots", "at least one slot is required")
	}
	for _, e := range entries {
		if err := ValidateDate(e.Date); err != nil {
			return 0, err
		}
		if !models.InCatalog(e.Heure) {
			return 0, services.NewValidationError("heure", fmt.Sprintf("%q is not a catalog time", e.Heure))
		}
	}
	if _, err := s.Doctors.GetByID(ctx, doctorID); err != nil {
		return 0, err
	}

	n, err := s.Availability.Upsert(ctx, doctorID, entries)
	if err != nil {
		return 0, err
	}
	s.Logger.Info("availability updated", zap.String("doctorID", doctorID), zap.Int("entries", len(entries)))
	return n, nil
}
