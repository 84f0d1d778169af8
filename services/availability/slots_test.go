package availability

import (
	"context"
	"testing"

	memoryRepo "dokta/database/repository/memory"
	"dokta/models"
	"dokta/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*DefaultAvailabilityService, *memoryRepo.Appointments) {
	t.Helper()
	doctors := memoryRepo.NewDoctors(models.Doctor{ID: "doc-1", Nom: "Dr. Marie Ngono", Tarif: 15000, Disponible: true})
	appts := memoryRepo.NewAppointments()
	return NewDefaultAvailabilityService(doctors, memoryRepo.NewAvailability(), appts, nil), appts
}

func TestDaySlotsCoversCatalog(t *testing.T) {
	svc, _ := setup(t)
	slots, err := svc.DaySlots(context.Background(), "doc-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 13)
	for _, s := range slots {
		assert.True(t, s.Disponible)
	}
}

func TestDaySlotsMergesOverridesAndBookings(t *testing.T) {
	svc, appts := setup(t)
	ctx := context.Background()

	_, err := svc.SetAvailability(ctx, "doc-1", []models.AvailabilityEntry{
		{Date: "2025-03-10", Heure: "09:00", Disponible: false},
		{Date: "2025-03-10", Heure: "09:30", Disponible: true},
	})
	require.NoError(t, err)
	require.NoError(t, appts.Create(ctx, &models.Appointment{DoctorID: "doc-1", Date: "2025-03-10", Heure: "10:00", Status: models.StatusPending}))
	require.NoError(t, appts.Create(ctx, &models.Appointment{DoctorID: "doc-1", Date: "2025-03-10", Heure: "10:30", Status: models.StatusCancelled}))

	slots, err := svc.DaySlots(ctx, "doc-1", "2025-03-10")
	require.NoError(t, err)

	byTime := map[string]bool{}
	for _, s := range slots {
		byTime[s.Heure] = s.Disponible
	}
	assert.False(t, byTime["09:00"])
	assert.True(t, byTime["09:30"])
	assert.False(t, byTime["10:00"])
	assert.True(t, byTime["10:30"])

	ok, err := svc.IsBookable(ctx, "doc-1", "2025-03-10", "10:00")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetAvailabilityRejectsBadInput(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	var ve *services.ValidationError

	_, err := svc.SetAvailability(ctx, "doc-1", []models.AvailabilityEntry{{Date: "10/03/2025", Heure: "09:00"}})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SetAvailability(ctx, "doc-1", []models.AvailabilityEntry{{Date: "2025-03-10", Heure: "12:00"}})
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SetAvailability(ctx, "missing", []models.AvailabilityEntry{{Date: "2025-03-10", Heure: "09:00"}})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
