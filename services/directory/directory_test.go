package directory

import (
	"context"
	"testing"

	memoryRepo "dokta/database/repository/memory"
	"dokta/models"
	"dokta/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *DefaultDirectoryService {
	t.Helper()
	svc := NewDefaultDirectoryService(memoryRepo.NewDoctors(), nil, nil)
	n, err := svc.SeedDemoDoctors(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return svc
}

func TestSeedIsOneShot(t *testing.T) {
	svc := seeded(t)
	n, err := svc.SeedDemoDoctors(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListDoctorsBySpecialty(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()

	all, err := svc.ListDoctors(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 5)

	cardio, err := svc.ListDoctors(ctx, "Cardiologie")
	require.NoError(t, err)
	require.Len(t, cardio, 1)
	assert.Equal(t, "Dr. Jean Mbarga", cardio[0].Nom)

	_, err = svc.ListDoctors(ctx, "Astrologie")
	var ve *services.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSearchMergesDoctorsAndSpecialties(t *testing.T) {
	svc := seeded(t)

	results, err := svc.Search(context.Background(), "cardio")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.SearchDoctor, results[0].Kind)
	assert.Equal(t, "25000 FCFA • 12 ans", results[0].Metadata)
	assert.Equal(t, models.SearchSpecialty, results[1].Kind)
	assert.Equal(t, "Cardiologie", results[1].ID)

	empty, err := svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListSpecialtiesWithoutCache(t *testing.T) {
	svc := NewDefaultDirectoryService(memoryRepo.NewDoctors(), nil, nil)
	specs, err := svc.ListSpecialties(context.Background())
	require.NoError(t, err)
	assert.Len(t, specs, len(models.Specialties))
	assert.Equal(t, models.Specialty{Value: "Généraliste", Label: "Généraliste"}, specs[0])
}

func TestUpdateDoctorProfileNormalizesPhone(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()
	docs, err := svc.ListDoctors(ctx, "Pédiatrie")
	require.NoError(t, err)

	tel := "699 88 77 66"
	doc, err := svc.UpdateDoctorProfile(ctx, docs[0].ID, models.DoctorProfileUpdate{Telephone: &tel})
	require.NoError(t, err)
	assert.Equal(t, "+237699887766", doc.Telephone)
}
