package auth

import (
	"context"
	"testing"

	memoryRepo "dokta/database/repository/memory"
	"dokta/models"
	"dokta/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*DefaultAuthService, *memoryRepo.Doctors) {
	doctors := memoryRepo.NewDoctors()
	return NewDefaultAuthService(memoryRepo.NewUsers(), doctors, nil, nil), doctors
}

func patientRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Nom:             "Awa Bello",
		Telephone:       "690 12 34 56",
		MotDePasse:      "secret1",
		TypeUtilisateur: models.UserTypePatient,
		Age:             30,
		Ville:           "Yaoundé",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, patientRequest())
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "+237690123456", resp.UserData.Telephone)
	assert.NotEmpty(t, resp.AccessToken)

	login, err := svc.Login(ctx, models.LoginRequest{Telephone: "690123456", MotDePasse: "secret1"})
	require.NoError(t, err)

	// The newer token replaces the older one.
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	u, err := svc.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserData.ID, u.ID)
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, patientRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, patientRequest())
	assert.True(t, services.IsConflict(err, services.CodePhoneTaken))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService()
	req := patientRequest()
	req.Ville = ""

	_, err := svc.Register(context.Background(), req)
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ville", ve.Field)
}

func TestDoctorRegistrationCreatesDirectoryEntry(t *testing.T) {
	svc, doctors := newService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Nom:             "Dr. Jean Mbarga",
		Telephone:       "+237691234567",
		MotDePasse:      "secret1",
		TypeUtilisateur: models.UserTypeDoctor,
		Specialite:      "Cardiologie",
		Experience:      "12 ans",
		Tarif:           25000,
	})
	require.NoError(t, err)

	doc, err := doctors.GetByID(ctx, resp.UserData.ID)
	require.NoError(t, err)
	assert.Equal(t, 25000, doc.Tarif)
	assert.True(t, doc.Disponible)

	tarif := 30000
	_, err = svc.UpdateProfile(ctx, resp.UserData.ID, models.ProfileUpdate{Tarif: &tarif})
	require.NoError(t, err)
	doc, err = doctors.GetByID(ctx, resp.UserData.ID)
	require.NoError(t, err)
	assert.Equal(t, 30000, doc.Tarif)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, patientRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Telephone: "+237690123456", MotDePasse: "nope"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	resp, err := svc.Register(ctx, patientRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.UserData.ID))
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestDependents(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	resp, err := svc.Register(ctx, patientRequest())
	require.NoError(t, err)

	deps, err := svc.Dependents(ctx, resp.UserData.ID)
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = svc.AddDependent(ctx, resp.UserData.ID, models.DependentCreate{Nom: "Léa", Age: 0, Lien: "Fille"})
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)

	dep, err := svc.AddDependent(ctx, resp.UserData.ID, models.DependentCreate{Nom: "Léa", Age: 7, Lien: "Fille"})
	require.NoError(t, err)
	assert.NotEmpty(t, dep.ID)

	deps, err = svc.Dependents(ctx, resp.UserData.ID)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "Léa", deps[0].Nom)
}

func TestCreateUserReplaysSameKey(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	req := models.UserCreate{Nom: "Awa Bello", Telephone: "690123456"}

	first, err := svc.CreateUser(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypePatient, first.Type)

	again, err := svc.CreateUser(ctx, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = svc.CreateUser(ctx, req, "key-2")
	assert.True(t, services.IsConflict(err, services.CodePhoneTaken))

	_, err = svc.CreateUser(ctx, req, "")
	assert.True(t, services.IsConflict(err, services.CodePhoneTaken))
}
