package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"dokta/client"
	"dokta/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doctorsJSON = `[
 {"id":"d1","nom":"Dr. Marie Ngono","specialite":"Généraliste","experience":"8 ans","tarif":15000,"disponible":true},
 {"id":"d2","nom":"Dr. Jean Mbarga","specialite":"Cardiologie","experience":"12 ans","tarif":25000,"disponible":true}
]`

const specialtiesJSON = `[{"value":"Cardiologie","label":"Cardiologie"},{"value":"Pédiatrie","label":"Pédiatrie"}]`

func newBackend(t *testing.T, specialtyHits *int32) *client.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/doctors":
			_, _ = w.Write([]byte(doctorsJSON))
		case "/api/doctors/d1":
			_, _ = w.Write([]byte(`{"id":"d1","nom":"Dr. Marie Ngono","tarif":15000}`))
		case "/api/specialties":
			if specialtyHits != nil && atomic.AddInt32(specialtyHits, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(specialtiesJSON))
		case "/api/search":
			assert.Equal(t, "card", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`[{"type":"doctor","id":"d2","title":"Dr. Jean Mbarga","subtitle":"Cardiologie"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Médecin non trouvé"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

func TestListDoctorsTextFilter(t *testing.T) {
	d := New(newBackend(t, nil))
	docs, err := d.ListDoctors(context.Background(), Filter{Text: "MBARGA"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d2", docs[0].ID)

	docs, err = d.ListDoctors(context.Background(), Filter{Text: "généra"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestGetDoctorNotFound(t *testing.T) {
	d := New(newBackend(t, nil))
	doc, err := d.GetDoctor(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 15000, doc.Tarif)

	_, err = d.GetDoctor(context.Background(), "zz")
	var nf *client.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestListSpecialtiesCachesSuccessOnly(t *testing.T) {
	var hits int32
	d := New(newBackend(t, &hits))

	_, err := d.ListSpecialties(context.Background())
	require.Error(t, err)

	specs, err := d.ListSpecialties(context.Background())
	require.NoError(t, err)
	assert.Len(t, specs, 2)
	_, err = d.ListSpecialties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

type dependents []models.Dependent

func (d dependents) Patients(context.Context) ([]models.Dependent, error) { return d, nil }

type brokenPatients struct{}

func (brokenPatients) Patients(context.Context) ([]models.Dependent, error) {
	return nil, errors.New("offline")
}

func TestSearchMergesKinds(t *testing.T) {
	d := New(newBackend(t, nil), WithPatients(dependents{
		{ID: "p1", Nom: "Cardine Bello", Age: 9, Lien: "Fille"},
		{ID: "p2", Nom: "Paul", Age: 40, Lien: "Frère"},
	}))

	results, err := d.Search(context.Background(), "card")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, models.SearchDoctor, results[0].Kind)
	assert.Equal(t, "25000 FCFA • 12 ans", results[0].Metadata)
	assert.Equal(t, models.SearchSpecialty, results[1].Kind)
	assert.Equal(t, models.SearchPatient, results[2].Kind)
	assert.Equal(t, "p1", results[2].ID)

	empty, err := d.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSearchIgnoresPatientSourceFailure(t *testing.T) {
	d := New(newBackend(t, nil), WithPatients(brokenPatients{}))
	results, err := d.Search(context.Background(), "card")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRemoteSearch(t *testing.T) {
	d := New(newBackend(t, nil))
	results, err := d.RemoteSearch(context.Background(), "card")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.SearchDoctor, results[0].Kind)
}
