package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dokta/client"
	"dokta/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	calls      []string
	lastBody   map[string]any
	meName     string
	revoked    []string
	logoutCode int
}

func (f *fakeBackend) revocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.revoked...)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.lastBody = nil
	_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
	switch r.URL.Path {
	case "/api/auth/login":
		if f.lastBody["mot_de_passe"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Numéro de téléphone ou mot de passe incorrect"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","user_data":{"id":"u1","nom":"Awa","telephone":"+237690123456","type":"patient"}}`))
	case "/api/auth/register":
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Ce numéro est déjà utilisé","detail":"phoneTaken"}`))
	case "/api/auth/profile":
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.meName, _ = f.lastBody["nom"].(string)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	case "/api/auth/logout":
		f.revoked = append(f.revoked, r.Header.Get("Authorization"))
		if f.logoutCode != 0 {
			w.WriteHeader(f.logoutCode)
			return
		}
		_, _ = w.Write([]byte(`{"message":"Déconnexion réussie"}`))
	case "/api/auth/me":
		_, _ = w.Write([]byte(`{"id":"u1","nom":"` + f.meName + `","telephone":"+237690123456","type":"patient"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newStore(t *testing.T, kv KeyValueStore) (*Store, *fakeBackend) {
	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	api := client.New(srv.URL)
	store := New(api, kv, nil)
	api.Tokens = store
	return store, fb
}

func TestLoginPersistsAndPublishes(t *testing.T) {
	kv := NewMemoryStore()
	store, fb := newStore(t, kv)

	var seen []Session
	unsubscribe := store.Subscribe(func(s Session) { seen = append(seen, s) })

	u, err := store.Login(context.Background(), "690 12 34 56", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "+237690123456", fb.lastBody["telephone"])
	assert.Equal(t, "tok-1", store.Token())

	tok, ok, _ := kv.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Authenticated())

	unsubscribe()
	store.Logout(context.Background())
	assert.Equal(t, []string{"Bearer tok-1"}, fb.revocations())
	assert.Len(t, seen, 1)
	assert.False(t, store.Current().Authenticated())
	_, ok, _ = kv.Get(KeyUser)
	assert.False(t, ok)
}

func TestLoginRejectsBadPhoneWithoutNetwork(t *testing.T) {
	store, fb := newStore(t, NewMemoryStore())
	_, err := store.Login(context.Background(), "12345", "secret1")
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "telephone", ve.Field)
	assert.Empty(t, fb.calls)
}

func TestLoginWrongPassword(t *testing.T) {
	store, _ := newStore(t, NewMemoryStore())
	_, err := store.Login(context.Background(), "690123456", "nope")
	var ae *client.AuthError
	require.ErrorAs(t, err, &ae)
	assert.False(t, store.Current().Authenticated())
}

func TestRegister(t *testing.T) {
	store, fb := newStore(t, NewMemoryStore())

	_, err := store.Register(context.Background(), models.RegisterRequest{
		Nom: "Dr. X", Telephone: "691234567", MotDePasse: "secret1",
		TypeUtilisateur: models.UserTypeDoctor, Specialite: "Cardiologie", Experience: "5 ans", Tarif: 500, Diplomes: "MD",
	})
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tarif", ve.Field)

	_, err = store.Register(context.Background(), models.RegisterRequest{
		Nom: "Dr. X", Telephone: "691234567", MotDePasse: "secret1",
		TypeUtilisateur: models.UserTypeDoctor, Specialite: "Cardiologie", Experience: "5 ans", Tarif: 5000,
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "diplomes", ve.Field)
	assert.Empty(t, fb.calls)

	_, err = store.Register(context.Background(), models.RegisterRequest{
		Nom: "Awa", Telephone: "690123456", MotDePasse: "secret1",
		TypeUtilisateur: models.UserTypePatient, Age: 30, Ville: "Douala",
	})
	var ae *client.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Ce numéro est déjà utilisé", client.UserMessage(err))
}

func TestUpdateProfile(t *testing.T) {
	store, fb := newStore(t, NewMemoryStore())
	name := "Awa Bello"

	_, err := store.UpdateProfile(context.Background(), models.ProfileUpdate{Nom: &name})
	var ae *client.AuthError
	require.ErrorAs(t, err, &ae)

	_, err = store.Login(context.Background(), "690123456", "secret1")
	require.NoError(t, err)
	u, err := store.UpdateProfile(context.Background(), models.ProfileUpdate{Nom: &name})
	require.NoError(t, err)
	assert.Equal(t, "Awa Bello", u.Nom)
	assert.Equal(t, "Awa Bello", store.Current().User.Nom)
	assert.Equal(t, []string{"POST /api/auth/login", "PUT /api/auth/profile", "GET /api/auth/me"}, fb.calls)
}

func TestRestore(t *testing.T) {
	kv := NewMemoryStore()
	store, _ := newStore(t, kv)
	assert.False(t, store.Restore().Authenticated())

	require.NoError(t, kv.Set(KeyToken, "tok-9"))
	require.NoError(t, kv.Set(KeyUser, `{"id":"u9","nom":"Eto"}`))
	sess := store.Restore()
	require.True(t, sess.Authenticated())
	assert.Equal(t, "u9", sess.User.ID)

	require.NoError(t, kv.Set(KeyUser, `{not json`))
	assert.False(t, store.Restore().Authenticated())
	_, ok, _ := kv.Get(KeyToken)
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStore(path)

	_, ok, err := fs.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Set(KeyToken, "tok"))
	require.NoError(t, fs.Set(KeyUser, `{"id":"u1"}`))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, ok, err := NewFileStore(path).Get(KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"u1"}`, v)

	require.NoError(t, fs.Delete(KeyToken, KeyUser))
	_, ok, _ = fs.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, _, err = fs.Get(KeyToken)
	assert.Error(t, err)
}

func TestLogoutSurvivesFailedRevocation(t *testing.T) {
	kv := NewMemoryStore()
	store, fb := newStore(t, kv)
	fb.logoutCode = http.StatusInternalServerError

	_, err := store.Login(context.Background(), "690123456", "secret1")
	require.NoError(t, err)

	store.Logout(context.Background())
	assert.Len(t, fb.revocations(), 1)
	assert.False(t, store.Current().Authenticated())
	_, ok, _ := kv.Get(KeyToken)
	assert.False(t, ok)

	// Signed out: nothing to revoke.
	store.Logout(context.Background())
	assert.Len(t, fb.revocations(), 1)
}
