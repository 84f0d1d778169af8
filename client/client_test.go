package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestDoSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "k1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "Cardiologie", r.URL.Query().Get("specialite"))
		_, _ = w.Write([]byte(`{"id":"doc-1","tarif":15000}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithTokens(staticToken("tok")))
	var out struct {
		ID    string `json:"id"`
		Tarif int    `json:"tarif"`
	}
	err := c.Do(context.Background(), Request{
		Method:  http.MethodPost,
		Path:    "/api/x",
		Query:   map[string][]string{"specialite": {"Cardiologie"}},
		Body:    map[string]string{"a": "b"},
		Headers: map[string]string{"Idempotency-Key": "k1"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", out.ID)
	assert.Equal(t, 15000, out.Tarif)
}

func TestDoStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Ce créneau n'est plus disponible","detail":"slotTaken"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).Get(context.Background(), "/api/x", nil, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, "slotTaken", se.Detail)
	assert.Equal(t, "Ce créneau n'est plus disponible", UserMessage(err))
}

func TestDoFastAPIStyleDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Médecin non trouvé"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).Get(context.Background(), "/api/doctors/x", nil, nil)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	var nf *NotFoundError
	assert.ErrorAs(t, Classify(err, "doctor", "x"), &nf)
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/api/x", nil, nil)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Contains(t, UserMessage(err), "connexion")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "numéro invalide", UserMessage(&ValidationError{Field: "telephone", Message: "numéro invalide"}))
	assert.Equal(t, "Élément introuvable.", UserMessage(&NotFoundError{Resource: "doctor", ID: "x"}))
	assert.Contains(t, UserMessage(&SaveError{Op: "save", Err: errors.New("boom")}), "conservées")
	assert.NotContains(t, UserMessage(errors.New("panic: runtime error")), "panic")
}
