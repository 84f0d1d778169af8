package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	memoryRepo "dokta/database/repository/memory"
	"dokta/models"
	"dokta/services/directory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapsRouter(t *testing.T, google http.HandlerFunc, key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	doctors := memoryRepo.NewDoctors(
		models.Doctor{ID: "doc-1", Nom: "Dr. Marie Ngono", Disponible: true, Latitude: 4.0511, Longitude: 9.7679},
		models.Doctor{ID: "doc-2", Nom: "Dr. Jean Mbarga", Disponible: true},
	)
	srv := httptest.NewServer(google)
	t.Cleanup(srv.Close)

	h := NewMapsHandler(directory.NewDefaultDirectoryService(doctors, nil, nil), key)
	h.BaseURL = srv.URL
	r := gin.New()
	r.GET("/doctors/:id/directions", h.Directions)
	r.GET("/geocode/reverse", h.ReverseGeocode)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDirections(t *testing.T) {
	var gotQuery string
	r := newMapsRouter(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/directions/json", req.URL.Path)
		gotQuery = req.URL.RawQuery
		_, _ = w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":"abc"},"legs":[{"distance":{"text":"3 km"},"duration":{"text":"9 min"}}]}]}`))
	}, "key")

	w := get(r, "/doctors/doc-1/directions?originLat=4.05&originLng=9.70")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"polyline":"abc"`)
	assert.Contains(t, w.Body.String(), `"distance":"3 km"`)
	assert.Contains(t, gotQuery, "key=key")

	assert.Equal(t, http.StatusBadRequest, get(r, "/doctors/doc-1/directions?originLat=abc&originLng=9").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/doctors/missing/directions?originLat=4&originLng=9").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/doctors/doc-2/directions?originLat=4&originLng=9").Code)
}

func TestDirectionsWithoutKey(t *testing.T) {
	r := newMapsRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("maps api must not be called without a key")
	}, "")
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/doctors/doc-1/directions?originLat=4&originLng=9").Code)
}

func TestReverseGeocode(t *testing.T) {
	r := newMapsRouter(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/geocode/json", req.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}, "key")

	assert.Equal(t, http.StatusBadRequest, get(r, "/geocode/reverse?latitude=91&longitude=0").Code)
	assert.Equal(t, http.StatusBadGateway, get(r, "/geocode/reverse?latitude=4&longitude=9").Code)
}
