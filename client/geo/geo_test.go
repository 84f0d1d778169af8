package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dokta/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	granted bool
	posErr  error
}

func (f fakeLocator) RequestPermission(context.Context) (bool, error) { return f.granted, nil }
func (f fakeLocator) CurrentPosition(context.Context) (float64, float64, error) {
	return 3.848, 11.5021, f.posErr
}

type fakeGeocoder struct {
	addr *Address
	err  error
}

func (f fakeGeocoder) Reverse(context.Context, float64, float64) (*Address, error) { return f.addr, f.err }

func TestCalculateDistance(t *testing.T) {
	assert.Equal(t, 2.5, CalculateDistance(3.8480, 11.5021, 3.8680, 11.5121))
	assert.Equal(t, 193.7, CalculateDistance(3.848, 11.5021, 4.0511, 9.7679))
	assert.Equal(t, 0.0, CalculateDistance(3.848, 11.5021, 3.848, 11.5021))
}

func TestFormatAddress(t *testing.T) {
	assert.Equal(t, "Avenue Kennedy, Yaoundé", FormatAddress(Location{Address: "Avenue Kennedy", City: "Yaoundé"}))
	assert.Equal(t, "Bonapriso", FormatAddress(Location{Address: "  ", City: "Bonapriso"}))
	assert.Equal(t, "3.8480, 11.5021", FormatAddress(Location{Latitude: 3.848, Longitude: 11.5021}))
}

func TestMapsURL(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=3.868,11.5121", MapsURL(nil, 3.868, 11.5121))
	assert.Equal(t, "https://www.google.com/maps/dir/3.848,11.5021/3.868,11.5121",
		MapsURL(&Location{Latitude: 3.848, Longitude: 11.5021}, 3.868, 11.5121))
}

func TestGetCurrentLocation(t *testing.T) {
	h := New(fakeLocator{granted: true}, WithGeocoder(fakeGeocoder{addr: &Address{Street: "Rue 1.750", City: "Yaoundé", Country: "Cameroun"}}))
	assert.Nil(t, h.Current())

	loc := h.GetCurrentLocation(context.Background())
	require.NotNil(t, loc)
	assert.Equal(t, "Yaoundé", loc.City)
	assert.Equal(t, "Rue 1.750, Yaoundé", FormatAddress(*loc))
	assert.Contains(t, h.MapsURL(3.868, 11.5121), "/maps/dir/3.848,11.5021/")

	h = New(fakeLocator{granted: true}, WithGeocoder(fakeGeocoder{err: errors.New("quota")}))
	loc = h.GetCurrentLocation(context.Background())
	require.NotNil(t, loc)
	assert.Empty(t, loc.Address)
}

func TestGetCurrentLocationAlertsOnce(t *testing.T) {
	var alerts []string
	h := New(fakeLocator{granted: false}, WithAlert(func(m string) { alerts = append(alerts, m) }))

	assert.Nil(t, h.GetCurrentLocation(context.Background()))
	assert.Nil(t, h.GetCurrentLocation(context.Background()))
	assert.Equal(t, []string{AlertPermissionDenied}, alerts)

	alerts = nil
	h = New(fakeLocator{granted: true, posErr: errors.New("gps off")}, WithAlert(func(m string) { alerts = append(alerts, m) }))
	assert.Nil(t, h.GetCurrentLocation(context.Background()))
	assert.Equal(t, []string{AlertUnavailable}, alerts)
}

const geocodeBody = `{"status":"OK","results":[{"address_components":[
	{"long_name":"12","types":["street_number"]},
	{"long_name":"Rue Joss","types":["route"]},
	{"long_name":"Wouri","types":["administrative_area_level_2","political"]},
	{"long_name":"Cameroun","types":["country","political"]}]}]}`

func TestGoogleGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "4.051100,9.767900", r.URL.Query().Get("latlng"))
		_, _ = w.Write([]byte(geocodeBody))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("secret")
	g.BaseURL = srv.URL
	addr, err := g.Reverse(context.Background(), 4.0511, 9.7679)
	require.NoError(t, err)
	assert.Equal(t, &Address{Street: "Rue Joss 12", City: "Wouri", Country: "Cameroun"}, addr)
}

func TestGoogleGeocoderDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","results":[]}`))
	}))
	defer srv.Close()

	g := NewGoogleGeocoder("bad")
	g.BaseURL = srv.URL
	_, err := g.Reverse(context.Background(), 4.0511, 9.7679)
	assert.Error(t, err)
}

func TestProxyGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/geocode/reverse", r.URL.Path)
		_, _ = w.Write([]byte(geocodeBody))
	}))
	defer srv.Close()

	addr, err := ProxyGeocoder{API: client.New(srv.URL)}.Reverse(context.Background(), 4.0511, 9.7679)
	require.NoError(t, err)
	assert.Equal(t, "Wouri", addr.City)
}
