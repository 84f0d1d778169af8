package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dokta/client"

	"github.com/goccy/go-json"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

func component(res geocodeResult, kind string) string {
	for _, c := range res.AddressComponents {
		for _, t := range c.Types {
			if t == kind {
				return c.LongName
			}
		}
	}
	return ""
}

// toAddress picks street, city and country out of the first result. The
// city falls back to the second-level administrative area.
func toAddress(results []geocodeResult) *Address {
	if len(results) == 0 {
		return nil
	}
	r := results[0]
	city := component(r, "locality")
	if city == "" {
		city = component(r, "administrative_area_level_2")
	}
	return &Address{
		Street:  strings.TrimSpace(component(r, "route") + " " + component(r, "street_number")),
		City:    city,
		Country: component(r, "country"),
	}
}

// GoogleGeocoder calls the Google Geocoding API directly.
type GoogleGeocoder struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{APIKey: apiKey, BaseURL: googleGeocodeURL, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("key", g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, &client.NetworkError{Op: "reverse geocode", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &client.StatusError{Status: resp.StatusCode, Message: "geocoding api error"}
	}
	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("reverse geocode: decode: %w", err)
	}
	if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("reverse geocode: status %s", body.Status)
	}
	return toAddress(body.Results), nil
}

// ProxyGeocoder resolves through the backend so no key ships with the client.
type ProxyGeocoder struct {
	API *client.Client
}

func (p ProxyGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	var body geocodeResponse
	if err := p.API.Get(ctx, "/api/geocode/reverse", q, &body); err != nil {
		return nil, err
	}
	return toAddress(body.Results), nil
}
