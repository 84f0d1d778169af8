// Package geo locates the user and measures distances to practices.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrPermissionDenied is returned by a Locator when location access is refused.
var ErrPermissionDenied = errors.New("geo: location permission denied")

// Location is a position with an optional resolved address.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// Locator reads the device position.
type Locator interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (lat, lon float64, err error)
}

// Address is a reverse-geocoding result.
type Address struct {
	Street  string
	City    string
	Country string
}

// Geocoder resolves coordinates to an address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

// Alert messages passed to the alert callback.
const (
	AlertPermissionDenied = "Les permissions de localisation sont nécessaires pour trouver les médecins près de vous."
	AlertUnavailable      = "Impossible de récupérer votre position. Vérifiez que le GPS est activé."
)

// Helper remembers the last known location.
type Helper struct {
	locator  Locator
	geocoder Geocoder
	alert    func(string)
	logger   *zap.Logger

	mu      sync.Mutex
	current *Location
	alerted bool
}

// Option configures a Helper.
type Option func(*Helper)

// WithGeocoder enables reverse geocoding.
func WithGeocoder(g Geocoder) Option { return func(h *Helper) { h.geocoder = g } }

// WithAlert sets the callback fired on the first location failure.
func WithAlert(f func(string)) Option { return func(h *Helper) { h.alert = f } }

func WithLogger(l *zap.Logger) Option { return func(h *Helper) { h.logger = l } }

func New(locator Locator, opts ...Option) *Helper {
	h := &Helper{locator: locator, logger: zap.NewNop(), alert: func(string) {}}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Helper) fail(msg string) {
	h.mu.Lock()
	first := !h.alerted
	h.alerted = true
	h.mu.Unlock()
	if first {
		h.alert(msg)
	}
}

// GetCurrentLocation returns the device position, or nil when it cannot be
// read. Geocoding failures only leave the address empty.
func (h *Helper) GetCurrentLocation(ctx context.Context) *Location {
	granted, err := h.locator.RequestPermission(ctx)
	if err != nil || !granted {
		h.logger.Info("geo: location permission not granted", zap.Error(err))
		h.fail(AlertPermissionDenied)
		return nil
	}
	lat, lon, err := h.locator.CurrentPosition(ctx)
	if err != nil {
		h.logger.Warn("geo: position unavailable", zap.Error(err))
		h.fail(AlertUnavailable)
		return nil
	}

	loc := &Location{Latitude: lat, Longitude: lon}
	if h.geocoder != nil {
		addr, err := h.geocoder.Reverse(ctx, lat, lon)
		if err != nil {
			h.logger.Warn("geo: reverse geocoding failed", zap.Error(err))
		} else if addr != nil {
			loc.Address, loc.City, loc.Country = addr.Street, addr.City, addr.Country
		}
	}

	h.mu.Lock()
	h.current = loc
	h.mu.Unlock()
	return loc
}

// Current returns the last location read, or nil.
func (h *Helper) Current() *Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	l := *h.current
	return &l
}

// MapsURL links to directions from the last known location, or to the
// destination alone when there is none.
func (h *Helper) MapsURL(destLat, destLon float64) string {
	return MapsURL(h.Current(), destLat, destLon)
}

// FormatAddress renders "street, city" or the coordinates when no address is known.
func FormatAddress(loc Location) string {
	var parts []string
	if s := strings.TrimSpace(loc.Address); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(loc.City); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	}
	return strings.Join(parts, ", ")
}

const earthRadiusKm = 6371

// CalculateDistance is the haversine distance in km, rounded to one decimal.
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*10) / 10
}

func deg2rad(deg float64) float64 { return deg * math.Pi / 180 }

// MapsURL links to Google Maps directions from origin, or to a search for
// the destination when origin is nil.
func MapsURL(origin *Location, destLat, destLon float64) string {
	if origin != nil {
		return fmt.Sprintf("https://www.google.com/maps/dir/%v,%v/%v,%v", origin.Latitude, origin.Longitude, destLat, destLon)
	}
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", destLat, destLon)
}
