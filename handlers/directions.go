package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dokta/services/directory"
	"dokta/utils"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const googleMapsAPI = "https://maps.googleapis.com/maps/api"

// MapsHandler proxies Google Maps so the API key stays on the server.
type MapsHandler struct {
	Directory directory.DirectoryService
	APIKey    string
	BaseURL   string
	Client    *http.Client
}

func NewMapsHandler(dir directory.DirectoryService, apiKey string) *MapsHandler {
	return &MapsHandler{
		Directory: dir,
		APIKey:    apiKey,
		BaseURL:   googleMapsAPI,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// directionsResponse is the subset of the Google Directions API response we use.
type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (h *MapsHandler) getJSON(c *gin.Context, endpoint string, q url.Values, out any) error {
	q.Set("key", h.APIKey)
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, h.BaseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func parseCoord(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// Directions handles GET /api/doctors/:id/directions?originLat=&originLng=.
func (h *MapsHandler) Directions(c *gin.Context) {
	originLat, okLat := parseCoord(c.Query("originLat"), 90)
	originLng, okLng := parseCoord(c.Query("originLng"), 180)
	if !okLat || !okLng {
		utils.JSONError(c, http.StatusBadRequest, "Coordonnées d'origine invalides", "originLat, originLng")
		return
	}

	doc, err := h.Directory.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, doctorNotFound)
		return
	}
	if doc.Latitude == 0 && doc.Longitude == 0 {
		utils.JSONError(c, http.StatusNotFound, "Adresse du médecin inconnue", "")
		return
	}
	if h.APIKey == "" {
		utils.JSONError(c, http.StatusServiceUnavailable, "Itinéraire indisponible", "maps api key not configured")
		return
	}

	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", originLat, originLng))
	q.Set("destination", fmt.Sprintf("%f,%f", doc.Latitude, doc.Longitude))
	var directions directionsResponse
	if err := h.getJSON(c, "/directions/json", q, &directions); err != nil {
		getLogger(c).Warn("directions request failed", zap.String("doctorID", doc.ID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Veuillez réessayer plus tard", "")
		return
	}
	if len(directions.Routes) == 0 {
		utils.JSONError(c, http.StatusNotFound, "Aucun itinéraire trouvé", directions.Status)
		return
	}

	route := directions.Routes[0]
	body := gin.H{"polyline": route.OverviewPolyline.Points, "maps_url": doc.MapsURL()}
	if len(route.Legs) > 0 {
		body["distance"] = route.Legs[0].Distance.Text
		body["duration"] = route.Legs[0].Duration.Text
	}
	c.JSON(http.StatusOK, body)
}

// ReverseGeocode handles GET /api/geocode/reverse?latitude=&longitude=.
func (h *MapsHandler) ReverseGeocode(c *gin.Context) {
	lat, okLat := parseCoord(c.Query("latitude"), 90)
	lng, okLng := parseCoord(c.Query("longitude"), 180)
	if !okLat || !okLng {
		utils.JSONError(c, http.StatusBadRequest, "Coordonnées invalides", "latitude, longitude")
		return
	}
	if h.APIKey == "" {
		utils.JSONError(c, http.StatusServiceUnavailable, "Géocodage indisponible", "maps api key not configured")
		return
	}

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	var data struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := h.getJSON(c, "/geocode/json", q, &data); err != nil {
		getLogger(c).Warn("reverse geocode failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Échec du géocodage", "")
		return
	}
	if data.Results == nil {
		data.Results = []json.RawMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"results": data.Results})
}
