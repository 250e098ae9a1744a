// Package geo provides road distance and geocoding lookups backed by the
// OpenRouteService and Nominatim HTTP APIs, with a local great-circle
// fallback so callers never fail on an unreachable upstream.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const userAgent = "carpool-backend/1.0"

// Client calls the external routing and geocoding services.
type Client struct {
	apiKey        string
	directionsURL string
	geocodeURL    string
	httpClient    *http.Client
}

// NewClient creates a geo client. An empty apiKey disables the routing API
// and every distance lookup uses the Haversine fallback.
func NewClient(apiKey, directionsURL, geocodeURL string, timeout time.Duration) *Client {
	if directionsURL == "" {
		directionsURL = "https://api.openrouteservice.org/v2/directions/driving-car"
	}
	if geocodeURL == "" {
		geocodeURL = "https://nominatim.openstreetmap.org/search"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:        apiKey,
		directionsURL: directionsURL,
		geocodeURL:    geocodeURL,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// DistanceKm returns the driving distance between two points in kilometers.
// Falls back to the Haversine formula when the routing API is not configured
// or the call fails; the returned error is always nil in the fallback path.
func (c *Client) DistanceKm(ctx context.Context, lat1, lng1, lat2, lng2 float64) (float64, error) {
	if c.apiKey == "" {
		return Haversine(lat1, lng1, lat2, lng2), nil
	}

	km, err := c.routeDistance(ctx, lat1, lng1, lat2, lng2)
	if err != nil {
		return Haversine(lat1, lng1, lat2, lng2), nil
	}
	return km, nil
}

// Coordinates resolves a place name to (lat, lng). The third return value is
// false when the place could not be resolved.
func (c *Client) Coordinates(ctx context.Context, place string) (float64, float64, bool, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, false, err
	}
	// Nominatim requires a User-Agent header.
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, false, err
	}

	if len(results) == 0 {
		return 0, 0, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, false, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, false, err
	}

	return lat, lng, true, nil
}

// routeDistance queries the directions API. Coordinates go on the wire as
// [lng, lat] pairs; the summary distance comes back in meters.
func (c *Client) routeDistance(ctx context.Context, lat1, lng1, lat2, lng2 float64) (float64, error) {
	coordinates := fmt.Sprintf("[[%f,%f],[%f,%f]]", lng1, lat1, lng2, lat2)
	reqURL := c.directionsURL + "?coordinates=" + url.QueryEscape(coordinates)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("directions: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Routes []struct {
			Summary struct {
				Distance float64 `json:"distance"`
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	if len(body.Routes) == 0 {
		return 0, fmt.Errorf("directions: no routes in response")
	}

	return body.Routes[0].Summary.Distance / 1000.0, nil
}

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
