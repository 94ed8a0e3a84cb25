// Package geocode resolves postal addresses to coordinates through an
// external maps service.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Result is a resolved coordinate pair.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a free-form address query to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

var _ Geocoder = (*Client)(nil)

// Client talks to a Nominatim-style search endpoint. The service returns
// a JSON array of candidates with latitude and longitude as strings; the
// first candidate wins.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a geocode client for the given search endpoint URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type candidate struct {
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
}

// Geocode resolves the query. It returns an error when the service is
// unreachable, answers with a non-200 status, or knows no candidate.
func (c *Client) Geocode(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode service returned status %d", res.StatusCode)
	}

	var candidates []candidate
	if err := json.NewDecoder(res.Body).Decode(&candidates); err != nil {
		return Result{}, fmt.Errorf("cannot decode geocode response: %w", err)
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("no coordinates found for %q", query)
	}

	latitude, err := strconv.ParseFloat(candidates[0].Latitude, 64)
	if err != nil {
		return Result{}, fmt.Errorf("cannot parse latitude: %w", err)
	}
	longitude, err := strconv.ParseFloat(candidates[0].Longitude, 64)
	if err != nil {
		return Result{}, fmt.Errorf("cannot parse longitude: %w", err)
	}
	return Result{Latitude: latitude, Longitude: longitude}, nil
}
