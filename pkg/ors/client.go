// Package ors содержит клиент API маршрутов OpenRouteService.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DirectionsRequest — запрос на построение маршрута.
// Координаты передаются в порядке (долгота, широта).
type DirectionsRequest struct {
	Profile       Profile
	Coordinates   [][2]float64
	AvoidPolygons orb.MultiPolygon
}

// StatusError — ответ маршрутизатора с кодом, отличным от 2xx
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openrouteservice responded %d: %s", e.StatusCode, e.Message)
}

// Client обращается к REST API OpenRouteService. Безопасен для конкурентного использования.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type directionsOptions struct {
	AvoidPolygons *geojson.Geometry `json:"avoid_polygons,omitempty"`
}

type directionsBody struct {
	Coordinates [][2]float64       `json:"coordinates"`
	Options     *directionsOptions `json:"options,omitempty"`
}

// Directions строит маршрут и возвращает GeoJSON ответа как есть.
// Пустой набор зон объезда не передаётся в запрос.
func (c *Client) Directions(ctx context.Context, req DirectionsRequest) (json.RawMessage, error) {
	// https://openrouteservice.org/dev/#/api-docs/v2/directions/{profile}/geojson/post
	body := directionsBody{Coordinates: req.Coordinates}
	if len(req.AvoidPolygons) > 0 {
		body.Options = &directionsOptions{AvoidPolygons: geojson.NewGeometry(req.AvoidPolygons)}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, req.Profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, application/geo+json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(b)}
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("could not decode response: invalid json")
	}

	return json.RawMessage(b), nil
}

// errorMessage достаёт текст ошибки из тела ответа OpenRouteService
func errorMessage(b []byte) string {
	var rs struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(b, &rs); err == nil && len(rs.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rs.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(rs.Error, &plain); err == nil {
			return plain
		}
	}
	return strings.TrimSpace(string(b))
}
