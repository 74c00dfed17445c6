// Package client is a typed HTTP client for the plant health API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
)

const apiPrefix = "/api"

// APIError is a non-2xx answer from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the API rooted at baseURL, e.g. http://localhost:3000
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header sent on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "phm-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token currently in use
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login exchanges credentials for a token and keeps it for later calls
func (c *Client) Login(ctx context.Context, username, password string) (*api_models.AuthResponse, error) {
	var resp api_models.AuthResponse
	req := api_models.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Plants lists plants matching filter
func (c *Client) Plants(ctx context.Context, filter phmmodels.PlantFilter) ([]*phmmodels.Plant, error) {
	q := url.Values{}
	setIf(q, "search", filter.Search)
	setIf(q, "species", filter.Species)
	setIf(q, "location", filter.Location)

	var plants []*phmmodels.Plant
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/plants", q, nil, &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

func (c *Client) Plant(ctx context.Context, plantID int64) (*phmmodels.Plant, error) {
	var plant phmmodels.Plant
	if err := c.do(ctx, http.MethodGet, plantPath("/plants", plantID), nil, nil, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

func (c *Client) CreatePlant(ctx context.Context, in phmmodels.PlantInput) (*phmmodels.Plant, error) {
	var plant phmmodels.Plant
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/plants", nil, in, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

func (c *Client) UpdatePlant(ctx context.Context, plantID int64, in phmmodels.PlantInput) (*phmmodels.Plant, error) {
	var plant phmmodels.Plant
	if err := c.do(ctx, http.MethodPut, plantPath("/plants", plantID), nil, in, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// HealthLogs lists a plant's logs; a non-nil days limits them to that window
func (c *Client) HealthLogs(ctx context.Context, plantID int64, days *int) ([]*phmmodels.HealthLog, error) {
	q := url.Values{}
	if days != nil {
		q.Set("days", strconv.Itoa(*days))
	}

	var logs []*phmmodels.HealthLog
	if err := c.do(ctx, http.MethodGet, plantPath("/healthlogs", plantID), q, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) CreateHealthLog(ctx context.Context, plantID int64, in phmmodels.HealthLogInput) (*phmmodels.HealthLog, error) {
	var log phmmodels.HealthLog
	if err := c.do(ctx, http.MethodPost, plantPath("/healthlogs", plantID), nil, in, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

func (c *Client) Recommendations(ctx context.Context, plantID int64) ([]*phmmodels.Recommendation, error) {
	var recs []*phmmodels.Recommendation
	if err := c.do(ctx, http.MethodGet, plantPath("/recommendations", plantID), nil, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) CreateRecommendation(ctx context.Context, plantID int64, adviceText string) (*phmmodels.Recommendation, error) {
	in := phmmodels.RecommendationInput{PlantID: phmmodels.NewFlexibleID(plantID), AdviceText: adviceText}

	var rec phmmodels.Recommendation
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/recommendations", nil, in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Alerts lists a plant's alerts; an empty status returns all of them
func (c *Client) Alerts(ctx context.Context, plantID int64, status string) ([]*phmmodels.Alert, error) {
	q := url.Values{}
	setIf(q, "status", status)

	var alerts []*phmmodels.Alert
	if err := c.do(ctx, http.MethodGet, plantPath("/alerts", plantID), q, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert raises an alert; an empty status lets the server default it
func (c *Client) CreateAlert(ctx context.Context, plantID int64, message, status string) (*phmmodels.Alert, error) {
	in := phmmodels.AlertInput{PlantID: phmmodels.NewFlexibleID(plantID), Message: message, Status: status}

	var alert phmmodels.Alert
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/alerts", nil, in, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Health checks if the API is up
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health/live", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.makeRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// makeRequest makes an HTTP request to the API
func (c *Client) makeRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload api_models.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		payload.Error = strings.TrimSpace(string(body))
		if payload.Error == "" {
			payload.Error = http.StatusText(status)
		}
	}
	return &APIError{StatusCode: status, Message: payload.Error}
}

func plantPath(resource string, plantID int64) string {
	return apiPrefix + resource + "/" + strconv.FormatInt(plantID, 10)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
