// Package groomapi is the HTTP client for the grooming salon backend.
package groomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"groombot/internal/model"
)

// APIError is a non-2xx response from the backend. Message carries the
// server-supplied "error" field when the body was parseable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (http %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: http %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401 from the backend. The caller is
// expected to discard its stored token when this is true.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ServerMessage returns the server-supplied error message, or fallback when
// the failure had no parseable message (transport errors included).
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client calls the salon backend. Cached GETs go through Redis when
// configured.
type Client struct {
	baseURL    string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// UseRedisCache configures optional Redis caching for public GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// Services fetches the service catalog.
func (c *Client) Services(ctx context.Context) ([]model.Service, error) {
	var services []model.Service
	cacheKey := "services"
	if c.readCache(ctx, cacheKey, &services) {
		return services, nil
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/services", "", nil, &services); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, services)
	return services, nil
}

// Availability fetches time slots for an ISO date.
func (c *Client) Availability(ctx context.Context, date string) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	cacheKey := "availability:" + date
	if c.readCache(ctx, cacheKey, &slots) {
		return slots, nil
	}
	endpoint := "/api/availability?date=" + url.QueryEscape(date)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, "", nil, &slots); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, slots)
	return slots, nil
}

// InvalidateAvailability drops the cached slot list for a date. Called after
// a booking or cancellation touches that date.
func (c *Client) InvalidateAvailability(ctx context.Context, date string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, "availability:"+date).Err()
}

// Dogs lists the dogs on the authenticated user's profile.
func (c *Client) Dogs(ctx context.Context, token string) ([]model.Dog, error) {
	var dogs []model.Dog
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile/dogs", token, nil, &dogs); err != nil {
		return nil, err
	}
	return dogs, nil
}

// DogRequest is the upsert body for a dog.
type DogRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed,omitempty"`
	Age   *int   `json:"age,omitempty"`
}

type dogResponse struct {
	Message string    `json:"message"`
	Dog     model.Dog `json:"dog"`
}

// AddDog creates a dog on the profile.
func (c *Client) AddDog(ctx context.Context, token string, req DogRequest) (model.Dog, error) {
	var resp dogResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/profile/dogs", token, req, &resp); err != nil {
		return model.Dog{}, err
	}
	return resp.Dog, nil
}

// UpdateDog updates an existing dog.
func (c *Client) UpdateDog(ctx context.Context, token string, dogID int64, req DogRequest) (model.Dog, error) {
	var resp dogResponse
	endpoint := fmt.Sprintf("/api/profile/dogs/%d", dogID)
	if err := c.doJSON(ctx, http.MethodPut, endpoint, token, req, &resp); err != nil {
		return model.Dog{}, err
	}
	return resp.Dog, nil
}

// DeleteDog removes a dog from the profile.
func (c *Client) DeleteDog(ctx context.Context, token string, dogID int64) error {
	endpoint := fmt.Sprintf("/api/profile/dogs/%d", dogID)
	return c.doJSON(ctx, http.MethodDelete, endpoint, token, nil, nil)
}

// Appointments lists the user's appointments.
func (c *Client) Appointments(ctx context.Context, token string) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := c.doJSON(ctx, http.MethodGet, "/api/appointments", token, nil, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

type createAppointmentResponse struct {
	Message     string            `json:"message"`
	Appointment model.Appointment `json:"appointment"`
}

// CreateAppointment posts a booking request.
func (c *Client) CreateAppointment(ctx context.Context, token string, req any) (model.Appointment, error) {
	var resp createAppointmentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/appointments", token, req, &resp); err != nil {
		return model.Appointment{}, err
	}
	c.InvalidateAvailability(ctx, resp.Appointment.Date)
	return resp.Appointment, nil
}

// CancelAppointment marks an appointment cancelled. The freed slot's date is
// unknown to the caller here, so availability for it is invalidated via the
// date argument when the caller has it.
func (c *Client) CancelAppointment(ctx context.Context, token string, appointmentID int64, date string) error {
	endpoint := fmt.Sprintf("/api/appointments/%d", appointmentID)
	body := map[string]string{"status": model.StatusCancelled}
	if err := c.doJSON(ctx, http.MethodPut, endpoint, token, body, nil); err != nil {
		return err
	}
	if date != "" {
		c.InvalidateAvailability(ctx, date)
	}
	return nil
}

// Profile holds the authenticated user's profile fields.
type Profile struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}

// GetProfile fetches the user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (Profile, error) {
	var p Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profile", token, nil, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// RegisterRequest is the registration body. Dog fields are optional; a first
// dog is created when DogName is set.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	DogName  string `json:"dog_name,omitempty"`
	DogBreed string `json:"dog_breed,omitempty"`
	DogAge   *int   `json:"dog_age,omitempty"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", "", req, nil)
}

// AuthStatus reports whether the token is still accepted.
type AuthStatus struct {
	LoggedIn bool  `json:"logged_in"`
	UserID   int64 `json:"user_id,omitempty"`
}

// Status checks the stored token against the backend.
func (c *Client) Status(ctx context.Context, token string) (AuthStatus, error) {
	var s AuthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/auth/status", token, nil, &s); err != nil {
		return AuthStatus{}, err
	}
	return s, nil
}

// Logout tells the backend to drop the session. Best effort: the caller
// discards its token whatever this returns.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
