package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the remote fitness service. All methods are safe for
// concurrent use; day parameters use the server's external numbering.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// ListActivities fetches the server's full activity list.
func (c *Client) ListActivities(ctx context.Context) ([]ActivityPayload, error) {
	var out []ActivityPayload
	if err := c.do(ctx, http.MethodGet, "/v1/activities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertActivity creates or updates the activity for its day. Idempotent.
func (c *Client) UpsertActivity(ctx context.Context, payload ActivityPayload) (ActivityPayload, error) {
	var out ActivityPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/activities/%d", payload.Day), payload, &out); err != nil {
		return ActivityPayload{}, err
	}
	return out, nil
}

// DeleteActivity removes the activity for the given external day.
func (c *Client) DeleteActivity(ctx context.Context, externalDay int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/activities/%d", externalDay), nil, nil)
}

// ListProgress fetches the server's full progress list.
func (c *Client) ListProgress(ctx context.Context) ([]ProgressPayload, error) {
	var out []ProgressPayload
	if err := c.do(ctx, http.MethodGet, "/v1/progress", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertProgress creates or updates the progress record for the given
// external day. Idempotent.
func (c *Client) UpsertProgress(ctx context.Context, externalDay int, payload ProgressPayload) (ProgressPayload, error) {
	var out ProgressPayload
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/progress/%d", externalDay), payload, &out); err != nil {
		return ProgressPayload{}, err
	}
	return out, nil
}

// DeleteProgress removes the progress record for the given external day.
func (c *Client) DeleteProgress(ctx context.Context, externalDay int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/progress/%d", externalDay), nil, nil)
}

// DeleteProgressPhoto removes one photo slot from the server.
func (c *Client) DeleteProgressPhoto(ctx context.Context, externalDay int, photoKind string) error {
	path := fmt.Sprintf("/v1/progress/%d/photos/%s", externalDay, url.PathEscape(photoKind))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListExercises fetches the server's full custom exercise list.
func (c *Client) ListExercises(ctx context.Context) ([]ExercisePayload, error) {
	var out []ExercisePayload
	if err := c.do(ctx, http.MethodGet, "/v1/exercises", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertExercise creates or updates a custom exercise by id. Idempotent.
func (c *Client) UpsertExercise(ctx context.Context, id string, payload ExercisePayload) (ExercisePayload, error) {
	var out ExercisePayload
	if err := c.do(ctx, http.MethodPut, "/v1/exercises/"+url.PathEscape(id), payload, &out); err != nil {
		return ExercisePayload{}, err
	}
	return out, nil
}

// DeleteExercise removes a custom exercise by id.
func (c *Client) DeleteExercise(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/exercises/"+url.PathEscape(id), nil, nil)
}

// StatusError reports a non-2xx server response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("resolve token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
