// Package client is the application-side counterpart of the API: the
// analyze call, the image file encoder, and the editable-result session
// that persists a meal record.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
)

// Client calls the API on behalf of one authenticated session.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// Generous: the analyze handler may legitimately take minutes.
		http: &http.Client{Timeout: 6 * time.Minute},
	}
}

// Analyze submits one analysis request and awaits the single result.
// The validation invariant is re-checked before any network I/O; no retry
// is attempted on failure.
func (c *Client) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.NutritionResult, error) {
	if c.token == "" {
		return nil, apperr.New(apperr.Unauthenticated, "no active session")
	}
	if req.Empty() {
		return nil, apperr.New(apperr.InvalidArgument, "provide a description or an image")
	}

	var result models.NutritionResult
	if err := c.post(ctx, "/analyze", req, &result, apperr.AnalysisFailed); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveMeal persists the final (possibly edited) nutrition fields.
func (c *Client) SaveMeal(ctx context.Context, description string, n models.NutritionResult) (*models.MealRecord, error) {
	body := map[string]any{
		"description": description,
		"calories":    n.Calories,
		"protein":     n.Protein,
		"carbs":       n.Carbs,
		"fat":         n.Fat,
	}

	var record models.MealRecord
	if err := c.post(ctx, "/meals", body, &record, apperr.PersistenceFailed); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListMeals returns the session user's saved records, newest first.
func (c *Client) ListMeals(ctx context.Context) ([]models.MealRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/meals", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.wireError(resp, apperr.PersistenceFailed)
	}

	var records []models.MealRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "malformed response", err)
	}
	return records, nil
}

// post sends a JSON body and decodes a JSON reply. Non-2xx replies map to
// their wire code's kind; replies without a recognizable code fall back
// to fallback.
func (c *Client) post(ctx context.Context, path string, body, out any, fallback apperr.Kind) error {
	b, err := json.Marshal(body)
	if err != nil {
		return apperr.Wrap(fallback, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return apperr.Wrap(fallback, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(fallback, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.wireError(resp, fallback)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(fallback, "malformed response", err)
	}
	return nil
}

func (c *Client) wireError(resp *http.Response, fallback apperr.Kind) error {
	raw, _ := io.ReadAll(resp.Body)

	var wire struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil || wire.Code == "" {
		return apperr.New(fallback, fmt.Sprintf("server returned status %d", resp.StatusCode))
	}

	kind := apperr.FromCode(wire.Code)
	if kind == apperr.Unknown {
		kind = fallback
	}
	return apperr.New(kind, wire.Error)
}
