package autoplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrRateLimited is returned when the server answers 429.
var ErrRateLimited = errors.New("rate limited")

// ActResult is the common part of every gameplay response.
type ActResult struct {
	OK bool `json:"ok"`
}

// Actor executes actions via the gameplay API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Click lands n clicks and returns how many went through. It stops at the
// first failure.
func (a *Actor) Click(ctx context.Context, n int) (int, error) {
	for i := 0; i < n; i++ {
		if _, err := a.post(ctx, "/api/v1/click", nil); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Act sends one action to its endpoint.
func (a *Actor) Act(ctx context.Context, act Action) (*ActResult, error) {
	switch act.Kind {
	case ActionClaim:
		return a.post(ctx, "/api/v1/achievements/"+url.PathEscape(act.Target)+"/claim", nil)
	case ActionPrestige:
		return a.post(ctx, "/api/v1/prestige", nil)
	case ActionLegacy:
		return a.post(ctx, "/api/v1/legacy/"+url.PathEscape(act.Target)+"/purchase", nil)
	case ActionBuy:
		return a.post(ctx, "/api/v1/upgrades/"+url.PathEscape(act.Target)+"/purchase",
			map[string]string{"quantity": act.Quantity})
	}
	return nil, fmt.Errorf("unknown action %q", act.Kind)
}

func (a *Actor) post(ctx context.Context, path string, payload any) (*ActResult, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("POST %s: %w (retry after %ss)", path, ErrRateLimited, resp.Header.Get("Retry-After"))
	default:
		return nil, fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}

	var result ActResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
