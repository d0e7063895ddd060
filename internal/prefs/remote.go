package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abelbrown/newshub/internal/model"
)

// Remote is the authenticated Store backed by newsd's /api/preferences.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote creates a Remote for baseURL (e.g. http://localhost:5000) using a
// bearer token from /api/auth/login.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		Preferences model.Preferences `json:"preferences"`
	} `json:"data"`
}

// Read fetches the record for the signed-in user.
func (r *Remote) Read(ctx context.Context) (model.Preferences, error) {
	env, err := r.do(ctx, http.MethodGet, nil)
	if err != nil {
		return model.Preferences{}, err
	}
	return env.Data.Preferences, nil
}

// Write replaces the record for the signed-in user.
func (r *Remote) Write(ctx context.Context, p model.Preferences) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = r.do(ctx, http.MethodPut, body)
	return err
}

func (r *Remote) do(ctx context.Context, method string, body []byte) (*envelope, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/api/preferences", rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preferences request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode preferences response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, fmt.Errorf("preferences: status %d: %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}
