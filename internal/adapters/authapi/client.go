package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alekus2/portifolioalek/internal/domain"
)

// SignupResult is the synchronous outcome of a signup call. When the
// provider defers to an out-of-band confirmation step, Identity is nil and
// NeedsConfirmation is set.
type SignupResult struct {
	Identity          *domain.Identity
	NeedsConfirmation bool
}

// Client talks to the external identity provider. Session transitions are
// not part of this surface; they arrive through the session event source.
type Client interface {
	SignUp(ctx context.Context, email, password string) (*SignupResult, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
	SignOut(ctx context.Context) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) SignUp(ctx context.Context, email, password string) (*SignupResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		ID                   string `json:"id"`
		Email                string `json:"email"`
		ConfirmationRequired bool   `json:"confirmation_required"`
	}
	if err := c.post(ctx, "/signup", payload, &resp); err != nil {
		return nil, err
	}
	if resp.ConfirmationRequired || resp.ID == "" {
		return &SignupResult{NeedsConfirmation: true}, nil
	}
	return &SignupResult{Identity: &domain.Identity{ID: resp.ID, Email: resp.Email}}, nil
}

func (c *httpClient) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := c.post(ctx, "/token?grant_type=password", payload, &resp); err != nil {
		return nil, err
	}
	if resp.User.ID == "" {
		return nil, &domain.AuthError{Message: "token response missing user"}
	}
	return &domain.Identity{ID: resp.User.ID, Email: resp.User.Email}, nil
}

func (c *httpClient) SignOut(ctx context.Context) error {
	return c.post(ctx, "/logout", map[string]string{}, nil)
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	op := func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, path), bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode >= 500 {
			return fmt.Errorf("auth provider error: %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(decodeAuthError(res))
		}
		if out != nil && res.StatusCode != http.StatusNoContent {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 3 * time.Second
	return backoff.Retry(op, backoff.WithContext(bo, ctx))
}

func decodeAuthError(res *http.Response) error {
	var body struct {
		Msg         string `json:"msg"`
		Description string `json:"error_description"`
	}
	_ = json.NewDecoder(res.Body).Decode(&body)
	msg := body.Msg
	if msg == "" {
		msg = body.Description
	}
	return &domain.AuthError{Code: res.StatusCode, Message: msg}
}
