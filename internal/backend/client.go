package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/shopcart/internal/port"
)

// ErrUnauthorized is returned when the backend rejects sign-in credentials.
var ErrUnauthorized = errors.New("backend: unauthorized")

// Client calls the storefront backend REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// baseURL example: https://api.example.com/v1
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend baseURL is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

var _ port.Backend = (*Client)(nil)

type signInResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (r signInResponse) toPort() port.BackendUser {
	return port.BackendUser{
		ID:    r.User.ID,
		Email: r.User.Email,
		Name:  r.User.Name,
		Role:  r.User.Role,
		Token: r.Token,
	}
}

func (c *Client) Login(ctx context.Context, creds port.Credentials) (port.BackendUser, error) {
	if creds.Email == "" || creds.Password == "" {
		return port.BackendUser{}, fmt.Errorf("email or password is empty")
	}

	var resp signInResponse
	payload := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return port.BackendUser{}, fmt.Errorf("backend login: %w", err)
	}

	return resp.toPort(), nil
}

func (c *Client) GoogleSignIn(ctx context.Context, idToken string) (port.BackendUser, error) {
	if idToken == "" {
		return port.BackendUser{}, fmt.Errorf("idToken is empty")
	}

	var resp signInResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", map[string]string{"idToken": idToken}, &resp); err != nil {
		return port.BackendUser{}, fmt.Errorf("backend google sign-in: %w", err)
	}

	return resp.toPort(), nil
}

func (c *Client) GetCartID(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID is empty")
	}

	var resp struct {
		CartID string `json:"cartId"`
	}
	err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/cart", nil, &resp)
	if errors.Is(err, errNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("backend get cart id: %w", err)
	}

	return resp.CartID, nil
}

func (c *Client) SaveCartID(ctx context.Context, userID, cartID string) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}

	payload := map[string]string{"cartId": cartID}
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/cart", payload, nil); err != nil {
		return fmt.Errorf("backend save cart id: %w", err)
	}

	return nil
}

func (c *Client) SubscribeNewsletter(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}

	if err := c.do(ctx, http.MethodPost, "/newsletter", map[string]string{"email": email}, nil); err != nil {
		return fmt.Errorf("backend newsletter: %w", err)
	}

	return nil
}

var errNotFound = errors.New("backend: not found")

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case res.StatusCode == http.StatusNotFound:
		return errNotFound
	case res.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return fmt.Errorf("%s %s failed status=%d body=%s", method, path, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}
