// Package apiclient implements port.CartRepository on top of the shopcart
// HTTP routes, so a cartstore.Store can drive a remote or guest cart the same
// way it drives the Postgres repository.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/nikolayk812/shopcart/internal/api"
)

// ErrUnauthorized is returned when the session token is missing, invalid or
// belongs to another user.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

// StatusError is a non-2xx response from the routes. It unwraps to the domain
// error the status stands for, when there is one.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string

	err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed status=%d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

type Option func(*client)

// WithHTTPClient sends requests through a copy of hc. The copy gets the
// client's own cookie jar when hc has none, since the routes keep the cart id
// in a cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		cp := *hc
		c.http = &cp
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *client) { c.http.Timeout = timeout }
}

// statusErrors maps response codes to the error a route means by them.
type statusErrors map[int]error

type client struct {
	baseURL string
	header  http.Header
	http    *http.Client
}

func newClient(baseURL string, opts ...Option) (*client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	// the routes keep the cart id in a cookie
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}

	c := &client{
		baseURL: baseURL,
		header:  http.Header{},
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}

	return c, nil
}

func (c *client) do(ctx context.Context, method, path string, header http.Header, payload, out any, mapped statusErrors) error {
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
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return newStatusError(method, path, res, mapped)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	return nil
}

func newStatusError(method, path string, res *http.Response, mapped statusErrors) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	msg := strings.TrimSpace(string(raw))
	var e api.ErrorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	se := &StatusError{Method: method, Path: path, StatusCode: res.StatusCode, Message: msg}
	switch {
	case mapped[res.StatusCode] != nil:
		se.err = mapped[res.StatusCode]
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		se.err = ErrUnauthorized
	}

	return se
}
