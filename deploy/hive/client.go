// Package hive implements the deploy.Vendor interface against the Hive
// serverless platform's HTTP API.
package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/x402-function-go/deploy"
)

// connectTimeout bounds connection establishment to the Hive API.
const connectTimeout = 5 * time.Second

// ClientConfig holds the Hive API connection settings, read once at startup.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.hive.example". A single
	// trailing slash is stripped.
	BaseURL string

	// Account is the account segment appended to the base URL; all service
	// paths are scoped under it.
	Account string

	// TokenHeaderName is the header carrying the API token on every request.
	TokenHeaderName string

	// Token is the API token value.
	Token string
}

// Client is a thin HTTP client for the Hive API. All requests are rooted at
// baseURL/account and carry the configured token header.
type Client struct {
	rootURL     string
	tokenHeader string
	token       string
	client      *http.Client
}

// NewClient creates a Hive API client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		rootURL:     strings.TrimSuffix(cfg.BaseURL, "/") + "/" + cfg.Account,
		tokenHeader: cfg.TokenHeaderName,
		token:       cfg.Token,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// createService posts a service-creation request.
func (c *Client) createService(ctx context.Context, request serviceCreateRequest) (*response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/services", bytes.NewReader(body))
}

// getServiceByID fetches the status of a service by its vendor id.
func (c *Client) getServiceByID(ctx context.Context, id string) (*response, error) {
	return c.do(ctx, http.MethodGet, "/services/"+url.PathEscape(id), nil)
}

// getServiceByName fetches the status of a service by its name.
func (c *Client) getServiceByName(ctx context.Context, name string) (*response, error) {
	return c.do(ctx, http.MethodGet, "/services/name/"+url.PathEscape(name), nil)
}

// do sends one request and decodes the Hive envelope. Non-2xx statuses are
// translated into *deploy.VendorError, preferring the envelope's errCode and
// errMessage over the raw status and body.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.rootURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(c.tokenHeader, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hive request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode hive response: %w", err)
	}
	return &out, nil
}

// httpError builds the VendorError for a non-2xx response.
func httpError(resp *http.Response) *deploy.VendorError {
	body, _ := io.ReadAll(resp.Body)

	var envelope response
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.ErrCode != "" {
		msg := envelope.ErrMessage
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d %s", resp.StatusCode, body)
		}
		return &deploy.VendorError{Code: envelope.ErrCode, Message: msg}
	}

	return &deploy.VendorError{
		Code:    strconv.Itoa(resp.StatusCode),
		Message: fmt.Sprintf("HTTP %d %s", resp.StatusCode, body),
	}
}
