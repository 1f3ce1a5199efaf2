// Package etherpad is a client for the Etherpad-lite administrative HTTP API.
package etherpad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/padlinkapp/padlink-server/internal/domain"
	"github.com/padlinkapp/padlink-server/internal/ratelimit"
)

const (
	// Rate limit: 10 requests per second per server, burst of 20
	defaultRPS   = 10.0
	defaultBurst = 20

	// HTTP client settings
	defaultTimeout = 10 * time.Second

	// Responses larger than this are not Etherpad API responses.
	maxResponseBytes = 1 << 20
)

// Config tunes clients created by New and Pool.
type Config struct {
	APIVersion string
	Timeout    time.Duration
	RPS        float64
	Burst      int
}

func (c Config) withDefaults() Config {
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RPS <= 0 {
		c.RPS = defaultRPS
	}
	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}
	return c
}

// Client is a rate-limited Etherpad API client bound to one server's
// URL and API key.
type Client struct {
	http        *http.Client
	limiter     *ratelimit.KeyedRateLimiter
	ownsLimiter bool
	logger      *slog.Logger

	serverID string
	apiURL   string
	apiKey   string
	version  string
}

// New creates a standalone client for server.
func New(server *domain.Server, cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	c := newClient(server, cfg, &http.Client{Timeout: cfg.Timeout}, ratelimit.New(cfg.RPS, cfg.Burst), logger)
	c.ownsLimiter = true
	return c
}

func newClient(server *domain.Server, cfg Config, httpClient *http.Client, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:     httpClient,
		limiter:  limiter,
		logger:   logger,
		serverID: server.ID,
		apiURL:   strings.TrimSuffix(server.APIURL(), "/"),
		apiKey:   server.APIKey,
		version:  cfg.APIVersion,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	if c.ownsLimiter {
		c.limiter.Stop()
	}
}

// ServerID returns the id of the server this client talks to.
func (c *Client) ServerID() string {
	return c.serverID
}

// CreateGroupIfNotExistsFor returns the Etherpad group mapped to mapper,
// creating it on first use. Repeated calls return the same group id.
func (c *Client) CreateGroupIfNotExistsFor(ctx context.Context, mapper string) (string, error) {
	var out groupIDData
	if err := c.call(ctx, "createGroupIfNotExistsFor", url.Values{"groupMapper": {mapper}}, &out); err != nil {
		return "", err
	}
	if out.GroupID == "" {
		return "", wrapError("createGroupIfNotExistsFor", c.serverID, "empty groupID", ErrMalformed)
	}
	return out.GroupID, nil
}

// CreateAuthorIfNotExistsFor returns the Etherpad author mapped to mapper,
// creating it on first use. Etherpad updates the author's name on every call.
func (c *Client) CreateAuthorIfNotExistsFor(ctx context.Context, mapper, name string) (string, error) {
	params := url.Values{"authorMapper": {mapper}}
	if name != "" {
		params.Set("name", name)
	}

	var out authorIDData
	if err := c.call(ctx, "createAuthorIfNotExistsFor", params, &out); err != nil {
		return "", err
	}
	if out.AuthorID == "" {
		return "", wrapError("createAuthorIfNotExistsFor", c.serverID, "empty authorID", ErrMalformed)
	}
	return out.AuthorID, nil
}

// CreateGroupPad creates a pad inside a group and returns its pad id.
func (c *Client) CreateGroupPad(ctx context.Context, groupID, padName string) (string, error) {
	var out padIDData
	params := url.Values{"groupID": {groupID}, "padName": {padName}}
	if err := c.call(ctx, "createGroupPad", params, &out); err != nil {
		return "", err
	}
	if out.PadID == "" {
		return groupID + domain.PadIDSeparator + padName, nil
	}
	return out.PadID, nil
}

// DeletePad deletes a pad. A missing pad yields ErrNotFound.
func (c *Client) DeletePad(ctx context.Context, padID string) error {
	return c.call(ctx, "deletePad", url.Values{"padID": {padID}}, nil)
}

// DeleteGroup deletes a group and any pads Etherpad still holds in it.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.call(ctx, "deleteGroup", url.Values{"groupID": {groupID}}, nil)
}

// GetPublicStatus reports whether a group pad is readable without a session.
func (c *Client) GetPublicStatus(ctx context.Context, padID string) (bool, error) {
	var out publicStatusData
	if err := c.call(ctx, "getPublicStatus", url.Values{"padID": {padID}}, &out); err != nil {
		return false, err
	}
	return out.PublicStatus, nil
}

// GetReadOnlyID returns the read-only id of a pad.
func (c *Client) GetReadOnlyID(ctx context.Context, padID string) (string, error) {
	var out readOnlyIDData
	if err := c.call(ctx, "getReadOnlyID", url.Values{"padID": {padID}}, &out); err != nil {
		return "", err
	}
	return out.ReadOnlyID, nil
}

// CheckToken verifies that the server is reachable and accepts the API key.
func (c *Client) CheckToken(ctx context.Context) error {
	return c.call(ctx, "checkToken", nil, nil)
}

// call performs one API method and decodes the data member into out.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	body, err := c.doRequest(ctx, method, params)
	if err != nil {
		return wrapError(method, c.serverID, "", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return wrapError(method, c.serverID, "", fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	if err := classify(env.Code, env.Message); err != nil {
		return wrapError(method, c.serverID, env.Message, err)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return wrapError(method, c.serverID, "", fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	return nil
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, method string, params url.Values) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, c.serverID); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("apikey", c.apiKey)

	endpoint := c.apiURL + "/" + c.version + "/" + method + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "padlink/1.0")

	c.logger.Debug("etherpad request",
		"server", c.serverID,
		"method", method,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUnsupported
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		// Some Etherpad versions answer API errors with a 4xx and a regular envelope.
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Code != codeOK {
			return body, nil
		}
		return nil, fmt.Errorf("%w: unexpected status %d", ErrMalformed, resp.StatusCode)
	}
}
