// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package portal is the authenticated transport to the college portal
// REST service, plus typed endpoint methods for each role.
//
// Every call goes through [Client.Request]: it attaches the stored
// bearer token, applies the single fixed timeout, and detects
// authorization failures (401, 403, or a body message saying the token
// is invalid or expired). An authorization failure triggers the
// injected [InvalidationHandler] once per offending response and is
// still returned to the caller as an [*Error]. Timeouts and transport
// failures are [KindNetwork] errors and never invalidate the session.
// The client never retries.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/outpass/lib/config"
	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/netutil"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/version"
)

// InvalidationHandler clears the session after an authorization
// failure. Implementations must be idempotent: parallel failing
// responses each call it.
type InvalidationHandler interface {
	InvalidateSession(ctx context.Context, reason string)
}

// InvalidationFunc adapts a function to InvalidationHandler.
type InvalidationFunc func(ctx context.Context, reason string)

// InvalidateSession calls f.
func (f InvalidationFunc) InvalidateSession(ctx context.Context, reason string) { f(ctx, reason) }

// invalidTokenPhrases mark a response body as an authorization failure
// whatever its status.
var invalidTokenPhrases = []string{"invalid token", "token expired", "unauthorized"}

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin. Default: config.DefaultAPIURL.
	BaseURL string

	// ContentURL is the asset origin for relative photo and file
	// references. Default: config.DefaultContentURL.
	ContentURL string

	// Store supplies the bearer token. Required.
	Store credstore.Store

	// Timeout bounds each request. Default: config.DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is optional; its Timeout is ignored in favor of
	// Timeout.
	HTTPClient *http.Client

	// Invalidation is notified of authorization failures. Optional; it
	// is fixed for the life of the client.
	Invalidation InvalidationHandler

	// Logger is optional.
	Logger *slog.Logger
}

// Client is the single HTTP client of the application.
type Client struct {
	baseURL      *url.URL
	contentURL   *url.URL
	store        credstore.Store
	timeout      time.Duration
	httpClient   *http.Client
	invalidation InvalidationHandler
	logger       *slog.Logger
}

// New validates config and returns a Client.
func New(config Config) (*Client, error) {
	if config.Store == nil {
		return nil, errors.New("portal: Config.Store is required")
	}
	baseURL, err := parseOrigin("base", config.BaseURL, defaultAPIURL)
	if err != nil {
		return nil, err
	}
	contentURL, err := parseOrigin("content", config.ContentURL, defaultContentURL)
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := http.DefaultClient
	if config.HTTPClient != nil {
		httpClient = config.HTTPClient
	}
	invalidation := config.Invalidation
	if invalidation == nil {
		invalidation = InvalidationFunc(func(context.Context, string) {})
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:      baseURL,
		contentURL:   contentURL,
		store:        config.Store,
		timeout:      timeout,
		httpClient:   httpClient,
		invalidation: invalidation,
		logger:       logger,
	}, nil
}

const (
	defaultAPIURL     = config.DefaultAPIURL
	defaultContentURL = config.DefaultContentURL
	defaultTimeout    = config.DefaultTimeout
)

func parseOrigin(name, value, fallback string) (*url.URL, error) {
	if value == "" {
		value = fallback
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("portal: parsing %s URL %q: %w", name, value, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("portal: %s URL %q must be http or https", name, value)
	}
	return parsed, nil
}

// Timeout returns the fixed per-request timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Request performs one call. body, when non-nil, is JSON-encoded.
// header entries are applied after the defaults and may override them.
func (c *Client) Request(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	requestURL := c.baseURL.JoinPath(path)

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("portal: encoding %s %s body: %w", method, path, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("portal: building %s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-ID", requestID)
	request.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	token := c.token(ctx)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	for name, values := range header {
		request.Header.Del(name)
		for _, value := range values {
			request.Header.Add(name, value)
		}
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("portal request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"duration", time.Since(started),
			"error", err,
		)
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Message: networkMessage(err), Err: err}
	}
	defer response.Body.Close()

	data, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: response.StatusCode, Method: method, Path: path,
			Message: "reading response failed", Err: err}
	}

	c.logger.Debug("portal request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
		"token", session.Fingerprint(token),
	)

	message := serviceMessage(data)
	if reason, failed := authorizationFailure(response.StatusCode, message); failed {
		c.invalidation.InvalidateSession(context.WithoutCancel(ctx), reason)
		return nil, &Error{
			Kind:        KindHTTP,
			Status:      response.StatusCode,
			Method:      method,
			Path:        path,
			Message:     messageOrStatus(message, response.StatusCode),
			Invalidated: true,
		}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &Error{
			Kind:    KindHTTP,
			Status:  response.StatusCode,
			Method:  method,
			Path:    path,
			Message: messageOrStatus(message, response.StatusCode),
		}
	}
	return &Response{Status: response.StatusCode, Data: data}, nil
}

// token reads the stored bearer token. A failed read counts as absent.
func (c *Client) token(ctx context.Context) string {
	token, present, err := c.store.Get(ctx, credstore.KeyToken)
	if err != nil {
		c.logger.Warn("reading token failed, sending request unauthenticated", "error", err)
		return ""
	}
	if !present {
		return ""
	}
	return token
}

// authorizationFailure decides whether a response invalidates the
// session, and why.
func authorizationFailure(status int, message string) (string, bool) {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Sprintf("status %d", status), true
	}
	lowered := strings.ToLower(message)
	for _, phrase := range invalidTokenPhrases {
		if strings.Contains(lowered, phrase) {
			return fmt.Sprintf("status %d: %s", status, message), true
		}
	}
	return "", false
}

// serviceMessage extracts the "message" (or "error") string of a JSON
// object body, or "".
func serviceMessage(data []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{body.Message, body.Error} {
		var text string
		if raw != nil && json.Unmarshal(raw, &text) == nil && text != "" {
			return text
		}
	}
	return ""
}

func messageOrStatus(message string, status int) string {
	if message != "" {
		return message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func networkMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	return "network error"
}

// ResolveAssetURL returns an absolute URL for a photo or file
// reference: absolute http(s) references are returned unchanged,
// relative ones are joined onto the content origin. Empty stays empty.
func (c *Client) ResolveAssetURL(reference string) string {
	if reference == "" {
		return ""
	}
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		return reference
	}
	return c.contentURL.JoinPath(strings.TrimPrefix(reference, "/")).String()
}
