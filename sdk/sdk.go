// Package sdk is a client for the zk-email registry service. It resolves
// blueprints by slug, submits raw emails to the remote prover and waits until
// the proof has been generated.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public zk-email registry.
	DefaultBaseURL = "https://conductor.zk.email"
	// DefaultPollInterval is how often a pending proof is polled.
	DefaultPollInterval = 5 * time.Second
)

// SDK is an instance of the registry client.
type SDK struct {
	baseURL      string
	authToken    string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       zerolog.Logger
}

// Option configures an SDK.
type Option func(*SDK)

// WithBaseURL points the client to another registry deployment.
func WithBaseURL(baseURL string) Option {
	return func(s *SDK) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAuthToken sends token as a bearer token on every request.
func WithAuthToken(token string) Option {
	return func(s *SDK) {
		s.authToken = token
	}
}

// WithHTTPClient replaces the underlying http client. With WithAuthToken the
// client is copied and only its Transport is wrapped.
func WithHTTPClient(c *http.Client) Option {
	return func(s *SDK) {
		s.httpClient = c
	}
}

// WithPollInterval sets the interval between proof status requests.
func WithPollInterval(d time.Duration) Option {
	return func(s *SDK) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithLogger sets the logger used to report proof progress.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SDK) {
		s.logger = l
	}
}

// New returns an SDK instance. Without options it talks to DefaultBaseURL
// anonymously.
func New(opts ...Option) *SDK {
	s := &SDK{
		baseURL:      DefaultBaseURL,
		pollInterval: DefaultPollInterval,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: time.Minute}
	}
	if s.authToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: s.authToken,
			TokenType:   "Bearer",
		})
		c := *s.httpClient
		c.Transport = &oauth2.Transport{Source: ts, Base: s.httpClient.Transport}
		s.httpClient = &c
	}
	return s
}

// BaseURL returns the registry the SDK talks to.
func (s *SDK) BaseURL() string {
	return s.baseURL
}

// do sends a request to the registry. A non-nil body is sent as JSON. out may
// be nil, a *[]byte receiving the raw response, or a value to decode JSON into.
func (s *SDK) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	switch o := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*o = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decoding response of %s %s", method, path)
	}
	return nil
}
