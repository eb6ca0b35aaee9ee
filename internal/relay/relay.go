// Package relay forwards browser requests to upstream providers, attaching
// the server-held credentials the browser must never see.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PathParam is the query parameter holding the upstream path.
const PathParam = "path"

var (
	// ErrUnknownTarget is returned for a provider with no relay target.
	ErrUnknownTarget = errors.New("unknown relay target")

	// ErrInvalidPath is returned when the upstream path is missing or not relative.
	ErrInvalidPath = errors.New("invalid relay path")

	// ErrTooLarge is returned when the upstream body exceeds the configured limit.
	ErrTooLarge = errors.New("upstream response too large")
)

// Target describes one upstream a relay may reach.
type Target struct {
	Name    string
	BaseURL string

	// PathPrefix is inserted between BaseURL and the client path, for
	// providers that carry their key as a path segment.
	PathPrefix string

	// Query holds credential parameters. Client values of the same names are
	// always replaced.
	Query map[string]string

	// Headers are set on every upstream request.
	Headers map[string]string

	// ContentType is used when the upstream does not send one.
	ContentType string
}

// Recorder counts relayed requests. Implemented by metrics.Collector.
type Recorder interface {
	RecordRelay(provider string, status int)
}

// Options configures a Relay.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	SafeURL   bool
	UserAgent string
	Recorder  Recorder
	Logger    *zap.Logger
}

// Response is a relayed upstream response.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Relay is a stateless forwarder. It never retries and never caches.
type Relay struct {
	targets  map[string]Target
	client   *resty.Client
	maxBytes int64
	recorder Recorder
	logger   *zap.Logger
}

// New creates a Relay over targets.
func New(targets []Target, opts Options) *Relay {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var client *resty.Client
	if opts.SafeURL {
		cfg := safeurl.GetConfigBuilder().
			SetTimeout(opts.Timeout).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		client = resty.NewWithClient(safeurl.Client(cfg).Client)
	} else {
		client = resty.New()
	}
	client.SetTimeout(opts.Timeout).SetRetryCount(0)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}

	return &Relay{
		targets:  byName,
		client:   client,
		maxBytes: opts.MaxBytes,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Targets returns the configured target names in order.
func (r *Relay) Targets() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Forward sends path with the client query to the named target. The returned
// Response carries the true upstream status, including 4xx and 5xx; an error
// is returned only when no upstream response could be obtained.
func (r *Relay) Forward(ctx context.Context, name, path string, query url.Values) (*Response, error) {
	target, ok := r.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}

	clean, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for k, vs := range query {
		if k == PathParam {
			continue
		}
		if _, credential := target.Query[k]; credential {
			continue
		}
		params[k] = append([]string(nil), vs...)
	}
	for k, v := range target.Query {
		params.Set(k, v)
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeaders(target.Headers).
		SetQueryParamsFromValues(params).
		SetDoNotParseResponse(true).
		Get(target.upstreamURL(clean))
	if err != nil {
		r.record(name, 0)
		r.logger.Warn("relay upstream unreachable",
			zap.String("target", name),
			zap.String("path", clean),
			zap.Error(err),
		)

		return nil, fmt.Errorf("relaying to %s: %w", name, err)
	}

	body, err := r.readBody(resp.RawBody())
	if err != nil {
		r.record(name, 0)

		return nil, fmt.Errorf("reading %s response: %w", name, err)
	}

	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = target.ContentType
	}
	r.record(name, resp.StatusCode())

	r.logger.Debug("relayed request",
		zap.String("target", name),
		zap.String("path", clean),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
	)

	return &Response{Status: resp.StatusCode(), ContentType: ct, Body: body}, nil
}

func (r *Relay) readBody(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()

	if r.maxBytes <= 0 {
		return io.ReadAll(rc)
	}

	body, err := io.ReadAll(io.LimitReader(rc, r.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > r.maxBytes {
		return nil, ErrTooLarge
	}

	return body, nil
}

func (r *Relay) record(name string, status int) {
	if r.recorder != nil {
		r.recorder.RecordRelay(name, status)
	}
}

func (t Target) upstreamURL(path string) string {
	base := strings.TrimRight(t.BaseURL, "/")
	if t.PathPrefix != "" {
		base += "/" + strings.Trim(t.PathPrefix, "/")
	}

	return base + path
}

// cleanPath accepts only a relative path that stays under the target base.
// The result always starts with a slash.
func cleanPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if strings.HasPrefix(path, "//") || strings.ContainsAny(path, "\\?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	u, err := url.Parse(path)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	decoded, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, seg := range strings.Split(decoded, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes the base path", ErrInvalidPath, path)
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path, nil
}

// StatusFor maps a Forward error to the HTTP status the relay answers with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownTarget):
		return http.StatusNotFound
	case errors.Is(err, ErrTooLarge):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
