// Package source loads JSON documents from files and HTTP endpoints.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mcncl/jsontyper/internal/errors"
)

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// BasicAuth holds HTTP basic credentials.
type BasicAuth struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Spec names one JSON document and where to get it. URL is an http(s) URL,
// a file:// URL or a plain path.
type Spec struct {
	Name       string     `yaml:"name"`
	URL        string     `yaml:"url"`
	BasicAuth  *BasicAuth `yaml:"basic_auth,omitempty"`
	BearerAuth string     `yaml:"bearer_auth,omitempty"`
	Query      string     `yaml:"query,omitempty"`
}

// IsRemote reports whether the source is fetched over HTTP.
func (s Spec) IsRemote() bool {
	return strings.HasPrefix(s.URL, "http://") || strings.HasPrefix(s.URL, "https://")
}

// Fetcher loads documents.
type Fetcher struct {
	httpClient *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithTimeout bounds each remote request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.httpClient = &http.Client{Timeout: d}
	}
}

// NewFetcher creates a Fetcher using http.DefaultClient unless configured.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads s with a default Fetcher.
func Fetch(ctx context.Context, s Spec) ([]byte, error) {
	return NewFetcher().Fetch(ctx, s)
}

// Fetch loads the document of s and applies its jq query, if any.
func (f *Fetcher) Fetch(ctx context.Context, s Spec) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if s.IsRemote() {
		data, err = f.get(ctx, s)
	} else {
		data, err = readFile(strings.TrimPrefix(s.URL, "file://"))
	}
	if err != nil {
		return nil, err
	}

	if s.Query == "" {
		return data, nil
	}
	return Query(data, s.Query)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file not found: %s", path), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("error reading file %s", path), err)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, s Spec) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.NewFetchError(fmt.Sprintf("creating request for %s", s.Name), err)
	}
	req.Header.Set("Accept", "application/json")
	if s.BasicAuth != nil {
		req.SetBasicAuth(s.BasicAuth.User, s.BasicAuth.Password)
	}
	if s.BearerAuth != "" {
		req.Header.Set("Authorization", "Bearer "+s.BearerAuth)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Debug("source request failed",
			slog.String("source", s.Name),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, errors.NewFetchError(fmt.Sprintf("requesting %s", s.URL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.NewFetchError(
			fmt.Sprintf("%s returned %d: %s", s.URL, resp.StatusCode, strings.TrimSpace(string(body))),
			errors.ErrHTTPStatus,
		)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetchError(fmt.Sprintf("reading response from %s", s.URL), err)
	}

	slog.Debug("source fetched",
		slog.String("source", s.Name),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return data, nil
}
