// Package resource loads page and subresource bytes for a tab.
package resource

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	stdnet "tabscript/std/net"
)

// ErrUnsupportedScheme is returned for URLs no loader understands.
var ErrUnsupportedScheme = errors.New("unsupported URL scheme")

const viewSourcePrefix = "view-source:"

// Request describes one fetch. An empty Method means GET.
type Request struct {
	Method string
	URL    string
	Body   []byte
	Header http.Header
}

// Response is a fully read resource.
type Response struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
}

// Fetcher retrieves resources by URL.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// DefaultFetcher handles http(s), file and data URLs, and the view-source:
// prefix. GET responses with a max-age are cached when a cache is set.
type DefaultFetcher struct {
	client *stdnet.Client
	cache  *Cache
	logger *zap.Logger
}

type Option func(*DefaultFetcher)

// WithCache enables response caching.
func WithCache(c *Cache) Option {
	return func(f *DefaultFetcher) { f.cache = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(f *DefaultFetcher) {
		if logger != nil {
			f.logger = logger.Named("fetcher")
		}
	}
}

// NewFetcher creates a DefaultFetcher. A nil client gets the defaults.
func NewFetcher(client *stdnet.Client, opts ...Option) *DefaultFetcher {
	if client == nil {
		client = stdnet.NewClient("", 0)
	}
	f := &DefaultFetcher{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the resource named by req.URL.
func (f *DefaultFetcher) Fetch(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)

	if inner, ok := strings.CutPrefix(req.URL, viewSourcePrefix); ok {
		req.URL = inner
		resp, err := f.Fetch(ctx, req)
		if err != nil {
			return nil, err
		}
		return viewSource(resp), nil
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", req.URL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.fetchHTTP(ctx, req)
	case "file":
		return fetchFile(u)
	case "data":
		return fetchData(req.URL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}

func (f *DefaultFetcher) fetchHTTP(ctx context.Context, req Request) (*Response, error) {
	cacheable := f.cache != nil && req.Method == http.MethodGet
	if cacheable {
		if resp, ok := f.cache.Get(req.URL); ok {
			f.logger.Debug("cache hit", zap.String("url", req.URL))
			return resp, nil
		}
	}

	r, err := f.client.Do(ctx, req.Method, req.URL, req.Body, req.Header)
	if err != nil {
		return nil, err
	}
	resp := &Response{
		URL:         req.URL,
		StatusCode:  r.StatusCode,
		Header:      r.Header,
		ContentType: r.Header.Get("Content-Type"),
		Body:        r.Body,
	}
	f.logger.Debug("fetched",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", r.StatusCode),
		zap.Int("bytes", len(r.Body)))

	if cacheable {
		f.cache.Store(req.URL, resp)
	}
	return resp, nil
}

func fetchFile(u *url.URL) (*Response, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	data, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Response{
		URL:         u.String(),
		StatusCode:  http.StatusOK,
		Header:      http.Header{},
		ContentType: contentTypeForPath(path),
		Body:        data,
	}, nil
}

func contentTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".js":
		return "text/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	}
	return "text/plain"
}

// fetchData decodes data:[<mediatype>][;base64],<data>.
func fetchData(raw string) (*Response, error) {
	rest := raw[len("data:"):]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL: missing comma")
	}
	contentType := "text/plain;charset=US-ASCII"
	isBase64 := false
	if meta != "" {
		params := strings.Split(meta, ";")
		if params[len(params)-1] == "base64" {
			isBase64 = true
			params = params[:len(params)-1]
		}
		if len(params) > 0 && params[0] != "" {
			contentType = strings.Join(params, ";")
		}
	}

	var body []byte
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URL: %w", err)
		}
		body = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URL: %w", err)
		}
		body = []byte(unescaped)
	}
	return &Response{
		URL:         raw,
		StatusCode:  http.StatusOK,
		Header:      http.Header{},
		ContentType: contentType,
		Body:        body,
	}, nil
}

// viewSource turns a response into a page that displays its text.
func viewSource(resp *Response) *Response {
	out := *resp
	out.URL = viewSourcePrefix + resp.URL
	out.ContentType = "text/html"
	out.Body = []byte("<html><body><pre>" + html.EscapeString(string(resp.Body)) + "</pre></body></html>")
	return &out
}

// NormalizeURL accepts what a user types: absolute URLs pass through,
// anything else is treated as a local file path.
func NormalizeURL(s string) (string, error) {
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return s, nil
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", s, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
