package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	stdnet "tabscript/std/net"
)

func TestFetchHTTPWithCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/cached" {
			w.Header().Set("Cache-Control", "public, max-age=60")
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("body " + r.URL.Path))
	}))
	defer srv.Close()

	cache := NewCache(8)
	f := NewFetcher(stdnet.NewClient("", time.Second), WithCache(cache), WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp, err := f.Fetch(ctx, Request{URL: srv.URL + "/cached"})
		require.NoError(t, err)
		assert.Equal(t, "body /cached", string(resp.Body))
		assert.Equal(t, "text/plain", resp.ContentType)
	}
	assert.Equal(t, int32(1), hits.Load(), "max-age response should be served from cache")
	assert.Equal(t, uint64(2), cache.Hits())

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(ctx, Request{URL: srv.URL + "/fresh"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load(), "responses without max-age are refetched")

	_, err := f.Fetch(ctx, Request{Method: "post", URL: srv.URL + "/cached"})
	require.NoError(t, err)
	assert.Equal(t, int32(4), hits.Load(), "POST bypasses the cache")
}

func TestFetchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>local</p>"), 0o644))

	u, err := NormalizeURL(path)
	require.NoError(t, err)
	assert.Contains(t, u, "file://")

	resp, err := NewFetcher(nil).Fetch(context.Background(), Request{URL: u})
	require.NoError(t, err)
	assert.Equal(t, "<p>local</p>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType)

	_, err = NewFetcher(nil).Fetch(context.Background(), Request{URL: u + ".missing"})
	assert.Error(t, err)
}

func TestFetchData(t *testing.T) {
	f := NewFetcher(nil)
	resp, err := f.Fetch(context.Background(), Request{URL: "data:text/html,%3Cp%3Ehi%3C%2Fp%3E"})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType)

	resp, err = f.Fetch(context.Background(), Request{URL: "data:;base64,aGVsbG8="})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(resp.Body))
	assert.Equal(t, "text/plain;charset=US-ASCII", resp.ContentType)

	_, err = f.Fetch(context.Background(), Request{URL: "data:text/plain"})
	assert.Error(t, err)
}

func TestFetchViewSource(t *testing.T) {
	resp, err := NewFetcher(nil).Fetch(context.Background(), Request{URL: "view-source:data:text/html,<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, "<html><body><pre>&lt;b&gt;x&lt;/b&gt;</pre></body></html>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "view-source:data:text/html,<b>x</b>", resp.URL)
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), Request{URL: "gopher://example.org/"})
	assert.True(t, errors.Is(err, ErrUnsupportedScheme))
}

func TestMaxAge(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
		ok     bool
	}{
		{"max-age=10", 10 * time.Second, true},
		{"private, MAX-AGE=5", 5 * time.Second, true},
		{"max-age=0", 0, false},
		{"no-store, max-age=10", 0, false},
		{"max-age=abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := MaxAge(http.Header{"Cache-Control": {tt.header}})
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestCacheCapacity(t *testing.T) {
	c := NewCache(1)
	h := http.Header{"Cache-Control": {"max-age=60"}}
	assert.True(t, c.Store("a", &Response{Header: h}))
	assert.True(t, c.Store("b", &Response{Header: h}))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry evicted")
	assert.False(t, c.Store("c", &Response{Header: http.Header{}}))
}
