package host

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"tabscript/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() config.HostConfig {
	cfg := config.Default().Host
	cfg.FrameInterval = 5 * time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func dataURL(src string) string {
	return "data:text/html," + url.PathEscape(src)
}

func openTab(t *testing.T, cfg config.HostConfig, pageURL string, opts ...Option) *Tab {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	tab, err := Open(context.Background(), cfg, pageURL, opts...)
	require.NoError(t, err)
	t.Cleanup(tab.Close)
	return tab
}

func openPage(t *testing.T, src string, opts ...Option) *Tab {
	t.Helper()
	return openTab(t, testConfig(), dataURL(src), opts...)
}

func newServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range routes {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func serveHTML(src string, headers ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i+1 < len(headers); i += 2 {
			w.Header().Add(headers[i], headers[i+1])
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(src))
	}
}

func waitConsole(t *testing.T, tab *Tab, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(tab.Console()) >= n },
		2*time.Second, 5*time.Millisecond, "console: %v", tab.Console())
	return tab.Console()
}
