package host

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXHRSyncAndAsync(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(`<script>
			var x = new XMLHttpRequest();
			x.open("GET", "/data", false);
			x.send();
			console.log("sync " + x.responseText);

			var y = new XMLHttpRequest();
			y.open("POST", "/echo");
			y.onload = function (ev) { console.log("async " + this.responseText + " " + ev.type); };
			y.send("ping");
			console.log("sent");
		</script>`),
		"/data": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "payload")
		},
		"/echo": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_, _ = io.WriteString(w, r.Method+":"+string(body))
		},
	})

	tab := openTab(t, testConfig(), srv.URL+"/")
	lines := waitConsole(t, tab, 3)
	assert.Equal(t, []string{"sync payload", "sent", "async POST:ping load"}, lines)
}

func TestAsyncXHRFailureIsNotDelivered(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(`<script>
			var x = new XMLHttpRequest();
			x.open("GET", "/missing");
			x.onload = function () { console.log("loaded"); };
			x.send();
			var y = new XMLHttpRequest();
			y.open("GET", "/ok");
			y.onload = function () { console.log("ok"); };
			y.send();
		</script>`),
		"/missing": http.NotFound,
		"/ok": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "fine")
		},
	})

	tab := openTab(t, testConfig(), srv.URL+"/")
	waitConsole(t, tab, 1)
	assert.Equal(t, []string{"ok"}, tab.Console())
	assert.Empty(t, tab.Errors())
}

func crossOriginPage(other string) string {
	return `<script>
		var x = new XMLHttpRequest();
		x.open("GET", "` + other + `/data", false);
		try {
			x.send();
			console.log("got " + x.responseText);
		} catch (e) {
			console.log("refused: " + e.message);
		}
	</script>`
}

func TestXHRSameOriginRule(t *testing.T) {
	other := newServer(t, map[string]http.HandlerFunc{
		"/data": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "secret")
		},
	})
	page := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(crossOriginPage(other.URL)),
	})

	tab := openTab(t, testConfig(), page.URL+"/")
	require.Len(t, tab.Console(), 1)
	assert.Contains(t, tab.Console()[0], "refused: ")
	assert.Contains(t, tab.Console()[0], ErrCrossOrigin.Error())

	cfg := testConfig()
	cfg.AllowCrossOrigin = true
	tab = openTab(t, cfg, page.URL+"/")
	assert.Equal(t, []string{"got secret"}, tab.Console())
}

func TestContentSecurityPolicy(t *testing.T) {
	other := newServer(t, map[string]http.HandlerFunc{
		"/data": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "secret")
		},
		"/lib.js": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `console.log("lib ran")`)
		},
	})
	page := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(`<script src="`+other.URL+`/lib.js"></script><script src="/own.js"></script>`+crossOriginPage(other.URL),
			"Content-Security-Policy", "default-src 'self'"),
		"/own.js": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `console.log("own ran")`)
		},
	})

	cfg := testConfig()
	cfg.AllowCrossOrigin = true
	tab := openTab(t, cfg, page.URL+"/")
	lines := tab.Console()
	require.Len(t, lines, 2)
	assert.Equal(t, "own ran", lines[0])
	assert.Contains(t, lines[1], ErrBlockedByCSP.Error())

	// The configured policy applies when the page sends none.
	plain := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(crossOriginPage(other.URL)),
	})
	cfg.CSPDefaultSrc = []string{"'self'", other.URL}
	tab = openTab(t, cfg, plain.URL+"/")
	assert.Equal(t, []string{"got secret"}, tab.Console())
}

func TestCookies(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{
		"/": serveHTML(`<script>
			console.log(document.cookie);
			document.cookie = "lang=en";
			document.cookie = "session=stolen";
			console.log(document.cookie);
			var x = new XMLHttpRequest();
			x.open("GET", "/whoami", false);
			x.send();
			console.log(x.responseText);
		</script>`,
			"Set-Cookie", "session=abc; HttpOnly",
			"Set-Cookie", "theme=dark"),
		"/whoami": func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, r.Header.Get("Cookie"))
		},
	})

	tab := openTab(t, testConfig(), srv.URL+"/")
	assert.Equal(t, []string{
		"theme=dark",
		"theme=dark; lang=en",
		"session=abc; theme=dark; lang=en",
	}, tab.Console())
}
