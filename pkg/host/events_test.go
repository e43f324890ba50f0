package host

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bubblePage = `<body><div id="outer"><p id="inner"><a id="link" href="/next">go</a></p></div>
<script>
	function log(name) {
		return function (e) { console.log(name + " " + e.type + " " + this.handle); };
	}
	inner.addEventListener("ping", log("inner"));
	outer.addEventListener("ping", log("outer"));
</script></body>`

func TestDispatchEventBubbles(t *testing.T) {
	tab := openPage(t, bubblePage)
	hs, err := tab.Query("#inner, #outer")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	outer, inner := hs[0], hs[1]

	doDefault, err := tab.DispatchEvent(inner, "ping")
	require.NoError(t, err)
	assert.True(t, doDefault)
	assert.Equal(t, []string{
		"inner ping " + strconv.Itoa(int(inner)),
		"outer ping " + strconv.Itoa(int(outer)),
	}, tab.Console())
}

func TestStopPropagationAndPreventDefault(t *testing.T) {
	tab := openPage(t, bubblePage+`<script>
		inner.addEventListener("ping", function (e) { e.stopPropagation(); });
		outer.addEventListener("veto", function (e) { e.preventDefault(); });
	</script>`)
	hs, err := tab.Query("#inner")
	require.NoError(t, err)

	doDefault, err := tab.DispatchEvent(hs[0], "ping")
	require.NoError(t, err)
	assert.True(t, doDefault)
	assert.Len(t, tab.Console(), 1, "outer must not hear a stopped event")

	doDefault, err = tab.DispatchEvent(hs[0], "veto")
	require.NoError(t, err)
	assert.False(t, doDefault, "an ancestor preventing default vetoes the action")
}

func TestListenerErrorsPropagate(t *testing.T) {
	tab := openPage(t, `<p id="p"></p><script>
		p.addEventListener("click", function () { throw new Error("listener broke"); });
	</script>`)
	hs, err := tab.Query("#p")
	require.NoError(t, err)

	_, err = tab.DispatchEvent(hs[0], "click")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener broke")
}

func TestClickFollowsLinks(t *testing.T) {
	srv := newServer(t, map[string]http.HandlerFunc{"/dir/page": serveHTML(bubblePage)})
	tab := openTab(t, testConfig(), srv.URL+"/dir/page")

	require.NoError(t, tab.ClickSelector("#link"))
	assert.Equal(t, []string{srv.URL + "/next"}, tab.Navigations())

	assert.Error(t, tab.ClickSelector("#nothing"))
}

func TestPreventedClickDoesNotNavigate(t *testing.T) {
	tab := openPage(t, bubblePage+`<script>
		outer.addEventListener("click", function (e) { e.preventDefault(); console.log("vetoed"); });
	</script>`)
	hs, err := tab.Query("#link")
	require.NoError(t, err)

	require.NoError(t, tab.Click(hs[0]))
	assert.Empty(t, tab.Navigations())
	assert.Equal(t, []string{"vetoed"}, tab.Console())
}
