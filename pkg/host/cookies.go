package host

import (
	"net/http"
	"strings"
	"sync"
)

type storedCookie struct {
	name     string
	value    string
	httpOnly bool
}

// cookieJar keeps cookies per host in the order they were first set.
// Network goroutines write to it, so it carries its own lock.
type cookieJar struct {
	mu     sync.Mutex
	byHost map[string][]*storedCookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{byHost: make(map[string][]*storedCookie)}
}

// setFromResponse records every Set-Cookie header of a response.
func (j *cookieJar) setFromResponse(host string, header http.Header) {
	for _, line := range header.Values("Set-Cookie") {
		if c, err := http.ParseSetCookie(line); err == nil {
			j.store(host, c.Name, c.Value, c.HttpOnly, true)
		}
	}
}

// setFromScript handles a document.cookie write. Script cannot create an
// HttpOnly cookie or overwrite one.
func (j *cookieJar) setFromScript(host, line string) {
	c, err := http.ParseSetCookie(line)
	if err != nil || c.HttpOnly {
		return
	}
	j.store(host, c.Name, c.Value, false, false)
}

func (j *cookieJar) store(host, name, value string, httpOnly, fromNetwork bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range j.byHost[host] {
		if c.name != name {
			continue
		}
		if c.httpOnly && !fromNetwork {
			return
		}
		c.value = value
		c.httpOnly = httpOnly
		return
	}
	j.byHost[host] = append(j.byHost[host], &storedCookie{name: name, value: value, httpOnly: httpOnly})
}

// header is the Cookie request header for host.
func (j *cookieJar) header(host string) string {
	return j.join(host, true)
}

// scriptView is what document.cookie reads: HttpOnly cookies are hidden.
func (j *cookieJar) scriptView(host string) string {
	return j.join(host, false)
}

func (j *cookieJar) join(host string, includeHTTPOnly bool) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	var parts []string
	for _, c := range j.byHost[host] {
		if c.httpOnly && !includeHTTPOnly {
			continue
		}
		parts = append(parts, c.name+"="+c.value)
	}
	return strings.Join(parts, "; ")
}
