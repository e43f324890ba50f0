// Package host is a reference host for the script bridge: one Tab owns a
// parsed document, a cookie jar, canvas surfaces and a goja_nodejs event
// loop, and answers every gate call the bridge makes.
//
// All script work happens on the loop goroutine. Public methods that
// touch tab state hop onto the loop through Do, so they must not be
// called from inside a loop callback such as a frame observer.
package host

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tabscript/pkg/config"
	"tabscript/pkg/html"
	"tabscript/pkg/js"
	"tabscript/pkg/render"
	"tabscript/pkg/resource"
	stdnet "tabscript/std/net"
)

// Tab is one loaded page and the script context running against it.
type Tab struct {
	id      string
	cfg     config.HostConfig
	logger  *zap.Logger
	fetcher resource.Fetcher
	client  *stdnet.Client
	url     string
	csp     *contentPolicy
	jar     *cookieJar

	loop   *eventloop.EventLoop
	engine *js.Engine
	bridge *js.Bridge

	// Loop goroutine only.
	doc          *html.Document
	handles      *handleTable
	idGlobals    map[string]*html.Node
	surfaces     map[*html.Node]*render.Surface
	oversized    map[*html.Node]bool
	framePending bool
	frames       int

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
	stopped chan struct{}

	mu          sync.Mutex
	vm          *goja.Runtime
	closed      bool
	console     []string
	errs        []error
	navigations []string
	observers   []func(Frame)
	onConsole   func(string)
}

// Frame describes one animation frame after its callbacks ran.
type Frame struct {
	Number int
	// Image stacks every canvas that has been drawn on, top to bottom.
	// It is a copy and may be kept.
	Image *image.NRGBA
}

type Option func(*Tab)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tab) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithFetcher replaces the default network, file and data loader.
func WithFetcher(f resource.Fetcher) Option {
	return func(t *Tab) { t.fetcher = f }
}

// WithConsole receives every console line on the loop goroutine.
func WithConsole(fn func(line string)) Option {
	return func(t *Tab) { t.onConsole = fn }
}

// WithFrameObserver is OnFrame for observers that must see the first
// frame.
func WithFrameObserver(fn func(Frame)) Option {
	return func(t *Tab) { t.observers = append(t.observers, fn) }
}

// Open loads rawURL (a URL or a local path), starts the tab's event loop
// and runs the page scripts in document order. A failing script is
// recorded in Errors and the next one still runs.
func Open(ctx context.Context, cfg config.HostConfig, rawURL string, opts ...Option) (*Tab, error) {
	pageURL, err := resource.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	t := &Tab{
		id:        uuid.NewString(),
		cfg:       cfg,
		logger:    zap.NewNop(),
		url:       pageURL,
		jar:       newCookieJar(),
		handles:   newHandleTable(),
		idGlobals: make(map[string]*html.Node),
		surfaces:  make(map[*html.Node]*render.Surface),
		oversized: make(map[*html.Node]bool),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.Named("tab").With(zap.String("tab", t.id))
	if t.fetcher == nil {
		t.client = stdnet.NewClient(cfg.UserAgent, cfg.RequestTimeout)
		var fopts []resource.Option
		if cfg.CacheEnabled {
			fopts = append(fopts, resource.WithCache(resource.NewCache(cfg.CacheMaxEntries)))
		}
		fopts = append(fopts, resource.WithLogger(t.logger))
		t.fetcher = resource.NewFetcher(t.client, fopts...)
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())

	page, err := t.fetch(ctx, resource.Request{URL: pageURL})
	if err != nil {
		t.cancel()
		return nil, fmt.Errorf("loading %s: %w", pageURL, err)
	}
	if header := page.Header.Get("Content-Security-Policy"); header != "" {
		t.csp = parseCSP(header)
	} else {
		t.csp = policyFromList(cfg.CSPDefaultSrc)
	}
	t.doc, err = html.Parse(string(page.Body))
	if err != nil {
		t.cancel()
		return nil, err
	}
	scripts := t.loadScripts(ctx)

	t.loop = eventloop.NewEventLoop(eventloop.EnableConsole(false))
	t.loop.Start()
	stop := context.AfterFunc(ctx, func() { t.interrupt(ctx.Err()) })
	err = t.run(func(vm *goja.Runtime) {
		t.mu.Lock()
		t.vm = vm
		t.mu.Unlock()
		t.engine = js.NewEngine(vm, t, js.WithLogger(t.logger))
		t.bridge = t.engine.Bridge()
		t.addGlobals(t.doc.Root)
		for _, s := range scripts {
			if ctx.Err() != nil {
				return
			}
			if _, err := t.engine.Run(s.name, s.src); err != nil {
				t.reportError(fmt.Errorf("%s: %w", s.name, err))
			}
		}
	})
	stop()
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("running scripts of %s: %w", pageURL, ctx.Err())
	}
	if err != nil {
		t.Close()
		return nil, err
	}
	t.logger.Info("page loaded", zap.String("url", pageURL), zap.Int("scripts", len(scripts)))
	return t, nil
}

type pageScript struct {
	name string
	src  string
}

// loadScripts resolves external scripts before the loop starts. Scripts
// that fail to load or are blocked by policy are skipped with a warning.
func (t *Tab) loadScripts(ctx context.Context) []pageScript {
	out := make([]pageScript, 0, len(t.doc.Scripts))
	for i, s := range t.doc.Scripts {
		if s.Src == "" {
			out = append(out, pageScript{name: fmt.Sprintf("%s#script%d", t.url, i), src: s.Text})
			continue
		}
		src := stdnet.ResolveURL(t.url, s.Src)
		if !t.csp.allows(t.url, src) {
			t.logger.Warn("script blocked by content security policy", zap.String("src", src))
			continue
		}
		resp, err := t.fetch(ctx, resource.Request{URL: src})
		if err != nil {
			t.logger.Warn("script failed to load", zap.String("src", src), zap.Error(err))
			continue
		}
		out = append(out, pageScript{name: src, src: string(resp.Body)})
	}
	return out
}

// fetch sends the jar's cookies for the target host and records any the
// response sets.
func (t *Tab) fetch(ctx context.Context, req resource.Request) (*resource.Response, error) {
	host := stdnet.Host(req.URL)
	if cookie := t.jar.header(host); cookie != "" {
		if req.Header == nil {
			req.Header = http.Header{}
		}
		req.Header.Set("Cookie", cookie)
	}
	resp, err := t.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	t.jar.setFromResponse(host, resp.Header)
	return resp, nil
}

func (t *Tab) ID() string { return t.id }

func (t *Tab) URL() string { return t.url }

// Done is closed when the tab closes.
func (t *Tab) Done() <-chan struct{} { return t.done }

// Do runs fn on the loop goroutine and waits for it. fn may use Bridge.
func (t *Tab) Do(fn func() error) error {
	res := make(chan error, 1)
	if err := t.post(func() { res <- fn() }); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-t.done:
		return ErrClosed
	}
}

func (t *Tab) run(fn func(vm *goja.Runtime)) error {
	res := make(chan struct{})
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.loop.RunOnLoop(func(vm *goja.Runtime) {
		defer close(res)
		fn(vm)
	})
	t.mu.Unlock()
	select {
	case <-res:
		return nil
	case <-t.done:
		return ErrClosed
	}
}

// post queues fn on the loop without waiting.
func (t *Tab) post(fn func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.loop.RunOnLoop(func(*goja.Runtime) {
		if !t.isClosed() {
			fn()
		}
	})
	return nil
}

func (t *Tab) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// interrupt aborts whatever script is running on the loop. With nothing
// running, the next script to start is aborted instead.
func (t *Tab) interrupt(reason any) {
	t.mu.Lock()
	vm := t.vm
	t.mu.Unlock()
	if vm != nil {
		vm.Interrupt(reason)
	}
}

// Bridge returns the script bridge. Use it only inside Do.
func (t *Tab) Bridge() *js.Bridge { return t.bridge }

// RunFor lets the loop run for d, returning early when ctx is done or the
// tab closes.
func (t *Tab) RunFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrClosed
	}
}

// Close interrupts a running script, stops the loop, cancels outstanding
// requests and drops pending timers. It is safe to call more than once
// and from any goroutine except the loop's. Every call returns only once
// the loop has stopped.
func (t *Tab) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.stopped
		return
	}
	t.closed = true
	close(t.done)
	t.mu.Unlock()

	t.interrupt(ErrClosed)
	t.cancel()
	t.wg.Wait()
	if t.loop != nil {
		t.loop.Terminate()
	}
	if t.client != nil {
		t.client.CloseIdleConnections()
	}
	close(t.stopped)
	t.logger.Debug("tab closed")
}

// Console returns the console lines logged so far.
func (t *Tab) Console() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.console...)
}

// Errors returns script failures raised by page scripts and entry points.
func (t *Tab) Errors() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]error(nil), t.errs...)
}

// Navigations lists URLs the page asked to navigate to by link clicks.
func (t *Tab) Navigations() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.navigations...)
}

// OnFrame registers fn to run on the loop goroutine after every frame.
func (t *Tab) OnFrame(fn func(Frame)) {
	t.mu.Lock()
	t.observers = append(t.observers, fn)
	t.mu.Unlock()
}

func (t *Tab) reportError(err error) {
	if err == nil {
		return
	}
	var entry *js.EntryError
	if errors.As(err, &entry) {
		t.logger.Warn("script callback failed", zap.String("entry", entry.Entry), zap.Error(entry.Err))
	} else {
		t.logger.Warn("script failed", zap.Error(err))
	}
	t.mu.Lock()
	t.errs = append(t.errs, err)
	t.mu.Unlock()
}

func (t *Tab) logConsole(line string) {
	t.logger.Info("console", zap.String("message", line))
	t.mu.Lock()
	t.console = append(t.console, line)
	fn := t.onConsole
	t.mu.Unlock()
	if fn != nil {
		fn(line)
	}
}

func (t *Tab) connected(n *html.Node) bool {
	return t.doc.Root.Contains(n)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
