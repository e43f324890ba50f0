package host

import (
	"go.uber.org/zap"

	"tabscript/pkg/js"
	"tabscript/pkg/resource"
	stdnet "tabscript/std/net"
)

// sendXHR checks the request against the page's origin and policy, then
// fetches inline (sync) or on a goroutine (async). An async response is
// delivered through RunXHROnload on the loop. Async failures are logged
// and never delivered.
func (t *Tab) sendXHR(args []any) (any, error) {
	const op = js.OpXHRSend
	method, err := argString(op, args, 0)
	if err != nil {
		return nil, err
	}
	rawURL, err := argString(op, args, 1)
	if err != nil {
		return nil, err
	}
	body, err := argString(op, args, 2)
	if err != nil {
		return nil, err
	}
	async, err := argBool(op, args, 3)
	if err != nil {
		return nil, err
	}
	h, err := argHandle(op, args, 4)
	if err != nil {
		return nil, err
	}

	target := stdnet.ResolveURL(t.url, rawURL)
	if err := t.checkRequest(target); err != nil {
		return nil, err
	}
	req := resource.Request{Method: method, URL: target}
	if body != "" {
		req.Body = []byte(body)
	}

	if !async {
		resp, err := t.fetch(t.ctx, req)
		if err != nil {
			return nil, err
		}
		return string(resp.Body), nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	t.wg.Add(1)
	t.mu.Unlock()
	go func() {
		defer t.wg.Done()
		resp, err := t.fetch(t.ctx, req)
		if err != nil {
			t.logger.Warn("async request failed", zap.String("url", target), zap.Error(err))
			return
		}
		text := string(resp.Body)
		if err := t.post(func() { t.reportError(t.bridge.RunXHROnload(text, h)) }); err != nil {
			t.logger.Debug("response dropped", zap.String("url", target), zap.Error(err))
		}
	}()
	return nil, nil
}
