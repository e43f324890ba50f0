package host

import (
	"fmt"
	"strings"

	stdnet "tabscript/std/net"
)

// contentPolicy is the default-src list of a Content-Security-Policy.
// A nil policy allows everything.
type contentPolicy struct {
	sources []string
}

// parseCSP extracts default-src from a policy header. Other directives
// are ignored.
func parseCSP(header string) *contentPolicy {
	for _, directive := range strings.Split(header, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "default-src") {
			continue
		}
		return &contentPolicy{sources: fields[1:]}
	}
	return nil
}

func policyFromList(sources []string) *contentPolicy {
	if len(sources) == 0 {
		return nil
	}
	return &contentPolicy{sources: append([]string(nil), sources...)}
}

func (p *contentPolicy) allows(pageURL, target string) bool {
	if p == nil {
		return true
	}
	targetOrigin := stdnet.Origin(target)
	targetHost := stdnet.Host(target)
	for _, src := range p.sources {
		switch strings.ToLower(src) {
		case "'none'":
			return false
		case "*":
			return true
		case "'self'":
			if targetOrigin == stdnet.Origin(pageURL) {
				return true
			}
			continue
		}
		src = strings.TrimSuffix(strings.ToLower(src), "/")
		if strings.Contains(src, "://") {
			if src == targetOrigin {
				return true
			}
		} else if src == targetHost {
			return true
		}
	}
	return false
}

// checkRequest applies the same-origin rule and the page policy to a
// script-initiated request for target.
func (t *Tab) checkRequest(target string) error {
	if !t.cfg.AllowCrossOrigin && stdnet.Origin(target) != stdnet.Origin(t.url) {
		return fmt.Errorf("%w: %s from %s", ErrCrossOrigin, target, t.url)
	}
	if !t.csp.allows(t.url, target) {
		return fmt.Errorf("%w: %s", ErrBlockedByCSP, target)
	}
	return nil
}
