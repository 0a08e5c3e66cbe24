package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/entrhq/pagechat/pkg/types"
	"github.com/gobwas/glob"
)

// HostPolicy rejects hosts matching any of a set of glob patterns, such as
// "*.internal" or "localhost".
type HostPolicy struct {
	patterns []string
	globs    []glob.Glob
}

// NewHostPolicy compiles patterns. Labels are separated by '.', so "*" does
// not cross a dot while "**" does.
func NewHostPolicy(patterns []string) (*HostPolicy, error) {
	policy := &HostPolicy{}
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid host pattern %q: %w", pattern, err)
		}
		policy.patterns = append(policy.patterns, pattern)
		policy.globs = append(policy.globs, g)
	}
	return policy, nil
}

// Blocked returns the first pattern matching host, if any.
func (p *HostPolicy) Blocked(host string) (string, bool) {
	if p == nil {
		return "", false
	}
	host = strings.ToLower(host)
	for i, g := range p.globs {
		if g.Match(host) {
			return p.patterns[i], true
		}
	}
	return "", false
}

// Patterns returns the compiled patterns.
func (p *HostPolicy) Patterns() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.patterns...)
}

// ValidateURL checks that raw is an absolute http or https URL with a host
// and that the host is not blocked by policy. A nil policy allows every host.
// Nothing is fetched.
func ValidateURL(raw string, policy *HostPolicy) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &types.ValidationError{Input: raw, Reason: "url is empty"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, &types.ValidationError{Input: raw, Reason: err.Error()}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return nil, &types.ValidationError{Input: raw, Reason: "missing scheme (use http:// or https://)"}
	}
	if scheme != "http" && scheme != "https" {
		return nil, &types.ValidationError{Input: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, &types.ValidationError{Input: raw, Reason: "missing host"}
	}

	if pattern, blocked := policy.Blocked(u.Hostname()); blocked {
		return nil, &types.ValidationError{Input: raw, Reason: fmt.Sprintf("host is blocked by pattern %q", pattern)}
	}

	u.Scheme = scheme
	return u, nil
}
