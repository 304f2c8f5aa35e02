package smldns

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL is a validated SMP base URL: scheme http or https, no userinfo,
// no query, no fragment, and with any single trailing '/' stripped so
// downstream path concatenation never produces "//".
type BaseURL struct {
	u *url.URL
}

// ParseBaseURL validates raw as an SMP base URL per the Peppol profile.
func ParseBaseURL(raw string) (BaseURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BaseURL{}, fmt.Errorf("smldns: invalid SMP URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return BaseURL{}, fmt.Errorf("smldns: SMP URL %q has unsupported scheme %q", raw, u.Scheme)
	}
	if u.User != nil {
		return BaseURL{}, fmt.Errorf("smldns: SMP URL %q carries userinfo", raw)
	}
	if u.RawQuery != "" {
		return BaseURL{}, fmt.Errorf("smldns: SMP URL %q carries a query", raw)
	}
	if u.Fragment != "" {
		return BaseURL{}, fmt.Errorf("smldns: SMP URL %q carries a fragment", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return BaseURL{u: u}, nil
}

// Hostname is the host component of the SMP base URL, exactly as it
// appeared in the NAPTR replacement — never rewritten. It never includes
// a port; use Host for that.
func (b BaseURL) Hostname() string {
	if b.u == nil {
		return ""
	}
	return b.u.Hostname()
}

// Host is the authority component of the SMP base URL, "host[:port]" —
// the form to reuse when composing a new URL against the same origin
// (e.g. scheme-swapping probes).
func (b BaseURL) Host() string {
	if b.u == nil {
		return ""
	}
	return b.u.Host
}

// String renders the validated, trailing-slash-stripped URL.
func (b BaseURL) String() string {
	if b.u == nil {
		return ""
	}
	return b.u.String()
}

// IsZero reports whether this is the zero BaseURL.
func (b BaseURL) IsZero() bool { return b.u == nil }
