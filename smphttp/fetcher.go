// Package smphttp performs pooled HTTP(S) GET requests against SMP
// servers: persistent origin-keyed connections, per-request timeouts, and
// bounded (at most one) redirect following per the Peppol profile.
//
// A single reusable Fetcher serves ServiceGroup, ServiceMetadata, and
// business-card requests alike.
package smphttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultUserAgent is used when no User-Agent is configured.
const DefaultUserAgent = "smp-resolver-ng/1.0"

// maxRedirects is the Peppol profile's redirect budget: at most one hop.
const maxRedirects = 1

// Response is the result of a successful (200) fetch.
type Response struct {
	URL        string // final URL, after the permitted redirect if any
	StatusCode int
	Body       []byte
	Redirects  int
}

// Fetcher issues GETs through a shared Pool with a fixed User-Agent. It
// applies no timeout of its own: each call is bounded by the ctx passed
// to Get, so per-request timeouts (e.g. 30s for main fetches, <=5s for
// business-card probes) are set by the caller. Several Fetchers may share
// the same Pool so connections are reused across them.
type Fetcher struct {
	pool      *Pool
	userAgent string
}

// NewFetcher builds a Fetcher backed by pool. userAgent defaults to
// DefaultUserAgent when empty.
func NewFetcher(pool *Pool, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{pool: pool, userAgent: userAgent}
}

// Get performs a GET against rawURL, following at most one redirect, and
// returns the response body on 200. Other non-redirect responses return a
// *StatusError; network/TLS/body-read/redirect-overflow failures return
// a *TransportError. ctx bounds every request made as part of this
// call, including the optional redirect hop.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	return f.get(ctx, rawURL, 0)
}

func (f *Fetcher) get(ctx context.Context, rawURL string, redirectsFollowed int) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	origin := u.Scheme + "://" + u.Host
	transport := f.pool.transportFor(origin)
	release, err := f.pool.acquire(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml")

	client := &http.Client{
		Transport: transport,
		// We want to inspect 3xx responses ourselves (Location, hop
		// budget) rather than have net/http follow them silently.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if redirectsFollowed >= maxRedirects {
			return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("redirect budget exceeded")}
		}
		location := resp.Header.Get("Location")
		if location == "" {
			return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("redirect response missing Location")}
		}
		next, err := u.Parse(location)
		if err != nil {
			return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("invalid redirect Location: %w", err)}
		}
		return f.get(ctx, next.String(), redirectsFollowed+1)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(rawURL, resp.StatusCode)
	}

	return &Response{URL: rawURL, StatusCode: resp.StatusCode, Body: body, Redirects: redirectsFollowed}, nil
}
