package smpresolver

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/insaplace/smpresolver/peppolid"
	"github.com/insaplace/smpresolver/smldns"
	"github.com/insaplace/smpresolver/smphttp"
	"github.com/insaplace/smpresolver/smpxml"
)

// businessCardPaths returns the five URL path shapes probed for a
// participant's business card, in the fixed order the SMP ecosystem
// settled on historically.
func businessCardPaths(pid peppolid.Identifier) []string {
	plain := pid.PeppolString()
	encoded := url.PathEscape(plain)
	return []string{
		"/businesscard/" + plain,
		"/" + encoded + "/businesscard",
		"/smp/businesscard/" + encoded,
		"/api/businesscard/" + encoded,
		"/rest/businesscard/" + encoded,
	}
}

// probeBusinessCard tries each of the five URL shapes against base's host,
// HTTPS first then HTTP. Fast-fail: a transport-level failure (timeout,
// connection refused/reset — never an HTTP status response) on HTTPS
// aborts the remaining HTTPS attempts and moves on to HTTP; the same kind
// of failure on HTTP aborts the whole probe. The probe never surfaces an
// error: absence is reported as a nil *smpxml.BusinessEntity.
func probeBusinessCard(ctx context.Context, fetcher *smphttp.Fetcher, base smldns.BaseURL, pid peppolid.Identifier, timeout time.Duration) *smpxml.BusinessEntity {
	paths := businessCardPaths(pid)
	host := base.Host()

schemes:
	for _, scheme := range []string{"https", "http"} {
		for _, path := range paths {
			reqCtx, cancel := context.WithTimeout(ctx, timeout)
			resp, err := fetcher.Get(reqCtx, scheme+"://"+host+path)
			cancel()

			if err != nil {
				var transportErr *smphttp.TransportError
				if errors.As(err, &transportErr) {
					if scheme == "http" {
						return nil
					}
					continue schemes
				}
				// StatusError: the server answered, so it's reachable —
				// try the next pattern rather than fast-failing.
				continue
			}

			if entity := parseBusinessCardResponse(resp.Body); entity != nil {
				return entity
			}
		}
	}
	return nil
}

func parseBusinessCardResponse(body []byte) *smpxml.BusinessEntity {
	if len(body) == 0 || body[0] != '<' {
		return nil
	}
	entity, err := smpxml.ParseBusinessCard(body)
	if err != nil {
		return nil
	}
	return entity
}
