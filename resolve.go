package smpresolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dchest/uniuri"
	"go.uber.org/zap"

	"github.com/insaplace/smpresolver/peppolid"
	"github.com/insaplace/smpresolver/smldns"
	"github.com/insaplace/smpresolver/smphttp"
	"github.com/insaplace/smpresolver/smpxml"
)

// Resolve runs the resolution pipeline for raw and returns a fully
// populated ResolutionResult. The returned error is non-nil only when ctx
// is canceled or its deadline is exceeded; every other failure mode —
// invalid input, DNS absence, SMP errors, parse failures — is reported
// inside the result per the documented state machine, never as a Go
// error, so callers never need to distinguish "resolution failed" from
// "resolution produced a negative result" via error handling.
func (r *Resolver) Resolve(ctx context.Context, raw string, opts ResolveOptions) (*ResolutionResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	correlationID := uniuri.New()
	log := r.logger.With(zap.String("correlation_id", correlationID), zap.String("participant", raw))

	id, err := peppolid.Parse(raw)
	if err != nil {
		result := &ResolutionResult{Status: StatusUnregistered, Error: "Invalid participant ID format"}
		log.Info("rejected invalid identifier", zap.Error(err))
		r.observe(id, result)
		return result, nil
	}

	result := &ResolutionResult{Identifier: id}

	base, err := r.dns.LookupSMP(ctx, id.Hash())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Status = StatusUnregistered
		result.Error = fmt.Sprintf("No SMP found via DNS lookup: %v", err)
		log.Warn("DNS lookup failed", zap.Error(err))
		r.observe(id, result)
		return result, nil
	}
	if base == nil {
		result.Status = StatusUnregistered
		result.Error = "No SMP found via DNS lookup"
		r.observe(id, result)
		return result, nil
	}

	result.SMPHostname = base.Hostname()
	result.IsRegistered = true
	result.Status = StatusParked // raised to active below on full success

	sgURL := base.String() + "/" + id.PeppolString()
	sgResp, err := r.fetchMain(ctx, sgURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if statusErr, ok := asStatusError(err); ok && statusErr.StatusCode() == http.StatusNotFound {
			r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
			r.observe(id, result)
			return result, nil
		}
		result.IsRegistered = false
		result.Status = StatusUnregistered
		result.Error = err.Error()
		log.Warn("ServiceGroup fetch failed", zap.Error(err))
		r.observe(id, result)
		return result, nil
	}

	sg, err := smpxml.ParseServiceGroup(sgResp.Body)
	if err != nil {
		result.IsRegistered = false
		result.Status = StatusUnregistered
		result.Error = err.Error()
		log.Warn("ServiceGroup parse failed", zap.Error(err))
		r.observe(id, result)
		return result, nil
	}

	if len(sg.MetadataReferences) == 0 {
		r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
		r.observe(id, result)
		return result, nil
	}

	if opts.FetchDocumentTypes {
		result.DocumentTypes = documentTypeSummaries(sg.MetadataReferences, r.cfg.DocumentTypeLookup)
	}

	firstHref := sg.MetadataReferences[0]
	smResp, err := r.fetchMain(ctx, firstHref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Diagnostics = append(result.Diagnostics, diagnosticFor(firstHref, err))
		r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
		r.observe(id, result)
		return result, nil
	}

	sm, err := smpxml.ParseServiceMetadata(smResp.Body)
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{URL: firstHref, StatusCode: smResp.StatusCode, Message: err.Error()})
		r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
		r.observe(id, result)
		return result, nil
	}

	if sm.RedirectHref != "" {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{URL: firstHref, StatusCode: smResp.StatusCode, Message: "ServiceMetadata redirects to " + sm.RedirectHref})
		r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
		r.observe(id, result)
		return result, nil
	}

	endpoint := firstEndpoint(sm)
	if endpoint == nil {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{URL: firstHref, StatusCode: smResp.StatusCode, Message: "ServiceMetadata carries no endpoints"})
		r.maybeProbeBusinessCard(ctx, result, *base, id, opts)
		r.observe(id, result)
		return result, nil
	}

	result.Status = StatusActive
	result.HasActiveEndpoints = true
	if opts.FetchDocumentTypes {
		result.Endpoint = endpoint
	}
	if opts.ParseCertificate && endpoint.Certificate != "" {
		if info, err := r.certs.Parse(endpoint.Certificate); err == nil {
			result.Certificate = info
		} else {
			log.Debug("certificate parse failed, absorbed", zap.Error(err))
		}
	}

	r.maybeProbeBusinessCard(ctx, result, *base, id, opts)

	r.observe(id, result)
	return result, nil
}

// fetchMain performs a single main-path fetch (ServiceGroup or
// ServiceMetadata) bounded by r.cfg.HTTPTimeout, the same per-attempt
// bounding businesscard_probe.go applies with r.cfg.BusinessCardTimeout.
func (r *Resolver) fetchMain(ctx context.Context, url string) (*smphttp.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.HTTPTimeout)
	defer cancel()
	return r.mainFetcher.Get(reqCtx, url)
}

func (r *Resolver) maybeProbeBusinessCard(ctx context.Context, result *ResolutionResult, base smldns.BaseURL, id peppolid.Identifier, opts ResolveOptions) {
	if !opts.IncludeBusinessCard {
		return
	}
	result.BusinessCard = probeBusinessCard(ctx, r.probeFetcher, base, id, r.cfg.BusinessCardTimeout)
}

func (r *Resolver) observe(id peppolid.Identifier, result *ResolutionResult) {
	if r.cfg.Observer == nil {
		return
	}
	r.cfg.Observer.ObserveResult(id, result)
}

func asStatusError(err error) (*smphttp.StatusError, bool) {
	var statusErr *smphttp.StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

func diagnosticFor(url string, err error) Diagnostic {
	code := 0
	if statusErr, ok := asStatusError(err); ok {
		code = statusErr.StatusCode()
	}
	return Diagnostic{URL: url, StatusCode: code, Message: err.Error()}
}

// firstEndpoint selects the first endpoint of the first process carrying
// any endpoints, in document order. No ranking or transport-profile
// filtering is applied.
func firstEndpoint(sm *smpxml.ServiceMetadata) *smpxml.Endpoint {
	for _, process := range sm.Processes {
		if len(process.Endpoints) > 0 {
			ep := process.Endpoints[0]
			return &ep
		}
	}
	return nil
}

// documentTypeSummaries derives a DocumentTypeSummary per ServiceGroup
// metadata-reference href, skipping hrefs whose trailing path segment
// does not decode to a "scheme::value" document identifier.
func documentTypeSummaries(hrefs []string, lookup DocumentTypeLookup) []DocumentTypeSummary {
	summaries := make([]DocumentTypeSummary, 0, len(hrefs))
	for _, href := range hrefs {
		docID, ok := documentIDFromHref(href)
		if !ok {
			continue
		}
		summaries = append(summaries, DocumentTypeSummary{
			DocumentID:   docID,
			FriendlyName: friendlyDocumentTypeName(docID.Value, lookup),
		})
	}
	return summaries
}

func documentIDFromHref(href string) (smpxml.DocumentID, bool) {
	parsed, err := url.Parse(href)
	if err != nil {
		return smpxml.DocumentID{}, false
	}
	segments := strings.Split(strings.TrimRight(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return smpxml.DocumentID{}, false
	}
	last := segments[len(segments)-1]
	decoded, err := url.PathUnescape(last)
	if err != nil {
		decoded = last
	}
	idx := strings.Index(decoded, "::")
	if idx <= 0 {
		return smpxml.DocumentID{}, false
	}
	return smpxml.DocumentID{Scheme: decoded[:idx], Value: decoded[idx+2:]}, true
}
