// Package smpresolver resolves Peppol participant identifiers to the
// technical metadata required to exchange business documents with them:
// DNS NAPTR discovery of the authoritative SMP, HTTP retrieval of the
// participant's service catalog and endpoint metadata, optional business
// card and certificate enrichment, and registration-status
// classification.
//
// A Resolver is a pipeline orchestrator whose collaborators (DNS
// resolver, HTTP pool, certificate cache) are constructor-injected and
// safe to share across concurrent resolutions without additional locking
// beyond what each collaborator already does internally.
package smpresolver

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/insaplace/smpresolver/logger"
	"github.com/insaplace/smpresolver/smldns"
	"github.com/insaplace/smpresolver/smpcert"
	"github.com/insaplace/smpresolver/smphttp"
)

// DefaultHTTPTimeout bounds the main ServiceGroup/ServiceMetadata
// fetches.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultBusinessCardTimeout bounds each business-card probe attempt.
const DefaultBusinessCardTimeout = 5 * time.Second

// Config configures a Resolver. It is immutable after New returns;
// mutating a Config that has already been passed to New has no effect on
// the constructed Resolver.
type Config struct {
	// SMLDomain is the root SML zone. Defaults to smldns.DefaultSMLDomain.
	SMLDomain string
	// DNSServers is an ordered list of recursive resolvers, "host:port".
	// Defaults to the system resolver configuration.
	DNSServers []string
	// DNSTimeout bounds a single NAPTR query. Defaults to smldns.DefaultTimeout.
	DNSTimeout time.Duration
	// HTTPTimeout bounds the main ServiceGroup/ServiceMetadata fetches.
	// Defaults to DefaultHTTPTimeout.
	HTTPTimeout time.Duration
	// BusinessCardTimeout bounds each business-card probe attempt.
	// Defaults to DefaultBusinessCardTimeout.
	BusinessCardTimeout time.Duration
	// UserAgent is the value of the User-Agent header on every request.
	// Defaults to smphttp.DefaultUserAgent.
	UserAgent string
	// PerOriginConnections caps concurrent connections per SMP origin.
	// Defaults to smphttp.DefaultPerOriginConnections.
	PerOriginConnections int
	// TotalConnections caps total concurrent connections across all
	// origins. Defaults to smphttp.DefaultTotalConnections.
	TotalConnections int
	// CacheTTL is reserved for future use; it does not affect the
	// in-memory HTTP pool or certificate cache, both of which are
	// process-lifetime with no TTL.
	CacheTTL time.Duration

	// DocumentTypeLookup is the external Peppol document-type code-list,
	// consulted before the in-core pattern-matching fallback. Optional.
	DocumentTypeLookup DocumentTypeLookup
	// Observer receives a callback after every Resolve call. Optional.
	Observer ResolutionObserver
	// Logger receives per-stage diagnostic logging. Defaults to a no-op
	// logger.
	Logger *zap.Logger
	// Clock is the source of "now" for certificate expiry checks.
	// Defaults to the real wall clock.
	Clock clockwork.Clock
}

func (c Config) withDefaults() Config {
	if c.SMLDomain == "" {
		c.SMLDomain = smldns.DefaultSMLDomain
	}
	if c.DNSTimeout <= 0 {
		c.DNSTimeout = smldns.DefaultTimeout
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.BusinessCardTimeout <= 0 {
		c.BusinessCardTimeout = DefaultBusinessCardTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = smphttp.DefaultUserAgent
	}
	if c.PerOriginConnections <= 0 {
		c.PerOriginConnections = smphttp.DefaultPerOriginConnections
	}
	if c.TotalConnections <= 0 {
		c.TotalConnections = smphttp.DefaultTotalConnections
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return c
}

// smpLookuper is the DNS NAPTR-lookup collaborator a Resolver depends on.
// *smldns.Resolver satisfies it; tests substitute a stub so the
// orchestrator can be exercised without a real DNS round trip.
type smpLookuper interface {
	LookupSMP(ctx context.Context, hash string) (*smldns.BaseURL, error)
}

// Resolver drives the resolution pipeline. It is safe for concurrent
// use: the HTTP pool and certificate cache own their own synchronization,
// and Config is immutable once New has returned.
type Resolver struct {
	cfg Config

	dns          smpLookuper
	pool         *smphttp.Pool
	mainFetcher  *smphttp.Fetcher
	probeFetcher *smphttp.Fetcher
	certs        *smpcert.Parser

	clock  clockwork.Clock
	logger *zap.Logger
}

// New constructs a Resolver from cfg.
func New(cfg Config) (*Resolver, error) {
	cfg = cfg.withDefaults()

	dnsResolver, err := smldns.New(smldns.Config{
		SMLDomain: cfg.SMLDomain,
		Servers:   cfg.DNSServers,
		Timeout:   cfg.DNSTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("smpresolver: constructing DNS resolver: %w", err)
	}

	pool := smphttp.NewPool(cfg.PerOriginConnections, cfg.TotalConnections)

	return &Resolver{
		cfg:          cfg,
		dns:          dnsResolver,
		pool:         pool,
		mainFetcher:  smphttp.NewFetcher(pool, cfg.UserAgent),
		probeFetcher: smphttp.NewFetcher(pool, cfg.UserAgent),
		certs:        smpcert.NewParser(cfg.Clock),
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}, nil
}

// Close drains the HTTP connection pool and clears the certificate
// memoization cache. Resolve calls after Close have undefined behavior.
func (r *Resolver) Close() {
	r.pool.Close()
	r.certs.Clear()
}
