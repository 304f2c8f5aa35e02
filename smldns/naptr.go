// Package smldns translates a participant hash into an SMP base URL by
// querying the Peppol SML's NAPTR records, the DNS-based directory that
// maps participants to their authoritative SMP.
//
// Built on github.com/miekg/dns, the de facto standard DNS library across
// the Go ecosystem (foxcpp/maddy, hashicorp/consul, coredns and others
// all depend on it for exactly this kind of record-level query).
package smldns

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DefaultSMLDomain is the production SML zone.
const DefaultSMLDomain = "edelivery.tech.ec.europa.eu"

// DefaultTimeout bounds a single NAPTR query.
const DefaultTimeout = 5 * time.Second

const metaSMPService = "meta:smp"

// metadataCategory is the fixed label segment between the participant
// hash and the SML domain.
const metadataCategory = "iso6523-actorid-upis"

// Config configures a Resolver.
type Config struct {
	// SMLDomain is the root SML zone. Defaults to DefaultSMLDomain.
	SMLDomain string
	// Servers is an ordered list of recursive DNS servers to query, each
	// "host:port". When empty, the system resolver configuration
	// (/etc/resolv.conf) is used.
	Servers []string
	// Timeout bounds a single NAPTR query. Defaults to DefaultTimeout.
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SMLDomain == "" {
		c.SMLDomain = DefaultSMLDomain
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Resolver issues NAPTR queries against the SML and extracts a validated
// SMP base URL. A Resolver is immutable after construction and safe for
// concurrent use.
type Resolver struct {
	cfg     Config
	servers []string
}

// New constructs a Resolver. When cfg.Servers is empty, the system
// resolver configuration is read once at construction time.
func New(cfg Config) (*Resolver, error) {
	cfg = cfg.withDefaults()

	servers := cfg.Servers
	if len(servers) == 0 {
		resolved, err := systemServers()
		if err != nil {
			return nil, fmt.Errorf("smldns: loading system resolver config: %w", err)
		}
		servers = resolved
	}
	if len(servers) == 0 {
		return nil, fmt.Errorf("smldns: no DNS servers configured and none found in system resolver config")
	}

	return &Resolver{cfg: cfg, servers: servers}, nil
}

func systemServers() ([]string, error) {
	clientConfig, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil {
		return nil, err
	}
	servers := make([]string, 0, len(clientConfig.Servers))
	for _, s := range clientConfig.Servers {
		servers = append(servers, net.JoinHostPort(s, clientConfig.Port))
	}
	return servers, nil
}

// LookupSMP resolves hash to a validated SMP base URL. A nil URL with a
// nil error means the participant is not registered (NXDOMAIN, no
// Meta:SMP record, or a validation failure on the extracted URL, which is
// treated as absence per the Peppol profile's best-effort contract).
// A non-nil error means the DNS lookup itself failed (timeout, SERVFAIL,
// malformed response transport).
func (r *Resolver) LookupSMP(ctx context.Context, hash string) (*BaseURL, error) {
	queryName := fmt.Sprintf("%s.%s.%s", hash, metadataCategory, r.cfg.SMLDomain)

	var lastErr error
	for _, server := range r.servers {
		records, absent, err := r.queryNAPTR(ctx, queryName, server)
		if err != nil {
			lastErr = err
			continue
		}
		if absent {
			return nil, nil
		}
		return extractURL(records), nil
	}
	return nil, lastErr
}

// queryNAPTR issues one NAPTR query against server. absent=true means an
// authoritative NXDOMAIN or an empty answer set — a successful
// non-registration, not an error.
func (r *Resolver) queryNAPTR(ctx context.Context, queryName, server string) (records []dns.NAPTR, absent bool, err error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(queryName), dns.TypeNAPTR)
	m.RecursionDesired = true

	client := &dns.Client{Timeout: r.cfg.Timeout}
	queryCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	in, _, err := client.ExchangeContext(queryCtx, m, server)
	if err != nil {
		return nil, false, fmt.Errorf("smldns: NAPTR query for %s via %s: %w", queryName, server, err)
	}

	if in.Rcode == dns.RcodeNameError {
		return nil, true, nil
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, false, fmt.Errorf("smldns: NAPTR query for %s via %s returned rcode %s", queryName, server, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		if naptr, ok := rr.(*dns.NAPTR); ok {
			records = append(records, *naptr)
		}
	}
	if len(records) == 0 {
		return nil, true, nil
	}
	return records, false, nil
}

// extractURL filters to Meta:SMP records, sorts by (order, preference)
// ascending, and parses the winning record's regexp field. It never
// panics on malformed data: any failure is treated as "no URL", not an
// error, matching the resolver's best-effort contract.
func extractURL(records []dns.NAPTR) *BaseURL {
	filtered := make([]dns.NAPTR, 0, len(records))
	for _, rec := range records {
		if strings.EqualFold(rec.Service, metaSMPService) {
			filtered = append(filtered, rec)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Order != filtered[j].Order {
			return filtered[i].Order < filtered[j].Order
		}
		return filtered[i].Preference < filtered[j].Preference
	})

	winner := filtered[0]
	replacement, ok := parseRegexpReplacement(winner.Regexp)
	if !ok {
		return nil
	}

	base, err := ParseBaseURL(replacement)
	if err != nil {
		return nil
	}
	return &base
}

// parseRegexpReplacement extracts the REPLACEMENT substring from an NAPTR
// regexp field of the delimiter-bounded form "!PATTERN!REPLACEMENT!". The
// delimiter is always '!' for Peppol; PATTERN is never evaluated against
// any input (it is conventionally "^.*$").
func parseRegexpReplacement(field string) (string, bool) {
	if len(field) < 3 || field[0] != '!' {
		return "", false
	}
	rest := field[1:]
	patternEnd := strings.IndexByte(rest, '!')
	if patternEnd < 0 {
		return "", false
	}
	rest = rest[patternEnd+1:]
	replacementEnd := strings.IndexByte(rest, '!')
	if replacementEnd < 0 {
		return "", false
	}
	return rest[:replacementEnd], true
}
