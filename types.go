package smpresolver

import (
	"time"

	"github.com/insaplace/smpresolver/peppolid"
	"github.com/insaplace/smpresolver/smpcert"
	"github.com/insaplace/smpresolver/smpxml"
)

// RegistrationStatus classifies how far a participant got through the
// resolution pipeline.
type RegistrationStatus string

const (
	// StatusUnregistered means DNS carries no record for this
	// participant, the input identifier was malformed, the DNS lookup
	// failed, or the ServiceGroup fetch failed (other than with a 404) or
	// could not be parsed.
	StatusUnregistered RegistrationStatus = "unregistered"
	// StatusParked means the participant is registered in DNS/SMP but
	// advertises no functional endpoint (empty ServiceGroup, a 404 on
	// ServiceGroup, or a ServiceMetadata fetch that failed or yielded no
	// endpoints).
	StatusParked RegistrationStatus = "parked"
	// StatusActive means at least one document type and endpoint were
	// discovered.
	StatusActive RegistrationStatus = "active"
)

// Diagnostic records a non-fatal failure encountered while fetching an
// auxiliary document (ServiceMetadata). StatusCode is 0 for a
// transport-level failure, matching the Peppol taxonomy's distinction
// between "no HTTP response" and "an HTTP error response".
type Diagnostic struct {
	URL        string
	StatusCode int
	Message    string
}

// DocumentTypeSummary pairs a raw document identifier with its derived
// friendly display name.
type DocumentTypeSummary struct {
	DocumentID   smpxml.DocumentID
	FriendlyName string
}

// ResolveOptions selects which auxiliary work a single Resolve call
// performs, per the request-option-driven auxiliary fetches described in
// the resolver's contract. The zero value performs only the
// DNS+ServiceGroup+ServiceMetadata core with no auxiliary fetches.
type ResolveOptions struct {
	// FetchDocumentTypes includes friendly document-type names and the
	// selected endpoint descriptor in the result.
	FetchDocumentTypes bool
	// IncludeBusinessCard probes for and includes the business entity.
	IncludeBusinessCard bool
	// ParseCertificate decodes the endpoint certificate, when present,
	// into CertificateInfo.
	ParseCertificate bool
	// Timeout bounds this call's total wall time end to end (DNS, every
	// HTTP fetch, business-card probing), enforced via cancellation. Zero
	// means no call-level bound beyond whatever deadline the caller's ctx
	// already carries.
	Timeout time.Duration
}

// ResolutionResult is the pipeline's output for one participant.
type ResolutionResult struct {
	Identifier peppolid.Identifier

	IsRegistered       bool
	Status             RegistrationStatus
	HasActiveEndpoints bool

	SMPHostname   string
	DocumentTypes []DocumentTypeSummary
	Endpoint      *smpxml.Endpoint
	Certificate   *smpcert.Info
	BusinessCard  *smpxml.BusinessEntity
	Diagnostics   []Diagnostic

	// Error is a short, human-readable description of why resolution
	// terminated early (invalid input, DNS absence, SMP failure). Empty
	// on every non-terminal-failure path, including parked results.
	Error string
}

// ResolutionObserver receives a callback after every Resolve call,
// terminal or not. It exists to support higher-level batch orchestration
// (fan-out with progress callbacks) without the core itself implementing
// batching — the concurrency-safety contract guarantees ObserveResult may
// be invoked concurrently from independent goroutines and must not block
// the caller's own resolution.
type ResolutionObserver interface {
	ObserveResult(id peppolid.Identifier, result *ResolutionResult)
}

// DocumentTypeLookup is the external Peppol document-type code-list
// lookup, consulted before the in-core pattern-matching fallback. The
// code-list data file itself is out of scope for the core; callers wire
// in whatever table they maintain.
type DocumentTypeLookup interface {
	FriendlyName(fullValue string) (name string, ok bool)
}
