package smpcert

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// Parser decodes certificates and memoizes the result by fingerprint for
// the life of the process (or until Clear is called at resolver
// shutdown). A Parser is safe for concurrent use: the cache map is
// mutated only under its own mutex. "Now" is supplied by an injected
// clockwork.Clock so expiry checks are deterministic in tests.
type Parser struct {
	clock clockwork.Clock

	mu    sync.Mutex
	cache map[string]*Info
}

// NewParser constructs a Parser. A nil clock defaults to the real wall
// clock.
func NewParser(clock clockwork.Clock) *Parser {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Parser{clock: clock, cache: make(map[string]*Info)}
}

// Parse decodes raw (base64 or PEM) into an Info, returning the cached
// value when this certificate's fingerprint has already been parsed.
// Parsing is idempotent: repeated calls for the same input return an
// equivalent value and a stable fingerprint.
func (p *Parser) Parse(raw string) (*Info, error) {
	der, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	key := fingerprint(der)

	p.mu.Lock()
	if cached, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	info, err := decode(der, raw, p.clock.Now())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = info
	p.mu.Unlock()
	return info, nil
}

// Clear empties the memoization cache. Invoked at resolver shutdown.
func (p *Parser) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]*Info)
}

// Len reports the number of distinct fingerprints currently cached.
// Primarily useful for tests asserting memoization took effect.
func (p *Parser) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
