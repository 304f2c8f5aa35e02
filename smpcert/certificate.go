// Package smpcert decodes an SMP endpoint's base64/PEM-wrapped X.509
// access-point certificate, extracting the fields useful for operational
// diagnostics, and memoizes parses by fingerprint.
package smpcert

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	seatIDPOPPattern     = regexp.MustCompile(`^POP\d{3,}`)
	seatIDGenericPattern = regexp.MustCompile(`(?i)^[A-Z0-9]{4,20}$`)
)

// Info is the operationally useful subset of a parsed X.509 certificate.
type Info struct {
	Fingerprint  string // uppercase hex SHA-256 of the DER encoding
	Subject      string
	Issuer       string
	SerialNumber string
	NotBefore    time.Time
	NotAfter     time.Time
	// IsExpired is true when the certificate is outside its validity
	// window at parse time, either because NotAfter has already passed or
	// because NotBefore has not been reached yet — both states mean the
	// certificate cannot be relied on right now.
	IsExpired bool
	SeatID       string // empty when the CN doesn't match a known Peppol pattern
	Raw          string // the original base64/PEM string, verbatim
}

// normalize strips PEM armor and whitespace from raw and returns the DER
// bytes. It accepts both a fully-formed PEM block and bare base64 with
// embedded newlines, matching what different SMPs publish.
func normalize(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if block, _ := pem.Decode([]byte(trimmed)); block != nil {
		return block.Bytes, nil
	}

	var armorStripped strings.Builder
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-----") {
			continue
		}
		armorStripped.WriteString(line)
	}
	cleaned := strings.Join(strings.Fields(armorStripped.String()), "")

	der, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("smpcert: invalid base64 certificate data: %w", err)
	}
	return der, nil
}

// fingerprint is the cache key: uppercase hex SHA-256 of the DER bytes.
func fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// extractSeatID inspects a subject DN string (as produced by
// pkix.Name.String()) for a CN component. The CN value runs up to the
// next unescaped comma. A CN matching ^POP\d{3,} is returned uppercased;
// otherwise a CN that is, in full, 4-20 alphanumeric characters is
// returned uppercased; otherwise there is no SeatID.
func extractSeatID(subjectDN string) string {
	for _, part := range splitUnescapedCommas(subjectDN) {
		trimmed := strings.TrimSpace(part)
		if len(trimmed) < 3 || !strings.EqualFold(trimmed[:3], "CN=") {
			continue
		}
		cn := strings.TrimSpace(trimmed[3:])
		upper := strings.ToUpper(cn)
		if seatIDPOPPattern.MatchString(upper) {
			return upper
		}
		if seatIDGenericPattern.MatchString(upper) {
			return upper
		}
		return ""
	}
	return ""
}

// splitUnescapedCommas splits a DN string on ',' that is not preceded by
// an escaping backslash, honoring RFC 2253-style DN escaping.
func splitUnescapedCommas(dn string) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for _, r := range dn {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// decode parses DER bytes into an Info, given the instant to evaluate
// expiry against.
func decode(der []byte, raw string, now time.Time) (*Info, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("smpcert: parsing certificate: %w", err)
	}

	subject := cert.Subject.String()
	info := &Info{
		Fingerprint:  fingerprint(der),
		Subject:      subject,
		Issuer:       cert.Issuer.String(),
		SerialNumber: cert.SerialNumber.String(),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		Raw:          raw,
	}
	info.IsExpired = now.Before(info.NotBefore) || now.After(info.NotAfter)
	info.SeatID = extractSeatID(subject)
	return info, nil
}
