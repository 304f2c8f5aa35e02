// Package smpxml decodes the three SMP XML document families —
// ServiceGroup, ServiceMetadata (optionally signature-wrapped), and
// BusinessCard — tolerantly of namespace prefixes: element identity is
// local-name only, so "ns2:Endpoint" and "Endpoint" are equivalent.
//
// Decoding is built on beevik/etree, whose Element.Tag already excludes
// any namespace prefix, and is preceded by a round-trip-safety check via
// mattermost/xml-roundtrip-validator before any untrusted SMP document is
// parsed.
package smpxml

import (
	"bytes"
	"fmt"
	"strings"

	xrv "github.com/mattermost/xml-roundtrip-validator"

	"github.com/beevik/etree"
)

// ParseError names the offending document family and wraps the underlying
// decode failure.
type ParseError struct {
	Document string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("smpxml: failed to parse %s: %v", e.Document, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// loadDocument validates the byte stream against XML round-trip attacks
// (the entity/attribute class of issues xml-roundtrip-validator guards
// against) and parses it into an etree.Document.
func loadDocument(document string, data []byte) (*etree.Document, error) {
	if err := xrv.Validate(bytes.NewReader(data)); err != nil {
		return nil, &ParseError{Document: document, Err: err}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Document: document, Err: err}
	}
	if doc.Root() == nil {
		return nil, &ParseError{Document: document, Err: fmt.Errorf("empty document")}
	}
	return doc, nil
}

// childText returns the trimmed text of the first direct child matching
// localName, ignoring that child's namespace prefix, and whether it was
// found at all.
func childText(el *etree.Element, localName string) (string, bool) {
	child := el.SelectElement(localName)
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text()), true
}
