package smpxml

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
)

// dateLayouts are tried in order when best-effort parsing
// ServiceActivationDate/ServiceExpirationDate; a parse failure leaves the
// field absent rather than failing the whole document.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Endpoint is one transport binding for a document type/process.
type Endpoint struct {
	TransportProfile               string
	EndpointURL                    string
	Certificate                    string // base64, optional
	ServiceDescription             string
	TechnicalContactURL            string
	TechnicalInformationURL        string
	RequireBusinessLevelSignature  bool
	ServiceActivationDate          *time.Time
	ServiceExpirationDate          *time.Time
}

// Process groups the endpoints published for one business process.
type Process struct {
	ProcessID DocumentID
	Endpoints []Endpoint
}

// ServiceMetadata is the per-document-type record: either a Redirect to
// another metadata URL, or a DocumentIdentifier plus its processes.
type ServiceMetadata struct {
	DocumentID   DocumentID
	Processes    []Process
	RedirectHref string // non-empty iff this record is a redirect
}

// ParseServiceMetadata decodes a ServiceMetadata or SignedServiceMetadata
// document. A top-level Redirect/@href supersedes all other content: only
// the href is returned, with an empty Processes list.
func ParseServiceMetadata(data []byte) (*ServiceMetadata, error) {
	doc, err := loadDocument("ServiceMetadata", data)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	var smEl *etree.Element
	switch root.Tag {
	case "ServiceMetadata":
		smEl = root
	case "SignedServiceMetadata":
		smEl = root.SelectElement("ServiceMetadata")
		if smEl == nil {
			return nil, &ParseError{Document: "ServiceMetadata", Err: fmt.Errorf("SignedServiceMetadata missing nested ServiceMetadata")}
		}
	default:
		return nil, &ParseError{Document: "ServiceMetadata", Err: fmt.Errorf("unexpected root element %q", root.Tag)}
	}

	if redirect := smEl.SelectElement("Redirect"); redirect != nil {
		href := redirect.SelectAttrValue("href", "")
		if href != "" {
			return &ServiceMetadata{RedirectHref: href}, nil
		}
	}

	infoEl := smEl.SelectElement("ServiceInformation")
	if infoEl == nil {
		return nil, &ParseError{Document: "ServiceMetadata", Err: fmt.Errorf("missing ServiceInformation")}
	}

	docIDEl := infoEl.SelectElement("DocumentIdentifier")
	if docIDEl == nil {
		return nil, &ParseError{Document: "ServiceMetadata", Err: fmt.Errorf("missing DocumentIdentifier")}
	}
	docScheme := docIDEl.SelectAttrValue("scheme", "")
	docValue := docIDEl.Text()
	if docScheme == "" || docValue == "" {
		return nil, &ParseError{Document: "ServiceMetadata", Err: fmt.Errorf("DocumentIdentifier missing scheme or value")}
	}

	sm := &ServiceMetadata{DocumentID: DocumentID{Scheme: docScheme, Value: docValue}}

	processListEl := infoEl.SelectElement("ProcessList")
	if processListEl == nil {
		return sm, nil
	}

	for _, processEl := range processListEl.SelectElements("Process") {
		procIDEl := processEl.SelectElement("ProcessIdentifier")
		if procIDEl == nil {
			continue
		}
		procScheme := procIDEl.SelectAttrValue("scheme", "")
		procValue := procIDEl.Text()
		if procScheme == "" || procValue == "" {
			continue
		}

		process := Process{ProcessID: DocumentID{Scheme: procScheme, Value: procValue}}

		endpointListEl := processEl.SelectElement("ServiceEndpointList")
		if endpointListEl != nil {
			for _, epEl := range endpointListEl.SelectElements("Endpoint") {
				if ep, ok := parseEndpoint(epEl); ok {
					process.Endpoints = append(process.Endpoints, ep)
				}
			}
		}
		sm.Processes = append(sm.Processes, process)
	}

	return sm, nil
}

func parseEndpoint(el *etree.Element) (Endpoint, bool) {
	transport := el.SelectAttrValue("transportProfile", "")
	if transport == "" {
		return Endpoint{}, false
	}

	url, ok := childText(el, "EndpointURI")
	if !ok || url == "" {
		url, ok = childText(el, "Address")
	}
	if !ok || url == "" {
		return Endpoint{}, false
	}

	ep := Endpoint{TransportProfile: transport, EndpointURL: url}
	ep.Certificate, _ = childText(el, "Certificate")
	ep.ServiceDescription, _ = childText(el, "ServiceDescription")
	ep.TechnicalContactURL, _ = childText(el, "TechnicalContactUrl")
	ep.TechnicalInformationURL, _ = childText(el, "TechnicalInformationUrl")

	if text, ok := childText(el, "RequireBusinessLevelSignature"); ok {
		ep.RequireBusinessLevelSignature = text == "true" || text == "1"
	}

	if text, ok := childText(el, "ServiceActivationDate"); ok {
		if t, err := parseDate(text); err == nil {
			ep.ServiceActivationDate = &t
		}
	}
	if text, ok := childText(el, "ServiceExpirationDate"); ok {
		if t, err := parseDate(text); err == nil {
			ep.ServiceExpirationDate = &t
		}
	}

	return ep, true
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
