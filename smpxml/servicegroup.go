package smpxml

import "fmt"

// DocumentID is a (scheme, value) document-type or process identifier as
// carried inside SMP XML, e.g. scheme "busdox-docid-qns".
type DocumentID struct {
	Scheme string
	Value  string
}

// ServiceGroup is a participant's catalog: the identifier the SMP knows
// them by, and the ordered list of ServiceMetadata reference URLs (one
// per supported document type). An empty Reference list is legal and
// signals a parked participant.
type ServiceGroup struct {
	ParticipantID      DocumentID
	MetadataReferences []string // href values, in document order
}

// ParseServiceGroup decodes a ServiceGroup document. ParticipantIdentifier
// is mandatory; an empty ServiceMetadataReference collection is not an
// error.
func ParseServiceGroup(data []byte) (*ServiceGroup, error) {
	doc, err := loadDocument("ServiceGroup", data)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root.Tag != "ServiceGroup" {
		return nil, &ParseError{Document: "ServiceGroup", Err: fmt.Errorf("unexpected root element %q", root.Tag)}
	}

	pidEl := root.SelectElement("ParticipantIdentifier")
	if pidEl == nil {
		return nil, &ParseError{Document: "ServiceGroup", Err: fmt.Errorf("missing ParticipantIdentifier")}
	}
	scheme := pidEl.SelectAttrValue("scheme", "")
	value := pidEl.Text()
	if scheme == "" || value == "" {
		return nil, &ParseError{Document: "ServiceGroup", Err: fmt.Errorf("ParticipantIdentifier missing scheme or value")}
	}

	sg := &ServiceGroup{ParticipantID: DocumentID{Scheme: scheme, Value: value}}
	for _, ref := range root.FindElements(".//ServiceMetadataReference") {
		href := ref.SelectAttrValue("href", "")
		if href == "" {
			continue
		}
		sg.MetadataReferences = append(sg.MetadataReferences, href)
	}
	return sg, nil
}
