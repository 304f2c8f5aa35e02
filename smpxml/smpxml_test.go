package smpxml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceGroupFixture = `<?xml version="1.0" encoding="UTF-8"?>
<ns2:ServiceGroup xmlns:ns2="http://busdox.org/serviceMetadata/publishing/1.0/">
  <ns2:ParticipantIdentifier scheme="iso6523-actorid-upis">0208:0843766574</ns2:ParticipantIdentifier>
  <ns2:ServiceMetadataReferenceCollection>
    <ns2:ServiceMetadataReference href="http://smp.example.com/iso6523-actorid-upis::0208:0843766574/services/busdox-docid-qns%3A%3Aurn%3Aoasis%3Anames%3Aspecification%3Aubl%3Aschema%3Axsd%3AInvoice-2%3A%3AInvoice%23%23urn%3Acen.eu%3Aen16931%3A2017%23compliant%23urn%3Afdc%3Apeppol.eu%3A2017%3Apoacc%3Abilling%3A01%3A1.0%3A%3A2.1"/>
  </ns2:ServiceMetadataReferenceCollection>
</ns2:ServiceGroup>`

const serviceGroupEmptyFixture = `<ServiceGroup xmlns="http://busdox.org/serviceMetadata/publishing/1.0/">
  <ParticipantIdentifier scheme="iso6523-actorid-upis">0208:9999999999</ParticipantIdentifier>
  <ServiceMetadataReferenceCollection/>
</ServiceGroup>`

const serviceMetadataFixture = `<?xml version="1.0" encoding="UTF-8"?>
<ns2:SignedServiceMetadata xmlns:ns2="http://busdox.org/serviceMetadata/publishing/1.0/">
  <ns2:ServiceMetadata>
    <ns2:ServiceInformation>
      <ns2:ParticipantIdentifier scheme="iso6523-actorid-upis">0208:0843766574</ns2:ParticipantIdentifier>
      <ns2:DocumentIdentifier scheme="busdox-docid-qns">urn:oasis:names:specification:ubl:schema:xsd:Invoice-2::Invoice</ns2:DocumentIdentifier>
      <ns2:ProcessList>
        <ns2:Process>
          <ns2:ProcessIdentifier scheme="cenbii-procid-ubl">urn:www.cenbii.eu:profile:bii04:ver2.0</ns2:ProcessIdentifier>
          <ns2:ServiceEndpointList>
            <ns2:Endpoint transportProfile="peppol-transport-as4-v2_0">
              <ns2:EndpointURI>https://as4.example.com/as4</ns2:EndpointURI>
              <ns2:RequireBusinessLevelSignature>false</ns2:RequireBusinessLevelSignature>
              <ns2:Certificate>MIIB…</ns2:Certificate>
              <ns2:ServiceActivationDate>2024-02-26T00:00:00</ns2:ServiceActivationDate>
              <ns2:ServiceExpirationDate>2026-02-15T23:59:59</ns2:ServiceExpirationDate>
              <ns2:TechnicalContactUrl>https://example.com/contact</ns2:TechnicalContactUrl>
            </ns2:Endpoint>
          </ns2:ServiceEndpointList>
        </ns2:Process>
      </ns2:ProcessList>
    </ns2:ServiceInformation>
  </ns2:ServiceMetadata>
</ns2:SignedServiceMetadata>`

const serviceMetadataRedirectFixture = `<ServiceMetadata xmlns="http://busdox.org/serviceMetadata/publishing/1.0/">
  <Redirect href="https://new-smp.example.com/iso6523-actorid-upis::0208:0843766574/services/foo" certificateUID="x"/>
</ServiceMetadata>`

const businessCardFixture = `<BusinessCard xmlns="http://www.peppol.eu/schema/pd/businesscard/20180621/">
  <BusinessEntity>
    <Name>Acme Corp</Name>
    <CountryCode>BE</CountryCode>
    <Identifier scheme="iso6523-actorid-upis">0208:0843766574</Identifier>
    <WebsiteURI>https://acme.example.com</WebsiteURI>
    <Contact type="support">
      <TypeCode>support</TypeCode>
      <Name>Support Desk</Name>
      <PhoneNumber>+32 2 000 0000</PhoneNumber>
      <Email>support@acme.example.com</Email>
    </Contact>
  </BusinessEntity>
</BusinessCard>`

func TestParseServiceGroup_NamespacePrefixIgnored(t *testing.T) {
	sg, err := ParseServiceGroup([]byte(serviceGroupFixture))
	require.NoError(t, err)
	assert.Equal(t, "iso6523-actorid-upis", sg.ParticipantID.Scheme)
	assert.Equal(t, "0208:0843766574", sg.ParticipantID.Value)
	require.Len(t, sg.MetadataReferences, 1)
}

func TestParseServiceGroup_EmptyReferencesIsLegal(t *testing.T) {
	sg, err := ParseServiceGroup([]byte(serviceGroupEmptyFixture))
	require.NoError(t, err)
	assert.Empty(t, sg.MetadataReferences)
}

func TestParseServiceGroup_MissingParticipantIdentifier(t *testing.T) {
	_, err := ParseServiceGroup([]byte(`<ServiceGroup xmlns="x"><ServiceMetadataReferenceCollection/></ServiceGroup>`))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ServiceGroup", perr.Document)
}

func TestParseServiceMetadata_SignedWrapperAndOneEndpoint(t *testing.T) {
	sm, err := ParseServiceMetadata([]byte(serviceMetadataFixture))
	require.NoError(t, err)
	assert.Empty(t, sm.RedirectHref)
	assert.Equal(t, DocumentID{Scheme: "busdox-docid-qns", Value: "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2::Invoice"}, sm.DocumentID)
	require.Len(t, sm.Processes, 1)
	require.Len(t, sm.Processes[0].Endpoints, 1)

	ep := sm.Processes[0].Endpoints[0]
	assert.Equal(t, "peppol-transport-as4-v2_0", ep.TransportProfile)
	assert.Equal(t, "https://as4.example.com/as4", ep.EndpointURL)
	assert.False(t, ep.RequireBusinessLevelSignature)
	require.NotNil(t, ep.ServiceActivationDate)
	require.NotNil(t, ep.ServiceExpirationDate)
}

func TestParseServiceMetadata_Redirect(t *testing.T) {
	sm, err := ParseServiceMetadata([]byte(serviceMetadataRedirectFixture))
	require.NoError(t, err)
	assert.Equal(t, "https://new-smp.example.com/iso6523-actorid-upis::0208:0843766574/services/foo", sm.RedirectHref)
	assert.Empty(t, sm.Processes)
}

func TestParseBusinessCard(t *testing.T) {
	entity, err := ParseBusinessCard([]byte(businessCardFixture))
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "Acme Corp", entity.Name)
	assert.Equal(t, "BE", entity.CountryCode)
	require.Len(t, entity.Identifiers, 1)
	require.Len(t, entity.Contacts, 1)
	assert.Equal(t, "support@acme.example.com", entity.Contacts[0].Email)
}

func TestParseBusinessCard_AbsentIsNotError(t *testing.T) {
	entity, err := ParseBusinessCard([]byte(`<html><body>404</body></html>`))
	// well-formed XML that the roundtrip validator accepts, but there is no
	// BusinessCard element, so it must be absent, not an error.
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestServiceMetadata_RoundTripPreservesFields(t *testing.T) {
	sm, err := ParseServiceMetadata([]byte(serviceMetadataFixture))
	require.NoError(t, err)

	want := Endpoint{
		TransportProfile:              "peppol-transport-as4-v2_0",
		EndpointURL:                   "https://as4.example.com/as4",
		Certificate:                   "MIIB…",
		TechnicalContactURL:           "https://example.com/contact",
		RequireBusinessLevelSignature: false,
	}
	got := sm.Processes[0].Endpoints[0]
	got.ServiceActivationDate = nil
	got.ServiceExpirationDate = nil

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("endpoint mismatch (-want +got):\n%s", diff)
	}
}
