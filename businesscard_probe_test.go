package smpresolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insaplace/smpresolver/peppolid"
	"github.com/insaplace/smpresolver/smldns"
	"github.com/insaplace/smpresolver/smphttp"
)

func testPID() peppolid.Identifier {
	return peppolid.Identifier{Scheme: "0208", Value: "0843766574"}
}

const businessCardXML = `<BusinessCard><BusinessEntity><Name>Acme AP</Name><CountryCode>BE</CountryCode></BusinessEntity></BusinessCard>`

func TestBusinessCardPaths_Order(t *testing.T) {
	pid := testPID()
	paths := businessCardPaths(pid)
	require.Len(t, paths, 5)
	assert.Equal(t, "/businesscard/iso6523-actorid-upis::0208:0843766574", paths[0])
	assert.Contains(t, paths[1], "/businesscard")
	assert.Contains(t, paths[2], "/smp/businesscard/")
	assert.Contains(t, paths[3], "/api/businesscard/")
	assert.Contains(t, paths[4], "/rest/businesscard/")
}

func TestProbeBusinessCard_FastFailsHTTPSThenSucceedsOnHTTP(t *testing.T) {
	pid := testPID()
	paths := businessCardPaths(pid)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == paths[0] {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(businessCardXML))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	base, err := smldns.ParseBaseURL(srv.URL)
	require.NoError(t, err)

	fetcher := smphttp.NewFetcher(smphttp.NewPool(0, 0), "test/1.0")
	entity := probeBusinessCard(context.Background(), fetcher, base, pid, time.Second)
	require.NotNil(t, entity)
	assert.Equal(t, "Acme AP", entity.Name)
	assert.Equal(t, "BE", entity.CountryCode)
}

func TestProbeBusinessCard_AllNotFoundReturnsNil(t *testing.T) {
	pid := testPID()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	base, err := smldns.ParseBaseURL(srv.URL)
	require.NoError(t, err)

	fetcher := smphttp.NewFetcher(smphttp.NewPool(0, 0), "test/1.0")
	entity := probeBusinessCard(context.Background(), fetcher, base, pid, time.Second)
	assert.Nil(t, entity)
}

func TestProbeBusinessCard_NonXMLBodySkipped(t *testing.T) {
	pid := testPID()
	paths := businessCardPaths(pid)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case paths[0]:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("not xml"))
		case paths[1]:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(businessCardXML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	base, err := smldns.ParseBaseURL(srv.URL)
	require.NoError(t, err)

	fetcher := smphttp.NewFetcher(smphttp.NewPool(0, 0), "test/1.0")
	entity := probeBusinessCard(context.Background(), fetcher, base, pid, time.Second)
	require.NotNil(t, entity)
	assert.Equal(t, "Acme AP", entity.Name)
}
