package resolverconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Second, cfg.BusinessCardTimeout)
	assert.Empty(t, cfg.DNSServers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SMP_RESOLVER_SML_DOMAIN", "test.example.com")
	t.Setenv("SMP_RESOLVER_DNS_SERVERS", "10.0.0.1:53, 10.0.0.2:53")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "test.example.com", cfg.SMLDomain)
	assert.Equal(t, []string{"10.0.0.1:53", "10.0.0.2:53"}, cfg.DNSServers)
}
