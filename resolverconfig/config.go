// Package resolverconfig loads a smpresolver.Config from environment
// variables and an optional config file, for callers that want
// ops-friendly configuration instead of constructing smpresolver.Config
// literals in Go. It is ambient plumbing around the core, not the
// command-line front-end itself.
package resolverconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/insaplace/smpresolver"
)

const envPrefix = "SMP_RESOLVER"

// Keys recognized from the environment or config file.
const (
	KeySMLDomain           = "sml-domain"
	KeyDNSServers          = "dns-servers"
	KeyHTTPTimeout         = "http-timeout"
	KeyBusinessCardTimeout = "business-card-timeout"
	KeyUserAgent           = "user-agent"
	KeyCacheTTL            = "cache-ttl"
)

// Load builds a smpresolver.Config from environment variables (prefixed
// SMP_RESOLVER_, e.g. SMP_RESOLVER_SML_DOMAIN) and, when configPath is
// non-empty, a config file at that path. Fields resolverconfig cannot
// populate from serializable data — Logger, Clock, Observer,
// DocumentTypeLookup — are left at their zero value; callers set those
// after Load returns.
func Load(configPath string) (smpresolver.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeySMLDomain, "")
	v.SetDefault(KeyHTTPTimeout, 30*time.Second)
	v.SetDefault(KeyBusinessCardTimeout, 5*time.Second)
	v.SetDefault(KeyUserAgent, "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return smpresolver.Config{}, fmt.Errorf("resolverconfig: reading %s: %w", configPath, err)
		}
	}

	var dnsServers []string
	if raw := v.GetString(KeyDNSServers); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				dnsServers = append(dnsServers, s)
			}
		}
	}

	return smpresolver.Config{
		SMLDomain:           v.GetString(KeySMLDomain),
		DNSServers:          dnsServers,
		HTTPTimeout:         v.GetDuration(KeyHTTPTimeout),
		BusinessCardTimeout: v.GetDuration(KeyBusinessCardTimeout),
		UserAgent:           v.GetString(KeyUserAgent),
		CacheTTL:            v.GetDuration(KeyCacheTTL),
	}, nil
}
