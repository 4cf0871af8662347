// Package dnsd answers name lookups for registered peers under a fixed
// zone suffix, over a minimal UDP service loop.
package dnsd

import (
	"strings"

	"github.com/miekg/dns"

	"wg-hub/pkg/wgconf"
)

// Resolver projects the registry's peer list into a name → address
// table. The table is rebuilt from the file on every query; with tens
// of peers that is cheaper than getting cache invalidation right.
type Resolver struct {
	registry *wgconf.Registry
	suffix   string
}

// NewResolver normalizes the zone suffix to lowercase with a leading
// dot, so "vpn.example.com" and ".VPN.example.com" configure the same
// zone.
func NewResolver(registry *wgconf.Registry, suffix string) *Resolver {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix != "" && !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return &Resolver{registry: registry, suffix: suffix}
}

// Mapping builds the lowercased-name → host-address table. The server
// itself is reachable as "server" and "gateway".
func (r *Resolver) Mapping() map[string]string {
	mapping := make(map[string]string)

	peers, err := r.registry.Peers()
	if err == nil {
		for _, p := range peers {
			mapping[strings.ToLower(p.Name)] = wgconf.IPWithoutMask(p.AllowedIPs)
		}
	}

	server := r.registry.ServerIP().String()
	mapping["server"] = server
	mapping["gateway"] = server
	return mapping
}

// Resolve answers an A query for a name inside the zone. Non-A queries,
// names outside the zone and unknown peers all report false; the
// service loop turns every false into NXDOMAIN.
func (r *Resolver) Resolve(qname string, qtype uint16) (string, bool) {
	if qtype != dns.TypeA {
		return "", false
	}

	qname = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(qname)), ".")
	if !strings.HasSuffix(qname, r.suffix) {
		return "", false
	}

	name := strings.TrimSuffix(qname, r.suffix)
	ip, ok := r.Mapping()[name]
	return ip, ok
}
