// Package config assembles the daemon settings from the environment.
// The Settings value is built once in main and passed into component
// constructors; nothing reads the environment after startup.
package config

import (
	"log"
	"net/netip"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Settings struct {
	// Managed WireGuard config file and interface.
	WGConfigPath string
	WGInterface  string

	// VPN address plan. ServerIP is the hub's own address inside
	// VPNNetwork and is never allocated to a peer.
	VPNNetwork netip.Prefix
	ServerIP   netip.Addr

	// Endpoint clients connect to, e.g. "vpn.example.com:51820".
	// Empty means not configured yet.
	ServerEndpoint string

	// Apply registry changes to the live interface after mutations.
	EnableWGReload bool

	// Embedded DNS service.
	DNSListenAddr   string
	DNSPort         int
	DNSDomainSuffix string

	// HTTP control API.
	APIAddr   string
	AuthToken string
	JWTSecret string

	// Clash subscription dashboard.
	ClashConfigPath string

	// Operation audit trail.
	AuditDBPath string
}

// Load reads .env (if present) and the HUB_* environment variables,
// falling back to defaults suitable for a 10.8.0.0/24 overlay.
func Load() Settings {
	_ = godotenv.Load(".env")

	s := Settings{
		WGConfigPath:    getenv("HUB_WG_CONFIG", "/etc/wireguard/wg0.conf"),
		WGInterface:     getenv("HUB_WG_INTERFACE", "wg0"),
		ServerEndpoint:  os.Getenv("HUB_SERVER_ENDPOINT"),
		EnableWGReload:  getenv("HUB_ENABLE_WG_RELOAD", "false") == "true",
		DNSListenAddr:   getenv("HUB_DNS_LISTEN", "10.8.0.1"),
		DNSPort:         getenvInt("HUB_DNS_PORT", 53),
		DNSDomainSuffix: getenv("HUB_DNS_DOMAIN", ".vpn.example.com"),
		APIAddr:         getenv("HUB_API_ADDR", ":8080"),
		AuthToken:       os.Getenv("HUB_AUTH_TOKEN"),
		JWTSecret:       os.Getenv("HUB_JWT_SECRET"),
		ClashConfigPath: getenv("HUB_CLASH_CONFIG", "data/uploaded_clash.yaml"),
		AuditDBPath:     getenv("HUB_AUDIT_DB", "data/hub-audit.db"),
	}

	s.VPNNetwork = parsePrefix(getenv("HUB_VPN_NETWORK", "10.8.0.0/24"))
	s.ServerIP = parseAddr(getenv("HUB_VPN_SERVER_IP", "10.8.0.1"))
	return s
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func parsePrefix(s string) netip.Prefix {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		log.Fatalf("invalid VPN network %q: %v", s, err)
	}
	return p
}

func parseAddr(s string) netip.Addr {
	a, err := netip.ParseAddr(s)
	if err != nil {
		log.Fatalf("invalid server address %q: %v", s, err)
	}
	return a
}
