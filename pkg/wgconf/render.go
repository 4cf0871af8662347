package wgconf

import (
	"fmt"
	"net/netip"
	"strings"

	"wg-hub/pkg/model"
)

const banner = "# =========================================="

// RenderPeerBlock produces the managed block for one peer: metadata
// banner, then the [Peer] section with a fixed field order (PresharedKey
// before Endpoint). The host part of AllowedIPs is always written /32.
func RenderPeerBlock(p model.Peer) string {
	var b strings.Builder
	b.WriteString(banner + "\n")
	fmt.Fprintf(&b, "# ClientName: %s\n", p.Name)
	fmt.Fprintf(&b, "# AddedAt: %s\n", p.AddedAt)
	b.WriteString(banner + "\n")
	b.WriteString("[Peer]\n")
	fmt.Fprintf(&b, "PublicKey = %s\n", p.PublicKey)
	fmt.Fprintf(&b, "AllowedIPs = %s/32\n", IPWithoutMask(p.AllowedIPs))
	if p.PresharedKey != "" {
		fmt.Fprintf(&b, "PresharedKey = %s\n", p.PresharedKey)
	}
	if p.Endpoint != "" {
		fmt.Fprintf(&b, "Endpoint = %s\n", p.Endpoint)
	}
	return b.String()
}

// RenderClientConfig builds a fill-in-the-blanks client config. The
// private key and preshared key are left as placeholders; clients
// generate key material locally and only submit the public parts.
func RenderClientConfig(serverPublicKey, serverEndpoint, assignedIP string, network netip.Prefix) string {
	var b strings.Builder
	b.WriteString("[Interface]\n")
	b.WriteString("# === Paste the private key you generated ===\n")
	b.WriteString("PrivateKey = <YOUR_PRIVATE_KEY>\n")
	fmt.Fprintf(&b, "Address = %s/%d\n", assignedIP, network.Bits())
	b.WriteString("\n")
	b.WriteString("[Peer]\n")
	fmt.Fprintf(&b, "PublicKey = %s\n", serverPublicKey)
	b.WriteString("# === If you generated a preshared key, paste it here ===\n")
	b.WriteString("# PresharedKey = <YOUR_PRESHARED_KEY>\n")
	fmt.Fprintf(&b, "Endpoint = %s\n", serverEndpoint)
	fmt.Fprintf(&b, "AllowedIPs = %s\n", network.String())
	b.WriteString("PersistentKeepalive = 25\n")
	return b.String()
}
