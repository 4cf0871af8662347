package wgconf

import (
	"regexp"
	"strings"

	"wg-hub/pkg/model"
)

// peerHeader matches the metadata banner that introduces each managed
// peer block. A block's body runs from the end of its header to the
// start of the next header (or EOF); the trailing [Peer] delimiter is
// only required once per block.
var peerHeader = regexp.MustCompile(`(?m)^# =+\n# ClientName: (.+)\n# AddedAt: (.+)\n# =+\n\[Peer\]\n`)

var (
	publicKeyField    = regexp.MustCompile(`(?m)^PublicKey\s*=\s*(.+)$`)
	allowedIPsField   = regexp.MustCompile(`(?m)^AllowedIPs\s*=\s*(.+)$`)
	endpointField     = regexp.MustCompile(`(?m)^Endpoint\s*=\s*(.+)$`)
	presharedKeyField = regexp.MustCompile(`(?m)^PresharedKey\s*=\s*(.+)$`)
)

// ParsePeers extracts every managed peer block from the config text, in
// file order. Blocks missing PublicKey or AllowedIPs are skipped so one
// damaged entry cannot take down the rest of the registry.
func ParsePeers(content string) []model.Peer {
	headers := peerHeader.FindAllStringSubmatchIndex(content, -1)
	peers := make([]model.Peer, 0, len(headers))

	for i, h := range headers {
		body := content[h[1]:bodyEnd(content, headers, i)]

		publicKey := firstMatch(publicKeyField, body)
		allowedIPs := firstMatch(allowedIPsField, body)
		if publicKey == "" || allowedIPs == "" {
			continue
		}

		peers = append(peers, model.Peer{
			Name:         strings.TrimSpace(content[h[2]:h[3]]),
			AddedAt:      strings.TrimSpace(content[h[4]:h[5]]),
			PublicKey:    publicKey,
			AllowedIPs:   allowedIPs,
			Endpoint:     firstMatch(endpointField, body),
			PresharedKey: firstMatch(presharedKeyField, body),
		})
	}
	return peers
}

// bodyEnd returns the index just past block i's body: the newline before
// the next header, or EOF for the last block. A block with no body at
// all puts the next header right at the end of this one, so the result
// is clamped to never precede the body start.
func bodyEnd(content string, headers [][]int, i int) int {
	if i+1 < len(headers) {
		end := headers[i+1][0] - 1
		if end < headers[i][1] {
			end = headers[i][1]
		}
		return end
	}
	return len(content)
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// IPWithoutMask strips a trailing prefix length, if any.
func IPWithoutMask(cidr string) string {
	if idx := strings.Index(cidr, "/"); idx > 0 {
		return cidr[:idx]
	}
	return cidr
}
