// Package wgtool shells out to the wg / wg-quick binaries for key
// material, runtime statistics and config sync. Every call degrades
// gracefully when the tools are missing: the registry stays usable on
// hosts where WireGuard is not (yet) installed.
package wgtool

import (
	"bytes"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"wg-hub/pkg/model"
)

// PublicKeyPlaceholder is returned when the server key cannot be read.
const PublicKeyPlaceholder = "<SERVER_PUBLIC_KEY>"

// StatusSource reports live per-peer statistics keyed by public key.
// Implementations return an empty map when the underlying tool is
// unavailable; status is decoration, never a dependency.
type StatusSource interface {
	PeerStatus() map[string]model.PeerStatus
}

// Tool is the exec-backed implementation bound to one interface.
type Tool struct {
	Interface string
}

func New(iface string) *Tool {
	if iface == "" {
		iface = "wg0"
	}
	return &Tool{Interface: iface}
}

// ServerPublicKey returns the interface public key, or a placeholder
// when the wg binary is missing or errors.
func (t *Tool) ServerPublicKey() string {
	out, err := exec.Command("wg", "show", t.Interface, "public-key").Output()
	if err != nil {
		return PublicKeyPlaceholder
	}
	return strings.TrimSpace(string(out))
}

// PeerStatus runs `wg show <iface> dump` and parses it. Any failure
// yields an empty map.
func (t *Tool) PeerStatus() map[string]model.PeerStatus {
	out, err := exec.Command("wg", "show", t.Interface, "dump").Output()
	if err != nil {
		return map[string]model.PeerStatus{}
	}
	return ParseDump(string(out))
}

// ParseDump parses `wg show dump` output: tab-separated lines, one peer
// per line after the interface summary line, which is skipped. Short
// lines are ignored.
func ParseDump(out string) map[string]model.PeerStatus {
	status := make(map[string]model.PeerStatus)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return status
	}
	for _, line := range lines[1:] {
		parts := strings.Split(line, "\t")
		if len(parts) < 8 {
			continue
		}
		ps := model.PeerStatus{AllowedIPs: parts[3]}
		ps.HasPresharedKey = parts[1] != "(none)"
		if parts[2] != "(none)" {
			ps.Endpoint = parts[2]
		}
		ps.LatestHandshake, _ = strconv.ParseInt(parts[4], 10, 64)
		ps.TransferRx, _ = strconv.ParseInt(parts[5], 10, 64)
		ps.TransferTx, _ = strconv.ParseInt(parts[6], 10, 64)
		if parts[7] != "off" {
			ps.Keepalive, _ = strconv.Atoi(parts[7])
		}
		status[parts[0]] = ps
	}
	return status
}

// MergeStatus copies live statistics onto the matching peers. A
// handshake epoch of zero is left zero, which the JSON layer omits.
func MergeStatus(peers []model.Peer, status map[string]model.PeerStatus) {
	for i := range peers {
		ps, ok := status[peers[i].PublicKey]
		if !ok {
			continue
		}
		peers[i].LatestHandshake = ps.LatestHandshake
		peers[i].TransferRx = ps.TransferRx
		peers[i].TransferTx = ps.TransferTx
	}
}

// Reload applies config changes to the running interface without
// tearing it down: wg-quick strip piped into wg syncconf. Failures are
// logged and reported as false, never fatal to the caller.
func (t *Tool) Reload() bool {
	conf, err := exec.Command("wg-quick", "strip", t.Interface).Output()
	if err != nil {
		log.Printf("wg-quick strip %s failed: %v", t.Interface, err)
		return false
	}

	cmd := exec.Command("wg", "syncconf", t.Interface, "/dev/stdin")
	cmd.Stdin = bytes.NewReader(conf)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("wg syncconf %s failed: %v output=%s", t.Interface, err, string(out))
		return false
	}
	return true
}
