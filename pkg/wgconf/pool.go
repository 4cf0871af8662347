package wgconf

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"wg-hub/pkg/model"
)

// UsedIPs returns every host address currently claimed in the peer set,
// including the server's own address. Entries that do not parse are
// ignored rather than failing the scan.
func UsedIPs(peers []model.Peer, serverIP netip.Addr) map[netip.Addr]bool {
	used := map[netip.Addr]bool{serverIP: true}
	for _, p := range peers {
		addr, err := netip.ParseAddr(IPWithoutMask(p.AllowedIPs))
		if err != nil {
			continue
		}
		used[addr] = true
	}
	return used
}

// NextAvailableIP scans upward from the address after the server's and
// returns the first free host address. The network and broadcast
// addresses are never handed out.
func NextAvailableIP(network netip.Prefix, serverIP netip.Addr, peers []model.Peer) (netip.Addr, error) {
	if !serverIP.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: %s", ErrInvalidIP, serverIP)
	}
	used := UsedIPs(peers, serverIP)

	_, end, err := prefixRange4(network)
	if err != nil {
		return netip.Addr{}, err
	}
	for v := addrToUint32(serverIP) + 1; v < end; v++ {
		candidate := uint32ToAddr(v)
		if !used[candidate] {
			return candidate, nil
		}
	}
	return netip.Addr{}, ErrPoolExhausted
}

// HasIPConflict reports whether ip (with or without a prefix length) is
// already claimed by the server or a registered peer.
func HasIPConflict(ip string, serverIP netip.Addr, peers []model.Peer) (bool, error) {
	addr, err := netip.ParseAddr(IPWithoutMask(ip))
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrInvalidIP, ip)
	}
	return UsedIPs(peers, serverIP)[addr], nil
}

// HasNameConflict reports whether name is already registered. Matching
// is exact and case-sensitive.
func HasNameConflict(name string, peers []model.Peer) bool {
	for _, p := range peers {
		if p.Name == name {
			return true
		}
	}
	return false
}

func prefixRange4(p netip.Prefix) (uint32, uint32, error) {
	p = p.Masked()
	if !p.Addr().Is4() {
		return 0, 0, fmt.Errorf("prefix %s is not ipv4", p)
	}
	start := addrToUint32(p.Addr())
	hostBits := 32 - p.Bits()
	if hostBits <= 0 {
		return start, start, nil
	}
	if hostBits >= 32 {
		return 0, ^uint32(0), nil
	}
	size := uint32(1) << hostBits
	return start, start + size - 1, nil
}

func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}

func uint32ToAddr(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
