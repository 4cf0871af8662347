package wgconf

import (
	"errors"
	"io/fs"
	"net/netip"
	"os"
	"strings"

	"wg-hub/pkg/model"
)

// Registry treats a wg-quick config file as the authoritative peer
// database. Every operation re-reads and re-decodes the file; nothing
// is cached between calls. The [Interface] block, comments and peer
// ordering are preserved byte-for-byte across mutations.
//
// Mutations are a plain read-modify-write of the whole file with no
// locking: two concurrent writers can silently drop each other's
// change. The deployment assumption is a single management process per
// config file.
type Registry struct {
	path     string
	network  netip.Prefix
	serverIP netip.Addr
}

func NewRegistry(path string, network netip.Prefix, serverIP netip.Addr) *Registry {
	return &Registry{path: path, network: network, serverIP: serverIP}
}

func (r *Registry) Network() netip.Prefix { return r.network }
func (r *Registry) ServerIP() netip.Addr  { return r.serverIP }

// ReadConfig returns the raw config text. A missing file is reported as
// ErrNotFound so callers can tell "absent" from "present but empty".
func (r *Registry) ReadConfig() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (r *Registry) writeConfig(content string) error {
	return os.WriteFile(r.path, []byte(content), 0o600)
}

// Peers returns every registered peer in file order. An absent config
// file reads as an empty registry.
func (r *Registry) Peers() ([]model.Peer, error) {
	content, err := r.ReadConfig()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParsePeers(content), nil
}

// DirectPeers returns the peers with a known endpoint, i.e. the
// candidates for direct site-to-site connections.
func (r *Registry) DirectPeers() ([]model.Peer, error) {
	peers, err := r.Peers()
	if err != nil {
		return nil, err
	}
	direct := make([]model.Peer, 0, len(peers))
	for _, p := range peers {
		if p.Endpoint != "" {
			direct = append(direct, p)
		}
	}
	return direct, nil
}

// AddPeer appends a new peer block to the config. The name must be
// unused (ErrNameConflict) and the host address free (ErrIPConflict).
// A missing config file is fatal here: there is nothing to append to.
func (r *Registry) AddPeer(p model.Peer) error {
	content, err := r.ReadConfig()
	if err != nil {
		return err
	}
	peers := ParsePeers(content)

	if HasNameConflict(p.Name, peers) {
		return ErrNameConflict
	}
	conflict, err := HasIPConflict(p.AllowedIPs, r.serverIP, peers)
	if err != nil {
		return err
	}
	if conflict {
		return ErrIPConflict
	}

	updated := strings.TrimRight(content, " \t\n") + "\n\n" + RenderPeerBlock(p)
	return r.writeConfig(updated)
}

// RemovePeer deletes the block registered under name, including its
// banner and the blank line separating it from the previous block. It
// reports whether a block was found; removing an unknown name is not
// an error.
func (r *Registry) RemovePeer(name string) (bool, error) {
	content, err := r.ReadConfig()
	if err != nil {
		return false, err
	}

	headers := peerHeader.FindAllStringSubmatchIndex(content, -1)
	for i, h := range headers {
		if strings.TrimSpace(content[h[2]:h[3]]) != name {
			continue
		}
		start := h[0]
		if start > 0 && content[start-1] == '\n' {
			start--
		}
		end := bodyEnd(content, headers, i)
		return true, r.writeConfig(content[:start] + content[end:])
	}
	return false, nil
}

// NextIP allocates the next free address from the pool. The pool is
// recomputed from the current peer set on every call.
func (r *Registry) NextIP() (netip.Addr, error) {
	peers, err := r.Peers()
	if err != nil {
		return netip.Addr{}, err
	}
	return NextAvailableIP(r.network, r.serverIP, peers)
}

// HasAddressConflict checks ip against the current peer set.
func (r *Registry) HasAddressConflict(ip string) (bool, error) {
	peers, err := r.Peers()
	if err != nil {
		return false, err
	}
	return HasIPConflict(ip, r.serverIP, peers)
}

// HasNameConflict checks name against the current peer set.
func (r *Registry) HasNameConflict(name string) (bool, error) {
	peers, err := r.Peers()
	if err != nil {
		return false, err
	}
	return HasNameConflict(name, peers), nil
}
