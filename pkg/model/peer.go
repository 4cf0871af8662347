package model

// Peer describes a WireGuard peer parsed from the managed config file.
// The runtime fields are filled from `wg show` output on query results
// only; they are never written back to the config.
type Peer struct {
	Name         string `json:"name"`
	PublicKey    string `json:"publicKey"`
	AllowedIPs   string `json:"allowedIPs"`
	AddedAt      string `json:"addedAt"`
	Endpoint     string `json:"endpoint,omitempty"`
	PresharedKey string `json:"-"`

	LatestHandshake int64 `json:"latestHandshake,omitempty"`
	TransferRx      int64 `json:"transferRx,omitempty"`
	TransferTx      int64 `json:"transferTx,omitempty"`
}

// PeerStatus is one peer row of `wg show <iface> dump`, keyed by public
// key at the source. LatestHandshake is unix seconds, 0 = never.
// Keepalive is seconds, 0 = off.
type PeerStatus struct {
	HasPresharedKey bool
	Endpoint        string
	AllowedIPs      string
	LatestHandshake int64
	TransferRx      int64
	TransferTx      int64
	Keepalive       int
}
