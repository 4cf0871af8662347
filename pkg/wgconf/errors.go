package wgconf

import "errors"

var (
	// ErrNotFound means the managed config file does not exist. Read
	// paths treat this as an empty registry; mutations treat it as fatal.
	ErrNotFound = errors.New("wireguard config not found")

	// ErrNameConflict means a peer with the same name is already registered.
	ErrNameConflict = errors.New("peer name already exists")

	// ErrIPConflict means the requested address is already claimed.
	ErrIPConflict = errors.New("ip address already in use")

	// ErrInvalidIP means the candidate address could not be parsed.
	ErrInvalidIP = errors.New("invalid ip address")

	// ErrPoolExhausted means no free address remains in the VPN network.
	ErrPoolExhausted = errors.New("address pool exhausted")
)
