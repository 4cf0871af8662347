package wgconf

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wg-hub/pkg/model"
)

func testRegistry(t *testing.T, content string) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wg0.conf")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return NewRegistry(path,
		netip.MustParsePrefix("10.8.0.0/24"),
		netip.MustParseAddr("10.8.0.1"))
}

func readFile(t *testing.T, r *Registry) string {
	t.Helper()
	content, err := r.ReadConfig()
	require.NoError(t, err)
	return content
}

func TestRegistryAddAndList(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	err := r.AddPeer(model.Peer{
		Name:       "tablet",
		PublicKey:  "dGFibGV0LXB1YmxpYy1rZXktZm9yLXRlc3RzPT0=",
		AllowedIPs: "10.8.0.8",
		AddedAt:    "2026-08-29",
	})
	require.NoError(t, err)

	peers, err := r.Peers()
	require.NoError(t, err)
	require.Len(t, peers, 4)
	require.Equal(t, "tablet", peers[3].Name)
	require.Equal(t, "10.8.0.8/32", peers[3].AllowedIPs)
}

func TestRegistryAddNameConflict(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	err := r.AddPeer(model.Peer{
		Name:       "home-nas",
		PublicKey:  "b3RoZXIta2V5",
		AllowedIPs: "10.8.0.20",
	})
	require.ErrorIs(t, err, ErrNameConflict)
	require.Equal(t, sampleConfig, readFile(t, r))
}

func TestRegistryAddIPConflict(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	err := r.AddPeer(model.Peer{
		Name:       "new-device",
		PublicKey:  "b3RoZXIta2V5",
		AllowedIPs: "10.8.0.6",
	})
	require.ErrorIs(t, err, ErrIPConflict)

	err = r.AddPeer(model.Peer{
		Name:       "new-device",
		PublicKey:  "b3RoZXIta2V5",
		AllowedIPs: "10.8.0.1",
	})
	require.ErrorIs(t, err, ErrIPConflict)
	require.Equal(t, sampleConfig, readFile(t, r))
}

func TestRegistryRemovePeer(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	removed, err := r.RemovePeer("home-nas")
	require.NoError(t, err)
	require.True(t, removed)

	peers, err := r.Peers()
	require.NoError(t, err)
	require.Len(t, peers, 2)
	require.Equal(t, "macbook-pro", peers[0].Name)
	require.Equal(t, "phone-android", peers[1].Name)

	// Removing an unknown name reports false and leaves the file alone.
	before := readFile(t, r)
	removed, err = r.RemovePeer("home-nas")
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, before, readFile(t, r))
}

func TestRegistryAddThenRemoveRestoresFile(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	require.NoError(t, r.AddPeer(model.Peer{
		Name:       "tablet",
		PublicKey:  "dGFibGV0LXB1YmxpYy1rZXktZm9yLXRlc3RzPT0=",
		AllowedIPs: "10.8.0.8",
		AddedAt:    "2026-08-29",
	}))

	removed, err := r.RemovePeer("tablet")
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, sampleConfig, readFile(t, r))
}

func TestRegistryRemoveAroundBodylessBlock(t *testing.T) {
	content := `[Interface]
Address = 10.8.0.1/24

# ==========================================
# ClientName: empty-device
# AddedAt: 2026-08-20
# ==========================================
[Peer]
# ==========================================
# ClientName: survivor
# AddedAt: 2026-08-21
# ==========================================
[Peer]
PublicKey = c3Vydml2b3ItcHVibGljLWtleS1mb3ItdGVzdA==
AllowedIPs = 10.8.0.9/32
`
	r := testRegistry(t, content)

	removed, err := r.RemovePeer("empty-device")
	require.NoError(t, err)
	require.True(t, removed)

	peers, err := r.Peers()
	require.NoError(t, err)
	require.Len(t, peers, 1)
	require.Equal(t, "survivor", peers[0].Name)
}

func TestRegistryAbsentFile(t *testing.T) {
	r := testRegistry(t, "")

	// Read paths treat a missing file as an empty registry.
	peers, err := r.Peers()
	require.NoError(t, err)
	require.Empty(t, peers)

	ip, err := r.NextIP()
	require.NoError(t, err)
	require.Equal(t, "10.8.0.2", ip.String())

	// Mutations need a file to modify.
	err = r.AddPeer(model.Peer{Name: "x", PublicKey: "k", AllowedIPs: "10.8.0.9"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.RemovePeer("x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryDirectPeers(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	direct, err := r.DirectPeers()
	require.NoError(t, err)
	require.Len(t, direct, 1)
	require.Equal(t, "home-nas", direct[0].Name)
}

func TestRegistryNextIP(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	ip, err := r.NextIP()
	require.NoError(t, err)
	require.Equal(t, "10.8.0.2", ip.String())
}

func TestRegistryConflictHelpers(t *testing.T) {
	r := testRegistry(t, sampleConfig)

	conflict, err := r.HasAddressConflict("10.8.0.7")
	require.NoError(t, err)
	require.True(t, conflict)

	conflict, err = r.HasNameConflict("phone-android")
	require.NoError(t, err)
	require.True(t, conflict)

	conflict, err = r.HasNameConflict("unknown")
	require.NoError(t, err)
	require.False(t, conflict)
}
