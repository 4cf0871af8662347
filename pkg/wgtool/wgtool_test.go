package wgtool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"wg-hub/pkg/model"
)

const sampleDump = "cHJpdmF0ZQ==\tc2VydmVyLXB1YmxpYw==\t51820\toff\n" +
	"bWFjYm9vaw==\t(none)\t203.0.113.10:61001\t10.8.0.5/32\t1756400000\t1048576\t2097152\toff\n" +
	"cGhvbmU=\tcHNr\t(none)\t10.8.0.7/32\t0\t0\t0\t25\n"

func TestParseDump(t *testing.T) {
	status := ParseDump(sampleDump)
	require.Len(t, status, 2)

	mac := status["bWFjYm9vaw=="]
	require.False(t, mac.HasPresharedKey)
	require.Equal(t, "203.0.113.10:61001", mac.Endpoint)
	require.Equal(t, "10.8.0.5/32", mac.AllowedIPs)
	require.Equal(t, int64(1756400000), mac.LatestHandshake)
	require.Equal(t, int64(1048576), mac.TransferRx)
	require.Equal(t, int64(2097152), mac.TransferTx)
	require.Zero(t, mac.Keepalive)

	phone := status["cGhvbmU="]
	require.True(t, phone.HasPresharedKey)
	require.Empty(t, phone.Endpoint)
	require.Zero(t, phone.LatestHandshake)
	require.Equal(t, 25, phone.Keepalive)
}

func TestParseDumpEmpty(t *testing.T) {
	require.Empty(t, ParseDump(""))
	// Interface summary alone means no peers.
	require.Empty(t, ParseDump("cHJpdmF0ZQ==\tcHVibGlj\t51820\toff\n"))
}

func TestParseDumpSkipsShortLines(t *testing.T) {
	out := "iface-line\nbad\tline\n" +
		"a2V5\tcHNr\t(none)\t10.8.0.9/32\t0\t0\t0\toff\n"
	status := ParseDump(out)
	require.Len(t, status, 1)
	require.Contains(t, status, "a2V5")
}

func TestMergeStatus(t *testing.T) {
	peers := []model.Peer{
		{Name: "macbook-pro", PublicKey: "bWFjYm9vaw=="},
		{Name: "offline-device", PublicKey: "b2ZmbGluZQ=="},
	}

	MergeStatus(peers, ParseDump(sampleDump))

	require.Equal(t, int64(1756400000), peers[0].LatestHandshake)
	require.Equal(t, int64(1048576), peers[0].TransferRx)
	require.Equal(t, int64(2097152), peers[0].TransferTx)

	require.Zero(t, peers[1].LatestHandshake)
	require.Zero(t, peers[1].TransferRx)
}

func TestNewDefaultsInterface(t *testing.T) {
	require.Equal(t, "wg0", New("").Interface)
	require.Equal(t, "wg1", New("wg1").Interface)
}
