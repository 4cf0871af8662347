package dnsd

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"wg-hub/pkg/wgconf"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer("127.0.0.1", 0, testResolver(t))
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s
}

func exchange(t *testing.T, s *Server, name string, qtype uint16) *dns.Msg {
	t.Helper()
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)

	c := &dns.Client{Timeout: 3 * time.Second}
	resp, _, err := c.Exchange(m, s.Addr().String())
	require.NoError(t, err)
	return resp
}

func TestServerAnswersPeerQuery(t *testing.T) {
	s := startTestServer(t)

	resp := exchange(t, s, "home-nas.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)
	require.Len(t, resp.Answer, 1)

	a, ok := resp.Answer[0].(*dns.A)
	require.True(t, ok)
	require.Equal(t, "10.8.0.6", a.A.String())
	require.Equal(t, uint32(answerTTL), a.Hdr.Ttl)
}

func TestServerNXDomain(t *testing.T) {
	s := startTestServer(t)

	resp := exchange(t, s, "unknown-device.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeNameError, resp.Rcode)
	require.Empty(t, resp.Answer)

	resp = exchange(t, s, "home-nas.vpn.example.com", dns.TypeAAAA)
	require.Equal(t, dns.RcodeNameError, resp.Rcode)
}

func TestServerStop(t *testing.T) {
	s := NewServer("127.0.0.1", 0, testResolver(t))
	require.NoError(t, s.Start())

	resp := exchange(t, s, "server.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopWait + time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestServerUnparsableAddressIsNXDomain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wg0.conf")
	broken := resolverConfig + `
# ==========================================
# ClientName: broken-entry
# AddedAt: 2026-08-20
# ==========================================
[Peer]
PublicKey = YnJva2VuLXB1YmxpYy1rZXktZm9yLXRlc3RzPT0=
AllowedIPs = not-an-address/32
`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o600))
	registry := wgconf.NewRegistry(path,
		netip.MustParsePrefix("10.8.0.0/24"),
		netip.MustParseAddr("10.8.0.1"))

	s := NewServer("127.0.0.1", 0, NewResolver(registry, "vpn.example.com"))
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	resp := exchange(t, s, "broken-entry.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeNameError, resp.Rcode)
	require.Empty(t, resp.Answer)

	// Valid entries in the same file still resolve.
	resp = exchange(t, s, "home-nas.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)
}

func TestServerIgnoresGarbage(t *testing.T) {
	s := startTestServer(t)
	require.Nil(t, s.handle([]byte("not a dns message")))

	// The loop keeps serving after a garbage datagram.
	resp := exchange(t, s, "gateway.vpn.example.com", dns.TypeA)
	require.Equal(t, dns.RcodeSuccess, resp.Rcode)
}
