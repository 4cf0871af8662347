package dnsd

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

const (
	answerTTL    = 60
	readInterval = time.Second
	stopWait     = 2 * time.Second
)

// Server is a UDP DNS responder for the overlay zone. One goroutine
// owns the socket and answers queries sequentially; device-name lookup
// volume does not justify more.
type Server struct {
	addr     string
	resolver *Resolver
	conn     *net.UDPConn
	quit     chan struct{}
	done     chan struct{}
}

func NewServer(listenAddr string, port int, resolver *Resolver) *Server {
	return &Server{
		addr:     net.JoinHostPort(listenAddr, strconv.Itoa(port)),
		resolver: resolver,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start binds the socket with SO_REUSEADDR and launches the serve loop.
func (s *Server) Start() error {
	lc := net.ListenConfig{Control: reuseAddr}
	pc, err := lc.ListenPacket(context.Background(), "udp", s.addr)
	if err != nil {
		return fmt.Errorf("dns listen %s: %w", s.addr, err)
	}
	s.conn = pc.(*net.UDPConn)
	log.Printf("dns server listening on %s", s.conn.LocalAddr())
	go s.serve()
	return nil
}

// Addr returns the bound address, for callers that listened on port 0.
func (s *Server) Addr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Stop signals the loop and waits (bounded) for the socket to close.
func (s *Server) Stop() {
	if s.conn == nil {
		return
	}
	close(s.quit)
	select {
	case <-s.done:
	case <-time.After(stopWait):
		log.Printf("dns server did not stop within %s", stopWait)
	}
}

// serve reads one datagram at a time under a short deadline so the quit
// signal is observed promptly between reads.
func (s *Server) serve() {
	defer close(s.done)
	defer s.conn.Close()

	buf := make([]byte, 512)
	for {
		select {
		case <-s.quit:
			return
		default:
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(readInterval))
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			log.Printf("dns read error: %v", err)
			continue
		}

		if resp := s.handle(buf[:n]); resp != nil {
			_, _ = s.conn.WriteToUDP(resp, addr)
		}
	}
}

// handle decodes one query and builds the wire response: a single A
// answer for resolvable names, NXDOMAIN otherwise. Garbage datagrams
// get no response at all.
func (s *Server) handle(data []byte) []byte {
	var req dns.Msg
	if err := req.Unpack(data); err != nil || len(req.Question) == 0 {
		return nil
	}
	q := req.Question[0]

	reply := new(dns.Msg)
	reply.SetReply(&req)

	ip, ok := s.resolver.Resolve(q.Name, q.Qtype)
	// A registry entry with an unparseable address answers NXDOMAIN
	// rather than an A record with empty rdata.
	if addr := net.ParseIP(ip); ok && addr != nil {
		reply.Answer = append(reply.Answer, &dns.A{
			Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: answerTTL},
			A:   addr,
		})
	} else {
		reply.Rcode = dns.RcodeNameError
	}

	out, err := reply.Pack()
	if err != nil {
		return nil
	}
	return out
}
