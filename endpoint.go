// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"
	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/dtlspsk/client/internal/closer"
	"github.com/dtlspsk/client/pkg/protocol/recordlayer"
)

const inboundBufferSize = 8192

// MessageInfo carries the ancillary data a delivered application message
// arrives with: the peer address and port it came from, and its size.
type MessageInfo struct {
	Addr net.IP
	Port int
	Size int
}

// packetConn abstracts the two address-family-specific sockets behind one
// read/write surface, the way the pack's UDP listeners split IPv4 and IPv6
// handling while sharing a common interface.
type packetConn interface {
	ReadFrom(b []byte) (n int, addr net.Addr, err error)
	WriteTo(b []byte, addr net.Addr) (int, error)
	Close() error
}

type pconnV4 struct{ *ipv4.PacketConn }
type pconnV6 struct{ *ipv6.PacketConn }

func (p pconnV4) ReadFrom(b []byte) (int, net.Addr, error) {
	n, _, addr, err := p.PacketConn.ReadFrom(b)
	return n, addr, err
}

func (p pconnV6) ReadFrom(b []byte) (int, net.Addr, error) {
	n, _, addr, err := p.PacketConn.ReadFrom(b)
	return n, addr, err
}

// Endpoint owns a single datagram socket and the set of Sessions
// multiplexed over it. All session state is mutated only from the
// single reader goroutine started by NewEndpoint; Send and Close hand
// their work to that goroutine rather than touching session state
// directly.
type Endpoint struct {
	conn   packetConn
	family Family

	log      logging.LeveledLogger
	resolver *net.Resolver

	replayProtectionWindow uint

	closed *closer.Closer
	refs   int32

	mu       sync.Mutex
	sessions map[sessionKey]*Session
	byAddr   map[string]*Session

	onMessage func(ctx context.Context, payload []byte, info MessageInfo)

	actions chan func()
}

// NewEndpoint binds a UDP socket of the requested family and starts the
// endpoint's single reader loop. Close tears the socket down; a Send
// issued after Close returns errEndpointClosed.
func NewEndpoint(network, address string, opts ...Option) (*Endpoint, error) {
	o := defaultEndpointOptions()
	for _, opt := range opts {
		opt(o)
	}

	conn, err := listen(o.family, network, address)
	if err != nil {
		return nil, errors.Wrap(err, "listen")
	}

	e := &Endpoint{
		conn:                   conn,
		family:                 o.family,
		log:                    o.loggerFactory.NewLogger("dtls"),
		resolver:               net.DefaultResolver,
		replayProtectionWindow: o.replayProtectionWindow,
		closed:                 closer.NewCloser(),
		refs:                   1,
		sessions:               map[sessionKey]*Session{},
		byAddr:                 map[string]*Session{},
		actions:                make(chan func(), 32),
	}

	go e.loop()
	return e, nil
}

func listen(family Family, network, address string) (packetConn, error) {
	switch family {
	case FamilyIPv6:
		udp, err := net.ListenPacket(udpNetwork(network, "udp6"), address)
		if err != nil {
			return nil, errors.Wrapf(err, "listen udp6 %s", address)
		}
		return pconnV6{ipv6.NewPacketConn(udp)}, nil
	default:
		udp, err := net.ListenPacket(udpNetwork(network, "udp4"), address)
		if err != nil {
			return nil, errors.Wrapf(err, "listen udp4 %s", address)
		}
		return pconnV4{ipv4.NewPacketConn(udp)}, nil
	}
}

func udpNetwork(network, fallback string) string {
	if network == "" {
		return fallback
	}
	return network
}

// OnMessage registers the callback invoked for every successfully
// decrypted application-data payload delivered to any session.
func (e *Endpoint) OnMessage(fn func(ctx context.Context, payload []byte, info MessageInfo)) {
	e.onMessage = fn
}

// Ref increments the endpoint's reference count.
func (e *Endpoint) Ref() { atomic.AddInt32(&e.refs, 1) }

// Unref decrements the reference count and closes the endpoint once it
// reaches zero.
func (e *Endpoint) Unref() error {
	if atomic.AddInt32(&e.refs, -1) <= 0 {
		return e.Close()
	}
	return nil
}

// Close tears down the socket immediately. In-flight callbacks may still
// fire with a Failed condition; this implementation simply drops them.
func (e *Endpoint) Close() error {
	e.closed.Close()
	return e.conn.Close()
}

// Send resolves the destination, finds or creates the matching session,
// and either hands the data to an established session directly or
// queues it behind the new session's connect callback.
func (e *Endpoint) Send(ctx context.Context, data []byte, host string, port int, identity, psk []byte) error {
	addr, err := e.resolve(ctx, host, port)
	if err != nil {
		return err
	}

	key := sessionKey{addr: addr.String(), identity: string(identity), psk: string(psk)}

	result := make(chan error, 1)
	e.dispatch(func() {
		result <- e.sendLocked(key, addr, data, identity, psk)
	})
	select {
	case err := <-result:
		return err
	case <-e.closed.Done():
		return errEndpointClosed
	}
}

func (e *Endpoint) sendLocked(key sessionKey, addr *net.UDPAddr, data, identity, psk []byte) error {
	e.mu.Lock()
	s, ok := e.sessions[key]
	if !ok {
		s = newSession(e, key, addr, identity, psk)
		e.sessions[key] = s
		e.byAddr[addr.String()] = s
		s.onDisconnect = func() {
			e.dispatch(func() { e.removeSessionLocked(key) })
		}
		s.onMessage = func(payload []byte) {
			if e.onMessage != nil {
				e.onMessage(context.Background(), payload, MessageInfo{Addr: addr.IP, Port: addr.Port, Size: len(payload)})
			}
		}
	}
	e.mu.Unlock()

	if !ok {
		if err := s.start(); err != nil {
			return err
		}
	}
	return s.SendApplication(data)
}

func (e *Endpoint) resolve(ctx context.Context, host string, port int) (*net.UDPAddr, error) {
	if ip := net.ParseIP(host); ip != nil && (ip.To4() != nil) == (e.family == FamilyIPv4) {
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}

	network := "ip4"
	if e.family == FamilyIPv6 {
		network = "ip6"
	}
	ips, err := e.resolver.LookupIP(ctx, network, host)
	if err != nil {
		return nil, errors.Wrapf(errResolveFailed, "lookup %s: %v", host, err)
	}
	if len(ips) == 0 {
		return nil, errors.Wrapf(errResolveFailed, "lookup %s: no addresses", host)
	}
	return &net.UDPAddr{IP: ips[0], Port: port}, nil
}

// removeSession implements session teardown: the session is dropped from
// both indices, so later datagrams from that peer are dropped and a later
// Send to it starts a fresh session.
func (e *Endpoint) removeSession(key sessionKey) error {
	e.dispatch(func() { e.removeSessionLocked(key) })
	return nil
}

func (e *Endpoint) removeSessionLocked(key sessionKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[key]; ok {
		delete(e.byAddr, s.remote.String())
		delete(e.sessions, key)
	}
}

// writeTo sends one already-framed record to a peer. UDP writes do not
// block on a reply, so this runs inline on the caller's goroutine rather
// than being handed off to a separate loop stage.
func (e *Endpoint) writeTo(record []byte, addr *net.UDPAddr) error {
	_, err := e.conn.WriteTo(record, addr)
	return err
}

// dispatch runs fn on the endpoint's single event-loop goroutine,
// serializing it with inbound datagram processing.
func (e *Endpoint) dispatch(fn func()) {
	select {
	case e.actions <- fn:
	case <-e.closed.Done():
	}
}

// loop is the endpoint's single reader goroutine: it owns the socket and
// all session state. No other goroutine may touch session state
// directly; they must go through dispatch.
func (e *Endpoint) loop() {
	buf := make([]byte, inboundBufferSize)
	for {
		select {
		case fn := <-e.actions:
			fn()
			continue
		default:
		}

		n, addr, err := e.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-e.closed.Done():
				return
			default:
			}
			continue
		}
		e.onDatagram(buf[:n], addr)
	}
}

// onDatagram iteratively decodes records until exhausted, abandoning the
// remainder on any parse failure mid-datagram, and routes each record to
// the session matching the peer address.
func (e *Endpoint) onDatagram(datagram []byte, addr net.Addr) {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return
	}

	e.mu.Lock()
	s, ok := e.byAddr[udpAddr.String()]
	e.mu.Unlock()
	if !ok {
		return
	}

	records, err := recordlayer.UnpackDatagram(datagram)
	if err != nil {
		return
	}

	for _, raw := range records {
		if err := s.handleRecord(raw); err != nil {
			return
		}
	}
}
