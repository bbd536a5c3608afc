package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/leviosa-shades/leviosa/internal/logging"
)

const (
	// MulticastAddress is the SSDP group and port zones advertise on
	MulticastAddress = "239.255.255.250:1900"

	// ListenAddress binds the SSDP port on every local interface
	ListenAddress = "0.0.0.0:1900"

	maxDatagramSize = 8192
)

// Handler receives alive advertisements. It is called from the listener's
// read goroutine.
type Handler func(Advertisement)

// Listener is a passive source of advertisements. Start begins delivery to
// the handler; Close stops it and releases the socket. No handler calls
// happen after Close returns.
type Listener interface {
	Start(handler Handler) error
	Close() error
}

// SSDPListener receives SSDP NOTIFY datagrams. It never sends M-SEARCH
// queries: zones only announce themselves.
type SSDPListener struct {
	// Address is the local UDP address to bind
	Address string

	// Group is the multicast group to join. Nil disables joining, which is
	// only useful for unicast tests.
	Group *net.UDPAddr

	conn net.PacketConn
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewSSDPListener returns a listener bound to the standard SSDP port and
// group on all interfaces.
func NewSSDPListener() *SSDPListener {
	group, _ := net.ResolveUDPAddr("udp4", MulticastAddress)
	return &SSDPListener{
		Address: ListenAddress,
		Group:   group,
	}
}

// Start binds the socket, joins the multicast group and starts reading.
func (l *SSDPListener) Start(handler Handler) error {
	lc := net.ListenConfig{Control: reuseAddrControl}
	conn, err := lc.ListenPacket(context.Background(), "udp4", l.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.Address, err)
	}

	if l.Group != nil {
		if err := joinAll(ipv4.NewPacketConn(conn), l.Group); err != nil {
			_ = conn.Close()
			return err
		}
	}

	l.conn = conn
	logging.Debug("SSDP listener started", zap.String("addr", conn.LocalAddr().String()))

	l.wg.Add(1)
	go l.readLoop(handler)
	return nil
}

// LocalAddr returns the bound address, or nil before Start.
func (l *SSDPListener) LocalAddr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Close releases the socket and waits for the read loop to exit.
// It is safe to call more than once.
func (l *SSDPListener) Close() error {
	l.mu.Lock()
	if l.closed || l.conn == nil {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	err := l.conn.Close()
	l.wg.Wait()
	logging.Debug("SSDP listener stopped")
	return err
}

func (l *SSDPListener) readLoop(handler Handler) {
	defer l.wg.Done()

	buf := make([]byte, maxDatagramSize)
	for {
		n, src, err := l.conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logging.Warn("SSDP read failed", zap.Error(err))
			}
			return
		}

		adv, err := ParseNotify(buf[:n], src)
		if err != nil {
			logging.LogRawBytes("Ignoring SSDP datagram", buf[:n])
			continue
		}
		if adv.NTS != NTSAlive {
			continue
		}
		handler(adv)
	}
}

// joinAll joins group on every up, multicast-capable interface. It fails
// only when no interface could join.
func joinAll(p *ipv4.PacketConn, group *net.UDPAddr) error {
	ifaces, err := net.Interfaces()
	if err != nil {
		return fmt.Errorf("failed to list network interfaces: %w", err)
	}

	joined := 0
	var lastErr error
	for i := range ifaces {
		ifi := &ifaces[i]
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 {
			continue
		}
		if err := p.JoinGroup(ifi, group); err != nil {
			lastErr = err
			logging.Debug("Could not join SSDP group",
				zap.String("interface", ifi.Name),
				zap.Error(err),
			)
			continue
		}
		joined++
	}

	if joined == 0 {
		// Let the kernel pick an interface.
		if err := p.JoinGroup(nil, group); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return fmt.Errorf("failed to join SSDP group %s: %w", group, lastErr)
		}
	}
	return nil
}
