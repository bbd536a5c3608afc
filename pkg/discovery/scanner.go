package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leviosa-shades/leviosa/internal/logging"
)

const (
	// ZoneSignature identifies Leviosa Zone advertisements inside the USN
	ZoneSignature = "urn:leviosa:device:wiShadeController:1"

	// DefaultWindow is how long discovery listens. Zones advertise every
	// few seconds, so 20s reliably catches every zone on the segment.
	DefaultWindow = 20 * time.Second
)

// Collector filters advertisements by signature and keeps the first address
// seen for each device. It is safe for concurrent use.
type Collector struct {
	signature string

	mu    sync.Mutex
	found map[string]string
}

// NewCollector creates a collector accepting advertisements whose USN
// contains signature.
func NewCollector(signature string) *Collector {
	return &Collector{
		signature: signature,
		found:     make(map[string]string),
	}
}

// Accept records adv and reports whether it was new. Advertisements for
// other device types, without a device id or address, or for a device
// already recorded are rejected.
func (c *Collector) Accept(adv Advertisement) bool {
	if !strings.Contains(adv.USN, c.signature) {
		return false
	}
	if adv.UDN == "" {
		return false
	}
	ip := adv.IP()
	if ip == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.found[adv.UDN]; seen {
		return false
	}
	c.found[adv.UDN] = ip
	return true
}

// Results returns a copy of the device id -> IP mapping collected so far
func (c *Collector) Results() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string, len(c.found))
	for udn, ip := range c.found {
		out[udn] = ip
	}
	return out
}

// Scanner runs timed discovery sessions
type Scanner struct {
	// Window is how long to listen. The window always runs to completion.
	Window time.Duration

	// Signature is matched against each advertisement's USN
	Signature string

	// NewListener creates the advertisement source for one session.
	// Defaults to NewSSDPListener.
	NewListener func() Listener

	// OnFound, if set, is called once per newly accepted zone from the
	// listener goroutine.
	OnFound func(udn, ip string)
}

// NewScanner creates a scanner for Leviosa zones with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Window:    DefaultWindow,
		Signature: ZoneSignature,
	}
}

// Discover listens for the scanner's window and returns device id -> IP for
// every zone heard. An empty map means no zones were found. Failure to open
// the listener is returned; unparsable datagrams are ignored. If ctx ends
// first, the listener is still closed and ctx.Err() is returned.
func (s *Scanner) Discover(ctx context.Context) (map[string]string, error) {
	runID := uuid.NewString()
	collector := NewCollector(s.Signature)

	newListener := s.NewListener
	if newListener == nil {
		newListener = func() Listener { return NewSSDPListener() }
	}
	listener := newListener()

	logging.Debug("Starting Leviosa zone discovery",
		zap.String("run_id", runID),
		zap.Duration("window", s.Window),
	)

	err := listener.Start(func(adv Advertisement) {
		if !collector.Accept(adv) {
			return
		}
		logging.LogAdvertisement(runID, adv.UDN, adv.IP(), adv.USN)
		if s.OnFound != nil {
			s.OnFound(adv.UDN, adv.IP())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start zone discovery: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			logging.Warn("Failed to close discovery listener", zap.Error(err))
		}
		logging.Debug("Stopped Leviosa zone discovery", zap.String("run_id", runID))
	}()

	timer := time.NewTimer(s.Window)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		logging.Debug("Zone discovery interrupted",
			zap.String("run_id", runID),
			zap.Error(ctx.Err()),
		)
		return nil, ctx.Err()
	}

	return collector.Results(), nil
}

// Discover listens for Leviosa zone advertisements for window and returns
// device id -> IP. A non-positive window uses DefaultWindow.
func Discover(ctx context.Context, window time.Duration) (map[string]string, error) {
	scanner := NewScanner()
	if window > 0 {
		scanner.Window = window
	}
	return scanner.Discover(ctx)
}
