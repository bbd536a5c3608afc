package discovery

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NTSAlive is the notification subtype of an "I am here" advertisement
const NTSAlive = "ssdp:alive"

// Advertisement is one SSDP NOTIFY received from the network
type Advertisement struct {
	// NT is the notification type (e.g., "urn:leviosa:device:wiShadeController:1")
	NT string

	// NTS is the notification subtype, "ssdp:alive" or "ssdp:byebye"
	NTS string

	// USN is the unique service name, "<udn>::<type>"
	USN string

	// UDN is the device identifier taken from the USN (e.g., "uuid:...-5ccf7f0a1b2c")
	UDN string

	// Location is the LOCATION header, if the device sent one
	Location string

	// Server is the SERVER header
	Server string

	// Address is the address the device advertised for itself, may be empty
	Address string

	// Host is the network source of the datagram as "ip:port"
	Host string

	// ReceivedAt is when the datagram arrived
	ReceivedAt time.Time
}

// IP returns the address to reach the device at: the advertised address
// when present, otherwise the datagram source, without any port suffix.
func (a Advertisement) IP() string {
	addr := a.Address
	if addr == "" {
		addr = a.Host
	}
	return stripPort(addr)
}

// String returns a human-readable representation of the advertisement
func (a Advertisement) String() string {
	return fmt.Sprintf("%s %s at %s", a.NTS, a.UDN, a.IP())
}

// ParseNotify parses an SSDP datagram. Datagrams that are not NOTIFY
// requests return an error. The blank line after the headers is optional.
func ParseNotify(data []byte, src net.Addr) (Advertisement, error) {
	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(terminateHeaders(data))))
	if err != nil {
		return Advertisement{}, fmt.Errorf("failed to parse SSDP datagram: %w", err)
	}
	if req.Method != "NOTIFY" {
		return Advertisement{}, fmt.Errorf("unexpected SSDP method %q", req.Method)
	}

	usn := req.Header.Get("USN")
	if usn == "" {
		return Advertisement{}, fmt.Errorf("advertisement has no USN")
	}

	adv := Advertisement{
		NT:         req.Header.Get("NT"),
		NTS:        req.Header.Get("NTS"),
		USN:        usn,
		UDN:        UDNFromUSN(usn),
		Location:   req.Header.Get("LOCATION"),
		Server:     req.Header.Get("SERVER"),
		ReceivedAt: time.Now(),
	}
	// Only a literal IP in LOCATION counts as an advertised address.
	if adv.Location != "" {
		if u, err := url.Parse(adv.Location); err == nil && net.ParseIP(u.Hostname()) != nil {
			adv.Address = u.Host
		}
	}
	if src != nil {
		adv.Host = src.String()
	}
	return adv, nil
}

// terminateHeaders returns data ending in exactly one blank line. Some
// senders end the datagram right after the last header.
func terminateHeaders(data []byte) []byte {
	trimmed := bytes.TrimRight(data, "\r\n")
	out := make([]byte, 0, len(trimmed)+4)
	out = append(out, trimmed...)
	return append(out, "\r\n\r\n"...)
}

// UDNFromUSN returns the device part of a USN ("uuid:x::urn:y" -> "uuid:x").
func UDNFromUSN(usn string) string {
	if i := strings.Index(usn, "::"); i >= 0 {
		return usn[:i]
	}
	return usn
}

// stripPort removes a trailing ":port" from an address, if any.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}
