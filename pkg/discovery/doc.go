// Package discovery finds Leviosa Zone hubs by listening for their SSDP
// advertisements.
//
// Zones announce themselves with periodic NOTIFY datagrams on the SSDP
// multicast group but do not answer M-SEARCH queries and serve no
// description document, so discovery is purely passive: listen for a fixed
// window, keep every advertisement whose USN contains ZoneSignature, and
// return one address per device.
//
//	zones, err := discovery.Discover(ctx, 20*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for udn, ip := range zones {
//	    fmt.Printf("%s at %s\n", udn, ip)
//	}
//
// The address recorded for a zone is the one it advertised, falling back to
// the source address of the datagram. The first advertisement for a device
// wins. The last segment of a zone's UDN carries its MAC address.
//
// The socket is released when Discover returns, including when ctx is
// cancelled mid-window.
package discovery
