package main

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leviosa-shades/leviosa/internal/config"
	"github.com/leviosa-shades/leviosa/internal/logging"
	"github.com/leviosa-shades/leviosa/internal/ui"
	"github.com/leviosa-shades/leviosa/pkg/discovery"
	"github.com/leviosa-shades/leviosa/pkg/zone"
)

// Flags shared by zone commands
var (
	zoneFlag    string
	timeoutFlag int
	windowFlag  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&zoneFlag, "zone", "", "Zone IP, name or device id (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&timeoutFlag, "timeout", 0, "Hub request timeout in seconds (default from config, 15)")
	rootCmd.PersistentFlags().IntVar(&windowFlag, "window", 0, "Discovery window in seconds (default from config, 20)")
}

// app carries what a command needs: the registry, output and the discovery
// implementation.
type app struct {
	registry *config.Registry
	save     func(*config.Registry) error
	printer  *ui.Printer
	discover func(ctx context.Context, window time.Duration, onFound func(udn, ip string)) (map[string]string, error)

	zone    string
	timeout time.Duration
	window  time.Duration
}

func newApp(cmd *cobra.Command) (*app, error) {
	registry, err := config.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{
		registry: registry,
		save:     (*config.Registry).Save,
		printer:  ui.NewPrinter(cmd.OutOrStdout()),
		discover: scanZones,
		zone:     zoneFlag,
		timeout:  registry.Preferences.RequestTimeoutDuration(),
		window:   registry.Preferences.DiscoverWindowDuration(),
	}
	if timeoutFlag > 0 {
		a.timeout = time.Duration(timeoutFlag) * time.Second
	}
	if windowFlag > 0 {
		a.window = time.Duration(windowFlag) * time.Second
	}
	return a, nil
}

// scanZones runs one discovery window with the SSDP listener
func scanZones(ctx context.Context, window time.Duration, onFound func(udn, ip string)) (map[string]string, error) {
	scanner := discovery.NewScanner()
	scanner.Window = window
	scanner.OnFound = onFound
	return scanner.Discover(ctx)
}

// scan listens for zones, records them in the registry and saves it
func (a *app) scan(ctx context.Context) (map[string]string, error) {
	found, err := ui.RunScan(ctx, a.printer.Writer(), a.window, func(ctx context.Context, onFound func(udn, ip string)) (map[string]string, error) {
		return a.discover(ctx, a.window, onFound)
	})
	if err != nil {
		return nil, err
	}

	for udn, ip := range found {
		a.registry.UpdateZoneLastSeen(udn, ip)
	}
	if len(found) > 0 {
		if err := a.save(a.registry); err != nil {
			logging.Warn("Failed to save discovered zones", zap.Error(err))
		}
	}
	return found, nil
}

// target is a resolved zone: its address and, when known, its registry entry
type target struct {
	UDN   string
	IP    string
	Entry *config.Zone
}

// Label names the zone for output
func (t target) Label() string {
	if t.Entry != nil && t.Entry.Name != "" {
		return fmt.Sprintf("%s (%s)", t.Entry.Name, t.IP)
	}
	return t.IP
}

// resolveZone picks the zone a command addresses: --zone first, then the
// only remembered zone, then a discovery run that finds exactly one zone.
func (a *app) resolveZone(ctx context.Context) (target, error) {
	if a.zone != "" {
		return a.lookupZone(a.zone)
	}

	known := a.knownZones()
	switch len(known) {
	case 1:
		return known[0], nil
	case 0:
	default:
		return target{}, fmt.Errorf("%d zones are remembered; choose one with --zone (see 'leviosa scan')", len(known))
	}

	found, err := a.scan(ctx)
	if err != nil {
		return target{}, err
	}
	switch len(found) {
	case 0:
		return target{}, fmt.Errorf("no zones found; use --zone to give an IP address")
	case 1:
		for udn, ip := range found {
			return target{UDN: udn, IP: ip, Entry: a.registry.GetZone(udn)}, nil
		}
	}
	a.printer.PrintZones(a.zoneRows(found))
	return target{}, fmt.Errorf("found %d zones; choose one with --zone", len(found))
}

// lookupZone resolves a --zone value: an IP address, a device id or a
// remembered name.
func (a *app) lookupZone(value string) (target, error) {
	if ip := net.ParseIP(value); ip != nil {
		udn, entry := a.registry.FindByIP(value)
		return target{UDN: udn, IP: value, Entry: entry}, nil
	}

	if entry := a.registry.GetZone(value); entry != nil {
		if entry.LastIP == "" {
			return target{}, fmt.Errorf("zone %s has no known address; run 'leviosa scan'", value)
		}
		return target{UDN: value, IP: entry.LastIP, Entry: entry}, nil
	}

	for _, t := range a.knownZones() {
		if t.Entry.Name != "" && strings.EqualFold(t.Entry.Name, value) {
			return t, nil
		}
	}

	// Host names are passed through unchanged.
	if !strings.Contains(value, " ") && strings.Contains(value, ".") {
		return target{IP: value}, nil
	}
	return target{}, fmt.Errorf("unknown zone %q; give an IP address or run 'leviosa scan'", value)
}

// knownZones returns remembered zones with an address, sorted by IP
func (a *app) knownZones() []target {
	var out []target
	for udn, entry := range a.registry.Zones {
		if entry == nil || entry.LastIP == "" {
			continue
		}
		out = append(out, target{UDN: udn, IP: entry.LastIP, Entry: entry})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IP < out[j].IP })
	return out
}

func (a *app) zoneRows(found map[string]string) []ui.ZoneRow {
	rows := ui.ZoneRows(found)
	for i := range rows {
		if entry := a.registry.GetZone(rows[i].UDN); entry != nil {
			rows[i].Name = entry.Name
		}
	}
	return rows
}

// newHub creates a client for t with the zone's groups registered in order
func (a *app) newHub(t target) *zone.Hub {
	name := t.IP
	if t.Entry != nil && t.Entry.Name != "" {
		name = t.Entry.Name
	}

	hub := zone.NewHub(t.IP, name, zone.WithTimeout(a.timeout))
	for _, g := range t.Entry.GroupNames() {
		hub.AddGroup(g)
	}
	return hub
}

// findGroup resolves a group argument: an index or a group name
func findGroup(hub *zone.Hub, arg string) (*zone.Group, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if g := hub.Group(i); g != nil {
			return g, nil
		}
		return nil, fmt.Errorf("group %d does not exist on %s (0-%d)", i, hub.Name(), len(hub.Groups())-1)
	}
	if g := hub.GroupByName(arg); g != nil {
		return g, nil
	}
	return nil, fmt.Errorf("no group named %q on %s; see 'leviosa groups list'", arg, hub.Name())
}

// hubFailure prints a failure box for err and returns a short error for the
// command's exit status.
func (a *app) hubFailure(title string, err error) error {
	var tips []string
	for _, line := range strings.Split(zone.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	a.printer.PrintResult(ui.NewFailureResult(title, err, tips...))
	return fmt.Errorf("%s: %s", strings.ToLower(title), zone.ShortMessage(err))
}
