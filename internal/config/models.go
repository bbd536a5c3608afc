package config

import (
	"time"

	"github.com/leviosa-shades/leviosa/pkg/zone"
)

const (
	// DefaultDiscoverWindow is the discovery window in seconds
	DefaultDiscoverWindow = 20

	// DefaultRequestTimeout is the hub request timeout in seconds
	DefaultRequestTimeout = 15
)

// Registry represents the entire user configuration file.
// It remembers zones the CLI has seen and the names given to their groups.
type Registry struct {
	Version     int              `yaml:"version"`
	Zones       map[string]*Zone `yaml:"zones,omitempty"` // Keyed by zone UDN
	Preferences *Preferences     `yaml:"preferences,omitempty"`
}

// Zone represents user-defined metadata for a single Leviosa Zone.
type Zone struct {
	Name     string    `yaml:"name,omitempty"`      // User-friendly name
	LastIP   string    `yaml:"last_ip,omitempty"`   // Last known IP address
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery time
	// Groups lists group names in hub order; position i is group index i.
	Groups []string `yaml:"groups,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverWindow int `yaml:"discover_window"` // Discovery window in seconds
	RequestTimeout int `yaml:"request_timeout"` // Hub request timeout in seconds
}

// DefaultGroups is used for zones with no configured groups: the all-groups
// entry followed by the six groups a Zone hub supports.
var DefaultGroups = []string{
	zone.AllGroupsName,
	"Group ONE",
	"Group TWO",
	"Group THREE",
	"Group FOUR",
	"Group FIVE",
	"Group SIX",
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DiscoverWindow: DefaultDiscoverWindow,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Zones:       make(map[string]*Zone),
		Preferences: defaultPreferences(),
	}
}

// GetZone retrieves zone metadata by UDN. Returns nil if unknown.
func (r *Registry) GetZone(udn string) *Zone {
	return r.Zones[udn]
}

// EnsureZone returns the entry for udn, creating it if needed.
func (r *Registry) EnsureZone(udn string) *Zone {
	if r.Zones == nil {
		r.Zones = make(map[string]*Zone)
	}
	if z, ok := r.Zones[udn]; ok {
		return z
	}
	z := &Zone{}
	r.Zones[udn] = z
	return z
}

// UpdateZoneLastSeen records a discovery of udn at ip.
func (r *Registry) UpdateZoneLastSeen(udn, ip string) {
	z := r.EnsureZone(udn)
	z.LastSeen = time.Now()
	z.LastIP = ip
}

// SetZoneName sets a user-friendly name for a zone.
func (r *Registry) SetZoneName(udn, name string) {
	r.EnsureZone(udn).Name = name
}

// SetGroups replaces the group names of a zone. Order defines group index.
func (r *Registry) SetGroups(udn string, names []string) {
	r.EnsureZone(udn).Groups = append([]string(nil), names...)
}

// FindByIP returns the UDN and entry of the zone last seen at ip.
func (r *Registry) FindByIP(ip string) (string, *Zone) {
	for udn, z := range r.Zones {
		if z.LastIP == ip {
			return udn, z
		}
	}
	return "", nil
}

// GroupNames returns the zone's configured groups, or DefaultGroups.
func (z *Zone) GroupNames() []string {
	if z == nil || len(z.Groups) == 0 {
		return append([]string(nil), DefaultGroups...)
	}
	return append([]string(nil), z.Groups...)
}

// DiscoverWindowDuration returns the configured discovery window.
func (p *Preferences) DiscoverWindowDuration() time.Duration {
	if p == nil || p.DiscoverWindow <= 0 {
		return DefaultDiscoverWindow * time.Second
	}
	return time.Duration(p.DiscoverWindow) * time.Second
}

// RequestTimeoutDuration returns the configured hub request timeout.
func (p *Preferences) RequestTimeoutDuration() time.Duration {
	if p == nil || p.RequestTimeout <= 0 {
		return DefaultRequestTimeout * time.Second
	}
	return time.Duration(p.RequestTimeout) * time.Second
}
