// Package config manages the leviosa CLI's user configuration file.
//
// The file remembers zones found by discovery (keyed by UDN) together with
// the names of their shade groups, plus a few preferences. Only the CLI
// reads it; the library packages take everything as arguments.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/leviosa/config.yaml or $HOME/.config/leviosa/config.yaml
//   - macOS: $HOME/.config/leviosa/config.yaml
//   - Windows: %LOCALAPPDATA%\leviosa\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.UpdateZoneLastSeen("uuid:Leviosa-ZoneWiFi-1_0-5ccf7f0a1b2c", "192.168.1.40")
//	registry.SetGroups("uuid:Leviosa-ZoneWiFi-1_0-5ccf7f0a1b2c",
//	    []string{"All groups", "Kitchen", "Living room"})
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Saves are atomic (temporary file plus rename).
package config
