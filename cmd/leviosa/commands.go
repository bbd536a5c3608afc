package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leviosa-shades/leviosa/internal/ui"
	"github.com/leviosa-shades/leviosa/pkg/zone"
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(nameCmd)

	for _, verb := range []string{zone.CommandOpen, zone.CommandClose, zone.CommandUp, zone.CommandDown, zone.CommandStop} {
		rootCmd.AddCommand(newGroupCommand(verb))
	}

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsSetCmd)
}

// scanCmd listens for zone advertisements
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Listen for Leviosa zones on the network",
	Long: `Listen passively for Leviosa Zone SSDP advertisements.

Zones announce themselves every few seconds. The scan always runs for the
whole window, then lists every zone heard and remembers it in the config
file so later commands can find it without scanning.`,
	Example: `  # Listen for 20 seconds (default)
  leviosa scan

  # Quick 5-second scan
  leviosa scan --window 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.runScan(cmd.Context())
	},
}

func (a *app) runScan(ctx context.Context) error {
	found, err := a.scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	a.printer.Println("")
	a.printer.PrintZones(a.zoneRows(found))
	if len(found) > 0 {
		a.printer.Println("")
		a.printer.Println("Use 'leviosa info --zone <ip>' to query a zone")
	}
	return nil
}

// infoCmd queries a hub's firmware and shows its groups
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show zone firmware and groups",
	Long: `Query a zone hub for its firmware version and list its shade groups.

A hub whose root document has no usable firmware field reports "invalid"
but stays controllable.`,
	Example: `  leviosa info --zone 192.168.1.40`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.runInfo(cmd.Context())
	},
}

func (a *app) runInfo(ctx context.Context) error {
	t, err := a.resolveZone(ctx)
	if err != nil {
		return err
	}

	hub := a.newHub(t)
	defer hub.Close()

	if err := hub.FetchInfo(ctx); err != nil {
		return a.hubFailure("Zone query failed", err)
	}

	result := ui.NewSuccessResult("Zone " + t.Label()).
		AddDetail("Address", hub.IP()).
		AddDetail("Firmware", hub.Firmware())
	if t.UDN != "" {
		result.AddDetail("Device ID", t.UDN)
	}
	if t.Entry != nil && !t.Entry.LastSeen.IsZero() {
		result.AddDetail("Last seen", t.Entry.LastSeen.Format(time.RFC3339))
	}
	result.AddDetail("Groups", strconv.Itoa(len(hub.Groups())))
	a.printer.PrintResult(result)

	a.printer.PrintGroups(t.Label(), groupRows(hub))
	return nil
}

func groupRows(hub *zone.Hub) []ui.GroupRow {
	groups := hub.Groups()
	rows := make([]ui.GroupRow, len(groups))
	for i, g := range groups {
		rows[i] = ui.GroupRow{Index: g.Index(), Name: g.Name()}
	}
	return rows
}

var groupVerbHelp = map[string]string{
	zone.CommandOpen:  "Fully open a shade group",
	zone.CommandClose: "Fully close a shade group",
	zone.CommandUp:    "Move a shade group to its next position up",
	zone.CommandDown:  "Move a shade group to its next position down",
	zone.CommandStop:  "Stop a moving shade group",
}

// newGroupCommand builds the command sending verb to one group
func newGroupCommand(verb string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <group>",
		Short: groupVerbHelp[verb],
		Long: groupVerbHelp[verb] + `.

<group> is a group index (0 addresses all groups) or a group name from
'leviosa groups list'.`,
		Example: fmt.Sprintf("  leviosa %s 0\n  leviosa %s Kitchen --zone 192.168.1.40", verb, verb),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return a.runGroupCommand(cmd.Context(), verb, args[0])
		},
	}
}

func (a *app) runGroupCommand(ctx context.Context, verb, groupArg string) error {
	t, err := a.resolveZone(ctx)
	if err != nil {
		return err
	}

	hub := a.newHub(t)
	defer hub.Close()

	group, err := findGroup(hub, groupArg)
	if err != nil {
		return err
	}

	if err := group.Run(ctx, verb); err != nil {
		return a.hubFailure(fmt.Sprintf("%s %s", strings.ToUpper(verb[:1])+verb[1:], group.Name()), err)
	}

	a.printer.PrintResult(ui.NewSuccessResult(fmt.Sprintf("Sent %s to %s", verb, group.Name())).
		AddDetail("Zone", t.Label()).
		AddDetail("Group", fmt.Sprintf("%d (%s)", group.Index(), group.Name())).
		AddDetail("Position", strconv.Itoa(group.Position())))
	return nil
}

// groupsCmd groups the group-name subcommands
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List or name the shade groups of a zone",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shade groups of a zone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		t, err := a.resolveZone(cmd.Context())
		if err != nil {
			return err
		}
		hub := a.newHub(t)
		defer hub.Close()
		a.printer.PrintGroups(t.Label(), groupRows(hub))
		return nil
	},
}

var groupsSetCmd = &cobra.Command{
	Use:   "set <name>...",
	Short: "Name the shade groups of a zone",
	Long: `Name the shade groups of a zone, in hub order starting at group 1.

Group 0 is always "All groups". Names are stored in the config file only;
the hub itself does not know them.`,
	Example: `  leviosa groups set Kitchen "Living room" Bedroom --zone 192.168.1.40`,
	Args:    cobra.RangeArgs(1, 6),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return a.runGroupsSet(cmd.Context(), args)
	},
}

func (a *app) runGroupsSet(ctx context.Context, names []string) error {
	t, err := a.resolveZone(ctx)
	if err != nil {
		return err
	}
	if t.UDN == "" {
		return fmt.Errorf("zone %s is not remembered yet; run 'leviosa scan' first", t.IP)
	}

	a.registry.SetGroups(t.UDN, append([]string{zone.AllGroupsName}, names...))
	if err := a.save(a.registry); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	t.Entry = a.registry.GetZone(t.UDN)
	hub := a.newHub(t)
	defer hub.Close()
	a.printer.PrintGroups(t.Label(), groupRows(hub))
	return nil
}

// nameCmd gives a remembered zone a friendly name
var nameCmd = &cobra.Command{
	Use:   "name <name>",
	Short: "Give a zone a friendly name",
	Example: `  leviosa name Upstairs --zone 192.168.1.40
  leviosa open Kitchen --zone Upstairs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		t, err := a.resolveZone(cmd.Context())
		if err != nil {
			return err
		}
		if t.UDN == "" {
			return fmt.Errorf("zone %s is not remembered yet; run 'leviosa scan' first", t.IP)
		}
		a.registry.SetZoneName(t.UDN, args[0])
		if err := a.save(a.registry); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		a.printer.PrintResult(ui.NewSuccessResult("Zone named " + args[0]).AddDetail("Device ID", t.UDN))
		return nil
	},
}
