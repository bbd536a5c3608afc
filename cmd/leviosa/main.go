// Leviosa controls Leviosa Zone motorized shade hubs on the local network.
//
// It listens for zone advertisements, remembers zones and their shade group
// names, and sends group commands (open, close, up, down, stop) to a hub.
//
// Usage:
//
//	leviosa [command] [flags]
//
// See 'leviosa --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/leviosa-shades/leviosa/internal/logging"
	"github.com/leviosa-shades/leviosa/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := fang.Execute(ctx, rootCmd)
	logging.Sync()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "leviosa",
	Short: "Leviosa Zone shade hub utility",
	Long: `Discover and control Leviosa Zone motorized shade hubs.

Zones announce themselves on the local network; 'leviosa scan' listens for
them and remembers what it hears. Group commands then address a zone by
--zone (IP, name or device id), or the only remembered zone.

Group 0 is "All groups" on every hub; groups 1-6 are the hub's shade groups.`,
	Version: version.Version,
	Example: `  # Listen for zones for 20 seconds
  leviosa scan

  # Show firmware and groups of a zone
  leviosa info --zone 192.168.1.40

  # Open group 2 on the only known zone
  leviosa open 2

  # Name the groups of a zone
  leviosa groups set Kitchen "Living room" Bedroom`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error); defaults to $"+logging.LogLevelEnvVar+" or silent")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "leviosa %s\n", version.Full())
	},
}
