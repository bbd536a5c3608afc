package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leviosa-shades/leviosa/internal/ui"
	"github.com/leviosa-shades/leviosa/pkg/zone"
)

var exercisePause time.Duration

// exerciseCmd drives every group of a zone through each command
var exerciseCmd = &cobra.Command{
	Use:   "exercise [group]",
	Short: "Run every command against each group of a zone",
	Long: `Walk each shade group of a zone through open, stop, close, up and down,
pausing between steps so the motion can be watched.

This is a hands-on check after installing or re-pairing shades. With a
group argument only that group is exercised.`,
	Example: `  # Exercise every group of the only known zone
  leviosa exercise

  # Exercise group 2 with short pauses
  leviosa exercise 2 --pause 1s`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		groupArg := ""
		if len(args) == 1 {
			groupArg = args[0]
		}
		return a.runExercise(cmd.Context(), groupArg, exercisePause)
	},
}

func init() {
	exerciseCmd.Flags().DurationVar(&exercisePause, "pause", 2*time.Second, "Pause between steps")
}

type exerciseStep struct {
	label string
	run   func(*zone.Group, context.Context) error
	// pause is in multiples of the base pause
	pause float64
}

var exerciseSteps = []exerciseStep{
	{"Opening", (*zone.Group).Open, 1},
	{"Stopping", (*zone.Group).Stop, 1},
	{"Closing", (*zone.Group).Close, 0},
	{"Next up position", (*zone.Group).Up, 1},
	{"Next down position", (*zone.Group).Down, 2.5},
}

// wait returns the pause after the step for a base pause
func (s exerciseStep) wait(base time.Duration) time.Duration {
	return time.Duration(s.pause * float64(base))
}

func (a *app) runExercise(ctx context.Context, groupArg string, pause time.Duration) error {
	t, err := a.resolveZone(ctx)
	if err != nil {
		return err
	}

	hub := a.newHub(t)
	defer hub.Close()

	if err := hub.FetchInfo(ctx); err != nil {
		return a.hubFailure("Zone query failed", err)
	}
	a.printer.Printf("Testing with %s, firmware %s, %d group(s)\n", t.Label(), hub.Firmware(), len(hub.Groups()))

	groups := hub.Groups()
	if groupArg != "" {
		g, err := findGroup(hub, groupArg)
		if err != nil {
			return err
		}
		groups = []*zone.Group{g}
	}

	for _, g := range groups {
		a.printer.Println("")
		a.printer.Println(ui.TitleStyle.Render(fmt.Sprintf("%d  %s", g.Index(), g.Name())))
		for _, step := range exerciseSteps {
			a.printer.Printf("  %s\n", step.label)
			if err := step.run(g, ctx); err != nil {
				return a.hubFailure(fmt.Sprintf("%s %s", step.label, g.Name()), err)
			}
			if err := sleepCtx(ctx, step.wait(pause)); err != nil {
				return err
			}
		}
	}

	a.printer.Println("")
	a.printer.PrintResult(ui.NewSuccessResult("Exercise complete").
		AddDetail("Zone", t.Label()).
		AddDetail("Groups", fmt.Sprintf("%d", len(groups))))
	return nil
}

// sleepCtx waits for d or until ctx ends
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
