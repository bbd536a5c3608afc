package zone

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/leviosa-shades/leviosa/internal/logging"
)

// Command verbs understood by the hub's /command endpoint
const (
	CommandOpen  = "open"
	CommandClose = "close"
	CommandUp    = "up"
	CommandDown  = "down"
	CommandStop  = "stop"
)

// Recorded positions. The hub never reports where a group actually is, so
// these are the client's guesses after each command.
const (
	PositionClosed = 0
	PositionStep   = 50
	PositionOpen   = 100
)

// Direction selects the next preset position for MoveNext
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
)

func (d Direction) verb() string {
	if d == DirectionDown {
		return CommandDown
	}
	return CommandUp
}

// Group is a set of shades the hub moves together. Groups are created by
// Hub.AddGroup and live as long as their hub.
type Group struct {
	hub      *Hub
	index    int
	name     string
	position int
}

// Index is the hub-side group number used in command paths
func (g *Group) Index() int { return g.index }

// Name returns the display name
func (g *Group) Name() string { return g.name }

// Hub returns the owning hub
func (g *Group) Hub() *Hub { return g.hub }

// Position returns the last position this client commanded, 0..100.
// It is an optimistic approximation: the hub does not confirm positions and
// has no endpoint to query them. Up and Down record PositionStep because
// the real stop point is chosen by the hub.
func (g *Group) Position() int { return g.position }

// CanMove reports that groups accept open/close commands
func (g *Group) CanMove() bool { return true }

// CanTilt reports that groups have no tilt control
func (g *Group) CanTilt() bool { return false }

// Move sends the group fully closed when target is 0 and fully open for any
// other target.
func (g *Group) Move(ctx context.Context, target int) error {
	verb := CommandOpen
	g.position = PositionOpen
	if target == 0 {
		verb = CommandClose
		g.position = PositionClosed
	}

	logging.Debug("Setting group position",
		zap.String("group", g.name),
		zap.Int("position", g.position),
	)
	return g.hub.Post(ctx, commandPath(verb, g.index))
}

// MoveNext moves the group one preset step in dir.
func (g *Group) MoveNext(ctx context.Context, dir Direction) error {
	g.position = PositionStep

	logging.Debug("Moving group to next position",
		zap.String("group", g.name),
		zap.String("direction", dir.verb()),
	)
	return g.hub.Post(ctx, commandPath(dir.verb(), g.index))
}

// Open fully opens the group
func (g *Group) Open(ctx context.Context) error {
	return g.Move(ctx, PositionOpen)
}

// Close fully closes the group
func (g *Group) Close(ctx context.Context) error {
	return g.Move(ctx, PositionClosed)
}

// Up moves to the next position up
func (g *Group) Up(ctx context.Context) error {
	return g.MoveNext(ctx, DirectionUp)
}

// Down moves to the next position down
func (g *Group) Down(ctx context.Context) error {
	return g.MoveNext(ctx, DirectionDown)
}

// Stop halts the group where it is. The recorded position is unchanged.
func (g *Group) Stop(ctx context.Context) error {
	logging.Debug("Stopping group", zap.String("group", g.name))
	return g.hub.Post(ctx, commandPath(CommandStop, g.index))
}

// Run dispatches one of the Command* verbs.
func (g *Group) Run(ctx context.Context, verb string) error {
	switch verb {
	case CommandOpen:
		return g.Open(ctx)
	case CommandClose:
		return g.Close(ctx)
	case CommandUp:
		return g.Up(ctx)
	case CommandDown:
		return g.Down(ctx)
	case CommandStop:
		return g.Stop(ctx)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
}

func commandPath(verb string, index int) string {
	return fmt.Sprintf("/command/%s/%d", verb, index)
}
