package zone

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHub starts a server that records command paths.
func recordingHub(t *testing.T) (*Hub, func() []string) {
	t.Helper()

	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
	}))
	t.Cleanup(server.Close)

	hub := NewHub(hubAddr(server), "Test Zone")
	t.Cleanup(hub.Close)

	return hub, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), paths...)
	}
}

func TestGroup_CommandsAndPositions(t *testing.T) {
	hub, paths := recordingHub(t)
	hub.AddGroup(AllGroupsName)
	g := hub.AddGroup("Group ONE")
	ctx := context.Background()

	assert.Equal(t, PositionClosed, g.Position())

	require.NoError(t, g.Open(ctx))
	assert.Equal(t, 100, g.Position())

	require.NoError(t, g.Stop(ctx))
	assert.Equal(t, 100, g.Position(), "stop keeps the recorded position")

	require.NoError(t, g.Close(ctx))
	assert.Equal(t, 0, g.Position())

	require.NoError(t, g.Up(ctx))
	assert.Equal(t, 50, g.Position())

	require.NoError(t, g.Close(ctx))
	require.NoError(t, g.Down(ctx))
	assert.Equal(t, 50, g.Position())

	assert.Equal(t, []string{
		"POST /command/open/1",
		"POST /command/stop/1",
		"POST /command/close/1",
		"POST /command/up/1",
		"POST /command/close/1",
		"POST /command/down/1",
	}, paths())
}

func TestGroup_Move(t *testing.T) {
	tests := []struct {
		target   int
		wantPath string
		wantPos  int
	}{
		{0, "POST /command/close/0", 0},
		{1, "POST /command/open/0", 100},
		{42, "POST /command/open/0", 100},
		{100, "POST /command/open/0", 100},
	}

	for _, tt := range tests {
		hub, paths := recordingHub(t)
		g := hub.AddGroup(AllGroupsName)

		require.NoError(t, g.Move(context.Background(), tt.target))
		assert.Equal(t, tt.wantPos, g.Position(), "target %d", tt.target)
		assert.Equal(t, []string{tt.wantPath}, paths(), "target %d", tt.target)
	}
}

func TestGroup_Run(t *testing.T) {
	hub, paths := recordingHub(t)
	hub.AddGroup(AllGroupsName)
	hub.AddGroup("Group ONE")
	g := hub.AddGroup("Group TWO")
	ctx := context.Background()

	for _, verb := range []string{CommandOpen, CommandClose, CommandUp, CommandDown, CommandStop} {
		require.NoError(t, g.Run(ctx, verb))
	}
	assert.Error(t, g.Run(ctx, "tilt"))

	assert.Equal(t, []string{
		"POST /command/open/2",
		"POST /command/close/2",
		"POST /command/up/2",
		"POST /command/down/2",
		"POST /command/stop/2",
	}, paths())
}

func TestGroup_ErrorsPropagate(t *testing.T) {
	ft := &fakeTransport{hang: true}
	hub := newFakeHub(ft, WithTimeout(20*time.Millisecond))
	g := hub.AddGroup(AllGroupsName)

	err := g.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.EqualValues(t, 1, ft.requests.Load(), "groups do not retry")
	// The position is recorded before the command is sent.
	assert.Equal(t, PositionOpen, g.Position())
}

func TestGroup_Capabilities(t *testing.T) {
	g := NewHub("10.0.0.5", "x").AddGroup(AllGroupsName)
	assert.True(t, g.CanMove())
	assert.False(t, g.CanTilt())
}

func TestCommandPath(t *testing.T) {
	assert.Equal(t, "/command/open/0", commandPath(CommandOpen, 0))
	assert.Equal(t, "/command/stop/12", commandPath(CommandStop, 12))
}
