package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leviosa-shades/leviosa/internal/config"
	"github.com/leviosa-shades/leviosa/internal/ui"
	"github.com/leviosa-shades/leviosa/pkg/zone"
)

const testUDN = "uuid:Leviosa-ZoneWiFi-1_0-5ccf7f0a1b2c"

// fakeHub is an httptest zone recording the commands it receives
type fakeHub struct {
	*httptest.Server

	mu       sync.Mutex
	commands []string
}

func newFakeHub(t *testing.T, firmware string) *fakeHub {
	t.Helper()
	h := &fakeHub{}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"firmware":"` + firmware + `"}`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/command/"):
			h.mu.Lock()
			h.commands = append(h.commands, r.URL.Path)
			h.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHub) addr() string {
	return strings.TrimPrefix(h.URL, "http://")
}

func (h *fakeHub) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.commands...)
}

type testApp struct {
	*app
	out   *bytes.Buffer
	saves int
	scans int
}

func newTestApp(t *testing.T, found map[string]string) *testApp {
	t.Helper()
	out := &bytes.Buffer{}
	ta := &testApp{out: out}
	ta.app = &app{
		registry: config.NewRegistry(),
		printer:  ui.NewPrinter(out),
		timeout:  2 * time.Second,
		window:   time.Second,
	}
	ta.save = func(*config.Registry) error {
		ta.saves++
		return nil
	}
	ta.discover = func(ctx context.Context, window time.Duration, onFound func(udn, ip string)) (map[string]string, error) {
		ta.scans++
		for udn, ip := range found {
			onFound(udn, ip)
		}
		return found, nil
	}
	return ta
}

func TestResolveZone_Flag(t *testing.T) {
	a := newTestApp(t, nil)
	a.registry.UpdateZoneLastSeen(testUDN, "192.168.1.40")
	a.registry.SetZoneName(testUDN, "Upstairs")

	a.zone = "192.168.1.40"
	got, err := a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testUDN, got.UDN)
	assert.Equal(t, "Upstairs (192.168.1.40)", got.Label())

	a.zone = "upstairs"
	got, err = a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.40", got.IP)

	a.zone = testUDN
	got, err = a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.40", got.IP)

	a.zone = "10.0.0.9"
	got, err = a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.UDN, "unknown IPs are used as given")

	a.zone = "nowhere"
	_, err = a.resolveZone(context.Background())
	assert.Error(t, err)

	assert.Zero(t, a.scans, "--zone never scans")
}

func TestResolveZone_Remembered(t *testing.T) {
	a := newTestApp(t, nil)
	a.registry.UpdateZoneLastSeen(testUDN, "192.168.1.40")

	got, err := a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.40", got.IP)
	assert.Zero(t, a.scans)

	a.registry.UpdateZoneLastSeen("uuid:other", "192.168.1.41")
	_, err = a.resolveZone(context.Background())
	assert.ErrorContains(t, err, "--zone")
}

func TestResolveZone_Discovers(t *testing.T) {
	a := newTestApp(t, map[string]string{testUDN: "192.168.1.40"})

	got, err := a.resolveZone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testUDN, got.UDN)
	assert.Equal(t, 1, a.scans)
	assert.Equal(t, 1, a.saves, "discovered zones are saved")
	assert.Equal(t, "192.168.1.40", a.registry.GetZone(testUDN).LastIP)
}

func TestResolveZone_DiscoversNoneOrMany(t *testing.T) {
	a := newTestApp(t, map[string]string{})
	_, err := a.resolveZone(context.Background())
	assert.ErrorContains(t, err, "no zones found")
	assert.Zero(t, a.saves)

	a = newTestApp(t, map[string]string{"uuid:a": "192.168.1.40", "uuid:b": "192.168.1.41"})
	_, err = a.resolveZone(context.Background())
	assert.ErrorContains(t, err, "found 2 zones")
	assert.Contains(t, a.out.String(), "192.168.1.41")
}

func TestRunScan(t *testing.T) {
	a := newTestApp(t, map[string]string{testUDN: "192.168.1.40"})
	a.registry.SetZoneName(testUDN, "Upstairs")

	require.NoError(t, a.runScan(context.Background()))
	out := a.out.String()
	assert.Contains(t, out, "Listening for Leviosa zones", "scan progress goes to the command output")
	assert.Contains(t, out, "Found 1 zone(s)")
	assert.Contains(t, out, "Upstairs")
	assert.NotNil(t, a.registry.GetZone(testUDN))
}

func TestRunScan_Error(t *testing.T) {
	a := newTestApp(t, nil)
	a.discover = func(context.Context, time.Duration, func(udn, ip string)) (map[string]string, error) {
		return nil, errors.New("address in use")
	}
	err := a.runScan(context.Background())
	assert.ErrorContains(t, err, "address in use")
}

func TestNewHubRegistersGroups(t *testing.T) {
	a := newTestApp(t, nil)
	a.registry.SetGroups(testUDN, []string{zone.AllGroupsName, "Kitchen"})
	entry := a.registry.GetZone(testUDN)

	hub := a.newHub(target{UDN: testUDN, IP: "192.168.1.40", Entry: entry})
	defer hub.Close()
	require.Len(t, hub.Groups(), 2)
	assert.Equal(t, time.Duration(2*time.Second), hub.Timeout())

	hub = a.newHub(target{IP: "192.168.1.40"})
	defer hub.Close()
	assert.Len(t, hub.Groups(), len(config.DefaultGroups))
}

func TestFindGroup(t *testing.T) {
	hub := zone.NewHub("192.168.1.40", "test")
	defer hub.Close()
	hub.AddGroup(zone.AllGroupsName)
	hub.AddGroup("Kitchen")

	g, err := findGroup(hub, "1")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", g.Name())

	g, err = findGroup(hub, "Kitchen")
	require.NoError(t, err)
	assert.Equal(t, 1, g.Index())

	_, err = findGroup(hub, "7")
	assert.Error(t, err)
	_, err = findGroup(hub, "Garage")
	assert.Error(t, err)
}

func TestRunGroupCommand(t *testing.T) {
	hub := newFakeHub(t, "1.2.3")
	a := newTestApp(t, nil)
	a.zone = hub.addr()

	require.NoError(t, a.runGroupCommand(context.Background(), zone.CommandOpen, "2"))
	require.NoError(t, a.runGroupCommand(context.Background(), zone.CommandStop, zone.AllGroupsName))

	assert.Equal(t, []string{"/command/open/2", "/command/stop/0"}, hub.received())
	assert.Contains(t, a.out.String(), "Sent open to Group TWO")
}

func TestRunGroupCommand_Unreachable(t *testing.T) {
	hub := newFakeHub(t, "1.2.3")
	addr := hub.addr()
	hub.Close()

	a := newTestApp(t, nil)
	a.zone = addr

	err := a.runGroupCommand(context.Background(), zone.CommandClose, "1")
	require.Error(t, err)
	assert.Contains(t, a.out.String(), "FAILED")
}

func TestRunInfo(t *testing.T) {
	hub := newFakeHub(t, "2.0.1")
	a := newTestApp(t, nil)
	a.zone = hub.addr()

	require.NoError(t, a.runInfo(context.Background()))
	out := a.out.String()
	assert.Contains(t, out, "2.0.1")
	assert.Contains(t, out, "Group SIX")
}

func TestRunGroupsSet(t *testing.T) {
	a := newTestApp(t, nil)
	a.registry.UpdateZoneLastSeen(testUDN, "192.168.1.40")

	require.NoError(t, a.runGroupsSet(context.Background(), []string{"Kitchen", "Bedroom"}))
	assert.Equal(t, []string{zone.AllGroupsName, "Kitchen", "Bedroom"}, a.registry.GetZone(testUDN).Groups)
	assert.Equal(t, 1, a.saves)
	assert.Contains(t, a.out.String(), "Bedroom")

	a.zone = "10.0.0.9"
	assert.Error(t, a.runGroupsSet(context.Background(), []string{"x"}), "unknown zones cannot be named")
}

func TestRunExercise(t *testing.T) {
	hub := newFakeHub(t, "1.0.0")
	a := newTestApp(t, nil)
	a.zone = hub.addr()

	require.NoError(t, a.runExercise(context.Background(), "3", 0))
	assert.Equal(t, []string{
		"/command/open/3",
		"/command/stop/3",
		"/command/close/3",
		"/command/up/3",
		"/command/down/3",
	}, hub.received())
	assert.Contains(t, a.out.String(), "Exercise complete")
}

func TestExerciseStepWaits(t *testing.T) {
	var waits []time.Duration
	for _, step := range exerciseSteps {
		waits = append(waits, step.wait(2*time.Second))
	}
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		2 * time.Second,
		0,
		2 * time.Second,
		5 * time.Second,
	}, waits)
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}
