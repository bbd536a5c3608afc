package zone

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/leviosa-shades/leviosa/internal/logging"
	"github.com/leviosa-shades/leviosa/internal/version"
)

const (
	// DefaultTimeout bounds every request to a hub
	DefaultTimeout = 15 * time.Second

	// UnknownFirmware is reported until FetchInfo succeeds
	UnknownFirmware = "0.0.0"

	// InvalidFirmware is recorded when the hub's root document has no usable
	// firmware field. The hub stays controllable in that state.
	InvalidFirmware = "invalid"

	// AllGroupsName is the conventional name for group 0, which the hub
	// addresses as every group at once.
	AllGroupsName = "All groups"
)

// Hub is a client bound to one Leviosa Zone hub.
//
// A Hub is not safe for concurrent AddGroup calls. Commands may be issued
// from several goroutines, but the hub's handling order is then undefined.
type Hub struct {
	ip       string
	name     string
	firmware string
	timeout  time.Duration
	groups   []*Group

	httpClient *http.Client
	// ownsClient is true when the Hub created httpClient itself and must
	// release it in Close.
	ownsClient bool
}

// Option configures a Hub
type Option func(*Hub)

// WithHTTPClient makes the Hub borrow c. The Hub never closes a borrowed
// client; its owner does.
func WithHTTPClient(c *http.Client) Option {
	return func(h *Hub) {
		if c != nil {
			h.httpClient = c
			h.ownsClient = false
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHub creates a client for the hub at ip. name is a display name only.
func NewHub(ip, name string, opts ...Option) *Hub {
	h := &Hub{
		ip:       ip,
		name:     name,
		firmware: UnknownFirmware,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.httpClient == nil {
		h.httpClient = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		h.ownsClient = true
	}
	return h
}

// IP returns the hub address
func (h *Hub) IP() string { return h.ip }

// Name returns the display name
func (h *Hub) Name() string { return h.name }

// Firmware returns the firmware version recorded by the last FetchInfo
func (h *Hub) Firmware() string { return h.firmware }

// Timeout returns the per-request timeout
func (h *Hub) Timeout() time.Duration { return h.timeout }

// Groups returns the registered groups in index order.
func (h *Hub) Groups() []*Group {
	out := make([]*Group, len(h.groups))
	copy(out, h.groups)
	return out
}

// Group returns the group with the given index, or nil.
func (h *Hub) Group(index int) *Group {
	if index < 0 || index >= len(h.groups) {
		return nil
	}
	return h.groups[index]
}

// GroupByName returns the first group registered under name, or nil.
func (h *Hub) GroupByName(name string) *Group {
	for _, g := range h.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// AddGroup registers a new group. Its index is the number of groups already
// registered, which must line up with the hub's own group numbering.
func (h *Hub) AddGroup(name string) *Group {
	g := &Group{
		hub:   h,
		index: len(h.groups),
		name:  name,
	}
	h.groups = append(h.groups, g)
	logging.Debug("Added group to zone",
		zap.String("group", name),
		zap.Int("index", g.index),
		zap.String("hub", h.name),
	)
	return g
}

// FetchInfo queries the hub's root document and records its firmware
// version. A non-200 answer or a document without a firmware string records
// InvalidFirmware and returns nil; connection failures are returned.
func (h *Hub) FetchInfo(ctx context.Context) error {
	logging.Debug("Getting hub info", zap.String("hub_ip", h.ip))

	doc, err := h.Get(ctx, "")
	if err != nil {
		if IsResponseStatusError(err) || IsParseError(err) {
			logging.Warn("Hub info unavailable",
				zap.String("hub_ip", h.ip),
				zap.Error(err),
			)
			h.firmware = InvalidFirmware
			return nil
		}
		return err
	}

	fw, ok := doc["firmware"].(string)
	if !ok || fw == "" {
		h.firmware = InvalidFirmware
		return nil
	}
	h.firmware = fw
	return nil
}

// Post sends a command to http://<ip><fragment>. The response body is
// discarded; a non-2xx status is logged but not returned as an error.
func (h *Hub) Post(ctx context.Context, fragment string) error {
	url := "http://" + h.ip + fragment

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := h.send(ctx, http.MethodPost, url)
	if err != nil {
		logging.Error("Failed to communicate with Leviosa hub",
			zap.String("url", url),
			zap.Error(err),
		)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warn("Hub rejected command",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
		)
	}
	return nil
}

// Get fetches http://<ip>/<fragment> and decodes the JSON body.
func (h *Hub) Get(ctx context.Context, fragment string) (map[string]any, error) {
	url := "http://" + h.ip + "/" + fragment

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := h.send(ctx, http.MethodGet, url)
	if err != nil {
		logging.Error("Failed to communicate with Leviosa hub",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp.StatusCode, h.ip)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyNetworkError(err, h.ip)
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, newParseError(err, h.ip)
	}
	return doc, nil
}

// Close releases the HTTP client if the Hub created it. Borrowed clients are
// left alone.
func (h *Hub) Close() {
	if h.ownsClient {
		h.httpClient.CloseIdleConnections()
	}
}

// send issues one request. The caller owns resp.Body.
func (h *Hub) send(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, classifyNetworkError(fmt.Errorf("failed to create %s request: %w", method, err), h.ip)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	logging.LogHubRequest(h.ip, method, url)
	start := time.Now()

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, classifyNetworkError(err, h.ip)
	}

	logging.LogHubResponse(h.ip, method, url, resp.StatusCode, time.Since(start))
	return resp, nil
}
