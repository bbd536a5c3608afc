// Package zone is an HTTP client for Leviosa Zone shade hubs.
//
// A Hub is bound to one hub address. Shade groups are registered locally
// with AddGroup; their indexes must match the hub's own numbering, so
// register them in hub order, starting with group 0 (all groups):
//
//	hub := zone.NewHub("192.168.1.40", "Living room")
//	defer hub.Close()
//
//	if err := hub.FetchInfo(ctx); err != nil {
//	    return err
//	}
//	all := hub.AddGroup(zone.AllGroupsName)
//	front := hub.AddGroup("Front windows")
//
//	if err := front.Open(ctx); err != nil {
//	    return err
//	}
//	_ = all.Stop(ctx)
//
// # Errors
//
// Every request error is an *APIError and matches errors.Is(err, ErrAPI).
// Use IsConnectionError for transport failures and timeouts, and
// IsResponseStatusError (with StatusCode) for non-200 GET answers. Nothing is
// retried.
//
// # HTTP clients
//
// NewHub creates and owns an http.Client unless WithHTTPClient supplies one.
// Close releases only an owned client.
package zone
