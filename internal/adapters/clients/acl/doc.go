// Package acl is the anti-corruption layer between the display pipeline and
// the cloud devices it can push frames to.
//
// Wire formats stay inside this package. Callers see a display.Panel and
// domain errors:
//
//   - 400/422 and non-zero API codes → [domain.ErrRenderFailure]
//   - 401/403/404 → [domain.ErrUnavailable] (bad key or unknown device)
//   - 429/5xx/network → [domain.ErrUnavailable]
//
// Client-level errors ([clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded])
// are translated to [domain.ErrUnavailable] as well.
//
// # Quote/0
//
// [Quote0Panel] uploads each frame as a base64 PNG to the /api/open/image
// endpoint. The API allows one request per second per key; the panel waits on
// a token bucket before each upload.
//
//	client, _ := clients.New(&clients.Config{
//	    ServiceName: acl.Quote0ServiceName,
//	    BaseURL:     acl.Quote0DefaultBaseURL,
//	    AuthFunc:    acl.BearerAuth(apiKey),
//	})
//	panel, _ := acl.NewQuote0Panel(acl.Quote0Config{Client: client, DeviceID: id})
package acl
