// Package transport implements the two inbound adapters named in §6: a
// raw TCP socket listener and an SMS gateway consumer. Both share the
// small interface §9's design notes call for in place of a class
// hierarchy: Listen blocks for the adapter's lifetime, Stop requests
// shutdown. The router itself stays synchronous; concurrency lives here,
// at the transport boundary, per §5.
package transport

import "context"

// Handler processes one inbound message body and returns the reply text
// to send back. Both transports call the same handler function, which in
// practice is router.Router.Handle.
type Handler func(message string) string

// Transport is the shared adapter interface. Listen blocks until ctx is
// canceled or an unrecoverable error occurs; Stop requests a graceful
// shutdown without waiting for it to complete.
type Transport interface {
	Listen(ctx context.Context) error
	Stop()
}
