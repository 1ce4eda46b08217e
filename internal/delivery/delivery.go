// Package delivery defines the transport-facing entry points of the
// application. Concrete servers (HTTP API, worker) live in subpackages.
package delivery

import "context"

// Delivery is a long-running transport server. Serve blocks until the
// listener fails or the context is cancelled.
type Delivery interface {
	Serve(ctx context.Context) error
}
