// Package kit holds the transport-agnostic plumbing shared by the gitpal
// services: the Endpoint abstraction, request-scoped context keys, and the
// MCP tool registration helper. Business logic lives behind Endpoints so the
// same operation can be served over HTTP and MCP without duplication.
package kit

import "context"

// Endpoint is a transport-agnostic operation: typed request in, typed
// response out. Decoding from the wire happens in the transport layer.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behavior.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
