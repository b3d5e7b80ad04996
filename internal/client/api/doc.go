// Package api implements the authenticated request pipeline every network
// interaction with the backend flows through.
//
// # Overview
//
// The package provides:
//  1. Pipeline: resolves paths against the configured base URL, attaches
//     the bearer token, serializes bodies by kind, executes the call,
//     unwraps the {data, meta, error} envelope, and transparently retries
//     exactly once after a coordinated token refresh on 401.
//  2. Rpc: the thin remote-procedure invoker layered on the same pipeline.
//  3. The shared error taxonomy: StatusError for non-2xx responses,
//     ValidationError for pre-network rejections, and the sentinels
//     ErrNoRows and ErrUnauthorized.
//
// # Error Handling
//
// Transport failures are wrapped with %w and never swallowed. Non-2xx
// statuses become *StatusError carrying the status code and any
// server-supplied detail payload. A 401 StatusError matches
// errors.Is(err, ErrUnauthorized).
//
// # Concurrency
//
// Pipeline is safe for concurrent use. Sequencing dependent requests is
// the caller's responsibility; the pipeline gives no cross-request
// ordering guarantee.
package api
