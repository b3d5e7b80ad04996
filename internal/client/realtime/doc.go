// Package realtime delivers server-pushed row-change notifications over
// one lazily-created, process-wide-shared websocket connection.
//
// Socket is the explicit connection manager (injectable for tests);
// Channel is the per-caller handle that registers client-side-filtered
// listeners. Channels never tear the shared connection down, and a
// dropped connection reconnects with exponential backoff while keeping
// every registered listener attached.
package realtime
