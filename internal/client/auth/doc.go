// Package auth owns the client-side session: the token tuple, its durable
// persistence, the single-flight refresh coordinator, and the auth API
// operations (login, logout, registration, current user).
//
// TokenStore keeps the in-memory tuple and its persisted record in sync
// synchronously on every mutation. RefreshCoordinator guarantees at most
// one refresh network call is in flight process-wide; a failed refresh
// performs a full session clear and reports false rather than erroring,
// so the request that observed the 401 surfaces its own failure.
package auth
