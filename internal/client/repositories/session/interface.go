// Package session persists the serialized auth session record.
//
// The record is stored as one JSON blob under a fixed key in the client
// metadata table. Absence of a record (or a store that cannot persist at
// all) is the normal "no session" state, never an error.
package session

import "context"

// Store is the durable home of the session record.
type Store interface {
	// Load returns the persisted record, or (nil, nil) when none exists.
	Load(ctx context.Context) ([]byte, error)

	// Save overwrites the persisted record.
	Save(ctx context.Context, value []byte) error

	// Delete removes the persisted record entirely, so a subsequent Load
	// reports "no session" rather than a nulled-out leftover.
	Delete(ctx context.Context) error
}
