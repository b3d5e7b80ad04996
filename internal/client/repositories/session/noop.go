package session

import "context"

// NoopStore is used when no durable storage is available (for example a
// non-interactive execution context). Every operation succeeds and Load
// always reports "no session".
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (NoopStore) Load(ctx context.Context) ([]byte, error)       { return nil, nil }
func (NoopStore) Save(ctx context.Context, value []byte) error   { return nil }
func (NoopStore) Delete(ctx context.Context) error               { return nil }
