// Package storage defines how runs, trained policies and their execution jobs
// are persisted. The only backend is PostgreSQL (see postgres), where jobs
// live in the same database as runs so both are written in one transaction.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyInTx is returned by Begin on a transactional handle.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit and Rollback outside a transaction.
	ErrNotInTx = errors.New("not in tx")
	// ErrNotConnected is returned when a handle has no live connection.
	ErrNotConnected = errors.New("storage not connected")
)

// AllStorage is everything the runner reads and writes.
type AllStorage interface {
	RunStorage
	PolicyStorage
	JobStorage
}

// TxStorage is an AllStorage bound to an open transaction. It must not be
// used after Commit or Rollback.
type TxStorage interface {
	AllStorage

	Commit() error
	Rollback() error
}

// Storage is the long-lived handle created at startup.
type Storage interface {
	AllStorage

	// Close releases the connection pool.
	Close() error
	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error

	// Begin starts a transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside a transaction, committing when cb returns nil and
	// rolling back otherwise. Enqueue uses it to store a run with its job.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
