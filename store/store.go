// Package store defines the aggregate persistence interface. Each subsystem
// (snapshot, checklog) defines its own store interface. The composite Store
// composes them all.
// Backends: Memory, SQLite, Postgres, MongoDB, Redis.
package store

import (
	"context"

	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/snapshot"
)

// Store is the aggregate persistence interface.
// A single backend implements every subsystem store.
type Store interface {
	snapshot.Store
	checklog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
