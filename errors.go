package keeper

import "errors"

var (
	// ErrDirectoryRequired is returned by NewSession without a directory.
	ErrDirectoryRequired = errors.New("keeper: credential directory is required")

	// ErrSnapshotStoreRequired is returned by NewSession without a store.
	ErrSnapshotStoreRequired = errors.New("keeper: snapshot store is required")

	// ErrRulesRequired is returned by NewGuard without a rule table.
	ErrRulesRequired = errors.New("keeper: rule table is required")

	// ErrNotAuthenticated is returned when an operation needs a principal.
	ErrNotAuthenticated = errors.New("keeper: not authenticated")

	// ErrAccessDenied is returned when the guard denies a path.
	ErrAccessDenied = errors.New("keeper: access denied")
)
