// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     store
// Description: Injected key-value persistence for session state. The
//              interpreter exports JSON documents; where they land is the
//              store's concern, not the interpreter's.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package store

import "context"

// Well-known keys for persisted session state
const (
	KeyAliases = "aliases"
	KeyHistory = "history"
)

// KVStore is the persistence interface handed to a session. Values are
// opaque JSON documents produced by the interpreter's export functions.
type KVStore interface {
	// Get returns the value for key; found is false when the key is absent
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores or replaces the value for key
	Set(ctx context.Context, key, value string) error

	// Delete removes the key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases store resources
	Close() error
}
