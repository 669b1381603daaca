// Package storage provides BoltDB-based implementations of domain repositories.
//
// This package contains concrete implementations of the media, progress,
// list, list item, settings, tombstone and sync metadata repositories using
// BoltHold for data persistence. All operations support context
// cancellation and proper error wrapping.
package storage
