// Package domain defines the core business entities and interfaces for syncarr.
//
// This package contains the synchronizable entities (Media, Progress, List,
// ListItem, Settings, Tombstone), the snapshot payload exchanged between
// installations, and the repository interfaces that define the contract for
// data access. All interfaces accept context for cancellation and timeout
// support.
//
// Timestamps are epoch milliseconds; zero means "never recorded".
package domain
