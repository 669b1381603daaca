// Package service contains the snapshot and reconciliation logic for syncarr.
//
// Services orchestrate between the domain repositories:
// - SnapshotService: builds portable snapshot payloads from local state
// - ReconcileService: merges a remote snapshot into local state
// - ListResolver: maps remote list ids onto local lists by normalized name
// - SettingsMerger: per-namespace last-write-wins settings merge
//
// All services follow the single responsibility principle and accept
// context for cancellation support.
package service
