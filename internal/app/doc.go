// Package app provides application initialization and lifecycle management.
//
// The App type wires all dependencies together and manages:
// - Configuration loading
// - Database initialization
// - Service creation
// - HTTP server lifecycle
// - Graceful shutdown
//
// The Scheduler writes periodic snapshot backups and prunes old ones when
// the application runs in serve mode.
package app
