// Package handler implements HTTP request handlers.
//
// This package provides the local endpoints a companion UI or file manager
// talks to:
// - /export: download the current snapshot payload
// - /import: upload a snapshot payload and merge it
// - /status: sync bookkeeping and collection counts
// - /health: health check endpoint
//
// All handlers extract context from requests and pass it to services.
package handler
