// Package client contains client-side building blocks for Alarmify.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the sync server: Register/Login/Refresh, Ping, snapshot upload and
//     download, and device registration.
//  2. A concrete HTTP implementation (see HTTPClient) that injects the
//     bearer access token, transparently refreshes an expired token pair,
//     and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the CLI, wiring an SQLite database and applying embedded goose
//     migrations.
//
// # Error Handling
//
// Common conditions are exposed through sentinel errors in the common
// package that callers can match with errors.Is: common.ErrSyncUnavailable,
// common.ErrorUnauthorized, common.ErrorNotFound.
package client
