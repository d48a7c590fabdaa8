// Package client contains client-side building blocks for the bloodlink
// platform.
//
// # Overview
//
// The package provides:
//  1. The REST API contract (see the Client interface): registration,
//     login, the current profile, profile updates, deactivation, blood
//     bank search and reverse geocoding.
//  2. An HTTP implementation (see HTTPClient) that attaches the bearer
//     token and a request ID to every call, maps status codes to sentinel
//     errors and keeps the server's error message. The public read
//     endpoints sit behind a circuit breaker.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     credential store: an SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors for errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrRejected, ErrServer and
// ErrInvalidResponse. Non-2xx answers arrive as *APIError; ServerMessage
// extracts the text the server sent.
package client
