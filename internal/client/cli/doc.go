// Package cli provides the interactive BloodLink command-line client.
//
// It wires configuration, the local credential store, the REST and chat
// clients, and an interactive REPL. A stored session is restored on start.
//
// Key features:
//   - Register / Login / Logout for donors, recipients and blood banks
//   - Profile view, update and account deactivation
//   - Guarded navigation (open <path>) with role-specific dashboards
//   - Blood bank search and reverse geocoding
//   - Support chat with an offline fallback
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
