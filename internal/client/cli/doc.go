// Package cli provides the interactive Taskly command-line client.
//
// It wires configuration, the local store, the REST client and the Sync
// Gateway, starts a background connectivity watcher and the reminder
// scheduler, and runs a REPL until the user exits.
//
// Commands work online and offline; the prompt shows the logged-in user and
// the current mode. Reminders are printed as they fire.
//
// The REPL is started via App.Run(ctx). See App and runREPL for details.
package cli
