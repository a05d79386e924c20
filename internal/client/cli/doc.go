// Package cli provides the interactive gophgate command-line client.
//
// It wires configuration, the credential store, the refresh coordinator and
// the request dispatcher behind a small REPL. Typical flow: log in, issue
// requests against the API, watch expired credentials being renewed
// transparently, log out.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
