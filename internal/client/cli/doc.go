// Package cli provides the interactive client shell.
//
// It wires configuration and the data-access facade into a small REPL:
// login/logout/register against the auth endpoints, ad-hoc table queries,
// remote procedure calls, and a realtime listener that prints row-change
// notifications as they arrive. The REPL is started via App.Root(ctx) and
// blocks until the user exits.
package cli
