// Package cli provides the interactive activation admin console.
//
// An administrator logs in once (password read without echo) and then
// inspects or overrides activation codes, lists accounts by activation state
// and runs the install backfill or uninstall cleanup. The REPL is started via
// App.Run(ctx), which blocks until the user exits.
package cli
