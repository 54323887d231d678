// Package cli provides the interactive bookshelf command-line client.
//
// App reads commands from a line-oriented REPL and drives the api.Service on
// behalf of the session held by auth.Manager. Commands are gated by
// auth.Requirements, so "help" only lists what the current user may run:
//
//   - register / login for anonymous users
//   - whoami, search, count, suggest, show, logout for any session
//   - upload and edit for admins and librarians, delete for admins
//
// Network calls run under a loading.Tracker with a spinner; uploads print
// byte progress instead.
package cli
