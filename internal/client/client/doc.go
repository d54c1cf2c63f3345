// Package client is the admin-side gRPC client of the activation service.
//
// GRPCClient manages the connection, attaches the access token obtained by
// Login to every call through an interceptor and maps gRPC status codes to
// the sentinel errors in errors.go so callers can use errors.Is.
//
// The Client interface is what the CLI depends on; tests substitute it.
package client
