// Package dfclient provides the main entry point for creating DreamFactory
// system API clients.
//
// The returned dfapi.Client is safe for concurrent use. Sessions are opened
// lazily: no request is made until the first call that needs one.
package dfclient
