// Package server provides the loopback HTTP server used during Spotify login.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow. The
// handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel. It
// only processes one callback to prevent replay attacks.
//
// When the user runs `cratedig auth login`, a temporary HTTP server starts on
// the configured host and port, handles the callback, and shuts down after
// receiving the OAuth token.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with [Middleware] support.
// Middleware wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. [BasicRouter] is the [http.ServeMux]
// backed implementation.
package server
