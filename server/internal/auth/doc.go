// Package auth provides authentication middleware for the gateway.
//
// APIKey(mode, header, key) returns HTTP middleware that validates the API key
// from the named request header. It wraps the /v1/ operation routes only;
// the greeting page and /metrics stay open.
//
// When mode != "apikey" or the key is empty, all requests pass through
// (useful for local development with auth disabled). When the key is
// incorrect or absent, the middleware answers 401 immediately.
package auth
