// Package api implements the HTTP surface of the gateway.
//
// New(service, options) returns an http.Handler that serves:
//
//	GET    /                   greeting page with the version
//	GET    /v1/tree/{path...}  subtree below path      {"Status","Path","Children":{...}}
//	GET    /v1/list/{path...}  direct children of path {"Status","Path","Children":[...]}
//	GET    /v1/get/{path...}   payload of path         {"Status","Path","Data":"<base64>"}
//	PUT    /v1/set/{path...}   write the request body  {"Status","Path"}
//	DELETE /v1/delete/{path...} delete path and subtree {"Status","Path"}
//	GET    /metrics            Prometheus metrics, when enabled
//
// The node path is "/" followed by the wildcard remainder, unvalidated.
// Store failures are reported in the body as {"Status":"ERROR","Path","Error"}
// with HTTP 200. Panics and other faults outside the store interaction are
// logged and answered with a plain 500 page. Every response carries an
// X-Request-ID header, copied from the request or generated.
//
// No external HTTP framework is used.
package api
