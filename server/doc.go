// Package server is the local HTTP bridge between the flashing GUI and the
// tools. It runs a Gin engine behind a ServeMux with h2c, so both HTTP/1.1
// and HTTP/2 prior-knowledge clients are served on one port.
//
// Middleware (server/middleware) wraps the whole mux: panic recovery,
// request IDs, CORS, a request body limit and request logging. Built-in
// endpoints (server/endpoint) report health at /healthz and the build at
// /version.
package server
