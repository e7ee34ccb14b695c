// Package controller holds the middleware wrapped around the lab's HTTP
// server.
//
// WithLogger tags each request with an X-Request-Id, puts a request-scoped
// zap logger in the context and writes one access log entry per request;
// paths passed as quiet prefixes (metrics, pprof, health) log at debug.
// WithCORS answers preflights and allows either any origin or a fixed list.
// WithMetrics records request counts and latency. PprofMux serves
// net/http/pprof under a prefix.
package controller
