// Package controller contains HTTP middlewares and helper handlers used by the server.
//
// Provided middlewares:
//   - WithCORS: Adds permissive CORS headers and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context
//     and writes an access log line including the response size, which for file
//     delivery is the number of body bytes streamed.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
package controller
