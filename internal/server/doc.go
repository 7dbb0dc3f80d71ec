// Package server implements the HTTP API on gin.
//
// Routes:
//   - GET|POST /livedata?symbol=<market>  joined order book, market and ticker details
//   - GET /pairs                          every known market name
//   - GET /ticker                         every cached ticker
//   - GET /health                         engine state and cache sizes
//   - GET /stream                         websocket feed of ticker batches
//
// Errors are returned as {"error": ..., "request_timestamp": ...}.
package server
