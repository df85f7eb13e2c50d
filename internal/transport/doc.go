// Package transport connects a stream.DataStream to a live WebSocket
// server.
//
// Client wraps a single gorilla/websocket connection with a buffered
// read loop and keepalive. Session owns everything the stream core
// deliberately does not: dialing, the reconnect wait loop (delays come
// from the core's backoff policy), the outbox flush cadence, and the
// application-level heartbeat.
package transport
