// Package protocol defines the wire messages exchanged with a live data
// server.
//
// Messages are JSON with a "type" discriminator:
//   - subscribe / unsubscribe: client requests
//   - data: server push with a per-subscription sequence number
//   - ack / error: server responses referencing a subscription
//   - ping / pong: heartbeat in both directions
//
// Payloads are opaque json.RawMessage values; nothing in this module
// inspects their contents.
package protocol
