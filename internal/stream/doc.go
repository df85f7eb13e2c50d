// Package stream implements the session orchestrator for live data
// subscriptions.
//
// DataStream is a pure state container: it owns the connection state
// machine, the subscription registry, the last-known-value cache and
// the outbound message queue, but never performs I/O. A transport
// drives it by feeding decoded inbound messages to HandleMessage and
// draining TakeOutbox; timers (reconnect backoff, heartbeat) belong to
// the transport as well — the stream only computes what the delay
// should be.
package stream
