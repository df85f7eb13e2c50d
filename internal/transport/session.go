package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glassdash/livesync/internal/protocol"
	"github.com/glassdash/livesync/internal/stream"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	URL               string
	HeartbeatInterval time.Duration // application-level ping cadence
	FlushInterval     time.Duration // outbox drain cadence
	WriteTimeout      time.Duration
	StaleTimeout      time.Duration
	BufferSize        int
}

// DefaultSessionConfig returns sensible defaults (URL must be set).
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HeartbeatInterval: 30 * time.Second,
		FlushInterval:     100 * time.Millisecond,
		WriteTimeout:      5 * time.Second,
		StaleTimeout:      90 * time.Second,
		BufferSize:        1024,
	}
}

// Session drives a DataStream over a WebSocket: it dials, feeds decoded
// frames to the stream, drains the stream's outbox, heartbeats, and
// redials with the stream's backoff delays when the link drops.
type Session struct {
	cfg    SessionConfig
	ds     *stream.DataStream
	logger *slog.Logger
	id     string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	client Client
}

// NewSession creates a session around an existing DataStream.
func NewSession(cfg SessionConfig, ds *stream.DataStream, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		cfg:    cfg,
		ds:     ds,
		logger: logger.With("session_id", id),
		id:     id,
	}
}

// Stream returns the DataStream the session drives.
func (s *Session) Stream() *stream.DataStream {
	return s.ds
}

// Start dials the server. The first dial is synchronous; an error
// leaves the stream Disconnected and no retries are scheduled. After a
// successful dial the session maintains the connection in the
// background until Stop.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.ds.SetState(stream.Connecting)

	cl := NewClient(s.clientConfig(), s.logger)
	if err := cl.Connect(s.ctx); err != nil {
		s.ds.SetState(stream.Disconnected)
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}

	s.setClient(cl)
	s.ds.SetState(stream.Connected)
	s.flush(cl)

	s.wg.Add(1)
	go s.run(cl)

	s.logger.Info("session started", "url", s.cfg.URL)
	return nil
}

// Stop tears the session down. The stream keeps its subscriptions; a
// later Start resubscribes them.
func (s *Session) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("shutdown timeout, forcing close")
	}

	s.mu.Lock()
	cl := s.client
	s.client = nil
	s.mu.Unlock()
	if cl != nil {
		cl.Close()
	}

	s.ds.SetState(stream.Disconnected)
	s.logger.Info("session stopped")
	return nil
}

func (s *Session) clientConfig() ClientConfig {
	return ClientConfig{
		URL:          s.cfg.URL,
		WriteTimeout: s.cfg.WriteTimeout,
		StaleTimeout: s.cfg.StaleTimeout,
		BufferSize:   s.cfg.BufferSize,
	}
}

func (s *Session) setClient(cl Client) {
	s.mu.Lock()
	s.client = cl
	s.mu.Unlock()
}

// run services one connection until it fails or the session stops.
func (s *Session) run(cl Client) {
	defer s.wg.Done()

	flush := time.NewTicker(s.cfg.FlushInterval)
	defer flush.Stop()
	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case err := <-cl.Errors():
			s.logger.Warn("connection error", "error", err)
			cl.Close()
			if s.ds.ConnectionLost() == stream.Reconnecting {
				s.wg.Add(1)
				go s.reconnect()
			}
			return

		case frame, ok := <-cl.Frames():
			if !ok {
				return
			}
			s.handleFrame(cl, frame)

		case <-flush.C:
			s.flush(cl)

		case <-heartbeat.C:
			s.ds.Send(protocol.Ping(uint64(time.Now().UnixMilli())))
			s.flush(cl)
		}
	}
}

// handleFrame decodes and applies one inbound frame. Decode failures
// are logged and dropped; they never reach stream state.
func (s *Session) handleFrame(cl Client, frame Frame) {
	msg, err := protocol.Decode(frame.Data)
	if err != nil {
		s.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	reply, ok := s.ds.HandleMessage(msg)
	if ok {
		s.ds.Send(reply)
		s.flush(cl)
	}
}

// flush drains the stream outbox onto the wire. A failed send is
// logged and the message dropped; the connection error path resubscribes
// everything on the next connect anyway.
func (s *Session) flush(cl Client) {
	for _, msg := range s.ds.TakeOutbox() {
		data, err := protocol.Encode(msg)
		if err != nil {
			s.logger.Warn("dropping unencodable message", "type", msg.Type, "error", err)
			continue
		}
		if err := cl.Send(data); err != nil {
			s.logger.Warn("send failed", "type", msg.Type, "error", err)
		}
	}
}

// reconnect redials until it succeeds, the policy gives up, or the
// session stops. Delays come from the stream's backoff policy.
func (s *Session) reconnect() {
	defer s.wg.Done()

	for {
		if !s.ds.ShouldReconnect() {
			s.logger.Warn("reconnect attempts exhausted")
			s.ds.SetState(stream.Failed)
			return
		}

		wait := s.ds.ReconnectDelay()
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(wait):
		}

		s.logger.Info("attempting reconnection", "wait", wait)

		cl := NewClient(s.clientConfig(), s.logger)
		if err := cl.Connect(s.ctx); err != nil {
			s.logger.Warn("reconnection failed", "error", err)
			cl.Close()
			s.ds.IncrementReconnectAttempts()
			continue
		}

		s.setClient(cl)
		// Entering Connected re-enqueues every subscription; push them
		// out before data starts flowing.
		s.ds.SetState(stream.Connected)
		s.flush(cl)

		s.wg.Add(1)
		go s.run(cl)

		s.logger.Info("reconnected")
		return
	}
}
