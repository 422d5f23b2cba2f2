// Package valkey stores login sessions in a Valkey (Redis-compatible) server.
package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/binroute/internal/core/domain"
)

const keyPrefix = "session:"

// SessionStore implements ports.SessionStore. Sessions expire via Valkey
// TTLs; there is no in-process state.
type SessionStore struct {
	client valkey.Client
}

// New creates a new session store.
func New(addr string) (*SessionStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &SessionStore{client: client}, nil
}

// Create stores a session under its token with the given TTL.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	cmd := s.client.Do(ctx,
		s.client.B().Set().Key(keyPrefix+session.Token).Value(string(data)).Ex(ttl).Build(),
	)
	return cmd.Error()
}

// Get resolves a token back to its session.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	cmd := s.client.Do(ctx, s.client.B().Get().Key(keyPrefix+token).Build())
	if cmd.Error() != nil {
		return nil, cmd.Error()
	}
	data, err := cmd.AsBytes()
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	session.Token = token
	return &session, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	cmd := s.client.Do(ctx, s.client.B().Del().Key(keyPrefix+token).Build())
	return cmd.Error()
}

// Ping checks connectivity to the valkey server.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *SessionStore) Close() {
	s.client.Close()
}
