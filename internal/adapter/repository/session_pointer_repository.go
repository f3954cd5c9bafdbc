package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/inkline-team/inkline/internal/domain/entities"
	usecaseErrors "github.com/inkline-team/inkline/internal/usecase/errors"
)

// currentSessionKey holds the single shared pointer all tabs arbitrate over
const currentSessionKey = "inkline:session:current"

// SessionPointerRepository implements the session pointer repository
// interface using Redis
type SessionPointerRepository struct {
	client *redis.Client
}

// NewSessionPointerRepository creates a new session pointer repository
func NewSessionPointerRepository(client *redis.Client) *SessionPointerRepository {
	return &SessionPointerRepository{
		client: client,
	}
}

// Get reads the current session pointer
func (r *SessionPointerRepository) Get(ctx context.Context) (*entities.SessionPointer, error) {
	raw, err := r.client.Get(ctx, currentSessionKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, usecaseErrors.ErrSessionPointerNotFound
		}
		return nil, fmt.Errorf("failed to read session pointer: %w", err)
	}

	var pointer entities.SessionPointer
	if err := json.Unmarshal(raw, &pointer); err != nil {
		return nil, fmt.Errorf("failed to decode session pointer: %w", err)
	}
	return &pointer, nil
}

// Set overwrites the current session pointer. The key carries no TTL: a
// pointer past the stale timeout must stay readable so the next tab can
// classify it as stale and offer claim-or-abandon.
func (r *SessionPointerRepository) Set(ctx context.Context, pointer *entities.SessionPointer) error {
	raw, err := json.Marshal(pointer)
	if err != nil {
		return fmt.Errorf("failed to encode session pointer: %w", err)
	}
	if err := r.client.Set(ctx, currentSessionKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write session pointer: %w", err)
	}
	return nil
}

// Clear removes the current session pointer
func (r *SessionPointerRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, currentSessionKey).Err(); err != nil {
		return fmt.Errorf("failed to clear session pointer: %w", err)
	}
	return nil
}
