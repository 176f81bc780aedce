// Package importsession caches batch-import sessions in Redis and guards each
// session with a lock while it is being resolved.
package importsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/redis"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/resolution"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

const (
	cacheKeyPrefix = "import-session:"
	lockKeyPrefix  = "import-session-lock:"
)

// Repository stores fetched import sessions for ttl.
type Repository struct {
	client *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

// NewRepository creates a session cache
func NewRepository(client *redis.Client, ttl time.Duration, logger ectologger.Logger) *Repository {
	return &Repository{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached session, or nil on a miss.
func (r *Repository) Get(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	ctx, span := tracing.StartSpan(ctx, "importsession.Repository.Get")
	defer span.End()

	var session models.ImportSession
	found, err := r.client.GetJSON(ctx, cacheKeyPrefix+sessionID, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached import session %s: %w", sessionID, err)
	}
	if !found {
		return nil, nil
	}
	return &session, nil
}

// Set caches a session under its id
func (r *Repository) Set(ctx context.Context, session *models.ImportSession) error {
	ctx, span := tracing.StartSpan(ctx, "importsession.Repository.Set")
	defer span.End()

	return r.client.SetJSON(ctx, cacheKeyPrefix+session.SessionID, session, r.ttl)
}

// Delete drops a cached session
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, cacheKeyPrefix+sessionID)
}

// Locks hands out one lock per import session.
type Locks struct {
	locker *redis.Locker
	ttl    time.Duration
}

// NewLocks creates session locks that expire after ttl if never released
func NewLocks(client *redis.Client, ttl time.Duration) *Locks {
	return &Locks{locker: redis.NewLocker(client, lockKeyPrefix), ttl: ttl}
}

// Acquire locks a session, failing with resolution.ErrSessionLocked when it is held elsewhere.
func (l *Locks) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	lock, err := l.locker.Acquire(ctx, sessionID, l.ttl)
	if errors.Is(err, redis.ErrLockNotAcquired) {
		return nil, fmt.Errorf("%w: %s", resolution.ErrSessionLocked, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock import session %s: %w", sessionID, err)
	}
	return lock.Release, nil
}
