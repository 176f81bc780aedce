package resolution

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/metrics"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

var (
	// ErrSessionNotOpen is returned for a session without an open resolution.
	ErrSessionNotOpen = errors.New("no resolution is open for this import session")
	// ErrSessionLocked is returned when another console instance is resolving the session.
	ErrSessionLocked = errors.New("import session is being resolved elsewhere")
)

// SessionSource loads import sessions from the batch-import service.
type SessionSource interface {
	GetSession(ctx context.Context, sessionID string) (*models.ImportSession, error)
}

// SessionCache keeps fetched sessions between requests. Get reports a miss with a nil session.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*models.ImportSession, error)
	Set(ctx context.Context, session *models.ImportSession) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionLocks makes sure a session is resolved by a single console instance.
type SessionLocks interface {
	Acquire(ctx context.Context, sessionID string) (release func(context.Context) error, err error)
}

// CommitNotifier announces finished imports.
type CommitNotifier interface {
	EmitImportCommitted(ctx context.Context, sessionID string, result *models.CommitResult, auto bool) error
}

// Service runs resolution sessions for the HTTP API. It owns one Resolver per open session.
type Service struct {
	source    SessionSource
	committer Committer
	cache     SessionCache
	locks     SessionLocks
	notifier  CommitNotifier
	logger    ectologger.Logger

	mu       sync.Mutex
	sessions map[string]*openSession
	gates    map[string]*sessionGate
}

type openSession struct {
	resolver *Resolver
	release  func(context.Context) error
}

// sessionGate serializes Open calls for one session id.
type sessionGate struct {
	mu   sync.Mutex
	refs int
}

// ServiceOption configures optional collaborators of a Service
type ServiceOption func(*Service)

// WithCache caches fetched sessions.
func WithCache(cache SessionCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithLocks guards each session with a distributed lock.
func WithLocks(locks SessionLocks) ServiceOption {
	return func(s *Service) { s.locks = locks }
}

// WithNotifier announces commits.
func WithNotifier(notifier CommitNotifier) ServiceOption {
	return func(s *Service) { s.notifier = notifier }
}

// NewService creates a resolution service
func NewService(source SessionSource, committer Committer, logger ectologger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		source:    source,
		committer: committer,
		logger:    logger,
		sessions:  make(map[string]*openSession),
		gates:     make(map[string]*sessionGate),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts resolving an import session, or returns the one already open.
// A session without rows to decide is committed right away.
func (s *Service) Open(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Service.Open")
	defer span.End()

	log := s.logger.WithContext(ctx).WithField("session_id", sessionID)

	unlock := s.gate(sessionID)
	defer unlock()

	if open, ok := s.lookup(sessionID); ok {
		return open.resolver.View(), nil
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	release := func(context.Context) error { return nil }
	if s.locks != nil {
		release, err = s.locks.Acquire(ctx, sessionID)
		if err != nil {
			log.WithError(err).Warn("Failed to lock import session")
			return nil, err
		}
	}

	resolver, err := NewResolver(session, s.committer, s.logger)
	if err != nil {
		s.release(ctx, sessionID, release)
		return nil, err
	}

	open := &openSession{resolver: resolver, release: release}
	s.mu.Lock()
	s.sessions[sessionID] = open
	s.mu.Unlock()
	metrics.ResolutionSessionsOpen.Inc()

	result, committed, err := resolver.AutoCommit(ctx)
	if err != nil {
		metrics.RecordSessionOutcome("commit_failed")
		log.WithError(err).Error("Automatic import commit failed")
		return nil, err
	}
	if committed {
		log.Info("Import session had no duplicates, committed automatically")
		s.finish(ctx, sessionID, open, result, true)
		return resolver.View(), nil
	}

	log.WithField("pending", len(resolver.Pending())).Info("Import resolution opened")
	return resolver.View(), nil
}

// gate locks the Open path of one session and returns its unlock func.
// Other sessions are not affected.
func (s *Service) gate(sessionID string) func() {
	s.mu.Lock()
	g, ok := s.gates[sessionID]
	if !ok {
		g = &sessionGate{}
		s.gates[sessionID] = g
	}
	g.refs++
	s.mu.Unlock()

	g.mu.Lock()
	return func() {
		g.mu.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()
		g.refs--
		if g.refs == 0 {
			delete(s.gates, sessionID)
		}
	}
}

func (s *Service) lookup(sessionID string) (*openSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, ok := s.sessions[sessionID]
	return open, ok
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*models.ImportSession, error) {
	log := s.logger.WithContext(ctx).WithField("session_id", sessionID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, sessionID)
		if err != nil {
			log.WithError(err).Warn("Failed to read cached import session")
		} else if cached != nil {
			return cached, nil
		}
	}

	session, err := s.source.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SessionID == "" {
		session.SessionID = sessionID
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, session); err != nil {
			log.WithError(err).Warn("Failed to cache import session")
		}
	}
	return session, nil
}

// Get returns the current state of an open session.
func (s *Service) Get(ctx context.Context, sessionID string) (*View, error) {
	resolver, err := s.resolver(sessionID)
	if err != nil {
		return nil, err
	}
	return resolver.View(), nil
}

// Choose records an operator decision for a row.
func (s *Service) Choose(ctx context.Context, sessionID string, rowNumber int, action models.DecisionAction, personID *int64) (*View, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Service.Choose")
	defer span.End()

	resolver, err := s.resolver(sessionID)
	if err != nil {
		return nil, err
	}

	if err := resolver.Choose(rowNumber, action, personID); err != nil {
		return nil, err
	}
	metrics.RecordDecision(string(action))

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sessionID,
		"row_number": rowNumber,
		"action":     action,
	}).Debug("Recorded import decision")

	return resolver.View(), nil
}

// Confirm commits the decisions of an open session. On failure the session
// stays open with every decision intact.
func (s *Service) Confirm(ctx context.Context, sessionID string) (*View, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Service.Confirm")
	defer span.End()

	open, ok := s.lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotOpen, sessionID)
	}

	result, err := open.resolver.Confirm(ctx)
	if err != nil {
		if !errors.Is(err, ErrDecisionsIncomplete) && !errors.Is(err, ErrCommitInProgress) {
			metrics.RecordSessionOutcome("commit_failed")
		}
		return nil, err
	}

	s.finish(ctx, sessionID, open, result, false)

	return open.resolver.View(), nil
}

// Cancel abandons an open session without committing anything.
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	open, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionNotOpen, sessionID)
	}
	if err := open.resolver.Cancel(); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	metrics.ResolutionSessionsOpen.Dec()
	metrics.RecordSessionOutcome("cancelled")
	s.release(ctx, sessionID, open.release)

	s.logger.WithContext(ctx).WithField("session_id", sessionID).Info("Import resolution cancelled")
	return nil
}

func (s *Service) resolver(sessionID string) (*Resolver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	open, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotOpen, sessionID)
	}
	return open.resolver, nil
}

func (s *Service) finish(ctx context.Context, sessionID string, open *openSession, result *models.CommitResult, auto bool) {
	log := s.logger.WithContext(ctx).WithField("session_id", sessionID)

	s.mu.Lock()
	if current, ok := s.sessions[sessionID]; ok && current == open {
		delete(s.sessions, sessionID)
		metrics.ResolutionSessionsOpen.Dec()
	}
	s.mu.Unlock()

	outcome := "committed"
	if auto {
		outcome = "auto_committed"
	}
	metrics.RecordSessionOutcome(outcome)
	metrics.RecordCommittedRows(result.Created, result.Updated, result.Skipped, result.Errors)

	if s.notifier != nil {
		if err := s.notifier.EmitImportCommitted(ctx, sessionID, result, auto); err != nil {
			log.WithError(err).Warn("Failed to announce import commit")
		}
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, sessionID); err != nil {
			log.WithError(err).Warn("Failed to drop cached import session")
		}
	}

	s.release(ctx, sessionID, open.release)
}

func (s *Service) release(ctx context.Context, sessionID string, release func(context.Context) error) {
	if err := release(ctx); err != nil {
		s.logger.WithContext(ctx).WithField("session_id", sessionID).WithError(err).Warn("Failed to release import session lock")
	}
}
