package memory

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/operator-service/internal/domain/auth/entities"
	autherrors "github.com/Conte777/operator-service/internal/domain/auth/errors"
	"github.com/Conte777/operator-service/internal/infrastructure/metrics"
)

type attemptKey struct {
	operatorID string
	phone      string
}

// AttemptStore stores in-flight login attempts in memory.
// Attempts idle for longer than the TTL are treated as abandoned.
type AttemptStore struct {
	mu              sync.Mutex
	attempts        map[attemptKey]*entities.LoginAttempt
	ttl             time.Duration
	cleanupInterval time.Duration
	maxAttempts     int
	metrics         *metrics.Metrics
	now             func() time.Time
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	done            chan struct{}
	logger          zerolog.Logger
}

// NewAttemptStore creates a store and starts its cleanup goroutine
func NewAttemptStore(ttl, cleanupInterval time.Duration, maxAttempts int, m *metrics.Metrics, logger zerolog.Logger) *AttemptStore {
	store := &AttemptStore{
		attempts:        make(map[attemptKey]*entities.LoginAttempt),
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		maxAttempts:     maxAttempts,
		metrics:         m,
		now:             time.Now,
		stopCleanup:     make(chan struct{}),
		done:            make(chan struct{}),
		logger:          logger.With().Str("component", "attempt_store").Logger(),
	}

	go store.runCleanup()

	return store
}

// Load returns a copy of the attempt for (operatorID, phone)
func (s *AttemptStore) Load(operatorID, phone string) (*entities.LoginAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{operatorID: operatorID, phone: phone}
	attempt, ok := s.attempts[key]
	if !ok {
		return nil, autherrors.ErrAttemptNotFound
	}

	if s.expired(attempt) {
		delete(s.attempts, key)
		return nil, autherrors.ErrAttemptNotFound
	}

	return attempt.Clone(), nil
}

// Save stores a copy of attempt, replacing any attempt for the same key
func (s *AttemptStore) Save(attempt *entities.LoginAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{operatorID: attempt.OperatorID, phone: attempt.Phone}
	if _, exists := s.attempts[key]; !exists && s.maxAttempts > 0 && len(s.attempts) >= s.maxAttempts {
		return autherrors.ErrTooManyAttempts
	}

	s.attempts[key] = attempt.Clone()
	s.logger.Debug().Str("attempt_id", attempt.ID).Str("step", string(attempt.Step())).Msg("attempt stored")
	return nil
}

// Delete removes the attempt for (operatorID, phone) and reports whether one existed
func (s *AttemptStore) Delete(operatorID, phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{operatorID: operatorID, phone: phone}
	if _, ok := s.attempts[key]; !ok {
		return false
	}
	delete(s.attempts, key)
	return true
}

// Count returns the number of stored attempts
func (s *AttemptStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// Cleanup removes idle attempts, refreshes the active attempts gauge and
// returns how many were removed
func (s *AttemptStore) Cleanup() int {
	s.mu.Lock()
	removed := 0
	for key, attempt := range s.attempts {
		if s.expired(attempt) {
			delete(s.attempts, key)
			removed++
		}
	}
	remaining := len(s.attempts)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetActiveAttempts(remaining)
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Int("remaining", remaining).Msg("cleaned up idle login attempts")
	}
	return removed
}

// Stop stops the cleanup goroutine and waits for it to exit
func (s *AttemptStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
	<-s.done
}

func (s *AttemptStore) expired(attempt *entities.LoginAttempt) bool {
	return s.ttl > 0 && s.now().Sub(attempt.UpdatedAt) > s.ttl
}

func (s *AttemptStore) runCleanup() {
	defer close(s.done)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
