package intake

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"yoxo/internal/logging"
)

const (
	defaultStoreMaxSessions = 4096
	defaultStoreTTL         = 24 * time.Hour
)

// StoreConfig configures the intake session store.
type StoreConfig struct {
	// MaxSessions bounds the number of concurrently tracked sessions.
	MaxSessions int
	// TTL is how long an abandoned session survives a page reload.
	TTL time.Duration
}

// DefaultStoreConfig returns the defaults used by the server.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{MaxSessions: defaultStoreMaxSessions, TTL: defaultStoreTTL}
}

type storeEntry struct {
	session  *Session
	storedAt time.Time
}

// Store keeps in-progress intake sessions addressable by token so a page
// reload resumes instead of restarting. Sessions are evicted after TTL or
// under capacity pressure; a completed submission removes its session
// explicitly.
type Store struct {
	cache  *lru.Cache[string, storeEntry]
	ttl    time.Duration
	now    func() time.Time
	logger logging.Logger
}

// NewStore builds a session store with the given bounds.
func NewStore(config StoreConfig) (*Store, error) {
	if config.MaxSessions <= 0 {
		config.MaxSessions = defaultStoreMaxSessions
	}
	if config.TTL <= 0 {
		config.TTL = defaultStoreTTL
	}

	cache, err := lru.New[string, storeEntry](config.MaxSessions)
	if err != nil {
		return nil, err
	}

	return &Store{
		cache:  cache,
		ttl:    config.TTL,
		now:    time.Now,
		logger: logging.NewComponentLogger("IntakeStore"),
	}, nil
}

// Put stores or refreshes a session under its token.
func (st *Store) Put(session *Session) {
	if session == nil || session.Token == "" {
		return
	}
	st.cache.Add(session.Token, storeEntry{session: session, storedAt: st.now()})
}

// Get returns the live session for a token, or ErrSessionNotFound when the
// token is unknown or the session has expired.
func (st *Store) Get(token string) (*Session, error) {
	entry, ok := st.cache.Get(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if st.now().Sub(entry.storedAt) > st.ttl {
		st.cache.Remove(token)
		st.logger.Debug("Intake session %s expired", token)
		return nil, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete discards a session, typically after its final submission.
func (st *Store) Delete(token string) {
	st.cache.Remove(token)
}

// Len returns the number of tracked sessions, expired entries included.
func (st *Store) Len() int {
	return st.cache.Len()
}
