package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"socialbot-gateway/pkg/models"
)

// SessionTimeout is how long a session survives without activity.
const SessionTimeout = 30 * time.Minute

// Session is the only state that outlives a process.
type Session struct {
	User          models.User
	Authenticated bool
	LastActivity  time.Time
}

// Expired reports whether the session has been idle past SessionTimeout.
func (s Session) Expired(now time.Time) bool {
	return !s.Authenticated || now.Sub(s.LastActivity) > SessionTimeout
}

// SessionRepository persists the session in the one-row sessions table.
type SessionRepository struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Load returns the stored session. An expired session is cleared and
// reported as unauthenticated.
func (r *SessionRepository) Load() (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Session
	var lastActivity sql.NullTime
	err := r.db.QueryRow(`SELECT user_id, email, name, authenticated, last_activity FROM sessions WHERE id = 1`).
		Scan(&s.User.ID, &s.User.Email, &s.User.Name, &s.Authenticated, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if lastActivity.Valid {
		s.LastActivity = lastActivity.Time
	}
	if s.Authenticated && s.Expired(r.now()) {
		logrus.Info("session expired after inactivity")
		if _, err := r.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
			return Session{}, fmt.Errorf("clear expired session: %w", err)
		}
		return Session{}, nil
	}
	return s, nil
}

func (r *SessionRepository) Save(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.LastActivity.IsZero() {
		s.LastActivity = r.now()
	}
	_, err := r.db.Exec(`INSERT INTO sessions (id, user_id, email, name, authenticated, last_activity, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, email=excluded.email, name=excluded.name,
			authenticated=excluded.authenticated, last_activity=excluded.last_activity, updated_at=CURRENT_TIMESTAMP`,
		s.User.ID, s.User.Email, s.User.Name, s.Authenticated, s.LastActivity.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Touch records activity on an authenticated session.
func (r *SessionRepository) Touch() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(`UPDATE sessions SET last_activity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1 AND authenticated = 1`, r.now().UTC())
	return err
}

func (r *SessionRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
