package conversation

import (
	"context"
	"time"

	"github.com/chatrelay/chatrelay/pkg/logging"
)

// sessionHistoryLimit bounds the rolling intent history; oldest entries are
// evicted first.
const sessionHistoryLimit = 10

// Updater merges observed intents into per-user session state. Reads are
// fail-open: a read error is treated as an absent session so one bad read
// never blocks the pipeline. There is no read-modify-write transaction;
// concurrent updates for the same user race and the last write wins.
type Updater struct {
	sessions SessionStore
	logger   *logging.Logger
	now      func() time.Time
}

// UpdaterOption customizes the session updater.
type UpdaterOption func(*Updater)

// WithUpdaterClock injects the time source.
func WithUpdaterClock(now func() time.Time) UpdaterOption {
	return func(u *Updater) {
		if now != nil {
			u.now = now
		}
	}
}

// NewUpdater creates a session updater.
func NewUpdater(sessions SessionStore, logger *logging.Logger, opts ...UpdaterOption) *Updater {
	if sessions == nil {
		panic("conversation: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	u := &Updater{
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Observe records one detected intent for a user: bumps the activity counter,
// appends to the bounded history and overwrites the full row.
func (u *Updater) Observe(ctx context.Context, userID, intentLabel, channelTag string) error {
	existing, err := u.sessions.GetSession(ctx, userID)
	if err != nil {
		u.logger.Warn("session read failed, starting fresh", "error", err, "user_id", userID)
		existing = nil
	}

	session := UserSession{UserID: userID}
	if existing != nil {
		session = *existing
	}

	now := u.now().UTC().Unix()
	session.UserID = userID
	session.SessionCount++
	session.LastIntent = intentLabel
	session.LastActivity = now
	session.Channel = channelTag
	session.IntentHistory = append(session.IntentHistory, IntentObservation{
		Intent:    intentLabel,
		Timestamp: now,
	})
	if n := len(session.IntentHistory); n > sessionHistoryLimit {
		session.IntentHistory = session.IntentHistory[n-sessionHistoryLimit:]
	}

	if err := u.sessions.PutSession(ctx, session); err != nil {
		return &DependencyError{Op: "update session", Err: err}
	}
	return nil
}
