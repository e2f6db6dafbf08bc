package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

const unlockTimeout = 5 * time.Second

const (
	advisoryLockSQL   = `SELECT pg_advisory_lock(COALESCE((SELECT oid::BIGINT FROM pg_class WHERE relname = $1), hashtext($1)::BIGINT))`
	advisoryUnlockSQL = `SELECT pg_advisory_unlock(COALESCE((SELECT oid::BIGINT FROM pg_class WHERE relname = $1), hashtext($1)::BIGINT))`
)

// ExclusiveSection is a held, named, store-wide lock. It is acquired by
// DB.Exclusive and must be released with Release, normally deferred.
// On Postgres it is a session advisory lock pinned to one pooled connection;
// on SQLite, which has a single writer process, it is an in-process lock.
type ExclusiveSection struct {
	name   string
	conn   *sqlx.Conn
	unlock func()
	once   sync.Once
	err    error
}

// Exclusive blocks until the section named name is held or ctx is done.
func (db *DB) Exclusive(ctx context.Context, name string) (*ExclusiveSection, error) {
	if db.driver != DriverPostgres {
		unlock, err := db.locks.acquire(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire section %s: %w", name, err)
		}
		return &ExclusiveSection{name: name, unlock: unlock}, nil
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection for section %s: %w", name, err)
	}

	if _, err := conn.ExecContext(ctx, advisoryLockSQL, name); err != nil {
		// The lock may have been granted just before cancellation reached
		// the server; never hand such a connection back to the pool.
		discard(conn)
		return nil, fmt.Errorf("failed to acquire advisory lock %s: %w", name, err)
	}

	return &ExclusiveSection{name: name, conn: conn}, nil
}

// Release gives the section up. It is safe to call more than once and does
// not depend on the caller's context, so a cancelled task still releases.
func (s *ExclusiveSection) Release() error {
	s.once.Do(func() {
		if s.unlock != nil {
			s.unlock()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()

		if _, err := s.conn.ExecContext(ctx, advisoryUnlockSQL, s.name); err != nil {
			slog.Error("advisory unlock failed, discarding connection", "section", s.name, "error", err)
			discard(s.conn)
			s.err = fmt.Errorf("failed to release advisory lock %s: %w", s.name, err)
			return
		}
		if err := s.conn.Close(); err != nil {
			s.err = fmt.Errorf("failed to return connection for section %s: %w", s.name, err)
		}
	})
	return s.err
}

// discard closes the physical connection instead of returning it to the pool.
func discard(conn *sqlx.Conn) {
	_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
	_ = conn.Close()
}

// sectionLocks hands out one channel-based mutex per section name so that
// waiting can be abandoned when the caller's context ends.
type sectionLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newSectionLocks() *sectionLocks {
	return &sectionLocks{slots: make(map[string]chan struct{})}
}

func (l *sectionLocks) acquire(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[name]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[name] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
