package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.hackfix.me/changelock/db/types"
	"go.hackfix.me/changelock/host"
	"go.hackfix.me/changelock/sqlgen"
)

// Service acquires and releases the lock on behalf of a single host identity.
// The database's row-level concurrency control is the only thing that keeps
// separate processes from holding the lock at the same time; the mutex only
// guards the held state of this Service.
type Service struct {
	q            types.Querier
	table        Table
	identity     host.Identity
	waitTimeout  time.Duration
	pollInterval time.Duration
	staleAfter   time.Duration
	logger       *slog.Logger

	mx   sync.Mutex
	held bool
}

// ErrNoIdentity is returned by the operations that acquire or release the lock
// on behalf of a Service created without a host identity.
var ErrNoIdentity = errors.New("host identity is required")

// NewService returns a new Service that locks table as identity. A zero
// identity is allowed, in which case only Status and ForceRelease can be used.
func NewService(q types.Querier, table Table, identity host.Identity, opts ...Option) (*Service, error) {
	if q == nil {
		return nil, errors.New("querier is required")
	}
	if identity != (host.Identity{}) && (identity.Hostname == "" || identity.Address == "") {
		return nil, fmt.Errorf("incomplete host identity '%s'", identity)
	}
	if table.Name == "" {
		table.Name = DefaultTableName
	}

	s := &Service{q: q, table: table, identity: identity}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Identity returns the host identity the lock is acquired as.
func (s *Service) Identity() host.Identity {
	return s.identity
}

// Held reports whether this Service holds the lock.
func (s *Service) Held() bool {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.held
}

// TryAcquire makes a single attempt to acquire the lock. It returns false
// without an error if the lock is held by someone else.
func (s *Service) TryAcquire(ctx context.Context) (bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.held {
		return true, nil
	}
	if s.identity == (host.Identity{}) {
		return false, ErrNoIdentity
	}

	at := s.q.TimeNow().UTC().Truncate(time.Millisecond)
	n, err := s.exec(ctx, AcquireOp(s.table, s.identity, at))
	if err != nil {
		return false, fmt.Errorf("failed acquiring lock: %w", err)
	}

	switch {
	case n == 0:
		s.logger.Debug("lock is held by someone else")
		return false, nil
	case n > 1:
		return false, types.IntegrityError{
			Msg: fmt.Sprintf("acquiring lock updated %d rows of %s", n, s.table),
		}
	}

	s.held = true
	s.logger.Info("acquired lock",
		"lock.holder", s.identity.String(), "lock.granted", at.Format(time.RFC3339Nano))

	return true, nil
}

// Acquire waits until the lock is acquired, the wait timeout is reached, or
// ctx is done. If the lock couldn't be acquired it returns a LockedError with
// the current lock holder.
func (s *Service) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := s.TryAcquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		broke, err := s.breakStale(ctx)
		if err != nil {
			return err
		}
		if broke {
			continue
		}

		select {
		case <-waitCtx.Done():
			return s.lockedError(ctx, waitCtx.Err())
		case <-ticker.C:
			s.logger.Debug("waiting for lock", "poll_interval", s.pollInterval)
		}
	}
}

// Adopt marks the lock as held by this Service if the lock row names its
// identity as the holder. This allows a process to release a lock acquired by
// an earlier process running on the same host.
func (s *Service) Adopt(ctx context.Context) (bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.held {
		return true, nil
	}
	if s.identity == (host.Identity{}) {
		return false, ErrNoIdentity
	}

	row, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	s.held = row.Locked && row.LockedBy.Valid && row.LockedBy.V == lockedBy(s.identity)

	return s.held, nil
}

// Release unlocks the lock if it's held by this Service.
func (s *Service) Release(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if s.identity == (host.Identity{}) {
		return ErrNoIdentity
	}
	if !s.held {
		return NotHeldError{Table: s.table.String(), LockedBy: s.identity.String()}
	}

	n, err := s.exec(ctx, ReleaseOp(s.table, s.identity))
	if err != nil {
		return fmt.Errorf("failed releasing lock: %w", err)
	}

	switch {
	case n == 0:
		// Someone force released the lock while we held it.
		s.held = false
		return NotHeldError{Table: s.table.String(), LockedBy: s.identity.String()}
	case n > 1:
		return types.IntegrityError{
			Msg: fmt.Sprintf("releasing lock updated %d rows of %s", n, s.table),
		}
	}

	s.held = false
	s.logger.Info("released lock", "lock.holder", s.identity.String())

	return nil
}

// ForceRelease unlocks the lock regardless of who holds it. It's meant for
// recovering from processes that died while holding the lock.
func (s *Service) ForceRelease(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	row, err := s.Status(ctx)
	if err != nil {
		return err
	}

	n, err := s.exec(ctx, ForceReleaseOp(s.table))
	if err != nil {
		return fmt.Errorf("failed force releasing lock: %w", err)
	}

	switch {
	case n == 0:
		return types.NoResultError{ModelName: "lock", ID: fmt.Sprintf("ID %d", RowID)}
	case n > 1:
		return types.IntegrityError{
			Msg: fmt.Sprintf("force releasing lock updated %d rows of %s", n, s.table),
		}
	}

	s.held = false
	if row.Locked {
		s.logger.Warn("force released lock",
			"lock.holder", row.LockedBy.V, "lock.granted", formatGranted(row))
	} else {
		s.logger.Info("lock was not held")
	}

	return nil
}

// Status reads the current lock row.
func (s *Service) Status(ctx context.Context) (Row, error) {
	query, args, err := sqlgen.Bind(SelectOp(s.table), s.q.Dialect())
	if err != nil {
		return Row{}, err
	}

	var (
		row     Row
		locked  flag
		granted timestamp
	)
	err = s.q.QueryRowContext(ctx, query, args...).
		Scan(&row.ID, &locked, &granted, &row.LockedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Row{}, types.NoResultError{ModelName: "lock", ID: fmt.Sprintf("ID %d", RowID)}
		}
		return Row{}, types.ScanError{ModelName: "lock", Err: err}
	}
	row.Locked = bool(locked)
	row.LockGranted = sql.Null[time.Time]{V: granted.t, Valid: granted.valid}

	return row, nil
}

// WithLock acquires the lock, runs fn and releases the lock, even if fn fails.
func (s *Service) WithLock(ctx context.Context, fn func(context.Context) error) (err error) {
	if err = s.Acquire(ctx); err != nil {
		return err
	}

	defer func() {
		relErr := s.Release(context.WithoutCancel(ctx))
		err = errors.Join(err, relErr)
	}()

	return fn(ctx)
}

// breakStale releases the lock if it was granted more than staleAfter ago.
func (s *Service) breakStale(ctx context.Context) (bool, error) {
	if s.staleAfter <= 0 {
		return false, nil
	}

	row, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	if !row.Locked || !row.LockGranted.Valid {
		return false, nil
	}

	cutoff := s.q.TimeNow().UTC().Add(-s.staleAfter)
	n, err := s.exec(ctx, ExpireOp(s.table, cutoff))
	if err != nil {
		return false, fmt.Errorf("failed releasing stale lock: %w", err)
	}
	if n > 1 {
		return false, types.IntegrityError{
			Msg: fmt.Sprintf("releasing stale lock updated %d rows of %s", n, s.table),
		}
	}
	if n == 1 {
		s.logger.Warn("released stale lock",
			"lock.holder", row.LockedBy.V, "lock.granted", formatGranted(row),
			"stale_after", s.staleAfter)
	}

	return n == 1, nil
}

func (s *Service) lockedError(ctx context.Context, cause error) error {
	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	lerr := LockedError{Err: cause}
	row, err := s.Status(readCtx)
	if err != nil {
		lerr.Err = errors.Join(cause, err)
		return lerr
	}
	if row.LockedBy.Valid {
		lerr.LockedBy = row.LockedBy.V
	}
	if row.LockGranted.Valid {
		lerr.Granted = row.LockGranted.V
	}

	return lerr
}

func (s *Service) exec(ctx context.Context, stmt sqlgen.Statement) (int64, error) {
	query, args, err := sqlgen.Bind(stmt, s.q.Dialect())
	if err != nil {
		return 0, err
	}

	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed getting affected rows: %w", err)
	}

	return n, nil
}

func formatGranted(row Row) string {
	if !row.LockGranted.Valid {
		return ""
	}
	return row.LockGranted.V.Format(time.RFC3339Nano)
}
