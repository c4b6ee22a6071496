package lock

import (
	"errors"
	"log/slog"
	"time"
)

// Default lock waiting settings.
const (
	DefaultWaitTimeout  = 5 * time.Minute
	DefaultPollInterval = 10 * time.Second
)

// Option is a function that allows configuring the Service.
type Option func(*Service) error

// WithLogger sets the logger used by the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = logger.With("component", "lock", "lock.table", s.table.String())
		return nil
	}
}

// WithWaitTimeout sets how long Acquire waits for the lock before giving up.
// A zero timeout makes Acquire try only once.
func WithWaitTimeout(dur time.Duration) Option {
	return func(s *Service) error {
		if dur < 0 {
			return errors.New("lock wait timeout must not be negative")
		}
		s.waitTimeout = dur
		return nil
	}
}

// WithPollInterval sets how often Acquire retries while the lock is held by
// someone else.
func WithPollInterval(dur time.Duration) Option {
	return func(s *Service) error {
		if dur <= 0 {
			return errors.New("lock poll interval must be greater than 0")
		}
		s.pollInterval = dur
		return nil
	}
}

// WithStaleAfter sets the age after which a held lock is considered stale and
// is released by Acquire. A zero duration disables stale lock detection.
func WithStaleAfter(dur time.Duration) Option {
	return func(s *Service) error {
		if dur < 0 {
			return errors.New("stale lock age must not be negative")
		}
		s.staleAfter = dur
		return nil
	}
}

// DefaultOptions returns the default Service options.
func DefaultOptions() []Option {
	return []Option{
		WithWaitTimeout(DefaultWaitTimeout),
		WithPollInterval(DefaultPollInterval),
		WithLogger(slog.Default()),
	}
}
