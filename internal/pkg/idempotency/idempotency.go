// Package idempotency guards side-effecting operations so a client retry with
// the same key runs them at most once.
//
// State is kept in Redis: a key is claimed with SET NX while the operation
// runs and then overwritten with its outcome for a configurable TTL.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
	ErrEmptyKey          = errors.New("idempotency: key is required")
)

type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // operation already in progress
	StateCompleted  State = "completed"   // operation already completed
	StateFailed     State = "failed"      // previous attempt failed
	StateError      State = "error"       // tracker error
)

func (s State) String() string {
	return string(s)
}

func parseState(v string) (State, error) {
	switch State(v) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(v), nil
	default:
		return StateError, ErrInvalidState
	}
}

// Idempotency runs fn at most once per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

type StateTracker struct {
	client redis.Cmdable
	prefix string
}

// TrackerOption configures a StateTracker.
type TrackerOption func(*StateTracker)

// WithPrefix namespaces keys, e.g. per module.
func WithPrefix(prefix string) TrackerOption {
	return func(s *StateTracker) {
		s.prefix = prefix
	}
}

func New(client redis.Cmdable, opts ...TrackerOption) *StateTracker {
	s := &StateTracker{
		client: client,
		prefix: "idempotency:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 10 * time.Minute
)

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
	failOn       func(error) bool
}

func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// WithFailOn decides which errors from fn are recorded as a failed outcome.
// Errors it rejects release the key so the client may retry. By default every
// error is recorded.
func WithFailOn(fn func(error) bool) Option {
	return func(o *execOptions) {
		o.failOn = fn
	}
}

// Acquire tries to claim key for a new operation. StateNone means the caller
// owns the key.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	for range 2 {
		acquired, err := s.client.SetNX(ctx, fk, StateInProgress.String(), lockDuration).Result()
		if err != nil {
			return StateError, err
		}
		if acquired {
			return StateNone, nil
		}

		result, err := s.client.Get(ctx, fk).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return StateError, err
		}
		return parseState(result)
	}

	return StateError, ErrInvalidState
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateCompleted.String(), ttl).Err()
}

func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateFailed.String(), ttl).Err()
}

// Release drops the claim on key.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	if key == "" {
		return ErrEmptyKey
	}

	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		if execOpt.failOn != nil && !execOpt.failOn(err) {
			return errors.Join(err, s.Release(ctx, key))
		}
		if markErr := s.MarkFailed(ctx, key, execOpt.stateTTL); markErr != nil {
			return errors.Join(err, markErr)
		}
		return err
	}

	return s.MarkCompleted(ctx, key, execOpt.stateTTL)
}
