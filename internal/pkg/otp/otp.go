package otp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/pkg/hash"
)

var (
	// ErrResendTooSoon is returned by Resend while the cooldown is active.
	ErrResendTooSoon = errors.New("otp: resend requested before cooldown elapsed")
	// ErrChallengeExpired is returned by Verify once the code deadline passed.
	ErrChallengeExpired = errors.New("otp: challenge expired")
	// ErrAttemptsExhausted is returned by Verify once every attempt is used.
	ErrAttemptsExhausted = errors.New("otp: verification attempts exhausted")
)

// CooldownError carries how long the caller must wait before a resend.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", ErrResendTooSoon, e.RetryAfter)
}

// Is makes errors.Is(err, ErrResendTooSoon) hold.
func (e *CooldownError) Is(target error) bool {
	return target == ErrResendTooSoon
}

// Result is the outcome of a verification attempt that was counted.
type Result int8

const (
	NoMatch Result = iota
	Match
)

func (r Result) String() string {
	if r == Match {
		return "match"
	}
	return "no_match"
}

// Config tunes an Engine. Zero fields fall back to DefaultConfig values.
type Config struct {
	Digits         int
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

// DefaultConfig returns 6 digits, a 5 minute code window, 5 attempts and a
// 30 second resend cooldown.
func DefaultConfig() Config {
	return Config{
		Digits:         6,
		TTL:            5 * time.Minute,
		MaxAttempts:    5,
		ResendCooldown: 30 * time.Second,
	}
}

// Engine issues challenges using a code Generator and a Hash for storage.
type Engine struct {
	cfg    Config
	gen    Generator
	hasher hash.Hash
}

// NewEngine builds an Engine.
func NewEngine(cfg Config, gen Generator, hasher hash.Hash) *Engine {
	def := DefaultConfig()
	if cfg.Digits <= 0 {
		cfg.Digits = def.Digits
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = def.ResendCooldown
	}

	return &Engine{cfg: cfg, gen: gen, hasher: hasher}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Issue creates a challenge at now and returns it with the plain code, which
// must only be handed to the delivery channel. The code deadline never
// exceeds ceiling; a zero ceiling means no cap.
func (e *Engine) Issue(now, ceiling time.Time) (*Challenge, string, error) {
	c := &Challenge{engine: e, ceiling: ceiling}
	code, err := c.rotate(now)
	if err != nil {
		return nil, "", err
	}

	return c, code, nil
}

// Challenge is one live code with its counters and deadlines.
type Challenge struct {
	engine  *Engine
	ceiling time.Time

	digest            []byte
	issuedAt          time.Time
	expiresAt         time.Time
	resendAvailableAt time.Time
	attemptsUsed      int
	issues            int
}

// Resend replaces the code when the cooldown has elapsed. The previous code
// stops matching immediately and the attempt counter starts over. Before the
// cooldown it returns a *CooldownError and leaves the challenge untouched.
func (c *Challenge) Resend(now time.Time) (string, error) {
	if now.Before(c.resendAvailableAt) {
		return "", &CooldownError{RetryAfter: c.resendAvailableAt.Sub(now)}
	}

	return c.rotate(now)
}

// Verify counts one attempt against the current code.
func (c *Challenge) Verify(submitted string, now time.Time) (Result, error) {
	if !now.Before(c.expiresAt) {
		return NoMatch, ErrChallengeExpired
	}
	if c.attemptsUsed >= c.engine.cfg.MaxAttempts {
		return NoMatch, ErrAttemptsExhausted
	}

	c.attemptsUsed++

	if c.engine.hasher.Verify(string(c.digest), strings.TrimSpace(submitted)) {
		return Match, nil
	}
	return NoMatch, nil
}

func (c *Challenge) IssuedAt() time.Time          { return c.issuedAt }
func (c *Challenge) ExpiresAt() time.Time         { return c.expiresAt }
func (c *Challenge) ResendAvailableAt() time.Time { return c.resendAvailableAt }
func (c *Challenge) AttemptsUsed() int            { return c.attemptsUsed }
func (c *Challenge) MaxAttempts() int             { return c.engine.cfg.MaxAttempts }

// Issues reports how many codes this challenge has produced, the first one included.
func (c *Challenge) Issues() int { return c.issues }

// AttemptsRemaining is never negative.
func (c *Challenge) AttemptsRemaining() int {
	return max(c.engine.cfg.MaxAttempts-c.attemptsUsed, 0)
}

// Exhausted reports whether a resend is required before the next attempt.
func (c *Challenge) Exhausted() bool {
	return c.attemptsUsed >= c.engine.cfg.MaxAttempts
}

func (c *Challenge) rotate(now time.Time) (string, error) {
	code, err := c.engine.gen.Generate(c.engine.cfg.Digits)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}

	digest, err := c.engine.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("otp: digest code: %w", err)
	}

	expiresAt := now.Add(c.engine.cfg.TTL)
	if !c.ceiling.IsZero() && c.ceiling.Before(expiresAt) {
		expiresAt = c.ceiling
	}

	c.digest = digest
	c.issuedAt = now
	c.expiresAt = expiresAt
	c.resendAvailableAt = now.Add(c.engine.cfg.ResendCooldown)
	c.attemptsUsed = 0
	c.issues++

	return code, nil
}
