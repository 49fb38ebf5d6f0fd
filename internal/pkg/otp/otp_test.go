package otp

import (
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/chequeflow/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceGenerator struct {
	codes []string
	next  int
}

func (g *sequenceGenerator) Generate(int) (string, error) {
	if g.next >= len(g.codes) {
		return "", errors.New("sequence exhausted")
	}
	c := g.codes[g.next]
	g.next++
	return c, nil
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestEngine(codes ...string) *Engine {
	return NewEngine(DefaultConfig(), &sequenceGenerator{codes: codes}, hash.NewHMACSHA256("test"))
}

func TestEngine_Issue(t *testing.T) {
	e := newTestEngine("012345")

	c, code, err := e.Issue(t0, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "012345", code)
	assert.Equal(t, t0, c.IssuedAt())
	assert.Equal(t, t0.Add(5*time.Minute), c.ExpiresAt())
	assert.Equal(t, t0.Add(30*time.Second), c.ResendAvailableAt())
	assert.Equal(t, 5, c.AttemptsRemaining())
	assert.Equal(t, 1, c.Issues())
}

func TestEngine_Issue_CappedByCeiling(t *testing.T) {
	e := newTestEngine("111111")

	c, _, err := e.Issue(t0, t0.Add(2*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, t0.Add(2*time.Minute), c.ExpiresAt())
}

func TestEngine_Issue_GeneratorError(t *testing.T) {
	e := newTestEngine()

	c, code, err := e.Issue(t0, time.Time{})
	assert.Error(t, err)
	assert.Nil(t, c)
	assert.Empty(t, code)
}

func TestChallenge_Verify(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		at        time.Duration
		want      Result
		wantErr   error
	}{
		{name: "match", submitted: "482913", at: time.Second, want: Match},
		{name: "match with spaces", submitted: " 482913 ", at: time.Second, want: Match},
		{name: "no match", submitted: "000000", at: time.Second, want: NoMatch},
		{name: "prefix is not a match", submitted: "48291", at: time.Second, want: NoMatch},
		{name: "just before deadline", submitted: "482913", at: 5*time.Minute - time.Nanosecond, want: Match},
		{name: "at deadline", submitted: "482913", at: 5 * time.Minute, wantErr: ErrChallengeExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, err := newTestEngine("482913").Issue(t0, time.Time{})
			require.NoError(t, err)

			got, err := c.Verify(tt.submitted, t0.Add(tt.at))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, c.AttemptsUsed())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, c.AttemptsUsed())
		})
	}
}

func TestChallenge_Verify_ExhaustionThenResend(t *testing.T) {
	c, code, err := newTestEngine("482913", "730216").Issue(t0, time.Time{})
	require.NoError(t, err)

	for i := range 5 {
		res, err := c.Verify("999999", t0.Add(time.Duration(i+1)*time.Second))
		require.NoError(t, err)
		assert.Equal(t, NoMatch, res)
	}
	assert.True(t, c.Exhausted())

	res, err := c.Verify(code, t0.Add(10*time.Second))
	assert.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, NoMatch, res)
	assert.Equal(t, 5, c.AttemptsUsed())

	newCode, err := c.Resend(t0.Add(31 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "730216", newCode)
	assert.Equal(t, 5, c.AttemptsRemaining())

	res, err = c.Verify(code, t0.Add(32*time.Second))
	require.NoError(t, err)
	assert.Equal(t, NoMatch, res, "previous code must stop matching")

	res, err = c.Verify(newCode, t0.Add(33*time.Second))
	require.NoError(t, err)
	assert.Equal(t, Match, res)
}

func TestChallenge_Resend_TooSoonLeavesChallengeUntouched(t *testing.T) {
	c, code, err := newTestEngine("482913", "730216").Issue(t0, time.Time{})
	require.NoError(t, err)

	_, err = c.Verify("000000", t0.Add(time.Second))
	require.NoError(t, err)

	_, err = c.Resend(t0.Add(10 * time.Second))
	require.ErrorIs(t, err, ErrResendTooSoon)

	var cd *CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Equal(t, 20*time.Second, cd.RetryAfter)

	assert.Equal(t, t0.Add(5*time.Minute), c.ExpiresAt())
	assert.Equal(t, 1, c.AttemptsUsed())
	assert.Equal(t, 1, c.Issues())

	res, err := c.Verify(code, t0.Add(11*time.Second))
	require.NoError(t, err)
	assert.Equal(t, Match, res)
}

func TestChallenge_Resend_AtCooldownBoundary(t *testing.T) {
	c, _, err := newTestEngine("482913", "730216").Issue(t0, time.Time{})
	require.NoError(t, err)

	code, err := c.Resend(t0.Add(30 * time.Second))
	require.NoError(t, err)

	assert.Equal(t, "730216", code)
	assert.Equal(t, t0.Add(30*time.Second+5*time.Minute), c.ExpiresAt())
	assert.Equal(t, t0.Add(time.Minute), c.ResendAvailableAt())
	assert.Equal(t, 2, c.Issues())
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Config{}, RandomGenerator{}, hash.NewHMACSHA256(""))
	assert.Equal(t, DefaultConfig(), e.Config())
}
