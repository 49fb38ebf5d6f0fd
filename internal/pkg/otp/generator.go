package otp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"math/big"

	libOTP "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"go.uber.org/atomic"
)

const (
	GeneratorRandom = "random"
	GeneratorHOTP   = "hotp"
)

// ErrUnsupportedDigits is returned when a generator cannot produce codes of
// the requested length.
var ErrUnsupportedDigits = errors.New("otp: unsupported digit count")

// Generator produces a numeric code with exactly digits characters.
type Generator interface {
	Generate(digits int) (string, error)
}

// NewGenerator returns the generator registered under name, falling back to
// RandomGenerator for unknown names. digits is the code length the engine will
// ask for; zero means the default of 6.
func NewGenerator(name string, digits int) (Generator, error) {
	if name == GeneratorHOTP {
		if digits != 0 && !hotpDigits(digits) {
			return nil, fmt.Errorf("%w: hotp supports 6 or 8, got %d", ErrUnsupportedDigits, digits)
		}
		g, err := NewHOTPGenerator()
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return RandomGenerator{}, nil
}

// RandomGenerator draws codes uniformly from crypto/rand.
type RandomGenerator struct{}

// Generate returns a value in [0, 10^digits) padded with leading zeros.
func (RandomGenerator) Generate(digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}

// HOTPGenerator derives codes with RFC 4226 from a random per-process key and
// a monotonically increasing counter.
type HOTPGenerator struct {
	secret  string
	counter atomic.Uint64
}

// NewHOTPGenerator creates a generator with a fresh 20 byte key.
func NewHOTPGenerator() (*HOTPGenerator, error) {
	key := make([]byte, 20)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	return &HOTPGenerator{
		secret: base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key),
	}, nil
}

// Generate supports 6 and 8 digits.
func (g *HOTPGenerator) Generate(digits int) (string, error) {
	if !hotpDigits(digits) {
		return "", fmt.Errorf("%w: hotp supports 6 or 8, got %d", ErrUnsupportedDigits, digits)
	}

	return hotp.GenerateCodeCustom(g.secret, g.counter.Inc(), hotp.ValidateOpts{
		Digits:    libOTP.Digits(digits),
		Algorithm: libOTP.AlgorithmSHA1,
	})
}

func hotpDigits(digits int) bool {
	return digits == int(libOTP.DigitsSix) || digits == int(libOTP.DigitsEight)
}
