// Package matcher decides whether two strings over [a-z0-9] can denote the
// same underlying letter sequence once every digit run is read as a
// run-length count of skipped characters. A digit run may have been written
// as up to three consecutive decimal pieces whose values sum to the gap it
// encodes, so "12" can stand for a gap of 12 or a gap of 1 followed by a gap
// of 2. The matcher searches every such interpretation on both sides.
package matcher

import (
	"errors"
	"fmt"
)

// DefaultWindow is the digit look-ahead cap: how many digit characters of a
// run are scanned per consumption step. Runs longer than the window are
// walked in multiple steps, so the window bounds branching, not run length.
// The default mirrors the reference encoder's scan of up to four digits.
const DefaultWindow = 4

// ErrInvalidCharacter reports input outside the [a-z0-9] alphabet.
// It is wrapped with the offending rune and byte offset.
var ErrInvalidCharacter = errors.New("invalid character")

// Matcher is a configured equivalence decision procedure. The zero value is
// not usable; construct with New. A Matcher is stateless between calls and
// safe for concurrent use.
type Matcher struct {
	window int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWindow sets the digit look-ahead window. Values below 1 are clamped
// to 1: a window of zero could never consume a digit run at all.
func WithWindow(n int) Option {
	return func(m *Matcher) {
		if n < 1 {
			n = 1
		}
		m.window = n
	}
}

// New returns a Matcher with the default window, then applies opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{window: DefaultWindow}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Window reports the configured digit look-ahead window.
func (m *Matcher) Window() int { return m.window }

// Equivalent decides with the default configuration. See Matcher.Equivalent.
func Equivalent(left, right string) (bool, error) {
	return New().Equivalent(left, right)
}

// Equivalent reports whether left and right can encode the same letter
// sequence. Both inputs are validated eagerly; a character outside [a-z0-9]
// returns an error wrapping ErrInvalidCharacter and the result false.
// Empty strings are legal and denote the empty sequence.
func (m *Matcher) Equivalent(left, right string) (bool, error) {
	if err := validate(left); err != nil {
		return false, fmt.Errorf("left input: %w", err)
	}
	if err := validate(right); err != nil {
		return false, fmt.Errorf("right input: %w", err)
	}
	s := &search{
		left:   left,
		right:  right,
		window: m.window,
		memo:   make(map[state]bool),
	}
	return s.match(0, 0, 0), nil
}

// validate rejects any byte outside the lowercase-letter and digit alphabet.
// Inputs are pure ASCII by contract, so a byte scan is exact: any multi-byte
// rune fails on its first byte.
func validate(s string) error {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return fmt.Errorf("%w %q at offset %d", ErrInvalidCharacter, rune(s[i]), i)
		}
	}
	return nil
}

func isLetter(c byte) bool { return c >= 'a' && c <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
