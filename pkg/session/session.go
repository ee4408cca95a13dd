// Package session holds per-user practice state.
//
// A session is process-local and never persisted. It starts when the
// user picks a practice and a script, and from then on is always in
// "prompt ready" state: switching script draws a new prompt for the new
// script in the same transition, and asking for a new character draws a
// new prompt without touching the script.
package session

import (
	"errors"
	"time"

	"github.com/dpetrashka/kanaweb/pkg/kana"
)

// Practice tells which flow the session belongs to and, with that,
// what kind of prompt it carries.
type Practice string

const (
	// Writing practice shows a romaji syllable; the user draws the glyph.
	Writing Practice = "writing"
	// Reading practice shows a kana glyph; the user types the romaji.
	Reading Practice = "reading"
)

var ErrUnknownPractice = errors.New("unknown practice")

// ErrNotFound is returned when no live session matches the given id.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID       string
	Practice Practice
	Mode     kana.Script

	// Prompt is a romaji syllable for writing practice,
	// a kana glyph for reading practice.
	Prompt string

	CreatedAt time.Time
	LastSeen  time.Time
}

// Store manages live sessions.
//
// Every method that returns a Session returns it in "prompt ready"
// state; there is no way to observe a session without a prompt.
type Store interface {
	// New creates a session for the practice and script, with a fresh
	// random prompt. Fails with kana.ErrUnknownScript or
	// ErrUnknownPractice on bad arguments.
	New(practice Practice, mode kana.Script) (Session, error)

	// Get finds a live session. Fails with ErrNotFound when the id is
	// unknown or the session has expired.
	Get(id string) (Session, error)

	// SwitchMode changes the script and draws a new prompt for it in the
	// same transition. The practice kind never changes.
	SwitchMode(id string, mode kana.Script) (Session, error)

	// NewPrompt draws a new prompt for the current script.
	NewPrompt(id string) (Session, error)
}
