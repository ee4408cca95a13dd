package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dpetrashka/kanaweb/pkg/kana"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	rng      *rand.Rand
	now      func() time.Time
}

var _ Store = &memoryStore{}

type Option func(*memoryStore)

// WithRand fixes the random source. For tests.
func WithRand(r *rand.Rand) Option {
	return func(s *memoryStore) { s.rng = r }
}

// WithClock fixes the clock. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *memoryStore) { s.now = now }
}

// NewStore returns an in-memory Store.
//
// Sessions untouched for longer than ttl are discarded; ttl <= 0 means
// sessions never expire.
func NewStore(ttl time.Duration, opts ...Option) Store {
	s := &memoryStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// drawPrompt runs under s.mu (the rand source is not safe for
// concurrent use).
func (s *memoryStore) drawPrompt(practice Practice, mode kana.Script) (string, error) {
	switch practice {
	case Writing:
		syllable, err := kana.RandomSyllable(mode, s.rng)
		return string(syllable), err
	case Reading:
		glyph, err := kana.RandomGlyph(mode, s.rng)
		return string(glyph), err
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownPractice, practice)
	}
}

func (s *memoryStore) New(practice Practice, mode kana.Script) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt, err := s.drawPrompt(practice, mode)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		Practice:  practice,
		Mode:      mode,
		Prompt:    prompt,
		CreatedAt: now,
		LastSeen:  now,
	}
	s.sessions[sess.ID] = sess
	s.sweep(now)
	return *sess, nil
}

// find runs under s.mu. Expired sessions count as missing.
func (s *memoryStore) find(id string, now time.Time) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && now.Sub(sess.LastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	sess.LastSeen = now
	return sess, nil
}

func (s *memoryStore) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *memoryStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.find(id, s.now())
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

func (s *memoryStore) SwitchMode(id string, mode kana.Script) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.find(id, s.now())
	if err != nil {
		return Session{}, err
	}
	prompt, err := s.drawPrompt(sess.Practice, mode)
	if err != nil {
		return Session{}, err
	}
	sess.Mode = mode
	sess.Prompt = prompt
	return *sess, nil
}

func (s *memoryStore) NewPrompt(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.find(id, s.now())
	if err != nil {
		return Session{}, err
	}
	prompt, err := s.drawPrompt(sess.Practice, sess.Mode)
	if err != nil {
		return Session{}, err
	}
	sess.Prompt = prompt
	return *sess, nil
}
