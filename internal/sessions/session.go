package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"docforms-backend/internal/document"
	"docforms-backend/internal/forms"
)

// DefaultTTL bounds how long an idle form session keeps its reference number.
const DefaultTTL = 24 * time.Hour

var (
	ErrNotFound     = errors.New("form session not found")
	ErrForbidden    = errors.New("form session belongs to another user")
	ErrTypeMismatch = errors.New("form session is for a different document type")
)

// Session is the client-visible state of one open form.
type Session struct {
	ID          string    `json:"sessionId"`
	Type        string    `json:"type"`
	ReferenceNo string    `json:"referenceNo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type entry struct {
	session Session
	userID  string
	ref     *document.ReferenceGenerator
}

// Store keeps form sessions in memory. Each session owns one reference
// generator, so its number is stable until Reset.
type Store struct {
	Registry *forms.Registry
	TTL      time.Duration
	Now      func() time.Time
	// Serial overrides the four-digit reference serial; nil means random.
	Serial func() int

	mu    sync.Mutex
	items map[string]*entry
}

// NewStore returns an empty store backed by registry.
func NewStore(registry *forms.Registry) *Store {
	return &Store{Registry: registry, TTL: DefaultTTL, Now: time.Now, items: make(map[string]*entry)}
}

// Create opens a session for docType owned by userID.
func (s *Store) Create(ctx context.Context, userID, docType string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	def, err := s.Registry.Get(docType)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	e := &entry{
		userID: userID,
		session: Session{
			ID:        uuid.NewString(),
			Type:      def.Type,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl()),
		},
	}
	if def.RequiresReference() {
		e.ref = document.NewReferenceGenerator(def.Reference.Prefix, def.Reference.Monthly,
			document.WithClock(s.now), document.WithSerial(s.Serial))
		e.session.ReferenceNo = e.ref.Value()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.items == nil {
		s.items = make(map[string]*entry)
	}
	s.sweepLocked(now)
	s.items[e.session.ID] = e
	return e.session, nil
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(ctx context.Context, userID, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookupLocked(userID, id)
	if err != nil {
		return Session{}, err
	}
	return e.session, nil
}

// Reset discards the reference number and issues a new one.
func (s *Store) Reset(ctx context.Context, userID, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookupLocked(userID, id)
	if err != nil {
		return Session{}, err
	}
	if e.ref != nil {
		e.session.ReferenceNo = e.ref.Reset()
	}
	return e.session, nil
}

// Reference returns the session's reference number for an export of docType.
func (s *Store) Reference(ctx context.Context, userID, id, docType string) (string, error) {
	session, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if session.Type != docType {
		return "", ErrTypeMismatch
	}
	return session.ReferenceNo, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.items)
}

func (s *Store) lookupLocked(userID, id string) (*entry, error) {
	now := s.now()
	e, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !now.Before(e.session.ExpiresAt) {
		delete(s.items, id)
		return nil, ErrNotFound
	}
	if e.userID != userID {
		return nil, ErrForbidden
	}
	e.session.ExpiresAt = now.Add(s.ttl())
	return e, nil
}

func (s *Store) sweepLocked(now time.Time) {
	for id, e := range s.items {
		if !now.Before(e.session.ExpiresAt) {
			delete(s.items, id)
		}
	}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}
