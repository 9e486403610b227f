package exports

import (
	"errors"
	"strconv"
	"time"
)

var (
	ErrNotFound     = errors.New("export not found")
	ErrInvalidInput = errors.New("invalid export request")
	ErrForbidden    = errors.New("export belongs to another user")
	// ErrNotArchived means the record exists but its bytes were never stored
	// or have since disappeared from the object store.
	ErrNotArchived = errors.New("export not archived")
)

// Export is the archived record of one generated document.
type Export struct {
	ID          string
	UserID      string
	DocType     string
	Format      string
	FileName    string
	ReferenceNo string
	StorageKey  string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Page is a window over a user's history, newest first.
type Page struct {
	Limit  int
	Offset int
}

// PageFromQuery parses limit and offset query values. Unparseable values
// fall back to the defaults.
func PageFromQuery(limit, offset string) Page {
	p := Page{Limit: DefaultPageSize}
	if n, err := strconv.Atoi(limit); err == nil {
		p.Limit = n
	}
	if n, err := strconv.Atoi(offset); err == nil {
		p.Offset = n
	}
	return p.clamp()
}

func (p Page) clamp() Page {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func newerFirst(a, b Export) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}
