package document

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
	"time"
)

// ReferencePattern matches PREFIX-YYYY-NNNN and the monthly PREFIX-YYYYMM-NNNN form.
var ReferencePattern = regexp.MustCompile(`^[A-Z]+(?:-[A-Z]+)*-\d{4}(?:\d{2})?-\d{4}$`)

// ReferenceGenerator issues one reference number per form session.
// Value is stable until Reset.
type ReferenceGenerator struct {
	mu      sync.Mutex
	prefix  string
	monthly bool
	now     func() time.Time
	serial  func() int
	value   string
}

// ReferenceOption customizes a ReferenceGenerator.
type ReferenceOption func(*ReferenceGenerator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ReferenceOption {
	return func(g *ReferenceGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSerial overrides the four-digit serial source.
func WithSerial(serial func() int) ReferenceOption {
	return func(g *ReferenceGenerator) {
		if serial != nil {
			g.serial = serial
		}
	}
}

// NewReferenceGenerator builds a generator for prefix. Monthly generators include the month.
func NewReferenceGenerator(prefix string, monthly bool, opts ...ReferenceOption) *ReferenceGenerator {
	g := &ReferenceGenerator{
		prefix:  prefix,
		monthly: monthly,
		now:     time.Now,
		serial:  randomSerial,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Value returns the current reference number, generating it on first use.
func (g *ReferenceGenerator) Value() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.value == "" {
		g.value = g.next()
	}
	return g.value
}

// Reset discards the current value and returns a fresh one.
func (g *ReferenceGenerator) Reset() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = g.next()
	return g.value
}

// Prefix returns the configured prefix.
func (g *ReferenceGenerator) Prefix() string {
	return g.prefix
}

func (g *ReferenceGenerator) next() string {
	now := g.now()
	serial := g.serial()
	if serial < 1000 || serial > 9999 {
		serial = 1000 + (abs(serial) % 9000)
	}
	if g.monthly {
		return fmt.Sprintf("%s-%04d%02d-%04d", g.prefix, now.Year(), int(now.Month()), serial)
	}
	return fmt.Sprintf("%s-%04d-%04d", g.prefix, now.Year(), serial)
}

func randomSerial() int {
	return 1000 + rand.IntN(9000)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
