package document

import (
	"sync"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
}

func TestReferenceGeneratorStableUntilReset(t *testing.T) {
	serials := []int{4731, 5120}
	calls := 0
	gen := NewReferenceGenerator("ACCEPT", false,
		WithClock(fixedClock),
		WithSerial(func() int {
			v := serials[calls%len(serials)]
			calls++
			return v
		}),
	)

	first := gen.Value()
	if first != "ACCEPT-2025-4731" {
		t.Fatalf("unexpected reference %q", first)
	}
	for i := 0; i < 5; i++ {
		if got := gen.Value(); got != first {
			t.Fatalf("read %d changed reference: %q != %q", i, got, first)
		}
	}

	next := gen.Reset()
	if next != "ACCEPT-2025-5120" {
		t.Fatalf("unexpected reset reference %q", next)
	}
	if gen.Value() != next {
		t.Fatalf("expected value to follow reset")
	}
}

func TestReferenceGeneratorMonthly(t *testing.T) {
	gen := NewReferenceGenerator("MER", true, WithClock(fixedClock), WithSerial(func() int { return 1000 }))
	if got := gen.Value(); got != "MER-202503-1000" {
		t.Fatalf("unexpected monthly reference %q", got)
	}
}

func TestReferenceGeneratorDefaultMatchesPattern(t *testing.T) {
	for _, prefix := range []string{"NOTICE", "INV-FOC", "PO-FOC"} {
		gen := NewReferenceGenerator(prefix, false)
		ref := gen.Value()
		if !ReferencePattern.MatchString(ref) {
			t.Fatalf("reference %q does not match pattern", ref)
		}
	}
	monthly := NewReferenceGenerator("MER", true).Value()
	if !ReferencePattern.MatchString(monthly) {
		t.Fatalf("reference %q does not match pattern", monthly)
	}
}

func TestReferenceGeneratorSerialOutOfRangeIsClamped(t *testing.T) {
	gen := NewReferenceGenerator("NOTICE", false, WithClock(fixedClock), WithSerial(func() int { return 12 }))
	if got := gen.Value(); !ReferencePattern.MatchString(got) {
		t.Fatalf("reference %q does not match pattern", got)
	}
}

func TestReferenceGeneratorConcurrentReads(t *testing.T) {
	gen := NewReferenceGenerator("ACCEPT", false)
	want := gen.Value()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := gen.Value(); got != want {
				t.Errorf("concurrent read %q != %q", got, want)
			}
		}()
	}
	wg.Wait()
}
