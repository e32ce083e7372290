package domain

import "testing"

func TestDayMappingIdentityOutsideBoundary(t *testing.T) {
	for day := 1; day < 99; day++ {
		if got := ExternalDay(day); got != day {
			t.Fatalf("ExternalDay(%d) = %d", day, got)
		}
		if got := InternalDay(ExternalDay(day)); got != day {
			t.Fatalf("round trip broke for %d: got %d", day, got)
		}
	}
}

func TestDayMappingBoundaryPair(t *testing.T) {
	if got := ExternalDay(100); got != 99 {
		t.Fatalf("ExternalDay(100) = %d, want 99", got)
	}
	if got := InternalDay(99); got != 100 {
		t.Fatalf("InternalDay(99) = %d, want 100", got)
	}
	// The pair maps to each other and only to each other.
	if got := InternalDay(ExternalDay(100)); got != 100 {
		t.Fatalf("boundary round trip = %d, want 100", got)
	}
	if got := ExternalDay(InternalDay(99)); got != 99 {
		t.Fatalf("boundary round trip = %d, want 99", got)
	}
}
