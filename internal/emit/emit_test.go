package emit

import "testing"

func TestZeroLocalIsInvalidSentinel(t *testing.T) {
	var zero Local
	if zero.Valid() {
		t.Fatalf("expected the zero Local to be invalid")
	}
	if got := NewLocal(3).Valid(); !got {
		t.Fatalf("expected a non-zero-id Local to be valid")
	}
}

func TestZeroLabelIsInvalidSentinel(t *testing.T) {
	var zero Label
	if zero.Valid() {
		t.Fatalf("expected the zero Label to be invalid")
	}
	if got := NewLabel(1).Valid(); !got {
		t.Fatalf("expected a non-zero-id Label to be valid")
	}
}

func TestHandleIDsRoundTrip(t *testing.T) {
	if got := NewLocal(7).ID(); got != 7 {
		t.Fatalf("expected Local.ID() to round-trip, got %d", got)
	}
	if got := NewLabel(9).ID(); got != 9 {
		t.Fatalf("expected Label.ID() to round-trip, got %d", got)
	}
	if got := NewField(2).ID(); got != 2 {
		t.Fatalf("expected Field.ID() to round-trip, got %d", got)
	}
	if got := NewMethod(5).ID(); got != 5 {
		t.Fatalf("expected Method.ID() to round-trip, got %d", got)
	}
}
