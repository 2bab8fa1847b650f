package refresh

import "testing"

func TestRaiseCoalesces(t *testing.T) {
	s := New()
	s.Raise()
	s.Raise()
	s.Raise()

	if !s.Pending() {
		t.Fatal("expected a pending notification")
	}
	if s.Pending() {
		t.Fatal("expected the notification to be consumed by the first Pending call")
	}
}

func TestPendingFalseWhenUntouched(t *testing.T) {
	s := New()
	if s.Pending() {
		t.Fatal("expected no pending notification on a fresh Signal")
	}
}
