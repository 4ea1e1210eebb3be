package notifier

import "testing"

func TestNewWithBlankTokenIsDisabled(t *testing.T) {
	n, err := New("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Enabled() {
		t.Fatal("expected a blank-token notifier to be disabled")
	}
}

func TestSendOnDisabledNotifierIsNoop(t *testing.T) {
	n, err := New("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Send("alert"); err != nil {
		t.Fatalf("expected Send on a disabled notifier to return nil, got %v", err)
	}
}
