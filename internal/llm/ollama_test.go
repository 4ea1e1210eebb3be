package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chronicled/codewormd/internal/llmerr"
)

func TestClassifyConnectionRefused(t *testing.T) {
	err := classify(context.Background(), errors.New(`Post "http://127.0.0.1:11434/api/generate": dial tcp: connection refused`))
	if !llmerr.Is(err, llmerr.Connection) {
		t.Fatalf("expected Connection kind, got: %v", err)
	}
}

func TestClassifyOutOfMemory(t *testing.T) {
	err := classify(context.Background(), errors.New("model requires more system memory (cuda out of memory)"))
	if !llmerr.Is(err, llmerr.ModelOOM) {
		t.Fatalf("expected ModelOOM kind, got: %v", err)
	}
}

func TestClassifyDeadlineExceededContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	err := classify(ctx, errors.New("some transport error"))
	if !llmerr.Is(err, llmerr.Timeout) {
		t.Fatalf("expected Timeout kind when context deadline exceeded, got: %v", err)
	}
}

func TestClassifyUnknownDefaultsToConnection(t *testing.T) {
	err := classify(context.Background(), errors.New("something unexpected happened"))
	if !llmerr.Is(err, llmerr.Connection) {
		t.Fatalf("expected default classification to be Connection, got: %v", err)
	}
}

func TestKeepAliveDurationParsesValid(t *testing.T) {
	d := keepAliveDuration("5m")
	if d == nil || d.Duration != 5*time.Minute {
		t.Fatalf("expected parsed 5m duration, got: %v", d)
	}
}

func TestKeepAliveDurationBlankIsNil(t *testing.T) {
	if d := keepAliveDuration(""); d != nil {
		t.Fatalf("expected nil for blank keep-alive, got: %v", d)
	}
}

func TestKeepAliveDurationInvalidIsNil(t *testing.T) {
	if d := keepAliveDuration("not-a-duration"); d != nil {
		t.Fatalf("expected nil for unparsable keep-alive, got: %v", d)
	}
}
