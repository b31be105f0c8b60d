package runner

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	res, err := Run(context.Background(), Spec{
		Command:  "echo",
		Args:     []string{"hello"},
		Deadline: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello")
	}
}

func TestRunNonZeroExit(t *testing.T) {
	res, err := Run(context.Background(), Spec{
		Command:  "sh",
		Args:     []string{"-c", "exit 3"},
		Deadline: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestRunDeadlineExceeded(t *testing.T) {
	res, err := Run(context.Background(), Spec{
		Command:  "sleep",
		Args:     []string{"10"},
		Deadline: 100 * time.Millisecond,
	})
	if err != ErrDeadlineExceeded {
		t.Fatalf("expected ErrDeadlineExceeded, got %v", err)
	}
	if !res.DeadlineHit {
		t.Error("expected DeadlineHit = true")
	}
}

func TestCappedBufferTruncates(t *testing.T) {
	buf := newCappedBuffer(8)
	_, _ = buf.Write([]byte("0123456789ABCDEF"))
	if !buf.truncated {
		t.Error("expected truncated = true")
	}
	if !strings.Contains(buf.String(), "[truncated]") {
		t.Errorf("expected truncation marker, got %q", buf.String())
	}
}
