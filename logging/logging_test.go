package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_LogfmtForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Info("high score saved", "score", 7)

	out := buf.String()
	if !strings.Contains(out, `msg="high score saved"`) {
		t.Errorf("Expected logfmt message, got %q", out)
	}
	if !strings.Contains(out, "score=7") {
		t.Errorf("Expected score field, got %q", out)
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var quiet, verbose bytes.Buffer

	New(&quiet, false).Debug("tick", "timer", 2)
	New(&verbose, true).Debug("tick", "timer", 2)

	if quiet.Len() != 0 {
		t.Errorf("Expected debug record to be filtered, got %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "timer=2") {
		t.Errorf("Expected debug record with debug enabled, got %q", verbose.String())
	}
}

func TestNew_ChildContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false).New("component", "session")

	logger.Warn("store unavailable")

	if !strings.Contains(buf.String(), "component=session") {
		t.Errorf("Expected inherited context, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic
	Discard().Error("dropped", "err", "boom")
}
