package logger

import "testing"

func TestNewAcceptsKnownLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(lvl); err != nil {
			t.Errorf("New(%q): %v", lvl, err)
		}
	}
}

func TestNewFallsBackOnUnknownLevel(t *testing.T) {
	log, err := New("chatty")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// The fallback logger must be usable.
	log.InfoObj("hello", "test_event", map[string]any{"k": "v"})
}

func TestNopLoggerIsSilent(t *testing.T) {
	var log Logger = NopLogger{}
	log.DebugObj("a", "b", nil)
	log.InfoObj("a", "b", nil)
	log.WarnObj("a", "b", nil)
	log.ErrorObj("a", "b", nil)
}
