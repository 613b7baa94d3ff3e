package monitoring

import (
	"fmt"
	"testing"
)

// capture redirects Logf for the duration of the test.
func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })

	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("Processing '%s'...", "Records.json")
	if len(*lines) != 1 || (*lines)[0] != "Processing 'Records.json'..." {
		t.Errorf("got %q", *lines)
	}

	SetLogger(nil)
	Logf("muted")
	if len(*lines) != 1 {
		t.Errorf("nil logger should mute output, got %q", *lines)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
}

func TestVerbosef(t *testing.T) {
	lines := capture(t)

	Verbosef(false, "Low accuracy: %d", 2000)
	if len(*lines) != 0 {
		t.Errorf("Verbosef(false) logged %q", *lines)
	}
	Verbosef(true, "Low accuracy: %d", 2000)
	if len(*lines) != 1 || (*lines)[0] != "Low accuracy: 2000" {
		t.Errorf("Verbosef(true) logged %q", *lines)
	}
}
