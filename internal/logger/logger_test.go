package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

// bufferLogger returns a Logger writing into buf instead of stderr.
func bufferLogger(module, level string, buf *bytes.Buffer) *Logger {
	l := New(module, level)
	l.out = log.New(buf, "", 0)
	return l
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo}, // default
		{"", LevelInfo},        // default
	}
	for _, c := range cases {
		if got := parseLevel(c.input); got != c.want {
			t.Errorf("parseLevel(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestNew_ModuleUppercased(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger("detect", "info", &buf)
	l.Info("layer_skip", "msg")
	if !strings.Contains(buf.String(), "DETECT") {
		t.Errorf("expected module 'DETECT' in output, got: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		name     string
		minLevel string
		emit     func(l *Logger)
		wantOut  bool
	}{
		{"debug suppressed at info", "info", func(l *Logger) { l.Debug("a", "m") }, false},
		{"info passes at info", "info", func(l *Logger) { l.Info("a", "m") }, true},
		{"warn passes at info", "info", func(l *Logger) { l.Warn("a", "m") }, true},
		{"info suppressed at warn", "warn", func(l *Logger) { l.Info("a", "m") }, false},
		{"error passes at warn", "warn", func(l *Logger) { l.Error("a", "m") }, true},
		{"debug passes at debug", "debug", func(l *Logger) { l.Debug("a", "m") }, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := bufferLogger("ENGINE", c.minLevel, &buf)
			c.emit(l)
			if got := buf.Len() > 0; got != c.wantOut {
				t.Errorf("output present = %v, want %v (got: %s)", got, c.wantOut, buf.String())
			}
		})
	}
}

func TestSetLevel_ChangesFilter(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger("ENGINE", "error", &buf)

	l.Info("pseudonymize", "should be hidden")
	if buf.Len() > 0 {
		t.Errorf("info suppressed at error level, got: %s", buf.String())
	}

	l.SetLevel("debug")
	l.Info("pseudonymize", "should appear now")
	if !strings.Contains(buf.String(), "should appear now") {
		t.Errorf("info should appear after SetLevel(debug), got: %s", buf.String())
	}
}

func TestFormattedMethods(t *testing.T) {
	cases := []struct {
		name string
		fn   func(l *Logger)
	}{
		{"Debugf", func(l *Logger) { l.Debugf("a", "val=%d", 42) }},
		{"Infof", func(l *Logger) { l.Infof("a", "val=%d", 42) }},
		{"Warnf", func(l *Logger) { l.Warnf("a", "val=%d", 42) }},
		{"Errorf", func(l *Logger) { l.Errorf("a", "val=%d", 42) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := bufferLogger("ENGINE", "debug", &buf)
			c.fn(l)
			if !strings.Contains(buf.String(), "val=42") {
				t.Errorf("%s: expected formatted value in output, got: %s", c.name, buf.String())
			}
		})
	}
}

func TestWithSession_TagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger("ENGINE", "debug", &buf)

	l.WithSession("sess-42").Error("reverse_failed", "token NOMBRE_DEADBEEF unresolved")
	out := buf.String()
	if !strings.Contains(out, "[sess-42]") {
		t.Errorf("expected session tag in output, got: %s", out)
	}
	if !strings.Contains(out, "NOMBRE_DEADBEEF") {
		t.Errorf("expected message in output, got: %s", out)
	}
}

func TestWithSession_DoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger("ENGINE", "debug", &buf)

	_ = l.WithSession("sess-42")
	l.Info("pseudonymize", "untagged line")
	if strings.Contains(buf.String(), "sess-42") {
		t.Errorf("parent logger must stay untagged, got: %s", buf.String())
	}
}

func TestOutputFormat_ContainsExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	l := bufferLogger("CONSENT", "debug", &buf)
	l.Info("gate_reject", "the message")

	out := buf.String()
	for _, expected := range []string{"CONSENT", "gate_reject", "the message", "INFO"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in log output, got: %s", expected, out)
		}
	}
}
