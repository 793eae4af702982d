package term

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerColorOff(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Color: false}
	l.Info("hello %s", "world")
	out := buf.String()
	if !strings.Contains(out, "[INF] hello world") {
		t.Fatalf("got %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("expected no ANSI codes, got %q", out)
	}
}

func TestLoggerColorOn(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Color: true}
	l.Err("boom")
	out := buf.String()
	if !strings.Contains(out, Red) || !strings.Contains(out, NoColor) {
		t.Fatalf("expected ANSI wrapping, got %q", out)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Color: false}
	l.Warn("w")
	l.Success("s")
	out := buf.String()
	if !strings.Contains(out, "[WAR]") || !strings.Contains(out, "[SUC]") {
		t.Fatalf("got %q", out)
	}
}
