package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInit_FirstCallWins(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first, Service: "servicecrm"})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Msg("hello")
	if second.Len() != 0 {
		t.Fatal("second Init should have been ignored")
	}

	var line map[string]any
	if err := json.Unmarshal(first.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", first.String(), err)
	}
	if line["service"] != "servicecrm" || line["message"] != "hello" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestInit_RespectsLevel(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var buf bytes.Buffer
	Init(Options{Level: "warn", Output: &buf})
	log := Get()
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %q", buf.String())
	}
}

func TestComponent(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	log := Component("recompute")
	log.Info().Msg("tick")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if line["component"] != "recompute" {
		t.Errorf("expected component field, got %v", line)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Get()
}
