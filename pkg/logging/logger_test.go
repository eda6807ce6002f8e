package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry %q: %v", line, err)
	}
	return entry
}

func lines(buf *bytes.Buffer) []string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{" info ", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"ERROR", ErrorLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	t.Run("Duration", func(t *testing.T) {
		f := Duration("timeout", 5*time.Second)
		if f.Key != "timeout" || f.Value != "5s" {
			t.Errorf("Duration() = %+v", f)
		}
	})

	t.Run("Error", func(t *testing.T) {
		f := Error(errors.New("test error"))
		if f.Key != "error" || f.Value != "test error" {
			t.Errorf("Error() = %+v", f)
		}
	})

	t.Run("Error_nil", func(t *testing.T) {
		f := Error(nil)
		if f.Key != "error" || f.Value != nil {
			t.Errorf("Error(nil) = %+v", f)
		}
	})

	t.Run("Helpers", func(t *testing.T) {
		fields := []Field{Scenario(3), Repeat(1), Algorithm("SARSA"), Nodes(250), RunID("abc")}
		want := []string{"scenario", "repeat", "algorithm", "nodes", "run_id"}
		for i, f := range fields {
			if f.Key != want[i] {
				t.Errorf("field %d key = %v, want %v", i, f.Key, want[i])
			}
		}
	})
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("test message", String("key", "value"))

	entry := decode(t, buf.String())
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["message"] != "test message" {
		t.Errorf("message = %v, want 'test message'", entry["message"])
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want 'value'", entry["key"])
	}
	if entry["time"] == nil {
		t.Error("time field is missing")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	got := lines(&buf)
	if len(got) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(got))
	}
	if lvl := decode(t, got[0])["level"]; lvl != "warn" {
		t.Errorf("First entry level = %v, want warn", lvl)
	}
	if lvl := decode(t, got[1])["level"]; lvl != "error" {
		t.Errorf("Second entry level = %v, want error", lvl)
	}
}

func TestJSONLogger_FieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("trial",
		String("str", "hello"),
		Int("num", 42),
		Float64("cost", 1.5),
		Bool("found", true),
		Any("path", []int{1, 2, 3}),
	)

	entry := decode(t, buf.String())
	if entry["str"] != "hello" {
		t.Errorf("str = %v", entry["str"])
	}
	if entry["num"] != float64(42) {
		t.Errorf("num = %v", entry["num"])
	}
	if entry["cost"] != 1.5 {
		t.Errorf("cost = %v", entry["cost"])
	}
	if entry["found"] != true {
		t.Errorf("found = %v", entry["found"])
	}
	if path, ok := entry["path"].([]any); !ok || len(path) != 3 {
		t.Errorf("path = %v", entry["path"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("experiment"), Scenario(4))
	child.Info("trial done", Algorithm("Dijkstra"))

	entry := decode(t, buf.String())
	if entry["component"] != "experiment" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["scenario"] != float64(4) {
		t.Errorf("scenario = %v", entry["scenario"])
	}
	if entry["algorithm"] != "Dijkstra" {
		t.Errorf("algorithm = %v", entry["algorithm"])
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)
	child := logger.With(Component("routing"))

	logger.SetLevel(ErrorLevel)
	if child.GetLevel() != ErrorLevel {
		t.Errorf("child level = %v, want ErrorLevel", child.GetLevel())
	}

	logger.Info("info")
	child.Warn("warn")
	if buf.Len() != 0 {
		t.Error("Expected no output below ErrorLevel")
	}

	child.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, InfoLevel, FormatConsole)

	logger.Info("scenario done", Scenario(2))

	out := buf.String()
	if !strings.Contains(out, "scenario done") || !strings.Contains(out, "scenario=2") {
		t.Errorf("console output = %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output should not be JSON: %q", out)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "experiment finished", RunID("r1"))
	timer.End(Count(7))
	timer.EndError(errors.New("sink closed"))

	got := lines(&buf)
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	done := decode(t, got[0])
	if done["run_id"] != "r1" || done["count"] != float64(7) || done["latency"] == nil {
		t.Errorf("End entry = %v", done)
	}
	failed := decode(t, got[1])
	if failed["level"] != "error" || failed["error"] != "sink closed" {
		t.Errorf("EndError entry = %v", failed)
	}
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewJSONLogger(&buf, InfoLevel))
	t.Cleanup(func() { SetDefaultLogger(nil) })

	DefaultLogger().Info("hello")
	if decode(t, buf.String())["message"] != "hello" {
		t.Errorf("default logger output = %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.With(String("k", "v")).Error("ignored")
	if l.GetLevel() != InfoLevel {
		t.Errorf("NopLogger level = %v", l.GetLevel())
	}
}

func BenchmarkJSONLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			String("key1", "value1"),
			Int("key2", 42),
		)
	}
}
