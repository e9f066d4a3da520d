package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBuffered(t *testing.T, level, format string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: level, Format: format, Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not a JSON record: %v\n%s", err, buf.String())
	}
	return entry
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() accepted an unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() accepted an unknown format")
	}
	if _, err := New(Config{}); err != nil {
		t.Errorf("New() with zero config: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"Error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": "json", "JSON": "json", "text": "text", "console": "text"} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("logfmt"); err == nil {
		t.Error("ParseFormat accepted logfmt")
	}
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBuffered(t, "debug", "json")

	tests := []struct {
		level string
		log   func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("loaded property source", "name", "install")
			entry := decode(t, buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["name"] != "install" {
				t.Errorf("name = %v", entry["name"])
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBuffered(t, "warn", "json")

	l.Debug("skipping optional property source")
	l.Info("configuration finalized")
	if buf.Len() != 0 {
		t.Fatalf("records below warn were written: %s", buf.String())
	}

	l.Warn("unresolved placeholders in merged properties")
	if buf.Len() == 0 {
		t.Error("warn record was filtered")
	}
}

func TestLogger_LevelIsPerLogger(t *testing.T) {
	quiet, quietBuf := newBuffered(t, "error", "json")
	_, _ = newBuffered(t, "debug", "json")

	quiet.Info("should stay filtered")
	if quietBuf.Len() != 0 {
		t.Error("creating a second logger changed the first one's level")
	}
}

func TestLogger_With(t *testing.T) {
	l, buf := newBuffered(t, "info", "json")

	l.With("source", "security").Info("loaded property source", "keys", 3)

	entry := decode(t, buf)
	if entry["source"] != "security" {
		t.Errorf("source = %v", entry["source"])
	}
	if entry["keys"] != float64(3) {
		t.Errorf("keys = %v", entry["keys"])
	}
}

func TestLogger_RedactsSensitiveAttrs(t *testing.T) {
	l, buf := newBuffered(t, "info", "json")

	l.Info("merged", "db.password", "hunter2-and-more", "db.url", "jdbc:hsqldb:mem:modi")

	out := buf.String()
	if strings.Contains(out, "hunter2-and-more") {
		t.Errorf("password leaked: %s", out)
	}
	if !strings.Contains(out, "jdbc:hsqldb:mem:modi") {
		t.Errorf("non-sensitive value was redacted: %s", out)
	}
}

func TestLogger_WithContext(t *testing.T) {
	l, buf := newBuffered(t, "info", "json")

	ctx := WithBootID(context.Background(), "01JBOOT")
	l.WithContext(ctx).Info("early context ready")

	if got := decode(t, buf)["boot_id"]; got != "01JBOOT" {
		t.Errorf("boot_id = %v, want 01JBOOT", got)
	}

	buf.Reset()
	l.Info("no context")
	if _, ok := decode(t, buf)["boot_id"]; ok {
		t.Error("boot_id added without a context")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	l, buf := newBuffered(t, "info", "text")

	l.Info("loading component", "name", "web")

	out := buf.String()
	if !strings.Contains(out, `msg="loading component"`) || !strings.Contains(out, "name=web") {
		t.Errorf("unexpected text record: %s", out)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Output == nil {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestDefault_PackageFunctions(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, buf := newBuffered(t, "debug", "json")
	SetDefault(l)

	for name, log := range map[string]func(string, ...any){
		"Debug": Debug, "Info": Info, "Warn": Warn, "Error": Error,
	} {
		buf.Reset()
		log("package level")
		if buf.Len() == 0 {
			t.Errorf("%s() wrote nothing", name)
		}
	}
}

type foreign struct{ Logger }

func TestSetDefault_IgnoresForeignLoggers(t *testing.T) {
	prev := Default()
	SetDefault(foreign{})
	if Default() != prev {
		t.Error("SetDefault replaced the default with a foreign logger")
	}
}

func TestSlog(t *testing.T) {
	l, buf := newBuffered(t, "info", "json")

	Slog(l).Info("via slog", "password", "s3cret")
	if buf.Len() == 0 {
		t.Fatal("Slog() should share the logger's handler")
	}
	if strings.Contains(buf.String(), "s3cret") {
		t.Error("Slog() bypassed redaction")
	}

	if Slog(nil) == nil {
		t.Error("Slog(nil) should fall back to slog.Default()")
	}
}
