package log

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// location resolves to a string when logged.
type location struct{ line, col int }

func (l location) LogValue() slog.Value {
	return slog.StringValue(fmt.Sprintf("%d:%d", l.line, l.col))
}

// prettyLogger writes pretty output to a buffer. A buffer is not a terminal,
// so no escape sequences are emitted.
func prettyLogger(format Format, opts ...Option) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	opts = append([]Option{
		WithFormat(format),
		WithTimeLayout("none"),
		WithLevel(LevelTrace),
	}, opts...)

	return Make(&buf, opts...), &buf
}

func TestPretty_Text(t *testing.T) {
	logger, buf := prettyLogger(FormatText)

	logger.Info("parsed",
		slog.String("input", "1 + 2"),
		slog.Int("tokens", 3),
		slog.Bool("ok", true),
		slog.Float64("value", 3.5),
	)

	want := "level=INFO msg=parsed input=1 + 2 tokens=3 ok=true value=3.5\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_JSON(t *testing.T) {
	logger, buf := prettyLogger(FormatJSON)

	logger.Warn("slow", slog.Int("ms", 12))

	want := "{\n  \"level\": \"WARN\",\n  \"msg\": \"slow\",\n  \"ms\": 12\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_TraceLevel(t *testing.T) {
	logger, buf := prettyLogger(FormatText)

	logger.Trace("apply")

	if got, want := buf.String(), "level=TRACE msg=apply\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPretty_Groups(t *testing.T) {
	logger, buf := prettyLogger(FormatText)

	grouped := Logger{
		config: logger.config,
		Logger: logger.WithGroup("parse").With(slog.String("lang", "arith")),
	}

	grouped.Info("done",
		slog.Group("span", slog.Int("start", 2), slog.Int("end", 5)),
		slog.Group("empty"),
	)

	want := "level=INFO msg=done parse.lang=arith parse.span.start=2 parse.span.end=5\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPretty_WithAttrs(t *testing.T) {
	logger, buf := prettyLogger(FormatText)

	derived := logger.With(slog.String("source", "stdin"))
	derived.Debug("one")
	logger.Debug("two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}

	if !strings.HasSuffix(lines[0], "source=stdin") {
		t.Errorf("derived logger lost its attributes: %q", lines[0])
	}
	if strings.Contains(lines[1], "source=") {
		t.Errorf("base logger gained attributes: %q", lines[1])
	}
}

func TestPretty_Values(t *testing.T) {
	logger, buf := prettyLogger(FormatText)

	logger.Error("failed",
		slog.Any("at", location{1, 4}),
		slog.Any("error", errors.New("expected operand")),
		slog.Any("node", nil),
		slog.String("snippet", "1 | 2 +\n  |    ^"),
	)

	got := buf.String()

	for _, want := range []string{
		"at=1:4",
		"error=expected operand",
		"node=null",
		`snippet="1 | 2 +\n  |    ^"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %q", want, got)
		}
	}

	if strings.Count(got, "\n") != 1 {
		t.Errorf("record spans multiple lines: %q", got)
	}
}

func TestPretty_Filtering(t *testing.T) {
	logger, buf := prettyLogger(FormatText, WithLevel(LevelWarn))

	logger.Info("hidden")
	logger.Trace("hidden")

	if buf.Len() > 0 {
		t.Errorf("records below the level were written: %q", buf.String())
	}
}

func TestPretty_Caller(t *testing.T) {
	logger, buf := prettyLogger(FormatText, WithCaller(true))

	logger.Info("here")

	if !strings.Contains(buf.String(), "source=") ||
		!strings.Contains(buf.String(), "pretty_test.go:") {
		t.Errorf("expected source attribute, got %q", buf.String())
	}
}
