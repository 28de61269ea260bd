package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New returns a text logger writing to w at level. When redactor is nil a
// fresh one with the default patterns is used.
func New(w io.Writer, level slog.Level, redactor *Redactor) *slog.Logger {
	if redactor == nil {
		redactor = NewRedactor()
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(inner, redactor))
}

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: want debug, info, warn or error", name)
	}
	return level, nil
}
