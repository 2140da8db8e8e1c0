package genesis

import (
	"log/slog"
	"os"

	"github.com/olympusrt/olympus/logger"
)

// slogLogger adapts log/slog to logger.Logger so the core packages stay
// logging-framework agnostic (they only ever see Println) while the
// assembled binary gets leveled, structured output, matching how
// amp-labs/amp-common wires slog at its own process boundary.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Println(msg string) {
	s.l.Info(msg)
}

// wireLogging installs the default slog-backed logger.Logger. Ignite calls
// it every time it runs, so each call replaces the package-level logger
// with an equivalent stderr handler.
func wireLogging() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger.WithLogger(slogLogger{l: slog.New(handler)})
}
