package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// WithLogger attaches logger to ctx. Debug output is emitted at V(1).
func WithLogger(ctx context.Context, logger logr.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logr.NewContext(ctx, logger)
}

func Logger(ctx context.Context) logr.Logger {
	if ctx == nil {
		return logr.Discard()
	}
	return logr.FromContextOrDiscard(ctx)
}

func Enabled(ctx context.Context) bool {
	return Logger(ctx).V(1).Enabled()
}

// NewWriterLogger returns a logger that prints "debug: ..." lines to writer.
// When enabled is false the logger only passes V(0) messages.
func NewWriterLogger(writer io.Writer, enabled bool) logr.Logger {
	if writer == nil {
		return logr.Discard()
	}

	verbosity := 0
	if enabled {
		verbosity = 1
	}

	return funcr.New(func(prefix, args string) {
		line := strings.TrimSpace(strings.TrimSpace(prefix + " " + args))
		if line == "" {
			return
		}
		_, _ = fmt.Fprintf(writer, "debug: %s\n", line)
	}, funcr.Options{Verbosity: verbosity})
}

func Printf(ctx context.Context, format string, args ...any) {
	logger := Logger(ctx).V(1)
	if !logger.Enabled() {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	logger.Info(message)
}
