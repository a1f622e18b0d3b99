package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
)

// Close closes the closer and logs the error instead of dropping it.
// Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("failed to close", slog.Any("error", err))
	}
}

// Write writes data and logs the error instead of dropping it.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("failed to write", slog.Any("error", err))
	}
}
