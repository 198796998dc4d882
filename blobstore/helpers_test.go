package blobstore

import (
	"io"
	"log/slog"
)

func slogTextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}
