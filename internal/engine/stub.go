package engine

import (
	"context"
	"log/slog"
)

// StubEngine stands in when ffmpeg is not installed. Every job fails with a
// clear reason instead of the server refusing to start.
type StubEngine struct {
	logger *slog.Logger
}

func NewStubEngine(logger *slog.Logger) *StubEngine {
	return &StubEngine{logger: logger}
}

func (e *StubEngine) Split(ctx context.Context, req Request, cb Callbacks) {
	e.logger.Warn("split engine stub: ffmpeg unavailable", "source", req.SourcePath)
	cb.OnError("split engine unavailable: ffmpeg not found on this host")
}
