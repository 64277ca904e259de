package stage

import (
	"context"
	"log/slog"
)

// Handler describes the contract the pipeline needs from each stage.
type Handler interface {
	Prepare(context.Context, *Job) error
	Execute(context.Context, *Job) error
	HealthCheck(context.Context) Health
}

// LoggerAware handlers receive the stage-scoped logger before Prepare.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
