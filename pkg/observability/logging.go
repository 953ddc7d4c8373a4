package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/jseval/pkg/domain"
)

// LogHooks logs every dispatch at debug level and failures at warn level.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.DebugContext(ctx, "dispatch",
				"identifier", e.Identifier,
				"mode", e.Mode,
				"script", e.Script,
			)
		},
		OnComplete: func(ctx context.Context, e *domain.DispatchEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "dispatch_failed",
					"mode", e.Mode,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "dispatch_complete", "mode", e.Mode, "duration", e.Duration)
		},
	}
}
