package observability

import (
	"log/slog"

	"github.com/aretw0/scramble/pkg/domain"
)

// LoggingHooks audits lifecycle events with a structured logger.
// Frame-level detail goes to Debug; advances and settles to Info.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransitionStart: func(e *domain.TransitionEvent) {
			logger.Debug("transition_start", "session", e.Session, "to", e.To, "slots", e.Slots)
		},
		OnTransitionSettle: func(e *domain.TransitionEvent) {
			logger.Info("transition_settle", "session", e.Session, "text", e.To, "frames", e.Frames)
		},
		OnTransitionSupersede: func(e *domain.TransitionEvent) {
			logger.Debug("transition_supersede", "session", e.Session, "frames", e.Frames)
		},
		OnAdvance: func(e *domain.AdvanceEvent) {
			logger.Info("advance", "index", e.Index, "name", e.Name, "manual", e.Manual, "wrap", e.Wrap)
		},
		OnFlip: func(e *domain.AdvanceEvent) {
			logger.Debug("flip", "index", e.Index)
		},
	}
}
