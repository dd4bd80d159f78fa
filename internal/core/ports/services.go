package ports

import (
	"context"

	"github.com/samirrijal/refpoint/internal/core/domain"
)

// PositioningService obtains the device's current horizontal position.
// The returned fix may carry an altitude.
type PositioningService interface {
	CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error)
}

// AltitudeSource is an independent altitude fetch that may fail on its own.
type AltitudeSource interface {
	CurrentAltitude(ctx context.Context, opts domain.PositionOptions) (float64, error)
}

// EventPublisher broadcasts session state changes to live map clients.
type EventPublisher interface {
	PublishSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error
}

// NotificationService delivers transient messages (toasts) to a session's UI.
type NotificationService interface {
	Notify(ctx context.Context, sessionID string, notice domain.Notice) error
}
