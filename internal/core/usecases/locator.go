package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/ports"
)

var tracer = otel.Tracer("github.com/samirrijal/refpoint/internal/core/usecases")

// Locator acquires the current position, joining the horizontal fix with an
// independent altitude fetch. Only the horizontal fix is required.
type Locator struct {
	position ports.PositioningService
	altitude ports.AltitudeSource
}

// NewLocator creates a Locator. altitude may be nil, in which case only the
// altitude carried by the fix itself is used.
func NewLocator(position ports.PositioningService, altitude ports.AltitudeSource) *Locator {
	return &Locator{position: position, altitude: altitude}
}

// Acquire runs both fetches concurrently under opts.Timeout. A failed or
// timed-out altitude fetch degrades to an unknown altitude; a failed fix
// returns ErrPositioningUnavailable.
func (l *Locator) Acquire(ctx context.Context, opts domain.PositionOptions) (*domain.Acquisition, error) {
	ctx, span := tracer.Start(ctx, "Locator.Acquire")
	defer span.End()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		fix      *domain.Fix
		altitude *float64
		altErr   error
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		f, err := l.position.CurrentPosition(gctx, opts)
		if err != nil {
			return err
		}
		if f == nil {
			return errors.New("positioning returned no fix")
		}
		fix = f
		return nil
	})
	if opts.Altitude && l.altitude != nil {
		eg.Go(func() error {
			v, err := l.altitude.CurrentAltitude(gctx, opts)
			if err != nil {
				altErr = err
				return nil
			}
			altitude = &v
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "positioning failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrPositioningUnavailable, err)
	}

	if altErr != nil {
		slog.DebugContext(ctx, "altitude fetch failed, continuing without it", "error", altErr)
	}

	if !opts.Altitude {
		altitude = nil
	} else if altitude == nil {
		altitude = fix.Altitude
	}

	p, err := domain.NewGeoPoint(fix.Lat, fix.Lon, altitude)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPositioningUnavailable, err)
	}

	acq := &domain.Acquisition{
		Point:               p,
		AltitudeUnavailable: opts.Altitude && !p.HasAltitude(),
	}
	span.SetAttributes(attribute.Bool("altitude_unavailable", acq.AltitudeUnavailable))
	return acq, nil
}
