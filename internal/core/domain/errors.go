package domain

import "errors"

var (
	// ErrMissingReferencePoint means a compute was requested without both A and B set.
	ErrMissingReferencePoint = errors.New("missing reference point")
	// ErrBearingUndefined means the geometry is degenerate; distance is still reported.
	ErrBearingUndefined = errors.New("bearing undefined")
	// ErrPositioningUnavailable means the host positioning call failed or timed out.
	ErrPositioningUnavailable = errors.New("positioning unavailable")
	// ErrInvalidCoordinate rejects non-finite or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrNoPickTarget means a map tap arrived while no role was armed for picking.
	ErrNoPickTarget = errors.New("no pick target armed")
	// ErrInvalidSession rejects malformed session identifiers.
	ErrInvalidSession = errors.New("invalid session id")
	// ErrPersistence means the in-memory state changed but could not be stored durably.
	ErrPersistence = errors.New("persistence failed")
)
