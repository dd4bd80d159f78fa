package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies one of the two reference points.
type Role string

const (
	RoleA Role = "A"
	RoleB Role = "B"
)

// Roles lists the roles in display order.
var Roles = []Role{RoleA, RoleB}

// ParseRole accepts "a", "A", "b" or "B".
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return RoleA, nil
	case "B":
		return RoleB, nil
	}
	return "", fmt.Errorf("unknown reference point %q (want A or B)", s)
}

// StorageKey is the persistence key the point is retained under.
func (r Role) StorageKey() string {
	return "point" + string(r)
}

// ResultState tracks the bearing/distance pair: unset -> stale -> computed -> stale.
type ResultState string

const (
	ResultUnset    ResultState = "unset"
	ResultStale    ResultState = "stale"
	ResultComputed ResultState = "computed"
)

// DerivedResult is recomputed by the store and never persisted. Nil fields
// mean the required inputs are unavailable.
type DerivedResult struct {
	State               ResultState `json:"state"`
	BearingDegrees      *float64    `json:"bearing_degrees"`
	DistanceMeters      *float64    `json:"distance_meters"`
	AltitudeDeltaMeters *float64    `json:"altitude_delta_meters"`
}

// Snapshot is an immutable view of the pair and its derived result.
type Snapshot struct {
	PointA  *GeoPoint     `json:"point_a"`
	PointB  *GeoPoint     `json:"point_b"`
	Result  DerivedResult `json:"result"`
	Version uint64        `json:"version"`
}

// Point returns the point held for a role, if any.
func (s Snapshot) Point(r Role) (GeoPoint, bool) {
	var p *GeoPoint
	switch r {
	case RoleA:
		p = s.PointA
	case RoleB:
		p = s.PointB
	}
	if p == nil {
		return GeoPoint{}, false
	}
	return *p, true
}

// Source records where a point came from.
type Source string

const (
	SourcePositioning Source = "positioning"
	SourceTap         Source = "tap"
	SourceClient      Source = "client"
)

// PositionOptions are passed through to the host positioning service.
type PositionOptions struct {
	HighAccuracy bool          `json:"high_accuracy"`
	Timeout      time.Duration `json:"timeout"`
	Altitude     bool          `json:"altitude"`
}

// Fix is a position reported by a positioning service.
type Fix struct {
	Lat      float64  `json:"latitude"`
	Lon      float64  `json:"longitude"`
	Altitude *float64 `json:"altitude,omitempty"`
}

// Acquisition is the merged result of a positioning attempt.
type Acquisition struct {
	Point               GeoPoint `json:"point"`
	AltitudeUnavailable bool     `json:"altitude_unavailable"`
}
