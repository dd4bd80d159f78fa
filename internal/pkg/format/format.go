// Package format turns raw geodesic results into display strings.
// Anything undefined or non-finite renders as the "-" sentinel.
package format

import (
	"fmt"
	"math"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/geospatial"
)

// Sentinel is shown whenever a value is unavailable.
const Sentinel = "-"

const metersPerFoot = 0.3048

// Unit is the display unit for altitudes.
type Unit string

const (
	Meters Unit = "m"
	Feet   Unit = "ft"
)

// ParseUnit validates an altitude unit name.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Meters, Feet:
		return Unit(s), nil
	}
	return "", fmt.Errorf("unknown altitude unit %q (want m or ft)", s)
}

// Presenter formats results under a unit policy.
type Presenter struct {
	altitudeUnit Unit
}

// NewPresenter creates a Presenter; an empty unit means meters.
func NewPresenter(altitudeUnit Unit) *Presenter {
	if altitudeUnit == "" {
		altitudeUnit = Meters
	}
	return &Presenter{altitudeUnit: altitudeUnit}
}

// Display holds every string the page shows.
type Display struct {
	Bearing       string `json:"bearing"`
	Compass       string `json:"compass"`
	Distance      string `json:"distance"`
	AltitudeA     string `json:"altitude_a"`
	AltitudeB     string `json:"altitude_b"`
	AltitudeDelta string `json:"altitude_delta"`
}

// Display formats a whole snapshot.
func (p *Presenter) Display(snap domain.Snapshot) Display {
	d := Display{
		Bearing:       Bearing(snap.Result.BearingDegrees),
		Compass:       Compass(snap.Result.BearingDegrees),
		Distance:      Distance(snap.Result.DistanceMeters),
		AltitudeA:     Sentinel,
		AltitudeB:     Sentinel,
		AltitudeDelta: p.Altitude(snap.Result.AltitudeDeltaMeters),
	}
	if snap.PointA != nil {
		d.AltitudeA = p.Altitude(snap.PointA.Altitude)
	}
	if snap.PointB != nil {
		d.AltitudeB = p.Altitude(snap.PointB.Altitude)
	}
	return d
}

// Bearing renders degrees with three decimals, e.g. "153.073°".
func Bearing(deg *float64) string {
	v, ok := value(deg)
	if !ok {
		return Sentinel
	}
	return fmt.Sprintf("%.3f°", v)
}

// Compass renders the 8-point compass label for a bearing.
func Compass(deg *float64) string {
	v, ok := value(deg)
	if !ok {
		return Sentinel
	}
	return geospatial.CompassPoint(v)
}

// Distance renders meters below 1000 m and kilometers from there on.
func Distance(meters *float64) string {
	v, ok := value(meters)
	if !ok {
		return Sentinel
	}
	if v < 1000 {
		return fmt.Sprintf("%.1f m", v)
	}
	return fmt.Sprintf("%.3f km", v/1000)
}

// Altitude renders an altitude or altitude delta in the presenter's unit.
func (p *Presenter) Altitude(meters *float64) string {
	v, ok := value(meters)
	if !ok {
		return Sentinel
	}
	if p.altitudeUnit == Feet {
		return fmt.Sprintf("%.1f %s", v/metersPerFoot, Feet)
	}
	return fmt.Sprintf("%.1f %s", v, Meters)
}

func value(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
