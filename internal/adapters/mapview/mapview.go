// Package mapview projects a reference point snapshot into geometry a map
// widget can render: markers, the A-B connector and a frame that fits both.
package mapview

import (
	"github.com/golang/geo/s2"
	"github.com/samber/lo"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/geospatial"
)

const (
	markerSize     = 24
	connectorWidth = 4
	connectorColor = "#0081ff"
	calloutAlways  = "ALWAYS"
)

// Vertex is a bare coordinate on the map.
type Vertex struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Callout is the label bubble drawn next to a marker.
type Callout struct {
	Content string `json:"content"`
	Display string `json:"display"`
}

// Marker is one reference point pin. IDs are stable per role: A is 1, B is 2.
type Marker struct {
	ID      int         `json:"id"`
	Role    domain.Role `json:"role"`
	Lat     float64     `json:"latitude"`
	Lon     float64     `json:"longitude"`
	Label   string      `json:"label"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Callout Callout     `json:"callout"`
}

// Connector is the line drawn from A to B.
type Connector struct {
	Points   []Vertex `json:"points"`
	Width    int      `json:"width"`
	Color    string   `json:"color"`
	Midpoint Vertex   `json:"midpoint"`
}

// Frame is the smallest lat/lon rectangle containing every marker.
type Frame struct {
	South  float64 `json:"south"`
	West   float64 `json:"west"`
	North  float64 `json:"north"`
	East   float64 `json:"east"`
	Center Vertex  `json:"center"`
}

// View is everything the map widget needs for one render.
type View struct {
	Center     Vertex          `json:"center"`
	Layer      domain.MapLayer `json:"layer"`
	Markers    []Marker        `json:"markers"`
	Connectors []Connector     `json:"polyline"`
	Frame      *Frame          `json:"frame,omitempty"`
}

// ProjectMarkers returns 0, 1 or 2 markers; A always precedes B.
func ProjectMarkers(snap domain.Snapshot) []Marker {
	return lo.FilterMap(domain.Roles, func(role domain.Role, i int) (Marker, bool) {
		p, ok := snap.Point(role)
		if !ok {
			return Marker{}, false
		}
		return Marker{
			ID:      i + 1,
			Role:    role,
			Lat:     p.Lat,
			Lon:     p.Lon,
			Label:   string(role),
			Width:   markerSize,
			Height:  markerSize,
			Callout: Callout{Content: string(role), Display: calloutAlways},
		}, true
	})
}

// ProjectConnector returns the A-B line, or nil unless both points are set.
func ProjectConnector(snap domain.Snapshot) *Connector {
	a, okA := snap.Point(domain.RoleA)
	b, okB := snap.Point(domain.RoleB)
	if !okA || !okB {
		return nil
	}

	midLat, midLon := geospatial.Midpoint(a.Lat, a.Lon, b.Lat, b.Lon)
	return &Connector{
		Points:   []Vertex{{Lat: a.Lat, Lon: a.Lon}, {Lat: b.Lat, Lon: b.Lon}},
		Width:    connectorWidth,
		Color:    connectorColor,
		Midpoint: Vertex{Lat: midLat, Lon: midLon},
	}
}

// ProjectFrame returns the rectangle bounding the set points, or nil when
// neither is set. A frame across the antimeridian has West > East.
func ProjectFrame(snap domain.Snapshot) *Frame {
	rect := s2.EmptyRect()
	for _, role := range domain.Roles {
		if p, ok := snap.Point(role); ok {
			rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
		}
	}
	if rect.IsEmpty() {
		return nil
	}

	sw, ne, c := rect.Lo(), rect.Hi(), rect.Center()
	return &Frame{
		South:  sw.Lat.Degrees(),
		West:   sw.Lng.Degrees(),
		North:  ne.Lat.Degrees(),
		East:   ne.Lng.Degrees(),
		Center: Vertex{Lat: c.Lat.Degrees(), Lon: c.Lng.Degrees()},
	}
}

// Project builds the full map view around center.
func Project(snap domain.Snapshot, center domain.GeoPoint, layer domain.MapLayer) View {
	v := View{
		Center:     Vertex{Lat: center.Lat, Lon: center.Lon},
		Layer:      layer,
		Markers:    ProjectMarkers(snap),
		Connectors: []Connector{},
		Frame:      ProjectFrame(snap),
	}
	if c := ProjectConnector(snap); c != nil {
		v.Connectors = append(v.Connectors, *c)
	}
	return v
}
