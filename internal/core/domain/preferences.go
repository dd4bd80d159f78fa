package domain

import "fmt"

// MapLayer is the base map style shown by the map widget.
type MapLayer string

const (
	LayerStandard  MapLayer = "standard"
	LayerSatellite MapLayer = "satellite"
)

// ParseMapLayer validates a map layer name.
func ParseMapLayer(s string) (MapLayer, error) {
	switch MapLayer(s) {
	case LayerStandard, LayerSatellite:
		return MapLayer(s), nil
	}
	return "", fmt.Errorf("unknown map layer %q", s)
}

// Preferences are retained per session across restarts.
type Preferences struct {
	Language string   `json:"language"`
	MapLayer MapLayer `json:"map_layer"`
}

const (
	KeyLanguage = "language"
	KeyMapLayer = "mapLayer"
)

// NoticeKind classifies a transient user-facing message.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is a localized toast for the notification surface.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}
