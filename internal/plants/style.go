package plants

import (
	"math"
	"strings"
)

// Marker size bounds in pixels
const (
	MinMarkerSize = 18
	MaxMarkerSize = 42
)

// Icon is a Font Awesome glyph and its color
type Icon struct {
	Glyph string
	Color string
}

var icons = map[string]Icon{
	"wind":  {Glyph: "fa-fan", Color: "lightblue"},
	"solar": {Glyph: "fa-sun", Color: "orange"},
}

var defaultIcon = Icon{Glyph: "fa-bolt", Color: "gray"}

// IconFor returns the map icon of a technology
func IconFor(technology string) Icon {
	if i, ok := icons[strings.ToLower(technology)]; ok {
		return i
	}
	return defaultIcon
}

// MarkerSize scales capacity to a pixel size between MinMarkerSize and MaxMarkerSize.
// Area grows linearly with capacity, so the size follows its square root.
func MarkerSize(capacityMW, maxCapacityMW float64) int {
	if maxCapacityMW <= 0 || capacityMW <= 0 {
		return MinMarkerSize
	}
	ratio := math.Min(capacityMW/maxCapacityMW, 1)
	return MinMarkerSize + int(math.Round(float64(MaxMarkerSize-MinMarkerSize)*math.Sqrt(ratio)))
}
