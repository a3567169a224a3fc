package timeline

import (
	"math"
)

const (
	// PixelsPerSecond is the unit scale at zoom 1.
	PixelsPerSecond = 100.0
	// DefaultAdjacencyTolerance is the gap in seconds still treated as touching.
	DefaultAdjacencyTolerance = 0.1
	// MinClipDuration is the floor a trim may shrink a clip to.
	MinClipDuration = 0.1
)

// TimeToUnits converts seconds to display units at the given zoom.
func TimeToUnits(t, zoom float64) (float64, error) {
	if err := checkFinite(t, zoom); err != nil {
		return 0, err
	}
	if zoom <= 0 {
		return 0, invalidArg("", "zoom must be positive, got %v", zoom)
	}
	return t * PixelsPerSecond * zoom, nil
}

// UnitsToTime converts display units back to seconds at the given zoom.
func UnitsToTime(units, zoom float64) (float64, error) {
	if err := checkFinite(units, zoom); err != nil {
		return 0, err
	}
	if zoom <= 0 {
		return 0, invalidArg("", "zoom must be positive, got %v", zoom)
	}
	return units / (PixelsPerSecond * zoom), nil
}

// Clamp limits v to [lo, hi]. Like Overlaps and IsAdjacent it does no
// finiteness check; pass values through CheckFinite first.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}

// IsAdjacent reports whether bStart lies within tolerance of aEnd.
// A non-positive tolerance uses DefaultAdjacencyTolerance.
func IsAdjacent(aEnd, bStart, tolerance float64) bool {
	if tolerance <= 0 {
		tolerance = DefaultAdjacencyTolerance
	}
	return math.Abs(bStart-aEnd) < tolerance
}

// CheckFinite fails with InvalidArgument on the first NaN or infinite value.
func CheckFinite(values ...float64) error {
	return checkFinite(values...)
}

func checkFinite(values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidArg("", "non-finite value %v", v)
		}
	}
	return nil
}
