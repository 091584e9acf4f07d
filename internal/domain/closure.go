package domain

import (
	"bytes"
	"fmt"
	"strconv"
)

// TimeFormat is the display format for closure start/end times.
const TimeFormat = "02/01/2006 15:04"

// Render opacities: a segment with zero open lanes is drawn opaque, anything
// else (some lanes open, or lane data unknown) is drawn see-through.
const (
	OpacityFullClosure = 1.0
	OpacityPartial     = 0.25
)

// ClosureRecord is one renderable closure segment, derived from a single
// location group. Immutable once built.
type ClosureRecord struct {
	RoadNames   []string     `json:"road_names"`
	Description string       `json:"description"`
	Start       string       `json:"start"`
	End         string       `json:"end"`
	Cause       string       `json:"cause"`
	OpenLanes   LaneCount    `json:"open_lanes"`
	ClosedLanes LaneCount    `json:"closed_lanes"`
	Opacity     float64      `json:"opacity"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// LaneCount is a lane tally that may be unknown. The zero value is unknown;
// it marshals to a JSON number when known and to the string "unknown"
// otherwise, matching the persisted record format.
type LaneCount struct {
	Known bool
	Lanes int
}

// KnownLanes returns a known lane count.
func KnownLanes(n int) LaneCount {
	return LaneCount{Known: true, Lanes: n}
}

func (lc LaneCount) String() string {
	if !lc.Known {
		return "unknown"
	}
	return strconv.Itoa(lc.Lanes)
}

// MarshalJSON encodes a known count as a number and an unknown one as the
// sentinel string "unknown".
func (lc LaneCount) MarshalJSON() ([]byte, error) {
	if !lc.Known {
		return []byte(`"unknown"`), nil
	}
	return []byte(strconv.Itoa(lc.Lanes)), nil
}

// UnmarshalJSON accepts either a number or the sentinel string "unknown".
func (lc *LaneCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"unknown"`)) || bytes.Equal(data, []byte("null")) {
		*lc = LaneCount{}
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("lane count %s: %w", data, err)
	}
	*lc = LaneCount{Known: true, Lanes: n}
	return nil
}

// opacityFor picks the render opacity from the open-lane count.
func opacityFor(open LaneCount) float64 {
	if open.Known && open.Lanes == 0 {
		return OpacityFullClosure
	}
	return OpacityPartial
}
