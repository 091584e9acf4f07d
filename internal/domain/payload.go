package domain

import (
	"errors"
	"strings"
	"time"
)

// ValidityStatusTimeSpec marks records that are only active inside their
// overall validity window.
const ValidityStatusTimeSpec = "definedByValidityTimeSpec"

// ClosurePayload is the raw upstream document. Only the fields the extractor
// reads are modelled; unknown fields are ignored on decode.
type ClosurePayload struct {
	D2Payload D2Payload `json:"D2Payload"`
}

// D2Payload is the DATEX-II publication body.
type D2Payload struct {
	Situations []Situation `json:"situation"`
}

// Situation is one upstream-reported traffic event.
type Situation struct {
	Records []SituationRecord `json:"situationRecord"`
}

// SituationRecord is one time/cause/validity-scoped description of an event.
type SituationRecord struct {
	ProbabilityOfOccurrence string            `json:"probabilityOfOccurrence"`
	GeneralPublicComments   []PublicComment   `json:"generalPublicComment"`
	Validity                Validity          `json:"validity"`
	Cause                   Cause             `json:"cause"`
	LocationReference       LocationReference `json:"locationReference"`
}

// PublicComment is a single free-text comment attached to a record.
type PublicComment struct {
	Comment string `json:"comment"`
}

// Validity scopes a record to a time window.
type Validity struct {
	Status   string           `json:"validityStatus"`
	TimeSpec ValidityTimeSpec `json:"validityTimeSpecification"`
}

// ValidityTimeSpec holds the raw overall start/end timestamps.
type ValidityTimeSpec struct {
	OverallStartTime string `json:"overallStartTime"`
	OverallEndTime   string `json:"overallEndTime"`
}

// Window parses the overall start and end timestamps to absolute instants.
func (ts ValidityTimeSpec) Window() (start, end time.Time, err error) {
	start, err = parseOverallTime(ts.OverallStartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseOverallTime(ts.OverallEndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseOverallTime parses an ISO-8601 timestamp after rewriting a "Z" suffix
// to an explicit "+00:00" offset.
func parseOverallTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	value = strings.Replace(value, "Z", "+00:00", 1)
	return time.Parse("2006-01-02T15:04:05-07:00", value)
}

// Cause identifies why the closure is in place.
type Cause struct {
	CauseType string `json:"causeType"`
}

// LocationReference holds the grouped road geometry for a record.
type LocationReference struct {
	GroupByList LocationGroupByList `json:"locationReferencingLocationGroupByList"`
}

// LocationGroupByList wraps the list of location groups.
type LocationGroupByList struct {
	Groups []LocationGroup `json:"locationContainedInGroup"`
}

// LocationGroup is one contiguous road segment with its own road names,
// lane state, and coordinate path.
type LocationGroup struct {
	PointLocation  PointLocation  `json:"locationReferencingPointLocation"`
	LinearLocation LinearLocation `json:"locationReferencingLinearLocation"`
}

// PointLocation carries the named points along the affected road.
type PointLocation struct {
	PointsAlongLinearElement []PointAlongLinearElement `json:"pointAlongLinearElement"`
}

// PointAlongLinearElement names the road a point sits on.
type PointAlongLinearElement struct {
	LinearElement LinearElement `json:"linearElement"`
}

// LinearElement is a named stretch of road.
type LinearElement struct {
	RoadName string `json:"roadName"`
}

// LinearLocation carries the segment geometry and per-carriageway detail.
type LinearLocation struct {
	GMLLineString            GMLLineString            `json:"gmlLineString"`
	SupplementaryDescription SupplementaryDescription `json:"supplementaryPositionalDescription"`
}

// GMLLineString holds the flat whitespace-delimited coordinate list.
type GMLLineString struct {
	PosList string `json:"posList"`
}

// SupplementaryDescription lists the carriageways within a location group.
type SupplementaryDescription struct {
	Carriageways []Carriageway `json:"carriageway"`
}

// Carriageway is one directional roadway. Extension is nil when the feed
// reported no lane data for it.
type Carriageway struct {
	Extension *CarriagewayExtension `json:"_carriagewayExtensionG,omitempty"`
}

// CarriagewayExtension reports lane availability for one carriageway.
type CarriagewayExtension struct {
	NumberOfOperationalLanes int `json:"numberOfOperationalLanes"`
	NumberOfLanesRestricted  int `json:"numberOfLanesRestricted"`
}
