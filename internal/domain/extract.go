package domain

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Options controls extraction behaviour.
type Options struct {
	// SkipFiltered examines every situation record independently. When false
	// (the default), a record failing the probability or validity filter
	// stops processing of the remaining records in its situation, preserving
	// the historical break behaviour. See the package doc.
	SkipFiltered bool

	// Logger receives warnings about malformed records. Nil discards them.
	Logger *slog.Logger
}

// ExtractClosures walks a raw payload and derives the renderable closure
// records that are certain to occur and active at now. One record is emitted
// per location group, in source order. Malformed records and groups are
// skipped and counted; they never abort the whole extraction.
//
// Deterministic: identical payload and now yield identical output.
func ExtractClosures(payload *ClosurePayload, now time.Time, opts Options) (records []ClosureRecord, malformed int) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, situation := range payload.D2Payload.Situations {
		for _, rec := range situation.Records {
			if !strings.EqualFold(rec.ProbabilityOfOccurrence, "certain") {
				if opts.SkipFiltered {
					continue
				}
				break
			}

			start, end, err := rec.Validity.TimeSpec.Window()
			if err != nil {
				logger.Warn("skipping situation record with bad validity window",
					"error", err,
					"status", rec.Validity.Status,
				)
				malformed++
				continue
			}

			if rec.Validity.Status == ValidityStatusTimeSpec {
				if !(start.Before(now) && now.Before(end)) {
					if opts.SkipFiltered {
						continue
					}
					break
				}
			}

			description := joinComments(rec.GeneralPublicComments)
			for _, group := range rec.LocationReference.GroupByList.Groups {
				record, ok := buildRecord(group, rec.Cause.CauseType, description, start, end, now.Location())
				if !ok {
					logger.Warn("skipping location group without coordinates",
						"cause", rec.Cause.CauseType,
					)
					malformed++
					continue
				}
				records = append(records, record)
			}
		}
	}

	return records, malformed
}

// buildRecord derives one ClosureRecord from a location group. Returns false
// when the group carries no usable geometry.
func buildRecord(group LocationGroup, causeType, description string, start, end time.Time, loc *time.Location) (ClosureRecord, bool) {
	coords := parsePosList(group.LinearLocation.GMLLineString.PosList)
	if len(coords) == 0 {
		return ClosureRecord{}, false
	}

	open, closed := laneCounts(group.LinearLocation.SupplementaryDescription.Carriageways)

	return ClosureRecord{
		RoadNames:   roadNames(group.PointLocation.PointsAlongLinearElement),
		Description: description,
		Start:       start.In(loc).Format(TimeFormat),
		End:         end.In(loc).Format(TimeFormat),
		Cause:       causeType,
		OpenLanes:   open,
		ClosedLanes: closed,
		Opacity:     opacityFor(open),
		Coordinates: coords,
	}, true
}

// roadNames collects road names in first-occurrence order, dropping duplicates.
func roadNames(points []PointAlongLinearElement) []string {
	var names []string
	for _, p := range points {
		name := p.LinearElement.RoadName
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// joinComments concatenates the public comments with single spaces,
// preserving source order.
func joinComments(comments []PublicComment) string {
	parts := make([]string, len(comments))
	for i, c := range comments {
		parts[i] = c.Comment
	}
	return strings.Join(parts, " ")
}

// parsePosList pairs the flat coordinate list two values at a time and
// reverses each pair into plot order. A trailing odd value is dropped, and
// unparseable pairs are skipped.
func parsePosList(posList string) [][2]float64 {
	tokens := strings.Fields(posList)
	coords := make([][2]float64, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		first, err1 := strconv.ParseFloat(tokens[i], 64)
		second, err2 := strconv.ParseFloat(tokens[i+1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		coords = append(coords, [2]float64{second, first})
	}
	return coords
}

// laneCounts folds per-carriageway lane reports into record-level counts.
// Carriageways without an extension block contribute nothing; when none
// report, both counts are unknown.
func laneCounts(carriageways []Carriageway) (open, closed LaneCount) {
	var opens, closeds []int
	for _, c := range carriageways {
		if c.Extension == nil {
			continue
		}
		opens = append(opens, c.Extension.NumberOfOperationalLanes)
		closeds = append(closeds, c.Extension.NumberOfLanesRestricted)
	}
	return maxLanes(opens), maxLanes(closeds)
}

func maxLanes(ns []int) LaneCount {
	if len(ns) == 0 {
		return LaneCount{}
	}
	return KnownLanes(slices.Max(ns))
}
