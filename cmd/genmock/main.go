// Command genmock writes a mock National Highways closures payload plus its
// extracted records, for local development and test fixtures. It uses the
// actual domain package so the derived output matches real pipeline
// behaviour.
//
// Usage:
//
//	go run ./cmd/genmock -payload-out closures.json -records-out processed.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

// frozenNow keeps the generated validity windows active around a fixed
// instant so fixtures extract reproducibly.
var frozenNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	payloadOut := flag.String("payload-out", "closures.json", "output path for the mock raw payload")
	recordsOut := flag.String("records-out", "processed.json", "output path for the extracted records")
	flag.Parse()

	payload := mockPayload()

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := os.WriteFile(*payloadOut, raw, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	records, malformed := domain.ExtractClosures(payload, frozenNow, domain.Options{})
	derived, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(*recordsOut, derived, 0o644); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	log.Printf("payload: %d situations -> %s", len(payload.D2Payload.Situations), *payloadOut)
	log.Printf("records: %d extracted (%d malformed) -> %s", len(records), malformed, *recordsOut)
	return nil
}

// mockPayload builds a payload covering the interesting shapes: an active
// certain closure with lane data, one without lane data, a multi-group
// record, an expired closure, and an uncertain one.
func mockPayload() *domain.ClosurePayload {
	active := window(frozenNow.Add(-24*time.Hour), frozenNow.Add(6*24*time.Hour))
	expired := window(frozenNow.Add(-14*24*time.Hour), frozenNow.Add(-7*24*time.Hour))

	return &domain.ClosurePayload{D2Payload: domain.D2Payload{Situations: []domain.Situation{
		{Records: []domain.SituationRecord{{
			ProbabilityOfOccurrence: "certain",
			GeneralPublicComments: []domain.PublicComment{
				{Comment: "M25 clockwise closed between J5 and J6."},
				{Comment: "Diversion via A25."},
			},
			Validity: domain.Validity{Status: domain.ValidityStatusTimeSpec, TimeSpec: active},
			Cause:    domain.Cause{CauseType: "roadMaintenance"},
			LocationReference: groups(
				group([]string{"M25", "M25"}, "51.27 0.18 51.28 0.21 51.29 0.25", lanes(0, 4), lanes(2, 2)),
			),
		}}},
		{Records: []domain.SituationRecord{{
			ProbabilityOfOccurrence: "Certain",
			GeneralPublicComments:   []domain.PublicComment{{Comment: "Lane closures for resurfacing."}},
			Validity:                domain.Validity{Status: domain.ValidityStatusTimeSpec, TimeSpec: active},
			Cause:                   domain.Cause{CauseType: "constructionWork"},
			LocationReference: groups(
				group([]string{"A1(M)"}, "52.01 -0.21 52.05 -0.20", noLanes()),
				group([]string{"A1"}, "52.05 -0.20 52.09 -0.18", lanes(1, 1)),
			),
		}}},
		{Records: []domain.SituationRecord{{
			ProbabilityOfOccurrence: "probable",
			GeneralPublicComments:   []domain.PublicComment{{Comment: "Possible overnight closure."}},
			Validity:                domain.Validity{Status: domain.ValidityStatusTimeSpec, TimeSpec: active},
			Cause:                   domain.Cause{CauseType: "other"},
			LocationReference: groups(
				group([]string{"M6"}, "53.40 -2.52 53.45 -2.55", lanes(3, 0)),
			),
		}}},
		{Records: []domain.SituationRecord{{
			ProbabilityOfOccurrence: "certain",
			GeneralPublicComments:   []domain.PublicComment{{Comment: "Completed carriageway works."}},
			Validity:                domain.Validity{Status: domain.ValidityStatusTimeSpec, TimeSpec: expired},
			Cause:                   domain.Cause{CauseType: "authorityOperation"},
			LocationReference: groups(
				group([]string{"A14"}, "52.20 0.13 52.21 0.17", lanes(2, 1)),
			),
		}}},
	}}}
}

func window(start, end time.Time) domain.ValidityTimeSpec {
	return domain.ValidityTimeSpec{
		OverallStartTime: start.UTC().Format("2006-01-02T15:04:05Z"),
		OverallEndTime:   end.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func groups(gs ...domain.LocationGroup) domain.LocationReference {
	return domain.LocationReference{
		GroupByList: domain.LocationGroupByList{Groups: gs},
	}
}

func group(roadNames []string, posList string, carriageways ...domain.Carriageway) domain.LocationGroup {
	points := make([]domain.PointAlongLinearElement, len(roadNames))
	for i, name := range roadNames {
		points[i] = domain.PointAlongLinearElement{LinearElement: domain.LinearElement{RoadName: name}}
	}
	return domain.LocationGroup{
		PointLocation: domain.PointLocation{PointsAlongLinearElement: points},
		LinearLocation: domain.LinearLocation{
			GMLLineString:            domain.GMLLineString{PosList: posList},
			SupplementaryDescription: domain.SupplementaryDescription{Carriageways: carriageways},
		},
	}
}

func lanes(open, restricted int) domain.Carriageway {
	return domain.Carriageway{Extension: &domain.CarriagewayExtension{
		NumberOfOperationalLanes: open,
		NumberOfLanesRestricted:  restricted,
	}}
}

func noLanes() domain.Carriageway {
	return domain.Carriageway{}
}
