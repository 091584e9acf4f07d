package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extraction instant used across tests; the 2025-01-01 window cases follow
// the pipeline's documented behaviour around it.
var testNow = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

func activeWindow() ValidityTimeSpec {
	return ValidityTimeSpec{
		OverallStartTime: "2025-01-01T00:00:00Z",
		OverallEndTime:   "2025-01-02T00:00:00Z",
	}
}

func testRecord(probability string, spec ValidityTimeSpec, groups ...LocationGroup) SituationRecord {
	return SituationRecord{
		ProbabilityOfOccurrence: probability,
		GeneralPublicComments:   []PublicComment{{Comment: "Closure in place."}},
		Validity:                Validity{Status: ValidityStatusTimeSpec, TimeSpec: spec},
		Cause:                   Cause{CauseType: "roadMaintenance"},
		LocationReference: LocationReference{
			GroupByList: LocationGroupByList{Groups: groups},
		},
	}
}

func testGroup(posList string, roadNames []string, carriageways ...Carriageway) LocationGroup {
	points := make([]PointAlongLinearElement, len(roadNames))
	for i, name := range roadNames {
		points[i] = PointAlongLinearElement{LinearElement: LinearElement{RoadName: name}}
	}
	return LocationGroup{
		PointLocation: PointLocation{PointsAlongLinearElement: points},
		LinearLocation: LinearLocation{
			GMLLineString:            GMLLineString{PosList: posList},
			SupplementaryDescription: SupplementaryDescription{Carriageways: carriageways},
		},
	}
}

func withExtension(open, restricted int) Carriageway {
	return Carriageway{Extension: &CarriagewayExtension{
		NumberOfOperationalLanes: open,
		NumberOfLanesRestricted:  restricted,
	}}
}

func payloadOf(situations ...Situation) *ClosurePayload {
	return &ClosurePayload{D2Payload: D2Payload{Situations: situations}}
}

func TestExtractClosures_ProbabilityFilter(t *testing.T) {
	group := testGroup("51.5 -0.1", []string{"M25"})

	t.Run("mixed-case certain is included", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("Certain", activeWindow(), group),
		}})

		records, malformed := ExtractClosures(payload, testNow, Options{})
		assert.Len(t, records, 1)
		assert.Zero(t, malformed)
	})

	t.Run("uncertain record stops its situation", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("possible", activeWindow(), group),
			testRecord("certain", activeWindow(), group),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		assert.Empty(t, records, "records after a filtered one in the same situation are not examined")
	})

	t.Run("skip-filtered examines later records", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("possible", activeWindow(), group),
			testRecord("certain", activeWindow(), group),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{SkipFiltered: true})
		assert.Len(t, records, 1)
	})

	t.Run("later situations are unaffected", func(t *testing.T) {
		payload := payloadOf(
			Situation{Records: []SituationRecord{testRecord("possible", activeWindow(), group)}},
			Situation{Records: []SituationRecord{testRecord("certain", activeWindow(), group)}},
		)

		records, _ := ExtractClosures(payload, testNow, Options{})
		assert.Len(t, records, 1)
	})
}

func TestExtractClosures_ValidityWindow(t *testing.T) {
	group := testGroup("51.5 -0.1", []string{"M25"})

	t.Run("now inside window is included", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), group),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		assert.Len(t, records, 1)
	})

	t.Run("now after window is excluded", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), group),
		}})

		late := time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)
		records, _ := ExtractClosures(payload, late, Options{})
		assert.Empty(t, records)
	})

	t.Run("expired record stops its situation", func(t *testing.T) {
		expired := ValidityTimeSpec{
			OverallStartTime: "2024-01-01T00:00:00Z",
			OverallEndTime:   "2024-01-02T00:00:00Z",
		}
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", expired, group),
			testRecord("certain", activeWindow(), group),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		assert.Empty(t, records)
	})

	t.Run("non-timespec status ignores the window", func(t *testing.T) {
		expired := ValidityTimeSpec{
			OverallStartTime: "2024-01-01T00:00:00Z",
			OverallEndTime:   "2024-01-02T00:00:00Z",
		}
		rec := testRecord("certain", expired, group)
		rec.Validity.Status = "active"
		payload := payloadOf(Situation{Records: []SituationRecord{rec}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		assert.Len(t, records, 1)
	})

	t.Run("boundary instants are excluded", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), group),
		}})

		atStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
		records, _ := ExtractClosures(payload, atStart, Options{})
		assert.Empty(t, records, "start < now must be strict")
	})
}

func TestExtractClosures_Coordinates(t *testing.T) {
	t.Run("pairs reverse into plot order", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), testGroup("51.5 -0.1 51.6 -0.2", []string{"M25"})),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.Equal(t, [][2]float64{{-0.1, 51.5}, {-0.2, 51.6}}, records[0].Coordinates)
	})

	t.Run("trailing odd token is dropped", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), testGroup("51.5 -0.1 51.6", []string{"M25"})),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.Equal(t, [][2]float64{{-0.1, 51.5}}, records[0].Coordinates)
	})

	t.Run("group without geometry is skipped and counted", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(),
				testGroup("", []string{"M25"}),
				testGroup("51.5 -0.1", []string{"A21"}),
			),
		}})

		records, malformed := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.Equal(t, []string{"A21"}, records[0].RoadNames)
		assert.Equal(t, 1, malformed)
	})
}

func TestExtractClosures_Lanes(t *testing.T) {
	t.Run("maximum across reporting carriageways", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(),
				testGroup("51.5 -0.1", []string{"M25"}, withExtension(2, 0), withExtension(1, 1)),
			),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.Equal(t, KnownLanes(2), records[0].OpenLanes)
		assert.Equal(t, KnownLanes(1), records[0].ClosedLanes)
		assert.Equal(t, OpacityPartial, records[0].Opacity)
	})

	t.Run("no extension blocks means unknown", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(),
				testGroup("51.5 -0.1", []string{"M25"}, Carriageway{}, Carriageway{}),
			),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.False(t, records[0].OpenLanes.Known)
		assert.False(t, records[0].ClosedLanes.Known)
		assert.Equal(t, OpacityPartial, records[0].Opacity)
	})

	t.Run("zero open lanes renders opaque", func(t *testing.T) {
		payload := payloadOf(Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(),
				testGroup("51.5 -0.1", []string{"M25"}, withExtension(0, 3)),
			),
		}})

		records, _ := ExtractClosures(payload, testNow, Options{})
		require.Len(t, records, 1)
		assert.Equal(t, OpacityFullClosure, records[0].Opacity)
	})
}

func TestExtractClosures_RecordFields(t *testing.T) {
	rec := testRecord("certain", activeWindow(),
		testGroup("51.5 -0.1", []string{"M25", "M25", "A21"}))
	rec.GeneralPublicComments = []PublicComment{
		{Comment: "Closed overnight."},
		{Comment: "Use diversion."},
	}
	payload := payloadOf(Situation{Records: []SituationRecord{rec}})

	records, _ := ExtractClosures(payload, testNow, Options{})
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, []string{"M25", "A21"}, r.RoadNames, "duplicates drop on first occurrence")
	assert.Equal(t, "Closed overnight. Use diversion.", r.Description)
	assert.Equal(t, "01/01/2025 00:00", r.Start)
	assert.Equal(t, "02/01/2025 00:00", r.End)
	assert.Equal(t, "roadMaintenance", r.Cause)
}

func TestExtractClosures_TimesFormatInReferenceZone(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	spec := ValidityTimeSpec{
		OverallStartTime: "2025-06-15T10:00:00Z",
		OverallEndTime:   "2025-06-16T10:00:00Z",
	}
	payload := payloadOf(Situation{Records: []SituationRecord{
		testRecord("certain", spec, testGroup("51.5 -0.1", []string{"M25"})),
	}})

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC).In(london)
	records, _ := ExtractClosures(payload, now, Options{})
	require.Len(t, records, 1)
	assert.Equal(t, "15/06/2025 11:00", records[0].Start, "BST is UTC+1")
}

func TestExtractClosures_MalformedWindow(t *testing.T) {
	group := testGroup("51.5 -0.1", []string{"M25"})
	bad := testRecord("certain", ValidityTimeSpec{OverallStartTime: "not-a-time", OverallEndTime: "also-bad"}, group)
	good := testRecord("certain", activeWindow(), group)
	payload := payloadOf(Situation{Records: []SituationRecord{bad, good}})

	records, malformed := ExtractClosures(payload, testNow, Options{})
	assert.Len(t, records, 1, "a malformed record skips itself, not its siblings")
	assert.Equal(t, 1, malformed)
}

func TestExtractClosures_Deterministic(t *testing.T) {
	payload := payloadOf(
		Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(),
				testGroup("51.5 -0.1 51.6 -0.2", []string{"M25"}, withExtension(2, 1)),
				testGroup("51.7 -0.3", []string{"A21"}),
			),
		}},
		Situation{Records: []SituationRecord{
			testRecord("certain", activeWindow(), testGroup("52.0 0.1", []string{"A14"})),
		}},
	)

	first, _ := ExtractClosures(payload, testNow, Options{})
	second, _ := ExtractClosures(payload, testNow, Options{})

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseOverallTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"zulu suffix", "2025-01-01T00:00:00Z", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"explicit offset", "2025-01-01T01:00:00+01:00", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"garbage", "not-a-time", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOverallTime(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
