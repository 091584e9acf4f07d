// Package domain models the National Highways road-closure feed.
//
// # Data Source
//
// Closures come from the National Highways closures endpoint
// (https://api.data.nationalhighways.co.uk/roads/v1.0/closures), which serves
// a DATEX-II-flavoured nested JSON document. The document is a D2Payload
// holding situations; each situation holds situation records; each record
// holds one or more location groups describing a contiguous stretch of road.
//
// # Feed Conventions
//
// Probability of occurrence:
//
//	Free-text enum, compared case-insensitively. Only "certain" records are
//	mapped; anything else ("probable", "riskOf", ...) is filtered out.
//
// Validity:
//
//	validityStatus of "definedByValidityTimeSpec" means the record is only
//	active strictly between overallStartTime and overallEndTime, excluding
//	both instants. Timestamps are ISO-8601
//	and may use a "Z" suffix, which is rewritten to an explicit "+00:00"
//	offset before parsing. Any other status means the record is always active.
//
// Geometry:
//
//	gmlLineString.posList is a single whitespace-delimited string of
//	alternating coordinate values. Consecutive values pair up and each pair
//	is reversed to produce plot-order coordinates, so "51.5 -0.1 51.6 -0.2"
//	becomes [[-0.1, 51.5], [-0.2, 51.6]].
//
// Lane counts:
//
//	Each carriageway may carry a "_carriagewayExtensionG" block with
//	numberOfOperationalLanes and numberOfLanesRestricted. A missing block
//	means the carriageway reported no lane data. The record-level counts are
//	the maximum across reporting carriageways, or unknown when none report.
//
// Cause vocabulary:
//
//	causeType is a short key ("roadMaintenance", "constructionWork", ...).
//	Display names and map colours live in this package; unknown keys fall
//	back to "Other" in dark blue.
//
// # Filtering Quirk
//
// The historical processor used a loop break, not a per-record skip, when a
// record failed the probability or validity filter: the remaining records in
// that situation were never examined. [ExtractClosures] preserves that
// behaviour by default and offers Options.SkipFiltered to examine every
// record independently instead.
package domain
