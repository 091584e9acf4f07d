package domain

// causeColours maps the feed's causeType keys to map polyline colours.
var causeColours = map[string]string{
	"authorityOperation": "orange",
	"constructionWork":   "red",
	"other":              "darkblue",
	"roadMaintenance":    "red",
}

// causeNames maps causeType keys to human-readable labels.
var causeNames = map[string]string{
	"authorityOperation": "Local authority works",
	"constructionWork":   "Construction work",
	"other":              "Other",
	"roadMaintenance":    "Road maintenance",
}

// CauseColour returns the map colour for a causeType key, falling back to
// dark blue for keys outside the known vocabulary.
func CauseColour(causeType string) string {
	if c, ok := causeColours[causeType]; ok {
		return c
	}
	return "darkblue"
}

// CauseDisplayName returns the label for a causeType key, falling back to
// "Other" for keys outside the known vocabulary.
func CauseDisplayName(causeType string) string {
	if n, ok := causeNames[causeType]; ok {
		return n
	}
	return "Other"
}
