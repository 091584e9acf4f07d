package http

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

// GeoJSON shapes for the closures endpoint. Only the fields the map page
// consumes are modelled.

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string            `json:"type"`
	Geometry   lineString        `json:"geometry"`
	Properties featureProperties `json:"properties"`
}

type lineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

type featureProperties struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Cause       string  `json:"cause"`
	Colour      string  `json:"colour"`
	Opacity     float64 `json:"opacity"`
	OpenLanes   string  `json:"open_lanes"`
	ClosedLanes string  `json:"closed_lanes"`
	Tooltip     string  `json:"tooltip"`
}

// toFeatureCollection converts closure records into one LineString feature
// per record. Record coordinates are in plot order (lat first); GeoJSON
// positions are lon-first, so each pair flips once more here.
func toFeatureCollection(records []domain.ClosureRecord) featureCollection {
	features := make([]feature, 0, len(records))
	for _, r := range records {
		coords := make([][]float64, len(r.Coordinates))
		for i, c := range r.Coordinates {
			coords[i] = []float64{c[1], c[0]}
		}
		props := featureProperties{
			Name:        strings.Join(r.RoadNames, " "),
			Description: r.Description,
			Start:       r.Start,
			End:         r.End,
			Cause:       domain.CauseDisplayName(r.Cause),
			Colour:      domain.CauseColour(r.Cause),
			Opacity:     r.Opacity,
			OpenLanes:   r.OpenLanes.String(),
			ClosedLanes: r.ClosedLanes.String(),
		}
		props.Tooltip = tooltipHTML(props)
		features = append(features, feature{
			Type: "Feature",
			Geometry: lineString{
				Type:        "LineString",
				Coordinates: coords,
			},
			Properties: props,
		})
	}
	return featureCollection{Type: "FeatureCollection", Features: features}
}

// tooltipHTML renders the hover box shown for a closure segment.
func tooltipHTML(p featureProperties) string {
	return fmt.Sprintf(
		"<b>Name:</b> %s<br><b>Description:</b> %s<br><b>From:</b> %s<br><b>To:</b> %s<br><b>Cause:</b> %s<br><b>Open carriageways:</b> %s<br><b>Closed carriageways:</b> %s",
		p.Name, p.Description, p.Start, p.End, p.Cause, p.OpenLanes, p.ClosedLanes,
	)
}
