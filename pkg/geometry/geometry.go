package geometry

import "github.com/inkline-team/inkline/internal/domain/entities"

// Size is a width/height pair in canvas pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement positions an asset's center on the canvas at a uniform scale
type Placement struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// zone anchors as fractions of the container
var zoneAnchors = map[entities.Zone][2]float64{
	entities.ZoneCenterMain:    {0.50, 0.45},
	entities.ZoneLeftSupport:   {0.22, 0.50},
	entities.ZoneRightNotes:    {0.78, 0.50},
	entities.ZoneTopHeader:     {0.50, 0.12},
	entities.ZoneBottomContext: {0.50, 0.85},
}

// scale hints as fractions of the container width
var hintFractions = map[entities.ScaleHint]float64{
	entities.ScaleLarge:  0.50,
	entities.ScaleMedium: 0.32,
	entities.ScaleSmall:  0.18,
}

// Place computes where to render an asset inside a named zone. Pure function
// of its inputs: the anchor comes from the zone, the target width from the
// scale hint, and the scale from the asset's native width. Unknown zones
// fall back to center, unknown hints to medium.
func Place(zone entities.Zone, hint entities.ScaleHint, container, native Size) Placement {
	anchor, ok := zoneAnchors[zone]
	if !ok {
		anchor = zoneAnchors[entities.ZoneCenterMain]
	}
	fraction, ok := hintFractions[hint]
	if !ok {
		fraction = hintFractions[entities.ScaleMedium]
	}

	scale := 1.0
	if native.Width > 0 {
		scale = container.Width * fraction / native.Width
	}

	return Placement{
		X:     container.Width * anchor[0],
		Y:     container.Height * anchor[1],
		Scale: scale,
	}
}
