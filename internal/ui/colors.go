package ui

import (
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/orbit"
)

var (
	spaceColor = mustHex("#101018")
	whiteColor = colorful.Color{R: 1, G: 1, B: 1}
	sunColor   = mustHex("#ffcc33")

	kindColors = map[string]colorful.Color{
		orbit.KindGeneric.String(): mustHex("#b0b0c0"),
		orbit.KindPlanet.String():  mustHex("#4fa3e0"),
		orbit.KindComet.String():   mustHex("#7fe0d0"),
		orbit.KindNEO.String():     mustHex("#e0a050"),
	}

	// Blue -> purple -> magenta -> pink.
	logoStops = []colorful.Color{
		mustHex("#3B82F6"),
		mustHex("#8B5CF6"),
		mustHex("#D946EF"),
		mustHex("#EC4899"),
	}
)

// minLightness keeps dark catalog colours readable on a dark terminal.
const minLightness = 0.45

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// bodyColor returns a body's display colour: its own hint when it parses,
// otherwise the colour for its kind.
func bodyColor(hint, kind string) colorful.Color {
	c, err := colorful.Hex(hint)
	if err != nil {
		var ok bool
		if c, ok = kindColors[kind]; !ok {
			c = kindColors[orbit.KindGeneric.String()]
		}
	}
	return legible(c)
}

// legible lifts very dark colours toward white until they reach minLightness.
func legible(c colorful.Color) colorful.Color {
	_, _, l := c.Hcl()
	if l >= minLightness {
		return c
	}
	return c.BlendLab(whiteColor, (minLightness-l)/(1-l)).Clamped()
}

// pathColor fades a body colour toward the background for its orbit path.
func pathColor(c colorful.Color) colorful.Color {
	return c.BlendLab(spaceColor, 0.65).Clamped()
}

// focusColor brightens a body colour for the focused body.
func focusColor(c colorful.Color) colorful.Color {
	return c.BlendLab(whiteColor, 0.35).Clamped()
}

func fg(c colorful.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// gradientColor returns the logo colour for a cell: a horizontal blend
// across logoStops, darker toward the bottom rows.
func gradientColor(col, row, width, height int) colorful.Color {
	if width <= 0 || height <= 0 {
		return logoStops[0]
	}
	x := float64(col) / float64(width)
	y := float64(row) / float64(height)

	segs := float64(len(logoStops) - 1)
	pos := x * segs
	i := int(pos)
	if i >= len(logoStops)-1 {
		i = len(logoStops) - 2
	}
	c := logoStops[i].BlendLab(logoStops[i+1], pos-float64(i))

	k := 1.0 - y*0.5
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}.Clamped()
}
