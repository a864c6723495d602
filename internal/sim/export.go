package sim

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// PathExport is a JSON-friendly orbit path for external renderers.
type PathExport struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Color    string       `json:"color,omitempty"`
	Radius   float64      `json:"radius"`
	Segments int          `json:"segments"`
	Ellipse  bool         `json:"ellipse,omitempty"`
	Points   []astro.Vec3 `json:"points"`
}

// PathsExport is the document written by the paths command and served by
// the HTTP adapter.
type PathsExport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	AUScale     float64      `json:"au_scale"`
	Paths       []PathExport `json:"paths"`
}

// ExportPaths converts body paths to an exportable form. With ellipse set,
// each body's true heliocentric ellipse is sampled instead of its ring.
func ExportPaths(s *Simulation, ellipse bool, generatedAt time.Time) (*PathsExport, error) {
	calc := s.Calculator()
	export := &PathsExport{
		GeneratedAt: generatedAt,
		AUScale:     calc.AUScale(),
	}

	for _, b := range s.Bodies() {
		path := b.Path
		if ellipse {
			var err error
			path, err = s.Sampler().EllipseFor(calc, b.Elements, s.Segments())
			if err != nil {
				return nil, fmt.Errorf("ellipse for %s: %w", b.Elements.Label(), err)
			}
		}
		export.Paths = append(export.Paths, PathExport{
			Name:     b.Elements.Label(),
			Kind:     b.Elements.Kind.String(),
			Color:    b.Elements.Color,
			Radius:   b.State.Radius,
			Segments: path.Segments(),
			Ellipse:  ellipse && b.Elements.Radius == orbit.RadiusMean,
			Points:   path,
		})
	}
	return export, nil
}

// WriteJSON writes the paths as indented JSON.
func (p *PathsExport) WriteJSON(w io.Writer) error {
	return writeJSON(w, p)
}

// WriteJSON writes the snapshot as indented JSON.
func (s Snapshot) WriteJSON(w io.Writer) error {
	return writeJSON(w, s)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SummaryRow is one row of the summary table.
type SummaryRow struct {
	Name      string
	Kind      string
	RadiusAU  float64
	HasAU     bool // false for display-unit bodies, which print "-"
	Longitude float64 // degrees in the orbital plane
	X, Z      float64
	Light     string
}

// GenerateSummaryRows derives table rows from a snapshot.
func GenerateSummaryRows(snap Snapshot) []SummaryRow {
	rows := make([]SummaryRow, 0, len(snap.Bodies))
	for _, b := range snap.Bodies {
		row := SummaryRow{
			Name:      b.Name,
			Kind:      b.Kind,
			Longitude: astro.PlaneLongitude(b.Position),
			X:         b.Position.X,
			Z:         b.Position.Z,
			Light:     "-",
		}
		if au, ok := b.DistanceAU(snap.AUScale); ok {
			row.RadiusAU = au
			row.HasAU = true
			row.Light = astro.FormatLightTime(astro.LightTimeFromAU(au))
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteSummaryTable writes a text table of the snapshot.
func WriteSummaryTable(w io.Writer, snap Snapshot, date time.Time) {
	rows := GenerateSummaryRows(snap)

	fmt.Fprintf(w, "Orrery @ day %.2f (%s)\n", snap.Time, date.Format("2006-01-02"))
	fmt.Fprintln(w, strings.Repeat("─", 86))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No bodies")
		return
	}

	fmt.Fprintf(w, "%-24s %-7s %9s %8s %10s %10s %-10s\n",
		"Name", "Kind", "Dist(AU)", "Lon(°)", "X", "Z", "Light")
	fmt.Fprintln(w, strings.Repeat("─", 86))

	for _, r := range rows {
		dist := "-"
		if r.HasAU {
			dist = fmt.Sprintf("%.3f", r.RadiusAU)
		}
		fmt.Fprintf(w, "%-24s %-7s %9s %8.1f %10.1f %10.1f %-10s\n",
			truncateStr(r.Name, 24),
			r.Kind,
			dist,
			r.Longitude,
			zeroNeg(r.X),
			zeroNeg(r.Z),
			r.Light,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d bodies\n", len(rows))
}

func truncateStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// zeroNeg avoids printing "-0.0" for values that round to zero.
func zeroNeg(v float64) float64 {
	if math.Abs(v) < 0.05 {
		return 0
	}
	return v
}
