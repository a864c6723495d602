package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/sim"
)

// Styles for the bodies table
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// FocusBodyMsg asks the root model to show a body in the orrery view.
type FocusBodyMsg struct {
	Name string
}

// BodiesModel lists every body with its current distance and orbit progress.
type BodiesModel struct {
	width   int
	height  int
	cursor  int
	snap    sim.Snapshot
	lastErr error
}

// NewBodiesModel creates a new bodies table model.
func NewBodiesModel() BodiesModel {
	return BodiesModel{}
}

// SetSize updates the viewport size.
func (m BodiesModel) SetSize(width, height int) BodiesModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new snapshot.
func (m BodiesModel) UpdateData(snap sim.Snapshot) BodiesModel {
	m.snap = snap
	if m.cursor >= len(snap.Bodies) {
		m.cursor = max(len(snap.Bodies)-1, 0)
	}
	return m
}

// SetError sets the last error for display.
func (m BodiesModel) SetError(err error) BodiesModel {
	m.lastErr = err
	return m
}

// Update handles messages.
func (m BodiesModel) Update(msg tea.Msg) (BodiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := len(m.snap.Bodies)
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < n-1 {
				m.cursor++
			}
		case "home":
			m.cursor = 0
		case "end":
			if n > 0 {
				m.cursor = n - 1
			}
		case "enter":
			if b := m.SelectedBody(); b != nil {
				name := b.Name
				return m, func() tea.Msg {
					return FocusBodyMsg{Name: name}
				}
			}
		}
	}
	return m, nil
}

// SelectedBody returns the body under the cursor, if any.
func (m BodiesModel) SelectedBody() *sim.BodySnapshot {
	if m.cursor < 0 || m.cursor >= len(m.snap.Bodies) {
		return nil
	}
	b := m.snap.Bodies[m.cursor]
	return &b
}

// View renders the table.
func (m BodiesModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render(fmt.Sprintf("Bodies @ day %.1f", m.snap.Time)))
	b.WriteString("\n")

	header := fmt.Sprintf("%-20s %-7s %9s %8s %-12s %-10s",
		"Name", "Kind", "Dist(AU)", "Lon(°)", "Orbit", "Light")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	bodies := m.snap.Bodies
	if len(bodies) == 0 {
		b.WriteString("  No bodies\n")
		return b.String()
	}

	maxRows := m.height - 6
	if maxRows < 5 {
		maxRows = 5
	}
	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := min(startIdx+maxRows, len(bodies))

	for i := startIdx; i < endIdx; i++ {
		body := bodies[i]
		dist, light := "-", "-"
		if au, ok := body.DistanceAU(m.snap.AUScale); ok {
			dist = fmt.Sprintf("%.3f", au)
			light = astro.FormatLightTime(astro.LightTimeFromAU(au))
		}

		row := fmt.Sprintf("%-20s %-7s %9s %8.1f ",
			truncate(body.Name, 20),
			body.Kind,
			dist,
			astro.PlaneLongitude(body.Position),
		)
		tail := fmt.Sprintf(" %-10s", light)
		bar := m.renderOrbitBar(body, 10)

		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row) + bar + selectedRowStyle.Render(tail))
		} else {
			b.WriteString(rowStyle.Render(row) + bar + rowStyle.Render(tail))
		}
		b.WriteString("\n")
	}

	if len(bodies) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d bodies", startIdx+1, endIdx, len(bodies)))
	}
	return b.String()
}

// orbitFraction returns how far round its orbit a body is, in [0, 1).
func orbitFraction(angle float64) float64 {
	f := math.Mod(angle, 2*math.Pi) / (2 * math.Pi)
	if f < 0 {
		f++
	}
	return f
}

// renderOrbitBar draws orbit progress in the body's own colour.
func (m BodiesModel) renderOrbitBar(body sim.BodySnapshot, width int) string {
	filled := int(orbitFraction(body.OrbitAngle) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + fg(bodyColor(body.Color, body.Kind)).Render(bar) + "]"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
