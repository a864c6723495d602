// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/sim"
	"github.com/litescript/ls-orrery/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewOrrery ViewMode = iota
	ViewBodies
)

var viewTabs = []string{"[1] Orrery", "[2] Bodies"}

// Clock rate bounds in simulated days per wall second.
const (
	minTimeScale = 1.0 / 64
	maxTimeScale = 1 << 16

	defaultTickInterval = 50 * time.Millisecond
)

// Msg types for Bubble Tea
type (
	// TickMsg advances the simulation.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// ErrorMsg signals a simulation error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	sim      *sim.Simulation
	clock    *sim.Clock
	now      func() time.Time
	interval time.Duration

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	orrery OrreryModel
	bodies BodiesModel

	snapshot sim.Snapshot
	lastErr  error
}

// Option configures a Model.
type Option func(*Model)

// WithTickInterval sets how often the simulation advances.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithFocus focuses a body by name or ID at startup.
func WithFocus(name string) Option {
	return func(m *Model) {
		if name == "" {
			return
		}
		if !m.orrery.SetFocus(name) {
			m.statusMsg = fmt.Sprintf("No body named %q", name)
		}
	}
}

// New creates the root UI model over a simulation and its clock.
func New(s *sim.Simulation, clock *sim.Clock, opts ...Option) Model {
	m := Model{
		sim:      s,
		clock:    clock,
		now:      time.Now,
		interval: defaultTickInterval,
		viewMode: ViewOrrery,
		orrery:   NewOrreryModel().SetPaths(s.Bodies()),
		bodies:   NewBodiesModel(),
	}
	m.setSnapshot(s.Snapshot())
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.interval),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "o":
			m.viewMode = ViewOrrery
		case "2", "b":
			m.viewMode = ViewBodies
		case "tab":
			m.viewMode = (m.viewMode + 1) % ViewMode(len(viewTabs))

		case " ":
			m.togglePause()
		case ">", ".":
			m.setTimeScale(m.clock.Scale() * 2)
		case "<", ",":
			m.setTimeScale(m.clock.Scale() / 2)

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~11 lines, footer ~2 lines
		contentHeight := msg.Height - 15
		m.orrery = m.orrery.SetSize(msg.Width, contentHeight)
		m.bodies = m.bodies.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd(m.interval))
		if !m.clock.Paused() {
			snap, err := m.sim.Advance(m.clock.Now(time.Time(msg)))
			if err != nil {
				m.lastErr = err
				m.bodies = m.bodies.SetError(err)
			} else {
				m.setSnapshot(snap)
			}
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case FocusBodyMsg:
		if m.orrery.SetFocus(msg.Name) {
			m.viewMode = ViewOrrery
		}

	case ErrorMsg:
		m.lastErr = msg.Error
		m.bodies = m.bodies.SetError(msg.Error)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setSnapshot(snap sim.Snapshot) {
	m.snapshot = snap
	m.orrery = m.orrery.UpdateData(snap)
	m.bodies = m.bodies.UpdateData(snap)
}

func (m *Model) togglePause() {
	now := m.now()
	if m.clock.Paused() {
		m.clock.Resume(now)
		m.statusMsg = ""
		return
	}
	m.clock.Pause(now)
	m.statusMsg = "Paused"
}

func (m *Model) setTimeScale(scale float64) {
	scale = max(minTimeScale, min(scale, maxTimeScale))
	m.clock.SetScale(scale, m.now())
	m.statusMsg = fmt.Sprintf("Time rate %s", formatRate(scale))
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewOrrery:
		m.orrery, cmd = m.orrery.Update(msg)
	case ViewBodies:
		m.bodies, cmd = m.bodies.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewOrrery:
		content = m.orrery.View()
	case ViewBodies:
		content = m.bodies.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗       ██████╗ ██████╗ ██████╗ ███████╗██████╗ ██╗   ██╗`,
		`  ██║     ██╔════╝      ██╔═══██╗██╔══██╗██╔══██╗██╔════╝██╔══██╗╚██╗ ██╔╝`,
		`  ██║     ███████╗█████╗██║   ██║██████╔╝██████╔╝█████╗  ██████╔╝ ╚████╔╝ `,
		`  ██║     ╚════██║╚════╝██║   ██║██╔══██╗██╔══██╗██╔══╝  ██╔══██╗  ╚██╔╝  `,
		`  ███████╗███████║      ╚██████╔╝██║  ██║██║  ██║███████╗██║  ██║   ██║   `,
		`  ╚══════╝╚══════╝       ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝   ╚═╝   `,
	}

	var b strings.Builder
	b.WriteString("\n")
	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			b.WriteString(fg(gradientColor(col, row, len(runes), len(logo))).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Orbital Simulator · Top-down Orrery"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("  (c) 2025 litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

func (m Model) renderTabs() string {
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range viewTabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	date := m.clock.Date(m.now()).Format("2006-01-02")
	clock := fmt.Sprintf(" day %.1f · %s · %s", m.snapshot.Time, date, formatRate(m.clock.Scale()))

	var status string
	switch {
	case m.lastErr != nil:
		status = errorStyle.Render("ERROR: " + m.lastErr.Error())
	case m.clock.Paused():
		status = accentStyle.Render("⏸") + dimStyle.Render(clock)
	case m.snapshot.Tick == 0:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Starting simulation...")
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(clock)
		if m.snapshot.TickDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.TickDuration.Round(time.Microsecond).String() + ")")
		}
	}

	var help string
	switch m.viewMode {
	case ViewBodies:
		help = dimStyle.Render("↑↓: select | enter: show in orrery | space: pause | </>: rate")
	default:
		help = dimStyle.Render("j/k: focus | +/-: zoom | arrows: pan | f: find | l: labels | z: mode | p: paths | space: pause | </>: rate")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	base := mustHex("#504678")
	highlight := mustHex("#B4A0DC")
	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := abs(i - pos + 4)
		t := 1 - float64(min(dist, 6))/6
		result.WriteString(fg(base.BlendLab(highlight, t).Clamped()).Render(string(r)))
	}
	return result.String()
}

// Snapshot returns the latest snapshot shown.
func (m Model) Snapshot() sim.Snapshot {
	return m.snapshot
}

// FocusedBody returns the body focused in the orrery view, or nil for the Sun.
func (m Model) FocusedBody() *sim.BodySnapshot {
	return m.orrery.FocusedBody()
}

func formatRate(daysPerSec float64) string {
	return fmt.Sprintf("×%g d/s", daysPerSec)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
