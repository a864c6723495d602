package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/sim"
)

// LabelMode controls which bodies carry a name label.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused body
	LabelAll                      // Every body
)

// String returns the HUD name of the mode.
func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelFocused:
		return "focus"
	case LabelAll:
		return "all"
	default:
		return "?"
	}
}

// Discrete zoom levels for clean stepping
var zoomLevels = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 5.0, 10.0}

const (
	defaultZoom = 3 // index of 1.0

	// Terminal cells are roughly twice as tall as they are wide.
	cellAspect = 0.5

	pathGlyph = '·'
	sunGlyph  = '☉'
)

// OrreryModel renders a top-down view of the simulated bodies and their
// orbit paths.
type OrreryModel struct {
	width  int
	height int
	snap   sim.Snapshot
	paths  map[string]orbit.Path // by body name

	// View state
	focusIdx   int // Index in snap.Bodies (-1 = Sun)
	zoomLevel  int
	panX       float64 // Pan offset in projected units
	panY       float64
	scaleMode  astro.ScaleMode
	labelMode  LabelMode
	userPanned bool
	showPaths  bool
}

// NewOrreryModel creates a new orrery view model.
func NewOrreryModel() OrreryModel {
	return OrreryModel{
		paths:     make(map[string]orbit.Path),
		focusIdx:  -1,
		zoomLevel: defaultZoom,
		scaleMode: astro.ScaleLogR,
		labelMode: LabelFocused,
		showPaths: true,
	}
}

func (m OrreryModel) scale() float64 {
	if m.zoomLevel < 0 || m.zoomLevel >= len(zoomLevels) {
		return 1.0
	}
	return zoomLevels[m.zoomLevel]
}

// SetSize updates the viewport size.
func (m OrreryModel) SetSize(width, height int) OrreryModel {
	m.width = width
	m.height = height
	return m
}

// SetPaths stores the orbit path of each body. Paths do not change while the
// simulation runs, so this is called once.
func (m OrreryModel) SetPaths(bodies []sim.Body) OrreryModel {
	paths := make(map[string]orbit.Path, len(bodies))
	for _, b := range bodies {
		paths[b.Elements.Label()] = b.Path
	}
	m.paths = paths
	return m
}

// UpdateData takes a new snapshot. The view follows the focused body unless
// the user has panned away.
func (m OrreryModel) UpdateData(snap sim.Snapshot) OrreryModel {
	m.snap = snap
	if m.focusIdx >= len(snap.Bodies) {
		m.focusIdx = -1
	}
	if m.focusIdx >= 0 && !m.userPanned {
		m.centerOnFocused()
	}
	return m
}

// Update handles input messages.
func (m OrreryModel) Update(msg tea.Msg) (OrreryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		step := 0.1 * m.extent()
		switch msg.String() {
		case "j", "[":
			m.focusPrev()
		case "k", "]":
			m.focusNext()

		case "up":
			m.panY -= step
			m.userPanned = true
		case "down":
			m.panY += step
			m.userPanned = true
		case "left":
			m.panX -= step
			m.userPanned = true
		case "right":
			m.panX += step
			m.userPanned = true
		case "c":
			m.panX, m.panY = 0, 0
			m.userPanned = false

		case "f":
			m.centerOnFocused()
			m.userPanned = false

		case "+", "=":
			if m.zoomLevel < len(zoomLevels)-1 {
				m.zoomLevel++
				if !m.userPanned {
					m.centerOnFocused()
				}
			}
		case "-":
			if m.zoomLevel > 0 {
				m.zoomLevel--
				if !m.userPanned {
					m.centerOnFocused()
				}
			}
		case "0":
			m.zoomLevel = defaultZoom
			if !m.userPanned {
				m.centerOnFocused()
			}

		case "z":
			m.scaleMode = (m.scaleMode + 1) % 3
			if !m.userPanned {
				m.centerOnFocused()
			}

		case "l":
			m.labelMode = (m.labelMode + 1) % 3

		case "p":
			m.showPaths = !m.showPaths

		case "r":
			m.panX, m.panY = 0, 0
			m.zoomLevel = defaultZoom
			m.userPanned = false
		}
	}
	return m, nil
}

func (m *OrreryModel) focusNext() {
	if len(m.snap.Bodies) == 0 {
		return
	}
	m.focusIdx++
	if m.focusIdx >= len(m.snap.Bodies) {
		m.focusIdx = -1
	}
	m.centerOnFocused()
	m.userPanned = false
}

func (m *OrreryModel) focusPrev() {
	if len(m.snap.Bodies) == 0 {
		return
	}
	m.focusIdx--
	if m.focusIdx < -1 {
		m.focusIdx = len(m.snap.Bodies) - 1
	}
	m.centerOnFocused()
	m.userPanned = false
}

// SetFocus focuses the body with the given name or ID, ignoring case.
// It reports whether the body was found.
func (m *OrreryModel) SetFocus(name string) bool {
	for i, b := range m.snap.Bodies {
		if strings.EqualFold(b.Name, name) || (b.ID != "" && strings.EqualFold(b.ID, name)) {
			m.focusIdx = i
			m.centerOnFocused()
			m.userPanned = false
			return true
		}
	}
	return false
}

// FocusedBody returns the focused body, or nil for the Sun.
func (m OrreryModel) FocusedBody() *sim.BodySnapshot {
	if m.focusIdx >= 0 && m.focusIdx < len(m.snap.Bodies) {
		return &m.snap.Bodies[m.focusIdx]
	}
	return nil
}

// ShowPaths reports whether orbit paths are drawn.
func (m OrreryModel) ShowPaths() bool {
	return m.showPaths
}

func (m OrreryModel) projection() astro.ProjectionConfig {
	return astro.ProjectionConfig{
		Scale:      m.scale(),
		Mode:       m.scaleMode,
		UnitsPerAU: m.snap.AUScale,
	}
}

// extent is the scaled radius of the outermost body at zoom 1, so the whole
// system fits the canvas by default. It works in projected units, the same
// division by AUScale ProjectTopDown applies to every body.
func (m OrreryModel) extent() float64 {
	var ext float64
	for _, b := range m.snap.Bodies {
		r := b.Radius
		if m.snap.AUScale > 0 {
			r /= m.snap.AUScale
		}
		ext = math.Max(ext, astro.ScaleRadius(r, m.scaleMode))
	}
	if ext <= 0 {
		return 1.5
	}
	return ext
}

// centerOnFocused pans the view to center on the focused body.
func (m *OrreryModel) centerOnFocused() {
	body := m.FocusedBody()
	if body == nil {
		m.panX, m.panY = 0, 0
		return
	}
	proj := astro.ProjectTopDown(body.Position, m.projection())
	m.panX = -proj.X
	m.panY = -proj.Y
}

// View renders the orrery view.
func (m OrreryModel) View() string {
	if m.width < 40 || m.height < 10 {
		return "Terminal too small for orrery view"
	}
	return lipgloss.JoinVertical(lipgloss.Left, renderGrid(m.layout()), m.renderHUD())
}

// cell is one character of the canvas. A zero colour means the glyph's
// default style.
type cell struct {
	ch    rune
	color *colorful.Color
}

// bodyPos tracks a body's screen position for label rendering.
type bodyPos struct {
	x, y      int
	name      string
	isFocused bool
}

// canvas maps projected coordinates onto a cell grid.
type canvas struct {
	grid         [][]cell
	originX      int
	originY      int
	displayScale float64
	cfg          astro.ProjectionConfig
}

func (c canvas) toScreen(v astro.Vec3) (int, int) {
	proj := astro.ProjectTopDown(v, c.cfg)
	x := c.originX + int(math.Round(proj.X*c.displayScale))
	y := c.originY - int(math.Round(proj.Y*c.displayScale*cellAspect))
	return x, y
}

func (c canvas) inBounds(x, y int) bool {
	return y >= 0 && y < len(c.grid) && x >= 0 && x < len(c.grid[y])
}

// layout places paths, bodies, the Sun and labels on a grid.
func (m OrreryModel) layout() [][]cell {
	// Reserve space for the HUD
	canvasH := m.height - 5
	if canvasH < 5 {
		canvasH = 5
	}
	canvasW := m.width

	grid := make([][]cell, canvasH)
	for y := range grid {
		grid[y] = make([]cell, canvasW)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	centerX := canvasW / 2
	centerY := canvasH / 2
	maxDisplayR := float64(min(centerX, centerY*2)) * 0.9
	displayScale := maxDisplayR / m.extent()

	c := canvas{
		grid:         grid,
		originX:      centerX + int(math.Round(m.panX*displayScale)),
		originY:      centerY - int(math.Round(m.panY*displayScale*cellAspect)),
		displayScale: displayScale,
		cfg:          m.projection(),
	}

	if m.showPaths {
		for _, b := range m.snap.Bodies {
			col := pathColor(bodyColor(b.Color, b.Kind))
			m.drawPath(c, m.paths[b.Name], col)
		}
	}

	var positions []bodyPos
	for i, b := range m.snap.Bodies {
		x, y := c.toScreen(b.Position)
		if !c.inBounds(x, y) {
			continue
		}
		focused := i == m.focusIdx
		col := bodyColor(b.Color, b.Kind)
		if focused {
			col = focusColor(col)
		}
		grid[y][x] = cell{ch: bodyGlyph(b, focused), color: &col}
		positions = append(positions, bodyPos{x: x, y: y, name: b.Name, isFocused: focused})
	}

	// Sun last so it is always visible
	if c.inBounds(c.originX, c.originY) {
		grid[c.originY][c.originX] = cell{ch: sunGlyph, color: &sunColor}
		positions = append(positions, bodyPos{
			x:         c.originX,
			y:         c.originY,
			name:      "Sun",
			isFocused: m.focusIdx == -1,
		})
	}

	m.renderLabels(grid, positions)
	return grid
}

// drawPath joins consecutive path points with dots on empty cells.
func (m OrreryModel) drawPath(c canvas, path orbit.Path, col colorful.Color) {
	if len(path) < 2 {
		return
	}
	px, py := c.toScreen(path[0])
	for _, p := range path[1:] {
		x, y := c.toScreen(p)
		steps := max(abs(x-px), abs(y-py), 1)
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			ix := px + int(math.Round(t*float64(x-px)))
			iy := py + int(math.Round(t*float64(y-py)))
			if c.inBounds(ix, iy) && c.grid[iy][ix].ch == ' ' {
				c.grid[iy][ix] = cell{ch: pathGlyph, color: &col}
			}
		}
		px, py = x, y
	}
}

// renderLabels draws body labels on the canvas based on label mode.
func (m OrreryModel) renderLabels(grid [][]cell, positions []bodyPos) {
	if m.labelMode == LabelNone {
		return
	}
	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}
		if pos.y < 0 || pos.y >= len(grid) {
			continue
		}

		text := pos.name
		if pos.isFocused {
			text = "◄ " + pos.name
		}

		row := grid[pos.y]
		x := pos.x + 2
		for _, r := range text {
			if x >= len(row) {
				break
			}
			// Labels may cover paths but never bodies
			if x >= 0 && (row[x].ch == ' ' || row[x].ch == pathGlyph) {
				row[x] = cell{ch: r}
			}
			x++
		}
	}
}

func bodyGlyph(b sim.BodySnapshot, focused bool) rune {
	switch b.Kind {
	case orbit.KindComet.String():
		if focused {
			return '✦'
		}
		return '✧'
	case orbit.KindNEO.String():
		if focused {
			return '◆'
		}
		return '◇'
	}
	if b.Size >= 5 {
		if focused {
			return '◉'
		}
		return '○'
	}
	if focused {
		return '●'
	}
	return '•'
}

func renderGrid(grid [][]cell) string {
	var b strings.Builder

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	styles := make(map[colorful.Color]lipgloss.Style)

	for _, row := range grid {
		for _, c := range row {
			if c.ch == ' ' {
				b.WriteRune(' ')
				continue
			}

			var style lipgloss.Style
			switch {
			case c.color != nil:
				var ok bool
				if style, ok = styles[*c.color]; !ok {
					style = fg(*c.color)
					if c.ch == sunGlyph {
						style = style.Bold(true)
					}
					styles[*c.color] = style
				}
			case c.ch == '◄':
				style = focusStyle
			default:
				style = labelStyle
			}
			b.WriteString(style.Render(string(c.ch)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func (m OrreryModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	focused := m.FocusedBody()
	if focused != nil {
		dist, light := fmt.Sprintf("%.1f units", focused.Position.PlanarNorm()), "-"
		if au, ok := focused.DistanceAU(m.snap.AUScale); ok {
			dist = fmt.Sprintf("%.3f AU", au)
			light = astro.FormatLightTime(astro.LightTimeFromAU(au))
		}
		b.WriteString(fg(bodyColor(focused.Color, focused.Kind)).Bold(true).Render(fmt.Sprintf("%c %s", bodyGlyph(*focused, true), focused.Name)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Distance:"))
		b.WriteString(valueStyle.Render(dist))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Light Time:"))
		b.WriteString(valueStyle.Render(light))
	} else {
		b.WriteString(headerStyle.Render("☉ Sun"))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("(%d bodies)", len(m.snap.Bodies))))
	}
	b.WriteString("\n")

	if focused != nil {
		b.WriteString(labelStyle.Render("Longitude:"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f°", astro.PlaneLongitude(focused.Position))))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render("Kind:"))
		b.WriteString(valueStyle.Render(focused.Kind))
		b.WriteString("  ")
	}

	pathsName := "off"
	if m.showPaths {
		pathsName = "on"
	}

	b.WriteString(dimStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(m.scaleMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2gx", m.scale())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Paths:"))
	b.WriteString(valueStyle.Render(pathsName))

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
