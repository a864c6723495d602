package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/sim"
)

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testSim(t *testing.T) *sim.Simulation {
	t.Helper()
	els := append(catalog.BuiltinPlanets(), orbit.Elements{
		Name: "Halley", Kind: orbit.KindComet, Perihelion: 0.586, Aphelion: 35.1,
		Eccentricity: 0.967, OrbitalPeriod: 75.3 * 365, SizeHint: 2.9,
	})
	return sim.New(els, sim.WithSegments(32))
}

func testOrrery(t *testing.T) OrreryModel {
	t.Helper()
	s := testSim(t)
	return NewOrreryModel().SetPaths(s.Bodies()).UpdateData(s.Snapshot())
}

func gridHas(grid [][]cell, r rune) bool {
	for _, row := range grid {
		for _, c := range row {
			if c.ch == r {
				return true
			}
		}
	}
	return false
}

func rowText(row []cell) string {
	var b strings.Builder
	for _, c := range row {
		b.WriteRune(c.ch)
	}
	return b.String()
}

func TestOrreryModelInit(t *testing.T) {
	m := NewOrreryModel()

	if m.focusIdx != -1 {
		t.Errorf("expected focusIdx -1 (Sun), got %d", m.focusIdx)
	}
	if m.scale() != 1.0 {
		t.Errorf("expected scale 1.0, got %f", m.scale())
	}
	if m.scaleMode != astro.ScaleLogR {
		t.Errorf("expected ScaleLogR, got %d", m.scaleMode)
	}
	if !m.ShowPaths() {
		t.Error("expected paths on by default")
	}
}

func TestOrreryModelSetSize(t *testing.T) {
	m := NewOrreryModel().SetSize(120, 40)

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestOrreryModelFocusNavigation(t *testing.T) {
	m := testOrrery(t)

	m, _ = m.Update(key('k'))
	if b := m.FocusedBody(); b == nil || b.Name != "Mercury" {
		t.Fatalf("after next, focused = %v, want Mercury", b)
	}

	m, _ = m.Update(key('k'))
	if b := m.FocusedBody(); b == nil || b.Name != "Venus" {
		t.Errorf("after next again, focused = %v, want Venus", b)
	}

	m, _ = m.Update(key('j'))
	m, _ = m.Update(key('j'))
	if m.FocusedBody() != nil {
		t.Errorf("expected Sun after two prev, got %v", m.FocusedBody())
	}

	// Wraps from the Sun to the last body
	m, _ = m.Update(key('j'))
	if b := m.FocusedBody(); b == nil || b.Name != "Halley" {
		t.Errorf("expected wrap to Halley, got %v", b)
	}
}

func TestOrreryModelFocusEmpty(t *testing.T) {
	m := NewOrreryModel()
	m, _ = m.Update(key('k'))
	if m.focusIdx != -1 {
		t.Errorf("focus moved with no bodies: %d", m.focusIdx)
	}
}

func TestOrreryModelSetFocus(t *testing.T) {
	m := testOrrery(t)

	if !m.SetFocus("saturn") {
		t.Fatal("SetFocus(saturn) = false")
	}
	if b := m.FocusedBody(); b == nil || b.Name != "Saturn" {
		t.Errorf("focused = %v, want Saturn", b)
	}

	// By ID
	if !m.SetFocus("JUP") || m.FocusedBody().Name != "Jupiter" {
		t.Errorf("SetFocus by ID failed: %v", m.FocusedBody())
	}

	if m.SetFocus("Pluto") {
		t.Error("SetFocus(Pluto) = true")
	}
	if m.FocusedBody().Name != "Jupiter" {
		t.Error("failed SetFocus changed focus")
	}
}

func TestOrreryModelFollowsFocus(t *testing.T) {
	s := testSim(t)
	m := NewOrreryModel().SetPaths(s.Bodies()).UpdateData(s.Snapshot())
	m.SetFocus("Earth")
	before := m.panY

	snap, err := s.Advance(1)
	if err != nil {
		t.Fatal(err)
	}
	m = m.UpdateData(snap)
	if m.panY == before {
		t.Error("view did not follow the focused body")
	}

	// Panning stops the follow
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	panX, panY := m.panX, m.panY
	snap, _ = s.Advance(2)
	m = m.UpdateData(snap)
	if m.panX != panX || m.panY != panY {
		t.Error("view moved after user pan")
	}
}

func TestOrreryModelFocusResetsWhenBodiesShrink(t *testing.T) {
	m := testOrrery(t)
	m.SetFocus("Halley")

	m = m.UpdateData(sim.Snapshot{Bodies: m.snap.Bodies[:2]})
	if m.FocusedBody() != nil {
		t.Errorf("expected Sun focus, got %v", m.FocusedBody())
	}
}

func TestOrreryModelZoom(t *testing.T) {
	m := NewOrreryModel()

	m, _ = m.Update(key('+'))
	if m.scale() != 1.5 {
		t.Errorf("expected scale 1.5 after zoom in, got %f", m.scale())
	}

	m, _ = m.Update(key('-'))
	if m.scale() != 1.0 {
		t.Errorf("expected scale 1.0 after zoom out, got %f", m.scale())
	}

	m, _ = m.Update(key('+'))
	m, _ = m.Update(key('+'))
	m, _ = m.Update(key('0'))
	if m.scale() != 1.0 {
		t.Errorf("expected scale 1.0 after reset, got %f", m.scale())
	}

	// Clamped at both ends
	for range zoomLevels {
		m, _ = m.Update(key('-'))
	}
	if m.scale() != zoomLevels[0] {
		t.Errorf("min zoom = %f", m.scale())
	}
	for range zoomLevels {
		m, _ = m.Update(key('='))
	}
	if m.scale() != zoomLevels[len(zoomLevels)-1] {
		t.Errorf("max zoom = %f", m.scale())
	}
}

func TestOrreryModelPan(t *testing.T) {
	m := NewOrreryModel()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.panX <= 0 {
		t.Errorf("expected panX > 0 after pan right, got %f", m.panX)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.panY >= 0 {
		t.Errorf("expected panY < 0 after pan up, got %f", m.panY)
	}

	m, _ = m.Update(key('c'))
	if m.panX != 0 || m.panY != 0 {
		t.Errorf("expected pan (0, 0) after center, got (%f, %f)", m.panX, m.panY)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(key('+'))
	m, _ = m.Update(key('r'))
	if m.panX != 0 || m.panY != 0 || m.scale() != 1.0 {
		t.Errorf("after reset pan=(%f, %f) scale=%f", m.panX, m.panY, m.scale())
	}
}

func TestOrreryModelScaleMode(t *testing.T) {
	m := NewOrreryModel()

	want := []astro.ScaleMode{astro.ScaleInner, astro.ScaleOuter, astro.ScaleLogR}
	for _, w := range want {
		m, _ = m.Update(key('z'))
		if m.scaleMode != w {
			t.Errorf("scaleMode = %v, want %v", m.scaleMode, w)
		}
	}
}

func TestOrreryModelLabelMode(t *testing.T) {
	m := NewOrreryModel()

	if m.labelMode != LabelFocused {
		t.Errorf("initial labelMode = %v, want focus", m.labelMode)
	}

	want := []LabelMode{LabelAll, LabelNone, LabelFocused}
	for _, w := range want {
		m, _ = m.Update(key('l'))
		if m.labelMode != w {
			t.Errorf("labelMode = %v, want %v", m.labelMode, w)
		}
	}
}

func TestOrreryModelView(t *testing.T) {
	m := testOrrery(t).SetSize(100, 30)

	view := m.View()
	if !strings.ContainsRune(view, sunGlyph) {
		t.Error("view should contain Sun glyph ☉")
	}
	if !strings.Contains(view, "Paths:") || !strings.Contains(view, "Zoom:") {
		t.Error("HUD missing indicators")
	}

	small := testOrrery(t).SetSize(30, 8)
	if !strings.Contains(small.View(), "too small") {
		t.Error("expected too-small message")
	}
}

func TestOrreryModelLayout(t *testing.T) {
	m := testOrrery(t).SetSize(100, 30)

	grid := m.layout()
	if !gridHas(grid, pathGlyph) {
		t.Error("expected orbit path dots")
	}
	if !gridHas(grid, '✧') {
		t.Error("expected comet glyph")
	}

	m, _ = m.Update(key('p'))
	if gridHas(m.layout(), pathGlyph) {
		t.Error("paths drawn after toggling off")
	}
}

// sparseSnapshot places two bodies well apart so labels never collide.
func sparseSnapshot() sim.Snapshot {
	return sim.Snapshot{
		AUScale: 100,
		Bodies: []sim.BodySnapshot{
			{Name: "Giant", Kind: "planet", Size: 7, BodyState: orbit.BodyState{Position: astro.Vec3{Z: 500}, Radius: 500}},
			{Name: "Comet", Kind: "comet", Size: 1, BodyState: orbit.BodyState{Position: astro.Vec3{X: -1000}, Radius: 1000}},
		},
	}
}

func TestOrreryModelSunLabel(t *testing.T) {
	m := NewOrreryModel().SetSize(100, 30).UpdateData(sparseSnapshot())

	grid := m.layout()
	cy := len(grid) / 2
	if !strings.Contains(rowText(grid[cy]), "☉ ◄ Sun") {
		t.Errorf("center row = %q", rowText(grid[cy]))
	}

	m, _ = m.Update(key('l')) // all
	grid = m.layout()
	if !strings.Contains(rowText(grid[cy]), "Comet") {
		t.Errorf("center row = %q, want Comet label", rowText(grid[cy]))
	}

	m, _ = m.Update(key('l')) // none
	if strings.Contains(rowText(m.layout()[cy]), "Sun") {
		t.Error("label drawn with labels off")
	}
}

func TestOrreryModelFocusedGlyph(t *testing.T) {
	m := NewOrreryModel().SetSize(100, 30).UpdateData(sparseSnapshot())
	m.SetFocus("Giant")

	grid := m.layout()
	cy, cx := len(grid)/2, len(grid[0])/2
	if grid[cy][cx].ch != '◉' {
		t.Errorf("center cell = %q, want ◉", grid[cy][cx].ch)
	}
	if !strings.Contains(rowText(grid[cy]), "◉ ◄ Giant") {
		t.Errorf("center row = %q", rowText(grid[cy]))
	}
	if grid[cy][cx].color == nil {
		t.Error("focused body has no colour")
	}
}

func TestBodyGlyph(t *testing.T) {
	tests := []struct {
		kind    string
		size    float64
		focused bool
		want    rune
	}{
		{"planet", 3, false, '•'},
		{"planet", 3, true, '●'},
		{"planet", 7, false, '○'},
		{"planet", 7, true, '◉'},
		{"comet", 1, false, '✧'},
		{"comet", 1, true, '✦'},
		{"neo", 1, false, '◇'},
		{"neo", 1, true, '◆'},
		{"generic", 1, false, '•'},
	}

	for _, tt := range tests {
		b := sim.BodySnapshot{Kind: tt.kind, Size: tt.size}
		if got := bodyGlyph(b, tt.focused); got != tt.want {
			t.Errorf("bodyGlyph(%s, %v, %v) = %q, want %q", tt.kind, tt.size, tt.focused, got, tt.want)
		}
	}
}
