package catalog

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/orbit"
)

const cometJSON = `[
  {"object_name": "P/2004 R1 (McNaught)", "q_au_1": "0.986", "q_au_2": "4.34", "p_yr": "5.48"},
  {"object_name": "45P/Honda-Mrkos-Pajdusakova", "q_au_1": 0.53, "q_au_2": 5.55, "p_yr": 5.25},
  {"object_name": "Broken", "q_au_1": "abc", "q_au_2": "4.1", "p_yr": "6.0"},
  {"object_name": "1P/Halley", "q_au_1": "0.586", "q_au_2": "35.1", "p_yr": "75.3"}
]`

func TestDetectShape(t *testing.T) {
	tests := []struct {
		rec  Record
		want Shape
	}{
		{Record{"object_name": "x", "q_au_1": "1"}, ShapeComet},
		{Record{"full_name": " 433 Eros", "a": 1.4}, ShapeNEO},
		{Record{"name": "Venus", "orbitalRadius": 20}, ShapePlanet},
		{Record{"name": "Venus", "position": map[string]any{"x": 20.0}}, ShapePlanet},
		{Record{"name": "X", "a": 1, "period": 365}, ShapeGeneric},
		{Record{"object_name": ""}, ShapeGeneric},
	}
	for _, tt := range tests {
		if got := DetectShape(tt.rec); got != tt.want {
			t.Errorf("DetectShape(%v) = %v, want %v", tt.rec, got, tt.want)
		}
	}
}

func TestRecordNumber(t *testing.T) {
	r := Record{"f": 1.5, "s": " 2.25 ", "i": 3, "empty": "", "bad": "x", "nan": "NaN", "b": true}

	tests := []struct {
		key     string
		want    float64
		ok      bool
		wantErr bool
	}{
		{"f", 1.5, true, false},
		{"s", 2.25, true, false},
		{"i", 3, true, false},
		{"empty", 0, false, false},
		{"missing", 0, false, false},
		{"bad", 0, true, true},
		{"nan", 0, true, true},
		{"b", 0, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok, err := r.Number(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("error %v does not match ErrMalformedRecord", err)
			}
			if ok != tt.ok || got != tt.want {
				t.Errorf("Number(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestConvertComet(t *testing.T) {
	el, err := Convert(Record{"object_name": "C/Test", "q_au_1": "1", "q_au_2": "3", "p_yr": "2"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if el.Kind != orbit.KindComet || el.Name != "C/Test" {
		t.Errorf("got %+v", el)
	}
	if el.OrbitalPeriod != 730 {
		t.Errorf("OrbitalPeriod = %v, want 730 days", el.OrbitalPeriod)
	}
	if el.SemiMajorAxis != 2 || el.Eccentricity != 0.5 {
		t.Errorf("a=%v e=%v, want 2 and 0.5", el.SemiMajorAxis, el.Eccentricity)
	}
	if el.SizeHint != 5 {
		t.Errorf("SizeHint = %v, want q*5", el.SizeHint)
	}

	pos, err := orbit.NewCalculator().ComputePosition(el, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pos.X-200) > 1e-9 {
		t.Errorf("comet radius = %v, want (1+3)/2*100", pos.X)
	}
}

func TestConvertNEO(t *testing.T) {
	el, err := Convert(Record{"full_name": "   433 Eros (A898 PA)", "pdes": "433", "a": "1.458", "e": "0.2229", "per_y": "1.76", "diameter": "16.84"})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if el.Name != "433 Eros (A898 PA)" || el.ID != "433" {
		t.Errorf("name/id = %q/%q", el.Name, el.ID)
	}
	if el.Kind != orbit.KindNEO {
		t.Errorf("Kind = %v", el.Kind)
	}
	if math.Abs(el.OrbitalPeriod-1.76*365) > 1e-9 {
		t.Errorf("OrbitalPeriod = %v", el.OrbitalPeriod)
	}
	if el.SizeHint != 16.84 {
		t.Errorf("SizeHint = %v, want diameter", el.SizeHint)
	}
	if q := el.PerihelionDistance(); math.Abs(q-1.458*(1-0.2229)) > 1e-12 {
		t.Errorf("perihelion = %v", q)
	}

	noDiameter, err := Convert(Record{"full_name": "2000 SG344", "a": 0.977, "e": 0.067, "per_y": 0.97})
	if err != nil {
		t.Fatal(err)
	}
	if noDiameter.SizeHint != DefaultSize {
		t.Errorf("SizeHint = %v, want default", noDiameter.SizeHint)
	}
}

func TestConvertPlanet(t *testing.T) {
	el, err := Convert(Record{
		"name": "Mercurio", "size": 2, "color": float64(0xaaaaaa),
		"orbitalRadius": 10, "orbitalSpeed": 0.02, "orbitalPeriod": 88,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if el.Phase != orbit.PhaseSpeedDriven || el.AngularSpeed != 0.02 {
		t.Errorf("expected speed-driven at 0.02, got %v / %v", el.Phase, el.AngularSpeed)
	}
	if el.Radius != orbit.RadiusFixed || el.OrbitalRadius != 10 || el.Units != orbit.UnitsDisplay {
		t.Errorf("radius policy wrong: %+v", el)
	}
	if el.Color != "#aaaaaa" {
		t.Errorf("Color = %q, want #aaaaaa", el.Color)
	}

	// The older table layout only has a start position and a period.
	old, err := Convert(Record{
		"name": "Venus", "size": 3, "color": "0xffdd99",
		"position": map[string]any{"x": 20.0, "y": 0.0, "z": 0.0}, "orbitalPeriod": 225,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if old.OrbitalRadius != 20 || old.Phase != orbit.PhaseTimeDriven {
		t.Errorf("got radius %v phase %v", old.OrbitalRadius, old.Phase)
	}
	if old.Color != "#ffdd99" {
		t.Errorf("Color = %q", old.Color)
	}
}

func TestConvertGeneric(t *testing.T) {
	el, err := Convert(Record{"id": "X1", "a": "2.5", "period": 1000, "phase": 1.5})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if el.Label() != "X1" || el.Eccentricity != 0 || el.InitialPhase != 1.5 || el.SizeHint != DefaultSize {
		t.Errorf("got %+v", el)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		sentinel error
	}{
		{"missing aphelion", Record{"object_name": "c", "q_au_1": 1, "p_yr": 3}, ErrMalformedRecord},
		{"bad number", Record{"object_name": "c", "q_au_1": "x", "q_au_2": 2, "p_yr": 3}, ErrMalformedRecord},
		{"no name", Record{"a": 1, "period": 10}, ErrMalformedRecord},
		{"bad color", Record{"name": "p", "orbitalRadius": 5, "orbitalPeriod": 9, "color": "blue"}, ErrMalformedRecord},
		{"zero period", Record{"name": "g", "a": 1, "period": 0}, orbit.ErrInvalidElements},
		{"hyperbolic", Record{"full_name": "h", "a": 1, "e": 1.2, "per_y": 1}, orbit.ErrInvalidElements},
		{"negative size", Record{"name": "p", "orbitalRadius": 5, "orbitalPeriod": 9, "size": -1}, orbit.ErrInvalidElements},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.rec)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Convert error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestBuildIsolatesFailures(t *testing.T) {
	records, err := DecodeRecords([]byte(cometJSON))
	if err != nil {
		t.Fatal(err)
	}

	batch := Build(records, 1)
	if len(batch.Bodies) != 3 {
		t.Fatalf("expected 3 bodies, got %d", len(batch.Bodies))
	}
	if len(batch.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %d", len(batch.Rejected))
	}
	rej := batch.Rejected[0]
	if rej.Index != 2 || rej.Name != "Broken" || rej.Reason != ReasonMalformed {
		t.Errorf("rejection = %+v", rej)
	}
	if !errors.Is(rej, ErrMalformedRecord) {
		t.Errorf("rejection should unwrap to ErrMalformedRecord: %v", rej)
	}

	// Survivors keep input order.
	want := []string{"P/2004 R1 (McNaught)", "45P/Honda-Mrkos-Pajdusakova", "1P/Halley"}
	for i, name := range want {
		if batch.Bodies[i].Name != name {
			t.Errorf("body %d = %q, want %q", i, batch.Bodies[i].Name, name)
		}
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	records := []Record{
		{"name": "Ceres", "a": 2.77, "e": 0.08, "period": 1680},
		{"name": "ceres", "a": 2.77, "e": 0.08, "period": 1680},
		{"name": "Vesta", "a": 2.36, "e": 0.09, "period": 1325},
	}
	batch := Build(records, 1)
	if len(batch.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(batch.Bodies))
	}
	if len(batch.Rejected) != 1 || batch.Rejected[0].Reason != ReasonDuplicate {
		t.Fatalf("expected one duplicate rejection, got %+v", batch.Rejected)
	}
	if !errors.Is(batch.Rejected[0], ErrDuplicate) {
		t.Error("duplicate rejection should match ErrDuplicate")
	}
}

func TestBuildSizeScale(t *testing.T) {
	batch := Build([]Record{{"name": "g", "a": 1, "period": 10, "diameter": 2}}, 3)
	if batch.Bodies[0].SizeHint != 6 {
		t.Errorf("SizeHint = %v, want 6", batch.Bodies[0].SizeHint)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	res := NewLoader().Load(filepath.Join(t.TempDir(), "missing.json"))
	if res.OK() {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(res.Error, fs.ErrNotExist) {
		t.Errorf("Error = %v, want fs.ErrNotExist", res.Error)
	}
	if res.Bodies == nil || len(res.Bodies) != 0 {
		t.Errorf("Bodies = %v, want empty non-nil", res.Bodies)
	}
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comets.json")
	if err := os.WriteFile(path, []byte(cometJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger := logging.New(logging.LevelDebug)
	logger.SetOutput(&buf)

	res := NewLoader(WithLogger(logger)).Load(path)
	if !res.OK() {
		t.Fatalf("Load: %v", res.Error)
	}
	if res.Source != path || len(res.Bodies) != 3 || len(res.Rejected) != 1 {
		t.Errorf("got source=%s bodies=%d rejected=%d", res.Source, len(res.Bodies), len(res.Rejected))
	}
	if !strings.Contains(buf.String(), "Broken") {
		t.Errorf("rejection not logged:\n%s", buf.String())
	}
}

func TestLoaderBadJSON(t *testing.T) {
	res := NewLoader().LoadBytes("inline", []byte(`{"not": "an array"}`))
	if res.OK() {
		t.Fatal("expected decode error")
	}
	if len(res.Bodies) != 0 {
		t.Errorf("expected no bodies, got %d", len(res.Bodies))
	}
}

func TestLoaderNonObjectElements(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		bodies    int
		rejectIdx []int
	}{
		{"number", `[{"name":"A","a":1,"period":365},42,{"name":"B","a":2,"period":700}]`, 2, []int{1}},
		{"null and string", `[null,{"name":"A","a":1,"period":365},"B"]`, 1, []int{0, 2}},
		{"nested array", `[[{"name":"A","a":1,"period":365}]]`, 0, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewLoader().LoadBytes("inline", []byte(tt.data))
			if !res.OK() {
				t.Fatalf("unexpected error: %v", res.Error)
			}
			if len(res.Bodies) != tt.bodies {
				t.Errorf("bodies = %d, want %d", len(res.Bodies), tt.bodies)
			}
			if len(res.Rejected) != len(tt.rejectIdx) {
				t.Fatalf("rejected = %v, want indices %v", res.Rejected, tt.rejectIdx)
			}
			for i, rej := range res.Rejected {
				if rej.Index != tt.rejectIdx[i] || rej.Reason != ReasonMalformed {
					t.Errorf("rejection %d = %+v", i, rej)
				}
				if !errors.Is(rej, ErrMalformedRecord) {
					t.Errorf("rejection should unwrap to ErrMalformedRecord: %v", rej)
				}
			}
		})
	}
}

func TestLoaderBuiltin(t *testing.T) {
	res := NewLoader(WithSizeScale(2)).Load("")
	if !res.OK() || res.Source != BuiltinSource {
		t.Fatalf("builtin load failed: %+v", res)
	}
	if len(res.Bodies) != len(Planets) {
		t.Fatalf("got %d bodies, want %d", len(res.Bodies), len(Planets))
	}
	for i, el := range res.Bodies {
		if err := el.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", el.Name, err)
		}
		if el.SizeHint != Planets[i].Size*2 {
			t.Errorf("%s SizeHint = %v, want %v", el.Name, el.SizeHint, Planets[i].Size*2)
		}
	}
	if Planets[0].Name != "Mercury" || Planets[0].SemiMajorAxis != 0.38710 {
		t.Errorf("unexpected first planet %+v", Planets[0])
	}

	earth := res.Bodies[2]
	if earth.Phase != orbit.PhaseTimeDriven || earth.Units != orbit.UnitsAU || earth.Radius != orbit.RadiusMean {
		t.Errorf("Earth should be time-driven in AU, got %+v", earth)
	}
	if r, err := orbit.NewCalculator().Radius(earth); err != nil || math.Abs(r-100) > 1e-9 {
		t.Errorf("Earth radius = %v, %v; want 100 display units", r, err)
	}
}
