package astro

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"unit y", Vec3{0, 1, 0}, 1},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 0, 4}, 5},
		{"negative", Vec3{-3, 0, -4}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3PlanarNorm(t *testing.T) {
	v := Vec3{X: 3, Y: 12, Z: 4}
	if got := v.PlanarNorm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("PlanarNorm() = %v, want 5 (Y must be ignored)", got)
	}
}

func TestProjectTopDown(t *testing.T) {
	cfg := DefaultProjectionConfig()

	tests := []struct {
		name      string
		v         Vec3
		wantAngle float64 // degrees on screen
		wantR     float64 // AU
	}{
		{"1 AU along +X", Vec3{100, 0, 0}, 0, 1},
		{"1 AU along +Z", Vec3{0, 0, 100}, 90, 1},
		{"1 AU along -X", Vec3{-100, 0, 0}, 180, 1},
		{"1 AU along -Z", Vec3{0, 0, -100}, -90, 1},
		{"5 AU at 45 degrees", Vec3{500 / math.Sqrt(2), 0, 500 / math.Sqrt(2)}, 45, 5},
		{"10 AU with Y offset", Vec3{1000, 200, 0}, 0, math.Sqrt(104)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectTopDown(tt.v, cfg)

			gotAngle := math.Atan2(got.Y, got.X) * 180 / math.Pi
			angleDiff := math.Abs(gotAngle - tt.wantAngle)
			if angleDiff > 180 {
				angleDiff = 360 - angleDiff
			}
			if angleDiff > 0.1 {
				t.Errorf("angle = %.2f°, want %.2f°", gotAngle, tt.wantAngle)
			}
			if math.Abs(got.R-tt.wantR) > 0.01 {
				t.Errorf("R = %.4f, want %.4f", got.R, tt.wantR)
			}
		})
	}
}

func TestProjectTopDownAUInput(t *testing.T) {
	cfg := ProjectionConfig{Scale: 1, Mode: ScaleInner}
	got := ProjectTopDown(Vec3{X: 2}, cfg)
	if math.Abs(got.X-2) > 1e-12 || got.R != 2 {
		t.Errorf("UnitsPerAU=0 should treat input as AU, got %+v", got)
	}
}

func TestScaleModes(t *testing.T) {
	tests := []struct {
		name string
		mode ScaleMode
		rAU  float64
	}{
		{"log 1AU", ScaleLogR, 1},
		{"log 5AU", ScaleLogR, 5},
		{"log 20AU", ScaleLogR, 20},
		{"inner 1AU", ScaleInner, 1},
		{"inner 10AU", ScaleInner, 10},
		{"outer 1AU", ScaleOuter, 1},
		{"outer 20AU", ScaleOuter, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ProjectionConfig{Scale: 1.0, Mode: tt.mode, UnitsPerAU: 100}
			got := ProjectTopDown(Vec3{tt.rAU * 100, 0, 0}, cfg)

			if got.X < 0 {
				t.Errorf("X should be positive for +X input, got %v", got.X)
			}
			if math.Abs(got.Y) > 1e-10 {
				t.Errorf("Y should be ~0 for X-axis input, got %v", got.Y)
			}
			if tt.mode == ScaleInner && tt.rAU > 5 && got.X > 5.01 {
				t.Errorf("ScaleInner should clamp at 5, got %v for r=%v AU", got.X, tt.rAU)
			}
		})
	}
}

func TestScaleRadiusMonotonic(t *testing.T) {
	for _, mode := range []ScaleMode{ScaleLogR, ScaleOuter} {
		prev := -1.0
		for r := 0.0; r <= 40; r += 0.5 {
			got := ScaleRadius(r, mode)
			if got < prev {
				t.Fatalf("%v: ScaleRadius not monotonic at %v AU", mode, r)
			}
			prev = got
		}
	}
}

func TestScaleModeString(t *testing.T) {
	tests := []struct {
		mode ScaleMode
		want string
	}{
		{ScaleLogR, "Log"},
		{ScaleInner, "Inner"},
		{ScaleOuter, "Outer"},
		{ScaleMode(9), "?"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ScaleMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestPlaneLongitude(t *testing.T) {
	tests := []struct {
		v       Vec3
		wantDeg float64
	}{
		{Vec3{1, 0, 0}, 0},
		{Vec3{0, 0, 1}, 90},
		{Vec3{-1, 0, 0}, 180},
		{Vec3{0, 0, -1}, 270},
		{Vec3{1, 5, 1}, 45},
	}

	for _, tt := range tests {
		got := PlaneLongitude(tt.v)
		if math.Abs(got-tt.wantDeg) > 0.01 {
			t.Errorf("PlaneLongitude(%v) = %.2f°, want %.2f°", tt.v, got, tt.wantDeg)
		}
	}
}

func TestFormatLightTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{30, "30.0s"},
		{60, "1m0s"},
		{90, "1m30s"},
		{3600, "1h0m"},
		{3660, "1h1m"},
		{86400, "24h0m"},
	}

	for _, tt := range tests {
		got := FormatLightTime(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatLightTime(%.0f) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestLightTimeFromAU(t *testing.T) {
	tests := []struct {
		au   float64
		want float64 // seconds
	}{
		{0, 0},
		{1, 499.005},
		{5.2026, 2596.122},
	}

	for _, tt := range tests {
		if got := LightTimeFromAU(tt.au); math.Abs(got-tt.want) > 0.01 {
			t.Errorf("LightTimeFromAU(%v) = %v, want %v", tt.au, got, tt.want)
		}
	}
}
