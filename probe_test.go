package stride

import (
	"errors"
	"fmt"
	"testing"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

func TestClassifyGround(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name     string
		gap      float64
		deg      float64
		noHit    bool
		velY     float64
		wantKind GroundKind
	}{
		{name: "flat_contact", gap: 0.02, deg: 0, wantKind: Grounded},
		{name: "gentle_slope", gap: 0.02, deg: 20, wantKind: Grounded},
		{name: "just_below_limit", gap: 0.02, deg: 44.9, wantKind: Grounded},
		{name: "just_above_limit", gap: 0.02, deg: 45.1, wantKind: Sloped},
		{name: "steep_slope", gap: 0.02, deg: 70, wantKind: Sloped},
		{name: "no_contact", noHit: true, wantKind: Airborne},
		{name: "contact_beyond_skin", gap: 0.1, deg: 0, wantKind: Airborne},
		{name: "rising_through_skin", gap: 0.02, deg: 0, velY: -5, wantKind: Airborne},
		{name: "slow_rise_still_grounded", gap: 0.02, deg: 0, velY: -0.5, wantKind: Grounded},
		{name: "falling_contact", gap: 0.02, deg: 0, velY: 3, wantKind: Grounded},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fb := &fakeBackend{}
			fb.castFn = func(origin, dir common.Vec, maxDist float64, _ backend.Shape) (backend.Hit, bool, error) {
				if c.noHit {
					return backend.Hit{}, false, nil
				}
				return backend.Hit{
					Point:    origin.Add(dir.Scale(c.gap)),
					Normal:   slopeNormal(c.deg, true),
					Distance: c.gap,
				}, true, nil
			}

			got, err := classifyGround(fb, 1, cfg, common.Vec{}, common.Vec{Y: c.velY})
			if err != nil {
				t.Fatalf("classifyGround: %v", err)
			}
			if got.Kind != c.wantKind {
				t.Fatalf("kind = %v, want %v", got.Kind, c.wantKind)
			}
			if got.Kind != Airborne && got.Distance != c.gap {
				t.Fatalf("distance = %g, want %g", got.Distance, c.gap)
			}
		})
	}
}

func TestClassifyGroundProbeOrigin(t *testing.T) {
	cfg := DefaultConfig()
	fb := &fakeBackend{}

	var gotOrigin common.Vec
	var gotShape backend.Shape
	fb.castFn = func(origin, dir common.Vec, maxDist float64, shape backend.Shape) (backend.Hit, bool, error) {
		gotOrigin = origin
		gotShape = shape
		if dir.Y <= 0 {
			t.Fatalf("ground probe must cast downward, got %v", dir)
		}
		if maxDist != cfg.probeDistance() {
			t.Fatalf("probe range = %g, want %g", maxDist, cfg.probeDistance())
		}
		return backend.Hit{}, false, nil
	}

	pos := common.Vec{X: 3, Y: 7}
	if _, err := classifyGround(fb, 1, cfg, pos, common.Vec{}); err != nil {
		t.Fatalf("classifyGround: %v", err)
	}

	wantY := pos.Y + cfg.HalfHeight - cfg.Radius
	if gotOrigin.X != pos.X || !common.Approx(gotOrigin.Y, wantY) {
		t.Fatalf("probe origin = %v, want (%g, %g)", gotOrigin, pos.X, wantY)
	}
	if gotShape.Radius != cfg.Radius {
		t.Fatalf("probe radius = %g, want %g", gotShape.Radius, cfg.Radius)
	}
}

func TestClassifyGroundPropagatesQueryError(t *testing.T) {
	cfg := DefaultConfig()
	fb := &fakeBackend{}
	fb.castFn = func(common.Vec, common.Vec, float64, backend.Shape) (backend.Hit, bool, error) {
		return backend.Hit{}, false, fmt.Errorf("degenerate probe: %w", backend.ErrQueryFailed)
	}

	_, err := classifyGround(fb, 1, cfg, common.Vec{}, common.Vec{})
	if !errors.Is(err, backend.ErrQueryFailed) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}
