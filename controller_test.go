package stride

import (
	"errors"
	"fmt"
	"testing"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

func TestNewControllerRejectsBadInput(t *testing.T) {
	if _, err := NewController(nil, 1, DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil backend should be rejected, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Radius = -1
	if _, err := NewController(&fakeBackend{}, 1, cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("invalid config should be rejected, got %v", err)
	}
}

func TestStepRejectsNonPositiveDT(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, DefaultConfig())
	for _, dt := range []float64{0, -testDT} {
		if err := c.Step(dt, Intent{}); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("dt=%g should be rejected, got %v", dt, err)
		}
	}
}

func TestStepJumpTick(t *testing.T) {
	cfg := DefaultConfig()
	fb := &fakeBackend{}
	fb.castFn = groundCasts(0.02)
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{Jump: true}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	got, ok := fb.lastSetVel()
	if !ok {
		t.Fatalf("no velocity applied")
	}
	if got.Y != -cfg.JumpVelocity {
		t.Fatalf("launch velocity = %g, want %g", got.Y, -cfg.JumpVelocity)
	}
	if c.Jump().Phase != PhaseAirborne {
		t.Fatalf("phase after launch = %v, want airborne", c.Jump().Phase)
	}
	if c.State() != "jump" {
		t.Fatalf("state = %q, want jump", c.State())
	}
}

func TestStepIdleRunStates(t *testing.T) {
	cfg := DefaultConfig()
	fb := &fakeBackend{}
	fb.castFn = groundCasts(0.02)
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.State() != "idle" {
		t.Fatalf("state = %q, want idle", c.State())
	}
	if c.Ground().Kind != Grounded {
		t.Fatalf("ground = %v, want grounded", c.Ground().Kind)
	}

	if err := c.Step(testDT, Intent{MoveX: -1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.State() != "run" {
		t.Fatalf("state = %q, want run", c.State())
	}
	if c.FacingRight() {
		t.Fatalf("facing should follow negative intent")
	}
}

func TestStepFallState(t *testing.T) {
	cfg := DefaultConfig()
	fb := &fakeBackend{}
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.State() != "fall" {
		t.Fatalf("state = %q, want fall", c.State())
	}
	if c.Ground().Kind != Airborne {
		t.Fatalf("ground = %v, want airborne", c.Ground().Kind)
	}
}

func TestStepApplyForceMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ApplyForce
	cfg.Mass = 2
	fb := &fakeBackend{vel: common.Vec{X: 1}}
	fb.castFn = groundCasts(0.02)
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{MoveX: 1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(fb.setVels) != 0 || len(fb.translates) != 0 {
		t.Fatalf("force mode must not set velocity or translate")
	}
	if len(fb.forces) != 1 {
		t.Fatalf("expected one force, got %d", len(fb.forces))
	}

	// F = m·Δv/dt toward the resolved output.
	wantX := common.MoveToward(1, cfg.WalkSpeed, cfg.GroundAccel*testDT)
	want := common.Vec{X: wantX - 1, Y: cfg.GroundSnapSpeed}.Scale(cfg.Mass / testDT)
	got := fb.forces[0]
	if !common.Approx(got.X, want.X) || !common.Approx(got.Y, want.Y) {
		t.Fatalf("force = %v, want %v", got, want)
	}
}

func TestStepApplyDisplacementMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = ApplyDisplacement
	fb := &fakeBackend{}
	fb.castFn = groundCasts(0.02)
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{MoveX: 1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(fb.setVels) != 0 || len(fb.forces) != 0 {
		t.Fatalf("displacement mode must not set velocity or apply force")
	}
	if len(fb.translates) != 1 {
		t.Fatalf("expected one translation, got %d", len(fb.translates))
	}

	want := common.Vec{
		X: common.MoveToward(0, cfg.WalkSpeed, cfg.GroundAccel*testDT),
		Y: cfg.GroundSnapSpeed,
	}.Scale(testDT)
	got := fb.translates[0]
	if !common.Approx(got.X, want.X) || !common.Approx(got.Y, want.Y) {
		t.Fatalf("translation = %v, want %v", got, want)
	}
}

func TestStepBodyErrorsLeaveNoOutput(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("position", func(t *testing.T) {
		fb := &fakeBackend{posErr: fmt.Errorf("gone: %w", backend.ErrBodyNotFound)}
		c := newTestController(t, fb, cfg)
		if err := c.Step(testDT, Intent{}); !errors.Is(err, backend.ErrBodyNotFound) {
			t.Fatalf("expected ErrBodyNotFound, got %v", err)
		}
		if len(fb.setVels)+len(fb.forces)+len(fb.translates) != 0 {
			t.Fatalf("failed tick must not apply output")
		}
	})

	t.Run("velocity", func(t *testing.T) {
		fb := &fakeBackend{velErr: fmt.Errorf("gone: %w", backend.ErrBodyNotFound)}
		c := newTestController(t, fb, cfg)
		if err := c.Step(testDT, Intent{}); !errors.Is(err, backend.ErrBodyNotFound) {
			t.Fatalf("expected ErrBodyNotFound, got %v", err)
		}
		if len(fb.setVels)+len(fb.forces)+len(fb.translates) != 0 {
			t.Fatalf("failed tick must not apply output")
		}
	})
}

func TestStepFlyMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fly = true
	fb := &fakeBackend{}
	c := newTestController(t, fb, cfg)

	if err := c.Step(testDT, Intent{MoveY: -1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	got, ok := fb.lastSetVel()
	if !ok || got.Y != -cfg.WalkSpeed {
		t.Fatalf("fly ascent velocity = %v", got)
	}
	if c.State() != "fly" {
		t.Fatalf("state = %q, want fly", c.State())
	}
	if fb.castFn != nil {
		t.Fatalf("test invariant: fly must not need casts")
	}
}

func TestSetConfigRejectsInvalidWithoutMutating(t *testing.T) {
	c := newTestController(t, &fakeBackend{}, DefaultConfig())
	before := c.Config()

	bad := DefaultConfig()
	bad.MaxJumps = 0
	if err := c.SetConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if c.Config() != before {
		t.Fatalf("rejected config must not mutate the controller")
	}

	good := DefaultConfig()
	good.MaxJumps = 3
	if err := c.SetConfig(good); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if c.Config().MaxJumps != 3 {
		t.Fatalf("accepted config not applied")
	}
}
