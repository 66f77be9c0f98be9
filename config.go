package stride

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ApplyMode selects how the resolved motion is written back to the body.
type ApplyMode string

const (
	// ApplyVelocity sets the body's linear velocity directly.
	ApplyVelocity ApplyMode = "velocity"
	// ApplyForce converts the velocity change into a force for dynamic
	// bodies that other systems also push around.
	ApplyForce ApplyMode = "force"
	// ApplyDisplacement moves the body kinematically by velocity×dt.
	ApplyDisplacement ApplyMode = "displacement"
)

// Config holds every per-body tunable. All lengths are world units, speeds
// are units/second, durations are seconds, angles are degrees.
type Config struct {
	// Collider geometry.
	Radius     float64 `yaml:"radius"`
	HalfHeight float64 `yaml:"half_height"`
	Mass       float64 `yaml:"mass"`

	// Ground contact.
	MaxSlopeDeg     float64 `yaml:"max_slope_deg"`
	StepHeight      float64 `yaml:"step_height"`
	SkinWidth       float64 `yaml:"skin_width"`
	ProbeMultiplier float64 `yaml:"probe_multiplier"`

	// Horizontal motion.
	WalkSpeed   float64 `yaml:"walk_speed"`
	RunSpeed    float64 `yaml:"run_speed"`
	CrouchScale float64 `yaml:"crouch_scale"`
	GroundAccel float64 `yaml:"ground_accel"`
	AirAccel    float64 `yaml:"air_accel"`

	// Vertical motion.
	Gravity          float64 `yaml:"gravity"`
	TerminalVelocity float64 `yaml:"terminal_velocity"`
	JumpVelocity     float64 `yaml:"jump_velocity"`
	GroundSnapSpeed  float64 `yaml:"ground_snap_speed"`
	// LiftoffSpeed is the upward speed above which a skin-range contact is
	// still treated as airborne, so a fresh jump is not snapped back down.
	LiftoffSpeed float64 `yaml:"liftoff_speed"`

	// Jump timing.
	CoyoteTime float64 `yaml:"coyote_time"`
	JumpBuffer float64 `yaml:"jump_buffer"`
	MaxJumps   int     `yaml:"max_jumps"`

	// SlideBlendDeg is how many degrees past the slope limit fully commit
	// the slide to the downslope direction.
	SlideBlendDeg float64 `yaml:"slide_blend_deg"`

	// Fly bypasses gravity and grounding; intent drives both axes.
	Fly bool `yaml:"fly"`

	Mode ApplyMode `yaml:"mode"`
}

// DefaultConfig returns the documented defaults. Timing values match the
// usual 60 Hz tuning: 6 frames of coyote time, 10 frames of jump buffer.
func DefaultConfig() Config {
	return Config{
		Radius:     0.4,
		HalfHeight: 0.9,
		Mass:       1,

		MaxSlopeDeg:     45,
		StepHeight:      0.3,
		SkinWidth:       0.05,
		ProbeMultiplier: 4,

		WalkSpeed:   5,
		RunSpeed:    8,
		CrouchScale: 0.5,
		GroundAccel: 50,
		AirAccel:    20,

		Gravity:          9.81,
		TerminalVelocity: 50,
		JumpVelocity:     6,
		GroundSnapSpeed:  0.5,
		LiftoffSpeed:     1,

		CoyoteTime: 0.1,
		JumpBuffer: 10.0 / 60.0,
		MaxJumps:   1,

		SlideBlendDeg: 45,

		Mode: ApplyVelocity,
	}
}

// Validate reports the first out-of-range tunable.
func (c Config) Validate() error {
	switch {
	case c.Radius <= 0:
		return fmt.Errorf("radius %g must be positive: %w", c.Radius, ErrInvalidConfig)
	case c.HalfHeight < c.Radius:
		return fmt.Errorf("half_height %g must be at least radius %g: %w", c.HalfHeight, c.Radius, ErrInvalidConfig)
	case c.Mass <= 0:
		return fmt.Errorf("mass %g must be positive: %w", c.Mass, ErrInvalidConfig)
	case c.MaxSlopeDeg <= 0 || c.MaxSlopeDeg >= 90:
		return fmt.Errorf("max_slope_deg %g must be in (0, 90): %w", c.MaxSlopeDeg, ErrInvalidConfig)
	case c.StepHeight < 0:
		return fmt.Errorf("step_height %g must not be negative: %w", c.StepHeight, ErrInvalidConfig)
	case c.SkinWidth <= 0:
		return fmt.Errorf("skin_width %g must be positive: %w", c.SkinWidth, ErrInvalidConfig)
	case c.ProbeMultiplier < 1:
		return fmt.Errorf("probe_multiplier %g must be at least 1: %w", c.ProbeMultiplier, ErrInvalidConfig)
	case c.WalkSpeed < 0 || c.RunSpeed < 0:
		return fmt.Errorf("speeds (%g, %g) must not be negative: %w", c.WalkSpeed, c.RunSpeed, ErrInvalidConfig)
	case c.CrouchScale <= 0 || c.CrouchScale > 1:
		return fmt.Errorf("crouch_scale %g must be in (0, 1]: %w", c.CrouchScale, ErrInvalidConfig)
	case c.GroundAccel <= 0 || c.AirAccel < 0:
		return fmt.Errorf("accelerations (%g, %g) out of range: %w", c.GroundAccel, c.AirAccel, ErrInvalidConfig)
	case c.Gravity < 0:
		return fmt.Errorf("gravity %g must not be negative: %w", c.Gravity, ErrInvalidConfig)
	case c.TerminalVelocity <= 0:
		return fmt.Errorf("terminal_velocity %g must be positive: %w", c.TerminalVelocity, ErrInvalidConfig)
	case c.JumpVelocity < 0:
		return fmt.Errorf("jump_velocity %g must not be negative: %w", c.JumpVelocity, ErrInvalidConfig)
	case c.CoyoteTime < 0 || c.JumpBuffer < 0:
		return fmt.Errorf("jump timing (%g, %g) must not be negative: %w", c.CoyoteTime, c.JumpBuffer, ErrInvalidConfig)
	case c.MaxJumps < 1:
		return fmt.Errorf("max_jumps %d must be at least 1: %w", c.MaxJumps, ErrInvalidConfig)
	case c.SlideBlendDeg <= 0:
		return fmt.Errorf("slide_blend_deg %g must be positive: %w", c.SlideBlendDeg, ErrInvalidConfig)
	}
	switch c.Mode {
	case ApplyVelocity, ApplyForce, ApplyDisplacement:
	default:
		return fmt.Errorf("mode %q unknown: %w", c.Mode, ErrInvalidConfig)
	}
	return nil
}

// probeDistance is how far below the base the ground probe reaches.
func (c Config) probeDistance() float64 {
	return c.SkinWidth * c.ProbeMultiplier
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
