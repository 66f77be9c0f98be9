// Package stride is a physics-backend-agnostic character controller. Each
// tick it classifies ground contact with a downward shape-cast, advances a
// grounded/coyote/airborne jump state machine, resolves movement intent
// into a velocity, force, or kinematic displacement, and writes the result
// back through the backend contract.
package stride

import (
	"fmt"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

// Controller orchestrates one controlled body. It owns the body's
// GroundState and JumpState for the body's lifetime; the body itself
// belongs to the host.
type Controller struct {
	backend backend.Backend
	body    backend.BodyID
	cfg     Config

	ground      GroundState
	jump        JumpState
	facingRight bool
	state       string
}

// NewController validates cfg and binds a controller to an existing body.
func NewController(b backend.Backend, body backend.BodyID, cfg Config) (*Controller, error) {
	if b == nil {
		return nil, fmt.Errorf("nil backend: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		backend:     b,
		body:        body,
		cfg:         cfg,
		facingRight: true,
		state:       "idle",
	}, nil
}

// Step runs one fixed-timestep tick in the required order: read body state,
// probe ground, advance jump/gravity, resolve movement, apply output. A
// returned error means the body did not move this tick; it never poisons
// later ticks or other bodies.
func (c *Controller) Step(dt float64, intent Intent) error {
	if dt <= 0 {
		return fmt.Errorf("step dt %g must be positive: %w", dt, ErrInvalidConfig)
	}

	pos, err := c.backend.Position(c.body)
	if err != nil {
		return fmt.Errorf("read position: %w", err)
	}
	vel, err := c.backend.LinearVelocity(c.body)
	if err != nil {
		return fmt.Errorf("read velocity: %w", err)
	}

	if c.cfg.Fly {
		c.ground = GroundState{Kind: Airborne}
	} else {
		ground, err := classifyGround(c.backend, c.body, c.cfg, pos, vel)
		if err != nil {
			return fmt.Errorf("ground probe: %w", err)
		}
		c.ground = ground
		c.jump.update(c.cfg, ground, vel, intent, dt)
	}

	out, err := c.resolve(intent, c.ground, vel, pos, dt)
	if err != nil {
		return fmt.Errorf("resolve movement: %w", err)
	}

	if err := c.apply(out, vel, dt); err != nil {
		return fmt.Errorf("apply output: %w", err)
	}

	if intent.MoveX != 0 {
		c.facingRight = intent.MoveX > 0
	}
	c.state = c.deriveState(intent, out)
	return nil
}

func (c *Controller) apply(out Output, vel common.Vec, dt float64) error {
	switch c.cfg.Mode {
	case ApplyForce:
		force := out.Velocity.Sub(vel).Scale(c.cfg.Mass / dt)
		return c.backend.ApplyForce(c.body, force)
	case ApplyDisplacement:
		return c.backend.Translate(c.body, out.Velocity.Scale(dt))
	default:
		return c.backend.SetLinearVelocity(c.body, out.Velocity)
	}
}

func (c *Controller) deriveState(intent Intent, out Output) string {
	if c.cfg.Fly {
		return "fly"
	}
	switch {
	case c.ground.Kind == Sloped:
		return "slide"
	case c.jump.Phase == PhaseGrounded:
		if intent.MoveX == 0 {
			return "idle"
		}
		return "run"
	case out.Velocity.Y < 0:
		return "jump"
	default:
		return "fall"
	}
}

// Ground is the most recent tick's classification.
func (c *Controller) Ground() GroundState { return c.ground }

// Jump is a snapshot of the jump state machine.
func (c *Controller) Jump() JumpState { return c.jump }

// State names the current animation-level state: idle, run, jump, fall,
// slide, or fly.
func (c *Controller) State() string { return c.state }

// FacingRight reports the last nonzero horizontal intent direction.
func (c *Controller) FacingRight() bool { return c.facingRight }

// Body is the backend handle this controller drives.
func (c *Controller) Body() backend.BodyID { return c.body }

// Config returns the current tunables.
func (c *Controller) Config() Config { return c.cfg }

// SetConfig swaps tunables at runtime. Invalid configs are rejected and the
// old ones stay in force.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}
