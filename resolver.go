package stride

import (
	"errors"
	"log"
	"math"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

// Output is the resolved motion for one tick. It is handed straight to the
// backend and not retained.
type Output struct {
	Velocity common.Vec
	// Kinematic marks the output as a displacement (velocity×dt) rather
	// than a dynamic velocity or force.
	Kinematic bool
}

// resolve turns intent plus this tick's ground and jump state into the
// motion to apply. Step-up is evaluated first; a transient query failure
// there only costs the adjustment, never the tick.
func (c *Controller) resolve(intent Intent, ground GroundState, vel, pos common.Vec, dt float64) (Output, error) {
	cfg := c.cfg
	out := Output{Kinematic: cfg.Mode == ApplyDisplacement}

	if cfg.Fly {
		dir := common.Vec{X: intent.MoveX, Y: intent.MoveY}
		if !dir.IsZero() {
			dir = dir.Normalize()
		}
		out.Velocity = dir.Scale(intent.speed(cfg))
		return out, nil
	}

	lift, halted, err := c.stepUp(intent, ground, vel, pos, dt)
	if err != nil {
		if !errors.Is(err, backend.ErrQueryFailed) {
			return Output{}, err
		}
		log.Printf("stride: body %d step-up probe failed, skipping: %v", c.body, err)
		lift, halted = 0, false
	}

	target := intent.MoveX * intent.speed(cfg)

	switch {
	case ground.Kind == Sloped && lift == 0:
		out.Velocity = c.slide(ground, vel, dt)
	case c.jump.Phase == PhaseGrounded:
		out.Velocity = common.Vec{
			X: common.MoveToward(vel.X, target, cfg.GroundAccel*dt),
			// Small downward bias keeps the probe in contact on uneven
			// ground.
			Y: cfg.GroundSnapSpeed,
		}
	default:
		out.Velocity = common.Vec{
			X: common.MoveToward(vel.X, target, cfg.AirAccel*dt),
			Y: c.jump.VerticalSpeed,
		}
	}

	if lift > 0 {
		out.Velocity.Y = -lift / dt
	}
	if halted {
		out.Velocity.X = 0
	}
	return out, nil
}

// slide projects velocity onto the slope tangent and blends it toward the
// downslope direction in proportion to how far past the limit the slope is.
// Projection never adds an uphill component, so steep ground cannot be
// climbed.
func (c *Controller) slide(ground GroundState, vel common.Vec, dt float64) common.Vec {
	cfg := c.cfg

	downslope := ground.Normal.Perp()
	if downslope.Y < 0 {
		downslope = downslope.Scale(-1)
	}

	base := vel.Project(downslope)

	maxSlope := cfg.MaxSlopeDeg * math.Pi / 180
	blendRange := cfg.SlideBlendDeg * math.Pi / 180
	blend := common.Clamp((ground.Angle-maxSlope)/blendRange, 0, 1)

	out := base.Add(downslope.Scale(cfg.Gravity * blend * dt))
	if out.Length() > cfg.TerminalVelocity {
		out = out.Normalize().Scale(cfg.TerminalVelocity)
	}
	return out
}

// stepUp probes ahead at foot height. It reports either the upward lift
// needed to clear a short obstacle, or halted=true when the obstruction is
// a wall at least StepHeight tall.
func (c *Controller) stepUp(intent Intent, ground GroundState, vel, pos common.Vec, dt float64) (lift float64, halted bool, err error) {
	cfg := c.cfg
	if intent.MoveX == 0 || ground.Kind == Airborne || cfg.StepHeight <= 0 {
		return 0, false, nil
	}

	dir := common.Vec{X: 1}
	if intent.MoveX < 0 {
		dir.X = -1
	}
	body := backend.Shape{Radius: cfg.Radius, HalfHeight: cfg.HalfHeight}
	ahead := cfg.SkinWidth*2 + math.Abs(vel.X)*dt

	hit, ok, err := c.backend.CastShape(c.body, pos, dir, ahead, body)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	// A walkable incline ahead is ground, not an obstacle.
	angle := math.Acos(common.Clamp(hit.Normal.Dot(common.Up), -1, 1))
	if angle <= cfg.MaxSlopeDeg*math.Pi/180 {
		return 0, false, nil
	}

	// Re-cast from StepHeight up: anything still blocking there is a wall.
	lifted := pos.Add(common.Up.Scale(cfg.StepHeight))
	if _, blocked, err := c.backend.CastShape(c.body, lifted, dir, ahead, body); err != nil {
		return 0, false, err
	} else if blocked {
		return 0, true, nil
	}

	// Measure the obstacle top from above to lift by exactly its height.
	// The measuring sweep starts at the lifted body's bottom sphere center,
	// moved forward over the obstacle.
	foot := backend.Shape{Radius: cfg.Radius, HalfHeight: cfg.Radius}
	over := common.Vec{
		X: pos.X + dir.X*ahead,
		Y: pos.Y + cfg.HalfHeight - cfg.Radius - cfg.StepHeight,
	}
	top, ok, err := c.backend.CastShape(c.body, over, common.Vec{X: 0, Y: 1}, cfg.StepHeight+cfg.SkinWidth, foot)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	lift = cfg.StepHeight - top.Distance
	if lift <= 0 {
		return 0, false, nil
	}
	return lift, false, nil
}
