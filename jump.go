package stride

import "github.com/milk9111/stride/common"

// JumpPhase tags where the body is in the grounded/coyote/airborne cycle.
type JumpPhase int

const (
	// PhaseGrounded means standing on walkable ground.
	PhaseGrounded JumpPhase = iota
	// PhaseCoyote is the grace window after leaving ground during which a
	// jump still succeeds as if grounded.
	PhaseCoyote
	// PhaseAirborne means fully in the air; only multi-jump budget can
	// trigger further jumps.
	PhaseAirborne
)

func (p JumpPhase) String() string {
	switch p {
	case PhaseGrounded:
		return "grounded"
	case PhaseCoyote:
		return "coyote"
	default:
		return "airborne"
	}
}

// JumpState persists across ticks for one body. It owns jump buffering,
// coyote timing, the multi-jump budget, and the vertical velocity
// accumulator the resolver reads while airborne.
type JumpState struct {
	Phase JumpPhase

	// SinceGrounded counts up from the moment ground was lost; the coyote
	// window expires against it.
	SinceGrounded float64

	// Buffer is the remaining time an unconsumed jump press stays valid.
	Buffer float64

	// VerticalSpeed is the gravity accumulator, screen space (positive is
	// falling).
	VerticalSpeed float64

	// JumpsUsed counts consumptions since the last confirmed landing.
	JumpsUsed int

	// Jumping is set from consumption until landing; it distinguishes a
	// deliberate ascent from a fall.
	Jumping bool
}

// update advances the state machine one tick. ground is this tick's fresh
// classification, vel the body's measured velocity. It reports whether a
// jump was consumed this tick.
func (j *JumpState) update(cfg Config, ground GroundState, vel common.Vec, intent Intent, dt float64) bool {
	if intent.Jump {
		j.Buffer = cfg.JumpBuffer
	} else if j.Buffer > 0 {
		j.Buffer -= dt
		if j.Buffer < 0 {
			j.Buffer = 0
		}
	}

	// Landing needs both a grounded classification and a non-rising body,
	// otherwise the start of an ascent would re-ground instantly.
	if ground.Kind == Grounded && vel.Y >= 0 {
		j.Phase = PhaseGrounded
		j.SinceGrounded = 0
		j.JumpsUsed = 0
		j.Jumping = false
		j.VerticalSpeed = 0
	} else {
		switch j.Phase {
		case PhaseGrounded:
			if j.Jumping {
				j.Phase = PhaseAirborne
			} else {
				j.Phase = PhaseCoyote
				j.SinceGrounded = 0
			}
		case PhaseCoyote:
			j.SinceGrounded += dt
			if j.SinceGrounded > cfg.CoyoteTime {
				j.Phase = PhaseAirborne
				// The walked-off ground jump is forfeit once the
				// window closes; only extra budget remains.
				if j.JumpsUsed == 0 {
					j.JumpsUsed = 1
				}
			}
		}
		j.VerticalSpeed += cfg.Gravity * dt
		if j.VerticalSpeed > cfg.TerminalVelocity {
			j.VerticalSpeed = cfg.TerminalVelocity
		}
	}

	if j.Buffer > 0 && j.JumpsUsed < cfg.MaxJumps {
		j.consume(cfg)
		return true
	}
	return false
}

func (j *JumpState) consume(cfg Config) {
	j.VerticalSpeed = -cfg.JumpVelocity
	j.JumpsUsed++
	j.Buffer = 0
	j.Jumping = true
	j.Phase = PhaseAirborne
	j.SinceGrounded = 0
}
