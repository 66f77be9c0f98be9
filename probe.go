package stride

import (
	"math"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

// GroundKind tags the per-tick ground classification.
type GroundKind int

const (
	// Airborne means no usable contact within probe range.
	Airborne GroundKind = iota
	// Grounded means standing contact on a walkable surface.
	Grounded
	// Sloped means contact steeper than the slope limit; the body slides
	// instead of standing.
	Sloped
)

func (k GroundKind) String() string {
	switch k {
	case Grounded:
		return "grounded"
	case Sloped:
		return "sloped"
	default:
		return "airborne"
	}
}

// GroundState is derived fresh every tick from a downward shape-cast.
type GroundState struct {
	Kind GroundKind
	// Normal is the contact normal; meaningful for Grounded and Sloped.
	Normal common.Vec
	// Distance is the gap between the body's base and the surface.
	Distance float64
	// Angle is the surface angle from horizontal, radians; meaningful for
	// Grounded and Sloped.
	Angle float64
}

// classifyGround sweeps the body's bottom sphere downward and classifies
// the contact. vel is the body's current velocity; a strongly rising body
// is forced airborne even inside skin range so a fresh jump impulse is not
// immediately re-grounded.
func classifyGround(b backend.Backend, body backend.BodyID, cfg Config, pos, vel common.Vec) (GroundState, error) {
	// Start at the bottom sphere center so the swept circle's lowest point
	// sits exactly on the base.
	origin := common.Vec{X: pos.X, Y: pos.Y + cfg.HalfHeight - cfg.Radius}
	foot := backend.Shape{Radius: cfg.Radius, HalfHeight: cfg.Radius}

	hit, ok, err := b.CastShape(body, origin, common.Vec{X: 0, Y: 1}, cfg.probeDistance(), foot)
	if err != nil {
		return GroundState{}, err
	}
	if !ok || hit.Distance > cfg.SkinWidth {
		return GroundState{Kind: Airborne}, nil
	}
	if vel.Y < -cfg.LiftoffSpeed {
		return GroundState{Kind: Airborne}, nil
	}

	angle := math.Acos(common.Clamp(hit.Normal.Dot(common.Up), -1, 1))
	state := GroundState{
		Normal:   hit.Normal,
		Distance: hit.Distance,
		Angle:    angle,
	}
	if angle <= cfg.MaxSlopeDeg*math.Pi/180 {
		state.Kind = Grounded
	} else {
		state.Kind = Sloped
	}
	return state, nil
}
