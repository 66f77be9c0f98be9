// Package backend defines the capability contract between the character
// controller and whichever physics engine hosts the simulation. The
// controller only ever talks to this interface; engines are selected at
// construction time, never by runtime type inspection.
package backend

import (
	"errors"

	"github.com/milk9111/stride/common"
)

// BodyID is a stable handle to one physics body inside a World. The zero
// value is never a valid body.
type BodyID uint64

// Shape is the vertical-axis-aligned probe footprint of a controlled body.
// Backends interpret it with their own geometry: chipmunk builds a vertical
// capsule, resolvspace an axis-aligned box.
type Shape struct {
	Radius     float64
	HalfHeight float64
}

// Hit reports the closest obstruction found by a cast.
type Hit struct {
	Point    common.Vec
	Normal   common.Vec
	Distance float64
}

var (
	// ErrBodyNotFound means the handle no longer resolves to a live body.
	ErrBodyNotFound = errors.New("backend: body not found")
	// ErrQueryFailed means the backend rejected a query, for example a
	// degenerate cast direction or shape.
	ErrQueryFailed = errors.New("backend: query failed")
)

// Backend is the full query/apply contract. Implementations must not panic
// on a missing body and must guarantee that casts exclude the cast body's
// own collider and report only the closest hit.
type Backend interface {
	// CastShape sweeps shape from origin along dir (unit vector) up to
	// maxDist, ignoring body's own collider. ok is false when nothing is
	// within range.
	CastShape(body BodyID, origin, dir common.Vec, maxDist float64, shape Shape) (hit Hit, ok bool, err error)

	// Position reports the body's center in world space.
	Position(body BodyID) (common.Vec, error)

	LinearVelocity(body BodyID) (common.Vec, error)
	SetLinearVelocity(body BodyID, v common.Vec) error

	// ApplyForce accumulates a force for the next simulation step.
	ApplyForce(body BodyID, f common.Vec) error

	// Translate moves the body kinematically by delta, for hosts that
	// drive bodies by displacement instead of velocity.
	Translate(body BodyID, delta common.Vec) error
}
