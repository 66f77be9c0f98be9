package stride

import (
	"math"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

// fakeBackend scripts backend responses for probe/resolver/facade tests.
// castFn receives every cast; tests usually dispatch on the cast direction.
type fakeBackend struct {
	pos common.Vec
	vel common.Vec

	posErr error
	velErr error

	castFn func(origin, dir common.Vec, maxDist float64, shape backend.Shape) (backend.Hit, bool, error)

	setVels    []common.Vec
	forces     []common.Vec
	translates []common.Vec
}

func (f *fakeBackend) CastShape(_ backend.BodyID, origin, dir common.Vec, maxDist float64, shape backend.Shape) (backend.Hit, bool, error) {
	if f.castFn == nil {
		return backend.Hit{}, false, nil
	}
	return f.castFn(origin, dir, maxDist, shape)
}

func (f *fakeBackend) Position(backend.BodyID) (common.Vec, error) {
	if f.posErr != nil {
		return common.Vec{}, f.posErr
	}
	return f.pos, nil
}

func (f *fakeBackend) LinearVelocity(backend.BodyID) (common.Vec, error) {
	if f.velErr != nil {
		return common.Vec{}, f.velErr
	}
	return f.vel, nil
}

func (f *fakeBackend) SetLinearVelocity(_ backend.BodyID, v common.Vec) error {
	f.setVels = append(f.setVels, v)
	f.vel = v
	return nil
}

func (f *fakeBackend) ApplyForce(_ backend.BodyID, force common.Vec) error {
	f.forces = append(f.forces, force)
	return nil
}

func (f *fakeBackend) Translate(_ backend.BodyID, delta common.Vec) error {
	f.translates = append(f.translates, delta)
	return nil
}

func (f *fakeBackend) lastSetVel() (common.Vec, bool) {
	if len(f.setVels) == 0 {
		return common.Vec{}, false
	}
	return f.setVels[len(f.setVels)-1], true
}

// slopeNormal builds the contact normal of a surface inclined deg degrees
// from horizontal, rising toward +X when upRight is true.
func slopeNormal(deg float64, upRight bool) common.Vec {
	rad := deg * math.Pi / 180
	x := math.Sin(rad)
	if upRight {
		x = -x
	}
	return common.Vec{X: x, Y: -math.Cos(rad)}
}

// groundCasts returns a castFn reporting flat ground at the given gap for
// downward casts and nothing ahead.
func groundCasts(gap float64) func(common.Vec, common.Vec, float64, backend.Shape) (backend.Hit, bool, error) {
	return func(origin, dir common.Vec, maxDist float64, _ backend.Shape) (backend.Hit, bool, error) {
		if dir.Y <= 0 {
			return backend.Hit{}, false, nil
		}
		if gap > maxDist {
			return backend.Hit{}, false, nil
		}
		return backend.Hit{
			Point:    common.Vec{X: origin.X, Y: origin.Y + gap},
			Normal:   common.Up,
			Distance: gap,
		}, true, nil
	}
}
