// Package chipmunk implements the backend contract on top of
// github.com/jakecoffman/cp, a dynamic rigid-body engine. Controlled bodies
// are vertical capsules (a radius-carrying segment shape), and casts are
// radius-carrying segment queries, which sweep a circle through the space.
package chipmunk

import (
	"fmt"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
)

type bodyEntry struct {
	body   *cp.Body
	shape  *cp.Shape
	filter cp.ShapeFilter
}

// World owns a chipmunk space plus the handle table for controlled bodies.
// The space is shared by every body, so all access is serialized behind one
// mutex; controllers may therefore step in parallel against one World.
type World struct {
	mu     sync.Mutex
	space  *cp.Space
	bodies map[backend.BodyID]*bodyEntry
	nextID backend.BodyID
}

// NewWorld creates a space with the given downward gravity (screen space,
// positive pulls down). Controlled bodies opt out of space gravity because
// the controller integrates gravity itself.
func NewWorld(gravity float64) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})
	return &World{
		space:  space,
		bodies: make(map[backend.BodyID]*bodyEntry),
		nextID: 1,
	}
}

// Space exposes the underlying chipmunk space so hosts can add their own
// bodies and constraints.
func (w *World) Space() *cp.Space {
	return w.space
}

// AddBody creates a controlled capsule body centered at pos and returns its
// handle. Kinematic bodies are moved by Translate; dynamic ones by velocity.
func (w *World) AddBody(pos common.Vec, shape backend.Shape, mass float64, kinematic bool) backend.BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()

	var body *cp.Body
	if kinematic {
		body = cp.NewKinematicBody()
	} else {
		// Infinite moment keeps the capsule upright.
		body = cp.NewBody(mass, cp.INFINITY)
		// The controller owns gravity accumulation; letting the space
		// pull as well would double it.
		body.SetVelocityUpdateFunc(func(b *cp.Body, _ cp.Vector, _, dt float64) {
			b.UpdateVelocity(cp.Vector{}, 1.0, dt)
		})
	}
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	w.space.AddBody(body)

	half := shape.HalfHeight - shape.Radius
	if half < 0 {
		half = 0
	}
	capsule := cp.NewSegment(body, cp.Vector{X: 0, Y: -half}, cp.Vector{X: 0, Y: half}, shape.Radius)
	capsule.SetFriction(0)
	capsule.SetElasticity(0)

	id := w.nextID
	w.nextID++

	filter := cp.NewShapeFilter(uint(id), cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)
	capsule.SetFilter(filter)
	w.space.AddShape(capsule)

	w.bodies[id] = &bodyEntry{body: body, shape: capsule, filter: filter}
	return id
}

// RemoveBody detaches the body and invalidates its handle.
func (w *World) RemoveBody(id backend.BodyID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, ok := w.bodies[id]
	if !ok {
		return
	}
	w.space.RemoveShape(entry.shape)
	w.space.RemoveBody(entry.body)
	delete(w.bodies, id)
}

// AddSolidRect adds a static axis-aligned box, for example a level tile.
func (w *World) AddSolidRect(x, y, width, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	box := cp.NewBox2(w.space.StaticBody, cp.BB{L: x, B: y, R: x + width, T: y + height}, 0)
	box.SetFriction(1)
	box.SetElasticity(0)
	w.space.AddShape(box)
}

// AddRamp adds a static slope across the rect's diagonal, rising toward +X
// when upRight is true.
func (w *World) AddRamp(x, y, width, height float64, upRight bool) {
	if upRight {
		w.AddSegment(common.Vec{X: x, Y: y + height}, common.Vec{X: x + width, Y: y})
		return
	}
	w.AddSegment(common.Vec{X: x, Y: y}, common.Vec{X: x + width, Y: y + height})
}

// AddSegment adds a static segment, used for slopes and uneven ground.
func (w *World) AddSegment(a, b common.Vec) {
	w.mu.Lock()
	defer w.mu.Unlock()
	seg := cp.NewSegment(w.space.StaticBody, cp.Vector{X: a.X, Y: a.Y}, cp.Vector{X: b.X, Y: b.Y}, 1)
	seg.SetFriction(1)
	seg.SetElasticity(0)
	w.space.AddShape(seg)
}

// Step advances the chipmunk simulation.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.space.Step(dt)
}

func (w *World) entry(id backend.BodyID) (*bodyEntry, error) {
	entry, ok := w.bodies[id]
	if !ok {
		return nil, fmt.Errorf("chipmunk body %d: %w", id, backend.ErrBodyNotFound)
	}
	return entry, nil
}

// CastShape sweeps a circle of the shape's radius from origin along dir.
// The body's own capsule is excluded through its shape filter group.
func (w *World) CastShape(body backend.BodyID, origin, dir common.Vec, maxDist float64, shape backend.Shape) (backend.Hit, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return backend.Hit{}, false, err
	}
	if dir.IsZero() || maxDist <= 0 || shape.Radius <= 0 {
		return backend.Hit{}, false, fmt.Errorf("chipmunk cast dir=%v maxDist=%g radius=%g: %w", dir, maxDist, shape.Radius, backend.ErrQueryFailed)
	}

	start := cp.Vector{X: origin.X, Y: origin.Y}
	endVec := origin.Add(dir.Normalize().Scale(maxDist))
	end := cp.Vector{X: endVec.X, Y: endVec.Y}

	info := w.space.SegmentQueryFirst(start, end, shape.Radius, entry.filter)
	if info.Shape == nil {
		return backend.Hit{}, false, nil
	}
	return backend.Hit{
		Point:    common.Vec{X: info.Point.X, Y: info.Point.Y},
		Normal:   common.Vec{X: info.Normal.X, Y: info.Normal.Y},
		Distance: info.Alpha * maxDist,
	}, true, nil
}

func (w *World) Position(body backend.BodyID) (common.Vec, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return common.Vec{}, err
	}
	p := entry.body.Position()
	return common.Vec{X: p.X, Y: p.Y}, nil
}

func (w *World) LinearVelocity(body backend.BodyID) (common.Vec, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return common.Vec{}, err
	}
	v := entry.body.Velocity()
	return common.Vec{X: v.X, Y: v.Y}, nil
}

func (w *World) SetLinearVelocity(body backend.BodyID, v common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	entry.body.SetVelocityVector(cp.Vector{X: v.X, Y: v.Y})
	return nil
}

func (w *World) ApplyForce(body backend.BodyID, f common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	entry.body.ApplyForceAtWorldPoint(cp.Vector{X: f.X, Y: f.Y}, entry.body.Position())
	return nil
}

func (w *World) Translate(body backend.BodyID, delta common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	p := entry.body.Position()
	// The spatial index picks the move up on the next Step.
	entry.body.SetPosition(cp.Vector{X: p.X + delta.X, Y: p.Y + delta.Y})
	return nil
}
