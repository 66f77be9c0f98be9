// Package resolvspace implements the backend contract on top of
// github.com/solarlune/resolv, a kinematic AABB collision space. resolv has
// no sweep queries or contact normals of its own, so casts are emulated
// with checked moves and normals are derived from tags: plain solids report
// face normals, ramps report their incline normal.
package resolvspace

import (
	"fmt"
	"math"
	"sync"

	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/common"
	"github.com/solarlune/resolv"
)

// Tags understood by the world. Bodies carry none of them, which is what
// keeps casts from hitting the casting body itself.
const (
	TagSolid       = "solid"
	TagRampUpRight = "ramp-up-right"
	TagRampUpLeft  = "ramp-up-left"
)

var castTags = []string{TagSolid, TagRampUpRight, TagRampUpLeft}

type bodyEntry struct {
	obj       *resolv.Object
	vel       common.Vec
	force     common.Vec
	mass      float64
	kinematic bool
}

// World owns a resolv space plus velocity bookkeeping, which resolv itself
// does not track. Casts mutate the shared space (the probe object registers
// into cells), so all access is serialized behind one mutex; controllers
// may therefore step in parallel against one World.
type World struct {
	mu       sync.Mutex
	space    *resolv.Space
	bodies   map[backend.BodyID]*bodyEntry
	nextID   backend.BodyID
	cellSize float64
}

// NewWorld creates a space of width×height world units partitioned into
// cellSize cells.
func NewWorld(width, height, cellSize int) *World {
	return &World{
		space:    resolv.NewSpace(width, height, cellSize, cellSize),
		bodies:   make(map[backend.BodyID]*bodyEntry),
		nextID:   1,
		cellSize: float64(cellSize),
	}
}

// Space exposes the underlying resolv space.
func (w *World) Space() *resolv.Space {
	return w.space
}

// AddBody creates a controlled box body centered at pos.
func (w *World) AddBody(pos common.Vec, shape backend.Shape, mass float64, kinematic bool) backend.BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()
	if mass <= 0 {
		mass = 1
	}
	width := shape.Radius * 2
	height := shape.HalfHeight * 2
	obj := resolv.NewObject(pos.X-shape.Radius, pos.Y-shape.HalfHeight, width, height)
	w.space.Add(obj)

	id := w.nextID
	w.nextID++
	w.bodies[id] = &bodyEntry{obj: obj, mass: mass, kinematic: kinematic}
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
	w.space.Remove(entry.obj)
	delete(w.bodies, id)
}

// AddSolidRect adds a static solid tile.
func (w *World) AddSolidRect(x, y, width, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	obj := resolv.NewObject(x, y, width, height, TagSolid)
	w.space.Add(obj)
}

// AddRamp adds a static ramp occupying the rect, rising toward +X when
// upRight is true.
func (w *World) AddRamp(x, y, width, height float64, upRight bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tag := TagRampUpLeft
	if upRight {
		tag = TagRampUpRight
	}
	obj := resolv.NewObject(x, y, width, height, tag)
	w.space.Add(obj)
}

// Step integrates accumulated forces and velocities, resolving collisions
// one axis at a time the way the space's other users move objects.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, entry := range w.bodies {
		if entry.kinematic {
			continue
		}
		entry.vel = entry.vel.Add(entry.force.Scale(dt / entry.mass))
		entry.force = common.Vec{}
		w.moveChecked(entry, entry.vel.Scale(dt))
	}
}

func (w *World) moveChecked(entry *bodyEntry, delta common.Vec) {
	dx := delta.X
	if dx != 0 {
		if check := entry.obj.Check(dx, 0, TagSolid); check != nil {
			if objs := check.ObjectsByTags(TagSolid); len(objs) > 0 {
				contact := check.ContactWithObject(objs[0])
				dx = contact.X()
				entry.vel.X = 0
			}
		}
		entry.obj.X += dx
	}

	dy := delta.Y
	if dy != 0 {
		if check := entry.obj.Check(0, dy, TagSolid); check != nil {
			if objs := check.ObjectsByTags(TagSolid); len(objs) > 0 {
				contact := check.ContactWithObject(objs[0])
				dy = contact.Y()
				entry.vel.Y = 0
			}
		}
		entry.obj.Y += dy
	}

	// Ramps are walked, not collided with: snap up to the surface when the
	// body has sunk below it.
	if check := entry.obj.Check(0, 1, TagRampUpRight, TagRampUpLeft); check != nil {
		for _, ramp := range check.Objects {
			surfaceY := rampSurfaceY(entry.obj, ramp)
			if entry.obj.Y+entry.obj.H > surfaceY {
				entry.obj.Y = surfaceY - entry.obj.H
				if entry.vel.Y > 0 {
					entry.vel.Y = 0
				}
			}
		}
	}

	entry.obj.Update()
}

// rampSurfaceY reports the ramp surface height at the object's center X.
func rampSurfaceY(obj, ramp *resolv.Object) float64 {
	centerX := obj.X + obj.W/2
	relative := common.Clamp(centerX-ramp.X, 0, ramp.W)
	t := relative / ramp.W
	if ramp.HasTags(TagRampUpRight) {
		return ramp.Y + ramp.H*(1-t)
	}
	return ramp.Y + ramp.H*t
}

func rampNormal(ramp *resolv.Object) common.Vec {
	if ramp.HasTags(TagRampUpRight) {
		return common.Vec{X: -ramp.H, Y: -ramp.W}.Normalize()
	}
	return common.Vec{X: ramp.H, Y: -ramp.W}.Normalize()
}

func (w *World) entry(id backend.BodyID) (*bodyEntry, error) {
	entry, ok := w.bodies[id]
	if !ok {
		return nil, fmt.Errorf("resolvspace body %d: %w", id, backend.ErrBodyNotFound)
	}
	return entry, nil
}

// CastShape emulates a sweep with a temporary probe object marched one cell
// at a time, since resolv checks only the destination cells of a move.
// Bodies carry no cast tags, so the probe can never report the casting body
// itself.
func (w *World) CastShape(body backend.BodyID, origin, dir common.Vec, maxDist float64, shape backend.Shape) (backend.Hit, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.entry(body); err != nil {
		return backend.Hit{}, false, err
	}
	if dir.IsZero() || maxDist <= 0 || shape.Radius <= 0 {
		return backend.Hit{}, false, fmt.Errorf("resolvspace cast dir=%v maxDist=%g radius=%g: %w", dir, maxDist, shape.Radius, backend.ErrQueryFailed)
	}

	unit := dir.Normalize()

	probe := resolv.NewObject(origin.X-shape.Radius, origin.Y-shape.HalfHeight, shape.Radius*2, shape.HalfHeight*2)
	w.space.Add(probe)
	defer w.space.Remove(probe)

	traveled := 0.0
	for traveled < maxDist {
		step := math.Min(w.cellSize, maxDist-traveled)
		delta := unit.Scale(step)

		if check := probe.Check(delta.X, delta.Y, castTags...); check != nil {
			if hit, found := w.closestHit(check, probe, unit, traveled, maxDist); found {
				return hit, true, nil
			}
		}

		probe.X += delta.X
		probe.Y += delta.Y
		probe.Update()
		traveled += step
	}
	return backend.Hit{}, false, nil
}

// closestHit ranks the checked objects by distance along the cast. resolv
// checks reach at least one unit regardless of delta, so hits past maxDist
// are discarded here.
func (w *World) closestHit(check *resolv.Collision, probe *resolv.Object, unit common.Vec, traveled, maxDist float64) (backend.Hit, bool) {
	best := backend.Hit{Distance: math.Inf(1)}
	found := false
	for _, obj := range check.Objects {
		var hit backend.Hit
		if obj.HasTags(TagRampUpRight) || obj.HasTags(TagRampUpLeft) {
			// Ramp distance only makes sense for a downward probe.
			if unit.Y <= 0 {
				continue
			}
			surfaceY := rampSurfaceY(probe, obj)
			dist := (surfaceY - (probe.Y + probe.H)) / unit.Y
			if dist < 0 {
				dist = 0
			}
			hit = backend.Hit{
				Point:    common.Vec{X: probe.X + probe.W/2, Y: surfaceY},
				Normal:   rampNormal(obj),
				Distance: traveled + dist,
			}
		} else {
			contact := check.ContactWithObject(obj)
			free := common.Vec{X: contact.X(), Y: contact.Y()}
			dist := free.Dot(unit)
			if dist < 0 {
				dist = 0
			}
			center := common.Vec{X: probe.X + probe.W/2, Y: probe.Y + probe.H/2}
			hit = backend.Hit{
				Point:    center.Add(unit.Scale(dist)),
				Normal:   faceNormal(unit),
				Distance: traveled + dist,
			}
		}
		if hit.Distance > maxDist {
			continue
		}
		if hit.Distance < best.Distance {
			best = hit
			found = true
		}
	}
	return best, found
}

// faceNormal picks the AABB face normal opposing the dominant cast axis.
func faceNormal(dir common.Vec) common.Vec {
	if math.Abs(dir.Y) >= math.Abs(dir.X) {
		if dir.Y > 0 {
			return common.Vec{X: 0, Y: -1}
		}
		return common.Vec{X: 0, Y: 1}
	}
	if dir.X > 0 {
		return common.Vec{X: -1, Y: 0}
	}
	return common.Vec{X: 1, Y: 0}
}

func (w *World) Position(body backend.BodyID) (common.Vec, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return common.Vec{}, err
	}
	return common.Vec{X: entry.obj.X + entry.obj.W/2, Y: entry.obj.Y + entry.obj.H/2}, nil
}

func (w *World) LinearVelocity(body backend.BodyID) (common.Vec, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return common.Vec{}, err
	}
	return entry.vel, nil
}

func (w *World) SetLinearVelocity(body backend.BodyID, v common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	entry.vel = v
	return nil
}

func (w *World) ApplyForce(body backend.BodyID, f common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	entry.force = entry.force.Add(f)
	return nil
}

// Translate performs a checked kinematic move; resolv hosts never expect an
// object to tunnel through a solid.
func (w *World) Translate(body backend.BodyID, delta common.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	entry, err := w.entry(body)
	if err != nil {
		return err
	}
	w.moveChecked(entry, delta)
	return nil
}
