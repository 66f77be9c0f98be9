package stride

import (
	"fmt"
	"log"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Handle addresses one controller inside a Manager. The generation half
// guards against stale handles after a slot is reused.
type Handle uint64

const handleIndexBits = 32

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<handleIndexBits | uint64(index))
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

// Valid reports whether the handle was ever issued by a Manager.
func (h Handle) Valid() bool {
	return h > 0
}

type slot struct {
	ctrl *Controller
	gen  uint32
}

// Manager owns an arena of controllers. Each slot is exclusively owned, so
// bodies can be stepped in parallel without shared mutable state.
type Manager struct {
	slots []slot
	free  []uint32
	pool  *ants.Pool
}

// NewManager creates a sequential manager.
func NewManager() *Manager {
	return &Manager{}
}

// NewParallelManager creates a manager whose StepAll fans bodies out over a
// worker pool of the given size.
func NewParallelManager(workers int) (*Manager, error) {
	pool, err := ants.NewPool(workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Manager{pool: pool}, nil
}

// Add registers a controller and returns its handle.
func (m *Manager) Add(ctrl *Controller) Handle {
	if len(m.free) > 0 {
		index := m.free[len(m.free)-1]
		m.free = m.free[:len(m.free)-1]
		s := &m.slots[index]
		s.ctrl = ctrl
		return makeHandle(index, s.gen)
	}
	// Generations start at 1 so the zero Handle stays invalid.
	m.slots = append(m.slots, slot{ctrl: ctrl, gen: 1})
	return makeHandle(uint32(len(m.slots)-1), 1)
}

// Get resolves a handle, rejecting stale generations.
func (m *Manager) Get(h Handle) (*Controller, bool) {
	index := h.index()
	if int(index) >= len(m.slots) {
		return nil, false
	}
	s := m.slots[index]
	if s.ctrl == nil || s.gen != h.generation() {
		return nil, false
	}
	return s.ctrl, true
}

// Remove releases the controller's slot. The body itself stays with the
// host.
func (m *Manager) Remove(h Handle) bool {
	index := h.index()
	if int(index) >= len(m.slots) {
		return false
	}
	s := &m.slots[index]
	if s.ctrl == nil || s.gen != h.generation() {
		return false
	}
	s.ctrl = nil
	s.gen++
	m.free = append(m.free, index)
	return true
}

// Len counts live controllers.
func (m *Manager) Len() int {
	return len(m.slots) - len(m.free)
}

// StepAll ticks every live controller with the intent the callback supplies
// for its handle. Per-body failures are logged and never abort the others.
func (m *Manager) StepAll(dt float64, intentFor func(Handle) Intent) {
	if m.pool == nil {
		m.each(func(h Handle, ctrl *Controller) {
			stepOne(h, ctrl, dt, intentFor)
		})
		return
	}

	var wg sync.WaitGroup
	m.each(func(h Handle, ctrl *Controller) {
		wg.Add(1)
		if err := m.pool.Submit(func() {
			defer wg.Done()
			stepOne(h, ctrl, dt, intentFor)
		}); err != nil {
			wg.Done()
			log.Printf("stride: submit body %d: %v", ctrl.Body(), err)
		}
	})
	wg.Wait()
}

func stepOne(h Handle, ctrl *Controller, dt float64, intentFor func(Handle) Intent) {
	var intent Intent
	if intentFor != nil {
		intent = intentFor(h)
	}
	if err := ctrl.Step(dt, intent); err != nil {
		log.Printf("stride: body %d skipped this tick: %v", ctrl.Body(), err)
	}
}

func (m *Manager) each(f func(Handle, *Controller)) {
	for i := range m.slots {
		s := m.slots[i]
		if s.ctrl == nil {
			continue
		}
		f(makeHandle(uint32(i), s.gen), s.ctrl)
	}
}

// Close releases the worker pool, if any.
func (m *Manager) Close() {
	if m.pool != nil {
		m.pool.Release()
		m.pool = nil
	}
}
