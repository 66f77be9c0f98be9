// Package ecsbridge exposes the controller as a donburi component and
// system, for hosts that schedule their simulation through an ECS world.
package ecsbridge

import (
	"log"

	"github.com/milk9111/stride"
	"github.com/yohamta/donburi"
)

// ControllerData ties one controller and its pending intent to an entity.
// Intent is consumed and cleared by Step each tick.
type ControllerData struct {
	Controller *stride.Controller
	Intent     stride.Intent
}

var Controller = donburi.NewComponentType[ControllerData]()

// Spawn creates an entity carrying ctrl and returns its entry.
func Spawn(w donburi.World, ctrl *stride.Controller) *donburi.Entry {
	entry := w.Entry(w.Create(Controller))
	Controller.SetValue(entry, ControllerData{Controller: ctrl})
	return entry
}

// SetIntent stores the intent the next Step consumes for this entity.
func SetIntent(entry *donburi.Entry, intent stride.Intent) {
	Controller.Get(entry).Intent = intent
}

// Step ticks every controller entity. Per-entity failures are logged and do
// not abort the rest of the world.
func Step(w donburi.World, dt float64) {
	Controller.Each(w, func(entry *donburi.Entry) {
		data := Controller.Get(entry)
		if data.Controller == nil {
			return
		}
		if err := data.Controller.Step(dt, data.Intent); err != nil {
			log.Printf("ecsbridge: body %d skipped this tick: %v", data.Controller.Body(), err)
		}
		data.Intent = stride.Intent{}
	})
}
