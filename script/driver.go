// Package script drives MovementIntent from a tengo script, so AI bodies
// can share the exact movement pipeline players use. The script runs once
// per tick: it reads the __-prefixed inputs and assigns the intent globals.
//
//	if __grounded && __pos_x < 40 {
//		move_x = 1.0
//	} else {
//		move_x = 0.0
//		jump = true
//	}
package script

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/stride"
)

// State is the per-tick view of the controlled body handed to the script.
type State struct {
	Tick     int64
	PosX     float64
	PosY     float64
	VelX     float64
	VelY     float64
	Grounded bool
	// State is the controller's animation-level state name.
	State string
}

// Driver owns one compiled script. It is not safe for concurrent use; give
// each body its own driver.
type Driver struct {
	path     string
	compiled *tengo.Compiled
}

// NewDriver loads and compiles the script at path.
func NewDriver(path string) (*Driver, error) {
	d := &Driver{path: path}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload recompiles the script from disk, for hot-reload workflows.
func (d *Driver) Reload() error {
	src, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("read script %s: %w", d.path, err)
	}
	compiled, err := compileSource(src)
	if err != nil {
		return fmt.Errorf("compile script %s: %w", d.path, err)
	}
	d.compiled = compiled
	return nil
}

func compileSource(src []byte) (*tengo.Compiled, error) {
	script := tengo.NewScript(src)

	// Inputs.
	_ = script.Add("__tick", int64(0))
	_ = script.Add("__pos_x", 0.0)
	_ = script.Add("__pos_y", 0.0)
	_ = script.Add("__vel_x", 0.0)
	_ = script.Add("__vel_y", 0.0)
	_ = script.Add("__grounded", false)
	_ = script.Add("__state", "")

	// Outputs the script assigns.
	_ = script.Add("move_x", 0.0)
	_ = script.Add("move_y", 0.0)
	_ = script.Add("jump", false)
	_ = script.Add("sprint", false)
	_ = script.Add("crouch", false)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	return script.Compile()
}

// Intent runs the script against the body state and collects the intent it
// assigned.
func (d *Driver) Intent(s State) (stride.Intent, error) {
	sets := []struct {
		name  string
		value any
	}{
		{"__tick", s.Tick},
		{"__pos_x", s.PosX},
		{"__pos_y", s.PosY},
		{"__vel_x", s.VelX},
		{"__vel_y", s.VelY},
		{"__grounded", s.Grounded},
		{"__state", s.State},

		// Globals survive between runs, so outputs reset each tick or a
		// one-off jump assignment would fire forever.
		{"move_x", 0.0},
		{"move_y", 0.0},
		{"jump", false},
		{"sprint", false},
		{"crouch", false},
	}
	for _, set := range sets {
		if err := d.compiled.Set(set.name, set.value); err != nil {
			return stride.Intent{}, fmt.Errorf("set %s: %w", set.name, err)
		}
	}

	if err := d.compiled.Run(); err != nil {
		return stride.Intent{}, fmt.Errorf("run script %s: %w", d.path, err)
	}

	return stride.Intent{
		MoveX:  d.compiled.Get("move_x").Float(),
		MoveY:  d.compiled.Get("move_y").Float(),
		Jump:   d.compiled.Get("jump").Bool(),
		Sprint: d.compiled.Get("sprint").Bool(),
		Crouch: d.compiled.Get("crouch").Bool(),
	}, nil
}
