// Command stridetui walks a character around a small terminal level on the
// chipmunk backend: arrows move, space jumps, shift-arrows sprint, q quits.
// Pass -script to hand the body to a tengo driver instead of the keyboard.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/stride"
	"github.com/milk9111/stride/backend"
	"github.com/milk9111/stride/backend/chipmunk"
	"github.com/milk9111/stride/common"
	"github.com/milk9111/stride/script"
)

const tickRate = 60

type rect struct {
	x, y, w, h float64
}

// The demo level: a floor, a step-able ledge, a wall, and a ramp. One world
// unit is one terminal cell.
var solids = []rect{
	{0, 28, 120, 4},  // floor
	{40, 27.7, 8, 1}, // short ledge, below step height
	{60, 22, 2, 6},   // wall
	{90, 24, 12, 4},  // platform
}

func main() {
	configPath := flag.String("config", "", "YAML controller config (defaults apply when empty)")
	scriptPath := flag.String("script", "", "tengo intent script; replaces keyboard input")
	flag.Parse()

	cfg := stride.DefaultConfig()
	if *configPath != "" {
		loaded, err := stride.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	// Terminal cells are far coarser than meters; scale the motion to
	// match unless the user tuned their own config.
	if *configPath == "" {
		cfg.HalfHeight = 1
		cfg.Radius = 0.5
		cfg.WalkSpeed = 14
		cfg.RunSpeed = 24
		cfg.JumpVelocity = 16
		cfg.Gravity = 40
		cfg.TerminalVelocity = 60
		cfg.StepHeight = 1.2
		cfg.GroundAccel = 120
		cfg.AirAccel = 50
		cfg.SkinWidth = 0.1
	}

	world := chipmunk.NewWorld(0)
	for _, s := range solids {
		world.AddSolidRect(s.x, s.y, s.w, s.h)
	}
	world.AddRamp(70, 24, 8, 4, true)

	body := world.AddBody(common.Vec{X: 10, Y: 20}, backend.Shape{Radius: cfg.Radius, HalfHeight: cfg.HalfHeight}, cfg.Mass, false)
	ctrl, err := stride.NewController(world, body, cfg)
	if err != nil {
		log.Fatal(err)
	}

	var driver *script.Driver
	if *scriptPath != "" {
		driver, err = script.NewDriver(*scriptPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	var (
		intent stride.Intent
		tick   int64
	)
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			switch {
			case key.Key() == tcell.KeyEscape || (key.Key() == tcell.KeyRune && key.Rune() == 'q'):
				return
			case key.Key() == tcell.KeyLeft:
				intent.MoveX = -1
				intent.Sprint = key.Modifiers()&tcell.ModShift != 0
			case key.Key() == tcell.KeyRight:
				intent.MoveX = 1
				intent.Sprint = key.Modifiers()&tcell.ModShift != 0
			case key.Key() == tcell.KeyDown:
				intent.MoveX = 0
			case key.Key() == tcell.KeyRune && key.Rune() == ' ':
				intent.Jump = true
			}
		case <-ticker.C:
			tick++
			if driver != nil {
				pos, _ := world.Position(body)
				vel, _ := world.LinearVelocity(body)
				scripted, err := driver.Intent(script.State{
					Tick:     tick,
					PosX:     pos.X,
					PosY:     pos.Y,
					VelX:     vel.X,
					VelY:     vel.Y,
					Grounded: ctrl.Ground().Kind == stride.Grounded,
					State:    ctrl.State(),
				})
				if err != nil {
					log.Printf("script: %v", err)
				} else {
					intent = scripted
				}
			}

			if err := ctrl.Step(1.0/tickRate, intent); err != nil {
				log.Printf("step: %v", err)
			}
			world.Step(1.0 / tickRate)
			intent.Jump = false

			draw(screen, world, body, ctrl)
		}
	}
}

func draw(screen tcell.Screen, world *chipmunk.World, body backend.BodyID, ctrl *stride.Controller) {
	screen.Clear()

	solid := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for _, s := range solids {
		for y := int(s.y); y < int(s.y+s.h); y++ {
			for x := int(s.x); x < int(s.x+s.w); x++ {
				screen.SetContent(x, y, '#', nil, solid)
			}
		}
	}
	for i := 0; i < 8; i++ {
		screen.SetContent(70+i, 27-i/2, '/', nil, solid)
	}

	pos, err := world.Position(body)
	if err == nil {
		screen.SetContent(int(pos.X), int(pos.Y), '@', nil, tcell.StyleDefault.Foreground(tcell.ColorGreen))
	}

	status := ctrl.State()
	for i, r := range status {
		screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}

	screen.Show()
}
