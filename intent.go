package stride

// Intent is the per-tick movement request for one body. The host's input
// mapper (keyboard, gamepad, AI script) rebuilds it every tick; nothing in
// it persists.
type Intent struct {
	// MoveX is the desired horizontal direction in [-1, 1]. Zero means
	// stop.
	MoveX float64

	// MoveY is only honored in fly mode, where intent drives both axes.
	MoveY float64

	// Jump is the edge-triggered jump press for this tick. The press is
	// buffered, so setting it once is enough even slightly before landing.
	Jump bool

	Sprint bool
	Crouch bool
}

// speed resolves the desired ground speed for this intent.
func (in Intent) speed(cfg Config) float64 {
	speed := cfg.WalkSpeed
	if in.Sprint {
		speed = cfg.RunSpeed
	}
	if in.Crouch {
		speed *= cfg.CrouchScale
	}
	return speed
}
