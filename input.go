package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/tilecrowd/kinematic"
)

// Input turns keyboard and gamepad state into player intents.
type Input struct {
	Intents kinematic.Intents

	// Debug toggles, true on the frame their key is pressed.
	ToggleDebug bool
	ToggleFlow  bool
	Regenerate  bool
	CopyGrid    bool
	AddAgent    bool
	Quit        bool
}

// Update polls the devices for this frame.
func (i *Input) Update() {
	var move int
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		move--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		move++
	}

	jumpPressed := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	jumpReleased := inpututil.IsKeyJustReleased(ebiten.KeySpace)
	jumpHeld := ebiten.IsKeyPressed(ebiten.KeySpace)
	dash := inpututil.IsKeyJustPressed(ebiten.KeyShiftLeft)

	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		gid := ids[0]
		leftX := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if leftX < -0.3 {
			move = -1
		} else if leftX > 0.3 {
			move = 1
		}
		// A is the primary button, X dashes.
		jumpPressed = jumpPressed || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightBottom)
		jumpReleased = jumpReleased || inpututil.IsStandardGamepadButtonJustReleased(gid, ebiten.StandardGamepadButtonRightBottom)
		jumpHeld = jumpHeld || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom)
		dash = dash || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightLeft)
	}

	i.Intents = kinematic.Intents{
		MoveAxis:     move,
		JumpPressed:  jumpPressed,
		JumpReleased: jumpReleased,
		JumpHeld:     jumpHeld,
		DashPressed:  dash,
	}

	i.ToggleDebug = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	i.ToggleFlow = inpututil.IsKeyJustPressed(ebiten.KeyF)
	i.Regenerate = inpututil.IsKeyJustPressed(ebiten.KeyR)
	i.CopyGrid = inpututil.IsKeyJustPressed(ebiten.KeyC)
	i.AddAgent = inpututil.IsKeyJustPressed(ebiten.KeyN)
	i.Quit = inpututil.IsKeyJustPressed(ebiten.KeyF12) || inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
