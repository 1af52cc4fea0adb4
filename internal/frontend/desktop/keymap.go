package desktop

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/chip8"
)

// keymap maps every keypad key to a key on the left side of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  <-  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keymap = [chip8.NumKeys]ebiten.Key{
	0x0: ebiten.KeyX,
	0x1: ebiten.Key1,
	0x2: ebiten.Key2,
	0x3: ebiten.Key3,
	0x4: ebiten.KeyQ,
	0x5: ebiten.KeyW,
	0x6: ebiten.KeyE,
	0x7: ebiten.KeyA,
	0x8: ebiten.KeyS,
	0x9: ebiten.KeyD,
	0xA: ebiten.KeyZ,
	0xB: ebiten.KeyC,
	0xC: ebiten.Key4,
	0xD: ebiten.KeyR,
	0xE: ebiten.KeyF,
	0xF: ebiten.KeyV,
}
