package input

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var namedKeys = map[string]ebiten.Key{
	"left":   ebiten.KeyLeft,
	"right":  ebiten.KeyRight,
	"up":     ebiten.KeyUp,
	"down":   ebiten.KeyDown,
	"space":  ebiten.KeySpace,
	"enter":  ebiten.KeyEnter,
	"escape": ebiten.KeyEscape,
	"tab":    ebiten.KeyTab,

	"a": ebiten.KeyA,
	"b": ebiten.KeyB,
	"c": ebiten.KeyC,
	"d": ebiten.KeyD,
	"e": ebiten.KeyE,
	"f": ebiten.KeyF,
	"g": ebiten.KeyG,
	"h": ebiten.KeyH,
	"i": ebiten.KeyI,
	"j": ebiten.KeyJ,
	"k": ebiten.KeyK,
	"l": ebiten.KeyL,
	"m": ebiten.KeyM,
	"n": ebiten.KeyN,
	"o": ebiten.KeyO,
	"p": ebiten.KeyP,
	"q": ebiten.KeyQ,
	"r": ebiten.KeyR,
	"s": ebiten.KeyS,
	"t": ebiten.KeyT,
	"u": ebiten.KeyU,
	"v": ebiten.KeyV,
	"w": ebiten.KeyW,
	"x": ebiten.KeyX,
	"y": ebiten.KeyY,
	"z": ebiten.KeyZ,

	"0": ebiten.Key0,
	"1": ebiten.Key1,
	"2": ebiten.Key2,
	"3": ebiten.Key3,
	"4": ebiten.Key4,
	"5": ebiten.Key5,
	"6": ebiten.Key6,
	"7": ebiten.Key7,
	"8": ebiten.Key8,
	"9": ebiten.Key9,
}

// KeyByName maps a binding name ("right", "q", "1") to an ebiten key
func KeyByName(name string) (ebiten.Key, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	k, ok := namedKeys[name]
	return k, ok
}

// KeyState tracks the bound keys pressed this frame
type KeyState struct {
	names   []string
	keys    []ebiten.Key
	pressed []string
}

// NewKeyState watches the given binding names. Unknown names are an error.
func NewKeyState(names []string) (*KeyState, error) {
	s := &KeyState{}
	for _, n := range names {
		k, ok := KeyByName(n)
		if !ok {
			return nil, fmt.Errorf("no keyboard key named %q", n)
		}
		s.names = append(s.names, n)
		s.keys = append(s.keys, k)
	}
	return s, nil
}

// Update should be called every frame
func (s *KeyState) Update() {
	s.pressed = s.pressed[:0]
	for i, k := range s.keys {
		if inpututil.IsKeyJustPressed(k) {
			s.pressed = append(s.pressed, s.names[i])
		}
	}
}

// JustPressed returns the binding names pressed this frame
func (s *KeyState) JustPressed() []string {
	return s.pressed
}
