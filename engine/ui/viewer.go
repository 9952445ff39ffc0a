// Package ui is the ebiten front end of a review session
package ui

import (
	"image/color"
	"io"

	"github.com/1siamBot/modkit/engine/input"
	"github.com/1siamBot/modkit/engine/render"
	"github.com/1siamBot/modkit/engine/session"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/sirupsen/logrus"
)

type tile struct {
	img     *ebiten.Image
	x, y    int
	channel render.Channel
}

// Viewer implements ebiten.Game over a session
type Viewer struct {
	session *session.Session
	keymap  session.Keymap
	keys    *input.KeyState
	hud     *HUD
	log     logrus.FieldLogger

	// window size debounce
	settleTicks int
	seenW       int
	seenH       int
	stable      int
	appliedW    int
	appliedH    int

	tiles     []tile
	planW     int
	planH     int
	renderErr error
	title     string
}

// NewViewer binds the keymap to s. A resize is applied once the window size
// has been stable for settleTicks updates.
func NewViewer(s *session.Session, km session.Keymap, settleTicks int, log logrus.FieldLogger) (*Viewer, error) {
	keys, err := input.NewKeyState(km.Keys())
	if err != nil {
		return nil, err
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Viewer{
		session:     s,
		keymap:      km,
		keys:        keys,
		hud:         NewHUD(km),
		log:         log,
		settleTicks: settleTicks,
	}, nil
}

func (v *Viewer) Update() error {
	v.keys.Update()
	for _, name := range v.keys.JustPressed() {
		cmd, ok := v.keymap.Lookup(name)
		if !ok {
			continue
		}
		if err := v.session.Dispatch(cmd); err != nil {
			v.log.WithError(err).WithField("command", cmd.Kind).Error("command failed")
		}
		if v.session.Quitting() {
			return ebiten.Termination
		}
	}

	v.settle()
	if v.session.Dirty() {
		v.rebuild()
	}
	if t := v.session.Title(); t != v.title {
		v.title = t
		ebiten.SetWindowTitle(t)
	}
	return nil
}

// settle forwards the window size to the session after it stopped changing
func (v *Viewer) settle() {
	w, h := v.hud.ScreenW, v.hud.ScreenH
	if w == v.appliedW && h == v.appliedH {
		return
	}
	if w != v.seenW || h != v.seenH {
		v.seenW, v.seenH = w, h
		v.stable = 0
	} else {
		v.stable++
	}
	// first layout applies at once
	if v.appliedW == 0 || v.stable >= v.settleTicks {
		v.appliedW, v.appliedH = w, h
		v.session.Resize(v.hud.Viewport())
	}
}

func (v *Viewer) rebuild() {
	for _, t := range v.tiles {
		t.img.Deallocate()
	}
	v.tiles = v.tiles[:0]
	v.planW, v.planH = 0, 0

	plan, err := v.session.Render()
	v.renderErr = err
	if err != nil {
		v.log.WithError(err).WithField("image", v.session.Current()).Warn("cannot render image")
		return
	}
	if plan == nil {
		return
	}
	v.planW, v.planH = plan.Width, plan.Height
	for _, t := range plan.Tiles {
		v.tiles = append(v.tiles, tile{
			img:     ebiten.NewImageFromImage(t.Image),
			x:       t.X,
			y:       t.Y,
			channel: t.Channel,
		})
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})

	vw, vh := v.hud.Viewport()
	ox := (vw - v.planW) / 2
	oy := v.hud.TopBarHeight + (vh-v.planH)/2
	for _, t := range v.tiles {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(ox+t.x), float64(oy+t.y))
		screen.DrawImage(t.img, op)
		if v.session.DisplayMode() == render.Grid {
			ebitenutil.DebugPrintAt(screen, t.channel.String(), ox+t.x+4, oy+t.y+4)
		}
	}

	if v.renderErr != nil {
		v.hud.drawError(screen, v.renderErr)
	}
	if v.session.Exhausted() {
		v.hud.drawDone(screen)
	}
	v.hud.drawTopBar(screen, v.session)
	v.hud.drawTagPanel(screen, v.session)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < 1 {
		outsideWidth = 1
	}
	if outsideHeight < 1 {
		outsideHeight = 1
	}
	v.hud.ScreenW, v.hud.ScreenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
