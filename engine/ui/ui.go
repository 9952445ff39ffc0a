package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/1siamBot/modkit/engine/session"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// HUD draws the info bar above the image and the tag panel below it
type HUD struct {
	ScreenW, ScreenH int
	TopBarHeight     int
	PanelHeight      int

	help string
	done *ebiten.Image
}

func NewHUD(km session.Keymap) *HUD {
	help := "[<-/->] nav  [r/g/b/a] channel  [m] grid  [s] skip tagged  [z] undo  [q] quit"
	if tk := km.TagKeys(); len(tk) > 0 {
		help = "[" + strings.Join(tk, " ") + "] tag  " + help
	}
	return &HUD{
		TopBarHeight: 20,
		PanelHeight:  36,
		help:         help,
	}
}

// Viewport is the area left for the image
func (h *HUD) Viewport() (int, int) {
	return h.ScreenW, h.ScreenH - h.TopBarHeight - h.PanelHeight
}

func (h *HUD) drawTopBar(screen *ebiten.Image, s *session.Session) {
	vector.DrawFilledRect(screen, 0, 0, float32(h.ScreenW), float32(h.TopBarHeight), color.RGBA{0, 0, 0, 180}, false)
	skip := "off"
	if s.SkipTagged() {
		skip = "on"
	}
	info := fmt.Sprintf("%d/%d %s | %s %s | skip tagged: %s | undo: %d",
		s.Index()+1, s.Len(), s.Current(), s.DisplayMode(), s.Channel(), skip, s.UndoDepth())
	ebitenutil.DebugPrintAt(screen, info, 5, 3)
}

func (h *HUD) drawTagPanel(screen *ebiten.Image, s *session.Session) {
	py := h.ScreenH - h.PanelHeight
	vector.DrawFilledRect(screen, 0, float32(py), float32(h.ScreenW), float32(h.PanelHeight), color.RGBA{20, 20, 40, 220}, false)

	tags := "none"
	if t := s.Tags(); len(t) > 0 {
		tags = strings.Join(t, ", ")
	}
	ebitenutil.DebugPrintAt(screen, "Tags: "+tags, 5, py+2)
	ebitenutil.DebugPrintAt(screen, h.help, 5, py+18)
}

// drawDone puts a large red "Done" in the middle of the viewport
func (h *HUD) drawDone(screen *ebiten.Image) {
	const scale = 6
	if h.done == nil {
		h.done = ebiten.NewImage(28, 16)
		ebitenutil.DebugPrint(h.done, "Done")
	}
	w, vh := h.Viewport()
	b := h.done.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(w-b.Dx()*scale)/2, float64(h.TopBarHeight)+float64(vh-b.Dy()*scale)/2)
	op.ColorScale.Scale(1, 0.2, 0.2, 1)
	screen.DrawImage(h.done, op)
}

func (h *HUD) drawError(screen *ebiten.Image, err error) {
	_, vh := h.Viewport()
	ebitenutil.DebugPrintAt(screen, "cannot show image: "+err.Error(), 10, h.TopBarHeight+vh/2)
}
