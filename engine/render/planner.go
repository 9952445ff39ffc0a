// Package render turns a decoded image into the pixel buffers the viewer
// draws: a fitted composite, one isolated channel, or a 2x2 channel grid.
package render

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Tile is one buffer and its top-left position inside the plan
type Tile struct {
	Image   *image.NRGBA
	X, Y    int
	Channel Channel
}

// Plan is everything needed to draw one image. It owns its buffers.
type Plan struct {
	Width, Height int
	Mode          DisplayMode
	Channel       Channel
	Tiles         []Tile
}

// Planner scales and splits images
type Planner struct {
	Scaler xdraw.Scaler
}

// NewPlanner creates a planner using Catmull-Rom resampling
func NewPlanner() *Planner {
	return &Planner{Scaler: xdraw.CatmullRom}
}

// ScaleFit returns the largest size with the image's aspect ratio that fits
// inside the viewport. When the image is relatively wider than the viewport
// the width is bound, otherwise the height.
func ScaleFit(imgW, imgH, viewW, viewH int) (w, h int) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0
	}
	imageAspect := float64(imgW) / float64(imgH)
	viewAspect := float64(viewW) / float64(viewH)
	if imageAspect > viewAspect {
		w = viewW
		h = int(float64(w) / imageAspect)
	} else {
		h = viewH
		w = int(float64(h) * imageAspect)
	}
	return w, h
}

// Plan lays out src for a viewW x viewH viewport. It returns nil when there
// is nothing sensible to draw: an empty viewport, or a fitted size of one
// pixel or less on either axis.
func (p *Planner) Plan(src image.Image, mode DisplayMode, ch Channel, viewW, viewH int) *Plan {
	if src == nil || viewW <= 0 || viewH <= 0 {
		return nil
	}
	b := src.Bounds()
	w, h := ScaleFit(b.Dx(), b.Dy(), viewW, viewH)
	if w <= 1 || h <= 1 {
		return nil
	}

	if mode == Grid {
		qw, qh := w/2, h/2
		scaled := p.scale(src, qw, qh)
		alpha := HasAlpha(src)
		plan := &Plan{Width: qw * 2, Height: qh * 2, Mode: Grid, Channel: ch}
		for i, c := range gridOrder {
			// sources without an alpha channel split into three planes
			if c == Alpha && !alpha {
				continue
			}
			plan.Tiles = append(plan.Tiles, Tile{
				Image:   extract(scaled, c),
				X:       (i % 2) * qw,
				Y:       (i / 2) * qh,
				Channel: c,
			})
		}
		return plan
	}

	scaled := p.scale(src, w, h)
	return &Plan{
		Width:   w,
		Height:  h,
		Mode:    Single,
		Channel: ch,
		Tiles:   []Tile{{Image: extract(scaled, ch), Channel: ch}},
	}
}

// HasAlpha reports whether the source colour model carries an alpha channel
func HasAlpha(img image.Image) bool {
	switch m := img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}
	return true
}

// scale resamples src to w x h. Colour and alpha are resampled as separate
// planes so colour under transparent pixels survives; the result holds raw
// (non-premultiplied) channel values.
func (p *Planner) scale(src image.Image, w, h int) *image.NRGBA {
	opaque, alpha := splitAlpha(src)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	p.Scaler.Scale(dst, dst.Bounds(), opaque, opaque.Bounds(), xdraw.Src, nil)

	a := image.NewGray(image.Rect(0, 0, w, h))
	p.Scaler.Scale(a, a.Bounds(), alpha, alpha.Bounds(), xdraw.Src, nil)

	for i := range a.Pix {
		dst.Pix[i*4+3] = a.Pix[i]
	}
	return dst
}

// splitAlpha separates src into an opaque colour image and an alpha plane
func splitAlpha(src image.Image) (*image.NRGBA, *image.Gray) {
	b := src.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())
	opaque := image.NewNRGBA(rect)
	alpha := image.NewGray(rect)

	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < rect.Dy(); y++ {
			row := n.Pix[(y+b.Min.Y-n.Rect.Min.Y)*n.Stride+(b.Min.X-n.Rect.Min.X)*4:]
			out := opaque.Pix[y*opaque.Stride:]
			for x := 0; x < rect.Dx(); x++ {
				out[x*4] = row[x*4]
				out[x*4+1] = row[x*4+1]
				out[x*4+2] = row[x*4+2]
				out[x*4+3] = 0xff
				alpha.Pix[y*alpha.Stride+x] = row[x*4+3]
			}
		}
		return opaque, alpha
	}

	for y := 0; y < rect.Dy(); y++ {
		for x := 0; x < rect.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			alpha.Pix[y*alpha.Stride+x] = c.A
			c.A = 0xff
			opaque.SetNRGBA(x, y, c)
		}
	}
	return opaque, alpha
}

// extract builds the displayed buffer for one channel. Composite keeps the
// colour and drops alpha; a single channel is replicated into grey.
func extract(src *image.NRGBA, ch Channel) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	for i := 0; i < len(src.Pix); i += 4 {
		switch ch {
		case Composite:
			dst.Pix[i] = src.Pix[i]
			dst.Pix[i+1] = src.Pix[i+1]
			dst.Pix[i+2] = src.Pix[i+2]
		default:
			v := src.Pix[i+channelOffset(ch)]
			dst.Pix[i] = v
			dst.Pix[i+1] = v
			dst.Pix[i+2] = v
		}
		dst.Pix[i+3] = 0xff
	}
	return dst
}

func channelOffset(ch Channel) int {
	switch ch {
	case Green:
		return 1
	case Blue:
		return 2
	case Alpha:
		return 3
	}
	return 0
}
