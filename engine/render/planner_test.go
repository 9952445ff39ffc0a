package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pixel(t *testing.T, img *image.NRGBA, x, y int) color.NRGBA {
	t.Helper()
	return img.NRGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
}

func assertGrey(t *testing.T, img *image.NRGBA, want uint8) {
	t.Helper()
	c := pixel(t, img, img.Rect.Dx()/2, img.Rect.Dy()/2)
	assert.InDelta(t, want, c.R, 1)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.R, c.B)
	assert.Equal(t, uint8(0xff), c.A)
}

func TestScaleFit(t *testing.T) {
	tests := []struct {
		name                     string
		imgW, imgH, viewW, viewH int
		wantW, wantH             int
	}{
		{"wider than viewport", 4000, 2000, 800, 600, 800, 400},
		{"taller than viewport", 1000, 2000, 800, 600, 300, 600},
		{"same aspect", 1600, 1200, 800, 600, 800, 600},
		{"upscale small image", 100, 50, 800, 600, 800, 400},
		{"zero viewport", 100, 100, 0, 600, 0, 0},
		{"zero image", 0, 100, 800, 600, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaleFit(tt.imgW, tt.imgH, tt.viewW, tt.viewH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestPlanEmpty(t *testing.T) {
	p := NewPlanner()
	img := uniformNRGBA(4000, 2000, color.NRGBA{A: 255})

	assert.Nil(t, p.Plan(img, Single, Composite, 1, 1))
	assert.Nil(t, p.Plan(img, Grid, Composite, 1, 1))
	assert.Nil(t, p.Plan(img, Single, Composite, 0, 0))
	assert.Nil(t, p.Plan(img, Single, Composite, 600, -5))
	// 4000x2000 into 3x100 fits as 3x1
	assert.Nil(t, p.Plan(img, Single, Composite, 3, 100))
	assert.Nil(t, p.Plan(nil, Single, Composite, 800, 600))
}

func TestPlanSingle(t *testing.T) {
	p := NewPlanner()
	src := uniformNRGBA(40, 20, color.NRGBA{R: 200, G: 100, B: 50, A: 30})

	plan := p.Plan(src, Single, Composite, 80, 60)
	require.NotNil(t, plan)
	assert.Equal(t, 80, plan.Width)
	assert.Equal(t, 40, plan.Height)
	require.Len(t, plan.Tiles, 1)
	tile := plan.Tiles[0]
	assert.Equal(t, image.Rect(0, 0, 80, 40), tile.Image.Rect)
	c := pixel(t, tile.Image, 40, 20)
	// colour under low alpha is kept and shown opaque
	assert.InDelta(t, 200, c.R, 1)
	assert.InDelta(t, 100, c.G, 1)
	assert.InDelta(t, 50, c.B, 1)
	assert.Equal(t, uint8(0xff), c.A)

	for _, tt := range []struct {
		ch   Channel
		want uint8
	}{{Red, 200}, {Green, 100}, {Blue, 50}, {Alpha, 30}} {
		t.Run(tt.ch.String(), func(t *testing.T) {
			plan := p.Plan(src, Single, tt.ch, 80, 60)
			require.NotNil(t, plan)
			assert.Equal(t, tt.ch, plan.Channel)
			assertGrey(t, plan.Tiles[0].Image, tt.want)
		})
	}
}

func TestPlanGrid(t *testing.T) {
	p := NewPlanner()
	src := uniformNRGBA(40, 20, color.NRGBA{R: 10, G: 20, B: 30, A: 40})

	plan := p.Plan(src, Grid, Composite, 80, 60)
	require.NotNil(t, plan)
	assert.Equal(t, Grid, plan.Mode)
	assert.Equal(t, 80, plan.Width)
	assert.Equal(t, 40, plan.Height)
	require.Len(t, plan.Tiles, 4)

	want := []struct {
		ch    Channel
		x, y  int
		value uint8
	}{
		{Red, 0, 0, 10},
		{Green, 40, 0, 20},
		{Blue, 0, 20, 30},
		{Alpha, 40, 20, 40},
	}
	for i, w := range want {
		tile := plan.Tiles[i]
		assert.Equal(t, w.ch, tile.Channel)
		assert.Equal(t, w.x, tile.X)
		assert.Equal(t, w.y, tile.Y)
		assert.Equal(t, image.Rect(0, 0, 40, 20), tile.Image.Rect)
		assertGrey(t, tile.Image, w.value)
	}
}

func TestPlanGridWithoutAlpha(t *testing.T) {
	p := NewPlanner()
	src := image.NewGray(image.Rect(0, 0, 30, 30))
	for i := range src.Pix {
		src.Pix[i] = 90
	}

	plan := p.Plan(src, Grid, Composite, 60, 60)
	require.NotNil(t, plan)
	require.Len(t, plan.Tiles, 3)
	assert.Equal(t, []Channel{Red, Green, Blue}, []Channel{
		plan.Tiles[0].Channel, plan.Tiles[1].Channel, plan.Tiles[2].Channel,
	})

	single := p.Plan(src, Single, Alpha, 60, 60)
	require.NotNil(t, single)
	assertGrey(t, single.Tiles[0].Image, 255)
}

func TestHasAlpha(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)
	assert.True(t, HasAlpha(image.NewNRGBA(r)))
	assert.True(t, HasAlpha(image.NewRGBA(r)))
	assert.False(t, HasAlpha(image.NewGray(r)))
	assert.False(t, HasAlpha(image.NewYCbCr(r, image.YCbCrSubsampleRatio420)))
	assert.False(t, HasAlpha(image.NewPaletted(r, color.Palette{color.RGBA{A: 255}})))
	assert.True(t, HasAlpha(image.NewPaletted(r, color.Palette{color.NRGBA{A: 10}})))
}

func TestChannelToggle(t *testing.T) {
	assert.Equal(t, Red, Composite.Toggle(Red))
	assert.Equal(t, Composite, Composite.Toggle(Red).Toggle(Red))
	assert.Equal(t, Blue, Red.Toggle(Blue))
	assert.Equal(t, Composite, Alpha.Toggle(Alpha))
}

func TestDisplayMode(t *testing.T) {
	assert.Equal(t, Grid, Single.Flip())
	assert.Equal(t, Single, Grid.Flip())

	m, err := ParseDisplayMode(" Grid ")
	require.NoError(t, err)
	assert.Equal(t, Grid, m)
	_, err = ParseDisplayMode("tiles")
	assert.Error(t, err)
}
