package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sb-child/dz-print/protocol"
)

func defaultJob() Job {
	return Job{Darkness: 5, Speed: 2, Paper: "adhesive", Breakpoint: 100, NextPaper: true}
}

func TestJobOptions(t *testing.T) {
	opts, err := defaultJob().options()
	require.NoError(t, err)
	assert.Equal(t, protocol.PrintDarkness(5), opts.Darkness)
	assert.Equal(t, protocol.SpeedDefault, opts.Speed)
	assert.Equal(t, protocol.PaperAdhesive, opts.PaperType)
	assert.Equal(t, 100, opts.Breakpoint)
	assert.True(t, opts.NextPaper)

	type testCase struct {
		name   string
		modify func(j *Job)
	}
	cases := []testCase{
		{name: "darkness too high", modify: func(j *Job) { j.Darkness = 15 }},
		{name: "negative speed", modify: func(j *Job) { j.Speed = -1 }},
		{name: "unknown paper", modify: func(j *Job) { j.Paper = "foil" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := defaultJob()
			tc.modify(&j)
			_, err := j.options()
			assert.Error(t, err)
		})
	}
}

func TestRenderQR(t *testing.T) {
	bm, err := renderQR("https://example.com/label/42", 200, "high", true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bm.Width(), 200)
	assert.Equal(t, bm.Width(), bm.Height())
	assert.False(t, bm.Pixel(0, 0), "quiet zone")

	ink := 0
	for y := 0; y < bm.Height(); y++ {
		if !bm.IsLineEmpty(y) {
			ink++
		}
	}
	assert.Positive(t, ink)

	_, err = renderQR("x", 100, "extreme", true)
	assert.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	im.Set(0, 0, color.NRGBA{A: 255})
	im.Set(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	im.Set(2, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, im))
	require.NoError(t, f.Close())

	luma, err := loadImage(path, 128, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, luma.Line(0))

	alpha, err := loadImage(path, 128, true)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, alpha.Line(0))

	_, err = loadImage(filepath.Join(t.TempDir(), "missing.png"), 128, false)
	assert.Error(t, err)
}
