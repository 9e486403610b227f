package signature

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadEmptyAfterConstruction(t *testing.T) {
	pad := NewPad(Options{})
	if !pad.IsEmpty() {
		t.Fatalf("expected new pad to be empty")
	}
	img, err := pad.ExportImage()
	if err != nil {
		t.Fatalf("ExportImage: %v", err)
	}
	if !img.IsEmpty() {
		t.Fatalf("expected empty image from empty pad")
	}
}

func TestPadStrokeThenClear(t *testing.T) {
	pad := NewPad(Options{})
	pad.AddStroke(Point{X: 10, Y: 10}, Point{X: 60, Y: 40})
	if pad.IsEmpty() {
		t.Fatalf("expected pad to be non-empty after a stroke")
	}

	pad.Clear()
	if !pad.IsEmpty() {
		t.Fatalf("expected pad to be empty after Clear")
	}
	img, err := pad.ExportImage()
	require.NoError(t, err)
	assert.True(t, img.IsEmpty())
}

func TestPadIgnoresEmptyStroke(t *testing.T) {
	pad := NewPad(Options{})
	pad.AddStroke()
	assert.True(t, pad.IsEmpty())
}

func TestExportImageCropsToInk(t *testing.T) {
	pad := NewPad(Options{Width: 380, Height: 150, PenWidth: 2})
	pad.AddStroke(Point{X: 100, Y: 50}, Point{X: 200, Y: 50})
	pad.AddStroke(Point{X: 150, Y: 40}, Point{X: 150, Y: 80})

	img, err := pad.ExportImage()
	require.NoError(t, err)
	require.False(t, img.IsEmpty())

	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	require.NoError(t, err)
	b := decoded.Bounds()

	// Ink spans x 99..201 and y 39..81 with a 1px pen radius.
	assert.InDelta(t, 102, b.Dx(), 3)
	assert.InDelta(t, 42, b.Dy(), 3)
	assert.Less(t, b.Dx(), 380)
	assert.Less(t, b.Dy(), 150)

	_, _, _, a := decoded.At(b.Dx()/2, 10).RGBA()
	assert.NotZero(t, a, "expected ink on the vertical stroke")
}

func TestExportImageSinglePointIsADot(t *testing.T) {
	pad := NewPad(Options{PenWidth: 4})
	pad.AddStroke(Point{X: 20, Y: 20})

	img, err := pad.ExportImage()
	require.NoError(t, err)
	require.False(t, img.IsEmpty())

	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), 6)
	assert.LessOrEqual(t, decoded.Bounds().Dy(), 6)
}

func TestAddStrokeClampsToCanvas(t *testing.T) {
	pad := NewPad(Options{Width: 100, Height: 50})
	pad.AddStroke(Point{X: -40, Y: 10}, Point{X: 500, Y: 10})

	img, err := pad.ExportImage()
	require.NoError(t, err)
	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), 100)
}

func TestRenderFromStrokes(t *testing.T) {
	img, err := Render([]Stroke{{{X: 5, Y: 5}, {X: 40, Y: 30}}}, Options{})
	require.NoError(t, err)
	assert.False(t, img.IsEmpty())

	empty, err := Render(nil, Options{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestDecodeDataURL(t *testing.T) {
	img, err := Render([]Stroke{{{X: 5, Y: 5}, {X: 40, Y: 30}}}, Options{})
	require.NoError(t, err)

	roundTrip, err := DecodeDataURL(EncodeDataURL(img))
	require.NoError(t, err)
	assert.Equal(t, img.PNG, roundTrip.PNG)

	empty, err := DecodeDataURL("   ")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	for _, bad := range []string{"hello", "data:text/plain;base64,aGk=", "data:image/png;base64,%%%"} {
		_, err := DecodeDataURL(bad)
		if !errors.Is(err, ErrInvalidDataURL) {
			t.Fatalf("DecodeDataURL(%q) expected ErrInvalidDataURL, got %v", bad, err)
		}
	}
}

func TestRenderRejectsTooManyPoints(t *testing.T) {
	stroke := make(Stroke, MaxPoints+1)
	for i := range stroke {
		stroke[i] = Point{X: float64(i % 300), Y: 50}
	}
	_, err := Render([]Stroke{stroke}, Options{})
	assert.ErrorIs(t, err, ErrTooManyPoints)

	_, err = Render([]Stroke{stroke[:MaxPoints]}, Options{})
	assert.NoError(t, err)
}

func TestRenderInksOnlyAroundTheStroke(t *testing.T) {
	canvas := render([]Stroke{{{X: 100, Y: 50}, {X: 140, Y: 50}}}, Options{Width: 380, Height: 150, PenWidth: 4}.withDefaults())

	ink := inkBounds(canvas)
	assert.InDelta(t, 98, ink.Min.X, 1)
	assert.InDelta(t, 142, ink.Max.X, 1)
	assert.InDelta(t, 48, ink.Min.Y, 1)
	assert.InDelta(t, 52, ink.Max.Y, 1)

	_, _, _, a := canvas.At(120, 50).RGBA()
	assert.NotZero(t, a, "segment body is inked")
	_, _, _, a = canvas.At(300, 120).RGBA()
	assert.Zero(t, a)
}
