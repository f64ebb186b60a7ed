package video

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Output geometry of share videos.
const (
	Width  = 1080
	Height = 1920
	FPS    = 24

	// DefaultMaxZoom is the scale gained over the whole clip.
	DefaultMaxZoom = 0.04
)

// Canonicalize decodes an image, flattens any transparency over opaque white,
// and resizes it to the 1080x1920 portrait canvas.
func Canonicalize(data []byte) (*image.NRGBA, error) {
	return canonicalize(data, Width, Height)
}

func canonicalize(data []byte, width, height int) (*image.NRGBA, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	b := src.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, src, image.Pt(0, 0), 1.0)

	return imaging.Resize(flat, width, height, imaging.Lanczos), nil
}

// ZoomAt returns the scale factor at time t of a clip of the given duration.
func ZoomAt(t, duration, maxZoom float64) float64 {
	if duration <= 0 || t <= 0 {
		return 1
	}
	return 1 + maxZoom*(t/duration)
}

// Frame renders the canvas at time t: scaled by ZoomAt and center-cropped
// back to the canvas size. Frame at t=0 is an exact copy of the canvas.
func Frame(canvas *image.NRGBA, t, duration, maxZoom float64) *image.NRGBA {
	b := canvas.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := ZoomAt(t, duration, maxZoom)
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw <= w && nh <= h {
		return imaging.Clone(canvas)
	}

	zoomed := imaging.Resize(canvas, nw, nh, imaging.Lanczos)
	left, top := (nw-w)/2, (nh-h)/2
	return imaging.Crop(zoomed, image.Rect(left, top, left+w, top+h))
}

// AlignAudio picks the [start, end] window of an audio track of length
// audioLen used for a clip of the given duration. Longer tracks start a
// quarter of the way in, or late enough to fit; shorter tracks play from the
// beginning.
func AlignAudio(audioLen, duration float64) (start, end float64) {
	if audioLen > duration {
		start = min(0.25*audioLen, audioLen-duration)
		return start, start + duration
	}
	return 0, min(duration, audioLen)
}
