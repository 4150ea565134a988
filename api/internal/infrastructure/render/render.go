// Package render draws the decorative visualization of a sealed payload:
// a rainbow gradient perturbed by ciphertext-driven pixel noise.
//
// The output is presentation-only. It is NOT a codec — the composition of
// gradient and noise is not invertible, and nothing in the system ever
// reads ciphertext back out of a rendered image.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
)

const (
	// Width and Height of the rendered strip.
	Width  = 256
	Height = 64

	noiseAmplitude = 24
)

// PNG renders ciphertext bytes as a PNG strip. The same input produces a
// different image every call — the noise layer is random on purpose.
func PNG(data []byte) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))

	for x := 0; x < Width; x++ {
		r, g, b := rainbow(float64(x) / float64(Width))
		for y := 0; y < Height; y++ {
			// Each pixel is the gradient base shifted by one ciphertext
			// byte and a little random jitter.
			var shift int
			if len(data) > 0 {
				shift = int(data[(x*Height+y)%len(data)]%noiseAmplitude) - noiseAmplitude/2
			}
			shift += rand.Intn(noiseAmplitude) - noiseAmplitude/2

			img.SetRGBA(x, y, color.RGBA{
				R: clamp(int(r) + shift),
				G: clamp(int(g) + shift),
				B: clamp(int(b) + shift),
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rainbow sweeps the hue wheel once across t in [0,1).
func rainbow(t float64) (uint8, uint8, uint8) {
	h := t * 6.0
	seg := int(h) % 6
	f := h - float64(int(h))

	up := uint8(f * 255)
	down := uint8((1 - f) * 255)

	switch seg {
	case 0:
		return 255, up, 0
	case 1:
		return down, 255, 0
	case 2:
		return 0, 255, up
	case 3:
		return 0, down, 255
	case 4:
		return up, 0, 255
	default:
		return 255, 0, down
	}
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
