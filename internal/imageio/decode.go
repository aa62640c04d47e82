// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package imageio is the thin decode/encode boundary around the dssim core:
// it turns already-fetched bytes into an *dssim.Image and renders a
// dissimilarity map back out to PNG or 16 bit TIFF. The core package never
// touches raw file bytes itself; this package is what supplies them.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/webp"

	"github.com/mlnoga/dssim/internal/dssim"
)

// Decode sniffs and decodes PNG, JPEG or WEBP bytes into a standard
// image.Image. PNG and JPEG are recognized by the standard library's own
// format registry (populated by importing image/png and image/jpeg); WEBP
// has no such registration hook in golang.org/x/image, so it is tried
// explicitly as a fallback.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}
	if wimg, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return wimg, "webp", nil
	}
	return nil, "", fmt.Errorf("imageio: unrecognized image format: %w", err)
}

// ToDSSIMImage builds a dssim.Image from a decoded standard image, using
// the RGBA color type (alpha-composited against the checkerboard) whenever
// the image type carries an alpha channel (see imageHasAlpha), even if every
// pixel is opaque, and RGB otherwise. Opaque pixels pass through the
// compositing unchanged.
func ToDSSIMImage(attr *dssim.Attr, img image.Image, gamma float64) (*dssim.Image, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	hasAlpha := imageHasAlpha(img)
	colorType := dssim.RGB
	bpp := 3
	if hasAlpha {
		colorType = dssim.RGBA
		bpp = 4
	}

	rowBuf := make([]byte, width*bpp)
	rows := func(y int) []byte {
		for x := 0; x < width; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			o := x * bpp
			rowBuf[o+0] = uint8(r >> 8)
			rowBuf[o+1] = uint8(g >> 8)
			rowBuf[o+2] = uint8(bl >> 8)
			if hasAlpha {
				rowBuf[o+3] = uint8(a >> 8)
			}
		}
		return rowBuf
	}

	return dssim.NewImageFromBytes(attr, colorType, width, height, gamma, rows)
}

// imageHasAlpha reports whether the image's color model carries an alpha
// channel at all (not whether any pixel is actually translucent).
func imageHasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		return true
	default:
		return false
	}
}
