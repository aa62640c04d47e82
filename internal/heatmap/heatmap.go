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

// Package heatmap renders a per-pixel SSIM map (values near 1.0 meaning
// "similar", lower meaning "dissimilar") as a pseudo-color image, blending
// through Hcl space the way internal/ops/hsl.go reaches for go-colorful.
package heatmap

import (
	"errors"
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Similar and Dissimilar are the default anchor colors blended between,
// proportional to 1-ssim: near-white for identical regions, a saturated red
// for maximally dissimilar ones.
var (
	Similar    = colorful.Color{R: 0.95, G: 0.95, B: 0.95}
	Dissimilar = colorful.Color{R: 0.85, G: 0.05, B: 0.05}
)

// Render converts a width×height row-major SSIM map into an NRGBA image,
// blending linearly in Hcl space between Similar (ssim==1) and Dissimilar
// (ssim<=0). Values are clamped before blending so a map with a handful of
// out-of-[0,1] entries doesn't produce an invalid color.
func Render(values []float32, width, height int) (*image.NRGBA, error) {
	if len(values) != width*height {
		return nil, errors.New("heatmap: map size does not match width*height")
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ssim := values[y*width+x]
			t := 1.0 - float64(ssim)
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			c := Similar.BlendHcl(Dissimilar, t).Clamped()
			r, g, b, a := c.RGBA()
			offset := img.PixOffset(x, y)
			img.Pix[offset+0] = uint8(r >> 8)
			img.Pix[offset+1] = uint8(g >> 8)
			img.Pix[offset+2] = uint8(b >> 8)
			img.Pix[offset+3] = uint8(a >> 8)
		}
	}
	return img, nil
}
