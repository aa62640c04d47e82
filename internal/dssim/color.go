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

package dssim

import (
	"math"

	"github.com/mlnoga/dssim/internal/dssimlog"
)

// D65 reference white, matching the XYZ conversion matrix below.
const (
	d65X = 0.9505
	d65Y = 1.0
	d65Z = 1.089
)

// Lab-like compression constants (CIE 1976 cube root, with the linear
// segment near black).
const (
	labEpsilon = 216.0 / 24389.0
	labKappa   = (24389.0 / 27.0) / 116.0
)

// gammaLUT holds 256 entries mapping an 8 bit channel value to a linear
// intensity in [0,1]. After construction it is rewritten in place to serve
// as the gray-to-Lab lookup table as well, see initGrayLUT.
type gammaLUT [256]float64

// buildGammaLUT fills a fresh gamma LUT for the given gamma exponent.
func buildGammaLUT(gamma float64) *gammaLUT {
	lut := &gammaLUT{}
	for i := 0; i < 256; i++ {
		lut[i] = math.Pow(float64(i)/255.0, 1.0/gamma)
	}
	return lut
}

// compress applies the CIE Lab-style cube root compression.
func compress(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t) - 16.0/116.0
	}
	return labKappa * t
}

// rgbToLab converts one linearized-through-LUT sRGB triplet to the library's
// opponent l/A/b representation, via the D65 XYZ matrix. Values are clamped
// to [0,1] after the additive fudge offsets (see Open Question decision in
// SPEC_FULL.md); clamped reports whether clamping actually fired.
func rgbToLab(lut *gammaLUT, r, g, b byte) (l, A, bb float64, clamped bool) {
	rl, gl, bl := lut[r], lut[g], lut[b]

	fx := (rl*0.4124 + gl*0.3576 + bl*0.1805) / d65X
	fy := (rl*0.2126 + gl*0.7152 + bl*0.0722) / d65Y
	fz := (rl*0.0193 + gl*0.1192 + bl*0.9505) / d65Z

	x := compress(fx)
	y := compress(fy)
	z := compress(fz)

	l = y * 1.16
	A = 86.2/220.0 + (500.0/220.0)*(x-y)
	bb = 107.9/220.0 + (200.0/220.0)*(y-z)

	var cl, cA, cb bool
	l, cl = clamp01(l)
	A, cA = clamp01(A)
	bb, cb = clamp01(bb)
	clamped = cl || cA || cb
	return
}

func clamp01(v float64) (float64, bool) {
	if v < 0 {
		return 0, true
	}
	if v > 1 {
		return 1, true
	}
	return v, false
}

// initGrayLUT overwrites a gamma LUT in place with its gray-path Lab l
// values, by running each index through the full RGB conversion as (i,i,i).
// Safe to do in place: index i only ever reads lut[i].
func initGrayLUT(lut *gammaLUT) {
	for i := 0; i < 256; i++ {
		l, _, _, _ := rgbToLab(lut, byte(i), byte(i), byte(i))
		lut[i] = l
	}
}

// compositeAlpha blends a converted l/A/b triplet against a checkerboard
// background, selected by bits 2/3/4 of x XOR y, proportional to (1-alpha).
func compositeAlpha(l, A, bb float64, alpha byte, x, y int) (float64, float64, float64) {
	if alpha == 255 {
		return l, A, bb
	}
	af := float64(alpha) / 255.0
	l *= af
	A *= af
	bb *= af

	n := x ^ y
	if n&4 != 0 {
		l += 1.0 - af
	}
	if n&8 != 0 {
		A += 1.0 - af
	}
	if n&16 != 0 {
		bb += 1.0 - af
	}
	return l, A, bb
}

// convertPixelRGBA converts one RGBA pixel at location (x,y) to l/A/b,
// logging (once per attr) whenever the raw Lab conversion clamps.
func convertPixelRGBA(lut *gammaLUT, r, g, b, a byte, x, y int, warn *clampWarning) (l, A, bb float64) {
	l, A, bb, clamped := rgbToLab(lut, r, g, b)
	if clamped {
		warn.fire()
	}
	return compositeAlpha(l, A, bb, a, x, y)
}

// clampWarning logs the first time a conversion clamps out-of-range Lab
// values for a given Attr, and stays silent afterwards.
type clampWarning struct {
	fired bool
}

func (w *clampWarning) fire() {
	if w.fired {
		return
	}
	w.fired = true
	dssimlog.LogPrintln("dssim: color conversion clamped l/A/b into [0,1]; check input gamma/primaries")
}
