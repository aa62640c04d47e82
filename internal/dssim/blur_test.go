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
	"math/rand"
	"testing"
)

func approxEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestBlur1DRowUnrolledMatchesSimple(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, width := range []int{0, 1, 2, 3, 4, 5, 7, 8, 16, 17, 31} {
		src := make([]float32, width)
		for i := range src {
			src[i] = rng.Float32()
		}
		simple := make([]float32, width)
		unrolled := make([]float32, width)
		blur1DRowSimple(simple, src, width)
		blur1DRowUnrolled(unrolled, src, width)
		for i := 0; i < width; i++ {
			if !approxEqual(simple[i], unrolled[i], 1e-6) {
				t.Errorf("width=%d index=%d: simple=%g unrolled=%g", width, i, simple[i], unrolled[i])
			}
		}
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	width, height := 5, 3
	src := make([]float32, width*height)
	for i := range src {
		src[i] = float32(i)
	}
	dst := make([]float32, width*height)
	transpose(src, dst, width, height)
	back := make([]float32, width*height)
	transpose(dst, back, height, width)
	for i := range src {
		if src[i] != back[i] {
			t.Fatalf("index %d: got %g after round trip; want %g", i, back[i], src[i])
		}
	}
	// spot check: dst[x*height+y] == src[y*width+x]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if dst[x*height+y] != src[y*width+x] {
				t.Errorf("transpose mismatch at (x=%d,y=%d)", x, y)
			}
		}
	}
}

func TestBlurPlaneConstantImageIsUnchanged(t *testing.T) {
	width, height := 6, 4
	const value = float32(0.37)
	src := make([]float32, width*height)
	for i := range src {
		src[i] = value
	}
	dst := make([]float32, width*height)
	tmp := make([]float32, blurTmpSize(width, height))

	blurPlane(src, tmp, dst, width, height, 2, nil)

	for i, v := range dst {
		if !approxEqual(v, value, 1e-5) {
			t.Fatalf("index %d: got %g; want constant %g preserved by blur", i, v, value)
		}
	}
}

func TestBlurPlaneInPlaceAliasMatchesOutOfPlace(t *testing.T) {
	width, height := 9, 7
	rng := rand.New(rand.NewSource(2))
	src := make([]float32, width*height)
	for i := range src {
		src[i] = rng.Float32()
	}

	outOfPlace := make([]float32, width*height)
	tmp1 := make([]float32, blurTmpSize(width, height))
	blurPlane(src, tmp1, outOfPlace, width, height, 1, nil)

	inPlace := make([]float32, width*height)
	copy(inPlace, src)
	tmp2 := make([]float32, blurTmpSize(width, height))
	blurPlane(inPlace, tmp2, inPlace, width, height, 1, nil)

	for i := range outOfPlace {
		if !approxEqual(outOfPlace[i], inPlace[i], 1e-5) {
			t.Errorf("index %d: in-place=%g out-of-place=%g; regular1DBlur's runs==1 staging should make these equal", i, inPlace[i], outOfPlace[i])
		}
	}
}

func TestBlurTmpSizeCoversNarrowPlanes(t *testing.T) {
	cases := []struct{ w, h int }{
		{1, 1}, {1, 9}, {9, 1}, {2, 2}, {20, 20},
	}
	for _, c := range cases {
		size := blurTmpSize(c.w, c.h)
		if size < c.w*c.h {
			t.Errorf("w=%d h=%d: got size %d; want >= plane size %d", c.w, c.h, size, c.w*c.h)
		}
		if size < 2*c.w || size < 2*c.h {
			t.Errorf("w=%d h=%d: got size %d; want >= 2*max(w,h) for row scratch lanes", c.w, c.h, size)
		}
	}
}

func TestSquareRow(t *testing.T) {
	src := []float32{1, 2, 3, -4}
	scratch := make([]float32, 4)
	squareRow(src, scratch, 4)
	want := []float32{1, 4, 9, 16}
	for i := range want {
		if scratch[i] != want[i] {
			t.Errorf("index %d: got %g; want %g", i, scratch[i], want[i])
		}
	}
}
