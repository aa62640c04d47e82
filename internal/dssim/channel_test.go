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

import "testing"

func TestNewChannelZeroFilled(t *testing.T) {
	c := newChannel(4, 3, false)
	if c.Width != 4 || c.Height != 3 {
		t.Fatalf("got %dx%d; want 4x3", c.Width, c.Height)
	}
	if len(c.Img) != 12 {
		t.Fatalf("got len(Img) %d; want 12", len(c.Img))
	}
	for i, v := range c.Img {
		if v != 0 {
			t.Errorf("index %d: got %g; want 0 from a fresh channel", i, v)
		}
	}
}

func TestDownsample2x2Averages(t *testing.T) {
	c := newChannel(4, 2, false)
	copy(c.Img, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	next := downsample2x2(c)
	if next == nil {
		t.Fatal("got nil; want a 2x1 downsampled channel")
	}
	if next.Width != 2 || next.Height != 1 {
		t.Fatalf("got %dx%d; want 2x1", next.Width, next.Height)
	}
	want := []float32{(1 + 2 + 5 + 6) / 4.0, (3 + 4 + 7 + 8) / 4.0}
	for i := range want {
		if next.Img[i] != want[i] {
			t.Errorf("index %d: got %g; want %g", i, next.Img[i], want[i])
		}
	}
}

func TestDownsample2x2ZeroDimReturnsNil(t *testing.T) {
	if downsample2x2(newChannel(1, 4, false)) != nil {
		t.Error("got non-nil for width=1 (floor(1/2)=0); want nil")
	}
	if downsample2x2(newChannel(4, 1, false)) != nil {
		t.Error("got non-nil for height=1 (floor(1/2)=0); want nil")
	}
}

func TestBuildPyramidStopsAtZeroDim(t *testing.T) {
	top := newChannel(5, 5, false)
	buildPyramid(top, MaxScales)

	count := 0
	for c := top; c != nil; c = c.NextHalf {
		count++
	}
	// 5 -> 2 -> 1 -> (stop, next would be 0)
	if count != 3 {
		t.Errorf("got %d levels for a 5x5 image; want 3 (5, 2, 1)", count)
	}
}

func TestBuildPyramidRespectsNumScales(t *testing.T) {
	top := newChannel(64, 64, false)
	buildPyramid(top, 2)

	count := 0
	for c := top; c != nil; c = c.NextHalf {
		count++
	}
	if count != 2 {
		t.Errorf("got %d levels; want 2 for numScales=2", count)
	}
}

func TestPreprocessConstantChannelInvariants(t *testing.T) {
	attr := NewAttr()
	const value = float32(0.6)

	top := newChannel(8, 8, false)
	for i := range top.Img {
		top.Img[i] = value
	}
	buildPyramid(top, attr.NumScales)
	preprocessChannel(top, attr)

	for level, c := 0, top; c != nil; level, c = level+1, c.NextHalf {
		for i, mu := range c.Mu {
			if !approxEqual(mu, value, 1e-4) {
				t.Errorf("level %d index %d: got Mu %g; want constant %g", level, i, mu, value)
			}
		}
		for i, sq := range c.ImgSqBlur {
			if !approxEqual(sq, value*value, 1e-4) {
				t.Errorf("level %d index %d: got ImgSqBlur %g; want %g", level, i, sq, value*value)
			}
		}
		if c.BlurSize != attr.blurSize(false) {
			t.Errorf("level %d: got BlurSize %d; want %d", level, c.BlurSize, attr.blurSize(false))
		}
	}
}

func TestPreprocessChromaPreblursInPlace(t *testing.T) {
	attr := NewAttr()
	top := newChannel(8, 8, true)
	for i := range top.Img {
		top.Img[i] = 0.25
	}
	buildPyramid(top, attr.NumScales)
	preprocessChannel(top, attr)

	if top.BlurSize != attr.blurSize(true) {
		t.Errorf("got chroma BlurSize %d; want %d", top.BlurSize, attr.blurSize(true))
	}
	for i, mu := range top.Mu {
		if !approxEqual(mu, 0.25, 1e-4) {
			t.Errorf("index %d: got Mu %g; want 0.25", i, mu)
		}
	}
}

func TestImageReleasePutsChannelsToNil(t *testing.T) {
	top := newChannel(4, 4, false)
	attr := NewAttr()
	buildPyramid(top, attr.NumScales)
	preprocessChannel(top, attr)

	im := &Image{Channels: []*channel{top}}
	im.Release()

	for c := top; c != nil; c = c.NextHalf {
		if c.Img != nil || c.Mu != nil || c.ImgSqBlur != nil {
			t.Errorf("got non-nil plane after Release at level with %dx%d", c.Width, c.Height)
		}
	}
}
