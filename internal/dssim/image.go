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

import "errors"

// ErrInvalidImage is returned by the image constructors on an unsupported
// channel count or color type. There is no retry or partial-result path:
// construction either fully succeeds or fails outright.
var ErrInvalidImage = errors.New("dssim: no image (invalid channel count or color type)")

// ColorType selects how raw input bytes or floats are interpreted at the
// image construction boundary.
type ColorType int

const (
	Gray       ColorType = iota // 1 byte/pixel, 1 channel
	RGB                         // 3 bytes/pixel, 3 channels
	RGBA                        // 4 bytes/pixel, 3 channels after compositing
	RGBAToGray                  // 4 bytes/pixel, 1 channel (luma only)
	Luma                        // 1 pre-normalized float/pixel, 1 channel
	Lab                         // 3 pre-normalized floats/pixel, 3 channels
)

func (ct ColorType) numChannels() int {
	switch ct {
	case Gray, RGBAToGray, Luma:
		return 1
	case RGB, RGBA, Lab:
		return 3
	default:
		return 0
	}
}

// RowProducer fills one row (index y, 0-based, increasing) of each channel
// plane at full luma width. len(rows) == numChannels; every rows[i] has
// capacity for width floats. Chroma channels receive full-width rows too —
// subsampling is performed internally by the image constructor.
type RowProducer func(rows [][]float32, numChannels, y, width int)

// Image is an ordered list of 1 or 3 channels, channel 0 being luma and, if
// present, channels 1-2 being chroma. Images are immutable once built
// except that Compare destructively consumes the "modified" side's buffers
// — see compare.go. Release hands the channel planes back to the shared
// buffer pool once the Image is no longer needed.
type Image struct {
	Channels []*channel
}

// Width and Height report the luma (channel 0) scale-0 dimensions.
func (im *Image) Width() int  { return im.Channels[0].Width }
func (im *Image) Height() int { return im.Channels[0].Height }

// Release returns every channel/scale's pixel planes to the shared pool.
// Call once an Image is no longer needed, after the last Compare call that
// references it; fields left over from a destructive Compare (see
// compare.go) are already nil and release is a no-op for them.
func (im *Image) Release() {
	for _, top := range im.Channels {
		for c := top; c != nil; c = c.NextHalf {
			c.release()
		}
	}
}

// NewImage is the row-callback construction entry: it drives producer once
// per luma row to fill the top pyramid level, subsamples chroma rows 2×2 in
// place if attr.SubsampleChroma, then builds the remaining pyramid scales
// and runs preprocessing (§4.3-4.4) on every channel before returning.
func NewImage(attr *Attr, numChannels, width, height int, producer RowProducer) (*Image, error) {
	if numChannels != 1 && numChannels != 3 {
		return nil, ErrInvalidImage
	}

	chans := make([]*channel, numChannels)
	for i := 0; i < numChannels; i++ {
		isChroma := i > 0
		w, h := width, height
		if isChroma && attr.SubsampleChroma {
			w, h = width/2, height/2
		}
		chans[i] = newChannel(w, h, isChroma)
	}

	rowBufs := make([][]float32, numChannels)
	for i := range rowBufs {
		rowBufs[i] = make([]float32, width)
	}

	var chromaPrev [][]float32
	subsample := attr.SubsampleChroma && numChannels == 3
	if subsample {
		chromaPrev = make([][]float32, numChannels)
		for i := 1; i < numChannels; i++ {
			chromaPrev[i] = make([]float32, width)
		}
	}

	for y := 0; y < height; y++ {
		producer(rowBufs, numChannels, y, width)

		copy(chans[0].Img[y*width:(y+1)*width], rowBufs[0])

		for i := 1; i < numChannels; i++ {
			if !subsample {
				copy(chans[i].Img[y*width:(y+1)*width], rowBufs[i])
				continue
			}
			if y%2 == 0 {
				copy(chromaPrev[i], rowBufs[i])
				continue
			}
			halfWidth := chans[i].Width
			if y/2 >= chans[i].Height {
				continue
			}
			outRow := chans[i].Img[(y/2)*halfWidth : (y/2+1)*halfWidth]
			prev, cur := chromaPrev[i], rowBufs[i]
			for x := 0; x < halfWidth; x++ {
				x0, x1 := 2*x, 2*x+1
				outRow[x] = (prev[x0] + prev[x1] + cur[x0] + cur[x1]) / 4.0
			}
		}
	}

	for _, c := range chans {
		buildPyramid(c, attr.NumScales)
		preprocessChannel(c, attr)
	}

	return &Image{Channels: chans}, nil
}

// RowBytes returns the raw bytes of row y (0-based), laid out per colorType
// (e.g. width*3 bytes for RGB). Called exactly once per row, in increasing
// y order.
type RowBytes func(y int) []byte

// NewImageFromBytes builds an Image from raw 8-bit pixel rows: Gray, RGB,
// RGBA (composited against the checkerboard background) or RGBAToGray.
func NewImageFromBytes(attr *Attr, colorType ColorType, width, height int, gamma float64, rows RowBytes) (*Image, error) {
	switch colorType {
	case Gray, RGB, RGBA, RGBAToGray:
	default:
		return nil, ErrInvalidImage
	}

	lut := buildGammaLUT(gamma)
	if colorType == Gray {
		initGrayLUT(lut)
	}

	producer := func(out [][]float32, numChannels, y, width int) {
		raw := rows(y)
		switch colorType {
		case Gray:
			for x := 0; x < width; x++ {
				out[0][x] = float32(lut[raw[x]])
			}
		case RGB:
			for x := 0; x < width; x++ {
				o := x * 3
				l, A, b, clamped := rgbToLab(lut, raw[o], raw[o+1], raw[o+2])
				if clamped {
					attr.warn.fire()
				}
				out[0][x], out[1][x], out[2][x] = float32(l), float32(A), float32(b)
			}
		case RGBA:
			for x := 0; x < width; x++ {
				o := x * 4
				l, A, b := convertPixelRGBA(lut, raw[o], raw[o+1], raw[o+2], raw[o+3], x, y, &attr.warn)
				out[0][x], out[1][x], out[2][x] = float32(l), float32(A), float32(b)
			}
		case RGBAToGray:
			for x := 0; x < width; x++ {
				o := x * 4
				l, _, _ := convertPixelRGBA(lut, raw[o], raw[o+1], raw[o+2], raw[o+3], x, y, &attr.warn)
				out[0][x] = float32(l)
			}
		}
	}

	return NewImage(attr, colorType.numChannels(), width, height, producer)
}

// RowFloats returns the pre-converted floats of row y for the Luma or Lab
// color types: width floats for Luma, width*3 interleaved l/A/b floats for
// Lab, each already normalized to [0,1].
type RowFloats func(y int) []float32

// NewImageFromFloatRows builds an Image from pre-converted float rows
// (Luma or Lab), copying values through without any gamma or color math.
func NewImageFromFloatRows(attr *Attr, colorType ColorType, width, height int, rows RowFloats) (*Image, error) {
	switch colorType {
	case Luma, Lab:
	default:
		return nil, ErrInvalidImage
	}

	producer := func(out [][]float32, numChannels, y, width int) {
		raw := rows(y)
		if colorType == Luma {
			copy(out[0][:width], raw[:width])
			return
		}
		for x := 0; x < width; x++ {
			o := x * 3
			out[0][x], out[1][x], out[2][x] = raw[o], raw[o+1], raw[o+2]
		}
	}

	return NewImage(attr, colorType.numChannels(), width, height, producer)
}
