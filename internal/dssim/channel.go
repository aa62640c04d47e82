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

import "github.com/mlnoga/dssim/internal/pool"

// channel represents one color channel at one pyramid scale: a pixel plane
// plus, once preprocessed, its box-blurred mean and mean-of-squares planes.
// NextHalf chains to the same channel at half resolution, or nil at the
// smallest scale reached.
type channel struct {
	Width, Height int
	Img           []float32
	Mu            []float32
	ImgSqBlur     []float32
	BlurSize      int
	IsChroma      bool
	NextHalf      *channel
}

func newChannel(width, height int, isChroma bool) *channel {
	return &channel{
		Width:    width,
		Height:   height,
		IsChroma: isChroma,
		Img:      pool.GetFloat32(width * height),
	}
}

// release returns a level's pixel planes to the shared pool. Safe to call
// on partially-consumed levels (Compare nils out fields as it consumes
// them); pool.PutFloat32 is a no-op on nil.
func (c *channel) release() {
	pool.PutFloat32(c.Img)
	pool.PutFloat32(c.Mu)
	pool.PutFloat32(c.ImgSqBlur)
	c.Img, c.Mu, c.ImgSqBlur = nil, nil, nil
}

// downsample2x2 returns a new channel at floor(w/2)×floor(h/2), each pixel
// the arithmetic mean of a 2×2 block, or nil if either resulting dimension
// would be zero.
func downsample2x2(c *channel) *channel {
	w2, h2 := c.Width/2, c.Height/2
	if w2 == 0 || h2 == 0 {
		return nil
	}
	next := newChannel(w2, h2, c.IsChroma)
	for y := 0; y < h2; y++ {
		row0 := c.Img[(2*y)*c.Width : (2*y+1)*c.Width]
		row1 := c.Img[(2*y+1)*c.Width : (2*y+2)*c.Width]
		out := next.Img[y*w2 : (y+1)*w2]
		for x := 0; x < w2; x++ {
			out[x] = (row0[2*x] + row0[2*x+1] + row1[2*x] + row1[2*x+1]) / 4.0
		}
	}
	return next
}

// buildPyramid extends top with up to numScales-1 further NextHalf levels,
// each a raw (unblurred) 2×2 downsample of the previous, stopping early if
// a dimension would reach zero. Must run before any in-place channel
// preprocessing, since preprocessing may mutate a level's Img in place.
func buildPyramid(top *channel, numScales int) {
	cur := top
	for s := 1; s < numScales; s++ {
		next := downsample2x2(cur)
		if next == nil {
			break
		}
		cur.NextHalf = next
		cur = next
	}
}

// preprocessChannel walks the full NextHalf chain rooted at top and fills
// in Mu/ImgSqBlur/BlurSize at every level, smallest scale first. Chroma
// levels are pre-blurred in place (2 passes) before their statistics are
// computed, per §4.4.
func preprocessChannel(top *channel, attr *Attr) {
	var levels []*channel
	for c := top; c != nil; c = c.NextHalf {
		levels = append(levels, c)
	}
	for i := len(levels) - 1; i >= 0; i-- {
		preprocessLevel(levels[i], attr)
	}
}

func preprocessLevel(c *channel, attr *Attr) {
	tmp := attr.getTmp(blurTmpSize(c.Width, c.Height))

	if c.IsChroma {
		blurPlane(c.Img, tmp, c.Img, c.Width, c.Height, 2, nil)
	}

	c.BlurSize = attr.blurSize(c.IsChroma)

	c.Mu = pool.GetFloat32(c.Width * c.Height)
	blurPlane(c.Img, tmp, c.Mu, c.Width, c.Height, c.BlurSize, nil)

	c.ImgSqBlur = pool.GetFloat32(c.Width * c.Height)
	blurPlane(c.Img, tmp, c.ImgSqBlur, c.Width, c.Height, c.BlurSize, squareRow)
}
