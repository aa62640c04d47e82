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

	"github.com/mlnoga/dssim/internal/pool"
)

// ssimC1, ssimC2 are the SSIM stabilizing constants, 0.01² and 0.03².
const (
	ssimC1 = 0.0001
	ssimC2 = 0.0009
)

// Compare computes the weighted multi-scale DSSIM between original and
// modified, walking both pyramids channel-by-channel, scale-by-scale in
// lockstep. It is destructive on modified: each visited channel/scale's Img
// plane is multiplied in place by original's and becomes the product-blur
// buffer, and its Mu/ImgSqBlur are released (or, for channel 0 scale 0 when
// wantMap is true, Mu is handed back as the returned map). Running Compare
// twice against the same modified image is undefined.
//
// Dimension mismatches at a visited scale contribute a sub-measure of 0 and
// are excluded from the weighted total; iteration of a channel's scale
// chain stops as soon as either side lacks a NextHalf. Compare never
// panics: it returns NaN only when no
// channel/scale pair was visited at all (e.g. zero channels in common), and
// 0 when every visited pair was a dimension mismatch.
func Compare(attr *Attr, original, modified *Image, wantMap bool) (float64, []float32) {
	numChannels := len(original.Channels)
	if n := len(modified.Channels); n < numChannels {
		numChannels = n
	}

	var sum, total float64
	var visited bool
	var mapOut []float32

	for ch := 0; ch < numChannels; ch++ {
		c1 := original.Channels[ch]
		c2 := modified.Channels[ch]
		isChroma := ch > 0

		for scale := 0; c1 != nil && c2 != nil && scale < attr.NumScales; scale++ {
			visited = true

			if c1.Width != c2.Width || c1.Height != c2.Height {
				c1, c2 = c1.NextHalf, c2.NextHalf
				continue
			}

			weight := attr.ScaleWeights[scale]
			if isChroma {
				weight *= attr.ColorWeight
			}

			wantThisMap := wantMap && ch == 0 && scale == 0
			mean, m := compareChannelScale(attr, c1, c2, wantThisMap)
			sum += weight * mean
			total += weight
			if m != nil {
				mapOut = m
			}

			c1, c2 = c1.NextHalf, c2.NextHalf
		}
	}

	if total > 0 {
		return 1.0/(sum/total) - 1.0, mapOut
	}
	if visited {
		return 0, mapOut
	}
	return math.NaN(), mapOut
}

// compareChannelScale computes the mean SSIM over one channel/scale pair,
// destructively consuming modified's Img (product blur) and releasing its
// Mu/ImgSqBlur once done. Mu is also always cleared on modified: if keepMap
// is set it is repurposed in place to hold the per-pixel SSIM map and
// handed to the caller, who now owns that plane, so it must not also stay
// reachable from modified for a later Release to pool.
func compareChannelScale(attr *Attr, original, modified *channel, keepMap bool) (mean float64, mapOut []float32) {
	w, h := original.Width, original.Height
	n := w * h
	tmp := attr.getTmp(blurTmpSize(w, h))

	for i := 0; i < n; i++ {
		modified.Img[i] *= original.Img[i]
	}
	blurPlane(modified.Img, tmp, modified.Img, w, h, modified.BlurSize, nil)
	productBlur := modified.Img
	modified.Img = nil

	var mapBuf []float32
	if keepMap {
		mapBuf = modified.Mu
	}

	var sum float64
	for i := 0; i < n; i++ {
		mu1 := float64(original.Mu[i])
		mu2 := float64(modified.Mu[i])
		mu1Sq := mu1 * mu1
		mu2Sq := mu2 * mu2
		mu1Mu2 := mu1 * mu2

		sigma1Sq := float64(original.ImgSqBlur[i]) - mu1Sq
		sigma2Sq := float64(modified.ImgSqBlur[i]) - mu2Sq
		sigma12 := float64(productBlur[i]) - mu1Mu2

		ssim := ((2*mu1Mu2 + ssimC1) * (2*sigma12 + ssimC2)) /
			((mu1Sq + mu2Sq + ssimC1) * (sigma1Sq + sigma2Sq + ssimC2))

		sum += ssim
		if mapBuf != nil {
			mapBuf[i] = float32(ssim)
		}
	}

	pool.PutFloat32(productBlur)
	pool.PutFloat32(modified.ImgSqBlur)
	modified.ImgSqBlur = nil
	if !keepMap {
		pool.PutFloat32(modified.Mu)
	}
	modified.Mu = nil

	return sum / float64(n), mapBuf
}
