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

// Package dssim computes a multi-scale perceptual dissimilarity metric
// between two raster images, on a Lab-like opponent color space.
package dssim

// MaxScales bounds num_scales; requests above it are clamped, not rejected.
const MaxScales = 5

// defaultScaleWeights are the weights applied to scale_weights when the
// caller passes nil/empty weights to SetScales.
var defaultScaleWeights = [MaxScales]float64{0.0448, 0.2856, 0.3001, 0.2363, 0.1333}

// Attr is a DSSIM configuration bundle: scale weights, color weight, detail
// size, chroma subsampling toggle, and an owned scratch buffer grown on
// demand and reused across Compare calls. Not safe for concurrent use.
type Attr struct {
	ColorWeight     float64   // weight applied to chroma channels, default 0.95
	NumScales       int       // number of pyramid scales, clamped to [1, MaxScales]
	ScaleWeights    []float64 // renormalized to sum 1, length NumScales
	DetailSize      int       // non-negative; larger values desensitize to fine detail
	SubsampleChroma bool      // default true

	tmp  []float32 // grow-only scratch, shared across Preprocess/Compare calls
	warn clampWarning
}

// NewAttr returns a default-configured Attr: color weight 0.95, 4 scales
// with the documented default weights, detail size 1, chroma subsampling on.
func NewAttr() *Attr {
	a := &Attr{
		ColorWeight:     0.95,
		DetailSize:      1,
		SubsampleChroma: true,
	}
	a.SetScales(4, nil)
	return a
}

// SetScales sets the number of pyramid scales and their weights. num is
// clamped to [1, MaxScales]. A nil or empty weights slice selects the
// documented defaults, truncated/extended to match num. In either case the
// stored weights are renormalized to sum to 1.
func (a *Attr) SetScales(num int, weights []float64) {
	if num < 1 {
		num = 1
	}
	if num > MaxScales {
		num = MaxScales
	}
	a.NumScales = num

	w := make([]float64, num)
	if len(weights) == 0 {
		copy(w, defaultScaleWeights[:num])
	} else {
		for i := 0; i < num; i++ {
			if i < len(weights) {
				w[i] = weights[i]
			} else {
				w[i] = defaultScaleWeights[i]
			}
		}
	}

	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum > 0 {
		for i := range w {
			w[i] /= sum
		}
	}
	a.ScaleWeights = w
}

// SetColorHandling sets the chroma channel weight and the chroma
// subsampling toggle in one call, matching dssim_set_color_handling.
func (a *Attr) SetColorHandling(colorWeight float64, subsampleChroma bool) {
	a.ColorWeight = colorWeight
	a.SubsampleChroma = subsampleChroma
}

// blurSize returns the number of box-blur passes used for mu/E[x²] of a
// channel, per §4.4: (is_chroma ? 2 : 1) × (detail_size + 1).
func (a *Attr) blurSize(isChroma bool) int {
	mult := 1
	if isChroma {
		mult = 2
	}
	return mult * (a.DetailSize + 1)
}

// getTmp returns the attribute's scratch buffer, grown (never shrunk) to at
// least size floats. Mirrors dssim_get_tmp's grow-only policy.
func (a *Attr) getTmp(size int) []float32 {
	if cap(a.tmp) < size {
		a.tmp = make([]float32, size)
	}
	return a.tmp[:size]
}

// Dealloc releases the attribute's scratch buffer. The zero value of Attr
// is otherwise safely collectible; Dealloc exists for symmetry with the
// explicit-lifecycle style of the rest of this package.
func (a *Attr) Dealloc() {
	a.tmp = nil
}
