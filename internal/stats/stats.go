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

// Package stats reports summary statistics over a per-pixel dissimilarity
// map, for display purposes only — nothing here feeds back into the DSSIM
// computation itself.
package stats

import (
	"fmt"
	"math"
	"strings"

	"github.com/mlnoga/dssim/internal/qsort"
	"github.com/valyala/fastrand"
)

// Map holds summary statistics over a dissimilarity map, calculated lazily
// and cached on first access.
type Map struct {
	data []float32

	min, max, mean    float32
	stdDev            float32
	location, scale   float32
	mode, spread      float32
	haveMMM           bool
	haveStdDev        bool
	haveLocationScale bool
	haveModeSpread    bool
}

// NewMap wraps a per-pixel dissimilarity map for statistics reporting.
func NewMap(data []float32) *Map {
	return &Map{data: data}
}

func (m *Map) Min() float32 {
	m.ensureMMM()
	return m.min
}

func (m *Map) Max() float32 {
	m.ensureMMM()
	return m.max
}

func (m *Map) Mean() float32 {
	m.ensureMMM()
	return m.mean
}

func (m *Map) StdDev() float32 {
	if !m.haveStdDev {
		variance := float64(0)
		mean := float64(m.Mean())
		for _, v := range m.data {
			diff := float64(v) - mean
			variance += diff * diff
		}
		variance /= float64(len(m.data))
		m.stdDev = float32(math.Sqrt(variance))
		m.haveStdDev = true
	}
	return m.stdDev
}

// Location and Scale report a robust location/scale pair (median and the
// median absolute deviation scaled by 1.4826). Maps of 4096 or more values
// are estimated from randomized subsamples, cheaper than a full sort;
// smaller maps are computed exactly.
func (m *Map) Location() float32 {
	m.ensureLocationScale()
	return m.location
}

func (m *Map) Scale() float32 {
	m.ensureLocationScale()
	return m.scale
}

// numHistogramBins is the bin count used to fit Mode/Spread, generous
// enough for dissimilarity maps' usual near-zero-heavy, long-tailed shape.
const numHistogramBins = 64

// Mode and Spread report a Gaussian fit (via Histogram/GetModeStdDevFromHistogram)
// over the map's distribution: where most pixels cluster and how tightly,
// distinct from Location/Scale's robust median/MAD estimate. Falls back to
// Mean/StdDev if the fit fails to converge (e.g. a degenerate single-value map).
func (m *Map) Mode() float32 {
	m.ensureModeSpread()
	return m.mode
}

func (m *Map) Spread() float32 {
	m.ensureModeSpread()
	return m.spread
}

func (m *Map) ensureModeSpread() {
	if m.haveModeSpread {
		return
	}
	bins := make([]int32, numHistogramBins)
	Histogram(m.data, m.Min(), m.Max(), bins)
	mode, spread, err := GetModeStdDevFromHistogram(bins, m.Min(), m.Max())
	if err != nil {
		mode, spread = m.Mean(), m.StdDev()
	}
	m.mode, m.spread = mode, spread
	m.haveModeSpread = true
}

func (m *Map) ensureMMM() {
	if m.haveMMM {
		return
	}
	mn, mx, sum := m.data[0], m.data[0], float64(0)
	for _, v := range m.data {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
		sum += float64(v)
	}
	m.min, m.max = mn, mx
	m.mean = float32(sum / float64(len(m.data)))
	m.haveMMM = true
}

func (m *Map) ensureLocationScale() {
	if m.haveLocationScale {
		return
	}
	const numSamples = 4096
	n := uint32(len(m.data))
	if int(n) < numSamples {
		m.location, m.scale = exactMedianAndMAD(m.data)
		m.haveLocationScale = true
		return
	}

	samples := make([]float32, numSamples)
	rng := fastrand.RNG{}
	for i := range samples {
		samples[i] = m.data[rng.Uint32n(n)]
	}
	median := qsort.QSelectMedianFloat32(samples)

	for i := range samples {
		samples[i] = m.data[rng.Uint32n(n)]
	}
	mad := medianAbsDev(samples, median)

	m.location, m.scale = median, mad
	m.haveLocationScale = true
}

// exactMedianAndMAD computes median and MAD directly, for maps too small to
// benefit from random subsampling.
func exactMedianAndMAD(data []float32) (median, mad float32) {
	tmp := make([]float32, len(data))
	copy(tmp, data)
	median = qsort.QSelectMedianFloat32(tmp)
	return median, medianAbsDev(data, median)
}

func medianAbsDev(data []float32, median float32) float32 {
	tmp := make([]float32, len(data))
	for i, v := range data {
		tmp[i] = float32(math.Abs(float64(v - median)))
	}
	return qsort.QSelectMedianFloat32(tmp) * 1.4826
}

// String renders the available statistics, precision scaled to the map's
// magnitude.
func (m *Map) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "Min %.6g Max %.6g Mean %.6g", m.Min(), m.Max(), m.Mean())
	fmt.Fprintf(&b, " StdDev %.6g", m.StdDev())
	fmt.Fprintf(&b, " Location %.6g Scale %.6g", m.Location(), m.Scale())
	fmt.Fprintf(&b, " Mode %.6g Spread %.6g", m.Mode(), m.Spread())
	return b.String()
}
