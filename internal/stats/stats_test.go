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

package stats

import (
	"strings"
	"testing"
)

func TestMapMinMaxMean(t *testing.T) {
	m := NewMap([]float32{1, 2, 3, 4, 5})
	if m.Min() != 1 {
		t.Errorf("got Min %g; want 1", m.Min())
	}
	if m.Max() != 5 {
		t.Errorf("got Max %g; want 5", m.Max())
	}
	if m.Mean() != 3 {
		t.Errorf("got Mean %g; want 3", m.Mean())
	}
}

func TestMapStdDevZeroForConstantData(t *testing.T) {
	m := NewMap([]float32{2, 2, 2, 2})
	if m.StdDev() != 0 {
		t.Errorf("got StdDev %g; want 0 for constant data", m.StdDev())
	}
}

func TestMapLocationScaleSmallExact(t *testing.T) {
	m := NewMap([]float32{1, 2, 3, 4, 5})
	if m.Location() != 3 {
		t.Errorf("got Location %g; want median 3", m.Location())
	}
	if m.Scale() < 0 {
		t.Errorf("got Scale %g; want >= 0", m.Scale())
	}
}

func TestMapLocationScaleLargeSampled(t *testing.T) {
	data := make([]float32, 10000)
	for i := range data {
		data[i] = float32(i % 100)
	}
	m := NewMap(data)
	if m.Location() < 0 || m.Location() > 99 {
		t.Errorf("got Location %g; want within data range [0,99]", m.Location())
	}
}

func TestMapModeSpreadOnDegenerateDataDoesNotPanic(t *testing.T) {
	m := NewMap([]float32{0.5, 0.5, 0.5, 0.5})
	mode, spread := m.Mode(), m.Spread()
	if mode != mode || spread != spread { // NaN check
		t.Errorf("got Mode=%g Spread=%g; want finite values even for degenerate (constant) data", mode, spread)
	}
}

func TestMapStringContainsAllFields(t *testing.T) {
	m := NewMap([]float32{0, 0.2, 0.4, 0.6, 0.8, 1.0})
	s := m.String()
	for _, want := range []string{"Min", "Max", "Mean", "StdDev", "Location", "Scale", "Mode", "Spread"} {
		if !strings.Contains(s, want) {
			t.Errorf("got %q; want it to contain %q", s, want)
		}
	}
}

func TestHistogramBucketsAndPeak(t *testing.T) {
	data := []float32{0, 0, 0, 0.5, 1, 1}
	bins := make([]int32, 4)
	Histogram(data, 0, 1, bins)

	var total int32
	for _, c := range bins {
		total += c
	}
	if total != int32(len(data)) {
		t.Errorf("got total bin count %d; want %d", total, len(data))
	}

	loc, count := GetPeak(bins, 0, 1)
	if count < 2 {
		t.Errorf("got peak count %d; want >= 2 (the three zeros should dominate a bin)", count)
	}
	if loc < 0 || loc > 1 {
		t.Errorf("got peak location %g; want within [0,1]", loc)
	}
}

func TestHistogramEmptyRangeLeavesZeroBins(t *testing.T) {
	bins := []int32{9, 9, 9}
	Histogram([]float32{1, 2, 3}, 5, 5, bins)
	for i, c := range bins {
		if c != 0 {
			t.Errorf("bin %d: got %d; want 0 when max<=min", i, c)
		}
	}
}
