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

func sumWeights(w []float64) float64 {
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum
}

func TestNewAttrDefaults(t *testing.T) {
	a := NewAttr()
	if a.NumScales != 4 {
		t.Errorf("got NumScales %d; want 4", a.NumScales)
	}
	if len(a.ScaleWeights) != 4 {
		t.Errorf("got len(ScaleWeights) %d; want 4", len(a.ScaleWeights))
	}
	if a.ColorWeight != 0.95 {
		t.Errorf("got ColorWeight %g; want 0.95", a.ColorWeight)
	}
	if !a.SubsampleChroma {
		t.Errorf("got SubsampleChroma false; want true")
	}
	if a.DetailSize != 1 {
		t.Errorf("got DetailSize %d; want 1", a.DetailSize)
	}
}

func TestSetScalesClampsRange(t *testing.T) {
	a := NewAttr()
	a.SetScales(0, nil)
	if a.NumScales != 1 {
		t.Errorf("got NumScales %d for request 0; want clamped to 1", a.NumScales)
	}
	a.SetScales(MaxScales+3, nil)
	if a.NumScales != MaxScales {
		t.Errorf("got NumScales %d for request over MaxScales; want clamped to %d", a.NumScales, MaxScales)
	}
}

func TestSetScalesNormalizesToOne(t *testing.T) {
	a := NewAttr()
	for _, num := range []int{1, 2, 3, 4, 5} {
		a.SetScales(num, nil)
		sum := sumWeights(a.ScaleWeights)
		if diff := sum - 1.0; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("num=%d: got weight sum %.15f; want 1 +/- 1e-12", num, sum)
		}
	}

	a.SetScales(3, []float64{2, 2})
	sum := sumWeights(a.ScaleWeights)
	if diff := sum - 1.0; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("got weight sum %.15f for partial custom weights; want 1", sum)
	}
}

func TestSetScalesCustomWeightsPreserveOrder(t *testing.T) {
	a := NewAttr()
	a.SetScales(3, []float64{1, 1, 2})
	if a.ScaleWeights[2] <= a.ScaleWeights[0] {
		t.Errorf("got weights %v; want weight[2] > weight[0] for custom input {1,1,2}", a.ScaleWeights)
	}
}

func TestSetColorHandling(t *testing.T) {
	a := NewAttr()
	a.SetColorHandling(0.5, false)
	if a.ColorWeight != 0.5 {
		t.Errorf("got ColorWeight %g; want 0.5", a.ColorWeight)
	}
	if a.SubsampleChroma {
		t.Errorf("got SubsampleChroma true; want false")
	}
}

func TestBlurSize(t *testing.T) {
	a := NewAttr()
	a.DetailSize = 1
	if got := a.blurSize(false); got != 2 {
		t.Errorf("got luma blurSize %d; want 2", got)
	}
	if got := a.blurSize(true); got != 4 {
		t.Errorf("got chroma blurSize %d; want 4", got)
	}
}

func TestGetTmpGrowOnly(t *testing.T) {
	a := NewAttr()
	first := a.getTmp(16)
	if len(first) != 16 {
		t.Fatalf("got len %d; want 16", len(first))
	}
	second := a.getTmp(8)
	if len(second) != 8 {
		t.Errorf("got len %d; want 8", len(second))
	}
	if cap(second) < 16 {
		t.Errorf("got cap %d after shrinking request; want retained cap >= 16", cap(second))
	}
	third := a.getTmp(32)
	if len(third) != 32 {
		t.Errorf("got len %d; want 32", len(third))
	}
}

func TestDealloc(t *testing.T) {
	a := NewAttr()
	a.getTmp(16)
	a.Dealloc()
	if a.tmp != nil {
		t.Errorf("got non-nil tmp after Dealloc")
	}
}
