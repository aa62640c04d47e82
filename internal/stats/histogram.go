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
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Histogram buckets data between min and max into len(bins) equal-width
// bins, for reporting the distribution shape of a dissimilarity map.
func Histogram(data []float32, min, max float32, bins []int32) {
	for i := range bins {
		bins[i] = 0
	}
	if max <= min {
		return
	}
	scale := float32(len(bins)) / (max - min)
	for _, d := range data {
		index := int((d - min) * scale)
		if index >= len(bins) {
			index = len(bins) - 1
		}
		bins[index]++
	}
}

// GetPeak returns the location and count of a histogram's tallest bin.
func GetPeak(bins []int32, min, max float32) (x float32, y int32) {
	maxIndex, maxValue := 0, int32(math.MinInt32)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	x = min + (float32(maxIndex)+0.5)*(max-min)/float32(len(bins))
	return x, maxValue
}

// GetModeStdDevFromHistogram fits a Gaussian to the histogram via
// Nelder-Mead minimization of squared residuals, returning the fitted mode
// and spread: summarizes the shape of a dissimilarity map's distribution
// (most pixels near the low end, a long tail of large differences).
func GetModeStdDevFromHistogram(bins []int32, min, max float32) (mode, spread float32, err error) {
	peakLoc, peakVal := GetPeak(bins, min, max)

	x0 := []float64{float64(peakVal), float64(peakLoc), float64(max-min) / 20}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			alpha, mu, sigma := float32(x[0]), float32(x[1]), float32(x[2])
			if sigma <= 0 {
				return math.MaxFloat64
			}
			scaler := alpha / (sigma * float32(math.Sqrt(2*math.Pi)))
			sumSqDiff := float32(0)
			for i, y := range bins {
				xi := min + (float32(i)+0.5)*(max-min)/float32(len(bins))
				xmusig := (xi - mu) / sigma
				yPredict := scaler * float32(math.Exp(float64(-0.5*xmusig*xmusig)))
				diff := float32(y) - yPredict
				sumSqDiff += diff * diff
			}
			variance := sumSqDiff / float32(len(bins))
			return math.Sqrt(float64(variance))
		},
	}

	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, 0, err
	}
	return float32(result.X[1]), float32(result.X[2]), nil
}
