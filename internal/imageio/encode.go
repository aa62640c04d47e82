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

package imageio

import (
	"bufio"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"

	"github.com/mlnoga/dssim/internal/heatmap"
)

// WriteMapTIFF16ToFile renders a width×height dissimilarity map to a 16 bit
// grayscale TIFF, scaling [0, maxVal] to the full output range.
func WriteMapTIFF16ToFile(fileName string, values []float32, width, height int, maxVal float32) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	return WriteMapTIFF16(w, values, width, height, maxVal)
}

// WriteMapTIFF16 writes a 16 bit grayscale TIFF of the dissimilarity map.
func WriteMapTIFF16(w io.Writer, values []float32, width, height int, maxVal float32) error {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	scale := float32(1)
	if maxVal > 0 {
		scale = 1 / maxVal
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := values[y*width+x] * scale
			if math.IsNaN(float64(v)) || v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v * 65535)})
		}
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// WriteHeatmapPNGToFile renders the dissimilarity map to a pseudo-colored
// PNG via internal/heatmap and writes it to fileName.
func WriteHeatmapPNGToFile(fileName string, values []float32, width, height int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	defer w.Flush()

	img, err := heatmap.Render(values, width, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return err
	}
	return nil
}
