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

// rowCallback optionally preprocesses a blur's input row before the first
// blur pass consumes it, writing the result into scratch. Used to square a
// channel's samples in place while blurring, for the E[x²] plane.
type rowCallback func(src []float32, scratch []float32, width int)

// squareRow implements rowCallback by squaring each input sample.
func squareRow(src []float32, scratch []float32, width int) {
	for i := 0; i < width; i++ {
		scratch[i] = src[i] * src[i]
	}
}

// transpose writes the transpose of a width×height row-major image into dst,
// which must have capacity for height×width floats. Blocks by 4 rows at a
// time for cache friendliness.
func transpose(src, dst []float32, width, height int) {
	j := 0
	for ; j+4 <= height; j += 4 {
		row0 := src[(j+0)*width : (j+1)*width]
		row1 := src[(j+1)*width : (j+2)*width]
		row2 := src[(j+2)*width : (j+3)*width]
		row3 := src[(j+3)*width : (j+4)*width]
		for i := 0; i < width; i++ {
			o := i*height + j
			dst[o+0] = row0[i]
			dst[o+1] = row1[i]
			dst[o+2] = row2[i]
			dst[o+3] = row3[i]
		}
	}
	for ; j < height; j++ {
		row := src[j*width : (j+1)*width]
		for i := 0; i < width; i++ {
			dst[i*height+j] = row[i]
		}
	}
}

// regular1DBlur runs `runs` sequential 3-tap box-blur passes along rows of a
// width×height image, ping-ponging between the two half-width scratch lanes
// of tmp. An optional callback preprocesses the very first row read.
//
// When runs==1, src and dst are always staged through scratch first: this
// guarantees correctness even when the caller passes the same backing plane
// as both src and dst (as the chroma-independent product blur in Compare
// does for detail_size==0 configurations), at the cost of one extra copy in
// that otherwise-rare case.
func regular1DBlur(src, tmp, dst []float32, width, height, runs int, callback rowCallback) {
	tmp1 := tmp[:width]
	tmp2 := tmp[width : 2*width]

	for j := 0; j < height; j++ {
		srcRow := src[j*width : (j+1)*width]
		dstRow := dst[j*width : (j+1)*width]

		if runs == 1 {
			row := srcRow
			if callback != nil {
				callback(row, tmp2, width)
				row = tmp2
			}
			blur1DRow(tmp1, row, width)
			copy(dstRow, tmp1)
			continue
		}

		for run := 0; run < runs; run++ {
			var row []float32
			switch {
			case run == 0:
				row = srcRow
			case run&1 == 1:
				row = tmp1
			default:
				row = tmp2
			}
			var out []float32
			switch {
			case run == runs-1:
				out = dstRow
			case run&1 == 1:
				out = tmp2
			default:
				out = tmp1
			}
			if run == 0 && callback != nil {
				callback(row, tmp2, width)
				row = tmp2
			}
			blur1DRow(out, row, width)
		}
	}
}

// blurTmpSize returns the scratch length blurPlane is given for a
// width×height plane: max(width*height, 2*width, 2*height). tmp holds the
// full transposed plane and the two row-scratch lanes of the first-axis
// pass; for short planes (e.g. height==1) those lanes exceed width*height.
// The second-axis pass takes its lanes from dst instead, see blurPlane.
func blurTmpSize(width, height int) int {
	size := width * height
	if n := 2 * width; n > size {
		size = n
	}
	if n := 2 * height; n > size {
		size = n
	}
	return size
}

// blurPlane runs a separable blur of size sequential 3-tap box passes per
// axis over a width×height plane, writing into dst. tmp must have capacity
// for at least blurTmpSize(width, height) floats; src and dst may alias (see
// regular1DBlur's runs==1 handling). The second-axis pass uses dst as its
// row scratch, or a separate 2*height buffer when dst is shorter than that
// (planes one pixel wide).
func blurPlane(src, tmp, dst []float32, width, height, size int, callback rowCallback) {
	regular1DBlur(src, tmp, dst, width, height, size, callback)
	transpose(dst, tmp, width, height)
	lanes := dst
	if len(dst) < 2*height {
		lanes = make([]float32, 2*height)
	}
	regular1DBlur(tmp, lanes, tmp, height, width, size, nil)
	transpose(tmp, dst, height, width)
}

// blur1DRowSimple computes the 3-tap box average with edge-clamped borders,
// one sample at a time. Correct for every width, including 0, 1, 2 or 3.
func blur1DRowSimple(dst, src []float32, width int) {
	for i := 0; i < width; i++ {
		lo := i - 1
		if lo < 0 {
			lo = 0
		}
		hi := i + 1
		if hi > width-1 {
			hi = width - 1
		}
		dst[i] = (src[lo] + src[i] + src[hi]) / 3.0
	}
}

// blur1DRowUnrolled runs a 4-wide unrolled inner loop for width>=4, falling
// back to the simple loop for shorter rows.
func blur1DRowUnrolled(dst, src []float32, width int) {
	if width < 4 {
		blur1DRowSimple(dst, src, width)
		return
	}
	i := 0
	for ; i < 4; i++ {
		lo := i - 1
		if lo < 0 {
			lo = 0
		}
		hi := i + 1
		if hi > width-1 {
			hi = width - 1
		}
		dst[i] = (src[lo] + src[i] + src[hi]) / 3.0
	}
	end := (width - 1) &^ 3
	for ; i < end; i += 4 {
		p1 := src[i-1]
		n0 := src[i+0]
		n1 := src[i+1]
		n2 := src[i+2]
		n3 := src[i+3]
		n4 := src[i+4]
		dst[i+0] = (p1 + n0 + n1) / 3.0
		dst[i+1] = (n0 + n1 + n2) / 3.0
		dst[i+2] = (n1 + n2 + n3) / 3.0
		dst[i+3] = (n2 + n3 + n4) / 3.0
	}
	for ; i < width; i++ {
		lo := i - 1
		if lo < 0 {
			lo = 0
		}
		hi := i + 1
		if hi > width-1 {
			hi = width - 1
		}
		dst[i] = (src[lo] + src[i] + src[hi]) / 3.0
	}
}
