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

//go:build amd64

package dssim

import "github.com/klauspost/cpuid"

// hasAVX2 is resolved once at package init. There is no hand-written
// assembly in this package:
// AVX2 availability only chooses between two portable-Go loop shapes, the
// 4-wide unrolled one being friendlier to the compiler's auto-vectorizer on
// AVX2 hosts.
var hasAVX2 = cpuid.CPU.AVX2()

// blur1DRow dispatches to the unrolled or simple row blur depending on
// whether the host supports AVX2.
func blur1DRow(dst, src []float32, width int) {
	if hasAVX2 {
		blur1DRowUnrolled(dst, src, width)
		return
	}
	blur1DRowSimple(dst, src, width)
}
