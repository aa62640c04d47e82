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

// Package pool provides a pool of constant-sized float32 arrays, to reduce
// garbage collector pressure when an HTTP server repeatedly allocates
// same-sized scratch buffers for image channels.
package pool

import "sync"

var poolFloat32 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

// Clears the pool and triggers garbage collection of its contents
func Clear() {
	poolFloat32.Lock()
	poolFloat32.m = make(map[int]*sync.Pool)
	poolFloat32.Unlock()
}

func getSizedPool(size int) *sync.Pool {
	poolFloat32.RLock()
	p := poolFloat32.m[size]
	poolFloat32.RUnlock()
	if p == nil {
		p = &sync.Pool{
			New: func() interface{} {
				return make([]float32, size)
			},
		}
		poolFloat32.Lock()
		poolFloat32.m[size] = p
		poolFloat32.Unlock()
	}
	return p
}

// Retrieves a zero-filled float32 array of the given size from the pool
func GetFloat32(size int) []float32 {
	p := getSizedPool(size)
	arr := p.Get().([]float32)
	for i := range arr {
		arr[i] = 0
	}
	return arr
}

// Returns a float32 array to the pool for later reuse
func PutFloat32(arr []float32) {
	if arr == nil {
		return
	}
	p := getSizedPool(cap(arr))
	p.Put(arr[:cap(arr)])
}
