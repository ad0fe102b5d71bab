// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nulls wrap up functions for the manipulation of bitmap library roaring.
// A block uses nulls to mark the missing cells of its buffer, addressed by
// the cell's offset in the block's column major buffer.
package nulls

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

type Nulls struct {
	Np *roaring.Bitmap
}

func New() *Nulls {
	return &Nulls{Np: roaring.New()}
}

func Build(rows ...uint64) *Nulls {
	nsp := New()
	Add(nsp, rows...)
	return nsp
}

// Any returns true if any bit in the Nulls is set, otherwise it will return false.
func Any(nsp *Nulls) bool {
	if nsp == nil || nsp.Np == nil {
		return false
	}
	return !nsp.Np.IsEmpty()
}

// Max returns the largest integer of the Nulls, ok is false when it is empty.
func Max(nsp *Nulls) (uint64, bool) {
	if !Any(nsp) {
		return 0, false
	}
	return uint64(nsp.Np.Maximum()), true
}

func String(nsp *Nulls) string {
	if nsp == nil || nsp.Np == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", nsp.Np.ToArray())
}

// Contains returns true if the integer is contained in the Nulls
func Contains(nsp *Nulls, row uint64) bool {
	return nsp != nil && nsp.Np != nil && nsp.Np.Contains(uint32(row))
}

func Add(nsp *Nulls, rows ...uint64) {
	if len(rows) == 0 {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	for _, row := range rows {
		nsp.Np.Add(uint32(row))
	}
}

// Range returns the integers of nsp in [start, end), shifted down by
// start. The result is nil when none of them is set.
func Range(nsp *Nulls, start, end uint64) *Nulls {
	if !Any(nsp) {
		return nil
	}
	var m *Nulls
	itr := nsp.Np.Iterator()
	itr.AdvanceIfNeeded(uint32(start))
	for itr.HasNext() {
		row := uint64(itr.Next())
		if row >= end {
			break
		}
		if m == nil {
			m = New()
		}
		m.Np.Add(uint32(row - start))
	}
	return m
}

// Foreach calls fn on every integer of nsp in increasing order.
func Foreach(nsp *Nulls, fn func(uint64)) {
	if !Any(nsp) {
		return
	}
	itr := nsp.Np.Iterator()
	for itr.HasNext() {
		fn(uint64(itr.Next()))
	}
}
