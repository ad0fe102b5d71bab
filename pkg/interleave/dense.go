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

package interleave

import (
	"bytes"

	"github.com/apache/arrow/go/v7/arrow/float16"

	"github.com/matrixorigin/densify/pkg/container/cell"
	"github.com/matrixorigin/densify/pkg/container/types"
)

func newDenseArray(typ types.Type, rows, cols int) *DenseArray {
	n := rows * cols
	a := &DenseArray{
		typ:  typ,
		rows: rows,
		cols: cols,
	}
	switch typ.Oid {
	case types.T_bool:
		a.col = make([]bool, n)
	case types.T_int8:
		a.col = make([]int8, n)
	case types.T_int16:
		a.col = make([]int16, n)
	case types.T_int32:
		a.col = make([]int32, n)
	case types.T_int64:
		a.col = make([]int64, n)
	case types.T_uint8:
		a.col = make([]uint8, n)
	case types.T_uint16:
		a.col = make([]uint16, n)
	case types.T_uint32:
		a.col = make([]uint32, n)
	case types.T_uint64:
		a.col = make([]uint64, n)
	case types.T_float16:
		a.col = make([]float16.Num, n)
	case types.T_float32:
		a.col = make([]float32, n)
	case types.T_float64:
		a.col = make([]float64, n)
	case types.T_datetime, types.T_timestamp:
		a.col = make([]types.Timestamp, n)
	default:
		a.col = make([]cell.Cell, n)
	}
	return a
}

func (a *DenseArray) GetType() types.Type {
	return a.typ
}

// Shape returns (rows, cols).
func (a *DenseArray) Shape() (int, int) {
	return a.rows, a.cols
}

func (a *DenseArray) Rows() int {
	return a.rows
}

func (a *DenseArray) Cols() int {
	return a.cols
}

// SourceTypes returns the type each output column was read from.
func (a *DenseArray) SourceTypes() []types.Type {
	return a.srcTypes
}

// Data returns the row major buffer, []T or []cell.Cell.
func (a *DenseArray) Data() any {
	return a.col
}

func MustData[T types.FixedSizeT | cell.Cell](a *DenseArray) []T {
	return a.col.([]T)
}

// At boxes cell (r, c). Missing values come back as cell.NA whatever the
// output type.
func (a *DenseArray) At(r, c int) cell.Cell {
	return cell.BoxAt(a.typ, a.col, r*a.cols+c, false)
}

// Row boxes row r.
func (a *DenseArray) Row(r int) []cell.Cell {
	rs := make([]cell.Cell, a.cols)
	for c := range rs {
		rs[c] = a.At(r, c)
	}
	return rs
}

func (a *DenseArray) String() string {
	var buf bytes.Buffer

	buf.WriteString("[")
	for r := 0; r < a.rows; r++ {
		if r > 0 {
			buf.WriteString("\n ")
		}
		buf.WriteString("[")
		for c := 0; c < a.cols; c++ {
			if c > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(a.At(r, c).String())
		}
		buf.WriteString("]")
	}
	buf.WriteString("]")
	return buf.String()
}
