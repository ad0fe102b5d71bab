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
	"math"

	"github.com/apache/arrow/go/v7/arrow/float16"
	"golang.org/x/exp/constraints"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/block"
	"github.com/matrixorigin/densify/pkg/container/cell"
	"github.com/matrixorigin/densify/pkg/container/nulls"
	"github.com/matrixorigin/densify/pkg/container/types"
)

// fillColumn writes column j of b into output column p of a.
func fillColumn(a *DenseArray, p int, b *block.Block, j int, o *options) error {
	src := b.Column(j)
	nsp := b.ColumnNulls(j)
	k := a.cols

	switch dst := a.col.(type) {
	case []bool:
		return castToBool(src, dst, k, p)
	case []int8:
		return castToNumeric(src, dst, k, p)
	case []int16:
		return castToNumeric(src, dst, k, p)
	case []int32:
		return castToNumeric(src, dst, k, p)
	case []int64:
		return castToNumeric(src, dst, k, p)
	case []uint8:
		return castToNumeric(src, dst, k, p)
	case []uint16:
		return castToNumeric(src, dst, k, p)
	case []uint32:
		return castToNumeric(src, dst, k, p)
	case []uint64:
		return castToNumeric(src, dst, k, p)
	case []float16.Num:
		if err := castToFloat16(src, dst, k, p); err != nil {
			return err
		}
		na := float16.New(float32(math.NaN()))
		if o.naValue != nil {
			na = float16.New(float32(*o.naValue))
		}
		fillMissing(dst, k, p, b.Rows(), nsp, na)
	case []float32:
		if err := castToNumeric(src, dst, k, p); err != nil {
			return err
		}
		na := float32(math.NaN())
		if o.naValue != nil {
			na = float32(*o.naValue)
		}
		fillMissing(dst, k, p, b.Rows(), nsp, na)
	case []float64:
		if err := castToNumeric(src, dst, k, p); err != nil {
			return err
		}
		na := math.NaN()
		if o.naValue != nil {
			na = *o.naValue
		}
		fillMissing(dst, k, p, b.Rows(), nsp, na)
	case []types.Timestamp:
		s, ok := src.([]types.Timestamp)
		if !ok {
			return moerr.NewInternalErrorNoCtx("cast %s column to %s", b.GetType(), a.typ)
		}
		for r, v := range s {
			if nulls.Contains(nsp, uint64(r)) {
				v = types.NaT
			}
			dst[r*k+p] = v
		}
	case []cell.Cell:
		typ := b.GetType()
		for r := 0; r < b.Rows(); r++ {
			v := cell.BoxAt(typ, src, r, nulls.Contains(nsp, uint64(r)))
			if v.IsMissing() && o.naValue != nil {
				v = cell.FromFloat64(types.T_float64, *o.naValue)
			}
			dst[r*k+p] = v
		}
	default:
		return moerr.NewInternalErrorNoCtx("unexpected output buffer %T", a.col)
	}
	return nil
}

func castToNumeric[D types.Number](src any, dst []D, k, p int) error {
	switch s := src.(type) {
	case []bool:
		boolToNumeric(s, dst, k, p)
	case []int8:
		numericToNumeric(s, dst, k, p)
	case []int16:
		numericToNumeric(s, dst, k, p)
	case []int32:
		numericToNumeric(s, dst, k, p)
	case []int64:
		numericToNumeric(s, dst, k, p)
	case []uint8:
		numericToNumeric(s, dst, k, p)
	case []uint16:
		numericToNumeric(s, dst, k, p)
	case []uint32:
		numericToNumeric(s, dst, k, p)
	case []uint64:
		numericToNumeric(s, dst, k, p)
	case []float16.Num:
		float16ToNumeric(s, dst, k, p)
	case []float32:
		numericToNumeric(s, dst, k, p)
	case []float64:
		numericToNumeric(s, dst, k, p)
	default:
		return moerr.NewInternalErrorNoCtx("cast %T to %T", src, dst)
	}
	return nil
}

func castToFloat16(src any, dst []float16.Num, k, p int) error {
	switch s := src.(type) {
	case []bool:
		for r, v := range s {
			if v {
				dst[r*k+p] = float16.New(1)
			} else {
				dst[r*k+p] = float16.New(0)
			}
		}
	case []int8:
		numericToFloat16(s, dst, k, p)
	case []int16:
		numericToFloat16(s, dst, k, p)
	case []int32:
		numericToFloat16(s, dst, k, p)
	case []int64:
		numericToFloat16(s, dst, k, p)
	case []uint8:
		numericToFloat16(s, dst, k, p)
	case []uint16:
		numericToFloat16(s, dst, k, p)
	case []uint32:
		numericToFloat16(s, dst, k, p)
	case []uint64:
		numericToFloat16(s, dst, k, p)
	case []float16.Num:
		for r, v := range s {
			dst[r*k+p] = v
		}
	case []float32:
		numericToFloat16(s, dst, k, p)
	case []float64:
		numericToFloat16(s, dst, k, p)
	default:
		return moerr.NewInternalErrorNoCtx("cast %T to float16", src)
	}
	return nil
}

func castToBool(src any, dst []bool, k, p int) error {
	switch s := src.(type) {
	case []bool:
		for r, v := range s {
			dst[r*k+p] = v
		}
	case []int8:
		numericToBool(s, dst, k, p)
	case []int16:
		numericToBool(s, dst, k, p)
	case []int32:
		numericToBool(s, dst, k, p)
	case []int64:
		numericToBool(s, dst, k, p)
	case []uint8:
		numericToBool(s, dst, k, p)
	case []uint16:
		numericToBool(s, dst, k, p)
	case []uint32:
		numericToBool(s, dst, k, p)
	case []uint64:
		numericToBool(s, dst, k, p)
	case []float16.Num:
		for r, v := range s {
			dst[r*k+p] = v.Float32() != 0
		}
	case []float32:
		numericToBool(s, dst, k, p)
	case []float64:
		numericToBool(s, dst, k, p)
	default:
		return moerr.NewInternalErrorNoCtx("cast %T to bool", src)
	}
	return nil
}

// numericToNumeric follows Go conversion rules: integers wrap, floats
// truncate toward zero, wide integers round to the nearest float.
func numericToNumeric[T1, T2 constraints.Integer | constraints.Float](from []T1, to []T2, k, p int) {
	for r, v := range from {
		to[r*k+p] = T2(v)
	}
}

func boolToNumeric[T types.Number](from []bool, to []T, k, p int) {
	for r, v := range from {
		if v {
			to[r*k+p] = 1
		} else {
			to[r*k+p] = 0
		}
	}
}

func float16ToNumeric[T types.Number](from []float16.Num, to []T, k, p int) {
	for r, v := range from {
		to[r*k+p] = T(v.Float32())
	}
}

func numericToFloat16[T types.Number](from []T, to []float16.Num, k, p int) {
	for r, v := range from {
		to[r*k+p] = float16.New(float32(v))
	}
}

func numericToBool[T types.Number](from []T, to []bool, k, p int) {
	for r, v := range from {
		to[r*k+p] = v != 0
	}
}

// fillMissing sets output column p to na where the source was null or
// the copied value is NaN.
func fillMissing[T float16.Num | float32 | float64](to []T, k, p, rows int, nsp *nulls.Nulls, na T) {
	for r := 0; r < rows; r++ {
		i := r*k + p
		if nulls.Contains(nsp, uint64(r)) || cell.IsMissing(to[i]) {
			to[i] = na
		}
	}
}
