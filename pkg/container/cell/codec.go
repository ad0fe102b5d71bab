// Copyright 2023 Matrix Origin
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

package cell

import (
	"fmt"
	"math"

	"github.com/apache/arrow/go/v7/arrow/float16"

	"github.com/matrixorigin/densify/pkg/container/types"
)

// Box re-tags a fixed size value of a column of type typ into a cell.
// A value marked null, a NaN float and NaT all become the missing cell.
// No numeric widening happens here: the cell keeps the source type.
func Box[T types.FixedSizeT](typ types.Type, v T, null bool) Cell {
	if null {
		return NA
	}
	switch x := any(v).(type) {
	case bool:
		return FromBool(x)
	case int8:
		return FromInt64(typ.Oid, int64(x))
	case int16:
		return FromInt64(typ.Oid, int64(x))
	case int32:
		return FromInt64(typ.Oid, int64(x))
	case int64:
		return FromInt64(typ.Oid, x)
	case uint8:
		return FromUint64(typ.Oid, uint64(x))
	case uint16:
		return FromUint64(typ.Oid, uint64(x))
	case uint32:
		return FromUint64(typ.Oid, uint64(x))
	case uint64:
		return FromUint64(typ.Oid, x)
	case float16.Num:
		return boxFloat(typ.Oid, float64(x.Float32()))
	case float32:
		return boxFloat(typ.Oid, float64(x))
	case float64:
		return boxFloat(typ.Oid, x)
	case types.Timestamp:
		if x.IsNaT() {
			return NA
		}
		return FromInstant(x, typ.Zone)
	}
	panic("unreachable")
}

func boxFloat(oid types.T, v float64) Cell {
	if math.IsNaN(v) {
		return NA
	}
	return FromFloat64(oid, v)
}

// Translate maps a generic value to the table wide convention: a null
// mark, a NaN float and NaT all become the missing cell, everything else
// passes through.
func Translate(v Cell, null bool) Cell {
	if null {
		return NA
	}
	switch v.kind {
	case KindNumeric:
		if v.oid.IsFloat() && math.IsNaN(math.Float64frombits(v.bits)) {
			return NA
		}
	case KindInstant:
		if v.ts.IsNaT() {
			return NA
		}
	}
	return v
}

// IsMissing reports whether v is the in band missing marker of its
// physical type, NaN for floats and NaT for temporal values. Bool and
// integer values are never missing.
func IsMissing[T types.FixedSizeT](v T) bool {
	switch x := any(v).(type) {
	case float16.Num:
		return math.IsNaN(float64(x.Float32()))
	case float32:
		return math.IsNaN(float64(x))
	case float64:
		return math.IsNaN(x)
	case types.Timestamp:
		return x.IsNaT()
	}
	return false
}

// MissingValue returns the in band missing marker of T, ok is false when
// T has none.
func MissingValue[T types.FixedSizeT]() (v T, ok bool) {
	switch p := any(&v).(type) {
	case *float16.Num:
		*p = float16.New(float32(math.NaN()))
	case *float32:
		*p = float32(math.NaN())
	case *float64:
		*p = math.NaN()
	case *types.Timestamp:
		*p = types.NaT
	default:
		return v, false
	}
	return v, true
}

// BoxAt boxes col[i] of a typed buffer holding values of type typ.
func BoxAt(typ types.Type, col any, i int, null bool) Cell {
	switch col := col.(type) {
	case []bool:
		return Box(typ, col[i], null)
	case []int8:
		return Box(typ, col[i], null)
	case []int16:
		return Box(typ, col[i], null)
	case []int32:
		return Box(typ, col[i], null)
	case []int64:
		return Box(typ, col[i], null)
	case []uint8:
		return Box(typ, col[i], null)
	case []uint16:
		return Box(typ, col[i], null)
	case []uint32:
		return Box(typ, col[i], null)
	case []uint64:
		return Box(typ, col[i], null)
	case []float16.Num:
		return Box(typ, col[i], null)
	case []float32:
		return Box(typ, col[i], null)
	case []float64:
		return Box(typ, col[i], null)
	case []types.Timestamp:
		return Box(typ, col[i], null)
	case []Cell:
		return Translate(col[i], null)
	}
	panic(fmt.Sprintf("unexpected buffer %T", col))
}
