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

package types

import (
	"context"

	"github.com/matrixorigin/densify/pkg/common/moerr"
)

var (
	signedOfWidth   = map[int]T{1: T_int8, 2: T_int16, 4: T_int32, 8: T_int64}
	unsignedOfWidth = map[int]T{1: T_uint8, 2: T_uint16, 4: T_uint32, 8: T_uint64}
	floatOfWidth    = map[int]T{2: T_float16, 4: T_float32, 8: T_float64}
)

// CommonType returns the minimal type able to host every value of ts.
//
// Rules, in order:
//   - any generic type, temporal mixed with numeric, zone aware types of
//     different zones, or zone aware mixed with naive: generic
//   - a single zone aware type (possibly repeated): that type
//   - only naive temporal: naive temporal
//   - otherwise the numeric lattice, see commonNumericType
//
// Duplicates in ts are allowed. An empty ts is invalid input.
func CommonType(ctx context.Context, ts ...Type) (Type, error) {
	if len(ts) == 0 {
		return Type{}, moerr.NewInvalidInput(ctx, "cannot find the common type of an empty type set")
	}

	var (
		hasGeneric bool
		hasNaive   bool
		hasNumeric bool
		zone       string
		multiZone  bool
	)
	for _, t := range ts {
		if !t.IsValid() {
			return Type{}, moerr.NewInvalidInput(ctx, "invalid type %s", t)
		}
		switch {
		case t.IsGeneric():
			hasGeneric = true
		case t.Oid == T_datetime:
			hasNaive = true
		case t.Oid == T_timestamp:
			if zone != "" && zone != t.Zone {
				multiZone = true
			}
			zone = t.Zone
		default:
			hasNumeric = true
		}
	}

	hasZoned := zone != ""
	switch {
	case hasGeneric,
		(hasNaive || hasZoned) && hasNumeric,
		multiZone,
		hasZoned && hasNaive:
		return T_any.ToType(), nil
	case hasZoned:
		return NewZoned(zone), nil
	case hasNaive:
		return T_datetime.ToType(), nil
	}
	return commonNumericType(ts).ToType(), nil
}

// commonNumericType implements the numeric part of the lattice; every
// type of ts is bool, integer or float.
//
//   - only bool: bool
//   - any float: the widest float, integers are widened to it, which is
//     lossy for integers beyond the float's mantissa
//   - bool counts as int8, but becomes int64 next to a wider signed int
//   - only signed: the widest signed
//   - only unsigned: the widest unsigned, never promoted to float
//   - signed and unsigned: float64 when a uint64 is present, otherwise
//     the smallest signed type strictly wider than the widest unsigned,
//     and at least as wide as the widest signed
func commonNumericType(ts []Type) T {
	var (
		hasBool     bool
		maxSigned   int
		maxUnsigned int
		maxFloat    int
	)
	for _, t := range ts {
		size := t.TypeSize()
		switch {
		case t.Oid == T_bool:
			hasBool = true
		case t.Oid.IsSignedInt():
			maxSigned = max(maxSigned, size)
		case t.Oid.IsUnsignedInt():
			maxUnsigned = max(maxUnsigned, size)
		case t.Oid.IsFloat():
			maxFloat = max(maxFloat, size)
		}
	}

	if maxFloat > 0 {
		return floatOfWidth[maxFloat]
	}
	if hasBool {
		if maxSigned == 0 && maxUnsigned == 0 {
			return T_bool
		}
		if maxSigned > 1 {
			maxSigned = 8
		} else {
			maxSigned = 1
		}
	}
	if maxUnsigned == 0 {
		return signedOfWidth[maxSigned]
	}
	if maxSigned == 0 {
		return unsignedOfWidth[maxUnsigned]
	}
	if maxUnsigned == 8 {
		return T_float64
	}
	return signedOfWidth[max(maxSigned, maxUnsigned*2)]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
