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
	"fmt"

	"github.com/apache/arrow/go/v7/arrow/float16"
	"golang.org/x/exp/constraints"
)

type T uint8

const (
	// generic, values are boxed into tagged cells
	T_any T = 0

	// bool family
	T_bool T = 10

	// numeric/integer family
	T_int8   T = 20
	T_int16  T = 21
	T_int32  T = 22
	T_int64  T = 23
	T_uint8  T = 25
	T_uint16 T = 26
	T_uint32 T = 27
	T_uint64 T = 28

	// numeric/float family
	T_float16 T = 29
	T_float32 T = 30
	T_float64 T = 31

	// temporal family
	T_datetime  T = 52 // naive, wall clock without zone
	T_timestamp T = 53 // zone aware, absolute instant plus zone metadata
)

// Type identifies a concrete column representation. Two types are equal
// iff Oid and Zone match; Zone is only meaningful for T_timestamp.
type Type struct {
	Oid  T
	Zone string
}

// Number is the set of plain numeric physical types.
type Number interface {
	constraints.Integer | constraints.Float
}

// FixedSizeT is the set of physical types a fixed width column may hold.
// Timestamp is included through Number.
type FixedSizeT interface {
	bool | Number | float16.Num
}

var Types = map[string]T{
	"any":      T_any,
	"object":   T_any,
	"bool":     T_bool,
	"int8":     T_int8,
	"int16":    T_int16,
	"int32":    T_int32,
	"int64":    T_int64,
	"uint8":    T_uint8,
	"uint16":   T_uint16,
	"uint32":   T_uint32,
	"uint64":   T_uint64,
	"float16":  T_float16,
	"float32":  T_float32,
	"float64":  T_float64,
	"datetime": T_datetime,
}

func New(oid T) Type {
	return Type{Oid: oid}
}

// NewZoned returns the zone aware temporal type of zone.
func NewZoned(zone string) Type {
	return Type{Oid: T_timestamp, Zone: zone}
}

func (t T) ToType() Type {
	return New(t)
}

func (t Type) Eq(o Type) bool {
	return t.Oid == o.Oid && t.Zone == o.Zone
}

func (t Type) IsBoolean() bool {
	return t.Oid == T_bool
}

func (t Type) IsInteger() bool {
	return t.Oid.IsInteger()
}

func (t Type) IsFloat() bool {
	return t.Oid.IsFloat()
}

func (t Type) IsTemporal() bool {
	return t.Oid == T_datetime || t.Oid == T_timestamp
}

func (t Type) IsZoned() bool {
	return t.Oid == T_timestamp
}

func (t Type) IsGeneric() bool {
	return t.Oid == T_any
}

func (t Type) IsNumericOrBool() bool {
	return t.Oid == T_bool || t.Oid.IsInteger() || t.Oid.IsFloat()
}

// CarriesMissing reports whether values of t can represent a missing
// value: NaN for floats, NaT for temporal types, a missing cell for the
// generic type. Bool and integer buffers have no missing marker.
func (t Type) CarriesMissing() bool {
	return t.IsFloat() || t.IsTemporal() || t.IsGeneric()
}

func (t Type) IsValid() bool {
	if t.Oid == T_timestamp {
		return t.Zone != ""
	}
	return t.Oid.IsValid() && t.Zone == ""
}

func (t Type) TypeSize() int {
	return t.Oid.TypeLen()
}

func (t Type) String() string {
	switch t.Oid {
	case T_timestamp:
		return "datetime[" + t.Zone + "]"
	default:
		return t.Oid.String()
	}
}

func (t T) IsValid() bool {
	switch t {
	case T_any, T_bool,
		T_int8, T_int16, T_int32, T_int64,
		T_uint8, T_uint16, T_uint32, T_uint64,
		T_float16, T_float32, T_float64,
		T_datetime, T_timestamp:
		return true
	}
	return false
}

func (t T) IsInteger() bool {
	return t.IsSignedInt() || t.IsUnsignedInt()
}

func (t T) IsSignedInt() bool {
	switch t {
	case T_int8, T_int16, T_int32, T_int64:
		return true
	}
	return false
}

func (t T) IsUnsignedInt() bool {
	switch t {
	case T_uint8, T_uint16, T_uint32, T_uint64:
		return true
	}
	return false
}

func (t T) IsFloat() bool {
	switch t {
	case T_float16, T_float32, T_float64:
		return true
	}
	return false
}

// TypeLen returns the width in bytes of the physical representation of
// fixed size types, -1 for the generic type.
func (t T) TypeLen() int {
	switch t {
	case T_bool, T_int8, T_uint8:
		return 1
	case T_int16, T_uint16, T_float16:
		return 2
	case T_int32, T_uint32, T_float32:
		return 4
	case T_int64, T_uint64, T_float64, T_datetime, T_timestamp:
		return 8
	case T_any:
		return -1
	}
	panic(fmt.Sprintf("unknown type %d", t))
}

func (t T) String() string {
	switch t {
	case T_any:
		return "object"
	case T_bool:
		return "bool"
	case T_int8:
		return "int8"
	case T_int16:
		return "int16"
	case T_int32:
		return "int32"
	case T_int64:
		return "int64"
	case T_uint8:
		return "uint8"
	case T_uint16:
		return "uint16"
	case T_uint32:
		return "uint32"
	case T_uint64:
		return "uint64"
	case T_float16:
		return "float16"
	case T_float32:
		return "float32"
	case T_float64:
		return "float64"
	case T_datetime:
		return "datetime"
	case T_timestamp:
		return "datetime[tz]"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

// ParseType parses the lower case names of Types, plus the zoned form
// "datetime[Zone/Name]".
func ParseType(s string) (Type, bool) {
	if oid, ok := Types[s]; ok {
		return New(oid), true
	}
	const prefix, suffix = "datetime[", "]"
	if len(s) > len(prefix)+len(suffix) && s[:len(prefix)] == prefix && s[len(s)-1:] == suffix {
		return NewZoned(s[len(prefix) : len(s)-1]), true
	}
	return Type{}, false
}
