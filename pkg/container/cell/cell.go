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

// Package cell defines the boxed value stored in generic columns and in
// generic dense arrays. A Cell is a closed tagged union:
//
//	KindMissing  the single missing value, unequal to everything, itself included
//	KindNumeric  a bool, integer or float, keeping its source type
//	KindInstant  a temporal value, an instant plus a zone ("" for naive)
//	KindOpaque   an already generic payload, passed through untouched
package cell

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/matrixorigin/densify/pkg/container/types"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindNumeric
	KindInstant
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumeric:
		return "numeric"
	case KindInstant:
		return "instant"
	case KindOpaque:
		return "opaque"
	}
	return fmt.Sprintf("unexpected kind: %d", k)
}

type Cell struct {
	kind Kind
	// source type of numeric cells
	oid types.T
	// numeric payload: int64, uint64 or float64 bits depending on oid
	bits uint64
	// instant payload
	ts   types.Timestamp
	zone string
	// opaque payload
	v any
}

// NA is the canonical missing cell.
var NA = Cell{kind: KindMissing}

func Missing() Cell {
	return NA
}

func FromBool(v bool) Cell {
	c := Cell{kind: KindNumeric, oid: types.T_bool}
	if v {
		c.bits = 1
	}
	return c
}

// FromInt64 boxes a signed integer whose source type is oid.
func FromInt64(oid types.T, v int64) Cell {
	return Cell{kind: KindNumeric, oid: oid, bits: uint64(v)}
}

// FromUint64 boxes an unsigned integer whose source type is oid.
func FromUint64(oid types.T, v uint64) Cell {
	return Cell{kind: KindNumeric, oid: oid, bits: v}
}

// FromFloat64 boxes a float whose source type is oid.
func FromFloat64(oid types.T, v float64) Cell {
	return Cell{kind: KindNumeric, oid: oid, bits: math.Float64bits(v)}
}

// FromInstant boxes a temporal value. zone is "" for naive values.
func FromInstant(ts types.Timestamp, zone string) Cell {
	return Cell{kind: KindInstant, ts: ts, zone: zone}
}

func FromOpaque(v any) Cell {
	if c, ok := v.(Cell); ok {
		return c
	}
	return Cell{kind: KindOpaque, v: v}
}

func (c Cell) Kind() Kind {
	return c.kind
}

func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Oid returns the source type of a numeric cell.
func (c Cell) Oid() types.T {
	return c.oid
}

func (c Cell) Bool() bool {
	return c.bits != 0
}

func (c Cell) Int64() int64 {
	return int64(c.bits)
}

func (c Cell) Uint64() uint64 {
	return c.bits
}

// Float64 returns the value of a numeric cell as a float64, whatever its
// source type.
func (c Cell) Float64() float64 {
	switch {
	case c.oid.IsFloat():
		return math.Float64frombits(c.bits)
	case c.oid.IsUnsignedInt():
		return float64(c.bits)
	case c.oid == types.T_bool:
		return float64(c.bits)
	default:
		return float64(int64(c.bits))
	}
}

func (c Cell) Timestamp() types.Timestamp {
	return c.ts
}

func (c Cell) Zone() string {
	return c.zone
}

func (c Cell) IsNaive() bool {
	return c.kind == KindInstant && c.zone == ""
}

// Time returns the instant in its zone, naive values are returned in UTC.
func (c Cell) Time() (time.Time, error) {
	if c.zone == "" {
		return c.ts.In(time.UTC), nil
	}
	loc, err := types.LoadZone(c.zone)
	if err != nil {
		return time.Time{}, err
	}
	return c.ts.In(loc), nil
}

// Opaque returns the payload of an opaque cell.
func (c Cell) Opaque() any {
	return c.v
}

// Value unboxes the cell into a plain go value: nil for missing, bool,
// int64, uint64 or float64 for numeric cells, time.Time for instants and
// the payload for opaque cells.
func (c Cell) Value() any {
	switch c.kind {
	case KindNumeric:
		switch {
		case c.oid == types.T_bool:
			return c.Bool()
		case c.oid.IsSignedInt():
			return c.Int64()
		case c.oid.IsUnsignedInt():
			return c.Uint64()
		default:
			return c.Float64()
		}
	case KindInstant:
		t, err := c.Time()
		if err != nil {
			return c.ts
		}
		return t
	case KindOpaque:
		return c.v
	}
	return nil
}

// Equal compares two cells by value.
// Missing is never equal to anything. Numeric cells compare by numeric
// value regardless of source type. Instants compare by absolute instant;
// a naive instant never equals a zone aware one.
func Equal(a, b Cell) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumeric:
		return numericEqual(a, b)
	case KindInstant:
		if (a.zone == "") != (b.zone == "") {
			return false
		}
		return a.ts == b.ts
	case KindOpaque:
		return reflect.DeepEqual(a.v, b.v)
	}
	return false
}

func numericEqual(a, b Cell) bool {
	if a.oid.IsFloat() || b.oid.IsFloat() {
		return a.Float64() == b.Float64()
	}
	aNeg := a.oid.IsSignedInt() && a.Int64() < 0
	bNeg := b.oid.IsSignedInt() && b.Int64() < 0
	if aNeg != bNeg {
		return false
	}
	return a.bits == b.bits
}

func (c Cell) String() string {
	switch c.kind {
	case KindMissing:
		return "NaN"
	case KindNumeric:
		return fmt.Sprintf("%v", c.Value())
	case KindInstant:
		if c.ts.IsNaT() {
			return "NaT"
		}
		if c.zone == "" {
			return c.ts.String()
		}
		loc, err := types.LoadZone(c.zone)
		if err != nil {
			return c.ts.String() + " " + c.zone
		}
		return c.ts.StringIn(loc)
	case KindOpaque:
		return fmt.Sprintf("%v", c.v)
	}
	return fmt.Sprintf("unexpected cell kind %d", c.kind)
}
