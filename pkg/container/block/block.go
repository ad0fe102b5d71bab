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

package block

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/apache/arrow/go/v7/arrow/float16"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/cell"
	"github.com/matrixorigin/densify/pkg/container/nulls"
	"github.com/matrixorigin/densify/pkg/container/types"
)

// Block is a run of columns sharing one type, stored in one column major
// buffer: column j occupies col[j*rows : (j+1)*rows].
// positions[j] is the position of column j in the table.
type Block struct {
	typ       types.Type
	rows      int
	positions []int

	// []T for fixed size types, []cell.Cell for the generic type
	col any
	// nulls list, addressed by offset in col
	nsp *nulls.Nulls
}

// New builds a block of type typ from a column major buffer holding
// len(positions) columns of rows values each. The buffer is owned by the
// block afterwards.
func New[T types.FixedSizeT](typ types.Type, positions []int, rows int, data []T) (*Block, error) {
	return newBlock(context.Background(), typ, positions, rows, data, len(data))
}

// NewGeneric builds a generic block, see New.
func NewGeneric(positions []int, rows int, data []cell.Cell) (*Block, error) {
	return newBlock(context.Background(), types.T_any.ToType(), positions, rows, data, len(data))
}

// FromColumns builds a block from one slice per column.
func FromColumns[T types.FixedSizeT](typ types.Type, positions []int, cols ...[]T) (*Block, error) {
	rows, err := columnsRows(len(positions), len(cols), func(i int) int { return len(cols[i]) })
	if err != nil {
		return nil, err
	}
	data := make([]T, 0, rows*len(cols))
	for _, c := range cols {
		data = append(data, c...)
	}
	return New(typ, positions, rows, data)
}

// GenericFromColumns builds a generic block from one slice per column.
func GenericFromColumns(positions []int, cols ...[]cell.Cell) (*Block, error) {
	rows, err := columnsRows(len(positions), len(cols), func(i int) int { return len(cols[i]) })
	if err != nil {
		return nil, err
	}
	data := make([]cell.Cell, 0, rows*len(cols))
	for _, c := range cols {
		data = append(data, c...)
	}
	return NewGeneric(positions, rows, data)
}

func columnsRows(width, ncols int, length func(int) int) (int, error) {
	if width != ncols {
		return 0, moerr.NewInvalidInputNoCtx("block has %d positions but %d columns", width, ncols)
	}
	if ncols == 0 {
		return 0, moerr.NewInvalidInputNoCtx("block owns no columns")
	}
	rows := length(0)
	for i := 1; i < ncols; i++ {
		if length(i) != rows {
			return 0, moerr.NewShapeMismatchNoCtx("column %d has %d rows, column 0 has %d", i, length(i), rows)
		}
	}
	return rows, nil
}

func newBlock(ctx context.Context, typ types.Type, positions []int, rows int, col any, n int) (*Block, error) {
	if !typ.IsValid() {
		return nil, moerr.NewInvalidInput(ctx, "invalid block type %s", typ)
	}
	if !physicalMatches(typ, col) {
		return nil, moerr.NewInvalidInput(ctx, "buffer of %T cannot hold %s values", col, typ)
	}
	if len(positions) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "block owns no columns")
	}
	if rows < 0 {
		return nil, moerr.NewInvalidInput(ctx, "negative row count %d", rows)
	}
	for _, p := range positions {
		if p < 0 {
			return nil, moerr.NewInvalidInput(ctx, "negative column position %d", p)
		}
	}
	if n != len(positions)*rows {
		return nil, moerr.NewShapeMismatch(ctx, "buffer holds %d values, %d columns of %d rows need %d",
			n, len(positions), rows, len(positions)*rows)
	}
	return &Block{
		typ:       typ,
		rows:      rows,
		positions: append([]int(nil), positions...),
		col:       col,
	}, nil
}

func physicalMatches(typ types.Type, col any) bool {
	switch col.(type) {
	case []bool:
		return typ.Oid == types.T_bool
	case []int8:
		return typ.Oid == types.T_int8
	case []int16:
		return typ.Oid == types.T_int16
	case []int32:
		return typ.Oid == types.T_int32
	case []int64:
		return typ.Oid == types.T_int64
	case []uint8:
		return typ.Oid == types.T_uint8
	case []uint16:
		return typ.Oid == types.T_uint16
	case []uint32:
		return typ.Oid == types.T_uint32
	case []uint64:
		return typ.Oid == types.T_uint64
	case []float16.Num:
		return typ.Oid == types.T_float16
	case []float32:
		return typ.Oid == types.T_float32
	case []float64:
		return typ.Oid == types.T_float64
	case []types.Timestamp:
		return typ.IsTemporal()
	case []cell.Cell:
		return typ.IsGeneric()
	}
	return false
}

// SetNulls marks the cells of nsp missing. Only types with a missing
// marker accept nulls: bool and integer blocks never carry missing
// values, such columns must be resolved to float or generic upstream.
func (b *Block) SetNulls(nsp *nulls.Nulls) error {
	if !nulls.Any(nsp) {
		b.nsp = nil
		return nil
	}
	if !b.typ.CarriesMissing() {
		return moerr.NewInvalidInputNoCtx("%s block cannot carry missing values", b.typ)
	}
	// null marks are 32 bit offsets into the buffer
	if cells := uint64(len(b.positions)) * uint64(b.rows); cells > math.MaxUint32 {
		return moerr.NewInvalidInputNoCtx("%d values exceed the null bitmap range", cells)
	}
	if mx, _ := nulls.Max(nsp); int(mx) >= len(b.positions)*b.rows {
		return moerr.NewInvalidInputNoCtx("null mark %d out of a buffer of %d values", mx, len(b.positions)*b.rows)
	}
	b.nsp = nsp
	return nil
}

func (b *Block) GetNulls() *nulls.Nulls {
	return b.nsp
}

func (b *Block) GetType() types.Type {
	return b.typ
}

func (b *Block) Rows() int {
	return b.rows
}

func (b *Block) Width() int {
	return len(b.positions)
}

// Positions returns the table position of every column of the block.
// The slice must not be modified.
func (b *Block) Positions() []int {
	return b.positions
}

// Col returns the column major buffer, []T or []cell.Cell.
func (b *Block) Col() any {
	return b.col
}

func MustFixedCol[T types.FixedSizeT](b *Block) []T {
	return b.col.([]T)
}

// MustColumn returns the values of column j.
func MustColumn[T types.FixedSizeT | cell.Cell](b *Block, j int) []T {
	return b.col.([]T)[j*b.rows : (j+1)*b.rows]
}

// IsNull reports whether cell (j, r) is marked null in the nulls list.
func (b *Block) IsNull(j, r int) bool {
	return nulls.Contains(b.nsp, uint64(j*b.rows+r))
}

// ColumnNulls returns the nulls list of column j rebased to row numbers,
// nil when the column has none.
func (b *Block) ColumnNulls(j int) *nulls.Nulls {
	return nulls.Range(b.nsp, uint64(j*b.rows), uint64((j+1)*b.rows))
}

// At boxes cell (j, r), see cell.Box for the missing value rules.
func (b *Block) At(j, r int) cell.Cell {
	i := j*b.rows + r
	return cell.BoxAt(b.typ, b.col, i, nulls.Contains(b.nsp, uint64(i)))
}

// Column returns the values of column j as a typed slice, []T or
// []cell.Cell.
func (b *Block) Column(j int) any {
	lo, hi := j*b.rows, (j+1)*b.rows
	switch col := b.col.(type) {
	case []bool:
		return col[lo:hi]
	case []int8:
		return col[lo:hi]
	case []int16:
		return col[lo:hi]
	case []int32:
		return col[lo:hi]
	case []int64:
		return col[lo:hi]
	case []uint8:
		return col[lo:hi]
	case []uint16:
		return col[lo:hi]
	case []uint32:
		return col[lo:hi]
	case []uint64:
		return col[lo:hi]
	case []float16.Num:
		return col[lo:hi]
	case []float32:
		return col[lo:hi]
	case []float64:
		return col[lo:hi]
	case []types.Timestamp:
		return col[lo:hi]
	case []cell.Cell:
		return col[lo:hi]
	}
	panic(moerr.NewInternalErrorNoCtx("unexpected block buffer %T", b.col))
}

// HasMissing reports whether any cell of the block is missing, by nulls
// list or by in band marker.
func (b *Block) HasMissing() bool {
	if nulls.Any(b.nsp) {
		return true
	}
	switch col := b.col.(type) {
	case []float16.Num:
		return anyMissing(col)
	case []float32:
		return anyMissing(col)
	case []float64:
		return anyMissing(col)
	case []types.Timestamp:
		return anyMissing(col)
	case []cell.Cell:
		for _, v := range col {
			if cell.Translate(v, false).IsMissing() {
				return true
			}
		}
	}
	return false
}

func anyMissing[T types.FixedSizeT](col []T) bool {
	for _, v := range col {
		if cell.IsMissing(v) {
			return true
		}
	}
	return false
}

// Take copies the columns locals of b into a new block whose columns sit
// at positions. A local column may be taken several times.
func (b *Block) Take(locals []int, positions []int) (*Block, error) {
	if len(locals) != len(positions) {
		return nil, moerr.NewInvalidInputNoCtx("take %d columns into %d positions", len(locals), len(positions))
	}
	for _, j := range locals {
		if j < 0 || j >= len(b.positions) {
			return nil, moerr.NewInvalidInputNoCtx("column %d out of a block of %d columns", j, len(b.positions))
		}
	}
	var col any
	switch b.typ.Oid {
	case types.T_bool:
		col = takeColumns(MustFixedCol[bool](b), b.rows, locals)
	case types.T_int8:
		col = takeColumns(MustFixedCol[int8](b), b.rows, locals)
	case types.T_int16:
		col = takeColumns(MustFixedCol[int16](b), b.rows, locals)
	case types.T_int32:
		col = takeColumns(MustFixedCol[int32](b), b.rows, locals)
	case types.T_int64:
		col = takeColumns(MustFixedCol[int64](b), b.rows, locals)
	case types.T_uint8:
		col = takeColumns(MustFixedCol[uint8](b), b.rows, locals)
	case types.T_uint16:
		col = takeColumns(MustFixedCol[uint16](b), b.rows, locals)
	case types.T_uint32:
		col = takeColumns(MustFixedCol[uint32](b), b.rows, locals)
	case types.T_uint64:
		col = takeColumns(MustFixedCol[uint64](b), b.rows, locals)
	case types.T_float16:
		col = takeColumns(MustFixedCol[float16.Num](b), b.rows, locals)
	case types.T_float32:
		col = takeColumns(MustFixedCol[float32](b), b.rows, locals)
	case types.T_float64:
		col = takeColumns(MustFixedCol[float64](b), b.rows, locals)
	case types.T_datetime, types.T_timestamp:
		col = takeColumns(MustFixedCol[types.Timestamp](b), b.rows, locals)
	case types.T_any:
		col = takeColumns(b.col.([]cell.Cell), b.rows, locals)
	default:
		return nil, moerr.NewInternalErrorNoCtx("take from %s block", b.typ)
	}

	rb, err := newBlock(context.Background(), b.typ, positions, b.rows, col, len(locals)*b.rows)
	if err != nil {
		return nil, err
	}
	if nulls.Any(b.nsp) {
		nsp := nulls.New()
		for i, j := range locals {
			base := uint64(i * b.rows)
			nulls.Foreach(b.ColumnNulls(j), func(r uint64) {
				nulls.Add(nsp, base+r)
			})
		}
		if err = rb.SetNulls(nsp); err != nil {
			return nil, err
		}
	}
	return rb, nil
}

func takeColumns[T any](src []T, rows int, locals []int) []T {
	rs := make([]T, 0, rows*len(locals))
	for _, j := range locals {
		rs = append(rs, src[j*rows:(j+1)*rows]...)
	}
	return rs
}

func (b *Block) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s block %v, %d rows", b.typ, b.positions, b.rows)
	for j := range b.positions {
		buf.WriteString("\n\t[")
		for r := 0; r < b.rows; r++ {
			if r > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(b.At(j, r).String())
		}
		buf.WriteString("]")
	}
	return buf.String()
}
