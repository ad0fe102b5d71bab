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

package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/block"
	"github.com/matrixorigin/densify/pkg/container/nulls"
	"github.com/matrixorigin/densify/pkg/container/types"
)

func mustBlock[T types.FixedSizeT](t *testing.T, typ types.Type, poses []int, cols ...[]T) *block.Block {
	b, err := block.FromColumns(typ, poses, cols...)
	require.NoError(t, err)
	return b
}

// int32 at 0 and 3, float32 at 1, uint8 at 2
func newMixedTable(t *testing.T) *Table {
	return New([]string{"a", "b", "c", "d"},
		mustBlock(t, types.T_int32.ToType(), []int{0, 3}, []int32{1, 2}, []int32{7, 8}),
		mustBlock(t, types.T_float32.ToType(), []int{1}, []float32{0.5, 1.5}),
		mustBlock(t, types.T_uint8.ToType(), []int{2}, []uint8{3, 4}),
	)
}

func TestIndex(t *testing.T) {
	ctx := context.Background()
	tbl := newMixedTable(t)
	require.Equal(t, 2, tbl.RowCount())
	require.Equal(t, 4, tbl.ColumnCount())
	require.Equal(t, 3, tbl.BlockCount())

	locs, err := tbl.Index(ctx)
	require.NoError(t, err)
	require.Equal(t, []Loc{{0, 0}, {1, 0}, {2, 0}, {0, 1}}, locs)

	ts, err := tbl.ColumnTypes(ctx)
	require.NoError(t, err)
	require.Equal(t, []types.Type{
		types.T_int32.ToType(), types.T_float32.ToType(), types.T_uint8.ToType(), types.T_int32.ToType(),
	}, ts)
	require.Len(t, tbl.Types(), 3)
}

func TestIndexErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(nil).Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	var nilTbl *Table
	_, err = nilTbl.Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// row mismatch
	tbl := New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1, 2, 3}),
		mustBlock(t, types.T_float64.ToType(), []int{1}, []float64{1, 2}),
	)
	_, err = tbl.Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrShapeMismatch))

	// duplicate position
	tbl = New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1}),
		mustBlock(t, types.T_float64.ToType(), []int{0}, []float64{1}),
	)
	_, err = tbl.Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// out of range, leaves a gap at 1
	tbl = New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1}),
		mustBlock(t, types.T_float64.ToType(), []int{2}, []float64{1}),
	)
	_, err = tbl.Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// label count
	tbl = New([]string{"a", "b"}, mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1}))
	_, err = tbl.Index(ctx)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestNewEmpty(t *testing.T) {
	tbl := NewEmpty(3)
	locs, err := tbl.Index(context.Background())
	require.NoError(t, err)
	require.Empty(t, locs)
	require.Equal(t, 3, tbl.RowCount())
	require.Equal(t, 0, tbl.ColumnCount())
}

func TestProject(t *testing.T) {
	ctx := context.Background()
	tbl := newMixedTable(t)

	rtbl, err := tbl.Project(ctx, []int{3, 1, 3})
	require.NoError(t, err)
	require.NotEqual(t, tbl.ID(), rtbl.ID())
	require.Equal(t, []string{"d", "b", "d"}, rtbl.Attrs)
	require.Equal(t, 2, rtbl.BlockCount())

	ts, err := rtbl.ColumnTypes(ctx)
	require.NoError(t, err)
	require.Equal(t, types.T_int32, ts[0].Oid)
	require.Equal(t, types.T_float32, ts[1].Oid)
	require.Equal(t, types.T_int32, ts[2].Oid)

	locs, err := rtbl.Index(ctx)
	require.NoError(t, err)
	b := rtbl.Blocks[locs[2].Blk]
	require.Equal(t, []int32{7, 8}, block.MustColumn[int32](b, locs[2].Col))

	_, err = tbl.Project(ctx, []int{4})
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	empty, err := tbl.Project(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 2, empty.RowCount())
	require.Equal(t, 0, empty.ColumnCount())
}

func TestProjectKeepsNulls(t *testing.T) {
	ctx := context.Background()
	fb := mustBlock(t, types.T_float64.ToType(), []int{0, 1}, []float64{1, 2}, []float64{3, 4})
	require.NoError(t, fb.SetNulls(nulls.Build(2)))
	tbl := New(nil, fb)

	rtbl, err := tbl.Project(ctx, []int{1})
	require.NoError(t, err)
	require.True(t, rtbl.Blocks[0].IsNull(0, 0))
	require.False(t, rtbl.Blocks[0].IsNull(0, 1))
}

func TestString(t *testing.T) {
	tbl := New([]string{"x"}, mustBlock(t, types.T_bool.ToType(), []int{0}, []bool{true}))
	require.Contains(t, tbl.String(), "labels: [x]")
	require.Contains(t, tbl.String(), "bool block [0], 1 rows")
	tbl.Log("test")
}
