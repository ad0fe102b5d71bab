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
	"context"
	"math"
	"testing"

	"github.com/apache/arrow/go/v7/arrow/float16"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/batch"
	"github.com/matrixorigin/densify/pkg/container/block"
	"github.com/matrixorigin/densify/pkg/container/cell"
	"github.com/matrixorigin/densify/pkg/container/nulls"
	"github.com/matrixorigin/densify/pkg/container/types"
	v2 "github.com/matrixorigin/densify/pkg/util/metric/v2"
)

func mustBlock[T types.FixedSizeT](t *testing.T, typ types.Type, poses []int, cols ...[]T) *block.Block {
	b, err := block.FromColumns(typ, poses, cols...)
	require.NoError(t, err)
	return b
}

func mustGeneric(t *testing.T, poses []int, cols ...[]cell.Cell) *block.Block {
	b, err := block.GenericFromColumns(poses, cols...)
	require.NoError(t, err)
	return b
}

func TestMaterializeIdentity(t *testing.T) {
	tbl := batch.New([]string{"a", "b"},
		mustBlock(t, types.T_int32.ToType(), []int{1, 0}, []int32{1, 2, 3}, []int32{4, 5, 6}))

	a, err := Materialize(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, types.T_int32.ToType(), a.GetType())
	rows, cols := a.Shape()
	require.Equal(t, 3, rows)
	require.Equal(t, 2, cols)
	require.Equal(t, []int32{4, 1, 5, 2, 6, 3}, MustData[int32](a))
	require.Equal(t, []types.Type{types.T_int32.ToType(), types.T_int32.ToType()}, a.SourceTypes())
}

func TestMaterializeMixed(t *testing.T) {
	// int32 at 0 and 3, float32 at 1, uint8 at 2
	tbl := batch.New([]string{"a", "b", "c", "d"},
		mustBlock(t, types.T_int32.ToType(), []int{0, 3}, []int32{1, 2}, []int32{7, 8}),
		mustBlock(t, types.T_float32.ToType(), []int{1}, []float32{0.5, 1.5}),
		mustBlock(t, types.T_uint8.ToType(), []int{2}, []uint8{3, 4}),
	)
	a, err := Materialize(context.Background(), tbl)
	require.NoError(t, err)
	require.Equal(t, types.T_float32, a.GetType().Oid)
	require.Equal(t, 2, a.Rows())
	require.Equal(t, 4, a.Cols())
	require.Equal(t, []float32{1, 0.5, 3, 7, 2, 1.5, 4, 8}, MustData[float32](a))
	require.Equal(t, []types.Type{
		types.T_int32.ToType(), types.T_float32.ToType(), types.T_uint8.ToType(), types.T_int32.ToType(),
	}, a.SourceTypes())
}

func TestMaterializePromotion(t *testing.T) {
	ctx := context.Background()

	// int32 + uint32 -> int64
	a, err := Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_int32.ToType(), []int{0}, []int32{-1}),
		mustBlock(t, types.T_uint32.ToType(), []int{1}, []uint32{math.MaxUint32}),
	))
	require.NoError(t, err)
	require.Equal(t, []int64{-1, math.MaxUint32}, MustData[int64](a))

	// uint64 + signed -> float64
	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_int8.ToType(), []int{0}, []int8{-3}),
		mustBlock(t, types.T_uint64.ToType(), []int{1}, []uint64{1 << 40}),
	))
	require.NoError(t, err)
	require.Equal(t, []float64{-3, 1 << 40}, MustData[float64](a))

	// only unsigned -> widest unsigned
	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_uint8.ToType(), []int{0}, []uint8{255}),
		mustBlock(t, types.T_uint16.ToType(), []int{1}, []uint16{65535}),
	))
	require.NoError(t, err)
	require.Equal(t, []uint16{255, 65535}, MustData[uint16](a))

	// bool + uint8 -> int16, bool counts as int8
	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_bool.ToType(), []int{0}, []bool{true, false}),
		mustBlock(t, types.T_uint8.ToType(), []int{1}, []uint8{200, 1}),
	))
	require.NoError(t, err)
	require.Equal(t, []int16{1, 200, 0, 1}, MustData[int16](a))

	// only bool stays bool
	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_bool.ToType(), []int{0, 1}, []bool{true}, []bool{false}),
	))
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, MustData[bool](a))
}

func TestMaterializeFloat16(t *testing.T) {
	a, err := Materialize(context.Background(), batch.New(nil,
		mustBlock(t, types.T_float16.ToType(), []int{0}, []float16.Num{float16.New(1.5), float16.New(-2)}),
		mustBlock(t, types.T_int8.ToType(), []int{1}, []int8{3, 4}),
		mustBlock(t, types.T_bool.ToType(), []int{2}, []bool{true, false}),
	))
	require.NoError(t, err)
	require.Equal(t, types.T_float16, a.GetType().Oid)
	data := MustData[float16.Num](a)
	got := make([]float32, len(data))
	for i, v := range data {
		got[i] = v.Float32()
	}
	require.Equal(t, []float32{1.5, 3, 1, -2, 4, 0}, got)

	// float16 widened by float64
	a, err = Materialize(context.Background(), batch.New(nil,
		mustBlock(t, types.T_float16.ToType(), []int{0}, []float16.Num{float16.New(0.25)}),
		mustBlock(t, types.T_float64.ToType(), []int{1}, []float64{0.5}),
	))
	require.NoError(t, err)
	require.Equal(t, []float64{0.25, 0.5}, MustData[float64](a))
}

func TestMaterializeMissing(t *testing.T) {
	ctx := context.Background()
	fb := mustBlock(t, types.T_float64.ToType(), []int{0}, []float64{1, math.NaN(), 3})
	require.NoError(t, fb.SetNulls(nulls.Build(2)))
	ib := mustBlock(t, types.T_int64.ToType(), []int{1}, []int64{4, 5, 6})

	a, err := Materialize(ctx, batch.New(nil, fb, ib))
	require.NoError(t, err)
	data := MustData[float64](a)
	require.Equal(t, float64(1), data[0])
	require.True(t, math.IsNaN(data[2]))
	require.True(t, math.IsNaN(data[4]))
	require.Equal(t, float64(6), data[5])
	require.True(t, a.At(1, 0).IsMissing())

	// NaN and null become the missing cell in generic output
	gb := mustGeneric(t, []int{2}, []cell.Cell{cell.FromOpaque("x"), cell.FromOpaque("y"), cell.NA})
	a, err = Materialize(ctx, batch.New(nil, fb, ib, gb))
	require.NoError(t, err)
	require.True(t, a.GetType().IsGeneric())
	require.Equal(t, float64(1), a.At(0, 0).Float64())
	require.True(t, a.At(1, 0).IsMissing())
	require.True(t, a.At(2, 0).IsMissing())
	require.Equal(t, int64(5), a.At(1, 1).Int64())
	require.Equal(t, "y", a.At(1, 2).Opaque())
	require.True(t, a.At(2, 2).IsMissing())

	// NaT and null stay NaT in temporal output
	tb := mustBlock(t, types.T_datetime.ToType(), []int{0}, []types.Timestamp{types.NaT, 1, 2})
	require.NoError(t, tb.SetNulls(nulls.Build(2)))
	a, err = Materialize(ctx, batch.New(nil, tb))
	require.NoError(t, err)
	require.Equal(t, []types.Timestamp{types.NaT, 1, types.NaT}, MustData[types.Timestamp](a))
}

func TestMaterializeNaValue(t *testing.T) {
	ctx := context.Background()
	fb := mustBlock(t, types.T_float32.ToType(), []int{0}, []float32{float32(math.NaN()), 2})
	tbl := batch.New(nil, fb)

	a, err := Materialize(ctx, tbl, WithNaValue(-1))
	require.NoError(t, err)
	require.Equal(t, []float32{-1, 2}, MustData[float32](a))

	gb := mustGeneric(t, []int{1}, []cell.Cell{cell.FromOpaque("x"), cell.FromOpaque("y")})
	a, err = Materialize(ctx, batch.New(nil, fb, gb), WithNaValue(0))
	require.NoError(t, err)
	require.Equal(t, cell.KindNumeric, a.At(0, 0).Kind())
	require.Equal(t, float64(0), a.At(0, 0).Float64())

	// no effect on integer output
	a, err = Materialize(ctx, batch.New(nil, mustBlock(t, types.T_int16.ToType(), []int{0}, []int16{7})), WithNaValue(0))
	require.NoError(t, err)
	require.Equal(t, []int16{7}, MustData[int16](a))
}

func TestMaterializeWithDtype(t *testing.T) {
	ctx := context.Background()
	tbl := batch.New(nil,
		mustBlock(t, types.T_int32.ToType(), []int{0}, []int32{1, -2}),
		mustBlock(t, types.T_float64.ToType(), []int{1}, []float64{2.7, -0.5}),
	)

	a, err := Materialize(ctx, tbl, WithDtype(types.T_int64.ToType()))
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, -2, 0}, MustData[int64](a))

	a, err = Materialize(ctx, tbl, WithDtype(types.T_bool.ToType()))
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true, true}, MustData[bool](a))

	a, err = Materialize(ctx, tbl, WithDtype(types.T_any.ToType()))
	require.NoError(t, err)
	require.Equal(t, types.T_int32, a.At(0, 0).Oid())
	require.Equal(t, 2.7, a.At(0, 1).Float64())

	_, err = Materialize(ctx, tbl, WithDtype(types.T_datetime.ToType()))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	_, err = Materialize(ctx, tbl, WithDtype(types.Type{Oid: types.T_timestamp}))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// integer output cannot hold a missing value
	withNaN := batch.New(nil, mustBlock(t, types.T_float64.ToType(), []int{0}, []float64{math.NaN()}))
	_, err = Materialize(ctx, withNaN, WithDtype(types.T_int64.ToType()))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	// zone relabel keeps the instant
	ts := types.FromClock(2013, 1, 1, 5, 0, 0, 0)
	zoned := batch.New(nil, mustBlock(t, types.NewZoned("US/Eastern"), []int{0}, []types.Timestamp{ts}))
	a, err = Materialize(ctx, zoned, WithDtype(types.NewZoned("CET")))
	require.NoError(t, err)
	require.Equal(t, []types.Timestamp{ts}, MustData[types.Timestamp](a))
	require.Equal(t, "2013-01-01 06:00:00+01:00", a.At(0, 0).String())

	_, err = Materialize(ctx, zoned, WithDtype(types.T_datetime.ToType()))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))
}

func TestMaterializeErrors(t *testing.T) {
	ctx := context.Background()

	a, err := Materialize(ctx, nil)
	require.Nil(t, a)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	a, err = Materialize(ctx, batch.New(nil))
	require.Nil(t, a)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	before := testutil.ToFloat64(v2.MaterializeFailedCounter.WithLabelValues("20409"))
	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1, 2, 3}),
		mustBlock(t, types.T_float64.ToType(), []int{1}, []float64{1, 2}),
	))
	require.Nil(t, a)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrShapeMismatch))
	require.Equal(t, before+1, testutil.ToFloat64(v2.MaterializeFailedCounter.WithLabelValues("20409")))

	a, err = Materialize(ctx, batch.New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1}),
		mustBlock(t, types.T_float64.ToType(), []int{0}, []float64{1}),
	))
	require.Nil(t, a)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Materialize(cctx, batch.New(nil, mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1})))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMaterializeEmpty(t *testing.T) {
	a, err := Materialize(context.Background(), batch.NewEmpty(3))
	require.NoError(t, err)
	require.True(t, a.GetType().IsGeneric())
	rows, cols := a.Shape()
	require.Equal(t, 3, rows)
	require.Equal(t, 0, cols)
	require.Empty(t, MustData[cell.Cell](a))

	// zero rows keep their columns
	a, err = Materialize(context.Background(), batch.New(nil,
		mustBlock(t, types.T_int8.ToType(), []int{0, 1}, []int8{}, []int8{})))
	require.NoError(t, err)
	require.Equal(t, 0, a.Rows())
	require.Equal(t, 2, a.Cols())
}

func TestMaterializeMetrics(t *testing.T) {
	before := testutil.ToFloat64(v2.MaterializeIntegerCounter)
	_, err := Materialize(context.Background(), batch.New(nil,
		mustBlock(t, types.T_int64.ToType(), []int{0}, []int64{1})))
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(v2.MaterializeIntegerCounter))
}

func TestDenseArrayString(t *testing.T) {
	a, err := Materialize(context.Background(), batch.New(nil,
		mustBlock(t, types.T_int8.ToType(), []int{0}, []int8{1, 2}),
		mustBlock(t, types.T_int16.ToType(), []int{1}, []int16{-3, 4}),
	))
	require.NoError(t, err)
	require.Equal(t, "[[1 -3]\n [2 4]]", a.String())
	require.Len(t, a.Row(1), 2)
	require.Equal(t, int64(4), a.Row(1)[1].Int64())
}
