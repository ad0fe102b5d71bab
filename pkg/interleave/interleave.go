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
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/batch"
	"github.com/matrixorigin/densify/pkg/container/types"
	"github.com/matrixorigin/densify/pkg/logutil"
	v2 "github.com/matrixorigin/densify/pkg/util/metric/v2"
)

// Materialize copies every column of tbl, in position order, into a
// freshly allocated dense array of the common type of the columns.
// The table is validated before anything is allocated and no partial
// output is returned on failure.
func Materialize(ctx context.Context, tbl *batch.Table, opts ...Option) (a *DenseArray, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if tbl == nil {
		return nil, moerr.NewInvalidInput(ctx, "nil table")
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = tbl.WithContext(ctx)
	ctx = moerr.AttachDetail(ctx, "table "+tbl.ID().String())
	defer func() {
		if err != nil {
			code := strconv.Itoa(int(moerr.DowncastError(err).ErrorCode()))
			v2.MaterializeFailedCounter.WithLabelValues(code).Inc()
			logutil.WarnCtx(ctx, "materialize failed", zap.Error(err))
		}
	}()

	locs, err := tbl.Index(ctx)
	if err != nil {
		return nil, err
	}
	typ, err := resolveType(ctx, tbl, &o)
	if err != nil {
		return nil, err
	}

	a = newDenseArray(typ, tbl.RowCount(), len(locs))
	a.srcTypes = make([]types.Type, len(locs))
	for p, loc := range locs {
		b := tbl.Blocks[loc.Blk]
		a.srcTypes[p] = b.GetType()
		if err = fillColumn(a, p, b, loc.Col, &o); err != nil {
			return nil, err
		}
	}

	observe(typ, a.rows*a.cols, time.Since(start))
	logutil.DebugCtx(ctx, "materialize",
		zap.Stringer("type", typ),
		zap.Int("rows", a.rows),
		zap.Int("cols", a.cols),
		zap.Int("blocks", tbl.BlockCount()))
	return a, nil
}

// resolveType returns the output type: the forced one when given and
// castable from every block, else the common type of the blocks. A table
// without columns materializes as generic.
func resolveType(ctx context.Context, tbl *batch.Table, o *options) (types.Type, error) {
	ts := tbl.Types()
	if o.dtype == nil {
		if len(ts) == 0 {
			return types.T_any.ToType(), nil
		}
		return types.CommonType(ctx, ts...)
	}

	typ := *o.dtype
	if !typ.IsValid() {
		return typ, moerr.NewInvalidInput(ctx, "invalid output type %s", typ)
	}
	for _, t := range ts {
		if !castable(t, typ) {
			return typ, moerr.NewInvalidInput(ctx, "cannot materialize %s column as %s", t, typ)
		}
	}
	if typ.IsInteger() || typ.IsBoolean() {
		for i, b := range tbl.Blocks {
			if b.HasMissing() {
				return typ, moerr.NewInvalidInput(ctx, "block %d has missing values, %s cannot hold them", i, typ)
			}
		}
	}
	return typ, nil
}

func castable(from, to types.Type) bool {
	switch {
	case to.IsGeneric():
		return true
	case to.IsNumericOrBool():
		return from.IsNumericOrBool()
	case to.IsZoned():
		return from.IsZoned()
	case to.Oid == types.T_datetime:
		return from.Oid == types.T_datetime
	}
	return false
}

func observe(typ types.Type, cells int, d time.Duration) {
	switch {
	case typ.IsBoolean():
		v2.MaterializeBoolCounter.Inc()
	case typ.IsInteger():
		v2.MaterializeIntegerCounter.Inc()
	case typ.IsFloat():
		v2.MaterializeFloatCounter.Inc()
	case typ.IsTemporal():
		v2.MaterializeTemporalCounter.Inc()
	default:
		v2.MaterializeGenericCounter.Inc()
	}
	v2.MaterializeCellsHistogram.Observe(float64(cells))
	v2.MaterializeDurationHistogram.Observe(d.Seconds())
}
