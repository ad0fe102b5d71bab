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
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/batch"
	"github.com/matrixorigin/densify/pkg/logutil"
)

// MaterializeAll materializes independent tables on at most workers
// goroutines, runtime.NumCPU() when workers <= 0. Results keep the order
// of tables; a failed table leaves a nil result and its error is combined
// into the returned one.
func MaterializeAll(ctx context.Context, tables []*batch.Table, workers int, opts ...Option) ([]*DenseArray, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, moerr.ConvertGoError(ctx, err)
	}
	defer pool.Release()

	results := make([]*DenseArray, len(tables))
	errs := make([]error, len(tables))
	var wg sync.WaitGroup
	for i, tbl := range tables {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		i, tbl := i, tbl
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if v := recover(); v != nil {
					results[i] = nil
					errs[i] = moerr.ConvertPanicError(ctx, v)
				}
			}()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = Materialize(ctx, tbl, opts...)
		}); err != nil {
			wg.Done()
			errs[i] = moerr.ConvertGoError(ctx, err)
		}
	}
	wg.Wait()
	err = multierr.Combine(errs...)
	logutil.DebugCtx(ctx, "materialize all",
		zap.Int("tables", len(tables)),
		zap.Int("workers", workers),
		zap.Int("failed", len(multierr.Errors(err))))
	return results, err
}
