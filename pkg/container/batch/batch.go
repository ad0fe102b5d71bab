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
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/block"
	"github.com/matrixorigin/densify/pkg/container/types"
	"github.com/matrixorigin/densify/pkg/logutil"
)

// New returns a table over blocks. Its row count is the row count of the
// first block, mismatching blocks are reported by Index.
func New(attrs []string, blocks ...*block.Block) *Table {
	tbl := &Table{
		id:     uuid.New(),
		Attrs:  attrs,
		Blocks: blocks,
	}
	if len(blocks) > 0 {
		tbl.rowCount = blocks[0].Rows()
	}
	return tbl
}

// NewEmpty returns a table with no columns and rows rows.
func NewEmpty(rows int) *Table {
	return &Table{
		id:           uuid.New(),
		rowCount:     rows,
		rowsDeclared: true,
	}
}

func (tbl *Table) ID() uuid.UUID {
	return tbl.id
}

func (tbl *Table) RowCount() int {
	return tbl.rowCount
}

// ColumnCount returns the number of columns owned by the blocks.
func (tbl *Table) ColumnCount() int {
	n := 0
	for _, b := range tbl.Blocks {
		n += b.Width()
	}
	return n
}

func (tbl *Table) BlockCount() int {
	return len(tbl.Blocks)
}

// WithContext returns ctx carrying the table id for logging.
func (tbl *Table) WithContext(ctx context.Context) context.Context {
	return logutil.WithTableID(ctx, tbl.id.String())
}

// Index validates the table and returns, for every position p, the block
// and local column holding it.
func (tbl *Table) Index(ctx context.Context) ([]Loc, error) {
	if tbl == nil {
		return nil, moerr.NewInvalidInput(ctx, "nil table")
	}
	if len(tbl.Blocks) == 0 && !tbl.rowsDeclared {
		return nil, moerr.NewInvalidInput(ctx, "table has no blocks")
	}
	if tbl.rowCount < 0 {
		return nil, moerr.NewInvalidInput(ctx, "negative row count %d", tbl.rowCount)
	}
	for i, b := range tbl.Blocks {
		if b == nil {
			return nil, moerr.NewInvalidInput(ctx, "block %d is nil", i)
		}
		if b.Rows() != tbl.rowCount {
			return nil, moerr.NewShapeMismatch(ctx, "block %d has %d rows, table has %d", i, b.Rows(), tbl.rowCount)
		}
	}

	k := tbl.ColumnCount()
	if tbl.Attrs != nil && len(tbl.Attrs) != k {
		return nil, moerr.NewInvalidInput(ctx, "%d labels for %d columns", len(tbl.Attrs), k)
	}
	locs := make([]Loc, k)
	seen := make([]bool, k)
	for i, b := range tbl.Blocks {
		for j, p := range b.Positions() {
			if p < 0 || p >= k {
				return nil, moerr.NewInvalidInput(ctx, "block %d column %d: position %d out of [0, %d)", i, j, p, k)
			}
			if seen[p] {
				return nil, moerr.NewInvalidInput(ctx, "position %d owned twice", p)
			}
			seen[p] = true
			locs[p] = Loc{Blk: i, Col: j}
		}
	}
	// k positions, all distinct and in range: no gap is possible
	return locs, nil
}

// Types returns the distinct block types in block order.
func (tbl *Table) Types() []types.Type {
	ts := make([]types.Type, 0, len(tbl.Blocks))
	for _, b := range tbl.Blocks {
		dup := false
		for _, t := range ts {
			if t.Eq(b.GetType()) {
				dup = true
				break
			}
		}
		if !dup {
			ts = append(ts, b.GetType())
		}
	}
	return ts
}

// ColumnTypes returns the type of every column, by position.
func (tbl *Table) ColumnTypes(ctx context.Context) ([]types.Type, error) {
	locs, err := tbl.Index(ctx)
	if err != nil {
		return nil, err
	}
	ts := make([]types.Type, len(locs))
	for p, loc := range locs {
		ts[p] = tbl.Blocks[loc.Blk].GetType()
	}
	return ts, nil
}

// Project returns a table whose column i is column poses[i] of tbl. A
// position may be repeated. Blocks of the result own copies of the data.
func (tbl *Table) Project(ctx context.Context, poses []int) (*Table, error) {
	locs, err := tbl.Index(ctx)
	if err != nil {
		return nil, err
	}
	if len(poses) == 0 {
		rtbl := NewEmpty(tbl.rowCount)
		if tbl.Attrs != nil {
			rtbl.Attrs = []string{}
		}
		return rtbl, nil
	}

	// group the wanted columns by source block, keeping block order
	locals := make([][]int, len(tbl.Blocks))
	targets := make([][]int, len(tbl.Blocks))
	var attrs []string
	if tbl.Attrs != nil {
		attrs = make([]string, len(poses))
	}
	for i, p := range poses {
		if p < 0 || p >= len(locs) {
			return nil, moerr.NewInvalidInput(ctx, "position %d out of [0, %d)", p, len(locs))
		}
		loc := locs[p]
		locals[loc.Blk] = append(locals[loc.Blk], loc.Col)
		targets[loc.Blk] = append(targets[loc.Blk], i)
		if attrs != nil {
			attrs[i] = tbl.Attrs[p]
		}
	}

	blocks := make([]*block.Block, 0, len(tbl.Blocks))
	for i, b := range tbl.Blocks {
		if len(locals[i]) == 0 {
			continue
		}
		rb, err := b.Take(locals[i], targets[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, rb)
	}
	rtbl := New(attrs, blocks...)
	logutil.DebugCtx(tbl.WithContext(ctx), "project table",
		zap.String("projected", rtbl.id.String()),
		zap.Ints("positions", poses))
	return rtbl, nil
}

func (tbl *Table) String() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "table %s: %d rows, %d columns\n", tbl.id, tbl.rowCount, tbl.ColumnCount())
	if tbl.Attrs != nil {
		fmt.Fprintf(&buf, "labels: %v\n", tbl.Attrs)
	}
	for i, b := range tbl.Blocks {
		buf.WriteString(fmt.Sprintf("%d : %s\n", i, b.String()))
	}
	return buf.String()
}

func (tbl *Table) Log(tag string) {
	if tbl == nil || tbl.rowCount < 1 {
		return
	}
	logutil.Infof("\n" + tag + "\n" + tbl.String())
}
