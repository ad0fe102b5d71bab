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

package config

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/apache/arrow/go/v7/arrow/float16"
	"go.uber.org/zap/zapcore"

	"github.com/matrixorigin/densify/pkg/common/moerr"
	"github.com/matrixorigin/densify/pkg/container/batch"
	"github.com/matrixorigin/densify/pkg/container/block"
	"github.com/matrixorigin/densify/pkg/container/cell"
	"github.com/matrixorigin/densify/pkg/container/nulls"
	"github.com/matrixorigin/densify/pkg/container/types"
	"github.com/matrixorigin/densify/pkg/interleave"
	"github.com/matrixorigin/densify/pkg/logutil"
)

var (
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	// default number of tables materialized at once
	defaultWorkers = 4
)

// Description of the tables to materialize and the process around them.
type Description struct {
	Log logutil.LogConfig `toml:"log"`

	//materialize options shared by all tables
	Materialize MaterializeOptions `toml:"materialize"`

	//number of tables materialized concurrently
	Workers int `toml:"workers"`

	Tables []TableDescription `toml:"table"`
}

type MaterializeOptions struct {
	//forced output type, the common type of the columns when empty
	Dtype string `toml:"dtype"`

	//replacement of missing values in float and generic outputs
	NaValue *float64 `toml:"na-value"`
}

// TableDescription describes one table by its blocks.
type TableDescription struct {
	Name string `toml:"name"`

	//column labels by position, may repeat
	Labels []string `toml:"labels"`

	//row count of a table without blocks
	Rows int `toml:"rows"`

	Blocks []BlockDescription `toml:"block"`
}

// BlockDescription describes one typed block: the positions it owns and
// one value list per position.
type BlockDescription struct {
	Dtype     string  `toml:"dtype"`
	Positions []int   `toml:"positions"`
	Columns   [][]any `toml:"columns"`

	//missing cells as [column, row] pairs, float, temporal and object
	//blocks only
	Nulls [][]int `toml:"nulls"`
}

// PathExists reports whether path exists and is a file.
var PathExists = func(path string) (bool, bool, error) {
	fi, err := os.Stat(path)
	if err == nil {
		return true, !fi.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, false, nil
	}

	return false, false, err
}

// Load reads, defaults and validates the description in path.
func Load(path string) (*Description, error) {
	exists, isFile, err := PathExists(path)
	if err != nil {
		return nil, moerr.ConvertGoError(context.Background(), err)
	}
	if !exists || !isFile {
		return nil, moerr.NewFileNotFoundNoCtx(path)
	}
	desc := &Description{}
	if _, err = toml.DecodeFile(path, desc); err != nil {
		return nil, moerr.NewBadConfigNoCtx("%s: %v", path, err)
	}
	desc.SetDefaultValues()
	if err = desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Parse decodes a description from toml text.
func Parse(data string) (*Description, error) {
	desc := &Description{}
	if _, err := toml.Decode(data, desc); err != nil {
		return nil, moerr.NewBadConfigNoCtx("%v", err)
	}
	desc.SetDefaultValues()
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

func (desc *Description) SetDefaultValues() {
	if desc.Log.Level == "" {
		desc.Log.Level = defaultLogLevel
	}
	if desc.Log.Format == "" {
		desc.Log.Format = defaultLogFormat
	}
	if desc.Workers == 0 {
		desc.Workers = defaultWorkers
	}
}

// Validate checks everything that does not need building the tables.
func (desc *Description) Validate() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(desc.Log.Level)); err != nil {
		return moerr.NewBadConfigNoCtx("log level %q", desc.Log.Level)
	}
	switch desc.Log.Format {
	case "json", "console":
	default:
		return moerr.NewBadConfigNoCtx("log format %q", desc.Log.Format)
	}
	if desc.Workers < 0 {
		return moerr.NewBadConfigNoCtx("workers %d", desc.Workers)
	}
	if desc.Materialize.Dtype != "" {
		if _, ok := types.ParseType(desc.Materialize.Dtype); !ok {
			return moerr.NewBadConfigNoCtx("materialize dtype %q", desc.Materialize.Dtype)
		}
	}
	if len(desc.Tables) == 0 {
		return moerr.NewBadConfigNoCtx("no table")
	}
	for i, td := range desc.Tables {
		if td.Rows < 0 {
			return moerr.NewBadConfigNoCtx("table %d: rows %d", i, td.Rows)
		}
		for j, bd := range td.Blocks {
			if _, ok := types.ParseType(bd.Dtype); !ok {
				return moerr.NewBadConfigNoCtx("table %d block %d: dtype %q", i, j, bd.Dtype)
			}
			if len(bd.Positions) != len(bd.Columns) {
				return moerr.NewBadConfigNoCtx("table %d block %d: %d positions for %d columns",
					i, j, len(bd.Positions), len(bd.Columns))
			}
			for _, pair := range bd.Nulls {
				if len(pair) != 2 {
					return moerr.NewBadConfigNoCtx("table %d block %d: null mark %v is not a [column, row] pair", i, j, pair)
				}
			}
		}
	}
	return nil
}

// Options returns the materialize options of the description.
func (desc *Description) Options() []interleave.Option {
	var opts []interleave.Option
	if desc.Materialize.Dtype != "" {
		typ, _ := types.ParseType(desc.Materialize.Dtype)
		opts = append(opts, interleave.WithDtype(typ))
	}
	if desc.Materialize.NaValue != nil {
		opts = append(opts, interleave.WithNaValue(*desc.Materialize.NaValue))
	}
	return opts
}

// Build builds the tables of the description.
func (desc *Description) Build(ctx context.Context) ([]*batch.Table, error) {
	tbls := make([]*batch.Table, len(desc.Tables))
	for i := range desc.Tables {
		tbl, err := desc.Tables[i].Build(ctx)
		if err != nil {
			return nil, err
		}
		tbls[i] = tbl
	}
	return tbls, nil
}

// Build builds the table: blocks are built in order, a table without
// blocks has Rows rows and no column.
func (td *TableDescription) Build(ctx context.Context) (*batch.Table, error) {
	if len(td.Blocks) == 0 {
		tbl := batch.NewEmpty(td.Rows)
		tbl.Attrs = td.Labels
		return tbl, nil
	}
	blocks := make([]*block.Block, len(td.Blocks))
	for i := range td.Blocks {
		b, err := td.Blocks[i].Build(ctx)
		if err != nil {
			return nil, moerr.NewBadConfig(ctx, "table %q block %d: %v", td.Name, i, err)
		}
		blocks[i] = b
	}
	return batch.New(td.Labels, blocks...), nil
}

// Build converts the toml values of the block to its type.
func (bd *BlockDescription) Build(ctx context.Context) (*block.Block, error) {
	typ, ok := types.ParseType(bd.Dtype)
	if !ok {
		return nil, moerr.NewBadConfig(ctx, "dtype %q", bd.Dtype)
	}

	var b *block.Block
	var err error
	switch typ.Oid {
	case types.T_bool:
		b, err = buildFixed(typ, bd, toBool)
	case types.T_int8:
		b, err = buildFixed(typ, bd, toSigned[int8])
	case types.T_int16:
		b, err = buildFixed(typ, bd, toSigned[int16])
	case types.T_int32:
		b, err = buildFixed(typ, bd, toSigned[int32])
	case types.T_int64:
		b, err = buildFixed(typ, bd, toSigned[int64])
	case types.T_uint8:
		b, err = buildFixed(typ, bd, toUnsigned[uint8])
	case types.T_uint16:
		b, err = buildFixed(typ, bd, toUnsigned[uint16])
	case types.T_uint32:
		b, err = buildFixed(typ, bd, toUnsigned[uint32])
	case types.T_uint64:
		b, err = buildFixed(typ, bd, toUnsigned[uint64])
	case types.T_float16:
		b, err = buildFixed(typ, bd, toFloat16)
	case types.T_float32:
		b, err = buildFixed(typ, bd, toFloat[float32])
	case types.T_float64:
		b, err = buildFixed(typ, bd, toFloat[float64])
	case types.T_datetime, types.T_timestamp:
		var conv func(any) (types.Timestamp, error)
		if conv, err = toTimestamp(typ); err == nil {
			b, err = buildFixed(typ, bd, conv)
		}
	default:
		b, err = buildGeneric(bd)
	}
	if err != nil {
		return nil, err
	}

	if len(bd.Nulls) > 0 {
		nsp := nulls.New()
		for _, pair := range bd.Nulls {
			j, r := pair[0], pair[1]
			if j < 0 || j >= b.Width() || r < 0 || r >= b.Rows() {
				return nil, moerr.NewBadConfig(ctx, "null mark %v out of %d columns of %d rows", pair, b.Width(), b.Rows())
			}
			nulls.Add(nsp, uint64(j*b.Rows()+r))
		}
		if err = b.SetNulls(nsp); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildFixed[T types.FixedSizeT](typ types.Type, bd *BlockDescription, conv func(any) (T, error)) (*block.Block, error) {
	cols := make([][]T, len(bd.Columns))
	for j, vals := range bd.Columns {
		cols[j] = make([]T, len(vals))
		for r, v := range vals {
			x, err := conv(v)
			if err != nil {
				return nil, moerr.NewBadConfigNoCtx("column %d row %d: %v", j, r, err)
			}
			cols[j][r] = x
		}
	}
	return block.FromColumns(typ, bd.Positions, cols...)
}

func toBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, moerr.NewBadConfigNoCtx("%v is not a bool", v)
}

func toSigned[T int8 | int16 | int32 | int64](v any) (T, error) {
	i, ok := v.(int64)
	if !ok || int64(T(i)) != i {
		return 0, moerr.NewBadConfigNoCtx("%v does not fit %T", v, T(0))
	}
	return T(i), nil
}

func toUnsigned[T uint8 | uint16 | uint32 | uint64](v any) (T, error) {
	i, ok := v.(int64)
	if !ok || i < 0 || uint64(T(i)) != uint64(i) {
		return 0, moerr.NewBadConfigNoCtx("%v does not fit %T", v, T(0))
	}
	return T(i), nil
}

// toFloat accepts toml integers and floats, and "NaN" for a missing value.
func toFloat[T float32 | float64](v any) (T, error) {
	switch x := v.(type) {
	case int64:
		return T(x), nil
	case float64:
		return T(x), nil
	case string:
		if x == "NaN" {
			return T(math.NaN()), nil
		}
	}
	return 0, moerr.NewBadConfigNoCtx("%v is not a float", v)
}

func toFloat16(v any) (float16.Num, error) {
	x, err := toFloat[float32](v)
	if err != nil {
		return float16.Num{}, err
	}
	return float16.New(x), nil
}

// toTimestamp returns a converter reading wall clocks in the zone of typ
// and integers as nanoseconds since the epoch.
func toTimestamp(typ types.Type) (func(any) (types.Timestamp, error), error) {
	loc := time.UTC
	if typ.IsZoned() {
		var err error
		if loc, err = types.LoadZone(typ.Zone); err != nil {
			return nil, err
		}
	}
	return func(v any) (types.Timestamp, error) {
		switch x := v.(type) {
		case int64:
			return types.Timestamp(x), nil
		case string:
			return types.ParseTimestamp(x, loc)
		case time.Time:
			return wallClock(x, loc), nil
		}
		return types.NaT, moerr.NewBadConfigNoCtx("%v is not a timestamp", v)
	}, nil
}

// wallClock reads the wall clock of a toml datetime in loc.
func wallClock(t time.Time, loc *time.Location) types.Timestamp {
	y, m, d := t.Date()
	return types.FromClockIn(loc, y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

// buildGeneric boxes toml values: numbers, bools and datetimes keep their
// value, strings and anything else become opaque payloads.
func buildGeneric(bd *BlockDescription) (*block.Block, error) {
	cols := make([][]cell.Cell, len(bd.Columns))
	for j, vals := range bd.Columns {
		cols[j] = make([]cell.Cell, len(vals))
		for r, v := range vals {
			switch x := v.(type) {
			case bool:
				cols[j][r] = cell.FromBool(x)
			case int64:
				cols[j][r] = cell.FromInt64(types.T_int64, x)
			case float64:
				cols[j][r] = cell.FromFloat64(types.T_float64, x)
			case time.Time:
				cols[j][r] = cell.FromInstant(wallClock(x, time.UTC), "")
			default:
				cols[j][r] = cell.FromOpaque(x)
			}
		}
	}
	return block.GenericFromColumns(bd.Positions, cols...)
}
