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
	"github.com/matrixorigin/densify/pkg/container/types"
)

// DenseArray is a rows x cols homogeneous array stored row major: cell
// (r, c) is col[r*cols+c].
type DenseArray struct {
	typ  types.Type
	rows int
	cols int
	// []T for fixed size types, []cell.Cell for the generic type
	col any
	// source type of every output column
	srcTypes []types.Type
}

type options struct {
	dtype   *types.Type
	naValue *float64
}

// Option configures Materialize.
type Option func(*options)

// WithDtype forces the output type instead of the common type of the
// columns. Every column must be castable to it.
func WithDtype(typ types.Type) Option {
	return func(o *options) {
		o.dtype = &typ
	}
}

// WithNaValue replaces missing values of float and generic outputs.
func WithNaValue(v float64) Option {
	return func(o *options) {
		o.naValue = &v
	}
}
