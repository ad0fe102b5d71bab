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
	"github.com/google/uuid"

	"github.com/matrixorigin/densify/pkg/container/block"
)

// Table is an ordered collection of typed blocks, each block owning a set
// of column positions. Position is the only column identity:
//
//	(Attrs)  - column labels, aligned with positions, not required unique
//	(Blocks) - typed column blocks, in any order
type Table struct {
	// id correlates log lines of one table
	id uuid.UUID
	// Attrs column label list
	Attrs []string
	// Blocks col data
	Blocks []*block.Block

	rowCount int
	// rowsDeclared is set for a table built without blocks but with a
	// known row count, see NewEmpty
	rowsDeclared bool
}

// Loc locates a column of a table: Blk is the index of its block in
// Table.Blocks, Col the column inside that block.
type Loc struct {
	Blk int
	Col int
}
