// Copyright 2021 - 2022 Matrix Origin
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

package moerr

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoErrCode(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		code     uint16
		expected bool
	}{
		{name: "nil is ok", err: nil, code: Ok, expected: true},
		{name: "nil is not invalid input", err: nil, code: ErrInvalidInput, expected: false},
		{name: "invalid input", err: NewInvalidInput(ctx, "empty set"), code: ErrInvalidInput, expected: true},
		{name: "shape mismatch", err: NewShapeMismatch(ctx, "3 != 4"), code: ErrShapeMismatch, expected: true},
		{name: "shape mismatch is not invalid input", err: NewShapeMismatch(ctx, "x"), code: ErrInvalidInput, expected: false},
		{name: "go error", err: errors.New("boom"), code: ErrInternal, expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsMoErrCode(tt.err, tt.code))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewShapeMismatch(context.Background(), "block %d has %d rows, expected %d", 1, 3, 2)
	require.Equal(t, "shape mismatch: block 1 has 3 rows, expected 2", err.Error())
	require.Equal(t, ErrShapeMismatch, err.ErrorCode())
}

func TestAttachDetail(t *testing.T) {
	ctx := AttachDetail(context.Background(), "table 42")
	err := NewInvalidInput(ctx, "no blocks")
	require.Equal(t, "table 42", err.Detail())
	require.Equal(t, "invalid input: no blocks: table 42", err.Display())

	err = NewInvalidInputNoCtx("no blocks")
	require.Equal(t, "invalid input: no blocks", err.Display())
}

func TestConvertGoError(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, ConvertGoError(ctx, nil))

	me := NewInvalidInput(ctx, "x")
	require.Equal(t, error(me), ConvertGoError(ctx, me))

	err := ConvertGoError(ctx, io.EOF)
	require.True(t, IsMoErrCode(err, ErrInternal))
	require.Equal(t, ErrInternal, DowncastError(errors.New("x")).ErrorCode())
}

func TestConvertPanicError(t *testing.T) {
	ctx := context.Background()
	me := NewShapeMismatch(ctx, "x")
	require.Equal(t, me, ConvertPanicError(ctx, me))
	require.Equal(t, ErrInternal, ConvertPanicError(ctx, "oops").ErrorCode())
}
