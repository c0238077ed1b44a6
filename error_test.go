// Copyright 2024-2026 The Dynserde Authors.
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

package dynserde_test

import (
	"errors"
	"fmt"
	"testing"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/internal/assert"
)

func TestErrorRendering(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid type",
			err:  dynserde.InvalidType(dynserde.UnexpectedBool(true), "a string"),
			want: "invalid type: boolean `true`, expected a string",
		},
		{
			name: "invalid type float",
			err:  dynserde.InvalidType(dynserde.UnexpectedFloat(3.5), "an integer"),
			want: "invalid type: floating point `3.5`, expected an integer",
		},
		{
			name: "invalid value",
			err:  dynserde.InvalidValue(dynserde.UnexpectedString("xyz"), "a single character"),
			want: `invalid value: string "xyz", expected a single character`,
		},
		{
			name: "invalid length",
			err:  dynserde.InvalidLength(3, "a tuple of size 2"),
			want: "invalid length: 3, expected a tuple of size 2",
		},
		{
			name: "unknown variant",
			err:  dynserde.UnknownVariant("Purple", []string{"Red", "Green"}),
			want: "unknown variant `Purple`, expected `Red` or `Green`",
		},
		{
			name: "unknown variant of many",
			err:  dynserde.UnknownVariant("d", []string{"a", "b", "c"}),
			want: "unknown variant `d`, expected one of `a`, `b`, `c`",
		},
		{
			name: "unknown variant of none",
			err:  dynserde.UnknownVariant("x", nil),
			want: "unknown variant `x`, there are no variants",
		},
		{
			name: "unknown field",
			err:  dynserde.UnknownField("z", []string{"x", "y"}),
			want: "unknown field `z`, expected `x` or `y`",
		},
		{
			name: "unknown field of one",
			err:  dynserde.UnknownField("z", []string{"x"}),
			want: "unknown field `z`, expected `x`",
		},
		{
			name: "missing field",
			err:  dynserde.MissingField("x"),
			want: "missing field `x`",
		},
		{
			name: "duplicate field",
			err:  dynserde.DuplicateField("x"),
			want: "duplicate field `x`",
		},
		{
			name: "message",
			err:  dynserde.Errorf("boom %d", 42),
			want: "boom 42",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.err.Error(), tt.want)
			assert.Equal(t, dynserde.CodeOf(tt.err), dynserde.CodeFailed)
		})
	}
}

func TestUnexpectedDescriptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		got  dynserde.Unexpected
		want string
	}{
		{dynserde.UnexpectedBool(false), "boolean `false`"},
		{dynserde.UnexpectedSigned(-7), "integer `-7`"},
		{dynserde.UnexpectedUnsigned(7), "integer `7`"},
		{dynserde.UnexpectedFloat(0.25), "floating point `0.25`"},
		{dynserde.UnexpectedRune('A'), "character `A`"},
		{dynserde.UnexpectedString("hi"), `string "hi"`},
		{dynserde.UnexpectedBytes(), "byte array"},
		{dynserde.UnexpectedUnit(), "unit value"},
		{dynserde.UnexpectedOption(), "optional value"},
		{dynserde.UnexpectedNewtypeStruct(), "newtype struct"},
		{dynserde.UnexpectedSeq(), "sequence"},
		{dynserde.UnexpectedMap(), "map"},
		{dynserde.UnexpectedEnum(), "enum"},
		{dynserde.UnexpectedUnitVariant(), "unit variant"},
		{dynserde.UnexpectedNewtypeVariant(), "newtype variant"},
		{dynserde.UnexpectedTupleVariant(), "tuple variant"},
		{dynserde.UnexpectedStructVariant(), "struct variant"},
		{dynserde.UnexpectedOther("end of input"), "end of input"},
		{dynserde.Unexpected{}, "unknown value"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.got.String(), tt.want)
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()
	base := errors.New("connection reset")
	wrapped := dynserde.NewError(fmt.Errorf("read frame: %w", base))
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, wrapped.Error(), "read frame: connection reset")
	assert.Equal(t, dynserde.CodeOf(wrapped), dynserde.CodeFailed)

	// NewError leaves existing *Errors untouched.
	typed := dynserde.MissingField("id")
	assert.Equal(t, dynserde.NewError(typed), typed)
	again := dynserde.NewError(fmt.Errorf("outer: %w", typed))
	assert.Equal(t, again, typed)
}

func TestCodeOfAndAsError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, dynserde.CodeOf(nil), dynserde.CodeOK)
	assert.Equal(t, dynserde.CodeOf(errors.New("plain")), dynserde.CodeFailed)
	assert.Equal(t, dynserde.CodeOf(dynserde.CodeMapAccess.Err()), dynserde.CodeMapAccess)

	if _, ok := dynserde.AsError(errors.New("plain")); ok {
		t.Fatalf("plain error unexpectedly unwrapped to *Error")
	}
	typed, ok := dynserde.AsError(fmt.Errorf("outer: %w", dynserde.DuplicateField("x")))
	assert.True(t, ok)
	assert.Equal(t, typed.Error(), "duplicate field `x`")
}
