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

package jsoncodec_test

import (
	"fmt"
	"math/big"
	"testing"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/jsoncodec"
	"dynserde.dev/dynserde/internal/assert"
)

func TestEncode(t *testing.T) {
	t.Parallel()
	u128 := new(big.Int)
	u128.SetString("340282366920938463463374607431768211455", 10)
	tests := []struct {
		name  string
		value dynserde.Marshaler
		want  string
	}{
		{"negative integer", dynserde.Int16(-300), `-300`},
		{"uint128", dynserde.Uint128(u128), `340282366920938463463374607431768211455`},
		{"int128", dynserde.Int128(big.NewInt(-42)), `-42`},
		{"rune", dynserde.Rune('A'), `"A"`},
		{"escaped string", dynserde.String("a\"b"), `"a\"b"`},
		{"stringer", dynserde.Stringer(big.NewInt(42)), `"42"`},
		{"empty seq", dynserde.SliceOf(), `[]`},
		{"empty map", dynserde.MapOf(), `{}`},
		{
			"integer keys",
			dynserde.MapOf(
				dynserde.Entry{Key: dynserde.Int64(-3), Value: dynserde.Bool(true)},
			),
			`{"-3":true}`,
		},
		{
			"rune key",
			dynserde.MapOf(
				dynserde.Entry{Key: dynserde.Rune('k'), Value: dynserde.Unit()},
			),
			`{"k":null}`,
		},
		{
			"heterogeneous seq",
			dynserde.SliceOf(
				dynserde.SliceOf(dynserde.Bool(true), dynserde.Bool(false)),
				dynserde.Uint8(100),
				dynserde.String("Hello, world"),
				dynserde.Float32(3.14),
			),
			`[[true,false],100,"Hello, world",3.14]`,
		},
		{
			"nested struct",
			dynserde.StructOf("Outer",
				dynserde.Field{Name: "inner", Value: dynserde.StructOf("Inner",
					dynserde.Field{Name: "n", Value: dynserde.Uint8(7)},
				)},
			),
			`{"inner":{"n":7}}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := dynserde.Marshal[[]byte](tt.value, jsoncodec.NewEncoder())
			assert.Nil(t, err)
			assert.Equal(t, string(data), tt.want)
		})
	}
}

func TestEncoderReset(t *testing.T) {
	t.Parallel()
	enc := jsoncodec.NewEncoder()
	data, err := dynserde.Marshal[[]byte](dynserde.Bool(true), enc)
	assert.Nil(t, err)
	assert.Equal(t, string(data), `true`)
	enc.Reset()
	data, err = dynserde.Marshal[[]byte](dynserde.Int32(7), enc)
	assert.Nil(t, err)
	assert.Equal(t, string(data), `7`)
	assert.Equal(t, string(enc.Bytes()), `7`)
}

func TestEncodeKeyErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		key  dynserde.Marshaler
		want string
	}{
		{"float key", dynserde.Float64(2.5), "invalid type: floating point `2.5`, expected a string key"},
		{"bool key", dynserde.Bool(true), "invalid type: boolean `true`, expected a string key"},
		{"seq key", dynserde.SliceOf(dynserde.Int32(1)), "invalid type: sequence, expected a string key"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			value := dynserde.MapOf(dynserde.Entry{Key: tt.key, Value: dynserde.Unit()})
			_, err := dynserde.Marshal[[]byte](value, jsoncodec.NewEncoder())
			assert.NotNil(t, err)
			assert.Equal(t, err.Error(), tt.want)
		})
	}
}

type stringVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (stringVisitor) VisitString(v string) (string, error) { return v, nil }

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	t.Run("wrong shape", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[string]([]byte(`true`))
		_, err := dec.DecodeString(stringVisitor{
			dynserde.UnimplementedVisitor[string]{Desc: "a string"},
		})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid type: boolean `true`, expected a string")
		assert.Equal(t, dynserde.CodeOf(err), dynserde.CodeFailed)
	})
	t.Run("uint8 overflow", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`256`))
		_, err := dec.DecodeUint8(dynserde.UnimplementedVisitor[any]{Desc: "a byte"})
		assert.NotNil(t, err)
	})
	t.Run("negative uint128", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`-1`))
		_, err := dec.DecodeUint128(dynserde.UnimplementedVisitor[any]{Desc: "an unsigned integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: integer `-1`, expected an unsigned integer")
	})
	t.Run("multi rune string", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`"ab"`))
		_, err := dec.DecodeRune(dynserde.UnimplementedVisitor[any]{Desc: "a character"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), `invalid value: string "ab", expected a character`)
	})
	t.Run("malformed input", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`{"x": }`))
		_, err := dec.DecodeMap(treeVisitor{})
		assert.NotNil(t, err)
	})
}

// treeVisitor folds maps and scalars into map[string]any trees.
type treeVisitor struct {
	dynserde.UnimplementedVisitor[any]
}

func (treeVisitor) Expecting() string { return "a value" }

func (treeVisitor) VisitBool(v bool) (any, error)     { return v, nil }
func (treeVisitor) VisitInt64(v int64) (any, error)   { return v, nil }
func (treeVisitor) VisitUint64(v uint64) (any, error) { return v, nil }
func (treeVisitor) VisitString(v string) (any, error) { return v, nil }

func (treeVisitor) VisitMap(a dynserde.MapDecoder) (any, error) {
	entries := map[string]any{}
	for {
		key := dynserde.NewSeed(decodeTreeString)
		ok, err := a.NextKey(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return entries, nil
		}
		name, err := key.Result()
		if err != nil {
			return nil, err
		}
		value := dynserde.NewSeed(decodeTreeAny)
		if err := a.NextValue(value); err != nil {
			return nil, err
		}
		if entries[name], err = value.Result(); err != nil {
			return nil, err
		}
	}
}

func decodeTreeString(d dynserde.Deserializer) (string, error) {
	return dynserde.Typed[string](d).DecodeString(stringVisitor{})
}

func decodeTreeAny(d dynserde.Deserializer) (any, error) {
	return dynserde.Typed[any](d).DecodeAny(treeVisitor{})
}

func TestDecodeMapIntegerKeys(t *testing.T) {
	t.Parallel()
	dec := jsoncodec.NewDecoder[map[int32]string]([]byte(`{"-3":"a","5":"b"}`))
	got, err := dec.DecodeMap(intKeyMapVisitor{})
	assert.Nil(t, err)
	assert.Equal(t, got, map[int32]string{-3: "a", 5: "b"})
}

func TestDecodeMapEmptyStringKey(t *testing.T) {
	t.Parallel()
	t.Run("empty key kept", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`{"":1,"b":2}`))
		got, err := dec.DecodeMap(treeVisitor{})
		assert.Nil(t, err)
		assert.Equal(t, got, any(map[string]any{"": int64(1), "b": int64(2)}))
	})
	t.Run("empty object", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[any]([]byte(`{}`))
		got, err := dec.DecodeMap(treeVisitor{})
		assert.Nil(t, err)
		assert.Equal(t, got, any(map[string]any{}))
	})
}

type intKeyMapVisitor struct {
	dynserde.UnimplementedVisitor[map[int32]string]
}

func (intKeyMapVisitor) Expecting() string { return "a map with integer keys" }

func (intKeyMapVisitor) VisitMap(a dynserde.MapDecoder) (map[int32]string, error) {
	entries := map[int32]string{}
	for {
		key := dynserde.NewSeed(decodeKeyInt32)
		value := dynserde.NewSeed(decodeElemString)
		ok, err := a.NextEntry(key, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			return entries, nil
		}
		k, err := key.Result()
		if err != nil {
			return nil, err
		}
		if entries[k], err = value.Result(); err != nil {
			return nil, err
		}
	}
}

type int32Visitor struct {
	dynserde.UnimplementedVisitor[int32]
}

func (int32Visitor) VisitInt32(v int32) (int32, error) { return v, nil }

func decodeKeyInt32(d dynserde.Deserializer) (int32, error) {
	return dynserde.Typed[int32](d).DecodeInt32(int32Visitor{
		dynserde.UnimplementedVisitor[int32]{Desc: "an integer key"},
	})
}

func decodeElemString(d dynserde.Deserializer) (string, error) {
	return dynserde.Typed[string](d).DecodeString(stringVisitor{
		dynserde.UnimplementedVisitor[string]{Desc: "a string"},
	})
}

// shapeVisitor decodes a Shape enum with one variant of each form into
// a description string.
type shapeVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (shapeVisitor) Expecting() string { return "a shape" }

func (shapeVisitor) VisitEnum(a dynserde.EnumDecoder[string]) (string, error) {
	tag := dynserde.NewSeed(decodeTreeString)
	variant, err := a.Variant(tag)
	if err != nil {
		return "", err
	}
	name, err := tag.Result()
	if err != nil {
		return "", err
	}
	switch name {
	case "Point":
		if err := variant.UnitVariant(); err != nil {
			return "", err
		}
		return "point", nil
	case "Circle":
		radius := dynserde.NewSeed(decodeFloat64)
		if err := variant.NewtypeVariant(radius); err != nil {
			return "", err
		}
		r, err := radius.Result()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("circle(%g)", r), nil
	case "Rect":
		return variant.TupleVariant(2, rectVisitor{})
	case "Label":
		return variant.StructVariant([]string{"text"}, labelVisitor{})
	default:
		return "", dynserde.UnknownVariant(name, []string{"Point", "Circle", "Rect", "Label"})
	}
}

type float64Visitor struct {
	dynserde.UnimplementedVisitor[float64]
}

func (float64Visitor) VisitFloat64(v float64) (float64, error) { return v, nil }

func decodeFloat64(d dynserde.Deserializer) (float64, error) {
	return dynserde.Typed[float64](d).DecodeFloat64(float64Visitor{
		dynserde.UnimplementedVisitor[float64]{Desc: "a number"},
	})
}

type rectVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (rectVisitor) Expecting() string { return "a pair of sides" }

func (rectVisitor) VisitSeq(a dynserde.SeqDecoder) (string, error) {
	var sides []int32
	for {
		side := dynserde.NewSeed(decodeKeyInt32)
		ok, err := a.NextElement(side)
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		n, err := side.Result()
		if err != nil {
			return "", err
		}
		sides = append(sides, n)
	}
	if len(sides) != 2 {
		return "", dynserde.InvalidLength(len(sides), "a pair of sides")
	}
	return fmt.Sprintf("rect(%dx%d)", sides[0], sides[1]), nil
}

type labelVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (labelVisitor) Expecting() string { return "a label" }

func (labelVisitor) VisitMap(a dynserde.MapDecoder) (string, error) {
	text := ""
	for {
		key := dynserde.NewSeed(decodeTreeString)
		value := dynserde.NewSeed(decodeElemString)
		ok, err := a.NextEntry(key, value)
		if err != nil {
			return "", err
		}
		if !ok {
			return fmt.Sprintf("label(%q)", text), nil
		}
		name, err := key.Result()
		if err != nil {
			return "", err
		}
		if name != "text" {
			return "", dynserde.UnknownField(name, []string{"text"})
		}
		if text, err = value.Result(); err != nil {
			return "", err
		}
	}
}

func decodeShape(dec *jsoncodec.Decoder[string]) (string, error) {
	return dec.DecodeEnum("Shape", []string{"Point", "Circle", "Rect", "Label"}, shapeVisitor{})
}

func TestDecodeEnum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unit variant", `"Point"`, "point"},
		{"newtype variant", `{"Circle":1.5}`, "circle(1.5)"},
		{"tuple variant", `{"Rect":[3,4]}`, "rect(3x4)"},
		{"struct variant", `{"Label":{"text":"hi"}}`, `label("hi")`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeShape(jsoncodec.NewDecoder[string]([]byte(tt.input)))
			assert.Nil(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
	t.Run("unknown variant", func(t *testing.T) {
		t.Parallel()
		_, err := decodeShape(jsoncodec.NewDecoder[string]([]byte(`"Hexagon"`)))
		assert.NotNil(t, err)
		assert.Equal(
			t,
			err.Error(),
			"unknown variant `Hexagon`, expected one of `Point`, `Circle`, `Rect`, `Label`",
		)
	})
	t.Run("unit form with payload call", func(t *testing.T) {
		t.Parallel()
		_, err := decodeShape(jsoncodec.NewDecoder[string]([]byte(`"Circle"`)))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid type: unit variant, expected newtype variant")
	})
	t.Run("wrong shape", func(t *testing.T) {
		t.Parallel()
		_, err := decodeShape(jsoncodec.NewDecoder[string]([]byte(`7`)))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid type: integer `7`, expected a shape")
	})
}
