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

package protocodec_test

import (
	"math/big"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/protocodec"
	"dynserde.dev/dynserde/internal/assert"
)

func object(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func list(values ...*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}

func TestEncode(t *testing.T) {
	t.Parallel()
	u128 := new(big.Int)
	u128.SetString("340282366920938463463374607431768211455", 10)
	tests := []struct {
		name  string
		value dynserde.Marshaler
		want  *structpb.Value
	}{
		{"bool", dynserde.Bool(true), structpb.NewBoolValue(true)},
		{"integer", dynserde.Int64(-300), structpb.NewNumberValue(-300)},
		{
			"uint128 as decimal string",
			dynserde.Uint128(u128),
			structpb.NewStringValue("340282366920938463463374607431768211455"),
		},
		{"rune", dynserde.Rune('A'), structpb.NewStringValue("A")},
		{"bytes", dynserde.Bytes([]byte{1, 2, 255}), structpb.NewStringValue("AQL/")},
		{"none", dynserde.None(), structpb.NewNullValue()},
		{"stringer", dynserde.Stringer(big.NewInt(42)), structpb.NewStringValue("42")},
		{
			"integer keys",
			dynserde.MapOf(
				dynserde.Entry{Key: dynserde.Int64(-3), Value: dynserde.Bool(true)},
			),
			object(map[string]*structpb.Value{"-3": structpb.NewBoolValue(true)}),
		},
		{
			"nested",
			dynserde.StructOf("Outer",
				dynserde.Field{Name: "items", Value: dynserde.SliceOf(dynserde.Uint8(7))},
				dynserde.Field{Name: "skipped"},
			),
			object(map[string]*structpb.Value{
				"items": list(structpb.NewNumberValue(7)),
			}),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dynserde.Marshal[*structpb.Value](tt.value, protocodec.Encoder{})
			assert.Nil(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestEncodeKeyDiscipline(t *testing.T) {
	t.Parallel()
	t.Run("float key rejected", func(t *testing.T) {
		t.Parallel()
		value := dynserde.MapOf(dynserde.Entry{Key: dynserde.Float64(2.5), Value: dynserde.Unit()})
		_, err := dynserde.Marshal[*structpb.Value](value, protocodec.Encoder{})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid type: floating point `2.5`, expected a string key")
	})
	t.Run("value before key", func(t *testing.T) {
		t.Parallel()
		enc := protocodec.Encoder{}
		m, err := enc.EncodeMap(1)
		assert.Nil(t, err)
		err = m.EncodeValue(dynserde.Bool(true))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "map value encoded before its key")
	})
	t.Run("key without value", func(t *testing.T) {
		t.Parallel()
		enc := protocodec.Encoder{}
		m, err := enc.EncodeMap(1)
		assert.Nil(t, err)
		assert.Nil(t, m.EncodeKey(dynserde.String("a")))
		err = m.EncodeKey(dynserde.String("b"))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "map key encoded twice without a value")
		_, err = m.End()
		assert.NotNil(t, err)
	})
}

type int32Visitor struct {
	dynserde.UnimplementedVisitor[int32]
}

func (int32Visitor) VisitInt32(v int32) (int32, error) { return v, nil }

func decodeInt32(d dynserde.Deserializer) (int32, error) {
	return dynserde.Typed[int32](d).DecodeInt32(int32Visitor{
		dynserde.UnimplementedVisitor[int32]{Desc: "a 32-bit integer"},
	})
}

func TestDecodeIntegerChecks(t *testing.T) {
	t.Parallel()
	t.Run("in range", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int32](structpb.NewNumberValue(-300))
		got, err := dec.DecodeInt32(int32Visitor{})
		assert.Nil(t, err)
		assert.Equal(t, got, int32(-300))
	})
	t.Run("out of range", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int32](structpb.NewNumberValue(300))
		_, err := dec.DecodeInt8(dynserde.UnimplementedVisitor[int32]{Desc: "a small integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: floating point `300`, expected a small integer")
	})
	t.Run("not integral", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int32](structpb.NewNumberValue(1.5))
		_, err := dec.DecodeInt32(dynserde.UnimplementedVisitor[int32]{Desc: "an integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: floating point `1.5`, expected an integer")
	})
	t.Run("wrong kind", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int32](structpb.NewStringValue("7"))
		_, err := dec.DecodeInt32(dynserde.UnimplementedVisitor[int32]{Desc: "an integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), `invalid type: string "7", expected an integer`)
	})
	t.Run("int64 bound not rounded in", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int64](structpb.NewNumberValue(9.223372036854776e18))
		_, err := dec.DecodeInt64(dynserde.UnimplementedVisitor[int64]{Desc: "an integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: floating point `9.223372036854776e+18`, expected an integer")
	})
	t.Run("uint64 bound not rounded in", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[uint64](structpb.NewNumberValue(1.8446744073709552e19))
		_, err := dec.DecodeUint64(dynserde.UnimplementedVisitor[uint64]{Desc: "an unsigned integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: floating point `1.8446744073709552e+19`, expected an unsigned integer")
	})
	t.Run("large int64 in range", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[int64](structpb.NewNumberValue(1 << 62))
		got, err := dec.DecodeInt64(int64Visitor{})
		assert.Nil(t, err)
		assert.Equal(t, got, int64(1)<<62)
	})
}

type int64Visitor struct {
	dynserde.UnimplementedVisitor[int64]
}

func (int64Visitor) VisitInt64(v int64) (int64, error) { return v, nil }

type bigIntVisitor struct {
	dynserde.UnimplementedVisitor[*big.Int]
}

func (bigIntVisitor) VisitInt128(v *big.Int) (*big.Int, error)  { return v, nil }
func (bigIntVisitor) VisitUint128(v *big.Int) (*big.Int, error) { return v, nil }

func TestDecode128Bit(t *testing.T) {
	t.Parallel()
	t.Run("from string", func(t *testing.T) {
		t.Parallel()
		val := structpb.NewStringValue("340282366920938463463374607431768211455")
		dec := protocodec.NewDecoder[*big.Int](val)
		got, err := dec.DecodeUint128(bigIntVisitor{})
		assert.Nil(t, err)
		assert.Equal(t, got.String(), "340282366920938463463374607431768211455")
	})
	t.Run("from integral number", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[*big.Int](structpb.NewNumberValue(-42))
		got, err := dec.DecodeInt128(bigIntVisitor{})
		assert.Nil(t, err)
		assert.Equal(t, got.String(), "-42")
	})
	t.Run("negative rejected for unsigned", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[*big.Int](structpb.NewStringValue("-1"))
		_, err := dec.DecodeUint128(dynserde.UnimplementedVisitor[*big.Int]{Desc: "an unsigned integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: integer `-1`, expected an unsigned integer")
	})
	t.Run("malformed string", func(t *testing.T) {
		t.Parallel()
		dec := protocodec.NewDecoder[*big.Int](structpb.NewStringValue("zap"))
		_, err := dec.DecodeUint128(dynserde.UnimplementedVisitor[*big.Int]{Desc: "an unsigned integer"})
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), `invalid value: string "zap", expected an unsigned integer`)
	})
}

type keyOrderVisitor struct {
	dynserde.UnimplementedVisitor[[]string]
}

func (keyOrderVisitor) Expecting() string { return "a map" }

func (keyOrderVisitor) VisitMap(a dynserde.MapDecoder) ([]string, error) {
	var keys []string
	if n, exact := a.SizeHint(); exact {
		keys = make([]string, 0, n)
	}
	for {
		key := dynserde.NewSeed(decodeKey)
		ok, err := a.NextKey(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return keys, nil
		}
		name, err := key.Result()
		if err != nil {
			return nil, err
		}
		value := dynserde.NewSeed(decodeIgnored)
		if err := a.NextValue(value); err != nil {
			return nil, err
		}
		keys = append(keys, name)
	}
}

type stringVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (stringVisitor) VisitString(v string) (string, error) { return v, nil }

func decodeKey(d dynserde.Deserializer) (string, error) {
	return dynserde.Typed[string](d).DecodeIdentifier(stringVisitor{
		dynserde.UnimplementedVisitor[string]{Desc: "a key"},
	})
}

type unitVisitor struct {
	dynserde.UnimplementedVisitor[struct{}]
}

func (unitVisitor) VisitUnit() (struct{}, error) { return struct{}{}, nil }

func decodeIgnored(d dynserde.Deserializer) (struct{}, error) {
	return dynserde.Typed[struct{}](d).DecodeIgnoredAny(unitVisitor{})
}

func TestDecodeSortedKeys(t *testing.T) {
	t.Parallel()
	val := object(map[string]*structpb.Value{
		"b": structpb.NewNumberValue(2),
		"a": structpb.NewNumberValue(1),
		"c": structpb.NewNumberValue(3),
	})
	dec := protocodec.NewDecoder[[]string](val)
	got, err := dec.DecodeMap(keyOrderVisitor{})
	assert.Nil(t, err)
	assert.Equal(t, got, []string{"a", "b", "c"})
}

type pairVisitor struct {
	dynserde.UnimplementedVisitor[[]int32]
}

func (pairVisitor) Expecting() string { return "a pair" }

func (pairVisitor) VisitSeq(a dynserde.SeqDecoder) ([]int32, error) {
	n, exact := a.SizeHint()
	if !exact {
		return nil, dynserde.Errorf("sequence length unknown")
	}
	pair := make([]int32, 0, n)
	for {
		elem := dynserde.NewSeed(decodeInt32)
		ok, err := a.NextElement(elem)
		if err != nil {
			return nil, err
		}
		if !ok {
			return pair, nil
		}
		v, err := elem.Result()
		if err != nil {
			return nil, err
		}
		pair = append(pair, v)
	}
}

func TestDecodeSeqSizeHint(t *testing.T) {
	t.Parallel()
	val := list(structpb.NewNumberValue(3), structpb.NewNumberValue(4))
	dec := protocodec.NewDecoder[[]int32](val)
	got, err := dec.DecodeTuple(2, pairVisitor{})
	assert.Nil(t, err)
	assert.Equal(t, got, []int32{3, 4})
}

type colorVisitor struct {
	dynserde.UnimplementedVisitor[string]
}

func (colorVisitor) Expecting() string { return "a color" }

func (colorVisitor) VisitEnum(a dynserde.EnumDecoder[string]) (string, error) {
	tag := dynserde.NewSeed(decodeKey)
	variant, err := a.Variant(tag)
	if err != nil {
		return "", err
	}
	name, err := tag.Result()
	if err != nil {
		return "", err
	}
	switch name {
	case "Red", "Green", "Blue":
		if err := variant.UnitVariant(); err != nil {
			return "", err
		}
		return name, nil
	case "Custom":
		code := dynserde.NewSeed(decodeColorCode)
		if err := variant.NewtypeVariant(code); err != nil {
			return "", err
		}
		return code.Result()
	default:
		return "", dynserde.UnknownVariant(name, []string{"Red", "Green", "Blue", "Custom"})
	}
}

func decodeColorCode(d dynserde.Deserializer) (string, error) {
	return dynserde.Typed[string](d).DecodeString(stringVisitor{
		dynserde.UnimplementedVisitor[string]{Desc: "a color code"},
	})
}

func TestDecodeEnum(t *testing.T) {
	t.Parallel()
	decode := func(val *structpb.Value) (string, error) {
		dec := protocodec.NewDecoder[string](val)
		return dec.DecodeEnum("Color", []string{"Red", "Green", "Blue", "Custom"}, colorVisitor{})
	}
	t.Run("unit variant", func(t *testing.T) {
		t.Parallel()
		got, err := decode(structpb.NewStringValue("Green"))
		assert.Nil(t, err)
		assert.Equal(t, got, "Green")
	})
	t.Run("newtype variant", func(t *testing.T) {
		t.Parallel()
		got, err := decode(object(map[string]*structpb.Value{
			"Custom": structpb.NewStringValue("#00ff00"),
		}))
		assert.Nil(t, err)
		assert.Equal(t, got, "#00ff00")
	})
	t.Run("multi key object", func(t *testing.T) {
		t.Parallel()
		_, err := decode(object(map[string]*structpb.Value{
			"Custom": structpb.NewStringValue("#00ff00"),
			"Red":    structpb.NewNullValue(),
		}))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid value: map, expected a color")
	})
	t.Run("wrong kind", func(t *testing.T) {
		t.Parallel()
		_, err := decode(structpb.NewBoolValue(true))
		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "invalid type: boolean `true`, expected a color")
	})
}
