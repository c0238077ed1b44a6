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
	"math/big"
	"testing"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/jsoncodec"
	"dynserde.dev/dynserde/internal/assert"
)

type point struct {
	X, Y int32
}

// pointVisitor decodes a point from a map with "x" and "y" fields,
// rejecting unknown, missing, and duplicate fields.
type pointVisitor struct {
	dynserde.UnimplementedVisitor[point]
}

func (pointVisitor) Expecting() string { return "a point" }

func (pointVisitor) VisitMap(a dynserde.MapDecoder) (point, error) {
	var p point
	var sawX, sawY bool
	for {
		key := dynserde.NewSeed(decodeFieldName)
		ok, err := a.NextKey(key)
		if err != nil {
			return point{}, err
		}
		if !ok {
			break
		}
		name, err := key.Result()
		if err != nil {
			return point{}, err
		}
		var field *int32
		var seen *bool
		switch name {
		case "x":
			field, seen = &p.X, &sawX
		case "y":
			field, seen = &p.Y, &sawY
		default:
			return point{}, dynserde.UnknownField(name, []string{"x", "y"})
		}
		if *seen {
			return point{}, dynserde.DuplicateField(name)
		}
		value := dynserde.NewSeed(decodeInt32)
		if err := a.NextValue(value); err != nil {
			return point{}, err
		}
		if *field, err = value.Result(); err != nil {
			return point{}, err
		}
		*seen = true
	}
	if !sawX {
		return point{}, dynserde.MissingField("x")
	}
	if !sawY {
		return point{}, dynserde.MissingField("y")
	}
	return p, nil
}

func decodeFieldName(d dynserde.Deserializer) (string, error) {
	return dynserde.Typed[string](d).DecodeIdentifier(scalarVisitor[string]{
		dynserde.UnimplementedVisitor[string]{Desc: "a field name"},
	})
}

func decodeInt32(d dynserde.Deserializer) (int32, error) {
	return dynserde.Typed[int32](d).DecodeInt32(scalarVisitor[int32]{
		dynserde.UnimplementedVisitor[int32]{Desc: "a 32-bit integer"},
	})
}

func decodePoint(d dynserde.Deserializer) (point, error) {
	return dynserde.Typed[point](d).DecodeStruct("Point", []string{"x", "y"}, pointVisitor{})
}

// scalarVisitor accepts exactly the scalar shape matching its type
// parameter and rejects everything else.
type scalarVisitor[V bool | int32 | uint8 | string | *big.Int] struct {
	dynserde.UnimplementedVisitor[V]
}

func (scalarVisitor[V]) visit(v V) (V, error) { return v, nil }

func (s scalarVisitor[V]) VisitBool(v bool) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) VisitInt32(v int32) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) VisitUint8(v uint8) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) VisitString(v string) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) VisitRune(v rune) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) VisitInt128(v *big.Int) (V, error) {
	if accept, ok := any(v).(V); ok {
		return s.visit(accept)
	}
	return s.rejectShape()
}

func (s scalarVisitor[V]) rejectShape() (V, error) {
	var zero V
	return zero, dynserde.Errorf("unexpected shape, expected %s", s.Expecting())
}

func TestUnmarshalStruct(t *testing.T) {
	t.Parallel()
	dec := jsoncodec.NewDecoder[point]([]byte(`{"x": 1, "y": 2}`))
	got, err := dynserde.Unmarshal(dec, decodePoint)
	assert.Nil(t, err)
	assert.Equal(t, got, point{X: 1, Y: 2})
}

func TestUnmarshalStructErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown field", `{"x": 1, "z": 3}`, "unknown field `z`, expected `x` or `y`"},
		{"missing field", `{"x": 1}`, "missing field `y`"},
		{"duplicate field", `{"x": 1, "x": 2}`, "duplicate field `x`"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dec := jsoncodec.NewDecoder[point]([]byte(tt.input))
			_, err := dynserde.Unmarshal(dec, decodePoint)
			assert.NotNil(t, err)
			assert.Equal(t, err.Error(), tt.want)
			assert.Equal(t, dynserde.CodeOf(err), dynserde.CodeFailed)
		})
	}
}

func TestUnmarshalScalars(t *testing.T) {
	t.Parallel()
	t.Run("uint8", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[uint8]([]byte(`255`))
		got, err := dec.DecodeUint8(scalarVisitor[uint8]{
			dynserde.UnimplementedVisitor[uint8]{Desc: "a byte"},
		})
		assert.Nil(t, err)
		assert.Equal(t, got, uint8(255))
	})
	t.Run("rune", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[int32]([]byte(`"A"`))
		got, err := dec.DecodeRune(scalarVisitor[int32]{
			dynserde.UnimplementedVisitor[int32]{Desc: "a character"},
		})
		assert.Nil(t, err)
		assert.Equal(t, got, 'A')
	})
	t.Run("int128", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[*big.Int]([]byte(`170141183460469231731687303715884105727`))
		got, err := dec.DecodeInt128(scalarVisitor[*big.Int]{
			dynserde.UnimplementedVisitor[*big.Int]{Desc: "a 128-bit integer"},
		})
		assert.Nil(t, err)
		want, ok := new(big.Int).SetString("170141183460469231731687303715884105727", 10)
		assert.True(t, ok)
		assert.Equal(t, got.Cmp(want), 0)
	})
}

// optionalIntVisitor accepts null or a 32-bit integer.
type optionalIntVisitor struct {
	dynserde.UnimplementedVisitor[*int32]
}

func (optionalIntVisitor) Expecting() string { return "an optional integer" }

func (optionalIntVisitor) VisitNone() (*int32, error) { return nil, nil }

func (v optionalIntVisitor) VisitSome(d dynserde.Decoder[*int32]) (*int32, error) {
	return d.DecodeInt32(v)
}

func (optionalIntVisitor) VisitInt32(n int32) (*int32, error) { return &n, nil }

func TestUnmarshalOption(t *testing.T) {
	t.Parallel()
	t.Run("none", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[*int32]([]byte(`null`))
		got, err := dec.DecodeOption(optionalIntVisitor{})
		assert.Nil(t, err)
		assert.Nil(t, got)
	})
	t.Run("some", func(t *testing.T) {
		t.Parallel()
		dec := jsoncodec.NewDecoder[*int32]([]byte(`3`))
		got, err := dec.DecodeOption(optionalIntVisitor{})
		assert.Nil(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, *got, int32(3))
	})
}

func TestSeedProtocol(t *testing.T) {
	t.Parallel()
	t.Run("result before decode", func(t *testing.T) {
		t.Parallel()
		seed := dynserde.NewSeed(decodeInt32)
		_, err := seed.Result()
		assert.Equal(t, dynserde.CodeOf(err), dynserde.CodeSeed)
	})
	t.Run("decode twice", func(t *testing.T) {
		t.Parallel()
		seed := dynserde.NewSeed(decodeInt32)
		d := dynserde.NewDeserializer[int32](jsoncodec.NewDecoder[int32]([]byte(`7`)))
		assert.Nil(t, seed.Decode(d))
		err := seed.Decode(d)
		assert.Equal(t, dynserde.CodeOf(err), dynserde.CodeSeed)
		got, err := seed.Result()
		assert.Nil(t, err)
		assert.Equal(t, got, int32(7))
	})
}

func TestDeserializerProtocol(t *testing.T) {
	t.Parallel()
	t.Run("single use", func(t *testing.T) {
		t.Parallel()
		d := dynserde.NewDeserializer[bool](jsoncodec.NewDecoder[bool]([]byte(`true`)))
		vis := dynserde.NewVisitor[bool](scalarVisitor[bool]{
			dynserde.UnimplementedVisitor[bool]{Desc: "a boolean"},
		})
		assert.Equal(t, d.DeserializeBool(vis), dynserde.CodeOK)
		got, err := vis.Result()
		assert.Nil(t, err)
		assert.True(t, got)
		assert.Equal(t, d.DeserializeBool(vis), dynserde.CodeDeserializer)
	})
	t.Run("codec error is stored", func(t *testing.T) {
		t.Parallel()
		d := dynserde.NewDeserializer[string](jsoncodec.NewDecoder[string]([]byte(`true`)))
		vis := dynserde.NewVisitor[string](scalarVisitor[string]{
			dynserde.UnimplementedVisitor[string]{Desc: "a name"},
		})
		assert.Equal(t, d.DeserializeString(vis), dynserde.CodeFailed)
		assert.NotNil(t, d.Err())
		assert.Equal(t, d.Err().Error(), "invalid type: boolean `true`, expected a name")
	})
	t.Run("visitor result before driving", func(t *testing.T) {
		t.Parallel()
		vis := dynserde.NewVisitor[bool](scalarVisitor[bool]{})
		_, err := vis.Result()
		assert.Equal(t, dynserde.CodeOf(err), dynserde.CodeVisitor)
	})
}

func TestUnimplementedVisitorRejects(t *testing.T) {
	t.Parallel()
	vis := dynserde.UnimplementedVisitor[struct{}]{Desc: "a unit"}
	_, err := vis.VisitBool(true)
	assert.NotNil(t, err)
	assert.Equal(t, err.Error(), "invalid type: boolean `true`, expected a unit")
	_, err = vis.VisitString("hi")
	assert.Equal(t, err.Error(), `invalid type: string "hi", expected a unit`)
	empty := dynserde.UnimplementedVisitor[struct{}]{}
	assert.Equal(t, empty.Expecting(), "nothing")
}
