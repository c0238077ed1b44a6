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

// Package protocodec maps the data model onto protobuf Struct values.
//
// The target is [structpb.Value], the well-known dynamic JSON-like
// tree: booleans, doubles, strings, null, lists, and string-keyed
// structs. Integers ride on the double field, 128-bit integers and
// byte arrays become strings, options collapse onto null, and enum
// variants use the variant name as a string or as the single key of
// a struct.
package protocodec

import (
	"encoding/base64"
	"fmt"
	"math/big"

	"google.golang.org/protobuf/types/known/structpb"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/internal/keycodec"
)

// An Encoder builds a [structpb.Value] tree. It is stateless;
// composite operations return accumulators that assemble the list or
// struct and produce the finished value from End.
type Encoder struct{}

var _ dynserde.Encoder[*structpb.Value] = Encoder{}

func (Encoder) EncodeBool(v bool) (*structpb.Value, error) {
	return structpb.NewBoolValue(v), nil
}

func (Encoder) EncodeInt8(v int8) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeInt16(v int16) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeInt32(v int32) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeInt64(v int64) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeInt128(v *big.Int) (*structpb.Value, error) {
	return structpb.NewStringValue(v.String()), nil
}

func (Encoder) EncodeUint8(v uint8) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeUint16(v uint16) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeUint32(v uint32) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeUint64(v uint64) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeUint128(v *big.Int) (*structpb.Value, error) {
	return structpb.NewStringValue(v.String()), nil
}

func (Encoder) EncodeFloat32(v float32) (*structpb.Value, error) {
	return structpb.NewNumberValue(float64(v)), nil
}

func (Encoder) EncodeFloat64(v float64) (*structpb.Value, error) {
	return structpb.NewNumberValue(v), nil
}

func (Encoder) EncodeRune(v rune) (*structpb.Value, error) {
	return structpb.NewStringValue(string(v)), nil
}

func (Encoder) EncodeString(v string) (*structpb.Value, error) {
	return structpb.NewStringValue(v), nil
}

func (Encoder) EncodeBytes(v []byte) (*structpb.Value, error) {
	return structpb.NewStringValue(base64.StdEncoding.EncodeToString(v)), nil
}

func (Encoder) EncodeNone() (*structpb.Value, error) {
	return structpb.NewNullValue(), nil
}

func (e Encoder) EncodeSome(v dynserde.Marshaler) (*structpb.Value, error) {
	return dynserde.Marshal[*structpb.Value](v, e)
}

func (Encoder) EncodeUnit() (*structpb.Value, error) {
	return structpb.NewNullValue(), nil
}

func (Encoder) EncodeUnitStruct(name string) (*structpb.Value, error) {
	return structpb.NewNullValue(), nil
}

func (Encoder) EncodeUnitVariant(name string, index uint32, variant string) (*structpb.Value, error) {
	return structpb.NewStringValue(variant), nil
}

func (e Encoder) EncodeNewtypeStruct(name string, v dynserde.Marshaler) (*structpb.Value, error) {
	return dynserde.Marshal[*structpb.Value](v, e)
}

func (e Encoder) EncodeNewtypeVariant(name string, index uint32, variant string, v dynserde.Marshaler) (*structpb.Value, error) {
	inner, err := dynserde.Marshal[*structpb.Value](v, e)
	if err != nil {
		return nil, err
	}
	return wrapVariant(variant, inner), nil
}

func (Encoder) EncodeSeq(n int) (dynserde.SeqEncoder[*structpb.Value], error) {
	return &listEncoder{}, nil
}

func (Encoder) EncodeTuple(n int) (dynserde.TupleEncoder[*structpb.Value], error) {
	return &listEncoder{}, nil
}

func (Encoder) EncodeTupleStruct(name string, n int) (dynserde.TupleStructEncoder[*structpb.Value], error) {
	return &listEncoder{}, nil
}

func (Encoder) EncodeTupleVariant(name string, index uint32, variant string, n int) (dynserde.TupleVariantEncoder[*structpb.Value], error) {
	return &listEncoder{variant: variant}, nil
}

func (Encoder) EncodeMap(n int) (dynserde.MapEncoder[*structpb.Value], error) {
	return &mapEncoder{fields: make(map[string]*structpb.Value, max(n, 0))}, nil
}

func (Encoder) EncodeStruct(name string, n int) (dynserde.StructEncoder[*structpb.Value], error) {
	return &structEncoder{fields: make(map[string]*structpb.Value, n)}, nil
}

func (Encoder) EncodeStructVariant(name string, index uint32, variant string, n int) (dynserde.StructVariantEncoder[*structpb.Value], error) {
	return &structEncoder{fields: make(map[string]*structpb.Value, n), variant: variant}, nil
}

func (Encoder) CollectString(v fmt.Stringer) (*structpb.Value, error) {
	return structpb.NewStringValue(v.String()), nil
}

func (Encoder) HumanReadable() bool {
	return true
}

func wrapVariant(variant string, v *structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{variant: v},
	})
}

// listEncoder accumulates sequence, tuple, and tuple-variant payloads.
type listEncoder struct {
	values  []*structpb.Value
	variant string
}

func (l *listEncoder) append(v dynserde.Marshaler) error {
	val, err := dynserde.Marshal[*structpb.Value](v, Encoder{})
	if err != nil {
		return err
	}
	l.values = append(l.values, val)
	return nil
}

func (l *listEncoder) EncodeElement(v dynserde.Marshaler) error {
	return l.append(v)
}

func (l *listEncoder) EncodeField(v dynserde.Marshaler) error {
	return l.append(v)
}

func (l *listEncoder) End() (*structpb.Value, error) {
	list := structpb.NewListValue(&structpb.ListValue{Values: l.values})
	if l.variant != "" {
		return wrapVariant(l.variant, list), nil
	}
	return list, nil
}

type mapEncoder struct {
	fields map[string]*structpb.Value
	key    string
	hasKey bool
}

func (m *mapEncoder) EncodeKey(k dynserde.Marshaler) error {
	if m.hasKey {
		return dynserde.Errorf("map key encoded twice without a value")
	}
	key, err := dynserde.Marshal[string](k, keycodec.Encoder{})
	if err != nil {
		return err
	}
	m.key = key
	m.hasKey = true
	return nil
}

func (m *mapEncoder) EncodeValue(v dynserde.Marshaler) error {
	if !m.hasKey {
		return dynserde.Errorf("map value encoded before its key")
	}
	val, err := dynserde.Marshal[*structpb.Value](v, Encoder{})
	if err != nil {
		return err
	}
	m.fields[m.key] = val
	m.hasKey = false
	return nil
}

func (m *mapEncoder) EncodeEntry(k, v dynserde.Marshaler) error {
	if err := m.EncodeKey(k); err != nil {
		return err
	}
	return m.EncodeValue(v)
}

func (m *mapEncoder) End() (*structpb.Value, error) {
	if m.hasKey {
		return nil, dynserde.Errorf("map ended with a key missing its value")
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: m.fields}), nil
}

type structEncoder struct {
	fields  map[string]*structpb.Value
	variant string
}

func (s *structEncoder) EncodeField(name string, v dynserde.Marshaler) error {
	val, err := dynserde.Marshal[*structpb.Value](v, Encoder{})
	if err != nil {
		return err
	}
	s.fields[name] = val
	return nil
}

func (s *structEncoder) SkipField(name string) error {
	return nil
}

func (s *structEncoder) End() (*structpb.Value, error) {
	val := structpb.NewStructValue(&structpb.Struct{Fields: s.fields})
	if s.variant != "" {
		return wrapVariant(s.variant, val), nil
	}
	return val, nil
}
