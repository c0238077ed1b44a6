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

package protocodec

import (
	"encoding/base64"
	"math"
	"math/big"
	"sort"
	"unicode/utf8"

	"google.golang.org/protobuf/types/known/structpb"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/internal/keycodec"
)

// A Decoder walks a [structpb.Value] tree. Integer hints accept
// number values that are integral and in range; 128-bit hints also
// accept decimal strings, matching what the Encoder writes. Struct
// fields are visited in sorted key order.
type Decoder[V any] struct {
	val *structpb.Value
}

var _ dynserde.Decoder[struct{}] = (*Decoder[struct{}])(nil)

// NewDecoder returns a Decoder positioned at val.
func NewDecoder[V any](val *structpb.Value) *Decoder[V] {
	return &Decoder[V]{val: val}
}

func (d *Decoder[V]) unexpected() dynserde.Unexpected {
	switch k := d.val.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return dynserde.UnexpectedBool(k.BoolValue)
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
			return dynserde.UnexpectedSigned(int64(f))
		}
		return dynserde.UnexpectedFloat(f)
	case *structpb.Value_StringValue:
		return dynserde.UnexpectedString(k.StringValue)
	case *structpb.Value_ListValue:
		return dynserde.UnexpectedSeq()
	case *structpb.Value_StructValue:
		return dynserde.UnexpectedMap()
	}
	return dynserde.UnexpectedOther("null")
}

func (d *Decoder[V]) invalidType(v dynserde.DecodeVisitor[V]) error {
	return dynserde.InvalidType(d.unexpected(), v.Expecting())
}

func (d *Decoder[V]) number(v dynserde.DecodeVisitor[V]) (float64, error) {
	k, ok := d.val.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, d.invalidType(v)
	}
	return k.NumberValue, nil
}

// integer accepts integral numbers in [lo, hi). Bounds must be powers
// of two so they stay exact as float64; inclusive limits like
// MaxInt64 round up when converted and would admit 1<<63.
func (d *Decoder[V]) integer(v dynserde.DecodeVisitor[V], lo, hi float64) (float64, error) {
	f, err := d.number(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < lo || f >= hi {
		return 0, dynserde.InvalidValue(dynserde.UnexpectedFloat(f), v.Expecting())
	}
	return f, nil
}

func (d *Decoder[V]) str(v dynserde.DecodeVisitor[V]) (string, error) {
	k, ok := d.val.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", d.invalidType(v)
	}
	return k.StringValue, nil
}

// bigInt reads a 128-bit integer from either a decimal string or an
// integral number.
func (d *Decoder[V]) bigInt(v dynserde.DecodeVisitor[V]) (*big.Int, error) {
	switch k := d.val.GetKind().(type) {
	case *structpb.Value_StringValue:
		i, ok := new(big.Int).SetString(k.StringValue, 10)
		if !ok {
			return nil, dynserde.InvalidValue(dynserde.UnexpectedString(k.StringValue), v.Expecting())
		}
		return i, nil
	case *structpb.Value_NumberValue:
		if k.NumberValue != math.Trunc(k.NumberValue) {
			return nil, dynserde.InvalidValue(dynserde.UnexpectedFloat(k.NumberValue), v.Expecting())
		}
		i, _ := big.NewFloat(k.NumberValue).Int(nil)
		return i, nil
	}
	return nil, d.invalidType(v)
}

func (d *Decoder[V]) decodeSeed(seed dynserde.Seed, val *structpb.Value) error {
	bridge := dynserde.NewDeserializer[V](&Decoder[V]{val: val})
	err := seed.Decode(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return cerr
	}
	return err
}

func (d *Decoder[V]) keySeed(seed dynserde.Seed, key string) error {
	bridge := dynserde.NewDeserializer[V](keycodec.NewDecoder[V](key))
	err := seed.Decode(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return cerr
	}
	return err
}

func (d *Decoder[V]) DecodeAny(v dynserde.DecodeVisitor[V]) (V, error) {
	switch k := d.val.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return v.VisitBool(k.BoolValue)
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
			return v.VisitInt64(int64(f))
		}
		return v.VisitFloat64(f)
	case *structpb.Value_StringValue:
		return v.VisitString(k.StringValue)
	case *structpb.Value_ListValue:
		return v.VisitSeq(&seqDecoder[V]{d: d, values: k.ListValue.GetValues()})
	case *structpb.Value_StructValue:
		return v.VisitMap(newMapDecoder(d, k.StructValue.GetFields()))
	}
	return v.VisitUnit()
}

func (d *Decoder[V]) DecodeBool(v dynserde.DecodeVisitor[V]) (V, error) {
	k, ok := d.val.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		var zero V
		return zero, d.invalidType(v)
	}
	return v.VisitBool(k.BoolValue)
}

func (d *Decoder[V]) DecodeInt8(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, -1<<7, 1<<7)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitInt8(int8(f))
}

func (d *Decoder[V]) DecodeInt16(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, -1<<15, 1<<15)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitInt16(int16(f))
}

func (d *Decoder[V]) DecodeInt32(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, -1<<31, 1<<31)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitInt32(int32(f))
}

func (d *Decoder[V]) DecodeInt64(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, -(1<<63), 1<<63)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitInt64(int64(f))
}

func (d *Decoder[V]) DecodeInt128(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := d.bigInt(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitInt128(i)
}

func (d *Decoder[V]) DecodeUint8(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, 0, 1<<8)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitUint8(uint8(f))
}

func (d *Decoder[V]) DecodeUint16(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, 0, 1<<16)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitUint16(uint16(f))
}

func (d *Decoder[V]) DecodeUint32(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, 0, 1<<32)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitUint32(uint32(f))
}

func (d *Decoder[V]) DecodeUint64(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.integer(v, 0, 1<<64)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitUint64(uint64(f))
}

func (d *Decoder[V]) DecodeUint128(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := d.bigInt(v)
	if err != nil {
		var zero V
		return zero, err
	}
	if i.Sign() < 0 {
		var zero V
		return zero, dynserde.InvalidValue(dynserde.UnexpectedOther("integer `"+i.String()+"`"), v.Expecting())
	}
	return v.VisitUint128(i)
}

func (d *Decoder[V]) DecodeFloat32(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.number(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitFloat32(float32(f))
}

func (d *Decoder[V]) DecodeFloat64(v dynserde.DecodeVisitor[V]) (V, error) {
	f, err := d.number(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitFloat64(f)
}

func (d *Decoder[V]) DecodeRune(v dynserde.DecodeVisitor[V]) (V, error) {
	str, err := d.str(v)
	if err != nil {
		var zero V
		return zero, err
	}
	if utf8.RuneCountInString(str) != 1 {
		var zero V
		return zero, dynserde.InvalidValue(dynserde.UnexpectedString(str), v.Expecting())
	}
	r, _ := utf8.DecodeRuneInString(str)
	return v.VisitRune(r)
}

func (d *Decoder[V]) DecodeString(v dynserde.DecodeVisitor[V]) (V, error) {
	str, err := d.str(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitString(str)
}

func (d *Decoder[V]) DecodeBytes(v dynserde.DecodeVisitor[V]) (V, error) {
	str, err := d.str(v)
	if err != nil {
		var zero V
		return zero, err
	}
	raw, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		var zero V
		return zero, dynserde.InvalidValue(dynserde.UnexpectedString(str), v.Expecting())
	}
	return v.VisitBytes(raw)
}

func (d *Decoder[V]) DecodeOption(v dynserde.DecodeVisitor[V]) (V, error) {
	if _, ok := d.val.GetKind().(*structpb.Value_NullValue); ok || d.val.GetKind() == nil {
		return v.VisitNone()
	}
	return v.VisitSome(d)
}

func (d *Decoder[V]) DecodeUnit(v dynserde.DecodeVisitor[V]) (V, error) {
	if _, ok := d.val.GetKind().(*structpb.Value_NullValue); !ok && d.val.GetKind() != nil {
		var zero V
		return zero, d.invalidType(v)
	}
	return v.VisitUnit()
}

func (d *Decoder[V]) DecodeUnitStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeUnit(v)
}

func (d *Decoder[V]) DecodeNewtypeStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitNewtypeStruct(d)
}

func (d *Decoder[V]) list(v dynserde.DecodeVisitor[V]) ([]*structpb.Value, error) {
	k, ok := d.val.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, d.invalidType(v)
	}
	return k.ListValue.GetValues(), nil
}

func (d *Decoder[V]) fields(v dynserde.DecodeVisitor[V]) (map[string]*structpb.Value, error) {
	k, ok := d.val.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, d.invalidType(v)
	}
	return k.StructValue.GetFields(), nil
}

func (d *Decoder[V]) DecodeSeq(v dynserde.DecodeVisitor[V]) (V, error) {
	values, err := d.list(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitSeq(&seqDecoder[V]{d: d, values: values})
}

func (d *Decoder[V]) DecodeTuple(n int, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeSeq(v)
}

func (d *Decoder[V]) DecodeTupleStruct(name string, n int, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeSeq(v)
}

func (d *Decoder[V]) DecodeMap(v dynserde.DecodeVisitor[V]) (V, error) {
	fields, err := d.fields(v)
	if err != nil {
		var zero V
		return zero, err
	}
	return v.VisitMap(newMapDecoder(d, fields))
}

func (d *Decoder[V]) DecodeStruct(name string, fields []string, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeMap(v)
}

func (d *Decoder[V]) DecodeEnum(name string, variants []string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	switch k := d.val.GetKind().(type) {
	case *structpb.Value_StringValue:
		return v.VisitEnum(&enumDecoder[V]{d: d, variant: k.StringValue, unit: true})
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		if len(fields) != 1 {
			return zero, dynserde.InvalidValue(dynserde.UnexpectedMap(), v.Expecting())
		}
		for variant, payload := range fields {
			return v.VisitEnum(&enumDecoder[V]{d: d, variant: variant, payload: payload})
		}
	}
	return zero, d.invalidType(v)
}

func (d *Decoder[V]) DecodeIdentifier(v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeString(v)
}

func (d *Decoder[V]) DecodeIgnoredAny(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitUnit()
}

func (d *Decoder[V]) HumanReadable() bool {
	return true
}

type seqDecoder[V any] struct {
	d      *Decoder[V]
	values []*structpb.Value
	i      int
}

func (s *seqDecoder[V]) NextElement(seed dynserde.Seed) (bool, error) {
	if s.i >= len(s.values) {
		return false, nil
	}
	val := s.values[s.i]
	s.i++
	if err := s.d.decodeSeed(seed, val); err != nil {
		return false, err
	}
	return true, nil
}

func (s *seqDecoder[V]) SizeHint() (int, bool) {
	return len(s.values) - s.i, true
}

type mapDecoder[V any] struct {
	d      *Decoder[V]
	fields map[string]*structpb.Value
	keys   []string
	i      int
	cur    string
}

func newMapDecoder[V any](d *Decoder[V], fields map[string]*structpb.Value) *mapDecoder[V] {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &mapDecoder[V]{d: d, fields: fields, keys: keys}
}

func (m *mapDecoder[V]) NextKey(seed dynserde.Seed) (bool, error) {
	if m.i >= len(m.keys) {
		return false, nil
	}
	m.cur = m.keys[m.i]
	m.i++
	if err := m.d.keySeed(seed, m.cur); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mapDecoder[V]) NextValue(seed dynserde.Seed) error {
	return m.d.decodeSeed(seed, m.fields[m.cur])
}

func (m *mapDecoder[V]) NextEntry(key, value dynserde.Seed) (bool, error) {
	more, err := m.NextKey(key)
	if err != nil || !more {
		return false, err
	}
	if err := m.NextValue(value); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mapDecoder[V]) SizeHint() (int, bool) {
	return len(m.keys) - m.i, true
}

type enumDecoder[V any] struct {
	d       *Decoder[V]
	variant string
	payload *structpb.Value
	unit    bool
}

func (e *enumDecoder[V]) Variant(seed dynserde.Seed) (dynserde.VariantDecoder[V], error) {
	if err := e.d.keySeed(seed, e.variant); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *enumDecoder[V]) UnitVariant() error {
	if !e.unit {
		return dynserde.InvalidType(dynserde.UnexpectedNewtypeVariant(), "unit variant")
	}
	return nil
}

func (e *enumDecoder[V]) NewtypeVariant(seed dynserde.Seed) error {
	if e.unit {
		return dynserde.InvalidType(dynserde.UnexpectedUnitVariant(), "newtype variant")
	}
	return e.d.decodeSeed(seed, e.payload)
}

func (e *enumDecoder[V]) TupleVariant(n int, v dynserde.DecodeVisitor[V]) (V, error) {
	if e.unit {
		var zero V
		return zero, dynserde.InvalidType(dynserde.UnexpectedUnitVariant(), "tuple variant")
	}
	return (&Decoder[V]{val: e.payload}).DecodeTuple(n, v)
}

func (e *enumDecoder[V]) StructVariant(fields []string, v dynserde.DecodeVisitor[V]) (V, error) {
	if e.unit {
		var zero V
		return zero, dynserde.InvalidType(dynserde.UnexpectedUnitVariant(), "struct variant")
	}
	return (&Decoder[V]{val: e.payload}).DecodeStruct("", fields, v)
}
