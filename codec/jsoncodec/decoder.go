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

package jsoncodec

import (
	"encoding/base64"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/internal/keycodec"
)

// A Decoder reads one JSON value. It checks each shape against the
// hint it was driven with and reports invalid-type errors phrased
// against the visitor's Expecting description, so the error a caller
// sees names both sides of the mismatch.
type Decoder[V any] struct {
	iter *jsoniter.Iterator
}

var _ dynserde.Decoder[struct{}] = (*Decoder[struct{}])(nil)

// NewDecoder returns a Decoder positioned at the start of data.
func NewDecoder[V any](data []byte) *Decoder[V] {
	return &Decoder[V]{iter: jsoniter.ParseBytes(config, data)}
}

func (d *Decoder[V]) takeErr() error {
	if err := d.iter.Error; err != nil && err != io.EOF {
		return dynserde.NewError(err)
	}
	return nil
}

// unexpected consumes the next value and describes it for an
// invalid-type error.
func (d *Decoder[V]) unexpected() dynserde.Unexpected {
	switch d.iter.WhatIsNext() {
	case jsoniter.NilValue:
		d.iter.ReadNil()
		return dynserde.UnexpectedOther("null")
	case jsoniter.BoolValue:
		return dynserde.UnexpectedBool(d.iter.ReadBool())
	case jsoniter.NumberValue:
		num := string(d.iter.ReadNumber())
		if !strings.ContainsAny(num, ".eE") {
			if i, err := strconv.ParseInt(num, 10, 64); err == nil {
				return dynserde.UnexpectedSigned(i)
			}
			if u, err := strconv.ParseUint(num, 10, 64); err == nil {
				return dynserde.UnexpectedUnsigned(u)
			}
		}
		f, _ := strconv.ParseFloat(num, 64)
		return dynserde.UnexpectedFloat(f)
	case jsoniter.StringValue:
		return dynserde.UnexpectedString(d.iter.ReadString())
	case jsoniter.ArrayValue:
		d.iter.Skip()
		return dynserde.UnexpectedSeq()
	case jsoniter.ObjectValue:
		d.iter.Skip()
		return dynserde.UnexpectedMap()
	}
	return dynserde.UnexpectedOther("end of input")
}

func (d *Decoder[V]) expect(want jsoniter.ValueType, v dynserde.DecodeVisitor[V]) error {
	if d.iter.WhatIsNext() == want {
		return nil
	}
	return dynserde.InvalidType(d.unexpected(), v.Expecting())
}

// decodeSeed runs seed against this Decoder through a fresh bridge,
// preferring the codec error stored in the bridge.
func (d *Decoder[V]) decodeSeed(seed dynserde.Seed) error {
	bridge := dynserde.NewDeserializer[V](d)
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
	var zero V
	switch d.iter.WhatIsNext() {
	case jsoniter.NilValue:
		d.iter.ReadNil()
		return v.VisitUnit()
	case jsoniter.BoolValue:
		return v.VisitBool(d.iter.ReadBool())
	case jsoniter.NumberValue:
		num := string(d.iter.ReadNumber())
		if err := d.takeErr(); err != nil {
			return zero, err
		}
		if !strings.ContainsAny(num, ".eE") {
			if i, err := strconv.ParseInt(num, 10, 64); err == nil {
				return v.VisitInt64(i)
			}
			if u, err := strconv.ParseUint(num, 10, 64); err == nil {
				return v.VisitUint64(u)
			}
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return zero, dynserde.Errorf("invalid number %q", num)
		}
		return v.VisitFloat64(f)
	case jsoniter.StringValue:
		return v.VisitString(d.iter.ReadString())
	case jsoniter.ArrayValue:
		return v.VisitSeq(&seqDecoder[V]{d: d})
	case jsoniter.ObjectValue:
		return v.VisitMap(&mapDecoder[V]{d: d})
	}
	return zero, dynserde.InvalidType(dynserde.UnexpectedOther("end of input"), v.Expecting())
}

func (d *Decoder[V]) DecodeBool(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.BoolValue, v); err != nil {
		return zero, err
	}
	return v.VisitBool(d.iter.ReadBool())
}

func (d *Decoder[V]) DecodeInt8(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadInt8()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitInt8(val)
}

func (d *Decoder[V]) DecodeInt16(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadInt16()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitInt16(val)
}

func (d *Decoder[V]) DecodeInt32(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadInt32()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitInt32(val)
}

func (d *Decoder[V]) DecodeInt64(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadInt64()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitInt64(val)
}

func (d *Decoder[V]) DecodeInt128(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	num := string(d.iter.ReadNumber())
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	i, ok := new(big.Int).SetString(num, 10)
	if !ok {
		f, _ := strconv.ParseFloat(num, 64)
		return zero, dynserde.InvalidType(dynserde.UnexpectedFloat(f), v.Expecting())
	}
	return v.VisitInt128(i)
}

func (d *Decoder[V]) DecodeUint8(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadUint8()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitUint8(val)
}

func (d *Decoder[V]) DecodeUint16(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadUint16()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitUint16(val)
}

func (d *Decoder[V]) DecodeUint32(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadUint32()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitUint32(val)
}

func (d *Decoder[V]) DecodeUint64(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadUint64()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitUint64(val)
}

func (d *Decoder[V]) DecodeUint128(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	num := string(d.iter.ReadNumber())
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	i, ok := new(big.Int).SetString(num, 10)
	if !ok {
		f, _ := strconv.ParseFloat(num, 64)
		return zero, dynserde.InvalidType(dynserde.UnexpectedFloat(f), v.Expecting())
	}
	if i.Sign() < 0 {
		return zero, dynserde.InvalidValue(dynserde.UnexpectedOther("integer `"+num+"`"), v.Expecting())
	}
	return v.VisitUint128(i)
}

func (d *Decoder[V]) DecodeFloat32(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadFloat32()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitFloat32(val)
}

func (d *Decoder[V]) DecodeFloat64(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NumberValue, v); err != nil {
		return zero, err
	}
	val := d.iter.ReadFloat64()
	if err := d.takeErr(); err != nil {
		return zero, err
	}
	return v.VisitFloat64(val)
}

func (d *Decoder[V]) DecodeRune(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.StringValue, v); err != nil {
		return zero, err
	}
	str := d.iter.ReadString()
	if utf8.RuneCountInString(str) != 1 {
		return zero, dynserde.InvalidValue(dynserde.UnexpectedString(str), v.Expecting())
	}
	r, _ := utf8.DecodeRuneInString(str)
	return v.VisitRune(r)
}

func (d *Decoder[V]) DecodeString(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.StringValue, v); err != nil {
		return zero, err
	}
	return v.VisitString(d.iter.ReadString())
}

func (d *Decoder[V]) DecodeBytes(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.StringValue, v); err != nil {
		return zero, err
	}
	str := d.iter.ReadString()
	raw, err := base64.StdEncoding.DecodeString(str)
	if err != nil {
		return zero, dynserde.InvalidValue(dynserde.UnexpectedString(str), v.Expecting())
	}
	return v.VisitBytes(raw)
}

func (d *Decoder[V]) DecodeOption(v dynserde.DecodeVisitor[V]) (V, error) {
	if d.iter.WhatIsNext() == jsoniter.NilValue {
		d.iter.ReadNil()
		return v.VisitNone()
	}
	return v.VisitSome(d)
}

func (d *Decoder[V]) DecodeUnit(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.NilValue, v); err != nil {
		return zero, err
	}
	d.iter.ReadNil()
	return v.VisitUnit()
}

func (d *Decoder[V]) DecodeUnitStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeUnit(v)
}

func (d *Decoder[V]) DecodeNewtypeStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitNewtypeStruct(d)
}

func (d *Decoder[V]) DecodeSeq(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.ArrayValue, v); err != nil {
		return zero, err
	}
	return v.VisitSeq(&seqDecoder[V]{d: d})
}

func (d *Decoder[V]) DecodeTuple(n int, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeSeq(v)
}

func (d *Decoder[V]) DecodeTupleStruct(name string, n int, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeSeq(v)
}

func (d *Decoder[V]) DecodeMap(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if err := d.expect(jsoniter.ObjectValue, v); err != nil {
		return zero, err
	}
	return v.VisitMap(&mapDecoder[V]{d: d})
}

func (d *Decoder[V]) DecodeStruct(name string, fields []string, v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeMap(v)
}

func (d *Decoder[V]) DecodeEnum(name string, variants []string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	switch d.iter.WhatIsNext() {
	case jsoniter.StringValue:
		return v.VisitEnum(&enumDecoder[V]{d: d, variant: d.iter.ReadString(), unit: true})
	case jsoniter.ObjectValue:
		field := d.iter.ReadObject()
		if err := d.takeErr(); err != nil {
			return zero, err
		}
		if field == "" {
			return zero, dynserde.InvalidValue(dynserde.UnexpectedMap(), v.Expecting())
		}
		return v.VisitEnum(&enumDecoder[V]{d: d, variant: field})
	default:
		return zero, dynserde.InvalidType(d.unexpected(), v.Expecting())
	}
}

func (d *Decoder[V]) DecodeIdentifier(v dynserde.DecodeVisitor[V]) (V, error) {
	return d.DecodeString(v)
}

func (d *Decoder[V]) DecodeIgnoredAny(v dynserde.DecodeVisitor[V]) (V, error) {
	d.iter.Skip()
	return v.VisitUnit()
}

func (d *Decoder[V]) HumanReadable() bool {
	return true
}

type seqDecoder[V any] struct {
	d *Decoder[V]
}

func (s *seqDecoder[V]) NextElement(seed dynserde.Seed) (bool, error) {
	if !s.d.iter.ReadArray() {
		return false, s.d.takeErr()
	}
	if err := s.d.decodeSeed(seed); err != nil {
		return false, err
	}
	return true, nil
}

func (s *seqDecoder[V]) SizeHint() (int, bool) {
	return 0, false
}

type mapDecoder[V any] struct {
	d *Decoder[V]
}

func (m *mapDecoder[V]) NextKey(seed dynserde.Seed) (bool, error) {
	field := m.d.iter.ReadObject()
	if err := m.d.takeErr(); err != nil {
		return false, err
	}
	// ReadObject answers "" both at end of object and for an actual
	// empty-string key. Only the latter leaves a value pending.
	if field == "" && m.d.iter.WhatIsNext() == jsoniter.InvalidValue {
		return false, nil
	}
	if err := m.d.keySeed(seed, field); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mapDecoder[V]) NextValue(seed dynserde.Seed) error {
	return m.d.decodeSeed(seed)
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
	return 0, false
}

// enumDecoder serves both halves of the enum handshake: variant
// selection from the tag, then payload decoding. For the string form
// only a unit payload is valid; for the object form the closing brace
// is consumed after the payload.
type enumDecoder[V any] struct {
	d       *Decoder[V]
	variant string
	unit    bool
}

func (e *enumDecoder[V]) Variant(seed dynserde.Seed) (dynserde.VariantDecoder[V], error) {
	if err := e.d.keySeed(seed, e.variant); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *enumDecoder[V]) finish() error {
	if field := e.d.iter.ReadObject(); field != "" {
		return dynserde.Errorf("unexpected key %q after variant payload", field)
	}
	return e.d.takeErr()
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
	if err := e.d.decodeSeed(seed); err != nil {
		return err
	}
	return e.finish()
}

func (e *enumDecoder[V]) TupleVariant(n int, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if e.unit {
		return zero, dynserde.InvalidType(dynserde.UnexpectedUnitVariant(), "tuple variant")
	}
	val, err := e.d.DecodeTuple(n, v)
	if err != nil {
		return zero, err
	}
	if err := e.finish(); err != nil {
		return zero, err
	}
	return val, nil
}

func (e *enumDecoder[V]) StructVariant(fields []string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	if e.unit {
		return zero, dynserde.InvalidType(dynserde.UnexpectedUnitVariant(), "struct variant")
	}
	val, err := e.d.DecodeStruct("", fields, v)
	if err != nil {
		return zero, err
	}
	if err := e.finish(); err != nil {
		return zero, err
	}
	return val, nil
}
