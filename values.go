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

package dynserde

import (
	"fmt"
	"math/big"
)

// This file provides ready-made Marshalers for the common shapes, so
// callers can drive any producer without writing MarshalInto bodies by
// hand. Each value performs exactly one terminal operation or one
// complete composite encoding.

type boolValue bool

// Bool returns a Marshaler for a boolean.
func Bool(v bool) Marshaler { return boolValue(v) }

func (b boolValue) MarshalInto(s Serializer) error { return s.SerializeBool(bool(b)).Err() }

type int8Value int8

// Int8 returns a Marshaler for a signed 8-bit integer.
func Int8(v int8) Marshaler { return int8Value(v) }

func (i int8Value) MarshalInto(s Serializer) error { return s.SerializeInt8(int8(i)).Err() }

type int16Value int16

// Int16 returns a Marshaler for a signed 16-bit integer.
func Int16(v int16) Marshaler { return int16Value(v) }

func (i int16Value) MarshalInto(s Serializer) error { return s.SerializeInt16(int16(i)).Err() }

type int32Value int32

// Int32 returns a Marshaler for a signed 32-bit integer.
func Int32(v int32) Marshaler { return int32Value(v) }

func (i int32Value) MarshalInto(s Serializer) error { return s.SerializeInt32(int32(i)).Err() }

type int64Value int64

// Int64 returns a Marshaler for a signed 64-bit integer.
func Int64(v int64) Marshaler { return int64Value(v) }

func (i int64Value) MarshalInto(s Serializer) error { return s.SerializeInt64(int64(i)).Err() }

type int128Value struct{ v *big.Int }

// Int128 returns a Marshaler for a signed 128-bit integer.
func Int128(v *big.Int) Marshaler { return int128Value{v} }

func (i int128Value) MarshalInto(s Serializer) error { return s.SerializeInt128(i.v).Err() }

type uint8Value uint8

// Uint8 returns a Marshaler for an unsigned 8-bit integer.
func Uint8(v uint8) Marshaler { return uint8Value(v) }

func (u uint8Value) MarshalInto(s Serializer) error { return s.SerializeUint8(uint8(u)).Err() }

type uint16Value uint16

// Uint16 returns a Marshaler for an unsigned 16-bit integer.
func Uint16(v uint16) Marshaler { return uint16Value(v) }

func (u uint16Value) MarshalInto(s Serializer) error { return s.SerializeUint16(uint16(u)).Err() }

type uint32Value uint32

// Uint32 returns a Marshaler for an unsigned 32-bit integer.
func Uint32(v uint32) Marshaler { return uint32Value(v) }

func (u uint32Value) MarshalInto(s Serializer) error { return s.SerializeUint32(uint32(u)).Err() }

type uint64Value uint64

// Uint64 returns a Marshaler for an unsigned 64-bit integer.
func Uint64(v uint64) Marshaler { return uint64Value(v) }

func (u uint64Value) MarshalInto(s Serializer) error { return s.SerializeUint64(uint64(u)).Err() }

type uint128Value struct{ v *big.Int }

// Uint128 returns a Marshaler for an unsigned 128-bit integer.
func Uint128(v *big.Int) Marshaler { return uint128Value{v} }

func (u uint128Value) MarshalInto(s Serializer) error { return s.SerializeUint128(u.v).Err() }

type float32Value float32

// Float32 returns a Marshaler for a 32-bit float.
func Float32(v float32) Marshaler { return float32Value(v) }

func (f float32Value) MarshalInto(s Serializer) error { return s.SerializeFloat32(float32(f)).Err() }

type float64Value float64

// Float64 returns a Marshaler for a 64-bit float.
func Float64(v float64) Marshaler { return float64Value(v) }

func (f float64Value) MarshalInto(s Serializer) error { return s.SerializeFloat64(float64(f)).Err() }

type runeValue rune

// Rune returns a Marshaler for a character.
func Rune(v rune) Marshaler { return runeValue(v) }

func (r runeValue) MarshalInto(s Serializer) error { return s.SerializeRune(rune(r)).Err() }

type stringValue string

// String returns a Marshaler for a string.
func String(v string) Marshaler { return stringValue(v) }

func (v stringValue) MarshalInto(s Serializer) error { return s.SerializeString(string(v)).Err() }

type bytesValue []byte

// Bytes returns a Marshaler for a byte slice.
func Bytes(v []byte) Marshaler { return bytesValue(v) }

func (b bytesValue) MarshalInto(s Serializer) error { return s.SerializeBytes([]byte(b)).Err() }

type noneValue struct{}

// None returns a Marshaler for an absent optional value.
func None() Marshaler { return noneValue{} }

func (noneValue) MarshalInto(s Serializer) error { return s.SerializeNone().Err() }

type someValue struct{ v Marshaler }

// Some returns a Marshaler for a present optional value.
func Some(v Marshaler) Marshaler { return someValue{v} }

func (v someValue) MarshalInto(s Serializer) error { return s.SerializeSome(v.v).Err() }

type unitValue struct{}

// Unit returns a Marshaler for the unit value.
func Unit() Marshaler { return unitValue{} }

func (unitValue) MarshalInto(s Serializer) error { return s.SerializeUnit().Err() }

type unitStructValue string

// UnitStruct returns a Marshaler for a named struct with no fields.
func UnitStruct(name string) Marshaler { return unitStructValue(name) }

func (v unitStructValue) MarshalInto(s Serializer) error {
	return s.SerializeUnitStruct(string(v)).Err()
}

type unitVariantValue struct {
	name    string
	index   uint32
	variant string
}

// UnitVariant returns a Marshaler for an enum variant with no payload.
func UnitVariant(name string, index uint32, variant string) Marshaler {
	return unitVariantValue{name, index, variant}
}

func (v unitVariantValue) MarshalInto(s Serializer) error {
	return s.SerializeUnitVariant(v.name, v.index, v.variant).Err()
}

type newtypeStructValue struct {
	name  string
	inner Marshaler
}

// NewtypeStruct returns a Marshaler for a single-value wrapper struct.
func NewtypeStruct(name string, inner Marshaler) Marshaler {
	return newtypeStructValue{name, inner}
}

func (v newtypeStructValue) MarshalInto(s Serializer) error {
	return s.SerializeNewtypeStruct(v.name, v.inner).Err()
}

type newtypeVariantValue struct {
	name    string
	index   uint32
	variant string
	inner   Marshaler
}

// NewtypeVariant returns a Marshaler for an enum variant wrapping one
// value.
func NewtypeVariant(name string, index uint32, variant string, inner Marshaler) Marshaler {
	return newtypeVariantValue{name, index, variant, inner}
}

func (v newtypeVariantValue) MarshalInto(s Serializer) error {
	return s.SerializeNewtypeVariant(v.name, v.index, v.variant, v.inner).Err()
}

type seqValue []Marshaler

// SliceOf returns a Marshaler for a sequence of values, which need not
// share a shape.
func SliceOf(items ...Marshaler) Marshaler { return seqValue(items) }

func (v seqValue) MarshalInto(s Serializer) error {
	seq, code := s.SerializeSeq(len(v))
	if code != CodeOK {
		return code.Err()
	}
	for _, item := range v {
		if code := seq.SerializeElement(item); code != CodeOK {
			return code.Err()
		}
	}
	return seq.End().Err()
}

type tupleValue []Marshaler

// TupleOf returns a Marshaler for a fixed-size tuple.
func TupleOf(items ...Marshaler) Marshaler { return tupleValue(items) }

func (v tupleValue) MarshalInto(s Serializer) error {
	tuple, code := s.SerializeTuple(len(v))
	if code != CodeOK {
		return code.Err()
	}
	for _, item := range v {
		if code := tuple.SerializeElement(item); code != CodeOK {
			return code.Err()
		}
	}
	return tuple.End().Err()
}

type tupleStructValue struct {
	name  string
	items []Marshaler
}

// TupleStructOf returns a Marshaler for a named tuple struct.
func TupleStructOf(name string, items ...Marshaler) Marshaler {
	return tupleStructValue{name, items}
}

func (v tupleStructValue) MarshalInto(s Serializer) error {
	tuple, code := s.SerializeTupleStruct(v.name, len(v.items))
	if code != CodeOK {
		return code.Err()
	}
	for _, item := range v.items {
		if code := tuple.SerializeField(item); code != CodeOK {
			return code.Err()
		}
	}
	return tuple.End().Err()
}

type tupleVariantValue struct {
	name    string
	index   uint32
	variant string
	items   []Marshaler
}

// TupleVariantOf returns a Marshaler for an enum variant holding a
// tuple.
func TupleVariantOf(name string, index uint32, variant string, items ...Marshaler) Marshaler {
	return tupleVariantValue{name, index, variant, items}
}

func (v tupleVariantValue) MarshalInto(s Serializer) error {
	tuple, code := s.SerializeTupleVariant(v.name, v.index, v.variant, len(v.items))
	if code != CodeOK {
		return code.Err()
	}
	for _, item := range v.items {
		if code := tuple.SerializeField(item); code != CodeOK {
			return code.Err()
		}
	}
	return tuple.End().Err()
}

// An Entry is one key-value pair for MapOf.
type Entry struct {
	Key   Marshaler
	Value Marshaler
}

type mapValue []Entry

// MapOf returns a Marshaler for a map with the given entries, encoded
// in order.
func MapOf(entries ...Entry) Marshaler { return mapValue(entries) }

func (v mapValue) MarshalInto(s Serializer) error {
	m, code := s.SerializeMap(len(v))
	if code != CodeOK {
		return code.Err()
	}
	for _, entry := range v {
		if code := m.SerializeEntry(entry.Key, entry.Value); code != CodeOK {
			return code.Err()
		}
	}
	return m.End().Err()
}

// A Field is one named field for StructOf and StructVariantOf. A nil
// Value marks the field skipped.
type Field struct {
	Name  string
	Value Marshaler
}

type structValue struct {
	name   string
	fields []Field
}

// StructOf returns a Marshaler for a named struct with the given
// fields, encoded in order.
func StructOf(name string, fields ...Field) Marshaler {
	return structValue{name, fields}
}

func (v structValue) MarshalInto(s Serializer) error {
	st, code := s.SerializeStruct(v.name, len(v.fields))
	if code != CodeOK {
		return code.Err()
	}
	for _, field := range v.fields {
		if field.Value == nil {
			if code := st.SkipField(field.Name); code != CodeOK {
				return code.Err()
			}
			continue
		}
		if code := st.SerializeField(field.Name, field.Value); code != CodeOK {
			return code.Err()
		}
	}
	return st.End().Err()
}

type structVariantValue struct {
	name    string
	index   uint32
	variant string
	fields  []Field
}

// StructVariantOf returns a Marshaler for an enum variant holding
// named fields.
func StructVariantOf(name string, index uint32, variant string, fields ...Field) Marshaler {
	return structVariantValue{name, index, variant, fields}
}

func (v structVariantValue) MarshalInto(s Serializer) error {
	st, code := s.SerializeStructVariant(v.name, v.index, v.variant, len(v.fields))
	if code != CodeOK {
		return code.Err()
	}
	for _, field := range v.fields {
		if field.Value == nil {
			if code := st.SkipField(field.Name); code != CodeOK {
				return code.Err()
			}
			continue
		}
		if code := st.SerializeField(field.Name, field.Value); code != CodeOK {
			return code.Err()
		}
	}
	return st.End().Err()
}

type stringerValue struct{ v fmt.Stringer }

// Stringer returns a Marshaler that encodes v through CollectString.
func Stringer(v fmt.Stringer) Marshaler { return stringerValue{v} }

func (v stringerValue) MarshalInto(s Serializer) error {
	return s.CollectString(v.v).Err()
}
