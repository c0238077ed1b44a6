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
	"math/big"
)

// A Decoder is the generic consumer contract. A codec implements it
// once, parameterized by the visitor result type V. Each Decode method
// is a hint: the codec reads whatever shape is next in its input and
// drives the matching callback on the visitor. Self-describing codecs
// may ignore hints; DecodeAny asks the codec to dispatch purely on its
// input.
//
// Values with nested structure cross the codec boundary through
// dynamic Seeds handed to the access objects, because the element
// types vary per call in ways Go interfaces cannot express.
type Decoder[V any] interface {
	DecodeAny(v DecodeVisitor[V]) (V, error)
	DecodeBool(v DecodeVisitor[V]) (V, error)
	DecodeInt8(v DecodeVisitor[V]) (V, error)
	DecodeInt16(v DecodeVisitor[V]) (V, error)
	DecodeInt32(v DecodeVisitor[V]) (V, error)
	DecodeInt64(v DecodeVisitor[V]) (V, error)
	DecodeInt128(v DecodeVisitor[V]) (V, error)
	DecodeUint8(v DecodeVisitor[V]) (V, error)
	DecodeUint16(v DecodeVisitor[V]) (V, error)
	DecodeUint32(v DecodeVisitor[V]) (V, error)
	DecodeUint64(v DecodeVisitor[V]) (V, error)
	DecodeUint128(v DecodeVisitor[V]) (V, error)
	DecodeFloat32(v DecodeVisitor[V]) (V, error)
	DecodeFloat64(v DecodeVisitor[V]) (V, error)
	DecodeRune(v DecodeVisitor[V]) (V, error)
	DecodeString(v DecodeVisitor[V]) (V, error)
	DecodeBytes(v DecodeVisitor[V]) (V, error)
	DecodeOption(v DecodeVisitor[V]) (V, error)
	DecodeUnit(v DecodeVisitor[V]) (V, error)
	DecodeUnitStruct(name string, v DecodeVisitor[V]) (V, error)
	DecodeNewtypeStruct(name string, v DecodeVisitor[V]) (V, error)
	DecodeSeq(v DecodeVisitor[V]) (V, error)
	DecodeTuple(n int, v DecodeVisitor[V]) (V, error)
	DecodeTupleStruct(name string, n int, v DecodeVisitor[V]) (V, error)
	DecodeMap(v DecodeVisitor[V]) (V, error)
	DecodeStruct(name string, fields []string, v DecodeVisitor[V]) (V, error)
	DecodeEnum(name string, variants []string, v DecodeVisitor[V]) (V, error)
	DecodeIdentifier(v DecodeVisitor[V]) (V, error)
	DecodeIgnoredAny(v DecodeVisitor[V]) (V, error)
	HumanReadable() bool
}

// A DecodeVisitor turns the shapes a Decoder found in its input into a
// value of type V. Expecting describes what the visitor can accept,
// for use in error messages ("a boolean", "a point struct").
type DecodeVisitor[V any] interface {
	Expecting() string
	VisitBool(v bool) (V, error)
	VisitInt8(v int8) (V, error)
	VisitInt16(v int16) (V, error)
	VisitInt32(v int32) (V, error)
	VisitInt64(v int64) (V, error)
	VisitInt128(v *big.Int) (V, error)
	VisitUint8(v uint8) (V, error)
	VisitUint16(v uint16) (V, error)
	VisitUint32(v uint32) (V, error)
	VisitUint64(v uint64) (V, error)
	VisitUint128(v *big.Int) (V, error)
	VisitFloat32(v float32) (V, error)
	VisitFloat64(v float64) (V, error)
	VisitRune(v rune) (V, error)
	VisitString(v string) (V, error)
	VisitBytes(v []byte) (V, error)
	VisitNone() (V, error)
	VisitSome(d Decoder[V]) (V, error)
	VisitUnit() (V, error)
	VisitNewtypeStruct(d Decoder[V]) (V, error)
	VisitSeq(a SeqDecoder) (V, error)
	VisitMap(a MapDecoder) (V, error)
	VisitEnum(a EnumDecoder[V]) (V, error)
}

// A SeqDecoder yields sequence elements. Each element is decoded into
// the supplied Seed; NextElement reports false when the sequence is
// exhausted. SizeHint reports the remaining length when the codec
// knows it.
type SeqDecoder interface {
	NextElement(seed Seed) (bool, error)
	SizeHint() (int, bool)
}

// A MapDecoder yields map entries, either key and value separately or
// as one NextEntry call. NextKey and NextEntry report false when the
// map is exhausted.
type MapDecoder interface {
	NextKey(seed Seed) (bool, error)
	NextValue(seed Seed) error
	NextEntry(key, value Seed) (bool, error)
	SizeHint() (int, bool)
}

// An EnumDecoder identifies which variant is present. Variant decodes
// the variant tag into seed and returns the access for the variant's
// payload.
type EnumDecoder[V any] interface {
	Variant(seed Seed) (VariantDecoder[V], error)
}

// A VariantDecoder decodes the payload of the selected enum variant.
// Exactly one of its methods may be called, matching the variant's
// shape.
type VariantDecoder[V any] interface {
	UnitVariant() error
	NewtypeVariant(seed Seed) error
	TupleVariant(n int, v DecodeVisitor[V]) (V, error)
	StructVariant(fields []string, v DecodeVisitor[V]) (V, error)
}

// A Deserializer is the dynamic consumer facade: Decoder with the
// result type erased. Every hint reports a bare Code; decoded values
// travel through the Visitor, concrete errors stay inside the bridge.
type Deserializer interface {
	DeserializeAny(v Visitor) Code
	DeserializeBool(v Visitor) Code
	DeserializeInt8(v Visitor) Code
	DeserializeInt16(v Visitor) Code
	DeserializeInt32(v Visitor) Code
	DeserializeInt64(v Visitor) Code
	DeserializeInt128(v Visitor) Code
	DeserializeUint8(v Visitor) Code
	DeserializeUint16(v Visitor) Code
	DeserializeUint32(v Visitor) Code
	DeserializeUint64(v Visitor) Code
	DeserializeUint128(v Visitor) Code
	DeserializeFloat32(v Visitor) Code
	DeserializeFloat64(v Visitor) Code
	DeserializeRune(v Visitor) Code
	DeserializeString(v Visitor) Code
	DeserializeBytes(v Visitor) Code
	DeserializeOption(v Visitor) Code
	DeserializeUnit(v Visitor) Code
	DeserializeUnitStruct(name string, v Visitor) Code
	DeserializeNewtypeStruct(name string, v Visitor) Code
	DeserializeSeq(v Visitor) Code
	DeserializeTuple(n int, v Visitor) Code
	DeserializeTupleStruct(name string, n int, v Visitor) Code
	DeserializeMap(v Visitor) Code
	DeserializeStruct(name string, fields []string, v Visitor) Code
	DeserializeEnum(name string, variants []string, v Visitor) Code
	DeserializeIdentifier(v Visitor) Code
	DeserializeIgnoredAny(v Visitor) Code
	HumanReadable() bool
}

// A Visitor is the dynamic counterpart of DecodeVisitor. It is the
// value-bearing side of the consumer handshake, so its callbacks
// return errors by value; the decoded result is stored in the bridge
// backing the Visitor and recovered out of band.
type Visitor interface {
	Expecting() string
	VisitBool(v bool) error
	VisitInt8(v int8) error
	VisitInt16(v int16) error
	VisitInt32(v int32) error
	VisitInt64(v int64) error
	VisitInt128(v *big.Int) error
	VisitUint8(v uint8) error
	VisitUint16(v uint16) error
	VisitUint32(v uint32) error
	VisitUint64(v uint64) error
	VisitUint128(v *big.Int) error
	VisitFloat32(v float32) error
	VisitFloat64(v float64) error
	VisitRune(v rune) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitUnit() error
	VisitNewtypeStruct(d Deserializer) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// A Seed carries element type information across the dynamic
// boundary: the codec hands it a Deserializer positioned at the
// element and the seed decodes the value into itself.
type Seed interface {
	Decode(d Deserializer) error
}

// SeqAccess is the dynamic counterpart of SeqDecoder.
type SeqAccess interface {
	NextElement(seed Seed) (bool, Code)
	SizeHint() (int, bool)
}

// MapAccess is the dynamic counterpart of MapDecoder.
type MapAccess interface {
	NextKey(seed Seed) (bool, Code)
	NextValue(seed Seed) Code
	NextEntry(key, value Seed) (bool, Code)
	SizeHint() (int, bool)
}

// EnumAccess is the dynamic counterpart of EnumDecoder.
type EnumAccess interface {
	Variant(seed Seed) (VariantAccess, Code)
}

// VariantAccess is the dynamic counterpart of VariantDecoder.
type VariantAccess interface {
	UnitVariant() Code
	NewtypeVariant(seed Seed) Code
	TupleVariant(n int, v Visitor) Code
	StructVariant(fields []string, v Visitor) Code
}

type bridgeStage int

const (
	stageReady bridgeStage = iota
	stageEmpty
	stageDone
	stageFailed
)

// An InplaceDeserializer adapts one Decoder to the dynamic
// Deserializer facade for a single value. The decoded value travels
// through the Visitor supplied to the hint call; the codec's error, if
// any, is stored here and recovered with Err.
//
// InplaceDeserializers are single-use and not safe for concurrent use.
type InplaceDeserializer[V any] struct {
	stage bridgeStage
	dec   Decoder[V]
	err   error
}

var _ Deserializer = (*InplaceDeserializer[struct{}])(nil)

// NewDeserializer returns a single-use dynamic facade over dec.
func NewDeserializer[V any](dec Decoder[V]) *InplaceDeserializer[V] {
	return &InplaceDeserializer[V]{stage: stageReady, dec: dec}
}

// Err returns the codec error stored by a failed hint call, if any.
func (d *InplaceDeserializer[V]) Err() error {
	if d.stage == stageFailed {
		return d.err
	}
	return nil
}

func (d *InplaceDeserializer[V]) drive(call func(dec Decoder[V]) (V, error)) Code {
	if d.stage != stageReady {
		return CodeDeserializer
	}
	dec := d.dec
	d.dec = nil
	d.stage = stageEmpty
	if _, err := call(dec); err != nil {
		d.err = err
		d.stage = stageFailed
		return CodeFailed
	}
	d.stage = stageDone
	return CodeOK
}

func (d *InplaceDeserializer[V]) DeserializeAny(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeAny(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeBool(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeBool(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeInt8(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeInt8(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeInt16(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeInt16(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeInt32(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeInt32(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeInt64(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeInt64(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeInt128(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeInt128(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUint8(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUint8(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUint16(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUint16(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUint32(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUint32(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUint64(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUint64(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUint128(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUint128(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeFloat32(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeFloat32(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeFloat64(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeFloat64(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeRune(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeRune(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeString(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeString(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeBytes(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeBytes(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeOption(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeOption(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUnit(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUnit(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeUnitStruct(name string, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeUnitStruct(name, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeNewtypeStruct(name string, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeNewtypeStruct(name, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeSeq(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeSeq(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeTuple(n int, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeTuple(n, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeTupleStruct(name string, n int, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeTupleStruct(name, n, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeMap(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeMap(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeStruct(name string, fields []string, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeStruct(name, fields, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeEnum(name string, variants []string, v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeEnum(name, variants, visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeIdentifier(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeIdentifier(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) DeserializeIgnoredAny(v Visitor) Code {
	return d.drive(func(dec Decoder[V]) (V, error) { return dec.DecodeIgnoredAny(visitorShim[V]{v}) })
}

func (d *InplaceDeserializer[V]) HumanReadable() bool {
	if d.stage == stageReady {
		return d.dec.HumanReadable()
	}
	return true
}

// visitorShim lets a codec drive a dynamic Visitor through its
// generic DecodeVisitor contract. The V results it returns are zero
// values: on this path the decoded value is stored inside the dynamic
// Visitor's bridge, not threaded through the codec.
type visitorShim[V any] struct {
	v Visitor
}

func (s visitorShim[V]) Expecting() string { return s.v.Expecting() }

func (s visitorShim[V]) VisitBool(v bool) (V, error) {
	var zero V
	return zero, s.v.VisitBool(v)
}

func (s visitorShim[V]) VisitInt8(v int8) (V, error) {
	var zero V
	return zero, s.v.VisitInt8(v)
}

func (s visitorShim[V]) VisitInt16(v int16) (V, error) {
	var zero V
	return zero, s.v.VisitInt16(v)
}

func (s visitorShim[V]) VisitInt32(v int32) (V, error) {
	var zero V
	return zero, s.v.VisitInt32(v)
}

func (s visitorShim[V]) VisitInt64(v int64) (V, error) {
	var zero V
	return zero, s.v.VisitInt64(v)
}

func (s visitorShim[V]) VisitInt128(v *big.Int) (V, error) {
	var zero V
	return zero, s.v.VisitInt128(v)
}

func (s visitorShim[V]) VisitUint8(v uint8) (V, error) {
	var zero V
	return zero, s.v.VisitUint8(v)
}

func (s visitorShim[V]) VisitUint16(v uint16) (V, error) {
	var zero V
	return zero, s.v.VisitUint16(v)
}

func (s visitorShim[V]) VisitUint32(v uint32) (V, error) {
	var zero V
	return zero, s.v.VisitUint32(v)
}

func (s visitorShim[V]) VisitUint64(v uint64) (V, error) {
	var zero V
	return zero, s.v.VisitUint64(v)
}

func (s visitorShim[V]) VisitUint128(v *big.Int) (V, error) {
	var zero V
	return zero, s.v.VisitUint128(v)
}

func (s visitorShim[V]) VisitFloat32(v float32) (V, error) {
	var zero V
	return zero, s.v.VisitFloat32(v)
}

func (s visitorShim[V]) VisitFloat64(v float64) (V, error) {
	var zero V
	return zero, s.v.VisitFloat64(v)
}

func (s visitorShim[V]) VisitRune(v rune) (V, error) {
	var zero V
	return zero, s.v.VisitRune(v)
}

func (s visitorShim[V]) VisitString(v string) (V, error) {
	var zero V
	return zero, s.v.VisitString(v)
}

func (s visitorShim[V]) VisitBytes(v []byte) (V, error) {
	var zero V
	return zero, s.v.VisitBytes(v)
}

func (s visitorShim[V]) VisitNone() (V, error) {
	var zero V
	return zero, s.v.VisitNone()
}

func (s visitorShim[V]) VisitUnit() (V, error) {
	var zero V
	return zero, s.v.VisitUnit()
}

func (s visitorShim[V]) VisitSome(d Decoder[V]) (V, error) {
	var zero V
	bridge := NewDeserializer(d)
	err := s.v.VisitSome(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return zero, cerr
	}
	return zero, err
}

func (s visitorShim[V]) VisitNewtypeStruct(d Decoder[V]) (V, error) {
	var zero V
	bridge := NewDeserializer(d)
	err := s.v.VisitNewtypeStruct(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return zero, cerr
	}
	return zero, err
}

func (s visitorShim[V]) VisitSeq(a SeqDecoder) (V, error) {
	var zero V
	bridge := NewSeqAccess(a)
	err := s.v.VisitSeq(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return zero, cerr
	}
	return zero, err
}

func (s visitorShim[V]) VisitMap(a MapDecoder) (V, error) {
	var zero V
	bridge := NewMapAccess(a)
	err := s.v.VisitMap(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return zero, cerr
	}
	return zero, err
}

func (s visitorShim[V]) VisitEnum(a EnumDecoder[V]) (V, error) {
	var zero V
	bridge := NewEnumAccess(a)
	err := s.v.VisitEnum(bridge)
	if cerr := bridge.Err(); cerr != nil {
		return zero, cerr
	}
	return zero, err
}

// An InplaceVisitor adapts one DecodeVisitor to the dynamic Visitor
// facade for a single value, storing either the visitor's result or
// its error. Recover whichever was stored with Result.
type InplaceVisitor[V any] struct {
	stage bridgeStage
	gv    DecodeVisitor[V]
	value V
	err   error
}

var _ Visitor = (*InplaceVisitor[struct{}])(nil)

// NewVisitor returns a single-use dynamic facade over gv.
func NewVisitor[V any](gv DecodeVisitor[V]) *InplaceVisitor[V] {
	return &InplaceVisitor[V]{stage: stageReady, gv: gv}
}

// Result reports the outcome of the visit: the stored value after a
// completed one, the stored error after a failed one, and a visitor
// status *Error if no callback ran.
func (v *InplaceVisitor[V]) Result() (V, error) {
	var zero V
	switch v.stage {
	case stageDone:
		return v.value, nil
	case stageFailed:
		return zero, v.err
	default:
		return zero, statusError(CodeVisitor)
	}
}

// resolve folds the facade Code a hint call returned into the bridge's
// stored state, preferring stored outcomes over the bare status.
func (v *InplaceVisitor[V]) resolve(code Code) (V, error) {
	var zero V
	switch v.stage {
	case stageDone:
		return v.value, nil
	case stageFailed:
		return zero, v.err
	default:
		if code != CodeOK {
			return zero, code.Err()
		}
		return zero, statusError(CodeVisitor)
	}
}

func (v *InplaceVisitor[V]) take() (DecodeVisitor[V], bool) {
	if v.stage != stageReady {
		return nil, false
	}
	gv := v.gv
	v.gv = nil
	v.stage = stageEmpty
	return gv, true
}

func (v *InplaceVisitor[V]) finish(value V, err error) error {
	if err != nil {
		v.err = err
		v.stage = stageFailed
		return err
	}
	v.value = value
	v.stage = stageDone
	return nil
}

func (v *InplaceVisitor[V]) Expecting() string {
	if v.stage == stageReady {
		return v.gv.Expecting()
	}
	return "nothing"
}

func (v *InplaceVisitor[V]) VisitBool(value bool) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitBool(value))
}

func (v *InplaceVisitor[V]) VisitInt8(value int8) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitInt8(value))
}

func (v *InplaceVisitor[V]) VisitInt16(value int16) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitInt16(value))
}

func (v *InplaceVisitor[V]) VisitInt32(value int32) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitInt32(value))
}

func (v *InplaceVisitor[V]) VisitInt64(value int64) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitInt64(value))
}

func (v *InplaceVisitor[V]) VisitInt128(value *big.Int) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitInt128(value))
}

func (v *InplaceVisitor[V]) VisitUint8(value uint8) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUint8(value))
}

func (v *InplaceVisitor[V]) VisitUint16(value uint16) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUint16(value))
}

func (v *InplaceVisitor[V]) VisitUint32(value uint32) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUint32(value))
}

func (v *InplaceVisitor[V]) VisitUint64(value uint64) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUint64(value))
}

func (v *InplaceVisitor[V]) VisitUint128(value *big.Int) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUint128(value))
}

func (v *InplaceVisitor[V]) VisitFloat32(value float32) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitFloat32(value))
}

func (v *InplaceVisitor[V]) VisitFloat64(value float64) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitFloat64(value))
}

func (v *InplaceVisitor[V]) VisitRune(value rune) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitRune(value))
}

func (v *InplaceVisitor[V]) VisitString(value string) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitString(value))
}

func (v *InplaceVisitor[V]) VisitBytes(value []byte) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitBytes(value))
}

func (v *InplaceVisitor[V]) VisitNone() error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitNone())
}

func (v *InplaceVisitor[V]) VisitUnit() error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitUnit())
}

func (v *InplaceVisitor[V]) VisitSome(d Deserializer) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitSome(Typed[V](d)))
}

func (v *InplaceVisitor[V]) VisitNewtypeStruct(d Deserializer) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitNewtypeStruct(Typed[V](d)))
}

func (v *InplaceVisitor[V]) VisitSeq(a SeqAccess) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitSeq(seqShim{a}))
}

func (v *InplaceVisitor[V]) VisitMap(a MapAccess) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitMap(mapShim{a}))
}

func (v *InplaceVisitor[V]) VisitEnum(a EnumAccess) error {
	gv, ok := v.take()
	if !ok {
		return statusError(CodeVisitor)
	}
	return v.finish(gv.VisitEnum(enumShim[V]{a}))
}

// A DecodeFunc is the decode logic for one concrete type, expressed
// against the dynamic facade so it works with every codec.
type DecodeFunc[T any] func(d Deserializer) (T, error)

// An InplaceSeed adapts one DecodeFunc to the dynamic Seed facade for
// a single element, storing the decoded value or the error in itself.
type InplaceSeed[T any] struct {
	stage bridgeStage
	fn    DecodeFunc[T]
	value T
	err   error
}

var _ Seed = (*InplaceSeed[struct{}])(nil)

// NewSeed returns a single-use Seed over fn.
func NewSeed[T any](fn DecodeFunc[T]) *InplaceSeed[T] {
	return &InplaceSeed[T]{stage: stageReady, fn: fn}
}

func (s *InplaceSeed[T]) Decode(d Deserializer) error {
	if s.stage != stageReady {
		return statusError(CodeSeed)
	}
	fn := s.fn
	s.fn = nil
	s.stage = stageEmpty
	value, err := fn(d)
	if err != nil {
		s.err = err
		s.stage = stageFailed
		return err
	}
	s.value = value
	s.stage = stageDone
	return nil
}

// Result reports the decoded value, the stored error, or a seed status
// *Error if the seed was never driven.
func (s *InplaceSeed[T]) Result() (T, error) {
	var zero T
	switch s.stage {
	case stageDone:
		return s.value, nil
	case stageFailed:
		return zero, s.err
	default:
		return zero, statusError(CodeSeed)
	}
}

// An InplaceSeqAccess adapts one SeqDecoder to the dynamic SeqAccess
// facade. It stays usable across elements until the sequence ends or a
// call fails; after a failure every call answers CodeSeqAccess and the
// concrete error is recovered with Err.
type InplaceSeqAccess struct {
	acc   SeqDecoder
	err   error
	spent bool
}

var _ SeqAccess = (*InplaceSeqAccess)(nil)

// NewSeqAccess returns a dynamic facade over acc, valid for the
// duration of the surrounding visit call.
func NewSeqAccess(acc SeqDecoder) *InplaceSeqAccess {
	return &InplaceSeqAccess{acc: acc}
}

// Err returns the error stored by a failed call, if any.
func (a *InplaceSeqAccess) Err() error {
	return a.err
}

func (a *InplaceSeqAccess) NextElement(seed Seed) (bool, Code) {
	if a.spent {
		return false, CodeSeqAccess
	}
	more, err := a.acc.NextElement(seed)
	if err != nil {
		a.err = err
		a.spent = true
		return false, CodeFailed
	}
	return more, CodeOK
}

func (a *InplaceSeqAccess) SizeHint() (int, bool) {
	if a.spent {
		return 0, false
	}
	return a.acc.SizeHint()
}

// An InplaceMapAccess adapts one MapDecoder to the dynamic MapAccess
// facade, with the same lifetime and failure discipline as
// InplaceSeqAccess.
type InplaceMapAccess struct {
	acc   MapDecoder
	err   error
	spent bool
}

var _ MapAccess = (*InplaceMapAccess)(nil)

// NewMapAccess returns a dynamic facade over acc, valid for the
// duration of the surrounding visit call.
func NewMapAccess(acc MapDecoder) *InplaceMapAccess {
	return &InplaceMapAccess{acc: acc}
}

// Err returns the error stored by a failed call, if any.
func (a *InplaceMapAccess) Err() error {
	return a.err
}

func (a *InplaceMapAccess) NextKey(seed Seed) (bool, Code) {
	if a.spent {
		return false, CodeMapAccess
	}
	more, err := a.acc.NextKey(seed)
	if err != nil {
		a.err = err
		a.spent = true
		return false, CodeFailed
	}
	return more, CodeOK
}

func (a *InplaceMapAccess) NextValue(seed Seed) Code {
	if a.spent {
		return CodeMapAccess
	}
	if err := a.acc.NextValue(seed); err != nil {
		a.err = err
		a.spent = true
		return CodeFailed
	}
	return CodeOK
}

func (a *InplaceMapAccess) NextEntry(key, value Seed) (bool, Code) {
	if a.spent {
		return false, CodeMapAccess
	}
	more, err := a.acc.NextEntry(key, value)
	if err != nil {
		a.err = err
		a.spent = true
		return false, CodeFailed
	}
	return more, CodeOK
}

func (a *InplaceMapAccess) SizeHint() (int, bool) {
	if a.spent {
		return 0, false
	}
	return a.acc.SizeHint()
}

type enumStage int

const (
	enumStageReady enumStage = iota
	enumStageVariant
	enumStageEmpty
	enumStageDone
	enumStageFailed
)

// An InplaceEnumAccess adapts one EnumDecoder to the dynamic facades.
// It does double duty: Variant retags it from enum access to variant
// access, so one adapter covers the whole two-step handshake.
type InplaceEnumAccess[V any] struct {
	stage   enumStage
	enum    EnumDecoder[V]
	variant VariantDecoder[V]
	err     error
}

var (
	_ EnumAccess    = (*InplaceEnumAccess[struct{}])(nil)
	_ VariantAccess = (*InplaceEnumAccess[struct{}])(nil)
)

// NewEnumAccess returns a dynamic facade over acc, valid for the
// duration of the surrounding visit call.
func NewEnumAccess[V any](acc EnumDecoder[V]) *InplaceEnumAccess[V] {
	return &InplaceEnumAccess[V]{stage: enumStageReady, enum: acc}
}

// Err returns the error stored by a failed call, if any.
func (a *InplaceEnumAccess[V]) Err() error {
	if a.stage == enumStageFailed {
		return a.err
	}
	return nil
}

func (a *InplaceEnumAccess[V]) fail(err error) Code {
	a.err = err
	a.stage = enumStageFailed
	return CodeFailed
}

func (a *InplaceEnumAccess[V]) Variant(seed Seed) (VariantAccess, Code) {
	if a.stage != enumStageReady {
		return nil, CodeEnumAccess
	}
	enum := a.enum
	a.enum = nil
	a.stage = enumStageEmpty
	variant, err := enum.Variant(seed)
	if err != nil {
		return nil, a.fail(err)
	}
	a.variant = variant
	a.stage = enumStageVariant
	return a, CodeOK
}

func (a *InplaceEnumAccess[V]) takeVariant() (VariantDecoder[V], bool) {
	if a.stage != enumStageVariant {
		return nil, false
	}
	variant := a.variant
	a.variant = nil
	a.stage = enumStageEmpty
	return variant, true
}

func (a *InplaceEnumAccess[V]) UnitVariant() Code {
	variant, ok := a.takeVariant()
	if !ok {
		return CodeVariantAccess
	}
	if err := variant.UnitVariant(); err != nil {
		return a.fail(err)
	}
	a.stage = enumStageDone
	return CodeOK
}

func (a *InplaceEnumAccess[V]) NewtypeVariant(seed Seed) Code {
	variant, ok := a.takeVariant()
	if !ok {
		return CodeVariantAccess
	}
	if err := variant.NewtypeVariant(seed); err != nil {
		return a.fail(err)
	}
	a.stage = enumStageDone
	return CodeOK
}

func (a *InplaceEnumAccess[V]) TupleVariant(n int, v Visitor) Code {
	variant, ok := a.takeVariant()
	if !ok {
		return CodeVariantAccess
	}
	if _, err := variant.TupleVariant(n, visitorShim[V]{v}); err != nil {
		return a.fail(err)
	}
	a.stage = enumStageDone
	return CodeOK
}

func (a *InplaceEnumAccess[V]) StructVariant(fields []string, v Visitor) Code {
	variant, ok := a.takeVariant()
	if !ok {
		return CodeVariantAccess
	}
	if _, err := variant.StructVariant(fields, visitorShim[V]{v}); err != nil {
		return a.fail(err)
	}
	a.stage = enumStageDone
	return CodeOK
}

// seqShim, mapShim, enumShim, and variantShim are the reverse of the
// Inplace accesses: they let generic visitors consume dynamic access
// facades. Nonzero codes come back as status errors; the adapter that
// owns the corresponding bridge upgrades them to the concrete error
// afterwards.

type seqShim struct {
	a SeqAccess
}

func (s seqShim) NextElement(seed Seed) (bool, error) {
	more, code := s.a.NextElement(seed)
	if code != CodeOK {
		return false, code.Err()
	}
	return more, nil
}

func (s seqShim) SizeHint() (int, bool) { return s.a.SizeHint() }

type mapShim struct {
	a MapAccess
}

func (s mapShim) NextKey(seed Seed) (bool, error) {
	more, code := s.a.NextKey(seed)
	if code != CodeOK {
		return false, code.Err()
	}
	return more, nil
}

func (s mapShim) NextValue(seed Seed) error {
	return s.a.NextValue(seed).Err()
}

func (s mapShim) NextEntry(key, value Seed) (bool, error) {
	more, code := s.a.NextEntry(key, value)
	if code != CodeOK {
		return false, code.Err()
	}
	return more, nil
}

func (s mapShim) SizeHint() (int, bool) { return s.a.SizeHint() }

type enumShim[V any] struct {
	a EnumAccess
}

func (s enumShim[V]) Variant(seed Seed) (VariantDecoder[V], error) {
	variant, code := s.a.Variant(seed)
	if code != CodeOK {
		return nil, code.Err()
	}
	return variantShim[V]{variant}, nil
}

type variantShim[V any] struct {
	a VariantAccess
}

func (s variantShim[V]) UnitVariant() error {
	return s.a.UnitVariant().Err()
}

func (s variantShim[V]) NewtypeVariant(seed Seed) error {
	return s.a.NewtypeVariant(seed).Err()
}

func (s variantShim[V]) TupleVariant(n int, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(s.a.TupleVariant(n, vis))
}

func (s variantShim[V]) StructVariant(fields []string, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(s.a.StructVariant(fields, vis))
}

// typedDecoder lets generic decode logic drive a dynamic facade: each
// hint wraps the generic visitor in an InplaceVisitor, drives the
// facade, and unwraps the stored outcome.
type typedDecoder[V any] struct {
	d Deserializer
}

// Typed adapts a dynamic Deserializer to the generic Decoder contract.
func Typed[V any](d Deserializer) Decoder[V] {
	return typedDecoder[V]{d}
}

func (t typedDecoder[V]) DecodeAny(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeAny(vis))
}

func (t typedDecoder[V]) DecodeBool(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeBool(vis))
}

func (t typedDecoder[V]) DecodeInt8(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeInt8(vis))
}

func (t typedDecoder[V]) DecodeInt16(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeInt16(vis))
}

func (t typedDecoder[V]) DecodeInt32(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeInt32(vis))
}

func (t typedDecoder[V]) DecodeInt64(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeInt64(vis))
}

func (t typedDecoder[V]) DecodeInt128(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeInt128(vis))
}

func (t typedDecoder[V]) DecodeUint8(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUint8(vis))
}

func (t typedDecoder[V]) DecodeUint16(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUint16(vis))
}

func (t typedDecoder[V]) DecodeUint32(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUint32(vis))
}

func (t typedDecoder[V]) DecodeUint64(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUint64(vis))
}

func (t typedDecoder[V]) DecodeUint128(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUint128(vis))
}

func (t typedDecoder[V]) DecodeFloat32(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeFloat32(vis))
}

func (t typedDecoder[V]) DecodeFloat64(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeFloat64(vis))
}

func (t typedDecoder[V]) DecodeRune(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeRune(vis))
}

func (t typedDecoder[V]) DecodeString(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeString(vis))
}

func (t typedDecoder[V]) DecodeBytes(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeBytes(vis))
}

func (t typedDecoder[V]) DecodeOption(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeOption(vis))
}

func (t typedDecoder[V]) DecodeUnit(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUnit(vis))
}

func (t typedDecoder[V]) DecodeUnitStruct(name string, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeUnitStruct(name, vis))
}

func (t typedDecoder[V]) DecodeNewtypeStruct(name string, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeNewtypeStruct(name, vis))
}

func (t typedDecoder[V]) DecodeSeq(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeSeq(vis))
}

func (t typedDecoder[V]) DecodeTuple(n int, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeTuple(n, vis))
}

func (t typedDecoder[V]) DecodeTupleStruct(name string, n int, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeTupleStruct(name, n, vis))
}

func (t typedDecoder[V]) DecodeMap(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeMap(vis))
}

func (t typedDecoder[V]) DecodeStruct(name string, fields []string, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeStruct(name, fields, vis))
}

func (t typedDecoder[V]) DecodeEnum(name string, variants []string, gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeEnum(name, variants, vis))
}

func (t typedDecoder[V]) DecodeIdentifier(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeIdentifier(vis))
}

func (t typedDecoder[V]) DecodeIgnoredAny(gv DecodeVisitor[V]) (V, error) {
	vis := NewVisitor(gv)
	return vis.resolve(t.d.DeserializeIgnoredAny(vis))
}

func (t typedDecoder[V]) HumanReadable() bool {
	return t.d.HumanReadable()
}

// Unmarshal decodes one value of type T from dec. It is the consumer
// counterpart of Marshal and applies the same error precedence: the
// codec's own stored error wins over the status currency fn returned.
func Unmarshal[T, V any](dec Decoder[V], fn DecodeFunc[T]) (T, error) {
	d := NewDeserializer(dec)
	value, err := fn(d)
	if cerr := d.Err(); cerr != nil {
		var zero T
		return zero, cerr
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}
