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

// An Encoder is the generic producer contract. A codec implements it
// once, choosing its own result type Ok: a tree-building codec returns
// the finished node, a streaming codec typically returns its buffer.
// Encoder instantiations with different result types are unrelated
// interface types, which is exactly why the dynamic Serializer facade
// and the bridge in this package exist.
//
// Composite encodings are opened on the Encoder and finished on the
// returned sub-encoder. A sequence or map size below zero means the
// size isn't known up front.
//
// Signed and unsigned 128-bit integers are carried as *big.Int.
type Encoder[Ok any] interface {
	EncodeBool(v bool) (Ok, error)
	EncodeInt8(v int8) (Ok, error)
	EncodeInt16(v int16) (Ok, error)
	EncodeInt32(v int32) (Ok, error)
	EncodeInt64(v int64) (Ok, error)
	EncodeInt128(v *big.Int) (Ok, error)
	EncodeUint8(v uint8) (Ok, error)
	EncodeUint16(v uint16) (Ok, error)
	EncodeUint32(v uint32) (Ok, error)
	EncodeUint64(v uint64) (Ok, error)
	EncodeUint128(v *big.Int) (Ok, error)
	EncodeFloat32(v float32) (Ok, error)
	EncodeFloat64(v float64) (Ok, error)
	EncodeRune(v rune) (Ok, error)
	EncodeString(v string) (Ok, error)
	EncodeBytes(v []byte) (Ok, error)
	EncodeNone() (Ok, error)
	EncodeSome(v Marshaler) (Ok, error)
	EncodeUnit() (Ok, error)
	EncodeUnitStruct(name string) (Ok, error)
	EncodeUnitVariant(name string, index uint32, variant string) (Ok, error)
	EncodeNewtypeStruct(name string, v Marshaler) (Ok, error)
	EncodeNewtypeVariant(name string, index uint32, variant string, v Marshaler) (Ok, error)
	EncodeSeq(n int) (SeqEncoder[Ok], error)
	EncodeTuple(n int) (TupleEncoder[Ok], error)
	EncodeTupleStruct(name string, n int) (TupleStructEncoder[Ok], error)
	EncodeTupleVariant(name string, index uint32, variant string, n int) (TupleVariantEncoder[Ok], error)
	EncodeMap(n int) (MapEncoder[Ok], error)
	EncodeStruct(name string, n int) (StructEncoder[Ok], error)
	EncodeStructVariant(name string, index uint32, variant string, n int) (StructVariantEncoder[Ok], error)

	// CollectString encodes the result of v.String. Codecs with a
	// native string representation should avoid materializing the
	// string twice.
	CollectString(v fmt.Stringer) (Ok, error)

	// HumanReadable reports whether the encoding is a readable text
	// format. Values may use it to pick between compact and friendly
	// representations.
	HumanReadable() bool
}

// A SeqEncoder encodes the elements of a sequence opened with
// EncodeSeq.
type SeqEncoder[Ok any] interface {
	EncodeElement(v Marshaler) error
	End() (Ok, error)
}

// A TupleEncoder encodes the elements of a fixed-size tuple.
type TupleEncoder[Ok any] interface {
	EncodeElement(v Marshaler) error
	End() (Ok, error)
}

// A TupleStructEncoder encodes the fields of a named tuple struct.
type TupleStructEncoder[Ok any] interface {
	EncodeField(v Marshaler) error
	End() (Ok, error)
}

// A TupleVariantEncoder encodes the fields of a tuple enum variant.
type TupleVariantEncoder[Ok any] interface {
	EncodeField(v Marshaler) error
	End() (Ok, error)
}

// A MapEncoder encodes map entries. Keys and values may be encoded
// separately or as an entry; a key must be followed by its value
// before the next key.
type MapEncoder[Ok any] interface {
	EncodeKey(k Marshaler) error
	EncodeValue(v Marshaler) error
	EncodeEntry(k, v Marshaler) error
	End() (Ok, error)
}

// A StructEncoder encodes named struct fields. SkipField marks a field
// deliberately absent, for codecs whose layout reserves a slot per
// field.
type StructEncoder[Ok any] interface {
	EncodeField(name string, v Marshaler) error
	SkipField(name string) error
	End() (Ok, error)
}

// A StructVariantEncoder encodes the named fields of a struct enum
// variant.
type StructVariantEncoder[Ok any] interface {
	EncodeField(name string, v Marshaler) error
	SkipField(name string) error
	End() (Ok, error)
}

// A Marshaler writes itself into a dynamic Serializer with exactly one
// terminal operation or one complete composite encoding. It is the
// type-erased counterpart of a value usable with Encoder: because the
// facade is payload-free, one Marshaler implementation serves every
// codec regardless of result type.
type Marshaler interface {
	MarshalInto(s Serializer) error
}

// A Serializer is the dynamic producer facade: Encoder with the result
// type erased. Every terminal operation reports a bare Code; the
// concrete result or error stays inside the bridge backing the facade.
// Composite operations return a sub-facade that must be finished with
// End before the result is available.
//
// After a terminal operation, End, or a failure, every further call
// answers the facade's wrong-stage Code without touching the wrapped
// codec.
type Serializer interface {
	SerializeBool(v bool) Code
	SerializeInt8(v int8) Code
	SerializeInt16(v int16) Code
	SerializeInt32(v int32) Code
	SerializeInt64(v int64) Code
	SerializeInt128(v *big.Int) Code
	SerializeUint8(v uint8) Code
	SerializeUint16(v uint16) Code
	SerializeUint32(v uint32) Code
	SerializeUint64(v uint64) Code
	SerializeUint128(v *big.Int) Code
	SerializeFloat32(v float32) Code
	SerializeFloat64(v float64) Code
	SerializeRune(v rune) Code
	SerializeString(v string) Code
	SerializeBytes(v []byte) Code
	SerializeNone() Code
	SerializeSome(v Marshaler) Code
	SerializeUnit() Code
	SerializeUnitStruct(name string) Code
	SerializeUnitVariant(name string, index uint32, variant string) Code
	SerializeNewtypeStruct(name string, v Marshaler) Code
	SerializeNewtypeVariant(name string, index uint32, variant string, v Marshaler) Code
	SerializeSeq(n int) (SerializeSeq, Code)
	SerializeTuple(n int) (SerializeTuple, Code)
	SerializeTupleStruct(name string, n int) (SerializeTupleStruct, Code)
	SerializeTupleVariant(name string, index uint32, variant string, n int) (SerializeTupleVariant, Code)
	SerializeMap(n int) (SerializeMap, Code)
	SerializeStruct(name string, n int) (SerializeStruct, Code)
	SerializeStructVariant(name string, index uint32, variant string, n int) (SerializeStructVariant, Code)
	CollectString(v fmt.Stringer) Code
	HumanReadable() bool
}

// SerializeSeq is the dynamic counterpart of SeqEncoder.
type SerializeSeq interface {
	SerializeElement(v Marshaler) Code
	End() Code
}

// SerializeTuple is the dynamic counterpart of TupleEncoder.
type SerializeTuple interface {
	SerializeElement(v Marshaler) Code
	End() Code
}

// SerializeTupleStruct is the dynamic counterpart of
// TupleStructEncoder.
type SerializeTupleStruct interface {
	SerializeField(v Marshaler) Code
	End() Code
}

// SerializeTupleVariant is the dynamic counterpart of
// TupleVariantEncoder.
type SerializeTupleVariant interface {
	SerializeField(v Marshaler) Code
	End() Code
}

// SerializeMap is the dynamic counterpart of MapEncoder.
type SerializeMap interface {
	SerializeKey(k Marshaler) Code
	SerializeValue(v Marshaler) Code
	SerializeEntry(k, v Marshaler) Code
	End() Code
}

// SerializeStruct is the dynamic counterpart of StructEncoder.
type SerializeStruct interface {
	SerializeField(name string, v Marshaler) Code
	SkipField(name string) Code
	End() Code
}

// SerializeStructVariant is the dynamic counterpart of
// StructVariantEncoder.
type SerializeStructVariant interface {
	SerializeField(name string, v Marshaler) Code
	SkipField(name string) Code
	End() Code
}

type serStage int

const (
	serStageEmpty serStage = iota
	serStageEncoder
	serStageSeq
	serStageTuple
	serStageTupleStruct
	serStageTupleVariant
	serStageMap
	serStageStruct
	serStageStructVariant
	serStageDone
	serStageFailed
)

func (s serStage) code() Code {
	switch s {
	case serStageSeq:
		return CodeSerializeSeq
	case serStageTuple:
		return CodeSerializeTuple
	case serStageTupleStruct:
		return CodeSerializeTupleStruct
	case serStageTupleVariant:
		return CodeSerializeTupleVariant
	case serStageMap:
		return CodeSerializeMap
	case serStageStruct:
		return CodeSerializeStruct
	case serStageStructVariant:
		return CodeSerializeStructVariant
	}
	return CodeSerializer
}

// An InplaceSerializer adapts one Encoder to the dynamic Serializer
// facade for a single serialization. It holds at most one codec object
// at a time: the encoder before the first call, an open sub-encoder
// while a composite encoding is in flight, and afterwards either the
// codec's result or its error. Recover whichever was stored with
// Result.
//
// InplaceSerializers are single-use and not safe for concurrent use.
type InplaceSerializer[Ok any] struct {
	stage        serStage
	enc          Encoder[Ok]
	seq          SeqEncoder[Ok]
	tuple        TupleEncoder[Ok]
	tupleStruct  TupleStructEncoder[Ok]
	tupleVariant TupleVariantEncoder[Ok]
	mapEnc       MapEncoder[Ok]
	structEnc    StructEncoder[Ok]
	structVar    StructVariantEncoder[Ok]
	result       Ok
	err          error
}

var _ Serializer = (*InplaceSerializer[struct{}])(nil)

// NewSerializer returns a single-use dynamic facade over enc.
func NewSerializer[Ok any](enc Encoder[Ok]) *InplaceSerializer[Ok] {
	return &InplaceSerializer[Ok]{stage: serStageEncoder, enc: enc}
}

// Result reports the outcome of the serialization: the codec's result
// after a completed one, the codec's error after a failed one, and a
// wrong-stage *Error if the facade was never driven to completion.
func (s *InplaceSerializer[Ok]) Result() (Ok, error) {
	var zero Ok
	switch s.stage {
	case serStageDone:
		return s.result, nil
	case serStageFailed:
		return zero, s.err
	default:
		return zero, statusError(s.stage.code())
	}
}

// Err returns the stored codec error, if any.
func (s *InplaceSerializer[Ok]) Err() error {
	if s.stage == serStageFailed {
		return s.err
	}
	return nil
}

// take removes the encoder, leaving the bridge empty until the call
// stores its outcome.
func (s *InplaceSerializer[Ok]) take() (Encoder[Ok], bool) {
	if s.stage != serStageEncoder {
		return nil, false
	}
	enc := s.enc
	s.enc = nil
	s.stage = serStageEmpty
	return enc, true
}

func (s *InplaceSerializer[Ok]) finish(result Ok, err error) Code {
	if err != nil {
		return s.fail(err)
	}
	s.result = result
	s.stage = serStageDone
	return CodeOK
}

func (s *InplaceSerializer[Ok]) fail(err error) Code {
	s.err = err
	s.stage = serStageFailed
	return CodeFailed
}

func (s *InplaceSerializer[Ok]) SerializeBool(v bool) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeBool(v))
}

func (s *InplaceSerializer[Ok]) SerializeInt8(v int8) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeInt8(v))
}

func (s *InplaceSerializer[Ok]) SerializeInt16(v int16) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeInt16(v))
}

func (s *InplaceSerializer[Ok]) SerializeInt32(v int32) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeInt32(v))
}

func (s *InplaceSerializer[Ok]) SerializeInt64(v int64) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeInt64(v))
}

func (s *InplaceSerializer[Ok]) SerializeInt128(v *big.Int) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeInt128(v))
}

func (s *InplaceSerializer[Ok]) SerializeUint8(v uint8) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUint8(v))
}

func (s *InplaceSerializer[Ok]) SerializeUint16(v uint16) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUint16(v))
}

func (s *InplaceSerializer[Ok]) SerializeUint32(v uint32) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUint32(v))
}

func (s *InplaceSerializer[Ok]) SerializeUint64(v uint64) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUint64(v))
}

func (s *InplaceSerializer[Ok]) SerializeUint128(v *big.Int) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUint128(v))
}

func (s *InplaceSerializer[Ok]) SerializeFloat32(v float32) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeFloat32(v))
}

func (s *InplaceSerializer[Ok]) SerializeFloat64(v float64) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeFloat64(v))
}

func (s *InplaceSerializer[Ok]) SerializeRune(v rune) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeRune(v))
}

func (s *InplaceSerializer[Ok]) SerializeString(v string) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeString(v))
}

func (s *InplaceSerializer[Ok]) SerializeBytes(v []byte) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeBytes(v))
}

func (s *InplaceSerializer[Ok]) SerializeNone() Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeNone())
}

func (s *InplaceSerializer[Ok]) SerializeSome(v Marshaler) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeSome(v))
}

func (s *InplaceSerializer[Ok]) SerializeUnit() Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUnit())
}

func (s *InplaceSerializer[Ok]) SerializeUnitStruct(name string) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUnitStruct(name))
}

func (s *InplaceSerializer[Ok]) SerializeUnitVariant(name string, index uint32, variant string) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeUnitVariant(name, index, variant))
}

func (s *InplaceSerializer[Ok]) SerializeNewtypeStruct(name string, v Marshaler) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeNewtypeStruct(name, v))
}

func (s *InplaceSerializer[Ok]) SerializeNewtypeVariant(name string, index uint32, variant string, v Marshaler) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.EncodeNewtypeVariant(name, index, variant, v))
}

func (s *InplaceSerializer[Ok]) CollectString(v fmt.Stringer) Code {
	enc, ok := s.take()
	if !ok {
		return CodeSerializer
	}
	return s.finish(enc.CollectString(v))
}

func (s *InplaceSerializer[Ok]) SerializeSeq(n int) (SerializeSeq, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeSeq(n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.seq = sub
	s.stage = serStageSeq
	return (*serializeSeq[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeTuple(n int) (SerializeTuple, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeTuple(n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.tuple = sub
	s.stage = serStageTuple
	return (*serializeTuple[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeTupleStruct(name string, n int) (SerializeTupleStruct, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeTupleStruct(name, n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.tupleStruct = sub
	s.stage = serStageTupleStruct
	return (*serializeTupleStruct[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeTupleVariant(name string, index uint32, variant string, n int) (SerializeTupleVariant, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeTupleVariant(name, index, variant, n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.tupleVariant = sub
	s.stage = serStageTupleVariant
	return (*serializeTupleVariant[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeMap(n int) (SerializeMap, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeMap(n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.mapEnc = sub
	s.stage = serStageMap
	return (*serializeMap[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeStruct(name string, n int) (SerializeStruct, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeStruct(name, n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.structEnc = sub
	s.stage = serStageStruct
	return (*serializeStruct[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) SerializeStructVariant(name string, index uint32, variant string, n int) (SerializeStructVariant, Code) {
	enc, ok := s.take()
	if !ok {
		return nil, CodeSerializer
	}
	sub, err := enc.EncodeStructVariant(name, index, variant, n)
	if err != nil {
		return nil, s.fail(err)
	}
	s.structVar = sub
	s.stage = serStageStructVariant
	return (*serializeStructVariant[Ok])(s), CodeOK
}

func (s *InplaceSerializer[Ok]) HumanReadable() bool {
	if s.stage == serStageEncoder {
		return s.enc.HumanReadable()
	}
	return true
}

// The sub-facades are views over the same bridge; converting instead
// of allocating keeps a composite encoding to a single allocation.

type serializeSeq[Ok any] InplaceSerializer[Ok]

func (w *serializeSeq[Ok]) SerializeElement(v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageSeq {
		return CodeSerializeSeq
	}
	if err := s.seq.EncodeElement(v); err != nil {
		s.seq = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeSeq[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageSeq {
		return CodeSerializeSeq
	}
	sub := s.seq
	s.seq = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeTuple[Ok any] InplaceSerializer[Ok]

func (w *serializeTuple[Ok]) SerializeElement(v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTuple {
		return CodeSerializeTuple
	}
	if err := s.tuple.EncodeElement(v); err != nil {
		s.tuple = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeTuple[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTuple {
		return CodeSerializeTuple
	}
	sub := s.tuple
	s.tuple = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeTupleStruct[Ok any] InplaceSerializer[Ok]

func (w *serializeTupleStruct[Ok]) SerializeField(v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTupleStruct {
		return CodeSerializeTupleStruct
	}
	if err := s.tupleStruct.EncodeField(v); err != nil {
		s.tupleStruct = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeTupleStruct[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTupleStruct {
		return CodeSerializeTupleStruct
	}
	sub := s.tupleStruct
	s.tupleStruct = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeTupleVariant[Ok any] InplaceSerializer[Ok]

func (w *serializeTupleVariant[Ok]) SerializeField(v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTupleVariant {
		return CodeSerializeTupleVariant
	}
	if err := s.tupleVariant.EncodeField(v); err != nil {
		s.tupleVariant = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeTupleVariant[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageTupleVariant {
		return CodeSerializeTupleVariant
	}
	sub := s.tupleVariant
	s.tupleVariant = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeMap[Ok any] InplaceSerializer[Ok]

func (w *serializeMap[Ok]) SerializeKey(k Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageMap {
		return CodeSerializeMap
	}
	if err := s.mapEnc.EncodeKey(k); err != nil {
		s.mapEnc = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeMap[Ok]) SerializeValue(v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageMap {
		return CodeSerializeMap
	}
	if err := s.mapEnc.EncodeValue(v); err != nil {
		s.mapEnc = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeMap[Ok]) SerializeEntry(k, v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageMap {
		return CodeSerializeMap
	}
	if err := s.mapEnc.EncodeEntry(k, v); err != nil {
		s.mapEnc = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeMap[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageMap {
		return CodeSerializeMap
	}
	sub := s.mapEnc
	s.mapEnc = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeStruct[Ok any] InplaceSerializer[Ok]

func (w *serializeStruct[Ok]) SerializeField(name string, v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStruct {
		return CodeSerializeStruct
	}
	if err := s.structEnc.EncodeField(name, v); err != nil {
		s.structEnc = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeStruct[Ok]) SkipField(name string) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStruct {
		return CodeSerializeStruct
	}
	if err := s.structEnc.SkipField(name); err != nil {
		s.structEnc = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeStruct[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStruct {
		return CodeSerializeStruct
	}
	sub := s.structEnc
	s.structEnc = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

type serializeStructVariant[Ok any] InplaceSerializer[Ok]

func (w *serializeStructVariant[Ok]) SerializeField(name string, v Marshaler) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStructVariant {
		return CodeSerializeStructVariant
	}
	if err := s.structVar.EncodeField(name, v); err != nil {
		s.structVar = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeStructVariant[Ok]) SkipField(name string) Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStructVariant {
		return CodeSerializeStructVariant
	}
	if err := s.structVar.SkipField(name); err != nil {
		s.structVar = nil
		return s.fail(err)
	}
	return CodeOK
}

func (w *serializeStructVariant[Ok]) End() Code {
	s := (*InplaceSerializer[Ok])(w)
	if s.stage != serStageStructVariant {
		return CodeSerializeStructVariant
	}
	sub := s.structVar
	s.structVar = nil
	s.stage = serStageEmpty
	return s.finish(sub.End())
}

// Marshal serializes value with enc and returns the codec's result.
// It is the bridge in its most common arrangement: the value speaks
// the dynamic calling convention, the codec the generic one.
//
// The codec's own error takes precedence over the status currency the
// value returned, so the error a codec produced natively is the one
// recovered here.
func Marshal[Ok any](value Marshaler, enc Encoder[Ok]) (Ok, error) {
	s := NewSerializer(enc)
	err := value.MarshalInto(s)
	if cerr := s.Err(); cerr != nil {
		var zero Ok
		return zero, cerr
	}
	if err != nil {
		var zero Ok
		return zero, err
	}
	return s.Result()
}
