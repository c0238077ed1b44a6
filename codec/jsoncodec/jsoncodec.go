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

// Package jsoncodec implements the generic encoding contracts over
// streaming JSON.
//
// Sequences, tuples, and tuple structs become arrays; maps and structs
// become objects; absent options, units, and unit structs become null.
// A unit variant is its name as a string, and every other variant is a
// single-key object keyed by the variant name. Bytes use standard
// base64, characters are one-rune strings, and 128-bit integers are
// written as bare JSON numbers.
package jsoncodec

import (
	"encoding/base64"
	"fmt"
	"math/big"

	jsoniter "github.com/json-iterator/go"

	"dynserde.dev/dynserde"
	"dynserde.dev/dynserde/codec/internal/keycodec"
)

var config = jsoniter.ConfigCompatibleWithStandardLibrary

// An Encoder streams JSON into an internal buffer. It implements
// dynserde.Encoder with a []byte result: the buffer accumulated so
// far, valid until the next write.
type Encoder struct {
	stream *jsoniter.Stream
}

var _ dynserde.Encoder[[]byte] = (*Encoder)(nil)

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{stream: jsoniter.NewStream(config, nil, 512)}
}

// Bytes returns the output accumulated so far.
func (e *Encoder) Bytes() []byte {
	return e.stream.Buffer()
}

// Reset discards the output so the Encoder can be reused.
func (e *Encoder) Reset() {
	e.stream.Reset(nil)
}

func (e *Encoder) done() ([]byte, error) {
	if err := e.stream.Error; err != nil {
		return nil, dynserde.NewError(err)
	}
	return e.stream.Buffer(), nil
}

func (e *Encoder) EncodeBool(v bool) ([]byte, error) {
	e.stream.WriteBool(v)
	return e.done()
}

func (e *Encoder) EncodeInt8(v int8) ([]byte, error) {
	e.stream.WriteInt8(v)
	return e.done()
}

func (e *Encoder) EncodeInt16(v int16) ([]byte, error) {
	e.stream.WriteInt16(v)
	return e.done()
}

func (e *Encoder) EncodeInt32(v int32) ([]byte, error) {
	e.stream.WriteInt32(v)
	return e.done()
}

func (e *Encoder) EncodeInt64(v int64) ([]byte, error) {
	e.stream.WriteInt64(v)
	return e.done()
}

func (e *Encoder) EncodeInt128(v *big.Int) ([]byte, error) {
	e.stream.WriteRaw(v.String())
	return e.done()
}

func (e *Encoder) EncodeUint8(v uint8) ([]byte, error) {
	e.stream.WriteUint8(v)
	return e.done()
}

func (e *Encoder) EncodeUint16(v uint16) ([]byte, error) {
	e.stream.WriteUint16(v)
	return e.done()
}

func (e *Encoder) EncodeUint32(v uint32) ([]byte, error) {
	e.stream.WriteUint32(v)
	return e.done()
}

func (e *Encoder) EncodeUint64(v uint64) ([]byte, error) {
	e.stream.WriteUint64(v)
	return e.done()
}

func (e *Encoder) EncodeUint128(v *big.Int) ([]byte, error) {
	e.stream.WriteRaw(v.String())
	return e.done()
}

func (e *Encoder) EncodeFloat32(v float32) ([]byte, error) {
	e.stream.WriteFloat32(v)
	return e.done()
}

func (e *Encoder) EncodeFloat64(v float64) ([]byte, error) {
	e.stream.WriteFloat64(v)
	return e.done()
}

func (e *Encoder) EncodeRune(v rune) ([]byte, error) {
	e.stream.WriteString(string(v))
	return e.done()
}

func (e *Encoder) EncodeString(v string) ([]byte, error) {
	e.stream.WriteString(v)
	return e.done()
}

func (e *Encoder) EncodeBytes(v []byte) ([]byte, error) {
	e.stream.WriteString(base64.StdEncoding.EncodeToString(v))
	return e.done()
}

func (e *Encoder) EncodeNone() ([]byte, error) {
	e.stream.WriteNil()
	return e.done()
}

func (e *Encoder) EncodeSome(v dynserde.Marshaler) ([]byte, error) {
	return dynserde.Marshal[[]byte](v, e)
}

func (e *Encoder) EncodeUnit() ([]byte, error) {
	e.stream.WriteNil()
	return e.done()
}

func (e *Encoder) EncodeUnitStruct(name string) ([]byte, error) {
	e.stream.WriteNil()
	return e.done()
}

func (e *Encoder) EncodeUnitVariant(name string, index uint32, variant string) ([]byte, error) {
	e.stream.WriteString(variant)
	return e.done()
}

func (e *Encoder) EncodeNewtypeStruct(name string, v dynserde.Marshaler) ([]byte, error) {
	return dynserde.Marshal[[]byte](v, e)
}

func (e *Encoder) EncodeNewtypeVariant(name string, index uint32, variant string, v dynserde.Marshaler) ([]byte, error) {
	e.stream.WriteObjectStart()
	e.stream.WriteObjectField(variant)
	if _, err := dynserde.Marshal[[]byte](v, e); err != nil {
		return nil, err
	}
	e.stream.WriteObjectEnd()
	return e.done()
}

func (e *Encoder) EncodeSeq(n int) (dynserde.SeqEncoder[[]byte], error) {
	e.stream.WriteArrayStart()
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) EncodeTuple(n int) (dynserde.TupleEncoder[[]byte], error) {
	e.stream.WriteArrayStart()
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) EncodeTupleStruct(name string, n int) (dynserde.TupleStructEncoder[[]byte], error) {
	e.stream.WriteArrayStart()
	return &fieldsEncoder{seqEncoder{e: e}}, nil
}

func (e *Encoder) EncodeTupleVariant(name string, index uint32, variant string, n int) (dynserde.TupleVariantEncoder[[]byte], error) {
	e.stream.WriteObjectStart()
	e.stream.WriteObjectField(variant)
	e.stream.WriteArrayStart()
	return &fieldsEncoder{seqEncoder{e: e, variant: true}}, nil
}

func (e *Encoder) EncodeMap(n int) (dynserde.MapEncoder[[]byte], error) {
	e.stream.WriteObjectStart()
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) EncodeStruct(name string, n int) (dynserde.StructEncoder[[]byte], error) {
	e.stream.WriteObjectStart()
	return &structEncoder{e: e}, nil
}

func (e *Encoder) EncodeStructVariant(name string, index uint32, variant string, n int) (dynserde.StructVariantEncoder[[]byte], error) {
	e.stream.WriteObjectStart()
	e.stream.WriteObjectField(variant)
	e.stream.WriteObjectStart()
	return &structEncoder{e: e, variant: true}, nil
}

func (e *Encoder) CollectString(v fmt.Stringer) ([]byte, error) {
	e.stream.WriteString(v.String())
	return e.done()
}

func (e *Encoder) HumanReadable() bool {
	return true
}

type seqEncoder struct {
	e       *Encoder
	n       int
	variant bool
}

func (s *seqEncoder) element(v dynserde.Marshaler) error {
	if s.n > 0 {
		s.e.stream.WriteMore()
	}
	s.n++
	_, err := dynserde.Marshal[[]byte](v, s.e)
	return err
}

func (s *seqEncoder) EncodeElement(v dynserde.Marshaler) error {
	return s.element(v)
}

func (s *seqEncoder) End() ([]byte, error) {
	s.e.stream.WriteArrayEnd()
	if s.variant {
		s.e.stream.WriteObjectEnd()
	}
	return s.e.done()
}

type fieldsEncoder struct {
	seqEncoder
}

func (f *fieldsEncoder) EncodeField(v dynserde.Marshaler) error {
	return f.element(v)
}

type mapEncoder struct {
	e *Encoder
	n int
}

func (m *mapEncoder) EncodeKey(k dynserde.Marshaler) error {
	if m.n > 0 {
		m.e.stream.WriteMore()
	}
	m.n++
	key, err := dynserde.Marshal[string](k, keycodec.Encoder{})
	if err != nil {
		return err
	}
	m.e.stream.WriteObjectField(key)
	return nil
}

func (m *mapEncoder) EncodeValue(v dynserde.Marshaler) error {
	_, err := dynserde.Marshal[[]byte](v, m.e)
	return err
}

func (m *mapEncoder) EncodeEntry(k, v dynserde.Marshaler) error {
	if err := m.EncodeKey(k); err != nil {
		return err
	}
	return m.EncodeValue(v)
}

func (m *mapEncoder) End() ([]byte, error) {
	m.e.stream.WriteObjectEnd()
	return m.e.done()
}

type structEncoder struct {
	e       *Encoder
	n       int
	variant bool
}

func (s *structEncoder) EncodeField(name string, v dynserde.Marshaler) error {
	if s.n > 0 {
		s.e.stream.WriteMore()
	}
	s.n++
	s.e.stream.WriteObjectField(name)
	_, err := dynserde.Marshal[[]byte](v, s.e)
	return err
}

func (s *structEncoder) SkipField(name string) error {
	return nil
}

func (s *structEncoder) End() ([]byte, error) {
	s.e.stream.WriteObjectEnd()
	if s.variant {
		s.e.stream.WriteObjectEnd()
	}
	return s.e.done()
}
