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

// Package keycodec adapts map keys for codecs whose maps are keyed by
// strings. Encoder renders a key value down to its string; Decoder
// replays a key string back through the hint protocol so seeds can
// consume keys the same way they consume values.
package keycodec

import (
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"

	"dynserde.dev/dynserde"
)

// Encoder renders a map key to a string. Only stringish and integer
// keys are accepted; everything else is rejected with an invalid-type
// error.
type Encoder struct{}

var _ dynserde.Encoder[string] = Encoder{}

func badKey(got dynserde.Unexpected) (string, error) {
	return "", dynserde.InvalidType(got, "a string key")
}

func (Encoder) EncodeBool(v bool) (string, error) {
	return badKey(dynserde.UnexpectedBool(v))
}

func (Encoder) EncodeInt8(v int8) (string, error) {
	return strconv.FormatInt(int64(v), 10), nil
}

func (Encoder) EncodeInt16(v int16) (string, error) {
	return strconv.FormatInt(int64(v), 10), nil
}

func (Encoder) EncodeInt32(v int32) (string, error) {
	return strconv.FormatInt(int64(v), 10), nil
}

func (Encoder) EncodeInt64(v int64) (string, error) {
	return strconv.FormatInt(v, 10), nil
}

func (Encoder) EncodeInt128(v *big.Int) (string, error) {
	return v.String(), nil
}

func (Encoder) EncodeUint8(v uint8) (string, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

func (Encoder) EncodeUint16(v uint16) (string, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

func (Encoder) EncodeUint32(v uint32) (string, error) {
	return strconv.FormatUint(uint64(v), 10), nil
}

func (Encoder) EncodeUint64(v uint64) (string, error) {
	return strconv.FormatUint(v, 10), nil
}

func (Encoder) EncodeUint128(v *big.Int) (string, error) {
	return v.String(), nil
}

func (Encoder) EncodeFloat32(v float32) (string, error) {
	return badKey(dynserde.UnexpectedFloat(float64(v)))
}

func (Encoder) EncodeFloat64(v float64) (string, error) {
	return badKey(dynserde.UnexpectedFloat(v))
}

func (Encoder) EncodeRune(v rune) (string, error) {
	return string(v), nil
}

func (Encoder) EncodeString(v string) (string, error) {
	return v, nil
}

func (Encoder) EncodeBytes(v []byte) (string, error) {
	return badKey(dynserde.UnexpectedBytes())
}

func (Encoder) EncodeNone() (string, error) {
	return badKey(dynserde.UnexpectedOption())
}

func (Encoder) EncodeSome(v dynserde.Marshaler) (string, error) {
	return badKey(dynserde.UnexpectedOption())
}

func (Encoder) EncodeUnit() (string, error) {
	return badKey(dynserde.UnexpectedUnit())
}

func (Encoder) EncodeUnitStruct(name string) (string, error) {
	return badKey(dynserde.UnexpectedUnit())
}

func (Encoder) EncodeUnitVariant(name string, index uint32, variant string) (string, error) {
	return variant, nil
}

func (e Encoder) EncodeNewtypeStruct(name string, v dynserde.Marshaler) (string, error) {
	return dynserde.Marshal[string](v, e)
}

func (Encoder) EncodeNewtypeVariant(name string, index uint32, variant string, v dynserde.Marshaler) (string, error) {
	return badKey(dynserde.UnexpectedNewtypeVariant())
}

func (Encoder) EncodeSeq(n int) (dynserde.SeqEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedSeq())
	return nil, err
}

func (Encoder) EncodeTuple(n int) (dynserde.TupleEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedSeq())
	return nil, err
}

func (Encoder) EncodeTupleStruct(name string, n int) (dynserde.TupleStructEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedSeq())
	return nil, err
}

func (Encoder) EncodeTupleVariant(name string, index uint32, variant string, n int) (dynserde.TupleVariantEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedTupleVariant())
	return nil, err
}

func (Encoder) EncodeMap(n int) (dynserde.MapEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedMap())
	return nil, err
}

func (Encoder) EncodeStruct(name string, n int) (dynserde.StructEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedMap())
	return nil, err
}

func (Encoder) EncodeStructVariant(name string, index uint32, variant string, n int) (dynserde.StructVariantEncoder[string], error) {
	_, err := badKey(dynserde.UnexpectedStructVariant())
	return nil, err
}

func (Encoder) CollectString(v fmt.Stringer) (string, error) {
	return v.String(), nil
}

func (Encoder) HumanReadable() bool {
	return true
}

// Decoder replays a single key string as a value. Integer and rune
// hints parse the key text; composite hints fail.
type Decoder[V any] struct {
	key string
}

var _ dynserde.Decoder[struct{}] = (*Decoder[struct{}])(nil)

// NewDecoder returns a Decoder replaying key.
func NewDecoder[V any](key string) *Decoder[V] {
	return &Decoder[V]{key: key}
}

func (k *Decoder[V]) invalid(v dynserde.DecodeVisitor[V]) error {
	return dynserde.InvalidType(dynserde.UnexpectedString(k.key), v.Expecting())
}

func (k *Decoder[V]) DecodeAny(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitString(k.key)
}

func (k *Decoder[V]) DecodeBool(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeInt8(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := strconv.ParseInt(k.key, 10, 8)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitInt8(int8(i))
}

func (k *Decoder[V]) DecodeInt16(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := strconv.ParseInt(k.key, 10, 16)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitInt16(int16(i))
}

func (k *Decoder[V]) DecodeInt32(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := strconv.ParseInt(k.key, 10, 32)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitInt32(int32(i))
}

func (k *Decoder[V]) DecodeInt64(v dynserde.DecodeVisitor[V]) (V, error) {
	i, err := strconv.ParseInt(k.key, 10, 64)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitInt64(i)
}

func (k *Decoder[V]) DecodeInt128(v dynserde.DecodeVisitor[V]) (V, error) {
	i, ok := new(big.Int).SetString(k.key, 10)
	if !ok {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitInt128(i)
}

func (k *Decoder[V]) DecodeUint8(v dynserde.DecodeVisitor[V]) (V, error) {
	u, err := strconv.ParseUint(k.key, 10, 8)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitUint8(uint8(u))
}

func (k *Decoder[V]) DecodeUint16(v dynserde.DecodeVisitor[V]) (V, error) {
	u, err := strconv.ParseUint(k.key, 10, 16)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitUint16(uint16(u))
}

func (k *Decoder[V]) DecodeUint32(v dynserde.DecodeVisitor[V]) (V, error) {
	u, err := strconv.ParseUint(k.key, 10, 32)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitUint32(uint32(u))
}

func (k *Decoder[V]) DecodeUint64(v dynserde.DecodeVisitor[V]) (V, error) {
	u, err := strconv.ParseUint(k.key, 10, 64)
	if err != nil {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitUint64(u)
}

func (k *Decoder[V]) DecodeUint128(v dynserde.DecodeVisitor[V]) (V, error) {
	u, ok := new(big.Int).SetString(k.key, 10)
	if !ok || u.Sign() < 0 {
		var zero V
		return zero, k.invalid(v)
	}
	return v.VisitUint128(u)
}

func (k *Decoder[V]) DecodeFloat32(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeFloat64(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeRune(v dynserde.DecodeVisitor[V]) (V, error) {
	if utf8.RuneCountInString(k.key) != 1 {
		var zero V
		return zero, k.invalid(v)
	}
	r, _ := utf8.DecodeRuneInString(k.key)
	return v.VisitRune(r)
}

func (k *Decoder[V]) DecodeString(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitString(k.key)
}

func (k *Decoder[V]) DecodeBytes(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeOption(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitSome(k)
}

func (k *Decoder[V]) DecodeUnit(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeUnitStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeNewtypeStruct(name string, v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitNewtypeStruct(k)
}

func (k *Decoder[V]) DecodeSeq(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeTuple(n int, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeTupleStruct(name string, n int, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeMap(v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeStruct(name string, fields []string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeEnum(name string, variants []string, v dynserde.DecodeVisitor[V]) (V, error) {
	var zero V
	return zero, k.invalid(v)
}

func (k *Decoder[V]) DecodeIdentifier(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitString(k.key)
}

func (k *Decoder[V]) DecodeIgnoredAny(v dynserde.DecodeVisitor[V]) (V, error) {
	return v.VisitUnit()
}

func (k *Decoder[V]) HumanReadable() bool {
	return true
}
