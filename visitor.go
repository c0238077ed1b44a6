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

import "math/big"

// UnimplementedVisitor rejects every shape with an invalid-type error
// built from Desc. Embed it in a DecodeVisitor implementation and
// override only the shapes the type accepts.
type UnimplementedVisitor[V any] struct {
	// Desc is the indefinite noun phrase reported by Expecting, such
	// as "a point".
	Desc string
}

func (u UnimplementedVisitor[V]) Expecting() string {
	if u.Desc == "" {
		return "nothing"
	}
	return u.Desc
}

func (u UnimplementedVisitor[V]) reject(got Unexpected) (V, error) {
	var zero V
	return zero, InvalidType(got, u.Expecting())
}

func (u UnimplementedVisitor[V]) VisitBool(v bool) (V, error) {
	return u.reject(UnexpectedBool(v))
}

func (u UnimplementedVisitor[V]) VisitInt8(v int8) (V, error) {
	return u.reject(UnexpectedSigned(int64(v)))
}

func (u UnimplementedVisitor[V]) VisitInt16(v int16) (V, error) {
	return u.reject(UnexpectedSigned(int64(v)))
}

func (u UnimplementedVisitor[V]) VisitInt32(v int32) (V, error) {
	return u.reject(UnexpectedSigned(int64(v)))
}

func (u UnimplementedVisitor[V]) VisitInt64(v int64) (V, error) {
	return u.reject(UnexpectedSigned(v))
}

func (u UnimplementedVisitor[V]) VisitInt128(v *big.Int) (V, error) {
	return u.reject(UnexpectedOther("integer `" + v.String() + "`"))
}

func (u UnimplementedVisitor[V]) VisitUint8(v uint8) (V, error) {
	return u.reject(UnexpectedUnsigned(uint64(v)))
}

func (u UnimplementedVisitor[V]) VisitUint16(v uint16) (V, error) {
	return u.reject(UnexpectedUnsigned(uint64(v)))
}

func (u UnimplementedVisitor[V]) VisitUint32(v uint32) (V, error) {
	return u.reject(UnexpectedUnsigned(uint64(v)))
}

func (u UnimplementedVisitor[V]) VisitUint64(v uint64) (V, error) {
	return u.reject(UnexpectedUnsigned(v))
}

func (u UnimplementedVisitor[V]) VisitUint128(v *big.Int) (V, error) {
	return u.reject(UnexpectedOther("integer `" + v.String() + "`"))
}

func (u UnimplementedVisitor[V]) VisitFloat32(v float32) (V, error) {
	return u.reject(UnexpectedFloat(float64(v)))
}

func (u UnimplementedVisitor[V]) VisitFloat64(v float64) (V, error) {
	return u.reject(UnexpectedFloat(v))
}

func (u UnimplementedVisitor[V]) VisitRune(v rune) (V, error) {
	return u.reject(UnexpectedRune(v))
}

func (u UnimplementedVisitor[V]) VisitString(v string) (V, error) {
	return u.reject(UnexpectedString(v))
}

func (u UnimplementedVisitor[V]) VisitBytes(v []byte) (V, error) {
	return u.reject(UnexpectedBytes())
}

func (u UnimplementedVisitor[V]) VisitNone() (V, error) {
	return u.reject(UnexpectedOption())
}

func (u UnimplementedVisitor[V]) VisitSome(d Decoder[V]) (V, error) {
	return u.reject(UnexpectedOption())
}

func (u UnimplementedVisitor[V]) VisitUnit() (V, error) {
	return u.reject(UnexpectedUnit())
}

func (u UnimplementedVisitor[V]) VisitNewtypeStruct(d Decoder[V]) (V, error) {
	return u.reject(UnexpectedNewtypeStruct())
}

func (u UnimplementedVisitor[V]) VisitSeq(a SeqDecoder) (V, error) {
	return u.reject(UnexpectedSeq())
}

func (u UnimplementedVisitor[V]) VisitMap(a MapDecoder) (V, error) {
	return u.reject(UnexpectedMap())
}

func (u UnimplementedVisitor[V]) VisitEnum(a EnumDecoder[V]) (V, error) {
	return u.reject(UnexpectedEnum())
}
