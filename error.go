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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type errorKind int

const (
	kindStatus errorKind = iota
	kindMessage
	kindInvalidType
	kindInvalidValue
	kindInvalidLength
	kindUnknownVariant
	kindUnknownField
	kindMissingField
	kindDuplicateField
)

// An Error describes why encoding or decoding went wrong. Codecs
// construct Errors with the category constructors below, so the
// category and its operands survive the trip through the dynamic
// facade intact instead of being flattened into text at the boundary.
//
// Protocol violations surface as Errors too: a nonzero Code promoted
// with Code.Err yields an Error whose Code method reports which facade
// was misused.
type Error struct {
	kind     errorKind
	code     Code
	unx      Unexpected
	expected string
	length   int
	name     string
	allowed  []string
	cause    error
}

// NewError wraps an arbitrary error in an *Error. If err is already an
// *Error it is returned unchanged.
func NewError(err error) *Error {
	if typed := new(Error); errors.As(err, &typed) {
		return typed
	}
	return &Error{kind: kindMessage, code: CodeFailed, cause: err}
}

// Errorf is a convenience for NewError(fmt.Errorf(...)).
func Errorf(template string, args ...any) *Error {
	return NewError(fmt.Errorf(template, args...))
}

// InvalidType reports that the input contained a value of the wrong
// type. The expected description should be an indefinite noun phrase,
// such as "a boolean".
func InvalidType(got Unexpected, expected string) *Error {
	return &Error{kind: kindInvalidType, code: CodeFailed, unx: got, expected: expected}
}

// InvalidValue reports a value of the right type that is nonetheless
// out of range or otherwise unacceptable.
func InvalidValue(got Unexpected, expected string) *Error {
	return &Error{kind: kindInvalidValue, code: CodeFailed, unx: got, expected: expected}
}

// InvalidLength reports a sequence or map of the wrong length.
func InvalidLength(length int, expected string) *Error {
	return &Error{kind: kindInvalidLength, code: CodeFailed, length: length, expected: expected}
}

// UnknownVariant reports an enum variant name that isn't among the
// expected ones.
func UnknownVariant(name string, expected []string) *Error {
	return &Error{kind: kindUnknownVariant, code: CodeFailed, name: name, allowed: expected}
}

// UnknownField reports a field name that isn't among the expected
// ones.
func UnknownField(name string, expected []string) *Error {
	return &Error{kind: kindUnknownField, code: CodeFailed, name: name, allowed: expected}
}

// MissingField reports that a required field was absent.
func MissingField(name string) *Error {
	return &Error{kind: kindMissingField, code: CodeFailed, name: name}
}

// DuplicateField reports that a field appeared more than once.
func DuplicateField(name string) *Error {
	return &Error{kind: kindDuplicateField, code: CodeFailed, name: name}
}

func statusError(code Code) *Error {
	return &Error{kind: kindStatus, code: code}
}

func (e *Error) Error() string {
	switch e.kind {
	case kindStatus:
		return e.code.message()
	case kindMessage:
		return e.cause.Error()
	case kindInvalidType:
		return fmt.Sprintf("invalid type: %s, expected %s", e.unx, e.expected)
	case kindInvalidValue:
		return fmt.Sprintf("invalid value: %s, expected %s", e.unx, e.expected)
	case kindInvalidLength:
		return fmt.Sprintf("invalid length: %d, expected %s", e.length, e.expected)
	case kindUnknownVariant:
		if len(e.allowed) == 0 {
			return fmt.Sprintf("unknown variant `%s`, there are no variants", e.name)
		}
		return fmt.Sprintf("unknown variant `%s`, expected %s", e.name, oneOf(e.allowed))
	case kindUnknownField:
		if len(e.allowed) == 0 {
			return fmt.Sprintf("unknown field `%s`, there are no fields", e.name)
		}
		return fmt.Sprintf("unknown field `%s`, expected %s", e.name, oneOf(e.allowed))
	case kindMissingField:
		return fmt.Sprintf("missing field `%s`", e.name)
	case kindDuplicateField:
		return fmt.Sprintf("duplicate field `%s`", e.name)
	}
	return e.code.message()
}

// Code reports the status associated with the error. Shape and value
// errors report CodeFailed; protocol violations report the facade's
// wrong-stage code.
func (e *Error) Code() Code {
	return e.code
}

// Unwrap returns the wrapped cause, if any, so that Errors work with
// errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the status of an error: CodeOK for nil, the embedded
// Code for *Errors, and CodeFailed for everything else.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	if typed := new(Error); errors.As(err, &typed) {
		return typed.Code()
	}
	return CodeFailed
}

// AsError uses errors.As to unwrap any error and look for an *Error.
func AsError(err error) (*Error, bool) {
	typed := new(Error)
	ok := errors.As(err, &typed)
	return typed, ok
}

func oneOf(names []string) string {
	switch len(names) {
	case 1:
		return "`" + names[0] + "`"
	case 2:
		return fmt.Sprintf("`%s` or `%s`", names[0], names[1])
	default:
		var sb strings.Builder
		sb.WriteString("one of ")
		for i, name := range names {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("`")
			sb.WriteString(name)
			sb.WriteString("`")
		}
		return sb.String()
	}
}

// An Unexpected describes the value a codec actually encountered, for
// use in InvalidType and InvalidValue errors.
type Unexpected struct {
	desc string
}

func (u Unexpected) String() string {
	if u.desc == "" {
		return "unknown value"
	}
	return u.desc
}

// UnexpectedBool describes an unexpected boolean.
func UnexpectedBool(v bool) Unexpected {
	return Unexpected{desc: fmt.Sprintf("boolean `%t`", v)}
}

// UnexpectedSigned describes an unexpected signed integer.
func UnexpectedSigned(v int64) Unexpected {
	return Unexpected{desc: fmt.Sprintf("integer `%d`", v)}
}

// UnexpectedUnsigned describes an unexpected unsigned integer.
func UnexpectedUnsigned(v uint64) Unexpected {
	return Unexpected{desc: fmt.Sprintf("integer `%d`", v)}
}

// UnexpectedFloat describes an unexpected floating point number.
func UnexpectedFloat(v float64) Unexpected {
	return Unexpected{desc: "floating point `" + strconv.FormatFloat(v, 'g', -1, 64) + "`"}
}

// UnexpectedRune describes an unexpected character.
func UnexpectedRune(v rune) Unexpected {
	return Unexpected{desc: fmt.Sprintf("character `%c`", v)}
}

// UnexpectedString describes an unexpected string.
func UnexpectedString(v string) Unexpected {
	return Unexpected{desc: "string " + strconv.Quote(v)}
}

// UnexpectedBytes describes an unexpected byte array.
func UnexpectedBytes() Unexpected {
	return Unexpected{desc: "byte array"}
}

// UnexpectedUnit describes an unexpected unit value.
func UnexpectedUnit() Unexpected {
	return Unexpected{desc: "unit value"}
}

// UnexpectedOption describes an unexpected optional value.
func UnexpectedOption() Unexpected {
	return Unexpected{desc: "optional value"}
}

// UnexpectedNewtypeStruct describes an unexpected newtype struct.
func UnexpectedNewtypeStruct() Unexpected {
	return Unexpected{desc: "newtype struct"}
}

// UnexpectedSeq describes an unexpected sequence.
func UnexpectedSeq() Unexpected {
	return Unexpected{desc: "sequence"}
}

// UnexpectedMap describes an unexpected map.
func UnexpectedMap() Unexpected {
	return Unexpected{desc: "map"}
}

// UnexpectedEnum describes an unexpected enum.
func UnexpectedEnum() Unexpected {
	return Unexpected{desc: "enum"}
}

// UnexpectedUnitVariant describes an unexpected unit variant.
func UnexpectedUnitVariant() Unexpected {
	return Unexpected{desc: "unit variant"}
}

// UnexpectedNewtypeVariant describes an unexpected newtype variant.
func UnexpectedNewtypeVariant() Unexpected {
	return Unexpected{desc: "newtype variant"}
}

// UnexpectedTupleVariant describes an unexpected tuple variant.
func UnexpectedTupleVariant() Unexpected {
	return Unexpected{desc: "tuple variant"}
}

// UnexpectedStructVariant describes an unexpected struct variant.
func UnexpectedStructVariant() Unexpected {
	return Unexpected{desc: "struct variant"}
}

// UnexpectedOther describes a value not covered by the other
// constructors.
func UnexpectedOther(desc string) Unexpected {
	return Unexpected{desc: desc}
}
