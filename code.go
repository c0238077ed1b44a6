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
)

var strToCode = map[string]Code{
	"OK":                       CodeOK,
	"FAILED":                   CodeFailed,
	"SERIALIZER":               CodeSerializer,
	"SERIALIZE_SEQ":            CodeSerializeSeq,
	"SERIALIZE_TUPLE":          CodeSerializeTuple,
	"SERIALIZE_TUPLE_STRUCT":   CodeSerializeTupleStruct,
	"SERIALIZE_TUPLE_VARIANT":  CodeSerializeTupleVariant,
	"SERIALIZE_MAP":            CodeSerializeMap,
	"SERIALIZE_STRUCT":         CodeSerializeStruct,
	"SERIALIZE_STRUCT_VARIANT": CodeSerializeStructVariant,
	"DESERIALIZER":             CodeDeserializer,
	"SEED":                     CodeSeed,
	"VISITOR":                  CodeVisitor,
	"SEQ_ACCESS":               CodeSeqAccess,
	"MAP_ACCESS":               CodeMapAccess,
	"ENUM_ACCESS":              CodeEnumAccess,
	"VARIANT_ACCESS":           CodeVariantAccess,
}

// A Code reports the outcome of one call on a dynamic facade. Facade
// methods return Codes instead of errors so that protocol violations
// stay free of payload-carrying values: the concrete result or error
// of the wrapped codec is stored inside the bridge and recovered out
// of band.
//
// The zero Code is CodeOK. Every nonzero Code other than CodeFailed
// names the facade that was driven out of protocol.
type Code uint32

const (
	// CodeOK indicates that the call succeeded.
	CodeOK Code = 0

	// CodeFailed indicates that the wrapped codec, or a callback it
	// invoked, reported an error. The error value is stored in the
	// bridge that owned the codec.
	CodeFailed Code = 1

	// CodeSerializer indicates that the facade wasn't ready to
	// serialize a root value.
	CodeSerializer Code = 2

	// CodeSerializeSeq indicates that no sequence was open.
	CodeSerializeSeq Code = 3

	// CodeSerializeTuple indicates that no tuple was open.
	CodeSerializeTuple Code = 4

	// CodeSerializeTupleStruct indicates that no tuple struct was
	// open.
	CodeSerializeTupleStruct Code = 5

	// CodeSerializeTupleVariant indicates that no tuple variant was
	// open.
	CodeSerializeTupleVariant Code = 6

	// CodeSerializeMap indicates that no map was open.
	CodeSerializeMap Code = 7

	// CodeSerializeStruct indicates that no struct was open.
	CodeSerializeStruct Code = 8

	// CodeSerializeStructVariant indicates that no struct variant was
	// open.
	CodeSerializeStructVariant Code = 9

	// CodeDeserializer indicates that the facade wasn't ready to
	// deserialize a value.
	CodeDeserializer Code = 10

	// CodeSeed indicates that the seed was already consumed, or never
	// primed.
	CodeSeed Code = 11

	// CodeVisitor indicates that the visitor was already consumed, or
	// never primed.
	CodeVisitor Code = 12

	// CodeSeqAccess indicates that the sequence access was spent.
	CodeSeqAccess Code = 13

	// CodeMapAccess indicates that the map access was spent.
	CodeMapAccess Code = 14

	// CodeEnumAccess indicates that the enum access was spent.
	CodeEnumAccess Code = 15

	// CodeVariantAccess indicates that the variant access was spent,
	// or no variant was selected yet.
	CodeVariantAccess Code = 16

	minCode = CodeOK
	maxCode = CodeVariantAccess
)

// Err converts the Code to the rich error currency. It returns nil for
// CodeOK and a new *Error carrying the Code otherwise.
func (c Code) Err() error {
	if c == CodeOK {
		return nil
	}
	return statusError(c)
}

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeFailed:
		return "failed"
	case CodeSerializer:
		return "serializer"
	case CodeSerializeSeq:
		return "serialize_seq"
	case CodeSerializeTuple:
		return "serialize_tuple"
	case CodeSerializeTupleStruct:
		return "serialize_tuple_struct"
	case CodeSerializeTupleVariant:
		return "serialize_tuple_variant"
	case CodeSerializeMap:
		return "serialize_map"
	case CodeSerializeStruct:
		return "serialize_struct"
	case CodeSerializeStructVariant:
		return "serialize_struct_variant"
	case CodeDeserializer:
		return "deserializer"
	case CodeSeed:
		return "seed"
	case CodeVisitor:
		return "visitor"
	case CodeSeqAccess:
		return "seq_access"
	case CodeMapAccess:
		return "map_access"
	case CodeEnumAccess:
		return "enum_access"
	case CodeVariantAccess:
		return "variant_access"
	}
	return fmt.Sprintf("code_%d", uint32(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Code) MarshalText() ([]byte, error) {
	if minCode <= c && c <= maxCode {
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("invalid code: %d", uint32(c))
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts both
// the lowercase spellings produced by MarshalText and the uppercase
// wire spellings.
func (c *Code) UnmarshalText(data []byte) error {
	dataStr := string(data)
	if code, ok := strToCode[dataStr]; ok {
		*c = code
		return nil
	}
	for candidate := minCode; candidate <= maxCode; candidate++ {
		if candidate.String() == dataStr {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("invalid code: %q", dataStr)
}

// message is the human-readable phrase used when a Code is promoted to
// an *Error.
func (c Code) message() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeFailed:
		return "an error occurred in the wrapped codec"
	case CodeSerializer:
		return "the serializer is not ready to serialize a value"
	case CodeSerializeSeq:
		return "the serializer is not ready to serialize the sequence"
	case CodeSerializeTuple:
		return "the serializer is not ready to serialize the tuple"
	case CodeSerializeTupleStruct:
		return "the serializer is not ready to serialize the tuple struct"
	case CodeSerializeTupleVariant:
		return "the serializer is not ready to serialize the tuple variant"
	case CodeSerializeMap:
		return "the serializer is not ready to serialize the map"
	case CodeSerializeStruct:
		return "the serializer is not ready to serialize the struct"
	case CodeSerializeStructVariant:
		return "the serializer is not ready to serialize the struct variant"
	case CodeDeserializer:
		return "the deserializer is not ready to deserialize a value"
	case CodeSeed:
		return "the seed is not ready to deserialize a value"
	case CodeVisitor:
		return "the visitor is not ready to visit a value"
	case CodeSeqAccess:
		return "the sequence access is not ready"
	case CodeMapAccess:
		return "the map access is not ready"
	case CodeEnumAccess:
		return "the enum access is not ready"
	case CodeVariantAccess:
		return "the variant access is not ready"
	}
	return c.String()
}
