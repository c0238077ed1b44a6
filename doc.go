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

// Package dynserde bridges generic serialization codecs into dynamic
// dispatch. A codec implements the generic Encoder or Decoder contract
// once, with its own result type; the bridges in this package erase
// that type behind the Serializer and Deserializer facades, so values
// and codecs can be paired at runtime without either side knowing the
// other's types.
//
// The facades trade richly-typed returns for a payload-free calling
// convention: every operation reports a bare Code, while the concrete
// result or error stays inside the single-use bridge that wraps the
// codec and is recovered from it afterwards. Marshal and Unmarshal
// package the whole handshake for the common case.
//
// Reference codecs live in the codec subdirectory.
package dynserde
