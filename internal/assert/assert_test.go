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

package assert

import (
	"errors"
	"fmt"
	"testing"
)

type pair struct {
	First, Second int
}

func TestAssertions(t *testing.T) {
	t.Run("equal", func(t *testing.T) {
		Equal(t, 1, 1)
		Equal(t, "foo", "foo", Sprintf("%v aren't equal", "strings"))
		NotEqual(t, 1, 2)
		NotEqual(t, pair{1, 2}, pair{1, 3})
	})

	t.Run("nil", func(t *testing.T) {
		Nil(t, nil)
		Nil(t, (*pair)(nil))
		Nil(t, ([]int)(nil))
		Nil(t, (map[int]int)(nil))

		NotNil(t, make(chan int))
		NotNil(t, func() {})
		NotNil(t, any(1))
		NotNil(t, &pair{})
		NotNil(t, make([]int, 0))

		NotNil(t, "foo")
		NotNil(t, 0)
		NotNil(t, false)
		NotNil(t, pair{})
	})

	t.Run("zero", func(t *testing.T) {
		var p pair
		Zero(t, p)
		var null *pair
		Zero(t, null)
		var s []int
		Zero(t, s)
	})

	t.Run("error chain", func(t *testing.T) {
		want := errors.New("base error")
		ErrorIs(t, fmt.Errorf("context: %w", want), want)
	})

	t.Run("bool", func(t *testing.T) {
		True(t, 1 == 1)
		False(t, 1 == 2)
	})
}
