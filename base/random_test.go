// Copyright 2025 kernelNet Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	a := NewRandomGenerator(0).NormalVector(100, 0, 1)
	b := NewRandomGenerator(0).NormalVector(100, 0, 1)
	assert.Equal(t, a, b)

	c := NewRandomGenerator(1).NormalVector(100, 0, 1)
	assert.NotEqual(t, a, c)
}

func TestUniformVector(t *testing.T) {
	v := NewRandomGenerator(0).UniformVector(1000, -1, 2)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, float32(-1))
		assert.Less(t, x, float32(2))
	}
}

func TestTruncatedNormalVector(t *testing.T) {
	v := NewRandomGenerator(0).TruncatedNormalVector(1000, 0, 1e-3)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, float32(-2e-3))
		assert.LessOrEqual(t, x, float32(2e-3))
	}
}

func TestNormalMatrix(t *testing.T) {
	m := NewRandomGenerator(0).NormalMatrix(10, 5, 0, 0.1)
	assert.Len(t, m, 10)
	for _, row := range m {
		assert.Len(t, row, 5)
	}
}
