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

package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
)

func TestConstructors(t *testing.T) {
	x := Zeros(2, 3)
	assert.Equal(t, []int{2, 3}, x.Shape())
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0}, x.Data())

	y := Ones(3)
	assert.Equal(t, []float32{1, 1, 1}, y.Data())

	s := NewScalar(4)
	assert.Empty(t, s.Shape())
	assert.Equal(t, float32(4), s.Data()[0])

	assert.Panics(t, func() { NewTensor([]float32{1, 2, 3}, 2, 2) })
}

func TestGet(t *testing.T) {
	x := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	assert.Equal(t, float32(1), x.Get(0, 0))
	assert.Equal(t, float32(6), x.Get(1, 2))
}

func TestMatMulTranspose(t *testing.T) {
	a := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := NewTensor([]float32{1, 2, 3, 4, 5, 6}, 2, 3)

	// a^T * b: (3,2) x (2,3) -> (3,3)
	c := a.matMul(b, true, false)
	assert.Equal(t, []int{3, 3}, c.shape)
	assert.Equal(t, []float32{17, 22, 27, 22, 29, 36, 27, 36, 45}, c.data)

	// a * b^T: (2,3) x (3,2) -> (2,2)
	c = a.matMul(b, false, true)
	assert.Equal(t, []int{2, 2}, c.shape)
	assert.Equal(t, []float32{14, 32, 32, 77}, c.data)

	assert.Panics(t, func() { a.matMul(b, false, false) })
}

func TestNormalInit(t *testing.T) {
	rng := base.NewRandomGenerator(42)
	x := Normal(rng, 0, 0.1, 100, 10)
	assert.Equal(t, []int{100, 10}, x.Shape())

	// the same seed reproduces the same tensor
	rng = base.NewRandomGenerator(42)
	y := Normal(rng, 0, 0.1, 100, 10)
	assert.Equal(t, x.Data(), y.Data())
}

func TestTruncatedNormalBounds(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	x := TruncatedNormal(rng, 0, 1e-3, 1000)
	for _, v := range x.Data() {
		assert.LessOrEqual(t, v, float32(2e-3))
		assert.GreaterOrEqual(t, v, float32(-2e-3))
	}
}
