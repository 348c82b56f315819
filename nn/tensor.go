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
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
)

type Tensor struct {
	data        []float32
	shape       []int
	grad        *Tensor
	op          op
	requireGrad bool
}

func NewTensor(data []float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(data) {
		panic(fmt.Sprintf("shape %v does not match data length %d", shape, len(data)))
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

func NewScalar(data float32) *Tensor {
	return &Tensor{
		data:  []float32{data},
		shape: []int{},
	}
}

// Ones creates a tensor filled with ones.
func Ones(shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	return &Tensor{
		data:  data,
		shape: shape,
	}
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		data:  make([]float32, n),
		shape: shape,
	}
}

// Uniform creates a tensor filled with uniform random values drawn from rng.
func Uniform(rng base.RandomGenerator, low, high float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		data:  rng.UniformVector(n, low, high),
		shape: shape,
	}
}

// Normal creates a tensor filled with normal random values drawn from rng.
func Normal(rng base.RandomGenerator, mean, stdDev float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		data:  rng.NormalVector(n, mean, stdDev),
		shape: shape,
	}
}

// TruncatedNormal creates a tensor filled with truncated normal random values
// drawn from rng.
func TruncatedNormal(rng base.RandomGenerator, mean, stdDev float32, shape ...int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{
		data:  rng.TruncatedNormalVector(n, mean, stdDev),
		shape: shape,
	}
}

// NoGrad detaches a tensor from the graph that created it.
func (t *Tensor) NoGrad() *Tensor {
	if t.op != nil {
		t.op = nil
	}
	return t
}

// RequireGrad marks a leaf tensor as trainable. Backward keeps gradients only
// on leaves marked this way; constant leaves such as the rating matrix and its
// mask stay gradient-free.
func (t *Tensor) RequireGrad() *Tensor {
	t.requireGrad = true
	return t
}

// Shape returns the shape of the tensor.
func (t *Tensor) Shape() []int {
	return t.shape
}

// Data returns the underlying storage of the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Get returns the element at the given position of a 2-D tensor.
func (t *Tensor) Get(i, j int) float32 {
	if len(t.shape) != 2 {
		panic("Get expects a 2-D tensor")
	}
	return t.data[i*t.shape[1]+j]
}

func (t *Tensor) String() string {
	// Print scalar value
	if len(t.shape) == 0 {
		return fmt.Sprint(t.data[0])
	}

	builder := strings.Builder{}
	builder.WriteString("[")
	if len(t.data) <= 10 {
		for i := 0; i < len(t.data); i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			if i != len(t.data)-1 {
				builder.WriteString(", ")
			}
		}
	} else {
		for i := 0; i < 5; i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			builder.WriteString(", ")
		}
		builder.WriteString("..., ")
		for i := len(t.data) - 5; i < len(t.data); i++ {
			builder.WriteString(fmt.Sprint(t.data[i]))
			if i != len(t.data)-1 {
				builder.WriteString(", ")
			}
		}
	}
	builder.WriteString("]")
	return builder.String()
}

// Backward propagates gradients from t through the graph that produced it.
// Ops are visited in reverse topological order and gradients of tensors
// consumed by more than one op accumulate.
func (t *Tensor) Backward() {
	t.grad = Ones(t.shape...)
	var ordered []op
	visited := make(map[op]bool)
	var visit func(o op)
	visit = func(o op) {
		if o == nil || visited[o] {
			return
		}
		visited[o] = true
		inputs, _ := o.inputsAndOutput()
		for _, input := range inputs {
			if input.op != nil {
				visit(input.op)
			}
		}
		ordered = append(ordered, o)
	}
	visit(t.op)
	for i := len(ordered) - 1; i >= 0; i-- {
		o := ordered[i]
		inputs, output := o.inputsAndOutput()
		grads := o.backward(output.grad)
		for j := range grads {
			if inputs[j].op == nil && !inputs[j].requireGrad {
				continue
			}
			if inputs[j].grad == nil {
				inputs[j].grad = grads[j]
			} else {
				inputs[j].grad.add(grads[j])
			}
		}
	}
}

func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// ZeroGrad drops the accumulated gradient.
func (t *Tensor) ZeroGrad() {
	t.grad = nil
}

func (t *Tensor) clone() *Tensor {
	newData := make([]float32, len(t.data))
	copy(newData, t.data)
	return &Tensor{
		data:  newData,
		shape: t.shape,
	}
}

func (t *Tensor) add(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] += other.data[i%wSize]
	}
	return t
}

func (t *Tensor) sub(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] -= other.data[i%wSize]
	}
	return t
}

func (t *Tensor) mul(other *Tensor) *Tensor {
	wSize := 1
	for i := range other.shape {
		wSize *= other.shape[i]
	}
	for i := range t.data {
		t.data[i] *= other.data[i%wSize]
	}
	return t
}

func (t *Tensor) square() *Tensor {
	for i := range t.data {
		t.data[i] = t.data[i] * t.data[i]
	}
	return t
}

func (t *Tensor) tanh() *Tensor {
	for i := range t.data {
		t.data[i] = math32.Tanh(t.data[i])
	}
	return t
}

func (t *Tensor) matMul(other *Tensor, transT, transOther bool) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic("matMul expects 2-D tensors")
	}
	m, k := t.shape[0], t.shape[1]
	if transT {
		m, k = k, m
	}
	k2, n := other.shape[0], other.shape[1]
	if transOther {
		k2, n = n, k2
	}
	if k != k2 {
		panic(fmt.Sprintf("matMul shape mismatch: %v x %v", t.shape, other.shape))
	}
	y := Zeros(m, n)
	for i := 0; i < m; i++ {
		for l := 0; l < k; l++ {
			var a float32
			if transT {
				a = t.data[l*t.shape[1]+i]
			} else {
				a = t.data[i*t.shape[1]+l]
			}
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				var b float32
				if transOther {
					b = other.data[j*other.shape[1]+l]
				} else {
					b = other.data[l*other.shape[1]+j]
				}
				y.data[i*n+j] += a * b
			}
		}
	}
	return y
}
