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

type op interface {
	String() string
	forward(inputs ...*Tensor) *Tensor
	backward(dy *Tensor) []*Tensor
	inputsAndOutput() ([]*Tensor, *Tensor)
	setInputs(inputs ...*Tensor)
	setOutput(y *Tensor)
}

type opBase struct {
	inputs []*Tensor
	output *Tensor
}

func (b *opBase) inputsAndOutput() ([]*Tensor, *Tensor) {
	return b.inputs, b.output
}

func (b *opBase) setInputs(inputs ...*Tensor) {
	b.inputs = inputs
}

func (b *opBase) setOutput(y *Tensor) {
	b.output = y
}

func apply[T op](f T, inputs ...*Tensor) *Tensor {
	y := f.forward(inputs...)
	f.setInputs(inputs...)
	f.setOutput(y)
	y.op = f
	return y
}

type add struct {
	opBase
}

func (a *add) String() string {
	return "Add"
}

func (a *add) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.add(inputs[1])
	return y
}

func (a *add) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx1 := Zeros(a.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] += dy.data[i]
	}
	return []*Tensor{gx0, gx1}
}

type sub struct {
	opBase
}

func (s *sub) String() string {
	return "Sub"
}

func (s *sub) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.sub(inputs[1])
	return y
}

func (s *sub) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx1 := Zeros(s.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] -= dy.data[i]
	}
	return []*Tensor{gx0, gx1}
}

type mul struct {
	opBase
}

func (m *mul) String() string {
	return "Mul"
}

func (m *mul) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.mul(inputs[1])
	return y
}

func (m *mul) backward(dy *Tensor) []*Tensor {
	gx0 := dy.clone()
	gx0.mul(m.inputs[1])
	gx1 := Zeros(m.inputs[1].shape...)
	wSize := 1
	for i := range gx1.shape {
		wSize *= gx1.shape[i]
	}
	for i := range dy.data {
		gx1.data[i%wSize] += dy.data[i] * m.inputs[0].data[i]
	}
	return []*Tensor{gx0, gx1}
}

type square struct {
	opBase
}

func (s *square) String() string {
	return "Square"
}

func (s *square) forward(inputs ...*Tensor) *Tensor {
	y := inputs[0].clone()
	y.square()
	return y
}

func (s *square) backward(dy *Tensor) []*Tensor {
	dx := s.inputs[0].clone()
	dx.mul(dy)
	for i := range dx.data {
		dx.data[i] *= 2
	}
	return []*Tensor{dx}
}

type sum struct {
	opBase
}

func (s *sum) String() string {
	return "Sum"
}

func (s *sum) forward(inputs ...*Tensor) *Tensor {
	x := inputs[0]
	y := NewScalar(0)
	for i := range x.data {
		y.data[0] += x.data[i]
	}
	return y
}

func (s *sum) backward(dy *Tensor) []*Tensor {
	dx := Ones(s.inputs[0].shape...)
	for i := range dx.data {
		dx.data[i] = dy.data[0]
	}
	return []*Tensor{dx}
}

type matMul struct {
	opBase
}

func (m *matMul) String() string {
	return "MatMul"
}

func (m *matMul) forward(inputs ...*Tensor) *Tensor {
	return inputs[0].matMul(inputs[1], false, false)
}

func (m *matMul) backward(dy *Tensor) []*Tensor {
	dx0 := dy.matMul(m.inputs[1], false, true)
	dx1 := m.inputs[0].matMul(dy, true, false)
	return []*Tensor{dx0, dx1}
}

type sigmoid struct {
	opBase
}

func (s *sigmoid) String() string {
	return "Sigmoid"
}

func (s *sigmoid) forward(inputs ...*Tensor) *Tensor {
	// y = tanh(x * 0.5) * 0.5 + 0.5
	y := inputs[0].clone()
	y.mul(NewScalar(0.5))
	y.tanh()
	y.mul(NewScalar(0.5))
	y.add(NewScalar(0.5))
	return y
}

func (s *sigmoid) backward(dy *Tensor) []*Tensor {
	// dx = dy * y * (1 - y)
	dx := dy.clone()
	dx.mul(s.output)
	one := Ones(s.output.shape...)
	one.sub(s.output)
	dx.mul(one)
	return []*Tensor{dx}
}

// kernel computes the compactly supported radial kernel max(0, 1 - d²) of the
// pairwise Euclidean distances d between two sets of embedding vectors.
type kernel struct {
	opBase
}

func (k *kernel) String() string {
	return "Kernel"
}

func (k *kernel) forward(inputs ...*Tensor) *Tensor {
	u, v := inputs[0], inputs[1]
	nIn, nDim := u.shape[0], u.shape[1]
	nHid := v.shape[0]
	y := Zeros(nIn, nHid)
	for i := 0; i < nIn; i++ {
		for j := 0; j < nHid; j++ {
			dist2 := float32(0)
			for l := 0; l < nDim; l++ {
				diff := u.data[i*nDim+l] - v.data[j*nDim+l]
				dist2 += diff * diff
			}
			if dist2 < 1 {
				y.data[i*nHid+j] = 1 - dist2
			}
		}
	}
	return y
}

func (k *kernel) backward(dy *Tensor) []*Tensor {
	u, v := k.inputs[0], k.inputs[1]
	nIn, nDim := u.shape[0], u.shape[1]
	nHid := v.shape[0]
	du := Zeros(nIn, nDim)
	dv := Zeros(nHid, nDim)
	for i := 0; i < nIn; i++ {
		for j := 0; j < nHid; j++ {
			// zero gradient outside the support
			if k.output.data[i*nHid+j] == 0 {
				continue
			}
			g := dy.data[i*nHid+j]
			for l := 0; l < nDim; l++ {
				diff := u.data[i*nDim+l] - v.data[j*nDim+l]
				du.data[i*nDim+l] -= 2 * diff * g
				dv.data[j*nDim+l] += 2 * diff * g
			}
		}
	}
	return []*Tensor{du, dv}
}

func checkSuffixShape(x0, x1 *Tensor) {
	for i := 0; i < len(x1.shape); i++ {
		if x0.shape[len(x0.shape)-len(x1.shape)+i] != x1.shape[i] {
			panic("the shape of the second tensor must be a suffix sequence of the shape of the first tensor")
		}
	}
}

// Add returns the element-wise sum of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Add(x0, x1 *Tensor) *Tensor {
	if len(x0.shape) < len(x1.shape) {
		x0, x1 = x1, x0
	}
	checkSuffixShape(x0, x1)
	return apply(&add{}, x0, x1)
}

// Sub returns the element-wise difference of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Sub(x0, x1 *Tensor) *Tensor {
	if len(x0.shape) < len(x1.shape) {
		panic("the shape of the second tensor must be a suffix sequence of the shape of the first tensor")
	}
	checkSuffixShape(x0, x1)
	return apply(&sub{}, x0, x1)
}

// Mul returns the element-wise product of two tensors. The shape of the second tensor must be a suffix sequence of the shape of the first tensor.
func Mul(x0, x1 *Tensor) *Tensor {
	if len(x0.shape) < len(x1.shape) {
		x0, x1 = x1, x0
	}
	checkSuffixShape(x0, x1)
	return apply(&mul{}, x0, x1)
}

// Square returns the element-wise square of a tensor.
func Square(x *Tensor) *Tensor {
	return apply(&square{}, x)
}

// Sum returns the sum of all elements in a tensor.
func Sum(x *Tensor) *Tensor {
	return apply(&sum{}, x)
}

// MatMul returns the matrix product of two 2-D tensors.
func MatMul(x, y *Tensor) *Tensor {
	return apply(&matMul{}, x, y)
}

// Sigmoid returns the element-wise logistic sigmoid of a tensor.
func Sigmoid(x *Tensor) *Tensor {
	return apply(&sigmoid{}, x)
}

// Kernel returns the pairwise affinity matrix of two embedding tables. Rows of
// u and v are embedding vectors sharing the same dimensionality; the entry
// (i, j) of the result is max(0, 1 - d²) where d is the Euclidean distance
// between u[i] and v[j]. Entries lie in [0, 1]: exactly 1 where the vectors
// coincide, exactly 0 once they are at least distance 1 apart.
func Kernel(u, v *Tensor) *Tensor {
	if len(u.shape) != 2 || len(v.shape) != 2 {
		panic("Kernel expects 2-D embedding tables")
	}
	if u.shape[1] != v.shape[1] {
		panic("embedding tables must share the same dimensionality")
	}
	return apply(&kernel{}, u, v)
}

// MaskedSquareError returns half the sum of squared differences between truth
// and prediction restricted to the entries where mask is nonzero. Gradients
// with respect to masked-out predictions are exactly zero.
func MaskedSquareError(truth, pred, mask *Tensor) *Tensor {
	return Mul(NewScalar(0.5), Sum(Square(Mul(mask, Sub(truth, pred)))))
}

// Clamp returns a copy of a tensor with every value clipped to [min, max].
// The result is detached from the graph.
func Clamp(x *Tensor, min, max float32) *Tensor {
	y := x.clone()
	for i := range y.data {
		if y.data[i] < min {
			y.data[i] = min
		} else if y.data[i] > max {
			y.data[i] = max
		}
	}
	return y
}
