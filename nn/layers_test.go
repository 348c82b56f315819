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

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
)

func frobenius(t *Tensor) float32 {
	var sum float32
	for _, v := range t.Data() {
		sum += v * v
	}
	return math32.Sqrt(sum)
}

func TestKernelLayerForward(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	layer := NewKernelLayer(KernelLayerConfig{
		In:         4,
		Out:        3,
		Dim:        5,
		LambdaS:    0.01,
		Lambda2:    0.1,
		Activation: Sigmoid,
	}, rng)
	assert.Equal(t, 4, layer.In())
	assert.Equal(t, 3, layer.Out())
	assert.Len(t, layer.Parameters(), 4)

	x := Uniform(rng, 0, 5, 2, 4)
	y, penalty := layer.Forward(x)
	assert.Equal(t, []int{2, 3}, y.Shape())
	assert.Empty(t, penalty.Shape())
	assert.Greater(t, penalty.Data()[0], float32(0))
	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}

	// wrong input width is a build-time configuration error
	assert.Panics(t, func() { layer.Forward(Zeros(2, 5)) })
}

func TestGatingOnlyAttenuates(t *testing.T) {
	rng := base.NewRandomGenerator(7)
	layer := NewKernelLayer(KernelLayerConfig{In: 10, Out: 8, Dim: 3, LambdaS: 0.01, Lambda2: 0.1}, rng)
	// spread the embeddings so parts of the gate close
	layer.U = Uniform(rng, -1, 1, 10, 3)
	layer.V = Uniform(rng, -1, 1, 8, 3)

	gate := layer.Gate()
	wEff := layer.W.clone().mul(gate)
	assert.LessOrEqual(t, frobenius(wEff), frobenius(layer.W))

	// gated weights vanish wherever the gate closes
	for i := range gate.Data() {
		if gate.Data()[i] == 0 {
			assert.Equal(t, float32(0), wEff.Data()[i])
		}
	}
}

func TestForwardIdempotent(t *testing.T) {
	rng := base.NewRandomGenerator(3)
	layer := NewKernelLayer(KernelLayerConfig{In: 6, Out: 4, Dim: 2, LambdaS: 0.01, Lambda2: 0.1, Activation: Sigmoid}, rng)
	x := Uniform(rng, 0, 5, 3, 6)
	y0, p0 := layer.Forward(x)
	y1, p1 := layer.Forward(x)
	assert.Equal(t, y0.Data(), y1.Data())
	assert.Equal(t, p0.Data(), p1.Data())
}

func TestNetworkShapes(t *testing.T) {
	rng := base.NewRandomGenerator(0)
	network := NewNetwork(NetworkConfig{
		NumInputs: 12,
		NumHidden: 5,
		NumLayers: 2,
		NumDim:    3,
		LambdaS:   0.01,
		Lambda2:   0.1,
	}, rng)
	layers := network.Layers()
	assert.Len(t, layers, 3)
	assert.Equal(t, 12, layers[0].In())
	assert.Equal(t, 5, layers[0].Out())
	assert.Equal(t, 5, layers[1].In())
	assert.Equal(t, 5, layers[1].Out())
	assert.Equal(t, 5, layers[2].In())
	assert.Equal(t, 12, layers[2].Out())
	// every layer contributes W, B, U, V
	assert.Len(t, network.Parameters(), 12)

	x := Uniform(rng, 0, 5, 7, 12)
	y, reg := network.Forward(x)
	assert.Equal(t, []int{7, 12}, y.Shape())
	assert.Greater(t, reg.Data()[0], float32(0))
}

func TestNetworkGradientReachesAllParameters(t *testing.T) {
	rng := base.NewRandomGenerator(1)
	network := NewNetwork(NetworkConfig{
		NumInputs: 4,
		NumHidden: 3,
		NumLayers: 1,
		NumDim:    2,
		LambdaS:   0.01,
		Lambda2:   0.1,
	}, rng)
	x := Uniform(rng, 0, 5, 2, 4)
	y, reg := network.Forward(x)
	Add(Sum(Square(y)), reg).Backward()
	for _, p := range network.Parameters() {
		assert.NotNil(t, p.Grad())
	}
}
