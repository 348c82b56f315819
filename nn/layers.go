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

	"github.com/chewxy/math32"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
)

// Layer is a network layer whose forward pass yields both an output tensor
// and a scalar regularization penalty to be accumulated by the caller.
type Layer interface {
	Parameters() []*Tensor
	Forward(x *Tensor) (y, penalty *Tensor)
}

// KernelLayer is a dense layer whose weight matrix is gated elementwise by a
// compactly supported kernel of two learned embedding tables. Connections
// between input and hidden units whose embedding vectors drift at least
// distance 1 apart in embedding space are fully suppressed.
type KernelLayer struct {
	W *Tensor // raw weights, in × out
	B *Tensor // bias, out
	U *Tensor // input-side embeddings, in × dim
	V *Tensor // output-side embeddings, out × dim

	activation func(*Tensor) *Tensor
	lambdaS    float32
	lambda2    float32
}

// KernelLayerConfig bundles the construction parameters of a KernelLayer.
type KernelLayerConfig struct {
	In         int
	Out        int
	Dim        int
	LambdaS    float32
	Lambda2    float32
	Activation func(*Tensor) *Tensor // nil for identity
}

const embeddingInitStdDev = 1e-3

// NewKernelLayer creates a KernelLayer. Weights are drawn from a normal
// distribution with standard deviation 1/sqrt(in); both embedding tables start
// as truncated normal noise of magnitude 1e-3 so that every connection begins
// inside the kernel support.
func NewKernelLayer(config KernelLayerConfig, rng base.RandomGenerator) *KernelLayer {
	if config.In <= 0 || config.Out <= 0 || config.Dim <= 0 {
		panic(fmt.Sprintf("invalid kernel layer shape: in=%d out=%d dim=%d", config.In, config.Out, config.Dim))
	}
	return &KernelLayer{
		W:          Normal(rng, 0, 1/math32.Sqrt(float32(config.In)), config.In, config.Out).RequireGrad(),
		B:          Zeros(config.Out).RequireGrad(),
		U:          TruncatedNormal(rng, 0, embeddingInitStdDev, config.In, config.Dim).RequireGrad(),
		V:          TruncatedNormal(rng, 0, embeddingInitStdDev, config.Out, config.Dim).RequireGrad(),
		activation: config.Activation,
		lambdaS:    config.LambdaS,
		lambda2:    config.Lambda2,
	}
}

func (l *KernelLayer) Parameters() []*Tensor {
	return []*Tensor{l.W, l.B, l.U, l.V}
}

// In returns the input width of the layer.
func (l *KernelLayer) In() int {
	return l.W.shape[0]
}

// Out returns the output width of the layer.
func (l *KernelLayer) Out() int {
	return l.W.shape[1]
}

// Gate returns the current gating matrix without touching the graph.
func (l *KernelLayer) Gate() *Tensor {
	return Kernel(l.U, l.V).NoGrad()
}

// Forward applies the layer to x of shape (batch, in). The penalty is the sum
// of the sparsifying term on the gating matrix and weight decay on the raw
// weights.
func (l *KernelLayer) Forward(x *Tensor) (*Tensor, *Tensor) {
	if len(x.shape) != 2 || x.shape[1] != l.W.shape[0] {
		panic(fmt.Sprintf("kernel layer expects input of width %d, got shape %v", l.W.shape[0], x.shape))
	}
	wHat := Kernel(l.U, l.V)
	sparseReg := Mul(NewScalar(0.5*l.lambdaS), Sum(Square(wHat)))
	l2Reg := Mul(NewScalar(0.5*l.lambda2), Sum(Square(l.W)))
	wEff := Mul(l.W, wHat)
	y := Add(MatMul(x, wEff), l.B)
	if l.activation != nil {
		y = l.activation(y)
	}
	return y, Add(sparseReg, l2Reg)
}

// Network is an ordered stack of kernelized layers ending in an identity
// output layer whose width equals the number of rating-matrix columns.
type Network struct {
	layers []*KernelLayer
}

// NetworkConfig bundles the construction parameters of a Network.
type NetworkConfig struct {
	NumInputs int
	NumHidden int
	NumLayers int
	NumDim    int
	LambdaS   float32
	Lambda2   float32
}

// NewNetwork stacks NumLayers sigmoid hidden layers of width NumHidden and a
// final identity layer mapping back to NumInputs columns.
func NewNetwork(config NetworkConfig, rng base.RandomGenerator) *Network {
	layers := make([]*KernelLayer, 0, config.NumLayers+1)
	width := config.NumInputs
	for i := 0; i < config.NumLayers; i++ {
		layers = append(layers, NewKernelLayer(KernelLayerConfig{
			In:         width,
			Out:        config.NumHidden,
			Dim:        config.NumDim,
			LambdaS:    config.LambdaS,
			Lambda2:    config.Lambda2,
			Activation: Sigmoid,
		}, rng))
		width = config.NumHidden
	}
	layers = append(layers, NewKernelLayer(KernelLayerConfig{
		In:      width,
		Out:     config.NumInputs,
		Dim:     config.NumDim,
		LambdaS: config.LambdaS,
		Lambda2: config.Lambda2,
	}, rng))
	return &Network{layers: layers}
}

// Layers returns the layers of the network in order.
func (n *Network) Layers() []*KernelLayer {
	return n.layers
}

func (n *Network) Parameters() []*Tensor {
	var params []*Tensor
	for _, l := range n.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// Forward reconstructs the rating matrix x and returns the summed
// regularization penalty of all layers.
func (n *Network) Forward(x *Tensor) (*Tensor, *Tensor) {
	reg := NewScalar(0)
	for _, l := range n.layers {
		var penalty *Tensor
		x, penalty = l.Forward(x)
		reg = Add(reg, penalty)
	}
	return x, reg
}
