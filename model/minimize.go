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

package model

import (
	"github.com/juju/errors"
	"github.com/tonyfromundefined/kernelNet-MovieLens/nn"
	"gonum.org/v1/gonum/optimize"
)

// MinimizeOptions configures a bounded descent pass of a Minimizer.
type MinimizeOptions struct {
	// MaxIterations caps the number of internal descent iterations.
	MaxIterations int
	// HistorySize is the quasi-Newton correction history size.
	HistorySize int
	// Verbose prints per-iteration progress.
	Verbose bool
}

// Minimizer performs a bounded number of descent iterations on a scalar
// objective, updating the given parameter tensors in place. The call blocks
// until the iteration budget is exhausted or the objective converges; any
// internal failure (divergence, failed line search) surfaces as an error and
// is never retried.
type Minimizer interface {
	Minimize(objective func() *nn.Tensor, params []*nn.Tensor, options MinimizeOptions) (float32, error)
}

// LBFGS minimizes the objective with gonum's limited-memory BFGS method. The
// correctness of the line search belongs to gonum, not to this package.
type LBFGS struct{}

func (LBFGS) Minimize(objective func() *nn.Tensor, params []*nn.Tensor, options MinimizeOptions) (float32, error) {
	size := 0
	for _, p := range params {
		size += len(p.Data())
	}
	x0 := make([]float64, size)
	gather(params, x0)

	evaluate := func(x []float64) *nn.Tensor {
		scatter(x, params)
		for _, p := range params {
			p.ZeroGrad()
		}
		return objective()
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return float64(evaluate(x).Data()[0])
		},
		Grad: func(grad, x []float64) {
			loss := evaluate(x)
			loss.Backward()
			offset := 0
			for _, p := range params {
				for _, g := range p.Grad().Data() {
					grad[offset] = float64(g)
					offset++
				}
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations: options.MaxIterations,
	}
	if options.Verbose {
		settings.Recorder = optimize.NewPrinter()
	}
	method := &optimize.LBFGS{Store: options.HistorySize}
	result, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil {
		return 0, errors.Trace(err)
	}
	scatter(result.X, params)
	return float32(result.F), nil
}

func gather(params []*nn.Tensor, x []float64) {
	offset := 0
	for _, p := range params {
		for _, v := range p.Data() {
			x[offset] = float64(v)
			offset++
		}
	}
}

func scatter(x []float64, params []*nn.Tensor) {
	offset := 0
	for _, p := range params {
		data := p.Data()
		for i := range data {
			data[i] = float32(x[offset])
			offset++
		}
	}
}
