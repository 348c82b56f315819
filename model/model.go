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
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
)

// Model is the interface of all matrix completion models.
type Model interface {
	// SetParams sets hyper-parameters.
	SetParams(params Params)
	// GetParams returns hyper-parameters.
	GetParams() Params
	// GetParamsGrid returns candidate hyper-parameters for search.
	GetParamsGrid(withSize bool) ParamsGrid
	// Clear drops model weights.
	Clear()
	// Invalid reports whether the model carries no trained weights.
	Invalid() bool
}

// BaseModel hosts hyper-parameters and the per-run random generator shared by
// every model implementation.
type BaseModel struct {
	Params    Params
	rng       base.RandomGenerator
	randState int64
}

// SetParams sets hyper-parameters for the BaseModel.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
	model.randState = model.Params.GetInt64(RandomState, 0)
	model.rng = base.NewRandomGenerator(model.randState)
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// GetRandomGenerator returns the per-run random generator.
func (model *BaseModel) GetRandomGenerator() base.RandomGenerator {
	return model.rng
}

// GetRandomState returns the seed of the per-run random generator.
func (model *BaseModel) GetRandomState() int64 {
	return model.randState
}
