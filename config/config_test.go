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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonyfromundefined/kernelNet-MovieLens/model"
)

const configText = `[data]
path = "ml-1m/ratings.dat"
valid_frac = 0.2

[model]
n_hidden = 256
n_layers = 3
lambda_sparse = 0.006
random_state = 42
use_gpu = true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte(configText), 0644))

	conf, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "ml-1m/ratings.dat", conf.Data.Path)
	assert.Equal(t, 0.2, conf.Data.ValidFrac)
	assert.Equal(t, 256, conf.Model.NHidden)
	assert.Equal(t, 3, conf.Model.NLayers)
	assert.InDelta(t, 0.006, conf.Model.LambdaSparse, 1e-9)
	assert.Equal(t, int64(42), conf.Model.RandomState)
	assert.True(t, conf.Model.UseGPU)

	// unset keys fall back to defaults
	assert.Equal(t, "::", conf.Data.Separator)
	assert.Equal(t, 5, conf.Model.NEmbedDim)
	assert.InDelta(t, 60.0, conf.Model.LambdaWeight, 1e-9)
	assert.Equal(t, 50, conf.Model.OutputEvery)
	assert.Equal(t, "summary.txt", conf.Model.SummaryPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	c := ModelConfig{
		NHidden:      128,
		NEmbedDim:    4,
		NLayers:      1,
		LambdaSparse: 0.01,
		LambdaWeight: 20,
		OutputEvery:  10,
		RandomState:  7,
	}
	params := c.Params()
	assert.Equal(t, 128, params.GetInt(model.NHidden, 0))
	assert.Equal(t, 4, params.GetInt(model.NEmbedDim, 0))
	assert.Equal(t, 1, params.GetInt(model.NLayers, 0))
	assert.InDelta(t, 0.01, params.GetFloat32(model.LambdaSparse, 0), 1e-6)
	assert.InDelta(t, 20, params.GetFloat32(model.LambdaWeight, 0), 1e-6)
	assert.Equal(t, 10, params.GetInt(model.OutputEvery, 0))
	assert.Equal(t, int64(7), params.GetInt64(model.RandomState, 0))
}
