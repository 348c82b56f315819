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
	"github.com/juju/errors"
	"github.com/spf13/viper"
	"github.com/tonyfromundefined/kernelNet-MovieLens/model"
)

// Config is the configuration of a training run.
type Config struct {
	Data  DataConfig  `mapstructure:"data"`
	Model ModelConfig `mapstructure:"model"`
}

type DataConfig struct {
	Path      string  `mapstructure:"path"`      // ratings file
	Separator string  `mapstructure:"separator"` // field separator, may be multi-byte
	ValidFrac float64 `mapstructure:"valid_frac"`
}

type ModelConfig struct {
	NHidden      int     `mapstructure:"n_hidden"`
	NEmbedDim    int     `mapstructure:"n_embed_dim"`
	NLayers      int     `mapstructure:"n_layers"`
	LambdaSparse float64 `mapstructure:"lambda_sparse"`
	LambdaWeight float64 `mapstructure:"lambda_weight"`
	OutputEvery  int     `mapstructure:"output_every"`
	RandomState  int64   `mapstructure:"random_state"`
	// UseGPU is accepted for compatibility with older run scripts. GPU
	// acceleration is not available.
	UseGPU      bool   `mapstructure:"use_gpu"`
	SummaryPath string `mapstructure:"summary_path"`
}

func setDefault(v *viper.Viper) {
	v.SetDefault("data.separator", "::")
	v.SetDefault("data.valid_frac", 0.1)
	v.SetDefault("model.n_hidden", 500)
	v.SetDefault("model.n_embed_dim", 5)
	v.SetDefault("model.n_layers", 2)
	v.SetDefault("model.lambda_sparse", 0.013)
	v.SetDefault("model.lambda_weight", 60.0)
	v.SetDefault("model.output_every", 50)
	v.SetDefault("model.random_state", 0)
	v.SetDefault("model.summary_path", "summary.txt")
}

// Load reads a TOML configuration file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	return &config, nil
}

// Params converts the model section to hyper-parameters.
func (c ModelConfig) Params() model.Params {
	return model.Params{
		model.NHidden:      c.NHidden,
		model.NEmbedDim:    c.NEmbedDim,
		model.NLayers:      c.NLayers,
		model.LambdaSparse: c.LambdaSparse,
		model.LambdaWeight: c.LambdaWeight,
		model.OutputEvery:  c.OutputEvery,
		model.RandomState:  c.RandomState,
	}
}
