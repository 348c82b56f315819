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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base/log"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base/progress"
	"github.com/tonyfromundefined/kernelNet-MovieLens/dataset"
	"github.com/tonyfromundefined/kernelNet-MovieLens/nn"
	"go.uber.org/zap"
)

// Predicted ratings are clipped to the valid rating range.
const (
	MinRating float32 = 1
	MaxRating float32 = 5
)

// Score is the result of fitting a model.
type Score struct {
	RMSE      float32 // root-mean-squared error on observed validation entries
	TrainRMSE float32 // root-mean-squared error on observed training entries
}

type FitConfig struct {
	Optimizer   Minimizer
	HistorySize int    // quasi-Newton correction history size
	Verbose     bool   // print optimizer progress
	SummaryPath string // append-only run summary log, empty to disable
	SummaryArgs string // run arguments recorded in the summary line
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Optimizer:   LBFGS{},
		HistorySize: 10,
	}
}

func (config *FitConfig) SetVerbose(verbose bool) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetSummary(path, args string) *FitConfig {
	config.SummaryPath = path
	config.SummaryArgs = args
	return config
}

// KernelNet completes a sparse rating matrix with a stack of kernel-sparsified
// dense layers trained full-batch against a masked reconstruction loss.
//
// Hyper-parameters:
//
//	NHidden      - width of hidden layers. Default is 500.
//	NEmbedDim    - dimensionality of the gating embeddings. Default is 5.
//	NLayers      - number of sigmoid hidden layers. Default is 2.
//	LambdaSparse - sparsifying penalty on the gating matrix. Default is 0.013.
//	LambdaWeight - weight decay on the raw weights. Default is 60.
//	OutputEvery  - optimizer steps between validations. Default is 50.
type KernelNet struct {
	BaseModel
	Network *nn.Network
	// Hyper parameters
	nHid        int
	nDim        int
	nLayers     int
	lambdaS     float32
	lambda2     float32
	outputEvery int
}

// NewKernelNet creates a KernelNet model.
func NewKernelNet(params Params) *KernelNet {
	k := new(KernelNet)
	k.SetParams(params)
	return k
}

// SetParams sets hyper-parameters of the KernelNet model.
func (k *KernelNet) SetParams(params Params) {
	k.BaseModel.SetParams(params)
	k.nHid = k.Params.GetInt(NHidden, 500)
	k.nDim = k.Params.GetInt(NEmbedDim, 5)
	k.nLayers = k.Params.GetInt(NLayers, 2)
	k.lambdaS = k.Params.GetFloat32(LambdaSparse, 0.013)
	k.lambda2 = k.Params.GetFloat32(LambdaWeight, 60)
	k.outputEvery = k.Params.GetInt(OutputEvery, 50)
}

func (k *KernelNet) GetParamsGrid(withSize bool) ParamsGrid {
	return ParamsGrid{
		NHidden:      lo.If(withSize, []interface{}{128, 256, 500}).Else([]interface{}{500}),
		NEmbedDim:    []interface{}{2, 5, 10},
		NLayers:      []interface{}{1, 2, 3},
		LambdaSparse: []interface{}{0.001, 0.006, 0.013, 0.05},
		LambdaWeight: []interface{}{20.0, 60.0, 100.0},
	}
}

// Clear drops the trained network.
func (k *KernelNet) Clear() {
	k.Network = nil
}

func (k *KernelNet) Invalid() bool {
	return k == nil || k.Network == nil
}

// Predict reconstructs the full rating matrix from the (zero-filled) input
// matrix x and clips the result to the valid rating range. The forward pass
// holds no randomness: identical parameters and input give identical output.
func (k *KernelNet) Predict(x *nn.Tensor) *nn.Tensor {
	pred, _ := k.Network.Forward(x)
	return nn.Clamp(pred.NoGrad(), MinRating, MaxRating)
}

// Fit trains the model against trainSet with validation on validSet. Both are
// dense rating matrices of identical shape with zero as "unobserved" and
// disjoint observed entries; the masks are derived here. Training runs
// nLayers*10 outer iterations, each calling the optimizer for up to
// OutputEvery internal steps on the full training matrix, then reporting the
// clipped RMSE on both observed sets. There is no early stopping and no
// checkpointing: a failed run is restarted from scratch.
func (k *KernelNet) Fit(ctx context.Context, trainSet, validSet *nn.Tensor, config *FitConfig) (Score, error) {
	if config == nil {
		config = NewFitConfig()
	}
	trainShape, validShape := trainSet.Shape(), validSet.Shape()
	if len(trainShape) != 2 || len(validShape) != 2 {
		return Score{}, errors.Errorf("rating matrices must be 2-D, got %v and %v", trainShape, validShape)
	}
	if trainShape[0] != validShape[0] || trainShape[1] != validShape[1] {
		return Score{}, errors.Errorf("train and validation shapes differ: %v vs %v", trainShape, validShape)
	}
	log.Logger().Info("fit kernelnet",
		zap.Ints("shape", trainShape),
		zap.Any("params", k.GetParams()),
		zap.Any("config", config))
	k.Network = nn.NewNetwork(nn.NetworkConfig{
		NumInputs: trainShape[1],
		NumHidden: k.nHid,
		NumLayers: k.nLayers,
		NumDim:    k.nDim,
		LambdaS:   k.lambdaS,
		Lambda2:   k.lambda2,
	}, k.GetRandomGenerator())

	trainMask := dataset.Mask(trainSet)
	validMask := dataset.Mask(validSet)
	objective := func() *nn.Tensor {
		pred, reg := k.Network.Forward(trainSet)
		return nn.Add(nn.MaskedSquareError(trainSet, pred, trainMask), reg)
	}

	var score Score
	outerIterations := k.nLayers * 10
	_, span := progress.Start(ctx, "KernelNet.Fit", outerIterations)
	for epoch := 1; epoch <= outerIterations; epoch++ {
		fitStart := time.Now()
		loss, err := config.Optimizer.Minimize(objective, k.Network.Parameters(), MinimizeOptions{
			MaxIterations: k.outputEvery,
			HistorySize:   config.HistorySize,
			Verbose:       config.Verbose,
		})
		if err != nil {
			span.Fail(err)
			return Score{}, errors.Trace(err)
		}
		fitTime := time.Since(fitStart)
		pred := k.Predict(trainSet)
		score = Score{
			RMSE:      maskedRMSE(validSet, pred, validMask),
			TrainRMSE: maskedRMSE(trainSet, pred, trainMask),
		}
		log.Logger().Info(fmt.Sprintf("fit kernelnet %v/%v", epoch, outerIterations),
			zap.String("fit_time", fitTime.String()),
			zap.Float32("loss", loss),
			zap.Float32("train_rmse", score.TrainRMSE),
			zap.Float32("validation_rmse", score.RMSE))
		span.Add(1)
	}
	span.End()
	log.Logger().Info("fit kernelnet complete",
		zap.Float32("train_rmse", score.TrainRMSE),
		zap.Float32("validation_rmse", score.RMSE))
	if config.SummaryPath != "" {
		if err := AppendRunSummary(config.SummaryPath, config.SummaryArgs, score, k.GetRandomState()); err != nil {
			return score, errors.Trace(err)
		}
	}
	return score, nil
}

// maskedRMSE computes the root-mean-squared error between truth and pred over
// the entries where mask is nonzero.
func maskedRMSE(truth, pred, mask *nn.Tensor) float32 {
	var sum, count float32
	truthData, predData, maskData := truth.Data(), pred.Data(), mask.Data()
	for i := range maskData {
		if maskData[i] != 0 {
			diff := truthData[i] - predData[i]
			sum += diff * diff
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math32.Sqrt(sum / count)
}

// AppendRunSummary appends one line describing a completed run to the
// append-only summary log: the run arguments, the final validation and
// training RMSE, and the run's random seed.
func AppendRunSummary(path, args string, score Score, seed int64) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	line := fmt.Sprintf("%s %v %v %v\n", strings.TrimSpace(args), score.RMSE, score.TrainRMSE, seed)
	if _, err := f.WriteString(line); err != nil {
		return errors.Trace(err)
	}
	return nil
}
