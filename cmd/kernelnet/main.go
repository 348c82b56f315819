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

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base/log"
	"github.com/tonyfromundefined/kernelNet-MovieLens/config"
	"github.com/tonyfromundefined/kernelNet-MovieLens/dataset"
	"github.com/tonyfromundefined/kernelNet-MovieLens/model"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "kernelnet",
	Short: "Complete a sparse rating matrix with a kernel-sparsified autoencoder.",
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)
		configPath, _ := cmd.PersistentFlags().GetString("config")
		conf, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if conf.Model.UseGPU {
			log.Logger().Warn("GPU acceleration is not available, training on CPU")
		}
		data, err := dataset.LoadRatings(conf.Data.Path, conf.Data.Separator)
		if err != nil {
			return err
		}
		trainSet, validSet := data.Split(conf.Data.ValidFrac, conf.Model.RandomState)
		verbose, _ := cmd.PersistentFlags().GetBool("verbose")
		fitConfig := model.NewFitConfig().
			SetVerbose(verbose).
			SetSummary(conf.Model.SummaryPath, strings.Join(os.Args[1:], " "))
		kernelNet := model.NewKernelNet(conf.Model.Params())
		score, err := kernelNet.Fit(cmd.Context(), trainSet, validSet, fitConfig)
		if err != nil {
			return err
		}
		log.Logger().Info("run complete",
			zap.Float32("validation_rmse", score.RMSE),
			zap.Float32("train_rmse", score.TrainRMSE))
		return nil
	},
}

func init() {
	rootCommand.PersistentFlags().String("config", "config.toml", "path of configuration file")
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().Bool("verbose", false, "print optimizer progress")
	log.AddFlags(rootCommand.PersistentFlags())
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
