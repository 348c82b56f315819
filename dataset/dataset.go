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

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base"
	"github.com/tonyfromundefined/kernelNet-MovieLens/base/log"
	"github.com/tonyfromundefined/kernelNet-MovieLens/nn"
	"go.uber.org/zap"
)

// Entries smaller than observedEpsilon count as unobserved. A rating matrix
// encodes missing entries as zero.
const observedEpsilon = 1e-12

// Rating is one observed entry of the rating matrix.
type Rating struct {
	UserIndex int
	ItemIndex int
	Value     float32
}

// Dataset holds the rating records of a ratings file with user and item
// identifiers remapped to dense indices.
type Dataset struct {
	UserDict *Dict
	ItemDict *Dict
	Ratings  []Rating
}

func (d *Dataset) CountUsers() int {
	return d.UserDict.Count()
}

func (d *Dataset) CountItems() int {
	return d.ItemDict.Count()
}

func (d *Dataset) CountRatings() int {
	return len(d.Ratings)
}

// LoadRatings reads a ratings table of `user sep item sep rating` rows. The
// separator may span multiple bytes (MovieLens uses "::"), which rules out
// encoding/csv. Trailing fields such as timestamps are ignored.
func LoadRatings(path, sep string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()

	data := &Dataset{
		UserDict: NewDict(),
		ItemDict: NewDict(),
	}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, sep)
		if len(fields) < 3 {
			return nil, errors.Errorf("%s:%d: expected at least 3 fields, got %d", path, line, len(fields))
		}
		value, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.Annotatef(err, "%s:%d: malformed rating", path, line)
		}
		data.Ratings = append(data.Ratings, Rating{
			UserIndex: data.UserDict.Id(fields[0]),
			ItemIndex: data.ItemDict.Id(fields[1]),
			Value:     float32(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load ratings",
		zap.String("path", path),
		zap.Int("n_users", data.CountUsers()),
		zap.Int("n_items", data.CountItems()),
		zap.Int("n_ratings", data.CountRatings()))
	return data, nil
}

// Split shuffles the rating records with a generator seeded by seed and
// scatters them into two dense matrices of shape (users, items): the first
// floor(validFrac*n)+1 records become the validation matrix, the rest the
// training matrix. The extra record keeps compatibility with the historical
// splitter. Observed entries of the two matrices never overlap.
func (d *Dataset) Split(validFrac float64, seed int64) (train, valid *nn.Tensor) {
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(len(d.Ratings))
	numValid := int(validFrac*float64(len(d.Ratings))) + 1
	if numValid > len(d.Ratings) {
		numValid = len(d.Ratings)
	}
	train = nn.Zeros(d.CountUsers(), d.CountItems())
	valid = nn.Zeros(d.CountUsers(), d.CountItems())
	for i, j := range perm {
		r := d.Ratings[j]
		target := train
		if i < numValid {
			target = valid
		}
		target.Data()[r.UserIndex*d.CountItems()+r.ItemIndex] = r.Value
	}
	return train, valid
}

// Mask derives the observation mask of a rating matrix: 1 where the entry is
// observed, 0 elsewhere.
func Mask(r *nn.Tensor) *nn.Tensor {
	m := nn.Zeros(r.Shape()...)
	for i, v := range r.Data() {
		if v > observedEpsilon {
			m.Data()[i] = 1
		}
	}
	return m
}
