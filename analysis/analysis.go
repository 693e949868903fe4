// Copyright 2023 ArkFunds-Go

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analysis computes summary statistics over cached fund holdings.
package analysis

import (
	"sort"
	"strconv"

	"github.com/arkfunds/arkfunds-go/db"
	"github.com/stockparfait/errors"
	"gonum.org/v1/gonum/stat"
)

// Concentration summarizes how concentrated a fund's holdings are. Weights
// are in percent, as published by ARK; HHI is the Herfindahl-Hirschman
// index, the sum of squared percent weights (10000 = a single position).
type Concentration struct {
	Fund         string
	NumHoldings  int
	MeanWeight   float64
	StdDevWeight float64
	TopTenWeight float64
	HHI          float64
}

func float2str(x float64) string {
	return strconv.FormatFloat(x, 'f', 4, 64)
}

// CSV returns the row as a slice of strings.
func (c Concentration) CSV() []string {
	return []string{
		c.Fund,
		strconv.Itoa(c.NumHoldings),
		float2str(c.MeanWeight),
		float2str(c.StdDevWeight),
		float2str(c.TopTenWeight),
		float2str(c.HHI),
	}
}

// ConcentrationHeader is the CSV header matching Concentration.CSV().
func ConcentrationHeader() []string {
	return []string{"fund", "holdings", "mean_weight", "stddev_weight",
		"top10_weight", "hhi"}
}

// NewConcentration computes the concentration summary of a fund's holdings.
func NewConcentration(fund string, holdings []db.HoldingRow) Concentration {
	c := Concentration{Fund: fund, NumHoldings: len(holdings)}
	if len(holdings) == 0 {
		return c
	}
	weights := make([]float64, len(holdings))
	for i, h := range holdings {
		weights[i] = h.Weight
	}
	c.MeanWeight = stat.Mean(weights, nil)
	if len(weights) > 1 {
		c.StdDevWeight = stat.StdDev(weights, nil)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))
	for i, w := range weights {
		if i < 10 {
			c.TopTenWeight += w
		}
		c.HHI += w * w
	}
	return c
}

// Concentrations computes the concentration summary for every fund in the
// database matching the constraints, sorted by fund symbol. The constraints
// also filter the holdings of each fund.
func Concentrations(database *db.Database, c *db.Constraints) ([]Concentration, error) {
	funds, err := database.Funds(c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to list funds")
	}
	res := make([]Concentration, len(funds))
	for i, fund := range funds {
		holdings, err := database.Holdings(fund, c)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read holdings for %s", fund)
		}
		res[i] = NewConcentration(fund, holdings)
	}
	return res, nil
}
