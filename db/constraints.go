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

package db

import "strings"

// Constraints to filter funds, holdings and trades. Zero value means no
// constraints.
type Constraints struct {
	Funds      map[string]struct{}
	Tickers    map[string]struct{}
	Directions map[string]struct{} // lower-case: "buy", "sell"
	MinWeight  float64             // minimum holding weight, in percent
	Start      Date
	End        Date
}

// NewConstraints creates a new Constraints with no constraints.
func NewConstraints() *Constraints {
	return &Constraints{
		Funds:      make(map[string]struct{}),
		Tickers:    make(map[string]struct{}),
		Directions: make(map[string]struct{}),
	}
}

// Fund adds fund symbols to the constraints.
func (c *Constraints) Fund(funds ...string) *Constraints {
	for _, f := range funds {
		c.Funds[strings.ToUpper(f)] = struct{}{}
	}
	return c
}

// Ticker adds holding/trade tickers to the constraints.
func (c *Constraints) Ticker(tickers ...string) *Constraints {
	for _, t := range tickers {
		c.Tickers[strings.ToUpper(t)] = struct{}{}
	}
	return c
}

// Direction adds trade directions to the constraints.
func (c *Constraints) Direction(directions ...string) *Constraints {
	for _, d := range directions {
		c.Directions[strings.ToLower(d)] = struct{}{}
	}
	return c
}

// WeightAtLeast adds a minimum holding weight to the constraints.
func (c *Constraints) WeightAtLeast(weight float64) *Constraints {
	c.MinWeight = weight
	return c
}

// StartAt adds start date to the Constraints.
func (c *Constraints) StartAt(dt Date) *Constraints {
	c.Start = dt
	return c
}

// EndAt adds end date to the Constraints.
func (c *Constraints) EndAt(dt Date) *Constraints {
	c.End = dt
	return c
}

// CheckFund whether the fund symbol satisfies the constraints.
func (c *Constraints) CheckFund(fund string) bool {
	if len(c.Funds) == 0 {
		return true
	}
	_, ok := c.Funds[strings.ToUpper(fund)]
	return ok
}

// checkTicker whether the ticker satisfies the constraints.
func (c *Constraints) checkTicker(ticker string) bool {
	if len(c.Tickers) == 0 {
		return true
	}
	_, ok := c.Tickers[strings.ToUpper(ticker)]
	return ok
}

// CheckDate checks that the date is within the constrained range. Both ends
// are inclusive; a zero constraint date is ignored.
func (c *Constraints) CheckDate(dt Date) bool {
	if !c.Start.IsZero() && dt.Before(c.Start) {
		return false
	}
	if !c.End.IsZero() && dt.After(c.End) {
		return false
	}
	return true
}

// CheckHolding whether it satisfies the constraints.
func (c *Constraints) CheckHolding(r HoldingRow) bool {
	if !c.CheckFund(r.Fund) || !c.checkTicker(r.Ticker) || !c.CheckDate(r.Date) {
		return false
	}
	return r.Weight >= c.MinWeight
}

// CheckTrade whether it satisfies the constraints.
func (c *Constraints) CheckTrade(r TradeRow) bool {
	if !c.CheckFund(r.Fund) || !c.checkTicker(r.Ticker) || !c.CheckDate(r.Date) {
		return false
	}
	if len(c.Directions) == 0 {
		return true
	}
	_, ok := c.Directions[strings.ToLower(r.Direction)]
	return ok
}
