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

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/arkfunds/arkfunds-go/message"
	"github.com/stockparfait/errors"
)

// HoldingRowConfig sets the custom headers of an input CSV file for holding
// rows. The defaults match the daily holdings CSV files published by ARK.
type HoldingRowConfig struct {
	Fund        string   `json:"fund" default:"fund"`
	Date        string   `json:"date" default:"date"`
	Company     string   `json:"company" default:"company"`
	Ticker      string   `json:"ticker" default:"ticker"`
	CUSIP       string   `json:"cusip" default:"cusip"`
	Shares      string   `json:"shares" default:"shares"`
	MarketValue string   `json:"market value" default:"market value ($)"`
	SharePrice  string   `json:"share price" default:"share price ($)"`
	Weight      string   `json:"weight" default:"weight (%)"`
	WeightRank  string   `json:"weight rank" default:"weight rank"`
	Header      []string `json:"header"` // for headless CSV
}

var _ message.Message = &HoldingRowConfig{}

// InitMessage implements message.Message.
func (c *HoldingRowConfig) InitMessage(js any) error {
	return errors.Annotate(message.Init(c, js), "failed to init from JSON")
}

func NewHoldingRowConfig() *HoldingRowConfig {
	var c HoldingRowConfig
	if err := c.InitMessage(map[string]any{}); err != nil {
		panic(errors.Annotate(err, "failed to init default HoldingRowConfig"))
	}
	return &c
}

// HasTicker checks the header for the column corresponding to the ticker.
func (c *HoldingRowConfig) HasTicker(header []string) bool {
	for _, h := range header {
		if normalizeHeader(h) == c.Ticker {
			return true
		}
	}
	return false
}

const (
	holdingFund int = iota
	holdingDate
	holdingCompany
	holdingTicker
	holdingCUSIP
	holdingShares
	holdingMarketValue
	holdingSharePrice
	holdingWeight
	holdingWeightRank
	holdingLast // keep it last; not a real field
)

// normalizeHeader lower-cases and trims a CSV header cell. ARK's files have
// changed capitalization over time.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// MapColumns maps the i'th header column to the HoldingRow field index.
// Headers that don't match any configured column are mapped to -1.
func (c *HoldingRowConfig) MapColumns(header []string) []int {
	cols := make([]string, holdingLast)
	cols[holdingFund] = c.Fund
	cols[holdingDate] = c.Date
	cols[holdingCompany] = c.Company
	cols[holdingTicker] = c.Ticker
	cols[holdingCUSIP] = c.CUSIP
	cols[holdingShares] = c.Shares
	cols[holdingMarketValue] = c.MarketValue
	cols[holdingSharePrice] = c.SharePrice
	cols[holdingWeight] = c.Weight
	cols[holdingWeightRank] = c.WeightRank
	m := make([]int, len(header))
	for i, h := range header {
		m[i] = -1
		for j, n := range cols {
			if normalizeHeader(h) == n {
				m[i] = j
				break
			}
		}
	}
	return m
}

// parseFloat parses a numeric CSV cell, tolerating currency formatting such
// as "$1,234,567.89" and an empty cell (= 0).
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	if s == "" {
		return 0.0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Parse converts a CSV row to a HoldingRow using the column map.
func (c *HoldingRowConfig) Parse(row []string, colMap []int) (HoldingRow, error) {
	var hr HoldingRow
	var err error
	for i, r := range row {
		if i >= len(colMap) {
			break
		}
		switch colMap[i] {
		case holdingFund:
			hr.Fund = strings.ToUpper(strings.TrimSpace(r))
		case holdingDate:
			// ARK's files end with an all-empty row before the disclaimer.
			if strings.TrimSpace(r) == "" {
				break
			}
			if hr.Date, err = NewDateFromString(r); err != nil {
				return hr, errors.Annotate(err, "failed to parse date: '%s'", r)
			}
		case holdingCompany:
			hr.Company = strings.TrimSpace(r)
		case holdingTicker:
			hr.Ticker = strings.ToUpper(strings.TrimSpace(r))
		case holdingCUSIP:
			hr.CUSIP = strings.TrimSpace(r)
		case holdingShares:
			if hr.Shares, err = parseFloat(r); err != nil {
				return hr, errors.Annotate(err, "shares should be a number: '%s'", r)
			}
		case holdingMarketValue:
			if hr.MarketValue, err = parseFloat(r); err != nil {
				return hr, errors.Annotate(err, "market value should be a number: '%s'", r)
			}
		case holdingSharePrice:
			if hr.SharePrice, err = parseFloat(r); err != nil {
				return hr, errors.Annotate(err, "share price should be a number: '%s'", r)
			}
		case holdingWeight:
			if hr.Weight, err = parseFloat(r); err != nil {
				return hr, errors.Annotate(err, "weight should be a number: '%s'", r)
			}
		case holdingWeightRank:
			var v float64
			if v, err = parseFloat(r); err != nil {
				return hr, errors.Annotate(err, "weight rank should be a number: '%s'", r)
			}
			hr.WeightRank = int(v)
		}
	}
	return hr, nil
}

// ReadCSVHoldings reads raw CSV and creates a holdings series compatible
// with the Database writer.
//
// When config defines a header, CSV is assumed to be headless; otherwise the
// CSV file must have a header, and it must contain a ticker column. Columns
// with an unrecognized header are ignored. Rows without a ticker (ARK's
// files end with disclaimer text) are skipped. Missing share prices are
// derived from market value and shares, and missing weight ranks are
// assigned by descending weight.
func ReadCSVHoldings(r io.Reader, c *HoldingRowConfig) ([]HoldingRow, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read holdings from CSV")
	}
	header := c.Header
	if len(header) == 0 {
		if len(rows) == 0 {
			return nil, nil
		}
		header = rows[0]
		rows = rows[1:]
	}
	if !c.HasTicker(header) {
		return nil, errors.Reason("holdings CSV requires a '%s' column", c.Ticker)
	}
	colMap := c.MapColumns(header)
	var holdings []HoldingRow
	for i, row := range rows {
		if len(row) < len(header) {
			continue
		}
		hr, err := c.Parse(row, colMap)
		if err != nil {
			return nil, errors.Annotate(err, "failed to parse row %d", i+1)
		}
		if hr.Ticker == "" {
			continue
		}
		if hr.SharePrice == 0 && hr.Shares != 0 {
			hr.SharePrice = hr.MarketValue / hr.Shares
		}
		holdings = append(holdings, hr)
	}
	ranked := false
	for _, h := range holdings {
		if h.WeightRank != 0 {
			ranked = true
			break
		}
	}
	if ranked {
		sort.Slice(holdings, func(i, j int) bool {
			return holdings[i].WeightRank < holdings[j].WeightRank
		})
	} else {
		sort.Slice(holdings, func(i, j int) bool {
			return holdings[i].Weight > holdings[j].Weight
		})
		for i := range holdings {
			holdings[i].WeightRank = i + 1
		}
	}
	return holdings, nil
}

// TradeRowConfig sets the custom headers of an input CSV file for trade
// rows. The defaults match ARK's trade notification files.
type TradeRowConfig struct {
	Fund       string   `json:"fund" default:"fund"`
	Date       string   `json:"date" default:"date"`
	Direction  string   `json:"direction" default:"direction"`
	Ticker     string   `json:"ticker" default:"ticker"`
	Company    string   `json:"company" default:"company"`
	CUSIP      string   `json:"cusip" default:"cusip"`
	Shares     string   `json:"shares" default:"shares"`
	ETFPercent string   `json:"etf percent" default:"% of etf"`
	Header     []string `json:"header"` // for headless CSV
}

var _ message.Message = &TradeRowConfig{}

// InitMessage implements message.Message.
func (c *TradeRowConfig) InitMessage(js any) error {
	return errors.Annotate(message.Init(c, js), "failed to init from JSON")
}

func NewTradeRowConfig() *TradeRowConfig {
	var c TradeRowConfig
	if err := c.InitMessage(map[string]any{}); err != nil {
		panic(errors.Annotate(err, "failed to init default TradeRowConfig"))
	}
	return &c
}

// HasTicker checks the header for the column corresponding to the ticker.
func (c *TradeRowConfig) HasTicker(header []string) bool {
	for _, h := range header {
		if normalizeHeader(h) == c.Ticker {
			return true
		}
	}
	return false
}

const (
	tradeFund int = iota
	tradeDate
	tradeDirection
	tradeTicker
	tradeCompany
	tradeCUSIP
	tradeShares
	tradeETFPercent
	tradeLast // keep it last; not a real field
)

// MapColumns maps the i'th header column to the TradeRow field index.
func (c *TradeRowConfig) MapColumns(header []string) []int {
	cols := make([]string, tradeLast)
	cols[tradeFund] = c.Fund
	cols[tradeDate] = c.Date
	cols[tradeDirection] = c.Direction
	cols[tradeTicker] = c.Ticker
	cols[tradeCompany] = c.Company
	cols[tradeCUSIP] = c.CUSIP
	cols[tradeShares] = c.Shares
	cols[tradeETFPercent] = c.ETFPercent
	m := make([]int, len(header))
	for i, h := range header {
		m[i] = -1
		for j, n := range cols {
			if normalizeHeader(h) == n {
				m[i] = j
				break
			}
		}
	}
	return m
}

// titleDirection canonicalizes a trade direction cell: "BUY" -> "Buy".
func titleDirection(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Parse converts a CSV row to a TradeRow using the column map.
func (c *TradeRowConfig) Parse(row []string, colMap []int) (TradeRow, error) {
	var tr TradeRow
	var err error
	for i, r := range row {
		if i >= len(colMap) {
			break
		}
		switch colMap[i] {
		case tradeFund:
			tr.Fund = strings.ToUpper(strings.TrimSpace(r))
		case tradeDate:
			if strings.TrimSpace(r) == "" {
				break
			}
			if tr.Date, err = NewDateFromString(r); err != nil {
				return tr, errors.Annotate(err, "failed to parse date: '%s'", r)
			}
		case tradeDirection:
			tr.Direction = titleDirection(r)
		case tradeTicker:
			tr.Ticker = strings.ToUpper(strings.TrimSpace(r))
		case tradeCompany:
			tr.Company = strings.TrimSpace(r)
		case tradeCUSIP:
			tr.CUSIP = strings.TrimSpace(r)
		case tradeShares:
			if tr.Shares, err = parseFloat(r); err != nil {
				return tr, errors.Annotate(err, "shares should be a number: '%s'", r)
			}
		case tradeETFPercent:
			if tr.ETFPercent, err = parseFloat(r); err != nil {
				return tr, errors.Annotate(err, "%% of etf should be a number: '%s'", r)
			}
		}
	}
	return tr, nil
}

// ReadCSVTrades reads raw CSV and creates a trades series compatible with
// the Database writer. Header handling is the same as in ReadCSVHoldings.
// Rows are sorted by (date, ticker).
func ReadCSVTrades(r io.Reader, c *TradeRowConfig) ([]TradeRow, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read trades from CSV")
	}
	header := c.Header
	if len(header) == 0 {
		if len(rows) == 0 {
			return nil, nil
		}
		header = rows[0]
		rows = rows[1:]
	}
	if !c.HasTicker(header) {
		return nil, errors.Reason("trades CSV requires a '%s' column", c.Ticker)
	}
	colMap := c.MapColumns(header)
	var trades []TradeRow
	for i, row := range rows {
		if len(row) < len(header) {
			continue
		}
		tr, err := c.Parse(row, colMap)
		if err != nil {
			return nil, errors.Annotate(err, "failed to parse row %d", i+1)
		}
		if tr.Ticker == "" {
			continue
		}
		trades = append(trades, tr)
	}
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Date != trades[j].Date {
			return trades[i].Date.Before(trades[j].Date)
		}
		return trades[i].Ticker < trades[j].Ticker
	})
	return trades, nil
}
