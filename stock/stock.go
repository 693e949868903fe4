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

// Package stock implements the stock endpoints of the arkfunds.io API:
// company profile, ARK fund ownership, ARK trades in the stock, and the
// current price. Unlike the etf package, symbols are not restricted to a
// known list; the server responds with 404 for symbols it does not track,
// which all methods report as a nil result with no error.
package stock

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/arkfunds/arkfunds-go/api"
	"github.com/arkfunds/arkfunds-go/db"
	"github.com/arkfunds/arkfunds-go/message"
	"github.com/stockparfait/errors"
)

func float2str(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Profile is the company profile of a stock.
type Profile struct {
	Ticker            string  `json:"ticker"`
	Name              string  `json:"name"`
	Country           string  `json:"country"`
	Industry          string  `json:"industry"`
	Sector            string  `json:"sector"`
	FullTimeEmployees int64   `json:"fullTimeEmployees"`
	Summary           string  `json:"summary"`
	Website           string  `json:"website"`
	Exchange          string  `json:"exchange"`
	Currency          string  `json:"currency"`
	MarketCap         float64 `json:"marketCap"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
}

// CSV returns the row as a slice of strings.
func (p Profile) CSV() []string {
	return []string{
		p.Ticker,
		p.Name,
		p.Country,
		p.Industry,
		p.Sector,
		strconv.FormatInt(p.FullTimeEmployees, 10),
		p.Summary,
		p.Website,
		p.Exchange,
		p.Currency,
		float2str(p.MarketCap),
		float2str(p.SharesOutstanding),
	}
}

// ProfileHeader is the CSV header matching Profile.CSV().
func ProfileHeader() []string {
	return []string{"ticker", "name", "country", "industry", "sector",
		"fullTimeEmployees", "summary", "website", "exchange", "currency",
		"marketCap", "sharesOutstanding"}
}

type profileResponse struct {
	Symbol  string   `json:"symbol"`
	Profile *Profile `json:"profile"`
}

// GetProfile downloads the company profile of a stock. With price=true the
// server includes the current share price data in the profile. A nil result
// with no error means the server does not track the symbol.
func GetProfile(ctx context.Context, symbol string, price bool) (*Profile, error) {
	var resp profileResponse
	found, err := api.NewQuery("/stock/profile").Symbol(symbol).Price(price).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download profile for %s", symbol)
	}
	if !found || resp.Profile == nil {
		return nil, nil
	}
	if resp.Profile.Ticker == "" {
		resp.Profile.Ticker = symbol
	}
	return resp.Profile, nil
}

// Ownership is the position of a single ARK fund in a stock on a date.
type Ownership struct {
	Ticker      string  `json:"ticker"`
	Date        db.Date `json:"date"`
	Fund        string  `json:"fund"`
	Weight      float64 `json:"weight"`
	WeightRank  int     `json:"weight_rank"`
	Shares      float64 `json:"shares"`
	MarketValue float64 `json:"market_value"`
}

// CSV returns the row as a slice of strings.
func (o Ownership) CSV() []string {
	return []string{
		o.Ticker,
		o.Date.String(),
		o.Fund,
		float2str(o.Weight),
		strconv.Itoa(o.WeightRank),
		float2str(o.Shares),
		float2str(o.MarketValue),
	}
}

// OwnershipHeader is the CSV header matching Ownership.CSV().
func OwnershipHeader() []string {
	return []string{"ticker", "date", "fund", "weight", "weight_rank",
		"shares", "market_value"}
}

type ownershipDay struct {
	Date      db.Date     `json:"date"`
	Ownership []Ownership `json:"ownership"`
}

type ownershipResponse struct {
	Symbol string         `json:"symbol"`
	Data   []ownershipDay `json:"data"`
}

// FundOwnership downloads the ARK fund positions in a stock, optionally
// within the [from, to] date range and limited to the last limit days. The
// per-day nested payload is flattened into rows sorted by (ticker, date,
// weight rank).
func FundOwnership(ctx context.Context, symbol string, from, to db.Date, limit int) ([]Ownership, error) {
	var resp ownershipResponse
	q := api.NewQuery("/stock/fund-ownership").Symbol(symbol).From(from).To(to).Limit(limit)
	found, err := q.Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download fund ownership for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	var rows []Ownership
	for _, day := range resp.Data {
		for _, o := range day.Ownership {
			o.Ticker = symbol
			if o.Date.IsZero() {
				o.Date = day.Date
			}
			rows = append(rows, o)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ticker != rows[j].Ticker {
			return rows[i].Ticker < rows[j].Ticker
		}
		if rows[i].Date != rows[j].Date {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].WeightRank < rows[j].WeightRank
	})
	return rows, nil
}

// Trade is a single ARK trade in a stock.
type Trade struct {
	Ticker     string  `json:"ticker"`
	Date       db.Date `json:"date"`
	Fund       string  `json:"fund"`
	Direction  string  `json:"direction"`
	Shares     float64 `json:"shares"`
	ETFPercent float64 `json:"etf_percent"`
}

// CSV returns the row as a slice of strings.
func (t Trade) CSV() []string {
	return []string{
		t.Ticker,
		t.Date.String(),
		t.Fund,
		t.Direction,
		float2str(t.Shares),
		float2str(t.ETFPercent),
	}
}

// TradeHeader is the CSV header matching Trade.CSV().
func TradeHeader() []string {
	return []string{"ticker", "date", "fund", "direction", "shares",
		"etf_percent"}
}

type tradesResponse struct {
	Symbol string  `json:"symbol"`
	Trades []Trade `json:"trades"`
}

// Trades downloads the ARK trades in a stock. The direction filters for
// "buy" or "sell" trades (case-insensitive); an empty direction returns
// both. Optional [from, to] date range and a limit on the number of rows.
func Trades(ctx context.Context, symbol, direction string, from, to db.Date, limit int) ([]Trade, error) {
	direction = strings.ToLower(direction)
	if direction != "" && !message.StringIn(direction, "buy", "sell") {
		return nil, errors.Reason(
			"invalid direction '%s'; valid directions: buy, sell", direction)
	}
	var resp tradesResponse
	q := api.NewQuery("/stock/trades").Symbol(symbol).Direction(direction).
		From(from).To(to).Limit(limit)
	found, err := q.Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download trades for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	for i := range resp.Trades {
		resp.Trades[i].Ticker = symbol
	}
	return resp.Trades, nil
}

// Price is the current price snapshot of a stock.
type Price struct {
	Ticker    string
	Exchange  string
	Currency  string
	Price     float64
	Change    float64
	ChangeP   float64
	LastTrade db.Time
}

// CSV returns the row as a slice of strings.
func (p Price) CSV() []string {
	return []string{
		p.Ticker,
		p.Exchange,
		p.Currency,
		float2str(p.Price),
		float2str(p.Change),
		float2str(p.ChangeP),
		p.LastTrade.String(),
	}
}

// PriceHeader is the CSV header matching Price.CSV().
func PriceHeader() []string {
	return []string{"ticker", "exchange", "currency", "price", "change",
		"changep", "last_trade"}
}

// Pointer fields distinguish a missing value from a zero. The server
// responds with 200 and all-null fields for symbols it knows but has no
// price data for.
type priceResponse struct {
	Symbol    string   `json:"symbol"`
	Exchange  *string  `json:"exchange"`
	Currency  *string  `json:"currency"`
	Price     *float64 `json:"price"`
	Change    *float64 `json:"change"`
	ChangeP   *float64 `json:"changep"`
	LastTrade *db.Time `json:"last_trade"`
}

func (r priceResponse) empty() bool {
	return r.Exchange == nil && r.Currency == nil && r.Price == nil &&
		r.Change == nil && r.ChangeP == nil && r.LastTrade == nil
}

// GetPrice downloads the current price snapshot of a stock. A nil result
// with no error means the server has no price data for the symbol.
func GetPrice(ctx context.Context, symbol string) (*Price, error) {
	var resp priceResponse
	found, err := api.NewQuery("/stock/price").Symbol(symbol).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download price for %s", symbol)
	}
	if !found || resp.empty() {
		return nil, nil
	}
	p := Price{Ticker: symbol}
	if resp.Exchange != nil {
		p.Exchange = *resp.Exchange
	}
	if resp.Currency != nil {
		p.Currency = *resp.Currency
	}
	if resp.Price != nil {
		p.Price = *resp.Price
	}
	if resp.Change != nil {
		p.Change = *resp.Change
	}
	if resp.ChangeP != nil {
		p.ChangeP = *resp.ChangeP
	}
	if resp.LastTrade != nil {
		p.LastTrade = *resp.LastTrade
	}
	return &p, nil
}
