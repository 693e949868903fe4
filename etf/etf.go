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

// Package etf implements the ARK ETF endpoints of the arkfunds.io API:
// profile, holdings, trades, news and performance, plus bulk download of
// fund data into the local cache.
package etf

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arkfunds/arkfunds-go/api"
	"github.com/arkfunds/arkfunds-go/db"
	"github.com/arkfunds/arkfunds-go/message"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// TradePeriods are the valid values of the period argument of Trades.
var TradePeriods = []string{"1d", "7d", "1m", "3m", "1y", "ytd"}

func checkFund(symbol string) error {
	if !api.IsFund(symbol) {
		return errors.Reason("invalid fund symbol %s; symbols accepted: %s",
			symbol, strings.Join(api.Funds, ", "))
	}
	return nil
}

type profileResponse struct {
	Symbol  string     `json:"symbol"`
	Profile db.FundRow `json:"profile"`
}

// Profile downloads the profile of an ARK ETF. It returns nil when the
// server has no data for the fund.
func Profile(ctx context.Context, symbol string) (*db.FundRow, error) {
	if err := checkFund(symbol); err != nil {
		return nil, errors.Annotate(err, "Profile")
	}
	var resp profileResponse
	found, err := api.NewQuery("/etf/profile").Symbol(symbol).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download profile for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	if resp.Profile.Symbol == "" {
		resp.Profile.Symbol = symbol
	}
	return &resp.Profile, nil
}

type holdingsResponse struct {
	Symbol   string          `json:"symbol"`
	Date     db.Date         `json:"date"`
	Holdings []db.HoldingRow `json:"holdings"`
}

// Holdings downloads the holdings of an ARK ETF, optionally for a specific
// past date. A zero date requests the latest holdings.
func Holdings(ctx context.Context, symbol string, date db.Date) ([]db.HoldingRow, error) {
	if err := checkFund(symbol); err != nil {
		return nil, errors.Annotate(err, "Holdings")
	}
	var resp holdingsResponse
	found, err := api.NewQuery("/etf/holdings").Symbol(symbol).Date(date).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download holdings for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	for i := range resp.Holdings {
		if resp.Holdings[i].Fund == "" {
			resp.Holdings[i].Fund = symbol
		}
		if resp.Holdings[i].Date.IsZero() {
			resp.Holdings[i].Date = resp.Date
		}
	}
	return resp.Holdings, nil
}

type tradesResponse struct {
	Symbol string        `json:"symbol"`
	Trades []db.TradeRow `json:"trades"`
}

// Trades downloads the intraday trades of an ARK ETF for the given period,
// one of TradePeriods. An empty period defaults to "1d".
func Trades(ctx context.Context, symbol string, period string) ([]db.TradeRow, error) {
	if err := checkFund(symbol); err != nil {
		return nil, errors.Annotate(err, "Trades")
	}
	if period == "" {
		period = "1d"
	}
	if !message.StringIn(period, TradePeriods...) {
		return nil, errors.Reason("invalid period %s; valid periods: %s",
			period, strings.Join(TradePeriods, ", "))
	}
	var resp tradesResponse
	found, err := api.NewQuery("/etf/trades").Symbol(symbol).Period(period).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download trades for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	for i := range resp.Trades {
		if resp.Trades[i].Fund == "" {
			resp.Trades[i].Fund = symbol
		}
	}
	return resp.Trades, nil
}

// NewsItem is a single news article related to an ARK ETF.
type NewsItem struct {
	ID       int64   `json:"id"`
	Datetime db.Time `json:"datetime"`
	Related  string  `json:"related"`
	Source   string  `json:"source"`
	Headline string  `json:"headline"`
	Summary  string  `json:"summary"`
	URL      string  `json:"url"`
	Image    string  `json:"image"`
}

// CSV returns the row as a slice of strings.
func (n NewsItem) CSV() []string {
	return []string{
		strconv.FormatInt(n.ID, 10),
		n.Datetime.String(),
		n.Related,
		n.Source,
		n.Headline,
		n.Summary,
		n.URL,
		n.Image,
	}
}

// NewsHeader is the CSV header matching NewsItem.CSV().
func NewsHeader() []string {
	return []string{"id", "datetime", "related", "source", "headline",
		"summary", "url", "image"}
}

type newsResponse struct {
	Symbol string     `json:"symbol"`
	News   []NewsItem `json:"news"`
}

// News downloads news articles related to an ARK ETF, optionally within the
// [from, to] date range. Zero dates are not constrained.
func News(ctx context.Context, symbol string, from, to db.Date) ([]NewsItem, error) {
	if err := checkFund(symbol); err != nil {
		return nil, errors.Annotate(err, "News")
	}
	var resp newsResponse
	found, err := api.NewQuery("/etf/news").Symbol(symbol).From(from).To(to).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download news for %s", symbol)
	}
	if !found {
		return nil, nil
	}
	for i := range resp.News {
		if resp.News[i].Related == "" {
			resp.News[i].Related = symbol
		}
	}
	return resp.News, nil
}

// PerformanceRow is a single fund performance figure: a return over a period
// as of a date, from one of the three sections of the performance endpoint
// (Overview, TrailingReturns or AnnualReturns).
type PerformanceRow struct {
	Fund     string
	Datatype string
	AsOfDate db.Date
	Period   string
	Return   string
}

// CSV returns the row as a slice of strings.
func (p PerformanceRow) CSV() []string {
	return []string{p.Fund, p.Datatype, p.AsOfDate.String(), p.Period, p.Return}
}

// PerformanceHeader is the CSV header matching PerformanceRow.CSV().
func PerformanceHeader() []string {
	return []string{"fund", "datatype", "as_of_date", "period", "return"}
}

type annualReturn struct {
	Year  int `json:"year"`
	Value any `json:"value"`
}

type performanceData struct {
	Overview        map[string]any `json:"overview"`
	TrailingReturns map[string]any `json:"trailingReturns"`
	AnnualReturns   []annualReturn `json:"annualReturns"`
}

type performanceResponse struct {
	Symbol      string            `json:"symbol"`
	Performance []performanceData `json:"performance"`
}

// returnString renders a return value from the JSON payload. Unformatted
// responses carry numbers, formatted ones strings like "4.54%"; missing
// values become the empty string.
func returnString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// flattenSection converts a single section of the performance payload into
// rows, one per period, sorted by period name. The asOfDate key is the date
// of the entire section, not a period.
func flattenSection(fund, datatype string, section map[string]any) ([]PerformanceRow, error) {
	var asOf db.Date
	if s, ok := section["asOfDate"].(string); ok && s != "" {
		var err error
		asOf, err = db.NewDateFromString(s)
		if err != nil {
			return nil, errors.Annotate(err, "invalid asOfDate in %s section", datatype)
		}
	}
	periods := make([]string, 0, len(section))
	for k := range section {
		if k != "asOfDate" {
			periods = append(periods, k)
		}
	}
	sort.Strings(periods)

	rows := make([]PerformanceRow, len(periods))
	for i, p := range periods {
		rows[i] = PerformanceRow{
			Fund:     fund,
			Datatype: datatype,
			AsOfDate: asOf,
			Period:   p,
			Return:   returnString(section[p]),
		}
	}
	return rows, nil
}

// Performance downloads the performance figures of an ARK ETF and flattens
// the nested payload into long-format rows. With formatted=true the server
// returns display strings such as "4.54%" instead of raw numbers.
func Performance(ctx context.Context, symbol string, formatted bool) ([]PerformanceRow, error) {
	if err := checkFund(symbol); err != nil {
		return nil, errors.Annotate(err, "Performance")
	}
	var resp performanceResponse
	found, err := api.NewQuery("/etf/performance").Symbol(symbol).Formatted(formatted).Fetch(ctx, &resp)
	if err != nil {
		return nil, errors.Annotate(err, "failed to download performance for %s", symbol)
	}
	if !found || len(resp.Performance) == 0 {
		return nil, nil
	}
	fund := resp.Symbol
	if fund == "" {
		fund = symbol
	}
	perf := resp.Performance[0]

	var rows []PerformanceRow
	overview, err := flattenSection(fund, "Overview", perf.Overview)
	if err != nil {
		return nil, errors.Annotate(err, "failed to flatten performance for %s", symbol)
	}
	rows = append(rows, overview...)

	trailing, err := flattenSection(fund, "TrailingReturns", perf.TrailingReturns)
	if err != nil {
		return nil, errors.Annotate(err, "failed to flatten performance for %s", symbol)
	}
	rows = append(rows, trailing...)

	for _, a := range perf.AnnualReturns {
		rows = append(rows, PerformanceRow{
			Fund:     fund,
			Datatype: "AnnualReturns",
			AsOfDate: db.NewDate(uint16(a.Year), 12, 31),
			Period:   strconv.Itoa(a.Year),
			Return:   returnString(a.Value),
		})
	}
	return rows, nil
}

// Dataset accumulates downloaded fund data before saving it to the local
// cache.
type Dataset struct {
	Funds    map[string]db.FundRow
	Holdings map[string][]db.HoldingRow
	Trades   map[string][]db.TradeRow
}

func NewDataset() *Dataset {
	return &Dataset{
		Funds:    make(map[string]db.FundRow),
		Holdings: make(map[string][]db.HoldingRow),
		Trades:   make(map[string][]db.TradeRow),
	}
}

// Fetch downloads the profile, current holdings and trades for each fund.
// Funds unknown to the server are skipped with a warning.
func (d *Dataset) Fetch(ctx context.Context, funds []string, tradePeriod string) error {
	if err := api.CheckFunds(funds); err != nil {
		return errors.Annotate(err, "Dataset.Fetch")
	}
	for _, fund := range funds {
		logging.Infof(ctx, "downloading %s", fund)
		profile, err := Profile(ctx, fund)
		if err != nil {
			return errors.Annotate(err, "Dataset.Fetch")
		}
		if profile == nil {
			logging.Warningf(ctx, "no data for %s, skipping", fund)
			continue
		}
		d.Funds[fund] = *profile

		holdings, err := Holdings(ctx, fund, db.Date{})
		if err != nil {
			return errors.Annotate(err, "Dataset.Fetch")
		}
		logging.Infof(ctx, "%s: %d holdings", fund, len(holdings))
		d.Holdings[fund] = holdings

		trades, err := Trades(ctx, fund, tradePeriod)
		if err != nil {
			return errors.Annotate(err, "Dataset.Fetch")
		}
		logging.Infof(ctx, "%s: %d trades", fund, len(trades))
		d.Trades[fund] = trades
	}
	return nil
}

// WriteDatabase saves the dataset to the cache directory and recomputes the
// cache metadata.
func (d *Dataset) WriteDatabase(ctx context.Context, cachePath string) error {
	database := db.NewDatabase(cachePath)
	if err := database.WriteFunds(d.Funds); err != nil {
		return errors.Annotate(err, "failed to write funds")
	}
	for fund, holdings := range d.Holdings {
		if err := database.WriteHoldings(fund, holdings); err != nil {
			return errors.Annotate(err, "failed to write holdings for %s", fund)
		}
	}
	for fund, trades := range d.Trades {
		if err := database.WriteTrades(fund, trades); err != nil {
			return errors.Annotate(err, "failed to write trades for %s", fund)
		}
	}
	m, err := database.ComputeMetadata()
	if err != nil {
		return errors.Annotate(err, "failed to compute metadata")
	}
	logging.Infof(ctx, "saved %d funds, %d holdings, %d trades in %s",
		m.NumFunds, m.NumHoldings, m.NumTrades, cachePath)
	return nil
}

// DownloadAll downloads profiles, holdings and trades for the listed funds
// and saves them in the cache directory.
func DownloadAll(ctx context.Context, cachePath string, funds []string, tradePeriod string) error {
	d := NewDataset()
	if err := d.Fetch(ctx, funds, tradePeriod); err != nil {
		return errors.Annotate(err, "DownloadAll")
	}
	if err := d.WriteDatabase(ctx, cachePath); err != nil {
		return errors.Annotate(err, "DownloadAll")
	}
	return nil
}
