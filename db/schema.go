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
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stockparfait/errors"
)

func parseTime(s string) (time.Time, error) {
	if s == "0000-00-00" || s == "0000-00-00T00:00:00.000" {
		return time.Time{}, nil
	}
	formats := []string{
		"2006-01-02 15:04:05.999",
		"2006-01-02T15:04:05.999",
		"2006-01-02T15:04:05.999Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"01/02/2006", // ARK's published CSV files
	}
	var err error
	for _, f := range formats {
		var tm time.Time
		tm, err = time.Parse(f, s)
		if err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

// Date records a calendar date as year, month and day. The struct is designed
// to fit into 4 bytes.
type Date struct {
	YearVal  uint16
	MonthVal uint8
	DayVal   uint8
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = &Date{}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewDateFromTime creates a Date instance from a time.Time value in UTC.
func NewDateFromTime(t time.Time) Date {
	return Date{
		YearVal:  uint16(t.Year()),
		MonthVal: uint8(t.Month()),
		DayVal:   uint8(t.Day()),
	}
}

// NewDateFromString creates a Date instance from a string representation.
func NewDateFromString(s string) (Date, error) {
	t, err := parseTime(s)
	if err != nil {
		return Date{}, errors.Annotate(err, "failed to parse a Date string: '%s'", s)
	}
	return NewDateFromTime(t), nil
}

// DateInNY returns today's date in New York timezone, where ARK publishes
// its daily holdings.
func DateInNY(now time.Time) Date {
	tz := "America/New_York"
	location, err := time.LoadLocation(tz)
	if err != nil {
		panic(errors.Annotate(err, "failed to load timezone %s", tz))
	}
	return NewDateFromTime(now.In(location))
}

func (d Date) Year() uint16 { return d.YearVal }
func (d Date) Month() uint8 { return d.MonthVal }
func (d Date) Day() uint8   { return d.DayVal }

// String representation of the value.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. NOTE: unlike other methods, this
// is a pointer method. A JSON null is accepted as the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Date JSON must be a string")
	}
	date, err := NewDateFromString(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse Date string")
	}
	*d = date
	return nil
}

// ToTime converts Date to Time in UTC.
func (d Date) ToTime() time.Time {
	return time.Date(int(d.Year()), time.Month(d.Month()), int(d.Day()), 0, 0, 0, 0, time.UTC)
}

// Before compares two Date objects for strict inequality (self < d2).
func (d Date) Before(d2 Date) bool {
	if d.Year() != d2.Year() {
		return d.Year() < d2.Year()
	}
	if d.Month() != d2.Month() {
		return d.Month() < d2.Month()
	}
	return d.Day() < d2.Day()
}

// After compares two Date objects for strict inequality, self > d2.
func (d Date) After(d2 Date) bool {
	return d2.Before(d)
}

// IsZero checks whether the date has a zero value.
func (d Date) IsZero() bool {
	return d.Year() == 0 && d.Month() == 0 && d.Day() == 0
}

// InRange checks if d is in the inclusive date range. Any of the bounds may
// be zero value, in which case it's ignored.
func (d Date) InRange(start, end Date) bool {
	if d.IsZero() {
		return false
	}
	if !start.IsZero() && start.After(d) {
		return false
	}
	if !end.IsZero() && end.Before(d) {
		return false
	}
	return true
}

// MinDate returns the earliest date from the list, or zero value.
func MinDate(dates ...Date) Date {
	var min Date
	for _, d := range dates {
		if min.IsZero() || (!d.IsZero() && min.After(d)) {
			min = d
		}
	}
	return min
}

// MaxDate returns the latest date from the list, or zero value.
func MaxDate(dates ...Date) Date {
	var max Date
	for _, d := range dates {
		if max.IsZero() || (!d.IsZero() && max.Before(d)) {
			max = d
		}
	}
	return max
}

// Time is a wrapper around time.Time with JSON methods. It is used for
// intraday timestamps such as news publication times.
type Time time.Time

var _ json.Marshaler = &Time{}
var _ json.Unmarshaler = &Time{}

func NewTime(year, month, day, hour, minute, second int) *Time {
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return (*Time)(&t)
}

// String representation of Time.
func (t *Time) String() string {
	return time.Time(*t).Format("2006-01-02 15:04:05")
}

// MarshalJSON implements json.Marshaler.
func (t *Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Time(time.Time{})
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Time JSON must be a string")
	}
	tm, err := parseTime(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse time string: '%s'", s)
	}
	*t = Time(tm)
	return nil
}

// float2str prints a float in a plain decimal notation, suitable for CSV.
func float2str(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FundRow is a row in the funds table: the profile of a single ARK ETF. The
// JSON tags match the arkfunds.io /etf/profile payload, so the API response
// decodes directly into this type.
type FundRow struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	FundType      string `json:"fund_type"`
	InceptionDate Date   `json:"inception_date"`
	CUSIP         string `json:"cusip"`
	ISIN          string `json:"isin"`
	Website       string `json:"website"`
}

// FundRowHeader is the table header for FundRow.
func FundRowHeader() []string {
	return []string{"symbol", "name", "description", "fund_type",
		"inception_date", "cusip", "isin", "website"}
}

// CSV implements table.Row.
func (r FundRow) CSV() []string {
	return []string{r.Symbol, r.Name, r.Description, r.FundType,
		r.InceptionDate.String(), r.CUSIP, r.ISIN, r.Website}
}

// TestFund creates a FundRow for use in tests.
func TestFund(symbol, name string, inception Date) FundRow {
	return FundRow{
		Symbol:        symbol,
		Name:          name,
		FundType:      "Active ETF",
		InceptionDate: inception,
	}
}

// HoldingRow is a row in a fund's holdings table. The JSON tags match the
// arkfunds.io /etf/holdings payload.
type HoldingRow struct {
	Fund        string  `json:"fund"`
	Date        Date    `json:"date"`
	Company     string  `json:"company"`
	Ticker      string  `json:"ticker"`
	CUSIP       string  `json:"cusip"`
	Shares      float64 `json:"shares"`
	MarketValue float64 `json:"market_value"`
	SharePrice  float64 `json:"share_price"`
	Weight      float64 `json:"weight"`
	WeightRank  int     `json:"weight_rank"`
}

// HoldingRowHeader is the table header for HoldingRow.
func HoldingRowHeader() []string {
	return []string{"fund", "date", "company", "ticker", "cusip", "shares",
		"market_value", "share_price", "weight", "weight_rank"}
}

// CSV implements table.Row.
func (r HoldingRow) CSV() []string {
	return []string{r.Fund, r.Date.String(), r.Company, r.Ticker, r.CUSIP,
		float2str(r.Shares), float2str(r.MarketValue), float2str(r.SharePrice),
		float2str(r.Weight), strconv.Itoa(r.WeightRank)}
}

// TestHolding creates a HoldingRow for use in tests.
func TestHolding(fund string, date Date, ticker string, weight float64, rank int) HoldingRow {
	return HoldingRow{
		Fund:       fund,
		Date:       date,
		Ticker:     ticker,
		Weight:     weight,
		WeightRank: rank,
	}
}

// TradeRow is a row in a fund's trades table. The JSON tags match the
// arkfunds.io /etf/trades payload.
type TradeRow struct {
	Fund       string  `json:"fund"`
	Date       Date    `json:"date"`
	Direction  string  `json:"direction"` // "buy" or "sell"; matched case-insensitively
	Ticker     string  `json:"ticker"`
	Company    string  `json:"company"`
	CUSIP      string  `json:"cusip"`
	Shares     float64 `json:"shares"`
	ETFPercent float64 `json:"etf_percent"`
}

// TradeRowHeader is the table header for TradeRow.
func TradeRowHeader() []string {
	return []string{"fund", "date", "direction", "ticker", "company", "cusip",
		"shares", "etf_percent"}
}

// CSV implements table.Row.
func (r TradeRow) CSV() []string {
	return []string{r.Fund, r.Date.String(), r.Direction, r.Ticker, r.Company,
		r.CUSIP, float2str(r.Shares), float2str(r.ETFPercent)}
}

// TestTrade creates a TradeRow for use in tests.
func TestTrade(fund string, date Date, direction, ticker string, shares float64) TradeRow {
	return TradeRow{
		Fund:      fund,
		Date:      date,
		Direction: direction,
		Ticker:    ticker,
		Shares:    shares,
	}
}

// Metadata is the schema for the metadata.json file of a local cache.
type Metadata struct {
	Start       Date `json:"start"` // the earliest cached data date
	End         Date `json:"end"`   // the latest cached data date
	NumFunds    int  `json:"num_funds"`
	NumHoldings int  `json:"num_holdings"`
	NumTrades   int  `json:"num_trades"`
}
