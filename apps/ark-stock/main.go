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

package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/arkfunds/arkfunds-go/api"
	"github.com/arkfunds/arkfunds-go/db"
	"github.com/arkfunds/arkfunds-go/stock"
	"github.com/arkfunds/arkfunds-go/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

type Flags struct {
	Symbols  string // required; comma or space separated stock tickers
	LogLevel logging.Level
	// Exactly one of profile, ownership, trades or price.
	Profile   bool
	Ownership bool
	Trades    bool
	Price     bool
	WithPrice bool    // include current share price in profiles
	Direction string  // filter trades: buy or sell
	From      db.Date // ownership / trades from-date
	To        db.Date // ownership / trades to-date
	Limit     int     // limit the number of rows; 0 = no limit
	CSV       bool    // dump CSV format; default: text
}

func dateVar(fs *flag.FlagSet, d *db.Date, name, usage string) {
	fs.Func(name, usage, func(s string) error {
		var err error
		*d, err = db.NewDateFromString(s)
		return err
	})
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("ark-stock", flag.ExitOnError)
	fs.StringVar(&flags.Symbols, "symbols", "", "stock tickers (required)")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Profile, "profile", false, "print company profiles")
	fs.BoolVar(&flags.Ownership, "ownership", false, "print ARK fund ownership")
	fs.BoolVar(&flags.Trades, "trades", false, "print ARK trades in the stocks")
	fs.BoolVar(&flags.Price, "price", false, "print current prices")
	fs.BoolVar(&flags.WithPrice, "with-price", false,
		"include current share price in profiles")
	fs.StringVar(&flags.Direction, "direction", "", "filter trades: buy or sell")
	dateVar(fs, &flags.From, "from", "from-date, e.g. 2021-09-01")
	dateVar(fs, &flags.To, "to", "to-date")
	fs.IntVar(&flags.Limit, "limit", 0, "limit the number of rows; 0 = no limit")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Symbols == "" {
		return nil, errors.Reason("missing required -symbols argument")
	}
	kinds := 0
	for _, b := range []bool{flags.Profile, flags.Ownership, flags.Trades,
		flags.Price} {
		if b {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.Reason(
			"expected exactly one of -profile, -ownership, -trades or -price")
	}
	return &flags, err
}

func profileTable(ctx context.Context, symbols []string, withPrice bool) (*table.Table, error) {
	tbl := table.NewTable(stock.ProfileHeader()...)
	for _, s := range symbols {
		p, err := stock.GetProfile(ctx, s, withPrice)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch profile for %s", s)
		}
		if p == nil {
			logging.Warningf(ctx, "no profile for %s, skipping", s)
			continue
		}
		tbl.AddRow(*p)
	}
	return tbl, nil
}

func ownershipTable(ctx context.Context, symbols []string, flags *Flags) (*table.Table, error) {
	tbl := table.NewTable(stock.OwnershipHeader()...)
	for _, s := range symbols {
		rows, err := stock.FundOwnership(ctx, s, flags.From, flags.To, flags.Limit)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch fund ownership for %s", s)
		}
		for _, r := range rows {
			tbl.AddRow(r)
		}
	}
	return tbl, nil
}

func tradesTable(ctx context.Context, symbols []string, flags *Flags) (*table.Table, error) {
	tbl := table.NewTable(stock.TradeHeader()...)
	for _, s := range symbols {
		trades, err := stock.Trades(ctx, s, flags.Direction, flags.From, flags.To,
			flags.Limit)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch trades for %s", s)
		}
		for _, tr := range trades {
			tbl.AddRow(tr)
		}
	}
	return tbl, nil
}

func priceTable(ctx context.Context, symbols []string) (*table.Table, error) {
	tbl := table.NewTable(stock.PriceHeader()...)
	for _, s := range symbols {
		p, err := stock.GetPrice(ctx, s)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch price for %s", s)
		}
		if p == nil {
			logging.Warningf(ctx, "no price data for %s, skipping", s)
			continue
		}
		tbl.AddRow(*p)
	}
	return tbl, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	symbols := api.ParseSymbols(flags.Symbols)
	if len(symbols) == 0 {
		return errors.Reason("no symbols in -symbols: '%s'", flags.Symbols)
	}
	ctx = api.UseClient(ctx)

	var tbl *table.Table
	var err error
	switch {
	case flags.Profile:
		tbl, err = profileTable(ctx, symbols, flags.WithPrice)
	case flags.Ownership:
		tbl, err = ownershipTable(ctx, symbols, flags)
	case flags.Trades:
		tbl, err = tradesTable(ctx, symbols, flags)
	case flags.Price:
		tbl, err = priceTable(ctx, symbols)
	}
	if err != nil {
		return errors.Annotate(err, "failed to fetch data")
	}
	if flags.CSV {
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
		return nil
	}
	if err := tbl.WriteText(w, table.Params{}); err != nil {
		return errors.Annotate(err, "failed to print text")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := printData(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
