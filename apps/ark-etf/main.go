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
	"github.com/arkfunds/arkfunds-go/etf"
	"github.com/arkfunds/arkfunds-go/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

type Flags struct {
	Symbols  string // required; comma or space separated ARK fund symbols
	LogLevel logging.Level
	// Exactly one of profile, holdings, trades, news or performance.
	Profile     bool
	Holdings    bool
	Trades      bool
	News        bool
	Performance bool
	Date        db.Date // holdings as of this date
	Period      string  // trades period
	From        db.Date // news from-date
	To          db.Date // news to-date
	Formatted   bool    // formatted performance values
	CSV         bool    // dump CSV format; default: text
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
	fs := flag.NewFlagSet("ark-etf", flag.ExitOnError)
	fs.StringVar(&flags.Symbols, "symbols", "", "ARK fund symbols (required)")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Profile, "profile", false, "print fund profiles")
	fs.BoolVar(&flags.Holdings, "holdings", false, "print fund holdings")
	fs.BoolVar(&flags.Trades, "trades", false, "print fund trades")
	fs.BoolVar(&flags.News, "news", false, "print fund news")
	fs.BoolVar(&flags.Performance, "performance", false, "print fund performance")
	dateVar(fs, &flags.Date, "date", "holdings date, e.g. 2021-09-03")
	fs.StringVar(&flags.Period, "period", "1d", "trades period: 1d, 7d, 1m, 3m, 1y, ytd")
	dateVar(fs, &flags.From, "from", "news from-date")
	dateVar(fs, &flags.To, "to", "news to-date")
	fs.BoolVar(&flags.Formatted, "formatted", false, "formatted performance values")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if flags.Symbols == "" {
		return nil, errors.Reason("missing required -symbols argument")
	}
	kinds := 0
	for _, b := range []bool{flags.Profile, flags.Holdings, flags.Trades,
		flags.News, flags.Performance} {
		if b {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.Reason(
			"expected exactly one of -profile, -holdings, -trades, -news or -performance")
	}
	return &flags, err
}

func profileTable(ctx context.Context, funds []string) (*table.Table, error) {
	tbl := table.NewTable(db.FundRowHeader()...)
	for _, fund := range funds {
		p, err := etf.Profile(ctx, fund)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch profile for %s", fund)
		}
		if p == nil {
			logging.Warningf(ctx, "no profile for %s, skipping", fund)
			continue
		}
		tbl.AddRow(*p)
	}
	return tbl, nil
}

func holdingsTable(ctx context.Context, funds []string, date db.Date) (*table.Table, error) {
	tbl := table.NewTable(db.HoldingRowHeader()...)
	for _, fund := range funds {
		holdings, err := etf.Holdings(ctx, fund, date)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch holdings for %s", fund)
		}
		for _, h := range holdings {
			tbl.AddRow(h)
		}
	}
	return tbl, nil
}

func tradesTable(ctx context.Context, funds []string, period string) (*table.Table, error) {
	tbl := table.NewTable(db.TradeRowHeader()...)
	for _, fund := range funds {
		trades, err := etf.Trades(ctx, fund, period)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch trades for %s", fund)
		}
		for _, tr := range trades {
			tbl.AddRow(tr)
		}
	}
	return tbl, nil
}

func newsTable(ctx context.Context, funds []string, from, to db.Date) (*table.Table, error) {
	tbl := table.NewTable(etf.NewsHeader()...)
	for _, fund := range funds {
		news, err := etf.News(ctx, fund, from, to)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch news for %s", fund)
		}
		for _, n := range news {
			tbl.AddRow(n)
		}
	}
	return tbl, nil
}

func performanceTable(ctx context.Context, funds []string, formatted bool) (*table.Table, error) {
	tbl := table.NewTable(etf.PerformanceHeader()...)
	for _, fund := range funds {
		rows, err := etf.Performance(ctx, fund, formatted)
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch performance for %s", fund)
		}
		for _, r := range rows {
			tbl.AddRow(r)
		}
	}
	return tbl, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	funds := api.ParseSymbols(flags.Symbols)
	if err := api.CheckFunds(funds); err != nil {
		return errors.Annotate(err, "invalid -symbols")
	}
	ctx = api.UseClient(ctx)

	var tbl *table.Table
	var err error
	switch {
	case flags.Profile:
		tbl, err = profileTable(ctx, funds)
	case flags.Holdings:
		tbl, err = holdingsTable(ctx, funds, flags.Date)
	case flags.Trades:
		tbl, err = tradesTable(ctx, funds, flags.Period)
	case flags.News:
		tbl, err = newsTable(ctx, funds, flags.From, flags.To)
	case flags.Performance:
		tbl, err = performanceTable(ctx, funds, flags.Formatted)
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
