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
	"path/filepath"

	"github.com/arkfunds/arkfunds-go/analysis"
	"github.com/arkfunds/arkfunds-go/db"
	"github.com/arkfunds/arkfunds-go/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

type Flags struct {
	CacheDir string // default: ~/.arkfunds
	LogLevel logging.Level
	// Exactly one of funds, holdings, trades or summary must be present.
	Funds    bool
	Holdings string // fund to print holdings for
	Trades   string // fund to print trades for
	Summary  bool   // print holdings concentration per fund
	// Constraints on the listed rows.
	Ticker    string
	Direction string
	MinWeight float64
	Start     db.Date
	End       db.Date
	CSV       bool // dump CSV format; default: text
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
	fs := flag.NewFlagSet("ark-list", flag.ExitOnError)
	fs.StringVar(&flags.CacheDir, "cache",
		filepath.Join(os.Getenv("HOME"), ".arkfunds"),
		"path to the local cache")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Funds, "funds", false, "print all cached fund rows")
	fs.StringVar(&flags.Holdings, "holdings", "", "fund to print holdings for")
	fs.StringVar(&flags.Trades, "trades", "", "fund to print trades for")
	fs.BoolVar(&flags.Summary, "summary", false,
		"print holdings concentration per fund")
	fs.StringVar(&flags.Ticker, "ticker", "", "limit rows to this ticker")
	fs.StringVar(&flags.Direction, "direction", "",
		"limit trades to this direction: buy or sell")
	fs.Float64Var(&flags.MinWeight, "min-weight", 0.0,
		"limit holdings to at least this weight in percent")
	dateVar(fs, &flags.Start, "start", "limit rows to on or after this date")
	dateVar(fs, &flags.End, "end", "limit rows to on or before this date")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	kinds := 0
	if flags.Funds {
		kinds++
	}
	if flags.Holdings != "" {
		kinds++
	}
	if flags.Trades != "" {
		kinds++
	}
	if flags.Summary {
		kinds++
	}
	if kinds != 1 {
		return nil, errors.Reason(
			"expected exactly one of -funds, -holdings, -trades or -summary")
	}
	return &flags, err
}

func constraints(flags *Flags) *db.Constraints {
	c := db.NewConstraints()
	if flags.Ticker != "" {
		c = c.Ticker(flags.Ticker)
	}
	if flags.Direction != "" {
		c = c.Direction(flags.Direction)
	}
	if flags.MinWeight > 0.0 {
		c = c.WeightAtLeast(flags.MinWeight)
	}
	if !flags.Start.IsZero() {
		c = c.StartAt(flags.Start)
	}
	if !flags.End.IsZero() {
		c = c.EndAt(flags.End)
	}
	return c
}

func fundsTable(database *db.Database, c *db.Constraints) (*table.Table, error) {
	funds, err := database.Funds(c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read funds")
	}
	tbl := table.NewTable(db.FundRowHeader()...)
	for _, fund := range funds {
		fr, err := database.FundRow(fund)
		if err != nil {
			return nil, errors.Annotate(err, "failed to read fund row for %s", fund)
		}
		tbl.AddRow(fr)
	}
	return tbl, nil
}

func holdingsTable(database *db.Database, fund string, c *db.Constraints) (*table.Table, error) {
	holdings, err := database.Holdings(fund, c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read holdings for %s", fund)
	}
	tbl := table.NewTable(db.HoldingRowHeader()...)
	for _, h := range holdings {
		tbl.AddRow(h)
	}
	return tbl, nil
}

func tradesTable(database *db.Database, fund string, c *db.Constraints) (*table.Table, error) {
	trades, err := database.Trades(fund, c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read trades for %s", fund)
	}
	tbl := table.NewTable(db.TradeRowHeader()...)
	for _, tr := range trades {
		tbl.AddRow(tr)
	}
	return tbl, nil
}

func summaryTable(database *db.Database, c *db.Constraints) (*table.Table, error) {
	summaries, err := analysis.Concentrations(database, c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to compute concentrations")
	}
	tbl := table.NewTable(analysis.ConcentrationHeader()...)
	for _, s := range summaries {
		tbl.AddRow(s)
	}
	return tbl, nil
}

func printData(ctx context.Context, flags *Flags, w io.Writer) error {
	database := db.NewDatabase(flags.CacheDir)
	c := constraints(flags)

	var tbl *table.Table
	var err error
	switch {
	case flags.Funds:
		tbl, err = fundsTable(database, c)
	case flags.Holdings != "":
		tbl, err = holdingsTable(database, flags.Holdings, c)
	case flags.Trades != "":
		tbl, err = tradesTable(database, flags.Trades, c)
	case flags.Summary:
		tbl, err = summaryTable(database, c)
	}
	if err != nil {
		return errors.Annotate(err, "failed to read cached data")
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
