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

// ark-import loads a holdings or trades CSV file, such as the daily holdings
// files published by ARK, into the local cache.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/arkfunds/arkfunds-go/db"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

type Flags struct {
	CacheDir string // default: ~/.arkfunds
	LogLevel logging.Level
	// Exactly one of holdings or trades: the CSV file to import.
	Holdings string
	Trades   string
	Fund     string  // fund symbol for rows without a fund column
	Date     db.Date // date for holding rows without a date column
	Schema   string  // optional JSON config for nonstandard CSV headers
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("ark-import", flag.ExitOnError)
	fs.StringVar(&flags.CacheDir, "cache",
		filepath.Join(os.Getenv("HOME"), ".arkfunds"),
		"path to the local cache")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.StringVar(&flags.Holdings, "holdings", "", "holdings CSV file to import")
	fs.StringVar(&flags.Trades, "trades", "", "trades CSV file to import")
	fs.StringVar(&flags.Fund, "fund", "",
		"fund symbol for rows without a fund column")
	fs.Func("date", "date for holding rows without a date column",
		func(s string) error {
			var err error
			flags.Date, err = db.NewDateFromString(s)
			return err
		})
	fs.StringVar(&flags.Schema, "schema", "",
		"JSON config file for nonstandard CSV headers")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	if (flags.Holdings == "") == (flags.Trades == "") {
		return nil, errors.Reason("expected exactly one of -holdings or -trades")
	}
	return &flags, err
}

// parseSchema initializes a CSV header config from an optional JSON file. An
// empty file name yields the defaults.
func parseSchema(fileName string, m interface{ InitMessage(js any) error }) error {
	js := make(map[string]any)
	if fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return errors.Annotate(err, "failed to read schema file %s", fileName)
		}
		if err := json.Unmarshal(data, &js); err != nil {
			return errors.Annotate(err, "failed to parse schema file %s", fileName)
		}
	}
	if err := m.InitMessage(js); err != nil {
		return errors.Annotate(err, "failed to init schema")
	}
	return nil
}

// ensureFunds adds placeholder fund rows for funds not yet in the cache, so
// that the imported data shows up in fund listings.
func ensureFunds(database *db.Database, funds []string) error {
	cached := make(map[string]db.FundRow)
	if existing, err := database.Funds(db.NewConstraints()); err == nil {
		for _, f := range existing {
			r, err := database.FundRow(f)
			if err != nil {
				return errors.Annotate(err, "failed to read fund row for %s", f)
			}
			cached[f] = r
		}
	}
	added := false
	for _, f := range funds {
		if _, ok := cached[f]; !ok {
			cached[f] = db.FundRow{Symbol: f}
			added = true
		}
	}
	if !added {
		return nil
	}
	return database.WriteFunds(cached)
}

func importHoldings(ctx context.Context, flags *Flags, database *db.Database) error {
	c := db.NewHoldingRowConfig()
	if err := parseSchema(flags.Schema, c); err != nil {
		return errors.Annotate(err, "failed to configure holdings schema")
	}
	f, err := os.Open(flags.Holdings)
	if err != nil {
		return errors.Annotate(err, "failed to open CSV file %s", flags.Holdings)
	}
	defer f.Close()

	holdings, err := db.ReadCSVHoldings(f, c)
	if err != nil {
		return errors.Annotate(err, "failed to read CSV file %s", flags.Holdings)
	}
	byFund := make(map[string][]db.HoldingRow)
	for _, h := range holdings {
		if h.Fund == "" {
			h.Fund = flags.Fund
		}
		if h.Fund == "" {
			return errors.Reason(
				"CSV file %s has no fund column; please supply -fund", flags.Holdings)
		}
		if h.Date.IsZero() {
			h.Date = flags.Date
		}
		byFund[h.Fund] = append(byFund[h.Fund], h)
	}
	funds := make([]string, 0, len(byFund))
	for fund, rows := range byFund {
		if err := database.WriteHoldings(fund, rows); err != nil {
			return errors.Annotate(err, "failed to write holdings for %s", fund)
		}
		logging.Infof(ctx, "imported %d holdings for %s", len(rows), fund)
		funds = append(funds, fund)
	}
	return ensureFunds(database, funds)
}

func importTrades(ctx context.Context, flags *Flags, database *db.Database) error {
	c := db.NewTradeRowConfig()
	if err := parseSchema(flags.Schema, c); err != nil {
		return errors.Annotate(err, "failed to configure trades schema")
	}
	f, err := os.Open(flags.Trades)
	if err != nil {
		return errors.Annotate(err, "failed to open CSV file %s", flags.Trades)
	}
	defer f.Close()

	trades, err := db.ReadCSVTrades(f, c)
	if err != nil {
		return errors.Annotate(err, "failed to read CSV file %s", flags.Trades)
	}
	byFund := make(map[string][]db.TradeRow)
	for _, tr := range trades {
		if tr.Fund == "" {
			tr.Fund = flags.Fund
		}
		if tr.Fund == "" {
			return errors.Reason(
				"CSV file %s has no fund column; please supply -fund", flags.Trades)
		}
		byFund[tr.Fund] = append(byFund[tr.Fund], tr)
	}
	funds := make([]string, 0, len(byFund))
	for fund, rows := range byFund {
		if err := database.WriteTrades(fund, rows); err != nil {
			return errors.Annotate(err, "failed to write trades for %s", fund)
		}
		logging.Infof(ctx, "imported %d trades for %s", len(rows), fund)
		funds = append(funds, fund)
	}
	return ensureFunds(database, funds)
}

func importCSV(ctx context.Context, flags *Flags) error {
	database := db.NewDatabase(flags.CacheDir)
	var err error
	if flags.Holdings != "" {
		err = importHoldings(ctx, flags, database)
	} else {
		err = importTrades(ctx, flags, database)
	}
	if err != nil {
		return err
	}
	m, err := database.ComputeMetadata()
	if err != nil {
		return errors.Annotate(err, "failed to compute metadata")
	}
	logging.Infof(ctx, "cache now has %d funds, %d holdings, %d trades",
		m.NumFunds, m.NumHoldings, m.NumTrades)
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

	if err := importCSV(ctx, flags); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
