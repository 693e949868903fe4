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

// Package db implements a local file-based cache of downloaded ARK fund
// data: fund profiles, daily holdings and intraday trades, stored as gob
// files under a cache directory, one holdings and one trades file per fund.
package db

import (
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/stockparfait/errors"
)

func writeGob(fileName string, v any) error {
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Annotate(err, "failed to open file for writing: '%s'", fileName)
	}
	defer f.Close()
	enc := gob.NewEncoder(f)
	if err = enc.Encode(v); err != nil {
		return errors.Annotate(err, "failed to write to '%s'", fileName)
	}
	return nil
}

func readGob(fileName string, v any) error {
	f, err := os.Open(fileName)
	if err != nil {
		return errors.Annotate(err, "failed to open file for reading: '%s'", fileName)
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	if err = dec.Decode(v); err != nil {
		return errors.Annotate(err, "failed to read from '%s'", fileName)
	}
	return nil
}

// Database accesses the cache in the given directory. Read data are cached
// in memory, so subsequent reads of the same table are cheap.
type Database struct {
	cachePath string
	funds     map[string]FundRow
	holdings  map[string][]HoldingRow
	trades    map[string][]TradeRow
	metadata  *Metadata
}

// NewDatabase creates a Database accessor for the cache directory.
func NewDatabase(cachePath string) *Database {
	return &Database{
		cachePath: cachePath,
		holdings:  make(map[string][]HoldingRow),
		trades:    make(map[string][]TradeRow),
	}
}

func (db *Database) fundsFile() string {
	return filepath.Join(db.cachePath, "funds.gob")
}

func (db *Database) holdingsFile(fund string) string {
	return filepath.Join(db.cachePath, "holdings-"+fund+".gob")
}

func (db *Database) tradesFile(fund string) string {
	return filepath.Join(db.cachePath, "trades-"+fund+".gob")
}

func (db *Database) metadataFile() string {
	return filepath.Join(db.cachePath, "metadata.json")
}

func (db *Database) createDir() error {
	return errors.Annotate(os.MkdirAll(db.cachePath, 0755),
		"failed to create cache dir '%s'", db.cachePath)
}

// WriteFunds saves the funds table, replacing the file contents.
func (db *Database) WriteFunds(funds map[string]FundRow) error {
	if err := db.createDir(); err != nil {
		return err
	}
	if err := writeGob(db.fundsFile(), funds); err != nil {
		return errors.Annotate(err, "failed to write funds")
	}
	db.funds = funds
	return nil
}

// WriteHoldings saves the holdings of a single fund.
func (db *Database) WriteHoldings(fund string, holdings []HoldingRow) error {
	if err := db.createDir(); err != nil {
		return err
	}
	if err := writeGob(db.holdingsFile(fund), holdings); err != nil {
		return errors.Annotate(err, "failed to write holdings for %s", fund)
	}
	db.holdings[fund] = holdings
	return nil
}

// WriteTrades saves the trades of a single fund.
func (db *Database) WriteTrades(fund string, trades []TradeRow) error {
	if err := db.createDir(); err != nil {
		return err
	}
	if err := writeGob(db.tradesFile(fund), trades); err != nil {
		return errors.Annotate(err, "failed to write trades for %s", fund)
	}
	db.trades[fund] = trades
	return nil
}

// WriteMetadata saves the metadata.json file.
func (db *Database) WriteMetadata(m Metadata) error {
	if err := db.createDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return errors.Annotate(err, "failed to marshal metadata")
	}
	if err := os.WriteFile(db.metadataFile(), data, 0644); err != nil {
		return errors.Annotate(err, "failed to write metadata")
	}
	db.metadata = &m
	return nil
}

// cachedFunds loads and caches the funds table.
func (db *Database) cachedFunds() (map[string]FundRow, error) {
	if db.funds != nil {
		return db.funds, nil
	}
	funds := make(map[string]FundRow)
	if err := readGob(db.fundsFile(), &funds); err != nil {
		return nil, errors.Annotate(err, "failed to read funds")
	}
	db.funds = funds
	return funds, nil
}

// Funds lists the cached fund symbols satisfying the constraints, sorted
// alphabetically.
func (db *Database) Funds(c *Constraints) ([]string, error) {
	funds, err := db.cachedFunds()
	if err != nil {
		return nil, err
	}
	var symbols []string
	for s := range funds {
		if c.CheckFund(s) {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// FundRow returns the profile of a single cached fund.
func (db *Database) FundRow(fund string) (FundRow, error) {
	funds, err := db.cachedFunds()
	if err != nil {
		return FundRow{}, err
	}
	r, ok := funds[fund]
	if !ok {
		return FundRow{}, errors.Reason("no such fund in cache: %s", fund)
	}
	return r, nil
}

// Holdings returns the cached holdings of a fund satisfying the constraints.
func (db *Database) Holdings(fund string, c *Constraints) ([]HoldingRow, error) {
	cached, ok := db.holdings[fund]
	if !ok {
		if err := readGob(db.holdingsFile(fund), &cached); err != nil {
			return nil, errors.Annotate(err, "failed to read holdings for %s", fund)
		}
		db.holdings[fund] = cached
	}
	var res []HoldingRow
	for _, h := range cached {
		if c.CheckHolding(h) {
			res = append(res, h)
		}
	}
	return res, nil
}

// Trades returns the cached trades of a fund satisfying the constraints.
func (db *Database) Trades(fund string, c *Constraints) ([]TradeRow, error) {
	cached, ok := db.trades[fund]
	if !ok {
		if err := readGob(db.tradesFile(fund), &cached); err != nil {
			return nil, errors.Annotate(err, "failed to read trades for %s", fund)
		}
		db.trades[fund] = cached
	}
	var res []TradeRow
	for _, t := range cached {
		if c.CheckTrade(t) {
			res = append(res, t)
		}
	}
	return res, nil
}

// Metadata reads the metadata.json file of the cache.
func (db *Database) Metadata() (Metadata, error) {
	if db.metadata != nil {
		return *db.metadata, nil
	}
	data, err := os.ReadFile(db.metadataFile())
	if err != nil {
		return Metadata{}, errors.Annotate(err, "failed to read metadata")
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, errors.Annotate(err, "failed to parse metadata")
	}
	db.metadata = &m
	return m, nil
}

// ComputeMetadata scans the cached tables and recreates metadata.json. Call
// it after modifying the cache.
func (db *Database) ComputeMetadata() (Metadata, error) {
	funds, err := db.cachedFunds()
	if err != nil {
		return Metadata{}, err
	}
	m := Metadata{NumFunds: len(funds)}
	for fund := range funds {
		holdings, err := db.Holdings(fund, NewConstraints())
		if err == nil {
			m.NumHoldings += len(holdings)
			for _, h := range holdings {
				m.Start = MinDate(m.Start, h.Date)
				m.End = MaxDate(m.End, h.Date)
			}
		}
		trades, err := db.Trades(fund, NewConstraints())
		if err == nil {
			m.NumTrades += len(trades)
			for _, t := range trades {
				m.Start = MinDate(m.Start, t.Date)
				m.End = MaxDate(m.End, t.Date)
			}
		}
	}
	if err := db.WriteMetadata(m); err != nil {
		return Metadata{}, errors.Annotate(err, "failed to save metadata")
	}
	return m, nil
}
