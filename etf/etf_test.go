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

package etf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkfunds/arkfunds-go/api"
	"github.com/arkfunds/arkfunds-go/db"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestETF(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_etf")
	defer os.RemoveAll(tmpdir)

	Convey("Test setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("ETF endpoints", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()

		api.URL = server.URL()
		ctx := fetch.UseClient(context.Background(), server.Client())
		ctx = api.UseClient(ctx)
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))

		Convey("Profile", func() {
			Convey("downloads and decodes a fund profile", func() {
				server.ResponseBody = []string{`
{
  "symbol": "ARKK",
  "profile": {
    "symbol": "ARKK",
    "name": "ARK Innovation ETF",
    "description": "ARKK is an actively managed ETF.",
    "fund_type": "Active Equity ETF",
    "inception_date": "2014-10-31",
    "cusip": "00214Q104",
    "isin": "US00214Q1040",
    "website": "https://ark-funds.com/arkk"
  }
}`}
				p, err := Profile(ctx, "ARKK")
				So(err, ShouldBeNil)
				So(p, ShouldNotBeNil)
				So(server.RequestPath, ShouldEqual, "/etf/profile")
				So(server.RequestQuery.Get("symbol"), ShouldEqual, "ARKK")
				So(*p, ShouldResemble, db.FundRow{
					Symbol:        "ARKK",
					Name:          "ARK Innovation ETF",
					Description:   "ARKK is an actively managed ETF.",
					FundType:      "Active Equity ETF",
					InceptionDate: db.NewDate(2014, 10, 31),
					CUSIP:         "00214Q104",
					ISIN:          "US00214Q1040",
					Website:       "https://ark-funds.com/arkk",
				})
			})

			Convey("rejects a non-ARK symbol without fetching", func() {
				_, err := Profile(ctx, "TSLA")
				So(err, ShouldNotBeNil)
			})
		})

		Convey("Holdings backfills fund and date from the envelope", func() {
			server.ResponseBody = []string{`
{
  "symbol": "ARKK",
  "date": "2021-09-03",
  "holdings": [
    {"company": "Tesla Inc", "ticker": "TSLA", "cusip": "88160R101",
     "shares": 3246856, "market_value": 2377821017.0,
     "share_price": 732.39, "weight": 10.33, "weight_rank": 1},
    {"company": "Coinbase Global Inc", "ticker": "COIN", "cusip": "19260Q107",
     "shares": 6401115, "market_value": 1671430505.0,
     "share_price": 261.12, "weight": 7.26, "weight_rank": 2}
  ]
}`}
			h, err := Holdings(ctx, "ARKK", db.NewDate(2021, 9, 3))
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/etf/holdings")
			So(server.RequestQuery.Get("date"), ShouldEqual, "2021-09-03")
			So(len(h), ShouldEqual, 2)
			So(h[0].Fund, ShouldEqual, "ARKK")
			So(h[0].Date, ShouldResemble, db.NewDate(2021, 9, 3))
			So(h[0].Ticker, ShouldEqual, "TSLA")
			So(h[1].WeightRank, ShouldEqual, 2)
		})

		Convey("Trades", func() {
			Convey("downloads trades for a period", func() {
				server.ResponseBody = []string{`
{
  "symbol": "ARKK",
  "trades": [
    {"date": "2021-09-03", "direction": "buy", "ticker": "TSLA",
     "company": "Tesla Inc", "cusip": "88160R101", "shares": 12572,
     "etf_percent": 0.0539}
  ]
}`}
				trades, err := Trades(ctx, "ARKK", "1y")
				So(err, ShouldBeNil)
				So(server.RequestPath, ShouldEqual, "/etf/trades")
				So(server.RequestQuery.Get("period"), ShouldEqual, "1y")
				So(len(trades), ShouldEqual, 1)
				So(trades[0].Fund, ShouldEqual, "ARKK")
				So(trades[0].Direction, ShouldEqual, "buy")
			})

			Convey("defaults to the 1d period", func() {
				server.ResponseBody = []string{`{"symbol": "ARKK", "trades": []}`}
				_, err := Trades(ctx, "ARKK", "")
				So(err, ShouldBeNil)
				So(server.RequestQuery.Get("period"), ShouldEqual, "1d")
			})

			Convey("rejects an invalid period", func() {
				_, err := Trades(ctx, "ARKK", "2w")
				So(err, ShouldNotBeNil)
			})
		})

		Convey("News parses article timestamps", func() {
			server.ResponseBody = []string{`
{
  "symbol": "ARKK",
  "news": [
    {"id": 425910, "datetime": "2021-09-03T16:02:01",
     "related": "ARKK", "source": "Benzinga",
     "headline": "Cathie Wood Adds These Stocks",
     "summary": "Funds managed by Cathie Wood.",
     "url": "https://example.com/425910", "image": ""}
  ]
}`}
			news, err := News(ctx, "ARKK", db.NewDate(2021, 9, 1), db.NewDate(2021, 9, 30))
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/etf/news")
			So(server.RequestQuery.Get("date_from"), ShouldEqual, "2021-09-01")
			So(server.RequestQuery.Get("date_to"), ShouldEqual, "2021-09-30")
			So(len(news), ShouldEqual, 1)
			So(news[0].ID, ShouldEqual, 425910)
			So(news[0].Datetime.String(), ShouldEqual, "2021-09-03 16:02:01")
			So(news[0].Source, ShouldEqual, "Benzinga")
		})

		Convey("Performance flattens the nested payload", func() {
			server.ResponseBody = []string{`
{
  "symbol": "ARKK",
  "performance": [{
    "overview": {"asOfDate": "2021-09-03", "ytdReturn": 2.5,
                 "oneYearReturn": 52.3},
    "trailingReturns": {"asOfDate": "2021-08-31", "oneMonth": 1.2,
                        "threeMonth": -0.5},
    "annualReturns": [{"year": 2020, "value": 152.52},
                      {"year": 2019, "value": 35.73}]
  }]
}`}
			rows, err := Performance(ctx, "ARKK", false)
			So(err, ShouldBeNil)
			So(server.RequestPath, ShouldEqual, "/etf/performance")
			So(rows, ShouldResemble, []PerformanceRow{
				{Fund: "ARKK", Datatype: "Overview",
					AsOfDate: db.NewDate(2021, 9, 3),
					Period:   "oneYearReturn", Return: "52.3"},
				{Fund: "ARKK", Datatype: "Overview",
					AsOfDate: db.NewDate(2021, 9, 3),
					Period:   "ytdReturn", Return: "2.5"},
				{Fund: "ARKK", Datatype: "TrailingReturns",
					AsOfDate: db.NewDate(2021, 8, 31),
					Period:   "oneMonth", Return: "1.2"},
				{Fund: "ARKK", Datatype: "TrailingReturns",
					AsOfDate: db.NewDate(2021, 8, 31),
					Period:   "threeMonth", Return: "-0.5"},
				{Fund: "ARKK", Datatype: "AnnualReturns",
					AsOfDate: db.NewDate(2020, 12, 31),
					Period:   "2020", Return: "152.52"},
				{Fund: "ARKK", Datatype: "AnnualReturns",
					AsOfDate: db.NewDate(2019, 12, 31),
					Period:   "2019", Return: "35.73"},
			})
		})

		Convey("DownloadAll saves fund data in the cache", func() {
			cachePath := filepath.Join(tmpdir, "cache")
			server.ResponseBody = []string{`
{
  "symbol": "PRNT",
  "profile": {"symbol": "PRNT", "name": "The 3D Printing ETF",
              "fund_type": "Index Equity ETF"}
}`, `
{
  "symbol": "PRNT",
  "date": "2021-09-03",
  "holdings": [
    {"company": "Desktop Metal Inc", "ticker": "DM", "cusip": "25058X105",
     "shares": 100, "market_value": 800.0, "share_price": 8.0,
     "weight": 4.0, "weight_rank": 1}
  ]
}`, `
{
  "symbol": "PRNT",
  "trades": [
    {"date": "2021-09-03", "direction": "sell", "ticker": "DM",
     "company": "Desktop Metal Inc", "cusip": "25058X105", "shares": 10,
     "etf_percent": 0.01}
  ]
}`}
			So(DownloadAll(ctx, cachePath, []string{"PRNT"}, "1d"), ShouldBeNil)

			database := db.NewDatabase(cachePath)
			funds, err := database.Funds(db.NewConstraints())
			So(err, ShouldBeNil)
			So(funds, ShouldResemble, []string{"PRNT"})

			holdings, err := database.Holdings("PRNT", db.NewConstraints())
			So(err, ShouldBeNil)
			So(len(holdings), ShouldEqual, 1)
			So(holdings[0].Ticker, ShouldEqual, "DM")

			trades, err := database.Trades("PRNT", db.NewConstraints())
			So(err, ShouldBeNil)
			So(len(trades), ShouldEqual, 1)
			So(trades[0].Direction, ShouldEqual, "sell")

			m, err := database.Metadata()
			So(err, ShouldBeNil)
			So(m.NumFunds, ShouldEqual, 1)
			So(m.NumHoldings, ShouldEqual, 1)
			So(m.NumTrades, ShouldEqual, 1)
		})
	})
}
