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
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	Convey("ReadCSVHoldings", t, func() {
		Convey("parses ARK's published header", func() {
			csv := `date,fund,company,ticker,cusip,shares,"market value ($)","weight (%)"
01/15/2021,ARKK,"TESLA INC",TSLA,88160R101,"2,626,774","$2,170,135,607.84",10.99
01/15/2021,ARKK,"ROKU INC",ROKU,77543R102,"4,110,728","$1,678,410,249.28",7.45
"","","","","","","",""
Investors should carefully consider the investment objectives and risks.`
			holdings, err := ReadCSVHoldings(strings.NewReader(csv), NewHoldingRowConfig())
			So(err, ShouldBeNil)
			So(len(holdings), ShouldEqual, 2)
			So(holdings[0].Ticker, ShouldEqual, "TSLA")
			So(holdings[0].Date, ShouldResemble, NewDate(2021, 1, 15))
			So(holdings[0].Shares, ShouldEqual, 2626774.0)
			So(holdings[0].MarketValue, ShouldEqual, 2170135607.84)
			So(holdings[0].Weight, ShouldEqual, 10.99)
			// Share price is derived, weight ranks assigned by weight.
			So(holdings[0].SharePrice, ShouldAlmostEqual, 826.15, 0.01)
			So(holdings[0].WeightRank, ShouldEqual, 1)
			So(holdings[1].WeightRank, ShouldEqual, 2)
		})

		Convey("keeps explicit weight ranks", func() {
			csv := `date,fund,ticker,weight (%),weight rank
2021-01-15,ARKK,ROKU,7.45,2
2021-01-15,ARKK,TSLA,10.99,1`
			holdings, err := ReadCSVHoldings(strings.NewReader(csv), NewHoldingRowConfig())
			So(err, ShouldBeNil)
			So(len(holdings), ShouldEqual, 2)
			So(holdings[0].Ticker, ShouldEqual, "TSLA")
			So(holdings[1].Ticker, ShouldEqual, "ROKU")
		})

		Convey("supports a custom header config", func() {
			c := NewHoldingRowConfig()
			js := map[string]any{
				"ticker": "symbol",
				"weight": "pct",
			}
			So(c.InitMessage(js), ShouldBeNil)
			data := `symbol,pct
tsla,10.99`
			holdings, err := ReadCSVHoldings(strings.NewReader(data), c)
			So(err, ShouldBeNil)
			So(len(holdings), ShouldEqual, 1)
			So(holdings[0].Ticker, ShouldEqual, "TSLA")
			So(holdings[0].Weight, ShouldEqual, 10.99)
		})

		Convey("supports headless CSV", func() {
			c := NewHoldingRowConfig()
			So(c.InitMessage(map[string]any{
				"header": []any{"date", "fund", "ticker", "weight (%)"},
			}), ShouldBeNil)
			data := "2021-01-15,ARKK,TSLA,10.99\n"
			holdings, err := ReadCSVHoldings(strings.NewReader(data), c)
			So(err, ShouldBeNil)
			So(len(holdings), ShouldEqual, 1)
			So(holdings[0].Fund, ShouldEqual, "ARKK")
		})

		Convey("requires a ticker column", func() {
			data := "date,fund\n2021-01-15,ARKK\n"
			_, err := ReadCSVHoldings(strings.NewReader(data), NewHoldingRowConfig())
			So(err, ShouldNotBeNil)
		})

		Convey("rejects malformed numbers", func() {
			data := "ticker,weight (%)\nTSLA,lots\n"
			_, err := ReadCSVHoldings(strings.NewReader(data), NewHoldingRowConfig())
			So(err, ShouldNotBeNil)
		})
	})

	Convey("ReadCSVTrades", t, func() {
		Convey("parses and sorts rows", func() {
			csv := `fund,date,direction,ticker,cusip,shares,% of etf
ARKK,01/16/2021,SELL,ROKU,77543R102,50,0.1
ARKK,01/15/2021,Buy,TSLA,88160R101,100,0.2`
			trades, err := ReadCSVTrades(strings.NewReader(csv), NewTradeRowConfig())
			So(err, ShouldBeNil)
			So(len(trades), ShouldEqual, 2)
			So(trades[0].Ticker, ShouldEqual, "TSLA")
			So(trades[0].Direction, ShouldEqual, "Buy")
			So(trades[1].Direction, ShouldEqual, "Sell")
			So(trades[1].ETFPercent, ShouldEqual, 0.1)
		})

		Convey("requires a ticker column", func() {
			data := "fund,date\nARKK,2021-01-15\n"
			_, err := ReadCSVTrades(strings.NewReader(data), NewTradeRowConfig())
			So(err, ShouldNotBeNil)
		})

		Convey("skips trailing empty rows", func() {
			csv := `fund,date,direction,ticker,cusip,shares,% of etf
ARKK,01/15/2021,Buy,TSLA,88160R101,100,0.2
"","","","","","",""`
			trades, err := ReadCSVTrades(strings.NewReader(csv), NewTradeRowConfig())
			So(err, ShouldBeNil)
			So(len(trades), ShouldEqual, 1)
			So(trades[0].Ticker, ShouldEqual, "TSLA")
		})
	})
}
