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

package table

import (
	"bytes"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type testRow struct {
	Ticker string
	Weight float64
}

var _ Row = testRow{}

func (r testRow) CSV() []string {
	return []string{r.Ticker, fmt.Sprintf("%g", r.Weight)}
}

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table methods work", t, func() {
		tbl := NewTable("Ticker", "Weight")
		tbl.AddRow(testRow{"TSLA", 10.53}, testRow{"COIN", 5.1})

		Convey("WriteCSV", func() {
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf, Params{}), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Ticker,Weight\nTSLA,10.53\nCOIN,5.1\n")
		})

		Convey("WriteCSV without header", func() {
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf, Params{NoHeader: true}), ShouldBeNil)
			So(buf.String(), ShouldEqual, "TSLA,10.53\nCOIN,5.1\n")
		})

		Convey("WriteCSV with row limit", func() {
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf, Params{Rows: 1}), ShouldBeNil)
			So(buf.String(), ShouldEqual, "Ticker,Weight\nTSLA,10.53\n")
		})

		Convey("WriteText aligns columns", func() {
			var buf bytes.Buffer
			So(tbl.WriteText(&buf, Params{}), ShouldBeNil)
			So(buf.String(), ShouldEqual, `Ticker | Weight
------ | ------
  TSLA |  10.53
  COIN |    5.1
`)
		})

		Convey("WriteText trims long cells", func() {
			var buf bytes.Buffer
			So(tbl.WriteText(&buf, Params{MaxColWidth: 4}), ShouldBeNil)
			So(buf.String(), ShouldEqual, `Ti.. | We..
---- | ----
TSLA | 10..
COIN |  5.1
`)
		})

		Convey("WriteText rejects a small MaxColWidth", func() {
			var buf bytes.Buffer
			So(tbl.WriteText(&buf, Params{MaxColWidth: 3}), ShouldNotBeNil)
		})

		Convey("WriteText catches uneven rows", func() {
			var buf bytes.Buffer
			bad := NewTable("One")
			bad.AddRow(testRow{"TSLA", 10.0})
			So(bad.WriteText(&buf, Params{}), ShouldNotBeNil)
		})
	})
}
