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

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arkfunds/arkfunds-go/db"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSymbols(t *testing.T) {
	t.Parallel()

	Convey("IsFund works", t, func() {
		So(IsFund("ARKK"), ShouldBeTrue)
		So(IsFund("TSLA"), ShouldBeFalse)
		So(IsFund("arkk"), ShouldBeFalse)
	})

	Convey("ParseSymbols works", t, func() {
		So(ParseSymbols("tsla, coin MSFT"), ShouldResemble,
			[]string{"TSLA", "COIN", "MSFT"})
		So(ParseSymbols("brk-b BF.B ^gspc"), ShouldResemble,
			[]string{"BRK-B", "BF.B", "^GSPC"})
		So(ParseSymbols(""), ShouldBeNil)
	})

	Convey("SplitFunds works", t, func() {
		valid, invalid := SplitFunds([]string{"ARKK", "TSLA", "IZRL", "XYZ"})
		So(valid, ShouldResemble, []string{"ARKK", "IZRL"})
		So(invalid, ShouldResemble, []string{"TSLA", "XYZ"})
	})

	Convey("CheckFunds works", t, func() {
		So(CheckFunds([]string{"ARKK", "PRNT"}), ShouldBeNil)
		So(CheckFunds([]string{"ARKK", "TSLA"}), ShouldNotBeNil)
		So(CheckFunds(nil), ShouldNotBeNil)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	Convey("Query builder methods", t, func() {
		q := NewQuery("/etf/trades")

		Convey("create deep copies", func() {
			q2 := q.Symbol("ARKK").Period("1y")
			So(q.Values(), ShouldResemble, NewQuery("/etf/trades").Values())
			So(q2.Values().Get("symbol"), ShouldEqual, "ARKK")
			So(q2.Values().Get("period"), ShouldEqual, "1y")
			So(q2.Path(), ShouldEqual, "/etf/trades")
		})

		Convey("skip zero values", func() {
			q2 := q.Date(db.Date{}).From(db.Date{}).To(db.Date{}).Limit(0).Formatted(false)
			So(len(q2.Values()), ShouldEqual, 0)
		})

		Convey("format dates and numbers", func() {
			q2 := q.From(db.NewDate(2021, 4, 1)).To(db.NewDate(2021, 6, 30)).Limit(5)
			So(q2.Values().Get("date_from"), ShouldEqual, "2021-04-01")
			So(q2.Values().Get("date_to"), ShouldEqual, "2021-06-30")
			So(q2.Values().Get("limit"), ShouldEqual, "5")
		})

		Convey("lower-case the direction", func() {
			So(q.Direction("Buy").Values().Get("direction"), ShouldEqual, "buy")
		})
	})
}

func TestFetch(t *testing.T) {
	t.Parallel()

	Convey("Query.Fetch", t, func() {
		server := testutil.NewTestServer()
		defer server.Close()

		URL = server.URL() + "/api/v2"
		ctx := fetch.UseClient(context.Background(), server.Client())
		ctx = UseClient(ctx)

		type profile struct {
			Symbol string `json:"symbol"`
			Name   string `json:"name"`
		}

		Convey("decodes a JSON response", func() {
			server.ResponseBody = []string{`{"symbol": "ARKK", "name": "ARK Innovation ETF"}`}
			var p profile
			found, err := NewQuery("/etf/profile").Symbol("ARKK").Fetch(ctx, &p)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(p, ShouldResemble, profile{Symbol: "ARKK", Name: "ARK Innovation ETF"})
			So(server.RequestPath, ShouldEqual, "/api/v2/etf/profile")
			So(server.RequestQuery.Get("symbol"), ShouldEqual, "ARKK")
		})

		Convey("treats 404 as no data", func() {
			notFound := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "no such symbol", http.StatusNotFound)
				}))
			defer notFound.Close()
			URL = notFound.URL + "/api/v2"
			ctx := UseClient(fetch.UseClient(context.Background(), notFound.Client()))

			var p profile
			found, err := NewQuery("/etf/profile").Symbol("NOSUCH").Fetch(ctx, &p)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("fails on an error status", func() {
			broken := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "oops", http.StatusBadRequest)
				}))
			defer broken.Close()
			URL = broken.URL + "/api/v2"
			ctx := UseClient(fetch.UseClient(context.Background(), broken.Client()))

			var p profile
			_, err := NewQuery("/etf/profile").Symbol("ARKK").Fetch(ctx, &p)
			So(err, ShouldNotBeNil)
		})

		Convey("fails on a malformed response", func() {
			server.ResponseBody = []string{`{"symbol": `}
			var p profile
			_, err := NewQuery("/etf/profile").Symbol("ARKK").Fetch(ctx, &p)
			So(err, ShouldNotBeNil)
		})

		Convey("fails without a client in context", func() {
			var p profile
			_, err := NewQuery("/etf/profile").Fetch(context.Background(), &p)
			So(err, ShouldNotBeNil)
		})
	})
}
