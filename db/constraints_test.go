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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConstraints(t *testing.T) {
	t.Parallel()

	Convey("Zero constraints accept everything", t, func() {
		c := NewConstraints()
		So(c.CheckFund("ARKK"), ShouldBeTrue)
		So(c.CheckHolding(TestHolding("ARKK", NewDate(2021, 1, 15), "TSLA", 10.0, 1)), ShouldBeTrue)
		So(c.CheckTrade(TestTrade("ARKK", NewDate(2021, 1, 15), "Buy", "TSLA", 100)), ShouldBeTrue)
	})

	Convey("Fund constraints", t, func() {
		c := NewConstraints().Fund("arkk", "ARKW")
		So(c.CheckFund("ARKK"), ShouldBeTrue)
		So(c.CheckFund("ARKW"), ShouldBeTrue)
		So(c.CheckFund("IZRL"), ShouldBeFalse)
	})

	Convey("Holding constraints", t, func() {
		h := TestHolding("ARKK", NewDate(2021, 1, 15), "TSLA", 10.0, 1)

		Convey("by ticker", func() {
			So(NewConstraints().Ticker("tsla").CheckHolding(h), ShouldBeTrue)
			So(NewConstraints().Ticker("COIN").CheckHolding(h), ShouldBeFalse)
		})

		Convey("by weight", func() {
			So(NewConstraints().WeightAtLeast(5.0).CheckHolding(h), ShouldBeTrue)
			So(NewConstraints().WeightAtLeast(15.0).CheckHolding(h), ShouldBeFalse)
		})

		Convey("by date range", func() {
			So(NewConstraints().StartAt(NewDate(2021, 1, 1)).CheckHolding(h), ShouldBeTrue)
			So(NewConstraints().StartAt(NewDate(2021, 2, 1)).CheckHolding(h), ShouldBeFalse)
			So(NewConstraints().EndAt(NewDate(2021, 1, 1)).CheckHolding(h), ShouldBeFalse)
		})
	})

	Convey("Trade constraints", t, func() {
		buy := TestTrade("ARKK", NewDate(2021, 1, 15), "Buy", "TSLA", 100)
		sell := TestTrade("ARKK", NewDate(2021, 1, 15), "Sell", "TSLA", 100)

		Convey("by direction, case-insensitive", func() {
			c := NewConstraints().Direction("BUY")
			So(c.CheckTrade(buy), ShouldBeTrue)
			So(c.CheckTrade(sell), ShouldBeFalse)
		})

		Convey("by fund and ticker", func() {
			So(NewConstraints().Fund("ARKW").CheckTrade(buy), ShouldBeFalse)
			So(NewConstraints().Ticker("TSLA").CheckTrade(buy), ShouldBeTrue)
		})
	})
}
