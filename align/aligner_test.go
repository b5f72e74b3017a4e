// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package align_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
)

func income(date time.Time, periodType fiscal.PeriodType, revenue float64) *data.IncomeStatement {
	return &data.IncomeStatement{
		PeriodEndDate: date,
		PeriodType:    periodType,
		TotalRevenue:  data.Amount(revenue),
	}
}

func quarterEnds(year int) []time.Time {
	return []time.Time{
		fiscal.Date(year, time.March, 31),
		fiscal.Date(year, time.June, 30),
		fiscal.Date(year, time.September, 30),
		fiscal.Date(year, time.December, 31),
	}
}

var _ = Describe("Aligner", func() {
	var (
		cal     fiscal.Calendar
		periods []fiscal.Period
		incomes []*data.IncomeStatement
	)

	BeforeEach(func() {
		cal = fiscal.MustCalendar(12)
		periods = cal.Periods(4, fiscal.Quarterly, fiscal.Date(2024, time.March, 15))

		// two full years of quarters, revenue 100, 110, ... 170; deliberately unsorted
		incomes = []*data.IncomeStatement{}
		ends := append(quarterEnds(2022), quarterEnds(2023)...)
		for idx := len(ends) - 1; idx >= 0; idx-- {
			incomes = append(incomes, income(ends[idx], fiscal.Quarterly, float64(100+idx*10)))
		}
	})

	It("returns one bundle per period ordered oldest first", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes})

		Expect(bundles).To(HaveLen(4))
		Expect(bundles[0].Period.Label).To(Equal("Q1 2023"))
		Expect(bundles[3].Period.Label).To(Equal("FY2023"))
	})

	It("fills the periods with the trailing records", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes})

		Expect(*bundles[0].Revenue()).To(BeNumerically("~", 140.0))
		Expect(*bundles[3].Revenue()).To(BeNumerically("~", 170.0))
		Expect(bundles[3].Income.PeriodEndDate).To(Equal(fiscal.Date(2023, time.December, 31)))
	})

	It("resolves the prior-year comparable four quarters back", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes})

		for idx, bundle := range bundles {
			Expect(bundle.PriorYear).NotTo(BeNil())
			Expect(*bundle.PriorYearRevenue()).To(BeNumerically("~", float64(100+idx*10)))
			Expect(bundle.PriorYear.PeriodEndDate).To(Equal(bundle.Income.PeriodEndDate.AddDate(-1, 0, 0)))
		}
	})

	It("resolves the prior period within the current series", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes})

		Expect(bundles[0].PriorPeriod).To(BeNil())
		Expect(bundles[1].PriorPeriod).To(BeIdenticalTo(bundles[0].Income))
		Expect(bundles[3].PriorPeriod).To(BeIdenticalTo(bundles[2].Income))
	})

	It("leaves the prior-year comparable empty when the history is too short", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes[:5]})

		// the five most recent quarters: only the newest has a record four back
		Expect(bundles[3].PriorYear).NotTo(BeNil())
		Expect(bundles[3].PriorYear.PeriodEndDate).To(Equal(fiscal.Date(2022, time.December, 31)))
		Expect(bundles[2].PriorYear).To(BeNil())
		Expect(bundles[0].PriorYear).To(BeNil())
	})

	It("shifts the prior-year comparable when a quarter is missing", func() {
		// drop Q2 2022 (revenue 110)
		filtered := []*data.IncomeStatement{}
		for _, inc := range incomes {
			if !fiscal.SameDay(inc.PeriodEndDate, fiscal.Date(2022, time.June, 30)) {
				filtered = append(filtered, inc)
			}
		}

		bundles := align.Align(periods, align.Statements{Income: filtered})

		Expect(bundles[0].Income.PeriodEndDate).To(Equal(fiscal.Date(2023, time.March, 31)))
		Expect(bundles[0].PriorYear).To(BeNil())

		// Q2 2023 now pairs with Q1 2022
		Expect(bundles[1].PriorYear).NotTo(BeNil())
		Expect(bundles[1].PriorYear.PeriodEndDate).To(Equal(fiscal.Date(2022, time.March, 31)))
		Expect(bundles[3].PriorYear.PeriodEndDate).To(Equal(fiscal.Date(2022, time.December, 31)))
	})

	It("leaves the oldest periods empty when there are fewer records than periods", func() {
		bundles := align.Align(periods, align.Statements{Income: incomes[:2]})

		Expect(bundles).To(HaveLen(4))
		Expect(bundles[0].Income).To(BeNil())
		Expect(bundles[1].Income).To(BeNil())
		Expect(bundles[0].Revenue()).To(BeNil())
		Expect(bundles[2].Income.PeriodEndDate).To(Equal(fiscal.Date(2023, time.September, 30)))
		Expect(bundles[2].PriorPeriod).To(BeNil())
		Expect(bundles[3].PriorPeriod).To(BeIdenticalTo(bundles[2].Income))
	})

	It("ignores records of the other period type", func() {
		mixed := append([]*data.IncomeStatement{
			income(fiscal.Date(2023, time.December, 31), fiscal.Annual, 600),
			income(fiscal.Date(2024, time.December, 31), fiscal.Annual, 700),
		}, incomes...)

		bundles := align.Align(periods, align.Statements{Income: mixed})

		Expect(*bundles[3].Revenue()).To(BeNumerically("~", 170.0))
		Expect(bundles[3].Income.PeriodType).To(Equal(fiscal.Quarterly))
	})

	It("matches balance sheets and cash flows by exact date", func() {
		statements := align.Statements{
			Income: incomes,
			Balance: []*data.BalanceSheet{
				{PeriodEndDate: fiscal.Date(2023, time.December, 31), PeriodType: fiscal.Quarterly, NetDebt: data.Amount(50)},
				{PeriodEndDate: fiscal.Date(2023, time.September, 29), PeriodType: fiscal.Quarterly, NetDebt: data.Amount(40)},
			},
			CashFlow: []*data.CashFlowStatement{
				{PeriodEndDate: fiscal.Date(2023, time.June, 30), PeriodType: fiscal.Quarterly, OperatingCashFlow: data.Amount(25)},
			},
		}

		bundles := align.Align(periods, statements)

		Expect(*bundles[3].NetDebt()).To(BeNumerically("~", 50.0))
		Expect(bundles[2].Balance).To(BeNil())
		Expect(bundles[2].NetDebt()).To(BeNil())
		Expect(*bundles[1].OperatingCashFlow()).To(BeNumerically("~", 25.0))
		Expect(bundles[0].CashFlow).To(BeNil())
	})

	It("uses the latest price on or before the period end", func() {
		statements := align.Statements{
			Income: incomes,
			Prices: []*data.DailyPrice{
				{Date: fiscal.Date(2024, time.January, 2), Close: 200},
				{Date: fiscal.Date(2023, time.December, 29), Close: 190},
				{Date: fiscal.Date(2023, time.December, 28), Close: 185},
				{Date: fiscal.Date(2023, time.June, 30), Close: 150},
			},
		}

		bundles := align.Align(periods, statements)

		Expect(*bundles[3].PriceValue(data.Close)).To(BeNumerically("~", 190.0))
		Expect(*bundles[2].PriceValue(data.Close)).To(BeNumerically("~", 150.0))
		Expect(*bundles[1].PriceValue(data.Close)).To(BeNumerically("~", 150.0))
		Expect(bundles[0].Price).To(BeNil())
	})

	It("prefers income statement shares and falls back to the balance sheet", func() {
		shares := int64(1_000_000)
		balanceShares := int64(2_000_000)
		incomes[0].SharesOutstanding = &shares

		statements := align.Statements{
			Income: incomes,
			Balance: []*data.BalanceSheet{
				{PeriodEndDate: fiscal.Date(2023, time.September, 30), PeriodType: fiscal.Quarterly, SharesOutstanding: &balanceShares},
			},
		}

		bundles := align.Align(periods, statements)

		Expect(*bundles[3].SharesOutstanding()).To(BeNumerically("~", 1_000_000.0))
		Expect(*bundles[2].SharesOutstanding()).To(BeNumerically("~", 2_000_000.0))
		Expect(bundles[1].SharesOutstanding()).To(BeNil())
	})

	It("aligns annual statements with a one year offset", func() {
		annual := cal.Periods(2, fiscal.Annual, fiscal.Date(2024, time.June, 1))
		records := []*data.IncomeStatement{
			income(fiscal.Date(2023, time.December, 31), fiscal.Annual, 300),
			income(fiscal.Date(2021, time.December, 31), fiscal.Annual, 100),
			income(fiscal.Date(2022, time.December, 31), fiscal.Annual, 200),
		}

		bundles := align.Align(annual, align.Statements{Income: records})

		Expect(bundles).To(HaveLen(2))
		Expect(bundles[1].Period.Label).To(Equal("FY2023"))
		Expect(*bundles[1].Revenue()).To(BeNumerically("~", 300.0))
		Expect(*bundles[1].PriorYearRevenue()).To(BeNumerically("~", 200.0))
		Expect(*bundles[0].PriorYearRevenue()).To(BeNumerically("~", 100.0))
	})

	It("does not modify its input", func() {
		first := incomes[0]
		align.Align(periods, align.Statements{Income: incomes})

		Expect(incomes[0]).To(BeIdenticalTo(first))
	})

	It("returns an empty slice for no periods", func() {
		Expect(align.Align(nil, align.Statements{Income: incomes})).To(BeEmpty())
	})
})

var _ = Describe("PriceOnOrBefore", func() {
	prices := []*data.DailyPrice{
		{Date: fiscal.Date(2024, time.January, 2), Close: 1},
		{Date: fiscal.Date(2024, time.January, 3), Close: 2},
		{Date: fiscal.Date(2024, time.January, 5), Close: 3},
	}

	It("returns the exact date match", func() {
		Expect(align.PriceOnOrBefore(prices, fiscal.Date(2024, time.January, 3)).Close).To(Equal(2.0))
	})

	It("returns the previous trading day", func() {
		Expect(align.PriceOnOrBefore(prices, fiscal.Date(2024, time.January, 4)).Close).To(Equal(2.0))
	})

	It("returns nil before the first price", func() {
		Expect(align.PriceOnOrBefore(prices, fiscal.Date(2024, time.January, 1))).To(BeNil())
	})
})
