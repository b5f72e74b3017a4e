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

package fiscal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/fiscal"
)

var _ = Describe("Periods", func() {
	It("generates the most recent completed quarters for a calendar year company", func() {
		cal := fiscal.MustCalendar(12)
		periods := cal.Periods(4, fiscal.Quarterly, fiscal.Date(2024, time.March, 15))

		Expect(periods).To(HaveLen(4))
		Expect(periods[0].EndDate).To(Equal(fiscal.Date(2023, time.December, 31)))
		Expect(periods[0].Label).To(Equal("FY2023"))
		Expect(periods[1].EndDate).To(Equal(fiscal.Date(2023, time.September, 30)))
		Expect(periods[1].Label).To(Equal("Q3 2023"))
		Expect(periods[2].EndDate).To(Equal(fiscal.Date(2023, time.June, 30)))
		Expect(periods[2].Label).To(Equal("Q2 2023"))
		Expect(periods[3].EndDate).To(Equal(fiscal.Date(2023, time.March, 31)))
		Expect(periods[3].Label).To(Equal("Q1 2023"))
	})

	It("includes the quarter that ends on the as-of date", func() {
		cal := fiscal.MustCalendar(12)
		periods := cal.Periods(1, fiscal.Quarterly, fiscal.Date(2024, time.March, 31))

		Expect(periods[0].EndDate).To(Equal(fiscal.Date(2024, time.March, 31)))
		Expect(periods[0].Label).To(Equal("Q1 2024"))
	})

	It("labels quarters of a non-calendar fiscal year", func() {
		cal := fiscal.MustCalendar(3)
		periods := cal.Periods(5, fiscal.Quarterly, fiscal.Date(2024, time.May, 20))

		labels := make([]string, len(periods))
		for idx, period := range periods {
			labels[idx] = period.Label
		}

		Expect(labels).To(Equal([]string{"FY2024", "Q3 2024", "Q2 2024", "Q1 2024", "FY2023"}))
		Expect(periods[0].EndDate).To(Equal(fiscal.Date(2024, time.March, 31)))
		Expect(periods[3].EndDate).To(Equal(fiscal.Date(2023, time.June, 30)))
	})

	It("generates annual periods from the fiscal year containing the as-of date", func() {
		cal := fiscal.MustCalendar(12)
		periods := cal.Periods(3, fiscal.Annual, fiscal.Date(2024, time.March, 15))

		Expect(periods).To(HaveLen(3))
		Expect(periods[0].EndDate).To(Equal(fiscal.Date(2023, time.December, 31)))
		Expect(periods[0].Label).To(Equal("FY2023"))
		Expect(periods[0].FiscalQuarter).To(Equal(0))
		Expect(periods[2].EndDate).To(Equal(fiscal.Date(2021, time.December, 31)))
		Expect(periods[2].Label).To(Equal("FY2021"))
	})

	It("uses the current year for annual periods once the year end month is reached", func() {
		cal := fiscal.MustCalendar(6)
		periods := cal.Periods(2, fiscal.Annual, fiscal.Date(2024, time.August, 1))

		Expect(periods[0].EndDate).To(Equal(fiscal.Date(2024, time.June, 30)))
		Expect(periods[1].EndDate).To(Equal(fiscal.Date(2023, time.June, 30)))
	})

	It("returns no periods for a non-positive count", func() {
		cal := fiscal.MustCalendar(12)
		Expect(cal.Periods(0, fiscal.Quarterly, fiscal.Date(2024, time.March, 15))).To(BeEmpty())
		Expect(cal.Periods(-3, fiscal.Annual, fiscal.Date(2024, time.March, 15))).To(BeEmpty())
	})

	It("always produces strictly descending, unique end dates", func() {
		asOf := fiscal.Date(2024, time.February, 29)
		for fye := 1; fye <= 12; fye++ {
			cal := fiscal.MustCalendar(fye)
			for _, periodType := range []fiscal.PeriodType{fiscal.Quarterly, fiscal.Annual} {
				periods := cal.Periods(12, periodType, asOf)
				Expect(periods).To(HaveLen(12))
				for idx := 1; idx < len(periods); idx++ {
					Expect(periods[idx].EndDate.Before(periods[idx-1].EndDate)).To(BeTrue(),
						"fye %d %s index %d", fye, periodType, idx)
				}
			}
		}
	})

	It("is idempotent", func() {
		cal := fiscal.MustCalendar(9)
		asOf := fiscal.Date(2024, time.October, 2)
		Expect(cal.Periods(8, fiscal.Quarterly, asOf)).To(Equal(cal.Periods(8, fiscal.Quarterly, asOf)))
	})

	It("orders a copy of the periods oldest first", func() {
		cal := fiscal.MustCalendar(12)
		periods := cal.Periods(3, fiscal.Quarterly, fiscal.Date(2024, time.March, 15))
		ascending := fiscal.Ascending(periods)

		Expect(ascending[0].Label).To(Equal("Q2 2023"))
		Expect(ascending[2].Label).To(Equal("FY2023"))
		Expect(periods[0].Label).To(Equal("FY2023"))
	})

	DescribeTable("labels",
		func(periodType fiscal.PeriodType, year int, quarter int, expected string) {
			Expect(fiscal.Label(periodType, year, quarter)).To(Equal(expected))
		},
		Entry("annual", fiscal.Annual, 2023, 0, "FY2023"),
		Entry("fourth quarter", fiscal.Quarterly, 2023, 4, "FY2023"),
		Entry("first quarter", fiscal.Quarterly, 2024, 1, "Q1 2024"),
		Entry("third quarter", fiscal.Quarterly, 2024, 3, "Q3 2024"),
	)

	DescribeTable("parsing period types",
		func(input string, expected fiscal.PeriodType, valid bool) {
			periodType, err := fiscal.ParsePeriodType(input)
			if !valid {
				Expect(err).To(MatchError(fiscal.ErrUnknownPeriodType))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(periodType).To(Equal(expected))
		},
		Entry("quarterly", "quarterly", fiscal.Quarterly, true),
		Entry("mixed case", "Annual", fiscal.Annual, true),
		Entry("padded", " QUARTERLY ", fiscal.Quarterly, true),
		Entry("unknown", "monthly", fiscal.PeriodType(""), false),
	)
})
