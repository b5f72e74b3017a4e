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

var _ = Describe("Calendar", func() {
	Context("constructing a calendar", func() {
		It("accepts every month of the year", func() {
			for month := 1; month <= 12; month++ {
				cal, err := fiscal.NewCalendar(month)
				Expect(err).NotTo(HaveOccurred())
				Expect(cal.YearEndMonth()).To(Equal(time.Month(month)))
			}
		})

		It("rejects months outside of 1-12", func() {
			_, err := fiscal.NewCalendar(0)
			Expect(err).To(MatchError(fiscal.ErrInvalidFiscalYearEnd))

			_, err = fiscal.NewCalendar(13)
			Expect(err).To(MatchError(fiscal.ErrInvalidFiscalYearEnd))
		})

		It("panics from MustCalendar on an invalid month", func() {
			Expect(func() { fiscal.MustCalendar(-1) }).To(Panic())
		})
	})

	DescribeTable("fiscal year end",
		func(fye int, year int, expected time.Time) {
			Expect(fiscal.MustCalendar(fye).FiscalYearEnd(year)).To(Equal(expected))
		},
		Entry("December", 12, 2023, fiscal.Date(2023, time.December, 31)),
		Entry("March", 3, 2024, fiscal.Date(2024, time.March, 31)),
		Entry("June", 6, 2024, fiscal.Date(2024, time.June, 30)),
		Entry("September", 9, 2021, fiscal.Date(2021, time.September, 30)),
		Entry("February in a leap year", 2, 2024, fiscal.Date(2024, time.February, 29)),
		Entry("February in a common year", 2, 2023, fiscal.Date(2023, time.February, 28)),
		Entry("February in a century year", 2, 1900, fiscal.Date(1900, time.February, 28)),
		Entry("February in a 400th year", 2, 2000, fiscal.Date(2000, time.February, 29)),
	)

	DescribeTable("fiscal quarter of a date",
		func(fye int, date time.Time, expectedYear int, expectedQuarter int) {
			year, quarter := fiscal.MustCalendar(fye).QuarterOf(date)
			Expect(year).To(Equal(expectedYear))
			Expect(quarter).To(Equal(expectedQuarter))
		},
		Entry("calendar year Q1", 12, fiscal.Date(2024, time.March, 15), 2024, 1),
		Entry("calendar year Q4", 12, fiscal.Date(2024, time.December, 1), 2024, 4),
		Entry("March year end, April starts the next fiscal year", 3, fiscal.Date(2024, time.April, 1), 2025, 1),
		Entry("March year end, March is Q4", 3, fiscal.Date(2024, time.March, 31), 2024, 4),
		Entry("March year end, December is Q3", 3, fiscal.Date(2023, time.December, 31), 2024, 3),
		Entry("June year end, July is Q1 of next year", 6, fiscal.Date(2023, time.July, 4), 2024, 1),
		Entry("September year end, January is Q2", 9, fiscal.Date(2024, time.January, 10), 2024, 2),
	)

	DescribeTable("quarter end",
		func(fye int, fiscalYear int, quarter int, expected time.Time) {
			Expect(fiscal.MustCalendar(fye).QuarterEnd(fiscalYear, quarter)).To(Equal(expected))
		},
		Entry("December Q1", 12, 2024, 1, fiscal.Date(2024, time.March, 31)),
		Entry("December Q2", 12, 2024, 2, fiscal.Date(2024, time.June, 30)),
		Entry("December Q3", 12, 2024, 3, fiscal.Date(2024, time.September, 30)),
		Entry("December Q4", 12, 2024, 4, fiscal.Date(2024, time.December, 31)),
		Entry("March Q1 falls in the prior calendar year", 3, 2024, 1, fiscal.Date(2023, time.June, 30)),
		Entry("March Q3", 3, 2024, 3, fiscal.Date(2023, time.December, 31)),
		Entry("March Q4", 3, 2024, 4, fiscal.Date(2024, time.March, 31)),
		Entry("November Q1 ends in February of a leap year", 11, 2024, 1, fiscal.Date(2024, time.February, 29)),
		Entry("November Q1 ends in February of a common year", 11, 2023, 1, fiscal.Date(2023, time.February, 28)),
	)

	It("round trips every quarter end through QuarterOf", func() {
		for fye := 1; fye <= 12; fye++ {
			cal := fiscal.MustCalendar(fye)
			for quarter := 1; quarter <= 4; quarter++ {
				end := cal.QuarterEnd(2024, quarter)
				year, q := cal.QuarterOf(end)
				Expect(year).To(Equal(2024), "fye %d quarter %d", fye, quarter)
				Expect(q).To(Equal(quarter), "fye %d quarter %d", fye, quarter)
			}
		}
	})

	It("compares dates by calendar day", func() {
		ny, err := time.LoadLocation("America/New_York")
		Expect(err).NotTo(HaveOccurred())

		Expect(fiscal.SameDay(fiscal.Date(2024, time.March, 31), time.Date(2024, time.March, 31, 16, 0, 0, 0, ny))).To(BeTrue())
		Expect(fiscal.SameDay(fiscal.Date(2024, time.March, 31), fiscal.Date(2024, time.April, 1))).To(BeFalse())
	})
})
