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

package report_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/report"
)

var _ = Describe("Report", func() {
	var (
		company    *data.Company
		statements align.Statements
		opts       report.Options
	)

	BeforeEach(func() {
		company = &data.Company{Ticker: "ACME"}

		// eight quarters, revenue growing by 100 each quarter
		statements = align.Statements{}
		for idx := 0; idx < 8; idx++ {
			year := 2022 + idx/4
			month := time.Month(3 * (idx%4 + 1))
			end := fiscal.Date(year, month, fiscal.DaysIn(year, month))

			statements.Income = append(statements.Income, &data.IncomeStatement{
				PeriodEndDate: end,
				PeriodType:    fiscal.Quarterly,
				TotalRevenue:  data.Amount(float64(1000 + idx*100)),
				GrossProfit:   data.Amount(float64(400 + idx*50)),
			})
		}

		opts = report.DefaultOptions()
		opts.PeriodCount = 4
		opts.AsOf = fiscal.Date(2024, time.March, 15)
	})

	It("defaults to eight quarterly periods", func() {
		defaults := report.DefaultOptions()
		Expect(defaults.PeriodType).To(Equal(fiscal.Quarterly))
		Expect(defaults.PeriodCount).To(Equal(8))
	})

	DescribeTable("fetch limit includes prior-year comparables",
		func(periodType fiscal.PeriodType, count int, expected int) {
			Expect(report.Options{PeriodType: periodType, PeriodCount: count}.FetchLimit()).To(Equal(expected))
		},
		Entry("quarterly", fiscal.Quarterly, 8, 12),
		Entry("annual", fiscal.Annual, 5, 6),
		Entry("unset period type is quarterly", fiscal.PeriodType(""), 8, 12),
	)

	It("labels periods newest first", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Periods).To(Equal([]string{"FY2023", "Q3 2023", "Q2 2023", "Q1 2023"}))
		Expect(rpt.PeriodEndDates[0]).To(Equal(fiscal.Date(2023, time.December, 31)))
		Expect(rpt.Currency).To(Equal("USD"))
		Expect(rpt.PeriodType).To(Equal(fiscal.Quarterly))
	})

	It("keeps row values in label order", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		revenue := rpt.Row(metrics.RevenueRow)
		Expect(revenue.Values).To(HaveLen(4))
		for idx, val := range revenue.Values {
			Expect(val.Period).To(Equal(rpt.Periods[idx]))
		}

		Expect(revenue.Values[0].Formatted).To(Equal("$1.70K"))
		Expect(revenue.Values[3].Formatted).To(Equal("$1.40K"))

		// Q4 2023 1700 vs Q4 2022 1300
		Expect(rpt.Latest(metrics.RevenueGrowthYoYRow).Formatted).To(Equal("30.77%"))
	})

	It("groups rows into sections", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Sections.GrowthAndMargins).To(HaveLen(10))
		Expect(rpt.Sections.CashAndLeverage).To(HaveLen(4))
		Expect(rpt.Sections.Valuation).To(HaveLen(5))
		Expect(rpt.Rows()).To(HaveLen(19))
		Expect(rpt.Row("unknown")).To(BeNil())
	})

	It("ranks values when the heat map is enabled", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		revenue := rpt.Row(metrics.RevenueRow)
		Expect(*revenue.Values[0].HeatMapQuartile).To(Equal(3))
		Expect(*revenue.Values[3].HeatMapQuartile).To(Equal(1))
	})

	It("does not rank values when the heat map is disabled", func() {
		opts.HeatMap = false
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Row(metrics.RevenueRow).Values[0].HeatMapQuartile).To(BeNil())
	})

	It("uses the fiscal year end of the company", func() {
		month := 3
		company.FiscalYearEndMonth = &month
		opts.PeriodCount = 2
		opts.AsOf = fiscal.Date(2024, time.May, 20)

		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(rpt.Periods).To(Equal([]string{"FY2024", "Q3 2024"}))
	})

	It("rejects an invalid fiscal year end month", func() {
		month := 13
		company.FiscalYearEndMonth = &month

		_, err := report.Build(company, statements, opts)
		Expect(errors.Is(err, fiscal.ErrInvalidFiscalYearEnd)).To(BeTrue())
	})

	It("rejects a non-positive period count", func() {
		opts.PeriodCount = 0
		_, err := report.Build(company, statements, opts)
		Expect(errors.Is(err, report.ErrInvalidPeriodCount)).To(BeTrue())
	})

	It("reports missing data as N/A", func() {
		rpt, err := report.Build(company, align.Statements{}, opts)
		Expect(err).NotTo(HaveOccurred())

		for _, row := range rpt.Rows() {
			for _, val := range row.Values {
				Expect(val.Formatted).To(Equal("N/A"))
			}
		}
	})

	It("renders markdown tables", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		md := rpt.Markdown()
		Expect(md).To(ContainSubstring("# ACME"))
		Expect(md).To(ContainSubstring("## Growth & Margins"))
		Expect(md).To(ContainSubstring("| Metric | FY2023 | Q3 2023 | Q2 2023 | Q1 2023 |"))
		Expect(md).To(ContainSubstring("| Revenue | $1.70K | $1.60K | $1.50K | $1.40K |"))
	})

	It("ignores statements filed after the as-of date", func() {
		opts.AsOf = fiscal.Date(2023, time.March, 15)

		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Periods).To(Equal([]string{"FY2022", "Q3 2022", "Q2 2022", "Q1 2022"}))

		revenue := rpt.Row(metrics.RevenueRow)
		Expect(revenue.Values[0].Formatted).To(Equal("$1.30K"))
		Expect(revenue.Values[3].Formatted).To(Equal("$1.00K"))
	})

	It("reports N/A when nothing was filed by the as-of date", func() {
		opts.AsOf = fiscal.Date(2022, time.March, 15)

		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Periods[0]).To(Equal("FY2021"))
		for _, val := range rpt.Row(metrics.RevenueRow).Values {
			Expect(val.Formatted).To(Equal(metrics.NotAvailable))
		}
	})

	It("values the company at the last close on or before the as-of date", func() {
		shares := int64(1_000_000)
		statements.Income[7].SharesOutstanding = &shares
		statements.Prices = []*data.DailyPrice{
			{Date: fiscal.Date(2024, time.March, 1), Close: 50},
			{Date: fiscal.Date(2023, time.December, 29), Close: 40},
			{Date: fiscal.Date(2024, time.March, 20), Close: 999},
		}

		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(*rpt.MarketCap).To(BeNumerically("~", 50_000_000.0))
		Expect(rpt.MarketCapFormatted).To(Equal("$50.0M"))
		Expect(rpt.Markdown()).To(ContainSubstring("market cap $50.0M"))
	})

	It("has no market cap without prices", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.MarketCap).To(BeNil())
		Expect(rpt.MarketCapFormatted).To(Equal(metrics.NotAvailable))
	})

	It("titles known sections and falls back to the raw name", func() {
		Expect(report.SectionTitle(metrics.Valuation)).To(Equal("Valuation"))
		Expect(report.SectionTitle(metrics.CashAndLeverage)).To(Equal("Cash & Leverage"))
		Expect(report.SectionTitle(metrics.Section("other"))).To(Equal("other"))
	})

	It("writes one csv record per row and period", func() {
		rpt, err := report.Build(company, statements, opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(rpt.Records()).To(HaveLen(19 * 4))

		buf := &bytes.Buffer{}
		Expect(rpt.WriteCSV(buf)).To(Succeed())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(19*4 + 1))
		Expect(lines[0]).To(HavePrefix("ticker,section,metric,period"))
		Expect(lines[1]).To(HavePrefix("ACME,growth_and_margins,revenue,FY2023,2023-12-31,1700,$1.70K"))
	})
})
