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
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/penny-vault/pvmetrics/report"
)

var errLoad = errors.New("load failed")

// quarters returns eight quarters of 2022-2023 with revenue base, base+step, ...
func quarters(base, step float64) align.Statements {
	statements := align.Statements{}
	for idx := 0; idx < 8; idx++ {
		year := 2022 + idx/4
		month := time.Month(3 * (idx%4 + 1))

		statements.Income = append(statements.Income, &data.IncomeStatement{
			PeriodEndDate: fiscal.Date(year, month, fiscal.DaysIn(year, month)),
			PeriodType:    fiscal.Quarterly,
			TotalRevenue:  data.Amount(base + float64(idx)*step),
		})
	}

	return statements
}

var _ = Describe("Batch", func() {
	var (
		companies []*data.Company
		library   map[string]align.Statements
		opts      report.Options
		load      report.LoadFunc
	)

	BeforeEach(func() {
		companies = []*data.Company{
			{Ticker: "AAA"},
			{Ticker: "BBB"},
			{Ticker: "FAIL"},
			{Ticker: "DDD"},
		}

		library = map[string]align.Statements{
			"AAA": quarters(1000, 100),
			"BBB": quarters(2000, 200),
			"DDD": quarters(4000, 400),
		}

		opts = report.DefaultOptions()
		opts.PeriodCount = 4
		opts.AsOf = fiscal.Date(2024, 3, 15)

		load = func(ctx context.Context, company *data.Company, periodType fiscal.PeriodType, limit int, asOf time.Time) (align.Statements, error) {
			statements, ok := library[company.Ticker]
			if !ok {
				return align.Statements{}, errLoad
			}
			return statements, nil
		}
	})

	It("builds every report and counts failures", func() {
		results, summary := report.Batch(context.Background(), companies, 2, load, opts)

		Expect(summary).To(Equal(report.BatchSummary{Succeeded: 3, Failed: 1}))
		Expect(results).To(HaveLen(4))

		for idx, result := range results {
			Expect(result.Company).To(BeIdenticalTo(companies[idx]))
		}

		Expect(results[0].Report.Latest(metrics.RevenueRow).Formatted).To(Equal("$1.70K"))
		Expect(results[1].Report.Latest(metrics.RevenueRow).Formatted).To(Equal("$3.40K"))
		Expect(results[2].Err).To(MatchError(errLoad))
		Expect(results[2].Report).To(BeNil())
	})

	It("passes the as-of day to the loader", func() {
		seen := make(chan time.Time, len(companies))
		inner := load
		load = func(ctx context.Context, company *data.Company, periodType fiscal.PeriodType, limit int, asOf time.Time) (align.Statements, error) {
			seen <- asOf
			return inner(ctx, company, periodType, limit, asOf)
		}

		report.Batch(context.Background(), companies, 2, load, opts)
		close(seen)

		for asOf := range seen {
			Expect(asOf).To(Equal(fiscal.Date(2024, 3, 15)))
		}
	})

	It("uses at least one worker", func() {
		_, summary := report.Batch(context.Background(), companies, 0, load, opts)
		Expect(summary.Succeeded).To(Equal(3))
	})

	It("reports build errors", func() {
		invalid := 14
		companies[0].FiscalYearEndMonth = &invalid

		results, summary := report.Batch(context.Background(), companies, 3, load, opts)
		Expect(summary).To(Equal(report.BatchSummary{Succeeded: 2, Failed: 2}))
		Expect(results[0].Err).To(MatchError(fiscal.ErrInvalidFiscalYearEnd))
	})

	It("fails every company when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, summary := report.Batch(ctx, companies, 2, load, opts)
		Expect(summary).To(Equal(report.BatchSummary{Succeeded: 0, Failed: 4}))
		for _, result := range results {
			Expect(result.Err).To(MatchError(context.Canceled))
		}
	})

	It("handles an empty batch", func() {
		results, summary := report.Batch(context.Background(), nil, 4, load, opts)
		Expect(results).To(BeEmpty())
		Expect(summary).To(Equal(report.BatchSummary{}))
	})
})

var _ = Describe("RankLatest", func() {
	var reports []*report.Report

	BeforeEach(func() {
		opts := report.DefaultOptions()
		opts.PeriodCount = 4
		opts.AsOf = fiscal.Date(2024, 3, 15)

		reports = nil
		for _, fixture := range []struct {
			ticker     string
			base, step float64
		}{
			{"AAA", 1000, 100},
			{"BBB", 2000, 200},
			{"CCC", 500, 50},
			{"DDD", 4000, 400},
		} {
			rpt, err := report.Build(&data.Company{Ticker: fixture.ticker}, quarters(fixture.base, fixture.step), opts)
			Expect(err).NotTo(HaveOccurred())
			reports = append(reports, rpt)
		}
	})

	It("ranks the latest value across companies", func() {
		cross := report.RankLatest(reports)

		Expect(cross.Tickers).To(Equal([]string{"AAA", "BBB", "CCC", "DDD"}))
		Expect(cross.Metrics).To(HaveLen(19))
		Expect(cross.Metrics[0]).To(Equal(metrics.RevenueRow))

		quartiles := make([]int, 0, 4)
		for _, val := range cross.Values[metrics.RevenueRow] {
			Expect(val.HeatMapQuartile).NotTo(BeNil())
			quartiles = append(quartiles, *val.HeatMapQuartile)
		}
		Expect(quartiles).To(Equal([]int{1, 2, 1, 3}))
	})

	It("leaves metrics that are missing everywhere unranked", func() {
		cross := report.RankLatest(reports)
		for _, val := range cross.Values[metrics.PERatioRow] {
			Expect(val.Available()).To(BeFalse())
			Expect(val.HeatMapQuartile).To(BeNil())
		}
	})

	It("marks metrics where a lower value ranks better", func() {
		cross := report.RankLatest(reports)
		Expect(cross.Inverted[metrics.PERatioRow]).To(BeTrue())
		Expect(cross.Inverted[metrics.LeverageRatioRow]).To(BeTrue())
		Expect(cross.Inverted).NotTo(HaveKey(metrics.RevenueRow))
	})

	It("carries each company's market cap", func() {
		cross := report.RankLatest(reports)
		Expect(cross.MarketCaps).To(HaveKeyWithValue("AAA", metrics.NotAvailable))
	})

	It("looks up values by ticker", func() {
		cross := report.RankLatest(reports)
		Expect(cross.Value(metrics.RevenueRow, "DDD").Formatted).To(Equal("$6.80K"))
		Expect(cross.Value(metrics.RevenueRow, "ZZZ").Formatted).To(Equal(metrics.NotAvailable))
	})

	It("skips nil reports", func() {
		cross := report.RankLatest([]*report.Report{nil, reports[0], nil})
		Expect(cross.Tickers).To(Equal([]string{"AAA"}))
		Expect(cross.Values[metrics.RevenueRow][0].HeatMapQuartile).To(BeNil())
	})

	It("handles no reports", func() {
		cross := report.RankLatest(nil)
		Expect(cross.Metrics).To(BeEmpty())
	})
})
