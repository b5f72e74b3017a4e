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

// Package report is the entry point of the metrics engine. It generates the
// fiscal window for a company, aligns the company's statements onto it and
// evaluates the metric catalogue.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvmetrics/align"
	"github.com/penny-vault/pvmetrics/data"
	"github.com/penny-vault/pvmetrics/fiscal"
	"github.com/penny-vault/pvmetrics/metrics"
	"github.com/rs/zerolog"
)

const (
	DefaultPeriodType  = fiscal.Quarterly
	DefaultPeriodCount = 8
)

var (
	ErrInvalidPeriodCount = errors.New("period count must be at least 1")
	ErrNoCompany          = errors.New("company is required")
)

type Options struct {
	PeriodType  fiscal.PeriodType
	PeriodCount int

	// AsOf anchors the fiscal window; the zero value means today
	AsOf time.Time

	// HeatMap ranks each row's values across its own periods
	HeatMap bool
}

func DefaultOptions() Options {
	return Options{
		PeriodType:  DefaultPeriodType,
		PeriodCount: DefaultPeriodCount,
		HeatMap:     true,
	}
}

// FetchLimit is the number of statements of each kind the caller should
// load so that the oldest requested period still has a prior-year
// comparable
func (opts Options) FetchLimit() int {
	if opts.periodType() == fiscal.Annual {
		return opts.PeriodCount + 1
	}
	return opts.PeriodCount + 4
}

func (opts Options) periodType() fiscal.PeriodType {
	if opts.PeriodType == "" {
		return DefaultPeriodType
	}
	return opts.PeriodType
}

// AsOfDate is the calendar day the fiscal window is anchored on
func (opts Options) AsOfDate() time.Time {
	if opts.AsOf.IsZero() {
		return fiscal.Day(time.Now())
	}
	return fiscal.Day(opts.AsOf)
}

type Sections struct {
	GrowthAndMargins []*metrics.Row `json:"growth_and_margins"`
	CashAndLeverage  []*metrics.Row `json:"cash_and_leverage"`
	Valuation        []*metrics.Row `json:"valuation"`
}

// Report is the computed metric table for one company. Periods are newest
// first and every row holds one value per period in the same order.
type Report struct {
	CompanyID      uuid.UUID         `json:"company_id"`
	Ticker         string            `json:"ticker"`
	Currency       string            `json:"currency"`
	PeriodType     fiscal.PeriodType `json:"period_type"`
	AsOf           time.Time         `json:"as_of"`
	Periods        []string          `json:"periods"`
	PeriodEndDates []time.Time       `json:"period_end_dates"`
	Sections       Sections          `json:"sections"`

	// MarketCap uses the latest reported share count and the last close on
	// or before AsOf
	MarketCap          *float64 `json:"market_cap"`
	MarketCapFormatted string   `json:"market_cap_formatted"`
}

func (rpt *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", rpt.Ticker)
	e.Str("PeriodType", string(rpt.PeriodType))
	e.Int("NumPeriods", len(rpt.Periods))
	e.Time("AsOf", rpt.AsOf)
	e.Str("MarketCap", rpt.MarketCapFormatted)
}

// Build computes the report for company from its raw statements. It fails
// only when the company's fiscal-year-end month or the options are invalid;
// missing data is reported as N/A.
func Build(company *data.Company, statements align.Statements, opts Options) (*Report, error) {
	if company == nil {
		return nil, ErrNoCompany
	}

	if opts.PeriodCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriodCount, opts.PeriodCount)
	}

	cal, err := company.Calendar()
	if err != nil {
		return nil, err
	}

	periodType := opts.periodType()
	asOf := opts.AsOfDate()

	periods := cal.Periods(opts.PeriodCount, periodType, asOf)
	known := knownBy(statements, asOf)
	bundles := align.Align(periods, known)
	calc := metrics.NewCalculator(company.CurrencyCode())
	rows := calc.Rows(bundles)

	rpt := &Report{
		CompanyID:      company.ID,
		Ticker:         company.Ticker,
		Currency:       company.CurrencyCode(),
		PeriodType:     periodType,
		AsOf:           asOf,
		Periods:        make([]string, len(periods)),
		PeriodEndDates: make([]time.Time, len(periods)),
		MarketCap:      marketCap(bundles, known.Prices),
	}
	rpt.MarketCapFormatted = metrics.FormatMarketCap(rpt.MarketCap, rpt.Currency)

	for idx, period := range periods {
		rpt.Periods[idx] = period.Label
		rpt.PeriodEndDates[idx] = period.EndDate
	}

	for _, row := range rows {
		newestFirst(row, rpt.Periods)

		if opts.HeatMap {
			metrics.RankRow(row)
		}

		switch row.Section {
		case metrics.GrowthAndMargins:
			rpt.Sections.GrowthAndMargins = append(rpt.Sections.GrowthAndMargins, row)
		case metrics.CashAndLeverage:
			rpt.Sections.CashAndLeverage = append(rpt.Sections.CashAndLeverage, row)
		case metrics.Valuation:
			rpt.Sections.Valuation = append(rpt.Sections.Valuation, row)
		}
	}

	return rpt, nil
}

func marketCap(bundles []*align.Bundle, prices []*data.DailyPrice) *float64 {
	var last *data.DailyPrice
	for _, price := range prices {
		if last == nil || price.Date.After(last.Date) {
			last = price
		}
	}

	if last == nil {
		return nil
	}

	for idx := len(bundles) - 1; idx >= 0; idx-- {
		if shares := bundles[idx].SharesOutstanding(); shares != nil {
			return metrics.MarketCap(shares, last.Value(data.Close))
		}
	}

	return nil
}

// knownBy drops records dated after asOf so a historical window never
// picks up later filings
func knownBy(statements align.Statements, asOf time.Time) align.Statements {
	out := align.Statements{
		Income:   make([]*data.IncomeStatement, 0, len(statements.Income)),
		Balance:  make([]*data.BalanceSheet, 0, len(statements.Balance)),
		CashFlow: make([]*data.CashFlowStatement, 0, len(statements.CashFlow)),
		Prices:   make([]*data.DailyPrice, 0, len(statements.Prices)),
	}

	for _, rec := range statements.Income {
		if rec != nil && !fiscal.Day(rec.PeriodEndDate).After(asOf) {
			out.Income = append(out.Income, rec)
		}
	}

	for _, rec := range statements.Balance {
		if rec != nil && !fiscal.Day(rec.PeriodEndDate).After(asOf) {
			out.Balance = append(out.Balance, rec)
		}
	}

	for _, rec := range statements.CashFlow {
		if rec != nil && !fiscal.Day(rec.PeriodEndDate).After(asOf) {
			out.CashFlow = append(out.CashFlow, rec)
		}
	}

	for _, rec := range statements.Prices {
		if rec != nil && !fiscal.Day(rec.Date).After(asOf) {
			out.Prices = append(out.Prices, rec)
		}
	}

	return out
}

// newestFirst reverses the oldest-first values computed from the bundles
// so they line up with labels
func newestFirst(row *metrics.Row, labels []string) {
	count := len(row.Values)
	for ii, jj := 0, count-1; ii < jj; ii, jj = ii+1, jj-1 {
		row.Values[ii], row.Values[jj] = row.Values[jj], row.Values[ii]
	}

	for idx := range row.Values {
		if idx < len(labels) {
			row.Values[idx].Period = labels[idx]
		}
	}
}

// Section returns the rows of a section in display order
func (rpt *Report) Section(section metrics.Section) []*metrics.Row {
	switch section {
	case metrics.GrowthAndMargins:
		return rpt.Sections.GrowthAndMargins
	case metrics.CashAndLeverage:
		return rpt.Sections.CashAndLeverage
	case metrics.Valuation:
		return rpt.Sections.Valuation
	}

	return nil
}

// Rows returns every row of the report in display order
func (rpt *Report) Rows() []*metrics.Row {
	rows := make([]*metrics.Row, 0, len(rpt.Sections.GrowthAndMargins)+
		len(rpt.Sections.CashAndLeverage)+len(rpt.Sections.Valuation))
	for _, section := range metrics.Sections {
		rows = append(rows, rpt.Section(section)...)
	}

	return rows
}

// Row returns the named row or nil
func (rpt *Report) Row(name string) *metrics.Row {
	return metrics.Find(rpt.Rows(), name)
}

// Latest returns the value of the named row for the most recent period
func (rpt *Report) Latest(name string) metrics.MetricValue {
	row := rpt.Row(name)
	if row == nil || len(row.Values) == 0 {
		return metrics.MetricValue{Formatted: metrics.NotAvailable}
	}

	return row.Values[0]
}
